// Package reconcile joins PCE workloads with CMDB servers into a single
// deployment-status view keyed by normalized hostname, and aggregates
// multi-dimensional statistics over the result.
//
// The join is a pure, single-pass computation over fully materialized inputs:
// a hostname index is built from the workload collection, every server is
// looked up against it, and leftover workloads surface as shadow IT
// (present in the PCE, absent from the CMDB). When the CMDB source is
// unavailable the engine degrades to an Illumio-only analysis where every
// workload is classified purely from its own agent state.
//
// # Statuses
//
// Every reconciled record carries exactly one Status:
//
//   - deployed_active / deployed_offline / deployed_suspended /
//     deployed_uninstalled: the server has a matching workload, classified
//     from the workload's agent state
//   - not_deployed: the server has no matching workload
//   - not_in_cmdb: the workload has no matching server (full mode only)
//
// # Statistics
//
// Stats carries totals, per-status counts, nested breakdowns by environment,
// application and operating entity (dimension value -> status -> count), flat
// breakdowns by VEN status, enforcement mode and VEN version, and derived
// percentage rates computed once at the end of the pass.
package reconcile
