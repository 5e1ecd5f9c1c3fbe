// Package inventory defines the normalized record types produced by the
// source connectors and consumed by the reconciliation engine.
//
// A Workload is one managed endpoint from the PCE, with resolved labels,
// flattened network interfaces and a derived VEN status. A Server is one
// asset record from the CMDB, with reference fields resolved to display
// values and dynamically discovered custom fields carried in an explicit
// side-table.
//
// Both types carry a pre-normalized hostname used as the join key and are
// immutable once their connector returns them.
package inventory
