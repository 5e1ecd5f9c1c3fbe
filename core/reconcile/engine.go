package reconcile

import (
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/inventory"
)

// Reconcile joins workloads with servers on the normalized hostname key and
// returns the reconciled records together with aggregate statistics.
//
// A nil servers slice means the CMDB source was unavailable: the engine runs
// a degraded Illumio-only analysis where every workload is classified from
// its own agent state. An empty non-nil slice is full mode with zero servers.
//
// Duplicate workload hostnames are a data-quality condition, not an error:
// the last workload wins the key. Workloads with an empty hostname can never
// match, but they are still emitted as unmatched records.
func Reconcile(workloads []inventory.Workload, servers []inventory.Server) ([]Record, *Stats) {
	stats := newStats()
	stats.TotalIllumioWorkloads = len(workloads)

	if servers == nil {
		return illumioOnly(workloads, stats)
	}

	stats.TotalCMDBServers = len(servers)

	// Hostname index over the workloads. Last write wins on duplicates.
	workloadIdx := make(map[string]int, len(workloads))
	for i, w := range workloads {
		if w.HostnameNormalized != "" {
			workloadIdx[w.HostnameNormalized] = i
		}
	}

	reconciled := make([]Record, 0, len(servers)+len(workloads))
	matched := make(map[string]struct{})

	for _, server := range servers {
		record := serverRecord(server)
		hostname := server.HostnameNormalized

		if idx, ok := lookupWorkload(workloadIdx, hostname); ok {
			workload := workloads[idx]
			matched[hostname] = struct{}{}
			stats.MatchedByHostname++

			record = mergeWorkload(record, workload)
			record.Status = Classify(workload)
			record.MatchType = MatchHostname
		} else {
			record.Status = StatusNotDeployed
			record.MatchType = MatchNone
		}

		stats.countStatus(record.Status)
		stats.countBreakdowns(record)
		reconciled = append(reconciled, record)
	}

	// Workloads never consumed by a server surface as shadow IT. Iterating
	// the input slice keeps the output order deterministic; for a duplicated
	// hostname only the index winner is emitted.
	for i, workload := range workloads {
		hostname := workload.HostnameNormalized
		if hostname != "" {
			if _, ok := matched[hostname]; ok {
				continue
			}
			if workloadIdx[hostname] != i {
				continue
			}
		}

		record := mergeWorkload(Record{}, workload)
		record.Status = StatusNotInCMDB
		record.MatchType = MatchNone

		stats.NotInCMDB++
		stats.countBreakdowns(record)
		reconciled = append(reconciled, record)
	}

	stats.finalizeRates()
	return reconciled, stats
}

// illumioOnly classifies every workload from its own state. No not_deployed
// or not_in_cmdb statuses are possible without CMDB data.
func illumioOnly(workloads []inventory.Workload, stats *Stats) ([]Record, *Stats) {
	reconciled := make([]Record, 0, len(workloads))

	for _, workload := range workloads {
		record := mergeWorkload(Record{}, workload)
		record.Status = Classify(workload)
		record.MatchType = MatchIllumioOnly

		stats.countStatus(record.Status)
		stats.countBreakdowns(record)
		reconciled = append(reconciled, record)
	}

	stats.finalizeRates()
	return reconciled, stats
}

// Classify derives the deployment status from the workload's own state.
func Classify(w inventory.Workload) Status {
	if !w.Managed {
		return StatusDeployedUninstalled
	}

	switch w.VENStatus {
	case inventory.VENSuspended:
		return StatusDeployedSuspended
	case inventory.VENUninstalled:
		return StatusDeployedUninstalled
	}

	if w.Online {
		return StatusDeployedActive
	}
	return StatusDeployedOffline
}

func lookupWorkload(idx map[string]int, hostname string) (int, bool) {
	if hostname == "" {
		return 0, false
	}
	i, ok := idx[hostname]
	return i, ok
}

// NotDeployed filters the records representing CMDB servers with no agent.
func NotDeployed(records []Record) []Record {
	return filterByStatus(records, StatusNotDeployed)
}

// ShadowIT filters the records present in the PCE but absent from the CMDB.
func ShadowIT(records []Record) []Record {
	return filterByStatus(records, StatusNotInCMDB)
}

// OfflineAgents filters the deployed records whose agent is offline.
func OfflineAgents(records []Record) []Record {
	return filterByStatus(records, StatusDeployedOffline)
}

// SuspendedAgents filters the deployed records whose agent is suspended.
func SuspendedAgents(records []Record) []Record {
	return filterByStatus(records, StatusDeployedSuspended)
}

func filterByStatus(records []Record, status Status) []Record {
	var out []Record
	for _, r := range records {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}
