package reconcile

// Stats is the aggregate result of one reconciliation pass. It is mutated
// only while the pass runs and immutable once Reconcile returns it.
type Stats struct {
	TotalCMDBServers      int `json:"total_cmdb_servers"`
	TotalIllumioWorkloads int `json:"total_illumio_workloads"`

	DeployedActive      int `json:"deployed_active"`
	DeployedOffline     int `json:"deployed_offline"`
	DeployedSuspended   int `json:"deployed_suspended"`
	DeployedUninstalled int `json:"deployed_uninstalled"`
	NotDeployed         int `json:"not_deployed"`
	NotInCMDB           int `json:"not_in_cmdb"`

	MatchedByHostname int `json:"matched_by_hostname"`

	CoverageRate    float64 `json:"coverage_rate"`
	ActiveRate      float64 `json:"active_rate"`
	EnforcementRate float64 `json:"enforcement_rate"`

	ByEnvironment     map[string]map[Status]int `json:"by_environment"`
	ByApplication     map[string]map[Status]int `json:"by_application"`
	ByOperatingEntity map[string]map[Status]int `json:"by_operating_entity"`
	ByVENStatus       map[string]int            `json:"by_ven_status"`
	ByEnforcementMode map[string]int            `json:"by_enforcement_mode"`
	ByVENVersion      map[string]int            `json:"by_ven_version"`
}

func newStats() *Stats {
	return &Stats{
		ByEnvironment:     make(map[string]map[Status]int),
		ByApplication:     make(map[string]map[Status]int),
		ByOperatingEntity: make(map[string]map[Status]int),
		ByVENStatus:       make(map[string]int),
		ByEnforcementMode: make(map[string]int),
		ByVENVersion:      make(map[string]int),
	}
}

// countStatus tallies a record's status in the flat per-status counters.
func (s *Stats) countStatus(status Status) {
	switch status {
	case StatusDeployedActive:
		s.DeployedActive++
	case StatusDeployedOffline:
		s.DeployedOffline++
	case StatusDeployedSuspended:
		s.DeployedSuspended++
	case StatusDeployedUninstalled:
		s.DeployedUninstalled++
	case StatusNotDeployed:
		s.NotDeployed++
	case StatusNotInCMDB:
		s.NotInCMDB++
	}
}

// countBreakdowns updates the dimensional breakdown tables for one record.
// Empty dimension values fall back to "Unknown" for the nested tables and
// "N/A" for the flat agent-centric tables.
func (s *Stats) countBreakdowns(r Record) {
	env := firstNonEmpty(r.CMDBEnvironment, r.IllumioLabelEnv, "Unknown")
	bumpNested(s.ByEnvironment, env, r.Status)

	app := firstNonEmpty(r.CMDBApplication, r.IllumioLabelApp, "Unknown")
	bumpNested(s.ByApplication, app, r.Status)

	oe := firstNonEmpty(r.CMDBOperatingEntity, "Unknown")
	bumpNested(s.ByOperatingEntity, oe, r.Status)

	s.ByVENStatus[firstNonEmpty(string(r.IllumioVENStatus), "N/A")]++
	s.ByEnforcementMode[firstNonEmpty(r.IllumioEnforcementMode, "N/A")]++
	s.ByVENVersion[firstNonEmpty(r.IllumioVENVersion, "N/A")]++
}

// finalizeRates derives the percentage rates. Coverage and active rate divide
// by the CMDB server total; enforcement rate divides by the currently
// deployed population (active + offline + suspended). The two divisor
// conventions are deliberate and must not be unified.
func (s *Stats) finalizeRates() {
	if s.TotalCMDBServers > 0 {
		deployed := s.DeployedActive + s.DeployedOffline + s.DeployedSuspended + s.DeployedUninstalled
		s.CoverageRate = float64(deployed) / float64(s.TotalCMDBServers) * 100
		s.ActiveRate = float64(s.DeployedActive) / float64(s.TotalCMDBServers) * 100
	}

	totalDeployed := s.DeployedActive + s.DeployedOffline + s.DeployedSuspended
	if totalDeployed > 0 {
		enforced := s.ByEnforcementMode["full"] + s.ByEnforcementMode["selective"]
		s.EnforcementRate = float64(enforced) / float64(totalDeployed) * 100
	}
}

func bumpNested(table map[string]map[Status]int, key string, status Status) {
	inner, ok := table[key]
	if !ok {
		inner = make(map[Status]int)
		table[key] = inner
	}
	inner[status]++
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
