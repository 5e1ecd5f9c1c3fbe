package reconcile

import "github.com/Ramzibenchaabane/illumio-monitoring-tool/core/inventory"

// Status is the closed set of final classifications for a reconciled record.
type Status string

const (
	StatusDeployedActive      Status = "deployed_active"
	StatusDeployedOffline     Status = "deployed_offline"
	StatusDeployedSuspended   Status = "deployed_suspended"
	StatusDeployedUninstalled Status = "deployed_uninstalled"
	StatusNotDeployed         Status = "not_deployed"
	StatusNotInCMDB           Status = "not_in_cmdb"
)

// MatchType records how the two sides of a record were associated.
type MatchType string

const (
	// MatchHostname means both sides matched on the normalized hostname.
	MatchHostname MatchType = "hostname"
	// MatchNone means the record has only one side.
	MatchNone MatchType = "none"
	// MatchIllumioOnly marks records produced in degraded mode, where no
	// CMDB data was available at all.
	MatchIllumioOnly MatchType = "illumio_only"
)

// Record is the merged view of at most one workload and at most one server
// sharing a hostname key. Created once by Reconcile and never mutated.
type Record struct {
	CMDBSysID             string `json:"cmdb_sys_id"`
	CMDBName              string `json:"cmdb_name"`
	CMDBHostname          string `json:"cmdb_hostname"`
	CMDBIPAddress         string `json:"cmdb_ip_address"`
	CMDBOperatingEntity   string `json:"cmdb_operating_entity"`
	CMDBEnvironment       string `json:"cmdb_environment"`
	CMDBApplication       string `json:"cmdb_application"`
	CMDBOS                string `json:"cmdb_os"`
	CMDBOperationalStatus string `json:"cmdb_operational_status"`
	CMDBLocation          string `json:"cmdb_location"`
	CMDBAssignedTo        string `json:"cmdb_assigned_to"`

	IllumioHref            string              `json:"illumio_href"`
	IllumioHostname        string              `json:"illumio_hostname"`
	IllumioName            string              `json:"illumio_name"`
	IllumioPrimaryIP       string              `json:"illumio_primary_ip"`
	IllumioOnline          string              `json:"illumio_online"`
	IllumioManaged         string              `json:"illumio_managed"`
	IllumioVENStatus       inventory.VENStatus `json:"illumio_ven_status"`
	IllumioVENVersion      string              `json:"illumio_ven_version"`
	IllumioEnforcementMode string              `json:"illumio_enforcement_mode"`
	IllumioVisibilityLevel string              `json:"illumio_visibility_level"`
	IllumioOSType          string              `json:"illumio_os_type"`
	IllumioLabelApp        string              `json:"illumio_label_app"`
	IllumioLabelEnv        string              `json:"illumio_label_env"`
	IllumioLabelRole       string              `json:"illumio_label_role"`
	IllumioLabelLoc        string              `json:"illumio_label_loc"`
	IllumioLastHeartbeat   string              `json:"illumio_last_heartbeat"`

	HostnameNormalized string    `json:"hostname_normalized"`
	Status             Status    `json:"reconciliation_status"`
	MatchType          MatchType `json:"match_type"`
}

// yesNo renders a boolean the way reports expect it.
func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// serverRecord seeds a record with the CMDB side.
func serverRecord(s inventory.Server) Record {
	return Record{
		CMDBSysID:             s.SysID,
		CMDBName:              s.Name,
		CMDBHostname:          s.Hostname,
		CMDBIPAddress:         s.IPAddress,
		CMDBOperatingEntity:   s.OperatingEntity,
		CMDBEnvironment:       s.Environment,
		CMDBApplication:       s.Application,
		CMDBOS:                s.OS,
		CMDBOperationalStatus: s.OperationalStatus,
		CMDBLocation:          s.Location,
		CMDBAssignedTo:        s.AssignedTo,
		HostnameNormalized:    s.HostnameNormalized,
	}
}

// mergeWorkload copies the workload side into the record. The hostname key is
// kept from whichever side already set it.
func mergeWorkload(r Record, w inventory.Workload) Record {
	r.IllumioHref = w.Href
	r.IllumioHostname = w.Hostname
	r.IllumioName = w.Name
	r.IllumioPrimaryIP = w.PrimaryIP
	r.IllumioOnline = yesNo(w.Online)
	r.IllumioManaged = yesNo(w.Managed)
	r.IllumioVENStatus = w.VENStatus
	r.IllumioVENVersion = w.VENVersion
	r.IllumioEnforcementMode = w.EnforcementMode
	r.IllumioVisibilityLevel = w.VisibilityLevel
	r.IllumioOSType = w.OSType
	r.IllumioLabelApp = w.LabelApp
	r.IllumioLabelEnv = w.LabelEnv
	r.IllumioLabelRole = w.LabelRole
	r.IllumioLabelLoc = w.LabelLoc
	r.IllumioLastHeartbeat = w.AgentLastHeartbeat
	if w.HostnameNormalized != "" {
		r.HostnameNormalized = w.HostnameNormalized
	}
	return r
}
