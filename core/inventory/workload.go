package inventory

import "strings"

// VENStatus is the derived lifecycle state of a workload's agent.
type VENStatus string

const (
	VENActive      VENStatus = "active"
	VENOffline     VENStatus = "offline"
	VENSuspended   VENStatus = "suspended"
	VENUninstalled VENStatus = "uninstalled"
	VENUnmanaged   VENStatus = "unmanaged"
)

// Workload represents one normalized PCE workload.
type Workload struct {
	Href               string `json:"href"`
	Name               string `json:"name"`
	Hostname           string `json:"hostname"`
	HostnameNormalized string `json:"hostname_normalized"`
	Description        string `json:"description"`

	PrimaryIP       string `json:"primary_ip"`
	AllIPs          string `json:"all_ips"`
	PublicIP        string `json:"public_ip"`
	InterfacesCount int    `json:"interfaces_count"`

	Online          bool   `json:"online"`
	Managed         bool   `json:"managed"`
	EnforcementMode string `json:"enforcement_mode"`
	VisibilityLevel string `json:"visibility_level"`

	AgentHref          string `json:"agent_href"`
	AgentStatus        string `json:"agent_status"`
	AgentLastHeartbeat string `json:"agent_last_heartbeat"`
	AgentMode          string `json:"agent_mode"`

	VENVersion string    `json:"ven_version"`
	VENStatus  VENStatus `json:"ven_status"`

	OSType   string `json:"os_type"`
	OSID     string `json:"os_id"`
	OSDetail string `json:"os_detail"`

	DataCenter     string `json:"data_center"`
	DataCenterZone string `json:"data_center_zone"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`

	LabelRole string `json:"label_role"`
	LabelApp  string `json:"label_app"`
	LabelEnv  string `json:"label_env"`
	LabelLoc  string `json:"label_loc"`

	// Labels holds every resolved label, including the well-known keys above.
	Labels map[string]string `json:"labels"`
}

// DeriveVENStatus computes the VEN status from the workload's agent state.
//
// Rule: unmanaged workloads are "unmanaged"; otherwise the agent-reported
// status string wins (lowercased); otherwise the online flag decides between
// "active" and "offline".
func DeriveVENStatus(managed bool, agentStatus string, online bool) VENStatus {
	if !managed {
		return VENUnmanaged
	}
	if agentStatus != "" {
		return VENStatus(strings.ToLower(agentStatus))
	}
	if online {
		return VENActive
	}
	return VENOffline
}
