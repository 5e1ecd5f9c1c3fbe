package inventory

import "sort"

// Server represents one normalized CMDB server record.
type Server struct {
	SysID              string `json:"sys_id"`
	Name               string `json:"name"`
	Hostname           string `json:"hostname"`
	HostnameNormalized string `json:"hostname_normalized"`
	AssetTag           string `json:"asset_tag"`
	SerialNumber       string `json:"serial_number"`
	FQDN               string `json:"fqdn"`
	DNSDomain          string `json:"dns_domain"`

	IPAddress  string `json:"ip_address"`
	MACAddress string `json:"mac_address"`

	SysClassName string `json:"sys_class_name"`
	Category     string `json:"category"`
	Subcategory  string `json:"subcategory"`

	OperatingEntity string `json:"operating_entity"`
	Company         string `json:"company"`
	Department      string `json:"department"`
	Location        string `json:"location"`

	OS        string `json:"os"`
	OSVersion string `json:"os_version"`
	CPUCount  string `json:"cpu_count"`
	RAM       string `json:"ram"`
	Virtual   string `json:"virtual"`

	OperationalStatus string `json:"operational_status"`
	InstallStatus     string `json:"install_status"`

	AssignedTo   string `json:"assigned_to"`
	ManagedBy    string `json:"managed_by"`
	SupportGroup string `json:"support_group"`

	Environment string `json:"environment"`
	Application string `json:"application"`
	Criticality string `json:"criticality"`

	CreatedOn       string `json:"sys_created_on"`
	UpdatedOn       string `json:"sys_updated_on"`
	DiscoverySource string `json:"discovery_source"`
	LastDiscovered  string `json:"last_discovered"`

	// Extra is the side-table of dynamically discovered custom fields (u_*)
	// that are not mapped to a typed field above.
	Extra map[string]string `json:"extra,omitempty"`
}

// ExtraFields returns the custom field names in stable sorted order, for
// deterministic rendering.
func (s Server) ExtraFields() []string {
	keys := make([]string, 0, len(s.Extra))
	for k := range s.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
