package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/inventory"
)

func activeWorkload(hostname string) inventory.Workload {
	return inventory.Workload{
		Href:               "/orgs/1/workloads/" + hostname,
		Hostname:           hostname,
		HostnameNormalized: hostname,
		Online:             true,
		Managed:            true,
		EnforcementMode:    "full",
		VENStatus:          inventory.VENActive,
	}
}

func cmdbServer(hostname string) inventory.Server {
	return inventory.Server{
		SysID:              "sys-" + hostname,
		Name:               hostname,
		Hostname:           hostname,
		HostnameNormalized: hostname,
		Environment:        "Production",
	}
}

func findRecord(t *testing.T, records []Record, hostname string) Record {
	t.Helper()
	for _, r := range records {
		if r.HostnameNormalized == hostname {
			return r
		}
	}
	t.Fatalf("no record for hostname %q", hostname)
	return Record{}
}

func TestReconcileHostnameMatch(t *testing.T) {
	workloads := []inventory.Workload{activeWorkload("WEB01")}
	servers := []inventory.Server{cmdbServer("WEB01")}

	records, stats := Reconcile(workloads, servers)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, StatusDeployedActive, r.Status)
	assert.Equal(t, MatchHostname, r.MatchType)
	assert.Equal(t, "sys-WEB01", r.CMDBSysID)
	assert.Equal(t, "/orgs/1/workloads/WEB01", r.IllumioHref)
	assert.Equal(t, "Yes", r.IllumioOnline)
	assert.Equal(t, 1, stats.MatchedByHostname)
	assert.Equal(t, 1, stats.DeployedActive)
}

func TestReconcileWorkloadNotInCMDB(t *testing.T) {
	workloads := []inventory.Workload{
		activeWorkload("WEB01"),
		activeWorkload("WEB02"),
	}
	servers := []inventory.Server{cmdbServer("WEB01")}

	records, stats := Reconcile(workloads, servers)
	require.Len(t, records, 2)

	shadow := findRecord(t, records, "WEB02")
	assert.Equal(t, StatusNotInCMDB, shadow.Status)
	assert.Equal(t, MatchNone, shadow.MatchType)
	assert.Empty(t, shadow.CMDBSysID)
	assert.Equal(t, 1, stats.NotInCMDB)
	assert.Equal(t, 1, stats.MatchedByHostname)
}

func TestReconcileServerNotDeployed(t *testing.T) {
	servers := []inventory.Server{cmdbServer("DB01")}

	records, stats := Reconcile(nil, servers)
	require.Len(t, records, 1)

	assert.Equal(t, StatusNotDeployed, records[0].Status)
	assert.Equal(t, MatchNone, records[0].MatchType)
	assert.Equal(t, 1, stats.NotDeployed)
	assert.Zero(t, stats.MatchedByHostname)
}

func TestReconcileEmptyHostnameWorkloadStillEmitted(t *testing.T) {
	anonymous := inventory.Workload{Href: "/orgs/1/workloads/idle", Online: true, Managed: true}
	workloads := []inventory.Workload{anonymous, anonymous}
	servers := []inventory.Server{cmdbServer("WEB01")}

	records, stats := Reconcile(workloads, servers)

	// Empty hostnames never match and never collapse into each other.
	require.Len(t, records, 3)
	assert.Equal(t, 2, stats.NotInCMDB)
	assert.Equal(t, 1, stats.NotDeployed)
}

func TestReconcileDuplicateHostnameLastWriteWins(t *testing.T) {
	older := activeWorkload("WEB01")
	older.Href = "/orgs/1/workloads/older"
	newer := activeWorkload("WEB01")
	newer.Href = "/orgs/1/workloads/newer"

	records, stats := Reconcile([]inventory.Workload{older, newer}, []inventory.Server{cmdbServer("WEB01")})

	// The duplicate collapses onto one record carrying the last workload.
	require.Len(t, records, 1)
	assert.Equal(t, "/orgs/1/workloads/newer", records[0].IllumioHref)
	assert.Equal(t, 1, stats.MatchedByHostname)
	assert.Zero(t, stats.NotInCMDB)
}

func TestReconcileStatusClassification(t *testing.T) {
	tests := []struct {
		name     string
		workload inventory.Workload
		want     Status
	}{
		{
			"unmanaged",
			inventory.Workload{Managed: false, Online: true},
			StatusDeployedUninstalled,
		},
		{
			"suspended",
			inventory.Workload{Managed: true, VENStatus: inventory.VENSuspended, Online: true},
			StatusDeployedSuspended,
		},
		{
			"uninstalled",
			inventory.Workload{Managed: true, VENStatus: inventory.VENUninstalled},
			StatusDeployedUninstalled,
		},
		{
			"online",
			inventory.Workload{Managed: true, VENStatus: inventory.VENActive, Online: true},
			StatusDeployedActive,
		},
		{
			"offline",
			inventory.Workload{Managed: true, VENStatus: inventory.VENOffline, Online: false},
			StatusDeployedOffline,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.workload))
		})
	}
}

func TestReconcileDegradedMode(t *testing.T) {
	offline := activeWorkload("WEB02")
	offline.Online = false
	offline.VENStatus = inventory.VENOffline

	workloads := []inventory.Workload{activeWorkload("WEB01"), offline}

	records, stats := Reconcile(workloads, nil)
	require.Len(t, records, 2)

	for _, r := range records {
		assert.Equal(t, MatchIllumioOnly, r.MatchType)
	}
	assert.Equal(t, 1, stats.DeployedActive)
	assert.Equal(t, 1, stats.DeployedOffline)

	// Without CMDB data there is no server population to miss or exceed.
	assert.Zero(t, stats.NotDeployed)
	assert.Zero(t, stats.NotInCMDB)
	assert.Zero(t, stats.TotalCMDBServers)
	assert.Zero(t, stats.CoverageRate)
}

func TestReconcileEmptyServersIsNotDegradedMode(t *testing.T) {
	records, stats := Reconcile([]inventory.Workload{activeWorkload("WEB01")}, []inventory.Server{})

	require.Len(t, records, 1)
	assert.Equal(t, StatusNotInCMDB, records[0].Status)
	assert.Equal(t, MatchNone, records[0].MatchType)
	assert.Equal(t, 1, stats.NotInCMDB)
}

func TestReconcileDeterministicOrder(t *testing.T) {
	workloads := []inventory.Workload{
		activeWorkload("WEB03"),
		activeWorkload("WEB01"),
		activeWorkload("WEB02"),
	}
	servers := []inventory.Server{cmdbServer("WEB01")}

	first, _ := Reconcile(workloads, servers)
	for i := 0; i < 10; i++ {
		again, _ := Reconcile(workloads, servers)
		require.Equal(t, first, again)
	}

	// Unmatched workloads keep their input order.
	require.Len(t, first, 3)
	assert.Equal(t, "WEB03", first[1].HostnameNormalized)
	assert.Equal(t, "WEB02", first[2].HostnameNormalized)
}

func TestStatusFilters(t *testing.T) {
	records := []Record{
		{Status: StatusNotDeployed},
		{Status: StatusNotInCMDB},
		{Status: StatusDeployedOffline},
		{Status: StatusDeployedSuspended},
		{Status: StatusDeployedActive},
		{Status: StatusNotDeployed},
	}

	assert.Len(t, NotDeployed(records), 2)
	assert.Len(t, ShadowIT(records), 1)
	assert.Len(t, OfflineAgents(records), 1)
	assert.Len(t, SuspendedAgents(records), 1)
}
