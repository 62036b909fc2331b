package access_test

import (
	"testing"

	"goaltrack-service/internal/access"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, raw := range []string{"admin", "data_entry", "viewer"} {
		role, err := access.ParseRole(raw)
		require.NoError(t, err)
		assert.True(t, role.Valid())
	}

	_, err := access.ParseRole("owner")
	assert.Error(t, err, "roles outside the closed set are rejected")

	_, err = access.ParseRole("")
	assert.Error(t, err)
}

func TestParseScreens_RoundTrip(t *testing.T) {
	original := access.ScreenSet{
		access.ScreenDashboard: {},
		access.ScreenLedger:    {},
	}

	parsed, err := access.ParseScreens(access.SerializeScreens(original))

	require.NoError(t, err)
	assert.True(t, parsed.Contains(access.ScreenDashboard))
	assert.True(t, parsed.Contains(access.ScreenLedger))
	assert.False(t, parsed.Contains(access.ScreenTeam))
}

func TestParseScreens_EmptyIsEmptySet(t *testing.T) {
	parsed, err := access.ParseScreens("")

	require.NoError(t, err)
	assert.Empty(t, parsed.Names())
}

func TestParseScreens_UnknownScreenRejected(t *testing.T) {
	_, err := access.ParseScreens(`["Dashboard","Payroll"]`)

	assert.Error(t, err)
}

func TestParseScreens_GarbageRejected(t *testing.T) {
	_, err := access.ParseScreens("Dashboard")

	assert.Error(t, err)
}

func TestRolePermissions(t *testing.T) {
	// Only admin manages company settings, goals and the team
	assert.True(t, access.RoleAdmin.CanManageCompany())
	assert.False(t, access.RoleDataEntry.CanManageCompany())
	assert.False(t, access.RoleViewer.CanManageCompany())

	// Admin and data_entry record sales; viewer is read-only
	assert.True(t, access.RoleAdmin.CanRecordSales())
	assert.True(t, access.RoleDataEntry.CanRecordSales())
	assert.False(t, access.RoleViewer.CanRecordSales())
}

func TestCanNavigate_StoredSetBindsNonAdmins(t *testing.T) {
	// GIVEN: a viewer whose permitted set is only the dashboard
	screens := access.ScreenSet{access.ScreenDashboard: {}}

	assert.True(t, access.CanNavigate(access.RoleViewer, screens, access.ScreenDashboard))
	assert.False(t, access.CanNavigate(access.RoleViewer, screens, access.ScreenTeam),
		"direct requests to unpermitted screens are refused")
	assert.False(t, access.CanNavigate(access.RoleViewer, screens, access.ScreenSettings))
}

func TestCanNavigate_AdminIgnoresStoredSet(t *testing.T) {
	// The stored set is informational for admins, binding for everyone else
	empty := access.ScreenSet{}

	assert.True(t, access.CanNavigate(access.RoleAdmin, empty, access.ScreenSettings))
	assert.True(t, access.CanNavigate(access.RoleAdmin, empty, access.ScreenTeam))
}

func TestCanModifyMember(t *testing.T) {
	// Admin may change other members
	assert.True(t, access.CanModifyMember(access.RoleAdmin, 1, 2))

	// An admin may never modify their own membership
	assert.False(t, access.CanModifyMember(access.RoleAdmin, 1, 1),
		"self-lockout prevention")

	// Non-admins do not manage the team at all
	assert.False(t, access.CanModifyMember(access.RoleDataEntry, 1, 2))
	assert.False(t, access.CanModifyMember(access.RoleViewer, 1, 2))
}

func TestAllScreens(t *testing.T) {
	all := access.AllScreens()

	assert.Equal(t, []string{"Dashboard", "Goals", "Ledger", "Settings", "Team"}, all.Names())
}
