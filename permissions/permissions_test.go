package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allRoles = []string{
	RoleAccountOwner,
	RoleAccountManager,
	RoleProjectOwner,
	RoleObjectiveOwner,
	RoleTeamMember,
}

var allActions = []string{
	ActionCreateProject,
	ActionEditProject,
	ActionDeleteProject,
	ActionCreateObjective,
	ActionEditObjective,
	ActionManageTasks,
	ActionCreateTouchbase,
	ActionViewOtherDashboard,
	ActionManageTeam,
}

// expected mirrors the documented matrix: for each action, the lowest role
// that is still allowed. Everything at or above it passes, everything below
// fails.
var expectedFloor = map[string]string{
	ActionCreateProject:      RoleProjectOwner,
	ActionEditProject:        RoleProjectOwner,
	ActionDeleteProject:      RoleProjectOwner,
	ActionCreateObjective:    RoleObjectiveOwner,
	ActionEditObjective:      RoleObjectiveOwner,
	ActionManageTasks:        RoleObjectiveOwner,
	ActionCreateTouchbase:    RoleTeamMember,
	ActionViewOtherDashboard: RoleAccountManager,
	ActionManageTeam:         RoleAccountManager,
}

func TestHasPermission_FullMatrix(t *testing.T) {
	for _, action := range allActions {
		floor := expectedFloor[action]
		for _, role := range allRoles {
			want := RoleRank(role) >= RoleRank(floor)
			assert.Equalf(t, want, HasPermission(role, action),
				"role=%s action=%s", role, action)
		}
	}
}

func TestHasPermission_UnknownRole(t *testing.T) {
	for _, action := range allActions {
		assert.False(t, HasPermission("superuser", action))
		assert.False(t, HasPermission("", action))
	}
}

func TestHasPermission_UnknownAction(t *testing.T) {
	for _, role := range allRoles {
		assert.False(t, HasPermission(role, "launch_missiles"))
		assert.False(t, HasPermission(role, ""))
	}
}

func TestRoleRank_Ordering(t *testing.T) {
	assert.Greater(t, RoleRank(RoleAccountOwner), RoleRank(RoleAccountManager))
	assert.Greater(t, RoleRank(RoleAccountManager), RoleRank(RoleProjectOwner))
	assert.Greater(t, RoleRank(RoleProjectOwner), RoleRank(RoleObjectiveOwner))
	assert.Greater(t, RoleRank(RoleObjectiveOwner), RoleRank(RoleTeamMember))
	assert.Equal(t, 0, RoleRank("nonsense"))
}

func TestAtLeast(t *testing.T) {
	assert.True(t, AtLeast(RoleAccountOwner, RoleProjectOwner))
	assert.True(t, AtLeast(RoleProjectOwner, RoleProjectOwner))
	assert.False(t, AtLeast(RoleTeamMember, RoleProjectOwner))
	// Unknown roles never pass, even against an unknown floor
	assert.False(t, AtLeast("nonsense", RoleTeamMember))
	assert.False(t, AtLeast("nonsense", "other-nonsense"))
}

func TestIsManager(t *testing.T) {
	assert.True(t, IsManager(RoleAccountOwner))
	assert.True(t, IsManager(RoleAccountManager))
	assert.False(t, IsManager(RoleProjectOwner))
	assert.False(t, IsManager(RoleObjectiveOwner))
	assert.False(t, IsManager(RoleTeamMember))
	assert.False(t, IsManager(""))
}

func TestValidRole(t *testing.T) {
	for _, role := range allRoles {
		assert.True(t, ValidRole(role))
	}
	assert.False(t, ValidRole("admin"))
}
