package permissions

// Roles, highest first. Rank comparisons use RoleRank.
const (
	RoleAccountOwner   = "account_owner"
	RoleAccountManager = "account_manager"
	RoleProjectOwner   = "project_owner"
	RoleObjectiveOwner = "objective_owner"
	RoleTeamMember     = "team_member"
)

// Actions gated by the matrix.
const (
	ActionCreateProject      = "create_project"
	ActionEditProject        = "edit_project"
	ActionDeleteProject      = "delete_project"
	ActionCreateObjective    = "create_objective"
	ActionEditObjective      = "edit_objective"
	ActionManageTasks        = "manage_tasks"
	ActionCreateTouchbase    = "create_touchbase"
	ActionViewOtherDashboard = "view_other_dashboard"
	ActionManageTeam         = "manage_team"
)

var roleRank = map[string]int{
	RoleAccountOwner:   5,
	RoleAccountManager: 4,
	RoleProjectOwner:   3,
	RoleObjectiveOwner: 2,
	RoleTeamMember:     1,
}

var matrix = map[string]map[string]bool{
	ActionCreateProject: {
		RoleAccountOwner:   true,
		RoleAccountManager: true,
		RoleProjectOwner:   true,
	},
	ActionEditProject: {
		RoleAccountOwner:   true,
		RoleAccountManager: true,
		RoleProjectOwner:   true,
	},
	ActionDeleteProject: {
		RoleAccountOwner:   true,
		RoleAccountManager: true,
		RoleProjectOwner:   true,
	},
	ActionCreateObjective: {
		RoleAccountOwner:   true,
		RoleAccountManager: true,
		RoleProjectOwner:   true,
		RoleObjectiveOwner: true,
	},
	ActionEditObjective: {
		RoleAccountOwner:   true,
		RoleAccountManager: true,
		RoleProjectOwner:   true,
		RoleObjectiveOwner: true,
	},
	ActionManageTasks: {
		RoleAccountOwner:   true,
		RoleAccountManager: true,
		RoleProjectOwner:   true,
		RoleObjectiveOwner: true,
	},
	ActionCreateTouchbase: {
		RoleAccountOwner:   true,
		RoleAccountManager: true,
		RoleProjectOwner:   true,
		RoleObjectiveOwner: true,
		RoleTeamMember:     true,
	},
	ActionViewOtherDashboard: {
		RoleAccountOwner:   true,
		RoleAccountManager: true,
	},
	ActionManageTeam: {
		RoleAccountOwner:   true,
		RoleAccountManager: true,
	},
}

// HasPermission reports whether a role may perform an action. Unknown roles
// and unknown actions are always denied.
func HasPermission(role, action string) bool {
	allowed, ok := matrix[action]
	if !ok {
		return false
	}
	return allowed[role]
}

// RoleRank returns the position of a role in the hierarchy, 0 for unknown
// roles. Higher outranks lower.
func RoleRank(role string) int {
	return roleRank[role]
}

// AtLeast reports whether role sits at or above min in the hierarchy.
func AtLeast(role, min string) bool {
	r := roleRank[role]
	return r > 0 && r >= roleRank[min]
}

// IsManager reports whether a role may act through virtual personas and view
// other members' dashboards.
func IsManager(role string) bool {
	return role == RoleAccountOwner || role == RoleAccountManager
}

// ValidRole reports whether a role string is one of the five known roles.
func ValidRole(role string) bool {
	_, ok := roleRank[role]
	return ok
}
