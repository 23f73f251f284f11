package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"arrowhead/permissions"
)

// Removing or demoting the sole account owner would leave the team
// unmanageable; the guard covers both paths.
func TestWouldOrphanTeam(t *testing.T) {
	assert.True(t, wouldOrphanTeam(permissions.RoleAccountOwner, 1))
	assert.True(t, wouldOrphanTeam(permissions.RoleAccountOwner, 0))

	// A second owner keeps the team covered
	assert.False(t, wouldOrphanTeam(permissions.RoleAccountOwner, 2))

	// Non-owners never trigger the guard, whatever the owner count
	assert.False(t, wouldOrphanTeam(permissions.RoleAccountManager, 1))
	assert.False(t, wouldOrphanTeam(permissions.RoleTeamMember, 1))
}
