package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"arrowhead/config"
	"arrowhead/models"
	"arrowhead/permissions"
	"arrowhead/utils"
)

// PersonaHeader is the side channel a manager uses to act as another member.
const PersonaHeader = "X-Act-As-Member"

// ResolvePersona validates a persona target against the caller. Rule order
// matters: role gate, existence, then team match. The real caller's user and
// email are kept on the context for the audit trail.
func ResolvePersona(db *gorm.DB, caller *models.TeamMember, targetID uint) (*models.TeamMember, int, string) {
	if caller == nil || !permissions.IsManager(caller.Role) {
		return nil, fiber.StatusForbidden, "Only account owners and managers can act as another member"
	}

	var target models.TeamMember
	if err := db.First(&target, targetID).Error; err != nil {
		return nil, fiber.StatusNotFound, "Team member not found"
	}

	if target.TeamID != caller.TeamID {
		return nil, fiber.StatusForbidden, "Team member belongs to a different team"
	}

	return &target, 0, ""
}

// WithPersona applies the X-Act-As-Member override. Runs after Protected().
func WithPersona() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(PersonaHeader)
		if header == "" {
			return c.Next()
		}

		rc := Context(c)
		target, status, msg := ResolvePersona(config.DB, rc.Membership, utils.ParseUint(header))
		if target == nil {
			if status == fiber.StatusForbidden && rc.Membership != nil {
				return utils.ForbiddenResponse(c, msg, rc.Membership.Role)
			}
			return utils.ErrorResponse(c, status, msg, nil)
		}

		rc.Persona = target

		logrus.WithFields(logrus.Fields{
			"user_id":    rc.User.ID,
			"email":      rc.User.Email,
			"persona_id": target.ID,
			"team_id":    target.TeamID,
			"path":       c.Path(),
		}).Info("persona override active")

		return c.Next()
	}
}
