package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"arrowhead/config"
	"arrowhead/models"
	"arrowhead/utils"
)

// RequestContext carries the resolved identity for one request. It is built
// fresh per request and threaded explicitly; nothing here is cached across
// requests.
type RequestContext struct {
	User       *models.User
	Membership *models.TeamMember // nil for authenticated-but-teamless callers
	Persona    *models.TeamMember // set when a manager acts as another member
}

// EffectiveMember is the membership all ownership checks run against: the
// persona when one is active, the caller's own membership otherwise.
func (rc *RequestContext) EffectiveMember() *models.TeamMember {
	if rc.Persona != nil {
		return rc.Persona
	}
	return rc.Membership
}

// Role returns the caller's own role (never the persona's).
func (rc *RequestContext) Role() string {
	if rc.Membership == nil {
		return ""
	}
	return rc.Membership.Role
}

// TeamID returns the caller's team, 0 when teamless.
func (rc *RequestContext) TeamID() uint {
	if rc.Membership == nil {
		return 0
	}
	return rc.Membership.TeamID
}

// Context pulls the request context set by Protected().
func Context(c *fiber.Ctx) *RequestContext {
	return c.Locals("reqctx").(*RequestContext)
}

func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Try to get token from Authorization header first
		var token string
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			// Check if it's a Bearer token
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid authorization format",
				})
			}
			token = tokenParts[1]
		} else {
			// Fall back to cookie if header not present
			token = c.Cookies("access_token")
			if token == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Authorization required",
				})
			}
		}

		// Parse and validate JWT
		claims, err := utils.ParseJWTToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		// Find user
		var user models.User
		if err := config.DB.First(&user, claims.UserID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "User not found",
			})
		}

		// Check if user is active
		if !user.IsActive {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Account is not active",
			})
		}

		// Verify token version
		if claims.TokenVersion != user.TokenVersion {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token version",
			})
		}

		// Resolve team membership. A missing row is not an error: the
		// caller proceeds as authenticated-but-teamless so onboarding
		// endpoints still work.
		rc := &RequestContext{User: &user}
		var membership models.TeamMember
		err = config.DB.Where("user_id = ?", user.ID).First(&membership).Error
		if err == nil {
			rc.Membership = &membership
		} else if err != gorm.ErrRecordNotFound {
			return utils.InternalError(c, "Failed to resolve membership", err)
		}

		c.Locals("user", &user)
		c.Locals("reqctx", rc)

		return c.Next()
	}
}

// RequireMembership rejects teamless callers. Placed after Protected() on
// routes that need a tenant.
func RequireMembership() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc := Context(c)
		if rc.Membership == nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "You are not a member of any team",
			})
		}
		return c.Next()
	}
}
