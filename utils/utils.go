package utils

import (
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"arrowhead/config"
	"arrowhead/locks"
)

// ErrorResponse creates a standardized error response
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	response := fiber.Map{
		"success": false,
		"error":   message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	return c.Status(status).JSON(response)
}

// SuccessResponse creates a standardized success response
func SuccessResponse(data interface{}) fiber.Map {
	return fiber.Map{
		"success": true,
		"data":    data,
	}
}

// ForbiddenResponse is a 403 that includes the caller's current role so
// clients can see which role fell short.
func ForbiddenResponse(c *fiber.Ctx, message, role string) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"success": false,
		"error":   message,
		"details": "current role: " + role,
	})
}

// LockedResponse is a 423 carrying the competing lease so callers can poll
// until the expiry.
func LockedResponse(c *fiber.Ctx, lease locks.Lease) error {
	return c.Status(fiber.StatusLocked).JSON(fiber.Map{
		"success":    false,
		"error":      "Resource is locked by another member",
		"locked_by":  lease.HolderID,
		"expires_at": lease.ExpiresAt.Format(time.RFC3339),
	})
}

// InternalError logs the failure and returns a 500. Details are redacted
// outside development so internals never leak to production callers.
func InternalError(c *fiber.Ctx, message string, err error) error {
	logrus.WithFields(logrus.Fields{
		"path":  c.Path(),
		"error": err,
	}).Error(message)

	// Send to Sentry; a no-op when no DSN is configured
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("path", c.Path())
		scope.SetExtra("message", message)
		sentry.CaptureException(err)
	})

	if config.AppConfig.Environment == "production" {
		return ErrorResponse(c, fiber.StatusInternalServerError, message, nil)
	}
	return ErrorResponse(c, fiber.StatusInternalServerError, message, err)
}

// ParseUint safely parses a string to uint
func ParseUint(s string) uint {
	i, _ := strconv.ParseUint(s, 10, 32)
	return uint(i)
}

// Pointer returns a pointer to the given value
func Pointer[T any](v T) *T {
	return &v
}

// PaginatedResponse structure for paginated results
type PaginatedResponse struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}
