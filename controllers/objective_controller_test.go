package controller

import (
	"io"
	"log"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arrowhead/locks"
)

// The lock gate shared by every mutating objective handler, including
// journey completion: a lock held by another member yields 423, the holder
// and an unlocked objective pass through.
func TestRequireUnlocked(t *testing.T) {
	locker := locks.NewMemoryLocker()
	oc := NewObjectiveController(nil, locker, log.New(io.Discard, "", 0))

	_, err := locker.Acquire(locks.ResourceObjective, 7, 10)
	require.NoError(t, err)

	app := fiber.New()
	app.Post("/objectives/:id/complete", func(c *fiber.Ctx) error {
		if handled, resp := oc.requireUnlocked(c, 7, 20); handled {
			return resp
		}
		return c.JSON(fiber.Map{"message": "Journey complete"})
	})
	app.Post("/objectives/:id/advance", func(c *fiber.Ctx) error {
		if handled, resp := oc.requireUnlocked(c, 7, 10); handled {
			return resp
		}
		return c.JSON(fiber.Map{"message": "advanced"})
	})

	// Member 20 is blocked while member 10 holds the lock
	res, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/objectives/7/complete", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusLocked, res.StatusCode)

	// The holder is not blocked by their own lock
	res, err = app.Test(httptest.NewRequest(fiber.MethodPost, "/objectives/7/advance", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	// Releasing the lock unblocks everyone
	require.NoError(t, locker.Release(locks.ResourceObjective, 7, 10))
	res, err = app.Test(httptest.NewRequest(fiber.MethodPost, "/objectives/7/complete", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}
