package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Codify-design/fingerprint-backend/internal/metrics"
	"github.com/Codify-design/fingerprint-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newAdminTestApp wires the admin mutation routes with nil-DB services.
// Validation failures are rejected before any query runs, so these
// paths are exercisable without a database.
func newAdminTestApp() *fiber.App {
	flagService := services.NewFlagService(nil, metrics.NewNoop())
	ignoreService := services.NewIgnoreService(nil, metrics.NewNoop())
	handler := NewAdminHandler(nil, flagService, ignoreService, nil)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("app_id", "forum-main")
		return c.Next()
	})
	app.Post("/api/admin/flags", handler.SetFlag)
	app.Post("/api/admin/ignores", handler.SetIgnore)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) int {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestSetFlagRejectsMissingValue(t *testing.T) {
	app := newAdminTestApp()

	status := postJSON(t, app, "/api/admin/flags", `{"type": "hide"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestSetFlagRejectsUnknownType(t *testing.T) {
	app := newAdminTestApp()

	status := postJSON(t, app, "/api/admin/flags", `{"value": "abc123", "type": "quarantine"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestSetIgnoreRejectsMissingUsernames(t *testing.T) {
	app := newAdminTestApp()

	status := postJSON(t, app, "/api/admin/ignores", `{"username": "alice"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestSetIgnoreRejectsIdenticalUsernames(t *testing.T) {
	app := newAdminTestApp()

	status := postJSON(t, app, "/api/admin/ignores", `{"username": "alice", "other_username": "alice"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}
