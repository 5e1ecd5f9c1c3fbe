package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRequest(t *testing.T, app *fiber.App, path string) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	return resp.StatusCode
}

func TestNew(t *testing.T) {
	l, err := New(&Config{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, l)

	l, err = New(&Config{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))
}

func TestNewHonorsLevel(t *testing.T) {
	l, err := New(&Config{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.InfoLevel))
	assert.True(t, l.Core().Enabled(zap.WarnLevel))

	l, err = New(&Config{Level: "error", Format: "json"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.WarnLevel))
	assert.True(t, l.Core().Enabled(zap.ErrorLevel))

	_, err = New(&Config{Level: "verbose", Format: "json"})
	assert.ErrorContains(t, err, "invalid log level")
}

func TestWithRayID(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals("ray_id", "ray-123")
		withID := WithRayID(zap.NewNop(), c)
		assert.NotNil(t, withID)
		return nil
	})

	// No ray id in locals falls back to the bare logger.
	app.Get("/bare", func(c *fiber.Ctx) error {
		bare := zap.NewNop()
		assert.Same(t, bare, WithRayID(bare, c))
		return nil
	})

	req := newRequest(t, app, "/")
	assert.Equal(t, fiber.StatusOK, req)
	assert.Equal(t, fiber.StatusOK, newRequest(t, app, "/bare"))
}
