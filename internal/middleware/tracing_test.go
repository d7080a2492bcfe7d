package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTracingApp() *fiber.App {
	app := fiber.New()
	app.Use(Tracing())
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString(GetTraceID(c))
	})
	return app
}

func TestTracing_GeneratesTraceID(t *testing.T) {
	app := setupTracingApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)

	traceID := resp.Header.Get(traceIDHeader)
	_, err = uuid.Parse(traceID)
	assert.NoError(t, err)
}

func TestTracing_KeepsValidInboundTraceID(t *testing.T) {
	app := setupTracingApp()
	inbound := uuid.New().String()

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(traceIDHeader, inbound)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, inbound, resp.Header.Get(traceIDHeader))
}

func TestTracing_ReplacesMalformedTraceID(t *testing.T) {
	app := setupTracingApp()

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(traceIDHeader, "not-a-uuid")
	resp, err := app.Test(req)
	require.NoError(t, err)

	traceID := resp.Header.Get(traceIDHeader)
	assert.NotEqual(t, "not-a-uuid", traceID)
	_, err = uuid.Parse(traceID)
	assert.NoError(t, err)
}
