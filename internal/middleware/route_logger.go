package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// RouteLogger logs one line per handled request with status, duration and
// trace ID. Health checks are skipped to keep the log readable.
func RouteLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/health/json" {
			return c.Next()
		}
		traceID := GetTraceID(c)
		if traceID == "" {
			traceID = "no-trace-id"
		}
		start := time.Now()
		err := c.Next()
		log.Info().
			Str("trace_id", traceID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Int64("ms", time.Since(start).Milliseconds()).
			Msg("Request handled")
		return err
	}
}
