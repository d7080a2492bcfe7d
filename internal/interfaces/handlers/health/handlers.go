package health

import (
	"time"

	"carbon-backend/internal/chain"
	"carbon-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// DBPinger is optional; when nil the database is reported as disconnected.
type DBPinger interface {
	Ping() error
}

type Handlers struct {
	DB      DBPinger
	Rdb     *redis.Client
	Gateway chain.Gateway
}

type depStatus struct {
	Status string `json:"status"`
	PingMs *int64 `json:"pingMs"`
}

// JSON GET /health/json — reports each dependency with its ping latency.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	deps := fiber.Map{}

	dbStatus := depStatus{Status: "disconnected"}
	if h.DB != nil {
		start := time.Now()
		if err := h.DB.Ping(); err == nil {
			ms := time.Since(start).Milliseconds()
			dbStatus = depStatus{Status: "connected", PingMs: &ms}
		} else {
			dbStatus.Status = "error"
		}
	}
	deps["database"] = dbStatus

	redisStatus := depStatus{Status: "disconnected"}
	if h.Rdb != nil {
		start := time.Now()
		if err := h.Rdb.Ping(c.Context()).Err(); err == nil {
			ms := time.Since(start).Milliseconds()
			redisStatus = depStatus{Status: "connected", PingMs: &ms}
		} else {
			redisStatus.Status = "error"
		}
	}
	deps["redis"] = redisStatus

	chainStatus := "disconnected"
	if h.Gateway != nil {
		if h.Gateway.IsConnected() {
			chainStatus = "connected"
		} else {
			chainStatus = "mock"
		}
	}
	deps["chain"] = fiber.Map{"status": chainStatus}

	status := "ok"
	if dbStatus.Status == "error" || redisStatus.Status == "error" {
		status = "degraded"
	}

	return response.Success(c, "Health", fiber.Map{
		"status":       status,
		"dependencies": deps,
	}, nil)
}
