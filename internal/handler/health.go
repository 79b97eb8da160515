package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/asadsehto/savetube/internal/store"
)

type HealthHandler struct {
	st      store.Store
	startAt time.Time
}

func NewHealthHandler(st store.Store) *HealthHandler {
	return &HealthHandler{st: st, startAt: time.Now()}
}

// Live handles GET /health/live — liveness probe.
func (h *HealthHandler) Live(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready handles GET /health/ready — readiness probe with a gateway check.
func (h *HealthHandler) Ready(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	overallStatus := "healthy"
	checks := fiber.Map{
		"store": checkStore(ctx, h.st),
	}
	if storeCheck, ok := checks["store"].(fiber.Map); ok {
		if storeCheck["status"] != "up" {
			overallStatus = "degraded"
		}
	}

	resp := fiber.Map{
		"status":         overallStatus,
		"checks":         checks,
		"uptime_seconds": int(time.Since(h.startAt).Seconds()),
	}

	status := fiber.StatusOK
	if overallStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(resp)
}

func checkStore(ctx context.Context, st store.Store) fiber.Map {
	start := time.Now()
	_, err := st.Get(ctx, store.KeyVideos)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return fiber.Map{
			"status":     "down",
			"latency_ms": latency,
			"error":      "read failed",
		}
	}
	return fiber.Map{
		"status":     "up",
		"latency_ms": latency,
	}
}
