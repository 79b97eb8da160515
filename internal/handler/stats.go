package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/asadsehto/savetube/internal/middleware"
	"github.com/asadsehto/savetube/internal/service"
)

type StatsHandler struct {
	svc *service.StatsService
}

func NewStatsHandler(svc *service.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// GetStats handles GET /api/stats.
func (h *StatsHandler) GetStats(c fiber.Ctx) error {
	stats, err := h.svc.Stats(c.Context())
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute stats")
	}
	return c.JSON(stats)
}
