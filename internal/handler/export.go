package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/asadsehto/savetube/internal/middleware"
	"github.com/asadsehto/savetube/internal/model"
	"github.com/asadsehto/savetube/internal/service"
)

type ExportHandler struct {
	svc *service.SaveService
}

func NewExportHandler(svc *service.SaveService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// Export handles GET /api/export — a full JSON dump of both collections,
// suitable for backup or migration.
func (h *ExportHandler) Export(c fiber.Ctx) error {
	data, err := h.svc.Snapshot(c.Context())
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to export data")
	}

	resp := model.ExportResponse{
		Videos:      data.Videos,
		Playlists:   data.Playlists,
		GeneratedAt: time.Now().UTC(),
	}
	if resp.Videos == nil {
		resp.Videos = []model.VideoRecord{}
	}
	if resp.Playlists == nil {
		resp.Playlists = []model.Playlist{}
	}

	c.Set("Content-Disposition", "attachment; filename=savetube-export.json")
	return c.JSON(resp)
}
