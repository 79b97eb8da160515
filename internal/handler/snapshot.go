package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/asadsehto/savetube/internal/middleware"
	"github.com/asadsehto/savetube/internal/model"
	"github.com/asadsehto/savetube/internal/store"
)

type SnapshotHandler struct {
	st store.Store
}

func NewSnapshotHandler(st store.Store) *SnapshotHandler {
	return &SnapshotHandler{st: st}
}

// GetVideos handles GET /api/videos — the global saved set.
func (h *SnapshotHandler) GetVideos(c fiber.Ctx) error {
	data, err := h.st.Get(c.Context(), store.KeyVideos)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load videos")
	}
	if data.Videos == nil {
		data.Videos = []model.VideoRecord{}
	}
	return c.JSON(data.Videos)
}

// GetPlaylists handles GET /api/playlists.
func (h *SnapshotHandler) GetPlaylists(c fiber.Ctx) error {
	data, err := h.st.Get(c.Context(), store.KeyPlaylists)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load playlists")
	}
	if data.Playlists == nil {
		data.Playlists = []model.Playlist{}
	}
	return c.JSON(data.Playlists)
}
