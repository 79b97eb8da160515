package handler

import (
	"encoding/json"

	"github.com/gofiber/fiber/v3"

	"github.com/asadsehto/savetube/internal/middleware"
	"github.com/asadsehto/savetube/internal/model"
	"github.com/asadsehto/savetube/internal/service"
)

type SaveHandler struct {
	svc *service.SaveService
}

func NewSaveHandler(svc *service.SaveService) *SaveHandler {
	return &SaveHandler{svc: svc}
}

// Save handles POST /api/videos — the saveVideo message from the
// annotation engine. Responds {"status":"ok"} on first save of a url and
// {"status":"exists"} when the record is already present.
func (h *SaveHandler) Save(c fiber.Ctx) error {
	var req model.SaveRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Request body must be JSON")
	}

	if req.Action != model.ActionSaveVideo {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "UNSUPPORTED_ACTION", "action must be saveVideo")
	}

	cleanURL, msg := middleware.ValidateVideoURL(req.Data.URL)
	if msg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_URL", msg)
	}
	req.Data.URL = cleanURL
	req.Data.Title = middleware.ValidateTitle(req.Data.Title)
	req.Data.Thumbnail = middleware.ValidateThumbnail(req.Data.Thumbnail)

	status, err := h.svc.SaveVideo(c.Context(), req.Data)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save video")
	}

	Metrics.SavesTotal.WithLabelValues(string(status)).Inc()
	return c.JSON(model.SaveResponse{Status: status})
}
