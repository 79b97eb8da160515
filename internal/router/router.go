package router

import (
	"time"

	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/asadsehto/savetube/internal/handler"
	"github.com/asadsehto/savetube/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Save     *handler.SaveHandler
	Snapshot *handler.SnapshotHandler
	Stats    *handler.StatsHandler
	Export   *handler.ExportHandler
	Health   *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(middleware.NewCORS(corsOrigins))
	app.Use(handler.MetricsMiddleware())

	// Health checks (no auth, before the API group)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)

	// Prometheus metrics
	app.Get("/metrics", handler.MetricsHandler())

	// API routes
	api := app.Group("/api")

	// Save path is the hot one; keep a generous cap against runaway
	// page re-render loops.
	saveLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Max:    120,
		Window: time.Minute,
		KeyFn:  middleware.KeyByIP,
	})
	api.Post("/videos", h.Save.Save, saveLimiter.Handler())

	api.Get("/videos", h.Snapshot.GetVideos)
	api.Get("/playlists", h.Snapshot.GetPlaylists)
	api.Get("/stats", h.Stats.GetStats)
	api.Get("/export", h.Export.Export)
}
