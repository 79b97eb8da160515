package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"

	"github.com/asadsehto/savetube/internal/config"
	"github.com/asadsehto/savetube/internal/handler"
	"github.com/asadsehto/savetube/internal/middleware"
	"github.com/asadsehto/savetube/internal/router"
	"github.com/asadsehto/savetube/internal/service"
	"github.com/asadsehto/savetube/internal/store"
)

func main() {
	cfg := config.Load()
	if path := os.Getenv("SAVETUBE_CONFIG"); path != "" {
		if err := cfg.ApplyFile(path); err != nil {
			log.Fatalf("config: %v", err)
		}
	}

	middleware.InitLogger(cfg.LogLevel, "savetubed")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.StoreURL, middleware.Logger)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	var pgStore *store.Postgres
	if pg, ok := st.(*store.Postgres); ok {
		pgStore = pg
	}
	if pgStore != nil {
		handler.InitMetrics(pgStore.Pool())
	} else {
		handler.InitMetrics(nil)
	}

	saveSvc := service.NewSaveService(st)
	statsSvc := service.NewStatsService(st)

	janitor := service.NewJanitor(st, cfg.JanitorInterval)
	go janitor.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      "SaveTube API",
		ServerHeader: "SaveTube",
	})

	router.Setup(app, &router.Handlers{
		Save:     handler.NewSaveHandler(saveSvc),
		Snapshot: handler.NewSnapshotHandler(st),
		Stats:    handler.NewStatsHandler(statsSvc),
		Export:   handler.NewExportHandler(saveSvc),
		Health:   handler.NewHealthHandler(st),
	}, cfg.CORSOrigins)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + cfg.Port)
	}()

	log.Printf("savetubed starting on :%s (env=%s)", cfg.Port, cfg.Environment)

	select {
	case err := <-errCh:
		log.Fatalf("server error: %v", err)
	case <-ctx.Done():
		log.Println("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}
}
