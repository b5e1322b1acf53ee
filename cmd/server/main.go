package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/ecovolt-ph/ecovolt-backend/internal/config"
	"github.com/ecovolt-ph/ecovolt-backend/internal/realtime"
	"github.com/ecovolt-ph/ecovolt-backend/internal/repository/mongodb"
	"github.com/ecovolt-ph/ecovolt-backend/internal/repository/sheets"
	"github.com/ecovolt-ph/ecovolt-backend/internal/scheduler"
	"github.com/ecovolt-ph/ecovolt-backend/internal/server/handlers"
	"github.com/ecovolt-ph/ecovolt-backend/internal/server/router"
	authsvc "github.com/ecovolt-ph/ecovolt-backend/internal/service/auth"
	inventorysvc "github.com/ecovolt-ph/ecovolt-backend/internal/service/inventory"
	reportingsvc "github.com/ecovolt-ph/ecovolt-backend/internal/service/reporting"
	telemetrysvc "github.com/ecovolt-ph/ecovolt-backend/internal/service/telemetry"
	"github.com/ecovolt-ph/ecovolt-backend/pkg/clients/alerts"
	"github.com/ecovolt-ph/ecovolt-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	hub := realtime.NewHub(baseLogger.Named("realtime.hub"))

	// Single-instance deployments publish straight to the in-process hub.
	// With Redis configured, events round-trip through pub/sub so every
	// instance's SSE clients see them.
	var publisher realtime.Publisher = hub
	if cfg.Redis.Addr != "" {
		bus, err := realtime.NewRedisBus(context.Background(), cfg.Redis, hub, baseLogger.Named("realtime.redis"))
		if err != nil {
			baseLogger.Fatal("failed to init redis bus", zap.Error(err))
		}
		defer func() {
			if err := bus.Close(); err != nil {
				baseLogger.Error("failed to close redis bus", zap.Error(err))
			}
		}()
		publisher = bus
		baseLogger.Info("redis event bus enabled", zap.String("addr", cfg.Redis.Addr))
	}

	var exporter sheets.Exporter
	if cfg.SheetsEnabled() {
		exporter, err = sheets.NewGoogleSheetExporter(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		baseLogger.Info("google sheets report export enabled")
	} else {
		baseLogger.Warn("google sheets credentials missing, report export disabled")
	}

	var notifier alerts.Notifier
	if cfg.Alerts.WebhookURL != "" {
		notifier = alerts.NewWebhookClient(cfg.Alerts)
		baseLogger.Info("alert webhook enabled")
	}

	inventorySvc := inventorysvc.NewService(mongoRepo, publisher, cfg.Inventory.WindowSize, baseLogger.Named("svc.inventory"))
	if err := inventorySvc.Refresh(context.Background()); err != nil {
		baseLogger.Warn("initial inventory refresh failed", zap.Error(err))
	}

	authSvc := authsvc.NewService(mongoRepo, cfg.Auth, baseLogger.Named("svc.auth"))
	telemetrySvc := telemetrysvc.NewService(mongoRepo, mongoRepo, publisher, notifier, cfg.Sensor.OfflineAfter, baseLogger.Named("svc.telemetry"))
	reportingSvc := reportingsvc.NewService(mongoRepo, mongoRepo, inventorySvc, exporter, baseLogger.Named("svc.reporting"))

	sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	engine := router.New(cfg, router.Handlers{
		Auth:      handlers.NewAuthHandler(authSvc, baseLogger.Named("handlers.auth")),
		Inventory: handlers.NewInventoryHandler(inventorySvc, baseLogger.Named("handlers.inventory")),
		Telemetry: handlers.NewTelemetryHandler(telemetrySvc, baseLogger.Named("handlers.telemetry")),
		Settings:  handlers.NewSettingsHandler(mongoRepo, publisher, baseLogger.Named("handlers.settings")),
		Stream:    handlers.NewStreamHandler(hub, baseLogger.Named("handlers.stream")),
		Reports:   handlers.NewReportsHandler(reportingSvc, telemetrySvc, baseLogger.Named("handlers.reports")),
	}, authSvc, baseLogger.Named("router"))

	// No WriteTimeout: it would sever long-lived SSE streams.
	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     engine,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
