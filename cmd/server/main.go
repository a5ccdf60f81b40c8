package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"pricetrack/internal/config"
	"pricetrack/internal/connectivity"
	"pricetrack/internal/logging"
	"pricetrack/internal/remote"
	"pricetrack/internal/scheduler"
	"pricetrack/internal/server/handlers"
	"pricetrack/internal/server/router"
	"pricetrack/internal/server/ws"
	"pricetrack/internal/store"
	syncengine "pricetrack/internal/sync"
	"pricetrack/internal/trend"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logging.Must(logging.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	db, err := store.Open(cfg.Store.DataDir)
	if err != nil {
		baseLogger.Fatal("failed to open durable store", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			baseLogger.Error("failed to close durable store", zap.Error(err))
		}
	}()

	queueStore := store.NewQueueStore(db, logging.Named(baseLogger, "store.queue"))
	gateway := remote.NewRestClient(cfg.Remote, logging.Named(baseLogger, "remote"))

	monitor := connectivity.NewMonitor(gateway.Ping, cfg.Sync.ProbeInterval,
		logging.Named(baseLogger, "connectivity"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine := syncengine.NewEngine(ctx, queueStore, gateway, monitor,
		logging.Named(baseLogger, "sync"))

	hub := ws.NewHub(logging.Named(baseLogger, "ws"))
	engine.SetEvents(hub)
	monitor.Watch(hub.ConnectivityChanged)

	engine.Start(ctx)
	monitor.Start(ctx)
	defer monitor.Stop()

	analyzer := trend.NewAnalyzer(trend.Config{
		WindowSize:     cfg.Trend.WindowSize,
		AlertThreshold: cfg.Trend.AlertThreshold,
		MaxAlerts:      cfg.Trend.MaxAlerts,
	})

	sched := scheduler.NewScheduler(cfg.Sync, engine, gateway, analyzer,
		logging.Named(baseLogger, "scheduler"))
	sched.Start()
	defer sched.Stop()

	priceHandler := handlers.NewPriceHandler(engine, gateway, logging.Named(baseLogger, "handlers.prices"))
	dashboardHandler := handlers.NewDashboardHandler(gateway, analyzer, logging.Named(baseLogger, "handlers.dashboard"))
	syncHandler := handlers.NewSyncHandler(engine, monitor, logging.Named(baseLogger, "handlers.sync"))

	engineRouter := router.New(priceHandler, dashboardHandler, syncHandler, hub,
		logging.Named(baseLogger, "router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engineRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

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
