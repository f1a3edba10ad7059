package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/citypulse/citypulse/app/api"
	"github.com/citypulse/citypulse/app/cfg"
	"github.com/citypulse/citypulse/app/database"
	"github.com/citypulse/citypulse/app/enrich"
	"github.com/citypulse/citypulse/app/geocoder"
	"github.com/citypulse/citypulse/app/providers"
	"github.com/citypulse/citypulse/app/search"
	"github.com/citypulse/citypulse/app/tasks"
)

func main() {
	appConfig, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appConfig == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appConfig.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting CityPulse server", "version", appConfig.Version)

	db, err := database.NewConnection(appConfig.DBPath)
	if err != nil {
		slog.Error("Failed to open cache database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Cache database ready", "path", appConfig.DBPath, "migration_version", version, "dirty", dirty)

	configCache := providers.NewConfigCache(appConfig.ProvidersDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load provider configurations", "error", err)
		os.Exit(1)
	}
	slog.Info("Provider configurations loaded", "count", configCache.GetConfigCount())

	responseCache := database.NewResponseCacheRepository(db)
	registry := providers.BuildRegistry(configCache, responseCache, appConfig)
	slog.Info("Providers registered", "enabled", registry.Names())

	requestTimeout := time.Duration(appConfig.RequestTimeoutMs) * time.Millisecond
	geo := geocoder.New(appConfig.GeocoderURL, appConfig.UserAgent, requestTimeout, 24*time.Hour)
	extractor := enrich.NewExtractor(&http.Client{Timeout: requestTimeout}, appConfig.UserAgent)

	aggregator := search.NewAggregator(geo, registry, extractor, appConfig.MaxConcurrentFetches)

	scheduler := tasks.NewScheduler(aggregator)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(aggregator, registry, appConfig.Version)
	server := api.NewServer(apiHandler, appConfig.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appConfig.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("HTTP server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
