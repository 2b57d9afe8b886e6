package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"smartbizmap.kr/internal/app"
	"smartbizmap.kr/internal/appconf"
	"smartbizmap.kr/internal/cache"
	"smartbizmap.kr/internal/ingest"
	"smartbizmap.kr/internal/logging"
	"smartbizmap.kr/internal/lookup"
	"smartbizmap.kr/internal/pipeline"
	"smartbizmap.kr/internal/registry"
	"smartbizmap.kr/internal/session"
	"smartbizmap.kr/internal/telemetry"
)

const upstreamTimeout = 30 * time.Second

func loadCatalog(path string) (*appconf.Catalog, error) {
	if path == "" {
		return appconf.DefaultCatalog()
	}
	return appconf.LoadCatalog(path)
}

func loadOverrides(path string) (*registry.Overrides, error) {
	if path == "" {
		return registry.DefaultOverrides()
	}
	return registry.LoadOverrides(path)
}

// buildApplication wires every service dependency and performs the initial
// data load. The returned func releases them in reverse order.
func buildApplication(ctx context.Context, cfg appconf.Config, logger *slog.Logger) (*app.Application, func(), error) {
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading catalog: %w", err)
	}
	overrides, err := loadOverrides(cfg.OverridesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading overrides: %w", err)
	}

	reg := registry.New(overrides)
	metrics := telemetry.New()

	store, err := cache.Open(cache.Options{
		Backend:   cfg.CacheBackend,
		Path:      cfg.CachePath,
		RedisAddr: cfg.RedisAddr,
		Prefix:    "bizmap:",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening cache: %w", err)
	}

	httpClient := &http.Client{Timeout: upstreamTimeout}
	loader := &ingest.Loader{
		Fetcher: ingest.AutoFetcher{
			File: ingest.FileFetcher{BaseDir: cfg.DataDir},
			HTTP: ingest.HTTPFetcher{Client: httpClient},
		},
		Cache:     store,
		Namespace: cat.Version,
		Logger:    logger,
		Metrics:   metrics,
	}

	config := pipeline.Config{
		Registry:        reg,
		Loader:          loader,
		RefreshInterval: cfg.RefreshInterval,
		Logger:          logger,
		Metrics:         metrics,
	}
	config.ApplyCatalog(cat)

	manager, err := pipeline.New(config)
	if err != nil {
		logging.SafeCloseWithLogging(store, logger, "cache")
		return nil, nil, err
	}
	if err := manager.Start(ctx); err != nil {
		manager.Shutdown()
		logging.SafeCloseWithLogging(store, logger, "cache")
		return nil, nil, fmt.Errorf("loading data: %w", err)
	}

	sessions := session.NewStore(reg, manager.Run, logger, metrics)

	application := &app.Application{
		Config:   cfg,
		Logger:   logger,
		Registry: reg,
		Pipeline: manager,
		Sessions: sessions,
		Trends: &lookup.YouTubeClient{
			APIKey:  cfg.YouTubeAPIKey,
			HTTP:    httpClient,
			Cache:   store,
			Logger:  logger,
			Metrics: metrics,
		},
		Narrator: &lookup.GeminiClient{
			APIKey:  cfg.GeminiAPIKey,
			HTTP:    httpClient,
			Logger:  logger,
			Metrics: metrics,
		},
		Metrics: metrics,
	}

	closeApp := func() {
		sessions.Close()
		manager.Shutdown()
		logging.SafeCloseWithLogging(store, logger, "cache")
	}
	return application, closeApp, nil
}
