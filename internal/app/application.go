package app

import (
	"log/slog"

	"smartbizmap.kr/internal/appconf"
	"smartbizmap.kr/internal/lookup"
	"smartbizmap.kr/internal/pipeline"
	"smartbizmap.kr/internal/registry"
	"smartbizmap.kr/internal/session"
	"smartbizmap.kr/internal/telemetry"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware.
type Application struct {
	Config   appconf.Config
	Logger   *slog.Logger
	Registry *registry.Registry
	Pipeline *pipeline.Manager
	Sessions *session.Store
	Trends   lookup.TrendFetcher
	Narrator lookup.Narrator
	Metrics  *telemetry.Metrics
}
