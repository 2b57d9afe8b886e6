package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"

	"smartbizmap.kr/internal/appconf"
	"smartbizmap.kr/internal/logging"
	"smartbizmap.kr/internal/restapi"
	"smartbizmap.kr/internal/webui"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := newLogger(cfg.Env)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logging.LogError(logger, "server stopped", err)
		os.Exit(1)
	}
}

// parseFlags reads the server configuration. The YouTube and Gemini keys
// fall back to the YOUTUBE_API_KEY and GEMINI_API_KEY environment variables.
func parseFlags(fs *flag.FlagSet, args []string, getenv func(string) string) (appconf.Config, error) {
	var cfg appconf.Config
	var env, apiKeysFlag string

	fs.IntVar(&cfg.Port, "port", 4000, "API server port")
	fs.StringVar(&env, "env", "development", "Environment (development|test|production)")
	fs.StringVar(&apiKeysFlag, "api-keys", "test", "Comma Separated API Keys (test, etc)")
	fs.IntVar(&cfg.RateLimit, "rate-limit", 100, "Requests per second per API key")
	fs.StringVar(&cfg.CatalogPath, "catalog", "", "Path to the TOML data catalog (default: embedded)")
	fs.StringVar(&cfg.OverridesPath, "overrides", "", "Path to the TOML override table (default: embedded)")
	fs.StringVar(&cfg.DataDir, "data-dir", "./data", "Base directory for relative source paths")
	fs.StringVar(&cfg.CacheBackend, "cache", "memory", "Cache backend (memory|sqlite|redis)")
	fs.StringVar(&cfg.CachePath, "cache-path", "bizmap-cache.db", "SQLite cache file")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", "localhost:6379", "Redis address for the redis cache backend")
	fs.DurationVar(&cfg.RefreshInterval, "refresh", 24*time.Hour, "Data reload interval (0 disables)")
	fs.StringVar(&cfg.YouTubeAPIKey, "youtube-key", getenv("YOUTUBE_API_KEY"), "YouTube Data API key")
	fs.StringVar(&cfg.GeminiAPIKey, "gemini-key", getenv("GEMINI_API_KEY"), "Gemini API key")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	cfg.Env = appconf.EnvFlagToEnvironment(env)
	cfg.ApiKeys = parseAPIKeys(apiKeysFlag)
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.RefreshInterval < 0 {
		return cfg, errors.New("refresh interval must not be negative")
	}
	return cfg, nil
}

func parseAPIKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func newLogger(env appconf.Environment) *slog.Logger {
	if env == appconf.Development {
		return slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	return logging.NewStructuredLogger(os.Stdout, slog.LevelInfo)
}

func run(cfg appconf.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, closeApp, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeApp()

	api := restapi.NewRestAPI(application)
	router := httprouter.New()
	api.SetRoutes(router)
	if cfg.Env == appconf.Development {
		ui := &webui.WebUI{Registry: application.Registry, Pipeline: application.Pipeline}
		ui.SetWebUIRoutes(router)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.Handler(router),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "env", cfg.Env.String())
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
