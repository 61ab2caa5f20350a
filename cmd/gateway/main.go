// Package main is the entrypoint for the Vocoweb gateway server.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vocoweb/gateway/internal/cache"
	"github.com/vocoweb/gateway/internal/config"
	"github.com/vocoweb/gateway/internal/handler"
	"github.com/vocoweb/gateway/internal/metrics"
	"github.com/vocoweb/gateway/internal/middleware"
	"github.com/vocoweb/gateway/internal/proxy"
	"github.com/vocoweb/gateway/internal/server"
	"github.com/vocoweb/gateway/internal/session"
)

func main() {
	ctx := context.Background()

	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewPrometheus(registry)

	// Outbound backend client
	backend := proxy.New(cfg.BackendURL, proxy.NewHTTPClient(cfg.BackendTimeout), logger, recorder)

	// Session resolution
	sessions := session.NewHeaderProvider(cfg.SessionCookieName)

	// Rate limiter: Redis when configured, in-process otherwise
	var (
		cacheClient *cache.Cache
		limiter     middleware.IPLimiter
		localStop   func()
	)
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("connected to Redis")
		limiter = cache.NewIPRateLimiter(cacheClient, cfg.RateLimitPublicRPS, cfg.RateLimitPublicBurst)
	} else {
		local := middleware.NewLocalIPLimiter(cfg.RateLimitPublicRPS, cfg.RateLimitPublicBurst)
		limiter = local
		localStop = local.Stop
		logger.Info("Redis not configured, using in-process rate limiter")
	}

	// Handlers
	h := handler.New()
	healthHandler := newHealthHandler(backend, cacheClient)
	dashboardHandler := handler.NewDashboardHandler(backend, sessions, logger)
	previewHandler := handler.NewPreviewHandler(backend, sessions, logger)
	publishHandler := handler.NewPublishHandler(backend, logger)
	redesignHandler := handler.NewRedesignHandler(backend, sessions, logger)
	uploadHandler := handler.NewUploadHandler(backend, logger)
	waitlistHandler := handler.NewWaitlistHandler(backend, logger)
	leadsHandler := handler.NewLeadsHandler(backend, sessions, logger)

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Limiter: limiter,
		Metrics: recorder,
		Enabled: cfg.RateLimitPublicEnabled,
	}

	r := setupRouter(routerDeps{
		base:      h,
		health:    healthHandler,
		dashboard: dashboardHandler,
		preview:   previewHandler,
		publish:   publishHandler,
		redesign:  redesignHandler,
		upload:    uploadHandler,
		waitlist:  waitlistHandler,
		leads:     leadsHandler,
		registry:  registry,
		recorder:  recorder,
		rateLimit: rateLimitCfg,
		cfg:       cfg,
		logger:    logger,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	if cacheClient != nil {
		srv.OnShutdown("redis", func(ctx context.Context) error {
			return cacheClient.Close()
		})
	}
	if localStop != nil {
		srv.OnShutdown("rate limiter", func(ctx context.Context) error {
			localStop()
			return nil
		})
	}

	logger.Info("starting gateway",
		"port", cfg.AppPort,
		"backend_url", cfg.BackendURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newHealthHandler wires the readiness checks, tolerating a nil cache.
func newHealthHandler(backend *proxy.Client, cacheClient *cache.Cache) *handler.HealthHandler {
	if cacheClient == nil {
		return handler.NewHealthHandler(backend, nil)
	}
	return handler.NewHealthHandler(backend, cacheClient)
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// routerDeps bundles everything the router needs.
type routerDeps struct {
	base      *handler.Handler
	health    *handler.HealthHandler
	dashboard *handler.DashboardHandler
	preview   *handler.PreviewHandler
	publish   *handler.PublishHandler
	redesign  *handler.RedesignHandler
	upload    *handler.UploadHandler
	waitlist  *handler.WaitlistHandler
	leads     *handler.LeadsHandler
	registry  *prometheus.Registry
	recorder  metrics.Recorder
	rateLimit middleware.RateLimitConfig
	cfg       *config.Config
	logger    *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger))
	r.Use(middleware.Metrics(d.recorder))
	r.Use(middleware.MaxBody(d.cfg.MaxRequestBodySize))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: d.cfg.IsDevelopment()}))

	if origins := d.cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}

	// Operational endpoints
	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)
	r.Method("GET", "/metrics", promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{}))

	// Root info endpoint
	r.Get("/", d.base.Root)

	// Proxied API surface
	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", d.dashboard.Get)
		r.Get("/preview/{id}", d.preview.Get)

		r.Get("/publish/{id}/status", d.publish.Status)
		r.Post("/republish/{id}", d.publish.Republish)

		// Explicit dispatch; /api/redesign is a legacy alias for generate.
		r.Post("/redesign", d.redesign.Generate)
		r.Post("/redesign/generate", d.redesign.Generate)
		r.Post("/redesign/scrape", d.redesign.Scrape)

		r.Post("/upload/presign", d.upload.Presign)

		r.With(middleware.RateLimitPublic(d.rateLimit)).Post("/waitlist", d.waitlist.Join)
		r.Get("/waitlist", d.waitlist.Count)

		r.Get("/leads", d.leads.List)
		r.Patch("/leads/{id}", d.leads.UpdateStatus)
	})

	// 404 and 405 handlers
	r.NotFound(d.base.NotFound)
	r.MethodNotAllowed(d.base.MethodNotAllowed)

	return r
}
