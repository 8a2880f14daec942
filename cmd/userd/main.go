package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	usvchttp "github.com/singhpravendra/user-service/internal/adapter/http"
	"github.com/singhpravendra/user-service/internal/adapter/memory"
	usvcnats "github.com/singhpravendra/user-service/internal/adapter/nats"
	usvcotel "github.com/singhpravendra/user-service/internal/adapter/otel"
	"github.com/singhpravendra/user-service/internal/adapter/postgres"
	"github.com/singhpravendra/user-service/internal/adapter/prometheus"
	"github.com/singhpravendra/user-service/internal/adapter/ristretto"
	"github.com/singhpravendra/user-service/internal/config"
	"github.com/singhpravendra/user-service/internal/logger"
	"github.com/singhpravendra/user-service/internal/middleware"
	"github.com/singhpravendra/user-service/internal/port/events"
	"github.com/singhpravendra/user-service/internal/port/repository"
	"github.com/singhpravendra/user-service/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	slog.SetDefault(log)
	defer logCloser.Close()

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"backend", cfg.Storage.Backend,
	)

	ctx := context.Background()

	// --- Storage ---
	var (
		repo   repository.UserRepository
		checks []usvchttp.ReadinessCheck
	)
	switch cfg.Storage.Backend {
	case "postgres":
		if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		slog.Info("migrations applied")

		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()
		slog.Info("postgres connected")

		repo = postgres.NewRepository(pool)
		checks = append(checks, usvchttp.ReadinessCheck{Name: "postgres", Check: pool.Ping})
	default:
		repo = memory.New()
	}

	if cfg.Cache.Enabled {
		cached, err := ristretto.New(repo, cfg.Cache.MaxSizeMB<<20, cfg.Cache.TTL)
		if err != nil {
			return fmt.Errorf("cache: %w", err)
		}
		defer cached.Close()
		repo = cached
		slog.Info("user cache enabled", "max_size_mb", cfg.Cache.MaxSizeMB, "ttl", cfg.Cache.TTL)
	}

	// --- Events ---
	var pub events.Publisher = events.Noop{}
	if cfg.NATS.Enabled {
		np, err := usvcnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = np.Close() }()
		pub = np
		checks = append(checks, usvchttp.ReadinessCheck{Name: "nats", Check: np.Ping})
	}

	// --- Tracing ---
	if cfg.Otel.Enabled {
		shutdown, err := usvcotel.InitTracer(ctx, cfg.Logging.Service, cfg.Otel.Endpoint)
		if err != nil {
			return fmt.Errorf("otel: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Error("otel shutdown failed", "error", err)
			}
		}()
	}

	// --- Services ---
	userSvc := service.NewUserService(repo, pub)

	handlers := &usvchttp.Handlers{Users: userSvc}
	health := &usvchttp.HealthHandlers{Service: cfg.Logging.Service, Checks: checks}

	r := chi.NewRouter()

	// Middleware, outermost first.
	r.Use(usvchttp.CORS(cfg.Server.CORSOrigin))
	r.Use(usvchttp.SecurityHeaders)
	r.Use(middleware.TraceID)
	if cfg.Otel.Enabled {
		r.Use(usvcotel.HTTPMiddleware(cfg.Logging.Service))
	}
	var metrics *prometheus.Metrics
	if cfg.Metrics.Enabled {
		metrics = prometheus.New()
		r.Use(metrics.Instrument)
	}
	r.Use(middleware.RequestLogger)
	r.Use(usvchttp.Recover)

	// Routes go after the middleware stack; chi rejects the reverse order.
	if metrics != nil {
		r.Handle("/metrics", metrics.Handler())
	}
	usvchttp.MountRoutes(r, handlers, health)

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
