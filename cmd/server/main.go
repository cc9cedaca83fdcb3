// Package main is the entrypoint for the hireflow API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiranshivaraju/hireflow/internal/api"
	"github.com/kiranshivaraju/hireflow/internal/api/handler"
	mw "github.com/kiranshivaraju/hireflow/internal/api/middleware"
	"github.com/kiranshivaraju/hireflow/internal/api/response"
	"github.com/kiranshivaraju/hireflow/internal/auth"
	"github.com/kiranshivaraju/hireflow/internal/cache"
	"github.com/kiranshivaraju/hireflow/internal/config"
	"github.com/kiranshivaraju/hireflow/internal/storage"
	"github.com/kiranshivaraju/hireflow/internal/store"
	"github.com/kiranshivaraju/hireflow/internal/workflow"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "env", cfg.Server.Env, "bucket", cfg.Storage.Bucket)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create resume storage
	files, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("create resume storage: %w", err)
	}
	slog.Info("resume storage initialized", "bucket", cfg.Storage.Bucket, "endpoint", cfg.Storage.Endpoint)

	// 6. Build router with dependencies
	pgStore := store.NewPostgresStore(pool)
	router := api.NewRouter(buildDependencies(cfg, pgStore, redisCache, files))

	// 7. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// buildDependencies wires the services and handlers behind the router.
func buildDependencies(cfg *config.Config, s store.Store, c cache.Cache, files storage.FileStore) api.Dependencies {
	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTTL)
	accounts := auth.NewService(s, tokens)
	jobs := workflow.NewJobService(s, c, cfg.Server.StatsCacheTTL)
	apps := workflow.NewService(s, files, workflow.Options{
		ResumeMaxBytes: cfg.Storage.ResumeMaxBytes,
		Stats:          jobs,
	})

	return api.Dependencies{
		Auth:      mw.NewAuth(tokens),
		RateLimit: mw.NewRateLimit(c, cfg.RateLimit.RequestsPerMinute),

		HealthHandler: healthHandler(s, c),

		RegisterHandler: handler.NewRegisterHandler(accounts),
		LoginHandler:    handler.NewLoginHandler(accounts),

		ListJobsHandler: handler.NewListJobsHandler(jobs),
		GetJobHandler:   handler.NewGetJobHandler(jobs),

		SubmitHandler:           handler.NewSubmitHandler(apps, cfg.Storage.ResumeMaxBytes),
		CheckApplicationHandler: handler.NewCheckApplicationHandler(apps),
		MyApplicationsHandler:   handler.NewMyApplicationsHandler(apps),

		CreateJobHandler:       handler.NewCreateJobHandler(jobs),
		ListMyJobsHandler:      handler.NewListMyJobsHandler(jobs, false),
		RecentJobsHandler:      handler.NewListMyJobsHandler(jobs, true),
		UpdateJobStatusHandler: handler.NewUpdateJobStatusHandler(jobs),
		StatsHandler:           handler.NewStatsHandler(jobs),

		ListApplicationsHandler: handler.NewListApplicationsHandler(apps),
		GetApplicationHandler:   handler.NewGetApplicationHandler(apps),
		UpdateStatusHandler:     handler.NewUpdateStatusHandler(apps),
		AddNoteHandler:          handler.NewAddNoteHandler(apps),
		ListNotesHandler:        handler.NewListNotesHandler(apps),
		TimelineHandler:         handler.NewTimelineHandler(apps),
		ResumeHandler:           handler.NewResumeHandler(apps),
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

// healthHandler checks database and cache connectivity.
func healthHandler(db, c pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := db.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
