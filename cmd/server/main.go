// Package main is the entrypoint for the interview recorder server.
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

	"github.com/joho/godotenv"

	"github.com/examlab/recorder/internal/api"
	"github.com/examlab/recorder/internal/api/handler"
	mw "github.com/examlab/recorder/internal/api/middleware"
	"github.com/examlab/recorder/internal/api/response"
	"github.com/examlab/recorder/internal/cache"
	"github.com/examlab/recorder/internal/config"
	"github.com/examlab/recorder/internal/grader"
	"github.com/examlab/recorder/internal/questions"
	"github.com/examlab/recorder/internal/store"
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
	// 1. Load config — a .env file is a convenience, not a requirement
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "grader_provider", cfg.Grader.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Open the recording store
	fsStore, err := store.NewFSStore(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("open recording store: %w", err)
	}
	slog.Info("recording store ready", "dir", cfg.Storage.Dir)

	// 3. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 4. Load the question bank
	bank, err := questions.Load(cfg.Grader.QuestionsFile)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	slog.Info("question bank loaded", "questions", bank.Len())

	// 5. Create grading provider and start the worker pool
	provider, err := grader.NewProvider(cfg.Grader)
	if err != nil {
		return fmt.Errorf("create grading provider: %w", err)
	}
	slog.Info("grading provider initialized", "provider", provider.Name())

	svc := grader.NewService(provider, fsStore, bank, redisCache, cfg.Grader)
	svc.Start(cfg.Grader.Workers)
	defer svc.Stop()

	// 6. Build router with dependencies
	deps := api.Dependencies{
		RateLimit: mw.NewRateLimit(redisCache, cfg.Server.RateLimitPerMin),

		HealthHandler:    healthHandler(redisCache),
		UploadHandler:    handler.NewUploadHandler(fsStore, svc, redisCache, cfg.Server.UploadMaxBytes),
		ListVideos:       handler.NewListVideosHandler(fsStore, redisCache),
		CandidateResults: handler.NewCandidateResultsHandler(fsStore, redisCache, cfg.Grader.ExpectedQuestions),
		DeleteVideo:      handler.NewDeleteVideoHandler(fsStore, redisCache),
		NukeAll:          handler.NewNukeAllHandler(fsStore, redisCache),

		SessionStart:  handler.NewStartSessionHandler(fsStore),
		SessionGet:    handler.NewGetSessionHandler(fsStore),
		SessionUpload: handler.NewSessionUploadHandler(fsStore, svc, cfg.Server.UploadMaxBytes),
		SessionFinish: handler.NewFinishSessionHandler(fsStore),

		HomePage:     handler.NewPageHandler(cfg.Storage.StaticDir, "index.html"),
		ExaminerPage: handler.NewPageHandler(cfg.Storage.StaticDir, "examiner.html"),

		UploadsDir: cfg.Storage.Dir,
		StaticDir:  cfg.Storage.StaticDir,
	}

	router := api.NewRouter(deps)

	// 7. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Drain HTTP first so no new grading jobs arrive, then let the worker
	// pool finish what it already accepted.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// healthHandler checks cache connectivity. The store is plain filesystem and
// has no meaningful liveness probe.
func healthHandler(c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"cache": "ok",
		}

		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		if checks["cache"] != "ok" {
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
