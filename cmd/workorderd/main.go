// workorderd is the HTTP API server: email processing, work-order CRUD,
// and CSV/XLSX exports.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/fieldstack/workorder-tracker/internal/aiextract"
	"github.com/fieldstack/workorder-tracker/internal/common"
	"github.com/fieldstack/workorder-tracker/internal/dedup"
	"github.com/fieldstack/workorder-tracker/internal/fetch"
	"github.com/fieldstack/workorder-tracker/internal/llm"
	"github.com/fieldstack/workorder-tracker/internal/llm/openai"
	"github.com/fieldstack/workorder-tracker/internal/pdftext"
	"github.com/fieldstack/workorder-tracker/internal/pipeline"
	"github.com/fieldstack/workorder-tracker/internal/repository"
	"github.com/fieldstack/workorder-tracker/internal/server"
	"github.com/fieldstack/workorder-tracker/internal/workorders"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.Open(ctx, repository.Config(cfg.Database), logger)
	if err != nil {
		logger.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	defer repository.Close(pool, logger)

	if err := repository.HealthCheck(ctx, pool, 3*time.Second, logger); err != nil {
		logger.Error("database health check failed", "err", err)
		os.Exit(1)
	}

	emails := repository.NewEmailRepository(pool, logger)
	orders := repository.NewWorkOrderRepository(pool, logger)

	var completer llm.ChatCompleter
	if cfg.LLM.Enabled() {
		completer = openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		logger.Info("ai extraction enabled", "model", cfg.LLM.Model)
	} else {
		logger.Info("ai extraction disabled, rule-based fallback only")
	}

	var ai pipeline.AIExtractor
	if completer != nil {
		ai = aiextract.New(aiextract.Config{
			Enabled:  true,
			Industry: cfg.LLM.Industry,
			Examples: cfg.LLM.IndustryExamples,
		}, fetch.NewStorageLoader(nil), pdftext.New(logger), completer, logger)
	}
	processor := pipeline.NewProcessor(logger, emails, orders, ai)

	var guard *dedup.Guard
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		guard = dedup.NewGuard(rdb)
		logger.Info("delivery guard enabled", "addr", cfg.Redis.Addr)
	}

	srv := server.New(logger, processor, workorders.NewService(orders, logger), guard, func(r *http.Request) error {
		return repository.HealthCheck(r.Context(), pool, 3*time.Second, logger)
	})

	httpSrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("http server listening", "addr", cfg.Server.HTTPAddr, "ai", processor.Capabilities().CanUseAIExtraction)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "err", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
