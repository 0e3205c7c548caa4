package app

import (
	"context"
	"log/slog"
	"time"

	"ddscanner/internal/config"
	"ddscanner/internal/infrastructure/llm"
	"ddscanner/internal/infrastructure/reddit"
	"ddscanner/internal/infrastructure/scheduler"
	"ddscanner/internal/infrastructure/store"
	"ddscanner/internal/infrastructure/telegram"
	"ddscanner/internal/logging"
	"ddscanner/internal/ports"
	"ddscanner/internal/server"
	"ddscanner/internal/usecase"
)

// Application wires configuration to use cases and lifecycle entry points.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *store.JSONLStore
	pipeline *usecase.Pipeline
}

// New builds a runnable application instance from validated configuration.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	recordStore := store.New(cfg.Store.Path)
	source := reddit.NewClient(cfg.Reddit, cfg.Sweep.TopWindow, baseLogger.With("component", "reddit"))

	var enricher ports.Enricher
	if cfg.Ollama.Endpoint != "" {
		enricher = llm.NewOllamaClient(cfg.Ollama, baseLogger.With("component", "ollama"))
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram)
	}

	pipeline := usecase.NewPipeline(cfg.Sweep, cfg.Notifications.TopN, usecase.PipelineDeps{
		Source:   source,
		Comments: source,
		Enricher: enricher,
		Store:    recordStore,
		Notifier: notifier,
		Logger:   baseLogger.With("component", "pipeline"),
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		store:    recordStore,
		pipeline: pipeline,
	}
}

// RunSweep executes one full batch sweep.
func (a *Application) RunSweep(ctx context.Context) error {
	return a.pipeline.Sweep(ctx)
}

// RunScheduled starts cron-driven sweeps and blocks until ctx is done.
func (a *Application) RunScheduled(ctx context.Context) error {
	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())

	job := func(trigger time.Time) {
		a.logger.Info("scheduled sweep starting", "trigger", trigger)
		if err := a.pipeline.Sweep(ctx); err != nil {
			a.logger.Error("scheduled sweep failed", "error", err)
		}
	}

	if err := driver.Start(ctx, job); err != nil {
		return err
	}

	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return driver.Stop(stopCtx)
}

// SortLog re-runs the terminal rank pass over the existing log.
func (a *Application) SortLog() error {
	return a.pipeline.SortLog()
}

// Serve starts the read-only listing server over the persisted log.
func (a *Application) Serve(ctx context.Context) error {
	srv, err := server.New(a.cfg.Server.Addr, a.store, a.logger.With("component", "server"))
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}
