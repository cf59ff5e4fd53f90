package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"terrasite_backend/internal/notification"
	"terrasite_backend/internal/scheduler"
	"terrasite_backend/platform/config"
	"terrasite_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.NewWithFile(cfg.Env, cfg.LogFile)
	if err != nil {
		panic("failed to open log file: " + err.Error())
	}
	defer func() { _ = log.Close() }()
	log.Info("starting scheduler", "env", cfg.Env, "queue", cfg.AsynqQueueName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := notification.NewDispatcherFromConfig(cfg, log)
	if !dispatcher.Enabled() {
		log.Warn("no notification channel configured; tasks will be acknowledged without sending")
	}

	worker, err := scheduler.NewWorker(cfg, dispatcher, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	if err := worker.Run(ctx); err != nil {
		stop()
		_ = log.Close()
		os.Exit(1)
	}
	log.Info("scheduler stopped")
}
