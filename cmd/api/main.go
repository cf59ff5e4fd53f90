package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"terrasite_backend/internal/adapters/storage"
	"terrasite_backend/internal/archive"
	"terrasite_backend/internal/auth"
	"terrasite_backend/internal/events"
	apphttp "terrasite_backend/internal/http"
	"terrasite_backend/internal/http/router"
	"terrasite_backend/internal/leads"
	"terrasite_backend/internal/leads/repository"
	"terrasite_backend/internal/notification"
	"terrasite_backend/internal/scheduler"
	"terrasite_backend/platform/config"
	"terrasite_backend/platform/logger"
	"terrasite_backend/platform/retry"
	"terrasite_backend/platform/validator"

	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 10 * time.Second
	drainTimeout    = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log, err := logger.NewWithFile(cfg.Env, cfg.LogFile)
	if err != nil {
		panic("failed to open log file: " + err.Error())
	}
	defer func() { _ = log.Close() }()
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr, "store", cfg.LeadsStore)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var store *repository.Store
	if err := retry.Do(ctx, log, "lead store", 5, 2*time.Second, func() error {
		s, err := repository.Open(ctx, cfg, log)
		if err != nil {
			return err
		}
		store = s
		return nil
	}); err != nil {
		log.Error("failed to open lead store", "error", err)
		panic("failed to open lead store: " + err.Error())
	}
	defer store.Close()

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	queue, closeQueue := initNotificationQueue(cfg, log)
	if closeQueue != nil {
		defer closeQueue()
	}

	// Notification module subscribes to domain events (not HTTP-facing)
	dispatcher := notification.NewDispatcherFromConfig(cfg, log)
	notification.New(dispatcher, queue, log).RegisterHandlers(eventBus)

	initArchive(ctx, cfg, eventBus, log)

	leadsModule, err := leads.NewModule(store, eventBus, val, cfg, log)
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}
	authModule := auth.NewModule(cfg, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			leadsModule,
		},
	}
	if store.Ping != nil {
		app.Health = apphttp.HealthFunc(store.Ping)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
	}

	drainEvents(eventBus, log)
	log.Info("server stopped")
}

func initNotificationQueue(cfg config.SchedulerConfig, log *logger.Logger) (notification.Enqueuer, func()) {
	if cfg.GetRedisURL() == "" {
		log.Info("REDIS_URL not configured; notifications are sent in-process")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize notification queue client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

// initArchive subscribes the MinIO lead archive when it is configured. A
// bucket that cannot be prepared disables archiving, not the server.
func initArchive(ctx context.Context, cfg config.ArchiveConfig, bus events.Bus, log *logger.Logger) {
	if !cfg.IsMinIOEnabled() {
		log.Info("MINIO_ENDPOINT not configured; lead archive disabled")
		return
	}

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		return
	}

	archiver := archive.New(storageSvc, cfg.GetMinioBucketLeads(), log)
	if err := retry.Do(ctx, log, "ensure leads archive bucket", 5, 2*time.Second, func() error {
		return archiver.Init(ctx)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinioBucketLeads())
		return
	}
	archiver.RegisterHandlers(bus)
}

// drainEvents waits for in-flight notifications and archive writes.
func drainEvents(bus *events.InMemoryBus, log *logger.Logger) {
	done := make(chan struct{})
	go func() {
		bus.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(drainTimeout):
		log.Warn("timed out waiting for event handlers")
	}
}
