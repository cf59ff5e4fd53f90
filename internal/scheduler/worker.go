package scheduler

import (
	"context"
	"fmt"

	"terrasite_backend/internal/leads/domain"
	"terrasite_backend/platform/config"
	"terrasite_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// LeadDispatcher sends a lead to the configured notifiers.
type LeadDispatcher interface {
	Dispatch(ctx context.Context, lead domain.Lead) error
}

type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	dispatcher LeadDispatcher
	log        *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, dispatcher LeadDispatcher, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 5
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
		Logger: newAsynqLogger(log),
	})

	w := newWorker(dispatcher, log)
	w.server = server
	return w, nil
}

func newWorker(dispatcher LeadDispatcher, log *logger.Logger) *Worker {
	w := &Worker{
		mux:        asynq.NewServeMux(),
		dispatcher: dispatcher,
		log:        log,
	}
	w.mux.HandleFunc(TaskLeadNotify, w.handleLeadNotify)
	return w
}

// Run blocks until ctx is cancelled or the server fails to start.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.server == nil {
		return nil
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
		return err
	}
	return nil
}

// handleLeadNotify reports success even when notifiers fail: those failures
// are logged by the dispatcher and must not be retried.
func (w *Worker) handleLeadNotify(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadNotifyPayload(task)
	if err != nil {
		return fmt.Errorf("parse %s payload: %v: %w", TaskLeadNotify, err, asynq.SkipRetry)
	}
	if payload.Lead.ID == 0 {
		return fmt.Errorf("%s payload without lead id: %w", TaskLeadNotify, asynq.SkipRetry)
	}

	if err := w.dispatcher.Dispatch(ctx, payload.Lead); err != nil {
		w.log.Warn("lead notification incomplete", "lead_id", payload.Lead.ID, "error", err)
	}
	return nil
}
