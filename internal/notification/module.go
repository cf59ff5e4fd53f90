// Package notification relays accepted leads to the operator. It subscribes
// to domain events so the leads module never knows about mail servers or bots.
package notification

import (
	"context"

	"terrasite_backend/internal/events"
	"terrasite_backend/internal/leads/domain"
	"terrasite_backend/platform/logger"
)

// Enqueuer hands a lead to the background queue instead of notifying inline.
type Enqueuer interface {
	EnqueueLeadNotify(ctx context.Context, lead domain.Lead) error
}

// Module listens for accepted leads and notifies about them.
type Module struct {
	dispatcher *Dispatcher
	queue      Enqueuer
	log        *logger.Logger
}

// New creates the module. queue may be nil, in which case notifications are
// sent from the event handler goroutine.
func New(dispatcher *Dispatcher, queue Enqueuer, log *logger.Logger) *Module {
	return &Module{dispatcher: dispatcher, queue: queue, log: log}
}

// RegisterHandlers subscribes to lead events on the bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadAccepted{}.EventName(), m)

	mode := "inline"
	if m.queue != nil {
		mode = "queue"
	}
	m.log.Info("notification module registered event handlers",
		"mode", mode,
		"channels", m.dispatcher.Channels(),
	)
}

// Handle implements events.Handler.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadAccepted:
		return m.handleLeadAccepted(ctx, e)
	default:
		return nil
	}
}

// handleLeadAccepted never returns delivery errors; they are logged.
func (m *Module) handleLeadAccepted(ctx context.Context, e events.LeadAccepted) error {
	if m.queue != nil {
		err := m.queue.EnqueueLeadNotify(ctx, e.Lead)
		if err == nil {
			return nil
		}
		m.log.NotificationFailed("queue", e.Lead.ID, err)
	}

	if !m.dispatcher.Enabled() {
		return nil
	}
	_ = m.dispatcher.Dispatch(ctx, e.Lead)
	return nil
}
