package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"terrasite_backend/internal/leads/domain"
	"terrasite_backend/internal/notification/message"
	"terrasite_backend/platform/logger"
)

// sendTimeout bounds a single notifier call.
const sendTimeout = 30 * time.Second

// Notifier delivers a rendered lead notification over one channel.
type Notifier interface {
	Channel() string
	Send(ctx context.Context, msg message.Message) error
}

// Dispatcher fans a lead out to every configured notifier. Failures are
// logged per channel and never retried.
type Dispatcher struct {
	notifiers []Notifier
	loc       *time.Location
	log       *logger.Logger
}

// NewDispatcher builds a dispatcher. loc is the zone acceptance times are
// shown in; nil means the server's local zone.
func NewDispatcher(log *logger.Logger, loc *time.Location, notifiers ...Notifier) *Dispatcher {
	if loc == nil {
		loc = time.Local
	}
	return &Dispatcher{notifiers: notifiers, loc: loc, log: log}
}

// Enabled reports whether any notifier is configured.
func (d *Dispatcher) Enabled() bool {
	return d != nil && len(d.notifiers) > 0
}

// Channels lists the configured notifier channels.
func (d *Dispatcher) Channels() []string {
	if d == nil {
		return nil
	}
	names := make([]string, 0, len(d.notifiers))
	for _, n := range d.notifiers {
		names = append(names, n.Channel())
	}
	return names
}

// Dispatch sends lead through every notifier in turn. The returned error
// joins the per-channel failures, which have already been logged.
func (d *Dispatcher) Dispatch(ctx context.Context, lead domain.Lead) error {
	if !d.Enabled() {
		return nil
	}

	msg := message.Build(lead, d.loc)
	var errs []error
	for _, n := range d.notifiers {
		if err := d.send(ctx, n, msg); err != nil {
			d.log.NotificationFailed(n.Channel(), lead.ID, err)
			errs = append(errs, fmt.Errorf("%s: %w", n.Channel(), err))
			continue
		}
		d.log.Info("notification sent", "channel", n.Channel(), "lead_id", lead.ID)
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) send(ctx context.Context, n Notifier, msg message.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panic: %v", r)
		}
	}()

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	return n.Send(sendCtx, msg)
}
