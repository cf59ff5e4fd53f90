// Package archive copies every accepted lead into object storage as a
// standalone JSON document. Archiving is best effort.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"terrasite_backend/internal/adapters/storage"
	"terrasite_backend/internal/events"
	"terrasite_backend/internal/leads/domain"
	"terrasite_backend/platform/logger"
)

const (
	keyPrefix   = "leads/"
	contentType = "application/json"

	putTimeout = 30 * time.Second
)

// Key is the object key a lead is archived under.
func Key(id int64) string {
	return fmt.Sprintf("%s%d.json", keyPrefix, id)
}

// Archiver writes leads to a bucket.
type Archiver struct {
	store  storage.ObjectStore
	bucket string
	log    *logger.Logger
}

// New creates an archiver for bucket.
func New(store storage.ObjectStore, bucket string, log *logger.Logger) *Archiver {
	return &Archiver{store: store, bucket: bucket, log: log}
}

// Init makes sure the bucket exists.
func (a *Archiver) Init(ctx context.Context) error {
	return a.store.EnsureBucketExists(ctx, a.bucket)
}

// RegisterHandlers subscribes to lead events on the bus.
func (a *Archiver) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadAccepted{}.EventName(), a)
	a.log.Info("lead archive registered event handlers", "bucket", a.bucket)
}

// Handle implements events.Handler. Failures are logged and swallowed.
func (a *Archiver) Handle(ctx context.Context, event events.Event) error {
	e, ok := event.(events.LeadAccepted)
	if !ok {
		return nil
	}

	if err := a.Put(ctx, e.Lead); err != nil {
		a.log.Warn("lead archive failed", "lead_id", e.Lead.ID, "error", err)
	}
	return nil
}

// Put stores lead under Key(lead.ID), replacing any earlier copy.
func (a *Archiver) Put(ctx context.Context, lead domain.Lead) error {
	data, err := json.MarshalIndent(lead, "", "  ")
	if err != nil {
		return fmt.Errorf("encode lead %d: %w", lead.ID, err)
	}

	putCtx, cancel := context.WithTimeout(ctx, putTimeout)
	defer cancel()

	return a.store.PutObject(putCtx, a.bucket, Key(lead.ID), contentType, bytes.NewReader(data), int64(len(data)))
}

// Get reads an archived lead back.
func (a *Archiver) Get(ctx context.Context, id int64) (domain.Lead, error) {
	rc, err := a.store.GetObject(ctx, a.bucket, Key(id))
	if err != nil {
		return domain.Lead{}, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("read archived lead %d: %w", id, err)
	}

	var lead domain.Lead
	if err := json.Unmarshal(data, &lead); err != nil {
		return domain.Lead{}, fmt.Errorf("decode archived lead %d: %w", id, err)
	}
	return lead, nil
}

// Backfill archives every lead that is not in the bucket yet and returns how
// many were written.
func (a *Archiver) Backfill(ctx context.Context, leads []domain.Lead) (int, error) {
	written := 0
	for _, lead := range leads {
		exists, err := a.store.ObjectExists(ctx, a.bucket, Key(lead.ID))
		if err != nil {
			return written, err
		}
		if exists {
			continue
		}
		if err := a.Put(ctx, lead); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}
