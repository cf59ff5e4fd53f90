// Package repository provides the lead stores: a JSON file, SQLite and Postgres.
package repository

import (
	"context"
	"time"

	"terrasite_backend/internal/leads/domain"
)

// Guard inspects the stored history right before an append. A non-nil error
// aborts the append and is returned unchanged.
type Guard func(history []domain.Lead) error

// Repository is an append-only store of accepted leads.
type Repository interface {
	// GetAll returns every lead in creation order.
	GetAll(ctx context.Context) ([]domain.Lead, error)
	// Add appends sub with id = current count + 1 and the given acceptance
	// time, and returns the stored lead once it is durable.
	Add(ctx context.Context, sub domain.Submission, acceptedAt time.Time) (domain.Lead, error)
	// AddGuarded is Add with guard run over the current history inside the
	// same critical section as the append. For the database stores that
	// section is a write-locked transaction, so it holds across processes.
	AddGuarded(ctx context.Context, sub domain.Submission, acceptedAt time.Time, guard Guard) (domain.Lead, error)
}
