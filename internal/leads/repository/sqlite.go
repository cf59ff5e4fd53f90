package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"terrasite_backend/internal/leads/domain"
)

const sqliteSelectLeads = `
	SELECT id, name, services_json, description, budget, contact_method,
		phone, telegram, phone_number, call_time, email, accepted_at
	FROM leads
	ORDER BY id`

// SQLiteRepository stores leads in an embedded SQLite database. Write
// transactions start with BEGIN IMMEDIATE (see db.OpenSQLite), so another
// process appending to the same file waits instead of racing.
type SQLiteRepository struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLiteRepository wraps an open, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]domain.Lead, error) {
	rows, err := r.db.QueryContext(ctx, sqliteSelectLeads)
	if err != nil {
		return nil, &domain.StorageError{Op: "read", Err: err}
	}
	return scanSQLiteLeads(rows)
}

func (r *SQLiteRepository) Add(ctx context.Context, sub domain.Submission, acceptedAt time.Time) (domain.Lead, error) {
	return r.AddGuarded(ctx, sub, acceptedAt, nil)
}

func (r *SQLiteRepository) AddGuarded(ctx context.Context, sub domain.Submission, acceptedAt time.Time, guard Guard) (domain.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	services, err := json.Marshal(sub.Services)
	if err != nil {
		return domain.Lead{}, &domain.StorageError{Op: "encode services", Err: err}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Lead{}, &domain.StorageError{Op: "begin", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	var count int64
	if guard != nil {
		rows, err := tx.QueryContext(ctx, sqliteSelectLeads)
		if err != nil {
			return domain.Lead{}, &domain.StorageError{Op: "read", Err: err}
		}
		history, err := scanSQLiteLeads(rows)
		if err != nil {
			return domain.Lead{}, err
		}
		if err := guard(history); err != nil {
			return domain.Lead{}, err
		}
		count = int64(len(history))
	} else if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`).Scan(&count); err != nil {
		return domain.Lead{}, &domain.StorageError{Op: "count", Err: err}
	}

	lead := domain.NewLead(count+1, sub, acceptedAt)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO leads (id, name, services_json, description, budget, contact_method,
			phone, telegram, phone_number, call_time, email, accepted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, lead.Name, string(services), lead.Description, string(lead.Budget), string(lead.ContactMethod),
		lead.Phone, lead.Telegram, lead.PhoneNumber, lead.CallTime, lead.Email, lead.Timestamp,
	); err != nil {
		return domain.Lead{}, &domain.StorageError{Op: "insert", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return domain.Lead{}, &domain.StorageError{Op: "commit", Err: err}
	}
	return lead, nil
}

func scanSQLiteLeads(rows *sql.Rows) ([]domain.Lead, error) {
	defer rows.Close()

	leads := []domain.Lead{}
	for rows.Next() {
		var (
			lead     domain.Lead
			services string
		)
		if err := rows.Scan(
			&lead.ID, &lead.Name, &services, &lead.Description, &lead.Budget, &lead.ContactMethod,
			&lead.Phone, &lead.Telegram, &lead.PhoneNumber, &lead.CallTime, &lead.Email, &lead.Timestamp,
		); err != nil {
			return nil, &domain.StorageError{Op: "read", Err: err}
		}
		if err := json.Unmarshal([]byte(services), &lead.Services); err != nil {
			return nil, &domain.StorageError{Op: "decode services", Err: err}
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "read", Err: err}
	}
	return leads, nil
}

var _ Repository = (*SQLiteRepository)(nil)
