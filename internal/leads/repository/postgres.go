package repository

import (
	"context"
	"time"

	"terrasite_backend/internal/leads/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSelectLeads = `
	SELECT id, name, services, description, budget, contact_method,
		phone, telegram, phone_number, call_time, email, accepted_at
	FROM leads
	ORDER BY id`

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository stores leads in Postgres. Appends take an exclusive
// table lock before reading the history, so several API processes can share
// one database and still see each other's leads in the guard.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) GetAll(ctx context.Context) ([]domain.Lead, error) {
	return queryLeads(ctx, r.pool)
}

func (r *PostgresRepository) Add(ctx context.Context, sub domain.Submission, acceptedAt time.Time) (domain.Lead, error) {
	return r.AddGuarded(ctx, sub, acceptedAt, nil)
}

func (r *PostgresRepository) AddGuarded(ctx context.Context, sub domain.Submission, acceptedAt time.Time, guard Guard) (domain.Lead, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Lead{}, &domain.StorageError{Op: "begin", Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `LOCK TABLE leads IN EXCLUSIVE MODE`); err != nil {
		return domain.Lead{}, &domain.StorageError{Op: "lock", Err: err}
	}

	var count int64
	if guard != nil {
		history, err := queryLeads(ctx, tx)
		if err != nil {
			return domain.Lead{}, err
		}
		if err := guard(history); err != nil {
			return domain.Lead{}, err
		}
		count = int64(len(history))
	} else if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM leads`).Scan(&count); err != nil {
		return domain.Lead{}, &domain.StorageError{Op: "count", Err: err}
	}

	lead := domain.NewLead(count+1, sub, acceptedAt)
	if _, err := tx.Exec(ctx, `
		INSERT INTO leads (id, name, services, description, budget, contact_method,
			phone, telegram, phone_number, call_time, email, accepted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		lead.ID, lead.Name, lead.Services, lead.Description, string(lead.Budget), string(lead.ContactMethod),
		lead.Phone, lead.Telegram, lead.PhoneNumber, lead.CallTime, lead.Email, lead.Timestamp,
	); err != nil {
		return domain.Lead{}, &domain.StorageError{Op: "insert", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Lead{}, &domain.StorageError{Op: "commit", Err: err}
	}
	return lead, nil
}

func queryLeads(ctx context.Context, q querier) ([]domain.Lead, error) {
	rows, err := q.Query(ctx, postgresSelectLeads)
	if err != nil {
		return nil, &domain.StorageError{Op: "read", Err: err}
	}

	leads, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Lead, error) {
		var lead domain.Lead
		err := row.Scan(
			&lead.ID, &lead.Name, &lead.Services, &lead.Description, &lead.Budget, &lead.ContactMethod,
			&lead.Phone, &lead.Telegram, &lead.PhoneNumber, &lead.CallTime, &lead.Email, &lead.Timestamp,
		)
		return lead, err
	})
	if err != nil {
		return nil, &domain.StorageError{Op: "read", Err: err}
	}
	if leads == nil {
		leads = []domain.Lead{}
	}
	return leads, nil
}

var _ Repository = (*PostgresRepository)(nil)
