package repository

import (
	"context"
	"fmt"

	"terrasite_backend/platform/config"
	"terrasite_backend/platform/db"
	"terrasite_backend/platform/logger"
)

// Store is an opened repository together with whatever must be closed on shutdown.
type Store struct {
	Repository
	// Ping checks backend reachability for /health. Nil for the file store.
	Ping  func(ctx context.Context) error
	close func()
}

// Close releases the underlying connections.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open builds the repository selected by APP_LEADS_STORE, running schema
// migrations for the database backends.
func Open(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (*Store, error) {
	switch cfg.GetLeadsStore() {
	case config.StoreFile:
		log.Info("using JSON file lead store", "path", cfg.GetLeadsFile())
		return &Store{Repository: NewFileRepository(cfg.GetLeadsFile(), log)}, nil

	case config.StoreSQLite:
		conn, err := db.OpenSQLite(cfg.GetSQLitePath())
		if err != nil {
			return nil, err
		}
		if err := db.MigrateSQLite(ctx, conn); err != nil {
			conn.Close()
			return nil, err
		}
		log.Info("using SQLite lead store", "path", cfg.GetSQLitePath())
		return &Store{
			Repository: NewSQLiteRepository(conn),
			Ping:       conn.PingContext,
			close:      func() { _ = conn.Close() },
		}, nil

	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := db.MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("using Postgres lead store")
		return &Store{
			Repository: NewPostgresRepository(pool),
			Ping:       pool.Ping,
			close:      pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown lead store %q", cfg.GetLeadsStore())
	}
}
