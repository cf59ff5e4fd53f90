package repository

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"terrasite_backend/internal/leads/domain"
	"terrasite_backend/platform/config"
	"terrasite_backend/platform/db"
	"terrasite_backend/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 14, 9, 0, 0, 123456000, time.UTC)

func testLogger() *logger.Logger {
	return logger.NewWithWriter("production", io.Discard)
}

func sampleSubmission(email string) domain.Submission {
	return domain.Submission{
		Name:          "Иван Петров",
		Services:      []string{"Дизайн", "SEO <b>audit</b>"},
		Description:   "Нужен лендинг для нового жилого комплекса, с формой & картой",
		Budget:        domain.Budget150to300,
		ContactMethod: domain.ContactEmail,
		Email:         email,
	}
}

// testDatabaseURLEnv names a scratch Postgres database. The leads table in it
// is truncated by every test that uses it.
const testDatabaseURLEnv = "APP_TEST_DATABASE_URL"

var errTaken = errors.New("identity taken")

// postgresRepository connects to the scratch database, or skips the test.
func postgresRepository(t *testing.T) *PostgresRepository {
	t.Helper()
	url := os.Getenv(testDatabaseURLEnv)
	if url == "" {
		t.Skipf("%s not set", testDatabaseURLEnv)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, &config.Config{DatabaseURL: url})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, db.MigratePostgres(ctx, pool))

	_, err = pool.Exec(ctx, `TRUNCATE leads`)
	require.NoError(t, err)
	return NewPostgresRepository(pool)
}

// backends returns the file and SQLite stores, plus Postgres when a scratch
// database is configured.
func backends(t *testing.T) map[string]Repository {
	t.Helper()
	dir := t.TempDir()

	sqliteStore, err := Open(context.Background(), &config.Config{
		LeadsStore: config.StoreSQLite,
		SQLitePath: filepath.Join(dir, "db", "leads.db"),
	}, testLogger())
	require.NoError(t, err)
	t.Cleanup(sqliteStore.Close)

	repos := map[string]Repository{
		"file":   NewFileRepository(filepath.Join(dir, "data", "leads.json"), testLogger()),
		"sqlite": sqliteStore,
	}
	if os.Getenv(testDatabaseURLEnv) != "" {
		repos["postgres"] = postgresRepository(t)
	}
	return repos
}

func TestEmptyStore(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			leads, err := repo.GetAll(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, leads)
			assert.Empty(t, leads)
		})
	}
}

func TestSequentialIDs(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			const n = 5
			for i := 0; i < n; i++ {
				lead, err := repo.Add(ctx, sampleSubmission("a@b.com"), baseTime.Add(time.Duration(i)*time.Second))
				require.NoError(t, err)
				assert.Equal(t, int64(i+1), lead.ID)
			}

			leads, err := repo.GetAll(ctx)
			require.NoError(t, err)
			require.Len(t, leads, n)
			for i, lead := range leads {
				assert.Equal(t, int64(i+1), lead.ID)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sub := domain.Submission{
				Name:          "Ольга",
				Services:      []string{"Разработка"},
				Description:   "Описание проекта",
				Budget:        domain.Budget30to50,
				ContactMethod: domain.ContactPhone,
				PhoneNumber:   "8 (926) 123-45-67",
				CallTime:      "будни после 18:00",
			}

			stored, err := repo.Add(ctx, sub, baseTime)
			require.NoError(t, err)

			leads, err := repo.GetAll(ctx)
			require.NoError(t, err)
			require.Len(t, leads, 1)
			assert.Equal(t, stored, leads[0])

			at, err := leads[0].AcceptedAt()
			require.NoError(t, err)
			assert.True(t, at.Equal(baseTime))
		})
	}
}

func TestAddGuardedRejectionLeavesStoreUnchanged(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := repo.Add(ctx, sampleSubmission("a@b.com"), baseTime)
			require.NoError(t, err)

			var seen []domain.Lead
			_, err = repo.AddGuarded(ctx, sampleSubmission("a@b.com"), baseTime, func(history []domain.Lead) error {
				seen = history
				return errTaken
			})
			assert.ErrorIs(t, err, errTaken)
			require.Len(t, seen, 1)
			assert.Equal(t, "a@b.com", seen[0].Email)

			lead, err := repo.AddGuarded(ctx, sampleSubmission("c@d.com"), baseTime, func([]domain.Lead) error { return nil })
			require.NoError(t, err)
			assert.Equal(t, int64(2), lead.ID)

			leads, err := repo.GetAll(ctx)
			require.NoError(t, err)
			assert.Len(t, leads, 2)
		})
	}
}

func TestPostgresGuardSpansConnectionPools(t *testing.T) {
	first := postgresRepository(t)
	second := postgresRepository(t)
	ctx := context.Background()

	onlyFirst := func(history []domain.Lead) error {
		if len(history) > 0 {
			return errTaken
		}
		return nil
	}

	const n = 10
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		repo := first
		if i%2 == 1 {
			repo = second
		}
		go func(repo *PostgresRepository) {
			_, err := repo.AddGuarded(ctx, sampleSubmission("a@b.com"), baseTime, onlyFirst)
			errs <- err
		}(repo)
	}

	var accepted int
	for i := 0; i < n; i++ {
		if err := <-errs; err == nil {
			accepted++
		} else {
			assert.ErrorIs(t, err, errTaken)
		}
	}
	assert.Equal(t, 1, accepted)

	leads, err := second.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, leads, 1)
}

func TestSQLiteGuardSpansHandles(t *testing.T) {
	cfg := &config.Config{
		LeadsStore: config.StoreSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "leads.db"),
	}
	var stores []*Store
	for i := 0; i < 2; i++ {
		store, err := Open(context.Background(), cfg, testLogger())
		require.NoError(t, err)
		t.Cleanup(store.Close)
		stores = append(stores, store)
	}

	ctx := context.Background()
	onlyFirst := func(history []domain.Lead) error {
		if len(history) > 0 {
			return errTaken
		}
		return nil
	}

	const n = 10
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(store *Store) {
			_, err := store.AddGuarded(ctx, sampleSubmission("a@b.com"), baseTime, onlyFirst)
			errs <- err
		}(stores[i%2])
	}

	var accepted int
	for i := 0; i < n; i++ {
		if err := <-errs; err == nil {
			accepted++
		} else {
			assert.ErrorIs(t, err, errTaken)
		}
	}
	assert.Equal(t, 1, accepted)
}

func TestFileRepositoryLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.json")
	repo := NewFileRepository(path, testLogger())

	_, err := repo.Add(context.Background(), sampleSubmission("a@b.com"), baseTime)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "\n  {\n    \"id\": 1,")
	assert.Contains(t, text, `"name": "Иван Петров"`)
	assert.Contains(t, text, `"SEO <b>audit</b>"`)
	assert.Contains(t, text, `"timestamp": "2026-03-14T09:00:00.123456Z"`)
	assert.NotContains(t, text, `"phone"`)
}

func TestFileRepositoryToleratesEmptyAndLegacyFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leads.json")

	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))
	repo := NewFileRepository(path, testLogger())
	leads, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, leads)

	legacy := `[{"name":"Old","services":["Дизайн"],"description":"d","budget":"30-50k",` +
		`"contact_method":"telegram","telegram":"@old_user","id":1,"timestamp":"2025-01-02T10:11:12.345678"}]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	leads, err = repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "@old_user", leads[0].Telegram)
	_, err = leads[0].AcceptedAt()
	assert.NoError(t, err)

	lead, err := repo.Add(context.Background(), sampleSubmission("a@b.com"), baseTime)
	require.NoError(t, err)
	assert.Equal(t, int64(2), lead.ID)
}

func TestFileRepositoryQuarantinesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leads.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": 1, "name": "trunc`), 0o644))

	repo := NewFileRepository(path, testLogger())
	repo.now = func() time.Time { return time.Unix(1700000000, 0) }

	leads, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, leads)

	lead, err := repo.Add(context.Background(), sampleSubmission("a@b.com"), baseTime)
	require.NoError(t, err)
	assert.Equal(t, int64(1), lead.ID)

	moved, err := os.ReadFile(path + ".corrupt-1700000000")
	require.NoError(t, err)
	assert.Equal(t, `[{"id": 1, "name": "trunc`, string(moved))

	leads, err = repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, leads, 1)
}

func TestFileRepositoryReadErrorIsStorageError(t *testing.T) {
	dir := t.TempDir()
	// A directory where the file should be cannot be read as a file.
	path := filepath.Join(dir, "leads.json")
	require.NoError(t, os.Mkdir(path, 0o755))

	_, err := NewFileRepository(path, testLogger()).GetAll(context.Background())
	var storageErr *domain.StorageError
	assert.True(t, errors.As(err, &storageErr))
}
