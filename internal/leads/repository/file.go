package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"terrasite_backend/internal/leads/domain"
	"terrasite_backend/platform/logger"
)

// FileRepository keeps all leads in one JSON array on disk.
// Every write replaces the file atomically via a temp file and rename.
type FileRepository struct {
	mu   sync.Mutex
	path string
	log  *logger.Logger
	now  func() time.Time
}

// NewFileRepository creates a store backed by path. The file and its
// directory are created on first write.
func NewFileRepository(path string, log *logger.Logger) *FileRepository {
	return &FileRepository{path: path, log: log, now: time.Now}
}

// GetAll returns the stored leads. A missing or empty file yields no leads.
// A file that does not parse is logged and treated as empty.
func (r *FileRepository) GetAll(_ context.Context) ([]domain.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	leads, _, err := r.read()
	return leads, err
}

// Add appends one lead. If the current file is corrupt it is moved aside to
// <path>.corrupt-<unix> first, so the unreadable history is kept.
func (r *FileRepository) Add(ctx context.Context, sub domain.Submission, acceptedAt time.Time) (domain.Lead, error) {
	return r.AddGuarded(ctx, sub, acceptedAt, nil)
}

// AddGuarded holds the store mutex across guard and append. The file store
// is meant for a single process.
func (r *FileRepository) AddGuarded(_ context.Context, sub domain.Submission, acceptedAt time.Time, guard Guard) (domain.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	leads, corrupt, err := r.read()
	if err != nil {
		return domain.Lead{}, err
	}
	if guard != nil {
		if err := guard(leads); err != nil {
			return domain.Lead{}, err
		}
	}
	if corrupt {
		if err := r.quarantine(); err != nil {
			return domain.Lead{}, err
		}
	}

	lead := domain.NewLead(int64(len(leads))+1, sub, acceptedAt)
	leads = append(leads, lead)

	if err := r.write(leads); err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
}

func (r *FileRepository) read() (leads []domain.Lead, corrupt bool, err error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Lead{}, false, nil
	}
	if err != nil {
		return nil, false, &domain.StorageError{Op: "read", Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.Lead{}, false, nil
	}

	if err := json.Unmarshal(data, &leads); err != nil {
		r.log.Warn("lead file is not valid JSON, treating it as empty",
			"path", r.path,
			"error", err,
		)
		return []domain.Lead{}, true, nil
	}
	if leads == nil {
		leads = []domain.Lead{}
	}
	return leads, false, nil
}

func (r *FileRepository) quarantine() error {
	target := fmt.Sprintf("%s.corrupt-%d", r.path, r.now().Unix())
	if err := os.Rename(r.path, target); err != nil {
		return &domain.StorageError{Op: "quarantine", Err: err}
	}
	r.log.Warn("moved corrupt lead file aside", "path", r.path, "moved_to", target)
	return nil
}

func (r *FileRepository) write(leads []domain.Lead) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &domain.StorageError{Op: "write", Err: err}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(leads); err != nil {
		return &domain.StorageError{Op: "encode", Err: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return &domain.StorageError{Op: "write", Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return &domain.StorageError{Op: "write", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &domain.StorageError{Op: "sync", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &domain.StorageError{Op: "write", Err: err}
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return &domain.StorageError{Op: "rename", Err: err}
	}
	return nil
}

var _ Repository = (*FileRepository)(nil)
