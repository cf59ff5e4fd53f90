// Package storage provides a domain-agnostic interface for S3-compatible object storage.
package storage

import (
	"context"
	"io"

	"terrasite_backend/platform/config"
)

// ObjectStore defines the object storage operations the application uses.
type ObjectStore interface {
	// EnsureBucketExists creates the bucket if it doesn't exist.
	EnsureBucketExists(ctx context.Context, bucket string) error

	// PutObject writes an object under an exact key, replacing any previous version.
	PutObject(ctx context.Context, bucket, key, contentType string, reader io.Reader, size int64) error

	// GetObject opens an object for reading.
	// The caller is responsible for closing the returned io.ReadCloser.
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)

	// ObjectExists reports whether key is present in bucket.
	ObjectExists(ctx context.Context, bucket, key string) (bool, error)
}

// Config defines the configuration interface for storage.
type Config = config.ArchiveConfig
