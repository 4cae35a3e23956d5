package storage

import (
	"context"
	"errors"
	"io"
)

const ParquetContentType = "application/vnd.apache.parquet"

// ErrBucketNotFound is returned when the archive bucket is missing.
var ErrBucketNotFound = errors.New("archive bucket not found")

type PutOptions struct {
	ContentType string
}

// WrittenObject describes an archive object after a successful write.
type WrittenObject struct {
	Key  string
	Size int64
	ETag string
}

// ArchiveStore is the write side of the ask archive. Records are written once
// and never read back by the service.
type ArchiveStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, opts PutOptions) (WrittenObject, error)
	HealthCheck(ctx context.Context) error
}
