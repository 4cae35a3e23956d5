package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/asksql/asksql/internal/datastore"
	"github.com/asksql/asksql/internal/storage"
)

// Record is one answered question.
type Record struct {
	Question string
	SQLQuery string
	Model    string
	Results  datastore.Rows
	AskedAt  time.Time
}

type parquetRecord struct {
	Question      string `parquet:"question"`
	SQLQuery      string `parquet:"sql_query"`
	RowCount      int64  `parquet:"row_count"`
	ResultsJSON   string `parquet:"results_json"`
	AskedAtUnixMs int64  `parquet:"asked_at_unix_ms"`
	Model         string `parquet:"model"`
}

// EncodeRecord writes a single-row Parquet file for the record.
func EncodeRecord(record Record) ([]byte, error) {
	if strings.TrimSpace(record.SQLQuery) == "" {
		return nil, fmt.Errorf("sql query is required")
	}
	results, err := json.Marshal(record.Results)
	if err != nil {
		return nil, fmt.Errorf("encode results: %w", err)
	}

	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[parquetRecord](buf)
	row := parquetRecord{
		Question:      record.Question,
		SQLQuery:      record.SQLQuery,
		RowCount:      int64(record.Results.Len()),
		ResultsJSON:   string(results),
		AskedAtUnixMs: record.AskedAt.UnixMilli(),
		Model:         record.Model,
	}
	if _, err := writer.Write([]parquetRecord{row}); err != nil {
		return nil, fmt.Errorf("write parquet row: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Archiver stores ask records in an object store, one object per ask.
type Archiver struct {
	store    storage.ArchiveStore
	prefix   string
	logger   *slog.Logger
	sequence atomic.Int64
}

func New(store storage.ArchiveStore, prefix string, logger *slog.Logger) (*Archiver, error) {
	if store == nil {
		return nil, fmt.Errorf("object store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Archiver{store: store, prefix: prefix, logger: logger}, nil
}

func (a *Archiver) Archive(ctx context.Context, record Record) error {
	if record.AskedAt.IsZero() {
		record.AskedAt = time.Now().UTC()
	}
	key, err := storage.BuildArchivePath(a.prefix, record.AskedAt, a.sequence.Add(1))
	if err != nil {
		return fmt.Errorf("build archive path: %w", err)
	}
	data, err := EncodeRecord(record)
	if err != nil {
		return err
	}
	written, err := a.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), storage.PutOptions{ContentType: storage.ParquetContentType})
	if err != nil {
		return fmt.Errorf("store archive record: %w", err)
	}
	a.logger.DebugContext(ctx, "ask archived", slog.String("key", key), slog.Int64("size_bytes", written.Size))
	return nil
}

// HealthCheck reports whether archived records can currently be written.
func (a *Archiver) HealthCheck(ctx context.Context) error {
	return a.store.HealthCheck(ctx)
}
