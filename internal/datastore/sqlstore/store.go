package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/asksql/asksql/internal/datastore"
	"github.com/asksql/asksql/internal/schema"
)

// Store serves catalog lookups and verbatim query execution over one pool.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *Store {
	if dialect.Name == "" {
		dialect = MySQL
	}
	return &Store{db: db, dialect: dialect}
}

func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping datastore: %w", err)
	}
	return nil
}

func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.ListTablesSQL)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	tables := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return tables, nil
}

func (s *Store) ListColumns(ctx context.Context, table string) ([]schema.Column, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.ListColumnsSQL, table)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	columns := make([]schema.Column, 0)
	for rows.Next() {
		var column schema.Column
		if err := rows.Scan(&column.Name, &column.Type); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns = append(columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}
	return columns, nil
}

func (s *Store) ForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.ForeignKeysSQL, table)
	if err != nil {
		return nil, fmt.Errorf("query foreign keys: %w", err)
	}
	defer rows.Close()

	keys := make([]schema.ForeignKey, 0)
	for rows.Next() {
		var column, refTable, refColumn string
		if err := rows.Scan(&column, &refTable, &refColumn); err != nil {
			return nil, fmt.Errorf("scan foreign key: %w", err)
		}
		keys = append(keys, schema.ForeignKey{Column: column, References: refTable + "." + refColumn})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foreign keys: %w", err)
	}
	return keys, nil
}

// Query executes statement text as given. Nothing is appended or rewritten.
// Driver errors from running the statement are returned as is.
func (s *Store) Query(ctx context.Context, statement string) (datastore.Rows, error) {
	rows, err := s.db.QueryContext(ctx, statement)
	if err != nil {
		return datastore.Rows{}, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return datastore.Rows{}, fmt.Errorf("query columns: %w", err)
	}

	records := make([]datastore.Record, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return datastore.Rows{}, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, datastore.NewRecord(columns, values))
	}
	if err := rows.Err(); err != nil {
		return datastore.Rows{}, err
	}

	return datastore.Rows{Columns: columns, Records: records}, nil
}
