package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/asksql/asksql/internal/observability"
)

type Introspector struct {
	catalog Catalog
	logger  *slog.Logger
}

func NewIntrospector(catalog Catalog, logger *slog.Logger) *Introspector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Introspector{catalog: catalog, logger: logger}
}

// Describe lists every user table with its columns and foreign keys. Listing
// failures abort the whole pass; a failed foreign key lookup only empties that
// table's foreign key list.
func (i *Introspector) Describe(ctx context.Context) (Description, error) {
	if i.catalog == nil {
		return Description{}, fmt.Errorf("schema catalog is required")
	}
	start := time.Now()

	names, err := i.catalog.ListTables(ctx)
	if err != nil {
		return Description{}, fmt.Errorf("list tables: %w", err)
	}

	tables := make([]Table, 0, len(names))
	for _, name := range names {
		if IsExcluded(name) {
			continue
		}

		columns, err := i.catalog.ListColumns(ctx, name)
		if err != nil {
			return Description{}, fmt.Errorf("list columns for table %q: %w", name, err)
		}
		if columns == nil {
			columns = []Column{}
		}

		tables = append(tables, Table{
			Name:        name,
			Columns:     columns,
			ForeignKeys: i.foreignKeys(ctx, name),
		})
	}

	description := Description{Tables: tables}
	observability.ObserveSchemaIntrospection(len(tables), time.Since(start))
	i.logSchema(ctx, description)
	return description, nil
}

func (i *Introspector) foreignKeys(ctx context.Context, table string) []ForeignKey {
	keys, err := i.catalog.ForeignKeys(ctx, table)
	if err != nil {
		observability.IncrementForeignKeyLookupFailure()
		if i.logger != nil {
			i.logger.WarnContext(ctx, "foreign key lookup failed",
				slog.String("table", table),
				slog.Any("error", err),
			)
		}
		return []ForeignKey{}
	}
	if keys == nil {
		return []ForeignKey{}
	}
	return keys
}

func (i *Introspector) logSchema(ctx context.Context, description Description) {
	if i.logger == nil {
		return
	}
	encoded, err := json.Marshal(description)
	if err != nil {
		i.logger.WarnContext(ctx, "encode schema for log failed", slog.Any("error", err))
		return
	}
	i.logger.InfoContext(ctx, "schema_introspected",
		slog.Int("tables", len(description.Tables)),
		slog.String("schema", string(encoded)),
	)
}
