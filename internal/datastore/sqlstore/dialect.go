package sqlstore

import (
	"fmt"
	"strings"
)

// Dialect holds the catalog queries for one engine. Every query binds the
// table name as a parameter.
type Dialect struct {
	Name           string
	ListTablesSQL  string
	ListColumnsSQL string
	ForeignKeysSQL string
}

var MySQL = Dialect{
	Name: "mysql",
	ListTablesSQL: `
SELECT table_name
FROM information_schema.tables
WHERE table_schema = DATABASE() AND table_type IN ('BASE TABLE', 'VIEW')
ORDER BY table_name`,
	ListColumnsSQL: `
SELECT column_name, data_type
FROM information_schema.columns
WHERE table_schema = DATABASE() AND table_name = ?
ORDER BY ordinal_position`,
	ForeignKeysSQL: `
SELECT kcu.COLUMN_NAME, kcu.REFERENCED_TABLE_NAME, kcu.REFERENCED_COLUMN_NAME
FROM information_schema.KEY_COLUMN_USAGE kcu
WHERE kcu.CONSTRAINT_SCHEMA = DATABASE()
  AND kcu.TABLE_NAME = ?
  AND kcu.REFERENCED_TABLE_NAME IS NOT NULL
ORDER BY kcu.CONSTRAINT_NAME, kcu.ORDINAL_POSITION`,
}

var Postgres = Dialect{
	Name: "postgres",
	ListTablesSQL: `
SELECT table_name
FROM information_schema.tables
WHERE table_schema = current_schema() AND table_type IN ('BASE TABLE', 'VIEW')
ORDER BY table_name`,
	ListColumnsSQL: `
SELECT column_name, data_type
FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = $1
ORDER BY ordinal_position`,
	// conkey and confkey are parallel arrays; unnesting them together keeps
	// composite keys paired by position.
	ForeignKeysSQL: `
SELECT a.attname,
       CASE WHEN rn.nspname = n.nspname THEN rt.relname ELSE rn.nspname || '.' || rt.relname END,
       ra.attname
FROM pg_constraint c
JOIN pg_class t ON t.oid = c.conrelid
JOIN pg_namespace n ON n.oid = t.relnamespace
JOIN pg_class rt ON rt.oid = c.confrelid
JOIN pg_namespace rn ON rn.oid = rt.relnamespace
CROSS JOIN LATERAL unnest(c.conkey, c.confkey) WITH ORDINALITY AS k(attnum, refattnum, position)
JOIN pg_attribute a ON a.attrelid = c.conrelid AND a.attnum = k.attnum
JOIN pg_attribute ra ON ra.attrelid = c.confrelid AND ra.attnum = k.refattnum
WHERE c.contype = 'f'
  AND n.nspname = current_schema()
  AND t.relname = $1
ORDER BY c.conname, k.position`,
}

var DuckDB = Dialect{
	Name: "duckdb",
	ListTablesSQL: `
SELECT table_name
FROM information_schema.tables
WHERE table_schema = current_schema() AND table_type IN ('BASE TABLE', 'VIEW')
ORDER BY table_name`,
	ListColumnsSQL: `
SELECT column_name, data_type
FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = ?
ORDER BY ordinal_position`,
	ForeignKeysSQL: `
SELECT unnest(constraint_column_names), referenced_table, unnest(referenced_column_names)
FROM duckdb_constraints()
WHERE constraint_type = 'FOREIGN KEY'
  AND schema_name = current_schema()
  AND table_name = ?`,
}

func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "mysql":
		return MySQL, nil
	case "pgx", "postgres", "postgresql":
		return Postgres, nil
	case "duckdb":
		return DuckDB, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported datastore driver %q", driver)
	}
}
