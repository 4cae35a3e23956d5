package schema

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type ForeignKey struct {
	Column     string `json:"column"`
	References string `json:"references"`
}

type Table struct {
	Name        string       `json:"-"`
	Columns     []Column     `json:"columns"`
	ForeignKeys []ForeignKey `json:"foreign_keys"`
}

// Description is the introspected schema. Tables keep the order the catalog
// reported them in; that order drives prompt serialization.
type Description struct {
	Tables []Table
}

func (d Description) Table(name string) (Table, bool) {
	for _, table := range d.Tables {
		if table.Name == name {
			return table, true
		}
	}
	return Table{}, false
}

func (d Description) Names() []string {
	names := make([]string, 0, len(d.Tables))
	for _, table := range d.Tables {
		names = append(names, table.Name)
	}
	return names
}

// MarshalJSON encodes the description as an object keyed by table name,
// preserving table order.
func (d Description) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, table := range d.Tables {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(table.Name)
		if err != nil {
			return nil, fmt.Errorf("marshal table name: %w", err)
		}
		if table.Columns == nil {
			table.Columns = []Column{}
		}
		if table.ForeignKeys == nil {
			table.ForeignKeys = []ForeignKey{}
		}
		value, err := json.Marshal(table)
		if err != nil {
			return nil, fmt.Errorf("marshal table %q: %w", table.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Catalog is the datastore surface the introspector needs.
type Catalog interface {
	ListTables(ctx context.Context) ([]string, error)
	ListColumns(ctx context.Context, table string) ([]Column, error)
	ForeignKeys(ctx context.Context, table string) ([]ForeignKey, error)
}

type Source interface {
	Describe(ctx context.Context) (Description, error)
}

// ExcludedTables are framework bookkeeping tables that never describe business data.
var ExcludedTables = []string{
	"cache",
	"cache_locks",
	"migrations",
	"jobs",
	"job_batches",
	"failed_jobs",
	"password_reset_tokens",
	"sessions",
}

var excludedTableSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(ExcludedTables))
	for _, name := range ExcludedTables {
		set[name] = struct{}{}
	}
	return set
}()

func IsExcluded(table string) bool {
	_, ok := excludedTableSet[table]
	return ok
}
