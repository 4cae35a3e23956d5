package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Executor runs a statement verbatim against the datastore.
type Executor interface {
	Query(ctx context.Context, sql string) (Rows, error)
}

type Rows struct {
	Columns []string
	Records []Record
}

func (r Rows) Len() int {
	return len(r.Records)
}

// MarshalJSON encodes the rows as an array of records. An empty result is [].
func (r Rows) MarshalJSON() ([]byte, error) {
	records := r.Records
	if records == nil {
		records = []Record{}
	}
	return json.Marshal(records)
}

// Record is one result row. Fields keep the column order the driver reported.
type Record struct {
	Fields []Field
}

type Field struct {
	Name  string
	Value any
}

func (r Record) Get(name string) (any, bool) {
	for _, field := range r.Fields {
		if field.Name == name {
			return field.Value, true
		}
	}
	return nil, false
}

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range r.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Name)
		if err != nil {
			return nil, fmt.Errorf("marshal column name: %w", err)
		}
		value, err := json.Marshal(field.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal column %q: %w", field.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// NewRecord pairs column names with scanned values. Byte slices become strings.
func NewRecord(columns []string, values []any) Record {
	fields := make([]Field, len(columns))
	for i, column := range columns {
		var value any
		if i < len(values) {
			value = normalizeValue(values[i])
		}
		fields[i] = Field{Name: column, Value: value}
	}
	return Record{Fields: fields}
}

func normalizeValue(value any) any {
	switch typed := value.(type) {
	case []byte:
		return string(typed)
	default:
		return typed
	}
}
