package datastore

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRecordMarshalKeepsColumnOrder(t *testing.T) {
	record := NewRecord([]string{"name", "order_count", "id"}, []any{[]byte("Ana"), int64(12), int64(7)})

	encoded, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(encoded) != `{"name":"Ana","order_count":12,"id":7}` {
		t.Fatalf("encoded = %s", encoded)
	}
}

func TestRecordPreservesTimeAndNull(t *testing.T) {
	when := time.Date(2024, 11, 3, 10, 0, 0, 0, time.UTC)
	record := NewRecord([]string{"delivery_date", "notes"}, []any{when, nil})

	value, ok := record.Get("delivery_date")
	if !ok || !value.(time.Time).Equal(when) {
		t.Fatalf("delivery_date = %v", value)
	}
	encoded, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(encoded) != `{"delivery_date":"2024-11-03T10:00:00Z","notes":null}` {
		t.Fatalf("encoded = %s", encoded)
	}
}

func TestEmptyRowsMarshalAsArray(t *testing.T) {
	encoded, err := json.Marshal(Rows{Columns: []string{"id"}})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(encoded) != `[]` {
		t.Fatalf("encoded = %s", encoded)
	}
}

func TestRowsMarshalAsRecordArray(t *testing.T) {
	rows := Rows{
		Columns: []string{"COUNT(*)"},
		Records: []Record{NewRecord([]string{"COUNT(*)"}, []any{int64(5)})},
	}
	encoded, err := json.Marshal(rows)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(encoded) != `[{"COUNT(*)":5}]` {
		t.Fatalf("encoded = %s", encoded)
	}
	if rows.Len() != 1 {
		t.Fatalf("Len() = %d", rows.Len())
	}
}
