package storage

import (
	"testing"
	"time"
)

func TestBuildArchivePath(t *testing.T) {
	ts := time.Date(2026, time.February, 19, 4, 5, 0, 0, time.FixedZone("x", -5*3600))
	key, err := BuildArchivePath("", ts, 3)
	if err != nil {
		t.Fatalf("BuildArchivePath() error = %v", err)
	}
	want := "asks/date=2026-02-19/hour=09/ask-1771491900000000000-3.parquet"
	if key != want {
		t.Fatalf("BuildArchivePath() = %q, want %q", key, want)
	}
}

func TestBuildArchivePathCustomPrefix(t *testing.T) {
	ts := time.Date(2026, time.January, 2, 23, 0, 0, 0, time.UTC)
	key, err := BuildArchivePath("audit", ts, 0)
	if err != nil {
		t.Fatalf("BuildArchivePath() error = %v", err)
	}
	want := "audit/date=2026-01-02/hour=23/ask-1767394800000000000-0.parquet"
	if key != want {
		t.Fatalf("BuildArchivePath() = %q, want %q", key, want)
	}
}

func TestBuildArchivePathRejectsInvalidInput(t *testing.T) {
	if _, err := BuildArchivePath("../oops", time.Now(), 1); err == nil {
		t.Fatal("expected invalid component error")
	}
	if _, err := BuildArchivePath("asks", time.Now(), -1); err == nil {
		t.Fatal("expected negative sequence error")
	}
}
