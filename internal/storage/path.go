package storage

import (
	"fmt"
	"path"
	"regexp"
	"time"
)

const ArchivePrefix = "asks"

var pathComponentPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)

// BuildArchivePath returns the object key for one archived ask, partitioned
// by UTC date and hour.
func BuildArchivePath(prefix string, askedAt time.Time, sequence int64) (string, error) {
	if prefix == "" {
		prefix = ArchivePrefix
	}
	if err := validatePathComponent(prefix, "archive prefix"); err != nil {
		return "", err
	}
	if sequence < 0 {
		return "", fmt.Errorf("sequence must be >= 0")
	}

	ts := askedAt.UTC()
	return path.Join(
		prefix,
		fmt.Sprintf("date=%04d-%02d-%02d", ts.Year(), ts.Month(), ts.Day()),
		fmt.Sprintf("hour=%02d", ts.Hour()),
		fmt.Sprintf("ask-%d-%d.parquet", ts.UnixNano(), sequence),
	), nil
}

func validatePathComponent(value, field string) error {
	if !pathComponentPattern.MatchString(value) {
		return fmt.Errorf("invalid %s: %q", field, value)
	}
	return nil
}
