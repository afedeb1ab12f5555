package storage

import (
	"fmt"
	"time"
)

// TimeLayout is the layout used for every timestamp column.
const TimeLayout = time.RFC3339Nano

// FormatTime renders t for a timestamp column.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// NullableTime renders t for a nullable timestamp column; the zero time maps to NULL.
func NullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return FormatTime(t)
}

// NullableString maps the empty string to NULL.
func NullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// ParseTime reads a timestamp column written by FormatTime or by SQLite itself.
func ParseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		t, err := time.Parse(f, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s)
}
