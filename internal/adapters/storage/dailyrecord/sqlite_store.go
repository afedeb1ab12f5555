package dailyrecord

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"grindset/internal/adapters/storage"
	domain "grindset/internal/domain/dailyrecord"
	"grindset/internal/domain/exercise"
)

// SQLiteStore implements Store using SQLite.
// Exercise content is kept as a JSON array in the content column.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new DailyRecordStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByDate retrieves the record published for date.
// Stored content is normalized on read, so rows written by older clients with
// loosely-keyed exercises come back canonical.
// PRE: date is a YYYY-MM-DD key
// POST: Returns the record or an error wrapping sql.ErrNoRows if nothing was published
func (s *SQLiteStore) GetByDate(ctx context.Context, date string) (domain.DailyRecord, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT date, title, content, message, updated_at FROM daily_record WHERE date = ?", date)

	var rec domain.DailyRecord
	var content string
	var message sql.NullString
	var updatedAt string
	err := row.Scan(&rec.Date, &rec.Title, &content, &message, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DailyRecord{}, fmt.Errorf("daily record not found: %w", err)
	}
	if err != nil {
		return domain.DailyRecord{}, err
	}

	raw, err := exercise.DecodeRecords([]byte(content))
	if err != nil {
		// Unreadable content is shown as no plan rather than failing the dashboard.
		slog.Warn("record_event", "event", "content_unreadable", "date", date, "error", err)
		raw = nil
	}
	rec.Exercises = exercise.Normalize(raw)
	rec.Message = message.String
	rec.UpdatedAt, _ = storage.ParseTime(updatedAt)
	return rec, nil
}

// Upsert writes the record for its date, replacing any earlier content.
// PRE: rec has been validated
// POST: exactly one row exists for rec.Date
func (s *SQLiteStore) Upsert(ctx context.Context, rec domain.DailyRecord) error {
	exercises := rec.Exercises
	if exercises == nil {
		exercises = []exercise.Exercise{}
	}
	content, err := json.Marshal(exercises)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO daily_record (date, title, content, message, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			title=excluded.title,
			content=excluded.content,
			message=excluded.message,
			updated_at=excluded.updated_at`,
		rec.Date,
		rec.Title,
		string(content),
		storage.NullableString(rec.Message),
		storage.FormatTime(rec.UpdatedAt),
	)
	return err
}
