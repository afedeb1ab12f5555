package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"grindset/internal/adapters/storage"
	domain "grindset/internal/domain/profile"
)

const selectColumns = `SELECT id, full_name, current_streak, last_workout_date, dob, gender,
	graduation_year, height, weight, created_at, updated_at FROM profile`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ProfileStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Profile by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping sql.ErrNoRows if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Profile, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)

	entity, err := scanProfile(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, fmt.Errorf("profile not found: %w", err)
	}
	return entity, err
}

// Save inserts a profile or updates its onboarding fields.
// Streak columns are written on insert only; RecordCompletion owns them afterwards.
// PRE: entity.ID is non-empty
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Profile) error {
	fields := []string{
		"id", "full_name", "current_streak", "last_workout_date", "dob", "gender",
		"graduation_year", "height", "weight", "created_at", "updated_at",
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(fields)), ", ")
	updates := []string{
		"full_name=excluded.full_name",
		"dob=excluded.dob",
		"gender=excluded.gender",
		"graduation_year=excluded.graduation_year",
		"height=excluded.height",
		"weight=excluded.weight",
		"updated_at=excluded.updated_at",
	}

	query := fmt.Sprintf(
		"INSERT INTO profile (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		placeholders,
		strings.Join(updates, ", "),
	)

	var gradYear any
	if entity.GraduationYear != 0 {
		gradYear = entity.GraduationYear
	}

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.DisplayName,
		entity.CurrentStreak,
		storage.NullableString(entity.LastCompletionDate),
		storage.NullableString(entity.DOB),
		storage.NullableString(entity.Gender),
		gradYear,
		storage.NullableString(entity.Height),
		storage.NullableString(entity.Weight),
		storage.FormatTime(entity.CreatedAt),
		storage.FormatTime(entity.UpdatedAt),
	)
	return err
}

// RecordCompletion increments the streak unless today is already recorded.
// The date check runs inside the UPDATE, so concurrent callers cannot double-increment.
// PRE: today is a YYYY-MM-DD key
// POST: applied reports whether a row changed
// INVARIANT: last_workout_date never decreases
func (s *SQLiteStore) RecordCompletion(ctx context.Context, id, today string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE profile
		SET current_streak = current_streak + 1, last_workout_date = ?, updated_at = ?
		WHERE id = ? AND (last_workout_date IS NULL OR last_workout_date < ?)`,
		today, storage.FormatTime(time.Now()), id, today,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListComplete returns every profile with a display name in creation order.
// POST: order is deterministic (created_at, then id)
func (s *SQLiteStore) ListComplete(ctx context.Context) ([]domain.Profile, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" WHERE full_name != '' ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Profile
	for rows.Next() {
		entity, err := scanProfile(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func scanProfile(scan func(dest ...any) error) (domain.Profile, error) {
	var entity domain.Profile
	var lastDate, dob, gender, height, weight sql.NullString
	var gradYear sql.NullInt64
	var createdAt, updatedAt string
	err := scan(
		&entity.ID,
		&entity.DisplayName,
		&entity.CurrentStreak,
		&lastDate,
		&dob,
		&gender,
		&gradYear,
		&height,
		&weight,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Profile{}, err
	}
	entity.LastCompletionDate = lastDate.String
	entity.DOB = dob.String
	entity.Gender = gender.String
	entity.GraduationYear = int(gradYear.Int64)
	entity.Height = height.String
	entity.Weight = weight.String
	entity.CreatedAt, _ = storage.ParseTime(createdAt)
	entity.UpdatedAt, _ = storage.ParseTime(updatedAt)
	return entity, nil
}
