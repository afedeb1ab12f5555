package projections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domainDailyRecord "grindset/internal/domain/dailyrecord"
	"grindset/internal/domain/exercise"
)

// GetTodaysRecordQuery carries query parameters.
type GetTodaysRecordQuery struct {
	Date string // YYYY-MM-DD
}

// GetTodaysRecordResult carries the day's content and its classification.
type GetTodaysRecordResult struct {
	Kind   domainDailyRecord.Kind
	Record domainDailyRecord.DailyRecord
}

// GetTodaysRecordDeps holds dependencies for GetTodaysRecord.
type GetTodaysRecordDeps struct {
	RecordStore RecordStore
}

// QueryGetTodaysRecord loads the record for Date. A date with nothing published
// is reported as KindEmpty, not as an error.
// POST: Record.Exercises is never nil
func QueryGetTodaysRecord(ctx context.Context, query GetTodaysRecordQuery, deps GetTodaysRecordDeps) (GetTodaysRecordResult, error) {
	rec, err := deps.RecordStore.GetByDate(ctx, query.Date)
	if errors.Is(err, sql.ErrNoRows) {
		rec = domainDailyRecord.DailyRecord{Date: query.Date}
	} else if err != nil {
		return GetTodaysRecordResult{}, fmt.Errorf("load record for %s: %w", query.Date, err)
	}
	if rec.Exercises == nil {
		rec.Exercises = []exercise.Exercise{}
	}
	return GetTodaysRecordResult{Kind: rec.Kind(), Record: rec}, nil
}
