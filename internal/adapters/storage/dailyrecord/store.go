package dailyrecord

import (
	"context"

	domain "grindset/internal/domain/dailyrecord"
)

// Store persists one DailyRecord per calendar date.
type Store interface {
	GetByDate(ctx context.Context, date string) (domain.DailyRecord, error)
	Upsert(ctx context.Context, value domain.DailyRecord) error
}
