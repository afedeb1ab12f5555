package projections

import (
	"context"

	domainDailyRecord "grindset/internal/domain/dailyrecord"
	domainProfile "grindset/internal/domain/profile"
)

// ProfileStore interface for profile queries.
type ProfileStore interface {
	ListComplete(ctx context.Context) ([]domainProfile.Profile, error)
}

// RecordStore interface for daily record queries.
type RecordStore interface {
	GetByDate(ctx context.Context, date string) (domainDailyRecord.DailyRecord, error)
}
