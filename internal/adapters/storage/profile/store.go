package profile

import (
	"context"

	domain "grindset/internal/domain/profile"
)

// Store persists Profile state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Profile, error)
	Save(ctx context.Context, value domain.Profile) error
	RecordCompletion(ctx context.Context, id, today string) (bool, error)
	ListComplete(ctx context.Context) ([]domain.Profile, error)
}
