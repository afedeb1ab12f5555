package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"grindset/internal/adapters/metrics"
	"grindset/internal/domain/profile"
)

// ProfileStoreForStreak defines the store interface needed by RecordCompletion.
type ProfileStoreForStreak interface {
	GetByID(ctx context.Context, id string) (profile.Profile, error)
	RecordCompletion(ctx context.Context, id, today string) (bool, error)
}

// RecordCompletionInput carries input for the streak orchestrator.
type RecordCompletionInput struct {
	UserID string
	Today  string // YYYY-MM-DD
}

// RecordCompletionResult reports whether the streak moved.
type RecordCompletionResult struct {
	Applied bool
	Streak  int
}

// RecordCompletionDeps holds dependencies for RecordCompletion.
type RecordCompletionDeps struct {
	ProfileStore ProfileStoreForStreak
	Metrics      *metrics.Metrics
}

// ExecuteRecordCompletion credits today's full plan completion to the user's streak.
// The store applies the same once-per-day rule inside its update, so two sessions
// completing the plan on the same day increment the streak once.
// PRE: UserID identifies an existing profile; Today is a YYYY-MM-DD key
// POST: streak +1 and last completion == Today, or Applied == false with no change
// INVARIANT: last completion date never decreases
func ExecuteRecordCompletion(ctx context.Context, input RecordCompletionInput, deps RecordCompletionDeps) (RecordCompletionResult, error) {
	current, err := deps.ProfileStore.GetByID(ctx, input.UserID)
	if err != nil {
		return RecordCompletionResult{}, fmt.Errorf("%w: load profile: %w", ErrPersistence, err)
	}

	next, applied := current.RecordCompletion(input.Today)
	if !applied {
		slog.Info("streak_event", "event", "already_recorded", "user_id", input.UserID, "date", input.Today)
		return RecordCompletionResult{Streak: current.CurrentStreak}, nil
	}

	applied, err = deps.ProfileStore.RecordCompletion(ctx, input.UserID, input.Today)
	if err != nil {
		slog.Error("streak_event", "event", "persist_failed", "user_id", input.UserID, "error", err)
		return RecordCompletionResult{}, fmt.Errorf("%w: record completion: %w", ErrPersistence, err)
	}
	if !applied {
		// Another session credited today between our read and write.
		slog.Info("streak_event", "event", "already_recorded", "user_id", input.UserID, "date", input.Today)
		return RecordCompletionResult{Streak: next.CurrentStreak}, nil
	}

	deps.Metrics.StreakIncremented()
	slog.Info("streak_event", "event", "streak_incremented", "user_id", input.UserID, "date", input.Today, "streak", next.CurrentStreak)
	return RecordCompletionResult{Applied: true, Streak: next.CurrentStreak}, nil
}
