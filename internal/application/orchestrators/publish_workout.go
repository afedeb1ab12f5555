package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"grindset/internal/adapters/metrics"
	"grindset/internal/domain/dailyrecord"
	"grindset/internal/domain/exercise"
	"grindset/internal/domain/publish"
)

// RecordStoreForPublish defines the store interface needed by the publish orchestrators.
type RecordStoreForPublish interface {
	Upsert(ctx context.Context, rec dailyrecord.DailyRecord) error
}

// PublishWorkoutInput carries input for the publish orchestrator.
type PublishWorkoutInput struct {
	Date string // YYYY-MM-DD
	Goal string
	Plan []exercise.Exercise
}

// PublishWorkoutDeps holds dependencies for PublishWorkout.
type PublishWorkoutDeps struct {
	RecordStore RecordStoreForPublish
	Now         func() time.Time
	Metrics     *metrics.Metrics
}

// ExecutePublishWorkout writes the plan as the record for Date, replacing any
// earlier workout or announcement for that day.
// PRE: Goal is non-empty; Plan is non-empty
// POST: the stored record has the normalized plan, a goal-derived title and no message
func ExecutePublishWorkout(ctx context.Context, input PublishWorkoutInput, deps PublishWorkoutDeps) (dailyrecord.DailyRecord, error) {
	if strings.TrimSpace(input.Goal) == "" {
		return dailyrecord.DailyRecord{}, publish.ErrEmptyGoal
	}

	rec := dailyrecord.NewWorkout(input.Date, input.Goal, exercise.Canonicalize(input.Plan), deps.Now())
	if err := rec.Validate(); err != nil {
		return dailyrecord.DailyRecord{}, err
	}

	if err := deps.RecordStore.Upsert(ctx, rec); err != nil {
		slog.Error("publish_event", "event", "persist_failed", "date", rec.Date, "error", err)
		return dailyrecord.DailyRecord{}, fmt.Errorf("%w: publish workout: %w", ErrPersistence, err)
	}

	deps.Metrics.Published(string(dailyrecord.KindWorkout))
	slog.Info("publish_event", "event", "workout_published", "date", rec.Date, "exercises", len(rec.Exercises))
	return rec, nil
}
