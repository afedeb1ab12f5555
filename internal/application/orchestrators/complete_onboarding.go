package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"grindset/internal/domain/profile"
)

// ProfileStoreForOnboarding defines the store interface needed by CompleteOnboarding.
type ProfileStoreForOnboarding interface {
	GetByID(ctx context.Context, id string) (profile.Profile, error)
	Save(ctx context.Context, p profile.Profile) error
}

// CompleteOnboardingInput carries input for the onboarding orchestrator.
type CompleteOnboardingInput struct {
	UserID     string
	Onboarding profile.Onboarding
}

// CompleteOnboardingDeps holds dependencies for CompleteOnboarding.
type CompleteOnboardingDeps struct {
	ProfileStore ProfileStoreForOnboarding
	Now          func() time.Time
}

// ExecuteCompleteOnboarding saves the user's profile details, making the profile complete.
// Re-submitting edits the details; the streak is never touched.
// A missing profile row is recreated with a zero streak.
// PRE: UserID belongs to an authenticated account
// POST: profile.IsComplete() is true
func ExecuteCompleteOnboarding(ctx context.Context, input CompleteOnboardingInput, deps CompleteOnboardingDeps) (profile.Profile, error) {
	if err := input.Onboarding.Validate(); err != nil {
		return profile.Profile{}, err
	}

	now := deps.Now()
	p, err := deps.ProfileStore.GetByID(ctx, input.UserID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		slog.Warn("profile_event", "event", "profile_recreated", "user_id", input.UserID)
		p = profile.Profile{ID: input.UserID, CreatedAt: now}
	case err != nil:
		return profile.Profile{}, fmt.Errorf("%w: load profile: %w", ErrPersistence, err)
	}
	p.Apply(input.Onboarding, now)

	if err := deps.ProfileStore.Save(ctx, p); err != nil {
		return profile.Profile{}, fmt.Errorf("%w: save profile: %w", ErrPersistence, err)
	}

	slog.Info("profile_event", "event", "onboarding_completed", "user_id", p.ID)
	return p, nil
}
