// Package publishing drives an admin's generate, preview and publish flow.
package publishing

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"grindset/internal/adapters/email"
	"grindset/internal/adapters/llm"
	"grindset/internal/adapters/metrics"
	"grindset/internal/application/orchestrators"
	"grindset/internal/domain/dailyrecord"
	"grindset/internal/domain/exercise"
	"grindset/internal/domain/publish"
)

// Deps holds the collaborators a Publisher calls.
type Deps struct {
	Completer llm.Completer
	Records   orchestrators.RecordStoreForPublish
	Accounts  orchestrators.AccountLister
	Sender    email.Sender
	Broadcast bool
	Now       func() time.Time
	Location  *time.Location // publisher's time zone for the record date
	Metrics   *metrics.Metrics
}

// Status is a snapshot of an admin's draft.
type Status struct {
	State   publish.State       `json:"state"`
	Goal    string              `json:"goal,omitempty"`
	Preview []exercise.Exercise `json:"preview"`
}

// Publisher owns one admin session's draft.
// Generate holds an in-flight flag for the whole completion call, so a second
// Generate fails fast instead of queueing behind the first.
type Publisher struct {
	mu         sync.Mutex
	draft      *publish.Draft
	generating atomic.Bool
	deps       Deps
}

// New creates a Publisher with an empty draft.
func New(deps Deps) *Publisher {
	return &Publisher{draft: publish.NewDraft(), deps: deps}
}

// Generate asks for a plan for goal and keeps it as the preview.
// PRE: goal is non-empty
// POST: State == Previewed with a normalized preview, or State == Draft on failure
func (p *Publisher) Generate(ctx context.Context, goal string) ([]exercise.Exercise, error) {
	if !p.generating.CompareAndSwap(false, true) {
		return nil, publish.ErrGenerationInProgress
	}
	defer p.generating.Store(false)

	p.mu.Lock()
	err := p.draft.BeginGeneration(goal)
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}

	plan, genErr := orchestrators.ExecuteGeneratePlan(ctx,
		orchestrators.GeneratePlanInput{Goal: goal},
		orchestrators.GeneratePlanDeps{Completer: p.deps.Completer, Metrics: p.deps.Metrics})

	p.mu.Lock()
	defer p.mu.Unlock()
	if genErr != nil {
		if err := p.draft.FailGeneration(); err != nil {
			slog.Error("publish_event", "event", "transition_failed", "error", err)
		}
		return nil, genErr
	}
	if err := p.draft.CompleteGeneration(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Publish writes the current preview as today's workout.
// PRE: a preview exists and no generation is in flight
// POST: State == Published; the stored record replaces any earlier one for today
func (p *Publisher) Publish(ctx context.Context) (dailyrecord.DailyRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.draft.State == publish.StateGenerating {
		return dailyrecord.DailyRecord{}, publish.ErrGenerationInProgress
	}
	if !p.draft.CanPublish() {
		return dailyrecord.DailyRecord{}, publish.ErrNoPreview
	}

	rec, err := orchestrators.ExecutePublishWorkout(ctx, orchestrators.PublishWorkoutInput{
		Date: p.today(),
		Goal: p.draft.Goal,
		Plan: p.draft.Preview,
	}, orchestrators.PublishWorkoutDeps{
		RecordStore: p.deps.Records,
		Now:         p.deps.Now,
		Metrics:     p.deps.Metrics,
	})
	if err != nil {
		return dailyrecord.DailyRecord{}, err
	}
	if err := p.draft.MarkPublished(); err != nil {
		return dailyrecord.DailyRecord{}, err
	}
	return rec, nil
}

// PostAnnouncement writes message as today's announcement, clearing any workout.
// The draft's preview is left in place.
// PRE: message is non-empty
func (p *Publisher) PostAnnouncement(ctx context.Context, message string) (orchestrators.PostAnnouncementResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	res, err := orchestrators.ExecutePostAnnouncement(ctx, orchestrators.PostAnnouncementInput{
		Date:    p.today(),
		Message: message,
	}, orchestrators.PostAnnouncementDeps{
		RecordStore: p.deps.Records,
		Accounts:    p.deps.Accounts,
		Sender:      p.deps.Sender,
		Broadcast:   p.deps.Broadcast,
		Now:         p.deps.Now,
		Metrics:     p.deps.Metrics,
	})
	if err != nil {
		return orchestrators.PostAnnouncementResult{}, err
	}
	p.draft.MarkAnnouncementPublished()
	return res, nil
}

// Status returns a snapshot of the draft.
func (p *Publisher) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	preview := p.draft.Preview
	if preview == nil {
		preview = []exercise.Exercise{}
	}
	return Status{State: p.draft.State, Goal: p.draft.Goal, Preview: preview}
}

func (p *Publisher) today() string {
	return dailyrecord.DateKey(p.deps.Now(), p.deps.Location)
}
