// Package dashboard holds the per-session state of a user's daily dashboard.
package dashboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"grindset/internal/adapters/llm"
	"grindset/internal/adapters/metrics"
	"grindset/internal/application/orchestrators"
	"grindset/internal/application/projections"
	"grindset/internal/domain/completion"
	"grindset/internal/domain/dailyrecord"
	"grindset/internal/domain/exercise"
)

// State is a step of the dashboard lifecycle.
type State string

// Dashboard states
const (
	StateInit          State = "init"
	StateProfileLoaded State = "profile_loaded"
	StateRecordLoaded  State = "record_loaded"
	StateReady         State = "ready"
	StateSignedOut     State = "signed_out"
)

// Routing outcomes and lifecycle errors
var (
	ErrAuthRequired      = errors.New("sign in required")
	ErrProfileIncomplete = errors.New("profile is incomplete")
	ErrSignedOut         = errors.New("dashboard session has ended")
)

// SessionContext identifies the signed-in user and the calendar day the dashboard shows.
// It is resolved once at load and not re-read afterwards.
type SessionContext struct {
	UserID string
	Today  string // YYYY-MM-DD
}

// Deps holds the collaborators a Controller calls.
type Deps struct {
	Profiles         orchestrators.ProfileStoreForStreak
	Records          projections.RecordStore
	Leaderboard      projections.ProfileStore
	Completer        llm.Completer
	Metrics          *metrics.Metrics
	LeaderboardLimit int
}

// Controller is one user's dashboard for one day.
// All methods are safe for concurrent use; operations are serialized.
type Controller struct {
	mu         sync.Mutex
	deps       Deps
	session    SessionContext
	state      State
	name       string
	streak     int
	record     dailyrecord.DailyRecord
	kind       dailyrecord.Kind
	planIDs    []int
	completion completion.State
}

// View is the dashboard as rendered to the user.
type View struct {
	State                 State               `json:"state"`
	Date                  string              `json:"date"`
	DisplayName           string              `json:"display_name"`
	CurrentStreak         int                 `json:"current_streak"`
	Kind                  dailyrecord.Kind    `json:"kind"`
	Title                 string              `json:"title,omitempty"`
	Exercises             []exercise.Exercise `json:"exercises"`
	Message               string              `json:"message,omitempty"`
	Completed             []int               `json:"completed"`
	Score                 int                 `json:"score"`
	AlreadyCompletedToday bool                `json:"already_completed_today"`
}

// Load reads the profile and today's record and returns a Ready controller.
// PRE: none
// POST: Ready controller, or ErrAuthRequired, ErrProfileIncomplete, or an
// orchestrators.ErrPersistence wrap when a store fails
func Load(ctx context.Context, session SessionContext, deps Deps) (*Controller, error) {
	c := &Controller{deps: deps, session: session, state: StateInit}
	if session.UserID == "" {
		return nil, ErrAuthRequired
	}

	p, err := deps.Profiles.GetByID(ctx, session.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileIncomplete
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load profile: %w", orchestrators.ErrPersistence, err)
	}
	if !p.IsComplete() {
		return nil, ErrProfileIncomplete
	}
	c.name = p.DisplayName
	c.streak = p.CurrentStreak
	c.state = StateProfileLoaded

	today, err := projections.QueryGetTodaysRecord(ctx,
		projections.GetTodaysRecordQuery{Date: session.Today},
		projections.GetTodaysRecordDeps{RecordStore: deps.Records})
	if err != nil {
		return nil, fmt.Errorf("%w: load record: %w", orchestrators.ErrPersistence, err)
	}
	c.record = today.Record
	c.kind = today.Kind
	c.planIDs = exercise.IDs(today.Record.Exercises)
	c.state = StateRecordLoaded

	c.completion = completion.NewState(p.CompletedOn(session.Today))
	c.state = StateReady
	slog.Info("dashboard_event", "event", "loaded", "user_id", session.UserID, "date", session.Today, "kind", c.kind)
	return c, nil
}

// Session returns the context the controller was loaded with.
func (c *Controller) Session() SessionContext {
	return c.session
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// View returns a snapshot of the dashboard.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Toggle flips the completion mark of an exercise in today's plan.
// When the toggle completes the whole plan for the first time today the streak is
// persisted first; the new state is only committed once that succeeds.
// PRE: controller is Ready
// POST: on error the completion state is unchanged
func (c *Controller) Toggle(ctx context.Context, id int) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return c.viewLocked(), ErrSignedOut
	}

	next, completesPlan, err := c.completion.Toggle(id, c.planIDs)
	if err != nil {
		return c.viewLocked(), err
	}

	if completesPlan {
		res, err := orchestrators.ExecuteRecordCompletion(ctx,
			orchestrators.RecordCompletionInput{UserID: c.session.UserID, Today: c.session.Today},
			orchestrators.RecordCompletionDeps{ProfileStore: c.deps.Profiles, Metrics: c.deps.Metrics})
		if err != nil {
			return c.viewLocked(), err
		}
		next = next.MarkCredited()
		c.streak = res.Streak
	}

	c.completion = next
	c.deps.Metrics.Toggled(next.IsCompleted(id))
	return c.viewLocked(), nil
}

// AskAI explains an exercise from today's plan.
// The completion call runs without holding the controller lock.
// PRE: controller is Ready; exerciseID is in today's plan
func (c *Controller) AskAI(ctx context.Context, exerciseID int) (orchestrators.Explanation, error) {
	c.mu.Lock()
	if c.state != StateReady {
		c.mu.Unlock()
		return orchestrators.Explanation{}, ErrSignedOut
	}
	ex, ok := exercise.Find(c.record.Exercises, exerciseID)
	c.mu.Unlock()
	if !ok {
		return orchestrators.Explanation{}, completion.ErrUnknownExercise
	}

	return orchestrators.ExecuteExplainExercise(ctx,
		orchestrators.ExplainExerciseInput{Name: ex.Name},
		orchestrators.ExplainExerciseDeps{Completer: c.deps.Completer})
}

// OpenLeaderboard ranks every complete profile and marks the caller's entry.
// PRE: controller is Ready
func (c *Controller) OpenLeaderboard(ctx context.Context) (projections.GetLeaderboardResult, error) {
	c.mu.Lock()
	ready := c.state == StateReady
	c.mu.Unlock()
	if !ready {
		return projections.GetLeaderboardResult{}, ErrSignedOut
	}

	return projections.QueryGetLeaderboard(ctx,
		projections.GetLeaderboardQuery{Limit: c.deps.LeaderboardLimit, UserID: c.session.UserID},
		projections.GetLeaderboardDeps{ProfileStore: c.deps.Leaderboard})
}

// SignOut ends the dashboard session. Later operations fail with ErrSignedOut.
// POST: State == StateSignedOut
func (c *Controller) SignOut() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateSignedOut
}

func (c *Controller) viewLocked() View {
	exercises := c.record.Exercises
	if exercises == nil {
		exercises = []exercise.Exercise{}
	}
	return View{
		State:                 c.state,
		Date:                  c.session.Today,
		DisplayName:           c.name,
		CurrentStreak:         c.streak,
		Kind:                  c.kind,
		Title:                 c.record.Title,
		Exercises:             exercises,
		Message:               c.record.Message,
		Completed:             c.completion.CompletedIDs(),
		Score:                 c.completion.Score,
		AlreadyCompletedToday: c.completion.AlreadyCompletedToday,
	}
}
