package publish

import (
	"errors"
	"fmt"
	"strings"

	"grindset/internal/domain/exercise"
)

// State is a step of the admin publish flow.
type State string

// Publish flow states
const (
	StateDraft                 State = "draft"
	StateGenerating            State = "generating"
	StatePreviewed             State = "previewed"
	StatePublished             State = "published"
	StateAnnouncementPublished State = "announcement_published"
)

// Domain errors
var (
	ErrEmptyGoal            = errors.New("please enter a goal first")
	ErrGenerationInProgress = errors.New("a plan is already being generated")
	ErrNoPreview            = errors.New("generate a plan before publishing")
)

// Draft tracks one admin's progress from goal text to a published record.
// Draft is not safe for concurrent use; callers serialize access.
type Draft struct {
	State   State
	Goal    string
	Preview []exercise.Exercise // normalized plan held until publish
}

// NewDraft returns a draft in its initial state.
func NewDraft() *Draft {
	return &Draft{State: StateDraft}
}

// BeginGeneration moves the draft into Generating for goal.
// Any earlier preview is discarded.
// PRE: goal is non-empty
// POST: State == StateGenerating, or ErrGenerationInProgress while a call is in flight
func (d *Draft) BeginGeneration(goal string) error {
	if strings.TrimSpace(goal) == "" {
		return ErrEmptyGoal
	}
	if d.State == StateGenerating {
		return ErrGenerationInProgress
	}
	if err := d.transition(StateGenerating); err != nil {
		return err
	}
	d.Goal = goal
	d.Preview = nil
	return nil
}

// CompleteGeneration stores the normalized plan as the preview.
// PRE: State == StateGenerating
// POST: State == StatePreviewed
func (d *Draft) CompleteGeneration(plan []exercise.Exercise) error {
	if err := d.transition(StatePreviewed); err != nil {
		return err
	}
	d.Preview = plan
	return nil
}

// FailGeneration returns the draft to Draft so the admin can retry.
// PRE: State == StateGenerating
func (d *Draft) FailGeneration() error {
	return d.transition(StateDraft)
}

// MarkPublished records that the preview was written to the record store.
// PRE: a preview exists and no generation is in flight
// POST: State == StatePublished; the preview is kept for re-publishing
func (d *Draft) MarkPublished() error {
	if d.Preview == nil {
		return ErrNoPreview
	}
	return d.transition(StatePublished)
}

// CanPublish reports whether MarkPublished would succeed.
func (d *Draft) CanPublish() bool {
	return d.Preview != nil && isAllowedTransition(d.State, StatePublished)
}

// MarkAnnouncementPublished records an announcement post.
// Announcements bypass generation, so an in-flight generation keeps its state.
func (d *Draft) MarkAnnouncementPublished() {
	if d.State == StateGenerating {
		return
	}
	d.State = StateAnnouncementPublished
}

func (d *Draft) transition(to State) error {
	if !isAllowedTransition(d.State, to) {
		return fmt.Errorf("disallowed publish transition: %s -> %s", d.State, to)
	}
	d.State = to
	return nil
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case StateDraft:
		return to == StateGenerating
	case StateGenerating:
		return to == StatePreviewed || to == StateDraft
	case StatePreviewed, StatePublished, StateAnnouncementPublished:
		return to == StateGenerating || to == StatePublished
	default:
		return false
	}
}
