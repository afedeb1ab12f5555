package completion

import (
	"errors"
	"sort"
)

// PointsPerExercise is the score awarded for each completed exercise.
const PointsPerExercise = 10

// ErrUnknownExercise is returned when toggling an ID that is not in today's plan.
var ErrUnknownExercise = errors.New("exercise is not part of today's plan")

// State is the in-session completion state of one user for one day.
// It is never persisted; values are immutable and Toggle returns a new State.
// INVARIANT: Score == PointsPerExercise * len(completed)
type State struct {
	completed             map[int]struct{}
	Score                 int
	AlreadyCompletedToday bool
}

// NewState returns the state a session starts with.
func NewState(alreadyCompletedToday bool) State {
	return State{
		completed:             map[int]struct{}{},
		AlreadyCompletedToday: alreadyCompletedToday,
	}
}

// IsCompleted reports whether id is marked complete.
func (s State) IsCompleted(id int) bool {
	_, ok := s.completed[id]
	return ok
}

// CompletedIDs returns the completed IDs in ascending order.
func (s State) CompletedIDs() []int {
	ids := make([]int, 0, len(s.completed))
	for id := range s.completed {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Count returns the number of completed exercises.
func (s State) Count() int {
	return len(s.completed)
}

// Toggle flips the completion mark of id.
// completesPlan is true when, after the toggle, every ID of a non-empty plan is
// complete and the day has not already been credited.
// PRE: plan holds today's exercise IDs
// POST: s is not modified; the returned State differs from s only at id
func (s State) Toggle(id int, plan []int) (next State, completesPlan bool, err error) {
	if !contains(plan, id) {
		return s, false, ErrUnknownExercise
	}

	next = s.clone()
	if _, ok := next.completed[id]; ok {
		delete(next.completed, id)
		next.Score -= PointsPerExercise
	} else {
		next.completed[id] = struct{}{}
		next.Score += PointsPerExercise
	}

	completesPlan = !next.AlreadyCompletedToday && len(plan) > 0 && next.coversAll(plan)
	return next, completesPlan, nil
}

// MarkCredited records that today's streak increment has been persisted.
// The flag stays set for the remainder of the session.
func (s State) MarkCredited() State {
	next := s.clone()
	next.AlreadyCompletedToday = true
	return next
}

func (s State) coversAll(plan []int) bool {
	for _, id := range plan {
		if _, ok := s.completed[id]; !ok {
			return false
		}
	}
	return true
}

func (s State) clone() State {
	c := State{
		completed:             make(map[int]struct{}, len(s.completed)+1),
		Score:                 s.Score,
		AlreadyCompletedToday: s.AlreadyCompletedToday,
	}
	for id := range s.completed {
		c.completed[id] = struct{}{}
	}
	return c
}

func contains(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
