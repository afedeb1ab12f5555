package orchestrators

import "errors"

// ErrPersistence wraps any store failure surfaced by an orchestrator.
// Callers leave their in-memory state unchanged when they see it.
var ErrPersistence = errors.New("could not save your progress")
