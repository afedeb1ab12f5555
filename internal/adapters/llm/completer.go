package llm

import (
	"context"
	"errors"
)

// ErrCompleterNotConfigured is returned when no completion API key is set.
var ErrCompleterNotConfigured = errors.New("text completion is not configured")

// Completer turns a prompt into completion text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Unconfigured is the Completer used when no API key is available.
// Every call fails with ErrCompleterNotConfigured.
type Unconfigured struct{}

// Complete always returns ErrCompleterNotConfigured.
func (Unconfigured) Complete(ctx context.Context, prompt string) (string, error) {
	return "", ErrCompleterNotConfigured
}
