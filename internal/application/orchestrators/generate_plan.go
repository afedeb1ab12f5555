package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"grindset/internal/adapters/llm"
	"grindset/internal/adapters/metrics"
	"grindset/internal/domain/exercise"
	"grindset/internal/domain/publish"
)

// GeneratePlanInput carries input for the generate orchestrator.
type GeneratePlanInput struct {
	Goal string
}

// GeneratePlanDeps holds dependencies for GeneratePlan.
type GeneratePlanDeps struct {
	Completer llm.Completer
	Metrics   *metrics.Metrics
}

// ExecuteGeneratePlan asks the completion service for a plan and normalizes it.
// PRE: Goal is non-empty
// POST: Returns a normalized plan, or an error wrapping exercise.ErrMalformedAIOutput
// when the reply holds no JSON array
func ExecuteGeneratePlan(ctx context.Context, input GeneratePlanInput, deps GeneratePlanDeps) ([]exercise.Exercise, error) {
	goal := strings.TrimSpace(input.Goal)
	if goal == "" {
		return nil, publish.ErrEmptyGoal
	}

	text, err := deps.Completer.Complete(ctx, BuildPlanPrompt(goal))
	if err != nil {
		deps.Metrics.Generated(metrics.GenerationFailed)
		slog.Warn("plan_event", "event", "generation_failed", "error", err)
		if errors.Is(err, llm.ErrCompleterNotConfigured) {
			return nil, err
		}
		return nil, fmt.Errorf("plan generation failed: %w", err)
	}

	raw, err := exercise.ParseAIResponse(text)
	if err != nil {
		deps.Metrics.Generated(metrics.GenerationMalformed)
		slog.Warn("plan_event", "event", "malformed_output", "error", err, "chars", len(text))
		return nil, err
	}

	plan := exercise.Normalize(raw)
	deps.Metrics.Generated(metrics.GenerationSuccess)
	slog.Info("plan_event", "event", "plan_generated", "exercises", len(plan))
	return plan, nil
}
