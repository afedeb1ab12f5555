package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"grindset/internal/adapters/llm"
)

// ErrEmptyExerciseName is returned when asking about an unnamed exercise.
var ErrEmptyExerciseName = errors.New("exercise name cannot be empty")

// ExplainExerciseInput carries input for the explain orchestrator.
type ExplainExerciseInput struct {
	Name string
}

// ExplainExerciseDeps holds dependencies for ExplainExercise.
type ExplainExerciseDeps struct {
	Completer llm.Completer
}

// Explanation is the completion text plus a video search link.
type Explanation struct {
	Exercise string `json:"exercise"`
	Text     string `json:"text"`
	VideoURL string `json:"video_url"`
}

// ExecuteExplainExercise asks for a two-sentence explanation of an exercise.
// The completion text is returned verbatim.
// PRE: Name is non-empty
func ExecuteExplainExercise(ctx context.Context, input ExplainExerciseInput, deps ExplainExerciseDeps) (Explanation, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Explanation{}, ErrEmptyExerciseName
	}

	text, err := deps.Completer.Complete(ctx, BuildExplainPrompt(name))
	if err != nil {
		return Explanation{}, fmt.Errorf("explain %q: %w", name, err)
	}
	return Explanation{
		Exercise: name,
		Text:     text,
		VideoURL: YouTubeSearchURL(name),
	}, nil
}
