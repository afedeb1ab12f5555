package orchestrators

import (
	"context"
	"errors"
	"testing"
)

// TestExecuteExplainExercise tests the prompt and the verbatim reply.
func TestExecuteExplainExercise(t *testing.T) {
	c := &stubCompleter{reply: "Keep your elbows tucked. Lower slowly. https://youtu.be/x"}

	got, err := ExecuteExplainExercise(context.Background(), ExplainExerciseInput{Name: "Diamond Pushups"}, ExplainExerciseDeps{Completer: c})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.prompts[0] != `Explain "Diamond Pushups" in 2 sentences + YouTube link.` {
		t.Errorf("prompt = %q", c.prompts[0])
	}
	if got.Text != c.reply {
		t.Errorf("Text = %q, want verbatim reply", got.Text)
	}
	if got.VideoURL != "https://www.youtube.com/results?search_query=how+to+do+Diamond+Pushups" {
		t.Errorf("VideoURL = %q", got.VideoURL)
	}
}

// TestExecuteExplainExercise_Errors tests empty names and completion failures.
func TestExecuteExplainExercise_Errors(t *testing.T) {
	if _, err := ExecuteExplainExercise(context.Background(), ExplainExerciseInput{}, ExplainExerciseDeps{Completer: &stubCompleter{}}); !errors.Is(err, ErrEmptyExerciseName) {
		t.Errorf("empty: err = %v", err)
	}
	if _, err := ExecuteExplainExercise(context.Background(), ExplainExerciseInput{Name: "Plank"}, ExplainExerciseDeps{Completer: &stubCompleter{err: errStoreDown}}); !errors.Is(err, errStoreDown) {
		t.Errorf("down: err = %v", err)
	}
}
