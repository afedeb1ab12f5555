package exercise

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Defaults substituted when a field cannot be resolved from a raw record.
const (
	DefaultName = "Unknown Exercise"
	DefaultReps = "Do until failure"
)

// NameKeys lists the keys consulted, in priority order, to resolve an exercise name.
var NameKeys = []string{"name", "Name", "Exercise", "title"}

// RepsKeys lists the keys consulted, in priority order, to resolve the reps text.
var RepsKeys = []string{"reps", "Reps", "Duration"}

// ErrMalformedAIOutput is returned when completion text holds no parseable JSON array.
var ErrMalformedAIOutput = errors.New("AI did not return a valid JSON array")

// Normalize converts loosely-typed records into a canonical plan.
// IDs present in the input are discarded and reassigned from list position.
// PRE: none
// POST: len(result) == len(raw); result[i].ID == i+1; Name and Reps are never empty
func Normalize(raw []map[string]any) []Exercise {
	plan := make([]Exercise, 0, len(raw))
	for i, rec := range raw {
		plan = append(plan, Exercise{
			ID:   i + 1,
			Name: resolve(rec, NameKeys, DefaultName),
			Reps: resolve(rec, RepsKeys, DefaultReps),
		})
	}
	return plan
}

// Canonicalize re-normalizes an already typed plan, e.g. content read back from storage.
// Normalized plans are fixed points.
func Canonicalize(plan []Exercise) []Exercise {
	raw := make([]map[string]any, len(plan))
	for i, ex := range plan {
		raw[i] = map[string]any{"name": ex.Name, "reps": ex.Reps}
	}
	return Normalize(raw)
}

// resolve returns the first non-empty string value found under keys.
func resolve(rec map[string]any, keys []string, fallback string) string {
	for _, k := range keys {
		if s, ok := rec[k].(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// ParseAIResponse extracts the JSON array embedded in completion text.
// Surrounding prose and markdown fences are tolerated: the slice from the first '['
// to the last ']' is parsed. Array elements that are not objects become empty records.
// PRE: none
// POST: Returns the raw records or an error wrapping ErrMalformedAIOutput
func ParseAIResponse(text string) ([]map[string]any, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 {
		return nil, fmt.Errorf("%w: no array brackets in response", ErrMalformedAIOutput)
	}
	if end < start {
		return nil, fmt.Errorf("%w: closing bracket precedes opening bracket", ErrMalformedAIOutput)
	}

	records, err := DecodeRecords([]byte(text[start : end+1]))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAIOutput, err)
	}
	return records, nil
}

// DecodeRecords parses a JSON array into raw records for Normalize.
// Elements that are not objects ("Pushups", 42, null) become empty records.
func DecodeRecords(data []byte) ([]map[string]any, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}

	records := make([]map[string]any, 0, len(items))
	for _, item := range items {
		rec := map[string]any{}
		_ = json.Unmarshal(item, &rec)
		if rec == nil {
			rec = map[string]any{}
		}
		records = append(records, rec)
	}
	return records, nil
}
