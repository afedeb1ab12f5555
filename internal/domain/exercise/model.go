package exercise

// Exercise is one item of a day's workout plan.
// ID is the 1-based position of the exercise within its plan.
type Exercise struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Reps string `json:"reps"` // free text, e.g. "3 sets of 12"
}

// IDs returns the exercise IDs of a plan in plan order.
func IDs(plan []Exercise) []int {
	ids := make([]int, len(plan))
	for i, ex := range plan {
		ids[i] = ex.ID
	}
	return ids
}

// Find returns the exercise with the given ID.
// PRE: none
// POST: ok is false when no exercise in plan carries id
func Find(plan []Exercise, id int) (Exercise, bool) {
	for _, ex := range plan {
		if ex.ID == id {
			return ex, true
		}
	}
	return Exercise{}, false
}
