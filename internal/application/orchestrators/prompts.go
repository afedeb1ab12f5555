package orchestrators

import (
	"fmt"
	"net/url"
	"strings"
)

// planPromptTemplate asks the coach model for a raw JSON plan.
const planPromptTemplate = `I am the head coach. The goal/instruction for today is: "%s".

Create a detailed workout plan for today based on that instruction.
If the instruction mentions a number of exercises (e.g. "10 workouts"), generate exactly that many.
If no number is mentioned, default to 6-7 effective exercises.

Return ONLY a raw JSON Array. Do not wrap it in markdown like ` + "```json" + `.

Each object MUST strictly use these lowercase keys: "id", "name", "reps".

Example format:
[
  {"id": 1, "name": "Diamond Pushups", "reps": "3 sets of 12"},
  {"id": 2, "name": "Plank", "reps": "3 sets of 45s"}
]`

// BuildPlanPrompt returns the generation prompt for goal.
func BuildPlanPrompt(goal string) string {
	return fmt.Sprintf(planPromptTemplate, goal)
}

// BuildExplainPrompt returns the prompt asking for a short exercise explanation.
func BuildExplainPrompt(name string) string {
	return fmt.Sprintf("Explain \"%s\" in 2 sentences + YouTube link.", name)
}

// YouTubeSearchURL links to a YouTube search for how to perform the exercise.
func YouTubeSearchURL(name string) string {
	q := url.QueryEscape("how to do " + strings.TrimSpace(name))
	return "https://www.youtube.com/results?search_query=" + q
}
