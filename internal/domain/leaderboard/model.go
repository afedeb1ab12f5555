package leaderboard

import (
	"sort"

	"grindset/internal/domain/profile"
)

// DefaultLimit is the number of entries shown on the leaderboard.
const DefaultLimit = 20

// Entry is one ranked row of the leaderboard.
type Entry struct {
	Rank          int    `json:"rank"` // 1-based position
	UserID        string `json:"-"`
	DisplayName   string `json:"display_name"`
	CurrentStreak int    `json:"current_streak"`
}

// Rank orders profiles by current streak, highest first.
// Equal streaks keep their input order, so a fixed input always ranks the same way.
// PRE: none
// POST: len(result) == len(profiles); streaks are non-increasing; profiles is not modified
func Rank(profiles []profile.Profile) []Entry {
	entries := make([]Entry, len(profiles))
	for i, p := range profiles {
		entries[i] = Entry{
			UserID:        p.ID,
			DisplayName:   p.DisplayName,
			CurrentStreak: p.CurrentStreak,
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CurrentStreak > entries[j].CurrentStreak
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Top returns the first n entries.
func Top(entries []Entry, n int) []Entry {
	if n > 0 && len(entries) > n {
		return entries[:n]
	}
	return entries
}
