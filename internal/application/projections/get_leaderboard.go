package projections

import (
	"context"
	"fmt"

	"grindset/internal/domain/leaderboard"
)

// GetLeaderboardQuery carries query parameters.
type GetLeaderboardQuery struct {
	Limit  int    // 0 uses leaderboard.DefaultLimit
	UserID string // optional: marks the caller's own entry
}

// LeaderboardRow is one ranked entry as shown to users.
type LeaderboardRow struct {
	leaderboard.Entry
	IsYou bool `json:"is_you"`
}

// GetLeaderboardResult carries the query result.
type GetLeaderboardResult struct {
	Entries []LeaderboardRow `json:"entries"`
}

// GetLeaderboardDeps holds dependencies for GetLeaderboard.
type GetLeaderboardDeps struct {
	ProfileStore ProfileStore
}

// QueryGetLeaderboard ranks complete profiles by current streak.
// Profiles without a display name are not listed.
// PRE: none
// POST: entries ordered by streak descending, ties in store order; at most Limit entries
func QueryGetLeaderboard(ctx context.Context, query GetLeaderboardQuery, deps GetLeaderboardDeps) (GetLeaderboardResult, error) {
	profiles, err := deps.ProfileStore.ListComplete(ctx)
	if err != nil {
		return GetLeaderboardResult{}, fmt.Errorf("list profiles: %w", err)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = leaderboard.DefaultLimit
	}
	entries := leaderboard.Top(leaderboard.Rank(profiles), limit)

	rows := make([]LeaderboardRow, len(entries))
	for i, e := range entries {
		rows[i] = LeaderboardRow{Entry: e, IsYou: query.UserID != "" && e.UserID == query.UserID}
	}
	return GetLeaderboardResult{Entries: rows}, nil
}
