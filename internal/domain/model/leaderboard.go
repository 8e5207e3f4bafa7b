package model

// LeaderboardEntry is derived on demand from approved submissions; it is
// never maintained incrementally, so later review corrections cannot cause
// drift.
type LeaderboardEntry struct {
	Rank                int    `json:"rank"`
	TeamID              string `json:"team_id"`
	TeamName            string `json:"team_name"`
	Color               string `json:"color"`
	Points              int    `json:"points"`
	CompletedChallenges int    `json:"completed_challenges"`
}
