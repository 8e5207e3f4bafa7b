package model

import "time"

// Assignment maps a challenge to a base, either for one team or (when
// TeamID is nil) for every team without a team-specific assignment there.
// At most one assignment may exist per (game, base) for a given scope.
type Assignment struct {
	ID          string    `json:"id"`
	GameID      string    `json:"game_id"`
	BaseID      string    `json:"base_id"`
	ChallengeID string    `json:"challenge_id"`
	TeamID      *string   `json:"team_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
