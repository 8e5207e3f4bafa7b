package model

import "time"

type Base struct {
	ID          string  `json:"id"`
	GameID      string  `json:"game_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	// FixedChallengeID pins every team at this base to one challenge,
	// overriding any assignment.
	FixedChallengeID *string   `json:"fixed_challenge_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
