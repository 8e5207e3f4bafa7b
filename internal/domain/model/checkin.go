package model

import "time"

// CheckIn records a team's arrival at a base. One per (team, base).
type CheckIn struct {
	ID          string    `json:"id"`
	GameID      string    `json:"game_id"`
	TeamID      string    `json:"team_id"`
	BaseID      string    `json:"base_id"`
	PlayerID    string    `json:"player_id"`
	CheckedInAt time.Time `json:"checked_in_at"`
}
