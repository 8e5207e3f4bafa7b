package model

import "time"

type TeamLocation struct {
	GameID    string    `json:"game_id"`
	TeamID    string    `json:"team_id"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	UpdatedAt time.Time `json:"updated_at"`
}
