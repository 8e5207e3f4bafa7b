package model

import "time"

// Notification is an operator-authored message pushed to a game's
// subscribers and kept for late joiners.
type Notification struct {
	ID        string    `json:"id"`
	GameID    string    `json:"game_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
