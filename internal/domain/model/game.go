package model

import "time"

type GameStatus string

const (
	GameStatusSetup     GameStatus = "setup"
	GameStatusActive    GameStatus = "active"
	GameStatusCompleted GameStatus = "completed"
)

type Game struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	JoinCode    string     `json:"join_code"`
	Status      GameStatus `json:"status"`
	// UniformAssignment selects the auto-assignment mode on activation:
	// true gives every team the same challenge at a base, false draws a
	// distinct challenge per team.
	UniformAssignment bool       `json:"uniform_assignment"`
	StartDate         *time.Time `json:"start_date,omitempty"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	CreatedByID       string     `json:"created_by_id"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
