package model

import "time"

type AnswerType string

const (
	AnswerTypeText  AnswerType = "text"
	AnswerTypePhoto AnswerType = "photo"
)

type Challenge struct {
	ID           string     `json:"id"`
	GameID       string     `json:"game_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	AnswerType   AnswerType `json:"answer_type"`
	AutoValidate bool       `json:"auto_validate"`
	// CorrectAnswers is the ordered list of accepted answers; matching is
	// case-insensitive on trimmed input.
	CorrectAnswers []string `json:"correct_answers,omitempty"`
	Points         int      `json:"points"`
	// LocationBound challenges only make sense at a specific base and are
	// excluded from the random auto-assignment pool.
	LocationBound bool      `json:"location_bound"`
	UnlocksBaseID *string   `json:"unlocks_base_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
