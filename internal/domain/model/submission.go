package model

import "time"

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

type Submission struct {
	ID          string           `json:"id"`
	GameID      string           `json:"game_id"`
	TeamID      string           `json:"team_id"`
	ChallengeID string           `json:"challenge_id"`
	BaseID      string           `json:"base_id"`
	Answer      string           `json:"answer"`
	FileURL     *string          `json:"file_url,omitempty"`
	Status      SubmissionStatus `json:"status"`
	SubmittedAt time.Time        `json:"submitted_at"`
	ReviewedBy  *string          `json:"reviewed_by,omitempty"`
	Feedback    *string          `json:"feedback,omitempty"`
	// IdempotencyKey is client-supplied and unique when present; a retried
	// request bearing the same key returns the original row.
	IdempotencyKey *string `json:"idempotency_key,omitempty"`
}
