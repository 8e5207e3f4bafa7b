package model

import "time"

type ProgressStatus string

const (
	ProgressNotVisited ProgressStatus = "not_visited"
	ProgressCheckedIn  ProgressStatus = "checked_in"
	ProgressSubmitted  ProgressStatus = "submitted"
	ProgressRejected   ProgressStatus = "rejected"
	ProgressCompleted  ProgressStatus = "completed"
)

// BaseProgress is the derived view of one team's standing at one base.
// Never persisted; recomputed from check-ins, assignments and submissions.
type BaseProgress struct {
	BaseID           string            `json:"base_id"`
	BaseName         string            `json:"base_name"`
	Lat              float64           `json:"lat"`
	Lng              float64           `json:"lng"`
	Status           ProgressStatus    `json:"status"`
	CheckedInAt      *time.Time        `json:"checked_in_at,omitempty"`
	ChallengeID      *string           `json:"challenge_id,omitempty"`
	SubmissionStatus *SubmissionStatus `json:"submission_status,omitempty"`
}
