package model

import "time"

type ActivityEventType string

const (
	ActivityCheckIn    ActivityEventType = "check_in"
	ActivitySubmission ActivityEventType = "submission"
	ActivityApproval   ActivityEventType = "approval"
	ActivityRejection  ActivityEventType = "rejection"
	ActivityUnlock     ActivityEventType = "unlock"
)

// ActivityEvent is an append-only audit record. Rows are written once and
// never mutated; game reset is the only bulk erase.
type ActivityEvent struct {
	ID          string            `json:"id"`
	GameID      string            `json:"game_id"`
	Type        ActivityEventType `json:"type"`
	TeamID      string            `json:"team_id"`
	BaseID      *string           `json:"base_id,omitempty"`
	ChallengeID *string           `json:"challenge_id,omitempty"`
	Message     string            `json:"message"`
	Timestamp   time.Time         `json:"timestamp"`
}
