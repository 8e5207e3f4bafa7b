package event

import (
	"time"

	"pointhunt/internal/domain/model"
)

type Type string

const (
	TypeActivity         Type = "activity"
	TypeNotification     Type = "notification"
	TypeLeaderboard      Type = "leaderboard"
	TypeLocation         Type = "location"
	TypeGameStatus       Type = "game_status"
	TypeSubmissionStatus Type = "submission_status"
)

// EnvelopeVersion is bumped whenever the wire shape changes so clients can
// reject envelopes they do not understand.
const EnvelopeVersion = 1

// Envelope is the single wire format every realtime message travels in.
// Data is type-specific; the rest of the fields are uniform so clients can
// route on type without decoding the payload.
type Envelope struct {
	Version   int       `json:"version"`
	Type      Type      `json:"type"`
	GameID    string    `json:"gameId"`
	EmittedAt time.Time `json:"emittedAt"`
	Data      any       `json:"data"`
}

// GameStatusData announces a lifecycle transition.
type GameStatusData struct {
	Status    model.GameStatus `json:"status"`
	StartDate *time.Time       `json:"start_date,omitempty"`
	EndDate   *time.Time       `json:"end_date,omitempty"`
}

// SubmissionStatusData tells the submitting team how its answer fared.
// Points is only set on approval; ReviewedBy only after an operator decision.
type SubmissionStatusData struct {
	SubmissionID string                 `json:"submission_id"`
	TeamID       string                 `json:"team_id"`
	BaseID       string                 `json:"base_id"`
	ChallengeID  string                 `json:"challenge_id"`
	Status       model.SubmissionStatus `json:"status"`
	Points       int                    `json:"points,omitempty"`
	Feedback     *string                `json:"feedback,omitempty"`
	SubmittedAt  time.Time              `json:"submitted_at"`
	ReviewedBy   *string                `json:"reviewed_by,omitempty"`
}

// LeaderboardData carries full standings; clients replace, never merge.
type LeaderboardData struct {
	Entries []model.LeaderboardEntry `json:"entries"`
}
