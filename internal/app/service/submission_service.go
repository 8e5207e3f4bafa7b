package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pointhunt/internal/app/event"
	"pointhunt/internal/app/leaderboard"
	"pointhunt/internal/app/progress"
	"pointhunt/internal/common"
	"pointhunt/internal/domain/model"
	"pointhunt/internal/domain/repository"
	"pointhunt/internal/platform/database"

	"github.com/google/uuid"
)

// SubmissionService ingests answers and applies review decisions. Ingestion
// is idempotent on the client-supplied key: a retried request returns the
// original submission instead of creating a second one.
type SubmissionService struct {
	runner         database.Runner
	gameRepo       repository.GameRepository
	baseRepo       repository.BaseRepository
	teamRepo       repository.TeamRepository
	challengeRepo  repository.ChallengeRepository
	assignmentRepo repository.AssignmentRepository
	checkInRepo    repository.CheckInRepository
	submissionRepo repository.SubmissionRepository
	activityRepo   repository.ActivityEventRepository
	events         *event.Broadcaster
}

func NewSubmissionService(
	runner database.Runner,
	gameRepo repository.GameRepository,
	baseRepo repository.BaseRepository,
	teamRepo repository.TeamRepository,
	challengeRepo repository.ChallengeRepository,
	assignmentRepo repository.AssignmentRepository,
	checkInRepo repository.CheckInRepository,
	submissionRepo repository.SubmissionRepository,
	activityRepo repository.ActivityEventRepository,
	events *event.Broadcaster,
) *SubmissionService {
	return &SubmissionService{
		runner:         runner,
		gameRepo:       gameRepo,
		baseRepo:       baseRepo,
		teamRepo:       teamRepo,
		challengeRepo:  challengeRepo,
		assignmentRepo: assignmentRepo,
		checkInRepo:    checkInRepo,
		submissionRepo: submissionRepo,
		activityRepo:   activityRepo,
		events:         events,
	}
}

type SubmitRequest struct {
	BaseID         string  `json:"base_id"`
	ChallengeID    string  `json:"challenge_id"`
	Answer         string  `json:"answer"`
	FileURL        *string `json:"file_url,omitempty"`
	IdempotencyKey *string `json:"idempotency_key,omitempty"`
}

// Submit records a team's answer at a base. The team must have checked in
// there and a challenge must resolve for it. Auto-validating challenges
// approve a matching answer on the spot; everything else waits for review.
//
// Idempotency is enforced by the storage layer. The fast path checks the key
// first, but two concurrent requests with the same key can both miss; the
// loser of the insert race re-reads the winner's row and returns it, so the
// caller cannot tell which request got there first.
func (s *SubmissionService) Submit(ctx context.Context, gameID, teamID string, req SubmitRequest) (*model.Submission, error) {
	if req.IdempotencyKey != nil && *req.IdempotencyKey != "" {
		if existing, err := s.submissionRepo.FindByIdempotencyKey(ctx, *req.IdempotencyKey); err == nil {
			return existing, nil
		} else if !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
	}

	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.Status != model.GameStatusActive {
		return nil, fmt.Errorf("game is not active: %w", common.ErrInvalidState)
	}

	base, err := s.baseRepo.FindByID(ctx, req.BaseID)
	if err != nil {
		return nil, err
	}
	if base.GameID != gameID {
		return nil, common.ErrNotFound
	}

	checkIns, err := s.checkInRepo.ListByGameAndTeam(ctx, gameID, teamID)
	if err != nil {
		return nil, err
	}
	checkedIn := false
	for _, ci := range checkIns {
		if ci.BaseID == req.BaseID {
			checkedIn = true
			break
		}
	}
	if !checkedIn {
		return nil, fmt.Errorf("team has not checked in at this base: %w", common.ErrNotPermitted)
	}

	assignments, err := s.assignmentRepo.ListByGameID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	challengeID := progress.ResolveChallenge(*base, assignments, teamID)
	if challengeID == nil {
		return nil, fmt.Errorf("no challenge assigned at this base: %w", common.ErrNotPermitted)
	}
	// The client names the challenge it is answering. If an operator
	// reassigned the base since the client loaded it, the answer is for a
	// challenge the team no longer has; refuse instead of misfiling it.
	if req.ChallengeID != "" && req.ChallengeID != *challengeID {
		return nil, fmt.Errorf("challenge is not the one assigned to this team at this base: %w", common.ErrNotPermitted)
	}
	challenge, err := s.challengeRepo.FindByID(ctx, *challengeID)
	if err != nil {
		return nil, err
	}
	if challenge.AnswerType == model.AnswerTypeText && strings.TrimSpace(req.Answer) == "" {
		return nil, fmt.Errorf("answer must not be empty: %w", common.ErrValidation)
	}
	if challenge.AnswerType == model.AnswerTypePhoto && (req.FileURL == nil || *req.FileURL == "") {
		return nil, fmt.Errorf("photo challenge needs a file: %w", common.ErrValidation)
	}

	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	sub := &model.Submission{
		ID:             uuid.NewString(),
		GameID:         gameID,
		TeamID:         teamID,
		ChallengeID:    challenge.ID,
		BaseID:         req.BaseID,
		Answer:         req.Answer,
		FileURL:        req.FileURL,
		Status:         model.SubmissionPending,
		SubmittedAt:    time.Now().UTC(),
		IdempotencyKey: req.IdempotencyKey,
	}
	// A matching answer is approved on the spot. A mismatch is not rejected:
	// it stays pending so an operator can still accept a variant spelling.
	if challenge.AutoValidate && answerMatches(req.Answer, challenge.CorrectAnswers) {
		sub.Status = model.SubmissionApproved
	}

	err = s.runner.InTx(ctx, func(tx database.Tx) error {
		if err := s.submissionRepo.Create(ctx, tx, sub); err != nil {
			return err
		}
		if err := s.recordOutcome(ctx, tx, sub, challenge, team, model.ActivitySubmission,
			fmt.Sprintf("%s submitted an answer at %s", team.Name, base.Name)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateIdempotencyKey) && req.IdempotencyKey != nil {
			return s.submissionRepo.FindByIdempotencyKey(ctx, *req.IdempotencyKey)
		}
		return nil, err
	}

	if sub.Status == model.SubmissionApproved {
		s.publishLeaderboard(ctx, gameID)
	}
	return sub, nil
}

type ReviewRequest struct {
	Approve  bool    `json:"approve"`
	Feedback *string `json:"feedback,omitempty"`
}

// Review applies an operator decision. Re-reviewing is allowed; the
// leaderboard is recomputed from scratch on every read, so a corrected
// decision corrects the standings with no further bookkeeping.
func (s *SubmissionService) Review(ctx context.Context, operatorID, submissionID string, req ReviewRequest) (*model.Submission, error) {
	sub, err := s.submissionRepo.FindByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if _, err := ownedGame(ctx, s.gameRepo, sub.GameID, operatorID); err != nil {
		return nil, err
	}

	challenge, err := s.challengeRepo.FindByID(ctx, sub.ChallengeID)
	if err != nil {
		return nil, err
	}
	team, err := s.teamRepo.FindByID(ctx, sub.TeamID)
	if err != nil {
		return nil, err
	}

	status := model.SubmissionRejected
	activityType := model.ActivityRejection
	message := fmt.Sprintf("%s's answer for %s was rejected", team.Name, challenge.Title)
	if req.Approve {
		status = model.SubmissionApproved
		activityType = model.ActivityApproval
		message = fmt.Sprintf("%s completed %s (+%d points)", team.Name, challenge.Title, challenge.Points)
	}

	err = s.runner.InTx(ctx, func(tx database.Tx) error {
		if err := s.submissionRepo.UpdateReview(ctx, tx, sub.ID, status, operatorID, req.Feedback); err != nil {
			return err
		}
		sub.Status = status
		sub.ReviewedBy = &operatorID
		sub.Feedback = req.Feedback
		return s.recordOutcome(ctx, tx, sub, challenge, team, activityType, message)
	})
	if err != nil {
		return nil, err
	}

	if status == model.SubmissionApproved {
		s.publishLeaderboard(ctx, sub.GameID)
	}
	return sub, nil
}

func (s *SubmissionService) ListByGame(ctx context.Context, operatorID, gameID string) ([]model.Submission, error) {
	if _, err := ownedGame(ctx, s.gameRepo, gameID, operatorID); err != nil {
		return nil, err
	}
	return s.submissionRepo.ListByGameID(ctx, gameID)
}

func (s *SubmissionService) ListByTeam(ctx context.Context, teamID string) ([]model.Submission, error) {
	return s.submissionRepo.ListByTeamID(ctx, teamID)
}

// recordOutcome writes the activity trail for a submission state change and
// queues the realtime events on the transaction. An approval that unlocks a
// base also gets an unlock record.
func (s *SubmissionService) recordOutcome(ctx context.Context, tx database.Tx, sub *model.Submission, challenge *model.Challenge, team *model.Team, activityType model.ActivityEventType, message string) error {
	now := time.Now().UTC()
	activity := model.ActivityEvent{
		ID:          uuid.NewString(),
		GameID:      sub.GameID,
		Type:        activityType,
		TeamID:      sub.TeamID,
		BaseID:      &sub.BaseID,
		ChallengeID: &sub.ChallengeID,
		Message:     message,
		Timestamp:   now,
	}
	if err := s.activityRepo.Create(ctx, tx, &activity); err != nil {
		return err
	}
	s.events.Activity(tx, activity)

	statusData := event.SubmissionStatusData{
		SubmissionID: sub.ID,
		TeamID:       sub.TeamID,
		BaseID:       sub.BaseID,
		ChallengeID:  sub.ChallengeID,
		Status:       sub.Status,
		Feedback:     sub.Feedback,
		SubmittedAt:  sub.SubmittedAt,
		ReviewedBy:   sub.ReviewedBy,
	}
	if sub.Status == model.SubmissionApproved {
		statusData.Points = challenge.Points
	}
	s.events.SubmissionStatus(tx, sub.GameID, statusData)

	if sub.Status == model.SubmissionApproved && challenge.UnlocksBaseID != nil {
		unlock := model.ActivityEvent{
			ID:          uuid.NewString(),
			GameID:      sub.GameID,
			Type:        model.ActivityUnlock,
			TeamID:      sub.TeamID,
			BaseID:      challenge.UnlocksBaseID,
			ChallengeID: &sub.ChallengeID,
			Message:     fmt.Sprintf("%s unlocked a new base", team.Name),
			Timestamp:   now,
		}
		if err := s.activityRepo.Create(ctx, tx, &unlock); err != nil {
			return err
		}
		s.events.Activity(tx, unlock)
	}
	return nil
}

// publishLeaderboard recomputes standings from committed state and pushes
// them. Called outside the transaction: the aggregation reads through the
// pool and must see the row the transaction just wrote.
func (s *SubmissionService) publishLeaderboard(ctx context.Context, gameID string) {
	teams, err := s.teamRepo.ListByGameID(ctx, gameID)
	if err != nil {
		return
	}
	submissions, err := s.submissionRepo.ListByGameID(ctx, gameID)
	if err != nil {
		return
	}
	challenges, err := s.challengeRepo.ListByGameID(ctx, gameID)
	if err != nil {
		return
	}
	s.events.Leaderboard(nil, gameID, leaderboard.Aggregate(teams, submissions, challenges))
}

// answerMatches compares case-insensitively on trimmed input, so "River "
// matches an accepted answer of "river".
func answerMatches(answer string, accepted []string) bool {
	normalized := strings.ToLower(strings.TrimSpace(answer))
	for _, a := range accepted {
		if normalized == strings.ToLower(strings.TrimSpace(a)) {
			return true
		}
	}
	return false
}
