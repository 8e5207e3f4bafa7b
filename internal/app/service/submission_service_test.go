package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pointhunt/internal/app/event"
	"pointhunt/internal/common"
	"pointhunt/internal/domain/model"
)

type submissionWorld struct {
	svc         *SubmissionService
	games       *fakeGameRepo
	bases       *fakeBaseRepo
	teams       *fakeTeamRepo
	challenges  *fakeChallengeRepo
	assignments *fakeAssignmentRepo
	checkIns    *fakeCheckInRepo
	submissions *fakeSubmissionRepo
	activities  *fakeActivityRepo
	sink        *recordingSink
	events      *event.Broadcaster
}

// newSubmissionWorld wires an active game with one base, one team checked in
// there, and one auto-validating 10-point challenge assigned to all teams.
func newSubmissionWorld(t *testing.T) *submissionWorld {
	t.Helper()
	w := &submissionWorld{
		games:       newFakeGameRepo(),
		bases:       &fakeBaseRepo{},
		teams:       &fakeTeamRepo{},
		challenges:  &fakeChallengeRepo{},
		assignments: &fakeAssignmentRepo{},
		checkIns:    &fakeCheckInRepo{},
		submissions: &fakeSubmissionRepo{},
		activities:  &fakeActivityRepo{},
		sink:        &recordingSink{},
	}
	w.events = event.NewBroadcaster(64, quietLogger(), w.sink)
	w.svc = NewSubmissionService(memRunner{}, w.games, w.bases, w.teams, w.challenges,
		w.assignments, w.checkIns, w.submissions, w.activities, w.events)

	ctx := context.Background()
	w.games.Create(ctx, &model.Game{ID: "game", Status: model.GameStatusActive, CreatedByID: "op"})
	w.bases.Create(ctx, &model.Base{ID: "base", GameID: "game", Name: "Old Mill"})
	w.teams.Create(ctx, &model.Team{ID: "team", GameID: "game", Name: "Red"})
	w.challenges.Create(ctx, &model.Challenge{
		ID: "riddle", GameID: "game", Title: "Riddle", AnswerType: model.AnswerTypeText,
		AutoValidate: true, CorrectAnswers: []string{"river"}, Points: 10,
	})
	w.assignments.CreateBatch(ctx, nil, []model.Assignment{
		{ID: "a1", GameID: "game", BaseID: "base", ChallengeID: "riddle"},
	})
	w.checkIns.Create(ctx, nil, &model.CheckIn{
		ID: "ci", GameID: "game", TeamID: "team", BaseID: "base", PlayerID: "p1", CheckedInAt: time.Now(),
	})
	return w
}

func TestSubmitAutoValidateApproves(t *testing.T) {
	w := newSubmissionWorld(t)
	sub, err := w.svc.Submit(context.Background(), "game", "team", SubmitRequest{
		BaseID:      "base",
		ChallengeID: "riddle",
		Answer:      " River ",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.Status != model.SubmissionApproved {
		t.Errorf("trimmed case-insensitive match should approve, got %s", sub.Status)
	}

	w.events.Close()
	statuses := w.sink.byType(event.TypeSubmissionStatus)
	if len(statuses) != 1 {
		t.Fatalf("expected one submission_status event, got %d", len(statuses))
	}
	data := statuses[0].Data.(map[string]any)
	if data["status"] != string(model.SubmissionApproved) {
		t.Errorf("event status: %v", data["status"])
	}
	if data["points"] != float64(10) {
		t.Errorf("approval event should carry the points, got %v", data["points"])
	}
	if at, _ := data["submitted_at"].(string); at == "" {
		t.Errorf("event should carry the submission time, got %v", data["submitted_at"])
	}
	if len(w.sink.byType(event.TypeLeaderboard)) != 1 {
		t.Errorf("approval should push fresh standings")
	}
	if len(w.activities.events) != 1 || w.activities.events[0].Type != model.ActivitySubmission {
		t.Errorf("expected a submission activity record")
	}
}

func TestSubmitAutoValidateMismatchStaysPending(t *testing.T) {
	w := newSubmissionWorld(t)
	sub, err := w.svc.Submit(context.Background(), "game", "team", SubmitRequest{
		BaseID: "base",
		Answer: "mountain",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.Status != model.SubmissionPending {
		t.Errorf("non-matching answer should await review, got %s", sub.Status)
	}

	w.events.Close()
	if len(w.sink.byType(event.TypeLeaderboard)) != 0 {
		t.Errorf("a pending submission must not push standings")
	}
}

func TestSubmitWrongChallengeNotPermitted(t *testing.T) {
	w := newSubmissionWorld(t)
	w.challenges.Create(context.Background(), &model.Challenge{
		ID: "other", GameID: "game", Title: "Other", AnswerType: model.AnswerTypeText, Points: 5,
	})

	// "other" exists in the game but is not what resolves at this base.
	_, err := w.svc.Submit(context.Background(), "game", "team", SubmitRequest{
		BaseID: "base", ChallengeID: "other", Answer: "river",
	})
	if !errors.Is(err, common.ErrNotPermitted) {
		t.Errorf("submitting for an unassigned challenge should be not-permitted, got %v", err)
	}
	if len(w.submissions.submissions) != 0 {
		t.Errorf("refused submission must not be stored")
	}
	w.events.Close()
}

func TestSubmitIdempotentReplay(t *testing.T) {
	w := newSubmissionWorld(t)
	key := "retry-key-1"
	req := SubmitRequest{BaseID: "base", Answer: "river", IdempotencyKey: &key}

	first, err := w.svc.Submit(context.Background(), "game", "team", req)
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second, err := w.svc.Submit(context.Background(), "game", "team", req)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("replay returned a different submission: %s vs %s", first.ID, second.ID)
	}
	if len(w.submissions.submissions) != 1 {
		t.Errorf("replay created a second row, have %d", len(w.submissions.submissions))
	}
	w.events.Close()
}

// racingSubmissionRepo makes the idempotency-key fast path miss a set number
// of times, as if a concurrent request inserted the row between the lookup
// and the insert.
type racingSubmissionRepo struct {
	*fakeSubmissionRepo
	misses int
}

func (r *racingSubmissionRepo) FindByIdempotencyKey(ctx context.Context, key string) (*model.Submission, error) {
	if r.misses > 0 {
		r.misses--
		return nil, common.ErrNotFound
	}
	return r.fakeSubmissionRepo.FindByIdempotencyKey(ctx, key)
}

func TestSubmitIdempotentInsertRaceRecovers(t *testing.T) {
	w := newSubmissionWorld(t)
	racing := &racingSubmissionRepo{fakeSubmissionRepo: w.submissions, misses: 1}
	svc := NewSubmissionService(memRunner{}, w.games, w.bases, w.teams, w.challenges,
		w.assignments, w.checkIns, racing, w.activities, w.events)

	// The concurrent winner's row is already stored when our lookup misses.
	key := "retry-key-2"
	w.submissions.Create(context.Background(), nil, &model.Submission{
		ID: "winner", GameID: "game", TeamID: "team", ChallengeID: "riddle", BaseID: "base",
		Answer: "river", Status: model.SubmissionApproved, SubmittedAt: time.Now(),
		IdempotencyKey: &key,
	})

	sub, err := svc.Submit(context.Background(), "game", "team", SubmitRequest{
		BaseID: "base", Answer: "river", IdempotencyKey: &key,
	})
	if err != nil {
		t.Fatalf("losing the insert race must recover, got %v", err)
	}
	if sub.ID != "winner" {
		t.Errorf("race loser should return the winner's row, got %s", sub.ID)
	}
	if len(w.submissions.submissions) != 1 {
		t.Errorf("race must not create a second row, have %d", len(w.submissions.submissions))
	}
	w.events.Close()
}

func TestSubmitRequiresCheckIn(t *testing.T) {
	w := newSubmissionWorld(t)
	w.teams.Create(context.Background(), &model.Team{ID: "latecomers", GameID: "game", Name: "Blue"})

	_, err := w.svc.Submit(context.Background(), "game", "latecomers", SubmitRequest{
		BaseID: "base", Answer: "river",
	})
	if !errors.Is(err, common.ErrNotPermitted) {
		t.Errorf("expected not-permitted, got %v", err)
	}
	w.events.Close()
}

func TestSubmitRejectedWhenGameNotActive(t *testing.T) {
	w := newSubmissionWorld(t)
	w.games.games["game"].Status = model.GameStatusSetup

	_, err := w.svc.Submit(context.Background(), "game", "team", SubmitRequest{
		BaseID: "base", Answer: "river",
	})
	if !errors.Is(err, common.ErrInvalidState) {
		t.Errorf("expected invalid-state, got %v", err)
	}
	w.events.Close()
}

func TestReviewApproveUnlocksAndScores(t *testing.T) {
	w := newSubmissionWorld(t)
	hidden := "hidden-base"
	w.bases.Create(context.Background(), &model.Base{ID: hidden, GameID: "game", Name: "Hidden"})
	w.challenges.Create(context.Background(), &model.Challenge{
		ID: "photo", GameID: "game", Title: "Photo hunt", AnswerType: model.AnswerTypePhoto,
		Points: 25, UnlocksBaseID: &hidden,
	})
	fileURL := "https://files.example/photo.jpg"
	w.submissions.Create(context.Background(), nil, &model.Submission{
		ID: "sub", GameID: "game", TeamID: "team", ChallengeID: "photo", BaseID: "base",
		FileURL: &fileURL, Status: model.SubmissionPending, SubmittedAt: time.Now(),
	})

	reviewed, err := w.svc.Review(context.Background(), "op", "sub", ReviewRequest{Approve: true})
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if reviewed.Status != model.SubmissionApproved {
		t.Errorf("expected approval, got %s", reviewed.Status)
	}

	w.events.Close()
	var unlockSeen bool
	for _, e := range w.activities.events {
		if e.Type == model.ActivityUnlock && e.BaseID != nil && *e.BaseID == hidden {
			unlockSeen = true
		}
	}
	if !unlockSeen {
		t.Errorf("approval of an unlocking challenge should record the unlock")
	}

	statuses := w.sink.byType(event.TypeSubmissionStatus)
	if len(statuses) != 1 {
		t.Fatalf("expected one submission_status event, got %d", len(statuses))
	}
	if statuses[0].Data.(map[string]any)["points"] != float64(25) {
		t.Errorf("approval event should carry the challenge points")
	}
	if statuses[0].Data.(map[string]any)["reviewed_by"] != "op" {
		t.Errorf("review event should name the reviewer, got %v", statuses[0].Data.(map[string]any)["reviewed_by"])
	}
	if len(w.sink.byType(event.TypeLeaderboard)) != 1 {
		t.Errorf("approval should push fresh standings")
	}
}

func TestReviewRejectWithFeedback(t *testing.T) {
	w := newSubmissionWorld(t)
	w.submissions.Create(context.Background(), nil, &model.Submission{
		ID: "sub", GameID: "game", TeamID: "team", ChallengeID: "riddle", BaseID: "base",
		Answer: "mountain", Status: model.SubmissionPending, SubmittedAt: time.Now(),
	})

	feedback := "Look closer at the map"
	reviewed, err := w.svc.Review(context.Background(), "op", "sub", ReviewRequest{Approve: false, Feedback: &feedback})
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if reviewed.Status != model.SubmissionRejected {
		t.Errorf("expected rejection, got %s", reviewed.Status)
	}
	if reviewed.Feedback == nil || *reviewed.Feedback != feedback {
		t.Errorf("feedback lost")
	}

	w.events.Close()
	if len(w.sink.byType(event.TypeLeaderboard)) != 0 {
		t.Errorf("rejection must not push standings")
	}
}

func TestReviewForeignGameForbidden(t *testing.T) {
	w := newSubmissionWorld(t)
	w.submissions.Create(context.Background(), nil, &model.Submission{
		ID: "sub", GameID: "game", TeamID: "team", ChallengeID: "riddle", BaseID: "base",
		Status: model.SubmissionPending,
	})

	_, err := w.svc.Review(context.Background(), "someone-else", "sub", ReviewRequest{Approve: true})
	if !errors.Is(err, common.ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
	w.events.Close()
}

func TestAnswerMatches(t *testing.T) {
	cases := []struct {
		answer   string
		accepted []string
		want     bool
	}{
		{"river", []string{"river"}, true},
		{" River ", []string{"river"}, true},
		{"RIVER", []string{"creek", "river"}, true},
		{"rivers", []string{"river"}, false},
		{"", []string{"river"}, false},
		{"river", nil, false},
	}
	for _, c := range cases {
		if got := answerMatches(c.answer, c.accepted); got != c.want {
			t.Errorf("answerMatches(%q, %v) = %v, want %v", c.answer, c.accepted, got, c.want)
		}
	}
}
