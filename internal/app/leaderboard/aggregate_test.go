package leaderboard

import (
	"testing"

	"pointhunt/internal/domain/model"
)

var challenges = []model.Challenge{
	{ID: "c10", Points: 10},
	{ID: "c11", Points: 10},
	{ID: "c20", Points: 20},
}

func TestAggregateScoresApprovedOnly(t *testing.T) {
	teams := []model.Team{
		{ID: "red", Name: "Red"},
		{ID: "blue", Name: "Blue"},
	}
	submissions := []model.Submission{
		{TeamID: "red", BaseID: "b1", ChallengeID: "c10", Status: model.SubmissionApproved},
		{TeamID: "red", BaseID: "b2", ChallengeID: "c20", Status: model.SubmissionPending},
		{TeamID: "blue", BaseID: "b1", ChallengeID: "c20", Status: model.SubmissionRejected},
	}

	entries := Aggregate(teams, submissions, challenges)
	if entries[0].TeamID != "red" || entries[0].Points != 10 || entries[0].CompletedChallenges != 1 {
		t.Errorf("unexpected leader: %+v", entries[0])
	}
	if entries[1].TeamID != "blue" || entries[1].Points != 0 {
		t.Errorf("zero-point team should still appear: %+v", entries[1])
	}
}

func TestAggregateCountsChallengeOncePerTeam(t *testing.T) {
	teams := []model.Team{{ID: "red", Name: "Red"}}
	submissions := []model.Submission{
		{TeamID: "red", BaseID: "b1", ChallengeID: "c10", Status: model.SubmissionApproved},
		{TeamID: "red", BaseID: "b1", ChallengeID: "c10", Status: model.SubmissionApproved},
		// Same challenge assigned at a second base scores nothing extra.
		{TeamID: "red", BaseID: "b2", ChallengeID: "c10", Status: model.SubmissionApproved},
		{TeamID: "red", BaseID: "b2", ChallengeID: "c20", Status: model.SubmissionApproved},
	}

	entries := Aggregate(teams, submissions, challenges)
	if entries[0].Points != 30 || entries[0].CompletedChallenges != 2 {
		t.Errorf("a challenge must count once per team across bases: %+v", entries[0])
	}
}

func TestAggregateTieBreakDeterministic(t *testing.T) {
	teams := []model.Team{
		{ID: "b", Name: "Bravo"},
		{ID: "a", Name: "Alpha"},
		{ID: "c", Name: "Charlie"},
	}
	submissions := []model.Submission{
		// Alpha and Bravo tie on points; Bravo completed more challenges.
		{TeamID: "a", BaseID: "b1", ChallengeID: "c20", Status: model.SubmissionApproved},
		{TeamID: "b", BaseID: "b1", ChallengeID: "c10", Status: model.SubmissionApproved},
		{TeamID: "b", BaseID: "b2", ChallengeID: "c11", Status: model.SubmissionApproved},
	}

	for i := 0; i < 10; i++ {
		entries := Aggregate(teams, submissions, challenges)
		got := []string{entries[0].TeamID, entries[1].TeamID, entries[2].TeamID}
		if got[0] != "b" || got[1] != "a" || got[2] != "c" {
			t.Fatalf("run %d: unexpected order %v", i, got)
		}
		for j, e := range entries {
			if e.Rank != j+1 {
				t.Fatalf("rank must be dense from 1, got %d at position %d", e.Rank, j)
			}
		}
	}
}

func TestAggregateNameBreaksFullTie(t *testing.T) {
	teams := []model.Team{
		{ID: "z", Name: "Zulu"},
		{ID: "a", Name: "Alpha"},
	}
	entries := Aggregate(teams, nil, challenges)
	if entries[0].TeamName != "Alpha" || entries[1].TeamName != "Zulu" {
		t.Errorf("full tie should order by name: %s, %s", entries[0].TeamName, entries[1].TeamName)
	}
}

func TestAggregateReflectsReversedDecision(t *testing.T) {
	teams := []model.Team{{ID: "red", Name: "Red"}}
	submissions := []model.Submission{
		{TeamID: "red", BaseID: "b1", ChallengeID: "c20", Status: model.SubmissionApproved},
	}
	if got := Aggregate(teams, submissions, challenges)[0].Points; got != 20 {
		t.Fatalf("expected 20 points, got %d", got)
	}

	submissions[0].Status = model.SubmissionRejected
	if got := Aggregate(teams, submissions, challenges)[0].Points; got != 0 {
		t.Errorf("reversed decision should remove the points, got %d", got)
	}
}
