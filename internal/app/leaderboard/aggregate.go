// Package leaderboard ranks teams from approved submissions. Like the
// progress derivation it is a pure recomputation, never an incremental
// counter, so a reversed review decision corrects the standings on the next
// read with no repair step.
package leaderboard

import (
	"sort"

	"pointhunt/internal/domain/model"
)

// Aggregate builds the ranked standings for one game. Every team appears,
// including teams with zero points. Only approved submissions score, and a
// challenge counts at most once per team, even when it was assigned (and
// approved) at more than one base.
//
// Ordering is deterministic: points descending, then completed challenges
// descending, then team name ascending. Ranks are dense from 1.
func Aggregate(teams []model.Team, submissions []model.Submission, challenges []model.Challenge) []model.LeaderboardEntry {
	points := make(map[string]int, len(challenges))
	for _, c := range challenges {
		points[c.ID] = c.Points
	}

	type tally struct {
		points    int
		completed int
	}
	scores := make(map[string]*tally, len(teams))
	for _, t := range teams {
		scores[t.ID] = &tally{}
	}

	counted := make(map[string]bool)
	for _, s := range submissions {
		if s.Status != model.SubmissionApproved {
			continue
		}
		t, ok := scores[s.TeamID]
		if !ok {
			continue
		}
		key := s.TeamID + "/" + s.ChallengeID
		if counted[key] {
			continue
		}
		counted[key] = true
		t.points += points[s.ChallengeID]
		t.completed++
	}

	entries := make([]model.LeaderboardEntry, 0, len(teams))
	for _, team := range teams {
		t := scores[team.ID]
		entries = append(entries, model.LeaderboardEntry{
			TeamID:              team.ID,
			TeamName:            team.Name,
			Color:               team.Color,
			Points:              t.points,
			CompletedChallenges: t.completed,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		if entries[i].CompletedChallenges != entries[j].CompletedChallenges {
			return entries[i].CompletedChallenges > entries[j].CompletedChallenges
		}
		return entries[i].TeamName < entries[j].TeamName
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
