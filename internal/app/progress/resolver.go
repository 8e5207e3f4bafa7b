// Package progress derives a team's per-base standing from raw game facts.
// Everything here is pure: no storage, no clock, no side effects. The derived
// view is recomputed on every read so review decisions and assignment changes
// are reflected immediately.
package progress

import (
	"sort"

	"pointhunt/internal/domain/model"
)

// ResolveChallenge picks the challenge a team faces at a base.
//
// Precedence: a fixed challenge pinned on the base wins outright, then a
// team-scoped assignment, then an all-teams assignment. Returns nil when
// nothing applies.
func ResolveChallenge(base model.Base, assignments []model.Assignment, teamID string) *string {
	if base.FixedChallengeID != nil {
		id := *base.FixedChallengeID
		return &id
	}
	var allTeams *string
	for i := range assignments {
		a := &assignments[i]
		if a.BaseID != base.ID {
			continue
		}
		if a.TeamID != nil {
			if *a.TeamID == teamID {
				id := a.ChallengeID
				return &id
			}
			continue
		}
		id := a.ChallengeID
		allTeams = &id
	}
	return allTeams
}

// Derive computes one BaseProgress per base for the given team.
//
// A base starts as not_visited. A check-in moves it to checked_in. After
// that, the latest submission for the team's resolved challenge at that base
// decides: pending is submitted, rejected is rejected, approved is completed.
// Submissions against a challenge the team is no longer assigned are ignored,
// so reassignment quietly resets the base to checked_in.
func Derive(bases []model.Base, checkIns []model.CheckIn, assignments []model.Assignment, submissions []model.Submission, teamID string) []model.BaseProgress {
	checkedIn := make(map[string]model.CheckIn, len(checkIns))
	for _, ci := range checkIns {
		if ci.TeamID == teamID {
			checkedIn[ci.BaseID] = ci
		}
	}

	// Latest-wins ordering; ties on submitted_at fall back to insertion order.
	sorted := make([]model.Submission, 0, len(submissions))
	for _, s := range submissions {
		if s.TeamID == teamID {
			sorted = append(sorted, s)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SubmittedAt.Before(sorted[j].SubmittedAt)
	})

	latest := make(map[string]model.Submission)
	for _, s := range sorted {
		latest[s.BaseID+"/"+s.ChallengeID] = s
	}

	out := make([]model.BaseProgress, 0, len(bases))
	for _, base := range bases {
		bp := model.BaseProgress{
			BaseID:   base.ID,
			BaseName: base.Name,
			Lat:      base.Lat,
			Lng:      base.Lng,
			Status:   model.ProgressNotVisited,
		}
		bp.ChallengeID = ResolveChallenge(base, assignments, teamID)

		ci, visited := checkedIn[base.ID]
		if !visited {
			out = append(out, bp)
			continue
		}
		bp.Status = model.ProgressCheckedIn
		t := ci.CheckedInAt
		bp.CheckedInAt = &t

		if bp.ChallengeID != nil {
			if s, ok := latest[base.ID+"/"+*bp.ChallengeID]; ok {
				status := s.Status
				bp.SubmissionStatus = &status
				switch s.Status {
				case model.SubmissionApproved:
					bp.Status = model.ProgressCompleted
				case model.SubmissionRejected:
					bp.Status = model.ProgressRejected
				default:
					bp.Status = model.ProgressSubmitted
				}
			}
		}
		out = append(out, bp)
	}
	return out
}
