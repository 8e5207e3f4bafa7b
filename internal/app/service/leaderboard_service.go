package service

import (
	"context"

	"pointhunt/internal/app/leaderboard"
	"pointhunt/internal/domain/model"
	"pointhunt/internal/domain/repository"
)

// LeaderboardService serves standings recomputed on every call.
type LeaderboardService struct {
	teamRepo       repository.TeamRepository
	submissionRepo repository.SubmissionRepository
	challengeRepo  repository.ChallengeRepository
}

func NewLeaderboardService(
	teamRepo repository.TeamRepository,
	submissionRepo repository.SubmissionRepository,
	challengeRepo repository.ChallengeRepository,
) *LeaderboardService {
	return &LeaderboardService{
		teamRepo:       teamRepo,
		submissionRepo: submissionRepo,
		challengeRepo:  challengeRepo,
	}
}

func (s *LeaderboardService) Get(ctx context.Context, gameID string) ([]model.LeaderboardEntry, error) {
	teams, err := s.teamRepo.ListByGameID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	submissions, err := s.submissionRepo.ListByGameID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	challenges, err := s.challengeRepo.ListByGameID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return leaderboard.Aggregate(teams, submissions, challenges), nil
}
