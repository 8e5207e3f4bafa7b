package service

import (
	"context"
	"fmt"
	"time"

	"pointhunt/internal/app/event"
	"pointhunt/internal/common"
	"pointhunt/internal/domain/model"
	"pointhunt/internal/domain/repository"
	"pointhunt/internal/platform/database"

	"github.com/google/uuid"
)

const activityFeedLimit = 50

// SubscriberCounter reports live realtime connections per game; the session
// hub implements it.
type SubscriberCounter interface {
	Subscribers(gameID string) int
}

// MonitoringService backs the operator's live view: dashboard numbers, the
// activity feed, team positions and broadcast notifications. It also takes
// player location reports.
type MonitoringService struct {
	runner           database.Runner
	gameRepo         repository.GameRepository
	teamRepo         repository.TeamRepository
	baseRepo         repository.BaseRepository
	challengeRepo    repository.ChallengeRepository
	submissionRepo   repository.SubmissionRepository
	activityRepo     repository.ActivityEventRepository
	notificationRepo repository.NotificationRepository
	locationRepo     repository.TeamLocationRepository
	subscribers      SubscriberCounter
	events           *event.Broadcaster
}

func NewMonitoringService(
	runner database.Runner,
	gameRepo repository.GameRepository,
	teamRepo repository.TeamRepository,
	baseRepo repository.BaseRepository,
	challengeRepo repository.ChallengeRepository,
	submissionRepo repository.SubmissionRepository,
	activityRepo repository.ActivityEventRepository,
	notificationRepo repository.NotificationRepository,
	locationRepo repository.TeamLocationRepository,
	subscribers SubscriberCounter,
	events *event.Broadcaster,
) *MonitoringService {
	return &MonitoringService{
		runner:           runner,
		gameRepo:         gameRepo,
		teamRepo:         teamRepo,
		baseRepo:         baseRepo,
		challengeRepo:    challengeRepo,
		submissionRepo:   submissionRepo,
		activityRepo:     activityRepo,
		notificationRepo: notificationRepo,
		locationRepo:     locationRepo,
		subscribers:      subscribers,
		events:           events,
	}
}

type Dashboard struct {
	Game               *model.Game `json:"game"`
	Teams              int         `json:"teams"`
	Bases              int         `json:"bases"`
	Challenges         int         `json:"challenges"`
	Submissions        int         `json:"submissions"`
	PendingSubmissions int         `json:"pending_submissions"`
	Subscribers        int         `json:"subscribers"`
}

func (s *MonitoringService) Dashboard(ctx context.Context, operatorID, gameID string) (*Dashboard, error) {
	game, err := ownedGame(ctx, s.gameRepo, gameID, operatorID)
	if err != nil {
		return nil, err
	}
	teams, err := s.teamRepo.CountByGameID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	bases, err := s.baseRepo.CountByGameID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	challenges, err := s.challengeRepo.CountByGameID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	total, pending, err := s.submissionRepo.CountByGameID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Game:               game,
		Teams:              teams,
		Bases:              bases,
		Challenges:         challenges,
		Submissions:        total,
		PendingSubmissions: pending,
		Subscribers:        s.subscribers.Subscribers(gameID),
	}, nil
}

func (s *MonitoringService) ActivityFeed(ctx context.Context, operatorID, gameID string) ([]model.ActivityEvent, error) {
	if _, err := ownedGame(ctx, s.gameRepo, gameID, operatorID); err != nil {
		return nil, err
	}
	return s.activityRepo.ListByGameID(ctx, gameID, activityFeedLimit)
}

func (s *MonitoringService) TeamLocations(ctx context.Context, operatorID, gameID string) ([]model.TeamLocation, error) {
	if _, err := ownedGame(ctx, s.gameRepo, gameID, operatorID); err != nil {
		return nil, err
	}
	return s.locationRepo.ListByGameID(ctx, gameID)
}

type NotifyRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Notify stores the message for late joiners and pushes it to current
// subscribers once the row is committed.
func (s *MonitoringService) Notify(ctx context.Context, operatorID, gameID string, req NotifyRequest) (*model.Notification, error) {
	if _, err := ownedGame(ctx, s.gameRepo, gameID, operatorID); err != nil {
		return nil, err
	}
	if req.Title == "" || req.Message == "" {
		return nil, fmt.Errorf("title and message are required: %w", common.ErrValidation)
	}

	n := &model.Notification{
		ID:        uuid.NewString(),
		GameID:    gameID,
		Title:     req.Title,
		Message:   req.Message,
		CreatedBy: operatorID,
		CreatedAt: time.Now().UTC(),
	}
	err := s.runner.InTx(ctx, func(tx database.Tx) error {
		if err := s.notificationRepo.Create(ctx, tx, n); err != nil {
			return err
		}
		s.events.Notification(tx, *n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (s *MonitoringService) ListNotifications(ctx context.Context, gameID string) ([]model.Notification, error) {
	return s.notificationRepo.ListByGameID(ctx, gameID)
}

// ReportLocation takes a player's position fix. Only the latest fix per team
// is kept; the broadcast carries the same snapshot that was stored.
func (s *MonitoringService) ReportLocation(ctx context.Context, gameID, teamID string, lat, lng float64) (*model.TeamLocation, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("coordinates out of range: %w", common.ErrValidation)
	}
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.Status != model.GameStatusActive {
		return nil, fmt.Errorf("game is not active: %w", common.ErrInvalidState)
	}

	loc := &model.TeamLocation{
		GameID:    gameID,
		TeamID:    teamID,
		Lat:       lat,
		Lng:       lng,
		UpdatedAt: time.Now().UTC(),
	}
	err = s.runner.InTx(ctx, func(tx database.Tx) error {
		if err := s.locationRepo.Upsert(ctx, tx, loc); err != nil {
			return err
		}
		s.events.TeamLocation(tx, *loc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loc, nil
}
