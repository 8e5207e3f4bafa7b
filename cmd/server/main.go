package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pointhunt/internal/api"
	"pointhunt/internal/app/event"
	"pointhunt/internal/app/realtime"
	"pointhunt/internal/app/service"
	"pointhunt/internal/common/security"
	"pointhunt/internal/domain/repository"
	"pointhunt/internal/platform/config"
	"pointhunt/internal/platform/database"
	"pointhunt/internal/platform/pubsub"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(migrateCtx, database.DB); err != nil {
		migrateCancel()
		log.Fatalf("Migration failed: %v", err)
	}
	migrateCancel()
	fmt.Println("Schema up to date.")

	// 4. Initialize Redis
	pubsub.ConnectRedis()
	defer pubsub.CloseRedis()
	fmt.Println("Redis connected.")

	// 5. Initialize Repositories
	runner := database.NewRunner(database.DB)
	userRepo := repository.NewPgUserRepository(database.DB)
	gameRepo := repository.NewPgGameRepository(database.DB)
	baseRepo := repository.NewPgBaseRepository(database.DB)
	challengeRepo := repository.NewPgChallengeRepository(database.DB)
	teamRepo := repository.NewPgTeamRepository(database.DB)
	assignmentRepo := repository.NewPgAssignmentRepository(database.DB)
	checkInRepo := repository.NewPgCheckInRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)
	activityRepo := repository.NewPgActivityEventRepository(database.DB)
	notificationRepo := repository.NewPgNotificationRepository(database.DB)
	locationRepo := repository.NewPgTeamLocationRepository(database.DB)

	// 6. Initialize realtime fan-out. The hub serves in-process websocket
	// subscribers; the Redis sink mirrors the stream for other instances.
	hub := realtime.NewHub(logger)
	redisSink := event.NewRedisSink(pubsub.RDB, config.AppConfig.EventChannelPrefix)
	events := event.NewBroadcaster(config.AppConfig.EventBufferSize, logger, hub, redisSink)
	defer events.Close()

	// 7. Initialize Services
	authService := service.NewAuthService(userRepo, teamRepo, gameRepo)
	assignmentService := service.NewAssignmentService(runner, gameRepo, baseRepo, challengeRepo, teamRepo, assignmentRepo)
	gameService := service.NewGameService(runner, gameRepo, baseRepo, teamRepo, challengeRepo,
		assignmentRepo, checkInRepo, submissionRepo, activityRepo, locationRepo, assignmentService, events)
	contentService := service.NewContentService(gameRepo, baseRepo, challengeRepo, teamRepo, assignmentRepo)
	progressService := service.NewProgressService(runner, gameRepo, baseRepo, teamRepo,
		assignmentRepo, checkInRepo, submissionRepo, activityRepo, events)
	submissionService := service.NewSubmissionService(runner, gameRepo, baseRepo, teamRepo, challengeRepo,
		assignmentRepo, checkInRepo, submissionRepo, activityRepo, events)
	leaderboardService := service.NewLeaderboardService(teamRepo, submissionRepo, challengeRepo)
	monitoringService := service.NewMonitoringService(runner, gameRepo, teamRepo, baseRepo, challengeRepo,
		submissionRepo, activityRepo, notificationRepo, locationRepo, hub, events)

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(authService, gameService, contentService, assignmentService,
		progressService, submissionService, leaderboardService, monitoringService, hub)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
