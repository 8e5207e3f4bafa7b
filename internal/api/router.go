package api

import (
	"net/http"
	"time"

	"pointhunt/internal/api/handler"
	"pointhunt/internal/app/realtime"
	"pointhunt/internal/app/service"
	"pointhunt/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	gameService *service.GameService,
	contentService *service.ContentService,
	assignmentService *service.AssignmentService,
	progressService *service.ProgressService,
	submissionService *service.SubmissionService,
	leaderboardService *service.LeaderboardService,
	monitoringService *service.MonitoringService,
	hub *realtime.Hub,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Token lookup includes the query string because browser websocket
	// clients cannot set an Authorization header on the upgrade request.
	r.Use(jwtauth.Verify(security.TokenAuth, jwtauth.TokenFromHeader, jwtauth.TokenFromQuery))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		// Auth routes (public)
		authHandler := handler.NewAuthHandler(authService)
		v1.Group(func(publicAuth chi.Router) {
			authHandler.RegisterRoutes(publicAuth)
		})

		// Operator game management
		gameHandler := handler.NewGameHandler(gameService, contentService, assignmentService)
		v1.Route("/games", gameHandler.RegisterRoutes)

		// Operator live monitoring and review
		monitoringHandler := handler.NewMonitoringHandler(monitoringService, submissionService, leaderboardService)
		v1.Route("/monitor", monitoringHandler.RegisterRoutes)

		// Player gameplay, scoped by the player token
		playerHandler := handler.NewPlayerHandler(gameService, contentService, progressService, submissionService, leaderboardService, monitoringService)
		v1.Route("/player", playerHandler.RegisterRoutes)

		// Realtime subscriptions
		realtimeHandler := handler.NewRealtimeHandler(hub, gameService)
		v1.Route("/realtime", realtimeHandler.RegisterRoutes)
	})

	return r
}
