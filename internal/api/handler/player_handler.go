package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"pointhunt/internal/api/middleware"
	"pointhunt/internal/app/service"
	"pointhunt/internal/common"
	"pointhunt/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

// PlayerHandler is the in-game surface. Every route derives its game and
// team scope from the player token, so a client can never read or write
// another game's state by changing a path parameter.
type PlayerHandler struct {
	gameService        *service.GameService
	contentService     *service.ContentService
	progressService    *service.ProgressService
	submissionService  *service.SubmissionService
	leaderboardService *service.LeaderboardService
	monitoringService  *service.MonitoringService
}

func NewPlayerHandler(
	gs *service.GameService,
	cs *service.ContentService,
	ps *service.ProgressService,
	ss *service.SubmissionService,
	ls *service.LeaderboardService,
	ms *service.MonitoringService,
) *PlayerHandler {
	return &PlayerHandler{
		gameService:        gs,
		contentService:     cs,
		progressService:    ps,
		submissionService:  ss,
		leaderboardService: ls,
		monitoringService:  ms,
	}
}

func (h *PlayerHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Use(middleware.PlayerOnly)

	r.Get("/game", h.game)
	r.Get("/bases", h.bases)
	r.Get("/bases/{baseID}/challenge", h.challenge)
	r.Get("/progress", h.progress)
	r.Post("/checkin", h.checkIn)
	r.Post("/submissions", h.submit)
	r.Get("/submissions", h.submissions)
	r.Get("/leaderboard", h.leaderboard)
	r.Get("/notifications", h.notifications)
	r.Post("/location", h.reportLocation)
}

func (h *PlayerHandler) game(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	game, err := h.gameService.GetForPlayer(r.Context(), p.GameID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, game)
}

func (h *PlayerHandler) bases(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	bases, err := h.contentService.ListBases(r.Context(), p.GameID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, bases)
}

func (h *PlayerHandler) challenge(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	challenge, err := h.contentService.ChallengeForTeam(r.Context(), p.GameID, p.TeamID, chi.URLParam(r, "baseID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, challenge)
}

func (h *PlayerHandler) progress(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	view, err := h.progressService.TeamProgress(r.Context(), p.GameID, p.TeamID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, view)
}

type checkInRequest struct {
	BaseID string `json:"base_id"`
}

type checkInResponse struct {
	CheckIn   *model.CheckIn   `json:"check_in"`
	Challenge *model.Challenge `json:"challenge,omitempty"`
}

func (h *PlayerHandler) checkIn(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	checkIn, err := h.progressService.CheckIn(r.Context(), p.GameID, p.TeamID, p.PlayerID, req.BaseID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	// A waypoint base has no challenge; the client still gets the check-in.
	challenge, err := h.contentService.ChallengeForTeam(r.Context(), p.GameID, p.TeamID, req.BaseID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, checkInResponse{CheckIn: checkIn, Challenge: challenge})
}

func (h *PlayerHandler) submit(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	var req service.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	submission, err := h.submissionService.Submit(r.Context(), p.GameID, p.TeamID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, submission)
}

func (h *PlayerHandler) submissions(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	submissions, err := h.submissionService.ListByTeam(r.Context(), p.TeamID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, submissions)
}

func (h *PlayerHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	entries, err := h.leaderboardService.Get(r.Context(), p.GameID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, entries)
}

func (h *PlayerHandler) notifications(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	notifications, err := h.monitoringService.ListNotifications(r.Context(), p.GameID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, notifications)
}

type locationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (h *PlayerHandler) reportLocation(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	loc, err := h.monitoringService.ReportLocation(r.Context(), p.GameID, p.TeamID, req.Lat, req.Lng)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, loc)
}
