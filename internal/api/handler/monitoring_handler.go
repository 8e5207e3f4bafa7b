package handler

import (
	"encoding/json"
	"net/http"

	"pointhunt/internal/api/middleware"
	"pointhunt/internal/app/service"
	"pointhunt/internal/common"

	"github.com/go-chi/chi/v5"
)

// MonitoringHandler serves the operator's live view of a running game and
// the submission review queue.
type MonitoringHandler struct {
	monitoringService  *service.MonitoringService
	submissionService  *service.SubmissionService
	leaderboardService *service.LeaderboardService
}

func NewMonitoringHandler(ms *service.MonitoringService, ss *service.SubmissionService, ls *service.LeaderboardService) *MonitoringHandler {
	return &MonitoringHandler{monitoringService: ms, submissionService: ss, leaderboardService: ls}
}

func (h *MonitoringHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Use(middleware.OperatorOnly)

	r.Get("/{gameID}/dashboard", h.dashboard)
	r.Get("/{gameID}/activity", h.activityFeed)
	r.Get("/{gameID}/locations", h.teamLocations)
	r.Get("/{gameID}/leaderboard", h.leaderboard)
	r.Post("/{gameID}/notifications", h.notify)
	r.Get("/{gameID}/submissions", h.listSubmissions)
	r.Post("/submissions/{submissionID}/review", h.review)
}

func (h *MonitoringHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	dash, err := h.monitoringService.Dashboard(r.Context(), p.UserID, chi.URLParam(r, "gameID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, dash)
}

func (h *MonitoringHandler) activityFeed(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	events, err := h.monitoringService.ActivityFeed(r.Context(), p.UserID, chi.URLParam(r, "gameID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, events)
}

func (h *MonitoringHandler) teamLocations(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	locations, err := h.monitoringService.TeamLocations(r.Context(), p.UserID, chi.URLParam(r, "gameID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, locations)
}

func (h *MonitoringHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboardService.Get(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, entries)
}

func (h *MonitoringHandler) notify(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	var req service.NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	notification, err := h.monitoringService.Notify(r.Context(), p.UserID, chi.URLParam(r, "gameID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, notification)
}

func (h *MonitoringHandler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	submissions, err := h.submissionService.ListByGame(r.Context(), p.UserID, chi.URLParam(r, "gameID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, submissions)
}

func (h *MonitoringHandler) review(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	var req service.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	submission, err := h.submissionService.Review(r.Context(), p.UserID, chi.URLParam(r, "submissionID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, submission)
}
