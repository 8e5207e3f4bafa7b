package handler

import (
	"encoding/json"
	"net/http"

	"pointhunt/internal/api/middleware"
	"pointhunt/internal/app/service"
	"pointhunt/internal/common"

	"github.com/go-chi/chi/v5"
)

// GameHandler covers the operator surface: game CRUD, lifecycle transitions,
// content setup and challenge assignment.
type GameHandler struct {
	gameService       *service.GameService
	contentService    *service.ContentService
	assignmentService *service.AssignmentService
}

func NewGameHandler(gs *service.GameService, cs *service.ContentService, as *service.AssignmentService) *GameHandler {
	return &GameHandler{gameService: gs, contentService: cs, assignmentService: as}
}

func (h *GameHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Use(middleware.OperatorOnly)

	r.Post("/", h.createGame)
	r.Get("/", h.listGames)
	r.Get("/{gameID}", h.getGame)
	r.Post("/{gameID}/activate", h.activateGame)
	r.Post("/{gameID}/complete", h.completeGame)
	r.Post("/{gameID}/reset", h.resetGame)

	r.Post("/{gameID}/bases", h.createBase)
	r.Get("/{gameID}/bases", h.listBases)
	r.Post("/{gameID}/challenges", h.createChallenge)
	r.Get("/{gameID}/challenges", h.listChallenges)
	r.Post("/{gameID}/teams", h.createTeam)
	r.Get("/{gameID}/teams", h.listTeams)

	r.Post("/{gameID}/assignments", h.assign)
	r.Post("/{gameID}/assignments/bulk", h.bulkAssign)
	r.Get("/{gameID}/assignments", h.listAssignments)
}

func (h *GameHandler) createGame(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	var req service.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	game, err := h.gameService.Create(r.Context(), p.UserID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, game)
}

func (h *GameHandler) listGames(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	games, err := h.gameService.List(r.Context(), p.UserID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, games)
}

func (h *GameHandler) getGame(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	game, err := h.gameService.Get(r.Context(), p.UserID, chi.URLParam(r, "gameID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, game)
}

func (h *GameHandler) activateGame(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	game, err := h.gameService.Activate(r.Context(), p.UserID, chi.URLParam(r, "gameID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, game)
}

func (h *GameHandler) completeGame(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	game, err := h.gameService.Complete(r.Context(), p.UserID, chi.URLParam(r, "gameID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, game)
}

func (h *GameHandler) resetGame(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	game, err := h.gameService.Reset(r.Context(), p.UserID, chi.URLParam(r, "gameID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, game)
}

func (h *GameHandler) createBase(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	var req service.CreateBaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	base, err := h.contentService.CreateBase(r.Context(), p.UserID, chi.URLParam(r, "gameID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, base)
}

func (h *GameHandler) listBases(w http.ResponseWriter, r *http.Request) {
	bases, err := h.contentService.ListBases(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, bases)
}

func (h *GameHandler) createChallenge(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	var req service.CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	challenge, err := h.contentService.CreateChallenge(r.Context(), p.UserID, chi.URLParam(r, "gameID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, challenge)
}

func (h *GameHandler) listChallenges(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	challenges, err := h.contentService.ListChallenges(r.Context(), p.UserID, chi.URLParam(r, "gameID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, challenges)
}

func (h *GameHandler) createTeam(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	var req service.CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	team, err := h.contentService.CreateTeam(r.Context(), p.UserID, chi.URLParam(r, "gameID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, team)
}

func (h *GameHandler) listTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.contentService.ListTeams(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, teams)
}

func (h *GameHandler) assign(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	var item service.AssignItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	assignment, err := h.assignmentService.Assign(r.Context(), p.UserID, chi.URLParam(r, "gameID"), item)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, assignment)
}

func (h *GameHandler) bulkAssign(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	req := service.BulkAssignRequest{GameID: chi.URLParam(r, "gameID")}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	req.GameID = chi.URLParam(r, "gameID")
	assignments, err := h.assignmentService.BulkAssign(r.Context(), p.UserID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, assignments)
}

func (h *GameHandler) listAssignments(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	assignments, err := h.assignmentService.List(r.Context(), p.UserID, chi.URLParam(r, "gameID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, assignments)
}
