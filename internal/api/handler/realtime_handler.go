package handler

import (
	"context"
	"net/http"

	"pointhunt/internal/api/middleware"
	"pointhunt/internal/app/realtime"
	"pointhunt/internal/app/service"
	"pointhunt/internal/common"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"
)

// RealtimeHandler upgrades subscribers onto the session hub. Operators may
// watch any game they own; players only the game their token is scoped to.
type RealtimeHandler struct {
	hub         *realtime.Hub
	gameService *service.GameService
}

func NewRealtimeHandler(hub *realtime.Hub, gs *service.GameService) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, gameService: gs}
}

func (h *RealtimeHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/{gameID}/ws", h.subscribe)
}

// wsConn adapts a websocket connection to the hub's transport interface.
type wsConn struct {
	c *websocket.Conn
}

func (w wsConn) Send(ctx context.Context, payload []byte) error {
	return w.c.Write(ctx, websocket.MessageText, payload)
}

func (w wsConn) Close() error {
	return w.c.Close(websocket.StatusNormalClosure, "")
}

func (h *RealtimeHandler) subscribe(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	gameID := chi.URLParam(r, "gameID")

	if p.IsPlayer() {
		if p.GameID != gameID {
			common.RespondWithError(w, http.StatusForbidden, "Token is not scoped to this game")
			return
		}
	} else {
		if _, err := h.gameService.Get(r.Context(), p.UserID, gameID); err != nil {
			common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
			return
		}
	}

	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}

	session := h.hub.Register(gameID, wsConn{c: c})
	defer func() {
		h.hub.Unregister(gameID, session)
		c.Close(websocket.StatusNormalClosure, "")
	}()

	// This is a push-only stream. The read loop exists to notice the peer
	// going away; any inbound payload is discarded.
	ctx := r.Context()
	for {
		if _, _, err := c.Read(ctx); err != nil {
			return
		}
	}
}
