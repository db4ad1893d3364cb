package websocket

import (
	"context"
	"net/http"

	"messagely/internal/events"
	"messagely/internal/metrics"
	"messagely/internal/middleware"
	"messagely/internal/services"
	messagely_errors "messagely/pkg/errors"
	"messagely/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Handler struct {
	auth     *services.AuthService
	hub      *Hub
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewHandler(auth *services.AuthService, hub *Hub, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{
		auth: auth,
		hub:  hub,
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Connect upgrades the request and streams the caller's own events. The token
// comes from the Authorization header or, for browsers, the token query param.
func (h *Handler) Connect(c *gin.Context) {
	token := middleware.BearerToken(c.GetHeader("Authorization"))
	if token == "" {
		token = c.Query("token")
	}

	claims, err := h.auth.ParseAccessToken(token)
	if err != nil {
		_ = c.Error(messagely_errors.ErrUnauthorized)
		c.Abort()
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warnf("websocket upgrade failed for %s: %v", claims.Username, err)
		return
	}

	client := NewClient(conn, claims.Username)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client, events.UserChannel(claims.Username))
	metrics.WebSocketConnected()
	defer metrics.WebSocketDisconnected()
	h.log.InfoCtx(c.Request.Context(), "websocket connected",
		zap.String("username", claims.Username),
		zap.String("client_id", client.ID),
	)

	go client.WriteLoop(ctx)
	client.ReadLoop()

	h.hub.Unregister(client)
	h.log.InfoCtx(c.Request.Context(), "websocket disconnected", zap.String("client_id", client.ID))
}
