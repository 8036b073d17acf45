package realtime

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/zephyros1603/urbanup/internal/identity"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades HTTP requests to live connections.
type Handler struct {
	hub        *Hub
	verifier   identity.TokenVerifier
	authorizer ChatAuthorizer
	presence   *PresenceStore
}

func NewHandler(hub *Hub, verifier identity.TokenVerifier, authorizer ChatAuthorizer, presence *PresenceStore) *Handler {
	return &Handler{
		hub:        hub,
		verifier:   verifier,
		authorizer: authorizer,
		presence:   presence,
	}
}

// HandleConnection authenticates once at connect time: bearer header first,
// then the token query parameter for clients that cannot set headers. A
// failed auth leaves the socket open but unregistered, so it never receives
// deliveries.
func (h *Handler) HandleConnection(c echo.Context) error {
	userID := h.authenticate(c)

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade failed")
		return nil
	}

	client := NewClient(h.hub, conn, userID, h.authorizer, h.presence)
	if client.authenticated() {
		h.hub.register <- client
		client.heartbeat()
	} else {
		logrus.Debug("unauthenticated websocket connection, delivery disabled")
	}

	go client.WritePump()
	go client.ReadPump()
	return nil
}

// Presence reports whether a user currently holds a live connection. A local
// hub registration answers immediately; otherwise the advisory redis heartbeat
// covers connections held by other instances.
func (h *Handler) Presence(c echo.Context) error {
	userID := c.Param("userId")

	online := h.hub.ConnectionCount(userID) > 0
	if !online && h.presence != nil {
		online = h.presence.IsOnline(c.Request().Context(), userID)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user_id": userID,
		"online":  online,
	})
}

func (h *Handler) authenticate(c echo.Context) string {
	token := ""
	if auth := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		token = strings.TrimPrefix(auth, "Bearer ")
	} else if q := c.QueryParam("token"); q != "" {
		token = q
	}
	if token == "" {
		return ""
	}

	userID, err := h.verifier.Verify(token)
	if err != nil {
		return ""
	}
	return userID
}
