package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func presenceFor(t *testing.T, handler *Handler, userID string) bool {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("userId")
	c.SetParamValues(userID)

	if err := handler.Presence(c); err != nil {
		t.Fatalf("presence lookup failed: %v", err)
	}

	var body struct {
		UserID string `json:"user_id"`
		Online bool   `json:"online"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid presence body: %v", err)
	}
	if body.UserID != userID {
		t.Errorf("expected user %s in the body, got %s", userID, body.UserID)
	}
	return body.Online
}

func TestHandler_PresenceFollowsHubConnections(t *testing.T) {
	hub := startHub(t)
	handler := NewHandler(hub, nil, nil, nil)

	if presenceFor(t, handler, "u1") {
		t.Error("expected u1 offline before connecting")
	}

	registerClient(t, hub, "u1", allowAllAuthorizer{})

	if !presenceFor(t, handler, "u1") {
		t.Error("expected u1 online while connected")
	}
	if presenceFor(t, handler, "u2") {
		t.Error("expected u2 offline")
	}
}
