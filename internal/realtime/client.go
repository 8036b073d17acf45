package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 4096
	sendBufferSize = 64
)

// ChatAuthorizer gates chat-room subscriptions; the chat service implements
// it with the strict participant rule.
type ChatAuthorizer interface {
	CanAccessChat(ctx context.Context, chatID, userID string) bool
}

// Client is one live connection. userID is empty when connect-time auth
// failed; such a connection stays open but is never registered and never
// receives deliveries.
type Client struct {
	userID     string
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	rooms      map[string]struct{}
	authorizer ChatAuthorizer
	presence   *PresenceStore

	// mu guards send against a close racing a late inbound frame: the read
	// pump outlives the hub, so a queued send after shutdown must be a no-op,
	// not a panic.
	mu     sync.Mutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string, authorizer ChatAuthorizer, presence *PresenceStore) *Client {
	return &Client{
		userID:     userID,
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufferSize),
		rooms:      make(map[string]struct{}),
		authorizer: authorizer,
		presence:   presence,
	}
}

func (c *Client) authenticated() bool {
	return c.userID != ""
}

// trySend queues data without blocking. A stalled consumer loses the frame
// rather than stalling the publisher; a closed client drops it silently.
func (c *Client) trySend(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		logrus.WithField("user_id", c.userID).Warn("realtime send buffer full, dropping event")
	}
}

// closeSend shuts the delivery channel exactly once; later trySend calls
// become no-ops.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) clearPresence() {
	if c.presence != nil && c.authenticated() {
		c.presence.Clear(context.Background(), c.userID)
	}
}

// ReadPump consumes inbound control frames until the connection drops.
func (c *Client) ReadPump() {
	defer func() {
		if c.authenticated() {
			c.hub.unregister <- c
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.heartbeat()
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).WithField("user_id", c.userID).Debug("websocket read error")
			}
			return
		}

		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			logrus.WithField("user_id", c.userID).Warn("invalid realtime frame, skipping")
			continue
		}

		c.handleEvent(&event)
	}
}

// WritePump flushes queued events and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleEvent(event *Event) {
	if event.Type == EventPing {
		pong := NewEvent(EventPong)
		if data, err := json.Marshal(pong); err == nil {
			c.trySend(data)
		}
		c.heartbeat()
		return
	}

	// Everything below requires an authenticated connection.
	if !c.authenticated() {
		return
	}

	switch event.Type {
	case EventSubscribe:
		if event.ChatID == "" {
			return
		}
		if !c.authorizer.CanAccessChat(context.Background(), event.ChatID, c.userID) {
			logrus.WithFields(logrus.Fields{
				"user_id": c.userID,
				"chat_id": event.ChatID,
			}).Warn("unauthorized chat subscription rejected")
			return
		}
		c.hub.JoinRoom(c, event.ChatID)

	case EventUnsubscribe:
		if event.ChatID != "" {
			c.hub.LeaveRoom(c, event.ChatID)
		}

	case EventTyping, EventPresence:
		// Relay only into rooms the client has already joined, so the
		// participant check cannot be bypassed.
		if _, joined := c.rooms[event.ChatID]; !joined {
			return
		}
		relay := NewEvent(event.Type)
		relay.ChatID = event.ChatID
		relay.UserID = c.userID
		relay.Payload = event.Payload
		c.hub.PublishToChat(event.ChatID, relay)
		if event.Type == EventPresence {
			c.heartbeat()
		}
	}
}

func (c *Client) heartbeat() {
	if c.presence != nil && c.authenticated() {
		c.presence.Heartbeat(context.Background(), c.userID)
	}
}
