package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

type allowAllAuthorizer struct{}

func (allowAllAuthorizer) CanAccessChat(ctx context.Context, chatID, userID string) bool {
	return true
}

type denyAllAuthorizer struct{}

func (denyAllAuthorizer) CanAccessChat(ctx context.Context, chatID, userID string) bool {
	return false
}

func startHub(t *testing.T) *Hub {
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Shutdown)
	return hub
}

func registerClient(t *testing.T, hub *Hub, userID string, authorizer ChatAuthorizer) *Client {
	client := NewClient(hub, nil, userID, authorizer, nil)
	hub.register <- client

	deadline := time.Now().Add(2 * time.Second)
	for hub.ConnectionCount(userID) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client for %s was not registered in time", userID)
		}
		time.Sleep(5 * time.Millisecond)
	}
	return client
}

func receiveEvent(t *testing.T, client *Client) *Event {
	select {
	case data := <-client.send:
		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("invalid event frame: %v", err)
		}
		return &event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func expectNoEvent(t *testing.T, client *Client) {
	select {
	case data := <-client.send:
		t.Fatalf("unexpected event delivered: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_PublishToUser(t *testing.T) {
	hub := startHub(t)
	client := registerClient(t, hub, "u1", allowAllAuthorizer{})

	event := NewEvent(EventNotification)
	event.UserID = "u1"
	event.Payload = map[string]any{"title": "Application Accepted!"}
	hub.PublishToUser("u1", event)

	got := receiveEvent(t, client)
	if got.Type != EventNotification {
		t.Errorf("expected type %s, got %s", EventNotification, got.Type)
	}
	if got.Timestamp.IsZero() {
		t.Error("expected a timestamp on the event")
	}
}

func TestHub_PublishToAbsentUserDrops(t *testing.T) {
	hub := startHub(t)
	client := registerClient(t, hub, "u1", allowAllAuthorizer{})

	hub.PublishToUser("nobody", NewEvent(EventNotification))
	expectNoEvent(t, client)
}

func TestHub_RoomFanout(t *testing.T) {
	hub := startHub(t)
	a := registerClient(t, hub, "u1", allowAllAuthorizer{})
	b := registerClient(t, hub, "u2", allowAllAuthorizer{})
	outsider := registerClient(t, hub, "u3", allowAllAuthorizer{})

	hub.JoinRoom(a, "chat-1")
	hub.JoinRoom(b, "chat-1")

	event := NewEvent(EventMessage)
	event.ChatID = "chat-1"
	hub.PublishToChat("chat-1", event)

	if got := receiveEvent(t, a); got.ChatID != "chat-1" {
		t.Errorf("expected chat-1, got %s", got.ChatID)
	}
	receiveEvent(t, b)
	expectNoEvent(t, outsider)

	hub.LeaveRoom(b, "chat-1")
	hub.PublishToChat("chat-1", event)
	receiveEvent(t, a)
	expectNoEvent(t, b)
}

func TestHub_FullBufferDoesNotBlockPublisher(t *testing.T) {
	hub := startHub(t)
	client := registerClient(t, hub, "u1", allowAllAuthorizer{})

	event := NewEvent(EventNotification)
	done := make(chan struct{})
	go func() {
		for i := 0; i < sendBufferSize*2; i++ {
			hub.PublishToUser("u1", event)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a stalled client")
	}

	// The buffer holds the first frames; the overflow was dropped.
	drained := 0
	for {
		select {
		case <-client.send:
			drained++
			continue
		default:
		}
		break
	}
	if drained != sendBufferSize {
		t.Errorf("expected %d buffered frames, got %d", sendBufferSize, drained)
	}
}

func TestHub_UnregisterStopsDelivery(t *testing.T) {
	hub := startHub(t)
	client := registerClient(t, hub, "u1", allowAllAuthorizer{})
	hub.JoinRoom(client, "chat-1")

	hub.unregister <- client

	deadline := time.Now().Add(2 * time.Second)
	for hub.ConnectionCount("u1") != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client was not unregistered in time")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// The send channel is closed on unregister and room membership is gone.
	if _, ok := <-client.send; ok {
		t.Error("expected send channel to be closed")
	}
	hub.PublishToChat("chat-1", NewEvent(EventMessage))
}

func TestHub_InboundFrameAfterShutdownSafe(t *testing.T) {
	hub := startHub(t)
	client := registerClient(t, hub, "u1", allowAllAuthorizer{})
	hub.JoinRoom(client, "chat-1")

	hub.Shutdown()

	// The read pump outlives the hub; a late ping must be dropped, not panic
	// on the closed delivery channel.
	client.handleEvent(NewEvent(EventPing))
	hub.PublishToUser("u1", NewEvent(EventNotification))
	hub.PublishToChat("chat-1", NewEvent(EventMessage))

	if _, ok := <-client.send; ok {
		t.Error("expected the delivery channel to be closed and empty")
	}
}

func TestClient_PingGetsPongWithoutAuth(t *testing.T) {
	hub := startHub(t)
	client := NewClient(hub, nil, "", allowAllAuthorizer{}, nil)

	client.handleEvent(NewEvent(EventPing))

	got := receiveEvent(t, client)
	if got.Type != EventPong {
		t.Errorf("expected %s, got %s", EventPong, got.Type)
	}
}

func TestClient_SubscribeGatedByAuthorizer(t *testing.T) {
	hub := startHub(t)
	denied := registerClient(t, hub, "u1", denyAllAuthorizer{})
	allowed := registerClient(t, hub, "u2", allowAllAuthorizer{})

	subscribe := NewEvent(EventSubscribe)
	subscribe.ChatID = "chat-1"
	denied.handleEvent(subscribe)
	allowed.handleEvent(subscribe)

	hub.PublishToChat("chat-1", NewEvent(EventMessage))
	receiveEvent(t, allowed)
	expectNoEvent(t, denied)
}

func TestClient_TypingRelayOnlyInJoinedRooms(t *testing.T) {
	hub := startHub(t)
	sender := registerClient(t, hub, "u1", allowAllAuthorizer{})
	peer := registerClient(t, hub, "u2", allowAllAuthorizer{})
	hub.JoinRoom(peer, "chat-1")

	typing := NewEvent(EventTyping)
	typing.ChatID = "chat-1"

	// Not joined yet: the relay is suppressed.
	sender.handleEvent(typing)
	expectNoEvent(t, peer)

	hub.JoinRoom(sender, "chat-1")
	sender.handleEvent(typing)

	got := receiveEvent(t, peer)
	if got.Type != EventTyping || got.UserID != "u1" {
		t.Errorf("expected typing relay from u1, got %s from %s", got.Type, got.UserID)
	}
}
