package realtime

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// Hub maintains the live connections keyed by user identity plus per-chat
// subscription rooms. Delivery is best-effort: a full client buffer or an
// absent connection drops the event, persistence already happened upstream.
type Hub struct {
	mu    sync.RWMutex
	users map[string]map[*Client]struct{}
	rooms map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	stopOnce   sync.Once
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		users:      make(map[string]map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Run processes connection lifecycle events until Shutdown.
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
			logrus.WithFields(logrus.Fields{
				"user_id": client.userID,
			}).Debug("realtime client registered")

		case client := <-h.unregister:
			h.removeClient(client)
			logrus.WithFields(logrus.Fields{
				"user_id": client.userID,
			}).Debug("realtime client unregistered")

		case <-h.stop:
			h.closeAll()
			return
		}
	}
}

func (h *Hub) Shutdown() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.users[client.userID] == nil {
		h.users[client.userID] = make(map[*Client]struct{})
	}
	h.users[client.userID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	last := false

	h.mu.Lock()
	if conns, ok := h.users[client.userID]; ok {
		if _, present := conns[client]; present {
			delete(conns, client)
			if len(conns) == 0 {
				delete(h.users, client.userID)
				last = true
			}
			for room := range client.rooms {
				h.leaveRoomLocked(client, room)
			}
			client.closeSend()
		}
	}
	h.mu.Unlock()

	// The user's last connection going away also retires the presence key.
	if last {
		client.clearPresence()
	}
}

func (h *Hub) closeAll() {
	var clients []*Client

	h.mu.Lock()
	for userID, conns := range h.users {
		for client := range conns {
			client.closeSend()
			clients = append(clients, client)
		}
		delete(h.users, userID)
	}
	h.rooms = make(map[string]map[*Client]struct{})
	h.mu.Unlock()

	for _, client := range clients {
		client.clearPresence()
	}
}

// JoinRoom subscribes a client to a chat's live event stream. Authorization
// happened before this is called.
func (h *Hub) JoinRoom(client *Client, chatID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[chatID] == nil {
		h.rooms[chatID] = make(map[*Client]struct{})
	}
	h.rooms[chatID][client] = struct{}{}
	client.rooms[chatID] = struct{}{}
}

func (h *Hub) LeaveRoom(client *Client, chatID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveRoomLocked(client, chatID)
	delete(client.rooms, chatID)
}

func (h *Hub) leaveRoomLocked(client *Client, chatID string) {
	if clients, ok := h.rooms[chatID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, chatID)
		}
	}
}

// PublishToUser pushes an event to every live connection of the user. No
// connection means the event is dropped; the durable copy is fetched on the
// next poll.
func (h *Hub) PublishToUser(userID string, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).Error("failed to marshal realtime event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.users[userID] {
		client.trySend(data)
	}
}

// PublishToChat fans an event out to every connection subscribed to the chat.
func (h *Hub) PublishToChat(chatID string, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).Error("failed to marshal realtime event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[chatID] {
		client.trySend(data)
	}
}

// ConnectionCount reports live connections for a user.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}
