package websockets

import (
	"sync"

	"github.com/google/uuid"
)

const (
	STATUS_UNAUTHENTICATED = iota
	STATUS_PENDING
	STATUS_AUTHENTICATED
	STATUS_CLOSED
)

type Hub struct {
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	clients    map[string]*Client
	mutex      sync.RWMutex
}

func (h *Hub) run(m *Manager) {
	for {
		select {
		case client := <-h.register:
			m.registerClient(client)

		case client := <-h.unregister:
			m.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message, m)
		}
	}
}

func (m *Manager) registerClient(client *Client) {
	m.hub.mutex.Lock()
	m.hub.clients[client.ID] = client
	m.hub.mutex.Unlock()

	m.log.Function("registerClient").Debug("Client registered", "clientID", client.ID)
}

// unregisterClient is idempotent; both pumps unregister on exit.
func (m *Manager) unregisterClient(client *Client) {
	m.hub.mutex.Lock()
	_, known := m.hub.clients[client.ID]
	delete(m.hub.clients, client.ID)
	m.hub.mutex.Unlock()

	client.close()

	if known {
		m.log.Function("unregisterClient").
			Debug("Client unregistered", "clientID", client.ID, "userID", client.UserID())
	}
}

func (h *Hub) broadcastMessage(message Message, m *Manager) {
	log := m.log.Function("broadcastMessage")

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	sent, dropped := 0, 0
	for _, client := range h.clients {
		if !client.IsAuthenticated() {
			continue
		}
		if client.enqueue(message) {
			sent++
		} else {
			dropped++
		}
	}

	log.Debug("Broadcast complete", "messageID", message.ID, "sentTo", sent, "dropped", dropped)
}

// ClientCount returns the number of open connections, authenticated or not.
func (m *Manager) ClientCount() int {
	m.hub.mutex.RLock()
	defer m.hub.mutex.RUnlock()
	return len(m.hub.clients)
}

func (m *Manager) userClients(userID uuid.UUID) []*Client {
	m.hub.mutex.RLock()
	defer m.hub.mutex.RUnlock()

	var clients []*Client
	for _, client := range m.hub.clients {
		if client.IsAuthenticated() && client.UserID() == userID {
			clients = append(clients, client)
		}
	}
	return clients
}

// SendMessageToUser delivers message to every authenticated connection of
// userID. It returns how many connections accepted it.
func (m *Manager) SendMessageToUser(userID uuid.UUID, message Message) int {
	log := m.log.Function("SendMessageToUser")

	clients := m.userClients(userID)
	if len(clients) == 0 {
		log.Debug("No connections found for user", "userID", userID)
		return 0
	}

	sent := 0
	for _, client := range clients {
		if client.enqueue(message) {
			sent++
			continue
		}
		log.Warn("Client send buffer full, dropping message", "clientID", client.ID, "userID", userID)
	}

	log.Debug(
		"Message sent to user connections",
		"userID", userID,
		"messageID", message.ID,
		"sentTo", sent,
		"totalConnections", len(clients),
	)
	return sent
}
