package websockets

import (
	"context"
	"sync"
	"time"

	"cronify/internal/events"
	"cronify/internal/logger"
	"cronify/internal/services"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	PING_INTERVAL     = 30 * time.Second
	PONG_TIMEOUT      = 60 * time.Second
	WRITE_TIMEOUT     = 10 * time.Second
	MAX_MESSAGE_SIZE  = 64 * 1024
	SEND_CHANNEL_SIZE = 64

	SYSTEM_CHANNEL = "system"
	USER_CHANNEL   = "user"
	TIMER_CHANNEL  = "timer"
)

type Message struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Channel   string         `json:"channel,omitempty"`
	Action    string         `json:"action,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func newMessage(messageType events.MessageType, channel, action string, data map[string]any) Message {
	return Message{
		ID:        uuid.New().String(),
		Type:      string(messageType),
		Channel:   channel,
		Action:    action,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// Subscriber is the read side of the event bus.
type Subscriber interface {
	Subscribe(channel events.Channel, handler events.EventHandler) error
}

type Client struct {
	ID         string
	Connection *websocket.Conn
	Manager    *Manager

	mu     sync.RWMutex
	userID uuid.UUID
	status int
	closed bool
	send   chan Message
	timers map[uuid.UUID]*timerSubscription

	ctx    context.Context
	cancel context.CancelFunc
}

func newClient(m *Manager, conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		ID:         uuid.New().String(),
		Connection: conn,
		Manager:    m,
		status:     STATUS_UNAUTHENTICATED,
		send:       make(chan Message, SEND_CHANNEL_SIZE),
		timers:     make(map[uuid.UUID]*timerSubscription),
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (c *Client) UserID() uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

func (c *Client) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status == STATUS_AUTHENTICATED
}

func (c *Client) authenticate(userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
	c.status = STATUS_AUTHENTICATED
}

// enqueue queues a message without blocking. It reports false when the client
// is closed or its buffer is full.
func (c *Client) enqueue(message Message) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// close stops timers and closes the send channel. Safe to call twice.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.status = STATUS_CLOSED
	c.cancel()
	close(c.send)
}

type Manager struct {
	hub    *Hub
	log    logger.Logger
	auth   services.TokenValidator
	timers TimerSource
}

func New(
	bus Subscriber,
	auth services.TokenValidator,
	timers TimerSource,
) (*Manager, error) {
	log := logger.New("websockets")

	manager := &Manager{
		hub: &Hub{
			broadcast:  make(chan Message),
			register:   make(chan *Client),
			unregister: make(chan *Client),
			clients:    make(map[string]*Client),
		},
		log:    log,
		auth:   auth,
		timers: timers,
	}

	log.Function("New").Info("Starting websocket hub")
	go manager.hub.run(manager)

	if err := manager.subscribeToEvents(bus); err != nil {
		return nil, err
	}

	return manager, nil
}

func (m *Manager) HandleWebSocket(c *websocket.Conn) {
	log := m.log.Function("HandleWebSocket")

	client := newClient(m, c)

	if err := client.sendAuthRequest(); err != nil {
		if err := c.Close(); err != nil {
			log.Er("failed to close connection", err)
		}
		return
	}

	m.hub.register <- client
	client.startAuthTimeout()

	defer func() {
		m.hub.unregister <- client
		if err := c.Close(); err != nil {
			log.Debug("connection already closed", "clientID", client.ID, "error", err)
		}
	}()

	go client.readPump()
	client.writePump()
}

func (m *Manager) BroadcastMessage(message Message) {
	log := m.log.Function("BroadcastMessage")

	select {
	case m.hub.broadcast <- message:
	default:
		log.Warn("Broadcast channel is busy, dropping message", "messageID", message.ID)
	}
}

func (c *Client) readPump() {
	log := c.Manager.log.Function("readPump")
	defer func() {
		c.Manager.hub.unregister <- c
		_ = c.Connection.Close()
	}()

	c.Connection.SetReadLimit(MAX_MESSAGE_SIZE)
	if err := c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT)); err != nil {
		log.Er("failed to set read deadline", err, "clientID", c.ID)
	}
	c.Connection.SetPongHandler(func(string) error {
		return c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT))
	})

	for {
		var message Message
		if err := c.Connection.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
			) {
				log.Er("Unexpected close error", err, "clientID", c.ID)
			}
			return
		}

		message.ID = uuid.New().String()
		message.Timestamp = time.Now().UTC()

		c.routeMessage(message)
	}
}

func (c *Client) routeMessage(message Message) {
	log := c.Manager.log.Function("routeMessage")

	if events.MessageType(message.Type) == events.AUTH_RESPONSE {
		c.handleAuthResponse(message)
		return
	}

	if !c.IsAuthenticated() {
		c.handleUnauthenticatedMessage(message)
		return
	}

	switch events.MessageType(message.Type) {
	case events.PING:
		c.enqueue(newMessage(events.PONG, SYSTEM_CHANNEL, "pong", nil))
	case events.TIMER_SUBSCRIBE:
		c.handleTimerSubscribe(message)
	case events.TIMER_UNSUBSCRIBE:
		c.handleTimerUnsubscribe(message)
	default:
		log.Warn("Unknown message type", "clientID", c.ID, "type", message.Type)
		c.sendError("unknown message type")
	}
}

func (c *Client) sendError(reason string) {
	c.enqueue(newMessage(events.ERROR, SYSTEM_CHANNEL, "error", map[string]any{"reason": reason}))
}

func (c *Client) writePump() {
	log := c.Manager.log.Function("writePump")

	ticker := time.NewTicker(PING_INTERVAL)
	defer func() {
		ticker.Stop()
		_ = c.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline", err, "clientID", c.ID)
			}
			if !ok {
				_ = c.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Connection.WriteJSON(message); err != nil {
				log.Er("WebSocket write error", err, "clientID", c.ID)
				return
			}

		case <-ticker.C:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline for ping", err, "clientID", c.ID)
			}
			if err := c.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (m *Manager) subscribeToEvents(bus Subscriber) error {
	log := m.log.Function("subscribeToEvents")

	if bus == nil {
		log.Warn("No event bus, realtime notifications disabled")
		return nil
	}

	if err := bus.Subscribe(events.USER_CHANNEL, m.relayUserEvent); err != nil {
		return log.Err("failed to subscribe to user events", err)
	}

	if err := bus.Subscribe(events.BROADCAST_CHANNEL, func(event events.Event) error {
		m.BroadcastMessage(newMessage(event.Type, SYSTEM_CHANNEL, "broadcast", event.Data))
		return nil
	}); err != nil {
		return log.Err("failed to subscribe to broadcast events", err)
	}

	return nil
}

// relayUserEvent forwards a bus event to every connection of its user.
func (m *Manager) relayUserEvent(event events.Event) error {
	log := m.log.Function("relayUserEvent")

	if event.UserID == nil {
		log.Warn("User event without user id", "eventID", event.ID, "eventType", event.Type)
		return nil
	}

	message := newMessage(event.Type, USER_CHANNEL, string(event.Type), event.Data)
	message.UserID = event.UserID.String()
	m.SendMessageToUser(*event.UserID, message)

	if event.Type == events.TIMER_RESET {
		if habitID, err := uuid.Parse(stringField(event.Data, "habitId")); err == nil {
			m.refreshTimers(*event.UserID, habitID)
		}
	}

	return nil
}

func stringField(data map[string]any, key string) string {
	value, _ := data[key].(string)
	return value
}
