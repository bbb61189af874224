package websockets

import (
	"context"
	"time"

	"cronify/internal/events"
)

const AUTH_HANDSHAKE_TIMEOUT = 10 * time.Second

// startAuthTimeout closes the connection if no valid auth_response arrives in
// time.
func (c *Client) startAuthTimeout() {
	log := c.Manager.log.Function("startAuthTimeout")

	go func() {
		select {
		case <-time.After(AUTH_HANDSHAKE_TIMEOUT):
		case <-c.ctx.Done():
			return
		}

		if c.IsAuthenticated() {
			return
		}

		log.Warn("Client failed to authenticate within timeout, disconnecting",
			"clientID", c.ID,
			"timeout", AUTH_HANDSHAKE_TIMEOUT)

		c.sendAuthFailure("authentication_timeout", "Authentication timeout")
	}()
}

func (c *Client) handleAuthResponse(message Message) {
	log := c.Manager.log.Function("handleAuthResponse")

	if c.IsAuthenticated() {
		log.Warn("Auth response from already authenticated client", "clientID", c.ID)
		return
	}

	token, ok := message.Data["token"].(string)
	if !ok || token == "" {
		c.sendAuthFailure("authentication_failed", "Invalid token format")
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, 5*time.Second)
	defer cancel()

	claims, err := c.Manager.auth.ValidateToken(ctx, token)
	if err != nil {
		log.Info("WebSocket token validation failed", "clientID", c.ID, "error", err.Error())
		c.sendAuthFailure("authentication_failed", "Authentication failed")
		return
	}

	c.authenticate(claims.UserID)
	log.Info("WebSocket client authenticated", "clientID", c.ID, "userID", claims.UserID)

	success := newMessage(events.AUTH_SUCCESS, SYSTEM_CHANNEL, "authenticated", map[string]any{
		"userId": claims.UserID.String(),
	})
	success.UserID = claims.UserID.String()
	c.enqueue(success)
}

// sendAuthFailure notifies the client and closes the connection shortly
// after so the message can flush.
func (c *Client) sendAuthFailure(action, reason string) {
	c.enqueue(newMessage(events.AUTH_FAILURE, SYSTEM_CHANNEL, action, map[string]any{"reason": reason}))

	c.Manager.log.Function("sendAuthFailure").
		Info("Auth failure sent, closing connection", "clientID", c.ID, "reason", reason)

	if c.Connection == nil {
		return
	}
	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = c.Connection.Close()
	}()
}

func (c *Client) sendAuthRequest() error {
	log := c.Manager.log.Function("sendAuthRequest")

	request := newMessage(events.AUTH_REQUEST, SYSTEM_CHANNEL, "authenticate", nil)
	if err := c.Connection.WriteJSON(request); err != nil {
		return log.Err("failed to send auth request", err, "clientID", c.ID)
	}

	return nil
}

func (c *Client) handleUnauthenticatedMessage(message Message) {
	c.Manager.log.Function("handleUnauthenticatedMessage").
		Warn("Blocking message from unauthenticated client", "clientID", c.ID, "messageType", message.Type)

	c.enqueue(newMessage(events.AUTH_FAILURE, SYSTEM_CHANNEL, "authentication_required", map[string]any{
		"reason": "Authentication required",
	}))
}
