package websockets

import (
	"context"
	"time"

	"cronify/internal/events"
	"cronify/internal/models"
	"cronify/internal/utils"

	"github.com/google/uuid"
)

const (
	TIMER_TICK_INTERVAL = time.Second
	// MAX_TIMER_SUBSCRIPTIONS caps concurrent timers per connection
	MAX_TIMER_SUBSCRIPTIONS = 20
)

// TimerSource loads a break habit the user may watch, plus the zone its
// start date is read in.
type TimerSource interface {
	LoadTimer(ctx context.Context, userID, habitID uuid.UUID) (*models.Habit, *time.Location, error)
}

type timerSubscription struct {
	habitID uuid.UUID
	refresh chan struct{}
	cancel  context.CancelFunc
}

func (c *Client) handleTimerSubscribe(message Message) {
	log := c.Manager.log.Function("handleTimerSubscribe")

	habitID, err := uuid.Parse(stringField(message.Data, "habitId"))
	if err != nil {
		c.sendError("invalid habitId")
		return
	}

	if c.Manager.timers == nil {
		c.sendError("timers unavailable")
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, 5*time.Second)
	habit, loc, err := c.Manager.timers.LoadTimer(ctx, c.UserID(), habitID)
	cancel()
	if err != nil {
		log.Info("Timer subscription rejected", "clientID", c.ID, "habitID", habitID, "error", err.Error())
		c.sendError("timer not found")
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if existing, ok := c.timers[habitID]; ok {
		existing.cancel()
		delete(c.timers, habitID)
	}
	if len(c.timers) >= MAX_TIMER_SUBSCRIPTIONS {
		c.mu.Unlock()
		c.sendError("too many timer subscriptions")
		return
	}

	subCtx, subCancel := context.WithCancel(c.ctx)
	sub := &timerSubscription{
		habitID: habitID,
		refresh: make(chan struct{}, 1),
		cancel:  subCancel,
	}
	c.timers[habitID] = sub
	c.mu.Unlock()

	go c.runTimer(subCtx, sub, habit, loc)
}

func (c *Client) handleTimerUnsubscribe(message Message) {
	habitID, err := uuid.Parse(stringField(message.Data, "habitId"))
	if err != nil {
		c.sendError("invalid habitId")
		return
	}

	c.mu.Lock()
	if sub, ok := c.timers[habitID]; ok {
		sub.cancel()
		delete(c.timers, habitID)
	}
	c.mu.Unlock()
}

// runTimer pushes a snapshot right away and then once per tick until the
// subscription or the connection ends.
func (c *Client) runTimer(ctx context.Context, sub *timerSubscription, habit *models.Habit, loc *time.Location) {
	log := c.Manager.log.Function("runTimer")

	ticker := time.NewTicker(TIMER_TICK_INTERVAL)
	defer ticker.Stop()

	c.pushTick(habit, loc)

	for {
		select {
		case <-ctx.Done():
			return

		case <-sub.refresh:
			loadCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			fresh, freshLoc, err := c.Manager.timers.LoadTimer(loadCtx, c.UserID(), sub.habitID)
			cancel()
			if err != nil {
				log.Info("Timer refresh failed, stopping", "clientID", c.ID, "habitID", sub.habitID, "error", err.Error())
				c.dropTimer(sub)
				return
			}
			habit, loc = fresh, freshLoc
			c.pushTick(habit, loc)

		case <-ticker.C:
			c.pushTick(habit, loc)
		}
	}
}

func (c *Client) pushTick(habit *models.Habit, loc *time.Location) {
	snapshot := utils.BuildTimerSnapshot(habit, time.Now(), loc)
	c.enqueue(newMessage(events.TIMER_TICK, TIMER_CHANNEL, "tick", map[string]any{
		"habitId": habit.ID.String(),
		"timer":   snapshot,
	}))
}

func (c *Client) dropTimer(sub *timerSubscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if current, ok := c.timers[sub.habitID]; ok && current == sub {
		delete(c.timers, sub.habitID)
	}
	sub.cancel()
}

// TimerCount returns how many timers the client is watching.
func (c *Client) TimerCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.timers)
}

// refreshTimers makes every connection of userID watching habitID reload it.
func (m *Manager) refreshTimers(userID, habitID uuid.UUID) {
	for _, client := range m.userClients(userID) {
		client.mu.RLock()
		sub, ok := client.timers[habitID]
		client.mu.RUnlock()
		if !ok {
			continue
		}
		select {
		case sub.refresh <- struct{}{}:
		default:
		}
	}
}
