package mocks

import (
	"context"
	"sync"

	"cronify/internal/events"
	"cronify/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// Transactor runs fn directly with a nil *gorm.DB. Repository mocks ignore
// the handle. Committed is set once fn returns without error.
type Transactor struct {
	Calls     int
	Committed bool
}

func (t *Transactor) Execute(ctx context.Context, fn func(context.Context, *gorm.DB) error) error {
	t.Calls++
	if err := fn(ctx, nil); err != nil {
		return err
	}
	t.Committed = true
	return nil
}

type Mailer struct{ mock.Mock }

func (m *Mailer) SendPartnerInvite(ctx context.Context, email services.PartnerInviteEmail) error {
	return m.Called(ctx, email).Error(0)
}

func (m *Mailer) SendEncouragement(ctx context.Context, email services.EncouragementEmail) error {
	return m.Called(ctx, email).Error(0)
}

// Publisher records published events.
type Publisher struct {
	mu     sync.Mutex
	Events []events.Event
	Err    error
}

func (p *Publisher) Publish(channel events.Channel, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	event.Channel = channel
	p.Events = append(p.Events, event)
	return p.Err
}

func (p *Publisher) PublishToUser(userID uuid.UUID, eventType events.MessageType, data map[string]any) error {
	return p.Publish(events.USER_CHANNEL, events.Event{Type: eventType, UserID: &userID, Data: data})
}

// ToUser returns the events of eventType addressed to userID.
func (p *Publisher) ToUser(userID uuid.UUID, eventType events.MessageType) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	var matched []events.Event
	for _, event := range p.Events {
		if event.Type == eventType && event.UserID != nil && *event.UserID == userID {
			matched = append(matched, event)
		}
	}
	return matched
}
