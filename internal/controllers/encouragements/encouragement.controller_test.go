package encouragementController

import (
	"context"
	"errors"
	"testing"

	"cronify/internal/events"
	"cronify/internal/logger"
	"cronify/internal/mocks"
	"cronify/internal/models"
	"cronify/internal/services"
	"cronify/internal/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	controller    *EncouragementController
	encouragement *mocks.EncouragementRepository
	partnerships  *mocks.PartnershipRepository
	habits        *mocks.HabitRepository
	users         *mocks.UserRepository
	settings      *mocks.UserSettingsRepository
	mailer        *mocks.Mailer
	publisher     *mocks.Publisher
	owner         *models.User
	sender        *models.User
	habit         *models.Habit
}

func newFixture() *fixture {
	f := &fixture{
		encouragement: &mocks.EncouragementRepository{},
		partnerships:  &mocks.PartnershipRepository{},
		habits:        &mocks.HabitRepository{},
		users:         &mocks.UserRepository{},
		settings:      &mocks.UserSettingsRepository{},
		mailer:        &mocks.Mailer{},
		publisher:     &mocks.Publisher{},
		owner:         &models.User{Email: "owner@example.com", DisplayName: "Olga"},
		sender:        &models.User{Email: "Pat@Example.com"},
	}
	f.owner.ID = uuid.New()
	f.sender.ID = uuid.New()
	f.habit = &models.Habit{UserID: f.owner.ID, Title: "Run", IsShared: true}
	f.habit.ID = uuid.New()

	f.habits.On("GetByID", mock.Anything, mock.Anything, f.habit.ID).Return(f.habit, nil)
	f.users.On("GetByID", mock.Anything, mock.Anything, f.owner.ID).Return(f.owner, nil)

	f.controller = &EncouragementController{
		encouragementRepo: f.encouragement,
		partnershipRepo:   f.partnerships,
		habitRepo:         f.habits,
		userRepo:          f.users,
		settingsRepo:      f.settings,
		mailer:            f.mailer,
		publisher:         f.publisher,
		log:               logger.New("encouragementController"),
	}
	return f
}

func (f *fixture) withPartnership(role models.PartnerRole) {
	f.partnerships.On("FindActive", mock.Anything, mock.Anything, f.owner.ID, "pat@example.com").
		Return(&models.Partnership{OwnerID: f.owner.ID, Role: role, Status: models.PartnershipActive}, nil)
}

func (f *fixture) withSettings(emailNotifications bool) {
	f.settings.On("GetOrCreate", mock.Anything, mock.Anything, f.owner.ID).
		Return(&models.UserSettings{UserID: f.owner.ID, EmailNotifications: emailNotifications}, nil)
}

func TestSend(t *testing.T) {
	t.Run("stores, mails and publishes", func(t *testing.T) {
		f := newFixture()
		f.withPartnership(models.PartnerRoleSupporter)
		f.withSettings(true)
		f.encouragement.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(e *models.Encouragement) bool {
			return e.HabitID == f.habit.ID && e.SenderEmail == "pat@example.com" && e.Message == "keep going"
		})).Return(nil)
		f.mailer.On("SendEncouragement", mock.Anything, services.EncouragementEmail{
			To:          "owner@example.com",
			OwnerName:   "Olga",
			SenderEmail: "pat@example.com",
			HabitTitle:  "Run",
			Message:     "keep going",
		}).Return(nil)

		emoji := "🔥"
		encouragement, err := f.controller.Send(context.Background(), f.sender, f.habit.ID, SendRequest{
			Message: "  keep going ",
			Emoji:   &emoji,
		})
		require.NoError(t, err)
		require.NotNil(t, encouragement.Emoji)
		assert.Equal(t, "🔥", *encouragement.Emoji)

		f.mailer.AssertExpectations(t)
		published := f.publisher.ToUser(f.owner.ID, events.ENCOURAGEMENT_RECEIVED)
		require.Len(t, published, 1)
		assert.Equal(t, "🔥", published[0].Data["emoji"])
	})

	t.Run("owner opted out of email", func(t *testing.T) {
		f := newFixture()
		f.withPartnership(models.PartnerRoleSupporter)
		f.withSettings(false)
		f.encouragement.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		_, err := f.controller.Send(context.Background(), f.sender, f.habit.ID, SendRequest{Message: "nice"})
		require.NoError(t, err)
		f.mailer.AssertNotCalled(t, "SendEncouragement", mock.Anything, mock.Anything)
		assert.Len(t, f.publisher.Events, 1)
	})

	t.Run("mail failure still succeeds", func(t *testing.T) {
		f := newFixture()
		f.withPartnership(models.PartnerRoleSupporter)
		f.withSettings(true)
		f.encouragement.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.mailer.On("SendEncouragement", mock.Anything, mock.Anything).Return(errors.New("quota"))

		_, err := f.controller.Send(context.Background(), f.sender, f.habit.ID, SendRequest{Message: "nice"})
		assert.NoError(t, err)
	})

	t.Run("viewer is forbidden", func(t *testing.T) {
		f := newFixture()
		f.withPartnership(models.PartnerRoleViewer)

		_, err := f.controller.Send(context.Background(), f.sender, f.habit.ID, SendRequest{Message: "hi"})
		assert.ErrorIs(t, err, types.ErrForbidden)
	})

	t.Run("no partnership is forbidden", func(t *testing.T) {
		f := newFixture()
		f.partnerships.On("FindActive", mock.Anything, mock.Anything, f.owner.ID, "pat@example.com").
			Return(nil, types.ErrNotFound)

		_, err := f.controller.Send(context.Background(), f.sender, f.habit.ID, SendRequest{Message: "hi"})
		assert.ErrorIs(t, err, types.ErrForbidden)
	})

	t.Run("private habit is hidden", func(t *testing.T) {
		f := newFixture()
		f.habit.IsShared = false

		_, err := f.controller.Send(context.Background(), f.sender, f.habit.ID, SendRequest{Message: "hi"})
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("own habit", func(t *testing.T) {
		f := newFixture()

		_, err := f.controller.Send(context.Background(), f.owner, f.habit.ID, SendRequest{Message: "hi"})
		assert.ErrorIs(t, err, types.ErrValidation)
	})

	t.Run("empty message", func(t *testing.T) {
		f := newFixture()
		f.withPartnership(models.PartnerRoleSupporter)

		_, err := f.controller.Send(context.Background(), f.sender, f.habit.ID, SendRequest{Message: "   "})
		assert.ErrorIs(t, err, types.ErrValidation)
		f.encouragement.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestList(t *testing.T) {
	f := newFixture()
	f.habits.On("GetUserHabit", mock.Anything, mock.Anything, f.owner.ID, f.habit.ID).Return(f.habit, nil)
	f.habits.On("GetUserHabit", mock.Anything, mock.Anything, f.sender.ID, f.habit.ID).Return(nil, types.ErrNotFound)
	f.encouragement.On("ListByHabit", mock.Anything, mock.Anything, f.habit.ID).
		Return([]models.Encouragement{{Message: "a"}, {Message: "b"}}, nil)

	list, err := f.controller.List(context.Background(), f.owner, f.habit.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = f.controller.List(context.Background(), f.sender, f.habit.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}
