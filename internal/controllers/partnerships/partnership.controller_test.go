package partnershipController

import (
	"context"
	"errors"
	"testing"
	"time"

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
	"gorm.io/datatypes"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	controller   *PartnershipController
	partnerships *mocks.PartnershipRepository
	users        *mocks.UserRepository
	habits       *mocks.HabitRepository
	logs         *mocks.HabitLogRepository
	mailer       *mocks.Mailer
	publisher    *mocks.Publisher
	owner        *models.User
	partner      *models.User
}

func newFixture() *fixture {
	f := &fixture{
		partnerships: &mocks.PartnershipRepository{},
		users:        &mocks.UserRepository{},
		habits:       &mocks.HabitRepository{},
		logs:         &mocks.HabitLogRepository{},
		mailer:       &mocks.Mailer{},
		publisher:    &mocks.Publisher{},
		owner:        &models.User{Email: "owner@example.com", DisplayName: "Olga"},
		partner:      &models.User{Email: "pat@example.com", DisplayName: "Pat"},
	}
	f.owner.ID = uuid.New()
	f.partner.ID = uuid.New()

	f.users.On("GetByEmail", mock.Anything, mock.Anything, "pat@example.com").Return(f.partner, nil)
	f.users.On("GetByEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil, types.ErrNotFound)

	settings := &mocks.UserSettingsRepository{}
	settings.On("GetOrCreate", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.UserSettings{Timezone: "UTC"}, nil)

	f.controller = &PartnershipController{
		partnershipRepo: f.partnerships,
		userRepo:        f.users,
		habitRepo:       f.habits,
		logRepo:         f.logs,
		settingsRepo:    settings,
		mailer:          f.mailer,
		publisher:       f.publisher,
		now:             func() time.Time { return fixedNow },
		log:             logger.New("partnershipController"),
	}
	return f
}

func (f *fixture) partnership(status models.PartnershipStatus) *models.Partnership {
	partnership := &models.Partnership{
		OwnerID:      f.owner.ID,
		PartnerEmail: f.partner.Email,
		Status:       status,
		Role:         models.PartnerRoleSupporter,
		ShowStreaks:  true,
		ShowLogs:     true,
		Owner:        f.owner,
	}
	partnership.ID = uuid.New()
	f.partnerships.On("GetByID", mock.Anything, mock.Anything, partnership.ID).Return(partnership, nil)
	return partnership
}

func TestInvite(t *testing.T) {
	t.Run("creates a pending partnership and notifies", func(t *testing.T) {
		f := newFixture()
		f.partnerships.On("FindOpen", mock.Anything, mock.Anything, f.owner.ID, "pat@example.com").Return(nil, types.ErrNotFound)
		f.partnerships.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.mailer.On("SendPartnerInvite", mock.Anything, services.PartnerInviteEmail{
			To:        "pat@example.com",
			OwnerName: "Olga",
			Role:      "viewer",
		}).Return(nil)

		showNotes := true
		partnership, err := f.controller.Invite(context.Background(), f.owner, InviteRequest{
			Email:     " Pat@Example.com",
			Role:      models.PartnerRoleViewer,
			ShowNotes: &showNotes,
		})
		require.NoError(t, err)

		assert.Equal(t, models.PartnershipPending, partnership.Status)
		assert.Equal(t, "pat@example.com", partnership.PartnerEmail)
		assert.True(t, partnership.ShowStreaks)
		assert.True(t, partnership.ShowLogs)
		assert.True(t, partnership.ShowNotes)
		f.mailer.AssertExpectations(t)
		assert.Len(t, f.publisher.ToUser(f.partner.ID, events.PARTNERSHIP_INVITE), 1)
	})

	t.Run("mail failure does not fail the invite", func(t *testing.T) {
		f := newFixture()
		f.partnerships.On("FindOpen", mock.Anything, mock.Anything, f.owner.ID, "new@example.com").Return(nil, types.ErrNotFound)
		f.partnerships.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.mailer.On("SendPartnerInvite", mock.Anything, mock.Anything).Return(errors.New("sendgrid down"))

		partnership, err := f.controller.Invite(context.Background(), f.owner, InviteRequest{Email: "new@example.com"})
		require.NoError(t, err)
		assert.Equal(t, models.PartnerRoleSupporter, partnership.Role)
		assert.Empty(t, f.publisher.Events, "unregistered partners get no realtime event")
	})

	t.Run("open partnership conflicts", func(t *testing.T) {
		f := newFixture()
		f.partnerships.On("FindOpen", mock.Anything, mock.Anything, f.owner.ID, "pat@example.com").
			Return(&models.Partnership{}, nil)

		_, err := f.controller.Invite(context.Background(), f.owner, InviteRequest{Email: "pat@example.com"})
		assert.ErrorIs(t, err, types.ErrConflict)
		f.partnerships.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	invalid := []struct {
		name string
		req  InviteRequest
	}{
		{name: "self invite", req: InviteRequest{Email: "OWNER@example.com"}},
		{name: "bad email", req: InviteRequest{Email: "nope"}},
		{name: "bad role", req: InviteRequest{Email: "pat@example.com", Role: "coach"}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.controller.Invite(context.Background(), f.owner, tt.req)
			assert.ErrorIs(t, err, types.ErrValidation)
		})
	}
}

func TestRespond(t *testing.T) {
	t.Run("accept activates", func(t *testing.T) {
		f := newFixture()
		partnership := f.partnership(models.PartnershipPending)
		f.partnerships.On("Update", mock.Anything, mock.Anything, partnership).Return(nil)

		updated, err := f.controller.Respond(context.Background(), f.partner, partnership.ID, RespondRequest{Accept: true})
		require.NoError(t, err)
		assert.Equal(t, models.PartnershipActive, updated.Status)
		require.NotNil(t, updated.AcceptedAt)
		assert.Len(t, f.publisher.ToUser(f.owner.ID, events.PARTNERSHIP_UPDATED), 1)
	})

	t.Run("decline ends", func(t *testing.T) {
		f := newFixture()
		partnership := f.partnership(models.PartnershipPending)
		f.partnerships.On("Update", mock.Anything, mock.Anything, partnership).Return(nil)

		updated, err := f.controller.Respond(context.Background(), f.partner, partnership.ID, RespondRequest{Accept: false})
		require.NoError(t, err)
		assert.Equal(t, models.PartnershipEnded, updated.Status)
		require.NotNil(t, updated.EndedAt)
	})

	t.Run("only the invited partner may answer", func(t *testing.T) {
		f := newFixture()
		partnership := f.partnership(models.PartnershipPending)

		_, err := f.controller.Respond(context.Background(), f.owner, partnership.ID, RespondRequest{Accept: true})
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("already answered", func(t *testing.T) {
		f := newFixture()
		partnership := f.partnership(models.PartnershipActive)

		_, err := f.controller.Respond(context.Background(), f.partner, partnership.ID, RespondRequest{Accept: true})
		assert.ErrorIs(t, err, types.ErrConflict)
	})
}

func TestUpdateStatus(t *testing.T) {
	tests := []struct {
		name     string
		from     models.PartnershipStatus
		to       models.PartnershipStatus
		asOwner  bool
		wantErr  error
		notifyTo string
	}{
		{name: "owner pauses", from: models.PartnershipActive, to: models.PartnershipPaused, asOwner: true, notifyTo: "partner"},
		{name: "owner resumes", from: models.PartnershipPaused, to: models.PartnershipActive, asOwner: true, notifyTo: "partner"},
		{name: "partner ends", from: models.PartnershipActive, to: models.PartnershipEnded, notifyTo: "owner"},
		{name: "partner cannot pause", from: models.PartnershipActive, to: models.PartnershipPaused, wantErr: types.ErrForbidden},
		{name: "owner cannot accept", from: models.PartnershipPending, to: models.PartnershipActive, asOwner: true, wantErr: types.ErrForbidden},
		{name: "ended is final", from: models.PartnershipEnded, to: models.PartnershipActive, asOwner: true, wantErr: types.ErrValidation},
		{name: "unknown status", from: models.PartnershipActive, to: "archived", asOwner: true, wantErr: types.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			partnership := f.partnership(tt.from)
			f.partnerships.On("Update", mock.Anything, mock.Anything, partnership).Return(nil)

			actor := f.partner
			if tt.asOwner {
				actor = f.owner
			}

			updated, err := f.controller.UpdateStatus(context.Background(), actor, partnership.ID, StatusRequest{Status: tt.to})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				f.partnerships.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.to, updated.Status)
			notified := f.owner.ID
			if tt.notifyTo == "partner" {
				notified = f.partner.ID
			}
			assert.Len(t, f.publisher.ToUser(notified, events.PARTNERSHIP_UPDATED), 1)
		})
	}

	t.Run("strangers see not found", func(t *testing.T) {
		f := newFixture()
		partnership := f.partnership(models.PartnershipActive)
		stranger := &models.User{Email: "eve@example.com"}
		stranger.ID = uuid.New()

		_, err := f.controller.UpdateStatus(context.Background(), stranger, partnership.ID, StatusRequest{Status: models.PartnershipEnded})
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestUpdateSettings(t *testing.T) {
	f := newFixture()
	partnership := f.partnership(models.PartnershipActive)
	f.partnerships.On("Update", mock.Anything, mock.Anything, partnership).Return(nil)

	role := models.PartnerRoleViewer
	hideLogs := false
	updated, err := f.controller.UpdateSettings(context.Background(), f.owner, partnership.ID, SettingsRequest{
		Role:     &role,
		ShowLogs: &hideLogs,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PartnerRoleViewer, updated.Role)
	assert.False(t, updated.ShowLogs)
	assert.True(t, updated.ShowStreaks)

	_, err = f.controller.UpdateSettings(context.Background(), f.partner, partnership.ID, SettingsRequest{})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestListSharedHabits(t *testing.T) {
	f := newFixture()

	active := f.partnership(models.PartnershipActive)
	active.ShowNotes = false
	paused := f.partnership(models.PartnershipPaused)
	paused.OwnerID = uuid.New()

	build := models.Habit{
		UserID:    f.owner.ID,
		Title:     "Meditate",
		Type:      models.HabitTypeBuild,
		Frequency: datatypes.NewJSONType(models.HabitFrequency{Type: models.FrequencyDaily}),
		StartDate: "2024-01-01",
		IsShared:  true,
	}
	build.ID = uuid.New()
	reset := fixedNow.Add(-time.Hour)
	breakHabit := models.Habit{UserID: f.owner.ID, Title: "No sugar", Type: models.HabitTypeBreak, StartDate: "2024-01-01", LastResetAt: &reset, IsShared: true}
	breakHabit.ID = uuid.New()

	f.partnerships.On("ListByPartnerEmail", mock.Anything, mock.Anything, f.partner.Email).
		Return([]models.Partnership{*active, *paused}, nil)
	f.habits.On("ListShared", mock.Anything, mock.Anything, f.owner.ID).Return([]models.Habit{build, breakHabit}, nil)
	f.logs.On("ListByHabit", mock.Anything, mock.Anything, build.ID, types.DateRange{}).Return([]models.HabitLog{
		{HabitID: build.ID, Date: "2024-01-15", Status: models.LogStatusCompleted, Notes: "old"},
		{HabitID: build.ID, Date: "2024-03-09", Status: models.LogStatusCompleted, Notes: "private"},
		{HabitID: build.ID, Date: "2024-03-10", Status: models.LogStatusCompleted, Notes: "private"},
	}, nil)

	shared, err := f.controller.ListSharedHabits(context.Background(), f.partner)
	require.NoError(t, err)
	require.Len(t, shared, 2)

	meditate := shared[0]
	assert.Equal(t, "Olga", meditate.OwnerName)
	require.NotNil(t, meditate.Stats)
	assert.Equal(t, 2, meditate.Stats.CurrentStreak)
	require.Len(t, meditate.Logs, 2, "only the last 30 days are shared")
	assert.Empty(t, meditate.Logs[0].Notes)

	sugar := shared[1]
	require.NotNil(t, sugar.Timer)
	assert.Equal(t, int64(3600), sugar.Timer.ElapsedSeconds)
	assert.Nil(t, sugar.Logs)

	f.habits.AssertNotCalled(t, "ListShared", mock.Anything, mock.Anything, paused.OwnerID)
}

func TestRecentLogs_FlagsHideStats(t *testing.T) {
	f := newFixture()
	partnership := f.partnership(models.PartnershipActive)
	partnership.ShowStreaks = false
	partnership.ShowLogs = false

	habit := models.Habit{UserID: f.owner.ID, Type: models.HabitTypeBuild, StartDate: "2024-01-01"}
	habit.ID = uuid.New()
	f.habits.On("ListShared", mock.Anything, mock.Anything, f.owner.ID).Return([]models.Habit{habit}, nil)

	views, err := f.controller.sharedHabitsFor(context.Background(), partnership)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Nil(t, views[0].Stats)
	assert.Nil(t, views[0].Logs)
	f.logs.AssertNotCalled(t, "ListByHabit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
