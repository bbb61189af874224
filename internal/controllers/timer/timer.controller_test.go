package timerController

import (
	"context"
	"errors"
	"testing"
	"time"

	"cronify/internal/events"
	"cronify/internal/logger"
	"cronify/internal/mocks"
	"cronify/internal/models"
	"cronify/internal/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	controller *TimerController
	transactor *mocks.Transactor
	habits     *mocks.HabitRepository
	relapses   *mocks.RelapseRepository
	publisher  *mocks.Publisher
	user       *models.User
}

func newFixture() *fixture {
	f := &fixture{
		transactor: &mocks.Transactor{},
		habits:     &mocks.HabitRepository{},
		relapses:   &mocks.RelapseRepository{},
		publisher:  &mocks.Publisher{},
		user:       &models.User{},
	}
	f.user.ID = uuid.New()

	settings := &mocks.UserSettingsRepository{}
	settings.On("GetOrCreate", mock.Anything, mock.Anything, f.user.ID).
		Return(&models.UserSettings{UserID: f.user.ID, Timezone: "UTC"}, nil)

	f.controller = &TimerController{
		transaction:  f.transactor,
		habitRepo:    f.habits,
		relapseRepo:  f.relapses,
		settingsRepo: settings,
		publisher:    f.publisher,
		now:          func() time.Time { return fixedNow },
		log:          logger.New("timerController"),
	}
	return f
}

func (f *fixture) breakHabit(lastReset time.Time, maxStreak int64) *models.Habit {
	habit := &models.Habit{
		UserID:           f.user.ID,
		Type:             models.HabitTypeBreak,
		StartDate:        "2024-01-01",
		LastResetAt:      &lastReset,
		MaxStreakSeconds: maxStreak,
	}
	habit.ID = uuid.New()
	f.habits.On("GetUserHabit", mock.Anything, mock.Anything, f.user.ID, habit.ID).Return(habit, nil)
	return habit
}

func TestGet(t *testing.T) {
	f := newFixture()
	habit := f.breakHabit(fixedNow.Add(-2*time.Hour), 0)

	snapshot, err := f.controller.Get(context.Background(), f.user, habit.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7200), snapshot.ElapsedSeconds)
	assert.Equal(t, int64(2), snapshot.Breakdown.Hours)
	assert.True(t, snapshot.IsRecord)
}

func TestGet_BuildHabitHasNoTimer(t *testing.T) {
	f := newFixture()
	habit := &models.Habit{UserID: f.user.ID, Type: models.HabitTypeBuild, StartDate: "2024-01-01"}
	habit.ID = uuid.New()
	f.habits.On("GetUserHabit", mock.Anything, mock.Anything, f.user.ID, habit.ID).Return(habit, nil)

	_, err := f.controller.Get(context.Background(), f.user, habit.ID)
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestReset(t *testing.T) {
	tests := []struct {
		name          string
		elapsed       time.Duration
		previousMax   int64
		wantMaxStreak int64
	}{
		{name: "new record raises max streak", elapsed: 3 * time.Hour, previousMax: 3600, wantMaxStreak: 10800},
		{name: "shorter streak keeps max", elapsed: 30 * time.Minute, previousMax: 3600, wantMaxStreak: 3600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			habit := f.breakHabit(fixedNow.Add(-tt.elapsed), tt.previousMax)
			streak := int64(tt.elapsed.Seconds())

			f.relapses.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(r *models.Relapse) bool {
				return r.HabitID == habit.ID &&
					r.StreakSeconds == streak &&
					r.Reason == "stress" &&
					r.OccurredAt.Equal(fixedNow)
			})).Return(nil)
			f.habits.On("UpdateTimer", mock.Anything, mock.Anything, habit, fixedNow, tt.wantMaxStreak).Return(nil)
			f.habits.On("ClearUserHabitsCache", mock.Anything, f.user.ID).Return().Once()

			result, err := f.controller.Reset(context.Background(), f.user, habit.ID, ResetTimerRequest{Reason: " stress "})
			require.NoError(t, err)

			assert.Equal(t, 1, f.transactor.Calls)
			assert.Equal(t, streak, result.Relapse.StreakSeconds)
			assert.Equal(t, int64(0), result.Timer.ElapsedSeconds)
			assert.Equal(t, tt.wantMaxStreak, result.Timer.MaxStreakSeconds)
			f.habits.AssertExpectations(t)
			f.relapses.AssertExpectations(t)

			published := f.publisher.ToUser(f.user.ID, events.TIMER_RESET)
			require.Len(t, published, 1)
			assert.Equal(t, habit.ID.String(), published[0].Data["habitId"])
		})
	}
}

func TestReset_FailureSkipsPublish(t *testing.T) {
	f := newFixture()
	habit := f.breakHabit(fixedNow.Add(-time.Hour), 0)
	f.relapses.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	_, err := f.controller.Reset(context.Background(), f.user, habit.ID, ResetTimerRequest{})
	require.Error(t, err)

	f.habits.AssertNotCalled(t, "UpdateTimer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.habits.AssertNotCalled(t, "ClearUserHabitsCache", mock.Anything, mock.Anything)
	assert.Empty(t, f.publisher.Events)
}

func TestReset_DefaultsToStartDate(t *testing.T) {
	f := newFixture()
	habit := &models.Habit{UserID: f.user.ID, Type: models.HabitTypeBreak, StartDate: "2024-03-09"}
	habit.ID = uuid.New()
	f.habits.On("GetUserHabit", mock.Anything, mock.Anything, f.user.ID, habit.ID).Return(habit, nil)
	f.relapses.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.habits.On("UpdateTimer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.habits.On("ClearUserHabitsCache", mock.Anything, f.user.ID).Return()

	result, err := f.controller.Reset(context.Background(), f.user, habit.ID, ResetTimerRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(36*3600), result.Relapse.StreakSeconds)
}

func TestReset_ClearsHabitListAfterCommit(t *testing.T) {
	f := newFixture()
	habit := f.breakHabit(fixedNow.Add(-time.Hour), 0)
	f.relapses.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	var committedAtClear bool
	f.habits.On("UpdateTimer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			assert.False(t, f.transactor.Committed)
		}).
		Return(nil)
	f.habits.On("ClearUserHabitsCache", mock.Anything, f.user.ID).
		Run(func(mock.Arguments) {
			committedAtClear = f.transactor.Committed
		}).
		Return().
		Once()

	_, err := f.controller.Reset(context.Background(), f.user, habit.ID, ResetTimerRequest{})
	require.NoError(t, err)

	assert.True(t, committedAtClear)
	f.habits.AssertExpectations(t)
}

func TestLoadTimer(t *testing.T) {
	f := newFixture()
	habit := f.breakHabit(fixedNow, 0)
	other := uuid.New()
	f.habits.On("GetUserHabit", mock.Anything, mock.Anything, other, habit.ID).Return(nil, types.ErrNotFound)

	loaded, loc, err := f.controller.LoadTimer(context.Background(), f.user.ID, habit.ID)
	require.NoError(t, err)
	assert.Equal(t, habit.ID, loaded.ID)
	assert.Equal(t, time.UTC, loc)

	_, _, err = f.controller.LoadTimer(context.Background(), other, habit.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}
