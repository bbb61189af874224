package timerController

import (
	"context"
	"time"

	"cronify/internal/database"
	"cronify/internal/events"
	"cronify/internal/logger"
	. "cronify/internal/models"
	"cronify/internal/repositories"
	"cronify/internal/services"
	"cronify/internal/types"
	"cronify/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxReasonLength = 280
	maxNotesLength  = 2000
)

type ResetTimerRequest struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

type ResetResult struct {
	Relapse Relapse             `json:"relapse"`
	Timer   utils.TimerSnapshot `json:"timer"`
}

type TimerController struct {
	transaction  services.Transactor
	habitRepo    repositories.HabitRepository
	relapseRepo  repositories.RelapseRepository
	settingsRepo repositories.UserSettingsRepository
	publisher    events.Publisher
	db           *gorm.DB
	now          func() time.Time
	log          logger.Logger
}

type TimerControllerInterface interface {
	Get(ctx context.Context, user *User, habitID uuid.UUID) (*utils.TimerSnapshot, error)
	Reset(ctx context.Context, user *User, habitID uuid.UUID, req ResetTimerRequest) (*ResetResult, error)
	ListRelapses(ctx context.Context, user *User, habitID uuid.UUID) ([]Relapse, error)
	LoadTimer(ctx context.Context, userID, habitID uuid.UUID) (*Habit, *time.Location, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	publisher events.Publisher,
	db database.DB,
) TimerControllerInterface {
	return &TimerController{
		transaction:  services.Transaction,
		habitRepo:    repos.Habit,
		relapseRepo:  repos.Relapse,
		settingsRepo: repos.UserSettings,
		publisher:    publisher,
		db:           db.SQL,
		now:          time.Now,
		log:          logger.New("timerController"),
	}
}

func (tc *TimerController) Get(ctx context.Context, user *User, habitID uuid.UUID) (*utils.TimerSnapshot, error) {
	habit, loc, err := tc.LoadTimer(ctx, user.ID, habitID)
	if err != nil {
		return nil, err
	}

	snapshot := utils.BuildTimerSnapshot(habit, tc.now(), loc)
	return &snapshot, nil
}

// Reset records a relapse with the streak that just ended, raises the best
// streak when beaten and restarts the timer. Concurrent resets are last write
// wins.
func (tc *TimerController) Reset(
	ctx context.Context,
	user *User,
	habitID uuid.UUID,
	req ResetTimerRequest,
) (*ResetResult, error) {
	log := tc.log.TraceFromContext(ctx).Function("Reset")

	loc := repositories.LocationFor(ctx, tc.settingsRepo, tc.db, user.ID)
	now := tc.now()

	var result ResetResult
	err := tc.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		habit, err := tc.breakHabit(ctx, tx, user.ID, habitID)
		if err != nil {
			return err
		}

		elapsed := utils.ElapsedSeconds(habit.TimerStart(loc), now)
		result.Relapse = Relapse{
			HabitID:       habit.ID,
			UserID:        user.ID,
			StreakSeconds: elapsed,
			Reason:        utils.SanitizeText(req.Reason, maxReasonLength),
			Notes:         utils.SanitizeText(req.Notes, maxNotesLength),
			OccurredAt:    now,
		}
		if err := tc.relapseRepo.Create(ctx, tx, &result.Relapse); err != nil {
			return err
		}

		maxStreak := max(habit.MaxStreakSeconds, elapsed)
		if err := tc.habitRepo.UpdateTimer(ctx, tx, habit, now, maxStreak); err != nil {
			return err
		}

		habit.LastResetAt = &now
		habit.MaxStreakSeconds = maxStreak
		result.Timer = utils.BuildTimerSnapshot(habit, now, loc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	tc.habitRepo.ClearUserHabitsCache(ctx, user.ID)

	if err := tc.publisher.PublishToUser(user.ID, events.TIMER_RESET, map[string]any{
		"habitId":       habitID.String(),
		"streakSeconds": result.Relapse.StreakSeconds,
	}); err != nil {
		log.Warn("failed to publish timer reset", "habitID", habitID, "error", err)
	}

	log.Info("Timer reset",
		"userID", user.ID,
		"habitID", habitID,
		"streakSeconds", result.Relapse.StreakSeconds)
	return &result, nil
}

func (tc *TimerController) ListRelapses(ctx context.Context, user *User, habitID uuid.UUID) ([]Relapse, error) {
	habit, err := tc.breakHabit(ctx, tc.db, user.ID, habitID)
	if err != nil {
		return nil, err
	}
	return tc.relapseRepo.ListByHabit(ctx, tc.db, habit.ID)
}

// LoadTimer returns a break habit owned by userID together with the user's
// zone. The websocket timer subscriptions load through here.
func (tc *TimerController) LoadTimer(
	ctx context.Context,
	userID, habitID uuid.UUID,
) (*Habit, *time.Location, error) {
	habit, err := tc.breakHabit(ctx, tc.db, userID, habitID)
	if err != nil {
		return nil, nil, err
	}
	return habit, repositories.LocationFor(ctx, tc.settingsRepo, tc.db, userID), nil
}

func (tc *TimerController) breakHabit(
	ctx context.Context,
	tx *gorm.DB,
	userID, habitID uuid.UUID,
) (*Habit, error) {
	habit, err := tc.habitRepo.GetUserHabit(ctx, tx, userID, habitID)
	if err != nil {
		return nil, err
	}
	if !habit.IsBreak() {
		return nil, tc.log.TraceFromContext(ctx).Function("breakHabit").
			ErrorWithType(types.ErrValidation, "only break habits have a timer", "habitID", habitID)
	}
	return habit, nil
}
