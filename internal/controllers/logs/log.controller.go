package logController

import (
	"context"
	"fmt"
	"time"

	"cronify/internal/database"
	"cronify/internal/events"
	"cronify/internal/logger"
	. "cronify/internal/models"
	"cronify/internal/repositories"
	"cronify/internal/types"
	"cronify/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	maxReasonLength = 280
	maxNotesLength  = 2000
	maxMoodLength   = 32
)

// UpsertLogRequest writes the outcome for one day. An empty date means today
// in the user's timezone.
type UpsertLogRequest struct {
	Date   string           `json:"date"`
	Status LogStatus        `json:"status"`
	Value  *decimal.Decimal `json:"value"`
	Reason string           `json:"reason"`
	Notes  string           `json:"notes"`
	Mood   *string          `json:"mood"`
}

type LogController struct {
	habitRepo    repositories.HabitRepository
	logRepo      repositories.HabitLogRepository
	settingsRepo repositories.UserSettingsRepository
	publisher    events.Publisher
	db           *gorm.DB
	now          func() time.Time
	log          logger.Logger
}

type LogControllerInterface interface {
	Upsert(ctx context.Context, user *User, habitID uuid.UUID, req UpsertLogRequest) (*HabitLog, error)
	List(ctx context.Context, user *User, habitID uuid.UUID, dates types.DateRange) ([]HabitLog, error)
	Delete(ctx context.Context, user *User, habitID uuid.UUID, date string) error
}

func New(
	repos repositories.Repository,
	publisher events.Publisher,
	db database.DB,
) LogControllerInterface {
	return &LogController{
		habitRepo:    repos.Habit,
		logRepo:      repos.HabitLog,
		settingsRepo: repos.UserSettings,
		publisher:    publisher,
		db:           db.SQL,
		now:          time.Now,
		log:          logger.New("logController"),
	}
}

// Upsert writes the log for (habit, date). A second write for the same day
// replaces the first.
func (lc *LogController) Upsert(
	ctx context.Context,
	user *User,
	habitID uuid.UUID,
	req UpsertLogRequest,
) (*HabitLog, error) {
	log := lc.log.TraceFromContext(ctx).Function("Upsert")

	habit, err := lc.habitRepo.GetUserHabit(ctx, lc.db, user.ID, habitID)
	if err != nil {
		return nil, err
	}
	if habit.IsBreak() {
		return nil, log.ErrorWithType(types.ErrValidation, "break habits are tracked with the timer", "habitID", habitID)
	}

	loc := repositories.LocationFor(ctx, lc.settingsRepo, lc.db, user.ID)
	today := utils.TodayKey(lc.now(), loc)

	date := req.Date
	if date == "" {
		date = today
	}
	if err := validateDate(habit, date, today); err != nil {
		return nil, err
	}

	if !req.Status.Valid() {
		return nil, log.ErrorWithType(types.ErrValidation, "status must be completed, failed, skipped or partial", "status", req.Status)
	}
	if req.Value != nil && req.Value.IsNegative() {
		return nil, log.ErrorWithType(types.ErrValidation, "value cannot be negative")
	}

	entry := &HabitLog{
		HabitID: habit.ID,
		Date:    date,
		Status:  req.Status,
		Value:   req.Value,
		Reason:  utils.SanitizeText(req.Reason, maxReasonLength),
		Notes:   utils.SanitizeText(req.Notes, maxNotesLength),
	}
	if req.Mood != nil {
		if mood := utils.SanitizeText(*req.Mood, maxMoodLength); mood != "" {
			entry.Mood = &mood
		}
	}

	saved, err := lc.logRepo.Upsert(ctx, lc.db, entry)
	if err != nil {
		return nil, err
	}

	lc.notify(user.ID, habit.ID, date, string(saved.Status))
	log.Info("Habit log saved", "habitID", habit.ID, "date", date, "status", saved.Status)
	return saved, nil
}

func (lc *LogController) List(
	ctx context.Context,
	user *User,
	habitID uuid.UUID,
	dates types.DateRange,
) ([]HabitLog, error) {
	log := lc.log.TraceFromContext(ctx).Function("List")

	if (dates.From != "" && !utils.IsDateKey(dates.From)) || (dates.To != "" && !utils.IsDateKey(dates.To)) {
		return nil, log.ErrorWithType(types.ErrValidation, "from and to must be YYYY-MM-DD")
	}
	if dates.From != "" && dates.To != "" && dates.From > dates.To {
		return nil, log.ErrorWithType(types.ErrValidation, "from cannot be after to")
	}

	habit, err := lc.habitRepo.GetUserHabit(ctx, lc.db, user.ID, habitID)
	if err != nil {
		return nil, err
	}

	return lc.logRepo.ListByHabit(ctx, lc.db, habit.ID, dates)
}

func (lc *LogController) Delete(ctx context.Context, user *User, habitID uuid.UUID, date string) error {
	log := lc.log.TraceFromContext(ctx).Function("Delete")

	if !utils.IsDateKey(date) {
		return log.ErrorWithType(types.ErrValidation, "date must be YYYY-MM-DD", "date", date)
	}

	habit, err := lc.habitRepo.GetUserHabit(ctx, lc.db, user.ID, habitID)
	if err != nil {
		return err
	}

	if err := lc.logRepo.Delete(ctx, lc.db, habit.ID, date); err != nil {
		return err
	}

	lc.notify(user.ID, habit.ID, date, "")
	return nil
}

func (lc *LogController) notify(userID, habitID uuid.UUID, date, status string) {
	data := map[string]any{
		"habitId": habitID.String(),
		"date":    date,
		"status":  status,
		"deleted": status == "",
	}
	if err := lc.publisher.PublishToUser(userID, events.LOG_UPDATED, data); err != nil {
		lc.log.Function("notify").Warn("failed to publish log update", "habitID", habitID, "error", err)
	}
}

// validateDate allows any day from the habit's start through today, capped
// by its end date.
func validateDate(habit *Habit, date, today string) error {
	switch {
	case !utils.IsDateKey(date):
		return fmt.Errorf("%w: date must be YYYY-MM-DD", types.ErrValidation)
	case date > today:
		return fmt.Errorf("%w: cannot log a future date", types.ErrValidation)
	case date < habit.StartDate:
		return fmt.Errorf("%w: cannot log before the habit start date", types.ErrValidation)
	case !habit.ActiveOn(date):
		return fmt.Errorf("%w: cannot log after the habit end date", types.ErrValidation)
	}
	return nil
}
