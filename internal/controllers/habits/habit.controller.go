package habitController

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"cronify/internal/database"
	"cronify/internal/logger"
	. "cronify/internal/models"
	"cronify/internal/repositories"
	"cronify/internal/services"
	"cronify/internal/types"
	"cronify/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	maxTitleLength       = 120
	maxDescriptionLength = 1000
	maxUnitLength        = 32
)

// HabitRequest serves both create and partial update. Nil fields are left
// unchanged on update. An empty endDate clears it and goalSeconds 0 clears
// the goal.
type HabitRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Type        *HabitType       `json:"type"`
	Frequency   *HabitFrequency  `json:"frequency"`
	TargetValue *decimal.Decimal `json:"targetValue"`
	TargetUnit  *string          `json:"targetUnit"`
	StartDate   *string          `json:"startDate"`
	EndDate     *string          `json:"endDate"`
	IsShared    *bool            `json:"isShared"`
	GoalSeconds *int64           `json:"goalSeconds"`
}

type HabitListItem struct {
	Habit
	LoggedToday bool                 `json:"loggedToday"`
	Timer       *utils.TimerSnapshot `json:"timer,omitempty"`
}

type HabitStatsResponse struct {
	HabitID string           `json:"habitId"`
	Today   string           `json:"today"`
	Stats   utils.HabitStats `json:"stats"`
}

type WeekResponse struct {
	HabitID string              `json:"habitId"`
	Today   string              `json:"today"`
	Days    []utils.CalendarDay `json:"days"`
}

// ReportRenderer writes a habit report document.
type ReportRenderer interface {
	RenderHabitReport(w io.Writer, report services.HabitReport) error
}

type HabitController struct {
	habitRepo    repositories.HabitRepository
	logRepo      repositories.HabitLogRepository
	settingsRepo repositories.UserSettingsRepository
	report       ReportRenderer
	db           *gorm.DB
	now          func() time.Time
	log          logger.Logger
}

type HabitControllerInterface interface {
	Create(ctx context.Context, user *User, req HabitRequest) (*Habit, error)
	List(ctx context.Context, user *User) ([]HabitListItem, error)
	Get(ctx context.Context, user *User, habitID uuid.UUID) (*Habit, error)
	Update(ctx context.Context, user *User, habitID uuid.UUID, req HabitRequest) (*Habit, error)
	Delete(ctx context.Context, user *User, habitID uuid.UUID) error
	Stats(ctx context.Context, user *User, habitID uuid.UUID) (*HabitStatsResponse, error)
	Calendar(ctx context.Context, user *User, habitID uuid.UUID, year, month int) (*utils.CalendarMonth, error)
	Week(ctx context.Context, user *User, habitID uuid.UUID) (*WeekResponse, error)
	Report(ctx context.Context, user *User, habitID uuid.UUID, w io.Writer) error
}

func New(
	repos repositories.Repository,
	services services.Service,
	db database.DB,
) HabitControllerInterface {
	return &HabitController{
		habitRepo:    repos.Habit,
		logRepo:      repos.HabitLog,
		settingsRepo: repos.UserSettings,
		report:       services.Report,
		db:           db.SQL,
		now:          time.Now,
		log:          logger.New("habitController"),
	}
}

func (hc *HabitController) Create(ctx context.Context, user *User, req HabitRequest) (*Habit, error) {
	log := hc.log.TraceFromContext(ctx).Function("Create")

	if req.Title == nil {
		return nil, log.ErrorWithType(types.ErrValidation, "title is required")
	}

	loc := repositories.LocationFor(ctx, hc.settingsRepo, hc.db, user.ID)
	habit := &Habit{
		UserID:    user.ID,
		Type:      HabitTypeBuild,
		Frequency: datatypes.NewJSONType(HabitFrequency{Type: FrequencyDaily}),
		StartDate: utils.TodayKey(hc.now(), loc),
	}
	if req.Type != nil {
		if !req.Type.Valid() {
			return nil, log.ErrorWithType(types.ErrValidation, "type must be build or break", "type", *req.Type)
		}
		habit.Type = *req.Type
	}

	if err := applyRequest(habit, req); err != nil {
		return nil, err
	}

	if err := hc.habitRepo.Create(ctx, hc.db, habit); err != nil {
		return nil, err
	}

	log.Info("Habit created", "userID", user.ID, "habitID", habit.ID, "type", habit.Type)
	return habit, nil
}

func (hc *HabitController) List(ctx context.Context, user *User) ([]HabitListItem, error) {
	log := hc.log.TraceFromContext(ctx).Function("List")

	habits, err := hc.habitRepo.ListByUser(ctx, hc.db, user.ID)
	if err != nil {
		return nil, err
	}

	now := hc.now()
	loc := repositories.LocationFor(ctx, hc.settingsRepo, hc.db, user.ID)
	today := utils.TodayKey(now, loc)

	buildIDs := make([]uuid.UUID, 0, len(habits))
	for i := range habits {
		if !habits[i].IsBreak() {
			buildIDs = append(buildIDs, habits[i].ID)
		}
	}

	logged := map[uuid.UUID]bool{}
	if len(buildIDs) > 0 {
		logged, err = hc.logRepo.LoggedHabitIDs(ctx, hc.db, buildIDs, today)
		if err != nil {
			log.Warn("failed to load today's logs", "userID", user.ID, "error", err)
			logged = map[uuid.UUID]bool{}
		}
	}

	items := make([]HabitListItem, 0, len(habits))
	for i := range habits {
		item := HabitListItem{Habit: habits[i], LoggedToday: logged[habits[i].ID]}
		if habits[i].IsBreak() {
			snapshot := utils.BuildTimerSnapshot(&habits[i], now, loc)
			item.Timer = &snapshot
		}
		items = append(items, item)
	}
	return items, nil
}

func (hc *HabitController) Get(ctx context.Context, user *User, habitID uuid.UUID) (*Habit, error) {
	return hc.habitRepo.GetUserHabit(ctx, hc.db, user.ID, habitID)
}

func (hc *HabitController) Update(
	ctx context.Context,
	user *User,
	habitID uuid.UUID,
	req HabitRequest,
) (*Habit, error) {
	log := hc.log.TraceFromContext(ctx).Function("Update")

	habit, err := hc.habitRepo.GetUserHabit(ctx, hc.db, user.ID, habitID)
	if err != nil {
		return nil, err
	}

	if req.Type != nil && *req.Type != habit.Type {
		return nil, log.ErrorWithType(types.ErrValidation, "habit type cannot be changed", "habitID", habitID)
	}

	updated := *habit
	if err := applyRequest(&updated, req); err != nil {
		return nil, err
	}

	if err := hc.habitRepo.Update(ctx, hc.db, &updated); err != nil {
		return nil, err
	}

	log.Info("Habit updated", "userID", user.ID, "habitID", habitID)
	return &updated, nil
}

func (hc *HabitController) Delete(ctx context.Context, user *User, habitID uuid.UUID) error {
	log := hc.log.TraceFromContext(ctx).Function("Delete")

	if err := hc.habitRepo.Delete(ctx, hc.db, user.ID, habitID); err != nil {
		return err
	}

	log.Info("Habit deleted", "userID", user.ID, "habitID", habitID)
	return nil
}

func (hc *HabitController) Stats(
	ctx context.Context,
	user *User,
	habitID uuid.UUID,
) (*HabitStatsResponse, error) {
	habit, today, err := hc.loadWithToday(ctx, user, habitID)
	if err != nil {
		return nil, err
	}

	logs, err := hc.logRepo.ListByHabit(ctx, hc.db, habit.ID, types.DateRange{})
	if err != nil {
		return nil, err
	}

	return &HabitStatsResponse{
		HabitID: habit.ID.String(),
		Today:   today,
		Stats:   utils.CalculateHabitStats(logs, habit.StartDate, today),
	}, nil
}

// Calendar builds the month grid. Zero year or month means the current one
// in the user's timezone.
func (hc *HabitController) Calendar(
	ctx context.Context,
	user *User,
	habitID uuid.UUID,
	year, month int,
) (*utils.CalendarMonth, error) {
	log := hc.log.TraceFromContext(ctx).Function("Calendar")

	habit, today, err := hc.loadWithToday(ctx, user, habitID)
	if err != nil {
		return nil, err
	}

	current, _ := utils.ParseDateKey(today)
	if year == 0 {
		year = current.Year()
	}
	if month == 0 {
		month = int(current.Month())
	}
	if year < 1970 || year > 9999 || month < 1 || month > 12 {
		return nil, log.ErrorWithType(types.ErrValidation, "invalid year or month", "year", year, "month", month)
	}

	days := utils.MonthDays(year, time.Month(month))
	logs, err := hc.logRepo.ListByHabit(ctx, hc.db, habit.ID, types.DateRange{
		From: days[0],
		To:   days[len(days)-1],
	})
	if err != nil {
		return nil, err
	}

	calendar := utils.BuildMonthCalendar(habit, logs, year, time.Month(month), today)
	return &calendar, nil
}

func (hc *HabitController) Week(ctx context.Context, user *User, habitID uuid.UUID) (*WeekResponse, error) {
	habit, today, err := hc.loadWithToday(ctx, user, habitID)
	if err != nil {
		return nil, err
	}

	logs, err := hc.logRepo.ListByHabit(ctx, hc.db, habit.ID, types.DateRange{
		From: utils.AddDays(today, -6),
		To:   today,
	})
	if err != nil {
		return nil, err
	}

	return &WeekResponse{
		HabitID: habit.ID.String(),
		Today:   today,
		Days:    utils.BuildWeek(habit, logs, today),
	}, nil
}

// Report renders the habit's stats, current month and timer as a PDF.
func (hc *HabitController) Report(ctx context.Context, user *User, habitID uuid.UUID, w io.Writer) error {
	log := hc.log.TraceFromContext(ctx).Function("Report")

	habit, err := hc.habitRepo.GetUserHabit(ctx, hc.db, user.ID, habitID)
	if err != nil {
		return err
	}

	now := hc.now()
	loc := repositories.LocationFor(ctx, hc.settingsRepo, hc.db, user.ID)
	today := utils.TodayKey(now, loc)
	current, _ := utils.ParseDateKey(today)

	logs, err := hc.logRepo.ListByHabit(ctx, hc.db, habit.ID, types.DateRange{})
	if err != nil {
		return err
	}

	report := services.HabitReport{
		Habit:       *habit,
		Stats:       utils.CalculateHabitStats(logs, habit.StartDate, today),
		Month:       utils.BuildMonthCalendar(habit, logs, current.Year(), current.Month(), today),
		GeneratedAt: now.In(loc),
	}
	if habit.IsBreak() {
		snapshot := utils.BuildTimerSnapshot(habit, now, loc)
		report.Timer = &snapshot
	}

	if err := hc.report.RenderHabitReport(w, report); err != nil {
		return log.Err("failed to render habit report", err, "habitID", habitID)
	}
	return nil
}

func (hc *HabitController) loadWithToday(
	ctx context.Context,
	user *User,
	habitID uuid.UUID,
) (*Habit, string, error) {
	habit, err := hc.habitRepo.GetUserHabit(ctx, hc.db, user.ID, habitID)
	if err != nil {
		return nil, "", err
	}

	loc := repositories.LocationFor(ctx, hc.settingsRepo, hc.db, user.ID)
	return habit, utils.TodayKey(hc.now(), loc), nil
}

// applyRequest validates req and copies the provided fields onto habit.
func applyRequest(habit *Habit, req HabitRequest) error {
	if req.Title != nil {
		title := utils.SanitizeText(*req.Title, maxTitleLength)
		if title == "" {
			return validation("title is required")
		}
		habit.Title = title
	}

	if req.Description != nil {
		habit.Description = utils.SanitizeText(*req.Description, maxDescriptionLength)
	}

	if req.Frequency != nil {
		frequency, err := normalizeFrequency(*req.Frequency)
		if err != nil {
			return err
		}
		habit.Frequency = datatypes.NewJSONType(frequency)
	}

	if req.TargetValue != nil {
		if req.TargetValue.IsNegative() {
			return validation("targetValue cannot be negative")
		}
		value := *req.TargetValue
		habit.TargetValue = &value
	}

	if req.TargetUnit != nil {
		habit.TargetUnit = utils.SanitizeText(*req.TargetUnit, maxUnitLength)
	}

	if req.StartDate != nil {
		if !utils.IsDateKey(*req.StartDate) {
			return validation("startDate must be YYYY-MM-DD")
		}
		habit.StartDate = *req.StartDate
	}

	if req.EndDate != nil {
		if *req.EndDate == "" {
			habit.EndDate = nil
		} else {
			if !utils.IsDateKey(*req.EndDate) {
				return validation("endDate must be YYYY-MM-DD")
			}
			end := *req.EndDate
			habit.EndDate = &end
		}
	}
	if habit.EndDate != nil && *habit.EndDate < habit.StartDate {
		return validation("endDate cannot be before startDate")
	}

	if req.IsShared != nil {
		habit.IsShared = *req.IsShared
	}

	if req.GoalSeconds != nil {
		switch {
		case *req.GoalSeconds < 0:
			return validation("goalSeconds cannot be negative")
		case *req.GoalSeconds == 0:
			habit.GoalSeconds = nil
		case !habit.IsBreak():
			return validation("goalSeconds only applies to break habits")
		default:
			goal := *req.GoalSeconds
			habit.GoalSeconds = &goal
		}
	}

	return nil
}

// normalizeFrequency checks the descriptor and sorts and dedupes its days.
// Daily frequencies drop any days given.
func normalizeFrequency(frequency HabitFrequency) (HabitFrequency, error) {
	switch frequency.Type {
	case FrequencyDaily:
		return HabitFrequency{Type: FrequencyDaily}, nil
	case FrequencyWeekly, FrequencyCustom:
	default:
		return HabitFrequency{}, validation("frequency type must be daily, weekly or custom")
	}

	if frequency.TimesPerWeek < 0 || frequency.TimesPerWeek > 7 {
		return HabitFrequency{}, validation("timesPerWeek must be between 0 and 7")
	}

	days := make([]int, 0, len(frequency.Days))
	for _, day := range frequency.Days {
		if day < 0 || day > 6 {
			return HabitFrequency{}, validation(fmt.Sprintf("invalid weekday %d", day))
		}
		if !slices.Contains(days, day) {
			days = append(days, day)
		}
	}
	slices.Sort(days)

	return HabitFrequency{Type: frequency.Type, Days: days, TimesPerWeek: frequency.TimesPerWeek}, nil
}

func validation(msg string) error {
	return fmt.Errorf("%w: %s", types.ErrValidation, msg)
}
