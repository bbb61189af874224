package jobs

import (
	"context"
	"time"

	"cronify/internal/events"
	"cronify/internal/logger"
	"cronify/internal/models"
	"cronify/internal/repositories"
	"cronify/internal/services"
	"cronify/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AutoFailJob writes a failed log for yesterday on every scheduled build habit
// of opted-in users that nobody logged. Yesterday is taken in each user's
// timezone.
type AutoFailJob struct {
	db           *gorm.DB
	settingsRepo repositories.UserSettingsRepository
	habitRepo    repositories.HabitRepository
	logRepo      repositories.HabitLogRepository
	publisher    events.Publisher
	schedule     services.Schedule
	now          func() time.Time
	log          logger.Logger
}

type AutoFailResult struct {
	Users   int
	Checked int
	Failed  int
}

func NewAutoFailJob(
	db *gorm.DB,
	repos repositories.Repository,
	publisher events.Publisher,
	schedule services.Schedule,
) *AutoFailJob {
	log := logger.New("autoFailJob")
	log.Info("Creating new auto-fail job", "schedule", schedule)

	return &AutoFailJob{
		db:           db,
		settingsRepo: repos.UserSettings,
		habitRepo:    repos.Habit,
		logRepo:      repos.HabitLog,
		publisher:    publisher,
		schedule:     schedule,
		now:          time.Now,
		log:          log,
	}
}

func (j *AutoFailJob) Name() string {
	return "AutoFailMissedLogs"
}

func (j *AutoFailJob) Schedule() services.Schedule {
	return j.schedule
}

func (j *AutoFailJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	result, err := j.Run(ctx)
	if err != nil {
		return log.Err("auto-fail run failed", err)
	}

	log.Info("Auto-fail run completed",
		"users", result.Users,
		"checked", result.Checked,
		"failed", result.Failed)
	return nil
}

// Run does one pass. A failure on a single habit is logged and skipped so the
// remaining habits are still processed.
func (j *AutoFailJob) Run(ctx context.Context) (AutoFailResult, error) {
	log := j.log.Function("Run")
	var result AutoFailResult

	settings, err := j.settingsRepo.ListAutoFailEnabled(ctx, j.db)
	if err != nil {
		return result, log.Err("failed to list auto-fail users", err)
	}
	if len(settings) == 0 {
		return result, nil
	}

	locations := make(map[uuid.UUID]*time.Location, len(settings))
	userIDs := make([]uuid.UUID, 0, len(settings))
	for i := range settings {
		locations[settings[i].UserID] = settings[i].Location()
		userIDs = append(userIDs, settings[i].UserID)
	}
	result.Users = len(userIDs)

	habits, err := j.habitRepo.ListBuildHabitsForUsers(ctx, j.db, userIDs)
	if err != nil {
		return result, log.Err("failed to list build habits", err)
	}

	now := j.now()
	for i := range habits {
		habit := &habits[i]

		date, ok := missedDate(habit, now, locations[habit.UserID])
		if !ok {
			continue
		}
		result.Checked++

		created, err := j.logRepo.CreateIfMissing(ctx, j.db, &models.HabitLog{
			HabitID: habit.ID,
			Date:    date,
			Status:  models.LogStatusFailed,
			Reason:  models.AutoFailReason,
		})
		if err != nil {
			log.Er("failed to write auto-fail log", err, "habitID", habit.ID, "date", date)
			continue
		}
		if !created {
			continue
		}
		result.Failed++

		if err := j.publisher.PublishToUser(habit.UserID, events.LOG_UPDATED, map[string]any{
			"habitId": habit.ID.String(),
			"date":    date,
			"status":  string(models.LogStatusFailed),
			"reason":  models.AutoFailReason,
		}); err != nil {
			log.Warn("failed to publish auto-fail event", "habitID", habit.ID, "error", err)
		}
	}

	return result, nil
}

// missedDate returns yesterday's key for habit when the habit was due then.
func missedDate(habit *models.Habit, now time.Time, loc *time.Location) (string, bool) {
	if habit.IsBreak() {
		return "", false
	}
	if loc == nil {
		loc = time.UTC
	}

	yesterday := utils.AddDays(utils.TodayKey(now, loc), -1)
	if yesterday == "" || !habit.ActiveOn(yesterday) {
		return "", false
	}

	day, err := utils.ParseDateKey(yesterday)
	if err != nil {
		return "", false
	}
	if !habit.Frequency.Data().IsScheduledOn(day.Weekday()) {
		return "", false
	}
	return yesterday, true
}
