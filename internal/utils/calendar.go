package utils

import (
	"time"

	"cronify/internal/models"
)

type DayState string

const (
	DayFuture      DayState = "future"
	DayBeforeStart DayState = "before_start"
	DayPending     DayState = "pending"
	DayCompleted   DayState = "completed"
	DayFailed      DayState = "failed"
	DaySkipped     DayState = "skipped"
	DayPartial     DayState = "partial"
)

// Disabled days cannot receive a log.
func (s DayState) Disabled() bool {
	return s == DayFuture || s == DayBeforeStart
}

type CalendarDay struct {
	Date     string           `json:"date"`
	Day      int              `json:"day"`
	Weekday  int              `json:"weekday"`
	State    DayState         `json:"state"`
	Disabled bool             `json:"disabled"`
	Log      *models.HabitLog `json:"log,omitempty"`
}

type CalendarMonth struct {
	Year          int           `json:"year"`
	Month         int           `json:"month"`
	LeadingBlanks int           `json:"leadingBlanks"`
	Days          []CalendarDay `json:"days"`
}

// LeadingBlanks is the number of empty cells before the first of the month in
// a Monday-first grid.
func LeadingBlanks(year int, month time.Month) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return (int(first.Weekday()) + 6) % 7
}

// MonthDays lists the date keys of every day in the month.
func MonthDays(year int, month time.Month) []string {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	count := first.AddDate(0, 1, -1).Day()

	days := make([]string, 0, count)
	for i := range count {
		days = append(days, DateKey(first.AddDate(0, 0, i)))
	}
	return days
}

// TrailingWeek lists the seven date keys ending at today, oldest first.
func TrailingWeek(today string) []string {
	days := make([]string, 0, 7)
	for i := 6; i >= 0; i-- {
		days = append(days, AddDays(today, -i))
	}
	return days
}

func ClassifyDay(date, today, startDate string, log *models.HabitLog) DayState {
	switch {
	case date > today:
		return DayFuture
	case date < startDate:
		return DayBeforeStart
	case log == nil:
		return DayPending
	}

	switch log.Status {
	case models.LogStatusCompleted:
		return DayCompleted
	case models.LogStatusFailed:
		return DayFailed
	case models.LogStatusSkipped:
		return DaySkipped
	case models.LogStatusPartial:
		return DayPartial
	default:
		return DayPending
	}
}

func indexLogs(logs []models.HabitLog) map[string]*models.HabitLog {
	byDate := make(map[string]*models.HabitLog, len(logs))
	for i := range logs {
		byDate[logs[i].Date] = &logs[i]
	}
	return byDate
}

func buildDays(dates []string, startDate, today string, logs []models.HabitLog) []CalendarDay {
	byDate := indexLogs(logs)

	days := make([]CalendarDay, 0, len(dates))
	for _, date := range dates {
		t, err := ParseDateKey(date)
		if err != nil {
			continue
		}
		log := byDate[date]
		state := ClassifyDay(date, today, startDate, log)
		days = append(days, CalendarDay{
			Date:     date,
			Day:      t.Day(),
			Weekday:  int(t.Weekday()),
			State:    state,
			Disabled: state.Disabled(),
			Log:      log,
		})
	}
	return days
}

func BuildMonthCalendar(
	habit *models.Habit,
	logs []models.HabitLog,
	year int,
	month time.Month,
	today string,
) CalendarMonth {
	return CalendarMonth{
		Year:          year,
		Month:         int(month),
		LeadingBlanks: LeadingBlanks(year, month),
		Days:          buildDays(MonthDays(year, month), habit.StartDate, today, logs),
	}
}

func BuildWeek(habit *models.Habit, logs []models.HabitLog, today string) []CalendarDay {
	return buildDays(TrailingWeek(today), habit.StartDate, today, logs)
}
