package utils

import (
	"fmt"
	"time"

	"cronify/internal/models"
)

// Calendar-approximate unit lengths in seconds.
const (
	SecondsPerMinute int64 = 60
	SecondsPerHour   int64 = 60 * SecondsPerMinute
	SecondsPerDay    int64 = 24 * SecondsPerHour
	SecondsPerWeek   int64 = 7 * SecondsPerDay
	SecondsPerMonth  int64 = 30 * SecondsPerDay
	SecondsPerYear   int64 = 365 * SecondsPerDay
)

type Breakdown struct {
	Years   int64 `json:"years"`
	Months  int64 `json:"months"`
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
}

func ElapsedSeconds(since, now time.Time) int64 {
	elapsed := int64(now.Sub(since) / time.Second)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// ElapsedBreakdown splits total seconds using 365-day years and 30-day
// months.
func ElapsedBreakdown(total int64) Breakdown {
	if total < 0 {
		total = 0
	}

	var b Breakdown
	b.Years, total = total/SecondsPerYear, total%SecondsPerYear
	b.Months, total = total/SecondsPerMonth, total%SecondsPerMonth
	b.Days, total = total/SecondsPerDay, total%SecondsPerDay
	b.Hours, total = total/SecondsPerHour, total%SecondsPerHour
	b.Minutes, b.Seconds = total/SecondsPerMinute, total%SecondsPerMinute
	return b
}

type goalTier struct {
	below int64
	unit  int64
	label string
}

var goalTiers = []goalTier{
	{SecondsPerMinute, 1, "segundos"},
	{SecondsPerHour, SecondsPerMinute, "minutos"},
	{SecondsPerDay, SecondsPerHour, "horas"},
	{SecondsPerWeek, SecondsPerDay, "días"},
	{SecondsPerMonth, SecondsPerWeek, "semanas"},
}

// FormatGoalSeconds renders a goal in the largest unit it reaches, floored.
// 90 becomes "1 minutos".
func FormatGoalSeconds(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	for _, tier := range goalTiers {
		if seconds < tier.below {
			return fmt.Sprintf("%d %s", seconds/tier.unit, tier.label)
		}
	}
	return fmt.Sprintf("%d meses", seconds/SecondsPerMonth)
}

type TimerSnapshot struct {
	HabitID          string    `json:"habitId"`
	StartedAt        time.Time `json:"startedAt"`
	ElapsedSeconds   int64     `json:"elapsedSeconds"`
	Breakdown        Breakdown `json:"breakdown"`
	MaxStreakSeconds int64     `json:"maxStreakSeconds"`
	IsRecord         bool      `json:"isRecord"`
	GoalSeconds      *int64    `json:"goalSeconds,omitempty"`
	GoalText         string    `json:"goalText,omitempty"`
	GoalProgress     int       `json:"goalProgress"`
}

// BuildTimerSnapshot computes the current state of a break habit's timer.
func BuildTimerSnapshot(habit *models.Habit, now time.Time, loc *time.Location) TimerSnapshot {
	start := habit.TimerStart(loc)
	elapsed := ElapsedSeconds(start, now)

	snapshot := TimerSnapshot{
		HabitID:          habit.ID.String(),
		StartedAt:        start,
		ElapsedSeconds:   elapsed,
		Breakdown:        ElapsedBreakdown(elapsed),
		MaxStreakSeconds: habit.MaxStreakSeconds,
		IsRecord:         elapsed > habit.MaxStreakSeconds,
	}

	if habit.GoalSeconds != nil && *habit.GoalSeconds > 0 {
		goal := *habit.GoalSeconds
		snapshot.GoalSeconds = &goal
		snapshot.GoalText = FormatGoalSeconds(goal)
		snapshot.GoalProgress = int(min(elapsed*100/goal, 100))
	}

	return snapshot
}
