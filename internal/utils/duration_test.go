package utils

import (
	"testing"
	"time"

	"cronify/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatGoalSeconds(t *testing.T) {
	tests := []struct {
		seconds  int64
		expected string
	}{
		{0, "0 segundos"},
		{59, "59 segundos"},
		{60, "1 minutos"},
		{90, "1 minutos"},
		{3599, "59 minutos"},
		{3600, "1 horas"},
		{86399, "23 horas"},
		{86400, "1 días"},
		{604799, "6 días"},
		{604800, "1 semanas"},
		{2591999, "4 semanas"},
		{2592000, "1 meses"},
		{31536000, "12 meses"},
		{-5, "0 segundos"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatGoalSeconds(tt.seconds))
		})
	}
}

func TestElapsedBreakdown(t *testing.T) {
	tests := []struct {
		name     string
		seconds  int64
		expected Breakdown
	}{
		{"zero", 0, Breakdown{}},
		{"negative clamps", -10, Breakdown{}},
		{"seconds only", 45, Breakdown{Seconds: 45}},
		{"one of each", SecondsPerYear + SecondsPerMonth + SecondsPerDay + SecondsPerHour + SecondsPerMinute + 1,
			Breakdown{Years: 1, Months: 1, Days: 1, Hours: 1, Minutes: 1, Seconds: 1}},
		{"thirty days is a month", 30 * SecondsPerDay, Breakdown{Months: 1}},
		{"364 days", 364 * SecondsPerDay, Breakdown{Months: 12, Days: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ElapsedBreakdown(tt.seconds))
		})
	}
}

func TestElapsedSeconds(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, int64(90), ElapsedSeconds(start, start.Add(90*time.Second+500*time.Millisecond)))
	assert.Equal(t, int64(0), ElapsedSeconds(start, start.Add(-time.Hour)))
}

func TestBuildTimerSnapshot(t *testing.T) {
	reset := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	goal := 2 * SecondsPerDay
	habit := &models.Habit{
		Type:             models.HabitTypeBreak,
		StartDate:        "2024-02-01",
		LastResetAt:      &reset,
		MaxStreakSeconds: SecondsPerDay / 2,
		GoalSeconds:      &goal,
	}
	habit.ID = uuid.New()

	snapshot := BuildTimerSnapshot(habit, reset.Add(24*time.Hour), time.UTC)

	assert.Equal(t, habit.ID.String(), snapshot.HabitID)
	assert.Equal(t, SecondsPerDay, snapshot.ElapsedSeconds)
	assert.Equal(t, Breakdown{Days: 1}, snapshot.Breakdown)
	assert.True(t, snapshot.IsRecord)
	require.NotNil(t, snapshot.GoalSeconds)
	assert.Equal(t, "2 días", snapshot.GoalText)
	assert.Equal(t, 50, snapshot.GoalProgress)

	done := BuildTimerSnapshot(habit, reset.Add(72*time.Hour), time.UTC)
	assert.Equal(t, 100, done.GoalProgress)
}

func TestBuildTimerSnapshot_NoGoal(t *testing.T) {
	habit := &models.Habit{StartDate: "2024-03-01", MaxStreakSeconds: SecondsPerWeek}

	snapshot := BuildTimerSnapshot(habit, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), time.UTC)

	assert.Equal(t, SecondsPerDay, snapshot.ElapsedSeconds)
	assert.False(t, snapshot.IsRecord)
	assert.Nil(t, snapshot.GoalSeconds)
	assert.Empty(t, snapshot.GoalText)
}
