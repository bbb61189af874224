package services

import (
	"bytes"
	"testing"
	"time"

	"cronify/internal/models"
	"cronify/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportService_RenderHabitReport(t *testing.T) {
	habit := models.Habit{
		Title:       "Correr por las mañanas",
		Description: "Thirty minutes before work",
		Type:        models.HabitTypeBuild,
		StartDate:   "2024-03-01",
	}
	habit.ID = uuid.New()

	logs := []models.HabitLog{
		{Date: "2024-03-13", Status: models.LogStatusCompleted},
		{Date: "2024-03-14", Status: models.LogStatusFailed},
		{Date: "2024-03-15", Status: models.LogStatusCompleted},
	}
	today := "2024-03-15"

	var buf bytes.Buffer
	err := NewReportService().RenderHabitReport(&buf, HabitReport{
		Habit:       habit,
		Stats:       utils.CalculateHabitStats(logs, habit.StartDate, today),
		Month:       utils.BuildMonthCalendar(&habit, logs, 2024, time.March, today),
		GeneratedAt: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestReportService_RenderBreakHabitWithTimer(t *testing.T) {
	goal := 30 * utils.SecondsPerDay
	habit := models.Habit{
		Title:            "No sugar",
		Type:             models.HabitTypeBreak,
		StartDate:        "2024-03-01",
		MaxStreakSeconds: 5 * utils.SecondsPerDay,
		GoalSeconds:      &goal,
	}
	habit.ID = uuid.New()

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	timer := utils.BuildTimerSnapshot(&habit, now, time.UTC)

	var buf bytes.Buffer
	err := NewReportService().RenderHabitReport(&buf, HabitReport{
		Habit:       habit,
		Month:       utils.BuildMonthCalendar(&habit, nil, 2024, time.March, "2024-03-15"),
		Timer:       &timer,
		GeneratedAt: now,
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
