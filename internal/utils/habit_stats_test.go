package utils

import (
	"testing"

	"cronify/internal/models"

	"github.com/stretchr/testify/assert"
)

const today = "2024-03-15"

func logOn(date string, status models.LogStatus) models.HabitLog {
	return models.HabitLog{Date: date, Status: status}
}

func TestCalculateHabitStats(t *testing.T) {
	tests := []struct {
		name      string
		logs      []models.HabitLog
		startDate string
		expected  HabitStats
	}{
		{
			name:      "no logs",
			logs:      nil,
			startDate: "2024-03-01",
			expected:  HabitStats{TotalDays: 15},
		},
		{
			name:      "single completed today",
			logs:      []models.HabitLog{logOn(today, models.LogStatusCompleted)},
			startDate: today,
			expected: HabitStats{
				TotalDays:      1,
				CompletedDays:  1,
				CompletionRate: 100,
				CurrentStreak:  1,
				BestStreak:     1,
			},
		},
		{
			name: "completed today after failure yesterday",
			logs: []models.HabitLog{
				logOn("2024-03-10", models.LogStatusCompleted),
				logOn("2024-03-11", models.LogStatusCompleted),
				logOn("2024-03-12", models.LogStatusCompleted),
				logOn("2024-03-13", models.LogStatusCompleted),
				logOn("2024-03-14", models.LogStatusFailed),
				logOn("2024-03-15", models.LogStatusCompleted),
			},
			startDate: "2024-03-10",
			expected: HabitStats{
				TotalDays:      6,
				CompletedDays:  5,
				FailedDays:     1,
				CompletionRate: 83,
				CurrentStreak:  1,
				BestStreak:     4,
			},
		},
		{
			name: "two day gap before today",
			logs: []models.HabitLog{
				logOn("2024-03-12", models.LogStatusCompleted),
				logOn("2024-03-13", models.LogStatusCompleted),
			},
			startDate: "2024-03-12",
			expected: HabitStats{
				TotalDays:      4,
				CompletedDays:  2,
				CompletionRate: 100,
				CurrentStreak:  0,
				BestStreak:     2,
			},
		},
		{
			name: "yesterday keeps streak alive",
			logs: []models.HabitLog{
				logOn("2024-03-13", models.LogStatusCompleted),
				logOn("2024-03-14", models.LogStatusCompleted),
			},
			startDate: "2024-03-13",
			expected: HabitStats{
				TotalDays:      3,
				CompletedDays:  2,
				CompletionRate: 100,
				CurrentStreak:  2,
				BestStreak:     2,
			},
		},
		{
			name: "skipped and partial bridge without counting",
			logs: []models.HabitLog{
				logOn("2024-03-11", models.LogStatusCompleted),
				logOn("2024-03-12", models.LogStatusSkipped),
				logOn("2024-03-13", models.LogStatusCompleted),
				logOn("2024-03-14", models.LogStatusPartial),
				logOn("2024-03-15", models.LogStatusCompleted),
			},
			startDate: "2024-03-11",
			expected: HabitStats{
				TotalDays:      5,
				CompletedDays:  3,
				SkippedDays:    1,
				PartialDays:    1,
				CompletionRate: 100,
				CurrentStreak:  3,
				BestStreak:     3,
			},
		},
		{
			name: "gap inside history splits best streak",
			logs: []models.HabitLog{
				logOn("2024-03-01", models.LogStatusCompleted),
				logOn("2024-03-02", models.LogStatusCompleted),
				logOn("2024-03-05", models.LogStatusCompleted),
				logOn("2024-03-15", models.LogStatusCompleted),
			},
			startDate: "2024-03-01",
			expected: HabitStats{
				TotalDays:      15,
				CompletedDays:  4,
				CompletionRate: 100,
				CurrentStreak:  1,
				BestStreak:     2,
			},
		},
		{
			name: "only skipped logs",
			logs: []models.HabitLog{
				logOn("2024-03-15", models.LogStatusSkipped),
			},
			startDate: "2024-03-15",
			expected:  HabitStats{TotalDays: 1, SkippedDays: 1},
		},
		{
			name: "future and malformed logs ignored",
			logs: []models.HabitLog{
				logOn("2024-03-15", models.LogStatusCompleted),
				logOn("2024-03-16", models.LogStatusCompleted),
				logOn("not-a-date", models.LogStatusFailed),
			},
			startDate: "2024-03-15",
			expected: HabitStats{
				TotalDays:      1,
				CompletedDays:  1,
				CompletionRate: 100,
				CurrentStreak:  1,
				BestStreak:     1,
			},
		},
		{
			name:      "start after today",
			logs:      nil,
			startDate: "2024-04-01",
			expected:  HabitStats{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := CalculateHabitStats(tt.logs, tt.startDate, today)

			assert.Equal(t, tt.expected, stats)
			assert.GreaterOrEqual(t, stats.BestStreak, stats.CurrentStreak)
		})
	}
}

func TestCalculateHabitStats_OrderIndependent(t *testing.T) {
	ordered := []models.HabitLog{
		logOn("2024-03-13", models.LogStatusCompleted),
		logOn("2024-03-14", models.LogStatusCompleted),
		logOn("2024-03-15", models.LogStatusCompleted),
	}
	shuffled := []models.HabitLog{ordered[1], ordered[2], ordered[0]}

	assert.Equal(
		t,
		CalculateHabitStats(ordered, "2024-03-13", today),
		CalculateHabitStats(shuffled, "2024-03-13", today),
	)
}

func TestCalculateHabitStats_RateRounding(t *testing.T) {
	logs := []models.HabitLog{
		logOn("2024-03-13", models.LogStatusCompleted),
		logOn("2024-03-14", models.LogStatusFailed),
		logOn("2024-03-15", models.LogStatusFailed),
	}

	stats := CalculateHabitStats(logs, "2024-03-13", today)

	assert.Equal(t, 33, stats.CompletionRate)
	assert.Equal(t, 0, stats.CurrentStreak)
}
