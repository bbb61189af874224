package utils

import (
	"math"
	"sort"

	"cronify/internal/models"
)

type HabitStats struct {
	TotalDays      int `json:"totalDays"`
	CompletedDays  int `json:"completedDays"`
	FailedDays     int `json:"failedDays"`
	SkippedDays    int `json:"skippedDays"`
	PartialDays    int `json:"partialDays"`
	CompletionRate int `json:"completionRate"`
	CurrentStreak  int `json:"currentStreak"`
	BestStreak     int `json:"bestStreak"`
}

// CalculateHabitStats derives counts, completion rate and streaks from an
// unordered set of logs. startDate and today are date keys. Logs dated after
// today or with unparsable dates are ignored.
func CalculateHabitStats(logs []models.HabitLog, startDate, today string) HabitStats {
	var stats HabitStats

	if elapsed, err := DaysBetween(startDate, today); err == nil && elapsed >= 0 {
		stats.TotalDays = elapsed + 1
	}

	relevant := make([]models.HabitLog, 0, len(logs))
	for _, log := range logs {
		if !IsDateKey(log.Date) || log.Date > today {
			continue
		}
		relevant = append(relevant, log)

		switch log.Status {
		case models.LogStatusCompleted:
			stats.CompletedDays++
		case models.LogStatusFailed:
			stats.FailedDays++
		case models.LogStatusSkipped:
			stats.SkippedDays++
		case models.LogStatusPartial:
			stats.PartialDays++
		}
	}

	if logged := stats.CompletedDays + stats.FailedDays; logged > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.CompletedDays) / float64(logged) * 100))
	}

	sort.Slice(relevant, func(i, j int) bool {
		return relevant[i].Date < relevant[j].Date
	})

	stats.CurrentStreak = currentStreak(relevant, today)
	stats.BestStreak = bestStreak(relevant)

	return stats
}

// currentStreak walks sorted logs from newest to oldest. The newest log may be
// today or yesterday, after that every step must be exactly one day. A failed
// log or a larger gap ends the walk. Skipped and partial days bridge the
// chain without adding to it.
func currentStreak(sorted []models.HabitLog, today string) int {
	streak := 0
	cursor := today

	for i := len(sorted) - 1; i >= 0; i-- {
		log := sorted[i]

		gap, err := DaysBetween(log.Date, cursor)
		if err != nil {
			break
		}
		if i == len(sorted)-1 {
			if gap > 1 {
				break
			}
		} else if gap != 1 {
			break
		}

		if log.Status == models.LogStatusFailed {
			break
		}
		if log.Status == models.LogStatusCompleted {
			streak++
		}
		cursor = log.Date
	}

	return streak
}

// bestStreak is the longest run of completed entries in date order. A failed
// entry or a gap of more than one day resets the run.
func bestStreak(sorted []models.HabitLog) int {
	best, run := 0, 0

	for i, log := range sorted {
		if i > 0 {
			if gap, err := DaysBetween(sorted[i-1].Date, log.Date); err != nil || gap > 1 {
				run = 0
			}
		}

		switch log.Status {
		case models.LogStatusCompleted:
			run++
			if run > best {
				best = run
			}
		case models.LogStatusFailed:
			run = 0
		}
	}

	return best
}
