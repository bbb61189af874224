package utils

import (
	"time"

	"cronify/internal/constants"
)

// DateKey formats t as YYYY-MM-DD in t's own location.
func DateKey(t time.Time) string {
	return t.Format(constants.DateKeyLayout)
}

func ParseDateKey(key string) (time.Time, error) {
	return time.Parse(constants.DateKeyLayout, key)
}

func IsDateKey(key string) bool {
	_, err := ParseDateKey(key)
	return err == nil
}

// TodayKey is the calendar date of now in loc.
func TodayKey(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return DateKey(now.In(loc))
}

// AddDays shifts a date key by n calendar days. Invalid keys are returned
// unchanged.
func AddDays(key string, n int) string {
	t, err := ParseDateKey(key)
	if err != nil {
		return key
	}
	return DateKey(t.AddDate(0, 0, n))
}

// DaysBetween returns the number of calendar days from a to b. Both keys are
// parsed in UTC so DST never shortens a day.
func DaysBetween(a, b string) (int, error) {
	from, err := ParseDateKey(a)
	if err != nil {
		return 0, err
	}
	to, err := ParseDateKey(b)
	if err != nil {
		return 0, err
	}
	return int(to.Sub(from).Hours() / 24), nil
}
