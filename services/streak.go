package services

import (
	"sort"
	"time"
)

// StreakResult holds the derived streak signal for a user's activity dates.
type StreakResult struct {
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

// CalculateStreaks reduces activity timestamps to distinct UTC calendar days
// and walks them in ascending order. A gap of exactly one day extends the
// running streak; anything larger resets it to 1. The current streak only
// counts if the most recent day is today or yesterday relative to now; a
// streak broken before that reports zero while the longest streak keeps
// history. Pure: output depends only on the input set, not insertion order.
func CalculateStreaks(dates []time.Time, now time.Time) StreakResult {
	if len(dates) == 0 {
		return StreakResult{}
	}

	seen := make(map[time.Time]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := truncateToDay(d)
		if _, ok := seen[day]; !ok {
			seen[day] = struct{}{}
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	run, longest := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}

	current := run
	yesterday := truncateToDay(now).AddDate(0, 0, -1)
	if days[len(days)-1].Before(yesterday) {
		current = 0
	}

	return StreakResult{CurrentStreak: current, LongestStreak: longest}
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
