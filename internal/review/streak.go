package review

import (
	"slices"
	"time"
)

// Streak counts consecutive calendar days, ending today, with at least one
// review. Days are taken in now's location. No review today means 0.
func Streak(logs []ReviewLog, now time.Time) int {
	if len(logs) == 0 {
		return 0
	}
	days := make([]time.Time, 0, len(logs))
	for _, l := range logs {
		days = append(days, startOfDay(l.Date.In(now.Location())))
	}
	slices.SortFunc(days, func(a, b time.Time) int { return b.Compare(a) })

	want := startOfDay(now)
	streak := 0
	for _, d := range days {
		if d.After(want) {
			continue // already counted, or future-dated
		}
		if !d.Equal(want) {
			break
		}
		streak++
		want = want.AddDate(0, 0, -1)
	}
	return streak
}

// BaseStreakMilestone is the first streak length celebrated in the UI.
const BaseStreakMilestone = 5

// NextStreakMilestone returns the next milestone above the current streak.
func NextStreakMilestone(current int) int {
	milestones := []int{5, 10, 15, 20}
	for _, m := range milestones {
		if m > current {
			return m
		}
	}
	// Beyond 20, every 5.
	return ((current / 5) + 1) * 5
}
