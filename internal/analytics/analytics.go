// Package analytics summarizes review progress per subject.
package analytics

import (
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/abhisek/studyloop/internal/review"
)

// SubjectStats aggregates the items of one subject.
type SubjectStats struct {
	Subject         string  `json:"subject"`
	Items           int     `json:"items"`
	Due             int     `json:"due"`
	Reviews         int     `json:"reviews"`
	AverageMastery  float64 `json:"average_mastery"`
	AverageInterval float64 `json:"average_interval_days"`
	// Retention is the share of reviews rated Good or better. Zero without
	// reviews.
	Retention float64 `json:"retention"`
	// BestStreak is the longest current streak of any single item.
	BestStreak int `json:"best_streak"`
}

// Summary holds per-subject stats plus the overall totals.
type Summary struct {
	Subjects []SubjectStats `json:"subjects"`
	Total    SubjectStats   `json:"total"`
}

// Summarize computes stats for items as of now. Subjects are sorted by name.
func Summarize(items []*review.Item, now time.Time) Summary {
	groups := lo.GroupBy(items, func(it *review.Item) string { return it.Subject })
	subjects := lo.Keys(groups)
	slices.Sort(subjects)

	total := compute(items, now)
	total.Subject = ""
	return Summary{
		Subjects: lo.Map(subjects, func(s string, _ int) SubjectStats {
			st := compute(groups[s], now)
			st.Subject = s
			return st
		}),
		Total: total,
	}
}

func compute(items []*review.Item, now time.Time) SubjectStats {
	st := SubjectStats{Items: len(items)}
	if len(items) == 0 {
		return st
	}
	logs := lo.FlatMap(items, func(it *review.Item, _ int) []review.ReviewLog { return it.Logs })

	st.Due = lo.CountBy(items, func(it *review.Item) bool { return it.IsDue(now) })
	st.Reviews = len(logs)
	st.AverageMastery = float64(lo.SumBy(items, func(it *review.Item) int { return it.MasteryLevel })) / float64(len(items))
	st.AverageInterval = float64(lo.SumBy(items, func(it *review.Item) int { return it.ReviewInterval })) / float64(len(items))
	if len(logs) > 0 {
		good := lo.CountBy(logs, func(l review.ReviewLog) bool { return l.Rating >= review.Good })
		st.Retention = float64(good) / float64(len(logs))
	}
	st.BestStreak = lo.Max(lo.Map(items, func(it *review.Item, _ int) int { return review.Streak(it.Logs, now) }))
	return st
}
