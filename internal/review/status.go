package review

import "time"

// Status describes an item's review status for display.
type Status string

const (
	StatusNew     Status = "new"
	StatusNotDue  Status = "not_due"
	StatusDue     Status = "due"
	StatusOverdue Status = "overdue"
)

// IsDue returns true if the item has never been scheduled or is at or past
// its review date.
func (it *Item) IsDue(now time.Time) bool {
	if it.NextReview == nil {
		return true
	}
	return !now.Before(*it.NextReview)
}

// OverdueDays returns how many days past due the item is. Returns 0 if not
// yet due or never scheduled.
func (it *Item) OverdueDays(now time.Time) float64 {
	if it.NextReview == nil || now.Before(*it.NextReview) {
		return 0
	}
	return now.Sub(*it.NextReview).Hours() / 24.0
}

// IsOverdue returns true once the item is past half its interval beyond the
// review date.
func (it *Item) IsOverdue(now time.Time) bool {
	if it.NextReview == nil || !it.IsDue(now) {
		return false
	}
	interval := max(it.ReviewInterval, MinIntervalDays)
	graceHours := float64(interval) * 0.5 * 24.0
	threshold := it.NextReview.Add(time.Duration(graceHours * float64(time.Hour)))
	return now.After(threshold)
}

// Status returns the review status for UI display.
func (it *Item) Status(now time.Time) Status {
	if it.NextReview == nil {
		return StatusNew
	}
	if it.IsOverdue(now) {
		return StatusOverdue
	}
	if it.IsDue(now) {
		return StatusDue
	}
	return StatusNotDue
}

// DaysUntilReview returns the number of days until the next review.
// Returns 0 if already due.
func (it *Item) DaysUntilReview(now time.Time) int {
	if it.IsDue(now) {
		return 0
	}
	return int(it.NextReview.Sub(now).Hours()/24.0) + 1
}
