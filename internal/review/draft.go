package review

import (
	"fmt"
	"slices"
	"time"
)

// Draft is a pending review decision while the learner is still choosing.
//
// A custom date, once set, survives later rating changes until it is
// cleared explicitly. Choosing a rating always drops any calendar event
// linked to the previous proposal.
type Draft struct {
	sched      *Scheduler
	item       Reviewable
	opts       []Option
	rating     Rating
	reviewedAt time.Time
	proposal   *Result
	customDate *time.Time
	eventID    string
}

// NewDraft starts a draft for item.
func NewDraft(s *Scheduler, item Reviewable, opts ...Option) *Draft {
	return &Draft{sched: s, item: item, opts: opts}
}

// SetRating records the rating and recomputes the proposal. A custom date
// still takes precedence over the recomputed one, and must still fall after
// the new review time for Confirm to succeed.
func (d *Draft) SetRating(r Rating, now time.Time) error {
	if !r.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidRating, int(r))
	}
	d.rating = r
	d.reviewedAt = now
	d.eventID = ""
	return d.recompute()
}

// SetCustomDate overrides the computed date. The date must fall on a later
// calendar day than the review.
func (d *Draft) SetCustomDate(date, now time.Time) error {
	if daysBetween(now, date) < MinIntervalDays {
		return fmt.Errorf("%w: %s must be after today", ErrInvalidDate, date.Format(time.DateOnly))
	}
	d.customDate = &date
	if d.reviewedAt.IsZero() {
		d.reviewedAt = now
	}
	d.eventID = ""
	return nil
}

// ClearCustomDate drops the override and recomputes from the current rating.
func (d *Draft) ClearCustomDate() error {
	d.customDate = nil
	d.eventID = ""
	if !d.rating.IsValid() {
		return nil
	}
	return d.recompute()
}

// Overridden reports whether a custom date is in effect.
func (d *Draft) Overridden() bool {
	return d.customDate != nil
}

// Rating returns the chosen rating, or 0 if none.
func (d *Draft) Rating() Rating {
	return d.rating
}

// LinkCalendarEvent attaches an external calendar event to the pending entry.
func (d *Draft) LinkCalendarEvent(id string) {
	d.eventID = id
}

// CalendarEventID returns the linked event, if any.
func (d *Draft) CalendarEventID() string {
	return d.eventID
}

// Proposal returns the current date and interval the draft would confirm.
func (d *Draft) Proposal() (Result, bool) {
	res, err := d.build()
	return res, err == nil
}

// Confirm returns the final result, including the log entry to append.
func (d *Draft) Confirm() (Result, error) {
	res, err := d.build()
	if err != nil {
		return Result{}, err
	}
	if !d.rating.IsValid() {
		return Result{}, fmt.Errorf("%w: no rating chosen", ErrInvalidRating)
	}
	return res, nil
}

func (d *Draft) build() (Result, error) {
	var res Result
	switch {
	case d.customDate != nil:
		days := daysBetween(d.reviewedAt, *d.customDate)
		if days < MinIntervalDays {
			return Result{}, fmt.Errorf("%w: %s is not after the review on %s", ErrInvalidDate,
				d.customDate.Format(time.DateOnly), d.reviewedAt.Format(time.DateOnly))
		}
		if d.proposal != nil {
			res.Rationale = slices.Clone(d.proposal.Rationale)
			res.FSRS = d.proposal.FSRS
		}
		res.NextDate = *d.customDate
		res.IntervalDays = days
		res.Rationale = append(res.Rationale, fmt.Sprintf("Custom date selected: %s (%d days)", d.customDate.Format(time.DateOnly), days))
	case d.proposal != nil:
		res = *d.proposal
		res.Rationale = slices.Clone(d.proposal.Rationale)
	default:
		return Result{}, ErrMissingDate
	}
	res.Entry = ReviewLog{
		Date:            d.reviewedAt,
		Rating:          d.rating,
		Interval:        res.IntervalDays,
		AddedToCalendar: d.eventID != "",
		CalendarEventID: d.eventID,
	}
	return res, nil
}

func (d *Draft) recompute() error {
	res, err := d.sched.Schedule(d.item, d.rating, d.reviewedAt, d.opts...)
	if err != nil {
		return err
	}
	d.proposal = &res
	return nil
}
