package review

import (
	"fmt"
	"slices"
	"time"
)

// Phase is the coarse learning stage of an item. Progression is driven by the
// learner, never by the scheduler.
type Phase string

const (
	PhaseInitial       Phase = "initial"
	PhaseConsolidation Phase = "consolidation"
	PhaseMastery       Phase = "mastery"
)

// ParsePhase validates a phase name.
func ParsePhase(s string) (Phase, error) {
	switch p := Phase(s); p {
	case PhaseInitial, PhaseConsolidation, PhaseMastery:
		return p, nil
	}
	return "", fmt.Errorf("unknown phase %q", s)
}

// Kind tags what an item represents.
type Kind string

const (
	KindTopic   Kind = "topic"
	KindConcept Kind = "concept"
)

// ParseKind validates an item kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindTopic, KindConcept:
		return k, nil
	}
	return "", fmt.Errorf("unknown item kind %q", s)
}

// FSRSState is the memory model carried between reviews by the fsrs variant.
type FSRSState struct {
	Stability      float64   `json:"stability"`
	Difficulty     float64   `json:"difficulty"`
	Retrievability float64   `json:"retrievability"`
	LastReview     time.Time `json:"last_review"`
}

// ReviewLog is one completed review. Logs are append-only; only the calendar
// linkage of an existing entry may change.
type ReviewLog struct {
	Date            time.Time `json:"date"`
	Rating          Rating    `json:"rating"`
	Interval        int       `json:"interval"`
	AddedToCalendar bool      `json:"added_to_calendar"`
	CalendarEventID string    `json:"calendar_event_id,omitempty"`
}

// StudySession is a logged block of study used as learning-velocity input.
type StudySession struct {
	Date            time.Time `json:"date"`
	MasteryGained   float64   `json:"mastery_gained"`
	DurationMinutes int       `json:"duration_minutes"`
}

// Reviewable is the capability set the scheduler reads. Topics and concepts
// both satisfy it through Item.
type Reviewable interface {
	Mastery() int
	CurrentPhase() Phase
	ReviewHistory() []ReviewLog
	LastInterval() int
	MemoryState() *FSRSState
}

// Item is a topic or concept tracked for spaced review.
type Item struct {
	ID             string      `json:"id"`
	Kind           Kind        `json:"kind"`
	Subject        string      `json:"subject"`
	Title          string      `json:"title"`
	MasteryLevel   int         `json:"mastery_level"`
	Phase          Phase       `json:"phase"`
	Logs           []ReviewLog `json:"review_logs"`
	ReviewInterval int         `json:"review_interval"`
	NextReview     *time.Time  `json:"next_review,omitempty"`
	ExamDate       *time.Time  `json:"exam_date,omitempty"`
	FSRS           *FSRSState  `json:"fsrs,omitempty"`
	Version        int64       `json:"version"`
	CreatedAt      time.Time   `json:"created_at"`
}

var _ Reviewable = (*Item)(nil)

func (it *Item) Mastery() int               { return it.MasteryLevel }
func (it *Item) CurrentPhase() Phase        { return it.Phase }
func (it *Item) ReviewHistory() []ReviewLog { return it.Logs }
func (it *Item) LastInterval() int          { return it.ReviewInterval }
func (it *Item) MemoryState() *FSRSState    { return it.FSRS }

// WithReview returns a copy of the item with the scheduling result applied
// and its review log appended. The receiver is not modified.
func (it *Item) WithReview(res Result) Item {
	next := *it
	next.Logs = append(slices.Clone(it.Logs), res.Entry)
	next.ReviewInterval = res.IntervalDays
	nextDate := res.NextDate
	next.NextReview = &nextDate
	if res.FSRS != nil {
		st := *res.FSRS
		next.FSRS = &st
	}
	return next
}

// LastReview returns the most recent review log, if any.
func (it *Item) LastReview() (ReviewLog, bool) {
	if len(it.Logs) == 0 {
		return ReviewLog{}, false
	}
	return it.Logs[len(it.Logs)-1], true
}
