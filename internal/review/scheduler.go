package review

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// Variant selects which adjustment pipeline the scheduler runs.
type Variant string

const (
	// VariantAdaptive applies history, trend, rating-delta, lateness and
	// mastery adjustments.
	VariantAdaptive Variant = "adaptive"
	// VariantPhase applies only the learning-phase multiplier.
	VariantPhase Variant = "phase"
	// VariantFSRS derives the interval from the carried memory state.
	VariantFSRS Variant = "fsrs"
)

// ParseVariant validates a variant name.
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(s); v {
	case VariantAdaptive, VariantPhase, VariantFSRS:
		return v, nil
	case "":
		return VariantAdaptive, nil
	}
	return "", fmt.Errorf("%w: unknown variant %q", ErrInvalidConfig, s)
}

// Config configures a Scheduler.
type Config struct {
	Variant         Variant
	MaxIntervalDays int        // zero → DefaultMaxIntervalDays
	FSRS            FSRSParams // zero → DefaultFSRSParams
}

// DefaultConfig returns the adaptive scheduler configuration.
func DefaultConfig() Config {
	return Config{
		Variant:         VariantAdaptive,
		MaxIntervalDays: DefaultMaxIntervalDays,
		FSRS:            DefaultFSRSParams(),
	}
}

// Scheduler computes next review dates. It holds no mutable state and is
// safe for concurrent use.
type Scheduler struct {
	cfg Config
}

// NewScheduler validates cfg and fills zero values with defaults.
func NewScheduler(cfg Config) (*Scheduler, error) {
	v, err := ParseVariant(string(cfg.Variant))
	if err != nil {
		return nil, err
	}
	cfg.Variant = v
	if cfg.MaxIntervalDays == 0 {
		cfg.MaxIntervalDays = DefaultMaxIntervalDays
	}
	if cfg.MaxIntervalDays < MinIntervalDays {
		return nil, fmt.Errorf("%w: max interval %d days", ErrInvalidConfig, cfg.MaxIntervalDays)
	}
	if cfg.FSRS == (FSRSParams{}) {
		cfg.FSRS = DefaultFSRSParams()
	}
	return &Scheduler{cfg: cfg}, nil
}

// Variant returns the configured variant.
func (s *Scheduler) Variant() Variant {
	return s.cfg.Variant
}

// Result is the outcome of one scheduling operation.
type Result struct {
	NextDate     time.Time  `json:"next_date"`
	IntervalDays int        `json:"interval_days"`
	Rationale    []string   `json:"rationale"`
	Entry        ReviewLog  `json:"entry"`
	FSRS         *FSRSState `json:"fsrs,omitempty"`
}

// Option supplies optional context to Schedule.
type Option func(*request)

type request struct {
	sessions []StudySession
	exam     *time.Time
}

// WithSessions supplies recent study sessions for the trend adjustment.
func WithSessions(sessions []StudySession) Option {
	return func(r *request) { r.sessions = sessions }
}

// WithExam caps intervals so a review lands before the exam date.
func WithExam(date time.Time) Option {
	return func(r *request) { r.exam = &date }
}

// Schedule computes the next review for item given a canonical rating.
// It fails only with ErrInvalidRating.
func (s *Scheduler) Schedule(item Reviewable, rating Rating, now time.Time, opts ...Option) (Result, error) {
	if !rating.IsValid() {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidRating, int(rating))
	}
	var req request
	for _, o := range opts {
		o(&req)
	}

	var (
		why      []string
		interval float64
		state    *FSRSState
	)
	history := item.ReviewHistory()

	switch s.cfg.Variant {
	case VariantFSRS:
		st := s.cfg.FSRS.Next(item.MemoryState(), item.Mastery(), rating, now)
		state = &st
		interval = st.Stability
		why = append(why, fmt.Sprintf("Memory stability %.1f days (difficulty %.1f)", st.Stability, st.Difficulty))

	case VariantPhase:
		interval, why = baseInterval(item, history, rating, why)
		if f, ok := phaseFactors[item.CurrentPhase()]; ok && f != 1 {
			interval *= f
			why = append(why, fmt.Sprintf("%s phase: %s", item.CurrentPhase(), percent(f)))
		}

	default:
		interval, why = baseInterval(item, history, rating, why)
		interval, why = applyTrend(interval, req.sessions, now, why)
		if len(history) > 0 {
			interval, why = applyRatingDelta(interval, history[len(history)-1].Rating, rating, why)
			interval, why = applyLateness(interval, history, why)
			interval, why = applyMastery(interval, item.Mastery(), why)
		}
	}

	if req.exam != nil {
		interval, why = applyExamCap(interval, *req.exam, now, why)
	}

	days := clampInterval(interval, s.cfg.MaxIntervalDays)
	switch {
	case days == MinIntervalDays && math.Round(interval) < MinIntervalDays:
		why = append(why, fmt.Sprintf("Raised to the minimum of %d day", MinIntervalDays))
	case days == s.cfg.MaxIntervalDays && math.Round(interval) > float64(s.cfg.MaxIntervalDays):
		why = append(why, fmt.Sprintf("Capped at %d days", s.cfg.MaxIntervalDays))
	}

	next := now.AddDate(0, 0, days)
	return Result{
		NextDate:     next,
		IntervalDays: days,
		Rationale:    why,
		Entry: ReviewLog{
			Date:     now,
			Rating:   rating,
			Interval: days,
		},
		FSRS: state,
	}, nil
}

// baseInterval is step 1: mastery-derived for first reviews, growth/shrink
// of the previous interval otherwise.
func baseInterval(item Reviewable, history []ReviewLog, rating Rating, why []string) (float64, []string) {
	if len(history) == 0 {
		days := InitialIntervalDays(item.Mastery())
		return float64(days), append(why, fmt.Sprintf("Initial interval based on %d%% mastery: %d days", item.Mastery(), days))
	}

	prev := history[len(history)-1].Interval
	if prev < MinIntervalDays {
		prev = item.LastInterval()
	}
	if prev < MinIntervalDays {
		prev = MinIntervalDays
	}

	if rating == Hard {
		return MinIntervalDays, append(why, fmt.Sprintf("Rated %s: reset to %d day", rating, MinIntervalDays))
	}
	f := growthFactors[rating]
	return float64(prev) * f, append(why, fmt.Sprintf("Rated %s: previous %d days x%.1f", rating, prev, f))
}

// applyTrend is step 2.
func applyTrend(interval float64, sessions []StudySession, now time.Time, why []string) (float64, []string) {
	if len(sessions) == 0 {
		return interval, why
	}
	recent := slices.Clone(sessions)
	slices.SortFunc(recent, func(a, b StudySession) int { return b.Date.Compare(a.Date) })
	if len(recent) > trendWindow {
		recent = recent[:trendWindow]
	}

	var sum float64
	for _, s := range recent {
		sum += s.MasteryGained
	}
	avg := sum / float64(len(recent))
	switch {
	case avg > strongGainThreshold:
		interval *= strongGainFactor
		why = append(why, fmt.Sprintf("Strong recent progress (avg +%.1f mastery): %s", avg, percent(strongGainFactor)))
	case avg < weakGainThreshold:
		interval *= weakGainFactor
		why = append(why, fmt.Sprintf("Slow recent progress (avg +%.1f mastery): %s", avg, percent(weakGainFactor)))
	}

	if now.Sub(recent[0].Date) <= recentSessionDays*24*time.Hour {
		interval *= recentSessionFactor
		why = append(why, fmt.Sprintf("Studied within the last %d days: %s", recentSessionDays, percent(recentSessionFactor)))
	}
	return interval, why
}

// applyRatingDelta is step 3.
func applyRatingDelta(interval float64, prev, current Rating, why []string) (float64, []string) {
	switch {
	case current > prev:
		interval *= improvedFactor
		why = append(why, fmt.Sprintf("Improved from %s to %s: %s", prev, current, percent(improvedFactor)))
	case current < prev:
		interval *= declinedFactor
		why = append(why, fmt.Sprintf("Declined from %s to %s: %s", prev, current, percent(declinedFactor)))
	}
	return interval, why
}

// applyLateness is step 4. The last review is late when it was logged more
// than lateGraceDays after the date the review before it scheduled.
func applyLateness(interval float64, history []ReviewLog, why []string) (float64, []string) {
	if len(history) < 2 {
		return interval, why
	}
	prev, last := history[len(history)-2], history[len(history)-1]
	scheduled := prev.Date.AddDate(0, 0, prev.Interval)
	late := last.Date.Sub(scheduled)
	if late <= lateGraceDays*24*time.Hour {
		return interval, why
	}
	interval *= lateFactor
	return interval, append(why, fmt.Sprintf("Last review was %d days late: %s", int(late.Hours()/24), percent(lateFactor)))
}

// applyMastery is step 5.
func applyMastery(interval float64, mastery int, why []string) (float64, []string) {
	switch {
	case mastery < lowMastery:
		interval *= lowMasteryFactor
		why = append(why, fmt.Sprintf("Low mastery (%d%%): %s", mastery, percent(lowMasteryFactor)))
	case mastery > highMastery:
		interval *= highMasteryFactor
		why = append(why, fmt.Sprintf("High mastery (%d%%): %s", mastery, percent(highMasteryFactor)))
	}
	return interval, why
}

// applyExamCap keeps at least one more review before an upcoming exam.
func applyExamCap(interval float64, exam, now time.Time, why []string) (float64, []string) {
	daysLeft := daysBetween(now, exam)
	if daysLeft <= 0 {
		return interval, why
	}
	limit := float64(max(MinIntervalDays, daysLeft/2))
	if interval <= limit {
		return interval, why
	}
	return limit, append(why, fmt.Sprintf("Exam in %d days: capped at %d days", daysLeft, int(limit)))
}

// clampInterval rounds to whole days within [MinIntervalDays, maxDays].
func clampInterval(interval float64, maxDays int) int {
	if math.IsNaN(interval) {
		return MinIntervalDays
	}
	days := math.Round(interval)
	if days < MinIntervalDays {
		return MinIntervalDays
	}
	if days > float64(maxDays) {
		return maxDays
	}
	return int(days)
}

func percent(f float64) string {
	return fmt.Sprintf("%+d%%", int(math.Round((f-1)*100)))
}

// daysBetween counts calendar days from a to b in a's location.
func daysBetween(a, b time.Time) int {
	da := startOfDay(a)
	db := startOfDay(b.In(a.Location()))
	return int(math.Round(db.Sub(da).Hours() / 24))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
