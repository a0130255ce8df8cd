package review

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func newTestScheduler(t *testing.T, v Variant) *Scheduler {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Variant = v
	s, err := NewScheduler(cfg)
	require.NoError(t, err)
	return s
}

func logAt(daysFrom int, rating Rating, interval int) ReviewLog {
	return ReviewLog{Date: day0.AddDate(0, 0, daysFrom), Rating: rating, Interval: interval}
}

func containsLine(lines []string, substr string) bool {
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func TestSchedule_FirstReviewExample(t *testing.T) {
	s := newTestScheduler(t, VariantAdaptive)
	item := &Item{MasteryLevel: 60, Phase: PhaseInitial}

	rating, err := ParseRating(Scale4, 3)
	require.NoError(t, err)

	res, err := s.Schedule(item, rating, day0)
	require.NoError(t, err)

	assert.Equal(t, 5, res.IntervalDays)
	assert.True(t, res.NextDate.Equal(day0.AddDate(0, 0, res.IntervalDays)))
	require.Len(t, res.Rationale, 1)
	assert.Contains(t, res.Rationale[0], "Initial interval based on 60% mastery")
	assert.False(t, containsLine(res.Rationale, "Improved"))
	assert.False(t, containsLine(res.Rationale, "late"))
}

func TestSchedule_EntryMirrorsResult(t *testing.T) {
	s := newTestScheduler(t, VariantAdaptive)
	item := &Item{MasteryLevel: 70, Logs: []ReviewLog{logAt(0, Good, 5)}}
	now := day0.AddDate(0, 0, 5)

	res, err := s.Schedule(item, Easy, now)
	require.NoError(t, err)

	assert.Equal(t, now, res.Entry.Date)
	assert.Equal(t, Easy, res.Entry.Rating)
	assert.Equal(t, res.IntervalDays, res.Entry.Interval)
	assert.Empty(t, res.Entry.CalendarEventID)
	assert.Len(t, item.Logs, 1, "scheduling must not touch the item's logs")
}

func TestSchedule_GrowthByRating(t *testing.T) {
	s := newTestScheduler(t, VariantAdaptive)

	tests := []struct {
		name   string
		prev   Rating
		rating Rating
		want   int
	}{
		// 10 days, mastery 60 (no mastery adjustment).
		{"hard resets", Hard, Hard, 1},
		{"hard after good", Good, Hard, 1},           // 1 * 0.85 -> 1
		{"medium same", Medium, Medium, 6},           // 10 * 0.6
		{"good same", Good, Good, 13},                // 10 * 1.3
		{"easy same", Easy, Easy, 20},                // 10 * 2.0
		{"very easy after easy", Easy, VeryEasy, 29}, // 10 * 2.5 * 1.15
		{"easy after very easy", VeryEasy, Easy, 17}, // 10 * 2.0 * 0.85
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &Item{MasteryLevel: 60, Logs: []ReviewLog{logAt(0, tt.prev, 10)}}
			res, err := s.Schedule(item, tt.rating, day0.AddDate(0, 0, 10))
			require.NoError(t, err)
			if res.IntervalDays != tt.want {
				t.Errorf("IntervalDays = %d, want %d (rationale %q)", res.IntervalDays, tt.want, res.Rationale)
			}
		})
	}
}

func TestSchedule_PreviousIntervalFallsBackToItem(t *testing.T) {
	s := newTestScheduler(t, VariantAdaptive)
	item := &Item{MasteryLevel: 60, ReviewInterval: 4, Logs: []ReviewLog{logAt(0, Easy, 0)}}

	res, err := s.Schedule(item, Easy, day0.AddDate(0, 0, 4))
	require.NoError(t, err)
	assert.Equal(t, 8, res.IntervalDays)
}

func TestSchedule_TrendAdjustment(t *testing.T) {
	s := newTestScheduler(t, VariantAdaptive)
	item := &Item{MasteryLevel: 60}

	strong := []StudySession{
		{Date: day0.AddDate(0, 0, -2), MasteryGained: 20},
		{Date: day0.AddDate(0, 0, -3), MasteryGained: 20},
	}
	res, err := s.Schedule(item, Good, day0, WithSessions(strong))
	require.NoError(t, err)
	assert.Equal(t, 7, res.IntervalDays) // 5 * 1.2 * 1.1 = 6.6
	assert.True(t, containsLine(res.Rationale, "Strong recent progress"))
	assert.True(t, containsLine(res.Rationale, "Studied within the last 7 days"))

	weak := []StudySession{{Date: day0.AddDate(0, 0, -30), MasteryGained: 2}}
	res, err = s.Schedule(item, Good, day0, WithSessions(weak))
	require.NoError(t, err)
	assert.Equal(t, 4, res.IntervalDays) // 5 * 0.8
	assert.False(t, containsLine(res.Rationale, "Studied within"))
}

func TestSchedule_TrendUsesNewestFiveSessions(t *testing.T) {
	s := newTestScheduler(t, VariantAdaptive)
	item := &Item{MasteryLevel: 60}

	sessions := []StudySession{
		{Date: day0.AddDate(0, 0, -60), MasteryGained: -100}, // oldest, outside the window
	}
	for i := 1; i <= 5; i++ {
		sessions = append(sessions, StudySession{Date: day0.AddDate(0, 0, -20-i), MasteryGained: 20})
	}

	res, err := s.Schedule(item, Good, day0, WithSessions(sessions))
	require.NoError(t, err)
	assert.Equal(t, 6, res.IntervalDays) // 5 * 1.2
	assert.Equal(t, -100.0, sessions[0].MasteryGained, "input order must be preserved")
}

func TestSchedule_MasteryAdjustment(t *testing.T) {
	s := newTestScheduler(t, VariantAdaptive)
	tests := []struct {
		mastery int
		want    int
	}{
		{30, 18}, // 20 * 0.9
		{60, 20},
		{90, 22}, // 20 * 1.1
	}
	for _, tt := range tests {
		item := &Item{MasteryLevel: tt.mastery, Logs: []ReviewLog{logAt(0, Easy, 10)}}
		res, err := s.Schedule(item, Easy, day0.AddDate(0, 0, 10))
		require.NoError(t, err)
		if res.IntervalDays != tt.want {
			t.Errorf("mastery %d: IntervalDays = %d, want %d", tt.mastery, res.IntervalDays, tt.want)
		}
	}
}

func TestSchedule_PhaseVariant(t *testing.T) {
	s := newTestScheduler(t, VariantPhase)
	tests := []struct {
		phase Phase
		want  int
	}{
		{PhaseInitial, 4},
		{PhaseConsolidation, 5},
		{PhaseMastery, 6},
	}
	for _, tt := range tests {
		item := &Item{MasteryLevel: 60, Phase: tt.phase}
		res, err := s.Schedule(item, Good, day0)
		require.NoError(t, err)
		if res.IntervalDays != tt.want {
			t.Errorf("phase %s: IntervalDays = %d, want %d", tt.phase, res.IntervalDays, tt.want)
		}
	}
}

func TestSchedule_ExamCap(t *testing.T) {
	s := newTestScheduler(t, VariantAdaptive)
	item := &Item{MasteryLevel: 95}

	res, err := s.Schedule(item, Easy, day0, WithExam(day0.AddDate(0, 0, 8)))
	require.NoError(t, err)
	assert.Equal(t, 4, res.IntervalDays)
	assert.True(t, containsLine(res.Rationale, "Exam in 8 days"))

	res, err = s.Schedule(item, Easy, day0, WithExam(day0.AddDate(0, 0, -1)))
	require.NoError(t, err)
	assert.Equal(t, 10, res.IntervalDays, "past exams are ignored")
}

func TestSchedule_MaxIntervalCap(t *testing.T) {
	s := newTestScheduler(t, VariantAdaptive)
	item := &Item{MasteryLevel: 60, Logs: []ReviewLog{logAt(0, VeryEasy, 300)}}

	res, err := s.Schedule(item, VeryEasy, day0.AddDate(0, 0, 300))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxIntervalDays, res.IntervalDays)
	assert.True(t, containsLine(res.Rationale, "Capped at 365 days"))
}

func TestSchedule_FSRSVariant(t *testing.T) {
	s := newTestScheduler(t, VariantFSRS)
	item := &Item{MasteryLevel: 60}

	first, err := s.Schedule(item, Good, day0)
	require.NoError(t, err)
	require.NotNil(t, first.FSRS)
	assert.Equal(t, 5, first.IntervalDays)
	assert.Equal(t, day0, first.FSRS.LastReview)

	next := item.WithReview(first)
	second, err := s.Schedule(&next, Good, first.NextDate)
	require.NoError(t, err)
	assert.Greater(t, second.IntervalDays, first.IntervalDays)

	lapse, err := s.Schedule(&next, Hard, first.NextDate)
	require.NoError(t, err)
	assert.Equal(t, 1, lapse.IntervalDays)
	assert.Greater(t, lapse.FSRS.Difficulty, first.FSRS.Difficulty)
}

func TestNewScheduler_Validation(t *testing.T) {
	_, err := NewScheduler(Config{Variant: "sm2"})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewScheduler(Config{MaxIntervalDays: -1})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	s, err := NewScheduler(Config{})
	require.NoError(t, err)
	assert.Equal(t, VariantAdaptive, s.Variant())
}

// Property: every valid rating yields an interval of at least one day.
func TestProperty_IntervalAtLeastOneDay(t *testing.T) {
	histories := [][]ReviewLog{
		nil,
		{logAt(0, VeryEasy, 1)},
		{logAt(0, Good, 1), logAt(30, VeryEasy, 1)},
	}
	weak := []StudySession{{Date: day0.AddDate(0, 0, -40), MasteryGained: 0}}

	for _, v := range []Variant{VariantAdaptive, VariantPhase, VariantFSRS} {
		s := newTestScheduler(t, v)
		for _, h := range histories {
			for m := 0; m <= 100; m += 10 {
				for r := Hard; r <= VeryEasy; r++ {
					item := &Item{MasteryLevel: m, Phase: PhaseInitial, Logs: h}
					res, err := s.Schedule(item, r, day0.AddDate(0, 0, 60), WithSessions(weak))
					if err != nil {
						t.Fatalf("%s: unexpected error: %v", v, err)
					}
					if res.IntervalDays < 1 {
						t.Errorf("%s mastery=%d rating=%d: IntervalDays = %d", v, m, r, res.IntervalDays)
					}
				}
			}
		}
	}
}

// Property: the first interval never shrinks as mastery grows.
func TestProperty_InitialIntervalMonotonicInMastery(t *testing.T) {
	for _, v := range []Variant{VariantAdaptive, VariantPhase, VariantFSRS} {
		s := newTestScheduler(t, v)
		prev := 0
		for m := 0; m <= 100; m++ {
			res, err := s.Schedule(&Item{MasteryLevel: m, Phase: PhaseConsolidation}, Good, day0)
			require.NoError(t, err)
			if res.IntervalDays < prev {
				t.Errorf("%s: mastery %d gave %d days, below %d at mastery %d", v, m, res.IntervalDays, prev, m-1)
			}
			prev = res.IntervalDays
		}
	}
}

// Property: identical inputs give identical outputs.
func TestProperty_Deterministic(t *testing.T) {
	sessions := []StudySession{{Date: day0.AddDate(0, 0, -1), MasteryGained: 17}}
	item := &Item{
		MasteryLevel: 85,
		Phase:        PhaseMastery,
		Logs:         []ReviewLog{logAt(-20, Good, 6), logAt(-10, Medium, 8)},
	}
	for _, v := range []Variant{VariantAdaptive, VariantPhase, VariantFSRS} {
		s := newTestScheduler(t, v)
		a, err := s.Schedule(item, Easy, day0, WithSessions(sessions))
		require.NoError(t, err)
		b, err := s.Schedule(item, Easy, day0, WithSessions(sessions))
		require.NoError(t, err)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%s: results differ:\n%+v\n%+v", v, a, b)
		}
	}
}

// Property: in isolation, improving never shortens relative to declining.
func TestProperty_RatingDeltaMonotonic(t *testing.T) {
	for prev := Hard; prev <= VeryEasy; prev++ {
		for lo := Hard; lo <= VeryEasy; lo++ {
			for hi := lo + 1; hi <= VeryEasy; hi++ {
				low, _ := applyRatingDelta(10, prev, lo, nil)
				high, _ := applyRatingDelta(10, prev, hi, nil)
				if high < low {
					t.Errorf("prev=%d: rating %d gave %.2f < rating %d gave %.2f", prev, hi, high, lo, low)
				}
			}
		}
	}
}

// Property: a late previous review never lengthens the interval.
func TestProperty_LatenessPenalty(t *testing.T) {
	s := newTestScheduler(t, VariantAdaptive)
	onTime := &Item{MasteryLevel: 60, Logs: []ReviewLog{logAt(0, Good, 10), logAt(10, Good, 10)}}
	late := &Item{MasteryLevel: 60, Logs: []ReviewLog{logAt(0, Good, 10), logAt(14, Good, 10)}}

	a, err := s.Schedule(onTime, Good, day0.AddDate(0, 0, 20))
	require.NoError(t, err)
	b, err := s.Schedule(late, Good, day0.AddDate(0, 0, 24))
	require.NoError(t, err)

	assert.Equal(t, 13, a.IntervalDays)
	assert.Equal(t, 12, b.IntervalDays)
	assert.LessOrEqual(t, b.IntervalDays, a.IntervalDays)
	assert.True(t, containsLine(b.Rationale, "4 days late"))
	assert.False(t, containsLine(a.Rationale, "late"))
}

func TestLateness_WithinGraceIsOnTime(t *testing.T) {
	history := []ReviewLog{logAt(0, Good, 10), logAt(12, Good, 10)}
	got, why := applyLateness(10, history, nil)
	if got != 10 || len(why) != 0 {
		t.Errorf("applyLateness() = %.2f %q, want 10 and no rationale", got, why)
	}
}

// Property: raw intervals at or below zero clamp to exactly one day.
func TestProperty_ClampInterval(t *testing.T) {
	tests := []struct {
		raw  float64
		want int
	}{
		{-3, 1},
		{0, 1},
		{0.4, 1},
		{1.5, 2},
		{364.6, 365},
		{9000, 365},
	}
	for _, tt := range tests {
		if got := clampInterval(tt.raw, 365); got != tt.want {
			t.Errorf("clampInterval(%v) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestSchedule_ClampsAndExplainsMinimum(t *testing.T) {
	s := newTestScheduler(t, VariantAdaptive)
	item := &Item{MasteryLevel: 30, Logs: []ReviewLog{logAt(0, Good, 1)}}
	weak := []StudySession{{Date: day0.AddDate(0, 0, -30), MasteryGained: 1}}

	// 1 * 0.6 * 0.8 * 0.85 * 0.9 = 0.37
	res, err := s.Schedule(item, Medium, day0.AddDate(0, 0, 1), WithSessions(weak))
	require.NoError(t, err)
	assert.Equal(t, 1, res.IntervalDays)
	assert.True(t, res.NextDate.Equal(day0.AddDate(0, 0, 2)))
	assert.True(t, containsLine(res.Rationale, "minimum of 1 day"))
}

// Property: missing or zero ratings are refused without a date.
func TestProperty_RejectsInvalidRating(t *testing.T) {
	s := newTestScheduler(t, VariantAdaptive)
	items := []*Item{
		{MasteryLevel: 50},
		{MasteryLevel: 50, Logs: []ReviewLog{logAt(0, Good, 3)}},
	}
	for _, item := range items {
		for _, r := range []Rating{0, -1, 6} {
			res, err := s.Schedule(item, r, day0)
			if !errors.Is(err, ErrInvalidRating) {
				t.Errorf("rating %d: err = %v, want ErrInvalidRating", r, err)
			}
			if !res.NextDate.IsZero() || res.IntervalDays != 0 {
				t.Errorf("rating %d: expected no schedule, got %+v", r, res)
			}
		}
	}
}

func TestWithReview_AppendsWithoutAliasing(t *testing.T) {
	s := newTestScheduler(t, VariantAdaptive)
	logs := make([]ReviewLog, 1, 4)
	logs[0] = logAt(0, Good, 3)
	item := &Item{MasteryLevel: 60, Logs: logs, ReviewInterval: 3}

	res, err := s.Schedule(item, Easy, day0.AddDate(0, 0, 3))
	require.NoError(t, err)

	next := item.WithReview(res)
	require.Len(t, next.Logs, 2)
	assert.Len(t, item.Logs, 1)
	assert.Equal(t, res.IntervalDays, next.ReviewInterval)
	require.NotNil(t, next.NextReview)
	assert.True(t, next.NextReview.Equal(res.NextDate))

	last, ok := next.LastReview()
	require.True(t, ok)
	assert.Equal(t, Easy, last.Rating)

	// Appending to the original backing array must not leak into next.
	_ = append(item.Logs, logAt(99, Hard, 1))
	assert.Equal(t, Easy, next.Logs[1].Rating)
}
