package study

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/studyloop/internal/calendar"
	"github.com/abhisek/studyloop/internal/review"
	"github.com/abhisek/studyloop/internal/store"
)

// sessionWindow is how many recent study sessions feed the trend adjustment.
const sessionWindow = 5

// Service coordinates items, the scheduler and the calendar. The scheduler
// is pure; every read-compute-write cycle here is guarded by the item's
// version and retried on conflict.
type Service struct {
	items    store.ItemRepo
	sessions store.SessionRepo
	sched    *review.Scheduler
	cal      calendar.Provider
	retry    RetryConfig
	log      logrus.FieldLogger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCalendar sets the calendar used for review reminders.
func WithCalendar(p calendar.Provider) Option {
	return func(s *Service) { s.cal = p }
}

// WithRetry sets the conflict retry policy.
func WithRetry(cfg RetryConfig) Option {
	return func(s *Service) { s.retry = cfg }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service. The calendar defaults to Disabled.
func NewService(items store.ItemRepo, sessions store.SessionRepo, sched *review.Scheduler, opts ...Option) *Service {
	s := &Service{
		items:    items,
		sessions: sessions,
		sched:    sched,
		cal:      calendar.Disabled{},
		retry:    DefaultRetryConfig(),
		log:      logrus.StandardLogger(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time { return s.now() }

// Decision is the learner's final answer for one review.
type Decision struct {
	Rating        review.Rating
	CustomDate    *time.Time
	AddToCalendar bool
}

// Outcome is the persisted result of a review.
type Outcome struct {
	Item          *review.Item
	Result        review.Result
	Attempts      int
	CalendarEvent *calendar.EventRef
	// CalendarErr is set when the reminder could not be created. The review
	// itself is saved regardless.
	CalendarErr error
}

// Review schedules item id from the decision and saves it. Invalid input is
// reported as-is; storage failures are returned as *PersistenceError
// carrying the computed result.
func (s *Service) Review(ctx context.Context, id string, d Decision) (*Outcome, error) {
	if !d.Rating.IsValid() {
		return nil, fmt.Errorf("%w: %d", review.ErrInvalidRating, int(d.Rating))
	}
	now := s.now()
	log := s.log.WithFields(logrus.Fields{"item_id": id, "rating": int(d.Rating)})

	var (
		res  review.Result
		item review.Item
	)
	attempts, err := s.retry.retry(ctx, func(attempt int) error {
		cur, err := s.items.Get(ctx, id)
		if err != nil {
			return err
		}
		draft, err := s.draft(ctx, cur)
		if err != nil {
			return err
		}
		if err := draft.SetRating(d.Rating, now); err != nil {
			return err
		}
		if d.CustomDate != nil {
			if err := draft.SetCustomDate(*d.CustomDate, now); err != nil {
				return err
			}
		}
		res, err = draft.Confirm()
		if err != nil {
			return err
		}

		version, err := s.items.UpdateSchedule(ctx, id, cur.Version, res)
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				log.WithField("attempt", attempt+1).Debug("review write conflict, retrying")
			}
			return err
		}
		item = cur.WithReview(res)
		item.Version = version
		return nil
	})
	if err != nil {
		if isInputError(err) {
			return nil, err
		}
		log.WithError(err).WithField("attempts", attempts).Error("review not saved")
		return nil, &PersistenceError{ItemID: id, Attempts: attempts, Result: res, Err: err}
	}

	log.WithFields(logrus.Fields{
		"interval_days": res.IntervalDays,
		"next_review":   res.NextDate.Format(time.DateOnly),
		"attempts":      attempts,
	}).Info("review scheduled")

	out := &Outcome{Item: &item, Result: res, Attempts: attempts}
	if d.AddToCalendar {
		s.linkCalendar(ctx, out, log)
	}
	return out, nil
}

// linkCalendar creates the reminder and records it on the new log entry.
// Failures are reported on the outcome and never undo the review.
func (s *Service) linkCalendar(ctx context.Context, out *Outcome, log logrus.FieldLogger) {
	it := out.Item
	ref, err := s.cal.CreateEvent(ctx, calendar.Event{
		ItemID:      it.ID,
		Title:       "Review: " + it.Title,
		Description: strings.Join(out.Result.Rationale, "\n"),
		Date:        out.Result.NextDate,
	})
	if err == nil {
		err = s.items.SetCalendarEvent(ctx, it.ID, len(it.Logs)-1, ref.ID)
	}
	if err != nil {
		if !errors.Is(err, calendar.ErrLinkFailed) {
			err = &calendar.LinkError{Provider: s.cal.Name(), ItemID: it.ID, Err: err}
		}
		log.WithError(err).Warn("calendar reminder not created")
		out.CalendarErr = err
		return
	}
	last := &it.Logs[len(it.Logs)-1]
	last.AddedToCalendar = true
	last.CalendarEventID = ref.ID
	out.Result.Entry = *last
	out.CalendarEvent = ref
}

// Preview computes what a rating would schedule without saving anything.
func (s *Service) Preview(ctx context.Context, id string, rating review.Rating) (review.Result, error) {
	it, err := s.items.Get(ctx, id)
	if err != nil {
		return review.Result{}, err
	}
	draft, err := s.draft(ctx, it)
	if err != nil {
		return review.Result{}, err
	}
	if err := draft.SetRating(rating, s.now()); err != nil {
		return review.Result{}, err
	}
	return draft.Confirm()
}

// NewDraft loads item id and starts an interactive draft for it.
func (s *Service) NewDraft(ctx context.Context, id string) (*review.Draft, *review.Item, error) {
	it, err := s.items.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	draft, err := s.draft(ctx, it)
	if err != nil {
		return nil, nil, err
	}
	return draft, it, nil
}

func (s *Service) draft(ctx context.Context, it *review.Item) (*review.Draft, error) {
	sessions, err := s.sessions.Recent(ctx, it.ID, sessionWindow)
	if err != nil {
		return nil, err
	}
	opts := []review.Option{review.WithSessions(sessions)}
	if it.ExamDate != nil {
		opts = append(opts, review.WithExam(*it.ExamDate))
	}
	return review.NewDraft(s.sched, it, opts...), nil
}

// NewItem describes an item to create.
type NewItem struct {
	Kind    review.Kind
	Subject string
	Title   string
	Mastery int
	Phase   review.Phase
}

// CreateItem validates and stores a new item.
func (s *Service) CreateItem(ctx context.Context, in NewItem) (*review.Item, error) {
	if strings.TrimSpace(in.Subject) == "" || strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: subject and title are required", ErrInvalidInput)
	}
	if in.Mastery < 0 || in.Mastery > 100 {
		return nil, fmt.Errorf("%w: mastery %d outside 0-100", ErrInvalidInput, in.Mastery)
	}
	if in.Kind == "" {
		in.Kind = review.KindTopic
	}
	if in.Phase == "" {
		in.Phase = review.PhaseInitial
	}
	it := &review.Item{
		ID:             uuid.NewString(),
		Kind:           in.Kind,
		Subject:        strings.TrimSpace(in.Subject),
		Title:          strings.TrimSpace(in.Title),
		MasteryLevel:   in.Mastery,
		Phase:          in.Phase,
		ReviewInterval: review.MinIntervalDays,
		CreatedAt:      s.now(),
	}
	if err := s.items.Create(ctx, it); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"item_id": it.ID, "subject": it.Subject}).Info("item created")
	return it, nil
}

// SessionInput is one logged block of study.
type SessionInput struct {
	Date            time.Time // zero means now
	MasteryGained   float64
	DurationMinutes int
}

// LogSession records a study session and applies its mastery gain, clamped
// to 0-100. The session and the new mastery are saved together under the
// item's version.
func (s *Service) LogSession(ctx context.Context, id string, in SessionInput) (*review.Item, error) {
	if in.DurationMinutes < 0 {
		return nil, fmt.Errorf("%w: negative duration", ErrInvalidInput)
	}
	if in.Date.IsZero() {
		in.Date = s.now()
	}
	session := review.StudySession{
		Date:            in.Date,
		MasteryGained:   in.MasteryGained,
		DurationMinutes: in.DurationMinutes,
	}
	log := s.log.WithFields(logrus.Fields{"item_id": id, "gained": in.MasteryGained})

	var item *review.Item
	attempts, err := s.retry.retry(ctx, func(attempt int) error {
		cur, err := s.items.Get(ctx, id)
		if err != nil {
			return err
		}
		mastery := ClampMastery(cur.MasteryLevel + int(math.Round(in.MasteryGained)))
		version, err := s.items.RecordSession(ctx, id, cur.Version, session, mastery)
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				log.WithField("attempt", attempt+1).Debug("session write conflict, retrying")
			}
			return err
		}
		cur.MasteryLevel = mastery
		cur.Version = version
		item = cur
		return nil
	})
	if err != nil {
		if isInputError(err) {
			return nil, err
		}
		log.WithError(err).WithField("attempts", attempts).Error("study session not saved")
		return nil, fmt.Errorf("%w: log session for %s after %d attempt(s): %w", ErrPersistence, id, attempts, err)
	}
	log.WithField("mastery", item.MasteryLevel).Info("study session logged")
	return item, nil
}

// ClampMastery bounds a mastery level to 0-100.
func ClampMastery(m int) int {
	return min(100, max(0, m))
}

// SetPhase moves an item to a learning phase.
func (s *Service) SetPhase(ctx context.Context, id string, phase review.Phase) error {
	if _, err := review.ParsePhase(string(phase)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.items.SetPhase(ctx, id, phase)
}

// SetExamDate sets or clears an item's exam date.
func (s *Service) SetExamDate(ctx context.Context, id string, date *time.Time) error {
	return s.items.SetExamDate(ctx, id, date)
}

// Get returns one item.
func (s *Service) Get(ctx context.Context, id string) (*review.Item, error) {
	return s.items.Get(ctx, id)
}

// List returns items matching opts.
func (s *Service) List(ctx context.Context, opts store.ListOpts) ([]*review.Item, error) {
	return s.items.List(ctx, opts)
}

// Delete removes an item and its history.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.items.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("item_id", id).Info("item deleted")
	return nil
}

// Due returns items due now: overdue first, then due, then never
// scheduled. Ties go to the most overdue, then title.
func (s *Service) Due(ctx context.Context) ([]*review.Item, error) {
	now := s.now()
	items, err := s.items.List(ctx, store.ListOpts{DueBefore: now})
	if err != nil {
		return nil, err
	}
	rank := map[review.Status]int{review.StatusOverdue: 0, review.StatusDue: 1, review.StatusNew: 2}
	slices.SortStableFunc(items, func(a, b *review.Item) int {
		if d := rank[a.Status(now)] - rank[b.Status(now)]; d != 0 {
			return d
		}
		if oa, ob := a.OverdueDays(now), b.OverdueDays(now); oa != ob {
			if oa > ob {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Title, b.Title)
	})
	return items, nil
}

// StreakInfo summarizes the learner's review streak.
type StreakInfo struct {
	Current       int `json:"current"`
	NextMilestone int `json:"next_milestone"`
}

// Streak counts consecutive review days across all items.
func (s *Service) Streak(ctx context.Context) (StreakInfo, error) {
	items, err := s.items.List(ctx, store.ListOpts{})
	if err != nil {
		return StreakInfo{}, err
	}
	var logs []review.ReviewLog
	for _, it := range items {
		logs = append(logs, it.Logs...)
	}
	n := review.Streak(logs, s.now())
	return StreakInfo{Current: n, NextMilestone: review.NextStreakMilestone(n)}, nil
}

func isInputError(err error) bool {
	for _, target := range []error{
		review.ErrInvalidRating,
		review.ErrMissingDate,
		review.ErrInvalidDate,
		store.ErrNotFound,
		context.Canceled,
		context.DeadlineExceeded,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
