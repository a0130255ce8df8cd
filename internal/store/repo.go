package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/abhisek/studyloop/internal/review"
)

var (
	// ErrNotFound is returned when the requested item does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is returned when a versioned write lost a race with
	// another writer. Re-read and retry.
	ErrConflict = errors.New("store: version conflict")
)

// ListOpts filters item listings.
type ListOpts struct {
	Subject   string      // exact subject match ("" = all)
	Kind      review.Kind // "" = all
	DueBefore time.Time   // next_review <= DueBefore, or never scheduled (zero = no filter)
	Limit     int         // max results (0 = unlimited)
}

// ItemRepo persists reviewable items and their append-only review logs.
type ItemRepo interface {
	// Create inserts a new item at version 1.
	Create(ctx context.Context, item *review.Item) error

	// Get returns the item with its review logs in append order.
	Get(ctx context.Context, id string) (*review.Item, error)

	// List returns items ordered by subject then title.
	List(ctx context.Context, opts ListOpts) ([]*review.Item, error)

	// UpdateSchedule applies a scheduling result and appends its log entry,
	// provided the stored version still equals version. Returns the new
	// version, or ErrConflict when another write got there first.
	UpdateSchedule(ctx context.Context, id string, version int64, res review.Result) (int64, error)

	// RecordSession appends a study session and sets the mastery level in
	// one transaction, provided the stored version still equals version.
	// Returns the new version, or ErrConflict.
	RecordSession(ctx context.Context, id string, version int64, s review.StudySession, mastery int) (int64, error)

	// SetMastery overwrites the mastery level.
	SetMastery(ctx context.Context, id string, mastery int) error

	// SetPhase overwrites the learning phase.
	SetPhase(ctx context.Context, id string, phase review.Phase) error

	// SetExamDate sets or clears (nil) the item's exam date.
	SetExamDate(ctx context.Context, id string, date *time.Time) error

	// SetCalendarEvent links an external calendar event to the review log at
	// index (0 = oldest). Only calendar linkage of a log may change.
	SetCalendarEvent(ctx context.Context, id string, index int, eventID string) error

	// Delete removes the item with its logs and sessions.
	Delete(ctx context.Context, id string) error
}

// SessionRepo persists study sessions used by the trend adjustment.
type SessionRepo interface {
	// Append records a study session for an item.
	Append(ctx context.Context, itemID string, s review.StudySession) error

	// Recent returns up to n sessions, newest first. n <= 0 returns all.
	Recent(ctx context.Context, itemID string, n int) ([]review.StudySession, error)
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// querier is satisfied by every ent dialect builder.
type querier interface {
	Query() (string, []any)
}

func execQ(ctx context.Context, db execQuerier, q querier) (sql.Result, error) {
	query, args := q.Query()
	return db.ExecContext(ctx, query, args...)
}

func queryQ(ctx context.Context, db execQuerier, q querier) (*sql.Rows, error) {
	query, args := q.Query()
	return db.QueryContext(ctx, query, args...)
}

// expectOne maps a zero-row write to ErrNotFound.
func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
