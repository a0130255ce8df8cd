package calendar

import (
	"context"
	"time"
)

// Event is a review reminder to place on an external calendar.
type Event struct {
	ItemID      string
	Title       string
	Description string
	Date        time.Time // all-day event on this calendar date
}

// EventRef identifies an event created on the external calendar.
type EventRef struct {
	ID  string
	URL string
}

// Provider creates calendar events for scheduled reviews.
type Provider interface {
	// CreateEvent places ev on the calendar. Failures wrap ErrLinkFailed.
	CreateEvent(ctx context.Context, ev Event) (*EventRef, error)

	// Name identifies the backend for logs.
	Name() string
}
