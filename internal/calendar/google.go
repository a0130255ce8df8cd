package calendar

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Google creates all-day events through the Google Calendar API.
type Google struct {
	svc        *gcal.Service
	calendarID string
}

// NewGoogle connects to Google Calendar. With no options, credentials are
// read from the environment.
func NewGoogle(ctx context.Context, calendarID string, opts ...option.ClientOption) (*Google, error) {
	if calendarID == "" {
		calendarID = "primary"
	}
	if len(opts) == 0 {
		opts = ClientOptionsFromEnv()
	}
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &Google{svc: svc, calendarID: calendarID}, nil
}

func (g *Google) CreateEvent(ctx context.Context, ev Event) (*EventRef, error) {
	day := ev.Date.Format(time.DateOnly)
	next := ev.Date.AddDate(0, 0, 1).Format(time.DateOnly)
	created, err := g.svc.Events.Insert(g.calendarID, &gcal.Event{
		Summary:     ev.Title,
		Description: ev.Description,
		Start:       &gcal.EventDateTime{Date: day},
		End:         &gcal.EventDateTime{Date: next},
		ExtendedProperties: &gcal.EventExtendedProperties{
			Private: map[string]string{"studyloop_item_id": ev.ItemID},
		},
	}).Context(ctx).Do()
	if err != nil {
		return nil, &LinkError{Provider: g.Name(), ItemID: ev.ItemID, Err: err}
	}
	return &EventRef{ID: created.Id, URL: created.HtmlLink}, nil
}

func (g *Google) Name() string { return "google" }

// ClientOptionsFromEnv reads service-account credentials from
// GOOGLE_APPLICATION_CREDENTIALS_JSON (inline JSON) or
// GOOGLE_APPLICATION_CREDENTIALS (inline JSON or a file path).
func ClientOptionsFromEnv() []option.ClientOption {
	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}
