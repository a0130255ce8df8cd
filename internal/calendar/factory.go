package calendar

import (
	"context"
	"fmt"
)

// Config selects and configures the calendar backend.
type Config struct {
	// Provider is one of "google", "mock" or "disabled" (default).
	Provider   string
	CalendarID string
}

// NewProvider creates a Provider from configuration.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "", "disabled":
		return Disabled{}, nil
	case "mock":
		return NewMock(), nil
	case "google":
		g, err := NewGoogle(ctx, cfg.CalendarID)
		if err != nil {
			return nil, fmt.Errorf("initializing google calendar: %w", err)
		}
		return g, nil
	}
	return nil, fmt.Errorf("unknown calendar provider: %q", cfg.Provider)
}
