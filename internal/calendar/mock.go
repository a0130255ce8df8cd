package calendar

import (
	"context"
	"fmt"
	"sync"
)

// Mock is a deterministic Provider for testing. It records every event and
// fails with Err when set.
type Mock struct {
	mu     sync.Mutex
	Err    error
	Events []Event
}

// NewMock creates a Mock that accepts every event.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) CreateEvent(_ context.Context, ev Event) (*EventRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, &LinkError{Provider: m.Name(), ItemID: ev.ItemID, Err: m.Err}
	}
	m.Events = append(m.Events, ev)
	return &EventRef{ID: fmt.Sprintf("mock-%d", len(m.Events))}, nil
}

func (m *Mock) Name() string { return "mock" }

// CallCount returns the number of events created.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Events)
}

// Disabled rejects every event. It is used when no calendar is configured.
type Disabled struct{}

func (Disabled) CreateEvent(_ context.Context, ev Event) (*EventRef, error) {
	return nil, &LinkError{Provider: "disabled", ItemID: ev.ItemID}
}

func (Disabled) Name() string { return "disabled" }
