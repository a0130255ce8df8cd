package calendar

import (
	"errors"
	"fmt"
)

// ErrLinkFailed reports that a review could not be placed on the calendar.
// The review itself is still scheduled.
var ErrLinkFailed = errors.New("calendar: link failed")

// LinkError carries the provider and item of a failed link.
type LinkError struct {
	Provider string
	ItemID   string
	Err      error
}

func (e *LinkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("calendar %s: link item %s: %v", e.Provider, e.ItemID, e.Err)
	}
	return fmt.Sprintf("calendar %s: link item %s failed", e.Provider, e.ItemID)
}

func (e *LinkError) Unwrap() error { return e.Err }

// Is makes every LinkError match ErrLinkFailed.
func (e *LinkError) Is(target error) bool { return target == ErrLinkFailed }
