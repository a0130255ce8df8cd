package review

import "errors"

var (
	// ErrInvalidRating is returned when a quality rating is missing, zero or
	// outside the accepted scale. No schedule is produced.
	ErrInvalidRating = errors.New("review: invalid rating")

	// ErrMissingDate is returned when a draft is confirmed before any review
	// date has been computed or chosen.
	ErrMissingDate = errors.New("review: no review date selected")

	// ErrInvalidDate is returned for a custom review date that is not after
	// the review day.
	ErrInvalidDate = errors.New("review: invalid custom date")

	// ErrInvalidConfig is returned by NewScheduler for unusable settings.
	ErrInvalidConfig = errors.New("review: invalid scheduler config")
)
