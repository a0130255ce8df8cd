package review

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Rating is a recall-quality rating on the canonical 1–5 scale.
type Rating int

const (
	Hard     Rating = iota + 1 // Could barely recall.
	Medium                     // Recalled with effort.
	Good                       // Recalled.
	Easy                       // Recalled easily.
	VeryEasy                   // Instant recall.
)

// Pass/Fail toggles map to fixed canonical ratings.
const (
	PassRating = Easy
	FailRating = Medium
)

var ratingNames = [...]string{
	Hard:     "Hard",
	Medium:   "Medium",
	Good:     "Good",
	Easy:     "Easy",
	VeryEasy: "Very easy",
}

// IsValid reports whether r is on the canonical scale.
func (r Rating) IsValid() bool {
	return r >= Hard && r <= VeryEasy
}

func (r Rating) String() string {
	if r.IsValid() {
		return ratingNames[r]
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}

// MarshalJSON encodes the rating as its canonical number.
func (r Rating) MarshalJSON() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRating, int(r))
	}
	return json.Marshal(int(r))
}

// UnmarshalJSON accepts a canonical number.
func (r *Rating) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRating, data)
	}
	if !Rating(n).IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidRating, n)
	}
	*r = Rating(n)
	return nil
}

// Scale identifies which rating scale an input was collected on.
type Scale int

const (
	Scale5 Scale = 5 // Hard … Very easy, canonical.
	Scale4 Scale = 4 // Hard / Medium / Easy / Perfect.
)

// ParseScale accepts "4" or "5".
func ParseScale(s string) (Scale, error) {
	switch strings.TrimSpace(s) {
	case "4":
		return Scale4, nil
	case "5", "":
		return Scale5, nil
	}
	return 0, fmt.Errorf("unknown rating scale %q", s)
}

// ParseRating converts a raw rating on the given scale to the canonical
// scale. Zero (no rating selected) and out-of-range values are rejected.
//
// 1–4 inputs are stretched linearly onto 1–5: 1→1, 2→2, 3→4, 4→5.
func ParseRating(scale Scale, n int) (Rating, error) {
	switch scale {
	case Scale5:
		if !Rating(n).IsValid() {
			return 0, fmt.Errorf("%w: %d on 1-5 scale", ErrInvalidRating, n)
		}
		return Rating(n), nil
	case Scale4:
		if n < 1 || n > 4 {
			return 0, fmt.Errorf("%w: %d on 1-4 scale", ErrInvalidRating, n)
		}
		return Rating(math.Round(1 + float64(n-1)*4/3)), nil
	}
	return 0, fmt.Errorf("%w: unknown scale %d", ErrInvalidRating, int(scale))
}

// ParseRatingString parses CLI/form input: a number on the given scale or
// "pass"/"fail".
func ParseRatingString(scale Scale, s string) (Rating, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return 0, fmt.Errorf("%w: no rating given", ErrInvalidRating)
	case "pass":
		return PassRating, nil
	case "fail":
		return FailRating, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRating, s)
	}
	return ParseRating(scale, n)
}

// FromPassFail maps the simplified toggle onto the canonical scale.
func FromPassFail(pass bool) Rating {
	if pass {
		return PassRating
	}
	return FailRating
}
