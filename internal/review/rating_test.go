package review

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseRating_Scale4Normalization(t *testing.T) {
	tests := []struct {
		in   int
		want Rating
	}{
		{1, Hard},
		{2, Medium},
		{3, Easy},
		{4, VeryEasy},
	}
	for _, tt := range tests {
		got, err := ParseRating(Scale4, tt.in)
		if err != nil {
			t.Fatalf("ParseRating(Scale4, %d): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseRating(Scale4, %d) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseRating_Scale5PassesThrough(t *testing.T) {
	for n := 1; n <= 5; n++ {
		got, err := ParseRating(Scale5, n)
		if err != nil {
			t.Fatalf("ParseRating(Scale5, %d): %v", n, err)
		}
		if int(got) != n {
			t.Errorf("ParseRating(Scale5, %d) = %d", n, got)
		}
	}
}

func TestParseRating_Rejects(t *testing.T) {
	tests := []struct {
		scale Scale
		n     int
	}{
		{Scale4, 0},
		{Scale4, 5},
		{Scale5, 0},
		{Scale5, 6},
		{Scale(3), 2},
	}
	for _, tt := range tests {
		if _, err := ParseRating(tt.scale, tt.n); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("ParseRating(%d, %d) err = %v, want ErrInvalidRating", tt.scale, tt.n, err)
		}
	}
}

func TestParseRatingString(t *testing.T) {
	tests := []struct {
		scale   Scale
		in      string
		want    Rating
		wantErr bool
	}{
		{Scale5, "pass", Easy, false},
		{Scale5, "FAIL", Medium, false},
		{Scale4, " 3 ", Easy, false},
		{Scale5, "3", Good, false},
		{Scale5, "", 0, true},
		{Scale5, "great", 0, true},
		{Scale4, "0", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseRatingString(tt.scale, tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidRating) {
				t.Errorf("ParseRatingString(%q) err = %v, want ErrInvalidRating", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRatingString(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRatingString(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFromPassFail(t *testing.T) {
	if got := FromPassFail(true); got != 4 {
		t.Errorf("FromPassFail(true) = %d, want 4", got)
	}
	if got := FromPassFail(false); got != 2 {
		t.Errorf("FromPassFail(false) = %d, want 2", got)
	}
}

func TestParseScale(t *testing.T) {
	if s, err := ParseScale(""); err != nil || s != Scale5 {
		t.Errorf("ParseScale(\"\") = %v, %v; want Scale5", s, err)
	}
	if s, err := ParseScale("4"); err != nil || s != Scale4 {
		t.Errorf("ParseScale(\"4\") = %v, %v; want Scale4", s, err)
	}
	if _, err := ParseScale("10"); err == nil {
		t.Error("expected error for scale 10")
	}
}

func TestRatingString(t *testing.T) {
	if got := VeryEasy.String(); got != "Very easy" {
		t.Errorf("VeryEasy.String() = %q", got)
	}
	if got := Rating(9).String(); got != "Rating(9)" {
		t.Errorf("Rating(9).String() = %q", got)
	}
}

func TestRatingJSON_RejectsOutOfRange(t *testing.T) {
	var r Rating
	if err := json.Unmarshal([]byte("7"), &r); !errors.Is(err, ErrInvalidRating) {
		t.Errorf("Unmarshal(7) err = %v, want ErrInvalidRating", err)
	}
	if err := json.Unmarshal([]byte(`"Good"`), &r); !errors.Is(err, ErrInvalidRating) {
		t.Errorf("Unmarshal(\"Good\") err = %v, want ErrInvalidRating", err)
	}
	if _, err := json.Marshal(Rating(0)); err == nil {
		t.Error("expected marshal error for zero rating")
	}
}
