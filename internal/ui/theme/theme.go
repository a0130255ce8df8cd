package theme

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyloop/internal/review"
)

// Color palette, calm for long study sessions
var (
	Primary   = lipgloss.Color("#6366F1") // Indigo
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Warning = lipgloss.NewStyle().
		Foreground(Accent)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)
)

var statusColors = map[review.Status]lipgloss.Style{
	review.StatusNew:     lipgloss.NewStyle().Foreground(Secondary),
	review.StatusNotDue:  lipgloss.NewStyle().Foreground(TextDim),
	review.StatusDue:     lipgloss.NewStyle().Foreground(Accent).Bold(true),
	review.StatusOverdue: lipgloss.NewStyle().Foreground(Error).Bold(true),
}

// StatusStyle returns the badge style for a review status.
func StatusStyle(s review.Status) lipgloss.Style {
	if st, ok := statusColors[s]; ok {
		return st
	}
	return Body
}

// RatingStyle colours a rating from red (Hard) to green (Very easy).
func RatingStyle(r review.Rating) lipgloss.Style {
	switch {
	case r <= review.Hard:
		return lipgloss.NewStyle().Foreground(Error)
	case r == review.Medium:
		return lipgloss.NewStyle().Foreground(Accent)
	case r == review.Good:
		return lipgloss.NewStyle().Foreground(Text)
	default:
		return lipgloss.NewStyle().Foreground(Success)
	}
}
