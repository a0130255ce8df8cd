package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyloop/internal/ui/theme"
)

// KeyHint represents a key binding hint shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// RenderHeader renders the title line with the review streak on the right.
func RenderHeader(title string, streak, width int) string {
	left := theme.Title.Render("StudyLoop") + "  " + theme.Body.Render(title)
	right := theme.Warning.Render(fmt.Sprintf("★ %d day streak", streak))

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// RenderFooter renders the key hints.
func RenderFooter(hints []KeyHint) string {
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		part := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(h.Key) +
			" " +
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(h.Description)
		parts = append(parts, part)
	}
	return strings.Join(parts, "   ")
}
