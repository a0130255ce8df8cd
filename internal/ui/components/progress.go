package components

import (
	"fmt"
	"strings"

	"github.com/abhisek/studyloop/internal/ui/theme"
)

// MasteryBar renders a mastery level (0-100) as a horizontal bar.
func MasteryBar(mastery, width int) string {
	if width < 4 {
		width = 4
	}
	mastery = min(100, max(0, mastery))
	filled := width * mastery / 100
	return theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", width-filled)) +
		theme.Hint.Render(fmt.Sprintf("  %d%%", mastery))
}
