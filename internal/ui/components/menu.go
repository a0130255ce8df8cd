package components

import (
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyloop/internal/ui/theme"
)

// MenuItem is one selectable row.
type MenuItem struct {
	Label string
	Hint  string
	Style lipgloss.Style
}

// Menu is a vertical menu. Rows can be picked with the arrow keys or by
// pressing their 1-based number.
type Menu struct {
	Items    []MenuItem
	Selected int
	Chosen   int // -1 until a row is picked
}

// NewMenu creates a menu with the first row highlighted.
func NewMenu(items []MenuItem) Menu {
	return Menu{Items: items, Chosen: -1}
}

// Update handles keyboard navigation. The second result is true when the
// user picked a row with Enter or a number key.
func (m Menu) Update(msg tea.Msg) (Menu, bool) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, false
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Items)-1 {
			m.Selected++
		}
	case "enter":
		if m.Selected >= 0 && m.Selected < len(m.Items) {
			m.Chosen = m.Selected
			return m, true
		}
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(m.Items) {
			m.Selected = n - 1
			m.Chosen = m.Selected
			return m, true
		}
	}
	return m, false
}

// View renders the menu.
func (m Menu) View() string {
	var b strings.Builder
	for i, item := range m.Items {
		label := strconv.Itoa(i+1) + ". " + item.Label
		if i == m.Selected {
			b.WriteString(theme.Selected.Render("  ▸ " + label))
		} else {
			b.WriteString("    " + item.Style.Render(label))
		}
		if item.Hint != "" {
			b.WriteString("  " + theme.Hint.Render(item.Hint))
		}
		b.WriteString("\n")
	}
	return b.String()
}
