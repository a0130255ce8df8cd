package components

import (
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyloop/internal/ui/theme"
)

// DateInput wraps bubbles/textinput for YYYY-MM-DD entry.
type DateInput struct {
	Model textinput.Model
	err   string
}

// NewDateInput creates a focused date input.
func NewDateInput() DateInput {
	ti := textinput.New()
	ti.Placeholder = "YYYY-MM-DD"
	ti.CharLimit = len(time.DateOnly)
	ti.Focus()
	return DateInput{Model: ti}
}

// Init returns the initial command.
func (d DateInput) Init() tea.Cmd {
	return d.Model.Focus()
}

// Update handles messages. Only digits and dashes are accepted.
func (d DateInput) Update(msg tea.Msg) (DateInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		key := kmsg.String()
		if len(key) == 1 && key[0] != '-' && (key[0] < '0' || key[0] > '9') {
			return d, nil
		}
	}
	var cmd tea.Cmd
	d.Model, cmd = d.Model.Update(msg)
	return d, cmd
}

// View renders the input and the last validation error.
func (d DateInput) View() string {
	view := d.Model.View()
	if d.err != "" {
		view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗ "+d.err)
	}
	return view
}

// Value returns the raw input.
func (d DateInput) Value() string {
	return d.Model.Value()
}

// Date parses the input as a local calendar date.
func (d DateInput) Date() (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, d.Model.Value(), time.Local)
}

// SetError shows msg next to the input. An empty msg clears it.
func (d *DateInput) SetError(msg string) {
	d.err = msg
}
