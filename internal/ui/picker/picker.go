// Package picker is the interactive review prompt: choose a rating, see the
// proposed next review update live, optionally override the date or add a
// calendar reminder, then confirm.
package picker

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyloop/internal/review"
	"github.com/abhisek/studyloop/internal/study"
	"github.com/abhisek/studyloop/internal/ui/components"
	"github.com/abhisek/studyloop/internal/ui/layout"
	"github.com/abhisek/studyloop/internal/ui/theme"
)

type mode int

const (
	modeRating mode = iota
	modeDate
)

var scale4Labels = []string{"Hard", "Medium", "Easy", "Perfect"}

// Options configures a picker.
type Options struct {
	Scale    review.Scale
	Now      time.Time
	Streak   int
	Calendar bool // a calendar provider is configured
}

// Model is the bubbletea model for one review.
type Model struct {
	item  *review.Item
	draft *review.Draft
	opts  Options

	menu       components.Menu
	date       components.DateInput
	mode       mode
	customDate *time.Time
	calendar   bool
	err        string

	done      bool
	cancelled bool
	width     int
}

var _ tea.Model = Model{}

// New creates a picker over a draft for item.
func New(item *review.Item, draft *review.Draft, opts Options) Model {
	if opts.Scale == 0 {
		opts.Scale = review.Scale5
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	return Model{
		item:  item,
		draft: draft,
		opts:  opts,
		menu:  components.NewMenu(ratingItems(opts.Scale)),
		date:  components.NewDateInput(),
	}
}

func ratingItems(scale review.Scale) []components.MenuItem {
	n := int(scale)
	items := make([]components.MenuItem, 0, n)
	for i := 1; i <= n; i++ {
		r, _ := review.ParseRating(scale, i)
		label := r.String()
		if scale == review.Scale4 {
			label = scale4Labels[i-1]
		}
		items = append(items, components.MenuItem{Label: label, Style: theme.RatingStyle(r)})
	}
	return items
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancelled = true
			return m, tea.Quit
		}
		if m.mode == modeDate {
			return m.updateDate(msg)
		}
		return m.updateRating(msg)
	}
	return m, nil
}

func (m Model) updateRating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.cancelled = true
		return m, tea.Quit
	case "p":
		return m.choose(review.PassRating)
	case "f":
		return m.choose(review.FailRating)
	case "d":
		m.mode = modeDate
		m.date.SetError("")
		return m, m.date.Init()
	case "x":
		m.customDate = nil
		m.err = ""
		if err := m.draft.ClearCustomDate(); err != nil {
			m.err = err.Error()
		}
		return m, nil
	case "c":
		if m.opts.Calendar {
			m.calendar = !m.calendar
		}
		return m, nil
	}

	prev := m.menu.Selected
	var chosen bool
	m.menu, chosen = m.menu.Update(msg)
	r, err := review.ParseRating(m.opts.Scale, m.menu.Selected+1)
	if err != nil {
		m.err = err.Error()
		return m, nil
	}
	if chosen {
		return m.choose(r)
	}
	if m.menu.Selected != prev {
		m.setRating(r)
	}
	return m, nil
}

func (m Model) updateDate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeRating
		return m, nil
	case "enter":
		date, err := m.date.Date()
		if err != nil {
			m.date.SetError("use YYYY-MM-DD")
			return m, nil
		}
		if err := m.draft.SetCustomDate(date, m.opts.Now); err != nil {
			m.date.SetError("pick a day after today")
			return m, nil
		}
		m.customDate = &date
		m.date.SetError("")
		m.mode = modeRating
		return m, nil
	}
	var cmd tea.Cmd
	m.date, cmd = m.date.Update(msg)
	return m, cmd
}

func (m *Model) setRating(r review.Rating) {
	m.err = ""
	if err := m.draft.SetRating(r, m.opts.Now); err != nil {
		m.err = err.Error()
	}
}

func (m Model) choose(r review.Rating) (tea.Model, tea.Cmd) {
	m.setRating(r)
	if m.err != "" {
		return m, nil
	}
	if _, err := m.draft.Confirm(); err != nil {
		m.err = err.Error()
		return m, nil
	}
	m.done = true
	return m, tea.Quit
}

// Decision returns what the learner confirmed. ok is false if the prompt
// was cancelled.
func (m Model) Decision() (study.Decision, bool) {
	if !m.done || m.cancelled {
		return study.Decision{}, false
	}
	return study.Decision{
		Rating:        m.draft.Rating(),
		CustomDate:    m.customDate,
		AddToCalendar: m.calendar,
	}, true
}

func (m Model) View() tea.View {
	return tea.NewView(m.render())
}

func (m Model) render() string {
	var b strings.Builder
	b.WriteString(layout.RenderHeader(m.item.Title, m.opts.Streak, max(m.width, 60)))
	b.WriteString("\n\n")

	status := m.item.Status(m.opts.Now)
	b.WriteString(theme.Subtitle.Render(m.item.Subject) + "  " +
		theme.StatusStyle(status).Render(string(status)) + "\n")
	b.WriteString("Mastery  " + components.MasteryBar(m.item.MasteryLevel, 30) + "\n")
	if last, ok := m.item.LastReview(); ok {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("Last review %s, rated %s, interval %d days",
			last.Date.Local().Format(time.DateOnly), last.Rating, last.Interval)) + "\n")
	}
	b.WriteString("\nHow well did you recall it?\n")
	b.WriteString(m.menu.View())

	b.WriteString("\n")
	if res, ok := m.draft.Proposal(); ok {
		b.WriteString(theme.Title.Render(fmt.Sprintf("Next review: %s (%d days)",
			res.NextDate.Local().Format("Mon Jan 2, 2006"), res.IntervalDays)) + "\n")
		for _, why := range res.Rationale {
			b.WriteString(theme.Hint.Render("  • "+why) + "\n")
		}
	} else {
		b.WriteString(theme.Hint.Render("Pick a rating to see the next review date.") + "\n")
	}

	if m.opts.Calendar {
		mark := "[ ]"
		if m.calendar {
			mark = "[x]"
		}
		b.WriteString("\n" + theme.Body.Render(mark+" Add reminder to calendar") + "\n")
	}
	if m.mode == modeDate {
		b.WriteString("\nCustom date: " + m.date.View() + "\n")
	}
	if m.err != "" {
		b.WriteString("\n" + theme.ErrorText.Render(m.err) + "\n")
	}

	b.WriteString("\n" + layout.RenderFooter(m.keyHints()))
	return b.String()
}

func (m Model) keyHints() []layout.KeyHint {
	if m.mode == modeDate {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Set date"},
			{Key: "Esc", Description: "Back"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Preview"},
		{Key: "Enter/1-" + fmt.Sprint(int(m.opts.Scale)), Description: "Confirm"},
		{Key: "p/f", Description: "Pass/Fail"},
		{Key: "d", Description: "Custom date"},
	}
	if m.customDate != nil {
		hints = append(hints, layout.KeyHint{Key: "x", Description: "Clear date"})
	}
	if m.opts.Calendar {
		hints = append(hints, layout.KeyHint{Key: "c", Description: "Calendar"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Cancel"})
}

// Run shows the picker on the terminal and returns the confirmed decision.
func Run(m Model) (study.Decision, bool, error) {
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return study.Decision{}, false, err
	}
	d, ok := final.(Model).Decision()
	return d, ok, nil
}
