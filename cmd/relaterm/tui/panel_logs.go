package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"relaterm/cmd/relaterm/ui"
	"relaterm/internal/api"
)

// parseTimeOr parses a user-entered timestamp, accepting either the local
// "YYYY-MM-DD HH:MM" shorthand or full RFC 3339. Empty input yields def.
func parseTimeOr(value string, def time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return def, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", value, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// eventsPanel lists the shift's operational events and records new ones.
type eventsPanel struct {
	app     *App
	form    form
	editing bool
	saving  bool
}

func newEventsPanel(app *App) *eventsPanel {
	return &eventsPanel{app: app, form: eventForm()}
}

func eventForm() form {
	return newForm("New Event",
		selectField("Type", api.EventTypes),
		textField("Timestamp", "YYYY-MM-DD HH:MM (empty = now)", false),
		textField("Description", "what happened", true),
	)
}

func (p *eventsPanel) title() string { return "Events" }
func (p *eventsPanel) init() tea.Cmd { return nil }

func (p *eventsPanel) update(msg tea.Msg, shift *api.Shift) (panel, tea.Cmd) {
	switch msg := msg.(type) {
	case mutationMsg:
		if msg.tag != "createEvent" {
			return p, nil
		}
		p.saving = false
		p.form.busy = false
		if msg.err != nil {
			p.form.err = "Could not save the event. " + msg.err.Error()
			return p, nil
		}
		p.editing = false
		p.form = eventForm()
		return p, nil

	case tea.KeyMsg:
		if !p.editing {
			if msg.String() == "n" && shift != nil {
				p.editing = true
			}
			return p, nil
		}
		if msg.String() == "esc" {
			p.editing = false
			p.form = eventForm()
			return p, nil
		}
	}

	if !p.editing || p.saving {
		return p, nil
	}
	submitted, cmd := p.form.update(msg)
	if !submitted {
		return p, cmd
	}
	if missing := p.form.missing(); missing != "" {
		p.form.err = missing + " is required."
		return p, nil
	}
	ts, err := parseTimeOr(p.form.value(1), time.Now())
	if err != nil {
		p.form.err = "Timestamp must be YYYY-MM-DD HH:MM."
		return p, nil
	}
	in := api.EventLogCreate{
		EventType:   p.form.value(0),
		Timestamp:   ts,
		Description: p.form.value(2),
	}
	p.saving = true
	p.form.busy = true
	p.form.err = ""
	shiftID := shift.ID
	return p, mutateCmd(p.app, "createEvent", func(ctx context.Context) error {
		_, err := p.app.Client.CreateEventLog(ctx, shiftID, in)
		return err
	}, keyActiveShift())
}

func (p *eventsPanel) view(s ui.Styles, shift *api.Shift, width int) string {
	if p.editing {
		return p.form.view(s)
	}
	var b strings.Builder
	if shift == nil || len(shift.EventLogs) == 0 {
		b.WriteString(s.Muted.Render("No events recorded this shift."))
		b.WriteString("\n")
	} else {
		tbl := ui.NewTable("Time", "Type", "Description")
		for _, e := range shift.EventLogs {
			tbl.Rows = append(tbl.Rows, []string{
				e.Timestamp.Format("15:04"), e.EventType, clip(e.Description, width/2),
			})
		}
		b.WriteString(tbl.Render())
	}
	b.WriteString(s.Muted.Render("n new event"))
	return b.String()
}

// noveltiesPanel lists the shift's novelties and instructions.
type noveltiesPanel struct {
	app     *App
	form    form
	editing bool
	saving  bool
}

func newNoveltiesPanel(app *App) *noveltiesPanel {
	return &noveltiesPanel{app: app, form: noveltyForm()}
}

func noveltyForm() form {
	return newForm("New Novelty",
		selectField("Type", api.NoveltyTypes),
		textField("Description", "novelty or instruction", true),
	)
}

func (p *noveltiesPanel) title() string { return "Novelties" }
func (p *noveltiesPanel) init() tea.Cmd { return nil }

func (p *noveltiesPanel) update(msg tea.Msg, shift *api.Shift) (panel, tea.Cmd) {
	switch msg := msg.(type) {
	case mutationMsg:
		if msg.tag != "createNovelty" {
			return p, nil
		}
		p.saving = false
		p.form.busy = false
		if msg.err != nil {
			p.form.err = "Could not save the novelty. " + msg.err.Error()
			return p, nil
		}
		p.editing = false
		p.form = noveltyForm()
		return p, nil

	case tea.KeyMsg:
		if !p.editing {
			if msg.String() == "n" && shift != nil {
				p.editing = true
			}
			return p, nil
		}
		if msg.String() == "esc" {
			p.editing = false
			p.form = noveltyForm()
			return p, nil
		}
	}

	if !p.editing || p.saving {
		return p, nil
	}
	submitted, cmd := p.form.update(msg)
	if !submitted {
		return p, cmd
	}
	if missing := p.form.missing(); missing != "" {
		p.form.err = missing + " is required."
		return p, nil
	}
	in := api.NoveltyLogCreate{
		NoveltyType: p.form.value(0),
		Description: p.form.value(1),
	}
	p.saving = true
	p.form.busy = true
	p.form.err = ""
	shiftID := shift.ID
	return p, mutateCmd(p.app, "createNovelty", func(ctx context.Context) error {
		_, err := p.app.Client.CreateNoveltyLog(ctx, shiftID, in)
		return err
	}, keyActiveShift())
}

func (p *noveltiesPanel) view(s ui.Styles, shift *api.Shift, width int) string {
	if p.editing {
		return p.form.view(s)
	}
	var b strings.Builder
	if shift == nil || len(shift.NoveltyLogs) == 0 {
		b.WriteString(s.Muted.Render("No novelties recorded this shift."))
		b.WriteString("\n")
	} else {
		tbl := ui.NewTable("Time", "Type", "By", "Description")
		for _, n := range shift.NoveltyLogs {
			by := fmt.Sprint(n.UserID)
			if n.User != nil {
				by = n.User.Username
			}
			tbl.Rows = append(tbl.Rows, []string{
				n.Timestamp.Format("15:04"), n.NoveltyType, by, clip(n.Description, width/2),
			})
		}
		b.WriteString(tbl.Render())
	}
	b.WriteString(s.Muted.Render("n new novelty"))
	return b.String()
}

func clip(s string, max int) string {
	if max < 10 {
		max = 10
	}
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
