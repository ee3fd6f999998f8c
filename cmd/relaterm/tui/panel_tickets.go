package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"relaterm/cmd/relaterm/ui"
	"relaterm/internal/api"
)

// ticketsPanel tracks maintenance tickets: fault reports and planned
// maintenance against specific equipment, advancing OPEN through
// IN_PROGRESS to COMPLETED.
type ticketsPanel struct {
	app *App

	tickets   []api.MaintenanceTicket
	equipment []api.Equipment
	loaded    bool
	cursor    int

	form    form
	built   bool
	editing bool
	saving  bool
	errMsg  string
}

func newTicketsPanel(app *App) *ticketsPanel {
	return &ticketsPanel{app: app}
}

func (p *ticketsPanel) title() string { return "Tickets" }

func (p *ticketsPanel) init() tea.Cmd {
	return tea.Batch(
		fetchCmd(p.app, keyTickets(), func(ctx context.Context) ([]api.MaintenanceTicket, error) {
			return p.app.Client.ListTickets(ctx)
		}),
		fetchCmd(p.app, keyEquipment(), func(ctx context.Context) ([]api.Equipment, error) {
			return p.app.Client.ListEquipment(ctx)
		}),
	)
}

func (p *ticketsPanel) buildForm() {
	units := make([]string, len(p.equipment))
	for i, e := range p.equipment {
		units[i] = e.Name
	}
	p.form = newForm("New Ticket",
		selectField("Equipment", units),
		selectField("Type", api.TicketTypes),
		textField("Description", "defect or planned work", true),
		textField("Impact", "operational impact (optional)", false),
	)
	p.built = true
}

func nextTicketStatus(status string) string {
	switch status {
	case api.TicketOpen:
		return api.TicketInProgress
	case api.TicketInProgress:
		return api.TicketCompleted
	}
	return ""
}

func (p *ticketsPanel) update(msg tea.Msg, shift *api.Shift) (panel, tea.Cmd) {
	switch msg := msg.(type) {
	case dataMsg:
		switch msg.key {
		case keyTickets():
			if msg.err == nil {
				p.tickets = msg.value.([]api.MaintenanceTicket)
				p.loaded = true
				if p.cursor >= len(p.tickets) {
					p.cursor = 0
				}
			}
		case keyEquipment():
			if msg.err == nil {
				p.equipment = msg.value.([]api.Equipment)
				if !p.built && len(p.equipment) > 0 {
					p.buildForm()
				}
			}
		}
		return p, nil

	case mutationMsg:
		switch msg.tag {
		case "createTicket":
			p.saving = false
			p.form.busy = false
			if msg.err != nil {
				p.form.err = "Could not open the ticket. " + msg.err.Error()
				return p, nil
			}
			p.editing = false
			p.buildForm()
			return p, p.init()
		case "advanceTicket":
			p.saving = false
			if msg.err != nil {
				p.errMsg = "Could not update the ticket. " + msg.err.Error()
				return p, nil
			}
			p.errMsg = ""
			return p, p.init()
		}
		return p, nil

	case tea.KeyMsg:
		if p.saving {
			return p, nil
		}
		if p.editing {
			if msg.String() == "esc" {
				p.editing = false
				p.buildForm()
				return p, nil
			}
			return p.updateForm(msg)
		}
		switch msg.String() {
		case "up", "k":
			if p.cursor > 0 {
				p.cursor--
			}
		case "down", "j":
			if p.cursor < len(p.tickets)-1 {
				p.cursor++
			}
		case "n":
			if p.built {
				p.editing = true
				p.errMsg = ""
			}
		case "s":
			if len(p.tickets) == 0 {
				return p, nil
			}
			t := p.tickets[p.cursor]
			next := nextTicketStatus(t.TicketStatus)
			if next == "" {
				return p, nil
			}
			p.saving = true
			id := t.ID
			return p, mutateCmd(p.app, "advanceTicket", func(ctx context.Context) error {
				_, err := p.app.Client.UpdateTicket(ctx, id, api.TicketUpdate{TicketStatus: &next})
				return err
			}, keyTickets())
		}
	}
	return p, nil
}

func (p *ticketsPanel) updateForm(msg tea.Msg) (panel, tea.Cmd) {
	submitted, cmd := p.form.update(msg)
	if !submitted {
		return p, cmd
	}
	if missing := p.form.missing(); missing != "" {
		p.form.err = missing + " is required."
		return p, nil
	}
	var impact *string
	if v := p.form.value(3); v != "" {
		impact = &v
	}
	in := api.TicketCreate{
		EquipmentID: p.equipment[p.form.fields[0].optIdx].ID,
		TicketType:  p.form.value(1),
		Description: p.form.value(2),
		Impact:      impact,
	}
	p.saving = true
	p.form.busy = true
	p.form.err = ""
	return p, mutateCmd(p.app, "createTicket", func(ctx context.Context) error {
		_, err := p.app.Client.CreateTicket(ctx, in)
		return err
	}, keyTickets())
}

func (p *ticketsPanel) equipmentName(id int) string {
	for _, e := range p.equipment {
		if e.ID == id {
			return e.Name
		}
	}
	return fmt.Sprint(id)
}

func (p *ticketsPanel) view(s ui.Styles, shift *api.Shift, width int) string {
	if p.editing {
		return p.form.view(s)
	}
	var b strings.Builder
	switch {
	case !p.loaded:
		b.WriteString(s.Muted.Render("Loading tickets..."))
		b.WriteString("\n")
	case len(p.tickets) == 0:
		b.WriteString(s.Muted.Render("No maintenance tickets."))
		b.WriteString("\n")
	default:
		tbl := ui.NewTable("Equipment", "Type", "Status", "Description")
		tbl.Cursor = p.cursor
		for _, t := range p.tickets {
			tbl.Rows = append(tbl.Rows, []string{
				p.equipmentName(t.EquipmentID), t.TicketType, t.TicketStatus, clip(t.Description, width/3),
			})
		}
		b.WriteString(tbl.Render())
	}

	if p.errMsg != "" {
		b.WriteString(s.Error.Render(p.errMsg))
		b.WriteString("\n")
	}
	if p.saving {
		b.WriteString(s.Muted.Render("Saving..."))
	} else {
		b.WriteString(s.Muted.Render("n new ticket · s advance status"))
	}
	return b.String()
}
