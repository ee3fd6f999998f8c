package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"relaterm/cmd/relaterm/ui"
	"relaterm/internal/api"
)

// statusEdit is the locally edited state of one equipment row.
type statusEdit struct {
	Status string
	Reason string
}

// equipmentStatusPanel shows the equipment catalog with its live status
// and lets the superintendent record status changes. Edited rows are
// marked dirty until saved; saving posts a status log against the shift.
type equipmentStatusPanel struct {
	app *App

	equipment []api.Equipment
	edits     *ui.Edits[statusEdit]
	cursor    int

	askReason   bool
	reasonInput textinput.Model
	saving      bool
	errMsg      string
}

func newEquipmentStatusPanel(app *App) *equipmentStatusPanel {
	in := textinput.New()
	in.Placeholder = "reason for unavailability"
	in.CharLimit = 256
	return &equipmentStatusPanel{app: app, edits: ui.NewEdits[statusEdit](), reasonInput: in}
}

func (p *equipmentStatusPanel) title() string { return "Equipment" }

func (p *equipmentStatusPanel) init() tea.Cmd {
	return fetchCmd(p.app, keyEquipment(), func(ctx context.Context) ([]api.Equipment, error) {
		return p.app.Client.ListEquipment(ctx)
	})
}

func serverEdit(e api.Equipment) statusEdit {
	se := statusEdit{Status: e.Status}
	if e.UnavailabilityReason != nil {
		se.Reason = *e.UnavailabilityReason
	}
	return se
}

func (p *equipmentStatusPanel) update(msg tea.Msg, shift *api.Shift) (panel, tea.Cmd) {
	switch msg := msg.(type) {
	case dataMsg:
		if msg.key == keyEquipment() && msg.err == nil {
			p.equipment = msg.value.([]api.Equipment)
			// A refetch reflects any saved edits; clear local state so
			// rows that caught up read clean.
			p.edits.Clear()
			if p.cursor >= len(p.equipment) {
				p.cursor = 0
			}
		}
		return p, nil

	case mutationMsg:
		if msg.tag != "statusLog" {
			return p, nil
		}
		p.saving = false
		if msg.err != nil {
			p.errMsg = "Could not record the status change. " + msg.err.Error()
			return p, nil
		}
		p.errMsg = ""
		return p, p.init()

	case tea.KeyMsg:
		if p.saving || len(p.equipment) == 0 || shift == nil {
			return p, nil
		}
		if p.askReason {
			return p.updateReason(msg, shift)
		}
		eq := p.equipment[p.cursor]
		switch msg.String() {
		case "up", "k":
			if p.cursor > 0 {
				p.cursor--
			}
		case "down", "j":
			if p.cursor < len(p.equipment)-1 {
				p.cursor++
			}
		case "left", "right":
			cur := p.edits.Get(eq.ID, serverEdit(eq))
			cur.Status = cycleStatus(cur.Status, msg.String() == "right")
			p.edits.Set(eq.ID, cur)
		case "u":
			p.edits.Reset(eq.ID)
		case "s", "enter":
			if !p.edits.Dirty(eq.ID, serverEdit(eq)) {
				return p, nil
			}
			edit := p.edits.Get(eq.ID, serverEdit(eq))
			if edit.Status != api.EquipmentInService {
				p.askReason = true
				p.reasonInput.SetValue(edit.Reason)
				p.reasonInput.Focus()
				return p, textinput.Blink
			}
			return p, p.save(shift, eq, edit, nil)
		}
	}
	return p, nil
}

func (p *equipmentStatusPanel) updateReason(msg tea.KeyMsg, shift *api.Shift) (panel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		p.askReason = false
		return p, nil
	case "enter":
		reason := strings.TrimSpace(p.reasonInput.Value())
		if reason == "" {
			p.errMsg = "A reason is required when equipment leaves service."
			return p, nil
		}
		p.askReason = false
		p.errMsg = ""
		eq := p.equipment[p.cursor]
		edit := p.edits.Get(eq.ID, serverEdit(eq))
		edit.Reason = reason
		p.edits.Set(eq.ID, edit)
		return p, p.save(shift, eq, edit, &reason)
	}
	var cmd tea.Cmd
	p.reasonInput, cmd = p.reasonInput.Update(msg)
	return p, cmd
}

func (p *equipmentStatusPanel) save(shift *api.Shift, eq api.Equipment, edit statusEdit, reason *string) tea.Cmd {
	p.saving = true
	in := api.StatusLogCreate{
		EquipmentID: eq.ID,
		Status:      edit.Status,
		Reason:      reason,
		Timestamp:   time.Now(),
	}
	shiftID := shift.ID
	return mutateCmd(p.app, "statusLog", func(ctx context.Context) error {
		_, err := p.app.Client.CreateStatusLog(ctx, shiftID, in)
		return err
	}, keyActiveShift(), keyEquipment())
}

func cycleStatus(status string, forward bool) string {
	idx := 0
	for i, s := range api.EquipmentStatuses {
		if s == status {
			idx = i
			break
		}
	}
	n := len(api.EquipmentStatuses)
	if forward {
		idx = (idx + 1) % n
	} else {
		idx = (idx - 1 + n) % n
	}
	return api.EquipmentStatuses[idx]
}

func (p *equipmentStatusPanel) view(s ui.Styles, shift *api.Shift, width int) string {
	var b strings.Builder
	if len(p.equipment) == 0 {
		b.WriteString(s.Muted.Render("Loading equipment..."))
		return b.String()
	}

	tbl := ui.NewTable("Equipment", "Location", "Status")
	tbl.Cursor = p.cursor
	for _, eq := range p.equipment {
		edit := p.edits.Get(eq.ID, serverEdit(eq))
		loc := ""
		if eq.Location != nil {
			loc = *eq.Location
		}
		tbl.Rows = append(tbl.Rows, []string{eq.Name, loc, edit.Status})
		tbl.Dirty = append(tbl.Dirty, p.edits.Dirty(eq.ID, serverEdit(eq)))
	}
	b.WriteString(tbl.Render())

	if p.askReason {
		b.WriteString("\nReason: " + p.reasonInput.View() + "\n")
	}
	if p.errMsg != "" {
		b.WriteString(s.Error.Render(p.errMsg))
		b.WriteString("\n")
	}
	if p.saving {
		b.WriteString(s.Muted.Render("Saving..."))
	} else {
		b.WriteString(s.Muted.Render(fmt.Sprintf("←/→ change status · s save row · u undo · %d units", len(p.equipment))))
	}
	return b.String()
}
