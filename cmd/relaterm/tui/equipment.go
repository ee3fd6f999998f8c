package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"relaterm/cmd/relaterm/ui"
	"relaterm/internal/api"
)

// equipmentPage is the manager's equipment catalog: create, edit and
// delete entries. Deletes go through a confirmation dialog.
type equipmentPage struct {
	app *App

	equipment []api.Equipment
	loaded    bool
	cursor    int

	form    form
	editing bool
	editID  int // 0 when creating
	confirm ui.Confirm
	saving  bool
	errMsg  string
}

func newEquipmentPage(app *App) *equipmentPage {
	return &equipmentPage{app: app, confirm: ui.NewConfirm()}
}

func equipmentForm(title string) form {
	return newForm(title,
		textField("Name", "equipment name", true),
		textField("Location", "plant location (optional)", false),
		selectField("Status", api.EquipmentStatuses),
		textField("Unavailability reason", "required unless in service", false),
	)
}

func (p *equipmentPage) Init() tea.Cmd {
	return fetchCmd(p.app, keyEquipment(), func(ctx context.Context) ([]api.Equipment, error) {
		return p.app.Client.ListEquipment(ctx)
	})
}

func (p *equipmentPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case dataMsg:
		if msg.key == keyEquipment() {
			if msg.err != nil {
				if !api.IsUnauthorized(msg.err) {
					p.errMsg = "Could not load equipment. " + msg.err.Error()
				}
				return p, nil
			}
			p.equipment = msg.value.([]api.Equipment)
			p.loaded = true
			p.errMsg = ""
			if p.cursor >= len(p.equipment) {
				p.cursor = 0
			}
		}
		return p, nil

	case mutationMsg:
		switch msg.tag {
		case "saveEquipment":
			p.saving = false
			p.form.busy = false
			if msg.err != nil {
				p.form.err = "Could not save. " + msg.err.Error()
				return p, nil
			}
			p.editing = false
			return p, p.Init()
		case "deleteEquipment":
			p.saving = false
			if msg.err != nil {
				p.errMsg = "Could not delete. " + msg.err.Error()
				return p, nil
			}
			return p, p.Init()
		}
		return p, nil

	case tea.KeyMsg:
		if p.saving {
			return p, nil
		}
		if p.confirm.Visible {
			return p.updateConfirm(msg)
		}
		if p.editing {
			if msg.String() == "esc" {
				p.editing = false
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
			if p.cursor < len(p.equipment)-1 {
				p.cursor++
			}
		case "n":
			p.form = equipmentForm("New Equipment")
			p.editID = 0
			p.editing = true
		case "e":
			if len(p.equipment) == 0 {
				return p, nil
			}
			eq := p.equipment[p.cursor]
			p.form = equipmentForm("Edit " + eq.Name)
			p.form.fields[0].input.SetValue(eq.Name)
			if eq.Location != nil {
				p.form.fields[1].input.SetValue(*eq.Location)
			}
			for i, s := range api.EquipmentStatuses {
				if s == eq.Status {
					p.form.fields[2].optIdx = i
				}
			}
			if eq.UnavailabilityReason != nil {
				p.form.fields[3].input.SetValue(*eq.UnavailabilityReason)
			}
			p.editID = eq.ID
			p.editing = true
		case "d":
			if len(p.equipment) > 0 {
				p.confirm.Show(fmt.Sprintf("Delete %s? Its history stays on past shifts.", p.equipment[p.cursor].Name))
			}
		}
	}
	return p, nil
}

func (p *equipmentPage) updateConfirm(msg tea.KeyMsg) (page, tea.Cmd) {
	switch msg.String() {
	case "esc", "n":
		p.confirm.Hide()
	case "left", "right", "tab":
		p.confirm.Toggle()
	case "y":
		p.confirm.Yes = true
		return p.deleteSelected()
	case "enter":
		if p.confirm.Yes {
			return p.deleteSelected()
		}
		p.confirm.Hide()
	}
	return p, nil
}

func (p *equipmentPage) deleteSelected() (page, tea.Cmd) {
	p.confirm.Hide()
	p.saving = true
	id := p.equipment[p.cursor].ID
	return p, mutateCmd(p.app, "deleteEquipment", func(ctx context.Context) error {
		return p.app.Client.DeleteEquipment(ctx, id)
	}, keyEquipment())
}

func (p *equipmentPage) updateForm(msg tea.Msg) (page, tea.Cmd) {
	submitted, cmd := p.form.update(msg)
	if !submitted {
		return p, cmd
	}
	if missing := p.form.missing(); missing != "" {
		p.form.err = missing + " is required."
		return p, nil
	}
	status := p.form.value(2)
	reason := p.form.value(3)
	if status != api.EquipmentInService && reason == "" {
		p.form.err = "A reason is required when equipment is not in service."
		return p, nil
	}

	in := api.EquipmentCreate{Name: p.form.value(0), Status: status}
	if v := p.form.value(1); v != "" {
		in.Location = &v
	}
	if status != api.EquipmentInService {
		in.UnavailabilityReason = &reason
	}

	p.saving = true
	p.form.busy = true
	p.form.err = ""
	editID := p.editID
	return p, mutateCmd(p.app, "saveEquipment", func(ctx context.Context) error {
		var err error
		if editID == 0 {
			_, err = p.app.Client.CreateEquipment(ctx, in)
		} else {
			_, err = p.app.Client.UpdateEquipment(ctx, editID, in)
		}
		return err
	}, keyEquipment())
}

func (p *equipmentPage) View(width int) string {
	s := p.app.Styles
	if p.editing {
		return s.Content.Render(p.form.view(s))
	}

	var b strings.Builder
	switch {
	case !p.loaded && p.errMsg == "":
		b.WriteString(s.Muted.Render("Loading equipment..."))
		b.WriteString("\n")
	case len(p.equipment) == 0 && p.errMsg == "":
		b.WriteString(s.Muted.Render("No equipment registered yet."))
		b.WriteString("\n")
	default:
		tbl := ui.NewTable("ID", "Name", "Location", "Status", "Reason")
		tbl.Cursor = p.cursor
		for _, eq := range p.equipment {
			loc, reason := "", ""
			if eq.Location != nil {
				loc = *eq.Location
			}
			if eq.UnavailabilityReason != nil {
				reason = *eq.UnavailabilityReason
			}
			tbl.Rows = append(tbl.Rows, []string{
				fmt.Sprint(eq.ID), eq.Name, loc, eq.Status, clip(reason, width/4),
			})
		}
		b.WriteString(tbl.Render())
	}

	if p.confirm.Visible {
		b.WriteString("\n" + p.confirm.Render() + "\n")
	}
	if p.errMsg != "" {
		b.WriteString(s.Error.Render(p.errMsg))
		b.WriteString("\n")
	}
	if p.saving {
		b.WriteString(s.Muted.Render("Working..."))
	} else {
		b.WriteString(s.Muted.Render("n new · e edit · d delete"))
	}
	return s.Content.Render(b.String())
}
