package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"relaterm/cmd/relaterm/ui"
	"relaterm/internal/api"
)

const (
	tabPositions = iota
	tabEmployees
	tabGroups
)

// personnelPage manages the personnel catalogs on three tabs: job
// positions, employees, and shift groups with their member rosters.
type personnelPage struct {
	app *App

	positions []api.Position
	employees []api.Employee
	groups    []api.ShiftGroup

	tab     int
	cursors [3]int

	form    form
	editing bool
	editID  int
	confirm ui.Confirm
	saving  bool
	errMsg  string

	// Member picker state for the groups tab.
	picking      bool
	removing     bool
	pickerCursor int
}

func newPersonnelPage(app *App) *personnelPage {
	return &personnelPage{app: app, confirm: ui.NewConfirm()}
}

func (p *personnelPage) Init() tea.Cmd {
	return tea.Batch(
		fetchCmd(p.app, keyPositions(), func(ctx context.Context) ([]api.Position, error) {
			return p.app.Client.ListPositions(ctx)
		}),
		fetchCmd(p.app, keyEmployees(), func(ctx context.Context) ([]api.Employee, error) {
			return p.app.Client.ListEmployees(ctx)
		}),
		fetchCmd(p.app, keyShiftGroups(), func(ctx context.Context) ([]api.ShiftGroup, error) {
			return p.app.Client.ListGroups(ctx)
		}),
	)
}

func (p *personnelPage) cursor() *int { return &p.cursors[p.tab] }

func (p *personnelPage) rowCount() int {
	switch p.tab {
	case tabPositions:
		return len(p.positions)
	case tabEmployees:
		return len(p.employees)
	}
	return len(p.groups)
}

func (p *personnelPage) positionForm(title string) form {
	return newForm(title,
		textField("Name", "position name", true),
		textField("Description", "optional", false),
	)
}

func (p *personnelPage) employeeForm(title string) form {
	positions := []string{"(none)"}
	for _, pos := range p.positions {
		positions = append(positions, pos.Name)
	}
	return newForm(title,
		textField("Full name", "employee full name", true),
		textField("RPE", "payroll identifier", true),
		selectField("Type", api.EmployeeTypes),
		selectField("Base position", positions),
	)
}

func (p *personnelPage) groupForm() form {
	return newForm("New Group",
		textField("Name", "group name", true),
	)
}

// unassigned returns the employees who are not members of the group.
func unassigned(employees []api.Employee, group api.ShiftGroup) []api.Employee {
	member := make(map[int]bool, len(group.Members))
	for _, m := range group.Members {
		member[m.ID] = true
	}
	var out []api.Employee
	for _, e := range employees {
		if !member[e.ID] {
			out = append(out, e)
		}
	}
	return out
}

func (p *personnelPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case dataMsg:
		switch msg.key {
		case keyPositions():
			if msg.err == nil {
				p.positions = msg.value.([]api.Position)
			}
		case keyEmployees():
			if msg.err == nil {
				p.employees = msg.value.([]api.Employee)
			}
		case keyShiftGroups():
			if msg.err == nil {
				p.groups = msg.value.([]api.ShiftGroup)
			}
		}
		if p.rowCount() > 0 && *p.cursor() >= p.rowCount() {
			*p.cursor() = 0
		}
		return p, nil

	case mutationMsg:
		switch msg.tag {
		case "savePersonnel":
			p.saving = false
			p.form.busy = false
			if msg.err != nil {
				p.form.err = "Could not save. " + msg.err.Error()
				return p, nil
			}
			p.editing = false
			return p, p.Init()
		case "deletePersonnel", "membership":
			p.saving = false
			if msg.err != nil {
				p.errMsg = "Operation failed. " + msg.err.Error()
				return p, nil
			}
			p.errMsg = ""
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
		if p.picking {
			return p.updatePicker(msg)
		}
		return p.updateList(msg)
	}
	return p, nil
}

func (p *personnelPage) updateList(msg tea.KeyMsg) (page, tea.Cmd) {
	switch msg.String() {
	case "tab":
		p.tab = (p.tab + 1) % 3
	case "shift+tab":
		p.tab = (p.tab + 2) % 3
	case "up", "k":
		if *p.cursor() > 0 {
			*p.cursor()--
		}
	case "down", "j":
		if *p.cursor() < p.rowCount()-1 {
			*p.cursor()++
		}
	case "n":
		p.editID = 0
		switch p.tab {
		case tabPositions:
			p.form = p.positionForm("New Position")
		case tabEmployees:
			p.form = p.employeeForm("New Employee")
		case tabGroups:
			p.form = p.groupForm()
		}
		p.editing = true
	case "e":
		return p.startEdit()
	case "d":
		return p.startDelete()
	case "a":
		if p.tab == tabGroups && len(p.groups) > 0 {
			group := p.groups[*p.cursor()]
			if len(unassigned(p.employees, group)) > 0 {
				p.picking = true
				p.removing = false
				p.pickerCursor = 0
			}
		}
	case "r":
		if p.tab == tabGroups && len(p.groups) > 0 {
			if len(p.groups[*p.cursor()].Members) > 0 {
				p.picking = true
				p.removing = true
				p.pickerCursor = 0
			}
		}
	}
	return p, nil
}

func (p *personnelPage) startEdit() (page, tea.Cmd) {
	if p.rowCount() == 0 || p.tab == tabGroups {
		return p, nil
	}
	switch p.tab {
	case tabPositions:
		pos := p.positions[*p.cursor()]
		p.form = p.positionForm("Edit " + pos.Name)
		p.form.fields[0].input.SetValue(pos.Name)
		if pos.Description != nil {
			p.form.fields[1].input.SetValue(*pos.Description)
		}
		p.editID = pos.ID
	case tabEmployees:
		emp := p.employees[*p.cursor()]
		p.form = p.employeeForm("Edit " + emp.FullName)
		p.form.fields[0].input.SetValue(emp.FullName)
		p.form.fields[1].input.SetValue(emp.RPE)
		for i, t := range api.EmployeeTypes {
			if t == emp.EmployeeType {
				p.form.fields[2].optIdx = i
			}
		}
		if emp.BasePositionID != nil {
			for i, pos := range p.positions {
				if pos.ID == *emp.BasePositionID {
					p.form.fields[3].optIdx = i + 1 // slot 0 is "(none)"
				}
			}
		}
		p.editID = emp.ID
	}
	p.editing = true
	return p, nil
}

func (p *personnelPage) startDelete() (page, tea.Cmd) {
	if p.rowCount() == 0 {
		return p, nil
	}
	switch p.tab {
	case tabPositions:
		p.confirm.Show(fmt.Sprintf("Delete position %s?", p.positions[*p.cursor()].Name))
	case tabEmployees:
		p.confirm.Show(fmt.Sprintf("Delete employee %s?", p.employees[*p.cursor()].FullName))
	case tabGroups:
		p.confirm.Show(fmt.Sprintf("Delete group %s?", p.groups[*p.cursor()].Name))
	}
	return p, nil
}

func (p *personnelPage) updateConfirm(msg tea.KeyMsg) (page, tea.Cmd) {
	switch msg.String() {
	case "esc":
		p.confirm.Hide()
	case "left", "right", "tab":
		p.confirm.Toggle()
	case "y":
		p.confirm.Yes = true
		return p.confirmAction()
	case "n":
		p.confirm.Hide()
	case "enter":
		if p.confirm.Yes {
			return p.confirmAction()
		}
		p.confirm.Hide()
	}
	return p, nil
}

func (p *personnelPage) confirmAction() (page, tea.Cmd) {
	p.confirm.Hide()
	p.saving = true

	switch p.tab {
	case tabPositions:
		id := p.positions[*p.cursor()].ID
		return p, mutateCmd(p.app, "deletePersonnel", func(ctx context.Context) error {
			return p.app.Client.DeletePosition(ctx, id)
		}, keyPositions(), keyEmployees())
	case tabEmployees:
		id := p.employees[*p.cursor()].ID
		return p, mutateCmd(p.app, "deletePersonnel", func(ctx context.Context) error {
			return p.app.Client.DeleteEmployee(ctx, id)
		}, keyEmployees(), keyShiftGroups())
	default:
		id := p.groups[*p.cursor()].ID
		return p, mutateCmd(p.app, "deletePersonnel", func(ctx context.Context) error {
			return p.app.Client.DeleteGroup(ctx, id)
		}, keyShiftGroups())
	}
}

func (p *personnelPage) updatePicker(msg tea.KeyMsg) (page, tea.Cmd) {
	group := p.groups[*p.cursor()]
	candidates := unassigned(p.employees, group)
	if p.removing {
		candidates = group.Members
	}
	switch msg.String() {
	case "esc":
		p.picking = false
	case "up", "k":
		if p.pickerCursor > 0 {
			p.pickerCursor--
		}
	case "down", "j":
		if p.pickerCursor < len(candidates)-1 {
			p.pickerCursor++
		}
	case "enter":
		if len(candidates) == 0 {
			p.picking = false
			return p, nil
		}
		p.picking = false
		p.saving = true
		employee := candidates[p.pickerCursor]
		removing := p.removing
		return p, mutateCmd(p.app, "membership", func(ctx context.Context) error {
			var err error
			if removing {
				_, err = p.app.Client.RemoveGroupMember(ctx, group.ID, employee.ID)
			} else {
				_, err = p.app.Client.AddGroupMember(ctx, group.ID, employee.ID)
			}
			return err
		}, keyShiftGroups())
	}
	return p, nil
}

func (p *personnelPage) updateForm(msg tea.Msg) (page, tea.Cmd) {
	submitted, cmd := p.form.update(msg)
	if !submitted {
		return p, cmd
	}
	if missing := p.form.missing(); missing != "" {
		p.form.err = missing + " is required."
		return p, nil
	}

	p.saving = true
	p.form.busy = true
	p.form.err = ""
	editID := p.editID

	switch p.tab {
	case tabPositions:
		in := api.PositionCreate{Name: p.form.value(0)}
		if v := p.form.value(1); v != "" {
			in.Description = &v
		}
		return p, mutateCmd(p.app, "savePersonnel", func(ctx context.Context) error {
			var err error
			if editID == 0 {
				_, err = p.app.Client.CreatePosition(ctx, in)
			} else {
				_, err = p.app.Client.UpdatePosition(ctx, editID, in)
			}
			return err
		}, keyPositions(), keyEmployees())

	case tabEmployees:
		in := api.EmployeeCreate{
			FullName:     p.form.value(0),
			RPE:          p.form.value(1),
			EmployeeType: p.form.value(2),
		}
		if idx := p.form.fields[3].optIdx; idx > 0 {
			id := p.positions[idx-1].ID
			in.BasePositionID = &id
		}
		return p, mutateCmd(p.app, "savePersonnel", func(ctx context.Context) error {
			var err error
			if editID == 0 {
				_, err = p.app.Client.CreateEmployee(ctx, in)
			} else {
				_, err = p.app.Client.UpdateEmployee(ctx, editID, in)
			}
			return err
		}, keyEmployees(), keyShiftGroups())

	default:
		name := p.form.value(0)
		return p, mutateCmd(p.app, "savePersonnel", func(ctx context.Context) error {
			_, err := p.app.Client.CreateGroup(ctx, name)
			return err
		}, keyShiftGroups())
	}
}

func (p *personnelPage) View(width int) string {
	s := p.app.Styles
	if p.editing {
		return s.Content.Render(p.form.view(s))
	}

	var b strings.Builder
	tabs := []string{"Positions", "Employees", "Groups"}
	parts := make([]string, len(tabs))
	for i, t := range tabs {
		if i == p.tab {
			parts[i] = s.Badge.Render(t)
		} else {
			parts[i] = s.Muted.Render(t)
		}
	}
	b.WriteString(strings.Join(parts, " "))
	b.WriteString("\n\n")

	switch p.tab {
	case tabPositions:
		tbl := ui.NewTable("Name", "Description")
		tbl.Cursor = *p.cursor()
		for _, pos := range p.positions {
			desc := ""
			if pos.Description != nil {
				desc = *pos.Description
			}
			tbl.Rows = append(tbl.Rows, []string{pos.Name, clip(desc, width/2)})
		}
		b.WriteString(tbl.Render())
		b.WriteString(s.Muted.Render("tab switch · n new · e edit · d delete"))

	case tabEmployees:
		tbl := ui.NewTable("Name", "RPE", "Type", "Base Position")
		tbl.Cursor = *p.cursor()
		for _, emp := range p.employees {
			pos := ""
			if emp.BasePosition != nil {
				pos = emp.BasePosition.Name
			}
			tbl.Rows = append(tbl.Rows, []string{emp.FullName, emp.RPE, emp.EmployeeType, pos})
		}
		b.WriteString(tbl.Render())
		b.WriteString(s.Muted.Render("tab switch · n new · e edit · d delete"))

	default:
		b.WriteString(p.viewGroups(s))
	}

	if p.confirm.Visible {
		b.WriteString("\n" + p.confirm.Render() + "\n")
	}
	if p.errMsg != "" {
		b.WriteString("\n" + s.Error.Render(p.errMsg))
	}
	if p.saving {
		b.WriteString("\n" + s.Muted.Render("Working..."))
	}
	return s.Content.Render(b.String())
}

func (p *personnelPage) viewGroups(s ui.Styles) string {
	var b strings.Builder
	if len(p.groups) == 0 {
		b.WriteString(s.Muted.Render("No shift groups yet."))
		b.WriteString("\n")
	}
	for i, g := range p.groups {
		line := fmt.Sprintf("%s (%d members)", g.Name, len(g.Members))
		if i == *p.cursor() {
			line = s.Selected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
		if i == *p.cursor() {
			for _, m := range g.Members {
				b.WriteString(s.Muted.Render("    · " + m.FullName))
				b.WriteString("\n")
			}
		}
	}

	if p.picking && len(p.groups) > 0 {
		group := p.groups[*p.cursor()]
		candidates := unassigned(p.employees, group)
		action := "Add member to"
		if p.removing {
			candidates = group.Members
			action = "Remove member from"
		}
		b.WriteString("\n" + action + " " + group.Name + ":\n")
		for i, e := range candidates {
			line := "  " + e.FullName
			if i == p.pickerCursor {
				line = s.Selected.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString(s.Muted.Render("enter confirm · esc cancel"))
		return b.String()
	}

	b.WriteString(s.Muted.Render("tab switch · n new group · a add member · r remove member · d delete"))
	return b.String()
}
