package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"relaterm/cmd/relaterm/ui"
	"relaterm/internal/api"
)

// attendanceEdit is the locally edited state of one attendance row.
type attendanceEdit struct {
	Status   string
	ActualID int
}

// attendancePanel edits the shift's attendance sheet. Status changes and
// substitutions stay local, marked dirty, until the row is saved with a
// PATCH; a refetch that reflects the save reads the row clean again.
type attendancePanel struct {
	app *App

	shiftID   int
	records   []api.AttendanceRecord
	employees []api.Employee
	loaded    bool
	cursor    int

	edits  *ui.Edits[attendanceEdit]
	saving bool
	errMsg string
}

func newAttendancePanel(app *App) *attendancePanel {
	return &attendancePanel{app: app, edits: ui.NewEdits[attendanceEdit]()}
}

func (p *attendancePanel) title() string { return "Attendance" }

func (p *attendancePanel) init() tea.Cmd {
	return fetchCmd(p.app, keyEmployees(), func(ctx context.Context) ([]api.Employee, error) {
		return p.app.Client.ListEmployees(ctx)
	})
}

func (p *attendancePanel) fetchAttendance(shiftID int) tea.Cmd {
	p.shiftID = shiftID
	return fetchCmd(p.app, keyAttendance(shiftID), func(ctx context.Context) ([]api.AttendanceRecord, error) {
		return p.app.Client.ShiftAttendance(ctx, shiftID)
	})
}

func serverAttendance(r api.AttendanceRecord) attendanceEdit {
	return attendanceEdit{Status: r.AttendanceStatus, ActualID: r.ActualEmployee.ID}
}

func (p *attendancePanel) update(msg tea.Msg, shift *api.Shift) (panel, tea.Cmd) {
	// A shift change queues a sheet refetch but the current message is
	// still handled; on first entry that message is this panel's own
	// employee list.
	var refetch tea.Cmd
	if shift != nil && shift.ID != p.shiftID {
		refetch = p.fetchAttendance(shift.ID)
	}
	pn, cmd := p.handle(msg)
	if refetch != nil {
		return pn, tea.Batch(refetch, cmd)
	}
	return pn, cmd
}

func (p *attendancePanel) handle(msg tea.Msg) (panel, tea.Cmd) {
	switch msg := msg.(type) {
	case dataMsg:
		switch msg.key {
		case keyAttendance(p.shiftID):
			if msg.err == nil {
				p.records = msg.value.([]api.AttendanceRecord)
				p.loaded = true
				p.edits.Clear()
				if p.cursor >= len(p.records) {
					p.cursor = 0
				}
			}
		case keyEmployees():
			if msg.err == nil {
				p.employees = msg.value.([]api.Employee)
			}
		}
		return p, nil

	case mutationMsg:
		if msg.tag != "attendance" {
			return p, nil
		}
		p.saving = false
		if msg.err != nil {
			p.errMsg = "Could not save the attendance row. " + msg.err.Error()
			return p, nil
		}
		p.errMsg = ""
		return p, p.fetchAttendance(p.shiftID)

	case tea.KeyMsg:
		if p.saving || len(p.records) == 0 {
			return p, nil
		}
		rec := p.records[p.cursor]
		switch msg.String() {
		case "up", "k":
			if p.cursor > 0 {
				p.cursor--
			}
		case "down", "j":
			if p.cursor < len(p.records)-1 {
				p.cursor++
			}
		case "left", "right":
			cur := p.edits.Get(rec.ID, serverAttendance(rec))
			cur.Status = cycleAttendance(cur.Status, msg.String() == "right")
			p.edits.Set(rec.ID, cur)
		case "<", ">":
			if len(p.employees) == 0 {
				return p, nil
			}
			cur := p.edits.Get(rec.ID, serverAttendance(rec))
			cur.ActualID = cycleEmployee(p.employees, cur.ActualID, msg.String() == ">")
			p.edits.Set(rec.ID, cur)
		case "u":
			p.edits.Reset(rec.ID)
		case "s", "enter":
			if !p.edits.Dirty(rec.ID, serverAttendance(rec)) {
				return p, nil
			}
			return p, p.save(rec)
		}
	}
	return p, nil
}

// save patches only the fields that actually changed on the row.
func (p *attendancePanel) save(rec api.AttendanceRecord) tea.Cmd {
	server := serverAttendance(rec)
	edit := p.edits.Get(rec.ID, server)

	var in api.AttendanceUpdate
	if edit.Status != server.Status {
		in.AttendanceStatus = &edit.Status
	}
	if edit.ActualID != server.ActualID {
		in.ActualEmployeeID = &edit.ActualID
	}

	p.saving = true
	id := rec.ID
	return mutateCmd(p.app, "attendance", func(ctx context.Context) error {
		_, err := p.app.Client.UpdateAttendance(ctx, id, in)
		return err
	}, keyAttendance(p.shiftID))
}

func cycleAttendance(status string, forward bool) string {
	idx := 0
	for i, s := range api.AttendanceStatuses {
		if s == status {
			idx = i
			break
		}
	}
	n := len(api.AttendanceStatuses)
	if forward {
		return api.AttendanceStatuses[(idx+1)%n]
	}
	return api.AttendanceStatuses[(idx-1+n)%n]
}

func cycleEmployee(employees []api.Employee, currentID int, forward bool) int {
	idx := 0
	for i, e := range employees {
		if e.ID == currentID {
			idx = i
			break
		}
	}
	n := len(employees)
	if forward {
		return employees[(idx+1)%n].ID
	}
	return employees[(idx-1+n)%n].ID
}

func (p *attendancePanel) employeeName(id int) string {
	for _, e := range p.employees {
		if e.ID == id {
			return e.FullName
		}
	}
	return "?"
}

func (p *attendancePanel) view(s ui.Styles, shift *api.Shift, width int) string {
	var b strings.Builder
	switch {
	case !p.loaded:
		b.WriteString(s.Muted.Render("Loading attendance..."))
		return b.String()
	case len(p.records) == 0:
		b.WriteString(s.Muted.Render("No attendance sheet for this shift yet."))
		return b.String()
	}

	tbl := ui.NewTable("Position", "Scheduled", "Actual", "Status")
	tbl.Cursor = p.cursor
	for _, r := range p.records {
		edit := p.edits.Get(r.ID, serverAttendance(r))
		actual := r.ActualEmployee.FullName
		if edit.ActualID != r.ActualEmployee.ID {
			actual = p.employeeName(edit.ActualID)
		}
		tbl.Rows = append(tbl.Rows, []string{
			r.Position.Name, r.ScheduledEmployee.FullName, actual, edit.Status,
		})
		tbl.Dirty = append(tbl.Dirty, p.edits.Dirty(r.ID, serverAttendance(r)))
	}
	b.WriteString(tbl.Render())

	if p.errMsg != "" {
		b.WriteString(s.Error.Render(p.errMsg))
		b.WriteString("\n")
	}
	if p.saving {
		b.WriteString(s.Muted.Render("Saving..."))
	} else {
		b.WriteString(s.Muted.Render("←/→ status · </> substitute · s save row · u undo"))
	}
	return b.String()
}
