package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"relaterm/cmd/relaterm/ui"
	"relaterm/internal/api"
)

// panel is one tab of the active shift page. Panels receive the current
// shift on every update and own their ancillary data and forms.
type panel interface {
	title() string
	init() tea.Cmd
	update(msg tea.Msg, shift *api.Shift) (panel, tea.Cmd)
	view(s ui.Styles, shift *api.Shift, width int) string
}

// activeShiftPage is the superintendent's working surface. It loads the
// caller's active shift; a 404 is the meaningful "no shift assigned"
// state, not an error.
type activeShiftPage struct {
	app *App

	shift   *api.Shift
	noShift bool
	loading bool
	loadErr string

	groups      []api.ShiftGroup
	groupCursor int
	assigning   bool

	panels   []panel
	panelIdx int
}

func newActiveShiftPage(app *App) *activeShiftPage {
	return &activeShiftPage{
		app:     app,
		loading: true,
		panels: []panel{
			newEventsPanel(app),
			newNoveltiesPanel(app),
			newEquipmentStatusPanel(app),
			newTanksPanel(app),
			newTasksPanel(app),
			newReadingsPanel(app),
			newRampsPanel(app),
			newLicensesPanel(app),
			newTicketsPanel(app),
			newAttendancePanel(app),
		},
	}
}

func (p *activeShiftPage) fetchShift() tea.Cmd {
	return fetchCmd(p.app, keyActiveShift(), func(ctx context.Context) (*api.Shift, error) {
		return p.app.Client.ActiveShift(ctx)
	})
}

func (p *activeShiftPage) fetchGroups() tea.Cmd {
	return fetchCmd(p.app, keyShiftGroups(), func(ctx context.Context) ([]api.ShiftGroup, error) {
		return p.app.Client.ListGroups(ctx)
	})
}

func (p *activeShiftPage) Init() tea.Cmd {
	// Groups are loaded up front so the assign-group picker is ready when
	// the shift arrives without one.
	cmds := []tea.Cmd{p.fetchShift(), p.fetchGroups()}
	for _, pn := range p.panels {
		cmds = append(cmds, pn.init())
	}
	return tea.Batch(cmds...)
}

func (p *activeShiftPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case dataMsg:
		switch msg.key {
		case keyActiveShift():
			p.loading = false
			if msg.err != nil {
				if api.IsNotFound(msg.err) {
					p.noShift = true
					p.shift = nil
					p.loadErr = ""
				} else if !api.IsUnauthorized(msg.err) {
					p.loadErr = "Could not load the active shift. " + msg.err.Error()
				}
				break
			}
			p.noShift = false
			p.loadErr = ""
			p.shift = msg.value.(*api.Shift)
		case keyShiftGroups():
			if msg.err == nil {
				p.groups = msg.value.([]api.ShiftGroup)
			}
		}

	case mutationMsg:
		if msg.tag == "assignGroup" {
			p.assigning = false
			if msg.err == nil {
				return p, p.fetchShift()
			}
			p.loadErr = "Could not assign the group. " + msg.err.Error()
			return p, nil
		}
		// Every panel sees the result so the issuing one settles its form
		// state even if the user switched tabs while the save was in
		// flight; panels filter by tag. On success refetch the shift.
		// Keys the mutation did not invalidate resolve from cache, so
		// this only hits the network when the shift actually changed.
		cmds := make([]tea.Cmd, 0, len(p.panels)+1)
		for i := range p.panels {
			var cmd tea.Cmd
			p.panels[i], cmd = p.panels[i].update(msg, p.shift)
			cmds = append(cmds, cmd)
		}
		if msg.err == nil {
			cmds = append(cmds, p.fetchShift())
		}
		return p, tea.Batch(cmds...)

	case tea.KeyMsg:
		if p.shift != nil && p.shift.ScheduledGroupID == nil {
			return p, p.updateAssignGroup(msg)
		}
		switch msg.String() {
		case "]":
			p.panelIdx = (p.panelIdx + 1) % len(p.panels)
			return p, p.panels[p.panelIdx].init()
		case "[":
			p.panelIdx = (p.panelIdx - 1 + len(p.panels)) % len(p.panels)
			return p, p.panels[p.panelIdx].init()
		}
	}

	var cmd tea.Cmd
	p.panels[p.panelIdx], cmd = p.panels[p.panelIdx].update(msg, p.shift)
	return p, cmd
}

// updateAssignGroup handles the group picker shown when the shift has no
// scheduled group yet. Assigning generates the attendance sheet
// server-side, so both the shift and its attendance go stale.
func (p *activeShiftPage) updateAssignGroup(msg tea.KeyMsg) tea.Cmd {
	if p.assigning {
		return nil
	}
	switch msg.String() {
	case "up", "k":
		if p.groupCursor > 0 {
			p.groupCursor--
		}
	case "down", "j":
		if p.groupCursor < len(p.groups)-1 {
			p.groupCursor++
		}
	case "enter":
		if len(p.groups) == 0 {
			return nil
		}
		p.assigning = true
		shiftID := p.shift.ID
		groupID := p.groups[p.groupCursor].ID
		return mutateCmd(p.app, "assignGroup", func(ctx context.Context) error {
			_, err := p.app.Client.AssignGroup(ctx, shiftID, groupID)
			return err
		}, keyActiveShift(), keyAttendance(shiftID))
	}
	return nil
}

func (p *activeShiftPage) View(width int) string {
	s := p.app.Styles

	if p.loading {
		return s.Content.Render(s.Muted.Render("Loading active shift..."))
	}
	if p.loadErr != "" {
		return s.Content.Render(s.Error.Render(p.loadErr))
	}
	if p.noShift {
		var b strings.Builder
		b.WriteString(s.Title.Render("No Active Shift"))
		b.WriteString("\n")
		b.WriteString("You have no shift assigned to you right now.\n")
		b.WriteString(s.Muted.Render("A shift opens when a handover names you as the incoming superintendent."))
		return s.Content.Render(b.String())
	}

	var b strings.Builder
	b.WriteString(s.Title.Render(fmt.Sprintf("Shift ID: %d", p.shift.ID)))
	b.WriteString("\n")
	b.WriteString(s.Muted.Render(fmt.Sprintf("Started %s · Status %s",
		p.shift.StartTime.Format("2006-01-02 15:04"), p.shift.Status)))
	b.WriteString("\n\n")

	if p.shift.ScheduledGroupID == nil {
		b.WriteString(p.viewAssignGroup(s))
		return s.Content.Render(b.String())
	}

	b.WriteString(p.viewTabs(s))
	b.WriteString("\n\n")
	b.WriteString(p.panels[p.panelIdx].view(s, p.shift, width))
	b.WriteString("\n")
	b.WriteString(s.Muted.Render("[ / ] switch panel"))
	return s.Content.Render(b.String())
}

func (p *activeShiftPage) viewAssignGroup(s ui.Styles) string {
	var b strings.Builder
	b.WriteString(s.Warning.Render("This shift has no work group assigned yet."))
	b.WriteString("\n")
	b.WriteString("Select the on-duty group to generate the attendance sheet:\n\n")
	if len(p.groups) == 0 {
		b.WriteString(s.Muted.Render("Loading groups..."))
		return b.String()
	}
	for i, g := range p.groups {
		line := fmt.Sprintf("  %s (%d members)", g.Name, len(g.Members))
		if i == p.groupCursor {
			line = s.Selected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if p.assigning {
		b.WriteString(s.Muted.Render("Assigning..."))
	} else {
		b.WriteString(s.Muted.Render("enter to assign"))
	}
	return b.String()
}

func (p *activeShiftPage) viewTabs(s ui.Styles) string {
	parts := make([]string, len(p.panels))
	for i, pn := range p.panels {
		if i == p.panelIdx {
			parts[i] = s.Badge.Render(pn.title())
		} else {
			parts[i] = s.Muted.Render(pn.title())
		}
	}
	return strings.Join(parts, " ")
}
