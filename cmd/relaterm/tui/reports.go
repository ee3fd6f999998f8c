package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"relaterm/cmd/relaterm/ui"
	"relaterm/internal/api"
)

const reportPageSize = 20

// reportsPage browses the closed-shift archive. The list can be narrowed
// by operational date and shift designator; opening a row loads the full
// report with its logs.
type reportsPage struct {
	app *App

	reports []api.Report
	loaded  bool
	cursor  int
	offset  int

	dateInput       textinput.Model
	designatorInput textinput.Model
	filtering       bool
	filterFocus     int
	date            string
	designator      string

	detail   *api.Report
	detailID int
	errMsg   string
}

func newReportsPage(app *App) *reportsPage {
	date := textinput.New()
	date.Placeholder = "YYYY-MM-DD"
	date.CharLimit = 10

	designator := textinput.New()
	designator.Placeholder = "1, 2 or 3"
	designator.CharLimit = 1

	return &reportsPage{app: app, dateInput: date, designatorInput: designator}
}

func (p *reportsPage) fetchList() tea.Cmd {
	date, designator, offset := p.date, p.designator, p.offset
	return fetchCmd(p.app, keyReports(date, designator, offset), func(ctx context.Context) ([]api.Report, error) {
		return p.app.Client.ListReports(ctx, api.ReportFilter{
			Date:       date,
			Designator: designator,
			Limit:      reportPageSize,
			Offset:     offset,
		})
	})
}

func (p *reportsPage) Init() tea.Cmd { return p.fetchList() }

func (p *reportsPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case dataMsg:
		switch msg.key {
		case keyReports(p.date, p.designator, p.offset):
			if msg.err != nil {
				if !api.IsUnauthorized(msg.err) {
					p.errMsg = "Could not load reports. " + msg.err.Error()
				}
				return p, nil
			}
			p.reports = msg.value.([]api.Report)
			p.loaded = true
			p.errMsg = ""
			if p.cursor >= len(p.reports) {
				p.cursor = 0
			}
		case keyReport(p.detailID):
			if msg.err != nil {
				p.detailID = 0
				p.errMsg = "Could not load the report. " + msg.err.Error()
				return p, nil
			}
			p.detail = msg.value.(*api.Report)
		}
		return p, nil

	case tea.KeyMsg:
		if p.detail != nil || p.detailID != 0 {
			if msg.String() == "esc" {
				p.detail = nil
				p.detailID = 0
			}
			return p, nil
		}
		if p.filtering {
			return p.updateFilter(msg)
		}
		switch msg.String() {
		case "up", "k":
			if p.cursor > 0 {
				p.cursor--
			}
		case "down", "j":
			if p.cursor < len(p.reports)-1 {
				p.cursor++
			}
		case "/", "f":
			p.filtering = true
			p.filterFocus = 0
			p.dateInput.Focus()
			p.designatorInput.Blur()
			return p, textinput.Blink
		case "pgdown", "right":
			if len(p.reports) == reportPageSize {
				p.offset += reportPageSize
				p.loaded = false
				return p, p.fetchList()
			}
		case "pgup", "left":
			if p.offset > 0 {
				p.offset -= reportPageSize
				if p.offset < 0 {
					p.offset = 0
				}
				p.loaded = false
				return p, p.fetchList()
			}
		case "enter":
			if len(p.reports) == 0 {
				return p, nil
			}
			p.detailID = p.reports[p.cursor].ID
			id := p.detailID
			return p, fetchCmd(p.app, keyReport(id), func(ctx context.Context) (*api.Report, error) {
				return p.app.Client.GetReport(ctx, id)
			})
		}
	}
	return p, nil
}

func (p *reportsPage) updateFilter(msg tea.KeyMsg) (page, tea.Cmd) {
	switch msg.String() {
	case "esc":
		p.filtering = false
		p.dateInput.Blur()
		p.designatorInput.Blur()
		return p, nil
	case "tab", "shift+tab":
		p.filterFocus = 1 - p.filterFocus
		if p.filterFocus == 0 {
			p.designatorInput.Blur()
			p.dateInput.Focus()
		} else {
			p.dateInput.Blur()
			p.designatorInput.Focus()
		}
		return p, nil
	case "enter":
		p.filtering = false
		p.dateInput.Blur()
		p.designatorInput.Blur()
		p.date = strings.TrimSpace(p.dateInput.Value())
		p.designator = strings.TrimSpace(p.designatorInput.Value())
		p.offset = 0
		p.loaded = false
		return p, p.fetchList()
	}
	var cmd tea.Cmd
	if p.filterFocus == 0 {
		p.dateInput, cmd = p.dateInput.Update(msg)
	} else {
		p.designatorInput, cmd = p.designatorInput.Update(msg)
	}
	return p, cmd
}

func (p *reportsPage) View(width int) string {
	s := p.app.Styles
	if p.detail != nil {
		return s.Content.Render(p.viewDetail(s, width))
	}
	if p.detailID != 0 {
		return s.Content.Render(s.Muted.Render("Loading report..."))
	}

	var b strings.Builder
	if p.filtering {
		b.WriteString("Date: " + p.dateInput.View() + "   Shift: " + p.designatorInput.View() + "\n")
		b.WriteString(s.Muted.Render("enter apply · esc cancel"))
		b.WriteString("\n\n")
	} else if p.date != "" || p.designator != "" {
		b.WriteString(s.Muted.Render(fmt.Sprintf("Filter: date=%q shift=%q", p.date, p.designator)))
		b.WriteString("\n\n")
	}

	switch {
	case !p.loaded && p.errMsg == "":
		b.WriteString(s.Muted.Render("Loading reports..."))
		b.WriteString("\n")
	case len(p.reports) == 0 && p.errMsg == "":
		b.WriteString(s.Muted.Render("No closed shifts match."))
		b.WriteString("\n")
	default:
		tbl := ui.NewTable("ID", "Date", "Shift", "Group", "Closed")
		tbl.Cursor = p.cursor
		for _, r := range p.reports {
			group := ""
			if r.ScheduledGroup != nil {
				group = r.ScheduledGroup.Name
			}
			closed := ""
			if r.EndTime != nil {
				closed = r.EndTime.Format("2006-01-02 15:04")
			}
			tbl.Rows = append(tbl.Rows, []string{
				fmt.Sprint(r.ID), r.ShiftDate, r.ShiftDesignator, group, closed,
			})
		}
		b.WriteString(tbl.Render())
	}

	if p.errMsg != "" {
		b.WriteString(s.Error.Render(p.errMsg))
		b.WriteString("\n")
	}
	b.WriteString(s.Muted.Render("enter open · / filter · ←/→ page"))
	return s.Content.Render(b.String())
}

func (p *reportsPage) viewDetail(s ui.Styles, width int) string {
	r := p.detail
	var b strings.Builder
	b.WriteString(s.Title.Render(fmt.Sprintf("Shift Report %d", r.ID)))
	b.WriteString("\n")
	end := "open"
	if r.EndTime != nil {
		end = r.EndTime.Format("2006-01-02 15:04")
	}
	b.WriteString(s.Muted.Render(fmt.Sprintf("%s → %s", r.StartTime.Format("2006-01-02 15:04"), end)))
	b.WriteString("\n\n")

	b.WriteString(s.Bold.Render("Events"))
	b.WriteString("\n")
	if len(r.EventLogs) == 0 {
		b.WriteString(s.Muted.Render("none") + "\n")
	}
	for _, e := range r.EventLogs {
		b.WriteString(fmt.Sprintf("  %s  %-20s %s\n", e.Timestamp.Format("15:04"), e.EventType, clip(e.Description, width/2)))
	}

	b.WriteString("\n" + s.Bold.Render("Novelties") + "\n")
	if len(r.NoveltyLogs) == 0 {
		b.WriteString(s.Muted.Render("none") + "\n")
	}
	for _, n := range r.NoveltyLogs {
		b.WriteString(fmt.Sprintf("  %s  %-22s %s\n", n.Timestamp.Format("15:04"), n.NoveltyType, clip(n.Description, width/2)))
	}

	b.WriteString("\n" + s.Bold.Render("Completed tasks") + "\n")
	if len(r.TaskLogs) == 0 {
		b.WriteString(s.Muted.Render("none") + "\n")
	}
	for _, t := range r.TaskLogs {
		name := fmt.Sprint(t.ScheduledTaskID)
		if t.ScheduledTask != nil {
			name = t.ScheduledTask.Name
		}
		b.WriteString(fmt.Sprintf("  %s  %s\n", t.CompletionTime.Format("15:04"), name))
	}

	b.WriteString("\n" + s.Muted.Render("esc back"))
	return b.String()
}
