package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"relaterm/cmd/relaterm/ui"
	"relaterm/internal/api"
)

// tasksPanel is the shift routine checklist: the active scheduled tasks,
// each marked Logged once a completion exists on the current shift.
type tasksPanel struct {
	app *App

	tasks  []api.ScheduledTask
	cursor int

	notesInput textinput.Model
	entering   bool
	saving     bool
	errMsg     string
}

func newTasksPanel(app *App) *tasksPanel {
	in := textinput.New()
	in.Placeholder = "notes (optional)"
	in.CharLimit = 256
	return &tasksPanel{app: app, notesInput: in}
}

func (p *tasksPanel) title() string { return "Tasks" }

func (p *tasksPanel) init() tea.Cmd {
	return fetchCmd(p.app, keyScheduledTasks(), func(ctx context.Context) ([]api.ScheduledTask, error) {
		return p.app.Client.ListScheduledTasks(ctx, true)
	})
}

// loggedTasks indexes the shift's task logs by scheduled task ID.
func loggedTasks(shift *api.Shift) map[int]bool {
	done := make(map[int]bool)
	if shift == nil {
		return done
	}
	for _, tl := range shift.TaskLogs {
		done[tl.ScheduledTaskID] = true
	}
	return done
}

func (p *tasksPanel) update(msg tea.Msg, shift *api.Shift) (panel, tea.Cmd) {
	switch msg := msg.(type) {
	case dataMsg:
		if msg.key == keyScheduledTasks() && msg.err == nil {
			p.tasks = msg.value.([]api.ScheduledTask)
		}
		return p, nil

	case mutationMsg:
		if msg.tag != "taskLog" {
			return p, nil
		}
		p.saving = false
		if msg.err != nil {
			p.errMsg = "Could not log the task. " + msg.err.Error()
			return p, nil
		}
		p.errMsg = ""
		p.entering = false
		p.notesInput.SetValue("")
		return p, nil

	case tea.KeyMsg:
		if p.saving || len(p.tasks) == 0 || shift == nil {
			return p, nil
		}
		if p.entering {
			switch msg.String() {
			case "esc":
				p.entering = false
				return p, nil
			case "enter":
				task := p.tasks[p.cursor]
				var notes *string
				if v := strings.TrimSpace(p.notesInput.Value()); v != "" {
					notes = &v
				}
				p.saving = true
				in := api.TaskLogCreate{
					ScheduledTaskID: task.ID,
					CompletionTime:  time.Now(),
					Notes:           notes,
				}
				shiftID := shift.ID
				return p, mutateCmd(p.app, "taskLog", func(ctx context.Context) error {
					_, err := p.app.Client.CreateTaskLog(ctx, shiftID, in)
					return err
				}, keyActiveShift())
			}
			var cmd tea.Cmd
			p.notesInput, cmd = p.notesInput.Update(msg)
			return p, cmd
		}
		switch msg.String() {
		case "up", "k":
			if p.cursor > 0 {
				p.cursor--
			}
		case "down", "j":
			if p.cursor < len(p.tasks)-1 {
				p.cursor++
			}
		case "enter":
			if loggedTasks(shift)[p.tasks[p.cursor].ID] {
				return p, nil
			}
			p.entering = true
			p.errMsg = ""
			p.notesInput.Focus()
			return p, textinput.Blink
		}
	}
	return p, nil
}

func (p *tasksPanel) view(s ui.Styles, shift *api.Shift, width int) string {
	var b strings.Builder
	if len(p.tasks) == 0 {
		b.WriteString(s.Muted.Render("Loading scheduled tasks..."))
		return b.String()
	}

	done := loggedTasks(shift)
	tbl := ui.NewTable("Task", "Category", "State")
	tbl.Cursor = p.cursor
	for _, t := range p.tasks {
		state := "Pending"
		if done[t.ID] {
			state = "Logged"
		}
		tbl.Rows = append(tbl.Rows, []string{t.Name, t.Category, state})
	}
	b.WriteString(tbl.Render())

	if p.entering {
		b.WriteString("\nNotes: " + p.notesInput.View() + "\n")
	}
	if p.errMsg != "" {
		b.WriteString(s.Error.Render(p.errMsg))
		b.WriteString("\n")
	}
	if p.saving {
		b.WriteString(s.Muted.Render("Saving..."))
	} else {
		b.WriteString(s.Muted.Render("enter mark completed"))
	}
	return b.String()
}
