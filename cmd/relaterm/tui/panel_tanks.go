package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"relaterm/cmd/relaterm/ui"
	"relaterm/internal/api"
)

// tanksPanel records level readings against the resource tank catalog.
type tanksPanel struct {
	app *App

	tanks  []api.Tank
	cursor int

	levelInput textinput.Model
	entering   bool
	saving     bool
	errMsg     string
	lastSaved  string
}

func newTanksPanel(app *App) *tanksPanel {
	in := textinput.New()
	in.Placeholder = "level in liters"
	in.CharLimit = 16
	return &tanksPanel{app: app, levelInput: in}
}

func (p *tanksPanel) title() string { return "Tanks" }

func (p *tanksPanel) init() tea.Cmd {
	return fetchCmd(p.app, keyTanks(), func(ctx context.Context) ([]api.Tank, error) {
		return p.app.Client.ListTanks(ctx)
	})
}

func (p *tanksPanel) update(msg tea.Msg, shift *api.Shift) (panel, tea.Cmd) {
	switch msg := msg.(type) {
	case dataMsg:
		if msg.key == keyTanks() && msg.err == nil {
			p.tanks = msg.value.([]api.Tank)
		}
		return p, nil

	case mutationMsg:
		if msg.tag != "tankReading" {
			return p, nil
		}
		p.saving = false
		if msg.err != nil {
			p.errMsg = "Could not record the reading. " + msg.err.Error()
			return p, nil
		}
		p.errMsg = ""
		p.entering = false
		p.lastSaved = p.tanks[p.cursor].Name
		p.levelInput.SetValue("")
		return p, nil

	case tea.KeyMsg:
		if p.saving || len(p.tanks) == 0 || shift == nil {
			return p, nil
		}
		if p.entering {
			switch msg.String() {
			case "esc":
				p.entering = false
				return p, nil
			case "enter":
				level, err := strconv.ParseFloat(strings.TrimSpace(p.levelInput.Value()), 64)
				if err != nil || level < 0 {
					p.errMsg = "Level must be a non-negative number of liters."
					return p, nil
				}
				tank := p.tanks[p.cursor]
				if level > tank.CapacityLiters {
					p.errMsg = fmt.Sprintf("Level exceeds %s capacity (%.0f L).", tank.Name, tank.CapacityLiters)
					return p, nil
				}
				p.saving = true
				p.errMsg = ""
				in := api.TankReadingCreate{
					TankID:           tank.ID,
					LevelLiters:      level,
					ReadingTimestamp: time.Now(),
				}
				shiftID := shift.ID
				return p, mutateCmd(p.app, "tankReading", func(ctx context.Context) error {
					_, err := p.app.Client.CreateTankReading(ctx, shiftID, in)
					return err
				}, keyActiveShift())
			}
			var cmd tea.Cmd
			p.levelInput, cmd = p.levelInput.Update(msg)
			return p, cmd
		}
		switch msg.String() {
		case "up", "k":
			if p.cursor > 0 {
				p.cursor--
			}
		case "down", "j":
			if p.cursor < len(p.tanks)-1 {
				p.cursor++
			}
		case "enter", "n":
			p.entering = true
			p.errMsg = ""
			p.levelInput.Focus()
			return p, textinput.Blink
		}
	}
	return p, nil
}

func (p *tanksPanel) view(s ui.Styles, shift *api.Shift, width int) string {
	var b strings.Builder
	if len(p.tanks) == 0 {
		b.WriteString(s.Muted.Render("Loading tanks..."))
		return b.String()
	}

	tbl := ui.NewTable("Tank", "Resource", "Capacity (L)")
	tbl.Cursor = p.cursor
	for _, t := range p.tanks {
		tbl.Rows = append(tbl.Rows, []string{t.Name, t.ResourceType, fmt.Sprintf("%.0f", t.CapacityLiters)})
	}
	b.WriteString(tbl.Render())

	if p.entering {
		b.WriteString("\nLevel: " + p.levelInput.View() + "\n")
	}
	if p.errMsg != "" {
		b.WriteString(s.Error.Render(p.errMsg))
		b.WriteString("\n")
	}
	switch {
	case p.saving:
		b.WriteString(s.Muted.Render("Saving..."))
	case p.lastSaved != "":
		b.WriteString(s.Success.Render("Reading recorded for "+p.lastSaved) + "  " + s.Muted.Render("enter new reading"))
	default:
		b.WriteString(s.Muted.Render("enter record a reading"))
	}
	return b.String()
}
