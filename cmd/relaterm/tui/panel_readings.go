package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"relaterm/cmd/relaterm/ui"
	"relaterm/internal/api"
)

// readingsPanel records operational parameter readings. Parameter and
// equipment choices come from their catalogs, so the form is only built
// once both have loaded.
type readingsPanel struct {
	app *App

	parameters []api.OperationalParameter
	equipment  []api.Equipment

	form    form
	built   bool
	editing bool
	saving  bool
}

func newReadingsPanel(app *App) *readingsPanel {
	return &readingsPanel{app: app}
}

func (p *readingsPanel) title() string { return "Readings" }

func (p *readingsPanel) init() tea.Cmd {
	return tea.Batch(
		fetchCmd(p.app, keyParameters(), func(ctx context.Context) ([]api.OperationalParameter, error) {
			return p.app.Client.ListParameters(ctx, true)
		}),
		fetchCmd(p.app, keyEquipment(), func(ctx context.Context) ([]api.Equipment, error) {
			return p.app.Client.ListEquipment(ctx)
		}),
	)
}

func (p *readingsPanel) buildForm() {
	params := make([]string, len(p.parameters))
	for i, pr := range p.parameters {
		params[i] = fmt.Sprintf("%s (%s)", pr.Name, pr.Unit)
	}
	units := make([]string, len(p.equipment))
	for i, e := range p.equipment {
		units[i] = e.Name
	}
	p.form = newForm("New Reading",
		selectField("Parameter", params),
		selectField("Equipment", units),
		textField("Value", "numeric value", true),
	)
	p.built = true
}

func (p *readingsPanel) update(msg tea.Msg, shift *api.Shift) (panel, tea.Cmd) {
	switch msg := msg.(type) {
	case dataMsg:
		switch msg.key {
		case keyParameters():
			if msg.err == nil {
				p.parameters = msg.value.([]api.OperationalParameter)
			}
		case keyEquipment():
			if msg.err == nil {
				p.equipment = msg.value.([]api.Equipment)
			}
		}
		if len(p.parameters) > 0 && len(p.equipment) > 0 && !p.built {
			p.buildForm()
		}
		return p, nil

	case mutationMsg:
		if msg.tag != "reading" {
			return p, nil
		}
		p.saving = false
		p.form.busy = false
		if msg.err != nil {
			p.form.err = "Could not record the reading. " + msg.err.Error()
			return p, nil
		}
		p.editing = false
		p.buildForm()
		return p, nil

	case tea.KeyMsg:
		if !p.built || shift == nil {
			return p, nil
		}
		if !p.editing {
			if msg.String() == "n" {
				p.editing = true
			}
			return p, nil
		}
		if msg.String() == "esc" {
			p.editing = false
			p.buildForm()
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
	value, err := strconv.ParseFloat(p.form.value(2), 64)
	if err != nil {
		p.form.err = "Value must be numeric."
		return p, nil
	}
	in := api.ReadingCreate{
		ParameterID: p.parameters[p.form.fields[0].optIdx].ID,
		EquipmentID: p.equipment[p.form.fields[1].optIdx].ID,
		Value:       value,
		Timestamp:   time.Now(),
	}
	p.saving = true
	p.form.busy = true
	p.form.err = ""
	shiftID := shift.ID
	return p, mutateCmd(p.app, "reading", func(ctx context.Context) error {
		_, err := p.app.Client.CreateReading(ctx, shiftID, in)
		return err
	}, keyActiveShift())
}

func (p *readingsPanel) view(s ui.Styles, shift *api.Shift, width int) string {
	if !p.built {
		return s.Muted.Render("Loading parameters...")
	}
	if p.editing {
		return p.form.view(s)
	}

	var b strings.Builder
	if shift == nil || len(shift.OperationalReadings) == 0 {
		b.WriteString(s.Muted.Render("No readings recorded this shift."))
		b.WriteString("\n")
	} else {
		tbl := ui.NewTable("Time", "Parameter", "Equipment", "Value")
		for _, r := range shift.OperationalReadings {
			param, unit := fmt.Sprint(r.ParameterID), ""
			if r.Parameter != nil {
				param, unit = r.Parameter.Name, " "+r.Parameter.Unit
			}
			eq := fmt.Sprint(r.EquipmentID)
			if r.Equipment != nil {
				eq = r.Equipment.Name
			}
			tbl.Rows = append(tbl.Rows, []string{
				r.Timestamp.Format("15:04"), param, eq, fmt.Sprintf("%g%s", r.Value, unit),
			})
		}
		b.WriteString(tbl.Render())
	}
	b.WriteString(s.Muted.Render("n new reading"))
	return b.String()
}
