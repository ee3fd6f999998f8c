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

// rampsPanel records CENACE generation ramps and shows the shift's ramp
// history with its compliance verdicts.
type rampsPanel struct {
	app     *App
	form    form
	editing bool
	saving  bool
}

func newRampsPanel(app *App) *rampsPanel {
	return &rampsPanel{app: app, form: rampForm()}
}

func rampForm() form {
	return newForm("New Generation Ramp",
		textField("CENACE operator", "name of the instructing operator", true),
		textField("Start", "YYYY-MM-DD HH:MM", true),
		textField("End", "YYYY-MM-DD HH:MM", true),
		textField("Initial load (MW)", "", true),
		textField("Final load (MW)", "", true),
		textField("Target rate (MW/min)", "", true),
		textField("Non-compliance reason", "only when the target was missed", false),
	)
}

func (p *rampsPanel) title() string { return "Ramps" }
func (p *rampsPanel) init() tea.Cmd { return nil }

func (p *rampsPanel) update(msg tea.Msg, shift *api.Shift) (panel, tea.Cmd) {
	switch msg := msg.(type) {
	case mutationMsg:
		if msg.tag != "ramp" {
			return p, nil
		}
		p.saving = false
		p.form.busy = false
		if msg.err != nil {
			p.form.err = "Could not record the ramp. " + msg.err.Error()
			return p, nil
		}
		p.editing = false
		p.form = rampForm()
		return p, nil

	case tea.KeyMsg:
		if !p.editing {
			if msg.String() == "n" && shift != nil {
				p.editing = true
			}
			return p, nil
		}
		if msg.String() == "esc" {
			p.editing = false
			p.form = rampForm()
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
	if missing := p.form.missing(); missing != "" {
		p.form.err = missing + " is required."
		return p, nil
	}
	start, err := parseTimeOr(p.form.value(1), time.Time{})
	if err != nil || start.IsZero() {
		p.form.err = "Start must be YYYY-MM-DD HH:MM."
		return p, nil
	}
	end, err := parseTimeOr(p.form.value(2), time.Time{})
	if err != nil || end.IsZero() {
		p.form.err = "End must be YYYY-MM-DD HH:MM."
		return p, nil
	}
	if !end.After(start) {
		p.form.err = "End must be after start."
		return p, nil
	}
	initial, err1 := strconv.ParseFloat(p.form.value(3), 64)
	final, err2 := strconv.ParseFloat(p.form.value(4), 64)
	rate, err3 := strconv.ParseFloat(p.form.value(5), 64)
	if err1 != nil || err2 != nil || err3 != nil || rate <= 0 {
		p.form.err = "Loads and target rate must be numeric (rate above zero)."
		return p, nil
	}
	var reason *string
	if v := p.form.value(6); v != "" {
		reason = &v
	}
	in := api.RampCreate{
		CenaceOperatorName:  p.form.value(0),
		StartTime:           start,
		EndTime:             end,
		InitialLoadMW:       initial,
		FinalLoadMW:         final,
		TargetRampRateMWMin: rate,
		NonComplianceReason: reason,
	}
	p.saving = true
	p.form.busy = true
	p.form.err = ""
	shiftID := shift.ID
	return p, mutateCmd(p.app, "ramp", func(ctx context.Context) error {
		_, err := p.app.Client.CreateRamp(ctx, shiftID, in)
		return err
	}, keyActiveShift())
}

func (p *rampsPanel) view(s ui.Styles, shift *api.Shift, width int) string {
	if p.editing {
		return p.form.view(s)
	}
	var b strings.Builder
	if shift == nil || len(shift.GenerationRamps) == 0 {
		b.WriteString(s.Muted.Render("No generation ramps recorded this shift."))
		b.WriteString("\n")
	} else {
		tbl := ui.NewTable("Start", "Load (MW)", "Rate", "Compliant", "Operator")
		for _, r := range shift.GenerationRamps {
			compliant := "yes"
			if !r.IsCompliant {
				compliant = "NO"
			}
			tbl.Rows = append(tbl.Rows, []string{
				r.StartTime.Format("15:04"),
				fmt.Sprintf("%.0f → %.0f", r.InitialLoadMW, r.FinalLoadMW),
				fmt.Sprintf("%.1f", r.TargetRampRateMWMin),
				compliant,
				r.CenaceOperatorName,
			})
		}
		b.WriteString(tbl.Render())
	}
	b.WriteString(s.Muted.Render("n new ramp"))
	return b.String()
}
