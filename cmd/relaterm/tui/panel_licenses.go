package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"relaterm/cmd/relaterm/ui"
	"relaterm/internal/api"
)

// licensesPanel manages CENACE work licenses: the active ones are listed,
// new ones can be opened, and an active license can be closed after a
// confirmation.
type licensesPanel struct {
	app *App

	licenses []api.License
	loaded   bool
	cursor   int

	form    form
	editing bool
	confirm ui.Confirm
	saving  bool
	errMsg  string
}

func newLicensesPanel(app *App) *licensesPanel {
	return &licensesPanel{app: app, form: licenseForm(), confirm: ui.NewConfirm()}
}

func licenseForm() form {
	return newForm("Open License",
		textField("License number", "CENACE license number", true),
		textField("Affected unit", "unit or system under license", true),
		textField("Description", "work description", true),
		textField("Start", "YYYY-MM-DD HH:MM (empty = now)", false),
	)
}

func (p *licensesPanel) title() string { return "Licenses" }

func (p *licensesPanel) init() tea.Cmd {
	return fetchCmd(p.app, keyActiveLicenses(), func(ctx context.Context) ([]api.License, error) {
		return p.app.Client.ListLicenses(ctx, api.LicenseActive)
	})
}

func (p *licensesPanel) update(msg tea.Msg, shift *api.Shift) (panel, tea.Cmd) {
	switch msg := msg.(type) {
	case dataMsg:
		if msg.key == keyActiveLicenses() && msg.err == nil {
			p.licenses = msg.value.([]api.License)
			p.loaded = true
			if p.cursor >= len(p.licenses) {
				p.cursor = 0
			}
		}
		return p, nil

	case mutationMsg:
		switch msg.tag {
		case "createLicense":
			p.saving = false
			p.form.busy = false
			if msg.err != nil {
				p.form.err = "Could not open the license. " + msg.err.Error()
				return p, nil
			}
			p.editing = false
			p.form = licenseForm()
			return p, p.init()
		case "closeLicense":
			p.saving = false
			if msg.err != nil {
				p.errMsg = "Could not close the license. " + msg.err.Error()
				return p, nil
			}
			p.errMsg = ""
			return p, p.init()
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
				p.form = licenseForm()
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
			if p.cursor < len(p.licenses)-1 {
				p.cursor++
			}
		case "n":
			p.editing = true
			p.errMsg = ""
		case "c":
			if len(p.licenses) > 0 {
				lic := p.licenses[p.cursor]
				p.confirm.Show(fmt.Sprintf("Close license %s on %s?", lic.LicenseNumber, lic.AffectedUnit))
			}
		}
	}
	return p, nil
}

func (p *licensesPanel) updateConfirm(msg tea.KeyMsg) (panel, tea.Cmd) {
	switch msg.String() {
	case "esc", "n":
		p.confirm.Hide()
	case "left", "right", "tab":
		p.confirm.Toggle()
	case "y":
		p.confirm.Yes = true
		return p.closeSelected()
	case "enter":
		if p.confirm.Yes {
			return p.closeSelected()
		}
		p.confirm.Hide()
	}
	return p, nil
}

func (p *licensesPanel) closeSelected() (panel, tea.Cmd) {
	p.confirm.Hide()
	p.saving = true
	id := p.licenses[p.cursor].ID
	endTime := time.Now().UTC().Format(time.RFC3339)
	return p, mutateCmd(p.app, "closeLicense", func(ctx context.Context) error {
		_, err := p.app.Client.CloseLicense(ctx, id, endTime)
		return err
	}, keyActiveLicenses())
}

func (p *licensesPanel) updateForm(msg tea.Msg) (panel, tea.Cmd) {
	submitted, cmd := p.form.update(msg)
	if !submitted {
		return p, cmd
	}
	if missing := p.form.missing(); missing != "" {
		p.form.err = missing + " is required."
		return p, nil
	}
	start, err := parseTimeOr(p.form.value(3), time.Now())
	if err != nil {
		p.form.err = "Start must be YYYY-MM-DD HH:MM."
		return p, nil
	}
	in := api.LicenseCreate{
		LicenseNumber: p.form.value(0),
		AffectedUnit:  p.form.value(1),
		Description:   p.form.value(2),
		StartTime:     start,
	}
	p.saving = true
	p.form.busy = true
	p.form.err = ""
	return p, mutateCmd(p.app, "createLicense", func(ctx context.Context) error {
		_, err := p.app.Client.CreateLicense(ctx, in)
		return err
	}, keyActiveLicenses())
}

func (p *licensesPanel) view(s ui.Styles, shift *api.Shift, width int) string {
	if p.editing {
		return p.form.view(s)
	}
	var b strings.Builder
	switch {
	case !p.loaded:
		b.WriteString(s.Muted.Render("Loading licenses..."))
		b.WriteString("\n")
	case len(p.licenses) == 0:
		b.WriteString(s.Muted.Render("No active licenses."))
		b.WriteString("\n")
	default:
		tbl := ui.NewTable("Number", "Unit", "Since", "Description")
		tbl.Cursor = p.cursor
		for _, l := range p.licenses {
			tbl.Rows = append(tbl.Rows, []string{
				l.LicenseNumber, l.AffectedUnit, l.StartTime.Format("01-02 15:04"), clip(l.Description, width/3),
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
		b.WriteString(s.Muted.Render("Saving..."))
	} else {
		b.WriteString(s.Muted.Render("n open license · c close selected"))
	}
	return b.String()
}
