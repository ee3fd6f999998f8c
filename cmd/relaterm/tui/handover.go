package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"relaterm/internal/api"
)

// handoverPage runs the two-party shift handover: the outgoing
// superintendent re-enters their password, the incoming one enters their
// credentials, and the next on-duty group is chosen. All of it goes to
// the server in a single request; the server alone decides whether the
// handshake is valid.
type handoverPage struct {
	app *App

	shift   *api.Shift
	noShift bool
	loading bool

	groups      []api.ShiftGroup
	groupCursor int

	outgoingPassword textinput.Model
	incomingUsername textinput.Model
	incomingPassword textinput.Model
	focus            int // 0..2 inputs, 3 group picker

	busy   bool
	errMsg string
}

func newHandoverPage(app *App) *handoverPage {
	outPw := textinput.New()
	outPw.Placeholder = "your password"
	outPw.EchoMode = textinput.EchoPassword
	outPw.Focus()

	inUser := textinput.New()
	inUser.Placeholder = "incoming superintendent username"

	inPw := textinput.New()
	inPw.Placeholder = "incoming superintendent password"
	inPw.EchoMode = textinput.EchoPassword

	return &handoverPage{
		app:              app,
		loading:          true,
		outgoingPassword: outPw,
		incomingUsername: inUser,
		incomingPassword: inPw,
	}
}

func (p *handoverPage) Init() tea.Cmd {
	return tea.Batch(
		fetchCmd(p.app, keyActiveShift(), func(ctx context.Context) (*api.Shift, error) {
			return p.app.Client.ActiveShift(ctx)
		}),
		fetchCmd(p.app, keyShiftGroups(), func(ctx context.Context) ([]api.ShiftGroup, error) {
			return p.app.Client.ListGroups(ctx)
		}),
		textinput.Blink,
	)
}

func (p *handoverPage) inputs() []*textinput.Model {
	return []*textinput.Model{&p.outgoingPassword, &p.incomingUsername, &p.incomingPassword}
}

func (p *handoverPage) setFocus(i int) {
	p.focus = i
	for j, in := range p.inputs() {
		if j == i {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

func (p *handoverPage) submit() tea.Cmd {
	outPw := p.outgoingPassword.Value()
	inUser := strings.TrimSpace(p.incomingUsername.Value())
	inPw := p.incomingPassword.Value()
	if outPw == "" || inUser == "" || inPw == "" {
		p.errMsg = "All credential fields are required."
		return nil
	}
	if len(p.groups) == 0 {
		p.errMsg = "A next on-duty group must be selected."
		return nil
	}

	p.busy = true
	p.errMsg = ""
	in := api.HandoverRequest{
		ShiftToCloseID:                 p.shift.ID,
		OutgoingSuperintendentPassword: outPw,
		IncomingSuperintendentUsername: inUser,
		IncomingSuperintendentPassword: inPw,
		NextScheduledGroupID:           p.groups[p.groupCursor].ID,
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return handoverDoneMsg{err: p.app.Client.Handover(ctx, in)}
	}
}

func (p *handoverPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case dataMsg:
		switch msg.key {
		case keyActiveShift():
			p.loading = false
			if msg.err != nil {
				if api.IsNotFound(msg.err) {
					p.noShift = true
				} else if !api.IsUnauthorized(msg.err) {
					p.errMsg = "Could not load the active shift. " + msg.err.Error()
				}
				break
			}
			p.noShift = false
			p.shift = msg.value.(*api.Shift)
		case keyShiftGroups():
			if msg.err == nil {
				p.groups = msg.value.([]api.ShiftGroup)
			}
		}
		return p, nil

	case handoverDoneMsg:
		// Success is handled by the root model; only failures come back
		// to the form.
		p.busy = false
		if msg.err != nil {
			detail := "Handover failed."
			var apiErr *api.APIError
			if errors.As(msg.err, &apiErr) && apiErr.Detail != "" {
				detail = apiErr.Detail
			}
			p.errMsg = detail
			p.outgoingPassword.SetValue("")
			p.incomingPassword.SetValue("")
		}
		return p, nil

	case tea.KeyMsg:
		if p.busy || p.shift == nil {
			return p, nil
		}
		switch msg.String() {
		case "tab", "down":
			p.setFocus((p.focus + 1) % 4)
			return p, nil
		case "shift+tab", "up":
			p.setFocus((p.focus + 3) % 4)
			return p, nil
		case "enter":
			if p.focus < 3 {
				p.setFocus(p.focus + 1)
				return p, nil
			}
			return p, p.submit()
		case "left", "right":
			if p.focus == 3 && len(p.groups) > 0 {
				step := 1
				if msg.String() == "left" {
					step = len(p.groups) - 1
				}
				p.groupCursor = (p.groupCursor + step) % len(p.groups)
				return p, nil
			}
		}
	}

	if p.focus < 3 {
		var cmd tea.Cmd
		in := p.inputs()[p.focus]
		*in, cmd = in.Update(msg)
		return p, cmd
	}
	return p, nil
}

func (p *handoverPage) View(width int) string {
	s := p.app.Styles

	if p.loading {
		return s.Content.Render(s.Muted.Render("Loading active shift..."))
	}
	if p.noShift {
		return s.Content.Render("You have no active shift to hand over.")
	}
	if p.shift == nil {
		return s.Content.Render(s.Error.Render(p.errMsg))
	}

	var b strings.Builder
	b.WriteString(s.Title.Render(fmt.Sprintf("Hand Over Shift %d", p.shift.ID)))
	b.WriteString("\n")
	b.WriteString(s.Muted.Render("Both superintendents must authenticate. On success you will be signed out."))
	b.WriteString("\n\n")

	labels := []string{"Your password", "Incoming username", "Incoming password"}
	for i, in := range p.inputs() {
		label := labels[i]
		if i == p.focus {
			b.WriteString(s.Focused.Render("> " + label))
		} else {
			b.WriteString(s.Muted.Render("  " + label))
		}
		b.WriteString("\n  " + in.View() + "\n")
	}

	groupLabel := "  Next on-duty group"
	if p.focus == 3 {
		groupLabel = s.Focused.Render("> Next on-duty group")
	} else {
		groupLabel = s.Muted.Render(groupLabel)
	}
	b.WriteString(groupLabel + "\n  ")
	if len(p.groups) == 0 {
		b.WriteString(s.Muted.Render("loading groups..."))
	} else {
		b.WriteString("◀ " + p.groups[p.groupCursor].Name + " ▶")
	}
	b.WriteString("\n\n")

	if p.errMsg != "" {
		b.WriteString(s.Error.Render(p.errMsg))
		b.WriteString("\n")
	}
	if p.busy {
		b.WriteString(s.Muted.Render("Handing over..."))
	} else {
		b.WriteString(s.Muted.Render("enter on the group field to hand over"))
	}
	return s.Content.Render(b.String())
}
