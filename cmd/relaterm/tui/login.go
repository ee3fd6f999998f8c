package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// loginPage collects credentials and drives the session store through a
// login attempt. Errors come back as the store's human-readable message
// and render inline under the form.
type loginPage struct {
	app      *App
	username textinput.Model
	password textinput.Model
	focus    int
	busy     bool
}

func newLoginPage(app *App) *loginPage {
	u := textinput.New()
	u.Placeholder = "username"
	u.CharLimit = 64
	u.Focus()

	p := textinput.New()
	p.Placeholder = "password"
	p.CharLimit = 128
	p.EchoMode = textinput.EchoPassword

	return &loginPage{app: app, username: u, password: p}
}

func (p *loginPage) Init() tea.Cmd { return textinput.Blink }

func (p *loginPage) submit() tea.Cmd {
	username := strings.TrimSpace(p.username.Value())
	password := p.password.Value()
	if username == "" || password == "" {
		return nil
	}
	p.busy = true
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		err := p.app.Session.Login(ctx, username, password)
		return loginDoneMsg{err: err}
	}
}

func (p *loginPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		p.busy = false
		if msg.err != nil {
			p.password.SetValue("")
		}
		return p, nil

	case tea.KeyMsg:
		if p.busy {
			return p, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			p.focus = 1 - p.focus
			if p.focus == 0 {
				p.password.Blur()
				p.username.Focus()
			} else {
				p.username.Blur()
				p.password.Focus()
			}
			return p, nil
		case "enter":
			if p.focus == 0 {
				p.focus = 1
				p.username.Blur()
				p.password.Focus()
				return p, nil
			}
			return p, p.submit()
		}
	}

	var cmd tea.Cmd
	if p.focus == 0 {
		p.username, cmd = p.username.Update(msg)
	} else {
		p.password, cmd = p.password.Update(msg)
	}
	return p, cmd
}

func (p *loginPage) View(width int) string {
	s := p.app.Styles

	var b strings.Builder
	b.WriteString(s.Title.Render("Shift Operations Log"))
	b.WriteString("\n")
	b.WriteString("Username\n  " + p.username.View() + "\n")
	b.WriteString("Password\n  " + p.password.View() + "\n\n")

	if p.busy || p.app.Session.IsLoading() {
		b.WriteString(s.Muted.Render("Signing in..."))
		b.WriteString("\n")
	} else if errMsg := p.app.Session.Err(); errMsg != "" {
		b.WriteString(s.Error.Render(errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(s.Muted.Render("enter to sign in"))
	return s.Content.Render(b.String())
}
