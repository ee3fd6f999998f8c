// Package tui implements the interactive terminal interface: a root model
// that routes between pages, with all remote reads going through the query
// cache and all session transitions through the session store.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"relaterm/cmd/relaterm/ui"
	"relaterm/internal/api"
	"relaterm/internal/querycache"
	"relaterm/internal/session"
)

// App bundles the dependencies every page needs. It is built once in the
// command layer and injected; pages never reach for globals.
type App struct {
	Client  *api.Client
	Session *session.Store
	Cache   *querycache.Cache
	Logger  *zap.Logger
	Styles  ui.Styles
}

type route int

const (
	routeLogin route = iota
	routeActiveShift
	routeHandover
	routeEquipment
	routePersonnel
	routeReports
)

func (r route) title() string {
	switch r {
	case routeLogin:
		return "Login"
	case routeActiveShift:
		return "Active Shift"
	case routeHandover:
		return "Shift Handover"
	case routeEquipment:
		return "Equipment"
	case routePersonnel:
		return "Personnel"
	case routeReports:
		return "Reports"
	}
	return ""
}

// page is one screen of the interface. Update returns the possibly
// replaced page plus any command to run.
type page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (page, tea.Cmd)
	View(width int) string
}

// checkAuthDoneMsg reports a finished startup rehydration probe.
type checkAuthDoneMsg struct{}

// Model is the root of the interface: it owns the current route, enforces
// the authentication guard, and delegates everything else to the page.
type Model struct {
	app *App

	route    route
	intended *route
	page     page

	width, height int
	notice        string
	checking      bool
	quitting      bool
}

// NewModel builds the root model. When a persisted token exists the model
// starts by probing it; otherwise it starts on the login page.
func NewModel(app *App) Model {
	m := Model{app: app, route: routeLogin}
	m.page = newLoginPage(app)
	if app.Session.Token() != "" {
		m.checking = true
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.page.Init()}
	if m.checking {
		cmds = append(cmds, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			m.app.Session.CheckAuth(ctx)
			return checkAuthDoneMsg{}
		})
	}
	return tea.Batch(cmds...)
}

// homeRoute is the landing page for a role: managers start on the
// equipment catalog, superintendents on their active shift.
func homeRoute(u *api.User) route {
	if u != nil && u.Role == api.RoleOpsManager {
		return routeEquipment
	}
	return routeActiveShift
}

// goTo switches pages, sending unauthenticated users to the login page
// first and remembering where they were headed.
func (m *Model) goTo(r route) tea.Cmd {
	if r != routeLogin && m.app.Session.User() == nil {
		m.intended = &r
		r = routeLogin
	}
	m.route = r
	switch r {
	case routeLogin:
		m.page = newLoginPage(m.app)
	case routeActiveShift:
		m.page = newActiveShiftPage(m.app)
	case routeHandover:
		m.page = newHandoverPage(m.app)
	case routeEquipment:
		m.page = newEquipmentPage(m.app)
	case routePersonnel:
		m.page = newPersonnelPage(m.app)
	case routeReports:
		m.page = newReportsPage(m.app)
	}
	return m.page.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case checkAuthDoneMsg:
		m.checking = false
		if m.app.Session.User() != nil {
			return m, m.goTo(homeRoute(m.app.Session.User()))
		}
		return m, nil

	case UnauthorizedMsg:
		if m.route == routeLogin {
			// A rejected login attempt keeps its inline error; the
			// session-expired path only applies once inside.
			return m, nil
		}
		// The server rejected our token somewhere; drop the session and
		// land on the login page regardless of where the user was.
		m.app.Session.Logout()
		m.intended = nil
		m.notice = "Session expired. Please log in again."
		return m, m.goTo(routeLogin)

	case navigateMsg:
		m.notice = ""
		return m, m.goTo(msg.route)

	case loginDoneMsg:
		if msg.err == nil {
			m.notice = ""
			next := homeRoute(m.app.Session.User())
			if m.intended != nil {
				next = *m.intended
				m.intended = nil
			}
			return m, m.goTo(next)
		}

	case handoverDoneMsg:
		if msg.err == nil {
			// The outgoing superintendent's credentials are no longer
			// valid once the handover commits.
			m.app.Session.Logout()
			m.notice = "Shift handed over. Incoming superintendent must log in."
			return m, m.goTo(routeLogin)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "f1":
			return m, m.goTo(routeActiveShift)
		case "f2":
			return m, m.goTo(routeEquipment)
		case "f3":
			return m, m.goTo(routePersonnel)
		case "f4":
			return m, m.goTo(routeReports)
		case "f5":
			return m, m.goTo(routeHandover)
		case "ctrl+l":
			if m.app.Session.User() != nil {
				m.app.Session.Logout()
				m.intended = nil
				return m, m.goTo(routeLogin)
			}
		}
	}

	var cmd tea.Cmd
	m.page, cmd = m.page.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	s := m.app.Styles
	if m.checking {
		return s.Content.Render(s.Muted.Render("Checking session..."))
	}

	header := "relaterm · " + m.route.title()
	if u := m.app.Session.User(); u != nil {
		header += fmt.Sprintf("  %s (%s)", u.Username, u.Role)
	}

	var b strings.Builder
	b.WriteString(s.Header.Render(header))
	b.WriteString("\n")
	b.WriteString(m.page.View(m.contentWidth()))
	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m Model) contentWidth() int {
	if m.width > 0 {
		return m.width
	}
	return 100
}

func (m Model) footer() string {
	s := m.app.Styles
	hints := "ctrl+c quit"
	if m.app.Session.User() != nil {
		hints = "F1 shift  F2 equipment  F3 personnel  F4 reports  F5 handover  ctrl+l logout  ctrl+c quit"
	}
	line := s.Footer.Render(hints)
	if m.notice != "" {
		line = lipgloss.JoinVertical(lipgloss.Left, s.Info.Render("  "+m.notice), line)
	}
	return line
}
