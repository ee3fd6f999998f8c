package tui

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"relaterm/cmd/relaterm/ui"
	"relaterm/internal/api"
	"relaterm/internal/querycache"
	"relaterm/internal/session"
)

// testBackend is a minimal in-memory rendition of the shift-operations
// API, recording every write it receives.
type testBackend struct {
	*httptest.Server

	mu       sync.Mutex
	requests map[string]int
	bodies   map[string][]byte

	noShift  bool
	noGroup  bool
	authFail bool
}

func (b *testBackend) record(r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := r.Method + " " + r.URL.Path
	b.requests[key]++
	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		b.bodies[key] = data
	}
}

func (b *testBackend) count(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[key]
}

func (b *testBackend) body(key string) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[key]
}

func sampleShift() api.Shift {
	groupID := 3
	return api.Shift{
		ID:               42,
		StartTime:        time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC),
		Status:           "OPEN",
		ScheduledGroupID: &groupID,
		EventLogs: []api.EventLog{
			{ID: 1, Timestamp: time.Date(2026, 8, 30, 7, 15, 0, 0, time.UTC), EventType: "UNIT_SYNCHRONIZATION", Description: "unit 1 synchronized", ShiftID: 42},
		},
		NoveltyLogs: []api.NoveltyLog{},
	}
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()
	b := &testBackend{requests: map[string]int{}, bodies: map[string][]byte{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		if b.authFail {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail": "Incorrect username or password"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(api.TokenResponse{AccessToken: "tok", TokenType: "bearer"})
	})
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		_ = json.NewEncoder(w).Encode(api.User{ID: 5, Username: "super1", RPE: "Z001", Role: api.RoleShiftSuperintendent})
	})
	mux.HandleFunc("/shifts/active/me", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		if b.noShift {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail": "No active shift found for this user"}`))
			return
		}
		shift := sampleShift()
		if b.noGroup {
			shift.ScheduledGroupID = nil
		}
		_ = json.NewEncoder(w).Encode(shift)
	})
	mux.HandleFunc("/shifts/42/events/", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(api.EventLog{ID: 2, ShiftID: 42})
	})
	mux.HandleFunc("/shifts/handover", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/equipment/", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		_ = json.NewEncoder(w).Encode([]api.Equipment{
			{ID: 1, Name: "Turbine A", Status: api.EquipmentInService},
			{ID: 2, Name: "Feed Pump 2", Status: api.EquipmentAvailable},
		})
	})
	mux.HandleFunc("/maintenance-tickets/", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode([]api.MaintenanceTicket{
				{ID: 9, EquipmentID: 1, TicketType: api.TicketFaultReport, TicketStatus: api.TicketOpen, Description: "seal leak on feed pump"},
			})
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(api.MaintenanceTicket{ID: 10})
		default:
			_ = json.NewEncoder(w).Encode(api.MaintenanceTicket{ID: 9, TicketStatus: api.TicketInProgress})
		}
	})
	mux.HandleFunc("/personnel/groups/", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		_ = json.NewEncoder(w).Encode([]api.ShiftGroup{
			{ID: 3, Name: "Group A"},
			{ID: 4, Name: "Group B"},
		})
	})

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

func newTestApp(t *testing.T, backend *testBackend) *App {
	t.Helper()
	cache := querycache.New()
	var store *session.Store
	client := api.New(backend.URL, api.WithTokenSource(func() string {
		if store == nil {
			return ""
		}
		return store.Token()
	}))
	store = session.New(client, &session.MemoryTokenStore{}, cache, zap.NewNop())
	return &App{
		Client:  client,
		Session: store,
		Cache:   cache,
		Logger:  zap.NewNop(),
		Styles:  ui.DefaultStyles(),
	}
}

func login(t *testing.T, app *App) {
	t.Helper()
	require.NoError(t, app.Session.Login(context.Background(), "super1", "secret"))
}

func keyRune(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

// pump executes a command chain, feeding resulting messages back into the
// model until it settles.
func pump(t *testing.T, m tea.Model, cmd tea.Cmd) tea.Model {
	t.Helper()
	for i := 0; cmd != nil && i < 16; i++ {
		msg := cmd()
		if msg == nil {
			break
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, c := range batch {
				m = pump(t, m, c)
			}
			return m
		}
		m, cmd = m.Update(msg)
	}
	return m
}

func TestGuardSendsUnauthenticatedUsersToLogin(t *testing.T) {
	backend := newTestBackend(t)
	app := newTestApp(t, backend)

	m := NewModel(app)
	mm, _ := m.Update(navigateMsg{route: routeEquipment})
	m = mm.(Model)

	assert.Equal(t, routeLogin, m.route)
	assert.Contains(t, m.View(), "Username")

	// Logging in lands on the remembered route, not the role home.
	login(t, app)
	mm, cmd := m.Update(loginDoneMsg{})
	m = pump(t, mm, cmd).(Model)

	assert.Equal(t, routeEquipment, m.route)
	assert.Contains(t, m.View(), "Turbine A")
}

func TestRoleHomeAfterPlainLogin(t *testing.T) {
	backend := newTestBackend(t)
	app := newTestApp(t, backend)

	m := NewModel(app)
	login(t, app)
	mm, cmd := m.Update(loginDoneMsg{})
	m = pump(t, mm, cmd).(Model)

	assert.Equal(t, routeActiveShift, m.route, "superintendents land on the active shift")
	assert.Contains(t, m.View(), "Shift ID: 42")
}

func TestUnauthorizedDropsSessionEverywhere(t *testing.T) {
	backend := newTestBackend(t)
	app := newTestApp(t, backend)
	login(t, app)

	m := NewModel(app)
	m.checking = false
	mm, cmd := m.Update(navigateMsg{route: routeEquipment})
	m = pump(t, mm, cmd).(Model)
	require.Equal(t, routeEquipment, m.route)

	mm, _ = m.Update(UnauthorizedMsg{})
	m = mm.(Model)

	assert.Equal(t, routeLogin, m.route)
	assert.Nil(t, app.Session.User())
	assert.Empty(t, app.Session.Token())
	assert.Contains(t, m.View(), "Session expired")
}

func TestActiveShiftRendersShiftID(t *testing.T) {
	backend := newTestBackend(t)
	app := newTestApp(t, backend)
	login(t, app)

	p := newActiveShiftPage(app)
	msg := p.fetchShift()()
	pg, _ := p.Update(msg)

	out := pg.View(100)
	assert.Contains(t, out, "Shift ID: 42")
	assert.Contains(t, out, "unit 1 synchronized")
}

func TestActiveShiftMissingIsAStateNotAnError(t *testing.T) {
	backend := newTestBackend(t)
	backend.noShift = true
	app := newTestApp(t, backend)
	login(t, app)

	p := newActiveShiftPage(app)
	msg := p.fetchShift()()
	pg, _ := p.Update(msg)

	out := pg.View(100)
	assert.Contains(t, out, "No Active Shift")
	assert.NotContains(t, out, "Could not load")
}

func TestEventFormPostsOnceAndInvalidatesShift(t *testing.T) {
	backend := newTestBackend(t)
	app := newTestApp(t, backend)
	login(t, app)

	shift := sampleShift()
	_, err := querycache.Fetch(context.Background(), app.Cache, keyActiveShift(),
		func(ctx context.Context) (*api.Shift, error) { return &shift, nil })
	require.NoError(t, err)

	ep := newEventsPanel(app)
	pn, _ := ep.update(keyRune('n'), &shift)
	ep = pn.(*eventsPanel)
	require.True(t, ep.editing)

	ep.form.fields[2].input.SetValue("unit 2 protection trip")
	ep.form.setFocus(2)
	pn, cmd := ep.update(tea.KeyMsg{Type: tea.KeyEnter}, &shift)
	ep = pn.(*eventsPanel)
	require.NotNil(t, cmd)

	result := cmd().(mutationMsg)
	require.NoError(t, result.err)
	assert.Equal(t, 1, backend.count("POST /shifts/42/events/"))

	var posted api.EventLogCreate
	require.NoError(t, json.Unmarshal(backend.body("POST /shifts/42/events/"), &posted))
	assert.Equal(t, "PROTECTION_TRIP", posted.EventType)
	assert.Equal(t, "unit 2 protection trip", posted.Description)
	assert.False(t, posted.Timestamp.IsZero())

	_, cached := app.Cache.Peek(keyActiveShift())
	assert.False(t, cached, "a recorded event must invalidate the cached shift")

	pn, _ = ep.update(result, &shift)
	ep = pn.(*eventsPanel)
	assert.False(t, ep.editing, "the form closes after a successful save")
}

func TestEventFormRequiresDescription(t *testing.T) {
	backend := newTestBackend(t)
	app := newTestApp(t, backend)
	login(t, app)
	shift := sampleShift()

	ep := newEventsPanel(app)
	ep.editing = true
	ep.form.setFocus(2)
	_, cmd := ep.update(tea.KeyMsg{Type: tea.KeyEnter}, &shift)

	assert.Nil(t, cmd)
	assert.Contains(t, ep.form.err, "required")
	assert.Equal(t, 0, backend.count("POST /shifts/42/events/"))
}

func TestHandoverPostsExactlyOnce(t *testing.T) {
	backend := newTestBackend(t)
	app := newTestApp(t, backend)
	login(t, app)

	hp := newHandoverPage(app)
	shift := sampleShift()
	pg, _ := hp.Update(dataMsg{key: keyActiveShift(), value: &shift})
	hp = pg.(*handoverPage)
	pg, _ = hp.Update(dataMsg{key: keyShiftGroups(), value: []api.ShiftGroup{{ID: 3, Name: "Group A"}, {ID: 4, Name: "Group B"}}})
	hp = pg.(*handoverPage)

	hp.outgoingPassword.SetValue("outpw")
	hp.incomingUsername.SetValue("super2")
	hp.incomingPassword.SetValue("inpw")
	hp.focus = 3
	hp.groupCursor = 1

	pg, cmd := hp.Update(tea.KeyMsg{Type: tea.KeyEnter})
	hp = pg.(*handoverPage)
	require.NotNil(t, cmd)
	require.True(t, hp.busy)

	done := cmd().(handoverDoneMsg)
	require.NoError(t, done.err)
	assert.Equal(t, 1, backend.count("POST /shifts/handover"), "the handover is a single request")

	var posted api.HandoverRequest
	require.NoError(t, json.Unmarshal(backend.body("POST /shifts/handover"), &posted))
	assert.Equal(t, 42, posted.ShiftToCloseID)
	assert.Equal(t, "outpw", posted.OutgoingSuperintendentPassword)
	assert.Equal(t, "super2", posted.IncomingSuperintendentUsername)
	assert.Equal(t, "inpw", posted.IncomingSuperintendentPassword)
	assert.Equal(t, 4, posted.NextScheduledGroupID)
}

func TestHandoverRequiresAllCredentials(t *testing.T) {
	backend := newTestBackend(t)
	app := newTestApp(t, backend)
	login(t, app)

	hp := newHandoverPage(app)
	shift := sampleShift()
	pg, _ := hp.Update(dataMsg{key: keyActiveShift(), value: &shift})
	hp = pg.(*handoverPage)
	pg, _ = hp.Update(dataMsg{key: keyShiftGroups(), value: []api.ShiftGroup{{ID: 3, Name: "Group A"}}})
	hp = pg.(*handoverPage)

	hp.focus = 3
	_, cmd := hp.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Contains(t, hp.errMsg, "required")
	assert.Equal(t, 0, backend.count("POST /shifts/handover"))
}

func TestHandoverSuccessSignsOut(t *testing.T) {
	backend := newTestBackend(t)
	app := newTestApp(t, backend)
	login(t, app)

	m := NewModel(app)
	m.checking = false
	mm, cmd := m.Update(navigateMsg{route: routeActiveShift})
	m = pump(t, mm, cmd).(Model)

	mm, _ = m.Update(handoverDoneMsg{})
	m = mm.(Model)

	assert.Equal(t, routeLogin, m.route)
	assert.Nil(t, app.Session.User())
	assert.Empty(t, app.Session.Token())
	assert.Equal(t, 0, app.Cache.Len(), "handover sign-out drops cached queries")
	assert.Contains(t, m.View(), "handed over")
}

func TestLoginPageShowsServerError(t *testing.T) {
	backend := newTestBackend(t)
	backend.authFail = true
	app := newTestApp(t, backend)

	lp := newLoginPage(app)
	lp.username.SetValue("super1")
	lp.password.SetValue("wrong")
	lp.focus = 1

	pg, cmd := lp.Update(tea.KeyMsg{Type: tea.KeyEnter})
	lp = pg.(*loginPage)
	require.NotNil(t, cmd)
	require.True(t, lp.busy)

	done := cmd().(loginDoneMsg)
	require.Error(t, done.err)
	pg, _ = lp.Update(done)
	lp = pg.(*loginPage)

	assert.False(t, lp.busy)
	assert.Empty(t, lp.password.Value(), "the password field resets on failure")
	assert.Contains(t, lp.View(100), "Incorrect username or password")
}

func TestEquipmentStatusDirtyRows(t *testing.T) {
	backend := newTestBackend(t)
	app := newTestApp(t, backend)
	login(t, app)
	shift := sampleShift()

	ep := newEquipmentStatusPanel(app)
	msg := ep.init()()
	pn, _ := ep.update(msg, &shift)
	ep = pn.(*equipmentStatusPanel)
	require.Len(t, ep.equipment, 2)

	eq := ep.equipment[0]
	assert.False(t, ep.edits.Dirty(eq.ID, serverEdit(eq)))

	pn, _ = ep.update(tea.KeyMsg{Type: tea.KeyRight}, &shift)
	ep = pn.(*equipmentStatusPanel)
	assert.True(t, ep.edits.Dirty(eq.ID, serverEdit(eq)))
	assert.Contains(t, ep.view(app.Styles, &shift, 100), "*")

	// Cycling back around to the server value reads clean again.
	pn, _ = ep.update(tea.KeyMsg{Type: tea.KeyLeft}, &shift)
	ep = pn.(*equipmentStatusPanel)
	assert.False(t, ep.edits.Dirty(eq.ID, serverEdit(eq)))
}

func TestConfirmGuardsEquipmentDelete(t *testing.T) {
	backend := newTestBackend(t)
	app := newTestApp(t, backend)
	login(t, app)

	p := newEquipmentPage(app)
	msg := p.Init()()
	pg, _ := p.Update(msg)
	p = pg.(*equipmentPage)
	require.Len(t, p.equipment, 2)

	pg, _ = p.Update(keyRune('d'))
	p = pg.(*equipmentPage)
	require.True(t, p.confirm.Visible)

	// Enter with the default No selected must not delete.
	pg, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	p = pg.(*equipmentPage)
	assert.Nil(t, cmd)
	assert.False(t, p.confirm.Visible)
	assert.Equal(t, 0, backend.count("DELETE /equipment/1"))
}

// drainPage executes a page command tree, feeding messages back until it
// settles.
func drainPage(t *testing.T, p page, cmd tea.Cmd) page {
	t.Helper()
	if cmd == nil {
		return p
	}
	msg := cmd()
	if msg == nil {
		return p
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			p = drainPage(t, p, c)
		}
		return p
	}
	p, cmd = p.Update(msg)
	return drainPage(t, p, cmd)
}

// drainPanel is drainPage for a single panel.
func drainPanel(t *testing.T, pn panel, cmd tea.Cmd, shift *api.Shift) panel {
	t.Helper()
	if cmd == nil {
		return pn
	}
	msg := cmd()
	if msg == nil {
		return pn
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			pn = drainPanel(t, pn, c, shift)
		}
		return pn
	}
	pn, cmd = pn.update(msg, shift)
	return drainPanel(t, pn, cmd, shift)
}

func TestAssignGroupPickerLoadsGroups(t *testing.T) {
	backend := newTestBackend(t)
	backend.noGroup = true
	app := newTestApp(t, backend)
	login(t, app)

	p := newActiveShiftPage(app)
	pg := drainPage(t, p, p.Init())
	p = pg.(*activeShiftPage)

	require.Equal(t, 1, backend.count("GET /personnel/groups/"))
	require.Len(t, p.groups, 2)

	out := p.View(100)
	assert.Contains(t, out, "no work group assigned")
	assert.Contains(t, out, "Group A")
	assert.NotContains(t, out, "Loading groups...")
}

func TestAttendanceShiftChangeKeepsTheTriggeringMessage(t *testing.T) {
	backend := newTestBackend(t)
	app := newTestApp(t, backend)
	login(t, app)
	shift := sampleShift()

	ap := newAttendancePanel(app)
	employees := []api.Employee{{ID: 7, FullName: "Ana Ruiz"}, {ID: 8, FullName: "Luis Vega"}}
	pn, cmd := ap.update(dataMsg{key: keyEmployees(), value: employees}, &shift)
	ap = pn.(*attendancePanel)

	require.NotNil(t, cmd, "a shift change queues the sheet fetch")
	assert.Equal(t, shift.ID, ap.shiftID)
	assert.Len(t, ap.employees, 2, "the employee list lands even while the sheet is stale")

	rec := api.AttendanceRecord{
		ID:                1,
		AttendanceStatus:  "PRESENT",
		ShiftID:           shift.ID,
		ScheduledEmployee: employees[0],
		ActualEmployee:    employees[0],
	}
	pn, _ = ap.update(dataMsg{key: keyAttendance(shift.ID), value: []api.AttendanceRecord{rec}}, &shift)
	ap = pn.(*attendancePanel)

	pn, _ = ap.update(keyRune('>'), &shift)
	ap = pn.(*attendancePanel)
	edit := ap.edits.Get(rec.ID, serverAttendance(rec))
	assert.Equal(t, employees[1].ID, edit.ActualID, "substitution cycles through the loaded employees")
}

func TestTicketAdvanceRefetchesTheList(t *testing.T) {
	backend := newTestBackend(t)
	app := newTestApp(t, backend)
	login(t, app)
	shift := sampleShift()

	tp := newTicketsPanel(app)
	pn := drainPanel(t, tp, tp.init(), &shift)
	tp = pn.(*ticketsPanel)
	require.Len(t, tp.tickets, 1)
	require.Equal(t, 1, backend.count("GET /maintenance-tickets/"))

	pn, cmd := tp.update(keyRune('s'), &shift)
	tp = pn.(*ticketsPanel)
	require.NotNil(t, cmd)

	result := cmd().(mutationMsg)
	require.NoError(t, result.err)
	require.Equal(t, 1, backend.count("PUT /maintenance-tickets/9"))

	pn, cmd = tp.update(result, &shift)
	tp = pn.(*ticketsPanel)
	pn = drainPanel(t, pn, cmd, &shift)
	tp = pn.(*ticketsPanel)

	assert.False(t, tp.saving)
	assert.Equal(t, 2, backend.count("GET /maintenance-tickets/"), "a status change refetches the list")
}

func TestMutationResultReachesAPanelAfterSwitching(t *testing.T) {
	backend := newTestBackend(t)
	app := newTestApp(t, backend)
	login(t, app)

	p := newActiveShiftPage(app)
	pg := drainPage(t, p, p.fetchShift())
	p = pg.(*activeShiftPage)
	require.NotNil(t, p.shift)

	ep := p.panels[0].(*eventsPanel)
	ep.editing = true
	ep.form.busy = true

	// The save resolves after the user has moved to another tab.
	pg, _ = p.Update(keyRune(']'))
	p = pg.(*activeShiftPage)
	require.Equal(t, 1, p.panelIdx)

	pg, _ = p.Update(mutationMsg{tag: "createEvent"})
	p = pg.(*activeShiftPage)

	ep = p.panels[0].(*eventsPanel)
	assert.False(t, ep.editing, "the issuing panel settles even when not selected")
	assert.False(t, ep.form.busy)
}
