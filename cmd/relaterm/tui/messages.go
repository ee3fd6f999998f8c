package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"relaterm/internal/querycache"
)

// UnauthorizedMsg is delivered when any request comes back 401. The root
// model reacts by clearing the session and returning to the login page.
// Exposed so the transport's unauthorized handler can inject it with
// Program.Send.
type UnauthorizedMsg struct{}

// navigateMsg asks the root model to switch pages.
type navigateMsg struct {
	route route
}

func navigate(r route) tea.Cmd {
	return func() tea.Msg { return navigateMsg{route: r} }
}

// dataMsg carries the result of a cached query fetch.
type dataMsg struct {
	key   querycache.Key
	value any
	err   error
}

// mutationMsg carries the result of a write, tagged so the page that
// issued it can tell its mutations apart.
type mutationMsg struct {
	tag string
	err error
}

// loginDoneMsg reports a finished login attempt.
type loginDoneMsg struct {
	err error
}

// handoverDoneMsg reports a finished handover attempt.
type handoverDoneMsg struct {
	err error
}

const requestTimeout = 30 * time.Second

// fetchCmd resolves a query through the cache off the update loop.
func fetchCmd[T any](app *App, key querycache.Key, fn func(ctx context.Context) (T, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		v, err := querycache.Fetch(ctx, app.Cache, key, fn)
		return dataMsg{key: key, value: v, err: err}
	}
}

// mutateCmd runs a write and invalidates the keys it affects on success.
func mutateCmd(app *App, tag string, fn func(ctx context.Context) error, invalidate ...querycache.Key) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		err := fn(ctx)
		if err == nil {
			app.Cache.Invalidate(invalidate...)
		}
		return mutationMsg{tag: tag, err: err}
	}
}
