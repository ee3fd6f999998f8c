package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relaterm/internal/api"
	"relaterm/internal/querycache"
)

// fakeBackend serves /token and /users/me with controllable outcomes.
type fakeBackend struct {
	*httptest.Server
	password    string
	validTokens map[string]bool
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{password: "secret", validTokens: map[string]bool{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostFormValue("password") != b.password {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail": "Incorrect username or password"}`))
			return
		}
		b.validTokens["tok-good"] = true
		_ = json.NewEncoder(w).Encode(api.TokenResponse{AccessToken: "tok-good", TokenType: "bearer"})
	})
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		if !b.validTokens[bearer(r)] {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail": "Could not validate credentials"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(api.User{ID: 1, Username: "super1", RPE: "Z001", Role: api.RoleShiftSuperintendent})
	})

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

func bearer(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) {
		return h[len(prefix):]
	}
	return ""
}

func newStore(t *testing.T, backend *fakeBackend, tokens TokenStore) *Store {
	t.Helper()
	var store *Store
	client := api.New(backend.URL, api.WithTokenSource(func() string {
		if store == nil {
			return ""
		}
		return store.Token()
	}))
	store = New(client, tokens, querycache.New(), nil)
	return store
}

func TestLoginSuccess(t *testing.T) {
	backend := newFakeBackend(t)
	tokens := &MemoryTokenStore{}
	s := newStore(t, backend, tokens)

	require.NoError(t, s.Login(context.Background(), "super1", "secret"))

	assert.Equal(t, "tok-good", s.Token())
	require.NotNil(t, s.User())
	assert.Equal(t, "super1", s.User().Username)
	assert.Equal(t, api.RoleShiftSuperintendent, s.User().Role)
	assert.False(t, s.IsLoading())
	assert.Empty(t, s.Err())

	persisted, _ := tokens.Load()
	assert.Equal(t, "tok-good", persisted)
}

func TestLoginFailureLeavesNoSession(t *testing.T) {
	backend := newFakeBackend(t)
	tokens := &MemoryTokenStore{}
	s := newStore(t, backend, tokens)

	err := s.Login(context.Background(), "super1", "wrong")
	require.Error(t, err)

	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
	assert.False(t, s.IsLoading())
	assert.Equal(t, "Incorrect username or password", s.Err())

	persisted, _ := tokens.Load()
	assert.Empty(t, persisted, "no partial token may survive a failed login")
}

func TestLoginErrorFallsBackToGenericMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := api.New(srv.URL, api.WithRetryMax(0))
	s := New(client, &MemoryTokenStore{}, querycache.New(), nil)

	require.Error(t, s.Login(context.Background(), "u", "p"))
	assert.Equal(t, "Login failed. Please check your credentials.", s.Err())
}

func TestLogoutClearsEverything(t *testing.T) {
	backend := newFakeBackend(t)
	tokens := &MemoryTokenStore{}
	cache := querycache.New()

	var s *Store
	client := api.New(backend.URL, api.WithTokenSource(func() string {
		if s == nil {
			return ""
		}
		return s.Token()
	}))
	s = New(client, tokens, cache, nil)

	require.NoError(t, s.Login(context.Background(), "super1", "secret"))
	_, _ = cache.Get(context.Background(), querycache.NewKey("equipment"), func(ctx context.Context) (any, error) {
		return "stale", nil
	})
	require.Equal(t, 1, cache.Len())

	s.Logout()

	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
	assert.Empty(t, s.Err())
	assert.Equal(t, 0, cache.Len(), "logout must drop all cached queries")
	persisted, _ := tokens.Load()
	assert.Empty(t, persisted)
}

func TestCheckAuthRehydratesValidToken(t *testing.T) {
	backend := newFakeBackend(t)
	backend.validTokens["tok-good"] = true

	tokens := &MemoryTokenStore{}
	require.NoError(t, tokens.Save("tok-good"))
	s := newStore(t, backend, tokens)

	require.Equal(t, "tok-good", s.Token(), "persisted token loads at construction")
	assert.Nil(t, s.User())

	s.CheckAuth(context.Background())

	require.NotNil(t, s.User())
	assert.Equal(t, "super1", s.User().Username)
	assert.False(t, s.IsLoading())
}

func TestCheckAuthFailureIsSilent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	tokens := &MemoryTokenStore{}
	require.NoError(t, tokens.Save("tok-old"))

	var s *Store
	client := api.New(srv.URL, api.WithRetryMax(0), api.WithTokenSource(func() string {
		if s == nil {
			return ""
		}
		return s.Token()
	}))
	s = New(client, tokens, querycache.New(), nil)

	s.CheckAuth(context.Background())

	assert.Nil(t, s.User())
	assert.Empty(t, s.Err(), "rehydration failures surface no login error")
	assert.Equal(t, "tok-old", s.Token(), "a transient failure does not discard the persisted token")
	assert.False(t, s.IsLoading())
}

func TestCheckAuthNoTokenIsNoop(t *testing.T) {
	backend := newFakeBackend(t)
	s := newStore(t, backend, &MemoryTokenStore{})

	s.CheckAuth(context.Background())
	assert.Nil(t, s.User())
	assert.Empty(t, s.Token())
}
