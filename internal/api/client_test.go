package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIsFormEncoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/token", r.URL.Path)
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "superintendent", r.PostFormValue("username"))
		assert.Equal(t, "secret", r.PostFormValue("password"))
		assert.Empty(t, r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(TokenResponse{AccessToken: "tok-1", TokenType: "bearer"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	resp, err := c.Token(context.Background(), "superintendent", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", resp.AccessToken)
}

func TestBearerAndRequestIDAttached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-42", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_ = json.NewEncoder(w).Encode(User{ID: 1, Username: "op", Role: RoleShiftSuperintendent})
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokenSource(func() string { return "tok-42" }))
	u, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "op", u.Username)
}

func TestErrorDetailDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail": "Incorrect username or password"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Me(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Incorrect username or password", apiErr.Detail)
}

func TestNotFoundIsTerminal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail": "No active shift found for this user"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetryMax(3))
	_, err := c.ActiveShift(context.Background())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.EqualValues(t, 1, calls.Load(), "a 404 must not be retried")
}

func TestServerErrorsRetriedBounded(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetryMax(2))
	_, err := c.ListEquipment(context.Background())
	require.Error(t, err)
	assert.EqualValues(t, 3, calls.Load(), "initial attempt plus two retries")
}

func TestServerErrorRecovers(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode([]Equipment{{ID: 1, Name: "Turbine A", Status: EquipmentInService}})
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetryMax(2))
	equipment, err := c.ListEquipment(context.Background())
	require.NoError(t, err)
	require.Len(t, equipment, 1)
	assert.Equal(t, "Turbine A", equipment[0].Name)
}

func TestUnauthorizedHandlerFires(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "Could not validate credentials"}`))
	}))
	defer srv.Close()

	var fired atomic.Int32
	c := New(srv.URL, WithUnauthorizedHandler(func() { fired.Add(1) }))

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.EqualValues(t, 1, fired.Load())
}

func TestCreateUsesExpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/shifts/42/events/", r.URL.Path)
		var in EventLogCreate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "PROTECTION_TRIP", in.EventType)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(EventLog{ID: 7, EventType: in.EventType, ShiftID: 42})
	}))
	defer srv.Close()

	c := New(srv.URL)
	log, err := c.CreateEventLog(context.Background(), 42, EventLogCreate{EventType: "PROTECTION_TRIP", Description: "unit 2 trip"})
	require.NoError(t, err)
	assert.Equal(t, 7, log.ID)
}

func TestDeleteExpectsNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/equipment/3", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL)
	assert.NoError(t, c.DeleteEquipment(context.Background(), 3))
}
