package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ggokuldas06/LegalAI/internal/api"
	"github.com/ggokuldas06/LegalAI/internal/credstore"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// newAuthBackend serves login/register/profile/logout the way the real
// backend wraps its responses.
func newAuthBackend(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var logoutHits atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["username"] != "alice" || body["password"] != "s3cret" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"user":   map[string]any{"id": 1, "username": "alice", "email": "alice@example.com"},
				"tokens": map[string]string{"access": "acc-1", "refresh": "ref-1"},
			},
		})
	})
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"data": map[string]any{
				"user":   map[string]any{"id": 2, "username": "bob", "email": "bob@example.com"},
				"tokens": map[string]string{"access": "acc-2", "refresh": "ref-2"},
			},
		})
	})
	mux.HandleFunc("/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "authentication required"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"id": 1, "username": "alice", "email": "alice@example.com",
				"date_joined": "2025-01-15T10:00:00Z",
				"settings":    map[string]any{"temperature": 0.7, "max_tokens": 256, "top_p": 0.9, "top_k": 50},
				"org_profile": map[string]any{"jurisdictions": []string{"US", "EU"}, "clause_set": []string{}},
			},
		})
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		logoutHits.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]string{"message": "logged out"}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &logoutHits
}

func newSession(t *testing.T, baseURL string) (*Session, credstore.Store) {
	t.Helper()
	store := credstore.NewMemStore()
	client := api.New(baseURL, store)
	return New(client, store, nil), store
}

func TestLoginPopulatesProfile(t *testing.T) {
	srv, _ := newAuthBackend(t)
	s, store := newSession(t, srv.URL)

	require.NoError(t, s.Login(context.Background(), "alice", "s3cret"))

	assert.True(t, s.Authenticated())
	assert.Equal(t, credstore.Pair{Access: "acc-1", Refresh: "ref-1"}, store.Get())

	// Profile must be present immediately after login.
	require.NotNil(t, s.User())
	assert.Equal(t, "alice", s.User().Username)
	assert.Equal(t, "2025-01-15T10:00:00Z", s.User().DateJoined)
	require.NotNil(t, s.Settings())
	assert.InDelta(t, 0.7, s.Settings().Temperature, 1e-9)
	require.NotNil(t, s.OrgProfile())
	assert.Equal(t, []string{"US", "EU"}, s.OrgProfile().Jurisdictions)
}

func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	srv, _ := newAuthBackend(t)
	s, store := newSession(t, srv.URL)

	err := s.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials", "server reason is user-facing")

	assert.False(t, s.Authenticated())
	assert.Equal(t, credstore.Pair{}, store.Get())
	assert.Nil(t, s.User())
}

func TestRegisterDoesNotFetchProfile(t *testing.T) {
	var profileHits atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"data": map[string]any{
				"user":   map[string]any{"id": 2, "username": "bob", "email": "bob@example.com"},
				"tokens": map[string]string{"access": "acc-2", "refresh": "ref-2"},
			},
		})
	})
	mux.HandleFunc("/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		profileHits.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s, store := newSession(t, srv.URL)
	require.NoError(t, s.Register(context.Background(), "bob", "bob@example.com", "pw"))

	assert.True(t, s.Authenticated())
	assert.Equal(t, "acc-2", store.Get().Access)
	assert.EqualValues(t, 0, profileHits.Load(), "register must not eagerly fetch the profile")

	// Only the registration response's own user object is kept.
	require.NotNil(t, s.User())
	assert.Equal(t, "bob", s.User().Username)
	assert.Nil(t, s.Settings())
}

func TestLogoutNotifiesServerAndClearsState(t *testing.T) {
	srv, logoutHits := newAuthBackend(t)
	s, store := newSession(t, srv.URL)
	require.NoError(t, s.Login(context.Background(), "alice", "s3cret"))

	require.NoError(t, s.Logout(context.Background()))

	assert.EqualValues(t, 1, logoutHits.Load())
	assert.False(t, s.Authenticated())
	assert.Equal(t, credstore.Pair{}, store.Get())
	assert.Nil(t, s.User())
	assert.Nil(t, s.Settings())
	assert.Nil(t, s.OrgProfile())
}

func TestLogoutSwallowsServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "boom"})
	}))
	defer srv.Close()

	s, store := newSession(t, srv.URL)
	require.NoError(t, store.Set(credstore.Pair{Access: "a", Refresh: "r"}))

	require.NoError(t, s.Logout(context.Background()), "server failure must not block local teardown")
	assert.False(t, s.Authenticated())
	assert.Equal(t, credstore.Pair{}, store.Get())
}

func TestLogoutWithoutRefreshTokenSkipsServerCall(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	s, store := newSession(t, srv.URL)
	require.NoError(t, store.Set(credstore.Pair{Access: "only-access"}))

	require.NoError(t, s.Logout(context.Background()))
	assert.EqualValues(t, 0, hits.Load())
	assert.False(t, s.Authenticated())
}

func TestFetchProfileFailureLeavesStateUnchanged(t *testing.T) {
	srv, _ := newAuthBackend(t)
	s, _ := newSession(t, srv.URL)
	require.NoError(t, s.Login(context.Background(), "alice", "s3cret"))
	before := s.Settings()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "db down"})
	}))
	defer failing.Close()

	// Same session state, pipeline pointed at a failing backend.
	s.api = api.New(failing.URL, s.creds)
	err := s.FetchProfile(context.Background())
	require.Error(t, err)
	assert.Same(t, before, s.Settings(), "settings untouched on failed fetch")
	assert.Equal(t, "alice", s.User().Username)
}

func TestUpdateSettingsReplacesWholesale(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/settings", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var got Settings
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		// Echo back what the server would persist.
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": got})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s, store := newSession(t, srv.URL)
	require.NoError(t, store.Set(credstore.Pair{Access: "a", Refresh: "r"}))

	want := Settings{Temperature: 0.2, MaxTokens: 512, TopP: 0.95, TopK: 40}
	require.NoError(t, s.UpdateSettings(context.Background(), want))
	require.NotNil(t, s.Settings())
	assert.Equal(t, want, *s.Settings())
}

func TestUpdateOrgProfileFailureKeepsOldValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid clause set"})
	}))
	defer srv.Close()

	s, _ := newSession(t, srv.URL)
	err := s.UpdateOrgProfile(context.Background(), OrgProfile{ClauseSet: []string{"x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid clause set")
	assert.Nil(t, s.OrgProfile())
}
