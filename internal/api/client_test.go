package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ggokuldas06/LegalAI/internal/credstore"
)

// testBackend is an httptest server that counts hits per path and lets
// each test script the /auth/token/refresh behavior.
type testBackend struct {
	*httptest.Server
	targetHits  atomic.Int64
	refreshHits atomic.Int64

	// refreshOK controls whether the refresh endpoint succeeds.
	refreshOK bool
	// acceptToken is the only bearer token /target answers 200 to.
	acceptToken string
}

func newTestBackend(t *testing.T, acceptToken string, refreshOK bool) *testBackend {
	t.Helper()
	b := &testBackend{refreshOK: refreshOK, acceptToken: acceptToken}

	mux := http.NewServeMux()
	mux.HandleFunc("/target", func(w http.ResponseWriter, r *http.Request) {
		b.targetHits.Add(1)
		auth := r.Header.Get("Authorization")
		if auth != "Bearer "+b.acceptToken {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "token expired"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]string{"ok": "yes"}})
	})
	mux.HandleFunc("/auth/token/refresh", func(w http.ResponseWriter, r *http.Request) {
		b.refreshHits.Add(1)
		if r.Header.Get("Authorization") != "" {
			t.Error("refresh call must not carry a bearer token")
		}
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotEmpty(t, body["refresh"], "refresh call must carry the refresh token in its body")
		if !b.refreshOK {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"error": "refresh token expired"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access": "fresh-access"})
	})

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

func TestDoValidTokenSingleCall(t *testing.T) {
	backend := newTestBackend(t, "good-access", true)
	store := credstore.NewMemStore()
	require.NoError(t, store.Set(credstore.Pair{Access: "good-access", Refresh: "ref"}))
	client := New(backend.URL, store)

	var out map[string]string
	err := client.Do(context.Background(), http.MethodGet, "/target", nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "yes", out["ok"])
	assert.EqualValues(t, 1, backend.targetHits.Load(), "exactly one call reaches the endpoint")
	assert.EqualValues(t, 0, backend.refreshHits.Load(), "no refresh attempted")
}

func TestDoRefreshAndReplayOnce(t *testing.T) {
	backend := newTestBackend(t, "fresh-access", true)
	store := credstore.NewMemStore()
	require.NoError(t, store.Set(credstore.Pair{Access: "stale-access", Refresh: "ref-keep"}))
	client := New(backend.URL, store)

	var out map[string]string
	err := client.Do(context.Background(), http.MethodGet, "/target", nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "yes", out["ok"])

	assert.EqualValues(t, 2, backend.targetHits.Load(), "original + one replay")
	assert.EqualValues(t, 1, backend.refreshHits.Load(), "exactly one refresh call")

	pair := store.Get()
	assert.Equal(t, "fresh-access", pair.Access, "store holds the new access token")
	assert.Equal(t, "ref-keep", pair.Refresh, "refresh token is not rotated")
}

func TestDoRefreshFailureClearsCredentials(t *testing.T) {
	backend := newTestBackend(t, "whatever", false)
	store := credstore.NewMemStore()
	require.NoError(t, store.Set(credstore.Pair{Access: "stale", Refresh: "dead-ref"}))
	client := New(backend.URL, store)

	err := client.Do(context.Background(), http.MethodGet, "/target", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionExpired), "refresh failure surfaces as session expiry")
	assert.Contains(t, err.Error(), "refresh token expired", "the refresh error is returned, not the original 401")

	assert.Equal(t, credstore.Pair{}, store.Get(), "both credentials wiped")
	assert.EqualValues(t, 1, backend.targetHits.Load(), "no replay after failed refresh")
	assert.EqualValues(t, 1, backend.refreshHits.Load())
}

func TestDoNoRefreshTokenPropagatesOriginal401(t *testing.T) {
	backend := newTestBackend(t, "whatever", true)
	store := credstore.NewMemStore()
	require.NoError(t, store.Set(credstore.Pair{Access: "stale"}))
	client := New(backend.URL, store)

	err := client.Do(context.Background(), http.MethodGet, "/target", nil, nil)
	require.Error(t, err)
	assert.True(t, IsAuthError(err), "original 401 is surfaced")
	assert.False(t, errors.Is(err, ErrSessionExpired))
	assert.EqualValues(t, 1, backend.targetHits.Load())
	assert.EqualValues(t, 0, backend.refreshHits.Load())
	// Credentials left as they were; clearing is only the refresh
	// failure path's job.
	assert.Equal(t, "stale", store.Get().Access)
}

func TestDoReplayFailingAgainIsNotRetried(t *testing.T) {
	// Refresh hands out a token the target still rejects: the replay's
	// 401 must come back directly with no second refresh.
	backend := newTestBackend(t, "never-matches", true)
	store := credstore.NewMemStore()
	require.NoError(t, store.Set(credstore.Pair{Access: "stale", Refresh: "ref"}))
	client := New(backend.URL, store)

	err := client.Do(context.Background(), http.MethodGet, "/target", nil, nil)
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.EqualValues(t, 2, backend.targetHits.Load(), "original + exactly one replay")
	assert.EqualValues(t, 1, backend.refreshHits.Load(), "refresh not re-attempted")
}

func TestDoUnauthenticatedCallProceeds(t *testing.T) {
	var sawAuth atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			sawAuth.Store(true)
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]string{"status": "ok"}})
	}))
	defer srv.Close()

	client := New(srv.URL, credstore.NewMemStore())
	var out map[string]string
	require.NoError(t, client.Do(context.Background(), http.MethodGet, "/health/check", nil, &out))
	assert.Equal(t, "ok", out["status"])
	assert.False(t, sawAuth.Load(), "no bearer header without an access token")
}

func TestDoServerErrorTextPassedThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Document 42 not found"})
	}))
	defer srv.Close()

	client := New(srv.URL, credstore.NewMemStore())
	err := client.Do(context.Background(), http.MethodPost, "/chat", map[string]string{}, nil)
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Document 42 not found", apiErr.Message)
}

func TestDoGenericMessageWhenServerSilent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL, credstore.NewMemStore())
	err := client.Do(context.Background(), http.MethodGet, "/whatever", nil, nil)
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, msgRequestFailed, apiErr.Message)
}

func TestDoMultipartReplaysAfterRefresh(t *testing.T) {
	var uploads atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/documents/upload", func(w http.ResponseWriter, r *http.Request) {
		uploads.Add(1)
		if r.Header.Get("Authorization") != "Bearer fresh-access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "contract.txt", hdr.Filename)
		assert.Equal(t, "lease agreement", r.FormValue("title"))
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"id": 7}})
	})
	mux.HandleFunc("/auth/token/refresh", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access": "fresh-access"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := credstore.NewMemStore()
	require.NoError(t, store.Set(credstore.Pair{Access: "stale", Refresh: "ref"}))
	client := New(srv.URL, store)

	var out struct {
		ID int `json:"id"`
	}
	err := client.DoMultipart(context.Background(), "/documents/upload",
		FormFile{Field: "file", Filename: "contract.txt", Reader: strings.NewReader("body text")},
		map[string]string{"title": "lease agreement"}, &out)
	require.NoError(t, err)
	assert.Equal(t, 7, out.ID)
	assert.EqualValues(t, 2, uploads.Load(), "upload replayed intact after refresh")
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health/check", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]string{"status": "healthy"}})
	}))
	defer srv.Close()

	client := New(srv.URL, credstore.NewMemStore())
	hs, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", hs.Status)
}
