// Package session owns the durable login state: who the user is, their
// settings and organization profile, and whether they are logged in.
// Every operation returns a plain error carrying a user-facing message;
// nothing here panics past the boundary, and state is never mutated on
// a failed call.
package session

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/ggokuldas06/LegalAI/internal/api"
	"github.com/ggokuldas06/LegalAI/internal/credstore"
)

// User is the normalized profile projection kept in memory.
type User struct {
	ID         int    `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	DateJoined string `json:"date_joined"`
}

// Settings are the user's inference and default-filter settings. The
// server owns the schema; replaced wholesale on every successful fetch
// or update.
type Settings struct {
	Temperature            float64  `json:"temperature"`
	MaxTokens              int      `json:"max_tokens"`
	TopP                   float64  `json:"top_p"`
	TopK                   int      `json:"top_k"`
	DefaultJurisdiction    string   `json:"default_jurisdiction,omitempty"`
	DefaultYearFrom        *int     `json:"default_year_from,omitempty"`
	DefaultYearTo          *int     `json:"default_year_to,omitempty"`
	DefaultKeywordsInclude []string `json:"default_keywords_include,omitempty"`
	DefaultKeywordsExclude []string `json:"default_keywords_exclude,omitempty"`
}

// OrgProfile is the organization-level profile.
type OrgProfile struct {
	Jurisdictions []string `json:"jurisdictions"`
	ClauseSet     []string `json:"clause_set"`
}

// Session orchestrates login, registration, logout and profile state
// over the request pipeline. The credential store is injected and
// shared with the pipeline; Authenticated is always derived from it,
// never cached here.
type Session struct {
	api   *api.Client
	creds credstore.Store
	log   *zap.Logger

	mu         sync.RWMutex
	user       *User
	settings   *Settings
	orgProfile *OrgProfile
}

// New creates a session over an existing pipeline and store.
func New(client *api.Client, creds credstore.Store, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{api: client, creds: creds, log: log}
}

// Authenticated reports whether an access token is present. Reads the
// store directly so it reflects pipeline-side changes (a failed refresh
// wiping the tokens) immediately.
func (s *Session) Authenticated() bool {
	return s.creds.Get().Authenticated()
}

// User returns the cached profile, or nil before the first fetch.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Settings returns the cached settings, or nil before the first fetch.
func (s *Session) Settings() *Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// OrgProfile returns the cached org profile, or nil before the first fetch.
func (s *Session) OrgProfile() *OrgProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orgProfile
}

// tokensPayload is the nested token pair in auth responses.
type tokensPayload struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type authPayload struct {
	User   User          `json:"user"`
	Tokens tokensPayload `json:"tokens"`
}

// Login authenticates and, on success, eagerly fetches the full profile
// so User/Settings/OrgProfile are populated before Login returns.
func (s *Session) Login(ctx context.Context, username, password string) error {
	var out authPayload
	err := s.api.Do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &out)
	if err != nil {
		s.log.Info("login failed", zap.String("username", username), zap.Error(err))
		return err
	}

	if err := s.creds.Set(credstore.Pair{Access: out.Tokens.Access, Refresh: out.Tokens.Refresh}); err != nil {
		return err
	}
	s.log.Info("logged in", zap.String("username", out.User.Username))

	// Callers rely on the profile being populated right after login.
	// The tokens are already stored, so a failed fetch here does not
	// undo the login; it only leaves the profile empty.
	if err := s.FetchProfile(ctx); err != nil {
		s.log.Warn("profile fetch after login failed", zap.Error(err))
	}
	return nil
}

// Register creates an account and stores the issued tokens. Unlike
// Login it does not fetch the profile; only the registration response's
// own user object is kept.
func (s *Session) Register(ctx context.Context, username, email, password string) error {
	var out authPayload
	err := s.api.Do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		s.log.Info("registration failed", zap.String("username", username), zap.Error(err))
		return err
	}

	if err := s.creds.Set(credstore.Pair{Access: out.Tokens.Access, Refresh: out.Tokens.Refresh}); err != nil {
		return err
	}

	s.mu.Lock()
	u := out.User
	s.user = &u
	s.mu.Unlock()

	s.log.Info("registered", zap.String("username", out.User.Username))
	return nil
}

// Logout notifies the server (best effort) and tears down local state.
// The teardown always runs: a failed or unreachable server cannot keep
// the user logged in locally.
func (s *Session) Logout(ctx context.Context) error {
	if refresh := s.creds.Get().Refresh; refresh != "" {
		err := s.api.Do(ctx, http.MethodPost, "/auth/logout", map[string]string{"refresh": refresh}, nil)
		if err != nil {
			s.log.Warn("server logout failed, clearing local session anyway", zap.Error(err))
		}
	}

	s.mu.Lock()
	s.user = nil
	s.settings = nil
	s.orgProfile = nil
	s.mu.Unlock()

	return s.creds.Clear()
}

// profilePayload is the GET /auth/profile response body.
type profilePayload struct {
	ID         int         `json:"id"`
	Username   string      `json:"username"`
	Email      string      `json:"email"`
	DateJoined string      `json:"date_joined"`
	Settings   *Settings   `json:"settings"`
	OrgProfile *OrgProfile `json:"org_profile"`
}

// FetchProfile loads the profile and replaces user, settings and org
// profile wholesale. On failure nothing changes.
func (s *Session) FetchProfile(ctx context.Context) error {
	var out profilePayload
	if err := s.api.Do(ctx, http.MethodGet, "/auth/profile", nil, &out); err != nil {
		return err
	}

	s.mu.Lock()
	s.user = &User{
		ID:         out.ID,
		Username:   out.Username,
		Email:      out.Email,
		DateJoined: out.DateJoined,
	}
	s.settings = out.Settings
	s.orgProfile = out.OrgProfile
	s.mu.Unlock()
	return nil
}

// UpdateSettings sends the new settings; the server's response body
// replaces the cached settings wholesale on success.
func (s *Session) UpdateSettings(ctx context.Context, settings Settings) error {
	var out Settings
	if err := s.api.Do(ctx, http.MethodPut, "/auth/settings", settings, &out); err != nil {
		return err
	}

	s.mu.Lock()
	s.settings = &out
	s.mu.Unlock()
	return nil
}

// UpdateOrgProfile mirrors UpdateSettings for the org profile.
func (s *Session) UpdateOrgProfile(ctx context.Context, profile OrgProfile) error {
	var out OrgProfile
	if err := s.api.Do(ctx, http.MethodPut, "/auth/org-profile", profile, &out); err != nil {
		return err
	}

	s.mu.Lock()
	s.orgProfile = &out
	s.mu.Unlock()
	return nil
}
