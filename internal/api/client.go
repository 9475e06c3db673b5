// Package api is the authenticated request pipeline. Every outgoing
// call goes through Client.Do, which attaches the bearer token, and on
// a 401 refreshes the access token once and replays the original call
// once. The refresh call itself is never retried.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ggokuldas06/LegalAI/internal/credstore"
)

const (
	// DefaultBaseURL matches the backend's local development address.
	DefaultBaseURL = "http://localhost:8000/api/v1"

	defaultTimeout = 60 * time.Second

	refreshPath = "/auth/token/refresh"
)

// Generic fallbacks shown when the server gave no error text.
const (
	msgRequestFailed = "request failed"
	msgUnauthorized  = "authentication required"
)

// Client dispatches JSON calls against the backend. It is safe for
// concurrent use; overlapping calls that each hit a 401 each get their
// own refresh attempt (last write to the store wins).
type Client struct {
	baseURL string
	http    *http.Client
	creds   credstore.Store
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying transport (used by tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger attaches a logger; the default is a nop logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithTimeout sets the per-request timeout on the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a pipeline client over the given credential store.
func New(baseURL string, creds credstore.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		creds:   creds,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Do sends one logical call: marshal body (if non-nil), attach the
// bearer token when present, dispatch, and decode the {data: ...}
// envelope into out (if non-nil). See doRaw for the 401 handling.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}
	return c.doRaw(ctx, method, path, "application/json", payload, out)
}

// doRaw carries the retry-once state machine. The attempt counter is a
// local, created fresh per logical call: a replay that fails with 401
// again is returned as-is, never retried further.
func (c *Client) doRaw(ctx context.Context, method, path, contentType string, payload []byte, out any) error {
	access := c.creds.Get().Access
	attempts := 0

	for {
		status, body, err := c.send(ctx, method, path, contentType, payload, access)
		if err != nil {
			return fmt.Errorf("%s: %w", msgRequestFailed, err)
		}

		if status == http.StatusUnauthorized && attempts == 0 {
			attempts++

			refresh := c.creds.Get().Refresh
			if refresh == "" {
				// Nothing to renew with; surface the original 401.
				return decodeFailure(status, body)
			}

			newAccess, rerr := c.refreshAccess(ctx, refresh)
			if rerr != nil {
				// The refresh token is dead too. Wipe both tokens and
				// surface the refresh error, not the original 401 -
				// this is the signal to redirect to login.
				if cerr := c.creds.Clear(); cerr != nil {
					c.log.Warn("clearing credentials after failed refresh", zap.Error(cerr))
				}
				c.log.Info("token refresh failed, session ended", zap.Error(rerr))
				return fmt.Errorf("%w: %v", ErrSessionExpired, rerr)
			}

			// The refresh token is not rotated by the backend; keep it.
			pair := c.creds.Get()
			pair.Access = newAccess
			pair.Refresh = refresh
			if serr := c.creds.Set(pair); serr != nil {
				c.log.Warn("persisting refreshed access token", zap.Error(serr))
			}
			access = newAccess
			c.log.Debug("access token refreshed, replaying request",
				zap.String("method", method), zap.String("path", path))
			continue
		}

		if status < 200 || status > 299 {
			return decodeFailure(status, body)
		}
		return decodeSuccess(body, out)
	}
}

// send performs a single HTTP exchange and slurps the body.
func (c *Client) send(ctx context.Context, method, path, contentType string, payload []byte, access string) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

// refreshAccess trades the refresh token for a new access token. The
// call is unauthenticated and is never retried.
func (c *Client) refreshAccess(ctx context.Context, refresh string) (string, error) {
	payload, err := json.Marshal(map[string]string{"refresh": refresh})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", decodeFailure(resp.StatusCode, body)
	}

	var tokens struct {
		Access string `json:"access"`
	}
	if err := json.Unmarshal(body, &tokens); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	if tokens.Access == "" {
		return "", fmt.Errorf("refresh response carried no access token")
	}
	return tokens.Access, nil
}

// decodeFailure turns a non-2xx body into an *Error, passing the server
// error text through verbatim when present.
func decodeFailure(status int, body []byte) error {
	var env envelope
	msg := ""
	if err := json.Unmarshal(body, &env); err == nil {
		msg = env.Error
	}
	if msg == "" {
		if status == http.StatusUnauthorized {
			msg = msgUnauthorized
		} else {
			msg = msgRequestFailed
		}
	}
	return &Error{Status: status, Message: msg}
}

func decodeSuccess(body []byte, out any) error {
	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if env.Data == nil {
		return fmt.Errorf("response carried no data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}
