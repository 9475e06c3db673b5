// Package history browses past chat exchanges stored server-side.
// Pass-through CRUD over the request pipeline.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/ggokuldas06/LegalAI/internal/api"
)

// Entry is one logged chat exchange.
type Entry struct {
	ID        int64           `json:"id"`
	Mode      string          `json:"mode"`
	Prompt    string          `json:"prompt"`
	Response  string          `json:"response"`
	Citations json.RawMessage `json:"citations,omitempty"`
	TokensIn  int             `json:"tokens_in"`
	TokensOut int             `json:"tokens_out"`
	LatencyMS int             `json:"latency_ms"`
	CreatedAt string          `json:"created_at"`
}

// ListParams narrow and page the history listing.
type ListParams struct {
	Mode  string
	Page  int
	Limit int
}

// ExportFilters scope a history export.
type ExportFilters struct {
	Mode     string `json:"mode,omitempty"`
	DateFrom string `json:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty"`
}

// Store keeps the fetched history page, like the web client's store.
type Store struct {
	api *api.Client

	mu      sync.Mutex
	entries []Entry
	total   int
}

func NewStore(client *api.Client) *Store {
	return &Store{api: client}
}

// Entries returns a snapshot of the last fetched page.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Total returns the server-side total from the last fetch.
func (s *Store) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

type listData struct {
	Results []Entry `json:"results"`
	Total   int     `json:"total"`
}

// Fetch loads one page of history and replaces the local list.
func (s *Store) Fetch(ctx context.Context, params ListParams) error {
	q := url.Values{}
	if params.Mode != "" {
		q.Set("mode", params.Mode)
	}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	path := "/history"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var data listData
	if err := s.api.Do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return err
	}

	s.mu.Lock()
	s.entries = data.Results
	s.total = data.Total
	s.mu.Unlock()
	return nil
}

// Get fetches one exchange by id.
func (s *Store) Get(ctx context.Context, id int64) (*Entry, error) {
	var e Entry
	if err := s.api.Do(ctx, http.MethodGet, fmt.Sprintf("/history/%d", id), nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Delete removes an exchange server-side and from the local list.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := s.api.Do(ctx, http.MethodDelete, fmt.Sprintf("/history/%d/delete", id), nil, nil); err != nil {
		return err
	}

	s.mu.Lock()
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			s.total--
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// Export asks the server for a filtered export and returns it raw; the
// caller decides where it lands.
func (s *Store) Export(ctx context.Context, filters ExportFilters) (json.RawMessage, error) {
	var data json.RawMessage
	if err := s.api.Do(ctx, http.MethodPost, "/history/export", filters, &data); err != nil {
		return nil, err
	}
	return data, nil
}
