// Package documents is the client-side document store: paginated
// listing, upload, deletion, content retrieval, and the RAG ingest and
// search helpers. Plain CRUD pass-through over the request pipeline,
// with the same local list bookkeeping the web client kept.
package documents

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/ggokuldas06/LegalAI/internal/api"
)

// Document is one uploaded legal document.
type Document struct {
	ID           int64          `json:"id"`
	Doctype      string         `json:"doctype"`
	Title        string         `json:"title"`
	Jurisdiction string         `json:"jurisdiction,omitempty"`
	Date         string         `json:"date,omitempty"`
	Source       string         `json:"source,omitempty"`
	SHA256       string         `json:"sha256,omitempty"`
	ChunkCount   int            `json:"chunk_count,omitempty"`
	Meta         map[string]any `json:"meta_json,omitempty"`
	CreatedAt    string         `json:"created_at,omitempty"`
}

// UploadMeta is the metadata sent alongside an uploaded file. Doctype
// and Title are required by the backend; the rest are optional.
type UploadMeta struct {
	Doctype      string
	Title        string
	Jurisdiction string
	Date         string
	Source       string
}

// ListParams narrow and page the document listing.
type ListParams struct {
	Doctype string
	Search  string
	Page    int
	Limit   int
}

// Store keeps the fetched document list and its total, mirroring the
// web client's store.
type Store struct {
	api *api.Client

	mu    sync.Mutex
	docs  []Document
	total int
}

func NewStore(client *api.Client) *Store {
	return &Store{api: client}
}

// Documents returns a snapshot of the last fetched list.
func (s *Store) Documents() []Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Total returns the server-side total from the last fetch.
func (s *Store) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

type listData struct {
	Results []Document `json:"results"`
	Total   int        `json:"total"`
}

// Fetch loads one page of documents and replaces the local list.
func (s *Store) Fetch(ctx context.Context, params ListParams) error {
	q := url.Values{}
	if params.Doctype != "" {
		q.Set("doctype", params.Doctype)
	}
	if params.Search != "" {
		q.Set("search", params.Search)
	}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	path := "/documents"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var data listData
	if err := s.api.Do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return err
	}

	s.mu.Lock()
	s.docs = data.Results
	s.total = data.Total
	s.mu.Unlock()
	return nil
}

// Get fetches one document by id.
func (s *Store) Get(ctx context.Context, id int64) (*Document, error) {
	var doc Document
	if err := s.api.Do(ctx, http.MethodGet, fmt.Sprintf("/documents/%d", id), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Upload sends the file plus metadata and prepends the new document to
// the local list.
func (s *Store) Upload(ctx context.Context, filename string, r io.Reader, meta UploadMeta) (*Document, error) {
	fields := map[string]string{
		"doctype":      meta.Doctype,
		"title":        meta.Title,
		"jurisdiction": meta.Jurisdiction,
		"date":         meta.Date,
		"source":       meta.Source,
	}
	var doc Document
	err := s.api.DoMultipart(ctx, "/documents/upload",
		api.FormFile{Field: "file", Filename: filename, Reader: r}, fields, &doc)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.docs = append([]Document{doc}, s.docs...)
	s.total++
	s.mu.Unlock()
	return &doc, nil
}

// Delete removes a document server-side and from the local list.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := s.api.Do(ctx, http.MethodDelete, fmt.Sprintf("/documents/%d/delete", id), nil, nil); err != nil {
		return err
	}

	s.mu.Lock()
	for i, d := range s.docs {
		if d.ID == id {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			s.total--
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// ContentData is a document's extracted text.
type ContentData struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Content fetches the extracted text of a document.
func (s *Store) Content(ctx context.Context, id int64) (*ContentData, error) {
	var data ContentData
	if err := s.api.Do(ctx, http.MethodGet, fmt.Sprintf("/documents/%d/content", id), nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}
