package documents

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"
)

// IngestResult reports one document's ingestion outcome.
type IngestResult struct {
	DocumentID int64 `json:"document_id"`
	Chunks     int   `json:"chunks"`
	Reindexed  bool  `json:"reindexed"`
}

// Ingest asks the backend to (re)index one document for retrieval.
func (s *Store) Ingest(ctx context.Context, id int64, reindex bool) (*IngestResult, error) {
	var res IngestResult
	err := s.api.Do(ctx, http.MethodPost, "/ingest", map[string]any{
		"document_id": id,
		"reindex":     reindex,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// IngestAll ingests every document in the local list, a few at a time.
// The first failure cancels the rest.
func (s *Store) IngestAll(ctx context.Context, reindex bool) error {
	docs := s.Documents()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, doc := range docs {
		g.Go(func() error {
			_, err := s.Ingest(ctx, doc.ID, reindex)
			return err
		})
	}
	return g.Wait()
}

// SearchHit is one retrieval result.
type SearchHit struct {
	DocumentID int64   `json:"document_id"`
	ChunkID    int64   `json:"chunk_id"`
	Heading    string  `json:"heading,omitempty"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

type searchData struct {
	Results []SearchHit `json:"results"`
}

// Search runs a retrieval query with optional filters.
func (s *Store) Search(ctx context.Context, query string, k int, filters map[string]any) ([]SearchHit, error) {
	if k <= 0 {
		k = 10
	}
	if filters == nil {
		filters = map[string]any{}
	}
	var data searchData
	err := s.api.Do(ctx, http.MethodPost, "/search", map[string]any{
		"query":   query,
		"k":       k,
		"filters": filters,
	}, &data)
	if err != nil {
		return nil, err
	}
	return data.Results, nil
}

// RAGStats is the vector store's health summary.
type RAGStats struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
	Vectors   int `json:"vectors"`
}

// Stats fetches vector store statistics.
func (s *Store) Stats(ctx context.Context) (*RAGStats, error) {
	var stats RAGStats
	if err := s.api.Do(ctx, http.MethodGet, "/rag/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
