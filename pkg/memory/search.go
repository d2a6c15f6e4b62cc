package memory

import (
	"context"
)

// SearchResult is a semantic search hit.
type SearchResult struct {
	// Seq is the message's position in the conversation.
	Seq int

	// Score is the cosine similarity to the query.
	Score float64

	Message Message
}

// Search returns the messages most similar to query, best first. Ties are
// broken by insertion order. Only embedded messages participate. Returns nil
// when no embedder is configured, the conversation is empty, or the query
// itself cannot be embedded — semantic retrieval is best-effort and never
// fails a caller.
func (s *Store) Search(ctx context.Context, query string, limit int) []SearchResult {
	if s.embedder == nil || s.Len() == 0 || limit <= 0 {
		return nil
	}

	queryEmbedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.logger.Debug("query embedding failed, skipping semantic search",
			"session", s.config.SessionID, "error", err)
		return nil
	}

	hits, err := s.index.Query(ctx, queryEmbedding, limit)
	if err != nil {
		s.logger.Debug("index query failed, skipping semantic search",
			"session", s.config.SessionID, "error", err)
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		if hit.Seq < 0 || hit.Seq >= len(s.messages) {
			continue
		}
		results = append(results, SearchResult{
			Seq:     hit.Seq,
			Score:   hit.Score,
			Message: s.messages[hit.Seq],
		})
	}

	return results
}
