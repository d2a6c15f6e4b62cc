// Package brute provides an exact, in-memory implementation of vector.Index.
//
// Queries scan every entry and rank by cosine similarity. This is the default
// index: conversation histories are small enough that a linear scan is cheap,
// and exact ranking keeps retrieval deterministic.
package brute

import (
	"context"
	"sort"
	"sync"

	"github.com/hearthchat/hearth/pkg/vector"
)

// Index implements vector.Index with a linear scan over in-process entries.
type Index struct {
	mu      sync.RWMutex
	entries []vector.Entry

	// byID maps entry ID -> position in entries, for update-in-place.
	byID map[string]int
}

// NewIndex creates an empty brute-force index.
func NewIndex() *Index {
	return &Index{
		byID: make(map[string]int),
	}
}

// Add registers entries, updating any whose ID is already present.
func (i *Index) Add(_ context.Context, entries []vector.Entry) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	for _, e := range entries {
		if pos, ok := i.byID[e.ID]; ok {
			i.entries[pos] = e
			continue
		}
		i.byID[e.ID] = len(i.entries)
		i.entries = append(i.entries, e)
	}

	return nil
}

// Query ranks all entries by cosine similarity to the query embedding and
// returns the topK best. Ordering is descending score; ties keep ascending
// Seq order so repeated queries return identical results.
func (i *Index) Query(_ context.Context, embedding []float32, topK int) ([]vector.Result, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if topK <= 0 || len(i.entries) == 0 {
		return nil, nil
	}

	results := make([]vector.Result, 0, len(i.entries))
	for _, e := range i.entries {
		results = append(results, vector.Result{
			Entry: e,
			Score: vector.Cosine(embedding, e.Embedding),
		})
	}

	sort.SliceStable(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score > results[b].Score
		}
		return results[a].Seq < results[b].Seq
	})

	if topK < len(results) {
		results = results[:topK]
	}

	return results, nil
}

// Clear removes all entries.
func (i *Index) Clear(_ context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.entries = nil
	i.byID = make(map[string]int)

	return nil
}

// Close is a no-op for the in-memory index.
func (i *Index) Close() error {
	return nil
}

var _ vector.Index = (*Index)(nil)
