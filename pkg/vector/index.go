// Package vector provides interfaces and implementations for indexing and
// querying message embeddings.
package vector

import "context"

// Entry is a single embedded message registered with an index.
type Entry struct {
	// ID is a unique identifier for the entry (the owning message's ID).
	ID string

	// Seq is the message's insertion position in its conversation. Ranking
	// ties are broken by ascending Seq so results are deterministic.
	Seq int

	// Embedding is the vector representation of the message content.
	Embedding []float32
}

// Result is a query hit with its similarity score.
type Result struct {
	Entry

	// Score is the similarity to the query vector (higher = more similar).
	Score float64
}

// Index ranks stored entries by similarity to a query embedding.
type Index interface {
	// Add registers entries with the index. Entries with an ID already
	// present are updated in place.
	Add(ctx context.Context, entries []Entry) error

	// Query returns the topK most similar entries to the given embedding,
	// ordered by descending score.
	Query(ctx context.Context, embedding []float32, topK int) ([]Result, error)

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Close releases any resources held by the index.
	Close() error
}
