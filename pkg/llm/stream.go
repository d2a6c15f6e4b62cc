package llm

import "time"

// StreamChunk is a single chunk in a streaming response.
type StreamChunk struct {
	// Model that generated the chunk.
	Model string `json:"model"`

	// Chunk timestamp.
	CreatedAt time.Time `json:"created_at,omitzero"`

	// Partial content delta carried by this chunk.
	Delta string `json:"delta"`

	// Whether this is the final chunk.
	Done bool `json:"done"`

	// Stop reason, only present on the final chunk.
	StopReason string `json:"stop_reason,omitempty"`

	// Usage metrics, typically only present on the final chunk.
	Usage *Usage `json:"usage,omitempty"`
}
