// Package provider defines the chat backend client interface and its
// implementations. Each provider speaks one server's wire format: ollama
// uses the native /api/chat NDJSON stream, llamaserver the OpenAI-compatible
// /v1/chat/completions SSE stream.
package provider

import (
	"context"
	"errors"

	"github.com/hearthchat/hearth/pkg/llm"
)

// ErrStreamInterrupted is returned by ChatStream when the handler aborts the
// stream by returning it; the partial response is discarded by the caller.
var ErrStreamInterrupted = errors.New("stream interrupted")

// ChunkHandler receives streaming chunks in order. Returning an error stops
// the stream; returning ErrStreamInterrupted marks a deliberate interrupt.
type ChunkHandler func(chunk llm.StreamChunk) error

// Provider is a chat completion client for one backend server.
type Provider interface {
	// Name returns the canonical provider name ("ollama", "llama-server").
	Name() string

	// Chat performs a blocking, non-streaming completion.
	Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)

	// ChatStream performs a streaming completion, delivering chunks to the
	// handler as they arrive and returning the assembled final response.
	ChatStream(ctx context.Context, req *llm.ChatRequest, handler ChunkHandler) (*llm.ChatResponse, error)

	// Close releases the underlying HTTP resources.
	Close() error
}
