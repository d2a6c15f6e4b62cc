// Package memory implements per-chat conversation memory: an append-only
// message store with JSON persistence, embedding-based semantic retrieval,
// prompt context assembly, and keyword-driven personal fact extraction with
// a watermarked sidecar cache.
//
// A [Store] holds one conversation. The [Manager] is the composition root:
// it owns one Store and embedder per chat backend and routes settings into
// the fact extractor.
package memory

import (
	"encoding/json"
	"time"
)

// Message roles. Anything else found in a conversation file is preserved
// as-is but never matched by the fact extractor.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn. Embedding is nil when the turn was
// recorded while the embedder was unavailable; such messages still appear in
// history and recency context but are invisible to semantic search.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
	Timestamp string    `json:"timestamp"`
}

// NewMessage stamps a message with the current time.
func NewMessage(role, content string, embedding []float32) Message {
	return Message{
		Role:      role,
		Content:   content,
		Embedding: embedding,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// UnmarshalJSON accepts both the current schema and the legacy one, which
// used a "sender" field with "You"/"Assistant" values. Legacy senders are
// normalized to roles on load so the rest of the system only ever sees
// "user" and "assistant".
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role      string    `json:"role"`
		Sender    string    `json:"sender"`
		Content   string    `json:"content"`
		Embedding []float32 `json:"embedding"`
		Timestamp string    `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	role := raw.Role
	if role == "" {
		role = raw.Sender
	}
	switch role {
	case "You":
		role = RoleUser
	case "Assistant":
		role = RoleAssistant
	}

	m.Role = role
	m.Content = raw.Content
	m.Embedding = raw.Embedding
	m.Timestamp = raw.Timestamp
	if m.Timestamp == "" {
		m.Timestamp = time.Now().Format(time.RFC3339)
	}

	return nil
}
