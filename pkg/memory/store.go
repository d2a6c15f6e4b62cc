package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hearthchat/hearth/pkg/embeddings"
	"github.com/hearthchat/hearth/pkg/vector"
	"github.com/hearthchat/hearth/pkg/vector/brute"
)

// Defaults applied by NewStore when the corresponding Config field is zero.
const (
	DefaultMaxContextMessages  = 20
	DefaultSemanticSearchLimit = 5

	// defaultScanWindow bounds fact extraction when no explicit window is
	// requested.
	defaultScanWindow = 200
)

// Config holds per-conversation store settings.
type Config struct {
	// SessionID identifies the conversation in saved files and stats.
	SessionID string

	// MaxContextMessages is the recency slice size for prompt context.
	MaxContextMessages int

	// SemanticSearchLimit caps semantic retrieval results.
	SemanticSearchLimit int

	// Enabled gates the whole store. When false, Add is a no-op and
	// context assembly returns nothing.
	Enabled bool
}

// Store is an append-only conversation history with embedding-based
// retrieval. Adds are synchronous: the embedding is computed inline and a
// failed embed degrades to an unembedded message rather than an error.
type Store struct {
	config   Config
	embedder embeddings.Embedder
	index    vector.Index
	logger   *slog.Logger

	mu       sync.RWMutex
	messages []Message
	ids      []string
}

// NewStore creates a store. A nil index falls back to the in-process
// brute-force index; a nil embedder disables semantic features but not
// history. The embedder, when present, must produce embeddings matching the
// index's dimensionality.
func NewStore(config Config, embedder embeddings.Embedder, index vector.Index, logger *slog.Logger) *Store {
	if config.SessionID == "" {
		config.SessionID = "default"
	}
	if config.MaxContextMessages == 0 {
		config.MaxContextMessages = DefaultMaxContextMessages
	}
	if config.SemanticSearchLimit == 0 {
		config.SemanticSearchLimit = DefaultSemanticSearchLimit
	}
	if index == nil {
		index = brute.NewIndex()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Store{
		config:   config,
		embedder: embedder,
		index:    index,
		logger:   logger,
	}
}

// Enabled reports whether the store records messages.
func (s *Store) Enabled() bool {
	return s.config.Enabled
}

// SessionID returns the conversation identifier.
func (s *Store) SessionID() string {
	return s.config.SessionID
}

// Add records a turn, computing its embedding inline. Embedding failures are
// logged and swallowed: the message is stored without an embedding.
func (s *Store) Add(ctx context.Context, role, content string) error {
	if !s.config.Enabled {
		return nil
	}

	var embedding []float32
	if s.embedder != nil {
		var err error
		embedding, err = s.embedder.Embed(ctx, content)
		if err != nil {
			s.logger.Debug("embedding failed, storing message without one",
				"session", s.config.SessionID, "error", err)
			embedding = nil
		}
	}

	return s.appendMessage(ctx, NewMessage(role, content, embedding))
}

// AddWithEmbedding records a turn with a precomputed embedding, skipping the
// embedder entirely.
func (s *Store) AddWithEmbedding(ctx context.Context, role, content string, embedding []float32) error {
	if !s.config.Enabled {
		return nil
	}
	return s.appendMessage(ctx, NewMessage(role, content, embedding))
}

func (s *Store) appendMessage(ctx context.Context, msg Message) error {
	s.mu.Lock()
	id := uuid.NewString()
	seq := len(s.messages)
	s.messages = append(s.messages, msg)
	s.ids = append(s.ids, id)
	s.mu.Unlock()

	if msg.Embedding == nil {
		return nil
	}

	if err := s.index.Add(ctx, []vector.Entry{{ID: id, Seq: seq, Embedding: msg.Embedding}}); err != nil {
		return fmt.Errorf("indexing message: %w", err)
	}

	return nil
}

// Turn is a handle to an in-flight assistant response. The turn is invisible
// to history, context and facts until Finalize commits it; an interrupted
// stream calls Discard instead and nothing is recorded.
type Turn struct {
	store *Store
	id    string

	mu   sync.Mutex
	done bool
}

// BeginAssistantTurn opens a pending assistant turn.
func (s *Store) BeginAssistantTurn() *Turn {
	return &Turn{store: s, id: uuid.NewString()}
}

// ID returns the turn's identifier, stable across the turn's lifetime.
func (t *Turn) ID() string {
	return t.id
}

// Finalize commits the completed response text as an assistant message,
// computing its embedding. Returns ErrTurnFinalized on reuse.
func (t *Turn) Finalize(ctx context.Context, content string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return ErrTurnFinalized
	}
	t.done = true

	return t.store.Add(ctx, RoleAssistant, content)
}

// Discard drops the pending turn without recording anything.
func (t *Turn) Discard() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return ErrTurnFinalized
	}
	t.done = true

	return nil
}

// conversationFile is the on-disk conversation schema. Older files were a
// bare JSON array of messages; LoadFile accepts both.
type conversationFile struct {
	SessionID    string    `json:"session_id"`
	Timestamp    string    `json:"timestamp"`
	MessageCount int       `json:"message_count"`
	Messages     []Message `json:"messages"`
}

// SaveFile writes the conversation to path, creating parent directories.
func (s *Store) SaveFile(path string) error {
	s.mu.RLock()
	payload := conversationFile{
		SessionID:    s.config.SessionID,
		Timestamp:    time.Now().Format(time.RFC3339),
		MessageCount: len(s.messages),
		Messages:     append([]Message(nil), s.messages...),
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding conversation: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating conversation directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing conversation file: %w", err)
	}

	s.logger.Debug("conversation saved",
		"session", s.config.SessionID, "path", path, "messages", payload.MessageCount)

	return nil
}

// LoadFile replaces the store's contents with the conversation at path.
// A missing file returns (false, nil) and leaves the store untouched; a
// file that exists but cannot be parsed is an error.
func (s *Store) LoadFile(ctx context.Context, path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("reading conversation file: %w", err)
	}

	var msgs []Message
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		// Legacy format: bare array of messages.
		if err := json.Unmarshal(data, &msgs); err != nil {
			return false, fmt.Errorf("parsing conversation file %s: %w", path, err)
		}
	} else {
		var payload conversationFile
		if err := json.Unmarshal(data, &payload); err != nil {
			return false, fmt.Errorf("parsing conversation file %s: %w", path, err)
		}
		msgs = payload.Messages
	}

	if err := s.replace(ctx, msgs); err != nil {
		return false, err
	}

	s.logger.Debug("conversation loaded",
		"session", s.config.SessionID, "path", path, "messages", len(msgs))

	return true, nil
}

// Clear drops all messages and resets the index.
func (s *Store) Clear(ctx context.Context) error {
	return s.replace(ctx, nil)
}

func (s *Store) replace(ctx context.Context, msgs []Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Clear(ctx); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}

	s.messages = msgs
	s.ids = make([]string, len(msgs))

	entries := make([]vector.Entry, 0, len(msgs))
	for i, msg := range msgs {
		s.ids[i] = uuid.NewString()
		if msg.Embedding != nil {
			entries = append(entries, vector.Entry{ID: s.ids[i], Seq: i, Embedding: msg.Embedding})
		}
	}
	if len(entries) > 0 {
		if err := s.index.Add(ctx, entries); err != nil {
			return fmt.Errorf("rebuilding index: %w", err)
		}
	}

	return nil
}

// History returns a copy of the full conversation in insertion order.
func (s *Store) History() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Message(nil), s.messages...)
}

// Len returns the number of recorded messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Stats summarizes the conversation.
type Stats struct {
	TotalMessages     int    `json:"total_messages"`
	UserMessages      int    `json:"user_messages"`
	AssistantMessages int    `json:"assistant_messages"`
	EmbeddedMessages  int    `json:"embedded_messages"`
	SessionID         string `json:"session_id"`
	MemoryEnabled     bool   `json:"memory_enabled"`
}

// Stats returns message counts for the conversation.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		TotalMessages: len(s.messages),
		SessionID:     s.config.SessionID,
		MemoryEnabled: s.config.Enabled,
	}
	for _, msg := range s.messages {
		switch msg.Role {
		case RoleUser:
			stats.UserMessages++
		case RoleAssistant:
			stats.AssistantMessages++
		}
		if msg.Embedding != nil {
			stats.EmbeddedMessages++
		}
	}

	return stats
}

// Close releases the embedder and index.
func (s *Store) Close() error {
	var errs []error
	if s.embedder != nil {
		if err := s.embedder.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.index.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("closing store: %v", errs)
	}
	return nil
}
