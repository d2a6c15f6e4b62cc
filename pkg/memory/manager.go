package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hearthchat/hearth/pkg/dotdir"
	"github.com/hearthchat/hearth/pkg/embeddings"
	embeddingutils "github.com/hearthchat/hearth/pkg/embeddings/utils"
	"github.com/hearthchat/hearth/pkg/vector"
)

// Chat backend identifiers the manager knows about.
const (
	BackendOllama      = "ollama"
	BackendLlamaServer = "llama-server"
)

// DefaultChatName is the chat a fresh session starts on.
const DefaultChatName = "default"

// ManagerConfig configures every session the manager creates.
//
// Embeddings always come from the Ollama-compatible endpoint named by
// EmbeddingTarget, whichever backend serves chat completions: llama-server
// has no embedding endpoint, so the two run side by side.
type ManagerConfig struct {
	Enabled             bool
	MaxContextMessages  int
	SemanticSearchLimit int

	// MaxScanMessages bounds fact extraction on a cache miss; 0 scans all.
	MaxScanMessages  int
	FactCacheEnabled bool
	FactCategories   []string
	CustomKeywords   string

	EmbeddingEnabled bool
	EmbeddingTarget  string
	EmbeddingModel   string

	// DataDir overrides the default .hearth/ location.
	DataDir string

	// NewIndex builds the vector index for a new session. Nil uses the
	// store's default in-process index.
	NewIndex func() (vector.Index, error)
}

// Session is one backend's conversation: a store bound to a chat folder.
type Session struct {
	backend string
	store   *Store
	chats   *dotdir.Chats

	mu   sync.Mutex
	chat string
}

// Store exposes the session's message store.
func (s *Session) Store() *Store {
	return s.store
}

// Chat returns the active chat name.
func (s *Session) Chat() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chat
}

// Chats exposes the session's chat folder tree.
func (s *Session) Chats() *dotdir.Chats {
	return s.chats
}

// Manager is the composition root for conversation memory: one session per
// backend, created lazily and reused.
type Manager struct {
	config ManagerConfig
	logger *slog.Logger
	dotdir *dotdir.Manager

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager.
func NewManager(config ManagerConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		config:   config,
		logger:   logger,
		dotdir:   dotdir.NewManager(),
		sessions: make(map[string]*Session),
	}
}

// Session returns the backend's session, creating it on first use.
func (m *Manager) Session(backend string) (*Session, error) {
	if backend != BackendOllama && backend != BackendLlamaServer {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[backend]; ok {
		return sess, nil
	}

	chats, err := m.dotdir.NewChats(backend, m.config.DataDir)
	if err != nil {
		return nil, fmt.Errorf("resolving chat directory: %w", err)
	}

	var embedder embeddings.Embedder
	if m.config.EmbeddingEnabled {
		embedder, err = embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
			ProviderType: "ollama",
			TargetURL:    m.config.EmbeddingTarget,
			Model:        m.config.EmbeddingModel,
		})
		if err != nil {
			return nil, fmt.Errorf("creating embedder: %w", err)
		}
	}

	var index vector.Index
	if m.config.NewIndex != nil {
		index, err = m.config.NewIndex()
		if err != nil {
			return nil, fmt.Errorf("creating vector index: %w", err)
		}
	}

	store := NewStore(Config{
		SessionID:           backend + "_session",
		MaxContextMessages:  m.config.MaxContextMessages,
		SemanticSearchLimit: m.config.SemanticSearchLimit,
		Enabled:             m.config.Enabled,
	}, embedder, index, m.logger)

	sess := &Session{
		backend: backend,
		store:   store,
		chats:   chats,
		chat:    DefaultChatName,
	}
	m.sessions[backend] = sess

	m.logger.Debug("session created",
		"backend", backend, "embedding", m.config.EmbeddingEnabled)

	return sess, nil
}

// SwitchChat points the backend's session at the named chat, replacing any
// unsaved in-memory state. A chat with no saved conversation starts empty;
// a conversation file that exists but cannot be parsed resets the session
// and reports the error.
func (m *Manager) SwitchChat(ctx context.Context, backend, name string) error {
	sess, err := m.Session(backend)
	if err != nil {
		return err
	}

	path, err := sess.chats.ConversationFile(name)
	if err != nil {
		return err
	}

	loaded, err := sess.store.LoadFile(ctx, path)
	if err != nil {
		m.logger.Warn("conversation file unreadable, starting empty",
			"backend", backend, "chat", name, "error", err)
		if clearErr := sess.store.Clear(ctx); clearErr != nil {
			return clearErr
		}
		sess.setChat(name)
		return err
	}
	if !loaded {
		if err := sess.store.Clear(ctx); err != nil {
			return err
		}
	}
	sess.setChat(name)

	m.logger.Debug("switched chat",
		"backend", backend, "chat", name, "messages", sess.store.Len())

	return nil
}

func (s *Session) setChat(name string) {
	s.mu.Lock()
	s.chat = name
	s.mu.Unlock()
}

// AddMessage records a turn on the backend's session.
func (m *Manager) AddMessage(ctx context.Context, backend, role, content string) error {
	sess, err := m.Session(backend)
	if err != nil {
		return err
	}
	return sess.store.Add(ctx, role, content)
}

// Context assembles the prompt context for the backend's session.
func (m *Manager) Context(ctx context.Context, backend, query string) (string, error) {
	sess, err := m.Session(backend)
	if err != nil {
		return "", err
	}
	return sess.store.ContextForPrompt(ctx, query), nil
}

// PersonalFacts extracts personal facts for the backend's session, going
// through the facts sidecar cache when enabled.
func (m *Manager) PersonalFacts(backend string) (string, error) {
	sess, err := m.Session(backend)
	if err != nil {
		return "", err
	}

	opts := FactOptions{
		Categories:     m.config.FactCategories,
		CustomKeywords: m.config.CustomKeywords,
	}

	if !m.config.FactCacheEnabled {
		return sess.store.PersonalFacts(opts), nil
	}

	cachePath, err := sess.chats.FactsFile(sess.Chat())
	if err != nil {
		return "", err
	}

	return sess.store.PersonalFactsWithCache(cachePath, m.config.MaxScanMessages, opts), nil
}

// Save persists the backend's session to its chat's conversation file.
func (m *Manager) Save(backend string) error {
	sess, err := m.Session(backend)
	if err != nil {
		return err
	}

	path, err := sess.chats.ConversationFile(sess.Chat())
	if err != nil {
		return err
	}

	return sess.store.SaveFile(path)
}

// Clear empties the backend's session without touching its saved file.
func (m *Manager) Clear(ctx context.Context, backend string) error {
	sess, err := m.Session(backend)
	if err != nil {
		return err
	}
	return sess.store.Clear(ctx)
}

// Stats returns message counts for the backend's session.
func (m *Manager) Stats(backend string) (Stats, error) {
	sess, err := m.Session(backend)
	if err != nil {
		return Stats{}, err
	}
	return sess.store.Stats(), nil
}

// Close releases every session's embedder and index.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for backend, sess := range m.sessions {
		if err := sess.store.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing %s session: %w", backend, err)
		}
	}

	return firstErr
}
