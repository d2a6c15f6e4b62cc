package memory

import (
	"context"
	"strings"
)

// contextHeader opens every assembled context block.
const contextHeader = "## Conversation Context:"

// ContextForPrompt assembles the conversation context injected ahead of the
// user's next turn: the last MaxContextMessages messages in chronological
// order, followed by up to SemanticSearchLimit semantically similar older
// messages not already in the recency slice. Deduplication is by message
// position, so repeated content appearing at different points is kept.
// Returns "" when memory is disabled or the conversation is empty; the
// output is deterministic for a fixed history and query.
func (s *Store) ContextForPrompt(ctx context.Context, userQuery string) string {
	if !s.config.Enabled || s.Len() == 0 {
		return ""
	}

	relevant := s.Search(ctx, userQuery, s.config.SemanticSearchLimit)

	s.mu.RLock()
	start := len(s.messages) - s.config.MaxContextMessages
	if start < 0 {
		start = 0
	}
	recent := append([]Message(nil), s.messages[start:]...)
	s.mu.RUnlock()

	seen := make(map[int]bool, len(recent))
	for i := range recent {
		seen[start+i] = true
	}

	lines := make([]string, 0, len(recent)+len(relevant)+1)
	lines = append(lines, contextHeader)
	for _, msg := range recent {
		lines = append(lines, formatContextLine(msg))
	}
	for _, hit := range relevant {
		if seen[hit.Seq] {
			continue
		}
		seen[hit.Seq] = true
		lines = append(lines, formatContextLine(hit.Message))
	}

	return strings.Join(lines, "\n")
}

func formatContextLine(msg Message) string {
	prefix := "Assistant:"
	if msg.Role == RoleUser {
		prefix = "User:"
	}
	return prefix + " " + msg.Content
}
