package memory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Reserved keys in the facts sidecar. Everything else is a category.
const (
	factsKeyLastUpdated = "last_updated"
	factsKeyWatermark   = "last_scanned_message_index"
)

// FactEntry is one category→line pair in the sidecar, in file order.
type FactEntry struct {
	Category string
	Value    string
}

// FactsRecord is the facts.json sidecar: extracted category facts plus the
// watermark recording how many messages had been scanned when it was
// written. Entry order is preserved across save/load so cache-hit rendering
// is deterministic.
type FactsRecord struct {
	Entries     []FactEntry
	LastUpdated string

	// LastScannedMessageIndex is the message count at extraction time. The
	// record is fresh iff it is >= the current message count.
	LastScannedMessageIndex int
}

// Fresh reports whether the record still covers a conversation of
// messageCount messages.
func (r *FactsRecord) Fresh(messageCount int) bool {
	return r.LastScannedMessageIndex >= messageCount
}

// Format renders the record's non-empty entries as "category: value" pairs
// joined with " | ". Returns "" when the record holds no facts.
func (r *FactsRecord) Format() string {
	parts := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		if e.Value != "" {
			parts = append(parts, e.Category+": "+e.Value)
		}
	}
	return strings.Join(parts, " | ")
}

// MarshalJSON flattens the record into a single JSON object with the
// metadata keys alongside the category entries.
func (r *FactsRecord) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("{\n")
	for _, e := range r.Entries {
		if err := writeJSONPair(&b, e.Category, e.Value); err != nil {
			return nil, err
		}
	}
	if err := writeJSONPair(&b, factsKeyLastUpdated, r.LastUpdated); err != nil {
		return nil, err
	}
	key, err := json.Marshal(factsKeyWatermark)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(&b, "  %s: %d\n}", key, r.LastScannedMessageIndex)
	return b.Bytes(), nil
}

func writeJSONPair(b *bytes.Buffer, key, value string) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	fmt.Fprintf(b, "  %s: %s,\n", k, v)
	return nil
}

// UnmarshalJSON reads the flat sidecar object, preserving the order of the
// category keys as they appear in the file.
func (r *FactsRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("facts record: expected object, got %v", tok)
	}

	r.Entries = nil
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("facts record: non-string key %v", keyTok)
		}

		switch key {
		case factsKeyLastUpdated:
			if err := dec.Decode(&r.LastUpdated); err != nil {
				return err
			}
		case factsKeyWatermark:
			if err := dec.Decode(&r.LastScannedMessageIndex); err != nil {
				return err
			}
		default:
			var value string
			if err := dec.Decode(&value); err != nil {
				return err
			}
			r.Entries = append(r.Entries, FactEntry{Category: key, Value: value})
		}
	}

	_, err = dec.Token() // closing brace
	return err
}

// Save writes the record beside the chat's conversation file.
func (r *FactsRecord) Save(path string) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding facts cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating facts cache directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing facts cache: %w", err)
	}
	return nil
}

// LoadFactsRecord reads the sidecar at path. The cache is best-effort: a
// missing or unparseable file is reported as a miss, never an error.
func LoadFactsRecord(path string) (*FactsRecord, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var record FactsRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, false
	}

	return &record, true
}

// PersonalFactsWithCache is the cached entry point for fact extraction.
// A fresh sidecar is rendered directly without re-scanning or re-saving.
// Otherwise facts are re-extracted over the newest maxScanMessages messages
// (0 = all) and the sidecar is rewritten with the new watermark. cachePath
// may be empty to bypass the cache entirely.
func (s *Store) PersonalFactsWithCache(cachePath string, maxScanMessages int, opts FactOptions) string {
	if cachePath != "" {
		if record, ok := LoadFactsRecord(cachePath); ok {
			if record.Fresh(s.Len()) {
				if formatted := record.Format(); formatted != "" {
					s.logger.Debug("facts cache hit",
						"session", s.config.SessionID, "watermark", record.LastScannedMessageIndex)
					return formatted
				}
			} else {
				s.logger.Debug("facts cache stale, re-extracting",
					"session", s.config.SessionID,
					"watermark", record.LastScannedMessageIndex, "messages", s.Len())
			}
		}
	}

	window := s.factScanWindow(maxScanMessages)
	categorized := extractCategorizedFacts(window, opts)
	flat := extractFlatFacts(window, opts)

	if cachePath != "" && len(categorized) > 0 {
		record := s.buildFactsRecord(categorized, opts)
		if err := record.Save(cachePath); err != nil {
			s.logger.Debug("facts cache save failed",
				"session", s.config.SessionID, "error", err)
		}
	}

	return flat
}

// factScanWindow returns the newest maxScanMessages messages, or all of them
// when maxScanMessages is zero.
func (s *Store) factScanWindow(maxScanMessages int) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := 0
	if maxScanMessages > 0 && len(s.messages) > maxScanMessages {
		start = len(s.messages) - maxScanMessages
	}
	return append([]Message(nil), s.messages[start:]...)
}

// buildFactsRecord lays out the sidecar entries in a stable order: enabled
// categories first, then custom keywords, keeping only populated values.
func (s *Store) buildFactsRecord(categorized map[string]string, opts FactOptions) *FactsRecord {
	categories := opts.Categories
	if categories == nil {
		categories = DefaultFactCategories
	}

	record := &FactsRecord{
		LastUpdated:             time.Now().Format(time.RFC3339),
		LastScannedMessageIndex: s.Len(),
	}
	for _, category := range categories {
		if value := categorized[category]; value != "" {
			record.Entries = append(record.Entries, FactEntry{Category: category, Value: value})
		}
	}
	for _, kw := range parseCustomKeywords(opts.CustomKeywords) {
		if value := categorized[kw]; value != "" {
			record.Entries = append(record.Entries, FactEntry{Category: kw, Value: value})
		}
	}

	return record
}
