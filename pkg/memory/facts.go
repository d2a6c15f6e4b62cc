package memory

import (
	"strings"
)

// maxFactLineLength rejects long matched lines: past this they are rambling
// prose, not a crisp fact.
const maxFactLineLength = 150

// maxFlatFacts caps the flat fact block.
const maxFlatFacts = 5

// factCategory is a named category with its trigger phrases. Order matters:
// categorized extraction credits a line to the first matching keyword.
type factCategory struct {
	name     string
	keywords []string
}

var factCategories = []factCategory{
	{"name", []string{"my name", "call me", "i am", "i'm", "name is", "my name is"}},
	{"job", []string{"my job", "work as", "profession", "career", "i work", "employed", "work for"}},
	{"pet", []string{"my dog", "my pet", "my cat", "my rabbit", "my bird", "i have a dog", "i have a cat"}},
	{"family", []string{"my family", "my wife", "my husband", "my kids", "my children", "my brother", "my sister", "my parent"}},
	{"location", []string{"i live", "from", "born", "city", "state", "country", "located", "live in"}},
	{"age", []string{"age", "years old", "i am", "born in"}},
	{"interests", []string{"i like", "i love", "my hobby", "into", "interested in", "passionate about"}},
	{"education", []string{"graduated", "studied", "university", "college", "school", "degree"}},
}

// DefaultFactCategories are the categories scanned when none are configured.
var DefaultFactCategories = []string{"name", "job", "pet", "family", "location", "age"}

// FactOptions selects which categories and custom keywords the extractor
// scans for. Nil Categories means DefaultFactCategories. CustomKeywords is a
// free-text comma- or newline-separated list; each entry becomes its own
// self-named category.
type FactOptions struct {
	Categories     []string
	CustomKeywords string
}

// parseCustomKeywords splits on comma and newline, lowercases, and drops
// empty or single-character fragments.
func parseCustomKeywords(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var keywords []string
	for _, item := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '\n' }) {
		item = strings.TrimSpace(item)
		if len(item) > 1 {
			keywords = append(keywords, strings.ToLower(item))
		}
	}

	return keywords
}

// keywordCategory pairs one trigger phrase with the category it credits.
type keywordCategory struct {
	keyword  string
	category string
}

// keywordTable flattens the enabled categories and custom keywords into an
// ordered match list. Custom keywords are their own category labels.
func keywordTable(opts FactOptions) []keywordCategory {
	categories := opts.Categories
	if categories == nil {
		categories = DefaultFactCategories
	}

	var table []keywordCategory
	for _, name := range categories {
		for _, cat := range factCategories {
			if cat.name != name {
				continue
			}
			for _, kw := range cat.keywords {
				table = append(table, keywordCategory{keyword: kw, category: cat.name})
			}
		}
	}
	for _, kw := range parseCustomKeywords(opts.CustomKeywords) {
		table = append(table, keywordCategory{keyword: kw, category: kw})
	}

	return table
}

// scanWindow returns the messages fact extraction should look at: the
// explicit window when given, otherwise the newest defaultScanWindow
// messages.
func (s *Store) scanWindow(window []Message) []Message {
	if window != nil {
		return window
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	start := len(s.messages) - defaultScanWindow
	if start < 0 {
		start = 0
	}
	return append([]Message(nil), s.messages[start:]...)
}

// PersonalFacts scans user messages newest-first for lines mentioning a
// trigger phrase and renders the result as a "User's personal facts:" bullet
// block. Matched lines longer than maxFactLineLength characters are dropped.
// After exact-text deduplication (keeping the newest occurrence) the list is
// truncated to its last maxFlatFacts entries. Returns "" when nothing
// matches.
func (s *Store) PersonalFacts(opts FactOptions) string {
	if s.Len() == 0 {
		return ""
	}
	return extractFlatFacts(s.scanWindow(nil), opts)
}

func extractFlatFacts(window []Message, opts FactOptions) string {
	table := keywordTable(opts)

	var facts []string
	for i := len(window) - 1; i >= 0; i-- {
		msg := window[i]
		if msg.Role != RoleUser {
			continue
		}

		for _, line := range strings.Split(msg.Content, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			lower := strings.ToLower(line)
			for _, kc := range table {
				if strings.Contains(lower, kc.keyword) {
					if len(line) < maxFactLineLength {
						facts = append(facts, line)
					}
					break
				}
			}
		}
	}

	seen := make(map[string]bool, len(facts))
	unique := facts[:0]
	for _, fact := range facts {
		if seen[fact] {
			continue
		}
		seen[fact] = true
		unique = append(unique, fact)
	}
	if len(unique) > maxFlatFacts {
		unique = unique[len(unique)-maxFlatFacts:]
	}
	if len(unique) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("User's personal facts:")
	for _, fact := range unique {
		b.WriteString("\n- ")
		b.WriteString(fact)
	}

	return b.String()
}

// CategorizedFacts maps each category to its single best matching line, the
// newest one found. A line is credited to the first matching keyword's
// category only, and each category is filled at most once.
func (s *Store) CategorizedFacts(opts FactOptions) map[string]string {
	if s.Len() == 0 {
		return map[string]string{}
	}
	return extractCategorizedFacts(s.scanWindow(nil), opts)
}

func extractCategorizedFacts(window []Message, opts FactOptions) map[string]string {
	table := keywordTable(opts)
	facts := make(map[string]string)

	for i := len(window) - 1; i >= 0; i-- {
		msg := window[i]
		if msg.Role != RoleUser {
			continue
		}

		for _, line := range strings.Split(msg.Content, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			lower := strings.ToLower(line)
			for _, kc := range table {
				if !strings.Contains(lower, kc.keyword) {
					continue
				}
				if len(line) < maxFactLineLength {
					if _, filled := facts[kc.category]; !filled {
						facts[kc.category] = line
						break
					}
				}
			}
		}
	}

	return facts
}
