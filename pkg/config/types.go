package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent hearth configuration stored as config.toml
// in the .hearth/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Ollama      BackendConfig     `toml:"ollama"`
	LlamaServer BackendConfig     `toml:"llama_server"`
	Client      ClientConfig      `toml:"client"`
	Memory      MemoryConfig      `toml:"memory"`
	Facts       FactsConfig       `toml:"facts"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	VectorStore VectorStoreConfig `toml:"vector_store"`
	API         APIConfig         `toml:"api"`
}

// BackendConfig holds settings for one chat backend.
type BackendConfig struct {
	Target string `toml:"target,omitempty"`
	Model  string `toml:"model,omitempty"`
}

// ClientConfig holds defaults for interactive commands: which backend serves
// chat completions and which saved chat to open.
type ClientConfig struct {
	Backend string `toml:"backend,omitempty"`
	Chat    string `toml:"chat,omitempty"`
}

// MemoryConfig holds conversation memory settings.
type MemoryConfig struct {
	Enabled             bool `toml:"enabled"`
	MaxContextMessages  int  `toml:"max_context_messages,omitempty"`
	SemanticSearchLimit int  `toml:"semantic_search_limit,omitempty"`

	// MaxScanMessages bounds how many recent messages fact extraction reads.
	// Zero means scan the whole history.
	MaxScanMessages int `toml:"max_scan_messages"`

	// FactCacheEnabled selects whether extracted facts are cached in the
	// per-chat facts.json sidecar.
	FactCacheEnabled bool `toml:"fact_cache_enabled"`
}

// FactsConfig holds fact extraction settings.
type FactsConfig struct {
	// Categories is the list of enabled fact categories
	// (name, job, pet, family, location, age, interests, education).
	Categories []string `toml:"categories,omitempty"`

	// CustomKeywords is a comma or newline separated list of user-defined
	// trigger phrases. Each keyword is its own category.
	CustomKeywords string `toml:"custom_keywords,omitempty"`
}

// EmbeddingConfig holds embedding provider settings. Embeddings are always
// sourced from the Ollama-compatible endpoint, including when llama-server
// serves chat completions.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// VectorStoreConfig holds vector index settings.
type VectorStoreConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
}

// APIConfig holds local API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"ollama.target": {
		get: func(c *Config) string { return c.Ollama.Target },
		set: func(c *Config, v string) error { c.Ollama.Target = v; return nil },
	},
	"ollama.model": {
		get: func(c *Config) string { return c.Ollama.Model },
		set: func(c *Config, v string) error { c.Ollama.Model = v; return nil },
	},
	"llama_server.target": {
		get: func(c *Config) string { return c.LlamaServer.Target },
		set: func(c *Config, v string) error { c.LlamaServer.Target = v; return nil },
	},
	"llama_server.model": {
		get: func(c *Config) string { return c.LlamaServer.Model },
		set: func(c *Config, v string) error { c.LlamaServer.Model = v; return nil },
	},
	"client.backend": {
		get: func(c *Config) string { return c.Client.Backend },
		set: func(c *Config, v string) error { c.Client.Backend = v; return nil },
	},
	"client.chat": {
		get: func(c *Config) string { return c.Client.Chat },
		set: func(c *Config, v string) error { c.Client.Chat = v; return nil },
	},
	"memory.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Memory.Enabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for memory.enabled: %w", err)
			}
			c.Memory.Enabled = b
			return nil
		},
	},
	"memory.max_context_messages": {
		get: func(c *Config) string { return strconv.Itoa(c.Memory.MaxContextMessages) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for memory.max_context_messages: %w", err)
			}
			c.Memory.MaxContextMessages = n
			return nil
		},
	},
	"memory.semantic_search_limit": {
		get: func(c *Config) string { return strconv.Itoa(c.Memory.SemanticSearchLimit) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for memory.semantic_search_limit: %w", err)
			}
			c.Memory.SemanticSearchLimit = n
			return nil
		},
	},
	"memory.max_scan_messages": {
		get: func(c *Config) string { return strconv.Itoa(c.Memory.MaxScanMessages) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for memory.max_scan_messages: %w", err)
			}
			c.Memory.MaxScanMessages = n
			return nil
		},
	},
	"memory.fact_cache_enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Memory.FactCacheEnabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for memory.fact_cache_enabled: %w", err)
			}
			c.Memory.FactCacheEnabled = b
			return nil
		},
	},
	"facts.categories": {
		get: func(c *Config) string { return strings.Join(c.Facts.Categories, ",") },
		set: func(c *Config, v string) error {
			c.Facts.Categories = splitList(v)
			return nil
		},
	},
	"facts.custom_keywords": {
		get: func(c *Config) string { return c.Facts.CustomKeywords },
		set: func(c *Config, v string) error { c.Facts.CustomKeywords = v; return nil },
	},
	"embedding.provider": {
		get: func(c *Config) string { return c.Embedding.Provider },
		set: func(c *Config, v string) error { c.Embedding.Provider = v; return nil },
	},
	"embedding.target": {
		get: func(c *Config) string { return c.Embedding.Target },
		set: func(c *Config, v string) error { c.Embedding.Target = v; return nil },
	},
	"embedding.model": {
		get: func(c *Config) string { return c.Embedding.Model },
		set: func(c *Config, v string) error { c.Embedding.Model = v; return nil },
	},
	"embedding.dimensions": {
		get: func(c *Config) string {
			if c.Embedding.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Embedding.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.dimensions: %w", err)
			}
			c.Embedding.Dimensions = uint(n)
			return nil
		},
	},
	"vector_store.provider": {
		get: func(c *Config) string { return c.VectorStore.Provider },
		set: func(c *Config, v string) error { c.VectorStore.Provider = v; return nil },
	},
	"vector_store.target": {
		get: func(c *Config) string { return c.VectorStore.Target },
		set: func(c *Config, v string) error { c.VectorStore.Target = v; return nil },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
}

// splitList splits a comma-separated list, trimming whitespace and dropping
// empty entries.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
