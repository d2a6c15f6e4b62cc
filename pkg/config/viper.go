package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/hearthchat/hearth/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the HEARTH_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (HEARTH_MEMORY_ENABLED, HEARTH_API_LISTEN, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: HEARTH_MEMORY_ENABLED, HEARTH_EMBEDDING_TARGET, etc.
	v.SetEnvPrefix("HEARTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Backends
	v.SetDefault("ollama.target", d.Ollama.Target)
	v.SetDefault("ollama.model", d.Ollama.Model)
	v.SetDefault("llama_server.target", d.LlamaServer.Target)
	v.SetDefault("llama_server.model", d.LlamaServer.Model)

	// Client
	v.SetDefault("client.backend", d.Client.Backend)
	v.SetDefault("client.chat", d.Client.Chat)

	// Memory
	v.SetDefault("memory.enabled", d.Memory.Enabled)
	v.SetDefault("memory.max_context_messages", d.Memory.MaxContextMessages)
	v.SetDefault("memory.semantic_search_limit", d.Memory.SemanticSearchLimit)
	v.SetDefault("memory.max_scan_messages", d.Memory.MaxScanMessages)
	v.SetDefault("memory.fact_cache_enabled", d.Memory.FactCacheEnabled)

	// Facts
	v.SetDefault("facts.categories", d.Facts.Categories)
	v.SetDefault("facts.custom_keywords", d.Facts.CustomKeywords)

	// Embedding
	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.target", d.Embedding.Target)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)

	// Vector store
	v.SetDefault("vector_store.provider", d.VectorStore.Provider)
	v.SetDefault("vector_store.target", d.VectorStore.Target)

	// API
	v.SetDefault("api.listen", d.API.Listen)
}
