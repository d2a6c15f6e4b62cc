package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --backend
// on both "hearth chat" and "hearth stats").
type Flag struct {
	// Name is the long flag name (e.g. "backend").
	Name string

	// Shorthand is the one-letter short flag (e.g. "b"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "client.backend").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddIntFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagBackend         = "backend"
	FlagChat            = "chat"
	FlagModel           = "model"
	FlagMemoryEnabled   = "memory"
	FlagContextWindow   = "context-messages"
	FlagSearchLimit     = "search-limit"
	FlagScanMessages    = "scan-messages"
	FlagEmbeddingTgt    = "embedding-target"
	FlagEmbeddingModel  = "embedding-model"
	FlagVectorStoreProv = "vector-store-provider"
	FlagVectorStoreTgt  = "vector-store-target"
	FlagAPIListen       = "api-listen"
)

// Flags is the default flag registry shared by the hearth commands.
var Flags = FlagSet{
	FlagBackend: {
		Name: "backend", Shorthand: "b", ViperKey: "client.backend",
		Description: "Chat backend to use (ollama or llama-server)",
	},
	FlagChat: {
		Name: "chat", Shorthand: "c", ViperKey: "client.chat",
		Description: "Name of the saved chat to open",
	},
	FlagModel: {
		Name: "model", Shorthand: "m", ViperKey: "ollama.model",
		Description: "Model name for chat completions",
	},
	FlagContextWindow: {
		Name: "context-messages", ViperKey: "memory.max_context_messages",
		Description: "How many recent messages to include in the prompt context",
	},
	FlagSearchLimit: {
		Name: "search-limit", ViperKey: "memory.semantic_search_limit",
		Description: "How many semantically similar messages to retrieve",
	},
	FlagScanMessages: {
		Name: "scan-messages", ViperKey: "memory.max_scan_messages",
		Description: "How many recent messages fact extraction scans (0 = all)",
	},
	FlagEmbeddingTgt: {
		Name: "embedding-target", ViperKey: "embedding.target",
		Description: "Ollama-compatible embedding endpoint URL",
	},
	FlagEmbeddingModel: {
		Name: "embedding-model", ViperKey: "embedding.model",
		Description: "Embedding model name",
	},
	FlagVectorStoreProv: {
		Name: "vector-store-provider", ViperKey: "vector_store.provider",
		Description: "Vector index backend (brute or sqlite)",
	},
	FlagVectorStoreTgt: {
		Name: "vector-store-target", ViperKey: "vector_store.target",
		Description: "Vector index target (sqlite database path)",
	},
	FlagAPIListen: {
		Name: "api-listen", ViperKey: "api.listen",
		Description: "Listen address for the local API server",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *int) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultInt returns the default int value for a viper key from NewDefaultConfig.
func defaultInt(viperKey string) int {
	v := viper.New()
	setViperDefaults(v)
	return v.GetInt(viperKey)
}
