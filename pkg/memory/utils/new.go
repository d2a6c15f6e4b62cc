// Package memoryutils is the session manager utility package
package memoryutils

import (
	"log/slog"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hearthchat/hearth/pkg/memory"
	"github.com/hearthchat/hearth/pkg/vector"
	vectorutils "github.com/hearthchat/hearth/pkg/vector/utils"
)

type NewManagerOpts struct {
	// Viper is the resolved settings chain (flags > env > config file > defaults).
	Viper *viper.Viper

	// DataDir overrides the default .hearth/ location.
	DataDir string

	Logger *slog.Logger

	// IndexLogger feeds the sqlite-vec driver, which logs through zap.
	IndexLogger *zap.Logger
}

// NewManager builds a session manager from resolved configuration. The vector
// index is created lazily per session from the vector_store.* keys.
func NewManager(o *NewManagerOpts) *memory.Manager {
	v := o.Viper

	return memory.NewManager(memory.ManagerConfig{
		Enabled:             v.GetBool("memory.enabled"),
		MaxContextMessages:  v.GetInt("memory.max_context_messages"),
		SemanticSearchLimit: v.GetInt("memory.semantic_search_limit"),
		MaxScanMessages:     v.GetInt("memory.max_scan_messages"),
		FactCacheEnabled:    v.GetBool("memory.fact_cache_enabled"),
		FactCategories:      v.GetStringSlice("facts.categories"),
		CustomKeywords:      v.GetString("facts.custom_keywords"),
		EmbeddingEnabled:    v.GetBool("memory.enabled"),
		EmbeddingTarget:     v.GetString("embedding.target"),
		EmbeddingModel:      v.GetString("embedding.model"),
		DataDir:             o.DataDir,
		NewIndex: func() (vector.Index, error) {
			return vectorutils.NewIndex(&vectorutils.NewIndexOpts{
				ProviderType: v.GetString("vector_store.provider"),
				Target:       v.GetString("vector_store.target"),
				Dimensions:   v.GetUint("embedding.dimensions"),
				Logger:       o.IndexLogger,
			})
		},
	}, o.Logger)
}
