package config

const (
	defaultOllamaTarget      = "http://localhost:11434"
	defaultLlamaServerTarget = "http://localhost:8080"

	defaultClientBackend = "ollama"
	defaultClientChat    = "default"

	defaultMaxContextMessages  = 20
	defaultSemanticSearchLimit = 5
	defaultMaxScanMessages     = 50

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingModel      = "nomic-embed-text"
	defaultEmbeddingDimensions = 768

	defaultVectorProvider = "brute"

	defaultAPIListen = ":8089"
)

// DefaultFactCategories is the default set of tracked fact categories.
var DefaultFactCategories = []string{"name", "job", "pet", "family", "location", "age"}

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Ollama: BackendConfig{
			Target: defaultOllamaTarget,
		},
		LlamaServer: BackendConfig{
			Target: defaultLlamaServerTarget,
		},
		Client: ClientConfig{
			Backend: defaultClientBackend,
			Chat:    defaultClientChat,
		},
		Memory: MemoryConfig{
			Enabled:             true,
			MaxContextMessages:  defaultMaxContextMessages,
			SemanticSearchLimit: defaultSemanticSearchLimit,
			MaxScanMessages:     defaultMaxScanMessages,
			FactCacheEnabled:    true,
		},
		Facts: FactsConfig{
			Categories: append([]string(nil), DefaultFactCategories...),
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultOllamaTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		VectorStore: VectorStoreConfig{
			Provider: defaultVectorProvider,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
	}
}
