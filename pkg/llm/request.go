package llm

// ChatRequest is a provider-agnostic chat completion request.
type ChatRequest struct {
	// Model name (e.g., "llama3.2", "qwen2.5-coder").
	Model string `json:"model"`

	// Conversation messages, system prompt included as a leading message.
	Messages []Message `json:"messages"`

	// Generation parameters. Nil means provider default.
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	TopK        *int     `json:"top_k,omitempty"`
	Stop        []string `json:"stop,omitempty"`
	Seed        *int     `json:"seed,omitempty"`
}
