package llm

import "time"

// ChatResponse is a provider-agnostic chat completion response.
type ChatResponse struct {
	// Model that generated the response.
	Model string `json:"model"`

	// Response timestamp.
	CreatedAt time.Time `json:"created_at,omitzero"`

	// The assistant's response message.
	Message Message `json:"message"`

	// Stop reason (e.g., "stop", "length").
	StopReason string `json:"stop_reason,omitempty"`

	// Token usage and timing metrics, when the provider reports them.
	Usage *Usage `json:"usage,omitempty"`
}

// Usage contains token counts and timing information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`

	// Timing, normalized to nanoseconds where the provider reports it.
	TotalDurationNs  int64 `json:"total_duration_ns,omitempty"`
	PromptDurationNs int64 `json:"prompt_duration_ns,omitempty"`
}
