// Package ollama implements the provider interface against Ollama's native
// /api/chat endpoint. Streaming responses are newline-delimited JSON.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hearthchat/hearth/pkg/llm"
	"github.com/hearthchat/hearth/pkg/llm/provider"
)

// Config holds the Ollama chat client configuration.
type Config struct {
	// BaseURL is the server root, e.g. http://localhost:11434.
	BaseURL string

	// Timeout bounds non-streaming requests. Streaming requests are bounded
	// by the caller's context only.
	Timeout time.Duration
}

// Client talks to an Ollama server.
type Client struct {
	baseURL string
	client  *http.Client

	// streamClient carries no timeout; streaming requests are bounded by
	// the caller's context.
	streamClient *http.Client
}

// NewClient creates an Ollama chat client.
func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("ollama base URL is required")
	}
	if config.Timeout == 0 {
		config.Timeout = 120 * time.Second
	}

	return &Client{
		baseURL:      strings.TrimRight(config.BaseURL, "/"),
		client:       &http.Client{Timeout: config.Timeout},
		streamClient: &http.Client{},
	}, nil
}

func (c *Client) Name() string {
	return "ollama"
}

// chatRequest is Ollama's native chat payload.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []llm.Message `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *chatOptions  `json:"options,omitempty"`
}

type chatOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	TopK        *int     `json:"top_k,omitempty"`
	NumPredict  *int     `json:"num_predict,omitempty"`
	Seed        *int     `json:"seed,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// chatResponse is one Ollama chat response object; in streaming mode each
// NDJSON line has this shape.
type chatResponse struct {
	Model     string      `json:"model"`
	CreatedAt time.Time   `json:"created_at"`
	Message   llm.Message `json:"message"`
	Done      bool        `json:"done"`
	DoneReason string     `json:"done_reason,omitempty"`

	TotalDuration      int64 `json:"total_duration,omitempty"`
	PromptEvalDuration int64 `json:"prompt_eval_duration,omitempty"`
	PromptEvalCount    int   `json:"prompt_eval_count,omitempty"`
	EvalCount          int   `json:"eval_count,omitempty"`
}

func encodeRequest(req *llm.ChatRequest, stream bool) ([]byte, error) {
	payload := chatRequest{
		Model:    req.Model,
		Messages: req.Messages,
		Stream:   stream,
	}
	if req.Temperature != nil || req.TopP != nil || req.TopK != nil ||
		req.MaxTokens != nil || req.Seed != nil || len(req.Stop) > 0 {
		payload.Options = &chatOptions{
			Temperature: req.Temperature,
			TopP:        req.TopP,
			TopK:        req.TopK,
			NumPredict:  req.MaxTokens,
			Seed:        req.Seed,
			Stop:        req.Stop,
		}
	}
	return json.Marshal(payload)
}

func (r *chatResponse) usage() *llm.Usage {
	if r.TotalDuration == 0 && r.EvalCount == 0 && r.PromptEvalCount == 0 {
		return nil
	}
	return &llm.Usage{
		PromptTokens:     r.PromptEvalCount,
		CompletionTokens: r.EvalCount,
		TotalTokens:      r.PromptEvalCount + r.EvalCount,
		TotalDurationNs:  r.TotalDuration,
		PromptDurationNs: r.PromptEvalDuration,
	}
}

func (c *Client) post(ctx context.Context, body []byte, stream bool) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := c.client
	if stream {
		client = c.streamClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending chat request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ollama chat returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return resp, nil
}

// Chat performs a blocking completion.
func (c *Client) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	body, err := encodeRequest(req, false)
	if err != nil {
		return nil, fmt.Errorf("encoding chat request: %w", err)
	}

	resp, err := c.post(ctx, body, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding chat response: %w", err)
	}

	return &llm.ChatResponse{
		Model:      parsed.Model,
		CreatedAt:  parsed.CreatedAt,
		Message:    parsed.Message,
		StopReason: parsed.DoneReason,
		Usage:      parsed.usage(),
	}, nil
}

// ChatStream performs a streaming completion over NDJSON, invoking handler
// per chunk and returning the assembled response.
func (c *Client) ChatStream(ctx context.Context, req *llm.ChatRequest, handler provider.ChunkHandler) (*llm.ChatResponse, error) {
	body, err := encodeRequest(req, true)
	if err != nil {
		return nil, fmt.Errorf("encoding chat request: %w", err)
	}

	resp, err := c.post(ctx, body, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	final := &llm.ChatResponse{Message: llm.Message{Role: llm.RoleAssistant}}
	var content strings.Builder

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var parsed chatResponse
		if err := json.Unmarshal(line, &parsed); err != nil {
			return nil, fmt.Errorf("decoding stream chunk: %w", err)
		}

		content.WriteString(parsed.Message.Content)
		final.Model = parsed.Model
		final.CreatedAt = parsed.CreatedAt
		if parsed.Done {
			final.StopReason = parsed.DoneReason
			final.Usage = parsed.usage()
		}

		chunk := llm.StreamChunk{
			Model:      parsed.Model,
			CreatedAt:  parsed.CreatedAt,
			Delta:      parsed.Message.Content,
			Done:       parsed.Done,
			StopReason: parsed.DoneReason,
			Usage:      parsed.usage(),
		}
		if err := handler(chunk); err != nil {
			if errors.Is(err, provider.ErrStreamInterrupted) {
				return nil, err
			}
			return nil, fmt.Errorf("stream handler: %w", err)
		}
		if parsed.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading stream: %w", err)
	}

	final.Message.Content = content.String()

	return final, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
