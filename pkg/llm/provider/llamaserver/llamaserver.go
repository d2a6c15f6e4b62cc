// Package llamaserver implements the provider interface against llama.cpp's
// llama-server, which exposes an OpenAI-compatible /v1/chat/completions
// endpoint. Streaming responses are SSE with a [DONE] sentinel.
//
// llama-server has no embedding endpoint; embeddings are always served by
// the Ollama provider even when this backend handles chat.
package llamaserver

import (
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
	"github.com/hearthchat/hearth/pkg/sse"
)

// doneSentinel terminates an OpenAI-style SSE stream.
const doneSentinel = "[DONE]"

// Config holds the llama-server chat client configuration.
type Config struct {
	// BaseURL is the server root, e.g. http://localhost:8080.
	BaseURL string

	// Timeout bounds non-streaming requests.
	Timeout time.Duration
}

// Client talks to a llama-server instance.
type Client struct {
	baseURL string
	client  *http.Client

	// streamClient carries no timeout; streaming requests are bounded by
	// the caller's context.
	streamClient *http.Client
}

// NewClient creates a llama-server chat client.
func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("llama-server base URL is required")
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
	return "llama-server"
}

// chatRequest is the OpenAI-compatible payload llama-server accepts.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	Stream      bool          `json:"stream"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	TopP        *float64      `json:"top_p,omitempty"`
	Stop        []string      `json:"stop,omitempty"`
	Seed        *int          `json:"seed,omitempty"`
}

type chatCompletion struct {
	Model   string `json:"model"`
	Created int64  `json:"created"`
	Choices []struct {
		Message      llm.Message `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *completionUsage `json:"usage"`
}

type chatCompletionChunk struct {
	Model   string `json:"model"`
	Created int64  `json:"created"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *completionUsage `json:"usage"`
}

type completionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (u *completionUsage) toUsage() *llm.Usage {
	if u == nil {
		return nil
	}
	return &llm.Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}

func (c *Client) post(ctx context.Context, req *llm.ChatRequest, stream bool) (*http.Response, error) {
	body, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Stream:      stream,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stop:        req.Stop,
		Seed:        req.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

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
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("llama-server chat returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	return resp, nil
}

// Chat performs a blocking completion.
func (c *Client) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	resp, err := c.post(ctx, req, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed chatCompletion
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("chat response has no choices")
	}

	return &llm.ChatResponse{
		Model:      parsed.Model,
		CreatedAt:  time.Unix(parsed.Created, 0),
		Message:    parsed.Choices[0].Message,
		StopReason: parsed.Choices[0].FinishReason,
		Usage:      parsed.Usage.toUsage(),
	}, nil
}

// ChatStream performs a streaming completion over SSE, invoking handler per
// chunk and returning the assembled response.
func (c *Client) ChatStream(ctx context.Context, req *llm.ChatRequest, handler provider.ChunkHandler) (*llm.ChatResponse, error) {
	resp, err := c.post(ctx, req, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	final := &llm.ChatResponse{Message: llm.Message{Role: llm.RoleAssistant}}
	var content strings.Builder

	reader := sse.NewReader(resp.Body)
	for {
		event, err := reader.Next()
		if err != nil {
			return nil, fmt.Errorf("reading stream: %w", err)
		}
		if event == nil || event.Data == doneSentinel {
			break
		}

		var parsed chatCompletionChunk
		if err := json.Unmarshal([]byte(event.Data), &parsed); err != nil {
			return nil, fmt.Errorf("decoding stream chunk: %w", err)
		}
		if len(parsed.Choices) == 0 {
			continue
		}

		choice := parsed.Choices[0]
		content.WriteString(choice.Delta.Content)
		final.Model = parsed.Model
		final.CreatedAt = time.Unix(parsed.Created, 0)

		done := choice.FinishReason != ""
		if done {
			final.StopReason = choice.FinishReason
			final.Usage = parsed.Usage.toUsage()
		}

		chunk := llm.StreamChunk{
			Model:      parsed.Model,
			CreatedAt:  time.Unix(parsed.Created, 0),
			Delta:      choice.Delta.Content,
			Done:       done,
			StopReason: choice.FinishReason,
			Usage:      parsed.Usage.toUsage(),
		}
		if err := handler(chunk); err != nil {
			if errors.Is(err, provider.ErrStreamInterrupted) {
				return nil, err
			}
			return nil, fmt.Errorf("stream handler: %w", err)
		}
	}

	final.Message.Content = content.String()

	return final, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
