// Package llm plans tool calls with an OpenAI-compatible chat-completions model.
package llm

import (
	"context"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL is Gemini's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

// Default model settings.
const (
	DefaultModel       = "gemini-2.0-flash"
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 4096
)

// ChatClient is the subset of *openai.Client the planner uses.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewClient creates a chat client for apiKey against baseURL.
// An empty baseURL selects DefaultBaseURL.
func NewClient(apiKey, baseURL string, httpClient *http.Client) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = DefaultBaseURL
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return openai.NewClientWithConfig(cfg)
}
