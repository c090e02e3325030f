package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient calls an OpenAI-compatible chat completion endpoint. Most
// hosted inference providers expose this API shape, so the base URL is
// configurable.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// OpenAIOptions configures NewOpenAI. Zero values fall back to the defaults
// noted per field.
type OpenAIOptions struct {
	APIKey      string
	BaseURL     string  // provider endpoint; empty keeps the library default
	Model       string  // required
	MaxTokens   int     // default 150; bounds reply size and latency
	Temperature float64 // default 0.7
}

// NewOpenAI constructs a client for the configured provider.
func NewOpenAI(opts OpenAIOptions) *OpenAIClient {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 150
	}
	temp := opts.Temperature
	if temp <= 0 {
		temp = 0.7
	}
	return &OpenAIClient{
		client:      openai.NewClientWithConfig(cfg),
		model:       opts.Model,
		maxTokens:   maxTokens,
		temperature: float32(temp),
	}
}

// Complete sends the prompt as a single-turn chat completion and returns the
// first choice's text. Transport failures, timeouts, and empty choice lists
// all surface as errors.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
