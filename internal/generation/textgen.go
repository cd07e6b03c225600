package generation

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// TextClient wraps the chat-completion endpoint behind the plain
// prompt-in/text-out contract the planner consumes.
type TextClient struct {
	client *openai.Client
	model  string
}

// NewTextClient creates a TextClient. baseURL may be empty to use the
// default endpoint, which also allows pointing at any
// OpenAI-compatible server.
func NewTextClient(apiKey, baseURL, model string) *TextClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &TextClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Generate sends a single-message completion request and returns the
// model's text.
func (c *TextClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
