// Package llm talks to the text-completion backend over an OpenAI-compatible
// chat API. An Ollama server exposes the same surface under /v1, so the one
// client covers both local and hosted backends.
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAICompleter struct {
	client *openai.Client
}

// NewOpenAICompleter creates a completion client. The API key is read from
// apiKeyEnv when set; local backends such as Ollama accept any value.
// baseURL overrides the default OpenAI endpoint when non-empty.
func NewOpenAICompleter(apiKeyEnv, baseURL string) *OpenAICompleter {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		apiKey = "unused"
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAICompleter{client: openai.NewClientWithConfig(cfg)}
}

// Complete submits the prompt as a single user message and returns the
// trimmed model output. Deadlines and cancellation come from ctx; the error
// wraps ctx.Err() when a deadline is hit.
func (c *OpenAICompleter) Complete(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
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
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Ping verifies the backend is reachable. Used at startup and by the health
// endpoint; an unreachable backend is a deployment problem, not a per-request
// condition.
func (c *OpenAICompleter) Ping(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	return nil
}
