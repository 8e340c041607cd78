package extraction

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Completer issues a JSON-mode chat completion and returns the raw
// message content.
type Completer interface {
	CompleteJSON(ctx context.Context, model, system, user string) (string, error)
}

// OpenAICompleter implements Completer using the OpenAI Chat
// Completions API with the JSON object response format.
type OpenAICompleter struct {
	client *openai.Client
}

// NewOpenAICompleter creates a completer with the given API key.
func NewOpenAICompleter(apiKey string) *OpenAICompleter {
	return &OpenAICompleter{client: openai.NewClient(apiKey)}
}

func (c *OpenAICompleter) CompleteJSON(ctx context.Context, model, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
