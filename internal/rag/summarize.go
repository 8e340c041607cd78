package rag

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const summarySystemPrompt = `You answer questions about a user's financial documents.
Use only the provided excerpts. Answer in two sentences or fewer.
If the excerpts do not answer the question, say so.`

// OpenAISummarizer generates short answers from search excerpts using a
// chat model.
type OpenAISummarizer struct {
	client *openai.Client
	model  string
}

// NewOpenAISummarizer creates a summarizer with the given API key and model.
func NewOpenAISummarizer(apiKey, model string) *OpenAISummarizer {
	return &OpenAISummarizer{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, query string, excerpts []string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nExcerpts:\n", query)
	for i, e := range excerpts {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, e)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: b.String()},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("summary request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("summary response contained no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
