package ocr

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const visionPrompt = "Extract all text from this document image. Return only the raw text content, preserving the layout as much as possible."

const visionMaxTokens = 4096

// VisionOCR extracts text from document images using a multimodal chat
// model. The image is passed by URL, so it must be reachable by the
// API (a signed URL works).
type VisionOCR struct {
	client *openai.Client
	model  string
}

// NewVisionOCR creates a vision-based recognizer using the given model.
func NewVisionOCR(client *openai.Client, model string) *VisionOCR {
	return &VisionOCR{client: client, model: model}
}

func (v *VisionOCR) ExtractImageText(ctx context.Context, imageURL string) (string, error) {
	resp, err := v.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: v.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: visionPrompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: imageURL},
					},
				},
			},
		},
		MaxTokens: visionMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("vision request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision response contained no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}
