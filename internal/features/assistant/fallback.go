package assistant

import (
	"context"
	"fmt"

	"go-crm-assistant/internal/config"

	"github.com/sashabaranov/go-openai"
)

const fallbackPrompt = `You are the assistant of a small-business inventory and invoicing app.
Answer briefly and in plain text. When the user seems to want an action,
point them to the closest of these supported commands:

` + helpText

type OpenAIFallback struct {
	client *openai.Client
	model  string
}

// NewFallback returns the LLM fallback, or nil when no API key is configured
func NewFallback(cfg *config.Config) Fallback {
	if cfg.OpenAIAPIKey == "" {
		return nil
	}
	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAIBaseURL
	}
	return &OpenAIFallback{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.OpenAIModel,
	}
}

func (f *OpenAIFallback) Reply(ctx context.Context, utterance string) (string, error) {
	resp, err := f.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: f.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fallbackPrompt},
			{Role: openai.ChatMessageRoleUser, Content: utterance},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}
	return resp.Choices[0].Message.Content, nil
}
