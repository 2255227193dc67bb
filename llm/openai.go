package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"videoquery/config"
	"videoquery/core"
)

// openaiBackend generates through an OpenAI-compatible chat completions API.
type openaiBackend struct {
	cli   *openai.Client
	model string
}

func newOpenAIBackend(cfg *config.Config, model string) (*openaiBackend, error) {
	if !cfg.HasValidAPI() {
		return nil, fmt.Errorf("openai backend requires api_key and base_url")
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &openaiBackend{cli: openai.NewClientWithConfig(clientConfig), model: model}, nil
}

func (b *openaiBackend) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := b.cli.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   1000,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %v", core.ErrBackendUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: chat completion returned no choices", core.ErrBackendUnavailable)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
