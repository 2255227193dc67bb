package embed

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"videoquery/config"
	"videoquery/core"
)

// OpenAIProvider embeds text through an OpenAI-compatible embeddings API.
type OpenAIProvider struct {
	cli   *openai.Client
	model string
	dim   int
}

// NewOpenAIProvider builds a provider from service configuration.
func NewOpenAIProvider(cfg *config.Config) (*OpenAIProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAIProvider{
		cli:   openai.NewClientWithConfig(clientConfig),
		model: cfg.EmbeddingModel,
		dim:   cfg.EmbeddingDim,
	}, nil
}

func (p *OpenAIProvider) Model() string { return p.model }

func (p *OpenAIProvider) Dimensions() int { return p.dim }

func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := p.cli.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(p.model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embedding API: %v", core.ErrBackendUnavailable, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: embedding API returned %d vectors for %d inputs",
			core.ErrBackendUnavailable, len(resp.Data), len(texts))
	}
	vecs := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("%w: embedding API returned out-of-range index %d",
				core.ErrBackendUnavailable, d.Index)
		}
		vecs[d.Index] = d.Embedding
	}
	return vecs, nil
}
