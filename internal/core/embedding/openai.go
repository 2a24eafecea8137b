package embedding

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lihongwen/pgvector-kit/internal/core"
	"github.com/lihongwen/pgvector-kit/internal/core/apperr"
)

// DashScopeBaseURL is Alibaba Cloud's OpenAI-compatible endpoint; DashScope's
// text-embedding models are served through the same wire protocol.
const DashScopeBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"

// OpenAICompatibleBackend drives any OpenAI-compatible embeddings endpoint
// (OpenAI itself, DashScope compatible mode, local gateways).
type OpenAICompatibleBackend struct {
	client *openai.Client
	model  string
	name   string
}

// NewOpenAIBackend talks to api.openai.com.
func NewOpenAIBackend(apiKey, model string) (*OpenAICompatibleBackend, error) {
	return newCompatible("openai", apiKey, "", model, "text-embedding-3-small")
}

// NewDashScopeBackend talks to DashScope's compatible-mode endpoint.
func NewDashScopeBackend(apiKey, baseURL, model string) (*OpenAICompatibleBackend, error) {
	if baseURL == "" {
		baseURL = DashScopeBaseURL
	}
	return newCompatible("dashscope", apiKey, baseURL, model, "text-embedding-v4")
}

func newCompatible(name, apiKey, baseURL, model, defaultModel string) (*OpenAICompatibleBackend, error) {
	if apiKey == "" {
		return nil, apperr.Configuration("%s API key is required but not configured", name)
	}
	if model == "" {
		model = defaultModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAICompatibleBackend{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		name:   name,
	}, nil
}

// Embed issues one embeddings request for the whole batch. Output dimension
// is whatever the model produces; callers normalize it downstream.
func (b *OpenAICompatibleBackend) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := b.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(b.model),
	})
	if err != nil {
		return nil, fmt.Errorf("%s embed: %w", b.name, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%s embed: got %d embeddings for %d texts", b.name, len(resp.Data), len(texts))
	}

	// The API does not guarantee response order; Index does.
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("%s embed: embedding index %d out of range", b.name, d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

func (b *OpenAICompatibleBackend) Name() string { return b.name }

func (b *OpenAICompatibleBackend) Close() error { return nil }

var _ core.EmbeddingBackend = (*OpenAICompatibleBackend)(nil)
