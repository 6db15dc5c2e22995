package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/leon37/KindKeeper/internal/config"
	"github.com/leon37/KindKeeper/internal/infrastructure/llm"
	"github.com/sashabaranov/go-openai"
)

type embeddingCreator interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

type OpenAIClient struct {
	client embeddingCreator
	model  string // 例如 "text-embedding-3-small"，维度 1536
}

func NewOpenAIClient(cfg config.ModelConfig) *OpenAIClient {
	return newOpenAIClient(llm.NewOpenAIClient(cfg), cfg.Model)
}

func newOpenAIClient(c embeddingCreator, model string) *OpenAIClient {
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	return &OpenAIClient{client: c, model: model}
}

func (c *OpenAIClient) GetVector(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("embedding: %w", llm.ErrEmptyInput)
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding api error: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return resp.Data[0].Embedding, nil
}
