package embedding

import (
	"context"
	"errors"
)

// ErrEmptyEmbedding 接口成功返回但没有向量数据
var ErrEmptyEmbedding = errors.New("empty embedding data returned")

// Provider 把一条记录的描述文本转换为向量，维度需与 qdrant.vector_size 一致
type Provider interface {
	GetVector(ctx context.Context, text string) ([]float32, error)
}

var _ Provider = (*OpenAIClient)(nil)
