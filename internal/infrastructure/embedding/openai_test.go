package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/leon37/KindKeeper/internal/infrastructure/llm"
	"github.com/sashabaranov/go-openai"
)

type fakeCreator struct {
	req  openai.EmbeddingRequest
	resp openai.EmbeddingResponse
	err  error
}

func (f *fakeCreator) CreateEmbeddings(_ context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	f.req = conv.Convert()
	return f.resp, f.err
}

func TestGetVector(t *testing.T) {
	fc := &fakeCreator{resp: openai.EmbeddingResponse{Data: []openai.Embedding{{Embedding: []float32{0.1, 0.2}}}}}
	c := newOpenAIClient(fc, "")

	vec, err := c.GetVector(context.Background(), " medicine for knee pain ")
	if err != nil {
		t.Fatalf("GetVector: %v", err)
	}
	if len(vec) != 2 {
		t.Errorf("vector = %v", vec)
	}
	if fc.req.Model != openai.SmallEmbedding3 {
		t.Errorf("model = %s", fc.req.Model)
	}
	if in, ok := fc.req.Input.([]string); !ok || in[0] != "medicine for knee pain" {
		t.Errorf("input = %#v", fc.req.Input)
	}
}

func TestGetVectorErrors(t *testing.T) {
	c := newOpenAIClient(&fakeCreator{}, "m")
	if _, err := c.GetVector(context.Background(), ""); !errors.Is(err, llm.ErrEmptyInput) {
		t.Errorf("err = %v, want ErrEmptyInput", err)
	}
	if _, err := c.GetVector(context.Background(), "x"); !errors.Is(err, ErrEmptyEmbedding) {
		t.Errorf("err = %v, want ErrEmptyEmbedding", err)
	}

	boom := errors.New("401")
	c = newOpenAIClient(&fakeCreator{err: boom}, "m")
	if _, err := c.GetVector(context.Background(), "x"); !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
}
