package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leon37/KindKeeper/internal/config"
	"github.com/leon37/KindKeeper/internal/infrastructure/audio"
	"github.com/sashabaranov/go-openai"
)

var ErrEmptyAudio = errors.New("empty audio blob")

type transcriptionCreator interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// WhisperClient 语音识别，失败直接返回，不做重试也不切换引擎
type WhisperClient struct {
	client    transcriptionCreator
	modelName string
	language  string
}

func NewWhisperClient(cfg config.ModelConfig, language string) *WhisperClient {
	return newWhisperClient(NewOpenAIClient(cfg), cfg.Model, language)
}

func newWhisperClient(c transcriptionCreator, modelName, language string) *WhisperClient {
	if modelName == "" {
		modelName = openai.Whisper1
	}
	return &WhisperClient{client: c, modelName: modelName, language: language}
}

func (w *WhisperClient) Transcribe(ctx context.Context, blob audio.Blob) (string, error) {
	if len(blob.Data) == 0 {
		return "", ErrEmptyAudio
	}

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model: w.modelName,
		// FilePath 只用来让服务端识别容器格式
		FilePath: "audio" + blob.Extension(),
		Reader:   bytes.NewReader(blob.Data),
		Language: w.language,
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
