package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/leon37/KindKeeper/internal/config"
	"github.com/leon37/KindKeeper/internal/infrastructure/audio"
	"github.com/leon37/KindKeeper/internal/model"
	"github.com/sashabaranov/go-openai"
)

var (
	// ErrNetwork 接口不可达、超时或返回非 2xx
	ErrNetwork = errors.New("llm endpoint unavailable")
	// ErrParse LLM 返回的内容不是约定的 JSON 结构
	ErrParse = errors.New("malformed llm response")

	ErrEmptyInput = errors.New("empty input")
)

// Provider 定义了 Intent Service 的通用行为
type Provider interface {
	// Interpret 接收用户输入，返回回复文本和结构化的数据库操作
	Interpret(ctx context.Context, userText string) (*model.Intent, error)
}

// Transcriber 语音转文字
type Transcriber interface {
	Transcribe(ctx context.Context, blob audio.Blob) (string, error)
}

// NewOpenAIClient 兼容 OpenAI 协议的客户端 (OpenAI / DeepSeek / 中转地址)
func NewOpenAIClient(cfg config.ModelConfig) *openai.Client {
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		c.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return openai.NewClientWithConfig(c)
}
