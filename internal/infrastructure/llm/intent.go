package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/leon37/KindKeeper/internal/config"
	"github.com/leon37/KindKeeper/internal/model"
	"github.com/sashabaranov/go-openai"
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// IntentClient 调用 OpenAI 兼容接口，把自然语言转成 model.Intent
type IntentClient struct {
	client      chatCompleter
	modelName   string
	temperature float32
	maxTokens   int
	useSchema   bool
	retry       RetryPolicy
	now         func() time.Time
}

func NewIntentClient(cfg config.ModelConfig) *IntentClient {
	return newIntentClient(NewOpenAIClient(cfg), cfg)
}

func newIntentClient(c chatCompleter, cfg config.ModelConfig) *IntentClient {
	return &IntentClient{
		client:      c,
		modelName:   cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		useSchema:   cfg.JSONSchema,
		retry:       RetryPolicyFrom(cfg.Retry),
		now:         time.Now,
	}
}

func (c *IntentClient) Interpret(ctx context.Context, userText string) (*model.Intent, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return nil, ErrEmptyInput
	}

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: BuildSystemPrompt(c.now())},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
		Temperature:    c.temperature,
		MaxTokens:      c.maxTokens,
		ResponseFormat: responseFormat(c.useSchema),
	}

	var resp openai.ChatCompletionResponse
	err := c.retry.Do(ctx, "intent", func(ctx context.Context) error {
		var callErr error
		resp, callErr = c.client.CreateChatCompletion(ctx, req)
		return callErr
	})
	if err != nil {
		slog.Error("intent request failed", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", ErrParse)
	}
	intent, err := ParseIntent(resp.Choices[0].Message.Content)
	if err != nil {
		slog.Error("intent response malformed", "content", resp.Choices[0].Message.Content, "err", err)
		return nil, err
	}

	slog.Debug("intent parsed", "operations", len(intent.Operations))
	return intent, nil
}

// ParseIntent 解析 {userResponse, dbOperations} 信封，不校验 data 内容
func ParseIntent(content string) (*model.Intent, error) {
	var envelope struct {
		UserResponse *string               `json:"userResponse"`
		DBOperations *[]model.RawOperation `json:"dbOperations"`
	}
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if envelope.UserResponse == nil {
		return nil, fmt.Errorf("%w: missing userResponse", ErrParse)
	}
	if envelope.DBOperations == nil {
		return nil, fmt.Errorf("%w: missing dbOperations", ErrParse)
	}

	return &model.Intent{
		Reply:      *envelope.UserResponse,
		Operations: *envelope.DBOperations,
	}, nil
}
