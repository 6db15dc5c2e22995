package speech

import (
	"context"
	"fmt"
	"io"

	"github.com/leon37/KindKeeper/internal/config"
	"github.com/leon37/KindKeeper/internal/infrastructure/llm"
	"github.com/sashabaranov/go-openai"
)

type speechCreator interface {
	CreateSpeech(ctx context.Context, req openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// OpenAIEngine TTS via /audio/speech, mp3 output
type OpenAIEngine struct {
	client speechCreator
	model  string
}

func NewOpenAIEngine(modelCfg config.ModelConfig, model string) *OpenAIEngine {
	return newOpenAIEngine(llm.NewOpenAIClient(modelCfg), model)
}

func newOpenAIEngine(c speechCreator, model string) *OpenAIEngine {
	if model == "" {
		model = string(openai.TTSModel1)
	}
	return &OpenAIEngine{client: c, model: model}
}

func (e *OpenAIEngine) Synthesize(ctx context.Context, text string, voice Voice, rate float64) (io.ReadCloser, error) {
	name := voice.Name
	if name == "" {
		name = string(openai.VoiceAlloy)
	}
	if rate <= 0 {
		rate = 1
	}

	resp, err := e.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(e.model),
		Input:          text,
		Voice:          openai.SpeechVoice(name),
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          rate,
	})
	if err != nil {
		return nil, fmt.Errorf("create speech: %w", err)
	}
	return resp, nil
}
