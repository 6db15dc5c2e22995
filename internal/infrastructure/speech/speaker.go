package speech

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/leon37/KindKeeper/internal/config"
)

// Voice 一个可用的合成音色及其语言标签
type Voice struct {
	Name string
	Lang string
}

// Settings 朗读参数，可热更新
type Settings struct {
	PreferredLang string  // "en-IN"
	Language      string  // "en"
	Rate          float64 // 0.9
	Voices        []Voice
}

func SettingsFrom(cfg config.SpeechConfig) Settings {
	voices := make([]Voice, 0, len(cfg.Voices))
	for _, v := range cfg.Voices {
		voices = append(voices, Voice{Name: v.Name, Lang: v.Lang})
	}
	return Settings{
		PreferredLang: cfg.PreferredLang,
		Language:      cfg.Language,
		Rate:          cfg.Rate,
		Voices:        voices,
	}
}

// PickVoice 先找 PreferredLang 完全匹配的音色，再退到同语言的任意地区
// 都没有时返回 false，由引擎使用默认音色
func (s Settings) PickVoice() (Voice, bool) {
	for _, v := range s.Voices {
		if strings.EqualFold(v.Lang, s.PreferredLang) {
			return v, true
		}
	}
	prefix := strings.ToLower(s.Language) + "-"
	for _, v := range s.Voices {
		if strings.HasPrefix(strings.ToLower(v.Lang), prefix) {
			return v, true
		}
	}
	return Voice{}, false
}

// Engine 把文本合成为音频
type Engine interface {
	Synthesize(ctx context.Context, text string, voice Voice, rate float64) (io.ReadCloser, error)
}

// Player 播放合成好的音频 (API 里就是 HTTP 响应)
type Player interface {
	Play(ctx context.Context, audio io.Reader) error
}

// Speaker 同一时间只朗读一段；新的 Speak 会取消正在进行的那段
type Speaker struct {
	engine Engine

	mu       sync.Mutex
	settings Settings
	cancel   context.CancelFunc
	seq      uint64
}

func NewSpeaker(engine Engine, settings Settings) *Speaker {
	return &Speaker{engine: engine, settings: settings}
}

func (s *Speaker) UpdateSettings(settings Settings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
}

// Cancel 停止正在进行的朗读
func (s *Speaker) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Speak never returns an error: failures are logged and the call completes.
func (s *Speaker) Speak(ctx context.Context, text string, player Player) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.seq++
	seq := s.seq
	settings := s.settings
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		if s.seq == seq {
			s.cancel = nil
		}
		s.mu.Unlock()
	}()

	voice, ok := settings.PickVoice()
	if !ok {
		slog.Debug("no configured voice matches, using engine default", "lang", settings.PreferredLang)
	}

	stream, err := s.engine.Synthesize(ctx, text, voice, settings.Rate)
	if err != nil {
		slog.Error("speech synthesis error", "err", err)
		return
	}
	defer stream.Close()

	if err := player.Play(ctx, stream); err != nil && ctx.Err() == nil {
		slog.Error("speech playback error", "err", err)
	}
}

// Registry 每个用户一个 Speaker
type Registry struct {
	engine Engine

	mu       sync.Mutex
	settings Settings
	speakers map[string]*Speaker
}

func NewRegistry(engine Engine, settings Settings) *Registry {
	return &Registry{engine: engine, settings: settings, speakers: make(map[string]*Speaker)}
}

func (r *Registry) For(userID string) *Speaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	sp, ok := r.speakers[userID]
	if !ok {
		sp = NewSpeaker(r.engine, r.settings)
		r.speakers[userID] = sp
	}
	return sp
}

// Reload 配置热更新时调用
func (r *Registry) Reload(cfg config.SpeechConfig) {
	settings := SettingsFrom(cfg)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = settings
	for _, sp := range r.speakers {
		sp.UpdateSettings(settings)
	}
	slog.Info("speech settings reloaded", "preferred_lang", settings.PreferredLang, "voices", len(settings.Voices))
}
