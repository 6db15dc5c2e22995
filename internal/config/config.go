package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Chat     ChatConfig     `mapstructure:"chat"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	OpenAI   ModelConfig    `mapstructure:"openai"`
	Whisper  ModelConfig    `mapstructure:"whisper"`
	Speech   SpeechConfig   `mapstructure:"speech"`
	Embedder ModelConfig    `mapstructure:"embedding"`
	Qdrant   QdrantConfig   `mapstructure:"qdrant"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	OCR      OCRConfig      `mapstructure:"ocr"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
	// AllowedOrigins 为空表示允许所有来源
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DatabaseConfig struct {
	Driver  string `mapstructure:"driver"` // mysql | postgres | sqlite
	DSN     string `mapstructure:"dsn"`
	LogMode bool   `mapstructure:"log_mode"`
}

// ChatConfig 本地聊天记录库 (sqlite 文件)
type ChatConfig struct {
	Path string `mapstructure:"path"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type ModelConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	JSONSchema  bool          `mapstructure:"json_schema"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Retry       RetryConfig   `mapstructure:"retry"`
}

// RetryConfig MaxAttempts<=1 means a single attempt.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Backoff     time.Duration `mapstructure:"backoff"`
}

type SpeechConfig struct {
	Model         string        `mapstructure:"model"`
	Language      string        `mapstructure:"language"`       // e.g. "en"
	PreferredLang string        `mapstructure:"preferred_lang"` // e.g. "en-IN"
	Rate          float64       `mapstructure:"rate"`
	Voices        []VoiceConfig `mapstructure:"voices"`
}

type VoiceConfig struct {
	Name string `mapstructure:"name"`
	Lang string `mapstructure:"lang"`
}

type QdrantConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	CollectionName string `mapstructure:"collection_name"`
	VectorSize     uint64 `mapstructure:"vector_size"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type OCRConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Language string `mapstructure:"language"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.level", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("chat.path", "data/chat.db")
	v.SetDefault("jwt.expire_hours", 72)
	v.SetDefault("openai.model", "gpt-4")
	v.SetDefault("openai.temperature", 0.7)
	v.SetDefault("openai.max_tokens", 500)
	v.SetDefault("openai.retry.max_attempts", 1)
	v.SetDefault("whisper.model", "whisper-1")
	v.SetDefault("speech.model", "tts-1")
	v.SetDefault("speech.language", "en")
	v.SetDefault("speech.preferred_lang", "en-IN")
	v.SetDefault("speech.rate", 0.9)
	v.SetDefault("embedding.model", "text-embedding-3-small")
	v.SetDefault("qdrant.collection_name", "kindkeeper_entries")
	v.SetDefault("qdrant.vector_size", 1536)
	v.SetDefault("kafka.topic", "voice_entries")
	v.SetDefault("ocr.language", "eng")
}

// LoadConfig 读取配置文件
// .env 先加载进环境变量，再由 viper 的 AutomaticEnv 覆盖 yaml 里的值
// 比如设置环境变量 KINDKEEPER_OPENAI_API_KEY 可以覆盖 openai.api_key
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn(".env 加载失败", "err", err)
	}

	v := viper.GetViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("KINDKEEPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	return &cfg, nil
}

// Watch 监听配置文件变化，重新解析后回调 onChange
func Watch(onChange func(*Config)) {
	v := viper.GetViper()
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			slog.Error("配置热更新失败", "file", e.Name, "err", err)
			return
		}
		slog.Info("配置已重新加载", "file", e.Name)
		onChange(&cfg)
	})
	v.WatchConfig()
}

// SlogLevel maps log.level onto slog levels, defaulting to Info.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
