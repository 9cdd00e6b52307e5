package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	STT       STTConfig
	Translate TranslateConfig
	TTS       TTSConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	// JWTSecret enables bearer auth on /api/v1 when non-empty.
	JWTSecret string
}

type STTConfig struct {
	OpenAIKey     string
	OpenAIBaseURL string
	Model         string // default: "whisper-1"
}

type TranslateConfig struct {
	Provider      string // "openai" or "anthropic"
	OpenAIKey     string
	OpenAIBaseURL string
	AnthropicKey  string
	Model         string
}

type TTSConfig struct {
	ElevenLabsKey string
	BaseURL       string // default: "https://api.elevenlabs.io"
	DefaultVoice  string
	DefaultModel  string
	DefaultFormat string // default: "mp3"
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			MaxConns: maxConns,
			MinConns: minConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", ""),
		},
		STT: STTConfig{
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("STT_OPENAI_BASE_URL", ""),
			Model:         getEnv("STT_MODEL", "whisper-1"),
		},
		Translate: TranslateConfig{
			Provider:      getEnv("TRANSLATE_PROVIDER", "openai"),
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("TRANSLATE_OPENAI_BASE_URL", ""),
			AnthropicKey:  getEnv("ANTHROPIC_API_KEY", ""),
			Model:         getEnv("TRANSLATE_MODEL", ""),
		},
		TTS: TTSConfig{
			ElevenLabsKey: getEnv("ELEVENLABS_API_KEY", ""),
			BaseURL:       getEnv("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io"),
			DefaultVoice:  getEnv("TTS_DEFAULT_VOICE_ID", ""),
			DefaultModel:  getEnv("TTS_DEFAULT_MODEL_ID", ""),
			DefaultFormat: getEnv("TTS_DEFAULT_FORMAT", "mp3"),
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate reports missing env vars the worker cannot run without. The API
// server starts with any subset configured; adapters surface a missing
// credential per request instead.
func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
