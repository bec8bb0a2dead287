package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Cache    CacheConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Metrics  MetricsConfig
	AI       AIConfig
	Notify   NotifyConfig
}

type ServerConfig struct {
	Host         string        `env:"SERVER_HOST, default=0.0.0.0"`
	Port         int           `env:"SERVER_PORT, default=8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT, default=15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT, default=30s"`
}

type DatabaseConfig struct {
	Host     string `env:"DB_HOST, default=localhost"`
	Port     int    `env:"DB_PORT, default=5432"`
	User     string `env:"DB_USER, default=postgres"`
	Password string `env:"DB_PASSWORD"`
	DBName   string `env:"DB_NAME, default=clinic"`
	SSLMode  string `env:"DB_SSLMODE, default=disable"`
	LogLevel string `env:"DB_LOG_LEVEL, default=warn"`
}

type AuthConfig struct {
	// JWTSecret signs session cookies (HS256).
	JWTSecret     string        `env:"AUTH_JWT_SECRET"`
	SessionCookie string        `env:"AUTH_SESSION_COOKIE, default=clinic_session"`
	ClinicCookie  string        `env:"AUTH_CLINIC_COOKIE, default=default_clinic_id"`
	SessionTTL    time.Duration `env:"AUTH_SESSION_TTL, default=720h"`
}

type CacheConfig struct {
	Enabled bool   `env:"CACHE_ENABLED, default=true"`
	Type    string `env:"CACHE_TYPE, default=memory"` // memory or redis
}

type RedisConfig struct {
	Host     string `env:"REDIS_HOST, default=localhost"`
	Port     int    `env:"REDIS_PORT, default=6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS, default=*"`
	AllowedMethods []string `env:"CORS_ALLOWED_METHODS, default=GET;POST;PUT;PATCH;DELETE;OPTIONS, delimiter=;"`
	AllowedHeaders []string `env:"CORS_ALLOWED_HEADERS, default=Accept;Authorization;Content-Type, delimiter=;"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL, default=info"`
	Format string `env:"LOG_FORMAT, default=json"` // json or console
}

type MetricsConfig struct {
	Enabled bool `env:"METRICS_ENABLED, default=true"`
}

// AIConfig selects one vendor per capability. Selection is static; there is no
// runtime negotiation or fallback between providers.
type AIConfig struct {
	STTProvider string `env:"AI_STT_PROVIDER, default=deepgram"` // deepgram or whisper
	LLMProvider string `env:"AI_LLM_PROVIDER, default=openai"`   // openai, kimi or deepseek
	TTSProvider string `env:"AI_TTS_PROVIDER, default=deepgram"` // deepgram or openai

	DeepgramAPIKey string `env:"DEEPGRAM_API_KEY"`
	OpenAIAPIKey   string `env:"OPENAI_API_KEY"`
	KimiAPIKey     string `env:"KIMI_API_KEY"`
	DeepseekAPIKey string `env:"DEEPSEEK_API_KEY"`

	LLMModel       string  `env:"AI_LLM_MODEL"`
	LLMTemperature float64 `env:"AI_LLM_TEMPERATURE, default=0.3"`
	TTSVoice       string  `env:"AI_TTS_VOICE, default=aura-celeste-es"`
	Language       string  `env:"AI_DEFAULT_LANGUAGE, default=es"`

	RequestTimeout time.Duration `env:"AI_REQUEST_TIMEOUT, default=60s"`
}

type NotifyConfig struct {
	Workers int `env:"NOTIFY_WORKERS, default=4"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is honored when present, matching local development setups.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return &cfg, nil
}

// Validate checks settings that have no sane default.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Cache.Type != "memory" && c.Cache.Type != "redis" {
		return fmt.Errorf("CACHE_TYPE must be memory or redis, got %q", c.Cache.Type)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT out of range: %d", c.Server.Port)
	}
	return nil
}

// AIKeyFor returns the API key for the configured provider of a capability.
func (a AIConfig) AIKeyFor(provider string) string {
	switch provider {
	case "deepgram":
		return a.DeepgramAPIKey
	case "openai", "whisper":
		return a.OpenAIAPIKey
	case "kimi":
		return a.KimiAPIKey
	case "deepseek":
		return a.DeepseekAPIKey
	}
	return ""
}
