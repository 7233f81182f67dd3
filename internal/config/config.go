package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the judge API service.
type Config struct {
	AppName        string
	AppEnv         string
	AppPort        string
	DatabaseURL    string
	RedisURL       string
	NatsURL        string
	RunEventSubj   string
	OpenAIAPIKey   string
	DefaultModel   string
	AllowedModels  []string
	EvalTimeout    time.Duration
	EvalMaxTokens  int
	SummaryCacheTT time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and an optional
// .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("JUDGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Judge API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("run.event_subject", "judge.runs")
	v.SetDefault("default.model", "gpt-4o-mini")
	v.SetDefault("eval.timeout_ms", 30000)
	v.SetDefault("eval.max_tokens", 150)
	v.SetDefault("summary.cache_ttl", "30s")

	timeoutMs := v.GetInt("eval.timeout_ms")
	if timeoutMs <= 0 {
		timeoutMs = 30000
	}

	cacheTTL, err := time.ParseDuration(v.GetString("summary.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid summary cache ttl: %w", err)
	}

	cfg := Config{
		AppName:        v.GetString("app.name"),
		AppEnv:         v.GetString("app.env"),
		AppPort:        v.GetString("app.port"),
		DatabaseURL:    v.GetString("database.url"),
		RedisURL:       v.GetString("redis.url"),
		NatsURL:        v.GetString("nats.url"),
		RunEventSubj:   v.GetString("run.event_subject"),
		OpenAIAPIKey:   v.GetString("openai_api_key"),
		DefaultModel:   v.GetString("default.model"),
		AllowedModels:  splitModels(v.GetString("allowed.models")),
		EvalTimeout:    time.Duration(timeoutMs) * time.Millisecond,
		EvalMaxTokens:  v.GetInt("eval.max_tokens"),
		SummaryCacheTT: cacheTTL,
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	return cfg, nil
}

func splitModels(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	models := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			models = append(models, trimmed)
		}
	}

	return models
}
