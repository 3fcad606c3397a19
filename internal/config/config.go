package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	OpenAIKey     string `env:"OPENAI_API_KEY,required"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`

	// Assistant personas
	AssistantIntakeID string `env:"ASSISTANT_INTAKE_ID,required"`
	AssistantAdviceID string `env:"ASSISTANT_ADVICE_ID,required"`

	// Webhook auth
	WebhookKey string `env:"WEBHOOK_API_KEY,required"`

	// Thread binding persistence. Redis is preferred when reachable,
	// Postgres otherwise; with neither set bindings live in memory only.
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	// Server
	Port int `env:"PORT" envDefault:"8080"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
