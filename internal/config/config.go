package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIPort  string
	LogLevel string

	AuthSecret string

	LLMBaseURL        string
	LLMAPIKey         string
	LLMModel          string
	LLMTimeoutSeconds int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheEnabled  bool

	NATSURL     string
	NATSSubject string

	RateLimitPerWindow       int
	RateLimitWindowSeconds   int
	RateLimitBurst           int
	ConcurrencyLimit         int
	BackpressureTimeoutMilli int

	StoreCapacity int
}

func (c Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

func (c Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

func (c Config) BackpressureTimeout() time.Duration {
	return time.Duration(c.BackpressureTimeoutMilli) * time.Millisecond
}

// Load reads configuration from the environment. When CONFIG_FILE
// points at a YAML file, its values overlay the environment snapshot,
// which keeps container deploys on env vars and local setups on a file.
func Load() (Config, error) {
	cfg := Config{
		APIPort:  mustEnv("API_PORT", "8000"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		AuthSecret: mustEnv("AUTH_SECRET", "dev-secret-change-me"),

		LLMBaseURL:        mustEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:         mustEnv("LLM_API_KEY", ""),
		LLMModel:          mustEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeoutSeconds: mustEnvInt("LLM_TIMEOUT_SECONDS", 30),

		RedisAddr:     mustEnv("REDIS_ADDR", ""),
		RedisPassword: mustEnv("REDIS_PASSWORD", ""),
		RedisDB:       mustEnvInt("REDIS_DB", 0),
		CacheEnabled:  mustEnvBool("CACHE_ENABLED", true),

		NATSURL:     mustEnv("NATS_URL", ""),
		NATSSubject: mustEnv("NATS_SUBJECT", "inquiries.classified"),

		RateLimitPerWindow:       mustEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindowSeconds:   mustEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitBurst:           mustEnvInt("RATE_LIMIT_BURST", 0),
		ConcurrencyLimit:         mustEnvInt("CONCURRENCY_LIMIT", 64),
		BackpressureTimeoutMilli: mustEnvInt("BACKPRESSURE_TIMEOUT_MS", 2000),

		StoreCapacity: mustEnvInt("STORE_CAPACITY", 10000),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// fileConfig mirrors the YAML shape; pointers distinguish "absent" from
// zero values so the file only overrides what it names.
type fileConfig struct {
	APIPort  *string `yaml:"api_port"`
	LogLevel *string `yaml:"log_level"`

	AuthSecret *string `yaml:"auth_secret"`

	LLM struct {
		BaseURL        *string `yaml:"base_url"`
		APIKey         *string `yaml:"api_key"`
		Model          *string `yaml:"model"`
		TimeoutSeconds *int    `yaml:"timeout_seconds"`
	} `yaml:"llm"`

	Redis struct {
		Addr     *string `yaml:"addr"`
		Password *string `yaml:"password"`
		DB       *int    `yaml:"db"`
	} `yaml:"redis"`

	CacheEnabled *bool `yaml:"cache_enabled"`

	NATS struct {
		URL     *string `yaml:"url"`
		Subject *string `yaml:"subject"`
	} `yaml:"nats"`

	RateLimit struct {
		Requests      *int `yaml:"requests"`
		WindowSeconds *int `yaml:"window_seconds"`
		Burst         *int `yaml:"burst"`
	} `yaml:"rate_limit"`

	ConcurrencyLimit         *int `yaml:"concurrency_limit"`
	BackpressureTimeoutMilli *int `yaml:"backpressure_timeout_ms"`
	StoreCapacity            *int `yaml:"store_capacity"`
}

func overlayFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&cfg.APIPort, file.APIPort)
	setString(&cfg.LogLevel, file.LogLevel)
	setString(&cfg.AuthSecret, file.AuthSecret)
	setString(&cfg.LLMBaseURL, file.LLM.BaseURL)
	setString(&cfg.LLMAPIKey, file.LLM.APIKey)
	setString(&cfg.LLMModel, file.LLM.Model)
	setInt(&cfg.LLMTimeoutSeconds, file.LLM.TimeoutSeconds)
	setString(&cfg.RedisAddr, file.Redis.Addr)
	setString(&cfg.RedisPassword, file.Redis.Password)
	setInt(&cfg.RedisDB, file.Redis.DB)
	setBool(&cfg.CacheEnabled, file.CacheEnabled)
	setString(&cfg.NATSURL, file.NATS.URL)
	setString(&cfg.NATSSubject, file.NATS.Subject)
	setInt(&cfg.RateLimitPerWindow, file.RateLimit.Requests)
	setInt(&cfg.RateLimitWindowSeconds, file.RateLimit.WindowSeconds)
	setInt(&cfg.RateLimitBurst, file.RateLimit.Burst)
	setInt(&cfg.ConcurrencyLimit, file.ConcurrencyLimit)
	setInt(&cfg.BackpressureTimeoutMilli, file.BackpressureTimeoutMilli)
	setInt(&cfg.StoreCapacity, file.StoreCapacity)
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
