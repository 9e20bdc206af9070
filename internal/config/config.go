// Package config resolves the service's runtime configuration from
// environment variables (§6.3), following the teacher's env.Provider
// indirection so tests can inject a fake provider instead of the real
// process environment.
package config

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"evalengine/pkg/env"
)

// RuntimeConfig holds every environment-derived setting the service needs.
type RuntimeConfig struct {
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	MaxConcurrentLLMCalls int

	LogLevel   string
	SchemesDir string

	APIHost string
	APIPort string

	HTTPTimeout   time.Duration
	OpenAITimeout time.Duration
}

// Load resolves RuntimeConfig from provider, applying the defaults named in
// §6.3.
func Load(ctx context.Context, provider env.Provider) (*RuntimeConfig, error) {
	get := func(name string) string {
		v, _ := provider.GetEnv(ctx, name)
		return v
	}

	cfg := &RuntimeConfig{
		OpenAIAPIKey:  get("OPENAI_API_KEY"),
		OpenAIModel:   orDefault(get("OPENAI_MODEL"), "gpt-4o-mini"),
		OpenAIBaseURL: get("OPENAI_BASE_URL"),
		LogLevel:      orDefault(get("LOG_LEVEL"), "info"),
		SchemesDir:    orDefault(get("SCHEMES_DIR"), "./schemes"),
		APIHost:       orDefault(get("API_HOST"), "0.0.0.0"),
		APIPort:       orDefault(get("API_PORT"), "8080"),
	}

	maxCalls, err := parseIntDefault(get("MAX_CONCURRENT_LLM_CALLS"), 20)
	if err != nil {
		return nil, fmt.Errorf("config: MAX_CONCURRENT_LLM_CALLS: %w", err)
	}
	cfg.MaxConcurrentLLMCalls = maxCalls

	httpTimeout, err := parseSecondsDefault(get("HTTP_TIMEOUT_SECONDS"), 60)
	if err != nil {
		return nil, fmt.Errorf("config: HTTP_TIMEOUT_SECONDS: %w", err)
	}
	cfg.HTTPTimeout = httpTimeout

	openAITimeout, err := parseSecondsDefault(get("OPENAI_TIMEOUT_SECONDS"), 60)
	if err != nil {
		return nil, fmt.Errorf("config: OPENAI_TIMEOUT_SECONDS: %w", err)
	}
	cfg.OpenAITimeout = openAITimeout

	return cfg, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func parseIntDefault(value string, fallback int) (int, error) {
	if value == "" {
		return fallback, nil
	}
	return strconv.Atoi(value)
}

func parseSecondsDefault(value string, fallbackSeconds int) (time.Duration, error) {
	if value == "" {
		return time.Duration(fallbackSeconds) * time.Second, nil
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds) * time.Second, nil
}
