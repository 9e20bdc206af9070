package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	values map[string]string
}

func (f fakeProvider) GetEnv(_ context.Context, name string) (string, error) {
	return f.values[name], nil
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(context.Background(), fakeProvider{values: map[string]string{}})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, 20, cfg.MaxConcurrentLLMCalls)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "0.0.0.0", cfg.APIHost)
	assert.Equal(t, "8080", cfg.APIPort)
	assert.Equal(t, 60*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 60*time.Second, cfg.OpenAITimeout)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(context.Background(), fakeProvider{values: map[string]string{
		"OPENAI_API_KEY":           "sk-test",
		"OPENAI_MODEL":             "gpt-4o",
		"MAX_CONCURRENT_LLM_CALLS": "5",
		"HTTP_TIMEOUT_SECONDS":     "30",
	}})
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.Equal(t, 5, cfg.MaxConcurrentLLMCalls)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
}

func TestLoad_RejectsInvalidInt(t *testing.T) {
	_, err := Load(context.Background(), fakeProvider{values: map[string]string{
		"MAX_CONCURRENT_LLM_CALLS": "not-a-number",
	}})
	assert.Error(t, err)
}
