package judge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"evalengine/pkg/httpclient"
	"evalengine/pkg/limiter"
)

const maxTransportRetries = 2

// OpenAIJudge is the production Judge backend: a chat-completion call to an
// OpenAI-compatible endpoint, gated by a process-wide concurrency Limiter and
// retried with exponential backoff on transport failure, per §4.10.
type OpenAIJudge struct {
	client  openai.Client
	apiKey  string
	model   string
	limiter *limiter.Limiter
	timeout time.Duration
}

// Config carries the environment-derived settings for the OpenAI backend
// (§6.3: OPENAI_API_KEY, OPENAI_MODEL, OPENAI_BASE_URL, OPENAI_TIMEOUT_SECONDS).
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// NewOpenAIJudge constructs a Judge backed by the OpenAI chat completions API.
// APIKey is required; Evaluate rejects calls if it is empty, matching the
// Judge rejecting calls without credentials per §6.3.
func NewOpenAIJudge(cfg Config, lim *limiter.Limiter) *OpenAIJudge {
	opts := []option.RequestOption{
		option.WithHTTPClient(httpclient.NewHTTPClient()),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &OpenAIJudge{
		client:  openai.NewClient(opts...),
		apiKey:  cfg.APIKey,
		model:   model,
		limiter: lim,
		timeout: timeout,
	}
}

// Evaluate implements Judge. It acquires a limiter slot, issues the
// completion request with retry-with-backoff on transport failure, and
// classifies the outcome per §4.10's failure table.
func (j *OpenAIJudge) Evaluate(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error) {
	if j.apiKey == "" {
		return "", &TransportError{Err: errors.New("OPENAI_API_KEY not configured")}
	}

	release, err := j.limiter.Acquire(ctx)
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("acquiring concurrency slot: %w", err)}
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	var result string
	op := func() error {
		resp, err := j.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: j.model,
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(systemPrompt),
				openai.UserMessage(userPrompt),
			},
			Temperature: openai.Float(temperature),
			MaxTokens:   openai.Int(int64(maxTokens)),
		})
		if err != nil {
			slog.Warn("judge: openai call failed, will retry", "error", err)
			return err
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(&OutputError{Err: errors.New("empty choices in response")})
		}
		result = resp.Choices[0].Message.Content
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxTransportRetries)
	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		var outErr *OutputError
		if errors.As(err, &outErr) {
			return "", outErr
		}
		return "", &TransportError{Err: err}
	}

	if result == "" {
		return "", &OutputError{Err: errors.New("empty response content")}
	}

	return result, nil
}

// Configured reports whether credentials are present, for health reporting.
func (j *OpenAIJudge) Configured() bool {
	return j.apiKey != ""
}

var _ Judge = (*OpenAIJudge)(nil)
