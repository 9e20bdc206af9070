package command

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"evalengine/internal/config"
	"evalengine/pkg/engine"
	"evalengine/pkg/env"
	"evalengine/pkg/judge"
	"evalengine/pkg/limiter"
	"evalengine/pkg/schema"
)

type evaluateFlags struct {
	schemes     []string
	contextType string
	textFile    string
}

// newEvaluateCmd is the CLI's second entrypoint alongside serve: a one-shot
// evaluation run for smoke-testing a schema set without standing up the HTTP
// surface.
func newEvaluateCmd() *cobra.Command {
	flags := &evaluateFlags{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate text from stdin or a file against one or more schemes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, flags)
		},
	}

	cmd.Flags().StringSliceVar(&flags.schemes, "scheme", nil, "schema id to evaluate against (repeatable)")
	cmd.Flags().StringVar(&flags.contextType, "context-type", "content", "content|platform|both")
	cmd.Flags().StringVar(&flags.textFile, "file", "", "path to the text to evaluate; reads stdin if omitted")

	return cmd
}

func runEvaluate(cmd *cobra.Command, flags *evaluateFlags) error {
	if len(flags.schemes) == 0 {
		return fmt.Errorf("at least one --scheme is required")
	}

	ctx := cmd.Context()

	provider := env.NewDefaultProvider()
	cfg, err := config.Load(ctx, provider)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	registry, err := schema.LoadDir(cfg.SchemesDir)
	if err != nil {
		return fmt.Errorf("loading schemas from %s: %w", cfg.SchemesDir, err)
	}

	text, err := readEvaluateInput(flags.textFile)
	if err != nil {
		return err
	}

	lim := limiter.New(cfg.MaxConcurrentLLMCalls)
	j := judge.NewOpenAIJudge(judge.Config{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
		Timeout: cfg.OpenAITimeout,
	}, lim)

	eng := engine.New(registry, j, cfg.OpenAIModel)
	resp := eng.Evaluate(ctx, text, flags.schemes, schema.Scope(flags.contextType), true)

	return writeJSON(cmd.OutOrStdout(), resp)
}

func readEvaluateInput(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
