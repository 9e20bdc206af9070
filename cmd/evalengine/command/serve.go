package command

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"evalengine/internal/config"
	"evalengine/pkg/engine"
	"evalengine/pkg/env"
	"evalengine/pkg/httpapi"
	"evalengine/pkg/judge"
	"evalengine/pkg/limiter"
	"evalengine/pkg/logging"
	"evalengine/pkg/schema"
)

type serveFlags struct {
	logFile string
}

func newServeCmd() *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP evaluation server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.logFile, "log-file", "", "optional path to a rotating log file in addition to stderr")

	return cmd
}

func runServe(cmd *cobra.Command, flags *serveFlags) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider := env.NewDefaultProvider()
	cfg, err := config.Load(ctx, provider)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	closer, err := logging.Setup(cfg.LogLevel, flags.logFile)
	if err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}
	defer closer.Close()

	registry, err := schema.LoadDir(cfg.SchemesDir)
	if err != nil {
		return fmt.Errorf("loading schemas from %s: %w", cfg.SchemesDir, err)
	}
	slog.Info("loaded schemas", "count", registry.Len(), "dir", cfg.SchemesDir)

	lim := limiter.New(cfg.MaxConcurrentLLMCalls)
	j := judge.NewOpenAIJudge(judge.Config{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
		Timeout: cfg.OpenAITimeout,
	}, lim)

	eng := engine.New(registry, j, cfg.OpenAIModel)
	server := httpapi.New(eng, registry, cfg.HTTPTimeout)

	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	slog.Info("starting server", "addr", addr)
	return server.Serve(ctx, addr)
}
