// Package command implements the evalengine CLI, following cagent's
// newXCmd() + flags-struct + RunE pattern: one cobra subcommand per run mode.
package command

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the top-level evalengine command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "evalengine",
		Short: "Schema-driven, LLM-judged content evaluation service",
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newEvaluateCmd())

	return root
}
