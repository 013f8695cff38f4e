package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/dialectic/internal/log"
	"github.com/felixgeelhaar/dialectic/internal/planner"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dialectic",
		Short: "Plan and locate artifacts of a multi-model dialectic pipeline",
		Long: `dialectic works with the artifacts of a staged, multi-model document pipeline
(thesis, antithesis, synthesis, parenthesis, paralysis).

It encodes and decodes canonical storage paths, validates stage recipes, and
plans the EXECUTE child jobs a recipe step fans out into.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupLogging,
	}

	flags := root.PersistentFlags()
	flags.String("format", "", "output format: text, json or yaml (default from config)")
	flags.Bool("no-color", false, "disable colored output")
	flags.String("log-level", "", "log level: debug, info, warn or error (default from config)")
	flags.BoolP("verbose", "v", false, "verbose output (implies --log-level debug)")
	flags.String("config", "", "config file (default is $HOME/.dialectic/config.yaml)")

	root.AddCommand(newPathCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newRecipeCmd())
	root.AddCommand(newStrategiesCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with a context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// setupLogging installs the default logger and planner settings from the
// config file and global flags.
func setupLogging(cmd *cobra.Command, _ []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	log.SetDefaultLogger(cmdCtx.Logger)
	if kinds := cmdCtx.Config.Planner.BroadcastKinds; len(kinds) > 0 {
		planner.BroadcastKinds = kinds
	}
	return nil
}
