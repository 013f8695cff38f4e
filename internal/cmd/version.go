package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/dialectic/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print version information including version number, git commit,
build date, Go version, and platform.`,
		Args: cobra.NoArgs,
		RunE: runVersion,
	}
}

func runVersion(cmd *cobra.Command, _ []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	info := version.GetInfo()
	if cmdCtx.Structured() {
		return format(cmdCtx, cmd.OutOrStdout(), info)
	}

	w := cmd.OutOrStdout()
	if cmdCtx.Verbose {
		fmt.Fprintln(w, info.String())
		return nil
	}

	// Default output (short version only)
	fmt.Fprintf(w, "dialectic %s\n", info.Short())
	return nil
}
