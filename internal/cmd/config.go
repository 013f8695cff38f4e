package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/dialectic/internal/config"
	"github.com/felixgeelhaar/dialectic/internal/ux"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit Dialectic configuration",
		Long: `Manage Dialectic global configuration stored at ~/.dialectic/config.yaml
(or $DIALECTIC_HOME/config.yaml).

Configuration includes:
  • Default output format
  • Logging settings
  • Planner defaults

Examples:
  # View current configuration
  dialectic config view

  # Get a specific value
  dialectic config get planner.default_strategy

  # Set a specific value
  dialectic config set logging.level debug

  # Show configuration file path
  dialectic config path
`,
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "view",
		Short: "Display current configuration",
		Args:  cobra.NoArgs,
		RunE:  runConfigView,
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Get a specific configuration value",
		Long:  `Retrieve the value of a configuration key using dot notation (e.g., logging.level).`,
		Args:  cobra.ExactArgs(1),
		RunE:  runConfigGet,
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a specific configuration value",
		Long:  `Set the value of a configuration key using dot notation (e.g., logging.level debug).`,
		Args:  cobra.ExactArgs(2),
		RunE:  runConfigSet,
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE:  runConfigPath,
	})
	return configCmd
}

func runConfigView(cmd *cobra.Command, _ []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	if cmdCtx.Structured() {
		return format(cmdCtx, cmd.OutOrStdout(), cmdCtx.Config)
	}

	data, err := yaml.Marshal(cmdCtx.Config)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration file: %s\n\n%s", cmdCtx.ConfigPath, data)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	value, err := cmdCtx.Config.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	if err := cmdCtx.Config.Set(key, value); err != nil {
		return err
	}
	if err := config.Save(cmdCtx.Config, cmdCtx.ConfigPath); err != nil {
		return ux.FormatError(err, "saving configuration")
	}

	cmdCtx.Logger.Debug("configuration saved", "path", cmdCtx.ConfigPath, "key", key)
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s = %s\n", key, value)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cmdCtx.ConfigPath)
	return nil
}
