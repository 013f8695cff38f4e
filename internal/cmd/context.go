package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/dialectic/internal/config"
	"github.com/felixgeelhaar/dialectic/internal/log"
	"github.com/felixgeelhaar/dialectic/internal/ux"
	"github.com/felixgeelhaar/dialectic/internal/version"
)

// CommandContext holds the resolved global flags and configuration.
// Flags win over the config file.
type CommandContext struct {
	// Output control
	Verbose bool
	Format  string
	NoColor bool

	// Configuration
	ConfigPath string
	Config     *config.Config
	LogLevel   string

	Logger *log.Logger
}

// NewCommandContext extracts command context from cobra.Command flags.
// Commands call this in their RunE function:
//
//	func runCommand(cmd *cobra.Command, args []string) error {
//		ctx, err := NewCommandContext(cmd)
//		if err != nil {
//			return err
//		}
//		// Use ctx.Format, ctx.Config, etc.
//	}
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}

	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		return nil, err
	}

	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		if configPath, err = config.Path(); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if format == "" {
		format = cfg.Defaults.Format
	}
	if _, err := ux.NewFormatter(format, &ux.FormatterOptions{Writer: io.Discard}); err != nil {
		return nil, err
	}
	noColor = noColor || cfg.Defaults.NoColor
	verbose = verbose || cfg.Defaults.Verbose

	logCfg := cfg.LogConfig()
	logCfg.Output = log.NewOutput(cmd.ErrOrStderr())
	logCfg.ServiceVersion = version.Version
	switch {
	case logLevel != "":
		logCfg.Level = log.ParseLevel(logLevel)
	case verbose:
		logCfg.Level = log.LevelDebug
	}
	if logLevel == "" {
		logLevel = logCfg.Level.String()
	}

	return &CommandContext{
		Verbose:    verbose,
		Format:     format,
		NoColor:    noColor,
		ConfigPath: configPath,
		Config:     cfg,
		LogLevel:   logLevel,
		Logger:     log.New(logCfg),
	}, nil
}

// Formatter returns the output formatter for the resolved --format.
// jsonKeys names YAML keys after json tags.
func (c *CommandContext) Formatter(w io.Writer, jsonKeys bool) (ux.Formatter, error) {
	return ux.NewFormatter(c.Format, &ux.FormatterOptions{Writer: w, NoColor: c.NoColor, JSONKeys: jsonKeys})
}

// Structured reports whether output is machine-readable
func (c *CommandContext) Structured() bool {
	return c.Format == "json" || c.Format == "yaml"
}
