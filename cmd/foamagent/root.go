package main

import (
	"fmt"
	"io"
	"strings"

	"foamagent/internal/config"
	"foamagent/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

type cli struct {
	v      *viper.Viper
	env    config.EnvLookup
	logger logging.Logger
}

func newRootCommand(env config.EnvLookup) *cobra.Command {
	if env == nil {
		env = config.DefaultEnvLookup
	}
	c := &cli{
		v:      viper.New(),
		env:    env,
		logger: logging.Nop(),
	}

	rootCmd := &cobra.Command{
		Use:   "foamagent",
		Short: "Runtime configuration for the OpenFOAM case generation agent",
		Long: `foamagent resolves the settings shared by every stage of the OpenFOAM agent
pipeline: loop limits, database and run directories, the simulation time budget,
and the model provider credentials.

Examples:
  foamagent config show
  foamagent config show -o yaml --set max_loop=20
  foamagent config validate --check-client
  eval "$(foamagent config env)"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.logger = logging.NewLogger(logging.LogConfig{
				Level:  c.v.GetString("log-level"),
				Format: c.v.GetString("log-format"),
				Output: cmd.ErrOrStderr(),
			}).Component("cli")
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "YAML file with configuration overrides")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json)")
	flags.StringArray("set", nil, "Override a setting, e.g. --set max_loop=20 (repeatable)")

	// FOAMAGENT_* variables go through the injected lookup so the process
	// environment is only read via config.EnvLookup. Explicit flags still win.
	for _, name := range []string{"config", "log-level", "log-format"} {
		if value, ok := env(cliEnvKey(name)); ok {
			c.v.SetDefault(name, value)
		}
		_ = c.v.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(newConfigCommand(c))
	rootCmd.AddCommand(newTokensCommand(c))
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

// cliEnvKey maps a persistent flag name to its FOAMAGENT_ environment variable.
func cliEnvKey(flag string) string {
	return "FOAMAGENT_" + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// loadConfig constructs the configuration from the environment, the optional override
// file and --set assignments, in increasing precedence.
func (c *cli) loadConfig(cmd *cobra.Command) (config.Config, config.Metadata, error) {
	path := c.v.GetString("config")
	fileOverrides, err := config.LoadOverridesFile(path, nil, c.env)
	if err != nil {
		return config.Config{}, config.Metadata{}, err
	}

	assignments, err := cmd.Flags().GetStringArray("set")
	if err != nil {
		return config.Config{}, config.Metadata{}, err
	}
	flagOverrides, err := config.ParseAssignments(assignments)
	if err != nil {
		return config.Config{}, config.Metadata{}, fmt.Errorf("--set: %w", err)
	}

	cfg, meta := config.New(
		config.WithEnv(c.env),
		config.WithOverridesFrom(fileOverrides, config.SourceFile),
		config.WithOverrides(flagOverrides),
	)
	c.logger.Debug("configuration loaded: provider=%s model=%s file=%q", cfg.ModelProvider, cfg.ModelVersion, path)
	return cfg, meta, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			printf(cmd.OutOrStdout(), "Version: %s\n", version)
		},
	}
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
