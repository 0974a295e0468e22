package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"foamagent/internal/config"
	"foamagent/internal/llm"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

func newConfigCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the resolved configuration",
	}

	cmd.AddCommand(newConfigShowCommand(c))
	cmd.AddCommand(newConfigGetCommand(c))
	cmd.AddCommand(newConfigEnvCommand(c))
	cmd.AddCommand(newConfigValidateCommand(c))
	cmd.AddCommand(newConfigSaveCommand(c))
	return cmd
}

func newConfigShowCommand(c *cli) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show every setting and where it came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, meta, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			return renderConfig(cmd.OutOrStdout(), output, cfg, meta)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, yaml, json)")
	return cmd
}

func renderConfig(w io.Writer, format string, cfg config.Config, meta config.Metadata) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, entry := range cfg.Entries() {
			value := entry.Value
			if value == "" {
				value = faint("(empty)")
			}
			printf(tw, "%s\t%s\t%s\n", entry.Key, value, faint(string(meta.Source(entry.Key))))
		}
		return tw.Flush()
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		printf(w, "%s\n", data)
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func newConfigGetCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a single setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			value, ok := cfg.Lookup(strings.ToLower(strings.TrimSpace(args[0])))
			if !ok {
				return fmt.Errorf("unknown config key %q", args[0])
			}
			printf(cmd.OutOrStdout(), "%s\n", value)
			return nil
		},
	}
}

func newConfigEnvCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Print provider settings as shell exports for child processes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			exported := config.ExportEnv(cfg)
			keys := make([]string, 0, len(exported))
			for key := range exported {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				printf(cmd.OutOrStdout(), "export %s=%s\n", key, shellQuote(exported[key]))
			}
			return nil
		},
	}
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

func newConfigValidateCommand(c *cli) *cobra.Command {
	var checkClient bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the provider selection and numeric limits",
		Long: `Validate reports unsupported providers, incomplete Azure OpenAI credentials and
out-of-range limits. With --check-client it also resolves the model client settings,
reading OPENAI_API_KEY or AZURE_OPENAI_API_KEY from the environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			report := config.Validate(cfg)
			for _, issue := range report.Errors {
				printIssue(out, red("error"), issue)
			}
			for _, issue := range report.Warnings {
				printIssue(out, yellow("warning"), issue)
			}
			if report.HasErrors() {
				return fmt.Errorf("configuration has %d error(s)", len(report.Errors))
			}

			if checkClient {
				if _, err := llm.NewClient(cfg, c.apiKey(cfg), llm.WithLogger(c.logger)); err != nil {
					return fmt.Errorf("resolve %s client: %w", cfg.ModelProvider, err)
				}
			}
			printf(out, "%s %s / %s\n", green("ok"), cfg.ModelProvider, llm.ChatModel(cfg))
			return nil
		},
	}
	cmd.Flags().BoolVar(&checkClient, "check-client", false, "Also resolve the model client settings")
	return cmd
}

func printIssue(w io.Writer, level string, issue config.ValidationIssue) {
	printf(w, "%s [%s] %s\n", level, issue.ID, issue.Message)
	if issue.Hint != "" {
		printf(w, "    %s\n", faint(issue.Hint))
	}
}

func (c *cli) apiKey(cfg config.Config) string {
	key := "OPENAI_API_KEY"
	if strings.TrimSpace(cfg.ModelProvider) == config.ProviderAzureOpenAI {
		key = "AZURE_OPENAI_API_KEY"
	}
	value, _ := c.env(key)
	return value
}

func newConfigSaveCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Persist --set assignments into the --config override file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.v.GetString("config")
			if path == "" {
				return fmt.Errorf("--config is required")
			}
			assignments, err := cmd.Flags().GetStringArray("set")
			if err != nil {
				return err
			}
			if len(assignments) == 0 {
				return fmt.Errorf("nothing to save: pass at least one --set key=value")
			}
			overrides, err := config.ParseAssignments(assignments)
			if err != nil {
				return fmt.Errorf("--set: %w", err)
			}
			written, err := config.SaveOverrides(path, overrides)
			if err != nil {
				return err
			}
			c.logger.Info("saved %d setting(s) to %s", len(written), path)
			printf(cmd.OutOrStdout(), "Saved %s to %s\n", strings.Join(written, ", "), path)
			return nil
		},
	}
}
