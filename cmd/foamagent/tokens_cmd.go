package main

import (
	"fmt"
	"io"
	"os"

	"foamagent/internal/tokens"

	"github.com/spf13/cobra"
)

func newTokensCommand(c *cli) *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Count tokens of a file (or stdin) for the configured model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}

			var data []byte
			if len(args) == 1 {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			counter := tokens.NewCounter(cfg, c.logger)
			if model == "" {
				model = counter.Model()
			}
			printf(cmd.OutOrStdout(), "%d\t%s\n", counter.CountForModel(model, string(data)), model)
			return nil
		},
	}
	cmd.Flags().StringVar(&model, "model", "", "Count for this model instead of the configured one")
	return cmd
}
