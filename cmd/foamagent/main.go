package main

import (
	"fmt"
	"os"

	"foamagent/internal/config"

	"github.com/fatih/color"
)

func main() {
	rootCmd := newRootCommand(config.DefaultEnvLookup)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("Error:"), err)
		os.Exit(1)
	}
}
