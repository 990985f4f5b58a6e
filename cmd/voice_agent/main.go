// Package main provides the voice_agent CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configPath string
	logLevel   string
	jsonOutput bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "voice_agent",
		Short:         "Voice fingerprint engine",
		Long:          "voice_agent learns a user's writing style from their documents and reports when that style is reliable enough to guide generated content.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a JSON or YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (overrides config and LOG_LEVEL)")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Print results as JSON instead of boxes")

	cmd.AddCommand(
		newExtractCmd(opts),
		newLearnCmd(opts),
		newForgetCmd(opts),
		newResetCmd(opts),
		newProfileCmd(opts),
		newContextCmd(opts),
		newRewriteCmd(opts),
		newServeCmd(opts),
		newMigrateCmd(opts),
	)
	return cmd
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
