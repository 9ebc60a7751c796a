package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for urlguard.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "urlguard",
		Short: "Lexical URL classifier for phishing, defacement and malware",
		Long: `urlguard predicts whether a URL is benign or malicious from the URL string alone.

It extracts a fixed set of lexical features (lengths, character counts,
suspicious keywords, shortener use, IP hosts) and feeds them to a trained
decision forest. No network request is made to the classified URL.

The model artifact defaults to model.json in the XDG data directory
(~/.local/share/urlguard on Linux). Use --model or the .urlguard
configuration file to point to another artifact.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .urlguard in current or home directory)")

	// Add subcommands
	cmd.AddCommand(NewPredictCmd())
	cmd.AddCommand(NewFeaturesCmd())
	cmd.AddCommand(NewEvaluateCmd())
	cmd.AddCommand(NewDatasetCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[!] Error occurred: %v\n", err)
		os.Exit(1)
	}
}
