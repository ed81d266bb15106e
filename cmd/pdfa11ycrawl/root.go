// Package main provides the entry point for the pdfa11ycrawl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for pdfa11ycrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdfa11ycrawl",
		Short: "Crawl a site and audit its PDFs for accessibility",
		Long: `pdfa11ycrawl crawls a web page and identifies linked PDF files, then
analyzes them for basic accessibility characteristics such as text presence
(image-only detection) and optional PDF/UA conformance checks.

By default only the given page is scanned; use --recursive to follow
same-origin links breadth-first.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
