package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/stackvity/eol-converter/internal/cli"
	"github.com/stackvity/eol-converter/internal/cli/config"
	"github.com/stackvity/eol-converter/pkg/eol"
)

var (
	// Set during build time using -ldflags.
	version = "dev"
	commit  = "none"
	date    = "unknown"

	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "eol-converter [flags] <pattern>...",
	Short: "Analyzes and converts line endings in text files.",
	Long: `eol-converter scans text files for LF and CRLF line endings, reports
their convention per file, and can rewrite them to one uniform kind.

It features:
  - Parallel analysis across files.
  - Glob patterns with optional recursion into subdirectories.
  - Byte-order-mark detection and removal (UTF-8/16/32).
  - Automatic .bak backups before any file is modified.
  - Binary file detection so non-text files are left alone.
  - An interactive Terminal UI (TUI) for monitoring progress.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		opts, logger, err := config.LoadAndValidate(cfgFile, version, args, cmd.Flags())
		if err != nil {
			return err
		}

		// Brief pause so the TUI can claim the terminal before the first
		// hook messages arrive.
		if term.IsTerminal(int(os.Stderr.Fd())) && !verbose && opts.TuiEnabled {
			time.Sleep(100 * time.Millisecond)
		}

		return cli.Run(ctx, opts, logger)
	},
}

// Execute runs the root command. Cobra prints the error and exits non-zero
// if RunE returns one.
func Execute() {
	rootCmd.SetVersionTemplate(`{{.Use}} version {{.Version}}` + "\n")
	_ = rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Configuration file path (default is search standard locations like ., $HOME/.config/eol-converter/)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging output (disables TUI)")

	// Rewrite flags; at most one may be given.
	rootCmd.Flags().BoolP("lf", "l", false, "Rewrite files to LF (Unix) line endings")
	rootCmd.Flags().BoolP("crlf", "w", false, "Rewrite files to CRLF (Windows) line endings")

	// BOM flags
	rootCmd.Flags().BoolP("bom", "b", false, "Detect byte-order marks during analysis")
	rootCmd.Flags().BoolP("strip-bom", "m", false, "Remove detected byte-order marks (implies --bom)")

	// Pattern expansion flags
	rootCmd.Flags().BoolP("recursive", "r", false, "Match patterns in subdirectories too")
	rootCmd.Flags().BoolP("case-sensitive", "c", false, "Match patterns case-sensitively")
	rootCmd.Flags().StringP("folder", "f", "", "Base folder prefixed to every pattern")

	// Backup handling
	rootCmd.Flags().BoolP("delete-backups", "d", false, "Delete .bak backups of matched files (cannot be combined with rewrite or strip)")

	// Performance & output flags
	rootCmd.Flags().Int("concurrency", eol.DefaultConcurrency, "Number of parallel workers (0 for auto-detect CPU cores)")
	rootCmd.Flags().String("output-format", string(eol.DefaultOutputFormat), `Final report format ("text", "json", "yaml")`)
	rootCmd.Flags().Bool("no-tui", false, "Disable interactive Terminal UI even if in a TTY")
	rootCmd.Flags().Bool("no-binary-check", false, "Scan files without the binary-content guard (rewriting non-text files, e.g. UTF-16, corrupts them)")

	rootCmd.MarkFlagsMutuallyExclusive("lf", "crlf")
}
