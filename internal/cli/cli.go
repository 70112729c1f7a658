// Package cli wires the configuration, UI, and engine together for the
// command-line entry point.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	clihooks "github.com/stackvity/eol-converter/internal/cli/hooks"
	"github.com/stackvity/eol-converter/internal/cli/ui"
	"github.com/stackvity/eol-converter/pkg/eol"
)

// Run executes the main application logic after configuration loading: it
// picks the UI mode, runs the engine, and renders the final report to
// stdout in the configured format. The returned error is the engine's fatal
// error, if any; per-file problems are part of the report instead.
func Run(ctx context.Context, opts eol.Options, logger *slog.Logger) error {
	isTTY := term.IsTerminal(int(os.Stderr.Fd()))
	useTUI := opts.TuiEnabled && isTTY && !opts.Verbose

	var report eol.Report
	var runErr error

	if useTUI {
		report, runErr = runWithTUI(ctx, opts, logger)
	} else {
		var bar clihooks.ProgressBar
		if isTTY && !opts.Verbose && opts.OutputFormat == eol.OutputFormatText {
			bar = &barAdapter{bar: progressbar.NewOptions(-1,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("processing files"),
				progressbar.OptionSpinnerType(14),
			)}
		}
		opts.EventHooks = clihooks.NewCLIHooks(logger, false, opts.Verbose, nil, bar)

		engine, err := eol.NewEngine(opts)
		if err != nil {
			return err
		}
		report, runErr = engine.Run(ctx)
	}

	if err := renderReport(os.Stdout, opts.OutputFormat, report); err != nil {
		logger.Error("Failed to render report", slog.Any("error", err))
		if runErr == nil {
			runErr = err
		}
	}
	return runErr
}

// barAdapter fits the progressbar API to the hooks.ProgressBar interface;
// progressbar's Describe has no error return.
type barAdapter struct {
	bar *progressbar.ProgressBar
}

func (b *barAdapter) Add(num int) error { return b.bar.Add(num) }

func (b *barAdapter) Describe(description string) error {
	b.bar.Describe(description)
	return nil
}

func (b *barAdapter) Close() error { return b.bar.Close() }

// programAdapter fits *tea.Program's Send(tea.Msg) to the hooks.TUIProgram
// interface, whose Send takes a plain interface{}.
type programAdapter struct {
	program *tea.Program
}

func (a *programAdapter) Send(msg interface{}) { a.program.Send(msg) }

// runWithTUI runs the engine behind a live Bubble Tea view. The view draws
// on stderr so the final report still lands cleanly on stdout.
func runWithTUI(ctx context.Context, opts eol.Options, logger *slog.Logger) (eol.Report, error) {
	model := ui.NewModel(opts.AppVersion)
	program := tea.NewProgram(&model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))

	opts.EventHooks = clihooks.NewCLIHooks(logger, true, false, &programAdapter{program: program}, nil)
	engine, err := eol.NewEngine(opts)
	if err != nil {
		return eol.Report{}, err
	}

	type result struct {
		report eol.Report
		err    error
	}
	done := make(chan result, 1)
	go func() {
		report, runErr := engine.Run(ctx)
		done <- result{report, runErr}
		program.Quit()
	}()

	if _, uiErr := program.Run(); uiErr != nil {
		logger.Warn("Terminal UI exited with an error", slog.Any("error", uiErr))
	}
	res := <-done
	return res.report, res.err
}

// renderReport writes the report to w in the requested format.
func renderReport(w io.Writer, format eol.OutputFormat, report eol.Report) error {
	switch format {
	case eol.OutputFormatJSON:
		return report.EncodeJSON(w)
	case eol.OutputFormatYAML:
		return report.EncodeYAML(w)
	default:
		return WriteTextReport(w, report)
	}
}

// WriteTextReport renders the human-readable run report: one line per file
// followed by a summary block.
func WriteTextReport(w io.Writer, report eol.Report) error {
	for i := range report.Files {
		a := &report.Files[i]
		switch {
		case a.Binary:
			fmt.Fprintf(w, "%s: binary, skipped\n", a.Path)
		case a.Error != "":
			fmt.Fprintf(w, "%s: ERROR %s\n", a.Path, a.Error)
		default:
			fmt.Fprintf(w, "%s: %d LF, %d CRLF (%s)", a.Path, a.LFCount, a.CRLFCount, a.Classification())
			if a.BOM != nil {
				fmt.Fprintf(w, ", BOM: %s", a.BOM)
			}
			fmt.Fprintln(w)
		}
	}

	s := report.Summary
	fmt.Fprintf(w, "\nScanned %d file(s): %d mixed, %d LF only, %d CRLF only\n",
		s.FilesScanned, s.MixedCount, s.LFOnlyCount, s.CRLFOnlyCount)
	if s.BinarySkippedCount > 0 {
		fmt.Fprintf(w, "Skipped %d binary file(s)\n", s.BinarySkippedCount)
	}
	if s.WithBOMCount > 0 {
		fmt.Fprintf(w, "%d file(s) with a byte-order mark\n", s.WithBOMCount)
	}
	if len(report.Rewrites) > 0 {
		fmt.Fprintf(w, "Rewrote %d file(s), %d already conforming\n", s.RewrittenCount, s.RewriteSkipped)
	}
	if len(report.Strips) > 0 {
		fmt.Fprintf(w, "Removed BOM from %d file(s)\n", s.BOMStrippedCount)
	}
	if len(report.BackupDeletions) > 0 {
		fmt.Fprintf(w, "Deleted %d backup(s), %d not found\n", s.BackupsDeleted, s.BackupsNotFound)
	}
	if s.ErrorCount > 0 {
		fmt.Fprintf(w, "%d error(s) occurred\n", s.ErrorCount)
	}
	if s.FatalErrorOccurred {
		fmt.Fprintln(w, "Run aborted by a fatal error")
	}
	fmt.Fprintf(w, "Completed in %.2fs\n", s.DurationSeconds)
	return nil
}
