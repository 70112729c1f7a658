// Package hooks bridges engine events to the CLI's UI layer: the live TUI,
// the progress bar, or plain logging, depending on how the run was started.
package hooks

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/stackvity/eol-converter/pkg/eol"
)

// FileDiscoveredMsg signals that pattern expansion matched a file.
type FileDiscoveredMsg struct{ Path string }

// FileStatusUpdateMsg signals a change in a file's processing status.
type FileStatusUpdateMsg struct {
	Path     string
	Status   eol.Status
	Message  string
	Duration time.Duration
}

// RunCompleteMsg signals the completion of the entire run.
type RunCompleteMsg struct{ Report eol.Report }

// TUIProgram defines the interface needed to interact with the Bubble Tea
// program, decoupled so tests can capture sent messages.
type TUIProgram interface {
	Send(msg interface{})
}

// ProgressBar defines the interface needed to interact with the progress
// bar.
type ProgressBar interface {
	Add(num int) error
	Describe(description string) error
	Close() error
}

// NoOpTUIProgram provides a default null implementation.
type NoOpTUIProgram struct{}

func (n *NoOpTUIProgram) Send(msg interface{}) {}

// NoOpProgressBar provides a default null implementation.
type NoOpProgressBar struct{}

func (n *NoOpProgressBar) Add(num int) error                 { return nil }
func (n *NoOpProgressBar) Describe(description string) error { return nil }
func (n *NoOpProgressBar) Close() error                      { return nil }

// CLIHooks implements the eol.Hooks interface, forwarding engine events to
// whichever UI mode is active.
type CLIHooks struct {
	logger         *slog.Logger
	tuiEnabled     bool
	verboseEnabled bool
	tuiProgram     TUIProgram
	progressBar    ProgressBar
	mu             sync.Mutex // guards progressBar
}

// NewCLIHooks creates a new CLIHooks instance. Pass nil for tuiProgram or
// progressBar if not applicable; NoOp versions will be used.
func NewCLIHooks(logger *slog.Logger, tuiEnabled, verboseEnabled bool, tuiProg TUIProgram, progBar ProgressBar) eol.Hooks {
	if tuiProg == nil {
		tuiProg = &NoOpTUIProgram{}
	}
	if progBar == nil {
		progBar = &NoOpProgressBar{}
	}
	return &CLIHooks{
		logger:         logger,
		tuiEnabled:     tuiEnabled,
		verboseEnabled: verboseEnabled,
		tuiProgram:     tuiProg,
		progressBar:    progBar,
	}
}

// OnFileDiscovered handles the event when pattern expansion finds a file.
func (h *CLIHooks) OnFileDiscovered(path string) error {
	if h.tuiEnabled {
		h.tuiProgram.Send(FileDiscoveredMsg{Path: path})
	} else if h.verboseEnabled {
		h.logger.Debug("File discovered", "path", path)
	}
	return nil
}

// OnFileStatusUpdate handles events when a file's processing status
// changes. Workers call this concurrently.
func (h *CLIHooks) OnFileStatusUpdate(path string, status eol.Status, message string, duration time.Duration) error {
	if h.tuiEnabled {
		h.tuiProgram.Send(FileStatusUpdateMsg{
			Path:     path,
			Status:   status,
			Message:  message,
			Duration: duration,
		})
		return nil
	}

	if h.verboseEnabled {
		logLevel := slog.LevelDebug
		logMsg := "File status updated"
		attrs := []any{
			slog.String("path", path),
			slog.String("status", string(status)),
		}
		if duration > 0 {
			attrs = append(attrs, slog.Duration("duration", duration))
		}
		if message != "" {
			logKey := "message"
			if status == eol.StatusFailed {
				logKey = "error"
			}
			attrs = append(attrs, slog.String(logKey, message))
		}

		switch status {
		case eol.StatusSuccess, eol.StatusSkipped:
			logLevel = slog.LevelInfo
		case eol.StatusFailed:
			logLevel = slog.LevelError
			logMsg = "File processing failed"
		}
		h.logger.Log(nil, logLevel, logMsg, attrs...)
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// Only final states advance the bar; transitional states would count
	// each file once per phase.
	isFinalState := status == eol.StatusSuccess ||
		status == eol.StatusFailed ||
		status == eol.StatusSkipped
	if isFinalState {
		_ = h.progressBar.Add(1)
	}

	if status == eol.StatusFailed {
		h.logger.Error("File processing failed", "path", path, "error", message)
	}
	return nil
}

// OnRunComplete sends the final report to the TUI or finalizes the progress
// bar. The text summary itself is rendered by the CLI layer.
func (h *CLIHooks) OnRunComplete(report eol.Report) error {
	if h.tuiEnabled {
		h.tuiProgram.Send(RunCompleteMsg{Report: report})
		return nil
	}

	h.mu.Lock()
	_ = h.progressBar.Close()
	h.mu.Unlock()
	if _, ok := h.progressBar.(*NoOpProgressBar); !ok {
		// Newline after the bar so the summary does not overlap it.
		_, _ = fmt.Fprintf(os.Stderr, "\n")
	}
	return nil
}
