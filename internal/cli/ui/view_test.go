package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/stackvity/eol-converter/pkg/eol"
)

func TestView_StatesAndContent(t *testing.T) {
	t.Run("Uninitialized", func(t *testing.T) {
		m := NewModel("test")
		assert.Equal(t, "Initializing...", (&m).View())
	})

	t.Run("Quitting", func(t *testing.T) {
		m := newTestModel(80, 25)
		m.quitting = true
		assert.Equal(t, "Exiting...\n", m.View())
	})

	t.Run("Header and footer", func(t *testing.T) {
		m := newTestModel(120, 30)
		m.phaseMessage = "Analyzing..."
		m.summary = Summary{
			TotalFilesScanned: 4,
			SucceededCount:    2,
			SkippedCount:      1,
			ErrorCount:        1,
			StartTime:         time.Now().Add(-2 * time.Second),
		}

		out := m.View()
		assert.Contains(t, out, "eol-converter vtest")
		assert.Contains(t, out, "Analyzing...")
		assert.Contains(t, out, "Processed: 2")
		assert.Contains(t, out, "Skipped: 1")
		assert.Contains(t, out, "Failed: 1")
		assert.Contains(t, out, "q: quit")
	})

	t.Run("Chrome fits the terminal width", func(t *testing.T) {
		for _, width := range []int{80, 120} {
			m := newTestModel(width, 30)
			m.phaseMessage = "Analyzing..."
			m.summary = Summary{
				TotalFilesScanned: 4,
				SucceededCount:    2,
				SkippedCount:      1,
				ErrorCount:        1,
				StartTime:         time.Now().Add(-2 * time.Second),
			}

			for _, line := range strings.Split(m.View(), "\n") {
				assert.LessOrEqual(t, lipgloss.Width(line), width, "line overflows and would wrap: %q", line)
			}
		}
	})

	t.Run("Fatal error banner", func(t *testing.T) {
		m := newTestModel(120, 30)
		m.fatalError = "Run halted by a fatal error; see the log output."
		assert.Contains(t, m.View(), "fatal error")
	})
}

func TestListItem_Description(t *testing.T) {
	cases := []struct {
		name string
		item listItem
		want string
	}{
		{"success with label", listItem{path: "a.txt", status: eol.StatusSuccess, message: "mixed"}, "mixed"},
		{"failed shows error", listItem{path: "a.txt", status: eol.StatusFailed, message: "open failed"}, "open failed"},
		{"skipped shows reason", listItem{path: "a.txt", status: eol.StatusSkipped, message: "binary file detected: skipping"}, "binary file detected"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Contains(t, tc.item.Description(), tc.want)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "", formatDuration(0))
	assert.Equal(t, "500µs", formatDuration(500*time.Microsecond))
	assert.Equal(t, "20ms", formatDuration(20*time.Millisecond))
	assert.Equal(t, "1.50s", formatDuration(1500*time.Millisecond))
}
