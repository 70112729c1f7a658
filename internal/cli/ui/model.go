// Package ui implements the live terminal view shown while files are being
// analyzed and rewritten.
package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stackvity/eol-converter/internal/cli/hooks"
	"github.com/stackvity/eol-converter/pkg/eol"
)

const listHeightMargin = 4

// Model represents the state of the TUI application: the scrollable file
// list, the spinner, layout dimensions, and aggregated run statistics.
type Model struct {
	list        list.Model
	spinner     spinner.Model
	width       int
	height      int
	initialized bool
	appVersion  string

	// fileItems and itemMap are updated from hook messages; access is
	// protected by listLock.
	fileItems []listItem
	itemMap   map[string]int
	listLock  sync.Mutex

	summary      Summary
	phaseMessage string
	fatalError   string
	quitting     bool
	done         bool

	debounceTimer *time.Timer
}

// listItem represents a single file in the TUI list.
type listItem struct {
	path     string
	status   eol.Status
	message  string
	duration time.Duration
}

// Summary holds the aggregated statistics displayed in the TUI footer.
type Summary struct {
	TotalFilesScanned int
	SucceededCount    int
	SkippedCount      int
	ErrorCount        int
	StartTime         time.Time
}

// NewModel creates the initial model for the TUI.
func NewModel(appVersion string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)
	delegate.ShowDescription = true
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(ColorSelectedFg).
		Background(ColorSelectedBg).
		Bold(true).
		Padding(0, 0, 0, 1)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(ColorSelectedDescFg).
		Background(ColorSelectedBg).
		Padding(0, 0, 0, 1)
	delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.
		Foreground(ColorNormalFg).Padding(0, 0, 0, 1)
	delegate.Styles.NormalDesc = delegate.Styles.NormalDesc.
		Foreground(ColorNormalDescFg).Padding(0, 0, 0, 1)

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowTitle(false)
	l.SetShowFilter(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return Model{
		list:         l,
		spinner:      s,
		appVersion:   appVersion,
		summary:      Summary{StartTime: time.Now()},
		phaseMessage: "Initializing...",
		fileItems:    make([]listItem, 0, 256),
		itemMap:      make(map[string]int),
	}
}

// Init starts the spinner animation.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles incoming messages (user input, hook events) and updates
// the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var listCmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listHeight := m.height - listHeightMargin
		if listHeight < 1 {
			listHeight = 1
		}
		m.list.SetSize(m.width, listHeight)
		m.initialized = true

	case tea.KeyMsg:
		if m.quitting {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}
		m.list, listCmd = m.list.Update(msg)
		cmds = append(cmds, listCmd)

	case spinner.TickMsg:
		if m.quitting || m.done {
			return m, nil
		}
		var spinnerCmd tea.Cmd
		m.spinner, spinnerCmd = m.spinner.Update(msg)
		cmds = append(cmds, spinnerCmd)

	case hooks.FileDiscoveredMsg:
		m.listLock.Lock()
		if _, exists := m.itemMap[msg.Path]; !exists {
			m.fileItems = append(m.fileItems, listItem{path: msg.Path, status: eol.StatusPending})
			m.itemMap[msg.Path] = len(m.fileItems) - 1
			m.summary.TotalFilesScanned++
			cmds = append(cmds, m.debounceListUpdate())
		}
		m.listLock.Unlock()
		if !m.quitting && (m.phaseMessage == "" || m.phaseMessage == "Initializing...") {
			m.phaseMessage = "Scanning..."
		}

	case hooks.FileStatusUpdateMsg:
		m.listLock.Lock()
		if idx, ok := m.itemMap[msg.Path]; ok && idx < len(m.fileItems) {
			item := &m.fileItems[idx]

			// A file reaches a final state once per phase; only the first
			// transition into a final state counts toward the summary.
			oldFinal := isFinalStatus(item.status)
			newFinal := isFinalStatus(msg.Status)
			if newFinal && !oldFinal {
				m.incrementSummaryCount(msg.Status)
			} else if !newFinal && oldFinal {
				m.decrementSummaryCount(item.status)
			}

			item.status = msg.Status
			item.message = msg.Message
			if msg.Duration > 0 {
				item.duration = msg.Duration
			}
			cmds = append(cmds, m.debounceListUpdate())
		} else {
			m.fileItems = append(m.fileItems, listItem{
				path: msg.Path, status: msg.Status, message: msg.Message, duration: msg.Duration,
			})
			m.itemMap[msg.Path] = len(m.fileItems) - 1
			m.summary.TotalFilesScanned++
			if isFinalStatus(msg.Status) {
				m.incrementSummaryCount(msg.Status)
			}
			cmds = append(cmds, m.debounceListUpdate())
		}
		m.listLock.Unlock()

		if !m.quitting {
			switch msg.Status {
			case eol.StatusAnalyzing:
				m.phaseMessage = "Analyzing..."
			case eol.StatusRewriting:
				m.phaseMessage = "Rewriting..."
			case eol.StatusStripping:
				m.phaseMessage = "Stripping BOMs..."
			}
		}

	case hooks.RunCompleteMsg:
		m.phaseMessage = "Complete"
		m.done = true
		s := msg.Report.Summary
		m.summary.SucceededCount = s.FilesScanned - s.BinarySkippedCount - s.ErrorCount
		m.summary.SkippedCount = s.BinarySkippedCount
		m.summary.ErrorCount = s.ErrorCount
		if s.FatalErrorOccurred {
			m.fatalError = "Run halted by a fatal error; see the log output."
		}
		// Stay open for scrolling; quitting is the user's call.

	case UpdateListMsg:
		m.listLock.Lock()
		items := make([]list.Item, len(m.fileItems))
		for i, item := range m.fileItems {
			items[i] = item
		}
		m.listLock.Unlock()
		cmds = append(cmds, m.list.SetItems(items))
	}

	if listCmd != nil {
		cmds = append(cmds, listCmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the current state of the TUI model.
func (m *Model) View() string {
	if m.quitting {
		return "Exiting...\n"
	}
	if !m.initialized {
		return "Initializing..."
	}

	headerLeft := fmt.Sprintf("eol-converter v%s", m.appVersion)
	headerRight := m.phaseMessage
	if m.phaseMessage != "Complete" && m.phaseMessage != "Initializing..." {
		headerRight = m.spinner.View() + " " + m.phaseMessage
	}
	headerCenter := ""
	headerWidth := m.width - HeaderStyle.GetHorizontalFrameSize() - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerWidth > 0 {
		headerCenter = lipgloss.PlaceHorizontal(headerWidth, lipgloss.Center, " ")
	}
	header := HeaderStyle.Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Top, headerLeft, headerCenter, headerRight))

	elapsed := time.Since(m.summary.StartTime).Round(time.Millisecond)
	footerLeft := fmt.Sprintf(
		"Processed: %d | Skipped: %d | Failed: %d | Total: %d | Elapsed: %s",
		m.summary.SucceededCount,
		m.summary.SkippedCount,
		m.summary.ErrorCount,
		m.summary.TotalFilesScanned,
		elapsed,
	)
	footerRight := "q: quit"
	footerWidth := m.width - FooterStyle.GetHorizontalFrameSize() - lipgloss.Width(footerLeft) - lipgloss.Width(footerRight)
	footerCenter := ""
	if footerWidth > 0 {
		footerCenter = lipgloss.PlaceHorizontal(footerWidth, lipgloss.Center, " ")
	}
	footer := FooterStyle.Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Bottom, footerLeft, footerCenter, footerRight))

	errorView := ""
	if m.fatalError != "" {
		errorView = StatusStyleFailed.Render(m.fatalError) + "\n"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.list.View(),
		errorView,
		footer,
	)
}

// isFinalStatus checks if a status represents a terminal state for a file.
func isFinalStatus(status eol.Status) bool {
	return status == eol.StatusSuccess ||
		status == eol.StatusFailed ||
		status == eol.StatusSkipped
}

// incrementSummaryCount updates summary counts for a new final status.
// Must be called with listLock held.
func (m *Model) incrementSummaryCount(status eol.Status) {
	switch status {
	case eol.StatusSuccess:
		m.summary.SucceededCount++
	case eol.StatusSkipped:
		m.summary.SkippedCount++
	case eol.StatusFailed:
		m.summary.ErrorCount++
	}
}

// decrementSummaryCount reverses a count when a file leaves a final state,
// which happens when a later phase picks the file up again.
// Must be called with listLock held.
func (m *Model) decrementSummaryCount(status eol.Status) {
	switch status {
	case eol.StatusSuccess:
		m.summary.SucceededCount--
	case eol.StatusSkipped:
		m.summary.SkippedCount--
	case eol.StatusFailed:
		m.summary.ErrorCount--
	}
}

// FilterValue implements the list.Item interface.
func (i listItem) FilterValue() string { return i.path }

// Title implements the list.Item interface.
func (i listItem) Title() string { return i.path }

// Description implements the list.Item interface.
func (i listItem) Description() string {
	var statusStyle lipgloss.Style
	statusIcon := " "
	switch i.status {
	case eol.StatusSuccess:
		statusStyle = StatusStyleSuccess
		statusIcon = "✓"
	case eol.StatusFailed:
		statusStyle = StatusStyleFailed
		statusIcon = "✗"
	case eol.StatusSkipped:
		statusStyle = StatusStyleSkipped
		statusIcon = "S"
	case eol.StatusAnalyzing, eol.StatusRewriting, eol.StatusStripping:
		statusStyle = StatusStyleWorking
		statusIcon = "…"
	default:
		statusStyle = StatusStylePending
	}

	statusStr := statusStyle.Render(fmt.Sprintf("[%s]", statusIcon))
	details := ""

	switch i.status {
	case eol.StatusFailed:
		details = i.message
	case eol.StatusSkipped:
		parts := strings.SplitN(i.message, ":", 2)
		if len(parts) > 0 {
			details = strings.TrimSpace(parts[0])
		} else {
			details = i.message
		}
	case eol.StatusSuccess:
		details = i.message
		if i.duration > 0 {
			if details != "" {
				details += " "
			}
			details += formatDuration(i.duration)
		}
	}
	return fmt.Sprintf("%s %s", statusStr, details)
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		if d == 0 {
			return ""
		}
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// UpdateListMsg signals that the list component should refresh its items.
type UpdateListMsg struct{}

const listUpdateDebounceDuration = 50 * time.Millisecond

// debounceListUpdate coalesces rapid status changes into one list refresh.
// Must be called with listLock held.
func (m *Model) debounceListUpdate() tea.Cmd {
	if m.debounceTimer != nil {
		m.debounceTimer.Stop()
	}
	m.debounceTimer = time.NewTimer(listUpdateDebounceDuration)
	return func() tea.Msg {
		<-m.debounceTimer.C
		return UpdateListMsg{}
	}
}

const (
	ColorHeaderFg = lipgloss.Color("252")
	ColorHeaderBg = lipgloss.Color("62")

	ColorFooterFg = lipgloss.Color("252")
	ColorFooterBg = lipgloss.Color("56")

	ColorNormalFg     = lipgloss.Color("250")
	ColorNormalDescFg = lipgloss.Color("244")

	ColorSelectedFg     = lipgloss.Color("255")
	ColorSelectedBg     = lipgloss.Color("56")
	ColorSelectedDescFg = lipgloss.Color("248")

	ColorStatusSuccess = lipgloss.Color("40")
	ColorStatusFailed  = lipgloss.Color("196")
	ColorStatusSkipped = lipgloss.Color("214")
	ColorStatusPending = lipgloss.Color("244")
	ColorStatusWorking = lipgloss.Color("205")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHeaderFg).
			Background(ColorHeaderBg).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorFooterFg).
			Background(ColorFooterBg).
			Padding(0, 1)

	StatusStyleSuccess = lipgloss.NewStyle().Foreground(ColorStatusSuccess)
	StatusStyleFailed  = lipgloss.NewStyle().Foreground(ColorStatusFailed)
	StatusStyleSkipped = lipgloss.NewStyle().Foreground(ColorStatusSkipped)
	StatusStylePending = lipgloss.NewStyle().Foreground(ColorStatusPending)
	StatusStyleWorking = lipgloss.NewStyle().Foreground(ColorStatusWorking)
)
