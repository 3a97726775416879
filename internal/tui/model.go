package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NamanBalaji/mirrordl/internal/downloads"
	"github.com/NamanBalaji/mirrordl/internal/gamedownload"
	"github.com/NamanBalaji/mirrordl/internal/logger"
)

const (
	refreshInterval = 250 * time.Millisecond
	messageTimeout  = 3 * time.Second
	maxContentWidth = 90
	minContentWidth = 40
)

// view represents the different screens in the TUI
type view int

const (
	downloadListView view = iota
	addDownloadView
	logsView
)

// Queue is what the TUI needs from the download queue.
type Queue interface {
	gamedownload.Queue
	List() []downloads.Snapshot
}

type (
	tickMsg time.Time

	// messageTimeoutMsg hides the notification with the matching sequence number.
	messageTimeoutMsg struct{ seq int }
)

// Options configure the model.
type Options struct {
	DownloadDir string
	// Warns flags item names that match configured warning tags.
	Warns func(name string) bool
}

// Model represents the main TUI state
type Model struct {
	queue Queue
	opts  Options

	// Orchestrators started from the add form, keyed by queue id.
	started map[downloads.ID]*gamedownload.Downloader

	items       []downloads.Snapshot
	selectedIdx int
	activeView  view

	input textinput.Model
	bar   progress.Model
	help  help.Model
	keys  keyMap

	width  int
	height int

	message    string
	messageErr bool
	messageSeq int

	quitting bool
}

// NewModel creates a new TUI model
func NewModel(queue Queue, opts Options) Model {
	input := textinput.New()
	input.Placeholder = "Mirror URLs separated by spaces"
	input.Width = 60

	return Model{
		queue:      queue,
		opts:       opts,
		started:    make(map[downloads.ID]*gamedownload.Downloader),
		activeView: downloadListView,
		input:      input,
		bar:        progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(refresh(m.queue), tick())
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type itemsMsg []downloads.Snapshot

func refresh(q Queue) tea.Cmd {
	return func() tea.Msg {
		return itemsMsg(q.List())
	}
}

// Update handles input and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.activeView == addDownloadView {
			return m.updateAddDownloadView(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case m.activeView == logsView:
			return m.updateLogsView(msg)
		default:
			return m.updateDownloadListView(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		return m, tea.Batch(refresh(m.queue), tick())

	case itemsMsg:
		m.items = msg
		if m.selectedIdx >= len(m.items) {
			m.selectedIdx = max(0, len(m.items)-1)
		}
		return m, nil

	case messageTimeoutMsg:
		if msg.seq == m.messageSeq {
			m.message = ""
		}
		return m, nil
	}

	return m, nil
}

func (m Model) updateDownloadListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Add):
		m.activeView = addDownloadView
		cmd := m.input.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Logs):
		m.activeView = logsView
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if len(m.items) > 0 {
			m.selectedIdx = min(m.selectedIdx+1, len(m.items)-1)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.selectedIdx = max(m.selectedIdx-1, 0)
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		if m.selectedIdx >= len(m.items) {
			return m, nil
		}
		id := m.items[m.selectedIdx].ID
		if d, ok := m.started[id]; ok {
			d.Cancel()
		} else {
			m.queue.Cancel(id)
		}
		logger.Infof("Cancel requested for item %d", id)
		cmd := m.notify(fmt.Sprintf("Canceling #%d", id), false)
		return m, tea.Batch(cmd, refresh(m.queue))
	}

	return m, nil
}

func (m Model) updateAddDownloadView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.closeForm()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		urls := strings.Fields(m.input.Value())
		m.closeForm()
		if len(urls) == 0 {
			return m, nil
		}
		return m.startDownload(urls)

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateLogsView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Logs) || key.Matches(msg, m.keys.Back) {
		m.activeView = downloadListView
	}
	return m, nil
}

func (m *Model) closeForm() {
	m.activeView = downloadListView
	m.input.Blur()
	m.input.SetValue("")
}

func (m Model) startDownload(urls []string) (tea.Model, tea.Cmd) {
	links := make([]gamedownload.Link, 0, len(urls))
	for _, u := range urls {
		links = append(links, gamedownload.Link{URL: u, Provider: "direct"})
	}

	d := gamedownload.New(m.queue)
	if !d.Start(links, m.opts.DownloadDir) {
		cmd := m.notify("Could not start download: no download directory", true)
		return m, cmd
	}

	id, _ := d.ID()
	m.started[id] = d
	logger.Infof("Added item %d with %d mirror(s)", id, len(links))

	cmd := m.notify(fmt.Sprintf("Download added: #%d", id), false)
	return m, tea.Batch(cmd, refresh(m.queue))
}

// notify shows msg until a newer one replaces it or the timeout fires.
func (m *Model) notify(msg string, isErr bool) tea.Cmd {
	m.messageSeq++
	m.message = msg
	m.messageErr = isErr

	seq := m.messageSeq
	return tea.Tick(messageTimeout, func(time.Time) tea.Msg {
		return messageTimeoutMsg{seq: seq}
	})
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Shutting down mirrordl...\n"
	}

	contentWidth := min(max(m.width-4, minContentWidth), maxContentWidth)

	var content string
	switch m.activeView {
	case addDownloadView:
		content = m.renderAddDownloadView(contentWidth)
	case logsView:
		content = m.renderLogsView(contentWidth)
	default:
		content = m.renderDownloadListView(contentWidth)
	}

	if m.width == 0 || m.height == 0 {
		return content
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderDownloadListView(contentWidth int) string {
	var s strings.Builder

	s.WriteString(headerStyle.Width(contentWidth).Render("mirrordl"))
	s.WriteString("\n\n")

	if len(m.items) == 0 {
		s.WriteString(detailStyle.Width(contentWidth).Align(lipgloss.Center).Render("Press 'a' to add a download"))
		s.WriteString("\n\n")
	}

	// Keep the selection in view.
	visible := len(m.items)
	if m.height > 0 {
		visible = max(1, (m.height-10)/5)
	}
	start := max(0, min(m.selectedIdx-visible/2, len(m.items)-visible))
	end := min(len(m.items), start+visible)

	if start > 0 {
		s.WriteString(detailStyle.Render("↑ More above") + "\n")
	}

	for i := start; i < end; i++ {
		snap := m.items[i]
		warn := m.opts.Warns != nil && m.opts.Warns(displayName(snap))
		body := renderItem(snap, m.bar, contentWidth-4, warn)

		if i == m.selectedIdx {
			s.WriteString(selectedDownloadStyle.Width(contentWidth).Render(body))
		} else {
			s.WriteString(downloadItemStyle.Width(contentWidth).Render(body))
		}
		s.WriteString("\n")
	}

	if end < len(m.items) {
		s.WriteString(detailStyle.Render("↓ More below") + "\n")
	}

	s.WriteString(m.renderMessage(contentWidth))
	s.WriteString("\n")
	s.WriteString(m.help.View(m.keys))

	return s.String()
}

func (m Model) renderAddDownloadView(contentWidth int) string {
	var s strings.Builder

	s.WriteString(headerStyle.Width(contentWidth).Render("Add New Download"))
	s.WriteString("\n\n")
	s.WriteString(formLabelStyle.Render("Mirrors:"))
	s.WriteString(formInputStyle.Render(m.input.View()))
	s.WriteString("\n\n")
	s.WriteString(detailStyle.Render("Saving to " + m.opts.DownloadDir))
	s.WriteString("\n\n")
	s.WriteString(m.help.View(m.keys))

	return s.String()
}

func (m Model) renderLogsView(contentWidth int) string {
	var s strings.Builder

	s.WriteString(headerStyle.Width(contentWidth).Render(fmt.Sprintf("Logs (%d)", logger.LineCount())))
	s.WriteString("\n\n")

	lines := logger.Lines()
	if m.height > 0 {
		keep := max(m.height-8, 1)
		lines = lines[max(0, len(lines)-keep):]
	}
	for _, line := range lines {
		s.WriteString(logLineStyle.MaxWidth(contentWidth).Render(line))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(m.help.View(m.keys))

	return s.String()
}

func (m Model) renderMessage(contentWidth int) string {
	if m.message == "" {
		return ""
	}

	if m.messageErr {
		return errorStyle.Width(contentWidth).Render(m.message)
	}

	return "\n" + messageStyle.Render(m.message)
}
