package tui

import (
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NamanBalaji/mirrordl/internal/downloads"
)

type fakeQueue struct {
	mu       sync.Mutex
	items    []downloads.Snapshot
	enqueued []downloads.Item
	canceled []downloads.ID
}

func (f *fakeQueue) Enqueue(item downloads.Item) downloads.ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueued = append(f.enqueued, item)
	id := downloads.ID(len(f.enqueued))
	f.items = append(f.items, downloads.Snapshot{ID: id, Item: item})
	return id
}

func (f *fakeQueue) Cancel(id downloads.ID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canceled = append(f.canceled, id)
	return true
}

func (f *fakeQueue) Query(downloads.ID) downloads.Progress {
	return downloads.Progress{}
}

func (f *fakeQueue) List() []downloads.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]downloads.Snapshot(nil), f.items...)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = press(t, m, runes(string(r)))
	}
	return m
}

func TestAddDownload(t *testing.T) {
	q := &fakeQueue{}
	m := NewModel(q, Options{DownloadDir: "/games"})

	m, _ = press(t, m, runes("a"))
	assert.Equal(t, addDownloadView, m.activeView)

	m = typeText(t, m, "http://a.example/g.zip http://b.example/g.zip")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotNil(t, cmd)

	assert.Equal(t, downloadListView, m.activeView)
	assert.Empty(t, m.input.Value())
	require.Len(t, q.enqueued, 1)
	assert.Equal(t, "/games", q.enqueued[0].TargetDir)
	assert.Equal(t, []string{"http://a.example/g.zip", "http://b.example/g.zip"}, q.enqueued[0].URLs)
	assert.Contains(t, m.message, "#1")
	assert.Contains(t, m.started, downloads.ID(1))
}

func TestAddDownload_TypingQDoesNotQuit(t *testing.T) {
	m := NewModel(&fakeQueue{}, Options{DownloadDir: "/games"})

	m, _ = press(t, m, runes("a"))
	m = typeText(t, m, "q")

	assert.False(t, m.quitting)
	assert.Equal(t, "q", m.input.Value())
}

func TestAddDownload_EmptyAndEscape(t *testing.T) {
	q := &fakeQueue{}
	m := NewModel(q, Options{DownloadDir: "/games"})

	m, _ = press(t, m, runes("a"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, downloadListView, m.activeView)

	m, _ = press(t, m, runes("a"))
	m = typeText(t, m, "http://x")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, downloadListView, m.activeView)

	assert.Empty(t, q.enqueued)
}

func TestAddDownload_NoDirectory(t *testing.T) {
	q := &fakeQueue{}
	m := NewModel(q, Options{})

	m, _ = press(t, m, runes("a"))
	m = typeText(t, m, "http://x")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Empty(t, q.enqueued)
	assert.True(t, m.messageErr)
}

func TestCancelSelected(t *testing.T) {
	q := &fakeQueue{}
	m := NewModel(q, Options{DownloadDir: "/games"})

	// Added through the form: canceled through its orchestrator, once.
	m, _ = press(t, m, runes("a"))
	m = typeText(t, m, "http://a")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	// Enqueued elsewhere: canceled directly.
	q.Enqueue(downloads.Item{URLs: []string{"http://b"}})

	m, _ = press(t, m, itemsMsg(q.List()))
	require.Len(t, m.items, 2)

	m, _ = press(t, m, runes("c"))
	m, _ = press(t, m, runes("c"))
	m, _ = press(t, m, runes("j"))
	m, _ = press(t, m, runes("c"))

	assert.Equal(t, []downloads.ID{1, 2}, q.canceled)
}

func TestItemsClampSelection(t *testing.T) {
	m := NewModel(&fakeQueue{}, Options{})
	m.selectedIdx = 5

	m, _ = press(t, m, itemsMsg{{ID: 1}, {ID: 2}})
	assert.Equal(t, 1, m.selectedIdx)

	m, _ = press(t, m, itemsMsg(nil))
	assert.Equal(t, 0, m.selectedIdx)
}

func TestLogsToggleAndQuit(t *testing.T) {
	m := NewModel(&fakeQueue{}, Options{})

	m, _ = press(t, m, runes("l"))
	assert.Equal(t, logsView, m.activeView)
	assert.Contains(t, m.View(), "Logs")

	m, _ = press(t, m, runes("l"))
	assert.Equal(t, downloadListView, m.activeView)

	m, cmd := press(t, m, runes("q"))
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestMessageTimeout(t *testing.T) {
	m := NewModel(&fakeQueue{}, Options{})
	m.notify("first", false)
	m.notify("second", false)

	m, _ = press(t, m, messageTimeoutMsg{seq: 1})
	assert.Equal(t, "second", m.message)

	m, _ = press(t, m, messageTimeoutMsg{seq: 2})
	assert.Empty(t, m.message)
}

func TestRenderItem(t *testing.T) {
	m := NewModel(&fakeQueue{}, Options{Warns: func(name string) bool {
		return strings.HasPrefix(name, "[VN]")
	}})
	m.width, m.height = 100, 40

	m, _ = press(t, m, itemsMsg{
		{
			ID:   1,
			Item: downloads.Item{Title: "[VN] game.zip"},
			Progress: downloads.Progress{
				Status:     downloads.StatusRunning,
				BytesDone:  512,
				BytesTotal: 2048,
				Mirror:     "http://a.example/game.zip",
			},
		},
		{
			ID:       2,
			Item:     downloads.Item{URLs: []string{"http://b.example/other.zip"}},
			Progress: downloads.Progress{Status: downloads.StatusFailed, Message: "connection refused"},
		},
	})

	out := m.View()
	assert.Contains(t, out, "[VN] game.zip")
	assert.Contains(t, out, "⚠")
	assert.Contains(t, out, "25.0%")
	assert.Contains(t, out, "512 B / 2.0 KiB")
	assert.Contains(t, out, "connection refused")
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatSize(tt.in))
	}
}
