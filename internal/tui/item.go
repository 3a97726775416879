package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/NamanBalaji/mirrordl/internal/downloads"
)

const maxNameLen = 40

// renderItem draws a single queue entry: name, status and percentage, a
// progress bar, then size and the current mirror.
func renderItem(s downloads.Snapshot, bar progress.Model, width int, warn bool) string {
	name := displayName(s)
	if len(name) > maxNameLen {
		name = name[:maxNameLen-3] + "..."
	}

	statusLabel := statusLabel(s.Progress.Status)
	if warn {
		statusLabel = warnStyle.Render("⚠ ") + statusLabel
	}

	percent := lipgloss.NewStyle().
		Width(8).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.1f%%", s.Progress.Percentage()))

	remaining := width - maxNameLen - lipgloss.Width(statusLabel) - lipgloss.Width(percent) - 3
	if remaining < 2 {
		remaining = 2
	}
	line1 := fmt.Sprintf("%-*s %s%s%s", maxNameLen, name, statusLabel, strings.Repeat(" ", remaining), percent)

	bar.Width = max(width-2, 10)
	line2 := bar.ViewAs(s.Progress.Percentage() / 100)

	total := "?"
	if s.Progress.BytesTotal > 0 {
		total = formatSize(s.Progress.BytesTotal)
	}
	details := fmt.Sprintf("%s / %s", formatSize(s.Progress.BytesDone), total)
	switch {
	case s.Progress.Status == downloads.StatusFailed && s.Progress.Message != "":
		details += "  " + s.Progress.Message
	case s.Progress.Mirror != "":
		details += "  " + s.Progress.Mirror
	}
	line3 := detailStyle.Render(details)

	return lipgloss.JoinVertical(lipgloss.Left, line1, line2, line3)
}

func displayName(s downloads.Snapshot) string {
	switch {
	case s.Item.Title != "":
		return s.Item.Title
	case s.Progress.Path != "":
		return s.Progress.Path[strings.LastIndexAny(s.Progress.Path, `/\`)+1:]
	case len(s.Item.URLs) > 0:
		return s.Item.URLs[0]
	default:
		return fmt.Sprintf("download #%d", s.ID)
	}
}

func statusLabel(st downloads.Status) string {
	switch st {
	case downloads.StatusRunning:
		return statusStyleActive.Render("● running")
	case downloads.StatusPaused:
		return statusStylePaused.Render("❚❚ paused")
	case downloads.StatusCompleted:
		return statusStyleCompleted.Render("✔ completed")
	case downloads.StatusCanceled:
		return statusStylePaused.Render("⊘ canceled")
	case downloads.StatusFailed:
		return statusStyleFailed.Render("✖ failed")
	default:
		return statusStyleQueued.Render("○ queued")
	}
}

// formatSize converts bytes into a human-readable string.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
