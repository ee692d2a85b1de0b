package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Styles holds the viewer's non-tree styling.
type Styles struct {
	Title        lipgloss.Style
	Cursor       lipgloss.Style
	Muted        lipgloss.Style
	Format       lipgloss.Style
	HeaderName   lipgloss.Style
	Notification lipgloss.Style
	Failure      lipgloss.Style
}

// DefaultStyles returns default styling.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("62")),
		Cursor:       lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true),
		Muted:        lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Format:       lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
		HeaderName:   lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
		Notification: lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		Failure:      lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
	}
}

// PlainStyles returns styles without any color or emphasis.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title:        plain,
		Cursor:       plain,
		Muted:        plain,
		Format:       plain,
		HeaderName:   plain,
		Notification: plain,
		Failure:      plain,
	}
}

// RenderTitle renders a full-width title bar.
func RenderTitle(style lipgloss.Style, title string, width int) string {
	return style.Width(width).Align(lipgloss.Center).Render(title)
}

// StatusStyle colors a status badge by status class.
func StatusStyle(code int) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch {
	case code >= 200 && code < 300:
		return style.Background(lipgloss.Color("34")).Foreground(lipgloss.Color("255"))
	case code >= 300 && code < 400:
		return style.Background(lipgloss.Color("214")).Foreground(lipgloss.Color("0"))
	case code >= 400 && code < 500:
		return style.Background(lipgloss.Color("208")).Foreground(lipgloss.Color("255"))
	case code >= 500:
		return style.Background(lipgloss.Color("160")).Foreground(lipgloss.Color("255"))
	default:
		return style.Background(lipgloss.Color("240"))
	}
}

// FormatSize renders a byte count for display.
func FormatSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%dB", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1fKB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1fMB", float64(bytes)/(1024*1024))
	}
}

// Truncate shortens s to width display cells. Escape sequences are kept
// intact.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return ansi.Truncate(s, width, "")
	}
	return ansi.Truncate(s, width, "...")
}

// PadLines pads lines with empty rows up to height.
func PadLines(lines []string, height int) []string {
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lines
}

// JoinRows joins rows into a block.
func JoinRows(rows ...string) string {
	return strings.Join(rows, "\n")
}
