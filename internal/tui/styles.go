package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/wemo/internal/ui"
	"github.com/muurk/wemo/internal/urls"
	"github.com/muurk/wemo/internal/version"
)

// AppName is shown in the container header
const AppName = "WEMO"

// Layout constants for responsive terminal width
const (
	MinTerminalWidth  = 72
	MinTerminalHeight = 16
)

// Styles specific to the full-screen view. Colors come from the ui palette.
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ui.PrimaryColor).
			Bold(true).
			Padding(1, 0, 0, 2)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ui.MutedColor).
			Italic(true)

	StatusOKStyle = lipgloss.NewStyle().
			Foreground(ui.SuccessColor).
			PaddingLeft(2)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ui.ErrorColor).
				PaddingLeft(2)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(ui.WarningColor).
			Bold(true).
			PaddingLeft(2)

	HintStyle = lipgloss.NewStyle().
			Foreground(ui.MutedColor).
			PaddingLeft(4)
)

// buildHeaderContent creates header content with app name and project URL
func buildHeaderContent() string {
	left := lipgloss.NewStyle().
		Foreground(ui.TextColor).
		Bold(true).
		Render(AppName + " " + version.Version)

	right := lipgloss.NewStyle().
		Foreground(ui.MutedColor).
		Render(urls.Repository)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

// renderContainer wraps screen content with a header, a help footer and
// an outer border filling the terminal.
func renderContainer(content, footer string, width, height int) string {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	if height < MinTerminalHeight {
		height = MinTerminalHeight
	}

	header := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(ui.PrimaryColor).
		Width(width-4).
		Padding(0, 1).
		Render(buildHeaderContent())

	foot := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(ui.PrimaryColor).
		Width(width-4).
		Padding(0, 1).
		Foreground(ui.MutedColor).
		Render(footer)

	body := lipgloss.NewStyle().Width(width - 4).Render(content)

	inner := lipgloss.JoinVertical(lipgloss.Left, header, body, foot)

	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(ui.PrimaryColor).
		Width(width - 2).
		Height(height - 2).
		AlignVertical(lipgloss.Top).
		Render(inner)
}
