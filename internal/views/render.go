// Package views renders the TUI panels. Layout and styling live here so
// the update package stays focused on state transitions.
package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type AppData struct {
	Header        string
	MainPane      string
	SidePane      string
	StatusLine    string
	StatusIsError bool
	Notification  string
	Footer        string
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true)
)

func RenderApp(data AppData) string {
	main := panelStyle.Width(62).Render(data.MainPane)
	row := main
	if data.SidePane != "" {
		side := panelStyle.Width(46).Render(data.SidePane)
		row = lipgloss.JoinHorizontal(lipgloss.Top, main, side)
	}

	status := statusStyle.Render(data.StatusLine)
	if data.StatusIsError {
		status = errorStyle.Render(data.StatusLine)
	}

	lines := []string{
		headerStyle.Render(data.Header),
		row,
		status,
	}
	if data.Notification != "" {
		lines = append(lines, panelStyle.Render(data.Notification))
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
