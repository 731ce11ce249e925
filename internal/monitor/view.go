package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/inkdash/internal/ui"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(ui.ColorInfo).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(ui.ColorMuted)
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.ColorMuted)
	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.ColorInfo).
			Padding(1, 2)
	helpKeyStyle = lipgloss.NewStyle().Bold(true).Width(14)
)

// helpBindings are the keyboard shortcuts shown in the help overlay.
var helpBindings = []struct{ Key, Desc string }{
	{"q / Ctrl+C", "Quit"},
	{"r", "Render now"},
	{"?", "Toggle this help"},
}

func (m Model) render() string {
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.frame == "" {
		b.WriteString(m.spinner.View() + " rendering first frame...")
	} else {
		framed := frameStyle.Render(m.frame)
		b.WriteString(framed)
		if m.width > 0 && lipgloss.Width(framed) > m.width {
			b.WriteString("\n" + ui.WarningStyle.Render(fmt.Sprintf("%s terminal is %d columns, frame needs %d", ui.SymbolWarn, m.width, lipgloss.Width(framed))))
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("q quit · r refresh · ? help"))
	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("inkdash preview")

	var update string
	switch {
	case m.collecting && m.frame != "":
		update = m.spinner.View() + " rendering"
	case m.lastUpdate.IsZero():
		update = "waiting"
	default:
		update = "updated " + m.lastUpdate.Format("15:04:05")
	}

	return title + mutedStyle.Render(fmt.Sprintf(" | every %s | %s", m.interval.Round(time.Second), update))
}

// renderStatus lists what went wrong in the last cycle, if anything.
func (m Model) renderStatus() string {
	if m.err != nil {
		return ui.ErrorStyle.Render(ui.SymbolFail + " " + m.err.Error())
	}
	if m.result == nil {
		return ""
	}

	failed := m.result.Values.Failed()
	if len(failed) == 0 {
		return ui.SuccessStyle.Render(ui.SymbolSuccess+" all metrics available") +
			mutedStyle.Render(fmt.Sprintf(" (%s)", m.result.Duration.Round(time.Millisecond)))
	}

	names := make([]string, len(failed))
	for i, k := range failed {
		names[i] = string(k)
	}
	return ui.WarningStyle.Render(fmt.Sprintf("%s unavailable: %s", ui.SymbolWarn, strings.Join(names, ", ")))
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Keyboard shortcuts"))
	b.WriteString("\n\n")
	for _, h := range helpBindings {
		b.WriteString(helpKeyStyle.Render(h.Key) + mutedStyle.Render(h.Desc) + "\n")
	}
	return helpBoxStyle.Render(strings.TrimRight(b.String(), "\n"))
}
