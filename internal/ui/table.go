package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a new Bubbles table with default styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{
			Title: c.Title,
			Width: c.Width,
		}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+2), // header row and its bottom border
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.
		Foreground(ColorPrimary)
	// Unfocused tables still highlight the cursor row; make it look like any other.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	return NewTable(columns, tableRows).View()
}

// CheckStatus is the outcome of one validation check.
type CheckStatus string

const (
	CheckPass CheckStatus = "pass"
	CheckWarn CheckStatus = "warn"
	CheckFail CheckStatus = "fail"
)

// CheckRow is one line in a check report.
type CheckRow struct {
	Status     CheckStatus
	Category   string
	Message    string
	Suggestion string // shown when the check did not pass
}

// RenderCheckTable renders check results grouped by category, in first-seen order.
func RenderCheckTable(rows []CheckRow) string {
	if len(rows) == 0 {
		return "No checks to display"
	}

	categories := make(map[string][]CheckRow)
	var order []string
	for _, row := range rows {
		if _, exists := categories[row.Category]; !exists {
			order = append(order, row.Category)
		}
		categories[row.Category] = append(categories[row.Category], row)
	}

	var b strings.Builder
	for _, cat := range order {
		b.WriteString(HeaderStyle.Render(cat) + "\n")

		for _, row := range categories[cat] {
			var icon string
			switch row.Status {
			case CheckPass:
				icon = SuccessStyle.Render(SymbolSuccess)
			case CheckWarn:
				icon = WarningStyle.Render(SymbolWarn)
			case CheckFail:
				icon = ErrorStyle.Render(SymbolFail)
			default:
				icon = MutedStyle.Render(SymbolPending)
			}

			b.WriteString("  " + icon + " " + row.Message + "\n")
			if row.Suggestion != "" && row.Status != CheckPass {
				b.WriteString("    " + MutedStyle.Render(row.Suggestion) + "\n")
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

// HasFailures reports whether any row failed.
func HasFailures(rows []CheckRow) bool {
	for _, r := range rows {
		if r.Status == CheckFail {
			return true
		}
	}
	return false
}
