package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestNewTable(t *testing.T) {
	columns := []TableColumn{
		{Title: "Label", Width: 8},
		{Title: "Metric", Width: 12},
	}
	rows := []table.Row{
		{"Mem", "memory"},
		{"Temp", "temperature"},
	}

	view := NewTable(columns, rows).View()

	assert.Contains(t, view, "Label")
	assert.Contains(t, view, "Metric")
	assert.Contains(t, view, "memory")
	assert.Contains(t, view, "temperature")
}

func TestNewTable_EmptyRows(t *testing.T) {
	view := NewTable([]TableColumn{{Title: "Name", Width: 20}}, []table.Row{}).View()
	assert.Contains(t, view, "Name")
}

func TestRenderSimpleTable(t *testing.T) {
	columns := []TableColumn{
		{Title: "Metric", Width: 12},
		{Title: "Text", Width: 20},
	}
	rows := [][]string{
		{"wifi", "WiFi 70/70 -42 dBm"},
		{"memory", "Mem 50%"},
	}

	output := RenderSimpleTable(columns, rows)

	assert.Contains(t, output, "Metric")
	assert.Contains(t, output, "WiFi 70/70 -42 dBm")
	assert.Contains(t, output, "Mem 50%")
}

func TestRenderSimpleTable_EmptyRows(t *testing.T) {
	assert.Empty(t, RenderSimpleTable([]TableColumn{{Title: "Name", Width: 20}}, nil))
}

func TestRenderCheckTable(t *testing.T) {
	rows := []CheckRow{
		{Status: CheckPass, Category: "Config", Message: "loaded inkdash.yaml"},
		{Status: CheckFail, Category: "Layout", Message: "field 3 outside canvas", Suggestion: "Keep x in [0,250)."},
		{Status: CheckWarn, Category: "Sources", Message: "vcgencmd not found", Suggestion: "Temperature will show Temp_Error."},
		{Status: CheckPass, Category: "Config", Message: "interval 5m0s", Suggestion: "hidden"},
	}

	out := RenderCheckTable(rows)

	assert.Contains(t, out, "Config")
	assert.Contains(t, out, SymbolSuccess+" loaded inkdash.yaml")
	assert.Contains(t, out, SymbolFail+" field 3 outside canvas")
	assert.Contains(t, out, "Keep x in [0,250).")
	assert.Contains(t, out, SymbolWarn+" vcgencmd not found")
	assert.NotContains(t, out, "hidden", "suggestions are only shown for non-passing rows")
	assert.Less(t, strings.Index(out, "interval 5m0s"), strings.Index(out, "Layout"), "rows group under their first-seen category")
}

func TestRenderCheckTable_Empty(t *testing.T) {
	assert.Equal(t, "No checks to display", RenderCheckTable(nil))
}

func TestHasFailures(t *testing.T) {
	assert.False(t, HasFailures([]CheckRow{{Status: CheckPass}, {Status: CheckWarn}}))
	assert.True(t, HasFailures([]CheckRow{{Status: CheckPass}, {Status: CheckFail}}))
}
