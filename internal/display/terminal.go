package display

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/rileyhilliard/inkdash/internal/render"
)

// TerminalDriver prints frames with half-block glyphs, two pixel rows per
// text line, inside a rounded border when the output is a terminal.
type TerminalDriver struct {
	out    io.Writer
	border bool
}

// NewTerminalDriver creates a driver writing to out.
func NewTerminalDriver(out io.Writer) *TerminalDriver {
	border := false
	if f, ok := out.(*os.File); ok {
		border = term.IsTerminal(int(f.Fd()))
	}
	return &TerminalDriver{out: out, border: border}
}

func (d *TerminalDriver) Init(ctx context.Context) error  { return nil }
func (d *TerminalDriver) Clear(ctx context.Context) error { return nil }
func (d *TerminalDriver) Sleep(ctx context.Context) error { return nil }

func (d *TerminalDriver) Display(ctx context.Context, canvas *render.Canvas) error {
	frame := HalfBlocks(canvas)
	if d.border {
		frame = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Render(frame)
	}
	_, err := fmt.Fprintln(d.out, frame)
	return err
}

// HalfBlocks renders the canvas as text. Each character covers two vertically
// adjacent pixels: ' ' neither, '▀' top, '▄' bottom, '█' both.
func HalfBlocks(canvas *render.Canvas) string {
	var b strings.Builder
	w, h := canvas.Width(), canvas.Height()
	for y := 0; y < h; y += 2 {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < w; x++ {
			top := canvas.At(x, y)
			bottom := canvas.At(x, y+1)
			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}
