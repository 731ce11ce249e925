// Package display defines the panel driver contract used by the render cycle
// and ships drivers that need no panel hardware.
package display

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rileyhilliard/inkdash/internal/errors"
	"github.com/rileyhilliard/inkdash/internal/render"
)

// Driver is a long-lived handle to the panel. The render cycle calls Init and
// Clear before the first frame, Display once per cycle, and Sleep at the end of
// every cycle whether or not anything failed.
//
// Display receives a canvas the driver owns; it must not be retained past the call
// if the driver mutates it.
type Driver interface {
	Init(ctx context.Context) error
	Clear(ctx context.Context) error
	Display(ctx context.Context, canvas *render.Canvas) error
	Sleep(ctx context.Context) error
}

// Options configures New.
type Options struct {
	Driver     string
	OutputPath string
	Out        io.Writer
}

// New returns the driver named by opts.Driver.
func New(opts Options) (Driver, error) {
	switch opts.Driver {
	case "png":
		return NewPNGDriver(opts.OutputPath), nil
	case "terminal":
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		return NewTerminalDriver(out), nil
	case "none":
		return Nop{}, nil
	default:
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown display driver '%s'", opts.Driver),
			"Use one of: png, terminal, none")
	}
}

// Nop accepts every call and draws nothing. Useful for dry runs.
type Nop struct{}

func (Nop) Init(context.Context) error { return nil }

func (Nop) Clear(context.Context) error { return nil }

func (Nop) Display(context.Context, *render.Canvas) error { return nil }

func (Nop) Sleep(context.Context) error { return nil }
