package display

import (
	"context"
	"sync"

	"github.com/rileyhilliard/inkdash/internal/errors"
	"github.com/rileyhilliard/inkdash/internal/render"
)

// PNGDriver "displays" frames by writing them to a PNG file. It lets the
// dashboard run headless, or feed a separate panel tool that watches the file.
type PNGDriver struct {
	path string

	mu     sync.Mutex
	awake  bool
	width  int
	height int
}

// NewPNGDriver creates a driver that writes each frame to path.
func NewPNGDriver(path string) *PNGDriver {
	return &PNGDriver{path: path}
}

// Path returns the frame file location.
func (d *PNGDriver) Path() string { return d.path }

func (d *PNGDriver) Init(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.awake = true
	return nil
}

// Clear writes a blank frame of the last displayed size. Before the first
// frame the size is unknown, so there is nothing to blank.
func (d *PNGDriver) Clear(ctx context.Context) error {
	d.mu.Lock()
	w, h := d.width, d.height
	d.mu.Unlock()

	if w == 0 || h == 0 {
		return nil
	}
	return render.SavePNG(render.NewCanvas(w, h), d.path)
}

func (d *PNGDriver) Display(ctx context.Context, canvas *render.Canvas) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapWithCode(err, errors.ErrDisplay, "Display cancelled", "")
	}

	d.mu.Lock()
	awake := d.awake
	d.width, d.height = canvas.Width(), canvas.Height()
	d.mu.Unlock()

	if !awake {
		return errors.New(errors.ErrDisplay,
			"Display called on a sleeping panel",
			"Call Init before Display.")
	}
	return render.SavePNG(canvas, d.path)
}

func (d *PNGDriver) Sleep(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.awake = false
	return nil
}
