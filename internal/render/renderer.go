package render

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/inconsolata"

	"github.com/rileyhilliard/inkdash/internal/errors"
	"github.com/rileyhilliard/inkdash/internal/layout"
)

// Faces maps each font style to the face it is drawn with.
type Faces map[layout.FontStyle]font.Face

// DefaultFaces uses the bitmap faces bundled with x/image, so rendering needs
// no font files on disk and is identical on every machine.
func DefaultFaces() Faces {
	return Faces{
		layout.StyleSmall:  basicfont.Face7x13,
		layout.StyleMedium: inconsolata.Regular8x16,
		layout.StyleLarge:  inconsolata.Bold8x16,
	}
}

// Renderer draws bound fields into fresh canvases.
type Renderer struct {
	width  int
	height int
	faces  Faces
}

// NewRenderer creates a renderer for width x height canvases.
// A nil faces map selects DefaultFaces.
func NewRenderer(width, height int, faces Faces) *Renderer {
	if faces == nil {
		faces = DefaultFaces()
	}
	return &Renderer{width: width, height: height, faces: faces}
}

// Size returns the canvas dimensions.
func (r *Renderer) Size() (width, height int) {
	return r.width, r.height
}

// Supports reports whether the renderer has a face for style.
func (r *Renderer) Supports(style layout.FontStyle) bool {
	_, ok := r.faces[style]
	return ok
}

// Render allocates a clear canvas and draws each field in order.
// There is no collision detection: overlapping fields simply overwrite.
func (r *Renderer) Render(fields []layout.BoundField) (*Canvas, error) {
	c := NewCanvas(r.width, r.height)
	if err := r.Draw(c, fields); err != nil {
		return nil, err
	}
	return c, nil
}

// Draw paints fields onto an existing canvas.
func (r *Renderer) Draw(c *Canvas, fields []layout.BoundField) error {
	for _, f := range fields {
		face, ok := r.faces[f.Style]
		if !ok {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("No face configured for style '%s'", f.Style),
				"Use one of: small, medium, large")
		}
		if err := c.DrawText(face, f.X, f.Y, f.Text); err != nil {
			return err
		}
	}
	return nil
}
