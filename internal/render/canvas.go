// Package render draws bound layout fields into a 1-bit canvas sized for an
// e-paper panel.
package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/rileyhilliard/inkdash/internal/errors"
)

// Palette indexes: the background is clear (white) and text is ink (black).
const (
	Clear uint8 = 0
	Ink   uint8 = 1
)

var palette = color.Palette{color.White, color.Black}

// Canvas is a mutable 1-bit bitmap with its origin at the top-left corner.
// A canvas belongs to a single render cycle; once sealed it rejects drawing.
type Canvas struct {
	img    *image.Paletted
	sealed bool
}

// NewCanvas returns a width x height canvas filled with the background.
func NewCanvas(width, height int) *Canvas {
	// image.NewPaletted zero-fills, and index 0 is Clear.
	return &Canvas{img: image.NewPaletted(image.Rect(0, 0, width, height), palette)}
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.img.Rect.Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.img.Rect.Dy() }

// Image exposes the canvas as a read-only image.
func (c *Canvas) Image() image.Image { return c.img }

// At reports whether the pixel at x,y is inked. Out-of-range pixels are clear.
func (c *Canvas) At(x, y int) bool {
	if !(image.Point{X: x, Y: y}.In(c.img.Rect)) {
		return false
	}
	return c.img.ColorIndexAt(x, y) == Ink
}

// Set inks or clears a single pixel, ignoring out-of-range coordinates.
func (c *Canvas) Set(x, y int, ink bool) error {
	if c.sealed {
		return errSealed()
	}
	if !(image.Point{X: x, Y: y}.In(c.img.Rect)) {
		return nil
	}
	idx := Clear
	if ink {
		idx = Ink
	}
	c.img.SetColorIndex(x, y, idx)
	return nil
}

// DrawText draws s with face so that its top-left corner sits at x,y.
// Pixels beneath the glyphs are overwritten; glyphs past the edge are clipped.
func (c *Canvas) DrawText(face font.Face, x, y int, s string) error {
	if c.sealed {
		return errSealed()
	}
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
	return nil
}

// Seal marks the canvas as handed off; further drawing is a contract violation.
func (c *Canvas) Seal() { c.sealed = true }

// Sealed reports whether the canvas has been handed off.
func (c *Canvas) Sealed() bool { return c.sealed }

// Clone returns an independent, unsealed copy. Drivers receive clones so they
// never alias the cycle's canvas.
func (c *Canvas) Clone() *Canvas {
	img := image.NewPaletted(c.img.Rect, palette)
	copy(img.Pix, c.img.Pix)
	return &Canvas{img: img}
}

// Bytes packs the canvas row by row, eight pixels per byte with the leftmost
// pixel in the most significant bit. Rows are padded to a whole byte. A set
// bit is clear (white) and an unset bit is ink, matching what SSD1680-class
// panel controllers expect in their RAM.
func (c *Canvas) Bytes() []byte {
	w, h := c.Width(), c.Height()
	stride := (w + 7) / 8
	buf := make([]byte, stride*h)
	for i := range buf {
		buf[i] = 0xFF
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if c.img.ColorIndexAt(x, y) == Ink {
				buf[y*stride+x/8] &^= 0x80 >> (x % 8)
			}
		}
	}
	return buf
}

// EncodePNG returns the canvas as a 1-bit PNG.
func (c *Canvas) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, c.img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SavePNG writes the canvas to path, replacing any previous file atomically.
func SavePNG(c *Canvas, path string) error {
	data, err := c.EncodePNG()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrDisplay,
			"Couldn't encode the frame as PNG", "")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrDisplay,
			"Couldn't create directory for "+path,
			"Check the directory is writable")
	}

	tmp, err := os.CreateTemp(dir, ".inkdash-*.png")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrDisplay,
			"Couldn't create a temporary file next to "+path,
			"Check the directory is writable")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.WrapWithCode(err, errors.ErrDisplay, "Couldn't write "+tmpName, "")
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapWithCode(err, errors.ErrDisplay, "Couldn't write "+tmpName, "")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.WrapWithCode(err, errors.ErrDisplay, "Couldn't replace "+path, "")
	}
	return nil
}

func errSealed() error {
	return errors.New(errors.ErrFatal,
		"Drawing into a canvas that was already handed to the display",
		"Each render cycle must allocate a fresh canvas.")
}
