package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/inkdash/internal/errors"
	"github.com/rileyhilliard/inkdash/internal/layout"
	"github.com/rileyhilliard/inkdash/internal/metric"
)

func referenceFields() []layout.BoundField {
	values := metric.Set{
		metric.Hostname:    metric.Ok("raspberrypi"),
		metric.IP:          metric.Ok("192.168.1.20"),
		metric.Wifi:        metric.Ok("70/70 -42 dBm"),
		metric.Time:        metric.Ok("2024-03-05 07:09"),
		metric.Memory:      metric.Ok("50%"),
		metric.Disk:        metric.Ok("3G/30G 12%"),
		metric.Temperature: metric.Err(metric.TempUnavailable),
		metric.Uptime:      metric.Ok("4.06d, active 4.11%"),
	}
	return layout.Reference().Bind(values)
}

func TestRenderer_Deterministic(t *testing.T) {
	r := NewRenderer(250, 122, nil)
	fields := referenceFields()

	first, err := r.Render(fields)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := r.Render(fields)
		require.NoError(t, err)
		assert.Equal(t, first.Bytes(), again.Bytes())

		a, err := first.EncodePNG()
		require.NoError(t, err)
		b, err := again.EncodePNG()
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestRenderer_FreshCanvasEachCall(t *testing.T) {
	r := NewRenderer(250, 122, nil)

	first, err := r.Render(referenceFields())
	require.NoError(t, err)
	empty, err := r.Render(nil)
	require.NoError(t, err)

	assert.NotSame(t, first, empty)
	assert.NotEqual(t, first.Bytes(), empty.Bytes())
	assert.Equal(t, NewCanvas(250, 122).Bytes(), empty.Bytes())
}

func TestRenderer_DifferentTextDifferentPixels(t *testing.T) {
	r := NewRenderer(250, 122, nil)
	f := layout.Field{Label: "Mem", Metric: metric.Memory, Style: layout.StyleSmall, X: 120, Y: 60}

	a, err := r.Render([]layout.BoundField{{Field: f, Text: f.Text(metric.Ok("50%"))}})
	require.NoError(t, err)
	b, err := r.Render([]layout.BoundField{{Field: f, Text: f.Text(metric.Err(metric.MemUnavailable))}})
	require.NoError(t, err)

	assert.NotEqual(t, a.Bytes(), b.Bytes())
}

func TestRenderer_OverlapPaintsInOrder(t *testing.T) {
	r := NewRenderer(64, 32, nil)
	f := layout.Field{Metric: metric.Time, Style: layout.StyleSmall, X: 0, Y: 0}

	single, err := r.Render([]layout.BoundField{{Field: f, Text: "AB"}})
	require.NoError(t, err)
	overlapped, err := r.Render([]layout.BoundField{{Field: f, Text: "AB"}, {Field: f, Text: "AB"}})
	require.NoError(t, err)

	assert.Equal(t, single.Bytes(), overlapped.Bytes())
}

func TestRenderer_StylesUseDifferentFaces(t *testing.T) {
	r := NewRenderer(250, 122, nil)
	small := layout.Field{Metric: metric.Hostname, Style: layout.StyleSmall}
	large := layout.Field{Metric: metric.Hostname, Style: layout.StyleLarge}

	a, err := r.Render([]layout.BoundField{{Field: small, Text: "pi"}})
	require.NoError(t, err)
	b, err := r.Render([]layout.BoundField{{Field: large, Text: "pi"}})
	require.NoError(t, err)

	assert.NotEqual(t, a.Bytes(), b.Bytes())
}

func TestRenderer_UnknownStyle(t *testing.T) {
	r := NewRenderer(250, 122, Faces{})
	f := layout.Field{Metric: metric.Time, Style: layout.StyleSmall}

	_, err := r.Render([]layout.BoundField{{Field: f, Text: "12:00"}})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestRenderer_Size(t *testing.T) {
	w, h := NewRenderer(250, 122, nil).Size()
	assert.Equal(t, 250, w)
	assert.Equal(t, 122, h)
}
