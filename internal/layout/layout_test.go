package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/inkdash/internal/errors"
	"github.com/rileyhilliard/inkdash/internal/metric"
)

func TestReference(t *testing.T) {
	l := Reference()

	require.Len(t, l, 8)
	assert.NoError(t, l.Validate(250, 122, metric.AllKinds))
	assert.Equal(t, metric.Hostname, l[0].Metric)
	assert.Equal(t, StyleLarge, l[0].Style)
	assert.Equal(t, "Up", l[7].Label)
	assert.Equal(t, 100, l[7].Y)
}

func TestLayout_Kinds(t *testing.T) {
	l := Layout{
		{Metric: metric.Memory, Style: StyleSmall},
		{Metric: metric.Disk, Style: StyleSmall},
		{Label: "again", Metric: metric.Memory, Style: StyleLarge},
	}

	assert.Equal(t, []metric.Kind{metric.Memory, metric.Disk}, l.Kinds())
}

func TestLayout_Validate(t *testing.T) {
	valid := Field{Metric: metric.Memory, Style: StyleSmall, X: 10, Y: 10}

	tests := []struct {
		name     string
		layout   Layout
		provided []metric.Kind
		errMsg   string
	}{
		{
			name:   "valid without provided set",
			layout: Layout{valid},
		},
		{
			name:     "valid with provided set",
			layout:   Layout{valid},
			provided: []metric.Kind{metric.Memory},
		},
		{
			name:   "empty layout",
			layout: Layout{},
			errMsg: "no fields",
		},
		{
			name:   "unknown metric",
			layout: Layout{{Metric: "battery", Style: StyleSmall}},
			errMsg: "Unknown metric 'battery'",
		},
		{
			name:   "misspelled metric gets a suggestion",
			layout: Layout{{Metric: "uptiem", Style: StyleSmall}},
			errMsg: "Did you mean 'uptime'?",
		},
		{
			name:     "metric not collected",
			layout:   Layout{valid},
			provided: []metric.Kind{metric.Disk},
			errMsg:   "Nothing collects 'memory'",
		},
		{
			name:   "unknown style",
			layout: Layout{{Metric: metric.Memory, Style: "huge"}},
			errMsg: "Unknown style 'huge'",
		},
		{
			name:   "x beyond width",
			layout: Layout{{Metric: metric.Memory, Style: StyleSmall, X: 250, Y: 0}},
			errMsg: "outside the 250x122 canvas",
		},
		{
			name:   "y beyond height",
			layout: Layout{{Label: "Mem", Metric: metric.Memory, Style: StyleSmall, X: 0, Y: 122}},
			errMsg: "layout field 1 (Mem)",
		},
		{
			name:   "negative position",
			layout: Layout{valid, {Metric: metric.Disk, Style: StyleSmall, X: -1, Y: 5}},
			errMsg: "layout field 2 (disk)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.layout.Validate(250, 122, tt.provided)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLayout_Bind(t *testing.T) {
	l := Layout{
		{Metric: metric.Hostname, Style: StyleLarge, X: 0, Y: 0},
		{Label: "Mem", Metric: metric.Memory, Style: StyleSmall, X: 120, Y: 60},
		{Label: "Temp", Metric: metric.Temperature, Style: StyleSmall, X: 120, Y: 80},
		{Label: "Disk", Metric: metric.Disk, Style: StyleSmall, X: 0, Y: 80},
	}
	values := metric.Set{
		metric.Hostname:    metric.Ok("raspberrypi"),
		metric.Memory:      metric.Ok("50%"),
		metric.Temperature: metric.Err(metric.TempUnavailable),
	}

	bound := l.Bind(values)

	require.Len(t, bound, 4)
	assert.Equal(t, "raspberrypi", bound[0].Text)
	assert.Equal(t, "Mem 50%", bound[1].Text)
	assert.Equal(t, "Temp Temp_Error", bound[2].Text)
	assert.Equal(t, "Disk Disk_Error", bound[3].Text, "missing values degrade to the error token")
	assert.Equal(t, 120, bound[1].X)
	assert.Equal(t, StyleSmall, bound[1].Style)
}

func TestField_TextNeverBlankOnError(t *testing.T) {
	for _, k := range metric.AllKinds {
		if k == metric.Time {
			continue
		}
		f := Field{Metric: k}
		assert.NotEmpty(t, f.Text(metric.Err(metric.UnavailableFor(k))), "kind %s", k)
	}
}
