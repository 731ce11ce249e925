// Package layout describes where each metric is drawn on the panel and binds
// collected values to display text.
package layout

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/inkdash/internal/errors"
	"github.com/rileyhilliard/inkdash/internal/metric"
	"github.com/rileyhilliard/inkdash/internal/util"
)

// FontStyle is a semantic text size; the renderer maps it to a concrete face.
type FontStyle string

const (
	StyleSmall  FontStyle = "small"
	StyleMedium FontStyle = "medium"
	StyleLarge  FontStyle = "large"
)

// Styles lists the known font styles.
var Styles = []FontStyle{StyleSmall, StyleMedium, StyleLarge}

// Valid reports whether s is a known style.
func (s FontStyle) Valid() bool {
	for _, known := range Styles {
		if s == known {
			return true
		}
	}
	return false
}

// Field is one entry of the dashboard: an optional label, the metric it shows,
// the text style and the top-left pixel where the text starts.
type Field struct {
	Label  string      `yaml:"label,omitempty" mapstructure:"label"`
	Metric metric.Kind `yaml:"metric" mapstructure:"metric"`
	Style  FontStyle   `yaml:"style" mapstructure:"style"`
	X      int         `yaml:"x" mapstructure:"x"`
	Y      int         `yaml:"y" mapstructure:"y"`
}

// Layout is an ordered list of fields. Order is paint order: later fields
// overwrite pixels drawn by earlier ones.
type Layout []Field

// Reference returns the stock layout for a 250x122 panel.
func Reference() Layout {
	return Layout{
		{Metric: metric.Hostname, Style: StyleLarge, X: 0, Y: 0},
		{Metric: metric.IP, Style: StyleSmall, X: 0, Y: 40},
		{Label: "WiFi", Metric: metric.Wifi, Style: StyleSmall, X: 120, Y: 40},
		{Metric: metric.Time, Style: StyleSmall, X: 0, Y: 60},
		{Label: "Mem", Metric: metric.Memory, Style: StyleSmall, X: 120, Y: 60},
		{Label: "Disk", Metric: metric.Disk, Style: StyleSmall, X: 0, Y: 80},
		{Label: "Temp", Metric: metric.Temperature, Style: StyleSmall, X: 120, Y: 80},
		{Label: "Up", Metric: metric.Uptime, Style: StyleSmall, X: 0, Y: 100},
	}
}

// Kinds returns each metric referenced by the layout once, in first-use order.
func (l Layout) Kinds() []metric.Kind {
	seen := make(map[metric.Kind]bool, len(l))
	var kinds []metric.Kind
	for _, f := range l {
		if !seen[f.Metric] {
			seen[f.Metric] = true
			kinds = append(kinds, f.Metric)
		}
	}
	return kinds
}

// Validate checks every field against a width x height canvas and, when
// provided is non-nil, against the set of metrics the collector can produce.
func (l Layout) Validate(width, height int, provided []metric.Kind) error {
	if len(l) == 0 {
		return errors.New(errors.ErrConfig,
			"The layout has no fields",
			"Add at least one entry under 'layout' in your config.")
	}

	var available map[metric.Kind]bool
	if provided != nil {
		available = make(map[metric.Kind]bool, len(provided))
		for _, k := range provided {
			available[k] = true
		}
	}

	for i, f := range l {
		where := fmt.Sprintf("layout field %d (%s)", i+1, f.describe())

		if !f.Metric.Valid() {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Unknown metric '%s' in %s", f.Metric, where),
				didYouMean(string(f.Metric))+"Known metrics: "+joinKinds(metric.AllKinds))
		}
		if available != nil && !available[f.Metric] {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Nothing collects '%s' for %s", f.Metric, where),
				"Configure a source for this metric or remove the field.")
		}
		if !f.Style.Valid() {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Unknown style '%s' in %s", f.Style, where),
				"Use one of: small, medium, large")
		}
		if f.X < 0 || f.Y < 0 || f.X >= width || f.Y >= height {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Position %d,%d of %s is outside the %dx%d canvas", f.X, f.Y, where, width, height),
				fmt.Sprintf("Keep x in [0,%d) and y in [0,%d).", width, height))
		}
	}

	return nil
}

// BoundField is a field paired with the text drawn for it in one cycle.
type BoundField struct {
	Field
	Text string
}

// Bind produces the text for every field, in layout order. A field whose
// metric is missing from values shows that metric's error token.
func (l Layout) Bind(values metric.Set) []BoundField {
	bound := make([]BoundField, 0, len(l))
	for _, f := range l {
		v, ok := values[f.Metric]
		if !ok {
			v = metric.Err(metric.UnavailableFor(f.Metric))
		}
		bound = append(bound, BoundField{Field: f, Text: f.Text(v)})
	}
	return bound
}

// Text formats v for this field: "<label> <value>" or just the value.
func (f Field) Text(v metric.Value) string {
	if f.Label == "" {
		return v.Text()
	}
	return f.Label + " " + v.Text()
}

func (f Field) describe() string {
	if f.Label != "" {
		return f.Label
	}
	return string(f.Metric)
}

func didYouMean(name string) string {
	names := make([]string, len(metric.AllKinds))
	for i, k := range metric.AllKinds {
		names[i] = string(k)
	}
	if s := util.SuggestSimilar(name, names, 1); len(s) > 0 {
		return fmt.Sprintf("Did you mean '%s'? ", s[0])
	}
	return ""
}

func joinKinds(kinds []metric.Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
