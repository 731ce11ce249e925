package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/inkdash/internal/config"
)

// CycleFlags holds overrides shared by the commands that render a frame.
// Zero values leave the config untouched.
type CycleFlags struct {
	Driver        string
	Fallback      string
	MetricTimeout time.Duration

	// Loop-only
	Interval    time.Duration
	MetricsAddr string
}

// AddCycleFlags registers --driver, --fallback and --metric-timeout on a command.
func AddCycleFlags(cmd *cobra.Command, flags *CycleFlags) {
	cmd.Flags().StringVar(&flags.Driver, "driver", "", "display driver: png, terminal, none")
	cmd.Flags().StringVar(&flags.Fallback, "fallback", "", "PNG written when the display rejects a frame")
	cmd.Flags().DurationVar(&flags.MetricTimeout, "metric-timeout", 0, "deadline for each metric (e.g., 5s)")
}

// AddLoopFlags registers --interval and --metrics-addr on a command.
func AddLoopFlags(cmd *cobra.Command, flags *CycleFlags) {
	cmd.Flags().DurationVar(&flags.Interval, "interval", 0, "time between frames (e.g., 5m)")
	cmd.Flags().StringVar(&flags.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g., :9273)")
}

// Apply copies every set flag onto cfg.
func (f CycleFlags) Apply(cfg *config.Config) {
	if f.Driver != "" {
		cfg.Display.Driver = f.Driver
	}
	if f.Fallback != "" {
		cfg.FallbackPath = config.ExpandPath(f.Fallback)
	}
	if f.MetricTimeout > 0 {
		cfg.MetricTimeout = f.MetricTimeout
	}
	if f.Interval > 0 {
		cfg.Interval = f.Interval
	}
	if f.MetricsAddr != "" {
		cfg.MetricsAddr = f.MetricsAddr
	}
}
