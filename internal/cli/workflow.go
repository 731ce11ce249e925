package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/inkdash/internal/collector"
	"github.com/rileyhilliard/inkdash/internal/config"
	"github.com/rileyhilliard/inkdash/internal/dashboard"
	"github.com/rileyhilliard/inkdash/internal/display"
	"github.com/rileyhilliard/inkdash/internal/errors"
	"github.com/rileyhilliard/inkdash/internal/lock"
	"github.com/rileyhilliard/inkdash/internal/logger"
	"github.com/rileyhilliard/inkdash/internal/monitor"
	"github.com/rileyhilliard/inkdash/internal/render"
	"github.com/rileyhilliard/inkdash/internal/ui"
	"github.com/rileyhilliard/inkdash/internal/util"
)

// defaultWatchInterval is the preview refresh rate; the daemon interval is
// usually minutes, which is too slow to watch.
const defaultWatchInterval = 10 * time.Second

// loadConfig finds and loads the config, applies flag overrides and validates the result.
// The returned path is "" when the built-in defaults were used.
func loadConfig(flags CycleFlags) (*config.Config, string, error) {
	cfg, path, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, "", err
	}
	flags.Apply(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func describeSource(log logger.Logger, path string) {
	if path == "" {
		log.Debug("no config file found, using built-in defaults")
		return
	}
	log.Debug("using config %s", path)
}

// newCollector wires the stock metric sources from cfg.
func newCollector(cfg *config.Config, log logger.Logger) *collector.Collector {
	return collector.NewFromSources(cfg.Sources,
		collector.WithWorkers(cfg.Workers),
		collector.WithTimeout(cfg.MetricTimeout),
		collector.WithLogger(log))
}

// newDriver builds the display driver named in cfg.
func newDriver(cfg *config.Config, out io.Writer) (display.Driver, error) {
	return display.New(display.Options{
		Driver:     cfg.Display.Driver,
		OutputPath: cfg.Display.OutputPath,
		Out:        out,
	})
}

// buildRunner assembles the render cycle. Options in opts are applied after
// the ones derived from cfg, so they win.
func buildRunner(cfg *config.Config, driver display.Driver, log logger.Logger, opts ...dashboard.Option) (*dashboard.Runner, error) {
	renderer := render.NewRenderer(cfg.Display.Width, cfg.Display.Height, nil)
	base := []dashboard.Option{
		dashboard.WithFallbackPath(cfg.FallbackPath),
		dashboard.WithReinitEachCycle(cfg.Display.ReinitEachCycle),
		dashboard.WithClearOnExit(cfg.Display.ClearOnExit),
		dashboard.WithDisplayTimeout(cfg.DisplayTimeout),
		dashboard.WithLogger(log),
	}
	return dashboard.New(newCollector(cfg, log), renderer, driver, cfg.Layout, append(base, opts...)...)
}

// acquirePanel takes the panel lock for command. The returned func releases it.
// Nothing is locked when lock.dir is empty or the driver draws nowhere.
func acquirePanel(ctx context.Context, cfg *config.Config, command string, log logger.Logger) (func(), error) {
	if cfg.Lock.Dir == "" || cfg.Display.Driver == config.DriverNone {
		return func() {}, nil
	}
	l, err := lock.Acquire(ctx, cfg.Lock.Dir, cfg.Lock.Timeout, command)
	if err != nil {
		return nil, err
	}
	log.Debug("holding panel lock %s", l.Dir)
	return func() {
		if err := l.Release(); err != nil {
			log.Warn("%v", err)
		}
	}, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runCommand(cmd *cobra.Command, flags CycleFlags) error {
	cfg, path, err := loadConfig(flags)
	if err != nil {
		return err
	}
	log := logger.Default()
	describeSource(log, path)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	release, err := acquirePanel(ctx, cfg, "run", log)
	if err != nil {
		return err
	}
	defer release()

	driver, err := newDriver(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	var opts []dashboard.Option
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts = append(opts, dashboard.WithStats(dashboard.NewStats(reg)))

		srv, err := startMetricsServer(cfg.MetricsAddr, reg, log)
		if err != nil {
			return err
		}
		defer srv.Close()
		log.Info("serving metrics on %s/metrics", srv.Addr())
	}

	runner, err := buildRunner(cfg, driver, log, opts...)
	if err != nil {
		return err
	}

	log.Info("rendering every %s with the %s driver", cfg.Interval, cfg.Display.Driver)
	return runner.Run(ctx, cfg.Interval)
}

func onceCommand(cmd *cobra.Command, flags CycleFlags) error {
	cfg, path, err := loadConfig(flags)
	if err != nil {
		return err
	}
	log := logger.Default()
	describeSource(log, path)

	ctx := commandContext(cmd)
	release, err := acquirePanel(ctx, cfg, "once", log)
	if err != nil {
		return err
	}
	defer release()

	driver, err := newDriver(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	runner, err := buildRunner(cfg, driver, log)
	if err != nil {
		return err
	}

	res, err := runner.RunCycle(ctx)
	if err != nil {
		return err
	}
	printCycleSummary(cmd.ErrOrStderr(), res, cfg.FallbackPath)
	return nil
}

func previewCommand(cmd *cobra.Command, flags CycleFlags, watch bool) error {
	cfg, path, err := loadConfig(CycleFlags{MetricTimeout: flags.MetricTimeout})
	if err != nil {
		return err
	}
	log := logger.Default()
	describeSource(log, path)

	// The preview never touches the configured panel or the fallback file.
	previewOpts := []dashboard.Option{
		dashboard.WithFallbackPath(""),
		dashboard.WithClearOnExit(false),
	}

	if watch {
		if flags.Interval <= 0 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Refresh interval must be positive, got %s", flags.Interval),
				"Pass something like --interval 10s.")
		}
		// Log lines would tear the full-screen view.
		runner, err := buildRunner(cfg, display.Nop{}, logger.Noop(), previewOpts...)
		if err != nil {
			return err
		}
		return monitor.Run(runner, flags.Interval)
	}

	runner, err := buildRunner(cfg, display.NewTerminalDriver(cmd.OutOrStdout()), log, previewOpts...)
	if err != nil {
		return err
	}
	res, err := runner.RunCycle(commandContext(cmd))
	if err != nil {
		return err
	}
	printCycleSummary(cmd.ErrOrStderr(), res, "")
	return nil
}

func layoutCommand(cmd *cobra.Command) error {
	cfg, path, err := loadConfig(CycleFlags{})
	if err != nil {
		return err
	}
	log := logger.Default()
	describeSource(log, path)

	col := newCollector(cfg, log)
	values := col.Collect(commandContext(cmd), cfg.Layout.Kinds())
	bound := cfg.Layout.Bind(values)

	textWidth := len("Text")
	rows := make([][]string, len(bound))
	for i, f := range bound {
		rows[i] = []string{
			fmt.Sprintf("%d", i+1),
			string(f.Metric),
			string(f.Style),
			fmt.Sprintf("%d,%d", f.X, f.Y),
			f.Text,
		}
		if n := len([]rune(f.Text)); n > textWidth {
			textWidth = n
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), ui.RenderSimpleTable([]ui.TableColumn{
		{Title: "#", Width: 3},
		{Title: "Metric", Width: 12},
		{Title: "Style", Width: 7},
		{Title: "X,Y", Width: 8},
		{Title: "Text", Width: textWidth},
	}, rows))
	return nil
}

// printCycleSummary reports the outcome of a single cycle on w.
func printCycleSummary(w io.Writer, res *dashboard.CycleResult, fallback string) {
	n := len(res.Fields)
	summary := fmt.Sprintf("Rendered %d %s in %s", n, util.Pluralize(n, "field", "fields"), res.Duration.Round(time.Millisecond))

	failed := res.Values.Failed()
	if len(failed) == 0 {
		fmt.Fprintln(w, ui.SuccessStyle.Render(ui.SymbolSuccess)+" "+summary)
	} else {
		names := make([]string, len(failed))
		for i, k := range failed {
			names[i] = string(k)
		}
		fmt.Fprintln(w, ui.WarningStyle.Render(ui.SymbolWarn)+" "+summary)
		fmt.Fprintln(w, ui.MutedStyle.Render("  unavailable: "+util.JoinOrNone(names)))
	}

	if res.DisplayErr != nil {
		fmt.Fprintln(w, ui.ErrorStyle.Render(ui.SymbolFail)+" display rejected the frame: "+firstLine(res.DisplayErr))
		if res.FallbackWritten {
			fmt.Fprintln(w, ui.MutedStyle.Render("  frame saved to "+fallback))
		}
	}
}

// firstLine returns the headline of an error, dropping the structured
// cause and suggestion blocks.
func firstLine(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Message
	}
	msg, _, _ := strings.Cut(err.Error(), "\n")
	return msg
}
