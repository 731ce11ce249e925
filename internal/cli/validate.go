package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/inkdash/internal/config"
	"github.com/rileyhilliard/inkdash/internal/dashboard"
	"github.com/rileyhilliard/inkdash/internal/display"
	"github.com/rileyhilliard/inkdash/internal/errors"
	"github.com/rileyhilliard/inkdash/internal/exec"
	"github.com/rileyhilliard/inkdash/internal/lock"
	"github.com/rileyhilliard/inkdash/internal/logger"
	"github.com/rileyhilliard/inkdash/internal/metric"
	"github.com/rileyhilliard/inkdash/internal/render"
	"github.com/rileyhilliard/inkdash/internal/ui"
	"github.com/rileyhilliard/inkdash/internal/util"
)

func validateCommand(cmd *cobra.Command) error {
	rows := runChecks(cfgFile)
	fmt.Fprint(cmd.OutOrStdout(), ui.RenderCheckTable(rows))

	if ui.HasFailures(rows) {
		return errors.New(errors.ErrConfig,
			"Config has problems",
			"Fix the items marked "+ui.SymbolFail+" above.")
	}
	return nil
}

// runChecks loads the config at explicit (or the search path) and checks it
// the way startup would, then looks for every source the layout reads.
func runChecks(explicit string) []ui.CheckRow {
	var rows []ui.CheckRow

	cfg, path, err := config.LoadOrDefault(explicit)
	if err != nil {
		return append(rows, checkFromError("Config", err))
	}
	if path == "" {
		rows = append(rows, ui.CheckRow{Status: ui.CheckPass, Category: "Config", Message: "no config file, using built-in defaults"})
	} else {
		rows = append(rows, ui.CheckRow{Status: ui.CheckPass, Category: "Config", Message: "loaded " + path})
	}

	if err := config.Validate(cfg); err != nil {
		return append(rows, checkFromError("Config", err))
	}
	rows = append(rows, ui.CheckRow{
		Status:   ui.CheckPass,
		Category: "Config",
		Message:  fmt.Sprintf("every %s, %s per metric, %d %s", cfg.Interval, cfg.MetricTimeout, cfg.Workers, util.Pluralize(cfg.Workers, "worker", "workers")),
	})

	renderer := render.NewRenderer(cfg.Display.Width, cfg.Display.Height, nil)
	if _, err := dashboard.New(newCollector(cfg, logger.Noop()), renderer, display.Nop{}, cfg.Layout); err != nil {
		rows = append(rows, checkFromError("Layout", err))
	} else {
		n := len(cfg.Layout)
		rows = append(rows, ui.CheckRow{
			Status:   ui.CheckPass,
			Category: "Layout",
			Message:  fmt.Sprintf("%d %s fit the %dx%d canvas", n, util.Pluralize(n, "field", "fields"), cfg.Display.Width, cfg.Display.Height),
		})
	}

	rows = append(rows, displayCheck(cfg), lockCheck(cfg.Lock))

	for _, kind := range cfg.Layout.Kinds() {
		if row, ok := sourceCheck(cfg.Sources, kind); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

func displayCheck(cfg *config.Config) ui.CheckRow {
	msg := "driver " + cfg.Display.Driver
	if cfg.Display.Driver == config.DriverPNG {
		msg += " writing " + cfg.Display.OutputPath
	}
	return ui.CheckRow{Status: ui.CheckPass, Category: "Display", Message: msg}
}

func lockCheck(cfg config.LockConfig) ui.CheckRow {
	if cfg.Dir == "" {
		return ui.CheckRow{Status: ui.CheckPass, Category: "Display", Message: "panel lock disabled"}
	}
	if _, err := os.Stat(filepath.Join(cfg.Dir, lock.DirName)); err == nil {
		return ui.CheckRow{
			Status:     ui.CheckWarn,
			Category:   "Display",
			Message:    "panel held by " + lock.Holder(cfg.Dir),
			Suggestion: fmt.Sprintf("'run' and 'once' will wait up to %s for it.", cfg.Timeout),
		}
	}
	return ui.CheckRow{Status: ui.CheckPass, Category: "Display", Message: "panel lock free in " + cfg.Dir}
}

// sourceCheck looks for the program or file behind kind. Missing sources are
// warnings because the field degrades to its error token.
func sourceCheck(src config.SourcesConfig, kind metric.Kind) (ui.CheckRow, bool) {
	token := metric.UnavailableFor(kind).Token()
	missing := func(msg string) ui.CheckRow {
		return ui.CheckRow{
			Status:     ui.CheckWarn,
			Category:   "Sources",
			Message:    fmt.Sprintf("%s: %s", kind, msg),
			Suggestion: fmt.Sprintf("The field will show %s until this is fixed.", token),
		}
	}
	found := func(msg string) ui.CheckRow {
		return ui.CheckRow{Status: ui.CheckPass, Category: "Sources", Message: fmt.Sprintf("%s: %s", kind, msg)}
	}
	command := func(cmdline string) ui.CheckRow {
		name, path, err := exec.LookProgram(cmdline)
		if err != nil {
			if name == "" {
				return missing("no command configured")
			}
			return missing(name + " not found")
		}
		return found(path)
	}

	switch kind {
	case metric.Temperature:
		return command(src.TemperatureCommand), true
	case metric.Memory:
		return command(src.MemoryCommand), true
	case metric.Disk:
		return command(src.DiskCommand), true
	case metric.Wifi:
		if src.WifiBackend == config.WifiBackendNL80211 {
			return found("nl80211 on " + src.WifiInterface), true
		}
		return command(src.WifiCommand), true
	case metric.Uptime:
		if _, err := os.Stat(src.UptimePath); err != nil {
			return missing(src.UptimePath + " not readable"), true
		}
		return found(src.UptimePath), true
	case metric.IP:
		return found("route via " + src.IPRouteAddr), true
	default:
		return ui.CheckRow{}, false
	}
}

// checkFromError turns a structured error into a failing row.
func checkFromError(category string, err error) ui.CheckRow {
	row := ui.CheckRow{Status: ui.CheckFail, Category: category, Message: firstLine(err)}
	var e *errors.Error
	if stderrors.As(err, &e) {
		row.Suggestion = e.Suggestion
	}
	return row
}
