package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/inkdash/internal/errors"
)

// MinInterval keeps the panel from being refreshed faster than e-paper tolerates.
const MinInterval = 10 * time.Second

// KnownDrivers are the accepted values of display.driver.
var KnownDrivers = []string{DriverPNG, DriverTerminal, DriverNone}

// KnownWifiBackends are the accepted values of sources.wifi_backend.
var KnownWifiBackends = []string{WifiBackendIwconfig, WifiBackendNL80211}

// Validate checks the config for errors and returns structured error messages.
// Layout fields are checked against the canvas size; whether each metric has a
// collector is checked again when the dashboard is built.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but inkdash only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade inkdash or lower the version field.")
	}

	if err := validateTiming(cfg); err != nil {
		return err
	}

	if cfg.FallbackPath == "" {
		return errors.New(errors.ErrConfig,
			"fallback_path is empty",
			"Set fallback_path to a writable file, e.g. /tmp/inkdash-fallback.png")
	}

	if err := validateDisplay(cfg.Display); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'display' section in your config.")
	}

	if err := validateSources(cfg.Sources); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'sources' section in your config.")
	}

	return cfg.Layout.Validate(cfg.Display.Width, cfg.Display.Height, nil)
}

func validateTiming(cfg *Config) error {
	if cfg.Interval < MinInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Interval %s is too short", cfg.Interval),
			fmt.Sprintf("Use at least %s; e-paper panels wear out with fast refreshes.", MinInterval))
	}
	if cfg.MetricTimeout <= 0 {
		return errors.New(errors.ErrConfig,
			"metric_timeout must be positive",
			"Try something like 5s.")
	}
	if cfg.MetricTimeout >= cfg.Interval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("metric_timeout (%s) must be shorter than interval (%s)", cfg.MetricTimeout, cfg.Interval),
			"Lower metric_timeout so a cycle finishes before the next one starts.")
	}
	if cfg.DisplayTimeout <= 0 {
		return errors.New(errors.ErrConfig,
			"display_timeout must be positive",
			"Try something like 30s.")
	}
	if cfg.Lock.Timeout < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("lock.timeout must not be negative, got %s", cfg.Lock.Timeout),
			"Use 0s to fail at once when the panel is busy.")
	}
	if cfg.Workers < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("workers must be at least 1, got %d", cfg.Workers),
			"Set workers to 1 for sequential collection.")
	}
	return nil
}

func validateDisplay(d DisplayConfig) error {
	if !contains(KnownDrivers, d.Driver) {
		return fmt.Errorf("unknown display driver '%s' (want one of %s)", d.Driver, strings.Join(KnownDrivers, ", "))
	}
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("display size %dx%d must be positive", d.Width, d.Height)
	}
	if d.Driver == DriverPNG && d.OutputPath == "" {
		return fmt.Errorf("display.output_path is required for the png driver")
	}
	return nil
}

func validateSources(s SourcesConfig) error {
	if !contains(KnownWifiBackends, s.WifiBackend) {
		return fmt.Errorf("unknown wifi_backend '%s' (want one of %s)", s.WifiBackend, strings.Join(KnownWifiBackends, ", "))
	}
	if s.UptimeCores < 0 {
		return fmt.Errorf("uptime_cores must not be negative, got %d", s.UptimeCores)
	}
	if s.IPRouteAddr != "" && !strings.Contains(s.IPRouteAddr, ":") {
		return fmt.Errorf("ip_route_addr '%s' needs a port, e.g. 8.8.8.8:80", s.IPRouteAddr)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
