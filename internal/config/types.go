package config

import (
	"time"

	"github.com/rileyhilliard/inkdash/internal/layout"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete inkdash.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Interval is the time between render cycles.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// MetricTimeout bounds every single metric fetch.
	MetricTimeout time.Duration `yaml:"metric_timeout" mapstructure:"metric_timeout"`

	// DisplayTimeout bounds each init, clear and display call to the panel.
	// A display call that runs over counts as a rejected frame.
	DisplayTimeout time.Duration `yaml:"display_timeout" mapstructure:"display_timeout"`

	// Workers caps how many metrics are fetched at once.
	Workers int `yaml:"workers" mapstructure:"workers"`

	// FallbackPath is where the frame is saved as PNG when the display rejects it.
	// Overwritten every failing cycle. Supports ~ and ${HOME}, ${USER}, ${HOSTNAME}.
	FallbackPath string `yaml:"fallback_path" mapstructure:"fallback_path"`

	// MetricsAddr, when set, serves Prometheus metrics on this address (e.g. ":9273").
	MetricsAddr string `yaml:"metrics_addr" mapstructure:"metrics_addr"`

	Display DisplayConfig `yaml:"display" mapstructure:"display"`
	Sources SourcesConfig `yaml:"sources" mapstructure:"sources"`
	Lock    LockConfig    `yaml:"lock" mapstructure:"lock"`

	// LayoutFile points at a separate YAML file with a top-level 'fields' list.
	// When set it replaces Layout.
	LayoutFile string `yaml:"layout_file" mapstructure:"layout_file"`

	// Layout is the ordered list of fields drawn each cycle.
	Layout layout.Layout `yaml:"layout" mapstructure:"layout"`
}

// DisplayConfig selects and sizes the panel.
type DisplayConfig struct {
	// Driver is one of "png", "terminal" or "none".
	Driver string `yaml:"driver" mapstructure:"driver"`

	Width  int `yaml:"width" mapstructure:"width"`
	Height int `yaml:"height" mapstructure:"height"`

	// OutputPath is the frame file written by the png driver.
	OutputPath string `yaml:"output_path" mapstructure:"output_path"`

	// ReinitEachCycle runs init+clear before every cycle instead of only the first.
	ReinitEachCycle bool `yaml:"reinit_each_cycle" mapstructure:"reinit_each_cycle"`

	// ClearOnExit blanks the panel before the process stops.
	ClearOnExit bool `yaml:"clear_on_exit" mapstructure:"clear_on_exit"`
}

// LockConfig controls the lock that keeps two processes off the same panel.
type LockConfig struct {
	// Dir holds the lock directory. Empty disables locking.
	Dir string `yaml:"dir" mapstructure:"dir"`

	// Timeout is how long 'run' and 'once' wait for another holder.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// SourcesConfig describes where each metric's raw text comes from.
type SourcesConfig struct {
	TemperatureCommand string `yaml:"temperature_command" mapstructure:"temperature_command"`
	MemoryCommand      string `yaml:"memory_command" mapstructure:"memory_command"`
	DiskCommand        string `yaml:"disk_command" mapstructure:"disk_command"`

	// TemperatureUnit appends 'C to the temperature reading.
	TemperatureUnit bool `yaml:"temperature_unit" mapstructure:"temperature_unit"`

	// WifiCommand may reference ${IFACE}.
	WifiCommand   string `yaml:"wifi_command" mapstructure:"wifi_command"`
	WifiInterface string `yaml:"wifi_interface" mapstructure:"wifi_interface"`

	// WifiBackend is "iwconfig" (run WifiCommand) or "nl80211" (ask the kernel directly).
	WifiBackend string `yaml:"wifi_backend" mapstructure:"wifi_backend"`

	UptimePath string `yaml:"uptime_path" mapstructure:"uptime_path"`

	// UptimeCores overrides the detected logical CPU count used for the active percentage.
	// Zero means detect at runtime.
	UptimeCores int `yaml:"uptime_cores" mapstructure:"uptime_cores"`

	// IPRouteAddr is the address a UDP socket is pointed at to learn the outbound
	// interface address. No packets are sent.
	IPRouteAddr string `yaml:"ip_route_addr" mapstructure:"ip_route_addr"`
}

// Supported display drivers.
const (
	DriverPNG      = "png"
	DriverTerminal = "terminal"
	DriverNone     = "none"
)

// Supported wireless backends.
const (
	WifiBackendIwconfig = "iwconfig"
	WifiBackendNL80211  = "nl80211"
)
