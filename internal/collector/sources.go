package collector

import (
	"context"
	"net"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"

	"github.com/rileyhilliard/inkdash/internal/config"
	"github.com/rileyhilliard/inkdash/internal/exec"
	"github.com/rileyhilliard/inkdash/internal/logger"
	"github.com/rileyhilliard/inkdash/internal/metric"
	"github.com/rileyhilliard/inkdash/internal/metric/parsers"
	"github.com/rileyhilliard/inkdash/internal/util"
)

// NewFromSources creates a collector with the stock fetchers for every metric
// kind, wired to the commands and files in src. Fetchers passed through opts
// with WithFetcher take precedence.
func NewFromSources(src config.SourcesConfig, opts ...Option) *Collector {
	c := New(opts...)
	log := c.log

	parseTemp := parsers.ParseTemperature
	if src.TemperatureUnit {
		parseTemp = parsers.ParseTemperatureWithUnit
	}

	defaults := map[metric.Kind]Fetcher{
		metric.Hostname:    HostnameFetcher(os.Hostname),
		metric.IP:          IPFetcher(src.IPRouteAddr, log),
		metric.Temperature: CommandFetcher(metric.Temperature, src.TemperatureCommand, parseTemp, log),
		metric.Memory:      CommandFetcher(metric.Memory, src.MemoryCommand, parsers.ParseMemory, log),
		metric.Disk:        CommandFetcher(metric.Disk, src.DiskCommand, parsers.ParseDisk, log),
		metric.Uptime:      UptimeFetcher(src.UptimePath, src.UptimeCores, log),
		metric.Time:        ClockFetcher(time.Now),
	}

	if src.WifiBackend == config.WifiBackendNL80211 {
		defaults[metric.Wifi] = NL80211Fetcher(src.WifiInterface, log)
	} else {
		cmd := strings.ReplaceAll(src.WifiCommand, "${IFACE}", util.ShellQuote(src.WifiInterface))
		defaults[metric.Wifi] = CommandFetcher(metric.Wifi, cmd, parsers.ParseWifi, log)
	}

	for kind, f := range defaults {
		if _, overridden := c.fetchers[kind]; !overridden {
			c.fetchers[kind] = f
		}
	}
	return c
}

// CommandFetcher runs cmd through the shell and parses its stdout. A missing
// binary, non-zero exit or timeout all yield kind's error value.
func CommandFetcher(kind metric.Kind, cmd string, parse func(string) metric.Value, log logger.Logger) Fetcher {
	return func(ctx context.Context) metric.Value {
		if cmd == "" {
			return metric.Err(metric.UnavailableFor(kind))
		}
		out, err := exec.Output(ctx, cmd)
		if err != nil {
			log.Debug("%s: %v", kind, err)
			return metric.Err(metric.UnavailableFor(kind))
		}
		return parse(out)
	}
}

// FileFetcher reads path and parses its content.
func FileFetcher(kind metric.Kind, path string, parse func(string) metric.Value, log logger.Logger) Fetcher {
	return func(ctx context.Context) metric.Value {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Debug("%s: %v", kind, err)
			return metric.Err(metric.UnavailableFor(kind))
		}
		return parse(string(data))
	}
}

// UptimeFetcher reads the uptime counters from path. cores of zero means use
// the machine's logical CPU count.
func UptimeFetcher(path string, cores int, log logger.Logger) Fetcher {
	return func(ctx context.Context) metric.Value {
		n := cores
		if n <= 0 {
			n = DetectCores(ctx)
		}
		return FileFetcher(metric.Uptime, path, func(raw string) metric.Value {
			return parsers.ParseUptime(raw, n)
		}, log)(ctx)
	}
}

// DetectCores returns the number of logical CPUs.
func DetectCores(ctx context.Context) int {
	if n, err := cpu.CountsWithContext(ctx, true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// HostnameFetcher resolves the hostname through lookup (os.Hostname in production).
func HostnameFetcher(lookup func() (string, error)) Fetcher {
	return func(ctx context.Context) metric.Value {
		return parsers.ParseHostname(lookup())
	}
}

// IPFetcher learns the outbound interface address by pointing a UDP socket at
// target and reading the local end. Connecting a UDP socket only selects a
// route; no packet is sent.
func IPFetcher(target string, log logger.Logger) Fetcher {
	return func(ctx context.Context) metric.Value {
		if target == "" {
			return metric.Err(metric.NoRoute)
		}
		var d net.Dialer
		conn, err := d.DialContext(ctx, "udp", target)
		if err != nil {
			log.Debug("ip: %v", err)
			return parsers.ParseIP("", err)
		}
		defer conn.Close()
		return parsers.ParseIP(conn.LocalAddr().String(), nil)
	}
}

// ClockFetcher formats the wall clock. It cannot fail.
func ClockFetcher(now func() time.Time) Fetcher {
	return func(ctx context.Context) metric.Value {
		return parsers.FormatTime(now())
	}
}
