// Package parsers turns raw command and file output into metric values.
//
// Every parser is total: malformed input produces the metric's error value,
// never a panic or an error return.
package parsers

import (
	"bufio"
	"fmt"
	"math"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/inkdash/internal/metric"
)

var (
	tempPattern   = regexp.MustCompile(`temp=(\d+(?:\.\d+)?)'C`)
	memPattern    = regexp.MustCompile(`Mem:\s+(\d+)\s+(\d+)\s+(\d+)`)
	uptimePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s+(\d+(?:\.\d+)?)`)
	wifiPattern   = regexp.MustCompile(`Link Quality=(\d+)/(\d+).+Signal level=(-?\d+) dBm`)
	rootMount     = regexp.MustCompile(`/\s*$`)
)

// TimeLayout is the wall clock format drawn on the panel.
const TimeLayout = "2006-01-02 15:04"

// ParseTemperature extracts the reading from `vcgencmd measure_temp` output,
// e.g. "temp=48.3'C" yields "48.3".
func ParseTemperature(raw string) metric.Value {
	m := tempPattern.FindStringSubmatch(raw)
	if m == nil {
		return metric.Err(metric.TempUnavailable)
	}
	return metric.Ok(m[1])
}

// ParseTemperatureWithUnit is ParseTemperature with the Celsius suffix kept.
func ParseTemperatureWithUnit(raw string) metric.Value {
	v := ParseTemperature(raw)
	if !v.IsOk() {
		return v
	}
	return metric.Ok(v.Text() + "'C")
}

// ParseMemory computes used memory as a whole percentage of total from `free -m` output.
func ParseMemory(raw string) metric.Value {
	m := memPattern.FindStringSubmatch(raw)
	if m == nil {
		return metric.Err(metric.MemUnavailable)
	}

	total, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || total <= 0 {
		return metric.Err(metric.MemUnavailable)
	}
	used, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return metric.Err(metric.MemUnavailable)
	}

	percent := int(math.Round(float64(used) / float64(total) * 100))
	if percent > 100 {
		percent = 100
	}
	return metric.Ok(fmt.Sprintf("%d%%", percent))
}

// ParseUptime formats /proc/uptime content as days up and the share of CPU time
// spent outside the idle task. The idle counter is summed across cores, so
// cores must be the logical CPU count of the machine that produced raw.
func ParseUptime(raw string, cores int) metric.Value {
	if cores <= 0 {
		return metric.Err(metric.UptimeUnavailable)
	}

	m := uptimePattern.FindStringSubmatch(raw)
	if m == nil {
		return metric.Err(metric.UptimeUnavailable)
	}

	seconds, err := strconv.ParseFloat(m[1], 64)
	if err != nil || seconds <= 0 {
		return metric.Err(metric.UptimeUnavailable)
	}
	idle, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return metric.Err(metric.UptimeUnavailable)
	}

	days := seconds / 86400
	active := (1 - idle/(float64(cores)*seconds)) * 100
	return metric.Ok(fmt.Sprintf("%.2fd, active %.2f%%", days, active))
}

// ParseWifi extracts link quality and signal level from `iwconfig <iface>` output.
func ParseWifi(raw string) metric.Value {
	m := wifiPattern.FindStringSubmatch(raw)
	if m == nil {
		return metric.Err(metric.WifiUnavailable)
	}
	return metric.Ok(fmt.Sprintf("%s/%s %s dBm", m[1], m[2], m[3]))
}

// ParseDisk reports usage of the root filesystem from `df -k` output as
// "<used>G/<total>G <percent>". Exactly one row must be mounted on "/";
// an ambiguous table is treated as a failure rather than picking the first row.
func ParseDisk(raw string) metric.Value {
	var rows []string
	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		line := scanner.Text()
		if rootMount.MatchString(line) {
			rows = append(rows, line)
		}
	}
	if err := scanner.Err(); err != nil || len(rows) != 1 {
		return metric.Err(metric.DiskUnavailable)
	}

	// Filesystem 1K-blocks Used Available Use% Mounted on
	fields := strings.Fields(rows[0])
	if len(fields) < 6 {
		return metric.Err(metric.DiskUnavailable)
	}

	total, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return metric.Err(metric.DiskUnavailable)
	}
	used, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return metric.Err(metric.DiskUnavailable)
	}
	percent := fields[4]
	if !strings.HasSuffix(percent, "%") {
		return metric.Err(metric.DiskUnavailable)
	}

	return metric.Ok(fmt.Sprintf("%dG/%dG %s", used/1000000, total/1000000, percent))
}

// ParseIP returns the host part of a local socket address such as "192.168.1.20:53211".
func ParseIP(localAddr string, err error) metric.Value {
	if err != nil || localAddr == "" {
		return metric.Err(metric.NoRoute)
	}

	host := localAddr
	if h, _, splitErr := net.SplitHostPort(localAddr); splitErr == nil {
		host = h
	}

	ip := net.ParseIP(host)
	if ip == nil || ip.IsUnspecified() {
		return metric.Err(metric.NoRoute)
	}
	return metric.Ok(ip.String())
}

// ParseHostname lower-cases the OS hostname.
func ParseHostname(name string, err error) metric.Value {
	name = strings.TrimSpace(name)
	if err != nil || name == "" {
		return metric.Err(metric.HostnameUnavailable)
	}
	return metric.Ok(strings.ToLower(name))
}

// FormatTime renders t in its own location as YYYY-MM-DD HH:MM.
func FormatTime(t time.Time) metric.Value {
	return metric.Ok(t.Format(TimeLayout))
}
