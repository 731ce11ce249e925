// Package metric defines the telemetry kinds shown on the dashboard and the
// tagged Value each collection produces.
package metric

import (
	"fmt"
	"sort"
)

// Kind identifies one piece of host telemetry.
type Kind string

const (
	Hostname    Kind = "hostname"
	IP          Kind = "ip"
	Temperature Kind = "temperature"
	Memory      Kind = "memory"
	Disk        Kind = "disk"
	Uptime      Kind = "uptime"
	Wifi        Kind = "wifi"
	Time        Kind = "time"
)

// AllKinds lists every known kind in a stable order.
var AllKinds = []Kind{Hostname, IP, Temperature, Memory, Disk, Uptime, Wifi, Time}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range AllKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ErrorKind names why a metric could not be resolved.
type ErrorKind int

const (
	// NoError is the zero value; Values built with Ok carry it.
	NoError ErrorKind = iota
	HostnameUnavailable
	NoRoute
	TempUnavailable
	MemUnavailable
	DiskUnavailable
	UptimeUnavailable
	WifiUnavailable
)

var errorTokens = map[ErrorKind]string{
	HostnameUnavailable: "Hostname_Error",
	NoRoute:             "IP_Error",
	TempUnavailable:     "Temp_Error",
	MemUnavailable:      "Mem_Error",
	DiskUnavailable:     "Disk_Error",
	UptimeUnavailable:   "Uptime_Error",
	WifiUnavailable:     "Wifi_Str_Error",
}

// Token returns the short display-safe string drawn in place of a failed metric.
func (e ErrorKind) Token() string {
	if tok, ok := errorTokens[e]; ok {
		return tok
	}
	return "Error"
}

func (e ErrorKind) String() string {
	if e == NoError {
		return "ok"
	}
	return e.Token()
}

// UnavailableFor returns the error kind a failed collection of k degrades to.
// Time is infallible and maps to NoError.
func UnavailableFor(k Kind) ErrorKind {
	switch k {
	case Hostname:
		return HostnameUnavailable
	case IP:
		return NoRoute
	case Temperature:
		return TempUnavailable
	case Memory:
		return MemUnavailable
	case Disk:
		return DiskUnavailable
	case Uptime:
		return UptimeUnavailable
	case Wifi:
		return WifiUnavailable
	default:
		return NoError
	}
}

// Value is the outcome of resolving one metric: display text or an error kind.
// The fields are unexported so a Value can only be built through Ok or Err.
type Value struct {
	text string
	err  ErrorKind
}

// Ok wraps pre-formatted display text.
func Ok(text string) Value {
	return Value{text: text}
}

// Err wraps a failure. Passing NoError is a programming mistake and is
// coerced to a generic error so the Value never reads as success.
func Err(kind ErrorKind) Value {
	if kind == NoError {
		kind = -1
	}
	return Value{err: kind}
}

// IsOk reports whether the metric resolved.
func (v Value) IsOk() bool {
	return v.err == NoError
}

// ErrorKind returns the failure kind, or NoError.
func (v Value) ErrorKind() ErrorKind {
	return v.err
}

// Text returns the display text, or the error token for failures.
func (v Value) Text() string {
	if v.IsOk() {
		return v.text
	}
	return v.err.Token()
}

func (v Value) String() string {
	if v.IsOk() {
		return fmt.Sprintf("Ok(%q)", v.text)
	}
	return fmt.Sprintf("Err(%s)", v.err.Token())
}

// Set maps each collected kind to its value for one render cycle.
type Set map[Kind]Value

// Kinds returns the kinds in the set, sorted for stable output.
func (s Set) Kinds() []Kind {
	kinds := make([]Kind, 0, len(s))
	for k := range s {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Failed returns the kinds that degraded to an error token.
func (s Set) Failed() []Kind {
	var failed []Kind
	for _, k := range s.Kinds() {
		if !s[k].IsOk() {
			failed = append(failed, k)
		}
	}
	return failed
}
