package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mdlayher/wifi"

	"github.com/rileyhilliard/inkdash/internal/logger"
	"github.com/rileyhilliard/inkdash/internal/metric"
	"github.com/rileyhilliard/inkdash/internal/metric/parsers"
)

var errNotAssociated = errors.New("interface is not associated with an access point")

// NL80211Fetcher asks the kernel for the station signal over generic netlink
// instead of running iwconfig. The reading is rendered in iwconfig's format so
// both backends go through the same parser.
func NL80211Fetcher(iface string, log logger.Logger) Fetcher {
	return func(ctx context.Context) metric.Value {
		text, err := stationReport(ctx, iface)
		if err != nil {
			log.Debug("wifi: %v", err)
			return metric.Err(metric.WifiUnavailable)
		}
		return parsers.ParseWifi(text)
	}
}

// stationReport closes the netlink client when ctx ends, which unblocks any
// request still waiting on the kernel.
func stationReport(ctx context.Context, iface string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c, err := wifi.New()
	if err != nil {
		return "", err
	}
	var once sync.Once
	closeClient := func() { once.Do(func() { _ = c.Close() }) }
	defer closeClient()
	stop := context.AfterFunc(ctx, closeClient)
	defer stop()

	ifis, err := c.Interfaces()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if err != nil {
		return "", err
	}

	for _, ifi := range ifis {
		if ifi.Name != iface {
			continue
		}
		stations, err := c.StationInfo(ifi)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if err != nil {
			return "", err
		}
		if len(stations) == 0 {
			return "", errNotAssociated
		}
		return FormatStation(stations[0].Signal), nil
	}
	return "", fmt.Errorf("no wireless interface named %q", iface)
}

// FormatStation renders a signal level the way iwconfig does, deriving link
// quality out of 70 from the dBm reading like the kernel's wireless-extensions
// compatibility layer: quality = clamp(signal, -110, -40) + 110.
func FormatStation(signal int) string {
	sig := signal
	if sig < -110 {
		sig = -110
	} else if sig > -40 {
		sig = -40
	}
	return fmt.Sprintf("Link Quality=%d/70  Signal level=%d dBm", sig+110, signal)
}
