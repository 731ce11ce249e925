// Package collector resolves the metrics a layout needs, one bounded fetch per
// metric, and never lets a single failing source spoil the rest.
package collector

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rileyhilliard/inkdash/internal/logger"
	"github.com/rileyhilliard/inkdash/internal/metric"
)

// Fetcher produces the value for one metric. It should honour ctx, but the
// collector enforces the deadline even when it does not.
type Fetcher func(ctx context.Context) metric.Value

// Collector gathers metric values for one render cycle at a time.
type Collector struct {
	fetchers map[metric.Kind]Fetcher
	workers  int
	timeout  time.Duration
	log      logger.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithFetcher installs or replaces the fetcher for kind.
func WithFetcher(kind metric.Kind, f Fetcher) Option {
	return func(c *Collector) { c.fetchers[kind] = f }
}

// WithWorkers caps concurrent fetches. Values below 1 mean sequential.
func WithWorkers(n int) Option {
	return func(c *Collector) {
		if n < 1 {
			n = 1
		}
		c.workers = n
	}
}

// WithTimeout sets the per-metric deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Collector) { c.timeout = d }
}

// WithLogger sets the logger used for per-metric diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(c *Collector) { c.log = l }
}

// New creates a collector with no fetchers beyond those given in opts.
// Use NewFromSources to get the stock host fetchers.
func New(opts ...Option) *Collector {
	c := &Collector{
		fetchers: make(map[metric.Kind]Fetcher),
		workers:  4,
		timeout:  5 * time.Second,
		log:      logger.Noop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Kinds returns the metrics this collector can produce, sorted.
func (c *Collector) Kinds() []metric.Kind {
	kinds := make([]metric.Kind, 0, len(c.fetchers))
	for k := range c.fetchers {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Collect fetches every kind in kinds and returns a set covering exactly those
// kinds. Fetches run on at most `workers` goroutines, each bounded by the
// per-metric timeout, and all of them have finished or been abandoned when
// Collect returns. A kind with no fetcher degrades to its error value.
func (c *Collector) Collect(ctx context.Context, kinds []metric.Kind) metric.Set {
	out := make(metric.Set, len(kinds))
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(c.workers)

	for _, kind := range kinds {
		fetch, ok := c.fetchers[kind]
		if !ok {
			c.log.Warn("no source configured for %s", kind)
			out[kind] = metric.Err(metric.UnavailableFor(kind))
			continue
		}

		g.Go(func() error {
			start := time.Now()
			v := c.fetchOne(ctx, kind, fetch)
			if v.IsOk() {
				c.log.Debug("%s = %q (%s)", kind, v.Text(), time.Since(start).Round(time.Millisecond))
			} else {
				c.log.Warn("%s unavailable (%s)", kind, time.Since(start).Round(time.Millisecond))
			}

			mu.Lock()
			out[kind] = v
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return out
}

// fetchOne runs fetch under the per-metric deadline. If the fetcher ignores
// ctx and overruns, its late result is dropped and the error value is used.
func (c *Collector) fetchOne(parent context.Context, kind metric.Kind, fetch Fetcher) metric.Value {
	ctx, cancel := context.WithTimeout(parent, c.timeout)
	defer cancel()

	failed := metric.Err(metric.UnavailableFor(kind))

	done := make(chan metric.Value, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.log.Error("%s source panicked: %v", kind, r)
				done <- failed
			}
		}()
		done <- fetch(ctx)
	}()

	select {
	case v := <-done:
		return v
	case <-ctx.Done():
		c.log.Warn("%s: %v", kind, fmt.Errorf("gave up after %s: %w", c.timeout, ctx.Err()))
		return failed
	}
}
