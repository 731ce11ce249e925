// Package dashboard runs the render cycle: collect metrics, bind them to the
// layout, draw the frame and hand it to the display, falling back to a PNG on
// disk when the display refuses it.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/inkdash/internal/display"
	"github.com/rileyhilliard/inkdash/internal/errors"
	"github.com/rileyhilliard/inkdash/internal/layout"
	"github.com/rileyhilliard/inkdash/internal/logger"
	"github.com/rileyhilliard/inkdash/internal/metric"
	"github.com/rileyhilliard/inkdash/internal/render"
)

// DefaultSleepTimeout bounds the Sleep call made at the end of every cycle.
// It runs on a fresh context so a cancelled cycle still parks the panel.
const DefaultSleepTimeout = 10 * time.Second

// DefaultDisplayTimeout bounds each Init, Clear and Display call.
const DefaultDisplayTimeout = 30 * time.Second

// Source produces metric values. *collector.Collector satisfies it.
type Source interface {
	Kinds() []metric.Kind
	Collect(ctx context.Context, kinds []metric.Kind) metric.Set
}

// CycleResult describes one finished cycle.
type CycleResult struct {
	Values metric.Set
	Fields []layout.BoundField

	// Canvas is the frame drawn this cycle. It is sealed.
	Canvas *render.Canvas

	Displayed       bool
	DisplayErr      error
	FallbackWritten bool
	Duration        time.Duration
}

// Runner owns the long-lived display handle and runs one cycle at a time.
type Runner struct {
	mu sync.Mutex

	source   Source
	renderer *render.Renderer
	driver   display.Driver
	layout   layout.Layout
	kinds    []metric.Kind

	fallbackPath   string
	reinit         bool
	clearOnExit    bool
	sleepTimeout   time.Duration
	displayTimeout time.Duration

	log     logger.Logger
	stats   *Stats
	onState func(State)

	initialized bool

	// state is read outside mu so State works while a cycle is running.
	state atomic.Int32
}

// Option configures a Runner.
type Option func(*Runner)

// WithFallbackPath sets where a rejected frame is saved. Empty disables fallback.
func WithFallbackPath(path string) Option {
	return func(r *Runner) { r.fallbackPath = path }
}

// WithReinitEachCycle runs Init and Clear before every cycle.
func WithReinitEachCycle(on bool) Option {
	return func(r *Runner) { r.reinit = on }
}

// WithClearOnExit blanks the panel when Run returns.
func WithClearOnExit(on bool) Option {
	return func(r *Runner) { r.clearOnExit = on }
}

// WithSleepTimeout overrides DefaultSleepTimeout.
func WithSleepTimeout(d time.Duration) Option {
	return func(r *Runner) { r.sleepTimeout = d }
}

// WithDisplayTimeout overrides DefaultDisplayTimeout.
func WithDisplayTimeout(d time.Duration) Option {
	return func(r *Runner) { r.displayTimeout = d }
}

// WithLogger sets the runner's logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithStats records cycle outcomes.
func WithStats(s *Stats) Option {
	return func(r *Runner) { r.stats = s }
}

// WithStateHook is called on every state transition. Used by tests and
// debug output.
func WithStateHook(fn func(State)) Option {
	return func(r *Runner) { r.onState = fn }
}

// New checks the layout against the renderer and the source before anything
// is collected. Every problem found here is a CONFIG error.
func New(source Source, renderer *render.Renderer, driver display.Driver, l layout.Layout, opts ...Option) (*Runner, error) {
	if source == nil || renderer == nil || driver == nil {
		return nil, errors.New(errors.ErrConfig,
			"Render cycle is missing a collaborator",
			"A metric source, renderer and display driver are all required.")
	}

	width, height := renderer.Size()
	if err := l.Validate(width, height, source.Kinds()); err != nil {
		return nil, err
	}
	for i, f := range l {
		if !renderer.Supports(f.Style) {
			return nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("No font loaded for style '%s' (layout field %d)", f.Style, i+1),
				"Load a face for every style the layout uses.")
		}
	}

	r := &Runner{
		source:       source,
		renderer:     renderer,
		driver:       driver,
		layout:       l,
		kinds:        l.Kinds(),
		sleepTimeout:   DefaultSleepTimeout,
		displayTimeout: DefaultDisplayTimeout,
		log:            logger.Noop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// State returns the step the current cycle is in, or Idle. Safe to call
// from any goroutine while a cycle runs.
func (r *Runner) State() State {
	return State(r.state.Load())
}

func (r *Runner) setState(s State) {
	r.state.Store(int32(s))
	if r.onState != nil {
		r.onState(s)
	}
}

// RunCycle performs Collecting, Binding, Drawing and Displaying once.
//
// A display failure is not an error: the frame goes to the fallback path and
// the failure is reported in CycleResult.DisplayErr. The returned error is
// reserved for FATAL contract violations (including panics) and renderer
// configuration errors. Sleep is called on the driver on every path.
func (r *Runner) RunCycle(ctx context.Context) (res *CycleResult, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	res = &CycleResult{}

	defer func() {
		res.Duration = time.Since(start)
		r.stats.observe(res, err)
		r.setState(Idle)
	}()
	defer r.sleep()
	defer func() {
		if p := recover(); p != nil {
			err = errors.New(errors.ErrFatal,
				fmt.Sprintf("Render cycle aborted: %v", p),
				"This is a bug. Run with --debug and report the output.")
		}
	}()

	r.prepare(ctx)

	r.setState(Collecting)
	res.Values = r.source.Collect(ctx, r.kinds)

	r.setState(Binding)
	res.Fields = r.layout.Bind(res.Values)
	for _, f := range res.Fields {
		r.log.Debug("%s %d %d", f.Text, f.X, f.Y)
	}

	r.setState(Drawing)
	canvas, err := r.renderer.Render(res.Fields)
	if err != nil {
		return res, err
	}
	frame := canvas.Clone()
	canvas.Seal()
	res.Canvas = canvas

	r.setState(Displaying)
	derr := r.call(ctx, "display", r.displayTimeout, func(ctx context.Context) error {
		return r.driver.Display(ctx, frame)
	})
	if derr != nil {
		res.DisplayErr = derr
		r.log.Error("display failed: %v", derr)
		r.setState(FallbackPersist)
		res.FallbackWritten = r.persist(canvas)
		return res, nil
	}
	res.Displayed = true
	return res, nil
}

// prepare wakes the panel on the first cycle, or every cycle when reinit is set.
// Failures are logged; Display will report whether the panel is usable.
func (r *Runner) prepare(ctx context.Context) {
	if r.initialized && !r.reinit {
		return
	}
	if err := r.call(ctx, "init", r.displayTimeout, r.driver.Init); err != nil {
		r.log.Warn("display init: %v", err)
		return
	}
	if err := r.call(ctx, "clear", r.displayTimeout, r.driver.Clear); err != nil {
		r.log.Warn("display clear: %v", err)
	}
	r.initialized = true
}

func (r *Runner) sleep() {
	if err := r.call(context.Background(), "sleep", r.sleepTimeout, r.driver.Sleep); err != nil {
		r.log.Warn("display sleep: %v", err)
	}
}

// driverResult carries a driver call's outcome back from its goroutine.
type driverResult struct {
	err      error
	panicked any
}

// call runs one driver operation with a deadline. A driver that ignores its
// context is abandoned when the deadline passes. A panic in the driver is
// re-raised on the caller's goroutine.
func (r *Runner) call(parent context.Context, op string, timeout time.Duration, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	done := make(chan driverResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- driverResult{panicked: p}
			}
		}()
		done <- driverResult{err: fn(ctx)}
	}()

	select {
	case res := <-done:
		if res.panicked != nil {
			panic(res.panicked)
		}
		return res.err
	case <-ctx.Done():
		return errors.WrapWithCode(ctx.Err(), errors.ErrDisplay,
			fmt.Sprintf("Display %s did not finish within %s", op, timeout),
			"Check the panel is connected, or raise display_timeout.")
	}
}

// persist saves canvas to the fallback path. Errors are logged, never returned.
func (r *Runner) persist(canvas *render.Canvas) bool {
	if r.fallbackPath == "" {
		r.log.Warn("no fallback path configured, frame dropped")
		return false
	}
	if err := render.SavePNG(canvas, r.fallbackPath); err != nil {
		r.log.Error("fallback write: %v", err)
		return false
	}
	r.log.Info("frame saved to %s", r.fallbackPath)
	return true
}

// Run renders immediately and then every interval until ctx is done. Cycle
// errors are logged and the loop continues. When clear-on-exit is set the
// panel is blanked and put to sleep before Run returns.
func (r *Runner) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Interval must be positive, got %s", interval),
			"Set 'interval' in the config or pass --interval.")
	}
	defer r.shutdown()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}
		r.cycle(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (r *Runner) cycle(ctx context.Context) {
	res, err := r.RunCycle(ctx)
	if err != nil {
		r.log.Error("cycle failed: %v", err)
		return
	}
	failed := res.Values.Failed()
	if len(failed) > 0 {
		r.log.Warn("cycle done in %s, %d metric(s) unavailable: %v", res.Duration.Round(time.Millisecond), len(failed), failed)
		return
	}
	r.log.Info("cycle done in %s", res.Duration.Round(time.Millisecond))
}

// shutdown blanks the panel when clear-on-exit is set.
func (r *Runner) shutdown() {
	if !r.clearOnExit {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ctx := context.Background()

	r.log.Info("clearing display")
	if err := r.call(ctx, "init", r.displayTimeout, r.driver.Init); err != nil {
		r.log.Warn("display init: %v", err)
	} else if err := r.call(ctx, "clear", r.displayTimeout, r.driver.Clear); err != nil {
		r.log.Warn("display clear: %v", err)
	}
	r.sleep()
}
