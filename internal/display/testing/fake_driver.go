// Package testing provides test doubles for the display package.
package testing

import (
	"context"
	"sync"

	"github.com/rileyhilliard/inkdash/internal/render"
)

// FakeDriver records every call and can be told to fail any of them.
type FakeDriver struct {
	mu sync.Mutex

	// Configuration
	InitErr        error
	ClearErr       error
	DisplayErr     error
	SleepErr       error
	PanicOnDisplay string // If set, Display panics with this message
	HangOn         string // "init", "clear", "display" or "sleep": block, ignoring ctx, until Unblock

	release     chan struct{}
	releaseOnce sync.Once

	// Call tracking
	Calls  []string
	Frames []*render.Canvas
}

// NewFakeDriver creates a fake driver that succeeds by default.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{release: make(chan struct{})}
}

// Unblock lets every call held by HangOn return.
func (d *FakeDriver) Unblock() {
	d.releaseOnce.Do(func() { close(d.release) })
}

func (d *FakeDriver) record(call string) {
	d.mu.Lock()
	d.Calls = append(d.Calls, call)
	hang := d.HangOn == call
	d.mu.Unlock()

	if hang {
		<-d.release
	}
}

func (d *FakeDriver) Init(ctx context.Context) error {
	d.record("init")
	return d.InitErr
}

func (d *FakeDriver) Clear(ctx context.Context) error {
	d.record("clear")
	return d.ClearErr
}

func (d *FakeDriver) Display(ctx context.Context, canvas *render.Canvas) error {
	d.record("display")
	if d.PanicOnDisplay != "" {
		panic(d.PanicOnDisplay)
	}
	d.mu.Lock()
	d.Frames = append(d.Frames, canvas)
	d.mu.Unlock()
	return d.DisplayErr
}

func (d *FakeDriver) Sleep(ctx context.Context) error {
	d.record("sleep")
	return d.SleepErr
}

// CallLog returns a copy of the recorded calls.
func (d *FakeDriver) CallLog() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.Calls...)
}

// Count returns how many times call was made.
func (d *FakeDriver) Count(call string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.Calls {
		if c == call {
			n++
		}
	}
	return n
}

// LastFrame returns the most recently displayed canvas, or nil.
func (d *FakeDriver) LastFrame() *render.Canvas {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.Frames) == 0 {
		return nil
	}
	return d.Frames[len(d.Frames)-1]
}

// Reset clears recorded calls and frames.
func (d *FakeDriver) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls = nil
	d.Frames = nil
}
