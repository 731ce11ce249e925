package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/inkdash/internal/dashboard"
	"github.com/rileyhilliard/inkdash/internal/metric"
	"github.com/rileyhilliard/inkdash/internal/render"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

type fakeCycler struct {
	mu     sync.Mutex
	calls  int
	result *dashboard.CycleResult
	err    error
}

func (f *fakeCycler) RunCycle(ctx context.Context) (*dashboard.CycleResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result, f.err
}

func testResult(values metric.Set) *dashboard.CycleResult {
	c := render.NewCanvas(8, 4)
	_ = c.Set(0, 0, true)
	c.Seal()
	return &dashboard.CycleResult{Values: values, Canvas: c, Duration: 120 * time.Millisecond}
}

func keyMsg(s string) tea.KeyMsg {
	if s == "ctrl+c" {
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_CycleMsgStoresFrameAndSchedulesTick(t *testing.T) {
	m := NewModel(&fakeCycler{}, time.Minute)
	res := testResult(metric.Set{metric.Memory: metric.Ok("50%")})

	updated, cmd := m.Update(cycleMsg{result: res, time: time.Now()})
	got := updated.(Model)

	assert.False(t, got.collecting)
	assert.Equal(t, 1, got.cycles)
	assert.NotEmpty(t, got.frame)
	assert.NotNil(t, cmd, "next tick is scheduled")
	assert.Contains(t, got.View(), "all metrics available")
}

func TestModel_ViewListsFailedMetrics(t *testing.T) {
	m := NewModel(&fakeCycler{}, time.Minute)
	res := testResult(metric.Set{
		metric.Memory:      metric.Ok("50%"),
		metric.Temperature: metric.Err(metric.TempUnavailable),
		metric.Wifi:        metric.Err(metric.WifiUnavailable),
	})

	updated, _ := m.Update(cycleMsg{result: res, time: time.Now()})
	view := updated.View()

	assert.Contains(t, view, "unavailable: temperature, wifi")
	assert.Contains(t, view, "inkdash preview")
}

func TestModel_ViewShowsCycleError(t *testing.T) {
	m := NewModel(&fakeCycler{}, time.Minute)
	updated, _ := m.Update(cycleMsg{err: errors.New("render cycle aborted"), time: time.Now()})
	assert.Contains(t, updated.View(), "render cycle aborted")
}

func TestModel_TickStartsCycleOnce(t *testing.T) {
	m := NewModel(&fakeCycler{}, time.Minute)
	m.collecting = false

	updated, cmd := m.Update(tickMsg{})
	require.NotNil(t, cmd)
	assert.True(t, updated.(Model).collecting)

	_, cmd = updated.Update(tickMsg{})
	assert.Nil(t, cmd, "no second cycle while one is in flight")
}

func TestModel_StaleTickIgnored(t *testing.T) {
	m := NewModel(&fakeCycler{}, time.Minute)

	// first frame arrives, tick gen 1 is scheduled
	updated, _ := m.Update(cycleMsg{result: testResult(metric.Set{}), time: time.Now()})
	// manual refresh finishes, tick gen 2 replaces it
	updated, _ = updated.Update(cycleMsg{result: testResult(metric.Set{}), time: time.Now()})
	require.Equal(t, 2, updated.(Model).tickGen)

	_, cmd := updated.Update(tickMsg{gen: 1})
	assert.Nil(t, cmd, "superseded tick must not start a cycle")

	next, cmd := updated.Update(tickMsg{gen: 2})
	assert.NotNil(t, cmd)
	assert.True(t, next.(Model).collecting)
}

func TestModel_CycleCmdRunsCycler(t *testing.T) {
	fc := &fakeCycler{result: testResult(metric.Set{})}
	m := NewModel(fc, time.Minute)

	msg := m.cycleCmd()()
	cm, ok := msg.(cycleMsg)
	require.True(t, ok)
	assert.Same(t, fc.result, cm.result)
	assert.Equal(t, 1, fc.calls)
}

func TestHandleKeyMsg(t *testing.T) {
	t.Run("quit", func(t *testing.T) {
		m := NewModel(&fakeCycler{}, time.Minute)
		handled, cmd := m.HandleKeyMsg(keyMsg("q"))
		assert.True(t, handled)
		assert.NotNil(t, cmd)
		assert.True(t, m.quitting)
		assert.Empty(t, m.View())
	})

	t.Run("ctrl+c", func(t *testing.T) {
		m := NewModel(&fakeCycler{}, time.Minute)
		handled, _ := m.HandleKeyMsg(keyMsg("ctrl+c"))
		assert.True(t, handled)
		assert.True(t, m.quitting)
	})

	t.Run("refresh when idle", func(t *testing.T) {
		m := NewModel(&fakeCycler{}, time.Minute)
		m.collecting = false
		handled, cmd := m.HandleKeyMsg(keyMsg("r"))
		assert.True(t, handled)
		assert.NotNil(t, cmd)
		assert.True(t, m.collecting)
	})

	t.Run("refresh while collecting", func(t *testing.T) {
		m := NewModel(&fakeCycler{}, time.Minute)
		handled, cmd := m.HandleKeyMsg(keyMsg("r"))
		assert.True(t, handled)
		assert.Nil(t, cmd)
	})

	t.Run("help toggles and esc closes", func(t *testing.T) {
		m := NewModel(&fakeCycler{}, time.Minute)
		m.HandleKeyMsg(keyMsg("?"))
		assert.True(t, m.showHelp)
		assert.Contains(t, m.View(), "Keyboard shortcuts")

		m.HandleKeyMsg(tea.KeyMsg{Type: tea.KeyEsc})
		assert.False(t, m.showHelp)
	})

	t.Run("unhandled", func(t *testing.T) {
		m := NewModel(&fakeCycler{}, time.Minute)
		handled, _ := m.HandleKeyMsg(keyMsg("x"))
		assert.False(t, handled)
	})
}

func TestModel_WindowSize(t *testing.T) {
	m := NewModel(&fakeCycler{}, time.Minute)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	got := updated.(Model)
	assert.Equal(t, 120, got.width)
	assert.Equal(t, 40, got.height)
}

func TestModel_FirstFrameWaiting(t *testing.T) {
	m := NewModel(&fakeCycler{}, time.Minute)
	assert.Contains(t, m.View(), "rendering first frame")
}

func TestModel_NarrowTerminalWarning(t *testing.T) {
	m := NewModel(&fakeCycler{}, time.Minute)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 5, Height: 40})
	updated, _ = updated.Update(cycleMsg{result: testResult(metric.Set{}), time: time.Now()})
	assert.Contains(t, updated.View(), "terminal is 5 columns")
}
