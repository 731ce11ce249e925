package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/inkdash/internal/dashboard"
	"github.com/rileyhilliard/inkdash/internal/display"
)

// Cycler runs one render cycle. *dashboard.Runner satisfies it.
type Cycler interface {
	RunCycle(ctx context.Context) (*dashboard.CycleResult, error)
}

// Model is the Bubble Tea model for the preview.
type Model struct {
	cycler   Cycler
	interval time.Duration

	width  int
	height int

	frame      string
	result     *dashboard.CycleResult
	err        error
	lastUpdate time.Time
	cycles     int

	// tickGen tags the one scheduled tick that is still current. A manual
	// refresh schedules a new tick, so the old one must be ignored.
	tickGen int

	collecting bool
	spinner    spinner.Model
	showHelp   bool
	quitting   bool
}

// tickMsg signals the next scheduled cycle.
type tickMsg struct {
	gen int
}

// cycleMsg carries the outcome of one cycle.
type cycleMsg struct {
	result *dashboard.CycleResult
	err    error
	time   time.Time
}

// NewModel creates a preview that renders every interval.
func NewModel(cycler Cycler, interval time.Duration) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"◐", "◓", "◑", "◒"},
		FPS:    time.Second / 10,
	}
	sp.Style = mutedStyle

	return Model{
		cycler:     cycler,
		interval:   interval,
		spinner:    sp,
		collecting: true, // Init starts the first cycle
	}
}

// Init renders the first frame straight away.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.cycleCmd())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		if msg.gen != m.tickGen || m.collecting {
			return m, nil
		}
		m.collecting = true
		return m, m.cycleCmd()

	case cycleMsg:
		m.collecting = false
		m.cycles++
		m.lastUpdate = msg.time
		m.err = msg.err
		if msg.result != nil {
			m.result = msg.result
			if msg.result.Canvas != nil {
				m.frame = display.HalfBlocks(msg.result.Canvas)
			}
		}
		m.tickGen++
		return m, m.tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the preview.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}

// startCycle marks a cycle in flight and returns the command that runs it.
func (m *Model) startCycle() tea.Cmd {
	m.collecting = true
	return m.cycleCmd()
}

// cycleCmd runs one cycle off the UI goroutine.
func (m Model) cycleCmd() tea.Cmd {
	cycler := m.cycler
	return func() tea.Msg {
		res, err := cycler.RunCycle(context.Background())
		return cycleMsg{result: res, err: err, time: time.Now()}
	}
}

// tickCmd schedules the next cycle after the interval.
func (m Model) tickCmd() tea.Cmd {
	gen := m.tickGen
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

// Run starts the preview full screen and blocks until the user quits.
func Run(cycler Cycler, interval time.Duration) error {
	p := tea.NewProgram(NewModel(cycler, interval), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
