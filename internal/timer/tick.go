package timer

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg asks the view to refresh the elapsed display.
type TickMsg struct {
	Gen uint64
	At  time.Time
}

// Ticker schedules display refreshes for one Working period at a time.
// Start opens a new generation and Stop closes it; a tick from a closed
// generation is dropped and never rescheduled.
type Ticker struct {
	interval time.Duration
	gen      uint64
	active   bool
}

func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	return &Ticker{interval: interval}
}

func (t *Ticker) Start() tea.Cmd {
	t.gen++
	t.active = true
	return t.schedule()
}

func (t *Ticker) Stop() {
	t.gen++
	t.active = false
}

func (t *Ticker) Active() bool {
	return t.active
}

// Accept reports whether msg belongs to the running generation.
func (t *Ticker) Accept(msg TickMsg) bool {
	return t.active && msg.Gen == t.gen
}

// Next schedules the tick after msg, or nothing when msg is stale.
func (t *Ticker) Next(msg TickMsg) tea.Cmd {
	if !t.Accept(msg) {
		return nil
	}
	return t.schedule()
}

func (t *Ticker) schedule() tea.Cmd {
	gen := t.gen
	return tea.Tick(t.interval, func(at time.Time) tea.Msg {
		return TickMsg{Gen: gen, At: at}
	})
}
