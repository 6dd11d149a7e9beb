// Package debounce turns a stream of raw values into one committed value per
// quiet period, as Bubble Tea commands.
package debounce

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultDelay is the quiet period before a value commits.
const DefaultDelay = 500 * time.Millisecond

// Msg is delivered when a scheduled commit's timer fires. It may be stale;
// check it with Settled.
type Msg struct {
	ID    uint64
	Value string
}

// Debouncer schedules single-shot commits. Each Trigger supersedes the last.
// Not safe for concurrent use; call from the Update loop only.
type Debouncer struct {
	delay time.Duration
	id    uint64
}

// New returns a Debouncer with the given quiet period. A non-positive delay
// uses DefaultDelay.
func New(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger schedules a commit of value and invalidates any pending one.
func (d *Debouncer) Trigger(value string) tea.Cmd {
	d.id++
	id := d.id
	return tea.Tick(d.delay, func(time.Time) tea.Msg {
		return Msg{ID: id, Value: value}
	})
}

// Settled reports whether msg is the most recently scheduled commit.
func (d *Debouncer) Settled(msg Msg) bool {
	return msg.ID == d.id
}

// Reset invalidates the pending commit, if any.
func (d *Debouncer) Reset() {
	d.id++
}
