package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/abelbrown/reelfind/internal/otel"
)

func TestDebugOverlayNilRing(t *testing.T) {
	assert.Empty(t, debugOverlay(nil, 80, 24))
}

func TestDebugOverlayRendersStats(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	now := time.Now()
	for _, k := range []otel.EventKind{
		otel.KindFetchStart,
		otel.KindFetchComplete,
		otel.KindFetchComplete,
		otel.KindFetchError,
		otel.KindSearchCommit,
		otel.KindSearchStale,
		otel.KindTrendingIncrement,
	} {
		ring.Push(otel.Event{Kind: k, Time: now})
	}

	out := debugOverlay(ring, 80, 40)
	assert.Contains(t, out, "Search Stats")
	assert.Contains(t, out, "1 started, 2 complete, 1 errors")
	assert.Contains(t, out, "1 committed, 1 stale")
	assert.Contains(t, out, "1 counted, 0 loads, 0 errors")
	assert.Contains(t, out, "7 / 64 events")
}

func TestDebugOverlayLastFetch(t *testing.T) {
	ring := otel.NewRingBuffer(16)
	assert.Contains(t, debugOverlay(ring, 100, 40), "none")

	ring.Push(otel.Event{Kind: otel.KindFetchComplete, Time: time.Now(), Dur: 120 * time.Millisecond, Count: 20})
	assert.Contains(t, debugOverlay(ring, 100, 40), "120ms, 20 results for (discover)")

	ring.Push(otel.Event{Kind: otel.KindFetchComplete, Time: time.Now(), Dur: 80 * time.Millisecond, Count: 3, Query: "heat"})
	assert.Contains(t, debugOverlay(ring, 100, 40), "80ms, 3 results for heat")
}

func TestDebugOverlayRecentEvents(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	ring.Push(otel.Event{Kind: otel.KindFetchStart, Time: time.Now(), Query: "batman"})
	ring.Push(otel.Event{Kind: otel.KindFetchError, Time: time.Now(), Err: "timeout"})
	ring.Push(otel.Event{Kind: otel.KindSearchCommit, Time: time.Now(), QueryID: "12"})

	out := debugOverlay(ring, 100, 40)
	assert.Contains(t, out, "Recent Events")
	assert.Contains(t, out, "q:batman")
	assert.Contains(t, out, "ERR:timeout")
	assert.Contains(t, out, "qid:12")
}

func TestDebugOverlayFitsHeight(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	for i := 0; i < 30; i++ {
		ring.Push(otel.Event{Kind: otel.KindFetchStart, Time: time.Now(), Query: "q"})
	}

	small := debugOverlay(ring, 80, 10)
	assert.NotEmpty(t, small)
	assert.NotContains(t, small, "q:q", "no room for events")
	assert.LessOrEqual(t, strings.Count(small, "\n")+1, 10)

	tall := debugOverlay(ring, 80, 60)
	assert.Equal(t, 20, strings.Count(tall, "q:q"), "recent list is capped")
}

func TestDebugToggle(t *testing.T) {
	app := sized(NewApp(AppConfig{Ring: otel.NewRingBuffer(16)}))
	assert.False(t, app.DebugOpen())

	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	app = model.(App)
	assert.True(t, app.DebugOpen())
	assert.Contains(t, app.View(), "[DEBUG]")

	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	assert.False(t, model.(App).DebugOpen())
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		dur  time.Duration
		want string
	}{
		{-5 * time.Second, "now"},
		{0, "now"},
		{50 * time.Millisecond, "50ms"},
		{1500 * time.Millisecond, "1s"},
		{59 * time.Second, "59s"},
		{90 * time.Second, "1m"},
		{3 * time.Hour, "3h"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatAge(tt.dur), "formatAge(%v)", tt.dur)
	}
}
