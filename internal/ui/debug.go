package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/reelfind/internal/otel"
)

// debugPanelChrome is the border plus vertical padding of DebugPanel, in lines.
const debugPanelChrome = 4

// debugOverlay renders search counters, the last fetch latency and the most
// recent events from ring. Returns "" for a nil ring.
func debugOverlay(ring *otel.RingBuffer, width, height int) string {
	if ring == nil {
		return ""
	}
	s := ring.Stats()

	lines := []string{
		DebugHeaderStyle.Render("Search Stats"),
		statLine("Fetches", "%d started, %d complete, %d errors",
			s[otel.KindFetchStart], s[otel.KindFetchComplete], s[otel.KindFetchError]),
		statLine("Commits", "%d committed, %d stale",
			s[otel.KindSearchCommit], s[otel.KindSearchStale]),
		statLine("Trending", "%d counted, %d loads, %d errors",
			s[otel.KindTrendingIncrement], s[otel.KindTrendingLoad], s[otel.KindTrendingError]),
		statLine("Last fetch", "%s", lastFetch(ring)),
		statLine("Buffer", "%d / %d events", ring.Len(), ring.Cap()),
		"",
		DebugHeaderStyle.Render("Recent Events"),
	}

	room := max(height-debugPanelChrome, 1)
	if free := room - len(lines); free > 0 {
		for _, e := range ring.Last(min(free, 20)) {
			lines = append(lines, eventLine(e))
		}
	}
	if len(lines) > room {
		lines = lines[:room]
	}

	panelWidth := max(min(76, width-4), 20)
	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

func statLine(label, format string, args ...any) string {
	return fmt.Sprintf("  %-11s %s", label+":", fmt.Sprintf(format, args...))
}

// lastFetch describes the newest completed fetch.
func lastFetch(ring *otel.RingBuffer) string {
	e, ok := ring.Latest(otel.KindFetchComplete)
	if !ok {
		return "none"
	}
	query := e.Query
	if query == "" {
		query = "(discover)"
	}
	return fmt.Sprintf("%s, %d results for %s", e.Dur.Round(time.Millisecond), e.Count, truncateRunes(query, 20))
}

func eventLine(e otel.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %5s  %-20s", formatAge(time.Since(e.Time)), e.Kind)
	if e.QueryID != "" {
		b.WriteString("  qid:" + e.QueryID)
	}
	if e.Query != "" {
		b.WriteString("  q:" + truncateRunes(e.Query, 20))
	}
	if e.Msg != "" {
		b.WriteString("  " + truncateRunes(e.Msg, 40))
	}
	if e.Err != "" {
		b.WriteString("  ERR:" + truncateRunes(e.Err, 30))
	}
	return b.String()
}

// formatAge renders an event age compactly. Future times (clock skew) read as "now".
func formatAge(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return "now"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
}

// debugStatusBar renders the status bar for the debug overlay.
func debugStatusBar(width int) string {
	return StatusBar.Width(width).Render("  [DEBUG]  " +
		StatusBarKey.Render("ctrl+d") + StatusBarText.Render(":close"))
}
