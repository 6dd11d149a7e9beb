// Package otel provides structured observability for reelfind.
//
// Events are typed structs written as JSONL lines through zerolog. The
// Logger never blocks the UI goroutine: writes go through a diode buffer and
// are dropped (and counted) when the writer falls behind. An optional
// RingBuffer keeps recent events in memory for the debug overlay.
package otel

import "time"

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an observability event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Movie API events
	KindFetchStart    EventKind = "fetch.start"
	KindFetchComplete EventKind = "fetch.complete"
	KindFetchError    EventKind = "fetch.error"

	// Search box events
	KindSearchCommit EventKind = "search.commit"
	KindSearchStale  EventKind = "search.stale"

	// Trending counter events
	KindTrendingIncrement EventKind = "trending.increment"
	KindTrendingLoad      EventKind = "trending.load"
	KindTrendingError     EventKind = "trending.error"

	// Store events
	KindStoreError EventKind = "store.error"

	// Server events
	KindRequest EventKind = "http.request"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"

	KindMsgReceived EventKind = "trace.msg_received"
)

// Event is the universal observability record. Every field except Kind and
// Time is optional.
type Event struct {
	Time      time.Time
	Level     Level
	Kind      EventKind
	Comp      string // component: "search", "ui", "trending", "main"
	SessionID string
	QueryID   string // fetch sequence, as a string
	Dur       time.Duration
	Count     int
	Query     string
	Err       string
	Msg       string
	Extra     map[string]any
}
