package otel

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
)

const (
	// diodeSize is the capacity of the non-blocking write buffer.
	diodeSize = 4096

	// diodePoll is how often the diode reader flushes to the destination.
	diodePoll = 10 * time.Millisecond
)

// Logger serializes events as JSONL via zerolog over a diode writer.
// Goroutine-safe. Emit never blocks; events that cannot be buffered are counted
// as dropped.
type Logger struct {
	mu        sync.Mutex
	buf       *RingBuffer // nil until SetRingBuffer
	sessionID string
	zl        zerolog.Logger
	dw        diode.Writer
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewLogger creates a Logger writing JSONL to w. Call Close() to flush.
func NewLogger(w io.Writer) *Logger {
	var sid [8]byte
	_, _ = rand.Read(sid[:])

	l := &Logger{sessionID: fmt.Sprintf("%x", sid[:])}
	l.dw = diode.NewWriter(w, diodeSize, diodePoll, func(missed int) {
		l.dropped.Add(uint64(missed))
	})
	l.zl = zerolog.New(l.dw)
	return l
}

// NewNullLogger creates a Logger that discards output.
func NewNullLogger() *Logger {
	return NewLogger(io.Discard)
}

// OpenFile opens (or creates) a JSONL log file in append mode and returns a
// Logger writing to it. Close() closes the file.
func OpenFile(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return NewLogger(f), nil
}

// SetLevel drops events below the given level. Unknown levels leave the
// logger unfiltered.
func (l *Logger) SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return
	}
	l.mu.Lock()
	l.zl = l.zl.Level(lvl)
	l.mu.Unlock()
}

// Emit writes an event to the JSONL log and the ring buffer, if attached.
// Sets Time (if zero) and SessionID.
func (l *Logger) Emit(e Event) {
	if l == nil {
		return
	}
	if l.closed.Load() {
		l.dropped.Add(1)
		return
	}

	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	e.SessionID = l.sessionID

	l.mu.Lock()
	rb := l.buf
	zl := l.zl
	l.mu.Unlock()

	if rb != nil {
		rb.Push(e)
	}

	ev := zl.WithLevel(zerologLevel(e.Level))
	if ev == nil {
		return
	}
	ev = ev.Str("t", e.Time.Format(time.RFC3339Nano)).
		Str("kind", string(e.Kind)).
		Str("session_id", e.SessionID)
	if e.Comp != "" {
		ev = ev.Str("comp", e.Comp)
	}
	if e.QueryID != "" {
		ev = ev.Str("qid", e.QueryID)
	}
	if e.Dur > 0 {
		ev = ev.Float64("dur_ms", float64(e.Dur)/float64(time.Millisecond))
	}
	if e.Count != 0 {
		ev = ev.Int("count", e.Count)
	}
	if e.Query != "" {
		ev = ev.Str("query", e.Query)
	}
	if e.Err != "" {
		ev = ev.Str("err", e.Err)
	}
	if e.Msg != "" {
		ev = ev.Str("msg", e.Msg)
	}
	if len(e.Extra) > 0 {
		ev = ev.Interface("extra", e.Extra)
	}
	ev.Send()
}

// Info emits an info-level event.
func (l *Logger) Info(kind EventKind, comp string, msg string) {
	l.Emit(Event{Level: LevelInfo, Kind: kind, Comp: comp, Msg: msg})
}

// Warn emits a warn-level event.
func (l *Logger) Warn(kind EventKind, comp string, msg string) {
	l.Emit(Event{Level: LevelWarn, Kind: kind, Comp: comp, Msg: msg})
}

// Error emits an error-level event. Nil err is safe (logged as empty string).
func (l *Logger) Error(kind EventKind, comp string, err error) {
	errStr := ""
	if err != nil {
		errStr = err.Error()
	}
	l.Emit(Event{Level: LevelError, Kind: kind, Comp: comp, Err: errStr})
}

// SetRingBuffer attaches a ring buffer for live inspection.
func (l *Logger) SetRingBuffer(buf *RingBuffer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf = buf
}

// Dropped returns the number of events dropped since creation.
func (l *Logger) Dropped() uint64 {
	return l.dropped.Load()
}

// SessionID returns the random hex identifier shared by every event of this run.
func (l *Logger) SessionID() string {
	return l.sessionID
}

// Close flushes pending events and closes the destination if it is an
// io.Closer. Reports dropped events to stderr. Emit after Close is a counted drop.
func (l *Logger) Close() {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		_ = l.dw.Close()

		if d := l.dropped.Load(); d > 0 {
			fmt.Fprintf(os.Stderr, "reelfind: %d events dropped during session %s\n", d, l.sessionID)
		}
	})
}

func zerologLevel(lv Level) zerolog.Level {
	switch lv {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.NoLevel
	}
}
