package otel

import (
	"os"
	"strconv"
	"sync/atomic"
)

var trace atomic.Bool

func init() {
	trace.Store(traceFromEnv(os.Getenv("REELFIND_TRACE")))
}

// traceFromEnv treats any non-empty value other than a false boolean as on.
func traceFromEnv(v string) bool {
	if v == "" {
		return false
	}
	on, err := strconv.ParseBool(v)
	return err != nil || on
}

// TraceEnabled reports whether per-message UI tracing is on
// (REELFIND_TRACE). Each Bubble Tea message then emits trace.msg_received.
func TraceEnabled() bool {
	return trace.Load()
}

func setTraceEnabled(v bool) {
	trace.Store(v)
}
