package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"
)

// eventRecord is one decoded line of the reelfind JSONL event log. It is
// decoded independently of internal/otel so old logs stay readable.
type eventRecord struct {
	Time      time.Time      `json:"t"`
	Level     string         `json:"level"`
	Kind      string         `json:"kind"`
	Comp      string         `json:"comp"`
	SessionID string         `json:"session_id"`
	QueryID   string         `json:"qid"`
	DurMs     float64        `json:"dur_ms"`
	Count     int            `json:"count"`
	Query     string         `json:"query"`
	Err       string         `json:"err"`
	Msg       string         `json:"msg"`
	Extra     map[string]any `json:"extra"`
}

type parsedLine struct {
	ev  eventRecord
	raw []byte
}

var levels = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// levelRank orders levels by severity; unknown levels rank lowest.
func levelRank(level string) int {
	return levels[level]
}

// eventFilter selects events by kind prefix, minimum level, component and
// fetch sequence. Zero values match everything.
type eventFilter struct {
	kind  string
	level string
	comp  string
	qid   string
}

func (f eventFilter) match(ev eventRecord) bool {
	switch {
	case f.kind != "" && !strings.HasPrefix(ev.Kind, f.kind):
		return false
	case f.level != "" && levelRank(ev.Level) < levelRank(f.level):
		return false
	case f.comp != "" && ev.Comp != f.comp:
		return false
	case f.qid != "" && ev.QueryID != f.qid:
		return false
	}
	return true
}

// parseLine decodes one JSONL line. Blank and malformed lines report false.
func parseLine(raw []byte) (parsedLine, bool) {
	raw = trimLine(raw)
	if len(raw) == 0 {
		return parsedLine{}, false
	}
	var ev eventRecord
	if err := json.Unmarshal(raw, &ev); err != nil {
		return parsedLine{}, false
	}
	return parsedLine{ev: ev, raw: append([]byte(nil), raw...)}, true
}

// formatEvent renders one event as a single human-readable line.
func formatEvent(ev eventRecord) string {
	lvl := strings.ToUpper(ev.Level)
	if lvl == "" {
		lvl = "?"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s [%-9s] %-20s", ev.Time.Format("15:04:05.000"), lvl, ev.Comp, ev.Kind)
	add := func(format string, args ...any) {
		b.WriteByte(' ')
		fmt.Fprintf(&b, format, args...)
	}
	if ev.Msg != "" {
		add("- %s", ev.Msg)
	}
	if ev.DurMs > 0 {
		add("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs)
	}
	if ev.Count > 0 {
		add("n=%d", ev.Count)
	}
	if ev.QueryID != "" {
		add("qid=%s", ev.QueryID)
	}
	if ev.Query != "" {
		add("q=%q", ev.Query)
	}
	if ev.Err != "" {
		add("err=%s", ev.Err)
	}
	return b.String()
}

func runEvents() {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file")
	tail := fs.Int("tail", 50, "Number of recent lines to show")
	follow := fs.Bool("f", false, "Follow mode (like tail -f)")
	kind := fs.String("kind", "", "Filter by event kind prefix (e.g. 'fetch')")
	level := fs.String("level", "", "Minimum level: debug, info, warn, error")
	comp := fs.String("comp", "", "Filter by component name")
	qid := fs.String("qid", "", "Filter by fetch sequence")
	rawJSON := fs.Bool("json", false, "Output raw JSON lines")
	fs.Parse(os.Args[1:])

	logPath := loadConfig(*configPath).Log.Path
	f, err := os.Open(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		fmt.Fprintf(os.Stderr, "  Event log not found at %s\n", logPath)
		fmt.Fprintf(os.Stderr, "  Run reelfind first to generate events.\n")
		os.Exit(1)
	}
	defer f.Close()

	filter := eventFilter{kind: *kind, level: *level, comp: *comp, qid: *qid}
	show := func(l parsedLine) {
		if *rawJSON {
			fmt.Println(string(l.raw))
		} else {
			fmt.Println(formatEvent(l.ev))
		}
	}

	for _, l := range readTailLines(f, *tail, filter.match) {
		show(l)
	}
	if !*follow {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := followLines(ctx, f, 100*time.Millisecond, filter.match, show); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// readTailLines reads r to EOF and returns the last n matching events,
// oldest first.
func readTailLines(r io.Reader, n int, match func(eventRecord) bool) []parsedLine {
	if n <= 0 {
		return nil
	}
	scanner := bufio.NewScanner(r)
	// Extra maps can make lines long.
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	window := make([]parsedLine, n)
	seen := 0
	for scanner.Scan() {
		l, ok := parseLine(scanner.Bytes())
		if !ok || !match(l.ev) {
			continue
		}
		window[seen%n] = l
		seen++
	}

	if seen <= n {
		return window[:seen]
	}
	start := seen % n
	return append(window[start:], window[:start]...)
}

// followLines polls r for appended lines until ctx is done, passing matching
// events to fn. A partial trailing line is held until its newline arrives.
func followLines(ctx context.Context, r io.Reader, every time.Duration, match func(eventRecord) bool, fn func(parsedLine)) error {
	reader := bufio.NewReader(r)
	var pending []byte
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		chunk, err := reader.ReadBytes('\n')
		pending = append(pending, chunk...)
		switch {
		case err == nil:
			if l, ok := parseLine(pending); ok && match(l.ev) {
				fn(l)
			}
			pending = pending[:0]
			continue
		case !errors.Is(err, io.EOF):
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func trimLine(b []byte) []byte {
	return []byte(strings.TrimRight(string(b), "\r\n"))
}

func durPrecision(ms float64) int {
	switch {
	case ms >= 100:
		return 0
	case ms >= 1:
		return 1
	default:
		return 2
	}
}
