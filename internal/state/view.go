// Package state holds the search screen's view state as an immutable value.
//
// Every transition returns a new View; the receiver is never modified. Slices
// are replaced wholesale and never mutated in place, so snapshots can be shared.
package state

import (
	"github.com/abelbrown/reelfind/internal/tmdb"
	"github.com/abelbrown/reelfind/internal/trending"
)

// View is one snapshot of the search screen.
type View struct {
	Raw       string // search box contents, every keystroke
	Committed string // last debounced query that was fetched
	committed bool   // Committed has been set at least once

	IsLoading    bool
	ErrorMessage string
	Movies       []tmdb.Movie
	Trending     []trending.Entry

	Cursor int
	seq    uint64 // latest fetch request
}

// New returns the initial state: nothing loaded, no query committed.
func New() View {
	return View{}
}

// Seq returns the sequence number of the latest fetch request.
func (v View) Seq() uint64 {
	return v.seq
}

// OnInput records a raw keystroke value.
func (v View) OnInput(raw string) View {
	v.Raw = raw
	return v
}

// OnCommit records a debounced query. changed is false when q equals the
// previously committed query, in which case no fetch should be issued.
func (v View) OnCommit(q string) (next View, changed bool) {
	if v.committed && q == v.Committed {
		return v, false
	}
	v.Committed = q
	v.committed = true
	return v, true
}

// OnFetchStart marks a new request in flight and returns its sequence number.
func (v View) OnFetchStart() (View, uint64) {
	v.seq++
	v.IsLoading = true
	v.ErrorMessage = ""
	return v, v.seq
}

// IsLatest reports whether seq identifies the most recent fetch.
func (v View) IsLatest(seq uint64) bool {
	return seq == v.seq
}

// OnFetchSuccess applies results for request seq. Stale results are ignored.
func (v View) OnFetchSuccess(seq uint64, movies []tmdb.Movie) View {
	if !v.IsLatest(seq) {
		return v
	}
	if movies == nil {
		movies = []tmdb.Movie{}
	}
	v.Movies = movies
	v.IsLoading = false
	v.ErrorMessage = ""
	v.Cursor = 0
	return v
}

// OnFetchError applies a failure for request seq. The movie list is cleared.
// Stale failures are ignored.
func (v View) OnFetchError(seq uint64, msg string) View {
	if !v.IsLatest(seq) {
		return v
	}
	v.Movies = []tmdb.Movie{}
	v.IsLoading = false
	v.ErrorMessage = msg
	v.Cursor = 0
	return v
}

// OnTrendingLoaded replaces the trending list.
func (v View) OnTrendingLoaded(entries []trending.Entry) View {
	if entries == nil {
		entries = []trending.Entry{}
	}
	v.Trending = entries
	return v
}

// OnTrendingFailed leaves the trending list as it was.
func (v View) OnTrendingFailed() View {
	return v
}

// MoveCursor shifts the selection by delta, clamped to the movie list.
func (v View) MoveCursor(delta int) View {
	v.Cursor += delta
	if v.Cursor >= len(v.Movies) {
		v.Cursor = len(v.Movies) - 1
	}
	if v.Cursor < 0 {
		v.Cursor = 0
	}
	return v
}

// Selected returns the movie under the cursor.
func (v View) Selected() (tmdb.Movie, bool) {
	if v.Cursor < 0 || v.Cursor >= len(v.Movies) {
		return tmdb.Movie{}, false
	}
	return v.Movies[v.Cursor], true
}
