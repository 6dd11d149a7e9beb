// Package ui provides the Bubble Tea TUI for reelfind.
package ui

import (
	"github.com/abelbrown/reelfind/internal/tmdb"
	"github.com/abelbrown/reelfind/internal/trending"
)

// MoviesFetched is sent when a movie fetch settles, successfully or not.
type MoviesFetched struct {
	Seq          uint64 // request sequence from state.View.OnFetchStart
	Query        string
	Movies       []tmdb.Movie
	ErrorMessage string // user-facing; empty on success
}

// TrendingLoaded is sent when the trending reader returns.
type TrendingLoaded struct {
	Entries []trending.Entry
	Err     error
}
