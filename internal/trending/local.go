package trending

import (
	"context"
	"errors"
	"fmt"

	"github.com/abelbrown/reelfind/internal/store"
	"github.com/abelbrown/reelfind/internal/tmdb"
)

// ErrEmptyQuery is returned when a query normalizes to nothing.
var ErrEmptyQuery = errors.New("trending: empty query")

// Local is a Store backed directly by the SQL counter table.
type Local struct {
	st *store.Store
}

// NewLocal wraps an open store.
func NewLocal(st *store.Store) *Local {
	return &Local{st: st}
}

// Increment bumps the counter for the normalized query and refreshes its poster.
func (l *Local) Increment(ctx context.Context, query string, movie tmdb.Movie) error {
	term := Normalize(query)
	if term == "" {
		return ErrEmptyQuery
	}
	err := l.st.IncrementSearch(ctx, store.SearchCount{
		Term:      term,
		MovieID:   movie.ID,
		Title:     movie.Title,
		PosterURL: movie.PosterURL(),
	})
	if err != nil {
		return fmt.Errorf("trending: %w", err)
	}
	return nil
}

// Top returns up to limit entries with 1-based ranks.
func (l *Local) Top(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := l.st.TopSearches(ctx, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("trending: %w", err)
	}
	entries := make([]Entry, len(rows))
	for i, r := range rows {
		entries[i] = Entry{
			Rank:      i + 1,
			Term:      r.Term,
			Count:     r.Count,
			MovieID:   r.MovieID,
			Title:     r.Title,
			PosterURL: r.PosterURL,
		}
	}
	return entries, nil
}
