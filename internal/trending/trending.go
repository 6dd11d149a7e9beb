// Package trending records which search terms are popular and reads them back
// as a ranked list.
//
// A Store can be backed by a local SQL database (Local) or by a remote
// trendingd service (Client). Server exposes any Store over HTTP.
package trending

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/abelbrown/reelfind/internal/tmdb"
)

// DefaultLimit is how many entries the Trending section shows.
const DefaultLimit = 5

// MaxLimit caps Top requests.
const MaxLimit = 50

// Entry is one ranked trending search.
type Entry struct {
	Rank      int    `json:"rank"` // 1-based
	Term      string `json:"term"` // normalized query, the counter key
	Count     int    `json:"count"`
	MovieID   int64  `json:"movie_id"`
	Title     string `json:"title"`
	PosterURL string `json:"poster_url"`
}

// Counter records one search for query with its representative movie.
type Counter interface {
	Increment(ctx context.Context, query string, movie tmdb.Movie) error
}

// Reader returns the most-searched terms, highest count first.
type Reader interface {
	Top(ctx context.Context, limit int) ([]Entry, error)
}

// Store is both halves of the counter service.
type Store interface {
	Counter
	Reader
}

// Normalize produces the counter key for a query: case-folded, NFC-composed,
// trimmed, with internal whitespace collapsed to single spaces.
func Normalize(query string) string {
	// Casers are stateful, so one per call.
	folded := norm.NFC.String(cases.Fold().String(query))
	return strings.Join(strings.Fields(folded), " ")
}

// clampLimit applies the default and the maximum.
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
