// Package search runs one committed query against the movie API and records
// it in the trending counter.
package search

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/abelbrown/reelfind/internal/otel"
	"github.com/abelbrown/reelfind/internal/tmdb"
	"github.com/abelbrown/reelfind/internal/trending"
)

const (
	// MsgAPIFailure is shown when the API rejects a request without a message.
	MsgAPIFailure = "Failed to fetch movies"
	// MsgTransportFailure is shown for any non-API failure.
	MsgTransportFailure = "Failed to fetch movie data. Please try again later."
)

// MovieSource fetches a page of movies. *tmdb.Client satisfies it.
type MovieSource interface {
	Fetch(ctx context.Context, query string) (*tmdb.Page, error)
}

// Outcome is the result of one fetch, ready for the view state.
type Outcome struct {
	Query        string
	Movies       []tmdb.Movie // never nil
	ErrorMessage string       // user-facing; empty on success
	Err          error        // underlying cause, for logging
}

// Service runs fetches and trending reads. The trending store may be nil, in
// which case nothing is counted and Trending returns no entries.
type Service struct {
	movies   MovieSource
	trending trending.Store
	log      *otel.Logger
}

// NewService wires a Service.
func NewService(movies MovieSource, st trending.Store, log *otel.Logger) *Service {
	return &Service{movies: movies, trending: st, log: log}
}

// Fetch runs query (empty means discover) and returns what the view should show.
// On success with a non-empty query and at least one result, the first
// result is recorded in the trending counter exactly once. Counter failures
// are logged and never change the outcome.
func (s *Service) Fetch(ctx context.Context, query string) Outcome {
	return s.FetchSeq(ctx, query, 0)
}

// FetchSeq is Fetch with a request sequence number attached to log events.
func (s *Service) FetchSeq(ctx context.Context, query string, seq uint64) Outcome {
	qid := ""
	if seq > 0 {
		qid = strconv.FormatUint(seq, 10)
	}
	start := time.Now()
	s.log.Emit(otel.Event{
		Level:   otel.LevelInfo,
		Kind:    otel.KindFetchStart,
		Comp:    "search",
		QueryID: qid,
		Query:   query,
	})

	page, err := s.movies.Fetch(ctx, query)
	if err != nil {
		out := Outcome{Query: query, Movies: []tmdb.Movie{}, ErrorMessage: userMessage(err), Err: err}
		s.log.Emit(otel.Event{
			Level:   otel.LevelError,
			Kind:    otel.KindFetchError,
			Comp:    "search",
			QueryID: qid,
			Query:   query,
			Dur:     time.Since(start),
			Err:     err.Error(),
		})
		return out
	}

	results := page.Results
	if results == nil {
		results = []tmdb.Movie{}
	}
	s.log.Emit(otel.Event{
		Level:   otel.LevelInfo,
		Kind:    otel.KindFetchComplete,
		Comp:    "search",
		QueryID: qid,
		Query:   query,
		Dur:     time.Since(start),
		Count:   len(results),
	})

	if query != "" && len(results) > 0 {
		s.record(ctx, query, results[0])
	}
	return Outcome{Query: query, Movies: results}
}

func (s *Service) record(ctx context.Context, query string, top tmdb.Movie) {
	if s.trending == nil {
		return
	}
	if err := s.trending.Increment(ctx, query, top); err != nil {
		s.log.Emit(otel.Event{
			Level: otel.LevelWarn,
			Kind:  otel.KindTrendingError,
			Comp:  "search",
			Query: query,
			Err:   err.Error(),
		})
		return
	}
	s.log.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindTrendingIncrement,
		Comp:  "search",
		Query: trending.Normalize(query),
		Extra: map[string]any{"movie_id": top.ID},
	})
}

// userMessage maps an error to the text shown in place of the movie list.
func userMessage(err error) string {
	var apiErr *tmdb.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return MsgAPIFailure
	}
	return MsgTransportFailure
}

// Trending reads the top limit entries. Failures are logged and returned so
// the caller can keep its previous list.
func (s *Service) Trending(ctx context.Context, limit int) ([]trending.Entry, error) {
	if s.trending == nil {
		return []trending.Entry{}, nil
	}
	start := time.Now()
	entries, err := s.trending.Top(ctx, limit)
	if err != nil {
		s.log.Emit(otel.Event{
			Level: otel.LevelWarn,
			Kind:  otel.KindTrendingError,
			Comp:  "search",
			Err:   err.Error(),
		})
		return nil, err
	}
	s.log.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindTrendingLoad,
		Comp:  "search",
		Dur:   time.Since(start),
		Count: len(entries),
	})
	return entries, nil
}
