package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/reelfind/internal/otel"
	"github.com/abelbrown/reelfind/internal/store"
	"github.com/abelbrown/reelfind/internal/tmdb"
	"github.com/abelbrown/reelfind/internal/trending"
)

type fakeSource struct {
	page  *tmdb.Page
	err   error
	calls []string
}

func (f *fakeSource) Fetch(_ context.Context, query string) (*tmdb.Page, error) {
	f.calls = append(f.calls, query)
	return f.page, f.err
}

type increment struct {
	query string
	movie tmdb.Movie
}

type fakeTrending struct {
	mu         sync.Mutex
	increments []increment
	incErr     error
	entries    []trending.Entry
	topErr     error
}

func (f *fakeTrending) Increment(_ context.Context, query string, m tmdb.Movie) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.increments = append(f.increments, increment{query, m})
	return f.incErr
}

func (f *fakeTrending) Top(context.Context, int) ([]trending.Entry, error) {
	return f.entries, f.topErr
}

func newLogged(t *testing.T) (*otel.Logger, *otel.RingBuffer) {
	t.Helper()
	log := otel.NewNullLogger()
	rb := otel.NewRingBuffer(64)
	log.SetRingBuffer(rb)
	return log, rb
}

func page(titles ...string) *tmdb.Page {
	p := &tmdb.Page{Page: 1, Results: []tmdb.Movie{}}
	for i, title := range titles {
		p.Results = append(p.Results, tmdb.Movie{ID: int64(100 + i), Title: title, PosterPath: fmt.Sprintf("/%d.jpg", i)})
	}
	return p
}

func TestFetchSuccessCountsFirstResultOnce(t *testing.T) {
	src := &fakeSource{page: page("Batman", "Batman Returns")}
	tr := &fakeTrending{}
	log, rb := newLogged(t)
	svc := NewService(src, tr, log)

	out := svc.Fetch(context.Background(), "batman")

	assert.Empty(t, out.ErrorMessage)
	assert.NoError(t, out.Err)
	assert.Len(t, out.Movies, 2)
	require.Len(t, tr.increments, 1)
	assert.Equal(t, "batman", tr.increments[0].query)
	assert.Equal(t, int64(100), tr.increments[0].movie.ID)

	stats := rb.Stats()
	assert.Equal(t, 1, stats[otel.KindFetchStart])
	assert.Equal(t, 1, stats[otel.KindFetchComplete])
	assert.Equal(t, 1, stats[otel.KindTrendingIncrement])
}

func TestFetchEmptyQueryDoesNotCount(t *testing.T) {
	src := &fakeSource{page: page("Popular")}
	tr := &fakeTrending{}
	svc := NewService(src, tr, otel.NewNullLogger())

	out := svc.Fetch(context.Background(), "")

	assert.Len(t, out.Movies, 1)
	assert.Empty(t, tr.increments)
	assert.Equal(t, []string{""}, src.calls)
}

func TestFetchNoResultsDoesNotCount(t *testing.T) {
	src := &fakeSource{page: &tmdb.Page{}}
	tr := &fakeTrending{}
	svc := NewService(src, tr, otel.NewNullLogger())

	out := svc.Fetch(context.Background(), "zzzzqx")

	assert.NotNil(t, out.Movies)
	assert.Empty(t, out.Movies)
	assert.Empty(t, out.ErrorMessage)
	assert.Empty(t, tr.increments)
}

func TestFetchAPIError(t *testing.T) {
	cases := []struct {
		name string
		msg  string
		want string
	}{
		{"with message", "Invalid API key", "Invalid API key"},
		{"without message", "", MsgAPIFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := &fakeSource{err: &tmdb.APIError{Message: tc.msg}}
			tr := &fakeTrending{}
			log, rb := newLogged(t)
			svc := NewService(src, tr, log)

			out := svc.Fetch(context.Background(), "batman")

			assert.Equal(t, tc.want, out.ErrorMessage)
			assert.NotNil(t, out.Movies)
			assert.Empty(t, out.Movies)
			assert.Empty(t, tr.increments)
			assert.Equal(t, 1, rb.Stats()[otel.KindFetchError])
		})
	}
}

func TestFetchTransportErrors(t *testing.T) {
	for _, err := range []error{
		errors.New("connection refused"),
		&tmdb.StatusError{Code: 500, Body: "oops"},
		fmt.Errorf("tmdb: %w", tmdb.ErrMissingAPIKey),
		context.DeadlineExceeded,
	} {
		src := &fakeSource{err: err}
		svc := NewService(src, &fakeTrending{}, otel.NewNullLogger())

		out := svc.Fetch(context.Background(), "x")
		assert.Equal(t, MsgTransportFailure, out.ErrorMessage, "err %v", err)
		assert.ErrorIs(t, out.Err, err)
		assert.Empty(t, out.Movies)
	}
}

func TestFetchIncrementFailureIsSilent(t *testing.T) {
	src := &fakeSource{page: page("Alien")}
	tr := &fakeTrending{incErr: errors.New("store down")}
	log, rb := newLogged(t)
	svc := NewService(src, tr, log)

	out := svc.Fetch(context.Background(), "alien")

	assert.Empty(t, out.ErrorMessage)
	assert.Len(t, out.Movies, 1)
	assert.Len(t, tr.increments, 1)
	assert.Equal(t, 1, rb.Stats()[otel.KindTrendingError])
}

func TestFetchNilTrending(t *testing.T) {
	svc := NewService(&fakeSource{page: page("Heat")}, nil, otel.NewNullLogger())
	out := svc.Fetch(context.Background(), "heat")
	assert.Len(t, out.Movies, 1)

	entries, err := svc.Trending(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFetchSeqTagsEvents(t *testing.T) {
	log, rb := newLogged(t)
	svc := NewService(&fakeSource{page: page()}, nil, log)

	svc.FetchSeq(context.Background(), "q", 42)

	for _, e := range rb.Snapshot() {
		assert.Equal(t, "42", e.QueryID, "kind %s", e.Kind)
	}
}

func TestTrendingPassThrough(t *testing.T) {
	entries := []trending.Entry{{Rank: 1, Term: "dune", Count: 4}}
	log, rb := newLogged(t)
	svc := NewService(&fakeSource{}, &fakeTrending{entries: entries}, log)

	got, err := svc.Trending(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
	assert.Equal(t, 1, rb.Stats()[otel.KindTrendingLoad])
}

func TestTrendingFailure(t *testing.T) {
	log, rb := newLogged(t)
	svc := NewService(&fakeSource{}, &fakeTrending{topErr: errors.New("boom")}, log)

	got, err := svc.Trending(context.Background(), 5)
	assert.Error(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, rb.Stats()[otel.KindTrendingError])
}

func TestFetchAgainstLocalStore(t *testing.T) {
	st, err := store.Open(store.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer st.Close()

	svc := NewService(&fakeSource{page: page("Dune", "Dune: Part Two")}, trending.NewLocal(st), otel.NewNullLogger())
	ctx := context.Background()
	svc.Fetch(ctx, "Dune")
	svc.Fetch(ctx, "dune ")
	svc.Fetch(ctx, "")

	top, err := svc.Trending(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "dune", top[0].Term)
	assert.Equal(t, 2, top[0].Count)
	assert.Equal(t, tmdb.PosterBaseURL+"/0.jpg", top[0].PosterURL)
}
