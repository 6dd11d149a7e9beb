package trending

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/reelfind/internal/otel"
	"github.com/abelbrown/reelfind/internal/tmdb"
)

func TestClientRoundTrip(t *testing.T) {
	srv := NewServer(newLocal(t), ServerOptions{Token: "tok", Logger: otel.NewNullLogger()})
	base := startServer(t, srv)

	c := NewClient(base+"/", "tok", 2*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Increment(ctx, "Alien", tmdb.Movie{ID: 348, Title: "Alien", PosterPath: "/a.jpg"}))
	require.NoError(t, c.Increment(ctx, "alien", tmdb.Movie{ID: 348, Title: "Alien", PosterPath: "/a.jpg"}))
	require.NoError(t, c.Increment(ctx, "heat", tmdb.Movie{ID: 949, Title: "Heat"}))

	top, err := c.Top(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "alien", top[0].Term)
	assert.Equal(t, 2, top[0].Count)
	assert.Equal(t, tmdb.PosterBaseURL+"/a.jpg", top[0].PosterURL)
	assert.Equal(t, "heat", top[1].Term)
}

func TestClientWrongToken(t *testing.T) {
	srv := NewServer(newLocal(t), ServerOptions{Token: "tok", Logger: otel.NewNullLogger()})
	base := startServer(t, srv)

	c := NewClient(base, "nope", time.Second)
	_, err := c.Top(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	err = c.Increment(context.Background(), "x", tmdb.Movie{})
	require.Error(t, err)
}

func TestClientEmptyQuery(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "", time.Second)
	assert.ErrorIs(t, c.Increment(context.Background(), " ", tmdb.Movie{}), ErrEmptyQuery)
}

func TestClientCanceledContext(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "", time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Top(ctx, 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClientUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "", 500*time.Millisecond)
	_, err := c.Top(context.Background(), 5)
	assert.Error(t, err)
}
