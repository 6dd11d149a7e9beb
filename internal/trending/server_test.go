package trending

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/reelfind/internal/otel"
	"github.com/abelbrown/reelfind/internal/tmdb"
)

// failingStore errors on every call.
type failingStore struct{}

func (failingStore) Increment(context.Context, string, tmdb.Movie) error {
	return errors.New("disk full")
}

func (failingStore) Top(context.Context, int) ([]Entry, error) {
	return nil, errors.New("disk full")
}

func newTestServer(t *testing.T, token string) *Server {
	t.Helper()
	return NewServer(newLocal(t), ServerOptions{Token: token, Logger: otel.NewNullLogger()})
}

func doJSON(t *testing.T, s *Server, method, path string, body any, token string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeTop(t *testing.T, resp *http.Response) []Entry {
	t.Helper()
	var out topResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Entries
}

func TestServerHealth(t *testing.T) {
	s := newTestServer(t, "secret")
	resp := doJSON(t, s, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestServerIncrementThenTop(t *testing.T) {
	s := newTestServer(t, "")

	for i := 0; i < 2; i++ {
		resp := doJSON(t, s, http.MethodPost, "/v1/searches", incrementRequest{
			Query: "Dune",
			Movie: tmdb.Movie{ID: 438631, Title: "Dune", PosterPath: "/d.jpg"},
		}, "")
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
	}

	resp := doJSON(t, s, http.MethodGet, "/v1/trending", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := decodeTop(t, resp)
	require.Len(t, entries, 1)
	assert.Equal(t, "dune", entries[0].Term)
	assert.Equal(t, 2, entries[0].Count)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, tmdb.PosterBaseURL+"/d.jpg", entries[0].PosterURL)
}

func TestServerTopEmptyIsArray(t *testing.T) {
	s := newTestServer(t, "")
	resp := doJSON(t, s, http.MethodGet, "/v1/trending", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"entries":[]}`, string(raw))
}

func TestServerRejectsBadInput(t *testing.T) {
	s := newTestServer(t, "")

	resp := doJSON(t, s, http.MethodPost, "/v1/searches", incrementRequest{Query: "  "}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, s, http.MethodGet, "/v1/trending?limit=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, s, http.MethodGet, "/v1/trending?limit=0", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServerRequiresToken(t *testing.T) {
	s := newTestServer(t, "secret")

	resp := doJSON(t, s, http.MethodGet, "/v1/trending", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, s, http.MethodGet, "/v1/trending", nil, "wrong")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, s, http.MethodGet, "/v1/trending", nil, "secret")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServerStoreFailure(t *testing.T) {
	s := NewServer(failingStore{}, ServerOptions{Logger: otel.NewNullLogger()})

	resp := doJSON(t, s, http.MethodPost, "/v1/searches", incrementRequest{Query: "x"}, "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp = doJSON(t, s, http.MethodGet, "/v1/trending", nil, "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "failed to load trending", body.Error)
}

// startServer runs s on a loopback listener and returns its base URL.
func startServer(t *testing.T, s *Server) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go s.App().Listener(ln)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})
	return "http://" + ln.Addr().String()
}
