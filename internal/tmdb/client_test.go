package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("test-key", Options{BaseURL: server.URL})
}

func TestURLSearchVersusDiscover(t *testing.T) {
	c := NewClient("k", Options{BaseURL: "https://api.example/3/"})

	t.Run("search when query present", func(t *testing.T) {
		u, err := url.Parse(c.URL("batman"))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if u.Path != "/3/search/movie" {
			t.Errorf("path = %q, want /3/search/movie", u.Path)
		}
		q := u.Query()
		if q.Get("query") != "batman" {
			t.Errorf("query = %q, want batman", q.Get("query"))
		}
		if q.Get("include_adult") != "false" || q.Get("language") != "en-US" || q.Get("page") != "1" {
			t.Errorf("unexpected params: %v", q)
		}
		if q.Has("sort_by") {
			t.Error("search URL should not carry sort_by")
		}
	})

	t.Run("discover when query empty", func(t *testing.T) {
		u, err := url.Parse(c.URL(""))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if u.Path != "/3/discover/movie" {
			t.Errorf("path = %q, want /3/discover/movie", u.Path)
		}
		q := u.Query()
		if q.Has("query") {
			t.Error("discover URL should not carry query")
		}
		if q.Get("sort_by") != "popularity.desc" || q.Get("include_video") != "false" {
			t.Errorf("unexpected params: %v", q)
		}
	})

	t.Run("query is escaped", func(t *testing.T) {
		if got := c.URL("star wars&x=1"); !strings.Contains(got, "query=star+wars%26x%3D1") {
			t.Errorf("query not escaped: %s", got)
		}
	})
}

func TestFetchSendsHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("accept = %q", got)
		}
		w.Write([]byte(`{"page":1,"results":[]}`))
	})

	if _, err := c.Fetch(context.Background(), ""); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
}

func TestFetchResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") != "batman" {
			t.Errorf("query = %q", r.URL.Query().Get("query"))
		}
		w.Write([]byte(`{"page":1,"total_pages":3,"results":[{"id":1,"title":"X","poster_path":"/x.jpg"}]}`))
	})

	page, err := c.Fetch(context.Background(), "batman")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(page.Results) != 1 || page.Results[0].ID != 1 || page.Results[0].Title != "X" {
		t.Errorf("results = %+v", page.Results)
	}
	if page.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", page.TotalPages)
	}
}

func TestFetchMissingResultsIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"page":1}`))
	})

	page, err := c.Fetch(context.Background(), "")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if page.Results == nil || len(page.Results) != 0 {
		t.Errorf("Results = %#v, want empty non-nil slice", page.Results)
	}
}

func TestFetchApplicationError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":"False","Error":"Invalid API key"}`))
	})

	_, err := c.Fetch(context.Background(), "batman")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Message != "Invalid API key" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestFetchStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})

	_, err := c.Fetch(context.Background(), "batman")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if statusErr.Code != http.StatusUnauthorized {
		t.Errorf("Code = %d", statusErr.Code)
	}
}

func TestFetchMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":`))
	})

	if _, err := c.Fetch(context.Background(), ""); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFetchMissingAPIKey(t *testing.T) {
	c := NewClient("  ", Options{BaseURL: "http://127.0.0.1:1"})
	if c.Available() {
		t.Error("Available() should be false for blank key")
	}
	if _, err := c.Fetch(context.Background(), "x"); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("error = %v, want ErrMissingAPIKey", err)
	}
}

func TestFetchTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := server.URL
	server.Close()

	c := NewClient("k", Options{BaseURL: base})
	if _, err := c.Fetch(context.Background(), "x"); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestMovieHelpers(t *testing.T) {
	m := Movie{PosterPath: "/p.jpg", ReleaseDate: "2008-07-16", VoteAverage: 8.52}
	if m.PosterURL() != PosterBaseURL+"/p.jpg" {
		t.Errorf("PosterURL() = %q", m.PosterURL())
	}
	if m.Year() != "2008" {
		t.Errorf("Year() = %q", m.Year())
	}
	if m.Rating() != "8.5" {
		t.Errorf("Rating() = %q", m.Rating())
	}

	var empty Movie
	if empty.PosterURL() != "" || empty.Year() != "N/A" || empty.Rating() != "N/A" {
		t.Errorf("empty movie helpers = %q %q %q", empty.PosterURL(), empty.Year(), empty.Rating())
	}
}
