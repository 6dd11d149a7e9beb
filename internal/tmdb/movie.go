// Package tmdb is a small client for The Movie Database v3 API.
package tmdb

import (
	"fmt"
	"strings"
)

// PosterBaseURL is the TMDB image CDN prefix for w500 posters.
const PosterBaseURL = "https://image.tmdb.org/t/p/w500"

// Movie is a search or discover result. Fields are passed through to the
// renderer unchanged.
type Movie struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview,omitempty"`
	PosterPath       string  `json:"poster_path,omitempty"`
	ReleaseDate      string  `json:"release_date,omitempty"`
	VoteAverage      float64 `json:"vote_average,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
}

// PosterURL returns the full poster URL, or "" when the movie has no poster.
func (m Movie) PosterURL() string {
	if m.PosterPath == "" {
		return ""
	}
	return PosterBaseURL + m.PosterPath
}

// Year returns the release year or "N/A".
func (m Movie) Year() string {
	if y, _, _ := strings.Cut(m.ReleaseDate, "-"); y != "" {
		return y
	}
	return "N/A"
}

// Rating returns the vote average with one decimal, or "N/A" when unrated.
func (m Movie) Rating() string {
	if m.VoteAverage == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", m.VoteAverage)
}

// Page is the decoded response envelope.
type Page struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// envelope carries both the success shape and the application-level failure
// shape ({"Response":"False","Error":"..."}).
type envelope struct {
	Page
	Response string `json:"Response"`
	Error    string `json:"Error"`
}
