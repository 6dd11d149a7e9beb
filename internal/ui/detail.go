package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/abelbrown/reelfind/internal/tmdb"
)

// movieMarkdown is the detail pane source for m.
func movieMarkdown(m tmdb.Movie) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (%s)\n\n", m.Title, m.Year())

	lang := m.OriginalLanguage
	if lang == "" {
		lang = "N/A"
	}
	released := m.ReleaseDate
	if released == "" {
		released = "N/A"
	}
	fmt.Fprintf(&b, "**Rating:** %s · **Language:** %s · **Released:** %s\n\n", m.Rating(), lang, released)

	if m.Overview != "" {
		b.WriteString(m.Overview)
		b.WriteString("\n\n")
	} else {
		b.WriteString("_No overview available._\n\n")
	}

	if u := m.PosterURL(); u != "" {
		fmt.Fprintf(&b, "Poster: <%s>\n\n", u)
	}
	fmt.Fprintf(&b, "TMDB id `%d`\n", m.ID)
	return b.String()
}

// renderDetail renders m's markdown for a pane width cells wide. On renderer
// failure the raw markdown is returned.
func renderDetail(m tmdb.Movie, width int) string {
	md := movieMarkdown(m)
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
