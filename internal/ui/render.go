package ui

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/reelfind/internal/state"
	"github.com/abelbrown/reelfind/internal/tmdb"
	"github.com/abelbrown/reelfind/internal/trending"
)

// cardHeight is the number of lines one movie card occupies.
const cardHeight = 2

// pageParams is everything the page renderer reads.
type pageParams struct {
	View          state.View
	Input         string // rendered text input
	Spinner       string // current spinner frame
	Width         int
	Height        int // lines available, status bar excluded
	TrendingLimit int
}

// renderPage draws the search screen. Pure: output depends only on p.
func renderPage(p pageParams) string {
	var sections []string

	sections = append(sections, renderHero())
	sections = append(sections, SearchBox.Width(max(p.Width-4, 20)).Render("⌕ "+p.Input))

	if t := renderTrending(p.View.Trending, p.TrendingLimit, p.Width); t != "" {
		sections = append(sections, t)
	}

	top := lipgloss.JoinVertical(lipgloss.Left, sections...)
	remaining := p.Height - lipgloss.Height(top)

	sections = append(sections, renderAllMovies(p.View, p.Spinner, p.Width, remaining))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderHero() string {
	return HeroTitle.Render("Find " + HeroAccent.Render("Movies") + " You'll Enjoy Without the Hassle")
}

// renderTrending returns "" when there is nothing to show.
func renderTrending(entries []trending.Entry, limit, width int) string {
	if len(entries) == 0 {
		return ""
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	lines := []string{SectionHeader.Render("Trending Movies")}
	for i, e := range entries {
		rank := e.Rank
		if rank == 0 {
			rank = i + 1
		}
		title := e.Title
		if title == "" {
			title = e.Term
		}
		poster := e.PosterURL
		if poster == "" {
			poster = "no poster"
		}
		line := fmt.Sprintf("  %s  %s  %s",
			TrendingRank.Render(fmt.Sprintf("%2d", rank)),
			truncateRunes(title, 32),
			TrendingPoster.Render(poster))
		lines = append(lines, truncateLine(line, width))
	}
	return strings.Join(lines, "\n")
}

// renderAllMovies shows the spinner while loading, else the error, else the cards.
func renderAllMovies(v state.View, spinner string, width, height int) string {
	header := SectionHeader.Render("All Movies")
	var body string
	switch {
	case v.IsLoading:
		body = "  " + spinner + " Loading..."
	case v.ErrorMessage != "":
		body = ErrorStyle.Render(v.ErrorMessage)
	case len(v.Movies) == 0:
		body = HelpStyle.Render("No movies found.")
	default:
		body = renderCards(v.Movies, v.Cursor, width, height-lipgloss.Height(header))
	}
	return header + "\n" + body
}

// renderCards draws as many cards as fit in height, scrolled to keep the
// cursor visible.
func renderCards(movies []tmdb.Movie, cursor, width, height int) string {
	visible := height / cardHeight
	if visible < 1 {
		visible = 1
	}
	offset := 0
	if cursor >= visible {
		offset = cursor - visible + 1
	}
	end := min(offset+visible, len(movies))

	cards := make([]string, 0, end-offset)
	for i := offset; i < end; i++ {
		cards = append(cards, renderCard(movies[i], i == cursor, width))
	}
	return strings.Join(cards, "\n")
}

// renderCard draws one movie: title, then rating, language and year.
func renderCard(m tmdb.Movie, selected bool, width int) string {
	title := truncateRunes(m.Title, max(width-4, 10))
	if selected {
		title = SelectedItem.Render(title)
	} else {
		title = NormalItem.Render(title)
	}
	lang := m.OriginalLanguage
	if lang == "" {
		lang = "N/A"
	}
	meta := fmt.Sprintf("   %s %s • %s • %s", RatingStar.Render("★"), m.Rating(), lang, m.Year())
	return title + "\n" + CardMeta.Render(meta)
}

// statusBar renders the bottom bar: result count, cursor and key hints.
func statusBar(v state.View, helpView string, width int) string {
	pos := "0/0"
	if n := len(v.Movies); n > 0 {
		pos = strconv.Itoa(v.Cursor+1) + "/" + strconv.Itoa(n)
	}
	left := StatusBarKey.Render(pos)
	if v.Committed != "" {
		left += StatusBarText.Render("  “" + truncateRunes(v.Committed, 24) + "”")
	}
	return StatusBar.Width(width).Render(left + "  " + helpView)
}

// truncateRunes shortens s to at most n runes, adding an ellipsis.
func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

// truncateLine caps a styled line at width display cells.
func truncateLine(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
