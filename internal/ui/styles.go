package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorAccent    = lipgloss.Color("219") // Light pink, gradient end
	colorRating    = lipgloss.Color("220") // Gold
)

// HeroTitle style for the page heading.
var HeroTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Padding(1, 1, 0, 1)

// HeroAccent style for the highlighted word in the heading.
var HeroAccent = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorAccent)

// SearchBox style for the bordered search input.
var SearchBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(0, 1).
	Margin(1, 1, 0, 1)

// SectionHeader style for "Trending Movies" and "All Movies".
var SectionHeader = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	MarginTop(1).
	Padding(0, 1)

// TrendingRank style for the big rank number.
var TrendingRank = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorPrimary)

// TrendingPoster style for the poster reference next to a trending entry.
var TrendingPoster = lipgloss.NewStyle().
	Foreground(colorMuted)

// SelectedItem style for the currently highlighted movie card.
var SelectedItem = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// NormalItem style for unselected movie cards.
var NormalItem = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Padding(0, 1)

// CardMeta style for the rating, language and year line.
var CardMeta = lipgloss.NewStyle().
	Foreground(colorSecondary)

// RatingStar style for the rating glyph.
var RatingStar = lipgloss.NewStyle().
	Foreground(colorRating)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true).
	Padding(0, 1)

// HelpStyle for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)

// DetailPanel style for the glamour-rendered movie detail.
var DetailPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(0, 1)

// DebugPanel style for the debug overlay.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorHighlight).
	Padding(1, 2)

// DebugHeaderStyle for section headers inside the debug overlay.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)
