package ui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/reelfind/internal/debounce"
	"github.com/abelbrown/reelfind/internal/otel"
	"github.com/abelbrown/reelfind/internal/state"
)

// AppConfig wires the App to the outside world. The App never calls the
// network or the store itself; it only runs the commands these return.
type AppConfig struct {
	// FetchMovies returns a Cmd that fetches query and replies with MoviesFetched{Seq: seq}.
	FetchMovies func(query string, seq uint64) tea.Cmd
	// LoadTrending returns a Cmd that replies with TrendingLoaded.
	LoadTrending func() tea.Cmd

	Debounce      time.Duration
	TrendingLimit int
	Ring          *otel.RingBuffer // debug overlay source; nil disables it
	Logger        *otel.Logger
}

// App is the root Bubble Tea model.
// IMPORTANT: App does NOT hold the store or the API client. It receives
// results via messages.
type App struct {
	cfg       AppConfig
	view      state.View
	debouncer *debounce.Debouncer

	input   textinput.Model
	spinner spinner.Model
	detail  viewport.Model
	help    help.Model
	keys    keyMap

	initialSeq uint64
	showDetail bool
	showDebug  bool
	width      int
	height     int
	ready      bool
}

// NewApp creates an App. The discover fetch for the empty query is already
// counted as in flight; Init issues it.
func NewApp(cfg AppConfig) App {
	ti := textinput.New()
	ti.Placeholder = "Search through thousands of movies"
	ti.Prompt = ""
	ti.CharLimit = 200
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = StatusBarKey

	v, _ := state.New().OnCommit("")
	v, seq := v.OnFetchStart()

	return App{
		cfg:        cfg,
		view:       v,
		debouncer:  debounce.New(cfg.Debounce),
		input:      ti,
		spinner:    sp,
		detail:     viewport.New(80, 20),
		help:       help.New(),
		keys:       defaultKeyMap(),
		initialSeq: seq,
	}
}

// Init fetches the default list, loads trending once, and starts the
// spinner and cursor blink.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, a.spinner.Tick}
	if a.cfg.FetchMovies != nil {
		a.logCommit("", a.initialSeq)
		cmds = append(cmds, a.cfg.FetchMovies("", a.initialSeq))
	}
	if a.cfg.LoadTrending != nil {
		cmds = append(cmds, a.cfg.LoadTrending())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		a.cfg.Logger.Emit(otel.Event{
			Level: otel.LevelDebug,
			Kind:  otel.KindMsgReceived,
			Comp:  "ui",
			Msg:   msgTypeName(msg),
		})
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.input.Width = max(msg.Width-10, 10)
		a.help.Width = msg.Width
		a.detail.Width = max(msg.Width-4, 20)
		a.detail.Height = max(msg.Height-4, 3)
		return a, nil

	case debounce.Msg:
		return a.handleCommit(msg)

	case MoviesFetched:
		if !a.view.IsLatest(msg.Seq) {
			a.cfg.Logger.Emit(otel.Event{
				Level:   otel.LevelDebug,
				Kind:    otel.KindSearchStale,
				Comp:    "ui",
				QueryID: strconv.FormatUint(msg.Seq, 10),
				Query:   msg.Query,
			})
			return a, nil
		}
		if msg.ErrorMessage != "" {
			a.view = a.view.OnFetchError(msg.Seq, msg.ErrorMessage)
		} else {
			a.view = a.view.OnFetchSuccess(msg.Seq, msg.Movies)
		}
		return a, nil

	case TrendingLoaded:
		if msg.Err != nil {
			a.view = a.view.OnTrendingFailed()
			return a, nil
		}
		a.view = a.view.OnTrendingLoaded(msg.Entries)
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	// Cursor blink and anything else the input understands.
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		a.debouncer.Reset()
		return a, tea.Quit

	case key.Matches(msg, a.keys.Debug):
		a.showDebug = !a.showDebug
		return a, nil
	}

	if a.showDetail {
		switch {
		case key.Matches(msg, a.keys.Back), key.Matches(msg, a.keys.Detail):
			a.showDetail = false
			return a, nil
		}
		var cmd tea.Cmd
		a.detail, cmd = a.detail.Update(msg)
		return a, cmd
	}

	switch {
	case key.Matches(msg, a.keys.Up):
		a.view = a.view.MoveCursor(-1)
		return a, nil

	case key.Matches(msg, a.keys.Down):
		a.view = a.view.MoveCursor(1)
		return a, nil

	case key.Matches(msg, a.keys.Detail):
		if m, ok := a.view.Selected(); ok {
			a.detail.SetContent(renderDetail(m, a.detail.Width))
			a.detail.GotoTop()
			a.showDetail = true
		}
		return a, nil

	case key.Matches(msg, a.keys.Back):
		if a.input.Value() == "" {
			return a, nil
		}
		a.input.SetValue("")
		return a.onInput()
	}

	before := a.input.Value()
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if a.input.Value() == before {
		return a, cmd
	}
	next, debounceCmd := a.onInput()
	return next, tea.Batch(cmd, debounceCmd)
}

// onInput records the raw value and restarts the debounce timer.
func (a App) onInput() (App, tea.Cmd) {
	raw := a.input.Value()
	a.view = a.view.OnInput(raw)
	return a, a.debouncer.Trigger(raw)
}

// handleCommit runs a fetch for a settled debounce value.
func (a App) handleCommit(msg debounce.Msg) (tea.Model, tea.Cmd) {
	if !a.debouncer.Settled(msg) {
		return a, nil
	}
	v, changed := a.view.OnCommit(msg.Value)
	if !changed {
		return a, nil
	}
	v, seq := v.OnFetchStart()
	a.view = v
	a.logCommit(msg.Value, seq)
	if a.cfg.FetchMovies == nil {
		return a, nil
	}
	return a, a.cfg.FetchMovies(msg.Value, seq)
}

func (a App) logCommit(query string, seq uint64) {
	a.cfg.Logger.Emit(otel.Event{
		Level:   otel.LevelInfo,
		Kind:    otel.KindSearchCommit,
		Comp:    "ui",
		QueryID: strconv.FormatUint(seq, 10),
		Query:   query,
	})
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.showDebug && a.cfg.Ring != nil {
		overlay := debugOverlay(a.cfg.Ring, a.width, a.height-1)
		return lipgloss.JoinVertical(lipgloss.Left, overlay, debugStatusBar(a.width))
	}

	bar := statusBar(a.view, a.help.View(a.keys), a.width)

	if a.showDetail {
		pane := DetailPanel.Width(max(a.width-2, 20)).Render(a.detail.View())
		return lipgloss.JoinVertical(lipgloss.Left, pane, bar)
	}

	page := renderPage(pageParams{
		View:          a.view,
		Input:         a.input.View(),
		Spinner:       a.spinner.View(),
		Width:         a.width,
		Height:        a.height - lipgloss.Height(bar),
		TrendingLimit: a.cfg.TrendingLimit,
	})
	return lipgloss.JoinVertical(lipgloss.Left, page, bar)
}

// State returns the current view state (for testing).
func (a App) State() state.View {
	return a.view
}

// Query returns the search box contents (for testing).
func (a App) Query() string {
	return a.input.Value()
}

// DetailOpen reports whether the detail pane is showing (for testing).
func (a App) DetailOpen() bool {
	return a.showDetail
}

// DebugOpen reports whether the debug overlay is showing (for testing).
func (a App) DebugOpen() bool {
	return a.showDebug
}

func msgTypeName(msg tea.Msg) string {
	switch msg.(type) {
	case tea.KeyMsg:
		return "KeyMsg"
	case tea.WindowSizeMsg:
		return "WindowSizeMsg"
	case debounce.Msg:
		return "debounce.Msg"
	case MoviesFetched:
		return "MoviesFetched"
	case TrendingLoaded:
		return "TrendingLoaded"
	case spinner.TickMsg:
		return "spinner.TickMsg"
	default:
		return "other"
	}
}
