// Command reelfind is the terminal movie finder.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/reelfind/internal/app"
	"github.com/abelbrown/reelfind/internal/config"
	"github.com/abelbrown/reelfind/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "Config file (default ~/.config/reelfind/config.toml)")
	initConfig := flag.Bool("init-config", false, "Write the default config file and exit")
	flag.Parse()

	if *initConfig {
		path := *configPath
		if path == "" {
			path = config.ConfigPath()
		}
		if _, err := os.Stat(path); err == nil {
			log.Fatalf("Config already exists at %s", path)
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Wrote %s\n", path)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if !cfg.HasAPIKey() {
		fmt.Fprintln(os.Stderr, "warning: no TMDB API key configured; set TMDB_API_KEY or run reelfind -init-config")
	}

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := app.New(cfg, app.Options{Comp: "tui"})
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer rt.Close()

	// Create UI app with dependency injection
	appCfg := ui.AppConfig{
		FetchMovies: func(query string, seq uint64) tea.Cmd {
			return func() tea.Msg {
				out := rt.Search.FetchSeq(ctx, query, seq)
				return ui.MoviesFetched{
					Seq:          seq,
					Query:        query,
					Movies:       out.Movies,
					ErrorMessage: out.ErrorMessage,
				}
			}
		},
		LoadTrending: func() tea.Cmd {
			return func() tea.Msg {
				entries, err := rt.Search.Trending(ctx, cfg.Search.TrendingLimit)
				return ui.TrendingLoaded{Entries: entries, Err: err}
			}
		},
		Debounce:      cfg.Search.Debounce,
		TrendingLimit: cfg.Search.TrendingLimit,
		Ring:          rt.Ring,
		Logger:        rt.Log,
	}

	program := tea.NewProgram(ui.NewApp(appCfg), tea.WithAltScreen())

	// Run UI (blocks until quit)
	if _, err := program.Run(); err != nil {
		log.Printf("Error running program: %v", err)
	}
}
