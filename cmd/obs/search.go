package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/abelbrown/reelfind/internal/app"
	"github.com/abelbrown/reelfind/internal/otel"
)

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file")
	top := fs.Int("top", 10, "Number of results to print per query")
	fs.Parse(os.Args[1:])

	queries := fs.Args()
	if len(queries) == 0 {
		fmt.Fprintln(os.Stderr, "usage: obs search [--top N] <query> [query...]")
		os.Exit(1)
	}

	cfg := loadConfig(*configPath)
	if !cfg.HasAPIKey() {
		fmt.Fprintln(os.Stderr, "error: a TMDB API key is required")
		fmt.Fprintln(os.Stderr, "  export TMDB_API_KEY=... or set tmdb.api_key in the config file")
		os.Exit(1)
	}

	rt, err := app.New(cfg, app.Options{Comp: "obs"})
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	defer rt.Close()

	ctx := context.Background()
	for _, query := range queries {
		fmt.Printf("\n>>> QUERY: %q\n", query)
		fmt.Printf("    %s\n", rt.TMDB.URL(query))
		fmt.Println(strings.Repeat("-", 80))

		t0 := time.Now()
		out := rt.Search.Fetch(ctx, query)
		dur := time.Since(t0)

		if out.ErrorMessage != "" {
			fmt.Printf("  ERROR: %s (%v)\n", out.ErrorMessage, out.Err)
			continue
		}
		fmt.Printf("  %d results in %v\n\n", len(out.Movies), dur.Round(time.Millisecond))
		for i, m := range out.Movies {
			if i >= *top {
				break
			}
			year := m.Year()
			if year == "" {
				year = "N/A"
			}
			fmt.Printf("  %2d. [%4.1f] %s (%s)\n", i+1, m.VoteAverage, truncate(m.Title, 60), year)
		}
	}

	// Counter writes are best effort; report what this run recorded.
	if stats := rt.Ring.Stats(); stats[otel.KindTrendingIncrement] > 0 || stats[otel.KindTrendingError] > 0 {
		fmt.Printf("\ntrending: %d counted, %d errors\n", stats[otel.KindTrendingIncrement], stats[otel.KindTrendingError])
	}
	fmt.Println()
}
