package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/abelbrown/reelfind/internal/app"
	"github.com/abelbrown/reelfind/internal/trending"
)

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file")
	limit := fs.Int("limit", 10, fmt.Sprintf("Number of entries (max %d)", trending.MaxLimit))
	fs.Parse(os.Args[1:])

	cfg := loadConfig(*configPath)
	st, closeFn, err := app.OpenTrending(cfg.Trending, cfg.TMDB.Timeout)
	if err != nil {
		log.Fatalf("failed to open trending backend: %v", err)
	}
	if closeFn != nil {
		defer closeFn()
	}

	entries, err := st.Top(context.Background(), *limit)
	if err != nil {
		log.Fatalf("failed to read trending: %v", err)
	}

	fmt.Printf("Backend:               %s\n", cfg.Trending.Backend)
	fmt.Printf("Entries:               %d\n", len(entries))
	if len(entries) == 0 {
		return
	}

	total := 0
	for _, e := range entries {
		total += e.Count
	}
	fmt.Printf("Searches (shown):      %d\n\n", total)

	for _, e := range entries {
		title := e.Title
		if title == "" {
			title = "-"
		}
		poster := "no poster"
		if e.PosterURL != "" {
			poster = "poster"
		}
		fmt.Printf("  %2d. %-24s %5d  %-30s %s\n", e.Rank, truncate(e.Term, 24), e.Count, truncate(title, 30), poster)
	}
}
