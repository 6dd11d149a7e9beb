// Command obs is the reelfind debug CLI.
//
// Usage:
//
//	obs                     Show help
//	obs events              JSONL event log viewer
//	obs stats               Trending counter statistics
//	obs search <query>      One-shot movie search with timings
package main

import (
	"fmt"
	"os"
)

const usage = `obs - reelfind debug CLI

Usage:
  obs <command> [flags]

Commands:
  events      JSONL event log viewer
  stats       Trending counter statistics
  search      One-shot movie search (requires a TMDB API key)

Environment:
  TMDB_API_KEY         TMDB v4 read access token
  REELFIND_LOG_PATH    Event log location (default ~/.reelfind/reelfind.jsonl)

Run 'obs <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "events":
		runEvents()
	case "stats":
		runStats()
	case "search":
		runSearch()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "obs: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
