// Command reelfind-mcp serves movie search and trending as MCP tools over stdio.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/abelbrown/reelfind/internal/app"
	"github.com/abelbrown/reelfind/internal/config"
	"github.com/abelbrown/reelfind/internal/mcpsrv"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "Config file (default ~/.config/reelfind/config.toml)")
	flag.Parse()

	// stdout carries the protocol; diagnostics go to stderr.
	log.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	rt, err := app.New(cfg, app.Options{Comp: "mcp"})
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer rt.Close()

	server := mcpsrv.NewServer(rt.Search, version)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Printf("stdio mcp server failed: %v", err)
	}
}
