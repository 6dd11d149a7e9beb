// Command trendingd serves the trending search counter over HTTP.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abelbrown/reelfind/internal/app"
	"github.com/abelbrown/reelfind/internal/config"
	"github.com/abelbrown/reelfind/internal/otel"
	"github.com/abelbrown/reelfind/internal/trending"
)

func main() {
	configPath := flag.String("config", "", "Config file (default ~/.config/reelfind/config.toml)")
	addr := flag.String("addr", "", "Listen address (overrides server.addr)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.New(cfg, app.Options{Comp: "trendingd", LocalOnly: true})
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer rt.Close()

	srv := trending.NewServer(rt.Trending, trending.ServerOptions{
		Token:  cfg.Server.Token,
		Logger: rt.Log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Printf("trendingd listening on %s", cfg.Server.Addr)
		errCh <- srv.Listen(cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			rt.Log.Error(otel.KindError, "trendingd", err)
			log.Printf("Server failed: %v", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown failed: %v", err)
		}
	}
}
