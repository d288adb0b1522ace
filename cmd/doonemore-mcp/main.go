package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/doonemore/internal/config"
	"github.com/meltforce/doonemore/internal/mcp"
	"github.com/meltforce/doonemore/internal/storage"
	"github.com/meltforce/doonemore/internal/tracker"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	serverURL := flag.String("server", "", "doonemore server URL; when set, tools talk to it instead of the local store")
	apiKey := flag.String("api-key", "", "API key for -server (defaults to DOONEMORE_AUTH_API_KEY)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("doonemore-mcp", Version)
		return
	}

	// stdout carries the MCP protocol, so logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	if *serverURL != "" {
		key := *apiKey
		if key == "" {
			key = os.Getenv("DOONEMORE_AUTH_API_KEY")
		}
		ds = mcp.NewHTTPClient(strings.TrimRight(*serverURL, "/"), key)
		log.Info("using remote data source", "server", *serverURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		store, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Dir, cfg.Storage.CacheMB)
		if err != nil {
			log.Error("failed to open store", "backend", cfg.Storage.Backend, "error", err)
			os.Exit(1)
		}
		defer store.Close()
		ds = mcp.NewLocal(tracker.New(context.Background(), storage.NewRepo(store, log), log))
		log.Info("using local store", "backend", cfg.Storage.Backend, "dir", cfg.Storage.Dir)
	}

	s := mcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
