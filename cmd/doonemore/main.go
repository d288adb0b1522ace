package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meltforce/doonemore/internal/config"
	"github.com/meltforce/doonemore/internal/server"
	"github.com/meltforce/doonemore/internal/storage"
	"github.com/meltforce/doonemore/internal/tracker"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("doonemore", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))

	store, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Dir, cfg.Storage.CacheMB)
	if err != nil {
		log.Error("failed to open store", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	log.Info("store opened", "backend", cfg.Storage.Backend, "dir", cfg.Storage.Dir)

	ctx := context.Background()
	tr := tracker.New(ctx, storage.NewRepo(store, log), log)

	srv := server.New(tr, cfg.Theme, cfg.Auth.APIKey, log)
	if cfg.Auth.APIKey == "" {
		log.Warn("no API key configured, API is open to anything that can reach it")
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		log.Error("failed to listen", "addr", cfg.Server.Addr(), "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", "addr", ln.Addr().String(), "version", Version)
		if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
