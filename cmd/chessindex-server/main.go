// Package main implements the chess position statistics API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chessindex/cmd/chessindex-server/cli"
	"chessindex/internal/logx"
	"chessindex/internal/server/http"
	"chessindex/internal/server/storage"
)

const gracefulShutdownTimeout = time.Second * 5

func main() {
	// Check for CLI database commands
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "CLI error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	defaultDB := os.Getenv("CHESSINDEX_DB")
	defaultAddr := os.Getenv("CHESSINDEX_ADDR")
	if defaultAddr == "" {
		defaultAddr = "localhost:8080"
	}

	var (
		addr    = flag.String("addr", defaultAddr, "API server listen address")
		dbPath  = flag.String("db", defaultDB, "Path to SQLite database file (required)")
		dev     = flag.Bool("dev", false, "Development mode (relaxed rate limits)")
		pidPath = flag.String("pid", "", "Optional path to write PID file")
		pidLock = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
	)
	flag.Parse()

	logger := logx.New()

	if *dbPath == "" {
		logger.Fatal().Msg("database path required (-db or CHESSINDEX_DB)")
	}
	if *pidLock && *pidPath == "" {
		logger.Fatal().Msg("-pid-lock flag requires the -pid flag to be set")
	}

	if *pidPath != "" {
		cleanup, err := managePIDFile(*pidPath, *pidLock)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to manage PID file")
		}
		defer cleanup()
		logger.Info().Str("path", *pidPath).Bool("lock", *pidLock).Msg("PID file created")
	}

	store, err := storage.NewStore(*dbPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open storage")
	}
	if err := store.InitDB(); err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize schema")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close storage cleanly")
		}
	}()

	app := http.NewFiberApp(store, *dev)

	go func() {
		logger.Info().
			Str("addr", *addr).
			Str("db", *dbPath).
			Bool("dev", *dev).
			Msg("chess index API server starting")
		logger.Info().Msgf("endpoints: http://%s/api/v1/games, /api/v1/positions/{moves,outcomes}", *addr)

		if err := app.Listen(*addr); err != nil {
			logger.Error().Err(err).Msg("API server listen error")
		}
	}()

	// Wait for an interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}
