// Package main implements the batch PGN ingestion tool that builds the
// position index consumed by the API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chessindex/internal/ingest"
	"chessindex/internal/logx"
	"chessindex/internal/server/storage"
)

func main() {
	defaultDB := os.Getenv("CHESSINDEX_DB")

	var (
		dbPath    = flag.String("db", defaultDB, "Path to SQLite database file (required)")
		pgnPath   = flag.String("pgn", "", "Path to PGN file (required)")
		showSkips = flag.Bool("show-skips", false, "Print every skipped record with its reason")
	)
	flag.Parse()

	logger := logx.New()

	if *dbPath == "" || *pgnPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: chessindex-ingest -db <file.db> -pgn <file.pgn>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := storage.NewStore(*dbPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("open storage")
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		logger.Fatal().Err(err).Msg("initialize schema")
	}

	logger.Info().Str("pgn", *pgnPath).Str("db", *dbPath).Msg("starting ingest")

	in := ingest.New(store, logger)
	report, err := in.IngestFile(ctx, *pgnPath)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("ingest failed")
	}

	if report != nil && *showSkips {
		for _, s := range report.Skips {
			fmt.Printf("skipped #%d %s - %s: %s\n", s.Index, s.White, s.Black, s.Reason)
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
}
