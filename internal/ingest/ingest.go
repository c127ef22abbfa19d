// Package ingest runs the batch ingestion pipeline: it reads PGN game
// records, converts them through the move-legality engine into
// normalized rows, and writes them one transaction per game. Malformed
// records are skipped with an explicit reason and never abort a batch.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"chessindex/internal/server/storage"

	"github.com/google/uuid"
	"github.com/notnil/chess"
	"github.com/rs/zerolog"
)

// Skip records why one source game was not ingested.
type Skip struct {
	Index  int    `json:"index"`
	White  string `json:"white,omitempty"`
	Black  string `json:"black,omitempty"`
	Reason string `json:"reason"`
}

// Report aggregates the per-record results of one ingestion run.
type Report struct {
	RunID    string `json:"runId"`
	Ingested int    `json:"ingested"`
	Skipped  int    `json:"skipped"`
	Skips    []Skip `json:"skips,omitempty"`
}

// Ingestor is a single-writer batch loader. Its deduplicator caches
// live exactly as long as the run; a fresh Ingestor starts cold and
// relies on the store's insert-or-fetch semantics.
type Ingestor struct {
	store *storage.Store
	dedup *storage.Deduplicator
	log   zerolog.Logger
}

// New creates an Ingestor for one run against the given store.
func New(store *storage.Store, log zerolog.Logger) *Ingestor {
	return &Ingestor{
		store: store,
		dedup: storage.NewDeduplicator(),
		log:   log,
	}
}

// IngestFile ingests every game in a PGN file.
func (in *Ingestor) IngestFile(ctx context.Context, path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pgn: %w", err)
	}
	defer f.Close()

	return in.Ingest(ctx, f)
}

// Ingest reads PGN game records from r until end of input or
// cancellation. Each record either commits fully or is skipped, a
// record whose movetext fails to decode included; a partial report is
// returned alongside any read or cancellation error.
func (in *Ingestor) Ingest(ctx context.Context, r io.Reader) (*Report, error) {
	report := &Report{RunID: uuid.New().String()}
	in.log.Info().Str("run_id", report.RunID).Msg("ingest run started")

	startTime := time.Now()
	lastLog := time.Now()
	index := 0

	records := newRecordScanner(r)
	for {
		select {
		case <-ctx.Done():
			in.logSummary(report, startTime)
			return report, ctx.Err()
		default:
		}

		raw, ok, err := records.next()
		if err != nil {
			in.logSummary(report, startTime)
			return report, fmt.Errorf("pgn scan: %w", err)
		}
		if !ok {
			break
		}

		index++
		var skip *Skip
		game, err := decodeRecord(raw)
		if err != nil {
			skip = &Skip{Index: index, Reason: fmt.Sprintf("unparseable record: %v", err)}
		} else {
			skip = in.ingestOne(index, game, report)
		}
		if skip != nil {
			report.Skipped++
			report.Skips = append(report.Skips, *skip)
			in.log.Warn().
				Int("index", skip.Index).
				Str("white", skip.White).
				Str("black", skip.Black).
				Str("reason", skip.Reason).
				Msg("record skipped")
		}

		if time.Since(lastLog) > 10*time.Second {
			in.log.Info().
				Int("ingested", report.Ingested).
				Int("skipped", report.Skipped).
				Float64("games_per_sec", float64(index)/time.Since(startTime).Seconds()).
				Msg("ingest progress")
			lastLog = time.Now()
		}
	}

	in.logSummary(report, startTime)
	return report, nil
}

// ingestOne processes a single game, returning a Skip when the record
// is dropped. Records are whole-game-or-nothing: ImportGame rolls back
// on any failure.
func (in *Ingestor) ingestOne(index int, game *chess.Game, report *Report) *Skip {
	white := tagValue(game, "White")
	black := tagValue(game, "Black")
	event := tagValue(game, "Event")

	if white == UnknownName || white == "" ||
		black == UnknownName || black == "" ||
		event == UnknownName || event == "" {
		return &Skip{Index: index, White: white, Black: black, Reason: "unknown player or event name"}
	}

	imp, err := convertGame(game)
	if err != nil {
		return &Skip{Index: index, White: white, Black: black, Reason: err.Error()}
	}

	gameID, err := in.store.ImportGame(in.dedup, imp)
	if err != nil {
		return &Skip{Index: index, White: white, Black: black, Reason: fmt.Sprintf("import failed: %v", err)}
	}

	report.Ingested++
	in.log.Debug().
		Int64("game_id", gameID).
		Str("white", white).
		Str("black", black).
		Int("plies", len(imp.Plies)).
		Msg("game ingested")
	return nil
}

func (in *Ingestor) logSummary(report *Report, startTime time.Time) {
	in.log.Info().
		Str("run_id", report.RunID).
		Int("ingested", report.Ingested).
		Int("skipped", report.Skipped).
		Dur("elapsed", time.Since(startTime)).
		Msg("ingest run complete")
}
