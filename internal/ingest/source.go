package ingest

import (
	"fmt"
	"strconv"

	"chessindex/internal/position"
	"chessindex/internal/server/storage"

	"github.com/notnil/chess"
)

// UnknownName is the PGN placeholder for a missing player or event
// name. Records carrying it hold no analytical value and would fill
// the entity tables with meaningless placeholders, so they are skipped.
const UnknownName = "?"

var notation = chess.AlgebraicNotation{}

// convertGame turns a parsed PGN game into an importable record. The
// chess engine is the source of truth for notation and resulting
// board state; this only reshapes and canonicalizes its output.
func convertGame(g *chess.Game) (storage.GameImport, error) {
	imp := storage.GameImport{
		White:   tagValue(g, "White"),
		Black:   tagValue(g, "Black"),
		Event:   tagValue(g, "Event"),
		Outcome: g.Outcome().String(),
		Date:    tagValue(g, "Date"),
	}
	if imp.Date == "" {
		imp.Date = "????.??.??"
	}

	var err error
	if imp.WhiteElo, err = parseElo(tagValue(g, "WhiteElo")); err != nil {
		return imp, fmt.Errorf("white rating: %w", err)
	}
	if imp.BlackElo, err = parseElo(tagValue(g, "BlackElo")); err != nil {
		return imp, fmt.Errorf("black rating: %w", err)
	}

	positions := g.Positions()
	moves := g.Moves()
	if len(positions) != len(moves)+1 {
		return imp, fmt.Errorf("inconsistent move list: %d positions for %d moves", len(positions), len(moves))
	}

	start, err := position.Normalize(positions[0].String())
	if err != nil {
		return imp, fmt.Errorf("starting position: %w", err)
	}
	if start != position.Start {
		return imp, fmt.Errorf("nonstandard starting position")
	}

	imp.Plies = make([]storage.Ply, 0, len(moves))
	for i, mv := range moves {
		after, err := position.Normalize(positions[i+1].String())
		if err != nil {
			return imp, fmt.Errorf("ply %d: %w", i+1, err)
		}
		imp.Plies = append(imp.Plies, storage.Ply{
			TurnNo:      i/2 + 1,
			WhiteToMove: positions[i].Turn() == chess.White,
			SAN:         notation.Encode(positions[i], mv),
			FENAfter:    after,
		})
	}

	return imp, nil
}

func tagValue(g *chess.Game, key string) string {
	if tp := g.GetTagPair(key); tp != nil {
		return tp.Value
	}
	return ""
}

func parseElo(s string) (int, error) {
	if s == "" || s == "?" || s == "-" {
		return 0, fmt.Errorf("missing rating")
	}
	elo, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid rating %q", s)
	}
	return elo, nil
}
