package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Position keys used across the storage tests. Each is the canonical
// four-field form of a well-known opening position.
const (
	fenAfterE4     = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3"
	fenAfterE4E5   = "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6"
	fenAfterE4E5F4 = "rnbqkbnr/pppp1ppp/8/4p3/4PP2/8/PPPP2PP/RNBQKBNR b KQkq f3"
	fenAfterE4C5   = "rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq c6"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.InitDB())
	return s
}

func kingPawnPlies() []Ply {
	return []Ply{
		{TurnNo: 1, WhiteToMove: true, SAN: "e4", FENAfter: fenAfterE4},
		{TurnNo: 1, WhiteToMove: false, SAN: "e5", FENAfter: fenAfterE4E5},
	}
}

func sicilianPlies() []Ply {
	return []Ply{
		{TurnNo: 1, WhiteToMove: true, SAN: "e4", FENAfter: fenAfterE4},
		{TurnNo: 1, WhiteToMove: false, SAN: "c5", FENAfter: fenAfterE4C5},
	}
}

func openGame(white, black string, whiteElo, blackElo int, outcome string, plies []Ply) GameImport {
	return GameImport{
		White:    white,
		Black:    black,
		Event:    "Test Open",
		Outcome:  outcome,
		Date:     "2024.01.15",
		WhiteElo: whiteElo,
		BlackElo: blackElo,
		Plies:    plies,
	}
}

func mustImport(t *testing.T, s *Store, dedup *Deduplicator, g GameImport) int64 {
	t.Helper()

	id, err := s.ImportGame(dedup, g)
	require.NoError(t, err)
	return id
}

func countRows(t *testing.T, s *Store, table string) int64 {
	t.Helper()

	counts, err := s.TableCounts()
	require.NoError(t, err)
	return counts[table]
}
