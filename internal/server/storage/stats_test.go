package storage

import (
	"fmt"
	"testing"

	"chessindex/internal/position"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }

func TestTopMovesAggregation(t *testing.T) {
	s := newTestStore(t)
	dedup := NewDeduplicator()

	mustImport(t, s, dedup, openGame("A", "B", 2000, 2000, OutcomeWhiteWins, kingPawnPlies()))
	mustImport(t, s, dedup, openGame("C", "D", 2000, 2000, OutcomeDraw, kingPawnPlies()))
	mustImport(t, s, dedup, openGame("E", "F", 2000, 2000, OutcomeBlackWins, sicilianPlies()))

	stats, err := s.TopMoves(fenAfterE4, 10)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, MoveStats{SAN: "e5", Occurrences: 2, WhiteWins: 1, BlackWins: 0, Draws: 1}, stats[0])
	assert.Equal(t, MoveStats{SAN: "c5", Occurrences: 1, WhiteWins: 0, BlackWins: 1, Draws: 0}, stats[1])
}

func TestTopMovesTieBreaksOnNotation(t *testing.T) {
	s := newTestStore(t)
	dedup := NewDeduplicator()

	mustImport(t, s, dedup, openGame("A", "B", 2000, 2000, OutcomeWhiteWins, kingPawnPlies()))
	mustImport(t, s, dedup, openGame("C", "D", 2000, 2000, OutcomeBlackWins, sicilianPlies()))

	stats, err := s.TopMoves(fenAfterE4, 10)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	// Equal counts fall back to notation order.
	assert.Equal(t, "c5", stats[0].SAN)
	assert.Equal(t, "e5", stats[1].SAN)
}

func TestTopMovesExcludesUnfinishedGames(t *testing.T) {
	s := newTestStore(t)
	dedup := NewDeduplicator()

	mustImport(t, s, dedup, openGame("A", "B", 2000, 2000, OutcomeUnknown, kingPawnPlies()))
	mustImport(t, s, dedup, openGame("C", "D", 2000, 2000, OutcomeWhiteWins, sicilianPlies()))

	stats, err := s.TopMoves(fenAfterE4, 10)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "c5", stats[0].SAN)
}

func TestTopMovesRespectsLimit(t *testing.T) {
	s := newTestStore(t)
	dedup := NewDeduplicator()

	mustImport(t, s, dedup, openGame("A", "B", 2000, 2000, OutcomeWhiteWins, kingPawnPlies()))
	mustImport(t, s, dedup, openGame("C", "D", 2000, 2000, OutcomeDraw, kingPawnPlies()))
	mustImport(t, s, dedup, openGame("E", "F", 2000, 2000, OutcomeBlackWins, sicilianPlies()))

	stats, err := s.TopMoves(fenAfterE4, 1)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "e5", stats[0].SAN)
}

func TestTopMovesRejectsNonPositiveLimit(t *testing.T) {
	s := newTestStore(t)

	for _, limit := range []int{0, -5} {
		_, err := s.TopMoves(fenAfterE4, limit)
		assert.ErrorIs(t, err, ErrInvalidLimit, "limit %d", limit)
	}
}

func TestTopMovesUnknownPositionIsEmpty(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.TopMoves(fenAfterE4E5F4, 10)
	require.NoError(t, err)
	assert.NotNil(t, stats)
	assert.Empty(t, stats)
}

func TestSearchGamesOrdersByCombinedEloAndCapsResults(t *testing.T) {
	s := newTestStore(t)
	dedup := NewDeduplicator()

	for i := 0; i < 12; i++ {
		white := fmt.Sprintf("White %02d", i)
		black := fmt.Sprintf("Black %02d", i)
		mustImport(t, s, dedup, openGame(white, black, 1500+i*10, 1500+i*5, OutcomeWhiteWins, kingPawnPlies()))
	}

	results, err := s.SearchGames(fenAfterE4, GameFilter{})
	require.NoError(t, err)
	require.Len(t, results, SearchCap)

	assert.Equal(t, "White 11", results[0].White)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].CombinedElo, results[i].CombinedElo)
	}
}

func TestSearchGamesTieBreaksOnGameID(t *testing.T) {
	s := newTestStore(t)
	dedup := NewDeduplicator()

	first := mustImport(t, s, dedup, openGame("A", "B", 2000, 2000, OutcomeWhiteWins, kingPawnPlies()))
	second := mustImport(t, s, dedup, openGame("C", "D", 2000, 2000, OutcomeDraw, kingPawnPlies()))

	results, err := s.SearchGames(fenAfterE4, GameFilter{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, first, results[0].GameID)
	assert.Equal(t, second, results[1].GameID)
}

func TestSearchGamesMatchesOnlyGamesThroughPosition(t *testing.T) {
	s := newTestStore(t)
	dedup := NewDeduplicator()

	kingsGambit := []Ply{
		{TurnNo: 1, WhiteToMove: true, SAN: "e4", FENAfter: fenAfterE4},
		{TurnNo: 1, WhiteToMove: false, SAN: "e5", FENAfter: fenAfterE4E5},
		{TurnNo: 2, WhiteToMove: true, SAN: "f4", FENAfter: fenAfterE4E5F4},
	}
	want := mustImport(t, s, dedup, openGame("A", "B", 2200, 2400, OutcomeDraw, kingsGambit))
	mustImport(t, s, dedup, openGame("C", "D", 2000, 2000, OutcomeWhiteWins, kingPawnPlies()))

	// Only the longer game has a move played from the double king pawn position.
	results, err := s.SearchGames(fenAfterE4E5, GameFilter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, want, results[0].GameID)
}

func TestSearchGamesCountsRepeatedPositionOnce(t *testing.T) {
	s := newTestStore(t)

	const (
		afterNf3    = "rnbqkbnr/pppppppp/8/8/8/5N2/PPPPPPPP/RNBQKB1R b KQkq -"
		afterNf3Nf6 = "rnbqkb1r/pppppppp/5n2/8/8/5N2/PPPPPPPP/RNBQKB1R w KQkq -"
		afterNg1    = "rnbqkb1r/pppppppp/5n2/8/8/8/PPPPPPPP/RNBQKBNR b KQkq -"
	)

	// Both knights return home, so the starting position occurs twice
	// as a position-before within the same game.
	shuffle := []Ply{
		{TurnNo: 1, WhiteToMove: true, SAN: "Nf3", FENAfter: afterNf3},
		{TurnNo: 1, WhiteToMove: false, SAN: "Nf6", FENAfter: afterNf3Nf6},
		{TurnNo: 2, WhiteToMove: true, SAN: "Ng1", FENAfter: afterNg1},
		{TurnNo: 2, WhiteToMove: false, SAN: "Ng8", FENAfter: position.Start},
		{TurnNo: 3, WhiteToMove: true, SAN: "e4", FENAfter: fenAfterE4},
	}
	mustImport(t, s, NewDeduplicator(), openGame("A", "B", 2100, 2100, OutcomeDraw, shuffle))

	results, err := s.SearchGames(position.Start, GameFilter{})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchGamesFilters(t *testing.T) {
	s := newTestStore(t)
	dedup := NewDeduplicator()

	g1 := mustImport(t, s, dedup, openGame("Kasparov, Garry", "Karpov, Anatoly", 2800, 2750, OutcomeWhiteWins, kingPawnPlies()))
	g2 := mustImport(t, s, dedup, openGame("Karpov, Anatoly", "Kasparov, Garry", 2750, 2800, OutcomeDraw, kingPawnPlies()))
	g3 := mustImport(t, s, dedup, openGame("Short, Nigel", "Kasparov, Garry", 2650, 2800, OutcomeBlackWins, kingPawnPlies()))

	ids := func(results []GameSearchResult) []int64 {
		out := make([]int64, 0, len(results))
		for _, r := range results {
			out = append(out, r.GameID)
		}
		return out
	}

	t.Run("white elo lower bound is exclusive", func(t *testing.T) {
		results, err := s.SearchGames(fenAfterE4, GameFilter{WhiteMin: intp(2750)})
		require.NoError(t, err)
		assert.Equal(t, []int64{g1}, ids(results))
	})

	t.Run("white elo upper bound is exclusive", func(t *testing.T) {
		results, err := s.SearchGames(fenAfterE4, GameFilter{WhiteMax: intp(2750)})
		require.NoError(t, err)
		assert.Equal(t, []int64{g3}, ids(results))
	})

	t.Run("white name substring", func(t *testing.T) {
		results, err := s.SearchGames(fenAfterE4, GameFilter{WhiteName: strp("Karpov")})
		require.NoError(t, err)
		assert.Equal(t, []int64{g2}, ids(results))
	})

	t.Run("black name substring", func(t *testing.T) {
		results, err := s.SearchGames(fenAfterE4, GameFilter{BlackName: strp("Kasparov")})
		require.NoError(t, err)
		assert.Equal(t, []int64{g2, g3}, ids(results))
	})

	t.Run("outcome exact match", func(t *testing.T) {
		results, err := s.SearchGames(fenAfterE4, GameFilter{Outcome: strp(OutcomeBlackWins)})
		require.NoError(t, err)
		assert.Equal(t, []int64{g3}, ids(results))
	})

	t.Run("filters combine conjunctively", func(t *testing.T) {
		results, err := s.SearchGames(fenAfterE4, GameFilter{
			WhiteMin: intp(2600),
			Outcome:  strp(OutcomeDraw),
		})
		require.NoError(t, err)
		assert.Equal(t, []int64{g2}, ids(results))
	})

	t.Run("no match yields empty list", func(t *testing.T) {
		results, err := s.SearchGames(fenAfterE4, GameFilter{WhiteName: strp("Fischer")})
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})
}

func TestOutcomesByRatingBandAggregation(t *testing.T) {
	s := newTestStore(t)
	dedup := NewDeduplicator()

	mustImport(t, s, dedup, openGame("A", "B", 2100, 2150, OutcomeWhiteWins, kingPawnPlies()))
	mustImport(t, s, dedup, openGame("C", "D", 2050, 2080, OutcomeDraw, kingPawnPlies()))

	bands, err := s.OutcomesByRatingBand(fenAfterE4)
	require.NoError(t, err)
	require.Len(t, bands, 1)
	assert.Equal(t, RatingBandStats{Band: 2000, Occurrences: 2, WhiteWins: 1, BlackWins: 0, Draws: 1}, bands[0])
}

func TestOutcomesByRatingBandExcludesCrossBandGames(t *testing.T) {
	s := newTestStore(t)
	dedup := NewDeduplicator()

	mustImport(t, s, dedup, openGame("A", "B", 2199, 2205, OutcomeWhiteWins, kingPawnPlies()))
	mustImport(t, s, dedup, openGame("C", "D", 2205, 2199, OutcomeBlackWins, kingPawnPlies()))

	bands, err := s.OutcomesByRatingBand(fenAfterE4)
	require.NoError(t, err)
	assert.Empty(t, bands)
}

func TestOutcomesByRatingBandBoundaries(t *testing.T) {
	s := newTestStore(t)
	dedup := NewDeduplicator()

	// Black exactly at the band floor and just under the ceiling both
	// count; black exactly at the ceiling does not.
	mustImport(t, s, dedup, openGame("A", "B", 2000, 2000, OutcomeWhiteWins, kingPawnPlies()))
	mustImport(t, s, dedup, openGame("C", "D", 2000, 2199, OutcomeDraw, kingPawnPlies()))
	mustImport(t, s, dedup, openGame("E", "F", 2000, 2200, OutcomeBlackWins, kingPawnPlies()))

	bands, err := s.OutcomesByRatingBand(fenAfterE4)
	require.NoError(t, err)
	require.Len(t, bands, 1)
	assert.Equal(t, RatingBandStats{Band: 2000, Occurrences: 2, WhiteWins: 1, BlackWins: 0, Draws: 1}, bands[0])
}

func TestOutcomesByRatingBandOrdersBandsDescending(t *testing.T) {
	s := newTestStore(t)
	dedup := NewDeduplicator()

	mustImport(t, s, dedup, openGame("A", "B", 1850, 1820, OutcomeWhiteWins, kingPawnPlies()))
	mustImport(t, s, dedup, openGame("C", "D", 2250, 2260, OutcomeDraw, kingPawnPlies()))

	bands, err := s.OutcomesByRatingBand(fenAfterE4)
	require.NoError(t, err)
	require.Len(t, bands, 2)
	assert.Equal(t, 2200, bands[0].Band)
	assert.Equal(t, 1800, bands[1].Band)
}

func TestOutcomesByRatingBandExcludesUnfinishedGames(t *testing.T) {
	s := newTestStore(t)
	dedup := NewDeduplicator()

	mustImport(t, s, dedup, openGame("A", "B", 2000, 2050, OutcomeUnknown, kingPawnPlies()))

	bands, err := s.OutcomesByRatingBand(fenAfterE4)
	require.NoError(t, err)
	assert.Empty(t, bands)
}
