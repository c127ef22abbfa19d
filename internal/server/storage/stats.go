package storage

import (
	"fmt"
	"strings"
)

// SearchCap bounds position searches: this is an exploratory "notable
// games" view ordered by combined rating, not a full-scan export.
const SearchCap = 10

// SearchGames returns up to SearchCap games containing a move played
// from the given position and satisfying every supplied filter,
// strongest pairings first. Ties break on game id so output is stable.
func (s *Store) SearchGames(fenBefore string, f GameFilter) ([]GameSearchResult, error) {
	query := `SELECT DISTINCT g.game_id, w.name, b.name, e.name, g.outcome, g.date,
		rw.elo, rb.elo, (rw.elo + rb.elo) AS combined_elo
		FROM moves m
		JOIN games g ON m.game_id = g.game_id
		JOIN players w ON g.white_player_id = w.player_id
		JOIN players b ON g.black_player_id = b.player_id
		JOIN events e ON g.event_id = e.event_id
		JOIN ratings rw ON rw.game_id = g.game_id AND rw.player_id = g.white_player_id
		JOIN ratings rb ON rb.game_id = g.game_id AND rb.player_id = g.black_player_id
		WHERE m.fen_before = ?`
	args := []any{fenBefore}

	clauses, filterArgs := f.predicates()
	if len(clauses) > 0 {
		query += " AND " + strings.Join(clauses, " AND ")
		args = append(args, filterArgs...)
	}

	query += ` ORDER BY combined_elo DESC, g.game_id ASC LIMIT ?`
	args = append(args, SearchCap)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search games: %w", err)
	}
	defer rows.Close()

	results := []GameSearchResult{}
	for rows.Next() {
		var r GameSearchResult
		err := rows.Scan(
			&r.GameID, &r.White, &r.Black, &r.Event, &r.Outcome, &r.Date,
			&r.WhiteElo, &r.BlackElo, &r.CombinedElo,
		)
		if err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return results, nil
}

// TopMoves ranks the responses played from the given position by
// occurrence count, with per-outcome tallies. Games without a terminal
// outcome carry no signal and are excluded. Count ties break on the
// notation string so output is deterministic.
func (s *Store) TopMoves(fenBefore string, limit int) ([]MoveStats, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	rows, err := s.db.Query(
		`SELECT m.san, COUNT(*) AS occurrences,
			COUNT(CASE WHEN g.outcome = '1-0' THEN 1 END) AS wwins,
			COUNT(CASE WHEN g.outcome = '0-1' THEN 1 END) AS bwins,
			COUNT(CASE WHEN g.outcome = '1/2-1/2' THEN 1 END) AS draws
		 FROM moves m
		 JOIN games g ON m.game_id = g.game_id
		 WHERE m.fen_before = ? AND g.outcome <> '*'
		 GROUP BY m.san
		 ORDER BY occurrences DESC, m.san ASC
		 LIMIT ?`,
		fenBefore, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("top moves: %w", err)
	}
	defer rows.Close()

	stats := []MoveStats{}
	for rows.Next() {
		var m MoveStats
		if err := rows.Scan(&m.SAN, &m.Occurrences, &m.WhiteWins, &m.BlackWins, &m.Draws); err != nil {
			return nil, fmt.Errorf("scan move stats: %w", err)
		}
		stats = append(stats, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return stats, nil
}

// OutcomesByRatingBand partitions games through the given position into
// 200-wide rating bands anchored at white's elo. A band represents
// games between comparably-rated opponents: a game counts only when
// black's elo also falls inside [band, band+200), so cross-band games
// belong to no band at all.
func (s *Store) OutcomesByRatingBand(fenBefore string) ([]RatingBandStats, error) {
	rows, err := s.db.Query(
		`SELECT (rw.elo / 200) * 200 AS band, COUNT(*) AS occurrences,
			COUNT(CASE WHEN g.outcome = '1-0' THEN 1 END) AS wwins,
			COUNT(CASE WHEN g.outcome = '0-1' THEN 1 END) AS bwins,
			COUNT(CASE WHEN g.outcome = '1/2-1/2' THEN 1 END) AS draws
		 FROM moves m
		 JOIN games g ON m.game_id = g.game_id
		 JOIN ratings rw ON rw.game_id = g.game_id AND rw.player_id = g.white_player_id
		 JOIN ratings rb ON rb.game_id = g.game_id AND rb.player_id = g.black_player_id
		 WHERE m.fen_before = ? AND g.outcome <> '*'
			AND rb.elo >= (rw.elo / 200) * 200
			AND rb.elo < (rw.elo / 200) * 200 + 200
		 GROUP BY band
		 ORDER BY band DESC, occurrences DESC`,
		fenBefore,
	)
	if err != nil {
		return nil, fmt.Errorf("outcomes by rating band: %w", err)
	}
	defer rows.Close()

	bands := []RatingBandStats{}
	for rows.Next() {
		var b RatingBandStats
		if err := rows.Scan(&b.Band, &b.Occurrences, &b.WhiteWins, &b.BlackWins, &b.Draws); err != nil {
			return nil, fmt.Errorf("scan band stats: %w", err)
		}
		bands = append(bands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return bands, nil
}
