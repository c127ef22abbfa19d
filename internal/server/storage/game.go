package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"chessindex/internal/position"
)

// ImportGame writes one game and its moves and ratings in a single
// transaction: the unit of ingestion is one full game or nothing, so
// moves and ratings never reference a half-written game. The running
// position-before chain starts at the canonical starting position and
// advances through each ply's resulting key.
func (s *Store) ImportGame(dedup *Deduplicator, g GameImport) (int64, error) {
	if !ValidOutcome(g.Outcome) {
		return 0, fmt.Errorf("invalid outcome %q", g.Outcome)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	// Staged name resolutions share the transaction's fate.
	defer dedup.Discard()

	whiteID, err := dedup.ResolvePlayer(tx, g.White)
	if err != nil {
		return 0, err
	}
	blackID, err := dedup.ResolvePlayer(tx, g.Black)
	if err != nil {
		return 0, err
	}
	eventID, err := dedup.ResolveEvent(tx, g.Event)
	if err != nil {
		return 0, err
	}

	res, err := tx.Exec(
		`INSERT INTO games (white_player_id, black_player_id, event_id, outcome, date)
		 VALUES (?, ?, ?, ?, ?)`,
		whiteID, blackID, eventID, g.Outcome, g.Date,
	)
	if err != nil {
		return 0, fmt.Errorf("insert game: %w", err)
	}
	gameID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("game id: %w", err)
	}

	fenBefore := position.Start
	for _, ply := range g.Plies {
		_, err := tx.Exec(
			`INSERT INTO moves (game_id, turn_no, white_to_move, san, fen_before, fen_after)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			gameID, ply.TurnNo, ply.WhiteToMove, ply.SAN, fenBefore, ply.FENAfter,
		)
		if err != nil {
			return 0, fmt.Errorf("insert move %d: %w", ply.TurnNo, err)
		}
		fenBefore = ply.FENAfter
	}

	for _, r := range []struct {
		playerID int64
		elo      int
	}{{whiteID, g.WhiteElo}, {blackID, g.BlackElo}} {
		_, err := tx.Exec(
			`INSERT INTO ratings (game_id, player_id, elo) VALUES (?, ?, ?)`,
			gameID, r.playerID, r.elo,
		)
		if err != nil {
			return 0, fmt.Errorf("insert rating: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit game: %w", err)
	}
	dedup.Commit()
	return gameID, nil
}

// GetGame returns a game's joined metadata plus its full ordered move
// list. A game with zero recorded plies yields an empty move list.
func (s *Store) GetGame(gameID int64) (*GameDetail, error) {
	var d GameDetail
	err := s.db.QueryRow(
		`SELECT g.game_id, w.name, b.name, e.name, g.outcome, g.date, rw.elo, rb.elo
		 FROM games g
		 JOIN players w ON g.white_player_id = w.player_id
		 JOIN players b ON g.black_player_id = b.player_id
		 JOIN events e ON g.event_id = e.event_id
		 JOIN ratings rw ON rw.game_id = g.game_id AND rw.player_id = g.white_player_id
		 JOIN ratings rb ON rb.game_id = g.game_id AND rb.player_id = g.black_player_id
		 WHERE g.game_id = ?`,
		gameID,
	).Scan(
		&d.Data.GameID, &d.Data.White, &d.Data.Black, &d.Data.Event,
		&d.Data.Outcome, &d.Data.Date, &d.Data.WhiteElo, &d.Data.BlackElo,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query game: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT turn_no, white_to_move, san, fen_before, fen_after
		 FROM moves WHERE game_id = ?
		 ORDER BY turn_no, white_to_move DESC`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("query moves: %w", err)
	}
	defer rows.Close()

	d.Moves = []MoveRow{}
	for rows.Next() {
		var m MoveRow
		if err := rows.Scan(&m.TurnNo, &m.WhiteToMove, &m.SAN, &m.FENBefore, &m.FENAfter); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		d.Moves = append(d.Moves, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return &d, nil
}
