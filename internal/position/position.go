// Package position defines the canonical position key used to join
// statistics across games. A key is the first four FEN fields (piece
// placement, side to move, castling rights, en-passant target); the
// halfmove clock and fullmove number are dropped so that the same
// position reached through different games produces the same key.
package position

import (
	"fmt"
	"strings"
)

// Start is the key of the standard starting position.
const Start = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -"

// Normalize converts a 4- or 6-field FEN string into a canonical
// position key. It validates each field and returns an error for
// anything that could not have come from a legal board state.
func Normalize(fen string) (string, error) {
	fields := strings.Fields(fen)
	if len(fields) != 4 && len(fields) != 6 {
		return "", fmt.Errorf("position key: expected 4 or 6 FEN fields, got %d", len(fields))
	}

	if err := validatePlacement(fields[0]); err != nil {
		return "", err
	}
	if fields[1] != "w" && fields[1] != "b" {
		return "", fmt.Errorf("position key: invalid side to move %q", fields[1])
	}
	if !validCastling(fields[2]) {
		return "", fmt.Errorf("position key: invalid castling rights %q", fields[2])
	}
	if !validEnPassant(fields[3]) {
		return "", fmt.Errorf("position key: invalid en-passant target %q", fields[3])
	}

	return strings.Join(fields[:4], " "), nil
}

func validatePlacement(placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("position key: expected 8 ranks, got %d", len(ranks))
	}
	for _, rank := range ranks {
		width := 0
		for _, c := range rank {
			switch {
			case c >= '1' && c <= '8':
				width += int(c - '0')
			case strings.ContainsRune("pnbrqkPNBRQK", c):
				width++
			default:
				return fmt.Errorf("position key: invalid piece placement char %q", c)
			}
		}
		if width != 8 {
			return fmt.Errorf("position key: rank %q spans %d files", rank, width)
		}
	}
	return nil
}

func validCastling(s string) bool {
	if s == "-" {
		return true
	}
	if s == "" || len(s) > 4 {
		return false
	}
	// Each right appears at most once, in KQkq order.
	order := "KQkq"
	idx := 0
	for _, c := range s {
		pos := strings.IndexRune(order[idx:], c)
		if pos < 0 {
			return false
		}
		idx += pos + 1
	}
	return true
}

func validEnPassant(s string) bool {
	if s == "-" {
		return true
	}
	if len(s) != 2 {
		return false
	}
	return s[0] >= 'a' && s[0] <= 'h' && (s[1] == '3' || s[1] == '6')
}
