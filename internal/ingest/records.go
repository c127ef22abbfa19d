package ingest

import (
	"bufio"
	"io"
	"strings"

	"github.com/notnil/chess"
)

// recordScanner splits a PGN stream into raw game records before any
// decoding happens. Each record is decoded on its own, so one record
// with a broken move list cannot take the rest of the stream with it.
type recordScanner struct {
	lines *bufio.Scanner
}

func newRecordScanner(r io.Reader) *recordScanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &recordScanner{lines: s}
}

// next returns the raw text of the next record: its tag section plus
// its movetext. A record ends at the first blank line after movetext
// began, or at end of input.
func (rs *recordScanner) next() (string, bool, error) {
	var b strings.Builder
	inMoves := false

	for rs.lines.Scan() {
		line := rs.lines.Text()
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			if inMoves {
				return b.String(), true, nil
			}
			continue
		}

		if !strings.HasPrefix(trimmed, "[") {
			if !inMoves && b.Len() > 0 {
				b.WriteString("\n")
			}
			inMoves = true
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if err := rs.lines.Err(); err != nil {
		return "", false, err
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", false, nil
	}
	return b.String(), true, nil
}

// decodeRecord parses a single raw record through the chess engine.
func decodeRecord(raw string) (*chess.Game, error) {
	opt, err := chess.PGN(strings.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return chess.NewGame(opt), nil
}
