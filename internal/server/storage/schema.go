package storage

// Game outcomes use PGN result notation. '*' marks an incomplete game;
// such games are ingested but excluded from statistics.
const (
	OutcomeWhiteWins = "1-0"
	OutcomeBlackWins = "0-1"
	OutcomeDraw      = "1/2-1/2"
	OutcomeUnknown   = "*"
)

// ValidOutcome reports whether s is one of the four PGN result strings.
func ValidOutcome(s string) bool {
	switch s {
	case OutcomeWhiteWins, OutcomeBlackWins, OutcomeDraw, OutcomeUnknown:
		return true
	}
	return false
}

// GameImport is one fully parsed game record handed to ImportGame.
// Ply FENs must already be canonical position keys.
type GameImport struct {
	White    string
	Black    string
	Event    string
	Outcome  string
	Date     string
	WhiteElo int
	BlackElo int
	Plies    []Ply
}

// Ply is a single half-move within an imported game.
type Ply struct {
	TurnNo      int    // fullmove number, shared by both colors
	WhiteToMove bool   // disambiguates white's vs black's move within the turn
	SAN         string // short algebraic notation
	FENAfter    string // canonical position key after the move
}

// GameSummary is the joined metadata for one game.
type GameSummary struct {
	GameID   int64  `json:"id"`
	White    string `json:"whitePlayer"`
	Black    string `json:"blackPlayer"`
	Event    string `json:"event"`
	Outcome  string `json:"outcome"`
	Date     string `json:"date"`
	WhiteElo int    `json:"whiteElo"`
	BlackElo int    `json:"blackElo"`
}

// MoveRow is a stored move in game order.
type MoveRow struct {
	TurnNo      int    `json:"turnNo"`
	WhiteToMove bool   `json:"whiteToMove"`
	SAN         string `json:"san"`
	FENBefore   string `json:"fenBefore"`
	FENAfter    string `json:"fenAfter"`
}

// GameDetail is the full getGame result: metadata plus the ordered move list.
type GameDetail struct {
	Data  GameSummary `json:"data"`
	Moves []MoveRow   `json:"moves"`
}

// GameSearchResult is one row of a filtered position search.
type GameSearchResult struct {
	GameSummary
	CombinedElo int `json:"combinedElo"`
}

// MoveStats aggregates one response move at a position.
type MoveStats struct {
	SAN         string `json:"san"`
	Occurrences int    `json:"occurrences"`
	WhiteWins   int    `json:"whiteWins"`
	BlackWins   int    `json:"blackWins"`
	Draws       int    `json:"draws"`
}

// RatingBandStats aggregates outcomes for one 200-wide rating band.
type RatingBandStats struct {
	Band        int `json:"band"`
	Occurrences int `json:"occurrences"`
	WhiteWins   int `json:"whiteWins"`
	BlackWins   int `json:"blackWins"`
	Draws       int `json:"draws"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS players (
	player_id INTEGER PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS events (
	event_id INTEGER PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS games (
	game_id INTEGER PRIMARY KEY,
	white_player_id INTEGER NOT NULL,
	black_player_id INTEGER NOT NULL,
	event_id INTEGER NOT NULL,
	outcome TEXT NOT NULL CHECK(outcome IN ('1-0', '0-1', '1/2-1/2', '*')),
	date TEXT NOT NULL,
	FOREIGN KEY (white_player_id) REFERENCES players(player_id),
	FOREIGN KEY (black_player_id) REFERENCES players(player_id),
	FOREIGN KEY (event_id) REFERENCES events(event_id)
);

CREATE TABLE IF NOT EXISTS moves (
	game_id INTEGER NOT NULL,
	turn_no INTEGER NOT NULL,
	white_to_move INTEGER NOT NULL,
	san TEXT NOT NULL,
	fen_before TEXT NOT NULL,
	fen_after TEXT NOT NULL,
	PRIMARY KEY (game_id, turn_no, white_to_move),
	FOREIGN KEY (game_id) REFERENCES games(game_id)
);

CREATE TABLE IF NOT EXISTS ratings (
	game_id INTEGER NOT NULL,
	player_id INTEGER NOT NULL,
	elo INTEGER NOT NULL,
	PRIMARY KEY (game_id, player_id),
	FOREIGN KEY (game_id) REFERENCES games(game_id),
	FOREIGN KEY (player_id) REFERENCES players(player_id)
);

CREATE INDEX IF NOT EXISTS idx_moves_fen_before ON moves(fen_before);
CREATE INDEX IF NOT EXISTS idx_games_white_player ON games(white_player_id);
CREATE INDEX IF NOT EXISTS idx_games_black_player ON games(black_player_id);
CREATE INDEX IF NOT EXISTS idx_games_event ON games(event_id);
`
