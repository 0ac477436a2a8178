// Package statsstore persists retired players' final stats to a
// relational database and serves the leaderboard query.
package statsstore

import (
	"context"
	"errors"
)

// Row is one leaderboard entry, ordered by (score DESC, play_time_ms
// ASC, name ASC).
type Row struct {
	Name       string
	Score      int
	PlayTimeMs int
}

// RetiredPlayer is one drained player's final stats, ready to save.
type RetiredPlayer struct {
	ID         string
	Name       string
	Score      int
	PlayTimeMs int
}

// Store is the PlayerStatsStore interface the application core depends
// on. Every operation runs inside a single transaction (a unit of
// work), acquiring a connection from a bounded pool and releasing it on
// return.
type Store interface {
	Save(ctx context.Context, id, name string, score, playTimeMs int) error
	SaveBatch(ctx context.Context, players []RetiredPlayer) error
	ListTopN(ctx context.Context, offset, limit int) ([]Row, error)
	Close()
}

// ErrUnsupportedScheme is returned by Open when GAME_DB_URL names a
// scheme none of the wired backends recognize.
var ErrUnsupportedScheme = errors.New("statsstore: unsupported database URL scheme")

const createTableSQL = `
CREATE TABLE IF NOT EXISTS retired_players (
	id UUID PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	score INTEGER NOT NULL,
	play_time_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS retired_players_leaderboard_idx
	ON retired_players (score DESC, play_time_ms ASC, name ASC);
`

const createTableSQLMySQL = `
CREATE TABLE IF NOT EXISTS retired_players (
	id CHAR(36) PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	score INTEGER NOT NULL,
	play_time_ms INTEGER NOT NULL,
	INDEX retired_players_leaderboard_idx (score DESC, play_time_ms ASC, name ASC)
);
`
