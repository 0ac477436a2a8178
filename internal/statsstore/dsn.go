package statsstore

import (
	"context"
	"strings"
)

// Open dispatches on GAME_DB_URL's scheme to pick a backend: pgx for a
// native "postgres://"/"postgresql://" DSN (the default, fastest path),
// lib/pq for a "pq://"-tagged Postgres DSN, or go-sql-driver/mysql for
// "mysql://". poolSize bounds the connection pool to the worker thread
// count.
func Open(ctx context.Context, dsn string, poolSize int) (Store, error) {
	switch {
	case strings.HasPrefix(dsn, "pq://"):
		return newSQLStore(ctx, "postgres", strings.TrimPrefix(dsn, "pq://"), poolSize, false)
	case strings.HasPrefix(dsn, "mysql://"):
		return newSQLStore(ctx, "mysql", strings.TrimPrefix(dsn, "mysql://"), poolSize, true)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return newPgxStore(ctx, dsn, int32(poolSize))
	default:
		return nil, ErrUnsupportedScheme
	}
}
