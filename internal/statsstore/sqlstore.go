package statsstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // registers the "mysql" database/sql driver
	_ "github.com/lib/pq"              // registers the "postgres" database/sql driver

	"github.com/openmohaa/stats-api/internal/metrics"
)

// sqlStore backs PlayerStatsStore with database/sql, used for the
// lib/pq Postgres driver and the go-sql-driver/mysql driver: both speak
// the same parameterized-query shape modulo placeholder syntax.
type sqlStore struct {
	db         *sql.DB
	mysql      bool
	placeholder func(n int) string
}

func newSQLStore(ctx context.Context, driverName, dsn string, poolSize int, mysqlFlavor bool) (*sqlStore, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	db.SetMaxOpenConns(poolSize)
	db.SetMaxIdleConns(poolSize)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driverName, err)
	}

	ddl := createTableSQL
	if mysqlFlavor {
		ddl = createTableSQLMySQL
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create retired_players table: %w", err)
	}

	s := &sqlStore{db: db, mysql: mysqlFlavor}
	if mysqlFlavor {
		s.placeholder = func(int) string { return "?" }
	} else {
		s.placeholder = func(n int) string { return fmt.Sprintf("$%d", n) }
	}
	return s, nil
}

func (s *sqlStore) Save(ctx context.Context, id, name string, score, playTimeMs int) error {
	return s.SaveBatch(ctx, []RetiredPlayer{{ID: id, Name: name, Score: score, PlayTimeMs: playTimeMs}})
}

func (s *sqlStore) SaveBatch(ctx context.Context, players []RetiredPlayer) error {
	if len(players) == 0 {
		return nil
	}
	waitStart := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	metrics.DBPoolWait.Observe(time.Since(waitStart).Seconds())
	metrics.DBPoolInUse.Set(float64(s.db.Stats().InUse))
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(
		"INSERT INTO retired_players (id, name, score, play_time_ms) VALUES (%s, %s, %s, %s)",
		s.placeholder(1), s.placeholder(2), s.placeholder(3), s.placeholder(4),
	)
	for _, p := range players {
		if _, err := tx.ExecContext(ctx, query, p.ID, p.Name, p.Score, p.PlayTimeMs); err != nil {
			return fmt.Errorf("insert retired player %s: %w", p.Name, err)
		}
	}
	return tx.Commit()
}

func (s *sqlStore) ListTopN(ctx context.Context, offset, limit int) ([]Row, error) {
	query := fmt.Sprintf(
		`SELECT name, score, play_time_ms FROM retired_players
		 ORDER BY score DESC, play_time_ms ASC, name ASC
		 LIMIT %s OFFSET %s`,
		s.placeholder(1), s.placeholder(2),
	)
	waitStart := time.Now()
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	metrics.DBPoolWait.Observe(time.Since(waitStart).Seconds())
	metrics.DBPoolInUse.Set(float64(s.db.Stats().InUse))
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Name, &r.Score, &r.PlayTimeMs); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqlStore) Close() {
	s.db.Close()
}
