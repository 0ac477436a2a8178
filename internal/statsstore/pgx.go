package statsstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openmohaa/stats-api/internal/metrics"
)

// pgxStore is the primary PlayerStatsStore backend: a pgxpool.Pool sized
// to the worker thread count. Save and SaveBatch run inside one pgx.Tx
// unit of work; ListTopN is a single query on a pooled connection,
// without an explicit transaction.
type pgxStore struct {
	pool *pgxpool.Pool
}

func newPgxStore(ctx context.Context, dsn string, poolSize int32) (*pgxStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = poolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &pgxStore{pool: pool}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create retired_players table: %w", err)
	}
	return s, nil
}

func (s *pgxStore) Save(ctx context.Context, id, name string, score, playTimeMs int) error {
	return s.SaveBatch(ctx, []RetiredPlayer{{ID: id, Name: name, Score: score, PlayTimeMs: playTimeMs}})
}

func (s *pgxStore) SaveBatch(ctx context.Context, players []RetiredPlayer) error {
	if len(players) == 0 {
		return nil
	}
	waitStart := time.Now()
	tx, err := s.pool.Begin(ctx)
	metrics.DBPoolWait.Observe(time.Since(waitStart).Seconds())
	metrics.DBPoolInUse.Set(float64(s.pool.Stat().AcquiredConns()))
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, p := range players {
		if _, err := tx.Exec(ctx,
			`INSERT INTO retired_players (id, name, score, play_time_ms) VALUES ($1, $2, $3, $4)`,
			p.ID, p.Name, p.Score, p.PlayTimeMs,
		); err != nil {
			return fmt.Errorf("insert retired player %s: %w", p.Name, err)
		}
	}
	return tx.Commit(ctx)
}

func (s *pgxStore) ListTopN(ctx context.Context, offset, limit int) ([]Row, error) {
	waitStart := time.Now()
	rows, err := s.pool.Query(ctx,
		`SELECT name, score, play_time_ms FROM retired_players
		 ORDER BY score DESC, play_time_ms ASC, name ASC
		 OFFSET $1 LIMIT $2`,
		offset, limit,
	)
	metrics.DBPoolWait.Observe(time.Since(waitStart).Seconds())
	metrics.DBPoolInUse.Set(float64(s.pool.Stat().AcquiredConns()))
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

func (s *pgxStore) Close() {
	s.pool.Close()
}
