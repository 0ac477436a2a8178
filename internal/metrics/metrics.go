// Package metrics declares the Prometheus collectors for the game
// server's operational metrics: tick timing, live-state sizes and DB
// pool pressure.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "game_tick_duration_seconds",
		Help:    "Wall-clock duration of Application.tick, including all sessions.",
		Buckets: prometheus.DefBuckets,
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_active_sessions",
		Help: "Number of maps with a live session.",
	})

	ActiveDogs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_active_dogs",
		Help: "Number of live (non-retired) dogs across all sessions.",
	})

	LiveLoot = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_live_loot",
		Help: "Number of live loot items across all sessions.",
	})

	RetirementsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_retirements_total",
		Help: "Total number of dogs drained into the stats store.",
	})

	DBPoolInUse = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_db_pool_in_use",
		Help: "Connections currently checked out of the stats-store pool.",
	})

	DBPoolWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "game_db_pool_wait_seconds",
		Help:    "Time spent waiting to acquire a stats-store connection.",
		Buckets: prometheus.DefBuckets,
	})
)
