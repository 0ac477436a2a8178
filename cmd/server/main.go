// Command server is the collect-game server binary: it loads the map
// configuration, opens the stats store, wires internal/app.Application
// together with internal/transport's HTTP surface, and runs until
// SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"

	"github.com/openmohaa/stats-api/internal/app"
	"github.com/openmohaa/stats-api/internal/applog"
	"github.com/openmohaa/stats-api/internal/config"
	"github.com/openmohaa/stats-api/internal/game"
	"github.com/openmohaa/stats-api/internal/model"
	"github.com/openmohaa/stats-api/internal/statsstore"
	"github.com/openmohaa/stats-api/internal/transport"
)

func main() {
	cmd := &cli.Command{
		Name:  "collect-game-server",
		Usage: "runs the collect-game map server",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "tick-period", Value: 100, Usage: "auto-ticker period in milliseconds; 0 disables auto-ticking"},
			&cli.StringFlag{Name: "config-file", Required: true, Usage: "path to the map configuration JSON file"},
			&cli.StringFlag{Name: "www-root", Required: true, Usage: "directory of static frontend assets to serve at /"},
			&cli.BoolFlag{Name: "randomize-spawn-points", Value: false},
			&cli.StringFlag{Name: "state-file", Usage: "path to the crash-safe state snapshot file"},
			&cli.IntFlag{Name: "save-state-period", Usage: "autosave period in milliseconds; 0 disables periodic autosave"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	tickPeriodMs := cmd.Int("tick-period")
	saveStatePeriodMs := cmd.Int("save-state-period")

	cfg, err := config.FromFlags(
		tickPeriodMs,
		cmd.String("config-file"),
		cmd.String("www-root"),
		cmd.Bool("randomize-spawn-points"),
		cmd.String("state-file"),
		saveStatePeriodMs,
		cmd.IsSet("save-state-period"),
	)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, err := applog.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	if dump, err := cfg.DebugYAML(); err == nil {
		logger.Debugw("effective configuration", "yaml", dump)
	}

	maps, err := model.LoadMapsFromFile(cfg.ConfigFile)
	if err != nil {
		return fmt.Errorf("load map config: %w", err)
	}
	logger.Infow("loaded maps", "count", len(maps))

	stats, err := statsstore.Open(ctx, cfg.GameDBURL, cfg.WorkerCount)
	if err != nil {
		return fmt.Errorf("open stats store: %w", err)
	}
	defer stats.Close()

	g := game.New(maps, time.Now().UnixNano())
	application := app.New(g, stats, cfg.RandomizeSpawnPoints, cfg.StateFile, logger)

	if err := application.RecoverFromFile(ctx); err != nil {
		return fmt.Errorf("recover state file: %w", err)
	}

	if cfg.TickPeriod > 0 {
		application.EnableAutoTicker(cfg.TickPeriod)
		logger.Infow("auto-ticker enabled", "period", cfg.TickPeriod)
	}
	if cfg.HasSaveStatePeriod && cfg.SaveStatePeriod > 0 {
		application.StartAutosave(cfg.SaveStatePeriod)
		logger.Infow("periodic autosave enabled", "period", cfg.SaveStatePeriod)
	}

	router := transport.Router(transport.Config{
		App:            application,
		Logger:         logger.Desugar(),
		AllowedOrigins: []string{"*"},
	}, cfg.WWWRoot, promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Infow("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Errorw("server exited unexpectedly", "error", err)
		}
	case sig := <-sigCh:
		logger.Infow("received shutdown signal", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnw("http shutdown error", "error", err)
	}

	application.StopAutoTicker()
	if err := application.SaveState(context.Background()); err != nil {
		logger.Errorw("final save state failed", "error", err)
	}

	logger.Infow("shutdown complete")
	return nil
}
