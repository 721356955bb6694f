package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/renjulab/movematch/internal/gamedb"
	"github.com/renjulab/movematch/internal/logx"
	"github.com/renjulab/movematch/internal/match"
	"github.com/renjulab/movematch/internal/report"
)

func main() {
	defaultEngine := os.Getenv("ENGINE_COMMAND")

	var (
		name      = flag.String("name", "experiment", "experiment name; the checkpoint/report file is <name>.csv")
		engineCmd = flag.String("engine", defaultEngine, "engine command line (ENGINE_COMMAND env overrides the default)")
		dbPath    = flag.String("db", "", "path to the game list CSV (optionally .zst compressed)")

		workers    = flag.Int("workers", 1, "number of parallel engine workers")
		gamesLimit = flag.Int("games", 0, "evaluate only the first N games (0 = all)")
		moveTime   = flag.Duration("move-time", 5*time.Second, "per-move time budget configured into the engine")
		pacing     = flag.Duration("pacing", 500*time.Millisecond, "delay before each engine request")

		checkpointEvery = flag.Duration("checkpoint-interval", 15*time.Minute, "how often to persist a checkpoint")
		progressEvery   = flag.Duration("progress-interval", 30*time.Second, "how often to log progress")
		logLevel        = flag.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	)
	flag.Parse()

	logger := logx.NewLogger(*logLevel)
	if *engineCmd == "" || *dbPath == "" {
		logger.Fatal().Msg("both -engine and -db are required")
	}

	games, err := gamedb.Load(*dbPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *dbPath).Msg("load game database")
	}
	if *gamesLimit > 0 && *gamesLimit < len(games) {
		games = games[:*gamesLimit]
	}
	logger.Info().Int("games", len(games)).Str("path", *dbPath).Msg("loaded game database")

	if err := report.RatingDistribution(os.Stdout, games); err != nil {
		logger.Warn().Err(err).Msg("rating distribution")
	}

	// Resume from a previous run of the same experiment if its checkpoint
	// exists.
	checkpointPath := *name + ".csv"
	var matcher *match.Matcher
	rows, err := report.ReadFile(checkpointPath)
	switch {
	case err == nil:
		matcher = match.FromCheckpoint(games, rows)
		logger.Info().
			Str("path", checkpointPath).
			Int64("completed_games", matcher.CompletedGames()).
			Uint64("completed_positions", matcher.CompletedPositions()).
			Msg("resumed from checkpoint")
	case os.IsNotExist(err):
		matcher = match.New(games)
	default:
		logger.Fatal().Err(err).Str("path", checkpointPath).Msg("read checkpoint")
	}

	pool, err := match.NewPool(match.Config{
		EngineCommand: *engineCmd,
		MoveTime:      *moveTime,
		Pacing:        *pacing,
		NumWorkers:    *workers,
		Logger:        logger.With().Str("component", "pool").Logger(),
	}, matcher)
	if err != nil {
		logger.Fatal().Err(err).Msg("create pool")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() {
		done <- pool.Run(ctx)
	}()

	checkpointTicker := time.NewTicker(*checkpointEvery)
	defer checkpointTicker.Stop()
	progressTicker := time.NewTicker(*progressEvery)
	defer progressTicker.Stop()

	running := true
	for running {
		select {
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("pool stopped with error")
			}
			running = false
		case <-checkpointTicker.C:
			// Counters only ever hold whole-game totals, so a periodic
			// snapshot is safe to resume from even though it may trail
			// in-flight tasks.
			if err := report.WriteFile(checkpointPath, matcher.Snapshot()); err != nil {
				logger.Error().Err(err).Str("path", checkpointPath).Msg("write checkpoint")
			} else {
				logger.Info().
					Str("path", checkpointPath).
					Int64("completed_games", matcher.CompletedGames()).
					Msg("checkpoint saved")
			}
		case <-progressTicker.C:
			logger.Info().
				Int64("completed_games", matcher.CompletedGames()).
				Int64("total_games", matcher.TotalGames()).
				Uint64("completed_positions", matcher.CompletedPositions()).
				Uint64("total_positions", matcher.TotalPositions()).
				Int64("failed_tasks", pool.FailedTasks()).
				Msg("progress")
		}
	}

	// Every worker has flushed by the time Run returns, so this final
	// snapshot is exact.
	finalRows := matcher.Snapshot()
	if err := report.WriteFile(checkpointPath, finalRows); err != nil {
		logger.Fatal().Err(err).Str("path", checkpointPath).Msg("write final results")
	}
	logger.Info().
		Str("path", checkpointPath).
		Bool("complete", matcher.IsComplete()).
		Int64("failed_tasks", pool.FailedTasks()).
		Msg("results saved")

	report.WriteSummary(os.Stdout, *name, finalRows)
}
