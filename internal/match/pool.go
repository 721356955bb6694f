package match

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/renjulab/movematch/internal/gomocup"
)

// Config configures the worker pool.
type Config struct {
	EngineCommand string
	MoveTime      time.Duration // per-move think budget configured into the engine
	Pacing        time.Duration // delay before each engine request
	NumWorkers    int
	Logger        zerolog.Logger

	// OpenEngine overrides subprocess creation; tests use it to script
	// engines. When nil, engines are spawned from EngineCommand.
	OpenEngine func(id int) (Engine, error)
}

// Pool runs a fixed number of workers, each owning exactly one engine
// subprocess, pulling tasks from the matcher until exhausted.
type Pool struct {
	cfg Config
	log zerolog.Logger
	m   *Matcher

	tasksFailed atomic.Int64
}

// NewPool validates the config and caps the worker count at the game count;
// more workers than tasks adds nothing.
func NewPool(cfg Config, m *Matcher) (*Pool, error) {
	if cfg.OpenEngine == nil && cfg.EngineCommand == "" {
		return nil, fmt.Errorf("engine command required")
	}
	if cfg.MoveTime == 0 {
		cfg.MoveTime = 5 * time.Second
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 1
	}
	if n := int(m.TotalGames()); cfg.NumWorkers > n && n > 0 {
		cfg.NumWorkers = n
	}
	if cfg.OpenEngine == nil {
		command, moveTime, logger := cfg.EngineCommand, cfg.MoveTime, cfg.Logger
		cfg.OpenEngine = func(id int) (Engine, error) {
			return gomocup.Open(id, command, moveTime, logger)
		}
	}
	return &Pool{cfg: cfg, log: cfg.Logger, m: m}, nil
}

// FailedTasks is how many tasks aborted on a protocol failure. Those games
// still count as completed, with reduced data.
func (p *Pool) FailedTasks() int64 { return p.tasksFailed.Load() }

// Run starts the workers and blocks until every task has finished or ctx is
// cancelled. Cancellation is only observed between tasks: a task in flight
// runs to completion, which keeps the shared buckets whole-game and
// checkpoints safe to resume from. Workers share no state beyond the
// matcher's cursor and counters; a worker that fails to open its engine
// exits alone without stopping the others.
func (p *Pool) Run(ctx context.Context) error {
	p.log.Info().
		Int("num_workers", p.cfg.NumWorkers).
		Int64("total_games", p.m.TotalGames()).
		Uint64("total_positions", p.m.TotalPositions()).
		Msg("move matching pool started")

	var g errgroup.Group
	for i := 0; i < p.cfg.NumWorkers; i++ {
		workerID := i
		g.Go(func() error {
			return p.runWorker(ctx, workerID)
		})
	}
	err := g.Wait()

	p.log.Info().
		Int64("completed_games", p.m.CompletedGames()).
		Int64("failed_tasks", p.tasksFailed.Load()).
		Msg("move matching pool stopped")
	return err
}

func (p *Pool) runWorker(ctx context.Context, workerID int) error {
	log := p.log.With().Int("worker_id", workerID).Logger()

	eng, err := p.cfg.OpenEngine(workerID)
	if err != nil {
		log.Error().Err(err).Msg("failed to open engine")
		return fmt.Errorf("worker %d: %w", workerID, err)
	}
	defer func() {
		if err := eng.Close(); err != nil {
			log.Warn().Err(err).Msg("engine close")
		}
	}()

	log.Info().Msg("worker started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("worker stopping (context cancelled)")
			return ctx.Err()
		default:
		}

		task := p.m.NextTask()
		if task == nil {
			log.Info().Msg("worker stopping (tasks exhausted)")
			return nil
		}
		if err := task.Run(eng, p.cfg.Pacing); err != nil {
			p.tasksFailed.Add(1)
			log.Error().Err(err).Msg("move matching task failed")
			continue
		}
		log.Debug().
			Int64("completed_games", p.m.CompletedGames()).
			Int64("total_games", p.m.TotalGames()).
			Msg("task complete")
	}
}
