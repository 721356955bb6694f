package match

import (
	"sync/atomic"
	"time"

	"github.com/renjulab/movematch/internal/gomocup"
)

// Engine is the slice of the protocol client a task needs.
// *gomocup.Client implements it.
type Engine interface {
	Send(gomocup.Command) (gomocup.Response, error)
	Close() error
}

// Task evaluates one game's plies against one engine. It executes exactly
// once and is discarded afterward.
type Task struct {
	moves []gomocup.Coord
	idx   int

	black *counter // first mover
	white *counter

	completedGames     *atomic.Int64
	completedPositions *atomic.Uint64
}

// Run walks the evaluation window, asking the engine for its committed move
// at each ply and comparing it to the move the human actually played. Side
// attribution follows ply parity: even index = black, the first mover.
// Deltas accumulate locally and flush to the shared buckets once at the end,
// so the buckets only ever hold whole-game totals.
//
// On a terminal protocol failure the remaining plies are skipped, the
// partial deltas still flush, and the game still counts as completed for
// progress accounting (partial credit, never retried); the failure is
// returned for logging.
func (t *Task) Run(eng Engine, pacing time.Duration) error {
	var local [2]struct{ matched, total uint32 } // 0 = black, 1 = white
	var runErr error

	for t.idx = HeadSkip; t.idx < len(t.moves)-TailSkip; t.idx++ {
		if pacing > 0 {
			time.Sleep(pacing)
		}
		resp, err := eng.Send(gomocup.Board{Moves: t.moves[:t.idx]})
		if err != nil {
			runErr = err
			break
		}
		if resp.Kind != gomocup.KindMove {
			runErr = &gomocup.UnexpectedResponseError{Got: resp}
			break
		}
		side := &local[t.idx%2]
		if resp.Move == t.moves[t.idx] {
			side.matched++
		}
		side.total++
		t.completedPositions.Add(1)
	}

	t.black.matched.Add(local[0].matched)
	t.black.total.Add(local[0].total)
	t.white.matched.Add(local[1].matched)
	t.white.total.Add(local[1].total)
	t.completedGames.Add(1)
	return runErr
}
