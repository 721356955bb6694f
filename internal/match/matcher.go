// Package match coordinates move-matching evaluation: it hands each
// historical game to exactly one worker, accumulates matched/total counts
// per rating in lock-free atomic buckets, and rebuilds its state from
// checkpoints.
package match

import (
	"sort"
	"sync/atomic"

	"github.com/renjulab/movematch/internal/gamedb"
)

// Evaluation window bounds. The first HeadSkip plies are convention-bound
// opening moves; the final TailSkip plies have no meaningful prediction for
// the mover.
const (
	HeadSkip = 5
	TailSkip = 2
)

// EvaluatedPositions is the number of plies of one game that fall inside the
// evaluation window [HeadSkip, len-TailSkip).
func EvaluatedPositions(g gamedb.Game) uint64 {
	if len(g.Moves) <= HeadSkip+TailSkip {
		return 0
	}
	return uint64(len(g.Moves) - HeadSkip - TailSkip)
}

// counter is one rating bucket. Only the values mutate after construction,
// via atomic adds; the bucket map's key set is fixed before any worker runs,
// which is what makes the concurrent updates safe without a lock.
type counter struct {
	matched atomic.Uint32
	total   atomic.Uint32
}

// RatingCount is one row of a snapshot or checkpoint.
type RatingCount struct {
	Rating  uint64
	Matched uint32
	Total   uint32
}

// Matcher owns the immutable game list and the per-rating counters, and
// hands out each game exactly once through an atomic cursor.
type Matcher struct {
	games   []gamedb.Game
	buckets map[uint64]*counter

	next               atomic.Int64
	completedGames     atomic.Int64
	completedPositions atomic.Uint64
	totalPositions     uint64
}

// New builds a Matcher with a bucket for every rating that appears in the
// game list. Call it (or FromCheckpoint) before starting any worker; no key
// is ever added afterward.
func New(games []gamedb.Game) *Matcher {
	m := &Matcher{
		games:   games,
		buckets: make(map[uint64]*counter),
	}
	for _, g := range games {
		if _, ok := m.buckets[g.BlackRating]; !ok {
			m.buckets[g.BlackRating] = &counter{}
		}
		if _, ok := m.buckets[g.WhiteRating]; !ok {
			m.buckets[g.WhiteRating] = &counter{}
		}
		m.totalPositions += EvaluatedPositions(g)
	}
	return m
}

// FromCheckpoint overlays persisted counters onto a fresh Matcher and
// derives the resume cursor: games are walked in original order, each
// subtracting its evaluated-position count from the checkpoint's total
// budget, until the subtraction would underflow. Buckets for ratings absent
// from the checkpoint stay zero. Checkpoints are only ever taken after whole
// games complete; the walk assumes that and silently mis-resumes if the
// precondition was violated.
func FromCheckpoint(games []gamedb.Game, rows []RatingCount) *Matcher {
	m := New(games)

	var budget uint64
	for _, row := range rows {
		c, ok := m.buckets[row.Rating]
		if !ok {
			c = &counter{}
			m.buckets[row.Rating] = c
		}
		c.matched.Store(row.Matched)
		c.total.Store(row.Total)
		budget += uint64(row.Total)
	}

	var completed int64
	var positions uint64
	for _, g := range games {
		n := EvaluatedPositions(g)
		if n > budget {
			break
		}
		budget -= n
		positions += n
		completed++
	}
	m.next.Store(completed)
	m.completedGames.Store(completed)
	m.completedPositions.Store(positions)
	return m
}

// NextTask atomically advances the cursor and returns the task for that
// game, or nil once every game has been handed out. Each game is issued
// exactly once; a task is never reissued after failure.
func (m *Matcher) NextTask() *Task {
	n := m.next.Add(1) - 1
	if n >= int64(len(m.games)) {
		return nil
	}
	g := m.games[n]
	return &Task{
		moves:              g.Moves,
		black:              m.buckets[g.BlackRating],
		white:              m.buckets[g.WhiteRating],
		completedGames:     &m.completedGames,
		completedPositions: &m.completedPositions,
	}
}

// Snapshot returns the counters sorted by rating. It is non-blocking and may
// trail tasks still in flight by a bounded margin; use it for reporting, not
// control decisions.
func (m *Matcher) Snapshot() []RatingCount {
	rows := make([]RatingCount, 0, len(m.buckets))
	for rating, c := range m.buckets {
		rows = append(rows, RatingCount{
			Rating:  rating,
			Matched: c.matched.Load(),
			Total:   c.total.Load(),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Rating < rows[j].Rating })
	return rows
}

func (m *Matcher) TotalGames() int64 { return int64(len(m.games)) }

func (m *Matcher) CompletedGames() int64 { return m.completedGames.Load() }

func (m *Matcher) TotalPositions() uint64 { return m.totalPositions }

func (m *Matcher) CompletedPositions() uint64 { return m.completedPositions.Load() }

// IsComplete reports whether every game has been processed, including games
// that aborted early on protocol failures.
func (m *Matcher) IsComplete() bool {
	return m.CompletedGames() == m.TotalGames()
}
