// internal/solver/solver.go
//
// Package solver holds the candidate filter and guess-selection engine.
//
// A Solver owns the live candidate pool, the constraint set and the position
// frequency table derived from the pool. Feedback folds into the constraints,
// the pool is re-filtered and the table recomputed in one step, so the table
// never goes stale. An empty pool resets everything back to the full corpus.
package solver

import (
	"errors"

	"github.com/robalobadob/xunhualing/internal/game"
	"github.com/robalobadob/xunhualing/internal/verse"
)

// Update describes the effect of one Apply call.
type Update struct {
	Before    int  // pool size before filtering
	After     int  // pool size after filtering (before any reset)
	Exhausted bool // the pool emptied and the solver was reset
}

// Facts is a read-only copy of the constraint set.
type Facts struct {
	Green  map[int]rune
	Yellow []rune
	Gray   []rune
}

// Solver is not safe for concurrent use; the turn loop is its only writer.
type Solver struct {
	length      int
	full        *Pool
	pool        *Pool
	constraints *Constraints
	table       Table
}

// New creates a solver over corpus, whose verses should all have length characters.
func New(corpus []verse.Verse, length int, policy Policy) *Solver {
	full := NewPool(corpus)
	s := &Solver{
		length:      length,
		full:        full,
		constraints: NewConstraints(policy),
	}
	s.Reset()
	return s
}

// Reset restores the full pool and clears the constraints.
func (s *Solver) Reset() {
	s.pool = s.full
	s.constraints.Reset()
	s.table = Compute(s.pool, s.length)
}

// Next picks the next guess, skipping verses in guessed.
func (s *Solver) Next(guessed map[verse.Verse]struct{}) (verse.Verse, bool) {
	return SelectNext(s.pool, s.constraints, s.table, guessed)
}

// Top returns up to n ranked candidates from the live pool.
func (s *Solver) Top(n int) []Ranked {
	return Rank(s.pool, s.constraints, s.table, n)
}

// Apply records feedback for guess, filters the pool and recomputes the table.
// Malformed feedback returns an error and changes nothing. A *ConflictError
// is returned together with a valid Update: the pool was still filtered.
func (s *Solver) Apply(guess verse.Verse, statuses []game.Status) (Update, error) {
	u := Update{Before: s.pool.Len()}
	err := s.constraints.RecordFeedback(guess, statuses)
	var conflict *ConflictError
	if err != nil && !errors.As(err, &conflict) {
		u.After = u.Before
		return u, err
	}

	s.pool = s.pool.Filter(s.constraints)
	s.table = Compute(s.pool, s.length)
	u.After = s.pool.Len()
	if u.After == 0 {
		s.Reset()
		u.Exhausted = true
	}
	return u, err
}

// Length returns the verse length the solver works with.
func (s *Solver) Length() int { return s.length }

// PoolSize returns the size of the live pool.
func (s *Solver) PoolSize() int { return s.pool.Len() }

// CorpusSize returns the size of the full pool.
func (s *Solver) CorpusSize() int { return s.full.Len() }

// Candidates returns a copy of the live pool.
func (s *Solver) Candidates() []verse.Verse { return s.pool.Verses() }

// Table returns the current frequency table. Callers must not modify it.
func (s *Solver) Table() Table { return s.table }

// Facts returns a copy of the current constraint set.
func (s *Solver) Facts() Facts {
	return Facts{
		Green:  s.constraints.Green(),
		Yellow: s.constraints.Yellow(),
		Gray:   s.constraints.Gray(),
	}
}
