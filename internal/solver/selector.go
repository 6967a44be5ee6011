// internal/solver/selector.go
//
// Guess selection: the highest-scoring consistent verse not tried yet.
// Ties go to pool order.

package solver

import (
	"sort"

	"github.com/robalobadob/xunhualing/internal/verse"
)

// Ranked is a candidate with its frequency score.
type Ranked struct {
	Verse verse.Verse
	Score int
}

// SelectNext returns the highest-scoring verse of pool that is consistent
// with c and not in guessed. Ties go to the verse that comes first in pool
// order. ok is false when no verse qualifies, including an empty pool.
func SelectNext(pool *Pool, c *Constraints, t Table, guessed map[verse.Verse]struct{}) (v verse.Verse, ok bool) {
	if pool.Len() == 0 {
		return "", false
	}
	best := -1
	for i := 0; i < pool.Len(); i++ {
		e := pool.entries[i]
		if _, seen := guessed[e.v]; seen {
			continue
		}
		if !c.consistent(e.rs) {
			continue
		}
		if s := t.Score(e.rs); s > best {
			best, v, ok = s, e.v, true
		}
	}
	return v, ok
}

// Rank lists the consistent verses of pool by descending score, stable on
// pool order. limit <= 0 returns all of them.
func Rank(pool *Pool, c *Constraints, t Table, limit int) []Ranked {
	out := make([]Ranked, 0, pool.Len())
	for i := 0; i < pool.Len(); i++ {
		e := pool.entries[i]
		if c.consistent(e.rs) {
			out = append(out, Ranked{Verse: e.v, Score: t.Score(e.rs)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
