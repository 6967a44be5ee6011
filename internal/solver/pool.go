// internal/solver/pool.go
//
// Candidate pool: the ordered, de-duplicated set of verses still in play.
// Filtering returns a new pool and keeps the original order.

package solver

import "github.com/robalobadob/xunhualing/internal/verse"

// entry caches the decoded characters of a verse so scoring and filtering
// never re-decode UTF-8.
type entry struct {
	v  verse.Verse
	rs []rune
}

// Pool is an immutable, ordered set of candidate verses. Filtering produces a
// new Pool; a Pool is never changed in place.
type Pool struct {
	entries []entry
	index   map[verse.Verse]struct{}
}

// NewPool builds a pool from vs, dropping duplicates and keeping first-seen order.
func NewPool(vs []verse.Verse) *Pool {
	p := &Pool{
		entries: make([]entry, 0, len(vs)),
		index:   make(map[verse.Verse]struct{}, len(vs)),
	}
	for _, v := range vs {
		if _, ok := p.index[v]; ok {
			continue
		}
		p.index[v] = struct{}{}
		p.entries = append(p.entries, entry{v: v, rs: v.Runes()})
	}
	return p
}

// Len returns the number of verses in the pool.
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.entries)
}

// Verses returns a copy of the pool contents in pool order.
func (p *Pool) Verses() []verse.Verse {
	out := make([]verse.Verse, p.Len())
	for i := range out {
		out[i] = p.entries[i].v
	}
	return out
}


// Filter returns a new pool holding the verses consistent with c, in the same order.
func (p *Pool) Filter(c *Constraints) *Pool {
	out := &Pool{
		entries: make([]entry, 0, p.Len()),
		index:   make(map[verse.Verse]struct{}, p.Len()),
	}
	for i := 0; i < p.Len(); i++ {
		e := p.entries[i]
		if c.consistent(e.rs) {
			out.entries = append(out.entries, e)
			out.index[e.v] = struct{}{}
		}
	}
	return out
}
