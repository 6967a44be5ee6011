// internal/solver/frequency.go
//
// Position frequency table and verse scoring.
// Weights favor early positions: (length - i) * 2 for position i.

package solver

// Table is the position frequency table: one character → weight mapping per
// position. Earlier positions carry more weight.
type Table []map[rune]int

// Compute builds the table for pool. Each verse adds (length - i) * 2 to the
// entry of its character at position i. The result depends only on the pool
// contents, not on their order. An empty pool yields length empty mappings.
func Compute(pool *Pool, length int) Table {
	t := make(Table, length)
	for i := range t {
		t[i] = make(map[rune]int)
	}
	for n := 0; n < pool.Len(); n++ {
		rs := pool.entries[n].rs
		for i := 0; i < length && i < len(rs); i++ {
			t[i][rs[i]] += (length - i) * 2
		}
	}
	return t
}

// Score sums the table weight of each character of rs at its position.
func (t Table) Score(rs []rune) int {
	s := 0
	for i := 0; i < len(t) && i < len(rs); i++ {
		s += t[i][rs[i]]
	}
	return s
}

// Weight returns the weight of c at position i, or 0 when out of range.
func (t Table) Weight(i int, c rune) int {
	if i < 0 || i >= len(t) {
		return 0
	}
	return t[i][c]
}
