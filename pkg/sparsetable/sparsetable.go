// Package sparsetable implements block-decomposed range queries over any
// associative, idempotent-or-not monoid: the sequence is split into fixed
// blocks, block aggregates are precomputed at every power-of-two span (the
// classic sparse-table doubling), and a range query combines at most two
// block spans plus the partial blocks at its ends. Used for the
// (first,last)/(low,high) Euler-tour tag range-minimum queries in the
// biconnected-components driver.
package sparsetable

import "math/bits"

const (
	log2Block   = 6
	blockSize   = 1 << log2Block
	blockMask   = blockSize - 1
)

// Monoid describes the associative operation a Table is built over.
type Monoid[T any] struct {
	Identity T
	Combine  func(a, b T) T
}

// Table answers Query(l, r) — the monoid-combine of seq[l:r] — in O(1)
// after an O(n log n) build.
type Table[T any] struct {
	seq   []T
	m     Monoid[T]
	table [][]T // table[i][j] = combine of block span [j, j+2^i)
	n     int   // number of blocks
}

// New builds a sparse table over seq under monoid m.
func New[T any](seq []T, m Monoid[T]) *Table[T] {
	n := len(seq) / blockSize
	if n < 1 {
		n = 1
	}
	k := log2Up(n)
	if k < 1 {
		k = 1
	}

	table := make([][]T, k)
	for i := range table {
		table[i] = make([]T, n)
	}

	for i := 0; i < n; i++ {
		v := m.Identity
		for offset := 0; offset < blockSize && (i<<log2Block)|offset < len(seq); offset++ {
			v = m.Combine(v, seq[(i<<log2Block)|offset])
		}
		table[0][i] = v
	}
	for i := 1; i < k; i++ {
		for j := 0; j+(1<<i) <= n; j++ {
			table[i][j] = m.Combine(table[i-1][j], table[i-1][j+(1<<(i-1))])
		}
	}

	return &Table[T]{seq: seq, m: m, table: table, n: n}
}

func log2Up(x int) int {
	if x <= 1 {
		return 0
	}
	return bits.Len(uint(x - 1))
}

// Query returns the combine of seq[l:r] (half-open).
func (t *Table[T]) Query(l, r int) T {
	blockL := (l >> log2Block) + 1
	blockR := r >> log2Block
	v := t.m.Identity

	if blockL < blockR {
		s := 63 - bits.LeadingZeros64(uint64(blockR-blockL))
		v = t.m.Combine(v, t.m.Combine(t.table[s][blockL], t.table[s][blockR-(1<<s)]))
		upper := blockL << log2Block
		if r < upper {
			upper = r
		}
		for i := l; i < upper; i++ {
			v = t.m.Combine(v, t.seq[i])
		}
		lower := blockR << log2Block
		if l > lower {
			lower = l
		}
		for i := lower; i < r; i++ {
			v = t.m.Combine(v, t.seq[i])
		}
	} else {
		for i := l; i < r; i++ {
			v = t.m.Combine(v, t.seq[i])
		}
	}
	return v
}
