// This code is part of the Problem Based Benchmark Suite (PBBS)
// Copyright (c) 2010-2016 Guy Blelloch and the PBBS team
//
// Permission is hereby granted, free of charge, to any person obtaining a
// copy of this software and associated documentation files (the
// "Software"), to deal in the Software without restriction, including
// without limitation the rights (to use, copy, modify, merge, publish,
// distribute, sublicense, and/or sell copies of the Software, and to
// permit persons to whom the Software is furnished to do so, subject to
// the following conditions:
//
// The above copyright notice and this permission notice shall be included
// in all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS
// OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
// NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE
// LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION
// OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION
// WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

// Package rtable implements the resizable open-addressed multimap that
// backs multi-reach's per-vertex label sets: a key (vertex) may carry many
// values (labels), stored as separate (key, value) slots probed linearly
// from h(key). Growth is the caller's responsibility — on overfull the
// table must be discarded and doubled, and the insertions attempted during
// the failed round replayed from scratch.
package rtable

import (
	"math/bits"
	"sync/atomic"

	"github.com/ucrparlay/pasgal-go/pkg/parallel"
	"github.com/ucrparlay/pasgal-go/pkg/xhash"
)

const maxProbes = 2000

// KV is a packed (key, value) slot: key in the high 32 bits, value in the
// low 32 bits, so a single atomic CAS on the composite covers both.
type KV uint64

func pack(k, v uint32) KV { return KV(uint64(k)<<32 | uint64(v)) }
func (kv KV) Key() uint32 { return uint32(kv >> 32) }
func (kv KV) Val() uint32 { return uint32(kv) }

// Table is a resizable open-addressed multimap from uint32 keys to uint32
// values.
type Table struct {
	m       uint64
	mask    uint64
	empty   KV
	slots   []atomic.Uint64
	cts     []atomic.Int64 // one padded counter per worker
	ne      int64
	overfull atomic.Bool
}

const cacheLinePad = 16 // counters per worker slot, padded to avoid false sharing

// New builds a table with capacity the next power of two at least sizeHint.
func New(sizeHint int) *Table {
	if sizeHint < 1 {
		sizeHint = 1
	}
	m := uint64(1) << uint64(log2Up(sizeHint))
	t := &Table{
		m:     m,
		mask:  m - 1,
		empty: pack(^uint32(0), ^uint32(0)),
		slots: make([]atomic.Uint64, m),
		cts:   make([]atomic.Int64, parallel.NumWorkers()*cacheLinePad),
	}
	parallel.ParallelFor(0, int(m), func(i int) {
		t.slots[i].Store(uint64(t.empty))
	}, 1024)
	return t
}

func log2Up(x int) int {
	if x <= 1 {
		return 0
	}
	return bits.Len(uint(x - 1))
}

func (t *Table) index(k uint32) uint64 {
	return uint64(xhash.Hash32(k)) & t.mask
}

func (t *Table) nextIndex(i uint64) uint64 {
	return (i + 1) & t.mask
}

// Insert adds (k, v). Returns false if the exact pair already exists, or if
// the probe bound was exceeded — the latter sets Overfull() and the caller
// must DoubleSize and replay the whole round.
func (t *Table) Insert(k, v uint32, workerID int) bool {
	kv := pack(k, v)
	i := t.index(k)
	for count := 0; count < maxProbes; count++ {
		cur := KV(t.slots[i].Load())
		if cur == t.empty {
			if t.slots[i].CompareAndSwap(uint64(t.empty), uint64(kv)) {
				t.cts[workerID*cacheLinePad].Add(1)
				return true
			}
			continue // lost the race, re-read this slot
		}
		if cur == kv {
			return false
		}
		i = t.nextIndex(i)
	}
	t.overfull.Store(true)
	return false
}

// Contains reports whether the exact pair (k, v) is present.
func (t *Table) Contains(k, v uint32) bool {
	kv := pack(k, v)
	i := t.index(k)
	for {
		cur := KV(t.slots[i].Load())
		if cur == t.empty {
			return false
		}
		if cur == kv {
			return true
		}
		i = t.nextIndex(i)
	}
}

// Iter walks every (k, value) slot for a given key, in probe order.
type Iter struct {
	t       *Table
	k       uint32
	i       uint64
	numProb uint64
	valid   bool
}

// InitIter positions an iterator at the first slot holding k, if any.
func (t *Table) InitIter(k uint32) Iter {
	i := t.index(k)
	for {
		cur := KV(t.slots[i].Load())
		if cur == t.empty {
			return Iter{t: t, k: k}
		}
		if cur.Key() == k {
			return Iter{t: t, k: k, i: i, valid: true}
		}
		i = t.nextIndex(i)
	}
}

// Valid reports whether the iterator currently sits on a matching slot.
func (it Iter) Valid() bool { return it.valid }

// Value returns the value at the iterator's current slot.
func (it Iter) Value() uint32 { return KV(it.t.slots[it.i].Load()).Val() }

// Next advances to the next slot holding the iterator's key, up to the
// table's full capacity.
func (it *Iter) Next() bool {
	for it.numProb < it.t.m {
		it.i = it.t.nextIndex(it.i)
		it.numProb++
		cur := KV(it.t.slots[it.i].Load())
		if cur == it.t.empty {
			it.valid = false
			return false
		}
		if cur.Key() == it.k {
			it.valid = true
			return true
		}
	}
	it.valid = false
	return false
}

// Map calls f on every non-empty (key, value) pair in parallel.
func (t *Table) Map(f func(k, v uint32)) {
	parallel.ParallelFor(0, int(t.m), func(i int) {
		cur := KV(t.slots[i].Load())
		if cur != t.empty {
			f(cur.Key(), cur.Val())
		}
	}, 1024)
}

// Pack returns every non-empty (key, value) pair.
func (t *Table) Pack() []KV {
	out := make([]KV, 0, t.Size())
	for i := range t.slots {
		cur := KV(t.slots[i].Load())
		if cur != t.empty {
			out = append(out, cur)
		}
	}
	return out
}

// Size folds the per-worker insert counters into the running element
// count, resets them, and marks the table overfull if the count has
// reached capacity.
func (t *Table) Size() int64 {
	for w := 0; w < len(t.cts)/cacheLinePad; w++ {
		t.ne += t.cts[w*cacheLinePad].Swap(0)
	}
	if t.ne >= int64(t.m) {
		t.overfull.Store(true)
	}
	return t.ne
}

// Overfull reports whether a probe bound was exceeded, or Size observed
// the table at capacity, since construction or the last DoubleSize.
func (t *Table) Overfull() bool { return t.overfull.Load() }

// DoubleSize quadruples capacity and empties the table. Any inserts made
// during the round that triggered overfull are lost; callers must replay
// the whole round's insertions after calling this.
func (t *Table) DoubleSize() {
	t.m *= 4
	t.mask = t.m - 1
	t.Size()
	t.ne = 0
	t.slots = make([]atomic.Uint64, t.m)
	parallel.ParallelFor(0, int(t.m), func(i int) {
		t.slots[i].Store(uint64(t.empty))
	}, 1024)
	t.overfull.Store(false)
}
