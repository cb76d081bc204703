// Package hashbag implements the unbounded, lock-free, insert-only
// concurrent container used as the frontier structure for every traversal
// in the engine. It is a sequence of geometrically growing, fixed-capacity
// open-addressed bucket arrays: once one bucket's sampler reports its
// expected load has been reached, new inserts promote to the next, larger
// bucket. A bag is filled by concurrent Insert calls from many goroutines
// and drained by a single call to PackInto/Pack, which also clears it for
// reuse.
package hashbag

import (
	"fmt"
	"math"
	"math/bits"
	"sync/atomic"

	"github.com/ucrparlay/pasgal-go/pkg/parallel"
	"github.com/ucrparlay/pasgal-go/pkg/sampler"
	"github.com/ucrparlay/pasgal-go/pkg/xhash"
)

const (
	minBagSize  = 1 << 6 // smallest bucket holds 64 slots
	oversampling = 4
	loadFactor  = 0.5
	empty       = math.MaxUint32
)

// Bag is a hash-bag of uint32 elements (the engine only ever bags vertex
// ids, so unlike the original's templated hashbag<ET> this is specialized
// rather than generic).
type Bag struct {
	bucketSizes   []int
	bucketOffsets []int // prefix sum of bucketSizes; pool index base per bucket
	samplers      []*sampler.Sampler
	pool          []atomic.Uint32
	bagID         atomic.Int64
}

// New builds a hash-bag sized for roughly n concurrent inserts: it grows
// bucket sizes 64, 128, 256, ... until the cumulative capacity times the
// load factor covers n.
func New(n int) *Bag {
	if n < 1 {
		n = 1
	}
	var sizes []int
	total := 0
	cur := minBagSize
	for float64(total)*loadFactor < float64(n) || len(sizes) == 0 {
		sizes = append(sizes, cur)
		total += cur
		if float64(total)*loadFactor >= float64(n) {
			break
		}
		cur *= 2
	}

	offsets := make([]int, len(sizes))
	sum := 0
	for i, s := range sizes {
		offsets[i] = sum
		sum += s
	}

	b := &Bag{
		bucketSizes:   sizes,
		bucketOffsets: offsets,
		samplers:      make([]*sampler.Sampler, len(sizes)),
		pool:          make([]atomic.Uint32, sum),
	}
	for i, s := range sizes {
		expHits := uint64(oversampling) * uint64(log2Up(s))
		threshold := uint64(float64(expHits) / (float64(s) * loadFactor) * float64(math.MaxUint32))
		if threshold > math.MaxUint32 {
			threshold = math.MaxUint32
		}
		b.samplers[i] = sampler.New(expHits, threshold)
	}
	for i := range b.pool {
		b.pool[i].Store(empty)
	}
	return b
}

func log2Up(x int) int {
	if x <= 1 {
		return 0
	}
	return bits.Len(uint(x - 1))
}

// Insert adds u to the bag. It is safe to call concurrently from many
// goroutines; it is not safe to call concurrently with PackInto/Pack/Clear.
func (b *Bag) Insert(u uint32) {
	localID := int(b.bagID.Load())
	h := xhash.Hash32(u)

	// The last bucket never closes on its sampler: it takes every insert
	// that reaches it until its slots run out.
	last := len(b.bucketSizes) - 1
	for localID < last {
		var cb bool
		ok := b.samplers[localID].Sample(uint64(h), &cb)
		if cb {
			b.bagID.CompareAndSwap(int64(localID), int64(localID+1))
		}
		if ok {
			break
		}
		localID++
	}

	size := b.bucketSizes[localID]
	base := b.bucketOffsets[localID]
	start := int(h) % size

	for probe := 0; probe < size; probe++ {
		idx := base + (start+probe)%size
		if b.pool[idx].CompareAndSwap(empty, u) {
			return
		}
	}

	// This bucket is exhausted even though its sampler hadn't saturated
	// yet (possible under heavy skew); promote and retry in the next one.
	next := localID + 1
	if next >= len(b.bucketSizes) {
		panic("hashbag is full")
	}
	b.bagID.CompareAndSwap(int64(localID), int64(next))
	b.insertFrom(u, next)
}

func (b *Bag) insertFrom(u uint32, localID int) {
	h := xhash.Hash32(u)
	for {
		if localID >= len(b.bucketSizes) {
			panic("hashbag is full")
		}
		size := b.bucketSizes[localID]
		base := b.bucketOffsets[localID]
		start := int(h) % size
		placed := false
		for probe := 0; probe < size; probe++ {
			idx := base + (start+probe)%size
			if b.pool[idx].CompareAndSwap(empty, u) {
				placed = true
				break
			}
		}
		if placed {
			return
		}
		localID++
		b.bagID.CompareAndSwap(int64(localID-1), int64(localID))
	}
}

// activeSlots returns the pool range spanning buckets [0, bagID].
func (b *Bag) activeSlots() []atomic.Uint32 {
	top := int(b.bagID.Load())
	if top >= len(b.bucketSizes) {
		top = len(b.bucketSizes) - 1
	}
	end := b.bucketOffsets[top] + b.bucketSizes[top]
	return b.pool[:end]
}

// PackInto compacts every live element into out (which must have capacity
// for at least Size() live elements... practically the caller's frontier
// buffer sized to n) and clears the bag. It returns the number of elements
// written.
func (b *Bag) PackInto(out []uint32) int {
	slots := b.activeSlots()
	n := len(slots)

	flags := make([]bool, n)
	parallel.ParallelFor(0, n, func(i int) {
		flags[i] = slots[i].Load() != empty
	}, 1024)

	// Sequential prefix sum keeps this simple and correct; the pack is
	// dominated by the bag traffic that filled it, not by this scan.
	count := 0
	for i := 0; i < n; i++ {
		if flags[i] {
			if count < len(out) {
				out[count] = slots[i].Load()
			}
			count++
		}
	}

	b.Clear()
	return count
}

// Pack returns every live element as a freshly allocated slice and clears
// the bag.
func (b *Bag) Pack() []uint32 {
	slots := b.activeSlots()
	out := make([]uint32, 0, len(slots))
	for i := range slots {
		if v := slots[i].Load(); v != empty {
			out = append(out, v)
		}
	}
	b.Clear()
	return out
}

// Clear resets every sampler and slot touched since the last Clear, and
// resets the active bucket back to the first.
func (b *Bag) Clear() {
	top := int(b.bagID.Load())
	if top >= len(b.bucketSizes) {
		top = len(b.bucketSizes) - 1
	}
	for i := 0; i <= top; i++ {
		b.samplers[i].Reset()
	}
	end := b.bucketOffsets[top] + b.bucketSizes[top]
	parallel.ParallelFor(0, end, func(i int) {
		b.pool[i].Store(empty)
	}, 1024)
	b.bagID.Store(0)
}

func (b *Bag) String() string {
	return fmt.Sprintf("hashbag{buckets=%d, active=%d}", len(b.bucketSizes), b.bagID.Load())
}
