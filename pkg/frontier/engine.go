// Package frontier implements the direction-switching traversal core
// shared by every round-based graph algorithm (BFS, stepping SSSP, LDD,
// reach): a frontier that starts sparse (an explicit vertex list) and
// flips to dense (a bitset over all vertices) once its active out-degree
// grows past a threshold, flipping back once it shrinks again.
package frontier

import (
	"sync/atomic"

	"github.com/ucrparlay/pasgal-go/pkg/collections"
	"github.com/ucrparlay/pasgal-go/pkg/hashbag"
	"github.com/ucrparlay/pasgal-go/pkg/parallel"
	"github.com/ucrparlay/pasgal-go/pkg/pgraph"
	"github.com/ucrparlay/pasgal-go/pkg/xhash"
)

// Thresholds tunes the sparse/dense crossover points. Exposed rather than
// hard-coded, per the scheduling contract every round-based driver shares.
type Thresholds struct {
	// SparseToDenseDivisor: switch to dense when active out-degree sum
	// reaches m/SparseToDenseDivisor (20 for LDD, 10 for reach).
	SparseToDenseDivisor uint64
	// DenseToSparseDivisor: switch back to sparse when the estimated
	// active count drops below n/DenseToSparseDivisor.
	DenseToSparseDivisor uint64
	// SampleCount: how many vertices to sample when estimating dense
	// frontier size.
	SampleCount int
	// BlockSize: neighbour-list chunk size triggering a parallel fan-out
	// during sparse relax instead of local-queue draining.
	BlockSize int
	// LocalQueueSize: capacity of the per-task FIFO used while draining a
	// low-degree frontier vertex sparsely.
	LocalQueueSize int
}

// DefaultThresholds matches the values used by reach-style traversals.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SparseToDenseDivisor: 10,
		DenseToSparseDivisor: 20,
		SampleCount:          256,
		BlockSize:            1024,
		LocalQueueSize:       1024,
	}
}

// LDDThresholds matches the lower sparse/dense crossover LDD uses.
func LDDThresholds() Thresholds {
	t := DefaultThresholds()
	t.SparseToDenseDivisor = 20
	return t
}

// TryRelax attempts the algorithm-specific update for edge u->v (e.g.
// write_min(dist[v], dist[u]+w), or CAS(label[v], MAX, label[u])). It
// returns true iff v newly joins the next frontier as a result.
type TryRelax func(u, v uint32, e pgraph.Edge) bool

// Engine drives one round-based traversal over a graph, switching between
// a sparse (hashbag-backed) and dense (bitset) frontier representation.
type Engine struct {
	g  *pgraph.Graph
	gt *pgraph.Graph // transpose/in-adjacency source for dense pull; nil for symmetric graphs
	t  Thresholds

	sparse         bool
	frontier       []uint32
	// inFrontier/inNextFrontier are written concurrently from denseRelax's
	// parallel.ParallelFor workers (many vertices can land in the same
	// 64-bit word), so both need AtomicBitset's CAS-based Set rather than
	// the plain Bitset's racy read-modify-write.
	inFrontier     *collections.AtomicBitset
	inNextFrontier *collections.AtomicBitset
}

// NewEngine builds an engine over g. gt supplies in-neighbors for the
// dense pull step; pass g itself when the graph is symmetrized.
func NewEngine(g, gt *pgraph.Graph, t Thresholds) *Engine {
	return &Engine{
		g:              g,
		gt:             gt,
		t:              t,
		sparse:         true,
		inFrontier:     collections.NewAtomicBitset(int(g.N)),
		inNextFrontier: collections.NewAtomicBitset(int(g.N)),
	}
}

// SetFrontier seeds the engine's current frontier with the given sparse
// vertex list.
func (e *Engine) SetFrontier(vs []uint32) {
	e.frontier = append(e.frontier[:0], vs...)
	e.sparse = true
}

// AddToFrontier merges extra vertices (e.g. newly activated LDD centers)
// into the current round's frontier, in whichever representation is
// currently active.
func (e *Engine) AddToFrontier(vs []uint32) {
	if e.sparse {
		e.frontier = append(e.frontier, vs...)
		return
	}
	for _, v := range vs {
		e.inFrontier.Set(int(v))
	}
}

// SparseFrontier returns the current frontier's vertex list when the
// engine is in sparse mode, or nil when dense (callers needing frontier
// contents in dense mode should read the dense bitset directly via
// FrontierSize/IsEmpty instead).
func (e *Engine) SparseFrontier() []uint32 {
	if !e.sparse {
		return nil
	}
	return e.frontier
}

// FrontierSize returns the number of active vertices in the current round.
func (e *Engine) FrontierSize() int {
	if e.sparse {
		return len(e.frontier)
	}
	return e.inFrontier.Count()
}

// IsEmpty reports whether the frontier has no active vertices.
func (e *Engine) IsEmpty() bool {
	return e.FrontierSize() == 0
}

// Round executes one traversal round using relax, and returns the number
// of vertices newly added to the next frontier.
func (e *Engine) Round(relax TryRelax) int {
	e.maybeSwitchToDense()
	var added int
	if e.sparse {
		added = e.sparseRelax(relax)
	} else {
		added = e.denseRelax(relax)
	}
	e.maybeSwitchToSparse()
	return added
}

func (e *Engine) outDegreeSum() uint64 {
	var sum uint64
	for _, u := range e.frontier {
		sum += uint64(e.g.Degree(u))
	}
	return sum
}

func (e *Engine) maybeSwitchToDense() {
	if !e.sparse {
		return
	}
	outEdges := e.outDegreeSum()
	if e.t.SparseToDenseDivisor == 0 {
		return
	}
	threshold := e.g.M / e.t.SparseToDenseDivisor
	if uint64(len(e.frontier))+outEdges < threshold {
		return
	}
	e.inFrontier.ClearAll()
	for _, u := range e.frontier {
		e.inFrontier.Set(int(u))
	}
	e.sparse = false
}

// estimateDenseActive samples SampleCount vertices from inFrontier (which
// denseRelax has already swapped to hold the post-round frontier) and
// extrapolates.
func (e *Engine) estimateDenseActive() int {
	n := e.inFrontier.Size()
	if n == 0 {
		return 0
	}
	samples := e.t.SampleCount
	if samples <= 0 || samples > n {
		samples = n
	}
	hits := 0
	for i := 0; i < samples; i++ {
		idx := int(xhash.Hash64(uint64(i)) % uint64(n))
		if e.inFrontier.Test(idx) {
			hits++
		}
	}
	return hits * n / samples
}

func (e *Engine) maybeSwitchToSparse() {
	if e.sparse {
		return
	}
	if e.t.DenseToSparseDivisor == 0 {
		return
	}
	est := e.estimateDenseActive()
	if uint64(est)*e.t.DenseToSparseDivisor >= uint64(e.inFrontier.Size()) {
		return
	}
	ints := e.inFrontier.ToSlice()
	packed := make([]uint32, len(ints))
	for i, v := range ints {
		packed[i] = uint32(v)
	}
	e.frontier = packed
	e.sparse = true
}

// queuePool recycles the local-queue drain buffer across sparseRelax calls,
// avoiding a fresh allocation per frontier vertex.
var queuePool = collections.NewSlicePool[uint32](1024)

// sparseRelax implements the hashbag-backed sparse round: every frontier
// vertex is drained in parallel, attempting relax on each out-edge;
// vertices that newly join the frontier are bagged (Bag.Insert is safe
// for many concurrent inserters) and packed back into a slice once every
// worker has finished.
func (e *Engine) sparseRelax(relax TryRelax) int {
	bag := hashbag.New(max(1, int(e.outDegreeSum())))

	parallel.ParallelFor(0, len(e.frontier), func(i int) {
		u := e.frontier[i]
		e.relaxFromSparse(u, relax, bag)
	}, e.t.BlockSize)

	e.frontier = bag.Pack()
	return len(e.frontier)
}

// relaxFromSparse drains u, attempting relax on each out-edge; when u's
// out-degree is at or below BlockSize it also local-queue-drains any
// newly-discovered low-degree neighbours depth-first (up to
// LocalQueueSize) before overflowing the rest into the shared bag.
// High-degree neighbour lists are themselves fanned out in parallel, per
// deg(f) > BLOCK_SIZE.
func (e *Engine) relaxFromSparse(u uint32, relax TryRelax, bag *hashbag.Bag) {
	nbrs := e.g.OutNeighbors(u)
	if len(nbrs) > e.t.BlockSize {
		parallel.ParallelFor(0, len(nbrs), func(j int) {
			edge := nbrs[j]
			if relax(u, edge.V, edge) {
				bag.Insert(edge.V)
			}
		}, e.t.BlockSize)
		return
	}

	queuePtr := queuePool.Get()
	queue := (*queuePtr)[:0]
	queue = append(queue, u)
	for len(queue) > 0 {
		cur := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		curNbrs := e.g.OutNeighbors(cur)
		if len(curNbrs) > e.t.BlockSize {
			parallel.ParallelFor(0, len(curNbrs), func(j int) {
				edge := curNbrs[j]
				if relax(cur, edge.V, edge) {
					bag.Insert(edge.V)
				}
			}, e.t.BlockSize)
			continue
		}
		for _, edge := range curNbrs {
			if relax(cur, edge.V, edge) {
				if len(queue) < e.t.LocalQueueSize {
					queue = append(queue, edge.V)
				} else {
					bag.Insert(edge.V)
				}
			}
		}
	}
	*queuePtr = queue
	queuePool.Put(queuePtr)
}

// denseRelax implements the bitset pull round: parallel-for over every
// vertex, scanning in-neighbours for the first one present in the current
// frontier. Settled vertices are not skipped here; only the relax callback
// decides whether a target accepts the update.
func (e *Engine) denseRelax(relax TryRelax) int {
	gt := e.gt
	if gt == nil {
		gt = e.g
	}
	e.inNextFrontier.ClearAll()

	var added int64
	parallel.ParallelFor(0, e.inFrontier.Size(), func(i int) {
		v := uint32(i)
		for _, edge := range gt.OutNeighbors(v) {
			u := edge.V
			if !e.inFrontier.Test(int(u)) {
				continue
			}
			if relax(u, v, edge) {
				e.inNextFrontier.Set(int(v))
				atomic.AddInt64(&added, 1)
			}
			break
		}
	})

	e.inFrontier, e.inNextFrontier = e.inNextFrontier, e.inFrontier
	return int(added)
}
