// Package scc computes strongly connected components: trim vertices with
// no in- or out-edges as trivial singletons, find the largest SCC via one
// forward/backward reach from a random vertex, then peel the rest with
// doubling rounds of multi-source forward/backward reachability whose
// cross-product is intersected through a pair of resizable multimaps.
package scc

import (
	"math/rand"
	"sort"

	"github.com/ucrparlay/pasgal-go/internal/bfs"
	"github.com/ucrparlay/pasgal-go/pkg/parallel"
	"github.com/ucrparlay/pasgal-go/pkg/pgraph"
	"github.com/ucrparlay/pasgal-go/pkg/rtable"
)

const topBit = uint32(1) << 31

// reachBlock bounds how many sources/frontier vertices each BlockedFor
// span covers during multi-reach, sizing the per-worker next-frontier
// buffers indexed by workerID.
const reachBlock = 1024

// Result holds each vertex's component label. Two vertices share a
// component iff Label[u] == Label[v] (ignoring the settled/topBit marker,
// stripped by Run before returning).
type Result struct {
	Label []uint32
}

// Run computes SCCs of g (gt must be g's transpose).
func Run(g, gt *pgraph.Graph, rng *rand.Rand) *Result {
	n := int(g.N)
	label := make([]uint32, n)
	settled := make([]bool, n)
	for i := range label {
		label[i] = uint32(i)
	}

	trim1(g, gt, settled)

	// Labels handed out by firstReach and the multi-reach rounds start at n,
	// above every vertex's initial label.
	labelOffset := uint32(n)
	firstReach(g, gt, rng, settled, label, &labelOffset)

	remaining := collectUnsettled(settled)
	rng.Shuffle(len(remaining), func(i, j int) { remaining[i], remaining[j] = remaining[j], remaining[i] })

	step := 64
	tableCap := max(2*int(0.3*float64(n))+1, 1024)
	for len(remaining) > 0 {
		if step > len(remaining) {
			step = len(remaining)
		}
		batch := remaining[:step]
		remaining = remaining[step:]

		fwd := rtable.New(tableCap)
		bwd := rtable.New(tableCap)
		multiReachSafe(g, batch, fwd)
		multiReachSafe(gt, batch, bwd)

		intersectAndLabel(fwd, bwd, label, settled, labelOffset)

		step = int(float64(step) * 1.5)
		tableCap = max(tableCap, int(float64(tableCap)*1.5))
		labelOffset += uint32(len(batch))
	}

	for i := range label {
		label[i] &^= topBit
	}
	return &Result{Label: label}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// trim1 marks every vertex with zero in- or out-degree as its own
// singleton component.
func trim1(g, gt *pgraph.Graph, settled []bool) {
	for u := uint32(0); u < g.N; u++ {
		if g.Degree(u) == 0 || len(gt.OutNeighbors(u)) == 0 {
			settled[u] = true
		}
	}
}

// firstReach picks a random unsettled vertex, reaches forward and
// backward, and marks the intersection (almost always the graph's
// largest SCC) with a shared settled label.
func firstReach(g, gt *pgraph.Graph, rng *rand.Rand, settled []bool, label []uint32, labelOffset *uint32) {
	candidates := collectUnsettled(settled)
	if len(candidates) == 0 {
		return
	}
	s := candidates[rng.Intn(len(candidates))]

	fwd := bfs.Reach(g, gt, s)
	bwd := bfs.Reach(gt, g, s)

	l := *labelOffset
	*labelOffset++
	for v := uint32(0); v < uint32(len(fwd)); v++ {
		if fwd[v] && bwd[v] {
			label[v] = l | topBit
			settled[v] = true
		}
	}
}

func collectUnsettled(settled []bool) []uint32 {
	var out []uint32
	for i, s := range settled {
		if !s {
			out = append(out, uint32(i))
		}
	}
	return out
}

// multiReachSafe runs multi-source reachability from sources (one
// distinct label per source, label = its index within sources), doubling
// the table and restarting the round whenever it overfills.
func multiReachSafe(g *pgraph.Graph, sources []uint32, table *rtable.Table) {
	for {
		if multiReach(g, sources, table) {
			return
		}
		table.DoubleSize()
	}
}

// multiReach propagates one label per source outward along edges in
// parallel, level by level, storing (vertex, label) pairs in table.
// table.Insert is lock-free and takes a workerID so each BlockedFor worker
// bumps its own padded counter (pkg/rtable) instead of contending on one.
// Each worker accumulates its own slice of the next frontier, indexed by
// workerID, concatenated once the level finishes. Returns false if the
// table overfilled partway through (caller must double and retry).
func multiReach(g *pgraph.Graph, sources []uint32, table *rtable.Table) bool {
	numWorkers := parallel.NumWorkers()
	localNext := make([][]uint32, numWorkers)
	overfull := make([]bool, numWorkers)

	parallel.BlockedFor(0, len(sources), reachBlock, func(lo, hi, workerID int) {
		for i := lo; i < hi; i++ {
			s := sources[i]
			if !table.Insert(s, uint32(i), workerID) {
				if table.Overfull() {
					overfull[workerID] = true
				}
				continue
			}
			localNext[workerID] = append(localNext[workerID], s)
		}
	})
	for _, of := range overfull {
		if of {
			return false
		}
	}
	var frontier []uint32
	for _, ln := range localNext {
		frontier = append(frontier, ln...)
	}

	for len(frontier) > 0 {
		for w := range localNext {
			localNext[w] = localNext[w][:0]
			overfull[w] = false
		}

		parallel.BlockedFor(0, len(frontier), reachBlock, func(lo, hi, workerID int) {
			for idx := lo; idx < hi; idx++ {
				u := frontier[idx]
				it := table.InitIter(u)
				if !it.Valid() {
					continue
				}
				labels := []uint32{it.Value()}
				for it.Next() {
					labels = append(labels, it.Value())
				}
				for _, e := range g.OutNeighbors(u) {
					for _, l := range labels {
						if table.Insert(e.V, l, workerID) {
							localNext[workerID] = append(localNext[workerID], e.V)
						} else if table.Overfull() {
							overfull[workerID] = true
						}
					}
				}
			}
		})

		for _, of := range overfull {
			if of {
				return false
			}
		}
		var next []uint32
		for _, ln := range localNext {
			next = append(next, ln...)
		}
		frontier = next
	}
	return true
}

// intersectAndLabel walks the smaller table's entries, checks membership
// in the larger, and folds the result into label/settled per the
// settled/unsettled write rule. Table values are source indices; base is
// added to them to form the round's labels. Vertices settled earlier keep
// their labels.
func intersectAndLabel(fwd, bwd *rtable.Table, label []uint32, settled []bool, base uint32) {
	small, large := fwd, bwd
	if fwd.Size() > bwd.Size() {
		small, large = bwd, fwd
	}

	smallPairs := small.Pack()
	sort.Slice(smallPairs, func(i, j int) bool { return smallPairs[i] < smallPairs[j] })
	for _, kv := range smallPairs {
		v, l := kv.Key(), kv.Val()+base
		if large.Contains(v, kv.Val()) {
			if l|topBit > label[v] {
				label[v] = l | topBit
			}
			settled[v] = true
		} else if !settled[v] && l > label[v] {
			label[v] = l
		}
	}
	for _, kv := range large.Pack() {
		v, l := kv.Key(), kv.Val()+base
		if !settled[v] && l > label[v] && label[v]&topBit == 0 {
			label[v] = l
		}
	}
}
