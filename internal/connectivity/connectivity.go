// Package connectivity implements connected-components and spanning
// forest construction: low-diameter decomposition to collapse most of the
// graph into a few large components cheaply, followed by a union-find
// pass to merge any components LDD failed to unify.
package connectivity

import (
	"github.com/ucrparlay/pasgal-go/internal/ldd"
	"github.com/ucrparlay/pasgal-go/pkg/parallel"
	"github.com/ucrparlay/pasgal-go/pkg/pgraph"
	"github.com/ucrparlay/pasgal-go/pkg/unionfind"
	"github.com/ucrparlay/pasgal-go/pkg/xhash"
)

// connectivityBlock bounds how many vertices each BlockedFor span covers
// while unioning out-edges, sizing the per-worker forest-edge buffers.
const connectivityBlock = 1024

// Edge is a spanning-forest tree edge.
type Edge struct {
	U, V uint32
}

// Result holds the final component label of every vertex (the root of its
// class under union-find) and, in forest mode, the edges of a spanning
// forest for the whole graph.
type Result struct {
	Label  []uint32
	Forest []Edge
}

// Options configures one connectivity run.
type Options struct {
	Beta       float64
	Pred       func(u, v uint32, e pgraph.Edge) bool
	WantForest bool
}

// DefaultOptions returns beta=1.5 with no predicate filter.
func DefaultOptions() Options {
	return Options{Beta: 1.5}
}

// Run computes connected components of g (gt supplies in-neighbours for
// LDD's dense pull step).
func Run(g, gt *pgraph.Graph, opt Options) *Result {
	n := int(g.N)
	lddOpt := ldd.DefaultOptions(n)
	lddOpt.Beta = opt.Beta
	lddOpt.Pred = opt.Pred
	lddOpt.WantForest = opt.WantForest
	lddRes := ldd.Run(g, gt, lddOpt)

	parents := unionfind.NewParents(n)
	find := unionfind.FindCompress
	unite := unionfind.NewUnite(find)

	maxLabel := pickModeLabel(lddRes.Label)

	// Parallel-scan every vertex's out-edges, uniting whichever components
	// LDD left unmerged. unite is lock-free (pkg/unionfind), so the only
	// shared mutable state across workers is the optional forest-edge
	// list, which each worker accumulates into its own slot indexed by
	// workerID and which is concatenated once every span has finished.
	numWorkers := parallel.NumWorkers()
	localForest := make([][]Edge, numWorkers)
	parallel.BlockedFor(0, n, connectivityBlock, func(lo, hi, workerID int) {
		for i := lo; i < hi; i++ {
			u := uint32(i)
			if find(parents, lddRes.Label[u]) == find(parents, maxLabel) {
				continue
			}
			for _, e := range g.OutNeighbors(u) {
				if opt.Pred != nil && !opt.Pred(u, e.V, e) {
					continue
				}
				lost := unite(parents, lddRes.Label[u], lddRes.Label[e.V])
				if lost != unionfind.Sentinel() && opt.WantForest {
					localForest[workerID] = append(localForest[workerID], Edge{U: u, V: e.V})
				}
			}
		}
	})

	var forestEdges []Edge
	if opt.WantForest {
		for _, le := range localForest {
			forestEdges = append(forestEdges, le...)
		}
	}

	label := make([]uint32, n)
	for i := 0; i < n; i++ {
		label[i] = find(parents, lddRes.Label[i])
	}

	if opt.WantForest {
		for i := 0; i < n; i++ {
			p := lddRes.Parent[i]
			if p != ^uint32(0) {
				forestEdges = append(forestEdges, Edge{U: p, V: uint32(i)})
			}
		}
	}

	return &Result{Label: label, Forest: forestEdges}
}

// pickModeLabel samples a handful of labels and returns the most frequent
// one observed, approximating the mode without a full histogram pass.
func pickModeLabel(label []uint32) uint32 {
	n := len(label)
	if n == 0 {
		return 0
	}
	const samples = 64
	counts := make(map[uint32]int, samples)
	best, bestCount := label[0], 0
	for i := 0; i < samples; i++ {
		idx := int(xhash.Hash64(uint64(i)) % uint64(n))
		l := label[idx]
		counts[l]++
		if counts[l] > bestCount {
			best, bestCount = l, counts[l]
		}
	}
	return best
}
