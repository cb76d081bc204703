// Package bfs implements breadth-first search and (single-source,
// multi-source) reachability over the shared frontier engine.
package bfs

import (
	"math"

	"github.com/ucrparlay/pasgal-go/pkg/frontier"
	"github.com/ucrparlay/pasgal-go/pkg/pgraph"
)

const unreached = math.MaxInt32

// Result holds the per-vertex BFS distance from the source(s); Dist[v] is
// unreached (never overwritten) for vertices not connected to any source.
type Result struct {
	Dist []int32
}

// Reached reports whether v was ever visited.
func (r *Result) Reached(v uint32) bool { return r.Dist[v] != unreached }

// Run computes single-source BFS distances from s over g (gt supplies
// in-neighbours for the dense pull step; pass g itself for symmetrized
// graphs).
func Run(g, gt *pgraph.Graph, s uint32) *Result {
	return MultiSource(g, gt, []uint32{s})
}

// MultiSource computes BFS distances from the nearest of any source in
// sources simultaneously.
func MultiSource(g, gt *pgraph.Graph, sources []uint32) *Result {
	dist := make([]int32, g.N)
	for i := range dist {
		dist[i] = unreached
	}
	for _, s := range sources {
		dist[s] = 0
	}

	e := frontier.NewEngine(g, gt, frontier.DefaultThresholds())
	e.SetFrontier(append([]uint32(nil), sources...))

	for !e.IsEmpty() {
		e.Round(func(u, v uint32, _ pgraph.Edge) bool {
			if dist[v] == unreached {
				dist[v] = dist[u] + 1
				return true
			}
			return false
		})
	}

	return &Result{Dist: dist}
}

// Reach computes the set of vertices reachable from s (BFS distances
// without recording order), matching the reach() primitive the SCC
// driver builds on.
func Reach(g, gt *pgraph.Graph, s uint32) []bool {
	res := Run(g, gt, s)
	out := make([]bool, g.N)
	for v := range out {
		out[v] = res.Reached(uint32(v))
	}
	return out
}
