// Package sssp implements single-source shortest paths over the shared
// frontier engine using a stepping scheduler: rho-stepping, delta-stepping,
// and Bellman-Ford all share the same round structure and differ only in
// how they compute the distance threshold admitted into a round.
package sssp

import (
	"math"
	"sort"
	"sync"

	"github.com/ucrparlay/pasgal-go/pkg/atomicx"
	"github.com/ucrparlay/pasgal-go/pkg/frontier"
	"github.com/ucrparlay/pasgal-go/pkg/pgraph"
)

const unreached = math.MaxInt64

// Result holds the shortest-path distance from the source to every vertex.
type Result struct {
	Dist []int64
}

// Reached reports whether v was ever relaxed.
func (r *Result) Reached(v uint32) bool { return r.Dist[v] != unreached }

// Policy picks the distance threshold admitted into the next round, given
// the round number and the current frontier's distance values.
type Policy interface {
	Threshold(round int, frontierDist []int64) int64
}

// RhoStepping samples at most NumSamples distances (64 when unset) from
// the current sparse frontier, sorts them, and targets the
// Rho/|F|*samples-th quantile: the threshold that admits roughly Rho units
// of relaxation work per round. In dense rounds no frontier distances are
// passed in, nothing is sampled, and the threshold admits every vertex.
type RhoStepping struct {
	Rho        int64
	NumSamples int
}

func (p RhoStepping) Threshold(round int, frontierDist []int64) int64 {
	samples := p.NumSamples
	if samples <= 0 {
		samples = 64
	}
	vals := sampleDistances(frontierDist, samples)
	if len(vals) == 0 {
		return unreached
	}
	sort.Slice(vals, func(i, j int) bool { return vals[i] < vals[j] })
	idx := int(p.Rho * int64(len(vals)) / int64(max64(1, int64(len(frontierDist)))))
	if idx >= len(vals) {
		idx = len(vals) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return vals[idx]
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func sampleDistances(dist []int64, n int) []int64 {
	if len(dist) <= n {
		out := make([]int64, len(dist))
		copy(out, dist)
		return out
	}
	out := make([]int64, n)
	step := len(dist) / n
	for i := 0; i < n; i++ {
		out[i] = dist[i*step]
	}
	return out
}

// DeltaStepping admits a threshold that increases by Delta every round,
// independent of the frontier's contents.
type DeltaStepping struct {
	Delta int64
	thres int64
}

func (p *DeltaStepping) Threshold(round int, frontierDist []int64) int64 {
	p.thres += p.Delta
	return p.thres
}

// BellmanFord admits every edge every round (threshold = infinity),
// trading round efficiency for a minimal, always-correct scaffold.
type BellmanFord struct{}

func (BellmanFord) Threshold(round int, frontierDist []int64) int64 { return unreached }

// Run computes single-source shortest paths from s using the given
// policy. gt supplies in-neighbours for the dense pull step; pass g
// itself for a symmetrized graph.
func Run(g, gt *pgraph.Graph, s uint32, policy Policy) *Result {
	dist := make([]atomicx.U64, g.N)
	for i := range dist {
		dist[i].Store(uint64(unreached))
	}
	dist[s].Store(0)

	e := frontier.NewEngine(g, gt, frontier.DefaultThresholds())
	e.SetFrontier([]uint32{s})

	// pending marks frontier vertices whose distance is above the round's
	// threshold; they are held back and rejoin the frontier for a later round.
	pending := make([]atomicx.U32, g.N)
	var mu sync.Mutex

	round := 0
	for !e.IsEmpty() {
		var frontierDist []int64
		if sparse := e.SparseFrontier(); sparse != nil {
			frontierDist = make([]int64, len(sparse))
			for i, v := range sparse {
				frontierDist[i] = int64(dist[v].Load())
			}
		}
		thres := policy.Threshold(round, frontierDist)

		var deferred []uint32
		e.Round(func(u, v uint32, edge pgraph.Edge) bool {
			du := int64(dist[u].Load())
			if du > thres {
				if pending[u].CompareAndSwap(0, 1) {
					mu.Lock()
					deferred = append(deferred, u)
					mu.Unlock()
				}
				return false
			}
			return atomicx.WriteMinU64(&dist[v], uint64(du+edge.W))
		})
		for _, u := range deferred {
			pending[u].Store(0)
		}
		e.AddToFrontier(deferred)
		round++
	}

	out := &Result{Dist: make([]int64, g.N)}
	for i := range out.Dist {
		out.Dist[i] = int64(dist[i].Load())
	}
	return out
}
