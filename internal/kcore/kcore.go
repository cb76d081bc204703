// Package kcore computes the coreness of every vertex: the largest k such
// that the vertex survives repeated peeling of all vertices with fewer
// than k remaining neighbours. Peeling proceeds level by level; within a
// level, the bucket of vertices at that remaining degree is drained with
// a bounded atomic decrement so that concurrent removals can never push a
// vertex's counted degree below the level currently being processed.
//
// High out-degree vertices are peeled in "sample mode" instead: rather
// than an atomic decrement per removed neighbour, each armed vertex has a
// Sampler that fires once a Bernoulli-thinned subset of its removed
// neighbours has been observed, at which point it is recounted exactly.
// check_sample_security additionally forces a recount whenever the
// Chernoff tail bound on that estimate's error grows too large to trust.
package kcore

import (
	"math"

	"github.com/ucrparlay/pasgal-go/pkg/atomicx"
	"github.com/ucrparlay/pasgal-go/pkg/pgraph"
	"github.com/ucrparlay/pasgal-go/pkg/sampler"
	"github.com/ucrparlay/pasgal-go/pkg/xhash"
)

// Result holds the coreness of every vertex.
type Result struct {
	Coreness []int32
}

const (
	// sampleDegreeThreshold is the out-degree above which a vertex is
	// peeled in sample mode: below it, the exact fetch_and_add_bounded
	// path is already cheap enough that sampling buys nothing.
	sampleDegreeThreshold = 64
	// sampleRatio is the "ratio" term in the per-vertex sample rate
	// exp_hits / ((1-ratio)*deg).
	sampleRatio = 0.5
	// securityEpsilon bounds the Chernoff-style error probability
	// check_sample_security tolerates before forcing an exact recount.
	securityEpsilon = 1e-6
)

// Run computes coreness for every vertex of g (undirected; pass a
// symmetrized graph).
func Run(g *pgraph.Graph) *Result {
	n := int(g.N)
	degree := make([]atomicx.U32, n)
	coreness := make([]int32, n)
	alive := make([]bool, n)

	// samplers[v] is armed (non-nil) only for vertices whose out-degree
	// clears sampleDegreeThreshold; every other vertex is peeled exactly
	// via atomicx.FetchSubBoundedU32, as before.
	samplers := make([]*sampler.Sampler, n)
	rates := make([]float64, n)

	logM := math.Log2(float64(g.M) + 2)
	expHits := uint64(logM * logM)
	if expHits < 1 {
		expHits = 1
	}

	for i := 0; i < n; i++ {
		d := uint32(g.Degree(uint32(i)))
		degree[i].Store(d)
		coreness[i] = int32(d)
		alive[i] = true
		if d > sampleDegreeThreshold {
			rate := float64(expHits) / ((1 - sampleRatio) * float64(d))
			if rate > 1 {
				rate = 1
			}
			rates[i] = rate
			threshold := uint64(rate * float64(math.MaxUint64))
			samplers[i] = sampler.New(expHits, threshold)
		}
	}

	remaining := n

	for k := int32(0); remaining > 0; k++ {
		// Collect every still-alive vertex whose current degree has
		// fallen to (or below) this level — the active bucket for k.
		var bucket []uint32
		for v := 0; v < n; v++ {
			if alive[v] && degree[v].Load() <= uint32(k) {
				bucket = append(bucket, uint32(v))
			}
		}

		for len(bucket) > 0 {
			var next []uint32
			var recountBag []uint32
			for _, u := range bucket {
				if !alive[u] {
					continue
				}
				alive[u] = false
				coreness[u] = k
				remaining--
				for _, e := range g.OutNeighbors(u) {
					v := e.V
					if !alive[v] {
						continue
					}
					if s := samplers[v]; s != nil {
						var cb bool
						h := xhash.Hash64(uint64(u)<<32 | uint64(v))
						s.Sample(h, &cb)
						if cb || checkSampleSecurity(s, coreness[v], k, rates[v]) {
							recountBag = append(recountBag, v)
						}
						continue
					}
					old, committed := atomicx.FetchSubBoundedU32(&degree[v], uint32(k))
					if committed && old-1 <= uint32(k) {
						next = append(next, v)
					}
				}
			}

			// Sampling-correction phase: recount each flagged vertex's
			// alive neighbours exactly, since sampled decrements can
			// undercount under heavy concurrent peeling.
			for _, v := range recountBag {
				if !alive[v] {
					continue
				}
				exact := countAliveNeighbors(g, v, alive)
				degree[v].Store(uint32(exact))
				if s := samplers[v]; s != nil {
					s.Reset()
				}
				if exact <= int(k) {
					next = append(next, v)
				}
			}
			bucket = next
		}
	}

	return &Result{Coreness: coreness}
}

// checkSampleSecurity bounds the probability that v's sample-mode hit
// count has under-reported its true removed-neighbour count, via the
// Chernoff tail P(error) <= exp(-n*·r + 2h - h²/(n*·r)), where n* is the
// degree-levels remaining before v would be peeled at k, r is v's sample
// rate, and h is the number of hits the Sampler has actually observed.
// Returns true (force an exact recount) once that bound exceeds
// securityEpsilon, or whenever n*/r collapse to a value the bound can't
// be evaluated at.
func checkSampleSecurity(s *sampler.Sampler, coreness, k int32, rate float64) bool {
	nStar := float64(coreness - k)
	if nStar <= 0 || rate <= 0 {
		return true
	}
	h := float64(s.Hits())
	denom := nStar * rate
	exponent := -denom + 2*h - (h*h)/denom
	return math.Exp(exponent) > securityEpsilon
}

func countAliveNeighbors(g *pgraph.Graph, v uint32, alive []bool) int {
	count := 0
	for _, e := range g.OutNeighbors(v) {
		if alive[e.V] {
			count++
		}
	}
	return count
}
