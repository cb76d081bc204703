// Package ldd implements low-diameter decomposition: a randomized
// partition of the vertex set into components of expected radius
// O(log n / beta), used as the first stage of connectivity and
// biconnected-components.
package ldd

import (
	"math"
	"sync/atomic"

	"github.com/ucrparlay/pasgal-go/pkg/frontier"
	"github.com/ucrparlay/pasgal-go/pkg/pgraph"
	"github.com/ucrparlay/pasgal-go/pkg/xhash"
)

const unlabeled = math.MaxUint32

// Result holds the component label of every vertex and, when spanning
// forest edges were requested, the parent claimed for each vertex.
type Result struct {
	Label  []uint32
	Parent []uint32 // nil unless forest mode was requested
}

// Options configures one decomposition run.
type Options struct {
	Beta       float64 // center-activation growth rate, default 1.5
	NumSamples int     // number of random centers to draw, DefaultOptions uses sqrt(n)+1
	WantForest bool
	Pred       func(u, v uint32, e pgraph.Edge) bool // optional edge predicate filter
}

// DefaultOptions derives sensible center counts from n.
func DefaultOptions(n int) Options {
	samples := int(math.Sqrt(float64(n))) + 1
	return Options{Beta: 1.5, NumSamples: samples}
}

// Run decomposes g into low-diameter components.
func Run(g, gt *pgraph.Graph, opt Options) *Result {
	n := int(g.N)
	label := make([]atomic.Uint32, n)
	for i := range label {
		label[i].Store(unlabeled)
	}
	var parent []atomic.Uint32
	if opt.WantForest {
		parent = make([]atomic.Uint32, n)
		for i := range parent {
			parent[i].Store(unlabeled)
		}
	}

	centers := pickCenters(n, opt.NumSamples)
	e := frontier.NewEngine(g, gt, frontier.LDDThresholds())
	e.SetFrontier(nil)

	consumed := 0
	round := 0
	for consumed < len(centers) || !e.IsEmpty() {
		var newlyActive []uint32
		if consumed < len(centers) {
			batch := int(math.Floor(math.Exp(float64(round) * opt.Beta)))
			if batch < 1 {
				batch = 1
			}
			end := consumed + batch
			if end > len(centers) {
				end = len(centers)
			}
			for _, c := range centers[consumed:end] {
				if label[c].CompareAndSwap(unlabeled, c) {
					newlyActive = append(newlyActive, c)
				}
			}
			consumed = end
		}
		if len(newlyActive) == 0 && e.IsEmpty() {
			break
		}
		if len(newlyActive) > 0 {
			e.AddToFrontier(newlyActive)
		}

		e.Round(func(u, v uint32, edge pgraph.Edge) bool {
			if opt.Pred != nil && !opt.Pred(u, v, edge) {
				return false
			}
			if !label[v].CompareAndSwap(unlabeled, label[u].Load()) {
				return false
			}
			if opt.WantForest {
				parent[v].Store(u)
			}
			return true
		})
		round++
	}

	out := &Result{Label: make([]uint32, n)}
	for i := range out.Label {
		l := label[i].Load()
		if l == unlabeled {
			l = uint32(i) // unclaimed vertex becomes its own singleton component
		}
		out.Label[i] = l
	}
	if opt.WantForest {
		out.Parent = make([]uint32, n)
		for i := range out.Parent {
			out.Parent[i] = parent[i].Load()
		}
	}
	return out
}

func pickCenters(n, numSamples int) []uint32 {
	if numSamples > n {
		numSamples = n
	}
	seen := make(map[uint32]bool, numSamples)
	centers := make([]uint32, 0, numSamples)
	for i := uint64(0); len(centers) < numSamples; i++ {
		v := uint32(xhash.Hash64(i) % uint64(n))
		if !seen[v] {
			seen[v] = true
			centers = append(centers, v)
		}
	}
	return centers
}
