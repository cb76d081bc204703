// Package bcc computes biconnected components via the Euler-tour tagging
// approach: a spanning forest gives first/last discovery positions and a
// parent for every vertex, non-tree edges extend per-position low/high
// bounds, a sparse-table range query folds those bounds over each
// vertex's subtree, and a predicate built from the result feeds a final
// predicate-filtered connectivity pass whose labels are BCC membership.
package bcc

import (
	"math"

	"github.com/ucrparlay/pasgal-go/internal/connectivity"
	"github.com/ucrparlay/pasgal-go/pkg/pgraph"
	"github.com/ucrparlay/pasgal-go/pkg/sparsetable"
)

const noParent = ^uint32(0)

// Result holds the biconnected-component label of every vertex.
type Result struct {
	Label []uint32
}

// Run computes biconnected components of the symmetrized graph g using
// the spanning forest edges produced by connectivity.Run in forest mode.
func Run(g *pgraph.Graph, forest []connectivity.Edge) *Result {
	n := int(g.N)
	treeAdj := buildTreeAdjacency(n, forest)

	parent := make([]uint32, n)
	first := make([]int, n)
	last := make([]int, n)
	for i := range parent {
		parent[i] = noParent
	}

	order := make([]uint32, 0, 2*n)
	visited := make([]bool, n)
	for root := 0; root < n; root++ {
		if visited[root] {
			continue
		}
		dfsEulerTour(uint32(root), treeAdj, visited, parent, first, last, &order)
	}

	lowSeq := make([]int, len(order))
	highSeq := make([]int, len(order))
	for i := range lowSeq {
		lowSeq[i] = math.MaxInt32
		highSeq[i] = math.MinInt32
	}
	for v := 0; v < n; v++ {
		pos := first[v]
		lowSeq[pos] = pos
		highSeq[pos] = pos
	}

	isTreeEdge := make(map[[2]uint32]bool, len(forest)*2)
	for _, e := range forest {
		isTreeEdge[[2]uint32{e.U, e.V}] = true
		isTreeEdge[[2]uint32{e.V, e.U}] = true
	}

	for u := uint32(0); u < uint32(n); u++ {
		for _, e := range g.OutNeighbors(u) {
			v := e.V
			if u >= v || isTreeEdge[[2]uint32{u, v}] {
				continue
			}
			fu, fv := first[u], first[v]
			lo, hi := fu, fv
			if lo > hi {
				lo, hi = hi, lo
			}
			if lo < lowSeq[hi] {
				lowSeq[hi] = lo
			}
			if hi > highSeq[lo] {
				highSeq[lo] = hi
			}
		}
	}

	minMonoid := sparsetable.Monoid[int]{Identity: math.MaxInt32, Combine: func(a, b int) int {
		if a < b {
			return a
		}
		return b
	}}
	maxMonoid := sparsetable.Monoid[int]{Identity: math.MinInt32, Combine: func(a, b int) int {
		if a > b {
			return a
		}
		return b
	}}
	lowTable := sparsetable.New(lowSeq, minMonoid)
	highTable := sparsetable.New(highSeq, maxMonoid)

	low := make([]int, n)
	high := make([]int, n)
	for v := 0; v < n; v++ {
		low[v] = lowTable.Query(first[v], last[v]+1)
		high[v] = highTable.Query(first[v], last[v]+1)
	}

	critical := func(u, v uint32) bool {
		return first[u] <= low[v] && last[u] >= high[v]
	}
	backward := func(u, v uint32) bool {
		return first[u] <= first[v] && last[u] >= first[v]
	}

	pred := func(u, v uint32, _ pgraph.Edge) bool {
		if parent[v] == u {
			return !critical(u, v)
		}
		if parent[u] == v {
			return !critical(v, u)
		}
		return !backward(u, v) && !backward(v, u)
	}

	opt := connectivity.DefaultOptions()
	opt.Pred = pred
	res := connectivity.Run(g, g, opt)
	return &Result{Label: res.Label}
}

func buildTreeAdjacency(n int, forest []connectivity.Edge) [][]uint32 {
	adj := make([][]uint32, n)
	for _, e := range forest {
		adj[e.U] = append(adj[e.U], e.V)
		adj[e.V] = append(adj[e.V], e.U)
	}
	return adj
}

// dfsEulerTour walks one tree, recording a pre/post order tour: every
// vertex is appended once on entry and once more after its last child
// returns, so first[v] is its entry position and last[v] its exit position.
func dfsEulerTour(root uint32, adj [][]uint32, visited []bool, parent []uint32, first, last []int, order *[]uint32) {
	type frame struct {
		v   uint32
		idx int
	}
	stack := []frame{{v: root, idx: 0}}
	visited[root] = true
	first[root] = len(*order)
	*order = append(*order, root)

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.idx >= len(adj[top.v]) {
			last[top.v] = len(*order)
			*order = append(*order, top.v)
			stack = stack[:len(stack)-1]
			continue
		}
		next := adj[top.v][top.idx]
		top.idx++
		if visited[next] {
			continue
		}
		visited[next] = true
		parent[next] = top.v
		first[next] = len(*order)
		*order = append(*order, next)
		stack = append(stack, frame{v: next, idx: 0})
	}
}
