package connectivity

import (
	"testing"

	"github.com/ucrparlay/pasgal-go/pkg/pgraph"
)

// twoTriangles builds two disjoint triangles: {0,1,2} and {3,4,5}.
func twoTriangles() *pgraph.Graph {
	adj := [][]uint32{
		{1, 2}, {0, 2}, {0, 1},
		{4, 5}, {3, 5}, {3, 4},
	}
	g := &pgraph.Graph{N: 6, Symmetrized: true}
	g.Offsets = make([]uint64, 7)
	for i, nbrs := range adj {
		g.Offsets[i+1] = g.Offsets[i] + uint64(len(nbrs))
	}
	g.Edges = make([]pgraph.Edge, g.Offsets[6])
	idx := 0
	for _, nbrs := range adj {
		for _, v := range nbrs {
			g.Edges[idx] = pgraph.Edge{V: v}
			idx++
		}
	}
	g.M = uint64(idx)
	return g
}

func TestTwoTrianglesFormTwoComponents(t *testing.T) {
	g := twoTriangles()
	res := Run(g, g, DefaultOptions())

	for i := 0; i < 3; i++ {
		if res.Label[i] != res.Label[0] {
			t.Fatalf("vertex %d not in the same component as vertex 0", i)
		}
	}
	for i := 3; i < 6; i++ {
		if res.Label[i] != res.Label[3] {
			t.Fatalf("vertex %d not in the same component as vertex 3", i)
		}
	}
	if res.Label[0] == res.Label[3] {
		t.Fatal("the two triangles must not merge into one component")
	}
}

func TestForestModeProducesSpanningEdges(t *testing.T) {
	g := twoTriangles()
	opt := DefaultOptions()
	opt.WantForest = true
	res := Run(g, g, opt)
	if len(res.Forest) == 0 {
		t.Fatal("expected at least some spanning forest edges")
	}
}
