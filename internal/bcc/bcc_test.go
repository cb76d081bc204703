package bcc

import (
	"testing"

	"github.com/ucrparlay/pasgal-go/internal/connectivity"
	"github.com/ucrparlay/pasgal-go/pkg/pgraph"
)

// triangleWithPendant builds {0,1,2,3} with edges {01,12,20,23}, symmetric.
func triangleWithPendant() *pgraph.Graph {
	adj := [][]uint32{
		{1, 2},
		{0, 2},
		{0, 1, 3},
		{2},
	}
	g := &pgraph.Graph{N: 4, Symmetrized: true}
	g.Offsets = make([]uint64, 5)
	for i, nbrs := range adj {
		g.Offsets[i+1] = g.Offsets[i] + uint64(len(nbrs))
	}
	g.Edges = make([]pgraph.Edge, g.Offsets[4])
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

func TestTriangleWithPendantHasTwoBCCs(t *testing.T) {
	g := triangleWithPendant()
	opt := connectivity.DefaultOptions()
	opt.WantForest = true
	connRes := connectivity.Run(g, g, opt)

	res := Run(g, connRes.Forest)

	if res.Label[0] != res.Label[1] || res.Label[1] != res.Label[2] {
		t.Fatalf("expected {0,1,2} in the same BCC, got labels %v", res.Label)
	}
	if res.Label[2] == res.Label[3] {
		t.Fatal("edge {2,3} must be its own BCC, distinct from the triangle")
	}

	distinct := map[uint32]bool{}
	for _, l := range res.Label {
		distinct[l] = true
	}
	if len(distinct) != 2 {
		t.Fatalf("expected exactly 2 BCCs, got %d", len(distinct))
	}
}
