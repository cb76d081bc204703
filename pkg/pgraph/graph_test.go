package pgraph

import (
	"os"
	"path/filepath"
	"testing"
)

// buildTestGraph is the directed path 0->1->2->3 plus a branch 1->3.
func buildTestGraph() *Graph {
	g := &Graph{N: 4, M: 4}
	g.Offsets = []uint64{0, 1, 3, 4, 4}
	g.Edges = []Edge{
		{V: 1}, // from 0
		{V: 2}, // from 1
		{V: 3}, // from 1
		{V: 3}, // from 2
	}
	return g
}

func TestOutNeighbors(t *testing.T) {
	g := buildTestGraph()
	if got := g.Degree(1); got != 2 {
		t.Fatalf("degree(1) = %d, want 2", got)
	}
	nbrs := g.OutNeighbors(1)
	if len(nbrs) != 2 || nbrs[0].V != 2 || nbrs[1].V != 3 {
		t.Fatalf("unexpected neighbors of 1: %+v", nbrs)
	}
}

func TestMakeInverse(t *testing.T) {
	g := buildTestGraph()
	g.M = 4
	g.MakeInverse()
	in3 := g.InNeighbors(3)
	if len(in3) != 2 {
		t.Fatalf("expected 2 in-edges for vertex 3, got %d", len(in3))
	}
	seen := map[uint32]bool{}
	for _, e := range in3 {
		seen[e.V] = true
	}
	if !seen[1] || !seen[2] {
		t.Fatalf("expected in-edges from {1,2}, got %+v", in3)
	}
}

func TestTextFormatRoundTrip(t *testing.T) {
	g := buildTestGraph()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.adj")
	if err := WriteTextFormat(g, path); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	got, err := ReadTextFormat(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.N != g.N || got.M != g.M {
		t.Fatalf("n/m mismatch: got n=%d m=%d, want n=%d m=%d", got.N, got.M, g.N, g.M)
	}
	for i, e := range g.Edges {
		if got.Edges[i].V != e.V {
			t.Fatalf("edge %d mismatch: got %d, want %d", i, got.Edges[i].V, e.V)
		}
	}
}

func TestBinaryFormatRoundTrip(t *testing.T) {
	g := buildTestGraph()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.bin")
	if err := WriteBinaryFormat(g, path); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	got, err := ReadBinaryFormat(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.N != g.N || got.M != g.M {
		t.Fatalf("n/m mismatch")
	}
	for i := range g.Offsets {
		if got.Offsets[i] != g.Offsets[i] {
			t.Fatalf("offset %d mismatch: got %d, want %d", i, got.Offsets[i], g.Offsets[i])
		}
	}
}

func TestReadGraphDispatchesOnExtension(t *testing.T) {
	g := buildTestGraph()
	dir := t.TempDir()
	adjPath := filepath.Join(dir, "g.adj")
	WriteTextFormat(g, adjPath)
	got, err := ReadGraph(adjPath)
	if err != nil || got.N != g.N {
		t.Fatalf("ReadGraph(.adj) failed: %v", err)
	}

	unknown := filepath.Join(dir, "g.xyz")
	os.WriteFile(unknown, []byte("junk"), 0o644)
	if _, err := ReadGraph(unknown); err == nil {
		t.Fatal("expected error for unrecognized extension")
	}
}

func TestSymmetrizeProducesMutualEdges(t *testing.T) {
	g := buildTestGraph()
	sym := Symmetrize(g)
	if !sym.Symmetrized {
		t.Fatal("expected Symmetrized = true")
	}
	for u := uint32(0); u < sym.N; u++ {
		for _, e := range sym.OutNeighbors(u) {
			found := false
			for _, back := range sym.OutNeighbors(e.V) {
				if back.V == u {
					found = true
				}
			}
			if !found {
				t.Fatalf("edge %d->%d has no reverse", u, e.V)
			}
		}
	}
}

func TestTransposeKeepsEdgeCountAndReversesEdge(t *testing.T) {
	g := buildTestGraph()
	tr := Transpose(g)
	if tr.M != g.M {
		t.Fatalf("transpose changed edge count: got %d, want %d", tr.M, g.M)
	}
	// original has edge 0->1; transpose must have 1->0.
	found := false
	for _, e := range tr.OutNeighbors(1) {
		if e.V == 0 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected transposed edge 1->0")
	}
}

func TestGenerateRandomWeightIsDeterministic(t *testing.T) {
	g1 := buildTestGraph()
	g2 := buildTestGraph()
	GenerateRandomWeight(g1, 1, 100)
	GenerateRandomWeight(g2, 1, 100)
	if !g1.Weighted {
		t.Fatal("expected Weighted = true")
	}
	for i := range g1.Edges {
		if g1.Edges[i].W != g2.Edges[i].W {
			t.Fatalf("weight generation not deterministic at edge %d", i)
		}
		if g1.Edges[i].W < 1 || g1.Edges[i].W >= 100 {
			t.Fatalf("weight %d out of range [1,100)", g1.Edges[i].W)
		}
	}
}
