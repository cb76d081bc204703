// Package pgraph implements the compressed-sparse-row graph representation
// shared by every driver: an offsets array into a flat edge array, built
// either from a text adjacency format, a binary mmap-friendly format, or
// the paired forward/backward hyperlink2012 layout, plus the symmetrize
// and transpose transforms drivers need before running.
package pgraph

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	pasgalerrors "github.com/ucrparlay/pasgal-go/pkg/errors"
	"github.com/ucrparlay/pasgal-go/pkg/parallel"
)

// Edge is a single directed edge (v, w): target vertex and edge weight.
// Unweighted graphs leave W at its zero value.
type Edge struct {
	V uint32
	W int64
}

// Graph is a CSR adjacency list over n vertices, 0-indexed.
type Graph struct {
	N        uint32
	M        uint64
	Weighted bool
	// Symmetrized is true when every edge (u,v) also appears as (v,u); in
	// that case InOffsets/InEdges are left empty and Offsets/Edges double
	// as the in-adjacency too.
	Symmetrized bool

	Offsets []uint64
	Edges   []Edge

	InOffsets []uint64
	InEdges   []Edge
}

// OutNeighbors returns the out-edges of u.
func (g *Graph) OutNeighbors(u uint32) []Edge {
	return g.Edges[g.Offsets[u]:g.Offsets[u+1]]
}

// InNeighbors returns the in-edges of u: its own out-edges if the graph is
// symmetrized, otherwise the precomputed reverse adjacency.
func (g *Graph) InNeighbors(u uint32) []Edge {
	if g.Symmetrized {
		return g.OutNeighbors(u)
	}
	return g.InEdges[g.InOffsets[u]:g.InOffsets[u+1]]
}

// Degree returns the out-degree of u.
func (g *Graph) Degree(u uint32) int {
	return int(g.Offsets[u+1] - g.Offsets[u])
}

// MakeInverse populates InOffsets/InEdges by sorting every edge on its
// target vertex. It always rebuilds them, even for a symmetrized graph,
// whose in-adjacency equals its out-adjacency.
func (g *Graph) MakeInverse() {
	type pair struct {
		key uint32
		e   Edge
	}
	list := make([]pair, g.M)
	parallel.ParallelFor(0, int(g.N), func(ui int) {
		u := uint32(ui)
		for i := g.Offsets[u]; i < g.Offsets[u+1]; i++ {
			list[i] = pair{key: g.Edges[i].V, e: Edge{V: u, W: g.Edges[i].W}}
		}
	}, 1024)

	sort.Slice(list, func(i, j int) bool {
		if list[i].key != list[j].key {
			return list[i].key < list[j].key
		}
		return list[i].e.V < list[j].e.V
	})

	g.InOffsets = make([]uint64, g.N+1)
	for i := range g.InOffsets {
		g.InOffsets[i] = g.M
	}
	g.InEdges = make([]Edge, g.M)
	for i, p := range list {
		g.InEdges[i] = p.e
		if i == 0 || p.key != list[i-1].key {
			g.InOffsets[p.key] = uint64(i)
		}
	}
	for i := len(g.InOffsets) - 2; i >= 0; i-- {
		if g.InOffsets[i] > g.InOffsets[i+1] {
			g.InOffsets[i] = g.InOffsets[i+1]
		}
	}
}

// Validate runs the sanity checks every loader implicitly relies on
// callers to perform before trusting a graph: offsets[0]=0, offsets[n]=m,
// offsets monotone, every edge target in [0,n), and — only when the graph
// claims to be symmetrized — a round-trip check that for every edge (u,v)
// v's own out-edges list u back. The round-trip search is a binary search
// over v's adjacency, so it relies on that adjacency being sorted by
// target; Symmetrize sorts it, the text and binary loaders keep file order.
func (g *Graph) Validate() error {
	n := int(g.N)
	if len(g.Offsets) != n+1 {
		return pasgalerrors.New(pasgalerrors.CodeGraphError, "offsets length does not match vertex count")
	}
	if g.Offsets[0] != 0 {
		return pasgalerrors.New(pasgalerrors.CodeGraphError, "offsets[0] != 0")
	}
	if g.Offsets[n] != g.M {
		return pasgalerrors.New(pasgalerrors.CodeGraphError, "offsets[n] != m")
	}
	for i := 1; i <= n; i++ {
		if g.Offsets[i] < g.Offsets[i-1] {
			return pasgalerrors.New(pasgalerrors.CodeGraphError, "offsets are not monotone")
		}
	}

	var outOfRange atomic.Bool
	parallel.ParallelFor(0, int(g.M), func(i int) {
		if uint64(g.Edges[i].V) >= uint64(g.N) {
			outOfRange.Store(true)
		}
	}, 1024)
	if outOfRange.Load() {
		return pasgalerrors.New(pasgalerrors.CodeGraphError, "edge target out of range")
	}

	if !g.Symmetrized {
		return nil
	}

	var asymmetric atomic.Bool
	parallel.ParallelFor(0, n, func(ui int) {
		u := uint32(ui)
		for _, e := range g.OutNeighbors(u) {
			nbrs := g.OutNeighbors(e.V)
			idx := sort.Search(len(nbrs), func(k int) bool { return nbrs[k].V >= u })
			if idx >= len(nbrs) || nbrs[idx].V != u {
				asymmetric.Store(true)
			}
		}
	}, 256)
	if asymmetric.Load() {
		return pasgalerrors.New(pasgalerrors.CodeGraphError, "graph claims symmetrized but is not symmetric")
	}
	return nil
}

// ReadGraph dispatches on filename extension: ".adj" for the text
// adjacency format, ".bin" for the binary format, and any path containing
// "hyperlink2012" for the paired forward/backward hyperlink layout.
func ReadGraph(path string) (*Graph, error) {
	base := filepath.Base(path)
	switch {
	case strings.Contains(base, "hyperlink2012"):
		return ReadHyperlink2012(path)
	case strings.HasSuffix(path, ".adj"):
		return ReadTextFormat(path)
	case strings.HasSuffix(path, ".bin"):
		return ReadBinaryFormat(path)
	default:
		return nil, pasgalerrors.Wrap(pasgalerrors.CodeGraphError, "unrecognized graph extension", fmt.Errorf("%s", path))
	}
}

// ReadTextFormat parses the PBBS-style "AdjacencyGraph"/"WeightedAdjacencyGraph"
// whitespace-separated text format: header line, n, m, n offsets, m edge
// targets, and (if weighted) m edge weights.
func ReadTextFormat(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pasgalerrors.Wrap(pasgalerrors.CodeGraphError, "cannot open graph file", err)
	}
	tokens := strings.Fields(string(data))
	if len(tokens) < 3 {
		return nil, pasgalerrors.New(pasgalerrors.CodeGraphError, "truncated adjacency graph header")
	}

	header := tokens[0]
	var weighted bool
	switch header {
	case "WeightedAdjacencyGraph":
		weighted = true
	case "AdjacencyGraph":
		weighted = false
	default:
		return nil, pasgalerrors.New(pasgalerrors.CodeGraphError, "unrecognized adjacency graph header: "+header)
	}

	n, err := strconv.ParseUint(tokens[1], 10, 32)
	if err != nil {
		return nil, pasgalerrors.Wrap(pasgalerrors.CodeGraphError, "invalid vertex count", err)
	}
	m, err := strconv.ParseUint(tokens[2], 10, 64)
	if err != nil {
		return nil, pasgalerrors.Wrap(pasgalerrors.CodeGraphError, "invalid edge count", err)
	}

	want := 3 + n + m
	if weighted {
		want += m
	}
	if uint64(len(tokens)) != want {
		return nil, pasgalerrors.New(pasgalerrors.CodeGraphError, "adjacency graph token count does not match header")
	}

	g := &Graph{N: uint32(n), M: m, Weighted: weighted}
	g.Offsets = make([]uint64, n+1)
	g.Edges = make([]Edge, m)

	for i := uint64(0); i < n; i++ {
		v, err := strconv.ParseUint(tokens[3+i], 10, 64)
		if err != nil {
			return nil, pasgalerrors.Wrap(pasgalerrors.CodeGraphError, "invalid offset", err)
		}
		g.Offsets[i] = v
	}
	g.Offsets[n] = m

	base := 3 + n
	for i := uint64(0); i < m; i++ {
		v, err := strconv.ParseUint(tokens[base+i], 10, 32)
		if err != nil {
			return nil, pasgalerrors.Wrap(pasgalerrors.CodeGraphError, "invalid edge target", err)
		}
		g.Edges[i].V = uint32(v)
	}

	if weighted {
		wbase := base + m
		for i := uint64(0); i < m; i++ {
			w, err := strconv.ParseInt(tokens[wbase+i], 10, 64)
			if err != nil {
				return nil, pasgalerrors.Wrap(pasgalerrors.CodeGraphError, "invalid edge weight", err)
			}
			g.Edges[i].W = w
		}
	}
	return g, nil
}

// WriteTextFormat serializes g in the PBBS adjacency-graph text format.
func WriteTextFormat(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return pasgalerrors.Wrap(pasgalerrors.CodeGraphError, "cannot create graph file", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	if g.Weighted {
		fmt.Fprintln(w, "WeightedAdjacencyGraph")
	} else {
		fmt.Fprintln(w, "AdjacencyGraph")
	}
	fmt.Fprintln(w, g.N)
	fmt.Fprintln(w, g.M)
	for i := uint32(0); i < g.N; i++ {
		fmt.Fprintln(w, g.Offsets[i])
	}
	for i := uint64(0); i < g.M; i++ {
		fmt.Fprintln(w, g.Edges[i].V)
	}
	if g.Weighted {
		for i := uint64(0); i < g.M; i++ {
			fmt.Fprintln(w, g.Edges[i].W)
		}
	}
	return nil
}

// binary format layout: three uint64 header fields (n, m, total byte size
// of the file including this 24-byte header) followed by (n+1) uint64 offsets and m uint32
// edge targets. Unweighted only, matching the upstream mmap-oriented
// format.
func ReadBinaryFormat(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pasgalerrors.Wrap(pasgalerrors.CodeGraphError, "cannot open graph file", err)
	}
	return decodeBinary(data)
}

func decodeBinary(data []byte) (*Graph, error) {
	if len(data) < 24 {
		return nil, pasgalerrors.New(pasgalerrors.CodeGraphError, "truncated binary graph header")
	}
	n := binary.LittleEndian.Uint64(data[0:8])
	m := binary.LittleEndian.Uint64(data[8:16])
	sizes := binary.LittleEndian.Uint64(data[16:24])
	want := (n+1)*8 + m*4 + 3*8
	if sizes != want {
		return nil, pasgalerrors.New(pasgalerrors.CodeGraphError, "binary graph size field mismatch")
	}

	g := &Graph{N: uint32(n), M: m}
	off := 24
	g.Offsets = make([]uint64, n+1)
	for i := uint64(0); i <= n; i++ {
		g.Offsets[i] = binary.LittleEndian.Uint64(data[off:])
		off += 8
	}
	g.Edges = make([]Edge, m)
	for i := uint64(0); i < m; i++ {
		g.Edges[i].V = binary.LittleEndian.Uint32(data[off:])
		off += 4
	}
	return g, nil
}

// WriteBinaryFormat serializes g (edge targets only, no weights) in the
// mmap-friendly binary format.
func WriteBinaryFormat(g *Graph, path string) error {
	var buf bytes.Buffer
	var hdr [24]byte
	n, m := uint64(g.N), g.M
	sizes := (n+1)*8 + m*4 + 3*8
	binary.LittleEndian.PutUint64(hdr[0:8], n)
	binary.LittleEndian.PutUint64(hdr[8:16], m)
	binary.LittleEndian.PutUint64(hdr[16:24], sizes)
	buf.Write(hdr[:])

	var u64 [8]byte
	for i := uint64(0); i <= n; i++ {
		binary.LittleEndian.PutUint64(u64[:], g.Offsets[i])
		buf.Write(u64[:])
	}
	var u32 [4]byte
	for i := uint64(0); i < m; i++ {
		binary.LittleEndian.PutUint32(u32[:], g.Edges[i].V)
		buf.Write(u32[:])
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// ReadHyperlink2012 parses the paired forward/backward CSR layout used by
// the hyperlink2012 web-crawl dataset: two consecutive binary-format
// blocks, the first giving out-edges, the second giving in-edges.
func ReadHyperlink2012(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pasgalerrors.Wrap(pasgalerrors.CodeGraphError, "cannot open graph file", err)
	}

	fwd, err := decodeBinary(data)
	if err != nil {
		return nil, err
	}
	fwdBytes := 24 + (uint64(fwd.N)+1)*8 + fwd.M*4
	if uint64(len(data)) < fwdBytes+24 {
		return nil, pasgalerrors.New(pasgalerrors.CodeGraphError, "hyperlink2012 file missing backward block")
	}
	bwd, err := decodeBinary(data[fwdBytes:])
	if err != nil {
		return nil, err
	}

	fwd.InOffsets = bwd.Offsets
	fwd.InEdges = bwd.Edges
	return fwd, nil
}

// Symmetrize returns a new graph containing every edge of g plus its
// reverse, with duplicates and self-loops removed.
func Symmetrize(g *Graph) *Graph {
	type pair struct {
		u uint32
		e Edge
	}
	list := make([]pair, 0, g.M*2)
	for u := uint32(0); u < g.N; u++ {
		for _, e := range g.OutNeighbors(u) {
			list = append(list, pair{u, e})
			list = append(list, pair{e.V, Edge{V: u, W: e.W}})
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].u != list[j].u {
			return list[i].u < list[j].u
		}
		return list[i].e.V < list[j].e.V
	})

	dedup := list[:0]
	for i, p := range list {
		if p.u == p.e.V {
			continue // drop self-loops
		}
		if len(dedup) > 0 {
			last := dedup[len(dedup)-1]
			if last.u == p.u && last.e.V == p.e.V {
				continue
			}
		}
		dedup = append(dedup, list[i])
	}

	out := &Graph{N: g.N, Weighted: g.Weighted, Symmetrized: true}
	out.Offsets = make([]uint64, g.N+1)
	out.Edges = make([]Edge, len(dedup))
	for i, p := range dedup {
		out.Edges[i] = p.e
		out.Offsets[p.u+1]++
	}
	for i := uint32(0); i < g.N; i++ {
		out.Offsets[i+1] += out.Offsets[i]
	}
	out.M = uint64(len(dedup))
	return out
}

// Transpose returns a new graph with every edge reversed.
func Transpose(g *Graph) *Graph {
	type pair struct {
		u uint32
		e Edge
	}
	list := make([]pair, g.M)
	idx := 0
	for u := uint32(0); u < g.N; u++ {
		for _, e := range g.OutNeighbors(u) {
			list[idx] = pair{e.V, Edge{V: u, W: e.W}}
			idx++
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].u != list[j].u {
			return list[i].u < list[j].u
		}
		return list[i].e.V < list[j].e.V
	})

	out := &Graph{N: g.N, M: g.M, Weighted: g.Weighted}
	out.Offsets = make([]uint64, g.N+1)
	out.Edges = make([]Edge, g.M)
	for i, p := range list {
		out.Edges[i] = p.e
		out.Offsets[p.u+1]++
	}
	for i := uint32(0); i < g.N; i++ {
		out.Offsets[i+1] += out.Offsets[i]
	}
	return out
}

// GenerateRandomWeight assigns each edge a uniform random integral weight
// in [lo, hi), deterministic given the edge endpoints.
func GenerateRandomWeight(g *Graph, lo, hi int64) {
	g.Weighted = true
	rng := hi - lo
	if rng <= 0 {
		rng = 1
	}
	parallel.ParallelFor(0, int(g.N), func(ui int) {
		u := uint32(ui)
		for i := g.Offsets[u]; i < g.Offsets[u+1]; i++ {
			g.Edges[i].W = int64(hash32(u)^hash32(g.Edges[i].V))%rng + lo
		}
	}, 256)
}

func hash32(x uint32) uint32 {
	x = ((x >> 16) ^ x) * 0x45d9f3b
	x = ((x >> 16) ^ x) * 0x45d9f3b
	x = (x >> 16) ^ x
	return x
}
