// Package unionfind implements the lock-free union-find family used for
// connectivity and biconnectivity: a parent array where parents[u] is
// always in [u's component], find variants walk or compress it, and unite
// variants link components together. Every variant preserves the
// invariant that a vertex's parent index only ever decreases, so no
// variant can introduce a cycle and every linkage strictly shortens the
// longest remaining root path.
package unionfind

import "sync/atomic"

const sentinel = ^uint32(0)

// Parents is the shared parent array, one atomic slot per vertex. A root r
// has Parents[r] holding r.
type Parents []atomic.Uint32

// NewParents returns a parent array where every vertex starts as its own
// root.
func NewParents(n int) Parents {
	p := make(Parents, n)
	for i := range p {
		p[i].Store(uint32(i))
	}
	return p
}

// Find is a find-policy function: given a vertex, return its current root.
type Find func(p Parents, i uint32) uint32

// FindNaive walks parent pointers to the root without compression.
func FindNaive(p Parents, i uint32) uint32 {
	for i != p[i].Load() {
		i = p[i].Load()
	}
	return i
}

// FindCompress walks to the root, then makes a second pass writing every
// visited vertex's parent directly to the root (but never raising it,
// matching the "parent only decreases" invariant: a concurrent unite may
// have already lowered a vertex past the root this pass observed).
func FindCompress(p Parents, i uint32) uint32 {
	j := i
	if p[j].Load() == j {
		return j
	}
	for {
		j = p[j].Load()
		if p[j].Load() == j {
			break
		}
	}
	for {
		tmp := p[i].Load()
		if tmp <= j {
			break
		}
		p[i].Store(j)
		i = tmp
	}
	return j
}

// FindAtomicSplit advances one step at a time, splicing each visited
// vertex's parent directly to its grandparent via CAS.
func FindAtomicSplit(p Parents, i uint32) uint32 {
	for {
		v := p[i].Load()
		w := p[v].Load()
		if v == w {
			return v
		}
		p[i].CompareAndSwap(v, w)
		i = v
	}
}

// FindAtomicHalve is like FindAtomicSplit but advances to the grandparent
// each step rather than the parent, converging in roughly half as many
// steps.
func FindAtomicHalve(p Parents, i uint32) uint32 {
	for {
		v := p[i].Load()
		w := p[v].Load()
		if v == w {
			return v
		}
		p[i].CompareAndSwap(v, w)
		i = p[i].Load()
	}
}

// Unite is a unite-policy function: merge u and v's components, returning
// the root that lost (was relinked) or sentinel if they were already the
// same component.
type Unite func(p Parents, u, v uint32) uint32

// NewUnite builds the basic unite variant: find both roots, then link the
// root with the higher index to the one with the lower index via CAS.
// Retries under contention from concurrent unites on the same root.
func NewUnite(find Find) Unite {
	return func(p Parents, uOrig, vOrig uint32) uint32 {
		u, v := uOrig, vOrig
		for {
			u = find(p, u)
			v = find(p, v)
			if u == v {
				return sentinel
			}
			if u > v && p[u].Load() == u && p[u].CompareAndSwap(u, v) {
				return u
			}
			if v > u && p[v].Load() == v && p[v].CompareAndSwap(v, u) {
				return v
			}
		}
	}
}

// NewUniteEarly builds the "early" unite variant: swap so u > v, CAS
// parents[u] = u -> v directly (no prior find); on a failed CAS, splice
// u's parent to its grandparent and retry from that grandparent. If find is
// non-nil, both endpoints are forced to their final roots once the link
// succeeds.
func NewUniteEarly(find Find) Unite {
	return func(p Parents, uOrig, vOrig uint32) uint32 {
		u, v := uOrig, vOrig
		ret := sentinel
		for u != v {
			if v > u {
				u, v = v, u
			}
			if p[u].Load() == u && p[u].CompareAndSwap(u, v) {
				ret = u
				break
			}
			z := p[u].Load()
			w := p[z].Load()
			p[u].CompareAndSwap(z, w)
			u = w
		}
		if find != nil {
			find(p, uOrig)
			find(p, vOrig)
		}
		return ret
	}
}

// Splice is the local path-compression step UniteRemCAS retries with after
// a failed link attempt.
type Splice func(p Parents, u, v uint32) uint32

// SplitAtomicOne advances u one step, splicing its parent to its
// grandparent.
func SplitAtomicOne(p Parents, u, _ uint32) uint32 {
	v := p[u].Load()
	w := p[v].Load()
	if v == w {
		return v
	}
	p[u].CompareAndSwap(v, w)
	return v
}

// HalveAtomicOne is like SplitAtomicOne but returns the grandparent.
func HalveAtomicOne(p Parents, u, _ uint32) uint32 {
	v := p[u].Load()
	w := p[v].Load()
	if v == w {
		return v
	}
	p[u].CompareAndSwap(v, w)
	return w
}

// SpliceAtomic relinks u directly under v's current parent.
func SpliceAtomic(p Parents, u, v uint32) uint32 {
	z := p[u].Load()
	p[u].CompareAndSwap(z, p[v].Load())
	return z
}

// NewUniteRemCAS builds the Rem-CAS variant: follow the parents of x and y
// in lockstep, always linking the component with the higher current
// parent to the one with the lower, retrying via splice on CAS failure.
// If compress is non-nil it runs an outer find pass on both original
// endpoints once the link succeeds.
func NewUniteRemCAS(splice Splice, compress Find) Unite {
	return func(p Parents, x, y uint32) uint32 {
		rx, ry := x, y
		for p[rx].Load() != p[ry].Load() {
			pRy := p[ry].Load()
			pRx := p[rx].Load()
			if pRx < pRy {
				rx, ry = ry, rx
				pRx, pRy = pRy, pRx
			}
			if rx == p[rx].Load() && p[rx].CompareAndSwap(rx, pRy) {
				if compress != nil {
					compress(p, x)
					compress(p, y)
				}
				return rx
			}
			rx = splice(p, rx, ry)
		}
		return sentinel
	}
}

// Sentinel is the "already in the same component" return value.
func Sentinel() uint32 { return sentinel }
