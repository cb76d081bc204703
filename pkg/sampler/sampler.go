// Package sampler implements the bounded-Bernoulli-counter used to decide,
// under concurrent hashing, exactly once when a bucket's sample quota has
// been reached.
package sampler

import "sync/atomic"

// Sampler is a one-shot saturation detector. A bucket is given a target hit
// count expHits and a threshold in the hash codomain; each candidate hash
// value is offered to Sample, and once expHits values have passed the
// threshold test, the sampler reports saturation and raises its callback
// exactly once — no matter how many goroutines are racing to push it over
// the edge.
type Sampler struct {
	numHits  atomic.Uint64
	expHits  uint64
	threshold uint64
}

// New returns a Sampler that saturates after expHits hash values less than
// threshold have been observed (threshold lives in the same codomain as the
// random values passed to Sample, e.g. the output range of a hash function).
func New(expHits, threshold uint64) *Sampler {
	return &Sampler{expHits: expHits, threshold: threshold}
}

// ExpHits returns the configured saturation target.
func (s *Sampler) ExpHits() uint64 { return s.expHits }

// Hits returns the number of hits observed so far, capped at ExpHits since
// Sample stops counting once saturated.
func (s *Sampler) Hits() uint64 {
	h := s.numHits.Load()
	if h > s.expHits {
		h = s.expHits
	}
	return h
}

// Sample offers one candidate hash value to the sampler. It returns false
// iff saturation had already been observed before this call (the bucket is
// closed — the caller should promote to the next bucket and stop
// inserting). When this call is the one that pushes the counter from
// expHits-1 to expHits, it returns true and sets callback to true exactly
// once across every concurrent caller; all other calls leave callback
// false.
//
// The single-fire guarantee rests on reading the pre-increment value
// returned by fetch_add: only the goroutine whose fetch_add observed
// exactly expHits-1 can ever see ret+1 == expHits, and fetch_add hands that
// value to exactly one caller.
func (s *Sampler) Sample(random uint64, callback *bool) bool {
	*callback = false

	if s.numHits.Load() >= s.expHits {
		return false
	}

	if random < s.threshold {
		ret := s.numHits.Add(1) - 1 // pre-increment value, like C++ fetch_add
		if ret >= s.expHits {
			return false
		}
		if ret+1 == s.expHits {
			*callback = true
		}
	}
	return true
}

// Reset clears the hit counter, returning the sampler to its unsaturated
// state (used when a hash-bag bucket is recycled by clear()).
func (s *Sampler) Reset() {
	s.numHits.Store(0)
}

// Saturated reports whether expHits hits have already been observed.
func (s *Sampler) Saturated() bool {
	return s.numHits.Load() >= s.expHits
}
