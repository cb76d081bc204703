package sampler

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestSampleSaturatesAfterExpHits(t *testing.T) {
	s := New(3, 1<<63) // threshold covers every random value we pass

	var cb bool
	for i := 0; i < 3; i++ {
		ok := s.Sample(0, &cb)
		if !ok {
			t.Fatalf("call %d should still be accepted", i)
		}
	}
	if !cb {
		t.Fatal("callback should fire on the call that reaches expHits")
	}

	cb = false
	ok := s.Sample(0, &cb)
	if ok {
		t.Fatal("sampler must reject once saturated")
	}
	if cb {
		t.Fatal("callback must not fire again")
	}
}

func TestSampleAtOrAboveThresholdDoesNotCount(t *testing.T) {
	s := New(1, 0) // threshold 0: random < 0 never true for unsigned
	var cb bool
	ok := s.Sample(5, &cb)
	if !ok || cb {
		t.Fatal("a hash that never clears the threshold must not count or fire")
	}
	if s.Saturated() {
		t.Fatal("sampler must not be saturated")
	}
}

func TestCallbackFiresExactlyOnceUnderConcurrency(t *testing.T) {
	const expHits = 1000
	s := New(expHits, 1<<63)

	var fired atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 5000; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var cb bool
			s.Sample(0, &cb)
			if cb {
				fired.Add(1)
			}
		}()
	}
	wg.Wait()

	if fired.Load() != 1 {
		t.Fatalf("callback fired %d times, want exactly 1", fired.Load())
	}
	if !s.Saturated() {
		t.Fatal("sampler should be saturated")
	}
}

func TestReset(t *testing.T) {
	s := New(1, 1<<63)
	var cb bool
	s.Sample(0, &cb)
	if !s.Saturated() {
		t.Fatal("expected saturation")
	}
	s.Reset()
	if s.Saturated() {
		t.Fatal("reset should clear saturation")
	}
}
