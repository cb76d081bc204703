package sparsetable

import (
	"math/rand"
	"testing"
)

func minMonoid() Monoid[int] {
	return Monoid[int]{
		Identity: int(1) << 30,
		Combine: func(a, b int) int {
			if a < b {
				return a
			}
			return b
		},
	}
}

func bruteMin(seq []int, l, r int) int {
	v := int(1) << 30
	for i := l; i < r; i++ {
		if seq[i] < v {
			v = seq[i]
		}
	}
	return v
}

func TestQueryMatchesBruteForceSmall(t *testing.T) {
	seq := []int{5, 3, 8, 1, 9, 2, 7, 4, 6, 0}
	tab := New(seq, minMonoid())
	for l := 0; l < len(seq); l++ {
		for r := l + 1; r <= len(seq); r++ {
			got := tab.Query(l, r)
			want := bruteMin(seq, l, r)
			if got != want {
				t.Fatalf("Query(%d,%d) = %d, want %d", l, r, got, want)
			}
		}
	}
}

func TestQueryMatchesBruteForceLargeRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n := 2000
	seq := make([]int, n)
	for i := range seq {
		seq[i] = rng.Intn(1 << 20)
	}
	tab := New(seq, minMonoid())

	for trial := 0; trial < 500; trial++ {
		l := rng.Intn(n)
		r := l + 1 + rng.Intn(n-l)
		got := tab.Query(l, r)
		want := bruteMin(seq, l, r)
		if got != want {
			t.Fatalf("Query(%d,%d) = %d, want %d", l, r, got, want)
		}
	}
}

func TestQuerySingleElement(t *testing.T) {
	seq := []int{42}
	tab := New(seq, minMonoid())
	if got := tab.Query(0, 1); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestSumMonoid(t *testing.T) {
	seq := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	sum := Monoid[int]{Identity: 0, Combine: func(a, b int) int { return a + b }}
	tab := New(seq, sum)
	if got := tab.Query(0, 10); got != 55 {
		t.Fatalf("got %d, want 55", got)
	}
	if got := tab.Query(2, 5); got != 3+4+5 {
		t.Fatalf("got %d, want %d", got, 3+4+5)
	}
}
