package rtable

import (
	"sync"
	"testing"
)

func TestInsertAndContains(t *testing.T) {
	tab := New(64)
	if !tab.Insert(1, 100, 0) {
		t.Fatal("first insert of a fresh pair must succeed")
	}
	if tab.Insert(1, 100, 0) {
		t.Fatal("inserting the exact same pair twice must return false")
	}
	if !tab.Contains(1, 100) {
		t.Fatal("expected (1,100) to be present")
	}
	if tab.Contains(1, 101) {
		t.Fatal("did not expect (1,101) to be present")
	}
}

func TestMultiValuePerKeyIteration(t *testing.T) {
	tab := New(64)
	tab.Insert(5, 10, 0)
	tab.Insert(5, 20, 0)
	tab.Insert(5, 30, 0)

	it := tab.InitIter(5)
	if !it.Valid() {
		t.Fatal("expected iterator to find key 5")
	}
	seen := map[uint32]bool{it.Value(): true}
	for it.Next() {
		seen[it.Value()] = true
	}
	for _, want := range []uint32{10, 20, 30} {
		if !seen[want] {
			t.Fatalf("missing value %d for key 5", want)
		}
	}
}

func TestInitIterMissingKey(t *testing.T) {
	tab := New(64)
	tab.Insert(1, 1, 0)
	it := tab.InitIter(999)
	if it.Valid() {
		t.Fatal("expected no match for an absent key")
	}
}

func TestSizeCountsInserts(t *testing.T) {
	tab := New(8) // rounds up to 8
	for i := uint32(0); i < 6; i++ {
		tab.Insert(i, i, 0)
	}
	if tab.Size() < 6 {
		t.Fatalf("expected size >= 6, got %d", tab.Size())
	}
}

func TestDoubleSizeEmptiesTable(t *testing.T) {
	tab := New(16)
	tab.Insert(1, 1, 0)
	tab.Insert(2, 2, 0)
	tab.DoubleSize()
	if tab.Overfull() {
		t.Fatal("double_size must clear overfull")
	}
	if tab.Contains(1, 1) || tab.Contains(2, 2) {
		t.Fatal("double_size must empty the table; prior inserts must be gone")
	}
	if !tab.Insert(1, 1, 0) {
		t.Fatal("table must accept inserts again after doubling")
	}
}

func TestConcurrentInsertsDistinctKeys(t *testing.T) {
	const n = 2000
	tab := New(n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(k uint32) {
			defer wg.Done()
			tab.Insert(k, k*7, 0)
		}(uint32(i))
	}
	wg.Wait()
	for i := uint32(0); i < n; i++ {
		if !tab.Contains(i, i*7) {
			t.Fatalf("missing (%d,%d) after concurrent inserts", i, i*7)
		}
	}
}

func TestMapVisitsEveryPair(t *testing.T) {
	tab := New(64)
	want := map[[2]uint32]bool{{1, 2}: true, {3, 4}: true, {5, 6}: true}
	for kv := range want {
		tab.Insert(kv[0], kv[1], 0)
	}
	got := map[[2]uint32]bool{}
	var mu sync.Mutex
	tab.Map(func(k, v uint32) {
		mu.Lock()
		got[[2]uint32{k, v}] = true
		mu.Unlock()
	})
	for kv := range want {
		if !got[kv] {
			t.Fatalf("Map missed pair %v", kv)
		}
	}
}
