package psort

import (
	"math/rand"
	"sort"
	"testing"
)

func TestParallelSortSmallSlice(t *testing.T) {
	s := []int{5, 3, 8, 1, 9, 2}
	ParallelSort(s, func(a, b int) bool { return a < b }, 0)
	want := []int{1, 2, 3, 5, 8, 9}
	for i := range want {
		if s[i] != want[i] {
			t.Fatalf("got %v want %v", s, want)
		}
	}
}

func TestParallelSortLargeSliceWithTinyGrain(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	s := make([]int, 5000)
	for i := range s {
		s[i] = r.Intn(100000)
	}
	want := append([]int(nil), s...)
	sort.Ints(want)

	ParallelSort(s, func(a, b int) bool { return a < b }, 8)
	for i := range want {
		if s[i] != want[i] {
			t.Fatalf("mismatch at %d: got %d want %d", i, s[i], want[i])
		}
	}
}

func TestParallelSortWithDuplicates(t *testing.T) {
	s := []int{4, 4, 4, 1, 1, 2, 3, 3}
	ParallelSort(s, func(a, b int) bool { return a < b }, 2)
	want := []int{1, 1, 2, 3, 3, 4, 4, 4}
	for i := range want {
		if s[i] != want[i] {
			t.Fatalf("got %v want %v", s, want)
		}
	}
}

func TestParallelSortEmptyAndSingleton(t *testing.T) {
	empty := []int{}
	ParallelSort(empty, func(a, b int) bool { return a < b }, 4)
	if len(empty) != 0 {
		t.Fatal("expected empty slice to remain empty")
	}
	single := []int{7}
	ParallelSort(single, func(a, b int) bool { return a < b }, 4)
	if single[0] != 7 {
		t.Fatal("expected singleton to remain unchanged")
	}
}

type keyed struct {
	node uint32
	tag  int
}

func TestRadixSortByNodeOrdersAscending(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	items := make([]keyed, 2000)
	for i := range items {
		items[i] = keyed{node: uint32(r.Intn(1000)), tag: i}
	}
	RadixSortByNode(items, func(k keyed) uint32 { return k.node })

	for i := 1; i < len(items); i++ {
		if items[i-1].node > items[i].node {
			t.Fatalf("out of order at %d: %d then %d", i, items[i-1].node, items[i].node)
		}
	}
}

func TestRadixSortByNodeStable(t *testing.T) {
	items := []keyed{{node: 2, tag: 0}, {node: 1, tag: 1}, {node: 2, tag: 2}, {node: 1, tag: 3}}
	RadixSortByNode(items, func(k keyed) uint32 { return k.node })

	// Stable: within node 1, tag 1 precedes tag 3; within node 2, tag 0 precedes tag 2.
	want := []keyed{{1, 1}, {1, 3}, {2, 0}, {2, 2}}
	for i := range want {
		if items[i] != want[i] {
			t.Fatalf("got %v want %v", items, want)
		}
	}
}

func TestRadixSortByNodeShortSlicesNoop(t *testing.T) {
	empty := []keyed{}
	RadixSortByNode(empty, func(k keyed) uint32 { return k.node })
	single := []keyed{{node: 5, tag: 1}}
	RadixSortByNode(single, func(k keyed) uint32 { return k.node })
	if single[0].node != 5 {
		t.Fatal("expected singleton unchanged")
	}
}

func TestPrefixScanExclusive(t *testing.T) {
	counts := []int{3, 0, 5, 2}
	got := PrefixScan(counts)
	want := []int{0, 3, 3, 8}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestPrefixScanEmpty(t *testing.T) {
	got := PrefixScan(nil)
	if len(got) != 0 {
		t.Fatalf("want empty, got %v", got)
	}
}

func TestGrainRespectsFloor(t *testing.T) {
	if g := Grain(10, 8, 64); g != 64 {
		t.Fatalf("want floor 64 for a tiny problem, got %d", g)
	}
}

func TestGrainShrinksForLargeProblems(t *testing.T) {
	small := Grain(1000, 4, 1)
	large := Grain(1_000_000, 4, 1)
	if large <= small {
		t.Fatalf("want grain to grow sublinearly with problem size, got small=%d large=%d", small, large)
	}
	// Still much smaller than a naive total/workers split.
	if large >= 1_000_000/4 {
		t.Fatalf("want logarithmic shrink, got %d (total/workers=%d)", large, 1_000_000/4)
	}
}
