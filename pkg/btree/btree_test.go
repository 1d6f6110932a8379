package btree

import (
	"sort"
	"testing"
)

func intLess(a, b int) bool  { return a < b }
func intEqual(a, b int) bool { return a == b }

func newIntTree(t *testing.T) *Tree[int] {
	t.Helper()
	return New[int](intLess, intEqual, nil, Config{LeafK: 8, BranchB: 4, SelfVerify: true})
}

func insertAll(t *testing.T, tr *Tree[int], keys []int) {
	t.Helper()
	ops := make([]Operation[int], len(keys))
	for i, k := range keys {
		ops[i] = Operation[int]{Type: Insert, Key: k}
	}
	if err := tr.ApplyUpdates(ops, InsertsOnly); err != nil {
		t.Fatalf("ApplyUpdates: %v", err)
	}
}

func TestEmptyTreeInsertSorted(t *testing.T) {
	tr := newIntTree(t)
	insertAll(t, tr, []int{10, 20, 30})

	if tr.Size() != 3 {
		t.Fatalf("want size 3, got %d", tr.Size())
	}
	if tr.Height() != 1 {
		t.Fatalf("want height 1 (single leaf), got %d", tr.Height())
	}
	got := tr.Keys()
	want := []int{10, 20, 30}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys mismatch: got %v want %v", got, want)
		}
	}
}

func TestInsertGrowsHeight(t *testing.T) {
	tr := newIntTree(t)
	keys := make([]int, 8)
	for i := range keys {
		keys[i] = i * 10
	}
	insertAll(t, tr, keys)

	insertAll(t, tr, []int{5})

	if tr.Height() < 2 {
		t.Fatalf("expected tree to grow past a single leaf, height=%d", tr.Height())
	}
	if tr.Size() != 9 {
		t.Fatalf("want size 9, got %d", tr.Size())
	}
	if err := tr.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestInsertThenDeleteEmptiesTree(t *testing.T) {
	tr := newIntTree(t)
	keys := make([]int, 70)
	for i := range keys {
		keys[i] = i
	}
	insertAll(t, tr, keys)

	deletes := make([]Operation[int], len(keys))
	for i, k := range keys {
		deletes[i] = Operation[int]{Type: Delete, Key: k}
	}
	if err := tr.ApplyUpdates(deletes, DeletesOnly); err != nil {
		t.Fatalf("ApplyUpdates delete: %v", err)
	}
	if !tr.Empty() {
		t.Fatalf("expected empty tree, size=%d", tr.Size())
	}
}

func TestApplyUnionEquivalence(t *testing.T) {
	trA := newIntTree(t)
	trB := newIntTree(t)

	batch1 := []Operation[int]{{Type: Insert, Key: 1}, {Type: Insert, Key: 3}, {Type: Insert, Key: 5}}
	batch2 := []Operation[int]{{Type: Insert, Key: 2}, {Type: Delete, Key: 3}, {Type: Insert, Key: 4}}

	if err := trA.ApplyUpdates(batch1, InsertsOnly); err != nil {
		t.Fatal(err)
	}
	if err := trA.ApplyUpdates(batch2, InsertsAndDeletes); err != nil {
		t.Fatal(err)
	}

	union := []Operation[int]{{Type: Insert, Key: 1}, {Type: Insert, Key: 2}, {Type: Insert, Key: 4}, {Type: Insert, Key: 5}}
	if err := trB.ApplyUpdates(union, InsertsOnly); err != nil {
		t.Fatal(err)
	}

	ka, kb := trA.Keys(), trB.Keys()
	if len(ka) != len(kb) {
		t.Fatalf("size mismatch: %d vs %d", len(ka), len(kb))
	}
	for i := range ka {
		if ka[i] != kb[i] {
			t.Fatalf("key mismatch at %d: %d vs %d", i, ka[i], kb[i])
		}
	}
}

func TestInsertDuplicatesAcrossLeaves(t *testing.T) {
	// Designated leaf size for LeafK=8 is (8+8/4)/2 == 5, so 70 keys land
	// in exactly 14 leaves under a single inner root -- spec.md §8 scenario 3.
	tr := New[int](intLess, intEqual, nil, Config{LeafK: 8, BranchB: 32, SelfVerify: false})
	keys := []int{}
	for v := 0; v < 14; v++ {
		for d := 0; d < 5; d++ {
			keys = append(keys, v)
		}
	}
	sort.Ints(keys)
	insertAll(t, tr, keys)

	if tr.Size() != 70 {
		t.Fatalf("want size 70, got %d", tr.Size())
	}
	if tr.Height() != 2 {
		t.Fatalf("want height 2, got %d", tr.Height())
	}
	if n := countLeaves(tr.root); n != 14 {
		t.Fatalf("want 14 leaves, got %d", n)
	}
}

func countLeaves[K any](n *node[K]) int {
	if n.isLeaf() {
		return 1
	}
	total := 0
	for _, c := range n.children {
		total += countLeaves(c)
	}
	return total
}

func minW2ForLabel(k labelPair) uint32 { return k.w2 }

type labelPair struct{ w1, w2 uint32 }

func labelLess(a, b labelPair) bool {
	if a.w1 != b.w1 {
		return a.w1 < b.w1
	}
	return a.w2 < b.w2
}
func labelEqual(a, b labelPair) bool { return a == b }

func TestFindParetoMinimaSmallestLeaf(t *testing.T) {
	// 14 slots of 5 literal duplicates each; designated leaf size for
	// LeafK=8 is (8+8/4)/2 == 5, so each slot lands in its own leaf.
	tr := New[labelPair](labelLess, labelEqual, minW2ForLabel, Config{LeafK: 8, BranchB: 4, SelfVerify: true})

	var ops []Operation[labelPair]
	for slot := 0; slot < 14; slot++ {
		for i := 0; i < 5; i++ {
			ops = append(ops, Operation[labelPair]{Type: Insert, Key: labelPair{w1: uint32(slot), w2: 1}})
		}
	}
	sort.Slice(ops, func(i, j int) bool { return labelLess(ops[i].Key, ops[j].Key) })
	if err := tr.ApplyUpdates(ops, InsertsOnly); err != nil {
		t.Fatal(err)
	}

	seed := labelPair{w1: 0, w2: ^uint32(0)}
	var out []labelPair
	if err := tr.FindParetoMinima(seed, &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 5 {
		t.Fatalf("expected exactly the 5 duplicate keys of the smallest leaf, got %d: %v", len(out), out)
	}
	for _, k := range out {
		if k.w1 != 0 {
			t.Fatalf("expected only smallest-leaf keys (w1=0), got %v", k)
		}
	}
}
