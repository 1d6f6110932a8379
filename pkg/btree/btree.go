// Package btree implements the weight-balanced bulk-update B-tree that
// underlies both the per-vertex Pareto label sets (pkg/paretoset) and the
// global Pareto priority queue (pkg/pqueue).
//
// The tree is generic over any totally-ordered key type. Bulk updates are
// applied by flattening the current key set, merging it against a sorted
// batch of insert/delete operations, and rebuilding a freshly balanced
// tree from the merged result, preserving weight bounds, the
// router-equals-max-of-subtree invariant, and cached subtree minima
// across the rebuild. See DESIGN.md for the tradeoff against in-place
// defective-region rewriting.
package btree

import (
	"fmt"
	"sort"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

// BatchKind selects the weight-delta shortcut used when applying a batch.
type BatchKind int

const (
	InsertsOnly BatchKind = iota
	DeletesOnly
	InsertsAndDeletes
)

// OpType mirrors label.OpType without importing pkg/label, so pkg/btree
// stays usable for any ordered key, not just graph labels.
type OpType int8

const (
	Delete OpType = -1
	Insert OpType = 1
)

// Operation is a single tagged update to apply to the tree.
type Operation[K any] struct {
	Type OpType
	Key  K
}

// ErrUnsortedBatch and ErrDeleteMissingKey flag precondition violations on
// the caller's part -- only surfaced when SelfVerify is enabled; otherwise
// callers violating them see undefined results.
var (
	ErrUnsortedBatch    = errors.New("btree: update batch is not sorted by key")
	ErrDeleteMissingKey = errors.New("btree: delete targets a key absent from the tree")
)

// node is a discriminated sum keyed on level == 0 (leaf).
type node[K any] struct {
	level int

	// leaf fields
	keys []K

	// inner fields
	children []*node[K]
	routers  []K   // routers[i] == max key in children[i]'s subtree
	weights  []int // weights[i] == key count in children[i]'s subtree
	minima   []K   // minima[i] == key with smallest W2 in children[i]'s subtree (multi-objective only)
}

func (n *node[K]) isLeaf() bool { return n.level == 0 }

// Tree is a weight-balanced, bulk-update B-tree over key type K.
type Tree[K any] struct {
	root *node[K]

	less  func(a, b K) bool
	equal func(a, b K) bool

	// minW2, when non-nil, enables multi-objective mode: cached subtree
	// minima are maintained and FindParetoMinima becomes available.
	minW2 func(k K) uint32

	leafK   int // designated leaf capacity (LeafParameterK)
	branchB int // designated branching factor (BranchingParameterB)

	size       int
	selfVerify bool
}

// Config bundles the tunables a Tree needs at construction time.
type Config struct {
	LeafK      int
	BranchB    int
	SelfVerify bool
}

// New creates an empty Tree. minW2 may be nil for trees that never need
// FindParetoMinima (e.g. a plain ordered index).
func New[K any](less, equal func(a, b K) bool, minW2 func(K) uint32, cfg Config) *Tree[K] {
	leafK := cfg.LeafK
	if leafK < 8 {
		leafK = 8
	}
	branchB := cfg.BranchB
	if branchB < 4 {
		branchB = 4
	}
	return &Tree[K]{
		root:       &node[K]{level: 0, keys: nil},
		less:       less,
		equal:      equal,
		minW2:      minW2,
		leafK:      leafK,
		branchB:    branchB,
		selfVerify: cfg.SelfVerify,
	}
}

// Size returns the number of keys currently stored.
func (t *Tree[K]) Size() int { return t.size }

// Empty reports whether the tree holds no keys.
func (t *Tree[K]) Empty() bool { return t.size == 0 }

// Height returns the number of levels in the tree (1 for a single leaf).
func (t *Tree[K]) Height() int { return t.root.level + 1 }

// Clear deallocates all nodes, resetting the tree to empty.
func (t *Tree[K]) Clear() {
	t.root = &node[K]{level: 0}
	t.size = 0
}

// minWeight and maxWeight bound the number of keys a subtree at the given
// level may hold: B^level*K/4 .. B^level*K.
func (t *Tree[K]) minWeight(level int) int {
	w := t.leafK
	for i := 0; i < level; i++ {
		w *= t.branchB
	}
	return w / 4
}

func (t *Tree[K]) maxWeight(level int) int {
	w := t.leafK
	for i := 0; i < level; i++ {
		w *= t.branchB
	}
	return w
}

// designatedWeight is the target subtree weight used when grouping
// children into a fresh parent at the given level: the midpoint
// 5/8 * B^level * K. It sits comfortably between minWeight and maxWeight,
// so a parent built near this target keeps headroom on both bounds even
// after absorbing a short trailing group.
func (t *Tree[K]) designatedWeight(level int) int {
	w := t.leafK
	for i := 0; i < level; i++ {
		w *= t.branchB
	}
	return w * 5 / 8
}

// Keys returns every key in ascending tree order. Intended for tests and
// Verify; not on any hot path.
func (t *Tree[K]) Keys() []K {
	out := make([]K, 0, t.size)
	collect(t.root, &out)
	return out
}

func collect[K any](n *node[K], out *[]K) {
	if n.isLeaf() {
		*out = append(*out, n.keys...)
		return
	}
	for _, c := range n.children {
		collect(c, out)
	}
}

// ApplyUpdates applies a sorted, duplicate-free batch of insert/delete
// operations to the tree. batch must be sorted by key in the tree's key
// order; two operations may share a key only as an INSERT+DELETE pair.
// Deletes must target keys known to exist.
func (t *Tree[K]) ApplyUpdates(batch []Operation[K], kind BatchKind) error {
	if len(batch) == 0 {
		return nil
	}
	if t.selfVerify {
		if !sort.SliceIsSorted(batch, func(i, j int) bool { return t.less(batch[i].Key, batch[j].Key) }) {
			return ErrUnsortedBatch
		}
	}

	current := t.Keys()
	merged, err := t.merge(current, batch)
	if err != nil {
		return err
	}

	t.size = len(merged)
	if t.size == 0 {
		t.Clear()
		return nil
	}

	root, err := t.buildBalanced(merged)
	if err != nil {
		return err
	}
	t.root = root

	if t.selfVerify {
		if verr := t.Verify(); verr != nil {
			return errors.Wrap(verr, "btree: self-verify failed after ApplyUpdates")
		}
	}
	return nil
}

// merge folds a sorted batch of insert/delete operations into a sorted
// key slice, producing the symmetric-difference-like result of applying
// the batch. Operations sharing a key (allowed only as an INSERT+DELETE
// pair) are grouped and their net weight delta (+1/-1 summed) decides
// whether the key survives: a present key with a zero net delta is left
// untouched, a present key with a negative net delta is removed, and an
// absent key with a positive net delta is inserted.
func (t *Tree[K]) merge(current []K, batch []Operation[K]) ([]K, error) {
	out := make([]K, 0, len(current)+len(batch))
	i, j := 0, 0
	for j < len(batch) {
		groupKey := batch[j].Key
		net := 0
		groupEnd := j
		for groupEnd < len(batch) && !t.less(batch[groupEnd].Key, groupKey) && !t.less(groupKey, batch[groupEnd].Key) {
			net += int(batch[groupEnd].Type)
			groupEnd++
		}

		for i < len(current) && t.less(current[i], groupKey) {
			out = append(out, current[i])
			i++
		}
		present := i < len(current) && t.equal(current[i], groupKey)
		if present {
			if net >= 0 {
				out = append(out, current[i])
			}
			i++
		} else if net > 0 {
			out = append(out, groupKey)
		} else if t.selfVerify && net < 0 {
			return nil, ErrDeleteMissingKey
		}
		j = groupEnd
	}
	for ; i < len(current); i++ {
		out = append(out, current[i])
	}
	return out, nil
}

// buildBalanced bulk-loads a fresh, height-balanced tree from a sorted key
// slice, respecting leaf and inner weight bounds. Large inputs are built
// level-by-level with each level's node construction fanned out across
// goroutines.
func (t *Tree[K]) buildBalanced(keys []K) (*node[K], error) {
	leaves, err := t.buildLeaves(keys)
	if err != nil {
		return nil, err
	}
	level := []*node[K]{}
	level = append(level, leaves...)
	curLevel := 0
	for len(level) > 1 {
		curLevel++
		next, err := t.buildInnerLevel(level, curLevel)
		if err != nil {
			return nil, err
		}
		level = next
	}
	return level[0], nil
}

func (t *Tree[K]) buildLeaves(keys []K) ([]*node[K], error) {
	n := len(keys)
	if n == 0 {
		return []*node[K]{{level: 0}}, nil
	}
	designated := (t.leafK + t.leafK/4) / 2
	if designated < 1 {
		designated = 1
	}
	numLeaves := (n + designated - 1) / designated
	if numLeaves < 1 {
		numLeaves = 1
	}
	base := n / numLeaves
	rem := n % numLeaves

	leaves := make([]*node[K], numLeaves)
	var g errgroup.Group
	offset := 0
	for i := 0; i < numLeaves; i++ {
		sz := base
		if i < rem {
			sz++
		}
		start, end := offset, offset+sz
		offset = end
		idx := i
		g.Go(func() error {
			leaf := &node[K]{level: 0, keys: append([]K(nil), keys[start:end]...)}
			leaves[idx] = leaf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return leaves, nil
}

// buildInnerLevel groups already-built subtrees into parents one level up.
// Children are grouped by their actual subtree weight (not just their
// count) walking left to right and closing a group once it reaches
// designatedWeight(level) or the 4*B child-slot cap, so a run of
// lighter-than-usual children doesn't silently produce an undersized
// parent the way a pure count-based split would. Any trailing group that
// still can't clear minWeight(level) on its own is folded into its
// predecessor rather than emitted underweight.
func (t *Tree[K]) buildInnerLevel(children []*node[K], level int) ([]*node[K], error) {
	n := len(children)
	if n == 0 {
		return nil, errors.New("btree: cannot build an inner level from zero children")
	}

	maxChildren := 4 * t.branchB
	if maxChildren < 1 {
		maxChildren = 1
	}
	target := t.designatedWeight(level)

	type span struct{ start, end int }
	spans := make([]span, 0, n/2+1)
	start, acc := 0, 0
	for i := 0; i < n; i++ {
		acc += subtreeWeight(children[i])
		count := i - start + 1
		last := i == n-1
		if !last && (acc >= target || count >= maxChildren) {
			spans = append(spans, span{start, i + 1})
			start, acc = i+1, 0
		}
	}
	spans = append(spans, span{start, n})

	if len(spans) > 1 {
		tail := spans[len(spans)-1]
		tailWeight := 0
		for _, c := range children[tail.start:tail.end] {
			tailWeight += subtreeWeight(c)
		}
		prev := spans[len(spans)-2]
		if tailWeight < t.minWeight(level) && tail.end-prev.start <= maxChildren {
			spans[len(spans)-2] = span{prev.start, tail.end}
			spans = spans[:len(spans)-1]
		}
	}

	parents := make([]*node[K], len(spans))
	var g errgroup.Group
	for i, sp := range spans {
		idx, s := i, sp
		g.Go(func() error {
			parents[idx] = t.makeInner(level, children[s.start:s.end])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return parents, nil
}

func (t *Tree[K]) makeInner(level int, children []*node[K]) *node[K] {
	inner := &node[K]{
		level:    level,
		children: append([]*node[K](nil), children...),
		routers:  make([]K, len(children)),
		weights:  make([]int, len(children)),
	}
	if t.minW2 != nil {
		inner.minima = make([]K, len(children))
	}
	for i, c := range children {
		inner.routers[i] = subtreeMax(c)
		inner.weights[i] = subtreeWeight(c)
		if t.minW2 != nil {
			inner.minima[i] = subtreeMin(c, t.minW2)
		}
	}
	return inner
}

func subtreeMax[K any](n *node[K]) K {
	if n.isLeaf() {
		return n.keys[len(n.keys)-1]
	}
	return n.routers[len(n.routers)-1]
}

func subtreeWeight[K any](n *node[K]) int {
	if n.isLeaf() {
		return len(n.keys)
	}
	total := 0
	for _, w := range n.weights {
		total += w
	}
	return total
}

func subtreeMin[K any](n *node[K], minW2 func(K) uint32) K {
	if n.isLeaf() {
		best := n.keys[0]
		for _, k := range n.keys[1:] {
			if minW2(k) < minW2(best) {
				best = k
			}
		}
		return best
	}
	best := n.minima[0]
	for _, m := range n.minima[1:] {
		if minW2(m) < minW2(best) {
			best = m
		}
	}
	return best
}

// FindParetoMinima appends to out every key whose W2 (via the tree's
// minW2 projection) is strictly less than that of any predecessor in tree
// order, or which equals seed exactly. seed is a caller-supplied sentinel
// (e.g. label.SentinelLeft) that guarantees the first qualifying key in
// tree order is always included. Only valid on trees constructed with a
// non-nil minW2 projection.
func (t *Tree[K]) FindParetoMinima(seed K, out *[]K) error {
	if t.minW2 == nil {
		return fmt.Errorf("btree: FindParetoMinima requires a multi-objective tree")
	}
	if t.Empty() {
		return nil
	}
	t.findMinimaNode(t.root, seed, out)
	return nil
}

func (t *Tree[K]) findMinimaNode(n *node[K], running K, out *[]K) K {
	if n.isLeaf() {
		for _, k := range n.keys {
			if t.minW2(k) < t.minW2(running) || t.equal(k, running) {
				*out = append(*out, k)
				running = k
			}
		}
		return running
	}
	for i, c := range n.children {
		m := n.minima[i]
		if t.minW2(m) < t.minW2(running) || t.equal(m, running) {
			running = t.findMinimaNode(c, running, out)
		}
	}
	return running
}
