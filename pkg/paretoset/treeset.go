package paretoset

import (
	"sort"

	"github.com/ssargent/multicrit/pkg/btree"
	"github.com/ssargent/multicrit/pkg/config"
	"github.com/ssargent/multicrit/pkg/label"
)

func labelMinW2(l label.Label) label.Weight { return l.W2 }

// TreeSet is the B-tree-backed per-vertex Pareto label set, for use
// where a vertex's non-dominated front grows too large for a slice
// splice to stay cheap (selected via Search.UseTreeLabel). It computes
// the same candidate-scan decisions VectorSet does -- against the
// tree's current flattened key order rather than an in-memory slice --
// and folds the resulting operations back through the tree's own bulk
// ApplyUpdates. Each Update flattens the tree's keys and the bulk apply
// rebuilds the tree, so an Update costs O(n) in the set size, as
// VectorSet's splice does.
type TreeSet struct {
	tree *btree.Tree[label.Label]
}

// NewTreeSet builds an empty tree-backed label set tuned by cfg.
func NewTreeSet(cfg config.BTree) *TreeSet {
	return &TreeSet{
		tree: btree.New[label.Label](
			label.Label.Less,
			label.Label.Equal,
			labelMinW2,
			btree.Config{
				LeafK:      cfg.LeafParameterK,
				BranchB:    cfg.BranchingParameterB,
				SelfVerify: cfg.SelfVerify,
			},
		),
	}
}

// Size returns the number of labels currently held.
func (s *TreeSet) Size() int { return s.tree.Size() }

// Labels returns the current non-dominated labels in ascending W1 order.
func (s *TreeSet) Labels() []label.Label { return s.tree.Keys() }

// Update folds a batch of same-vertex candidates (sorted by (W1, W2))
// into the set, using the same rolling-minimum splice decisions as
// VectorSet.Update but scanning the tree's current key order; the
// resulting insert/delete operations are applied to the tree in one
// bulk call and returned for propagation to the global queue.
func (s *TreeSet) Update(node label.NodeID, candidates []label.Label) []label.Operation[label.NodeLabel] {
	current := s.tree.Keys()
	bracketed := make([]label.Label, 0, len(current)+2)
	bracketed = append(bracketed, label.SentinelLeft)
	bracketed = append(bracketed, current...)
	bracketed = append(bracketed, label.SentinelRight)

	var updates []label.Operation[label.NodeLabel]
	var treeOps []btree.Operation[label.Label]
	batchKind := btree.InsertsOnly

	minW2 := label.MaxWeight
	unprocessed := 0

	for _, cand := range candidates {
		if cand.W2 >= minW2 {
			continue
		}
		dominated, idx := isDominated(bracketed, unprocessed, cand)
		if dominated {
			minW2 = bracketed[idx].W2
			unprocessed = idx
			continue
		}
		minW2 = cand.W2
		updates = append(updates, label.Operation[label.NodeLabel]{Type: label.Insert, Data: label.NodeLabel{Node: node, Label: cand}})
		treeOps = append(treeOps, btree.Operation[label.Label]{Type: btree.Insert, Key: cand})

		firstNondominated := yPredecessor(bracketed, idx, cand)
		if idx == firstNondominated {
			bracketed = insertAt(bracketed, idx, cand)
		} else {
			for i := idx; i != firstNondominated; i++ {
				victim := bracketed[i]
				updates = append(updates, label.Operation[label.NodeLabel]{Type: label.Delete, Data: label.NodeLabel{Node: node, Label: victim}})
				treeOps = append(treeOps, btree.Operation[label.Label]{Type: btree.Delete, Key: victim})
				batchKind = btree.InsertsAndDeletes
			}
			bracketed[idx] = cand
			bracketed = removeRange(bracketed, idx+1, firstNondominated)
			firstNondominated = idx + 1
		}
		unprocessed = idx
	}

	if len(treeOps) > 0 {
		sortTreeOps(treeOps)
		_ = s.tree.ApplyUpdates(treeOps, batchKind)
	}
	return updates
}

// Verify checks the underlying tree's weight-balance and ordering
// invariants; wired to the SelfVerify config flag.
func (s *TreeSet) Verify() error { return s.tree.Verify() }

// sortTreeOps restores the batch's required key order after interleaved
// insert/delete collection above: deletes and inserts for the same
// vertex are generated in scan order already, but a stable sort by key
// guarantees ApplyUpdates' precondition holds regardless.
func sortTreeOps(ops []btree.Operation[label.Label]) {
	sort.SliceStable(ops, func(i, j int) bool { return ops[i].Key.Less(ops[j].Key) })
}
