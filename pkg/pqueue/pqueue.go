// Package pqueue implements the global Pareto priority queue. It is a
// thin, domain-typed wrapper around pkg/btree keyed on label.NodeLabel
// ordered by (W1, W2, Node) -- group node labels by weight, then node --
// so that FindParetoMinima naturally yields the batch of
// globally-minimal labels the BSP driver relaxes in one round, with
// ties broken by node id for determinism.
package pqueue

import (
	"github.com/ssargent/multicrit/pkg/btree"
	"github.com/ssargent/multicrit/pkg/config"
	"github.com/ssargent/multicrit/pkg/label"
)

func nodeLabelEqual(a, b label.NodeLabel) bool {
	return a.Node == b.Node && a.Label.Equal(b.Label)
}

func nodeLabelMinW2(nl label.NodeLabel) label.Weight { return nl.W2 }

// Queue is the global, multi-objective priority queue of temporary
// labels awaiting relaxation, shared by every worker in a search round.
type Queue struct {
	tree *btree.Tree[label.NodeLabel]
}

// New builds an empty queue tuned by cfg (typically a wider B-tree
// configuration than the per-vertex label sets use).
func New(cfg config.BTree) *Queue {
	return &Queue{
		tree: btree.New[label.NodeLabel](
			label.LessByWeightThenNode,
			nodeLabelEqual,
			nodeLabelMinW2,
			btree.Config{
				LeafK:      cfg.LeafParameterK,
				BranchB:    cfg.BranchingParameterB,
				SelfVerify: cfg.SelfVerify,
			},
		),
	}
}

// Init seeds the queue with the source's zero label, the starting
// condition for a label-setting round.
func (q *Queue) Init(source label.NodeID) error {
	return q.tree.ApplyUpdates(
		[]btree.Operation[label.NodeLabel]{{Type: btree.Insert, Key: label.NodeLabel{Node: source, Label: label.Label{}}}},
		btree.InsertsOnly,
	)
}

// ApplyUpdates folds a sorted batch of insert/delete operations -- the
// net updates produced by a round's per-vertex label-set relaxations --
// into the queue.
func (q *Queue) ApplyUpdates(ops []label.Operation[label.NodeLabel], kind btree.BatchKind) error {
	converted := make([]btree.Operation[label.NodeLabel], len(ops))
	for i, op := range ops {
		converted[i] = btree.Operation[label.NodeLabel]{Type: btree.OpType(op.Type), Key: op.Data}
	}
	return q.tree.ApplyUpdates(converted, kind)
}

// FindParetoMinima returns every label in the queue whose W2 is part of
// the running Pareto-minimal prefix, in ascending (W1, W2, Node) order
// -- the candidate set the BSP driver relaxes in one round.
func (q *Queue) FindParetoMinima() ([]label.NodeLabel, error) {
	if q.tree.Empty() {
		return nil, nil
	}
	seed := label.NodeLabel{Node: 0, Label: label.SentinelLeft}
	var out []label.NodeLabel
	if err := q.tree.FindParetoMinima(seed, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Size returns the number of labels currently queued.
func (q *Queue) Size() int { return q.tree.Size() }

// Empty reports whether the queue holds no labels -- the BSP driver's
// termination condition.
func (q *Queue) Empty() bool { return q.tree.Empty() }

// Verify checks every weight-balance and ordering invariant of the
// underlying tree; wired to the SelfVerify config flag.
func (q *Queue) Verify() error { return q.tree.Verify() }
