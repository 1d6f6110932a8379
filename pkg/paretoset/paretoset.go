// Package paretoset maintains the per-vertex Pareto label set. A set
// never holds two labels where one dominates the other; an Update call
// folds in a batch of sorted candidates, mutating the set in place and
// returning the exact INSERT/DELETE operations performed so the caller
// can propagate them to the global priority queue.
package paretoset

import (
	"github.com/ssargent/multicrit/pkg/label"
)

// Set is satisfied by both the vector-backed and the B-tree-backed
// per-vertex label set. Both implementations are observably identical;
// only their cost profile differs.
type Set interface {
	// Update folds a batch of candidates -- sorted by (W1, W2), all
	// belonging to node -- into the set, returning the net updates.
	Update(node label.NodeID, candidates []label.Label) []label.Operation[label.NodeLabel]
	// Labels returns the current non-dominated labels, sentinels stripped.
	Labels() []label.Label
	Size() int
}

// VectorSet is a sentinel-bracketed, x-strictly-increasing /
// y-strictly-decreasing slice of labels.
type VectorSet struct {
	labels []label.Label
}

// NewVectorSet returns an empty set bracketed by the standard sentinels.
func NewVectorSet() *VectorSet {
	return &VectorSet{labels: []label.Label{label.SentinelLeft, label.SentinelRight}}
}

// Size returns the number of real (non-sentinel) labels.
func (s *VectorSet) Size() int { return len(s.labels) - 2 }

// Labels returns the real labels in ascending W1 order, sentinels
// stripped.
func (s *VectorSet) Labels() []label.Label {
	out := make([]label.Label, s.Size())
	copy(out, s.labels[1:len(s.labels)-1])
	return out
}

// xPredecessor returns the index of the last element with W1 strictly
// less than newLabel.W1 (always found given the left sentinel).
func xPredecessor(labels []label.Label, from int, newLabel label.Label) int {
	lo, hi := from, len(labels)
	if lo < 1 {
		lo = 1 // index 0 is the left sentinel, which precedes every real W1
	}
	for lo < hi {
		mid := (lo + hi) / 2
		if labels[mid].W1 < newLabel.W1 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo - 1
}

// yPredecessor returns the first index at or after `from` whose W2 is
// strictly less than newLabel.W2, or the right sentinel's index if no
// real label qualifies.
func yPredecessor(labels []label.Label, from int, newLabel label.Label) int {
	i := from
	for i < len(labels)-1 && labels[i].W2 >= newLabel.W2 {
		i++
	}
	return i
}

// isDominated reports whether newLabel is dominated by an existing member
// at or after `from`, and returns the index of the x-predecessor (or the
// element with equal W1) for use by the caller.
func isDominated(labels []label.Label, from int, newLabel label.Label) (dominated bool, idx int) {
	idx = xPredecessor(labels, from, newLabel)
	if labels[idx].W2 <= newLabel.W2 {
		return true, idx
	}
	idx++ // move to element with equal-or-greater W1
	if labels[idx].W1 == newLabel.W1 && labels[idx].W2 <= newLabel.W2 {
		return true, idx
	}
	return false, idx
}

// Update folds candidates into the set via a rolling-minimum scan.
func (s *VectorSet) Update(node label.NodeID, candidates []label.Label) []label.Operation[label.NodeLabel] {
	var updates []label.Operation[label.NodeLabel]
	minW2 := label.MaxWeight
	unprocessed := 0

	for _, cand := range candidates {
		if cand.W2 >= minW2 {
			continue // dominated by an earlier candidate -- shortcut
		}
		dominated, idx := isDominated(s.labels, unprocessed, cand)
		if dominated {
			minW2 = s.labels[idx].W2
			unprocessed = idx
			continue
		}
		minW2 = cand.W2
		updates = append(updates, label.Operation[label.NodeLabel]{Type: label.Insert, Data: label.NodeLabel{Node: node, Label: cand}})

		firstNondominated := yPredecessor(s.labels, idx, cand)
		if idx == firstNondominated {
			s.labels = insertAt(s.labels, idx, cand)
		} else {
			for i := idx; i != firstNondominated; i++ {
				updates = append(updates, label.Operation[label.NodeLabel]{Type: label.Delete, Data: label.NodeLabel{Node: node, Label: s.labels[i]}})
			}
			s.labels[idx] = cand
			s.labels = removeRange(s.labels, idx+1, firstNondominated)
			firstNondominated = idx + 1
		}
		unprocessed = idx
	}
	return updates
}

func insertAt(labels []label.Label, idx int, l label.Label) []label.Label {
	labels = append(labels, label.Label{})
	copy(labels[idx+1:], labels[idx:len(labels)-1])
	labels[idx] = l
	return labels
}

func removeRange(labels []label.Label, from, to int) []label.Label {
	return append(labels[:from], labels[to:]...)
}
