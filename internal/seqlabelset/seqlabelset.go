// Package seqlabelset is the sequential label-setting oracle used as a
// correctness baseline for the parallel BSP driver in tests: a trusted
// single-threaded implementation that a parallel run's per-vertex label
// sets can be checked against.
//
// A single shared binary heap holds tentative (node, label) pairs
// ordered by a scalar priority. Pops happen in priority order, each pop
// is relaxed against its neighbors, and the result is folded into the
// target's Pareto label set, reusing pkg/paretoset.VectorSet directly
// rather than a second label-set implementation. The priority function
// only affects traversal order, never the final result, since the run
// always continues until the heap is empty.
package seqlabelset

import (
	"container/heap"

	"github.com/ssargent/multicrit/pkg/graph"
	"github.com/ssargent/multicrit/pkg/label"
	"github.com/ssargent/multicrit/pkg/paretoset"
)

// Priority scalarizes a label into a heap ordering key. The three
// variants mirror LabelSetBase::computePriority's PRIORITY_SUM /
// PRIORITY_LEX / PRIORITY_MAX build-time options, offered here as
// ordinary functions since Go has no compile-time config macros.
type Priority func(label.Label) uint64

// SumPriority orders by the sum of both weights.
func SumPriority(l label.Label) uint64 { return uint64(l.W1) + uint64(l.W2) }

// LexPriority orders lexicographically on (W1, W2), packed into a
// single 64-bit key.
func LexPriority(l label.Label) uint64 { return uint64(l.W1)<<32 | uint64(l.W2) }

// MaxPriority orders by the larger of the two weights.
func MaxPriority(l label.Label) uint64 {
	if l.W1 > l.W2 {
		return uint64(l.W1)
	}
	return uint64(l.W2)
}

type heapItem struct {
	priority uint64
	nodeLbl  label.NodeLabel
}

type labelHeap []heapItem

func (h labelHeap) Len() int            { return len(h) }
func (h labelHeap) Less(i, j int) bool  { return h[i].priority < h[j].priority }
func (h labelHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *labelHeap) Push(x interface{}) { *h = append(*h, x.(heapItem)) }
func (h *labelHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Run computes every node's non-dominated Pareto label set reachable
// from source, returning one paretoset.VectorSet per node (indexed by
// NodeID).
func Run(g graph.Graph, source label.NodeID, priority Priority) []*paretoset.VectorSet {
	n := g.NumNodes()
	sets := make([]*paretoset.VectorSet, n)
	for i := range sets {
		sets[i] = paretoset.NewVectorSet()
	}

	h := &labelHeap{}
	heap.Init(h)

	zero := label.Label{}
	sets[source].Update(source, []label.Label{zero})
	heap.Push(h, heapItem{priority: priority(zero), nodeLbl: label.NodeLabel{Node: source, Label: zero}})

	for h.Len() > 0 {
		current := heap.Pop(h).(heapItem).nodeLbl
		for _, e := range g.Edges(current.Node) {
			cand := label.Label{W1: current.W1 + e.W1, W2: current.W2 + e.W2}
			ops := sets[e.To].Update(e.To, []label.Label{cand})
			if labelSurvived(ops, cand) {
				heap.Push(h, heapItem{priority: priority(cand), nodeLbl: label.NodeLabel{Node: e.To, Label: cand}})
			}
		}
	}
	return sets
}

func labelSurvived(ops []label.Operation[label.NodeLabel], cand label.Label) bool {
	for _, op := range ops {
		if op.Type == label.Insert && op.Data.Label.Equal(cand) {
			return true
		}
	}
	return false
}

// ShortestScalar runs an ordinary single-objective Dijkstra over edges
// scalarized by priority, returning the shortest scalarized cost from
// source to target. Used as a cross-check that collapsing both
// objectives to one scalar and running classical Dijkstra agrees with
// the scalarized cost reachable through the full bi-objective Pareto
// search's label set at target.
func ShortestScalar(g graph.Graph, source, target label.NodeID, priority Priority) (uint64, bool) {
	n := g.NumNodes()
	dist := make([]uint64, n)
	visited := make([]bool, n)
	for i := range dist {
		dist[i] = ^uint64(0)
	}
	dist[source] = 0

	h := &scalarHeap{{priority: 0, node: source}}
	heap.Init(h)
	for h.Len() > 0 {
		cur := heap.Pop(h).(scalarItem)
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true
		for _, e := range g.Edges(cur.node) {
			d := dist[cur.node] + priority(label.Label{W1: e.W1, W2: e.W2})
			if d < dist[e.To] {
				dist[e.To] = d
				heap.Push(h, scalarItem{priority: d, node: e.To})
			}
		}
	}
	if dist[target] == ^uint64(0) {
		return 0, false
	}
	return dist[target], true
}

type scalarItem struct {
	priority uint64
	node     label.NodeID
}

type scalarHeap []scalarItem

func (h scalarHeap) Len() int            { return len(h) }
func (h scalarHeap) Less(i, j int) bool  { return h[i].priority < h[j].priority }
func (h scalarHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *scalarHeap) Push(x interface{}) { *h = append(*h, x.(scalarItem)) }
func (h *scalarHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
