// Package graph provides a read-only, CSR-style adjacency view of a
// directed graph whose edges carry two non-negative weights. The graph
// container is deliberately a thin external collaborator: it knows
// nothing about labels, Pareto dominance, or the search engine that
// consumes it.
package graph

import (
	"fmt"

	"github.com/ssargent/multicrit/pkg/label"
)

// NodeID identifies a vertex, 0-based.
type NodeID = label.NodeID

// Edge is a directed, two-weighted arc to a target node.
type Edge struct {
	To NodeID
	W1 label.Weight
	W2 label.Weight
}

// Graph is the minimal read-only surface the search engine needs.
type Graph interface {
	NumNodes() int
	Edges(n NodeID) []Edge
}

// AdjacencyGraph is a compact CSR (compressed sparse row) adjacency list:
// offsets[n]..offsets[n+1] delimits node n's edge slice.
type AdjacencyGraph struct {
	offsets []int32
	edges   []Edge
}

// NumNodes returns the number of vertices in the graph.
func (g *AdjacencyGraph) NumNodes() int {
	return len(g.offsets) - 1
}

// Edges returns node n's outgoing edges. The returned slice must not be
// mutated by the caller.
func (g *AdjacencyGraph) Edges(n NodeID) []Edge {
	return g.edges[g.offsets[n]:g.offsets[n+1]]
}

// NumEdges returns the total edge count.
func (g *AdjacencyGraph) NumEdges() int {
	return len(g.edges)
}

// Builder accumulates (u, v, w1, w2) triples in any order and finalizes
// them into a CSR AdjacencyGraph.
type Builder struct {
	numNodes int
	raw      []rawEdge
}

type rawEdge struct {
	from, to NodeID
	w1, w2   label.Weight
}

// NewBuilder creates a Builder for a graph with numNodes vertices.
func NewBuilder(numNodes int) *Builder {
	return &Builder{numNodes: numNodes}
}

// AddEdge records a directed edge from -> to with the given weights.
// Returns an error if either endpoint is out of range.
func (b *Builder) AddEdge(from, to NodeID, w1, w2 label.Weight) error {
	if int(from) >= b.numNodes || int(to) >= b.numNodes {
		return fmt.Errorf("graph: edge (%d -> %d) out of range for %d nodes", from, to, b.numNodes)
	}
	b.raw = append(b.raw, rawEdge{from, to, w1, w2})
	return nil
}

// Build finalizes the accumulated edges into an AdjacencyGraph. Edge order
// within a node's slice follows insertion order.
func (b *Builder) Build() *AdjacencyGraph {
	counts := make([]int32, b.numNodes+1)
	for _, e := range b.raw {
		counts[e.from]++
	}
	offsets := make([]int32, b.numNodes+1)
	for i := 0; i < b.numNodes; i++ {
		offsets[i+1] = offsets[i] + counts[i]
	}
	cursor := make([]int32, b.numNodes)
	copy(cursor, offsets[:b.numNodes])

	edges := make([]Edge, len(b.raw))
	for _, e := range b.raw {
		idx := cursor[e.from]
		edges[idx] = Edge{To: e.to, W1: e.w1, W2: e.w2}
		cursor[e.from]++
	}
	return &AdjacencyGraph{offsets: offsets, edges: edges}
}
