// Package label defines the cost types shared by every component of the
// multi-objective label-setting engine: plain (w1, w2) costs, costs
// annotated with the node they belong to, and the tagged insert/delete
// operations used to describe batch updates.
package label

import "math"

// Weight is the scalar cost type used on every edge and label. Weights are
// always non-negative; the algorithm never subtracts them.
type Weight = uint32

// MaxWeight is the largest representable weight, used as "infinity" when
// seeding running-minimum scans.
const MaxWeight Weight = math.MaxUint32

// Label is a two-dimensional, non-negative cost pair.
type Label struct {
	W1 Weight
	W2 Weight
}

// Dominates reports whether l dominates other: both components of l are
// less than or equal to other's, and at least one is strictly less.
func (l Label) Dominates(other Label) bool {
	return l.W1 <= other.W1 && l.W2 <= other.W2 && (l.W1 < other.W1 || l.W2 < other.W2)
}

// Less orders labels lexicographically on (W1, W2). This is the order used
// as the B-tree key order for per-vertex label sets.
func (l Label) Less(other Label) bool {
	if l.W1 != other.W1 {
		return l.W1 < other.W1
	}
	return l.W2 < other.W2
}

// Equal reports exact component-wise equality.
func (l Label) Equal(other Label) bool {
	return l.W1 == other.W1 && l.W2 == other.W2
}

// SentinelLeft and SentinelRight bracket every Pareto label set: the left
// sentinel sits before any real label and carries the largest W2, so it
// never dominates a real label; the right sentinel sits after any real
// label and carries W2 == 0, where a y-predecessor scan stops.
var (
	SentinelLeft  = Label{W1: 0, W2: MaxWeight}
	SentinelRight = Label{W1: MaxWeight, W2: 0}
)

// NodeID identifies a vertex. Defined here (rather than in pkg/graph) so
// that label.NodeLabel has no dependency on the graph package; pkg/graph
// re-exports this type as graph.NodeID.
type NodeID = uint32

// NodeLabel is a Label annotated with the vertex it describes.
type NodeLabel struct {
	Node NodeID
	Label
}

// LessByWeightThenNode orders NodeLabels by (W1, W2, Node) -- the priority
// queue's key order.
func LessByWeightThenNode(a, b NodeLabel) bool {
	if a.W1 != b.W1 {
		return a.W1 < b.W1
	}
	if a.W2 != b.W2 {
		return a.W2 < b.W2
	}
	return a.Node < b.Node
}

// LessByNode orders NodeLabels by (Node, W1, W2) -- the candidate stream's
// grouping order used before per-vertex label-set updates.
func LessByNode(a, b NodeLabel) bool {
	if a.Node != b.Node {
		return a.Node < b.Node
	}
	if a.W1 != b.W1 {
		return a.W1 < b.W1
	}
	return a.W2 < b.W2
}

// OpType tags an Operation as an insertion or a deletion. The integer
// values double as the signed weight delta contributed by a single
// operation.
type OpType int8

const (
	Delete OpType = -1
	Insert OpType = 1
)

// Operation is a single tagged update to be applied to a batch-oriented
// container (a B-tree or a Pareto label set).
type Operation[T any] struct {
	Type OpType
	Data T
}
