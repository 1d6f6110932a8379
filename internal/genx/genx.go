// Package genx generates synthetic two-objective graphs used by
// benchmarks and tests: grid graphs with independent or correlated
// edge weights, and an "exponential" diamond-chain DAG that exercises
// worst-case Pareto-front blow-up.
package genx

import (
	"math"
	"math/rand"

	"github.com/ssargent/multicrit/pkg/graph"
	"github.com/ssargent/multicrit/pkg/label"
)

// ExponentialDiamond builds an n-layer diamond-chain DAG: a single
// source (node 0), n layers, each layer after the first
// offering two parallel routes between the previous layer's checkpoint
// and the next, so that the checkpoint's non-dominated label count
// exactly doubles layer over layer.
//
// Layer 1 is a single plain edge (checkpoint 1 has exactly one label).
// Layer k (2..n) adds an intermediate node and a direct edge in
// parallel, each carrying all of that layer's cost on a different
// objective, at a scale (4^(k-1)) chosen to dominate every weight sum
// reachable from earlier layers -- this is what keeps both branches of
// every layer non-dominated against each other, which is what drives
// the doubling. n beyond ~15 will overflow uint32 weights; callers
// needing larger instances should use smaller-scale weights and accept
// approximate (non-exact-doubling) behavior.
func ExponentialDiamond(n int) *graph.AdjacencyGraph {
	if n < 1 {
		n = 1
	}
	numNodes := 2 * n
	b := graph.NewBuilder(numNodes)

	source := label.NodeID(0)
	checkpoint := func(k int) label.NodeID { return label.NodeID(2*k - 1) }
	mid := func(k int) label.NodeID { return label.NodeID(2*k - 2) }

	// Layer 1: a plain edge from the source to checkpoint 1.
	_ = b.AddEdge(source, checkpoint(1), 1, 1)

	for k := 2; k <= n; k++ {
		hub := checkpoint(k - 1)
		s := label.Weight(1) << uint(2*(k-1)) // 4^(k-1)
		_ = b.AddEdge(hub, mid(k), s, 0)
		_ = b.AddEdge(mid(k), checkpoint(k), 0, 0)
		_ = b.AddEdge(hub, checkpoint(k), 0, s)
	}
	return b.Build()
}

// Sink returns the node id of the exponential diamond's final
// checkpoint for an n-layer instance.
func Sink(n int) label.NodeID {
	if n < 1 {
		n = 1
	}
	return label.NodeID(2*n - 1)
}

// WeightFunc returns the two weights for the edge between grid
// neighbors (r1,c1) and (r2,c2).
type WeightFunc func(r1, c1, r2, c2 int) (w1, w2 label.Weight)

// Grid builds a rows×cols 4-neighbor grid graph (edges in both
// directions between horizontally/vertically adjacent cells), with
// weights supplied by weightFn. Node (r, c) has id r*cols + c.
func Grid(rows, cols int, weightFn WeightFunc) *graph.AdjacencyGraph {
	n := rows * cols
	b := graph.NewBuilder(n)
	id := func(r, c int) label.NodeID { return label.NodeID(r*cols + c) }

	addPair := func(r1, c1, r2, c2 int) {
		w1, w2 := weightFn(r1, c1, r2, c2)
		_ = b.AddEdge(id(r1, c1), id(r2, c2), w1, w2)
		w1b, w2b := weightFn(r2, c2, r1, c1)
		_ = b.AddEdge(id(r2, c2), id(r1, c1), w1b, w2b)
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if c+1 < cols {
				addPair(r, c, r, c+1)
			}
			if r+1 < rows {
				addPair(r, c, r+1, c)
			}
		}
	}
	return b.Build()
}

// RandomGrid builds a rows×cols grid with both edge weights drawn
// independently and uniformly from [0, maxWeight].
func RandomGrid(rows, cols int, maxWeight uint32, rng *rand.Rand) *graph.AdjacencyGraph {
	return Grid(rows, cols, func(_, _, _, _ int) (label.Weight, label.Weight) {
		return label.Weight(rng.Int31n(int32(maxWeight) + 1)), label.Weight(rng.Int31n(int32(maxWeight) + 1))
	})
}

// CorrelatedGrid builds a rows×cols grid whose two edge weights are
// drawn from a bivariate normal with Pearson correlation rho (clamped
// to [-1, 1]) and then clipped to non-negative integers scaled by
// maxWeight. Positive rho concentrates the sink's Pareto frontier to a
// handful of labels; strongly negative rho blows it up to hundreds.
func CorrelatedGrid(rows, cols int, maxWeight uint32, rho float64, rng *rand.Rand) *graph.AdjacencyGraph {
	if rho > 1 {
		rho = 1
	}
	if rho < -1 {
		rho = -1
	}
	scale := float64(maxWeight) / 6 // +/-3 std devs spans the weight range
	clip := func(x float64) label.Weight {
		v := x*scale + float64(maxWeight)/2
		if v < 0 {
			v = 0
		}
		if v > float64(maxWeight) {
			v = float64(maxWeight)
		}
		return label.Weight(v)
	}
	return Grid(rows, cols, func(_, _, _, _ int) (label.Weight, label.Weight) {
		z1 := rng.NormFloat64()
		z2 := rng.NormFloat64()
		x := z1
		y := rho*z1 + math.Sqrt(1-rho*rho)*z2
		return clip(x), clip(y)
	})
}
