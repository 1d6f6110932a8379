package search

import (
	"context"
	"testing"

	"github.com/ssargent/multicrit/internal/genx"
	"github.com/ssargent/multicrit/pkg/config"
	"github.com/ssargent/multicrit/pkg/graph"
	"github.com/ssargent/multicrit/pkg/label"
)

func buildDiamond(t *testing.T) *graph.AdjacencyGraph {
	t.Helper()
	b := graph.NewBuilder(5)
	edges := []struct {
		from, to label.NodeID
		w1, w2   label.Weight
	}{
		{0, 2, 1, 2},
		{2, 1, 1, 1},
		{0, 3, 2, 1},
		{3, 1, 1, 1},
		{0, 4, 1, 1},
		{4, 1, 4, 4},
	}
	for _, e := range edges {
		if err := b.AddEdge(e.from, e.to, e.w1, e.w2); err != nil {
			t.Fatal(err)
		}
	}
	return b.Build()
}

func TestDiamondProducesExactLabelSetVectorSet(t *testing.T) {
	g := buildDiamond(t)
	cfg := config.DefaultConfig()
	cfg.Search.Workers = 2
	cfg.Search.MinGrain = 1

	d := New(g, cfg, nil)
	if err := d.Run(context.Background(), 0); err != nil {
		t.Fatal(err)
	}

	got := d.Labels(1)
	want := []label.Label{{W1: 2, W2: 3}, {W1: 3, W2: 2}}
	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("want %v, got %v", want, got)
		}
	}
}

func TestDiamondProducesExactLabelSetTreeSet(t *testing.T) {
	g := buildDiamond(t)
	cfg := config.DefaultConfig()
	cfg.Search.UseTreeLabel = true
	cfg.BTree.LeafParameterK = 8
	cfg.BTree.BranchingParameterB = 4

	d := New(g, cfg, nil)
	if err := d.Run(context.Background(), 0); err != nil {
		t.Fatal(err)
	}

	got := d.Labels(1)
	want := []label.Label{{W1: 2, W2: 3}, {W1: 3, W2: 2}}
	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("want %v, got %v", want, got)
		}
	}
}

func TestSourceHasOnlyZeroLabel(t *testing.T) {
	g := buildDiamond(t)
	d := New(g, config.DefaultConfig(), nil)
	if err := d.Run(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	labels := d.Labels(0)
	if len(labels) != 1 || !labels[0].Equal(label.Label{}) {
		t.Fatalf("want exactly the (0,0) label at source, got %v", labels)
	}
}

func TestExponentialDiamondDoublingProperty(t *testing.T) {
	const n = 6
	g := genx.ExponentialDiamond(n)
	cfg := config.DefaultConfig()
	cfg.Search.Workers = 4
	cfg.Search.MinGrain = 1

	d := New(g, cfg, nil)
	if err := d.Run(context.Background(), 0); err != nil {
		t.Fatal(err)
	}

	checkpoint := func(k int) label.NodeID { return label.NodeID(2*k - 1) }
	for k := 1; k <= n; k++ {
		want := 1 << uint(k-1)
		got := len(d.Labels(checkpoint(k)))
		if got != want {
			t.Fatalf("checkpoint %d: want %d labels, got %d", k, want, got)
		}
	}

	sink := genx.Sink(n)
	wantSink := 1 << uint(n-1)
	if got := len(d.Labels(sink)); got != wantSink {
		t.Fatalf("sink: want %d labels, got %d", wantSink, got)
	}
}

func TestThreadCountDoesNotAffectFinalLabelSets(t *testing.T) {
	g := genx.Grid(6, 6, func(_, _, _, _ int) (label.Weight, label.Weight) { return 1, 2 })

	var baseline [][]label.Label
	for _, workers := range []int{1, 2, 4, 8} {
		cfg := config.DefaultConfig()
		cfg.Search.Workers = workers
		cfg.Search.MinGrain = 1

		d := New(g, cfg, nil)
		if err := d.Run(context.Background(), 0); err != nil {
			t.Fatal(err)
		}

		current := make([][]label.Label, g.NumNodes())
		for n := 0; n < g.NumNodes(); n++ {
			current[n] = d.Labels(label.NodeID(n))
		}

		if baseline == nil {
			baseline = current
			continue
		}
		for n := range baseline {
			if len(baseline[n]) != len(current[n]) {
				t.Fatalf("worker count %d: node %d label count diverged: %v vs %v", workers, n, baseline[n], current[n])
			}
			for i := range baseline[n] {
				if !baseline[n][i].Equal(current[n][i]) {
					t.Fatalf("worker count %d: node %d label %d diverged: %v vs %v", workers, n, i, baseline[n], current[n])
				}
			}
		}
	}
}
