// Package search implements the bulk-synchronous parallel label-setting
// driver. Each round pulls the current set of globally Pareto-minimal
// tentative labels out of the shared priority queue, relaxes them
// across the graph, folds the resulting candidates into per-vertex
// Pareto label sets, and feeds the net label-set changes back into the
// queue as the next round's insert/delete batch -- repeating until the
// queue is empty.
//
// Each round's relax, per-node sort and label-set update stages run
// across goroutines via golang.org/x/sync/errgroup, used the same way
// throughout this module (pkg/btree, pkg/psort); find-minima walks the
// queue in a single goroutine.
package search

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ssargent/multicrit/pkg/btree"
	"github.com/ssargent/multicrit/pkg/config"
	"github.com/ssargent/multicrit/pkg/graph"
	"github.com/ssargent/multicrit/pkg/label"
	"github.com/ssargent/multicrit/pkg/paretoset"
	"github.com/ssargent/multicrit/pkg/pqueue"
	"github.com/ssargent/multicrit/pkg/psort"
	"github.com/ssargent/multicrit/pkg/stats"
	"github.com/ssargent/multicrit/pkg/writebuffer"
)

// candidateSentinel marks an unwritten write-buffer slot; no real
// candidate can carry it, since label.MaxWeight already means
// "unreachable" by convention (pkg/label's sentinel labels).
var candidateSentinel = label.NodeLabel{
	Node:  label.MaxWeight,
	Label: label.Label{W1: label.MaxWeight, W2: label.MaxWeight},
}

// Driver owns one search run's mutable state: the graph it searches,
// the shared tentative-label queue, and one Pareto label set per
// vertex.
type Driver struct {
	Graph     graph.Graph
	Queue     *pqueue.Queue
	LabelSets []paretoset.Set
	Config    *config.Config
	Stats     *stats.Collector

	// OnComplete, if set, is invoked once after Run finishes with the
	// full per-vertex label map -- additive instrumentation (e.g. the
	// pkg/persist snapshot sink), never consulted by the search itself.
	OnComplete func(map[label.NodeID][]label.Label)
}

// New builds a Driver over g, choosing VectorSet or TreeSet per-vertex
// label sets according to cfg.Search.UseTreeLabel.
func New(g graph.Graph, cfg *config.Config, collector *stats.Collector) *Driver {
	n := g.NumNodes()
	sets := make([]paretoset.Set, n)
	for i := range sets {
		if cfg.Search.UseTreeLabel {
			sets[i] = paretoset.NewTreeSet(cfg.BTree)
		} else {
			sets[i] = paretoset.NewVectorSet()
		}
	}
	return &Driver{
		Graph:     g,
		Queue:     pqueue.New(cfg.BTree),
		LabelSets: sets,
		Config:    cfg,
		Stats:     collector,
	}
}

// Labels returns node's final non-dominated labels, sentinels stripped.
func (d *Driver) Labels(node label.NodeID) []label.Label {
	return d.LabelSets[node].Labels()
}

// Run seeds (0,0) at source into both the queue and source's own label
// set, then repeats the five-phase BSP round (find minima, relax,
// group-by-node, update label sets, apply net updates to the queue)
// until the queue is empty.
func (d *Driver) Run(ctx context.Context, source label.NodeID) error {
	if err := d.Queue.Init(source); err != nil {
		return fmt.Errorf("search: init queue: %w", err)
	}
	d.LabelSets[source].Update(source, []label.Label{{}})

	grainFloor := d.Config.Search.MinGrain
	if grainFloor <= 0 {
		grainFloor = psort.DefaultGrain
	}
	workers := d.Config.Search.Workers
	if workers < 1 {
		workers = 1
	}

	iteration := uint64(0)
	for !d.Queue.Empty() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		iteration++
		d.report(stats.Iteration, iteration)

		minima, err := d.Queue.FindParetoMinima()
		if err != nil {
			return fmt.Errorf("search: find minima: %w", err)
		}
		d.report(stats.MinimaCount, uint64(len(minima)))

		grain := psort.Grain(len(minima), workers, grainFloor)
		candidates, err := d.relax(minima, workers, grain)
		if err != nil {
			return fmt.Errorf("search: relax: %w", err)
		}
		d.report(stats.CandidateLabelsPerNode, uint64(len(candidates)))

		groups := d.groupByNode(candidates, grain)
		nodeOps := d.updateLabelSets(groups)

		ops := make([]label.Operation[label.NodeLabel], 0, len(minima)+len(nodeOps))
		for _, m := range minima {
			ops = append(ops, label.Operation[label.NodeLabel]{Type: label.Delete, Data: m})
		}
		ops = append(ops, nodeOps...)
		d.report(stats.UpdateCount, uint64(len(ops)))

		psort.ParallelSort(ops, opLess, grain)
		if err := d.Queue.ApplyUpdates(ops, btree.InsertsAndDeletes); err != nil {
			return fmt.Errorf("search: apply updates: %w", err)
		}
		d.report(stats.PQSizeDelta, uint64(d.Queue.Size()))
	}

	if d.OnComplete != nil {
		d.OnComplete(d.snapshot())
	}
	return nil
}

// relax fans out across minima, appending every relaxed neighbor label
// into a shared writebuffer.Arena, then collects the written entries
// (anything still holding candidateSentinel was never written).
func (d *Driver) relax(minima []label.NodeLabel, workers, grain int) ([]label.NodeLabel, error) {
	if len(minima) == 0 {
		return nil, nil
	}
	total := 0
	for _, m := range minima {
		total += len(d.Graph.Edges(m.Node))
	}
	if total == 0 {
		return nil, nil
	}

	ranges := chunkRanges(len(minima), workers, grain)

	batchSize := d.Config.BTree.BatchSize
	if batchSize <= 0 {
		batchSize = 256
	}
	if batchSize > total {
		batchSize = total
	}
	// Each worker may round its final claim up to a full batch past what
	// it actually needs; the arena must be large enough to absorb that
	// overrun across every worker, not just hold the exact candidate
	// count.
	capacity := total + len(ranges)*batchSize
	arena := writebuffer.NewArena(capacity, batchSize, candidateSentinel)
	var g errgroup.Group
	for _, r := range ranges {
		r := r
		g.Go(func() error {
			buf := writebuffer.NewBuffer(arena)
			for i := r[0]; i < r[1]; i++ {
				m := minima[i]
				for _, e := range d.Graph.Edges(m.Node) {
					cand := label.NodeLabel{
						Node:  e.To,
						Label: label.Label{W1: m.W1 + e.W1, W2: m.W2 + e.W2},
					}
					if !buf.Append(cand) {
						return fmt.Errorf("search: write-buffer arena exhausted")
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data := arena.Data()
	out := make([]label.NodeLabel, 0, len(data))
	for _, v := range data {
		if v == candidateSentinel {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// groupByNode sorts candidates into contiguous per-node runs (radix
// sort on Node), then sorts each run by (W1, W2) in parallel -- the
// order paretoset.Set.Update requires of its candidate batch.
func (d *Driver) groupByNode(candidates []label.NodeLabel, grain int) [][]label.NodeLabel {
	psort.RadixSortByNode(candidates, func(nl label.NodeLabel) uint32 { return nl.Node })
	groups := groupConsecutiveByNode(candidates)

	var g errgroup.Group
	for _, grp := range groups {
		grp := grp
		g.Go(func() error {
			psort.ParallelSort(grp, func(a, b label.NodeLabel) bool { return a.Label.Less(b.Label) }, grain)
			return nil
		})
	}
	_ = g.Wait()
	return groups
}

// updateLabelSets folds each node's candidate run into that node's
// Pareto label set in parallel, collecting the net insert/delete
// operations every call returns.
func (d *Driver) updateLabelSets(groups [][]label.NodeLabel) []label.Operation[label.NodeLabel] {
	results := make([][]label.Operation[label.NodeLabel], len(groups))
	var g errgroup.Group
	for i, grp := range groups {
		i, grp := i, grp
		g.Go(func() error {
			node := grp[0].Node
			labels := make([]label.Label, len(grp))
			for j, nl := range grp {
				labels[j] = nl.Label
			}
			results[i] = d.LabelSets[node].Update(node, labels)
			return nil
		})
	}
	_ = g.Wait()

	var out []label.Operation[label.NodeLabel]
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

func (d *Driver) snapshot() map[label.NodeID][]label.Label {
	out := make(map[label.NodeID][]label.Label, len(d.LabelSets))
	for i, s := range d.LabelSets {
		out[label.NodeID(i)] = s.Labels()
	}
	return out
}

func (d *Driver) report(e stats.Element, payload uint64) {
	if d.Stats != nil {
		d.Stats.Report(e, payload)
	}
}

// opLess orders update operations by the queue's own key order so the
// batch satisfies ApplyUpdates' sorted-batch precondition; ties (an
// insert and a delete sharing a key) fall back to Type so ordering is
// still a total order, though merge's net-delta grouping doesn't care
// which comes first within a tied run.
func opLess(a, b label.Operation[label.NodeLabel]) bool {
	if label.LessByWeightThenNode(a.Data, b.Data) {
		return true
	}
	if label.LessByWeightThenNode(b.Data, a.Data) {
		return false
	}
	return a.Type < b.Type
}

// groupConsecutiveByNode splits a node-sorted slice into per-node
// subslices (views into the same backing array, no copying).
func groupConsecutiveByNode(s []label.NodeLabel) [][]label.NodeLabel {
	if len(s) == 0 {
		return nil
	}
	var out [][]label.NodeLabel
	start := 0
	for i := 1; i <= len(s); i++ {
		if i == len(s) || s[i].Node != s[start].Node {
			out = append(out, s[start:i])
			start = i
		}
	}
	return out
}

// chunkRanges splits [0, n) into up to workers contiguous ranges, each
// at least grain long where possible, for the relax phase's fan-out.
func chunkRanges(n, workers, grain int) [][2]int {
	if n == 0 {
		return nil
	}
	if grain > 0 && n/grain < workers {
		workers = n / grain
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	base := n / workers
	rem := n % workers

	out := make([][2]int, 0, workers)
	start := 0
	for i := 0; i < workers; i++ {
		sz := base
		if i < rem {
			sz++
		}
		if sz == 0 {
			continue
		}
		out = append(out, [2]int{start, start + sz})
		start += sz
	}
	return out
}
