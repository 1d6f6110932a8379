package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/multicrit/pkg/config"
	"github.com/ssargent/multicrit/pkg/graph"
	"github.com/ssargent/multicrit/pkg/label"
	"github.com/ssargent/multicrit/pkg/search"
	"github.com/ssargent/multicrit/pkg/stats"
)

var runCmd = &cobra.Command{
	Use:   "run <source>",
	Short: "Run a single-source bi-criteria label-setting search",
	Long: `Run computes the full Pareto front of (w1, w2) costs from <source>
to every reachable vertex in the graph given by --graph.

Example:
  multicrit run 0 --graph testdata/usa.gr -p 8 -v`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, cfg, collector, err := searchContext(cmd)
		if err != nil {
			return err
		}

		source, err := parseNodeID(args[0])
		if err != nil {
			return err
		}

		d := search.New(g, cfg, collector)
		if err := d.Run(cmd.Context(), source); err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		printFronts(g, d)
		if cfg.Logging.Verbose {
			printStats(collector)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// searchContext pulls the graph, config, and stats collector populated by
// rootCmd's PersistentPreRunE back out of the command context.
func searchContext(cmd *cobra.Command) (graph.Graph, *config.Config, *stats.Collector, error) {
	g, ok := cmd.Context().Value("graph").(graph.Graph)
	if !ok || g == nil {
		return nil, nil, nil, fmt.Errorf("no graph loaded; pass -g/--graph")
	}
	cfg, _ := cmd.Context().Value("config").(*config.Config)
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	collector, _ := cmd.Context().Value("collector").(*stats.Collector)
	return g, cfg, collector, nil
}

func parseNodeID(s string) (label.NodeID, error) {
	var n uint32
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, fmt.Errorf("invalid node id %q: %w", s, err)
	}
	return n, nil
}

// printFronts prints each vertex's non-dominated (w1, w2) labels, one
// line per vertex, skipping vertices with no label (unreachable).
func printFronts(g graph.Graph, d *search.Driver) {
	for n := 0; n < g.NumNodes(); n++ {
		labels := d.Labels(label.NodeID(n))
		if len(labels) == 0 {
			continue
		}
		fmt.Printf("%d:", n)
		for _, l := range labels {
			fmt.Printf(" (%d,%d)", l.W1, l.W2)
		}
		fmt.Println()
	}
}

func printStats(collector *stats.Collector) {
	if collector == nil {
		return
	}
	fmt.Println("--- stats ---")
	for _, snap := range collector.Snapshot() {
		fmt.Printf("%-28s count=%-8d total=%-12d peak=%d\n",
			snap.Element, snap.Count, snap.Total, snap.Peak)
	}
}
