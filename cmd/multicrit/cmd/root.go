package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssargent/multicrit/internal/textgraph"
	"github.com/ssargent/multicrit/pkg/config"
	"github.com/ssargent/multicrit/pkg/graph"
	"github.com/ssargent/multicrit/pkg/stats"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "multicrit",
	Short: "Parallel bi-criteria shortest-path label-setting engine",
	Long: `multicrit computes, for every vertex reachable from a source, the
full Pareto front of (w1, w2) shortest-path costs using a parallel
bulk-synchronous label-setting search over a weight-balanced B-tree
priority queue.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("dir")
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data dir: %w", err)
		}

		cfg := config.DefaultConfig()
		if procs, _ := cmd.Flags().GetInt("procs"); procs > 0 {
			cfg.Search.Workers = procs
		}
		verbose, _ := cmd.Flags().GetBool("stats")
		cfg.Search.GatherStats = verbose
		cfg.Logging.Verbose = verbose

		cmd.SetContext(context.WithValue(cmd.Context(), "config", cfg))
		cmd.SetContext(context.WithValue(cmd.Context(), "collector", stats.NewCollector(verbose)))

		graphPath, _ := cmd.Flags().GetString("graph")
		if graphPath == "" {
			// Subcommands that don't touch a graph (e.g. "serve") tolerate a
			// nil graph in the context; run/bench/dump check for it themselves.
			return nil
		}
		g, err := loadGraph(graphPath)
		if err != nil {
			return fmt.Errorf("failed to load graph: %w", err)
		}
		cmd.SetContext(context.WithValue(cmd.Context(), "graph", g))
		return nil
	},
}

// loadGraph dispatches on the file extension: ".mctg" files are the
// binary adjacency dump (internal/textgraph.DumpBinary), anything else
// is parsed as the `p sp N M` text format. Both transparently decompress
// a zstd-framed input first.
func loadGraph(path string) (graph.Graph, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if strings.HasSuffix(path, ".mctg") {
		return textgraph.LoadBinary(f)
	}
	return textgraph.Parse(f)
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("dir", "d", "./data", "data directory for persisted snapshots")
	rootCmd.PersistentFlags().StringP("graph", "g", "", "path to a graph instance (DIMACS `p sp` text, or .mctg binary)")
	rootCmd.PersistentFlags().IntP("procs", "p", runtime.NumCPU(), "number of parallel workers")
	rootCmd.PersistentFlags().IntP("iterations", "c", 1, "repeat count for the bench subcommand")
	rootCmd.PersistentFlags().BoolP("stats", "v", false, "gather and print per-phase run statistics")
}
