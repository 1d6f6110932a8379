package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ssargent/multicrit/pkg/label"
	"github.com/ssargent/multicrit/pkg/persist"
	"github.com/ssargent/multicrit/pkg/search"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <source>",
	Short: "Run a search and checkpoint the finished Pareto fronts to disk",
	Long: `Dump runs a single-source search and writes every vertex's finished
Pareto front into a Pebble snapshot store under --dir/snapshot, for
later inspection without re-running the search.

Example:
  multicrit dump 0 --graph testdata/usa.gr --dir ./data`,
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

		dataDir, _ := cmd.Flags().GetString("dir")
		store, err := persist.Open(filepath.Join(dataDir, "snapshot"))
		if err != nil {
			return fmt.Errorf("dump: %w", err)
		}
		defer store.Close()

		d := search.New(g, cfg, collector)
		d.OnComplete = func(fronts map[label.NodeID][]label.Label) {
			for node, labels := range fronts {
				if len(labels) == 0 {
					continue
				}
				if _, err := store.SaveFront(node, labels); err != nil {
					fmt.Printf("dump: save front for node %d: %v\n", node, err)
				}
			}
		}
		if err := d.Run(cmd.Context(), source); err != nil {
			return fmt.Errorf("dump: search failed: %w", err)
		}

		fmt.Printf("snapshot written to %s\n", filepath.Join(dataDir, "snapshot"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}
