package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssargent/multicrit/pkg/search"
	"github.com/ssargent/multicrit/pkg/stats"
)

var benchCmd = &cobra.Command{
	Use:   "bench <source>",
	Short: "Repeat a single-source search -c times and report timing",
	Long: `Bench runs the same search repeatedly (see -c/--iterations) against a
fresh Driver each time and reports min/mean/max wall-clock time.

Example:
  multicrit bench 0 --graph testdata/usa.gr -c 10 -p 8`,
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
		iterations, _ := cmd.Flags().GetInt("iterations")
		if iterations < 1 {
			iterations = 1
		}

		var timer stats.Timer
		durations := make([]time.Duration, 0, iterations)
		for i := 0; i < iterations; i++ {
			d := search.New(g, cfg, collector)
			timer.Start()
			if err := d.Run(cmd.Context(), source); err != nil {
				return fmt.Errorf("bench: trial %d: %w", i, err)
			}
			durations = append(durations, timer.Stop())
		}

		printTrials(durations)
		if cfg.Logging.Verbose {
			printStats(collector)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(benchCmd)
}

func printTrials(durations []time.Duration) {
	min, max, sum := durations[0], durations[0], time.Duration(0)
	for _, d := range durations {
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
		sum += d
	}
	mean := sum / time.Duration(len(durations))
	fmt.Printf("trials=%d min=%s mean=%s max=%s\n", len(durations), min, mean, max)
}
