package cmd

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// serveCmd exposes this process's default Prometheus registry (including
// the pkg/stats gauges registered when -v is set) on /metrics for
// scraping by an external collector.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose this process's statistics on /metrics for scraping",
	Long: `Serve starts an HTTP server exposing this process's default Prometheus
registry. The serve process runs no search itself, so its pkg/stats
gauges stay at zero; metrics of a separate "bench" or "run" process are
not visible here.

Example:
  multicrit serve --port 9090`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())

		addr := fmt.Sprintf(":%d", port)
		fmt.Printf("serving /metrics on %s\n", addr)
		return http.ListenAndServe(addr, mux)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("port", 9090, "port to listen on")
}
