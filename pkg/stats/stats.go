// Package stats gathers optional label-setting run statistics. Counting
// is cheap but not free, so every Report call is a no-op unless the
// Collector was built with Enabled: true.
package stats

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Element names one of the counters tracked per run.
type Element int

const (
	LSModificationsPerNode Element = iota
	CandidateLabelsPerNode
	LabelDominated
	LabelNondominated
	MinimaCount
	UpdateCount
	PQSizeDelta
	Iteration
	DominationShortcut
	elementCount
)

// String returns the element's snake_case name, used by cmd/multicrit's
// -v/--stats dump and as the Prometheus metric name suffix.
func (e Element) String() string {
	if e < 0 || int(e) >= len(elementNames) {
		return "unknown"
	}
	return elementNames[e]
}

var elementNames = [elementCount]string{
	"ls_modifications_per_node",
	"candidate_labels_per_node",
	"label_dominated",
	"label_nondominated",
	"minima_count",
	"update_count",
	"pq_size_delta",
	"iteration",
	"domination_shortcut",
}

// Collector accumulates running totals and peaks for every Element, and
// optionally mirrors them onto Prometheus gauges for live scraping.
type Collector struct {
	Enabled bool

	mu     sync.Mutex
	count  [elementCount]uint64
	total  [elementCount]uint64
	peak   [elementCount]uint64
	gauges [elementCount]prometheus.Gauge
}

// NewCollector builds a Collector. When enabled, it registers one
// Prometheus gauge per Element under the "multicrit_search_" prefix.
func NewCollector(enabled bool) *Collector {
	c := &Collector{Enabled: enabled}
	if !enabled {
		return c
	}
	factory := promauto.With(nil) // builds gauges without registering them
	for i := Element(0); i < elementCount; i++ {
		g := factory.NewGauge(prometheus.GaugeOpts{
			Name: "multicrit_search_" + elementNames[i] + "_total",
			Help: fmt.Sprintf("Running total reported for the %s statistic.", elementNames[i]),
		})
		// A later enabled Collector in the same process reuses the gauge
		// the first one registered instead of panicking on a duplicate.
		if err := prometheus.Register(g); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				g = are.ExistingCollector.(prometheus.Gauge)
			}
		}
		c.gauges[i] = g
	}
	return c
}

// Report records one occurrence of stat, with an optional payload (a
// size or delta). A no-op when the collector is disabled.
func (c *Collector) Report(stat Element, payload uint64) {
	if !c.Enabled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count[stat]++
	c.total[stat] += payload
	if payload > c.peak[stat] {
		c.peak[stat] = payload
	}
	if c.gauges[stat] != nil {
		c.gauges[stat].Set(float64(c.total[stat]))
	}
}

// Snapshot is a point-in-time, immutable copy of one Element's counters.
type Snapshot struct {
	Element Element
	Count   uint64
	Total   uint64
	Peak    uint64
}

// Snapshot returns the current counters for every element, in Element
// order, regardless of whether the collector is enabled (an unused
// collector simply reports all zeros).
func (c *Collector) Snapshot() []Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Snapshot, elementCount)
	for i := range out {
		out[i] = Snapshot{Element: Element(i), Count: c.count[i], Total: c.total[i], Peak: c.peak[i]}
	}
	return out
}

// Timer wraps time.Now/time.Since. Go's time package already gives
// monotonic, sub-microsecond timestamps, so no higher-resolution clock
// source is needed.
type Timer struct {
	start time.Time
}

// Start begins (or restarts) the timer.
func (t *Timer) Start() { t.start = time.Now() }

// Stop returns the elapsed duration since Start.
func (t *Timer) Stop() time.Duration { return time.Since(t.start) }

// RSSBytes reads the process's resident set size from /proc/self/status.
// Returns 0, err on non-Linux platforms or if the file is unreadable.
func RSSBytes() (uint64, error) {
	f, err := os.Open("/proc/self/status")
	if err != nil {
		return 0, fmt.Errorf("stats: read RSS: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "VmRSS:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0, fmt.Errorf("stats: malformed VmRSS line %q", line)
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("stats: parse VmRSS: %w", err)
		}
		return kb * 1024, nil
	}
	return 0, fmt.Errorf("stats: VmRSS not found in /proc/self/status")
}
