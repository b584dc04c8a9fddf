package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/iterkit/component"
)

// PartitionInfo describes one window of a split source.
type PartitionInfo struct {
	Name   string
	Window string
	Depth  int
}

// EpochResult is what one iterator delivered in one epoch.
type EpochResult struct {
	Iterator string
	Epoch    int
	Batches  int64
	Duration time.Duration
	Err      error
}

// Summary tracks the layout of a run and the per-epoch results, and renders
// them as a startup summary and a final report.
type Summary struct {
	mu              sync.Mutex
	serviceName     string
	version         string
	startupDuration time.Duration
	runDuration     time.Duration
	partitions      []PartitionInfo
	results         []EpochResult
}

// NewSummary creates a new summary tracker.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records the time spent starting up.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.mu.Lock()
	s.startupDuration = d
	s.mu.Unlock()
}

// SetRunDuration records the time spent in the task.
func (s *Summary) SetRunDuration(d time.Duration) {
	s.mu.Lock()
	s.runDuration = d
	s.mu.Unlock()
}

// TrackPartition adds a partition to the layout.
func (s *Summary) TrackPartition(name, window string, depth int) {
	s.mu.Lock()
	s.partitions = append(s.partitions, PartitionInfo{Name: name, Window: window, Depth: depth})
	s.mu.Unlock()
}

// RecordEpoch adds the result of draining one iterator for one epoch.
func (s *Summary) RecordEpoch(r EpochResult) {
	s.mu.Lock()
	s.results = append(s.results, r)
	s.mu.Unlock()
}

// Results returns the recorded epoch results in recording order.
func (s *Summary) Results() []EpochResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]EpochResult(nil), s.results...)
}

// Total returns the number of batches an iterator delivered over all epochs.
func (s *Summary) Total(iterator string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, r := range s.results {
		if r.Iterator == iterator {
			n += r.Batches
		}
	}
	return n
}

// DisplaySummary writes the startup summary with the registered components
// and their live health.
func (s *Summary) DisplaySummary(ctx context.Context, registry *component.Registry, w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintf(w, "\n%s v%s started in %.2fs\n", s.serviceName, displayVersion(s.version), s.startupDuration.Seconds())

	if len(s.partitions) > 0 {
		fmt.Fprintf(w, "\nPartitions\n")
		for i, p := range s.partitions {
			fmt.Fprintf(w, "   %s %s %s (depth %d)\n", treePrefix(i, len(s.partitions)), p.Name, p.Window, p.Depth)
		}
	}

	if registry == nil {
		fmt.Fprintln(w)
		return
	}
	descs := registry.Describe()
	if len(descs) == 0 {
		fmt.Fprintf(w, "   └── No components registered\n\n")
		return
	}

	// Describe and HealthAll both follow registration order.
	health := registry.HealthAll(ctx)
	fmt.Fprintf(w, "\nComponents\n")
	for i, d := range descs {
		var h component.Health
		if i < len(health) {
			h = health[i]
		}
		line := fmt.Sprintf("   %s %s %s", treePrefix(i, len(descs)), healthStatusIcon(h.Status), d.Name)
		if d.Type != "" {
			line += " [" + d.Type + "]"
		}
		if d.Details != "" {
			line += " " + d.Details
		}
		if h.Message != "" {
			line += " - " + h.Message
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)
}

// DisplayReport writes the per-epoch results and per-iterator totals.
func (s *Summary) DisplayReport(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintf(w, "\nRun finished in %.2fs\n", s.runDuration.Seconds())
	if len(s.results) == 0 {
		fmt.Fprintf(w, "   └── No epochs recorded\n\n")
		return
	}

	var order []string
	totals := make(map[string]int64)
	failed := 0
	for i, r := range s.results {
		status := "ok"
		if r.Err != nil {
			status = "error: " + r.Err.Error()
			failed++
		}
		fmt.Fprintf(w, "   %s %s epoch %d: %d batches in %s (%s)\n",
			treePrefix(i, len(s.results)), r.Iterator, r.Epoch, r.Batches, r.Duration.Round(time.Microsecond), status)
		if _, seen := totals[r.Iterator]; !seen {
			order = append(order, r.Iterator)
		}
		totals[r.Iterator] += r.Batches
	}

	parts := make([]string, 0, len(order))
	var all int64
	for _, name := range order {
		parts = append(parts, fmt.Sprintf("%s=%d", name, totals[name]))
		all += totals[name]
	}
	fmt.Fprintf(w, "\nTotals: %s (all=%d)\n", strings.Join(parts, ", "), all)
	if failed > 0 {
		fmt.Fprintf(w, "%d epoch(s) failed\n", failed)
	}
	fmt.Fprintln(w)
}

func displayVersion(v string) string {
	if v == "" {
		return "dev"
	}
	return v
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
