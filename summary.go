package hackload

import (
	"fmt"
	"io"
	"sort"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
)

// Summary totals of a finished run
type Summary struct {
	RunID string
	Name  string
	Users int64
	// Tasks metrics by task label
	Tasks map[string]*Metrics
	Total *Metrics
	// Errors uniq error messages with counts
	Errors map[string]int
	MaxRPS float64
	// Failed is true when the test was stopped by low success ratio
	Failed bool
}

func (r *Runner) summary() *Summary {
	for _, m := range r.taskMetrics {
		m.update()
	}
	r.total.update()
	return &Summary{
		RunID:  r.RunID,
		Name:   r.Name,
		Users:  atomic.LoadInt64(&r.spawnedUsers),
		Tasks:  r.taskMetrics,
		Total:  r.total,
		Errors: r.uniqErrors,
		MaxRPS: r.maxRPS(),
		Failed: atomic.LoadInt64(&r.Failed) > 0,
	}
}

// Labels sorted task labels
func (s *Summary) Labels() []string {
	labels := make([]string, 0, len(s.Tasks))
	for l := range s.Tasks {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// PrintSummary writes per task table, failed rows are red
func PrintSummary(w io.Writer, s *Summary) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)

	_, _ = bold.Fprintf(w, "run %s (%s), users: %d, max rps: %.2f\n", s.Name, s.RunID, s.Users, s.MaxRPS)
	_, _ = bold.Fprintf(w, "%-26s %8s %8s %10s %10s %10s %10s\n", "task", "reqs", "fails", "mean", "p50", "p95", "p99")
	row := func(c *color.Color, label string, m *Metrics) {
		_, _ = c.Fprintf(w, "%-26s %8d %8d %10s %10s %10s %10s\n",
			label,
			m.Requests,
			m.Failures,
			m.meanLogEntry().Round(time.Millisecond),
			m.Latencies.P50.Round(time.Millisecond),
			m.Latencies.P95.Round(time.Millisecond),
			m.Latencies.P99.Round(time.Millisecond),
		)
	}
	for _, label := range s.Labels() {
		m := s.Tasks[label]
		c := green
		if m.Failures > 0 {
			c = red
		}
		row(c, label, m)
	}
	row(bold, "total", s.Total)
	if len(s.Errors) > 0 {
		_, _ = bold.Fprintln(w, "errors:")
		for e, count := range s.Errors {
			_, _ = red.Fprintf(w, "%8d  %s\n", count, e)
		}
	}
	status := green.Sprint("PASSED")
	if s.Failed {
		status = red.Sprint("FAILED")
	}
	_, _ = fmt.Fprintf(w, "result: %s\n", status)
}
