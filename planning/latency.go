package planning

import (
	"context"
	"sync"

	"github.com/montanaflynn/stats"

	"go.viam.com/planning/logging"
)

const latencyWindow = 200

// LatencyStats keeps a rolling window of cycle latencies.
type LatencyStats struct {
	mu      sync.Mutex
	samples []float64
	next    int
	cycles  int
	every   int
	logger  logging.Logger
}

// LatencySummary is the distribution of the latencies in the window, in milliseconds.
type LatencySummary struct {
	Count int
	P50   float64
	P95   float64
	Max   float64
}

// NewLatencyStats logs a summary every `every` recorded cycles. Zero disables the log.
func NewLatencyStats(every int, logger logging.Logger) *LatencyStats {
	return &LatencyStats{samples: make([]float64, 0, latencyWindow), every: every, logger: logger}
}

// Record adds the total latency of one cycle.
func (ls *LatencyStats) Record(ctx context.Context, ms float64) {
	ls.mu.Lock()
	if len(ls.samples) < latencyWindow {
		ls.samples = append(ls.samples, ms)
	} else {
		ls.samples[ls.next] = ms
	}
	ls.next = (ls.next + 1) % latencyWindow
	ls.cycles++
	report := ls.every > 0 && ls.cycles%ls.every == 0
	ls.mu.Unlock()

	if !report {
		return
	}
	summary, err := ls.Summary()
	if err != nil {
		ls.logger.CWarnw(ctx, "cannot summarize cycle latency", "error", err)
		return
	}
	ls.logger.CInfow(ctx, "cycle latency",
		"cycles", summary.Count, "p50_ms", summary.P50, "p95_ms", summary.P95, "max_ms", summary.Max)
}

// Summary returns the distribution of the window.
func (ls *LatencyStats) Summary() (LatencySummary, error) {
	ls.mu.Lock()
	window := append([]float64(nil), ls.samples...)
	ls.mu.Unlock()

	p50, err := stats.Percentile(window, 50)
	if err != nil {
		return LatencySummary{}, err
	}
	p95, err := stats.Percentile(window, 95)
	if err != nil {
		return LatencySummary{}, err
	}
	maxMs, err := stats.Max(window)
	if err != nil {
		return LatencySummary{}, err
	}
	return LatencySummary{Count: len(window), P50: p50, P95: p95, Max: maxMs}, nil
}
