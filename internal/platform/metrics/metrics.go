package metrics

import (
	"sync/atomic"
	"time"
)

// Collector keeps cheap in-process request counters; Snapshot feeds the
// /metrics endpoint. No external metrics backend is involved.
type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
	switch {
	case status >= 500:
		atomic.AddUint64(&c.errorRequests, 1)
	case status == 429:
		atomic.AddUint64(&c.rateLimited, 1)
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":    total,
		"errorsTotal":      atomic.LoadUint64(&c.errorRequests),
		"rateLimitedTotal": atomic.LoadUint64(&c.rateLimited),
		"avgDurationMs":    avg,
		"totalDurationMs":  totalMs,
	}
}
