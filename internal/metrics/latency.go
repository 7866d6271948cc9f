// Package metrics keeps in-process request statistics for the admin endpoint.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	minLatencyMicros = 1
	maxLatencyMicros = int64(60 * time.Second / time.Microsecond)
	sigFigs          = 3
)

// Latency records request durations in microseconds together with a count per
// status code.
type Latency struct {
	mu        sync.Mutex
	histogram *hdrhistogram.Histogram
	statuses  map[int]int64
	overflow  int64
	since     time.Time
}

type Snapshot struct {
	Requests int64            `json:"requests"`
	MeanMS   float64          `json:"mean_ms"`
	P50MS    float64          `json:"p50_ms"`
	P95MS    float64          `json:"p95_ms"`
	P99MS    float64          `json:"p99_ms"`
	MaxMS    float64          `json:"max_ms"`
	Overflow int64            `json:"overflow"`
	Statuses map[string]int64 `json:"statuses"`
	Since    time.Time        `json:"since"`
}

func NewLatency() *Latency {
	return &Latency{
		histogram: hdrhistogram.New(minLatencyMicros, maxLatencyMicros, sigFigs),
		statuses:  make(map[int]int64),
		since:     time.Now(),
	}
}

func (l *Latency) Record(d time.Duration, status int) {
	micros := d.Microseconds()
	if micros < minLatencyMicros {
		micros = minLatencyMicros
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.statuses[status]++
	if err := l.histogram.RecordValue(micros); err != nil {
		// beyond the trackable range
		l.overflow++
	}
}

func (l *Latency) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	statuses := make(map[string]int64, len(l.statuses))
	for code, n := range l.statuses {
		statuses[strconv.Itoa(code)] = n
	}

	return Snapshot{
		Requests: l.histogram.TotalCount() + l.overflow,
		MeanMS:   l.histogram.Mean() / 1000,
		P50MS:    microsToMillis(l.histogram.ValueAtQuantile(50)),
		P95MS:    microsToMillis(l.histogram.ValueAtQuantile(95)),
		P99MS:    microsToMillis(l.histogram.ValueAtQuantile(99)),
		MaxMS:    microsToMillis(l.histogram.Max()),
		Overflow: l.overflow,
		Statuses: statuses,
		Since:    l.since,
	}
}

func microsToMillis(v int64) float64 {
	return float64(v) / 1000
}
