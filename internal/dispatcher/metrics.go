package dispatcher

import (
	"sort"
	"sync"
	"time"
)

// Metrics collects dispatch statistics per command kind.
type Metrics struct {
	mu sync.RWMutex

	kinds map[Kind]*KindMetrics

	totalCycles   uint64
	totalFailures uint64
	totalPanics   uint64
	totalDuration time.Duration

	latency LatencyTracker
	slow    time.Duration
	onSlow  func(r *Result)
}

// KindMetrics holds the statistics of one command kind.
type KindMetrics struct {
	Kind          Kind
	DispatchCount uint64
	FailureCount  uint64
	TotalDuration time.Duration
	MaxDuration   time.Duration
	LastError     error
	LastDispatch  time.Time
}

// SetSlowThreshold makes Record call fn for every cycle that takes at
// least d. A zero d turns the callback off.
func (m *Metrics) SetSlowThreshold(d time.Duration, fn func(r *Result)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slow = d
	m.onSlow = fn
}

// Latency returns the distribution of cycle durations.
func (m *Metrics) Latency() LatencyStats {
	return m.latency.Stats()
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{kinds: make(map[Kind]*KindMetrics)}
}

// Record adds one finished cycle.
func (m *Metrics) Record(r *Result) {
	m.latency.Record(r.Duration)
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.onSlow != nil && m.slow > 0 && r.Duration >= m.slow {
		m.onSlow(r)
	}
	m.totalCycles++
	m.totalDuration += r.Duration
	if r.Err != nil {
		m.totalFailures++
	}
	if !r.Found {
		return
	}

	km := m.kinds[r.Kind]
	if km == nil {
		km = &KindMetrics{Kind: r.Kind}
		m.kinds[r.Kind] = km
	}
	km.DispatchCount++
	km.TotalDuration += r.Duration
	km.LastDispatch = time.Now()
	if r.Duration > km.MaxDuration {
		km.MaxDuration = r.Duration
	}
	if r.Err != nil {
		km.FailureCount++
		km.LastError = r.Err
	}
}

// RecordPanic counts a recovered panic.
func (m *Metrics) RecordPanic() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalPanics++
}

// TotalCycles returns the number of dispatch cycles.
func (m *Metrics) TotalCycles() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalCycles
}

// TotalFailures returns the number of cycles that ended in an error.
func (m *Metrics) TotalFailures() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalFailures
}

// TotalPanics returns the number of recovered panics.
func (m *Metrics) TotalPanics() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalPanics
}

// AverageDuration returns the average cycle duration.
func (m *Metrics) AverageDuration() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.totalCycles == 0 {
		return 0
	}
	return m.totalDuration / time.Duration(m.totalCycles)
}

// KindStats returns a copy of the statistics for k, nil when it never ran.
func (m *Metrics) KindStats(k Kind) *KindMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	km := m.kinds[k]
	if km == nil {
		return nil
	}
	c := *km
	return &c
}

// TopKinds returns the n most dispatched command kinds.
func (m *Metrics) TopKinds(n int) []*KindMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*KindMetrics, 0, len(m.kinds))
	for _, km := range m.kinds {
		c := *km
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DispatchCount != out[j].DispatchCount {
			return out[i].DispatchCount > out[j].DispatchCount
		}
		return out[i].Kind < out[j].Kind
	})
	return out[:min(n, len(out))]
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kinds = make(map[Kind]*KindMetrics)
	m.totalCycles = 0
	m.totalFailures = 0
	m.totalPanics = 0
	m.totalDuration = 0
	m.latency.Reset()
}
