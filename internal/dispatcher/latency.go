package dispatcher

import (
	"math"
	"sync"
	"time"
)

// latencyBounds are the upper bounds of the histogram buckets. The last
// bucket holds everything slower.
var latencyBounds = [...]time.Duration{
	10 * time.Microsecond,
	50 * time.Microsecond,
	100 * time.Microsecond,
	500 * time.Microsecond,
	time.Millisecond,
	5 * time.Millisecond,
	10 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
}

// LatencyTracker keeps running statistics of cycle durations. The mean
// and variance use Welford's online algorithm.
type LatencyTracker struct {
	mu sync.Mutex

	count    uint64
	min, max time.Duration
	mean, m2 float64

	buckets [len(latencyBounds) + 1]uint64
}

// LatencyStats is a snapshot of a LatencyTracker.
type LatencyStats struct {
	Count  uint64
	Min    time.Duration
	Max    time.Duration
	Avg    time.Duration
	StdDev time.Duration
	// P50, P95 and P99 are estimated from the histogram.
	P50, P95, P99 time.Duration
}

// Record adds one duration.
func (lt *LatencyTracker) Record(d time.Duration) {
	d = max(d, 0)
	lt.mu.Lock()
	defer lt.mu.Unlock()

	if lt.count == 0 || d < lt.min {
		lt.min = d
	}
	lt.max = max(lt.max, d)
	lt.count++
	x := float64(d)
	delta := x - lt.mean
	lt.mean += delta / float64(lt.count)
	lt.m2 += delta * (x - lt.mean)

	i := 0
	for i < len(latencyBounds) && d >= latencyBounds[i] {
		i++
	}
	lt.buckets[i]++
}

// Stats returns the statistics so far.
func (lt *LatencyTracker) Stats() LatencyStats {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	s := LatencyStats{Count: lt.count}
	if lt.count == 0 {
		return s
	}
	s.Min, s.Max = lt.min, lt.max
	s.Avg = time.Duration(lt.mean)
	if lt.count > 1 {
		s.StdDev = time.Duration(math.Sqrt(lt.m2 / float64(lt.count-1)))
	}
	s.P50 = lt.percentile(50)
	s.P95 = lt.percentile(95)
	s.P99 = lt.percentile(99)
	return s
}

// percentile returns the middle of the bucket holding the p-th
// percentile. lt.mu must be held.
func (lt *LatencyTracker) percentile(p uint64) time.Duration {
	target := max(p*lt.count/100, 1)
	var seen uint64
	for i, n := range lt.buckets {
		seen += n
		if seen < target {
			continue
		}
		switch i {
		case 0:
			return latencyBounds[0] / 2
		case len(latencyBounds):
			return latencyBounds[i-1]
		}
		return (latencyBounds[i-1] + latencyBounds[i]) / 2
	}
	return latencyBounds[len(latencyBounds)-1]
}

// Reset clears the statistics.
func (lt *LatencyTracker) Reset() {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	lt.count, lt.min, lt.max = 0, 0, 0
	lt.mean, lt.m2 = 0, 0
	lt.buckets = [len(latencyBounds) + 1]uint64{}
}
