package bench

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Metrics summarizes a set of duration samples.
type Metrics struct {
	Min    time.Duration
	Max    time.Duration
	Avg    time.Duration
	Median time.Duration
	P90    time.Duration
	P99    time.Duration
}

// newMetrics aggregates the given samples. Zero samples yield zero metrics.
func newMetrics(samples []time.Duration) Metrics {
	if len(samples) == 0 {
		return Metrics{}
	}

	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, d := range sorted {
		total += d
	}

	var median time.Duration
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[mid]
	}

	return Metrics{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Avg:    total / time.Duration(len(sorted)),
		Median: median,
		P90:    percentile(sorted, 90),
		P99:    percentile(sorted, 99),
	}
}

// percentile returns the Pxx value of a sorted sample set, using the
// nearest-rank method rounded up so that small sets report their maximum
// for high percentiles.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 || p < 0 || p > 100 {
		return 0
	}
	index := int(math.Ceil(float64(len(sorted)-1) * (p / 100.0)))
	return sorted[index]
}

// FormatDuration renders a duration with a unit suited to its magnitude.
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}

	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%.0fns", float64(d.Nanoseconds()))
	case d < time.Millisecond:
		return fmt.Sprintf("%.2fμs", float64(d.Nanoseconds())/1000)
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1000000)
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}
