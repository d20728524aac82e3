package observability

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

var (
	registerOnce sync.Once

	storeOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rfml",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Store operations by result.",
		},
		[]string{"op", "result"},
	)
	storeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rfml",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Store operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)
	reclaimedBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rfml",
			Name:      "reclaimed_bytes_total",
			Help:      "Bytes released by space reclamation passes.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(storeOperations, storeDuration, reclaimedBytes)
	})
}

// RecordOperation counts one store operation. err decides the result label.
func RecordOperation(op string, duration time.Duration, err error) {
	RegisterMetrics()
	result := "ok"
	if err != nil {
		result = "error"
	}
	storeOperations.WithLabelValues(op, result).Inc()
	storeDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordReclaimed adds the bytes saved by a repack. Negative values, from
// repacks that normalize legacy files, are not counted.
func RecordReclaimed(n int64) {
	RegisterMetrics()
	if n > 0 {
		reclaimedBytes.Add(float64(n))
	}
}

// WriteText writes every registered metric family in the Prometheus text
// exposition format.
func WriteText(w io.Writer) error {
	RegisterMetrics()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}
