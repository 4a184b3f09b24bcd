package reconcile

import (
	"errors"

	"github.com/pdcgo/collection_service/collection_core"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	runs     *prometheus.CounterVec
	uploaded prometheus.Counter
	duration prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "collection",
			Subsystem: "reconcile",
			Name:      "runs_total",
			Help:      "Reconcile runs by result.",
		}, []string{"result"}),
		uploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "collection",
			Subsystem: "reconcile",
			Name:      "uploaded_payments_total",
			Help:      "Payments committed to the remote ledger.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "collection",
			Subsystem: "reconcile",
			Name:      "duration_seconds",
			Help:      "Reconcile run duration.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(m.runs, m.uploaded, m.duration)
	}

	return m
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, collection_core.ErrStaleReadRisk):
		return "stale_read"
	case errors.Is(err, collection_core.ErrPartialBatchRisk):
		return "partial_batch"
	case errors.Is(err, collection_core.ErrTransformError):
		return "transform_error"
	default:
		return "store_unavailable"
	}
}

func (m *Metrics) Observe(outcome *Outcome, err error) {
	m.runs.WithLabelValues(resultLabel(err)).Inc()
	m.uploaded.Add(float64(outcome.Uploaded()))
	m.duration.Observe(outcome.Duration.Seconds())
}

func (m *Metrics) Runs() *prometheus.CounterVec {
	return m.runs
}

func (m *Metrics) Uploaded() prometheus.Counter {
	return m.uploaded
}
