// Package vfprom exports vectorfile window and rewrite events as
// Prometheus metrics.
//
//	reg := prometheus.NewRegistry()
//	v, err := vectorfile.Open(path, codec, vectorfile.Options{
//	    Metrics: vfprom.New(reg, "ids"),
//	})
package vfprom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/calvinalkan/vectorfile/pkg/vectorfile"
)

// Collector implements [vectorfile.MetricsCollector] on top of Prometheus
// counters and histograms.
type Collector struct {
	accesses      *prometheus.CounterVec
	loads         prometheus.Counter
	loadedElems   prometheus.Histogram
	rewrites      *prometheus.CounterVec
	shiftBytes    prometheus.Histogram
	rewriteTiming *prometheus.HistogramVec
}

// New registers the vectorfile metrics on reg. Every metric carries a
// constant "vector" label set to name, so several vectors can share one
// registry. Registering the same name twice panics.
func New(reg prometheus.Registerer, name string) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(prometheus.WrapRegistererWith(prometheus.Labels{"vector": name}, reg))

	return &Collector{
		accesses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vectorfile_accesses_total",
			Help: "Indexed element accesses, by whether the window served them.",
		}, []string{"result"}),
		loads: factory.NewCounter(prometheus.CounterOpts{
			Name: "vectorfile_window_loads_total",
			Help: "Window (re)loads.",
		}),
		loadedElems: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vectorfile_window_elements",
			Help:    "Elements decoded per window load.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8), // 1 to 16k
		}),
		rewrites: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vectorfile_rewrites_total",
			Help: "Window write-backs, by kind and status.",
		}, []string{"kind", "status"}),
		shiftBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vectorfile_rewrite_shift_bytes",
			Help:    "Bytes the file tail moved by per extending or constricting write-back.",
			Buckets: prometheus.ExponentialBuckets(1, 8, 8), // 1B to 2MB
		}),
		rewriteTiming: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vectorfile_rewrite_duration_seconds",
			Help:    "Window write-back duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
	}
}

// RecordAccess implements [vectorfile.MetricsCollector].
func (c *Collector) RecordAccess(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}

	c.accesses.WithLabelValues(result).Inc()
}

// RecordWindowLoad implements [vectorfile.MetricsCollector].
func (c *Collector) RecordWindowLoad(elems int, _ int64) {
	c.loads.Inc()
	c.loadedElems.Observe(float64(elems))
}

// RecordRewrite implements [vectorfile.MetricsCollector].
func (c *Collector) RecordRewrite(kind vectorfile.RewriteKind, shift int64, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	c.rewrites.WithLabelValues(kind.String(), status).Inc()
	c.rewriteTiming.WithLabelValues(kind.String()).Observe(duration.Seconds())

	if shift > 0 {
		c.shiftBytes.Observe(float64(shift))
	}
}

var _ vectorfile.MetricsCollector = (*Collector)(nil)
