package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK            = "ok"
	outcomeParseError    = "parse_error"
	outcomeUnknownTarget = "unknown_target"
	outcomeFormatError   = "format_error"
	outcomePanic         = "panic"
	outcomeError         = "error"
)

type metrics struct {
	transforms  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	unsupported *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)

	return &metrics{
		transforms: f.NewCounterVec(prometheus.CounterOpts{
			Name: "typeshift_transform_total",
			Help: "Transforms by target and outcome.",
		}, []string{"target", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "typeshift_transform_duration_seconds",
			Help:    "Time spent in parse, generate and format.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"target"}),
		unsupported: f.NewCounterVec(prometheus.CounterOpts{
			Name: "typeshift_unsupported_nodes_total",
			Help: "Nodes rendered as the unsupported sentinel of a target.",
		}, []string{"target"}),
	}
}
