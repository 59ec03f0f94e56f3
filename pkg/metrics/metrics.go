package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	docScanner = "doc_scanner"

	uploadsTotal     = "uploads_total"
	extractionsTotal = "extractions_total"
	wsSubscribers    = "ws_subscribers"

	extractionOutcomeLabel = "outcome"
)

// Extraction outcomes.
const (
	ExtractionOutcomeCompleted = "completed"
	ExtractionOutcomeFailed    = "failed"
	ExtractionOutcomeTimeout   = "timeout"
)

var uploadsTotalMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: docScanner,
		Name:      uploadsTotal,
		Help:      "number of uploaded documents",
	},
)

var extractionsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: docScanner,
		Name:      extractionsTotal,
		Help:      "number of finished extraction tasks partitioned by outcome",
	},
	[]string{extractionOutcomeLabel},
)

var wsSubscribersMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: docScanner,
		Name:      wsSubscribers,
		Help:      "number of live websocket subscribers",
	},
)

func IncreaseUploadsTotalMetric() {
	uploadsTotalMetric.Inc()
}

func IncreaseExtractionsTotalMetric(outcome string) {
	extractionsTotalMetric.With(prometheus.Labels{extractionOutcomeLabel: outcome}).Inc()
}

func UpdateWsSubscribersMetric(count int) {
	wsSubscribersMetric.Set(float64(count))
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(uploadsTotalMetric)
	prometheus.MustRegister(extractionsTotalMetric)
	prometheus.MustRegister(wsSubscribersMetric)
}
