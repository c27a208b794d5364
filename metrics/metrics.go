// Package metrics provides Prometheus metrics collection for the medassist API.
// Besides the HTTP request metrics it tracks the identification pipeline
// (attempts by outcome, OCR and matcher latency) and the speech pipeline
// (utterances by channel, cloud probe results).
//
// All metrics are automatically registered with the Prometheus default registry
// during package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen in last ~5 minutes)",
		},
	)

	IdentificationTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "identification_total",
			Help: "Identification attempts by outcome",
		},
		[]string{"outcome"},
	)

	OCRDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ocr_extraction_duration_seconds",
			Help:    "OCR text extraction latency",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	MatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_match_duration_seconds",
			Help:    "Normalization and catalog matching latency",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05},
		},
	)

	SpeechUtteranceTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speech_utterance_total",
			Help: "Spoken utterances by channel and result",
		},
		[]string{"channel", "result"},
	)

	CloudProbeTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speech_cloud_probe_total",
			Help: "Cloud endpoint reachability probes by verdict",
		},
		[]string{"reachable"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(IdentificationTotals)
	prometheus.MustRegister(OCRDuration)
	prometheus.MustRegister(MatchDuration)
	prometheus.MustRegister(SpeechUtteranceTotals)
	prometheus.MustRegister(CloudProbeTotals)
}
