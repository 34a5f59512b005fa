package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	StageTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tflmgen_stage_total",
		Help: "Pipeline stage executions by outcome",
	}, []string{"stage", "result"})

	ArtifactsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tflmgen_artifacts_written_total",
		Help: "Files written by the generator",
	})

	ArrayElements = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tflmgen_array_elements",
		Help:    "Size of reformatted model arrays in bytes",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
	})

	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tflmgen_api_requests_total",
		Help: "Preview API requests by route and status code",
	}, []string{"route", "code"})
)

// ObserveStage counts one stage execution.
func ObserveStage(stage string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	StageTotal.WithLabelValues(stage, result).Inc()
}

// ObserveRequest counts one API request.
func ObserveRequest(route string, code int) {
	APIRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
