// Package metrics records upload, extraction and API metrics in a
// Prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.MetricsRecorder = (*Recorder)(nil)

// Recorder implements driven.MetricsRecorder.
type Recorder struct {
	registry *prometheus.Registry

	uploadsTotal       *prometheus.CounterVec
	uploadBytesTotal   prometheus.Counter
	extractionRequests *prometheus.CounterVec
	apiDuration        *prometheus.HistogramVec
}

// NewRecorder creates a recorder with its own registry, so tests and
// multiple workspaces do not collide on the default one.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,

		uploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "citedock_uploads_total",
			Help: "Files that reached a terminal upload state, by outcome.",
		}, []string{"outcome"}),

		uploadBytesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "citedock_upload_bytes_total",
			Help: "Bytes of files uploaded successfully.",
		}),

		extractionRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "citedock_extraction_requests_total",
			Help: "Citation extraction requests, by target kind and result.",
		}, []string{"kind", "result"}),

		apiDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "citedock_api_request_duration_seconds",
			Help:    "Latency of backend API calls.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"operation"}),
	}
}

// UploadFinished records one file reaching a terminal state.
func (r *Recorder) UploadFinished(state domain.UploadState, bytes int64) {
	r.uploadsTotal.WithLabelValues(outcome(state)).Inc()
	if state == domain.UploadDone && bytes > 0 {
		r.uploadBytesTotal.Add(float64(bytes))
	}
}

// ExtractionRequested records an extraction request.
func (r *Recorder) ExtractionRequested(kind domain.TargetKind, result string) {
	r.extractionRequests.WithLabelValues(string(kind), result).Inc()
}

// APIRequest records the latency of one backend call.
func (r *Recorder) APIRequest(operation string, d time.Duration) {
	r.apiDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func outcome(state domain.UploadState) string {
	switch state {
	case domain.UploadDone:
		return "done"
	case domain.UploadCancelled:
		return "cancelled"
	case domain.UploadFailed:
		return "failed"
	default:
		return "unknown"
	}
}
