package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/citedock/internal/core/domain"
)

func TestUploadFinished(t *testing.T) {
	r := NewRecorder()

	r.UploadFinished(domain.UploadDone, 1024)
	r.UploadFinished(domain.UploadDone, 1024)
	r.UploadFinished(domain.UploadFailed, 4096)
	r.UploadFinished(domain.UploadCancelled, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.uploadsTotal.WithLabelValues("done")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.uploadsTotal.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.uploadsTotal.WithLabelValues("cancelled")))
	assert.Equal(t, 2048.0, testutil.ToFloat64(r.uploadBytesTotal))
}

func TestExtractionRequested(t *testing.T) {
	r := NewRecorder()

	r.ExtractionRequested(domain.TargetDocument, "accepted")
	r.ExtractionRequested(domain.TargetCase, "rejected")
	r.ExtractionRequested(domain.TargetDocument, "accepted")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.extractionRequests.WithLabelValues("document", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.extractionRequests.WithLabelValues("case", "rejected")))
}

func TestAPIRequest(t *testing.T) {
	r := NewRecorder()
	r.APIRequest("list documents", 150*time.Millisecond)

	assert.Equal(t, 1, testutil.CollectAndCount(r.apiDuration, "citedock_api_request_duration_seconds"))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	r := NewRecorder()
	r.UploadFinished(domain.UploadDone, 10)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `citedock_uploads_total{outcome="done"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestRecorders_AreIndependent(t *testing.T) {
	a := NewRecorder()
	b := NewRecorder()
	a.UploadFinished(domain.UploadDone, 1)

	assert.Equal(t, 0.0, testutil.ToFloat64(b.uploadsTotal.WithLabelValues("done")))
	assert.NotSame(t, a.Registry(), b.Registry())
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "unknown", outcome(domain.UploadPending))
}
