package driven

import (
	"time"

	"github.com/custodia-labs/citedock/internal/core/domain"
)

// MetricsRecorder counts workflow outcomes. Implementations must be safe
// for concurrent use.
type MetricsRecorder interface {
	// UploadFinished records the terminal state of one file.
	UploadFinished(state domain.UploadState, bytes int64)

	// ExtractionRequested records an extraction request and its result
	// ("accepted", "rejected" or "failed").
	ExtractionRequested(kind domain.TargetKind, result string)

	// APIRequest records the latency of one backend call.
	APIRequest(operation string, d time.Duration)
}
