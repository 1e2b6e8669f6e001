package domain

import (
	"bytes"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"
)

// FileRef is a local file selected for upload.
type FileRef struct {
	// Name is the base file name; it becomes the document title.
	Name string

	// Size is the byte length of the content.
	Size int64

	// ContentType is the MIME type sent with the transfer.
	ContentType string

	// Open returns a fresh reader over the content. Each call starts at
	// the beginning so a transfer can be retried.
	Open func() (io.ReadCloser, error)
}

// FileFromPath builds a FileRef for a file on disk.
func FileFromPath(path string) (FileRef, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileRef{}, err
	}
	if info.IsDir() {
		return FileRef{}, invalid("file", path+" is a directory")
	}
	return FileRef{
		Name:        filepath.Base(path),
		Size:        info.Size(),
		ContentType: contentTypeFor(path),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// FileFromBytes builds an in-memory FileRef.
func FileFromBytes(name string, data []byte) FileRef {
	return FileRef{
		Name:        name,
		Size:        int64(len(data)),
		ContentType: contentTypeFor(name),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// Validate checks that the reference can be uploaded.
func (f FileRef) Validate() error {
	if f.Name == "" {
		return invalid("file.name", "is required")
	}
	if f.Open == nil {
		return invalid("file", "has no content")
	}
	if f.Size < 0 {
		return invalid("file.size", "must not be negative")
	}
	return nil
}

func contentTypeFor(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// UploadState is the lifecycle state of one file in a batch.
type UploadState string

// Upload states.
const (
	UploadPending    UploadState = "PENDING"
	UploadInProgress UploadState = "IN_PROGRESS"
	UploadDone       UploadState = "DONE"
	UploadCancelled  UploadState = "CANCELLED"
	UploadFailed     UploadState = "FAILED"
)

// IsTerminal returns true for DONE, CANCELLED and FAILED.
func (s UploadState) IsTerminal() bool {
	return s == UploadDone || s == UploadCancelled || s == UploadFailed
}

// UploadTask is the transient view of one file in a batch.
type UploadTask struct {
	Index           int
	File            FileRef
	ProgressPercent int
	State           UploadState

	// Err is set for FAILED and CANCELLED tasks.
	Err error

	// Document is set once the task is DONE.
	Document *Document

	// FinishedAt is when the task reached a terminal state.
	FinishedAt time.Time
}

// EventKind classifies a batch event.
type EventKind int

// Event kinds.
const (
	EventProgress EventKind = iota
	EventCompleted
	EventFailed
	EventCancelled
)

// String returns the display name of the kind.
func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	case EventCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// BatchEvent reports progress or the outcome of one file in a batch.
// Each file produces ordered progress events followed by exactly one
// terminal event.
type BatchEvent struct {
	Index      int
	Kind       EventKind
	Percent    int
	BytesSent  int64
	BytesTotal int64

	// Document is set on EventCompleted.
	Document *Document

	// Err is set on EventFailed and EventCancelled.
	Err error
}

// IsTerminal returns true for completed, failed and cancelled events.
func (e BatchEvent) IsTerminal() bool {
	return e.Kind != EventProgress
}

// TransferProgress is one progress notification from a transfer.
type TransferProgress struct {
	BytesSent  int64
	BytesTotal int64
}

// Percent returns the transfer percentage scaled to 0-99. The last point is
// reserved for registration of the document record.
func (p TransferProgress) Percent() int {
	if p.BytesTotal <= 0 {
		return 0
	}
	pct := int(p.BytesSent * 99 / p.BytesTotal)
	if pct > 99 {
		pct = 99
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}

// UploadTarget is a pre-authorised write destination for one file. The
// file is always sent as the raw body of a PUT to UploadURL.
type UploadTarget struct {
	MediaID   string
	UploadURL string
	MediaURL  string

	// Headers are extra headers the destination requires.
	Headers map[string]string
}

// Validate checks the media id and destination.
func (t UploadTarget) Validate() error {
	if t.MediaID == "" {
		return invalid("mediaId", "is required")
	}
	if t.UploadURL == "" {
		return invalid("uploadUrl", "is required")
	}
	return nil
}

// BatchRequest is a set of files to upload into one case.
type BatchRequest struct {
	// BatchID identifies the batch in the upload journal. Reusing the ID
	// of an interrupted batch resumes it.
	BatchID string

	CaseID         string
	Type           DocumentType
	MainDocumentID string
	Files          []FileRef
}

// Validate checks the case, type and files of the request.
func (r *BatchRequest) Validate() error {
	if r.CaseID == "" {
		return invalid("caseId", "is required")
	}
	if !r.Type.IsValid() {
		return invalid("type", "must be MAIN or EXHIBIT, got "+quote(string(r.Type)))
	}
	if r.Type == DocumentTypeExhibit && r.MainDocumentID == "" {
		return invalid("mainDocumentId", "is required for an exhibit")
	}
	if len(r.Files) == 0 {
		return invalid("files", "must not be empty")
	}
	for _, f := range r.Files {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// JournalStage is how far a journalled file got.
type JournalStage string

// Journal stages, in order.
const (
	StageMediaIssued JournalStage = "media_issued"
	StageTransferred JournalStage = "transferred"
	StageRegistered  JournalStage = "registered"
)

// JournalEntry records the progress of one file of a batch so an interrupted
// batch can be resumed.
type JournalEntry struct {
	BatchID    string
	Index      int
	FileName   string
	Size       int64
	MediaID    string
	MediaURL   string
	DocumentID string
	Stage      JournalStage
	UpdatedAt  time.Time
}

// Matches returns true if the entry was written for the same file.
func (e *JournalEntry) Matches(f FileRef) bool {
	return e.FileName == f.Name && e.Size == f.Size
}
