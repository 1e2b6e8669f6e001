package domain

import "time"

// DocumentType distinguishes main documents from their exhibits.
type DocumentType string

// Document types.
const (
	DocumentTypeMain    DocumentType = "MAIN"
	DocumentTypeExhibit DocumentType = "EXHIBIT"
)

// IsValid returns true if the document type is recognised.
func (t DocumentType) IsValid() bool {
	return t == DocumentTypeMain || t == DocumentTypeExhibit
}

// String returns the string representation.
func (t DocumentType) String() string {
	return string(t)
}

// ProcessingStatus is the backend processing state of a stored document.
type ProcessingStatus string

// Processing statuses.
const (
	ProcessingPending    ProcessingStatus = "PENDING"
	ProcessingProcessing ProcessingStatus = "PROCESSING"
	ProcessingReady      ProcessingStatus = "READY"
	ProcessingFailed     ProcessingStatus = "FAILED"
)

// IsValid returns true if the processing status is recognised.
func (s ProcessingStatus) IsValid() bool {
	switch s {
	case ProcessingPending, ProcessingProcessing, ProcessingReady, ProcessingFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s ProcessingStatus) String() string {
	return string(s)
}

// Document is a main or exhibit document of a case.
type Document struct {
	// ID is assigned by the backing store on creation.
	ID string

	// CaseID is the case the document belongs to. May be empty when the
	// backing service omits it; the registry fills it on load.
	CaseID string

	// Title is the display name, taken from the uploaded file name.
	Title string

	// MediaID references the stored binary.
	MediaID string

	// MediaURL is the fetch location of the stored binary.
	MediaURL string

	// Type is MAIN or EXHIBIT.
	Type DocumentType

	// MainDocumentID is the owning main document for an exhibit.
	// Empty for main documents.
	MainDocumentID string

	// ProcessingStatus is the backend processing state.
	ProcessingStatus ProcessingStatus

	// CitationsExtractionStatus is ExtractionNone until an extraction is requested.
	CitationsExtractionStatus ExtractionStatus

	// CitationsCount caches the number of citations sourced from this document.
	CitationsCount int

	// CreatedAt is when the record was created.
	CreatedAt time.Time
}

// IsMain returns true for main documents.
func (d *Document) IsMain() bool {
	return d.Type == DocumentTypeMain
}

// IsExhibit returns true for exhibit documents.
func (d *Document) IsExhibit() bool {
	return d.Type == DocumentTypeExhibit
}

// Validate checks the required fields of a document record.
func (d *Document) Validate() error {
	if d.ID == "" {
		return invalid("id", "is required")
	}
	if d.Title == "" {
		return invalid("title", "is required")
	}
	if !d.Type.IsValid() {
		return invalid("type", "must be MAIN or EXHIBIT, got "+quote(string(d.Type)))
	}
	if d.IsExhibit() && d.MainDocumentID == "" {
		return invalid("mainDocumentId", "is required for an exhibit")
	}
	if d.ProcessingStatus != "" && !d.ProcessingStatus.IsValid() {
		return invalid("processingStatus", "is unknown: "+quote(string(d.ProcessingStatus)))
	}
	if !d.CitationsExtractionStatus.IsValid() {
		return invalid("citationsExtractionStatus", "is unknown: "+quote(string(d.CitationsExtractionStatus)))
	}
	if d.CitationsCount < 0 {
		return invalid("citationsCount", "must not be negative")
	}
	return nil
}

// NewDocument is the request to register an uploaded binary as a document.
type NewDocument struct {
	CaseID         string
	MediaID        string
	Title          string
	Type           DocumentType
	MainDocumentID string
}

// Validate checks the fields required to create a document record.
func (n *NewDocument) Validate() error {
	if n.CaseID == "" {
		return invalid("caseId", "is required")
	}
	if n.MediaID == "" {
		return invalid("mediaId", "is required")
	}
	if n.Title == "" {
		return invalid("title", "is required")
	}
	if !n.Type.IsValid() {
		return invalid("type", "must be MAIN or EXHIBIT, got "+quote(string(n.Type)))
	}
	if n.Type == DocumentTypeExhibit && n.MainDocumentID == "" {
		return invalid("mainDocumentId", "is required for an exhibit")
	}
	return nil
}

// StatusUpdate is a partial update of a document's status fields.
// Nil fields are left untouched.
type StatusUpdate struct {
	ProcessingStatus *ProcessingStatus
	ExtractionStatus *ExtractionStatus
	CitationsCount   *int
}

// IsEmpty returns true if no field is supplied.
func (u StatusUpdate) IsEmpty() bool {
	return u.ProcessingStatus == nil && u.ExtractionStatus == nil && u.CitationsCount == nil
}

// Validate rejects unknown enum values and negative counts.
func (u StatusUpdate) Validate() error {
	if u.ProcessingStatus != nil && !u.ProcessingStatus.IsValid() {
		return invalid("processingStatus", "is unknown: "+quote(string(*u.ProcessingStatus)))
	}
	if u.ExtractionStatus != nil && !u.ExtractionStatus.IsValid() {
		return invalid("citationsExtractionStatus", "is unknown: "+quote(string(*u.ExtractionStatus)))
	}
	if u.CitationsCount != nil && *u.CitationsCount < 0 {
		return invalid("citationsCount", "must not be negative")
	}
	return nil
}

// Apply writes the supplied fields onto doc.
func (u StatusUpdate) Apply(doc *Document) {
	if u.ProcessingStatus != nil {
		doc.ProcessingStatus = *u.ProcessingStatus
	}
	if u.ExtractionStatus != nil {
		doc.CitationsExtractionStatus = *u.ExtractionStatus
	}
	if u.CitationsCount != nil {
		doc.CitationsCount = *u.CitationsCount
	}
}

// StatusUpdateFrom builds a full status update from a freshly fetched document.
func StatusUpdateFrom(doc *Document) StatusUpdate {
	processing := doc.ProcessingStatus
	extraction := doc.CitationsExtractionStatus
	count := doc.CitationsCount
	return StatusUpdate{
		ProcessingStatus: &processing,
		ExtractionStatus: &extraction,
		CitationsCount:   &count,
	}
}

func quote(s string) string {
	return "\"" + s + "\""
}
