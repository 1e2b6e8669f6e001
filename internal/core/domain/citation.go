package domain

import "time"

// CreationSource records how a citation came to exist.
type CreationSource string

// Creation sources.
const (
	CreationAuto   CreationSource = "AUTO"
	CreationManual CreationSource = "MANUAL"
)

// IsValid returns true if the creation source is recognised.
func (s CreationSource) IsValid() bool {
	return s == CreationAuto || s == CreationManual
}

// Rectangle locates a span on a page. Coordinates are in page units.
type Rectangle struct {
	X1 float64
	Y1 float64
	X2 float64
	Y2 float64
}

// Citation is a directional link from a span in a source document to a
// destination document and page.
type Citation struct {
	ID string

	SourceDocumentID string

	// SourcePageNumber is nil when the extraction could not localise the page.
	SourcePageNumber *int

	// SourceRect is nil when the extraction could not localise the span.
	SourceRect *Rectangle

	DestinationDocumentID string

	// DestinationPageNumber is nil when the destination page is unknown.
	DestinationPageNumber *int

	CreationSource CreationSource

	// SourceText is the cited excerpt.
	SourceText string

	// ReferencedText is the text the excerpt refers to.
	ReferencedText string

	CreatedAt time.Time
}

// Validate checks the required fields of a citation record.
func (c *Citation) Validate() error {
	if c.ID == "" {
		return invalid("id", "is required")
	}
	if c.SourceDocumentID == "" {
		return invalid("sourceDocumentId", "is required")
	}
	if c.DestinationDocumentID == "" {
		return invalid("destinationDocumentId", "is required")
	}
	if c.CreationSource != "" && !c.CreationSource.IsValid() {
		return invalid("creationSource", "must be AUTO or MANUAL, got "+quote(string(c.CreationSource)))
	}
	if c.SourcePageNumber != nil && *c.SourcePageNumber < 1 {
		return invalid("sourcePageNumber", "must be at least 1")
	}
	if c.DestinationPageNumber != nil && *c.DestinationPageNumber < 1 {
		return invalid("destinationPageNumber", "must be at least 1")
	}
	return nil
}
