package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/citedock/internal/core/domain"
)

// documentDTO is the wire shape of a document record.
type documentDTO struct {
	ID                        string  `json:"id"`
	CaseID                    string  `json:"caseId"`
	Title                     string  `json:"title"`
	MediaID                   string  `json:"mediaId"`
	MediaURL                  string  `json:"mediaUrl"`
	Type                      string  `json:"type"`
	MainDocumentID            *string `json:"mainDocumentId"`
	ProcessingStatus          string  `json:"processingStatus"`
	CitationsExtractionStatus *string `json:"citationsExtractionStatus"`
	CitationsCount            int     `json:"citationsCount"`
	CreatedAt                 string  `json:"createdAt"`
}

func (d *documentDTO) toDomain() (*domain.Document, error) {
	doc := &domain.Document{
		ID:               d.ID,
		CaseID:           d.CaseID,
		Title:            d.Title,
		MediaID:          d.MediaID,
		MediaURL:         d.MediaURL,
		Type:             domain.DocumentType(strings.ToUpper(d.Type)),
		ProcessingStatus: domain.ProcessingStatus(strings.ToUpper(d.ProcessingStatus)),
		CitationsCount:   d.CitationsCount,
	}
	if d.MainDocumentID != nil {
		doc.MainDocumentID = *d.MainDocumentID
	}

	// Records created before exhibits existed carry no type.
	if doc.Type == "" {
		if doc.MainDocumentID == "" {
			doc.Type = domain.DocumentTypeMain
		} else {
			doc.Type = domain.DocumentTypeExhibit
		}
	}

	if d.CitationsExtractionStatus != nil {
		status, err := domain.ParseExtractionStatus(strings.ToUpper(*d.CitationsExtractionStatus))
		if err != nil {
			return nil, err
		}
		doc.CitationsExtractionStatus = status
	}

	createdAt, err := parseTime("createdAt", d.CreatedAt)
	if err != nil {
		return nil, err
	}
	doc.CreatedAt = createdAt

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// createDocumentDTO is the request body for document creation.
type createDocumentDTO struct {
	Title          string `json:"title"`
	MediaID        string `json:"mediaId"`
	Type           string `json:"type"`
	MainDocumentID string `json:"mainDocumentId,omitempty"`
}

// caseDTO is the wire shape of a case record.
type caseDTO struct {
	ID                     string `json:"id"`
	Title                  string `json:"title"`
	Description            string `json:"description"`
	UploadedDocumentsCount int    `json:"uploadedDocumentsCount"`
	CitationsCount         int    `json:"citationsCount"`
	CreatedAt              string `json:"createdAt"`
}

func (d *caseDTO) toDomain() (*domain.Case, error) {
	createdAt, err := parseTime("createdAt", d.CreatedAt)
	if err != nil {
		return nil, err
	}
	cs := &domain.Case{
		ID:             d.ID,
		Title:          d.Title,
		Description:    d.Description,
		DocumentsCount: d.UploadedDocumentsCount,
		CitationsCount: d.CitationsCount,
		CreatedAt:      createdAt,
	}
	if err := cs.Validate(); err != nil {
		return nil, err
	}
	return cs, nil
}

// caseInputDTO is the request body for case creation and updates. Nil
// fields are left out so an update touches only what was set.
type caseInputDTO struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// citationDTO is the wire shape of a citation record.
type citationDTO struct {
	ID                    string       `json:"id"`
	SourceDocumentID      string       `json:"sourceDocumentId"`
	SourcePageNumber      *int         `json:"sourcePageNumber"`
	SourceRectangleX1     *float64     `json:"sourceRectangleX1"`
	SourceRectangleY1     *float64     `json:"sourceRectangleY1"`
	SourceRectangleX2     *float64     `json:"sourceRectangleX2"`
	SourceRectangleY2     *float64     `json:"sourceRectangleY2"`
	DestinationDocumentID string       `json:"destinationDocumentId"`
	DestinationPageNumber *int         `json:"destinationPageNumber"`
	CreatedAt             string       `json:"createdAt"`
	CreationSource        string       `json:"creationSource"`
	SourceText            flexibleText `json:"sourceText"`
	ReferencedText        flexibleText `json:"referencedText"`
}

func (c *citationDTO) toDomain() (*domain.Citation, error) {
	citation := &domain.Citation{
		ID:                    c.ID,
		SourceDocumentID:      c.SourceDocumentID,
		SourcePageNumber:      c.SourcePageNumber,
		DestinationDocumentID: c.DestinationDocumentID,
		DestinationPageNumber: c.DestinationPageNumber,
		CreationSource:        domain.CreationSource(strings.ToUpper(c.CreationSource)),
		SourceText:            string(c.SourceText),
		ReferencedText:        string(c.ReferencedText),
	}

	rect := []*float64{c.SourceRectangleX1, c.SourceRectangleY1, c.SourceRectangleX2, c.SourceRectangleY2}
	present := 0
	for _, v := range rect {
		if v != nil {
			present++
		}
	}
	switch present {
	case 0:
	case len(rect):
		citation.SourceRect = &domain.Rectangle{
			X1: *c.SourceRectangleX1,
			Y1: *c.SourceRectangleY1,
			X2: *c.SourceRectangleX2,
			Y2: *c.SourceRectangleY2,
		}
	default:
		return nil, domain.NewValidationError("sourceRectangle", "is partially set")
	}

	createdAt, err := parseTime("createdAt", c.CreatedAt)
	if err != nil {
		return nil, err
	}
	citation.CreatedAt = createdAt

	if err := citation.Validate(); err != nil {
		return nil, err
	}
	return citation, nil
}

// mediaDTO is the response to a presigned upload request.
type mediaDTO struct {
	ID           string `json:"id"`
	MediaURL     string `json:"mediaUrl"`
	UploadMethod string `json:"uploadMethod"`
	UploadURL    string `json:"uploadUrl"`

	// Fields carries form fields of POST policies. Only PUT targets are
	// accepted, so it is decoded to tolerate its presence and ignored.
	Fields json.RawMessage `json:"fields"`
}

func (m *mediaDTO) toDomain() (*domain.UploadTarget, error) {
	if method := strings.ToUpper(m.UploadMethod); method != "" && method != http.MethodPut {
		return nil, domain.NewValidationError("uploadMethod", "only PUT uploads are supported, got "+strconv.Quote(m.UploadMethod))
	}
	target := &domain.UploadTarget{
		MediaID:   m.ID,
		UploadURL: m.UploadURL,
		MediaURL:  m.MediaURL,
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}
	return target, nil
}

// listEnvelope decodes either a bare JSON array or an {"items": [...]} page.
type listEnvelope[T any] struct {
	Items []T
}

func (l *listEnvelope[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &l.Items)
	}
	var page struct {
		Items []T `json:"items"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return err
	}
	l.Items = page.Items
	return nil
}

// flexibleText accepts a JSON string, number or null.
type flexibleText string

func (t *flexibleText) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*t = ""
		return nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = flexibleText(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return domain.NewValidationError("text", "must be a string or number")
		}
		*t = flexibleText(n.String())
		return nil
	}
}

func parseTime(field, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, "is not an RFC 3339 timestamp: "+strconv.Quote(v))
	}
	return t, nil
}
