package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMain() Document {
	return Document{
		ID:               "doc-1",
		CaseID:           "case-1",
		Title:            "complaint.pdf",
		MediaID:          "media-1",
		Type:             DocumentTypeMain,
		ProcessingStatus: ProcessingReady,
	}
}

func TestDocumentType_IsValid(t *testing.T) {
	assert.True(t, DocumentTypeMain.IsValid())
	assert.True(t, DocumentTypeExhibit.IsValid())
	assert.False(t, DocumentType("").IsValid())
	assert.False(t, DocumentType("main").IsValid())
}

func TestDocument_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *Document)
		field   string
		wantErr bool
	}{
		{name: "valid main", mutate: func(*Document) {}},
		{
			name: "valid exhibit",
			mutate: func(d *Document) {
				d.Type = DocumentTypeExhibit
				d.MainDocumentID = "doc-0"
			},
		},
		{name: "missing id", mutate: func(d *Document) { d.ID = "" }, field: "id", wantErr: true},
		{name: "empty title", mutate: func(d *Document) { d.Title = "" }, field: "title", wantErr: true},
		{name: "unknown type", mutate: func(d *Document) { d.Type = "APPENDIX" }, field: "type", wantErr: true},
		{
			name:    "exhibit without main",
			mutate:  func(d *Document) { d.Type = DocumentTypeExhibit },
			field:   "mainDocumentId",
			wantErr: true,
		},
		{
			name:    "unknown extraction status",
			mutate:  func(d *Document) { d.CitationsExtractionStatus = "PAUSED" },
			field:   "citationsExtractionStatus",
			wantErr: true,
		},
		{
			name:    "negative count",
			mutate:  func(d *Document) { d.CitationsCount = -1 },
			field:   "citationsCount",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validMain()
			tt.mutate(&doc)
			err := doc.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestNewDocument_Validate(t *testing.T) {
	n := NewDocument{CaseID: "c", MediaID: "m", Title: "t", Type: DocumentTypeMain}
	assert.NoError(t, n.Validate())

	n.Type = DocumentTypeExhibit
	assert.ErrorIs(t, n.Validate(), ErrValidation)

	n.MainDocumentID = "main"
	assert.NoError(t, n.Validate())

	n.Title = ""
	assert.ErrorIs(t, n.Validate(), ErrValidation)
}

func TestStatusUpdate_Apply(t *testing.T) {
	doc := validMain()
	doc.CitationsCount = 3

	running := ExtractionRunning
	StatusUpdate{ExtractionStatus: &running}.Apply(&doc)

	assert.Equal(t, ExtractionRunning, doc.CitationsExtractionStatus)
	assert.Equal(t, ProcessingReady, doc.ProcessingStatus)
	assert.Equal(t, 3, doc.CitationsCount)
}

func TestStatusUpdate_Validate(t *testing.T) {
	bad := ProcessingStatus("DONE")
	assert.ErrorIs(t, StatusUpdate{ProcessingStatus: &bad}.Validate(), ErrValidation)

	neg := -2
	assert.ErrorIs(t, StatusUpdate{CitationsCount: &neg}.Validate(), ErrValidation)

	assert.True(t, StatusUpdate{}.IsEmpty())
	assert.NoError(t, StatusUpdate{}.Validate())
}

func TestStatusUpdateFrom(t *testing.T) {
	src := validMain()
	src.CitationsExtractionStatus = ExtractionDone
	src.CitationsCount = 7

	dst := validMain()
	StatusUpdateFrom(&src).Apply(&dst)

	assert.Equal(t, ExtractionDone, dst.CitationsExtractionStatus)
	assert.Equal(t, 7, dst.CitationsCount)
}
