package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/citedock/internal/core/domain"
)

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct {
	CaseID string `json:"case_id" jsonschema:"the case whose documents to list"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput is one document of a case.
type DocumentOutput struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Type             string `json:"type"`
	MainDocumentID   string `json:"main_document_id,omitempty"`
	ProcessingStatus string `json:"processing_status,omitempty"`
	ExtractionStatus string `json:"extraction_status"`
	CitationsCount   int    `json:"citations_count"`
	MediaURL         string `json:"media_url,omitempty"`
	CreatedAt        string `json:"created_at,omitempty"`
}

// CitationsByExhibitInput is the input schema for the citations_by_exhibit tool.
type CitationsByExhibitInput struct {
	CaseID     string `json:"case_id" jsonschema:"the case the document belongs to"`
	DocumentID string `json:"document_id" jsonschema:"the main document whose citations to group"`
}

// CitationsByExhibitOutput is the output schema for the citations_by_exhibit tool.
type CitationsByExhibitOutput struct {
	Exhibits []ExhibitOutput `json:"exhibits"`
	Total    int             `json:"total"`
}

// ExhibitOutput is one exhibit and the citations pointing at it.
type ExhibitOutput struct {
	ExhibitID string           `json:"exhibit_id"`
	Title     string           `json:"title,omitempty"`
	Citations []CitationOutput `json:"citations"`
}

// CitationOutput is one citation.
type CitationOutput struct {
	ID              string `json:"id"`
	SourcePage      *int   `json:"source_page,omitempty"`
	DestinationPage *int   `json:"destination_page,omitempty"`
	SourceText      string `json:"source_text,omitempty"`
	ReferencedText  string `json:"referenced_text,omitempty"`
	CreationSource  string `json:"creation_source,omitempty"`
}

// RequestExtractionInput is the input schema for the request_extraction tool.
type RequestExtractionInput struct {
	CaseID     string `json:"case_id" jsonschema:"the case to extract citations for"`
	DocumentID string `json:"document_id,omitempty" jsonschema:"a single document; omit to extract the whole case"`
}

// RequestExtractionOutput is the output schema for the request_extraction tool.
type RequestExtractionOutput struct {
	Target   string `json:"target"`
	Accepted bool   `json:"accepted"`
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the main documents and exhibits of a case with their extraction status",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "citations_by_exhibit",
		Description: "Group a document's citations by the exhibit they point to",
	}, s.handleCitationsByExhibit)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "request_extraction",
		Description: "Queue citation extraction for one document or a whole case",
	}, s.handleRequestExtraction)
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	var docs []domain.Document
	err := s.withCase(ctx, input.CaseID, func() error {
		docs = s.ports.Workspace.Documents()
		return nil
	})
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: documentOutputs(docs),
		Count:     len(docs),
	}
	return nil, output, nil
}

// handleCitationsByExhibit handles the citations_by_exhibit tool invocation.
func (s *Server) handleCitationsByExhibit(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CitationsByExhibitInput,
) (*mcp.CallToolResult, CitationsByExhibitOutput, error) {
	if input.DocumentID == "" {
		return nil, CitationsByExhibitOutput{}, errors.New("document_id is required")
	}

	var (
		graph  *domain.CitationGraph
		titles map[string]string
	)
	err := s.withCase(ctx, input.CaseID, func() error {
		var err error
		graph, err = s.ports.Workspace.CitationsByExhibit(ctx, input.DocumentID)
		titles = titleIndex(s.ports.Workspace.Documents())
		return err
	})
	if err != nil {
		return nil, CitationsByExhibitOutput{}, err
	}

	groups := graph.Groups()
	output := CitationsByExhibitOutput{
		Exhibits: make([]ExhibitOutput, 0, len(groups)),
		Total:    graph.Len(),
	}
	for _, g := range groups {
		ex := ExhibitOutput{
			ExhibitID: g.ExhibitID,
			Title:     titles[g.ExhibitID],
			Citations: make([]CitationOutput, 0, len(g.Citations)),
		}
		for i := range g.Citations {
			c := &g.Citations[i]
			ex.Citations = append(ex.Citations, CitationOutput{
				ID:              c.ID,
				SourcePage:      c.SourcePageNumber,
				DestinationPage: c.DestinationPageNumber,
				SourceText:      c.SourceText,
				ReferencedText:  c.ReferencedText,
				CreationSource:  string(c.CreationSource),
			})
		}
		output.Exhibits = append(output.Exhibits, ex)
	}

	return nil, output, nil
}

// handleRequestExtraction handles the request_extraction tool invocation.
// A request for a target already in progress is reported, not failed.
func (s *Server) handleRequestExtraction(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RequestExtractionInput,
) (*mcp.CallToolResult, RequestExtractionOutput, error) {
	target := domain.CaseTarget(input.CaseID)
	if input.DocumentID != "" {
		target = domain.DocumentTarget(input.DocumentID)
	}

	output := RequestExtractionOutput{Target: target.String()}
	err := s.withCase(ctx, input.CaseID, func() error {
		return s.ports.Workspace.RequestExtraction(ctx, target)
	})
	switch {
	case err == nil:
		output.Accepted = true
		output.Status = domain.ExtractionQueued.String()
	case errors.Is(err, domain.ErrAlreadyInProgress):
		output.Message = err.Error()
		output.Status = s.status(ctx, target)
	default:
		return nil, RequestExtractionOutput{}, err
	}

	return nil, output, nil
}

func (s *Server) status(ctx context.Context, target domain.ExtractionTarget) string {
	if s.ports.Extraction == nil {
		return ""
	}
	status, err := s.ports.Extraction.Status(ctx, target)
	if err != nil {
		return ""
	}
	return status.String()
}

func documentOutputs(docs []domain.Document) []DocumentOutput {
	out := make([]DocumentOutput, len(docs))
	for i := range docs {
		d := &docs[i]
		out[i] = DocumentOutput{
			ID:               d.ID,
			Title:            d.Title,
			Type:             string(d.Type),
			MainDocumentID:   d.MainDocumentID,
			ProcessingStatus: string(d.ProcessingStatus),
			ExtractionStatus: d.CitationsExtractionStatus.String(),
			CitationsCount:   d.CitationsCount,
			MediaURL:         d.MediaURL,
		}
		if !d.CreatedAt.IsZero() {
			out[i].CreatedAt = d.CreatedAt.Format(time.RFC3339)
		}
	}
	return out
}

func titleIndex(docs []domain.Document) map[string]string {
	titles := make(map[string]string, len(docs))
	for i := range docs {
		titles[docs[i].ID] = docs[i].Title
	}
	return titles
}
