package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/citedock/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for citedock resources.
	uriScheme = "citedock://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "cases/{caseId}/documents",
		Name:        "case-documents",
		Description: "Main documents and exhibits of a case",
		MIMEType:    "application/json",
	}, s.handleCaseDocumentsResource)
}

// handleCaseDocumentsResource returns the documents of a case as JSON.
func (s *Server) handleCaseDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	caseID := extractCaseID(req.Params.URI)
	if caseID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	var docs []domain.Document
	err := s.withCase(ctx, caseID, func() error {
		docs = s.ports.Workspace.Documents()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	data, err := json.MarshalIndent(documentOutputs(docs), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractCaseID parses citedock://cases/{caseId}/documents.
func extractCaseID(uri string) string {
	rest, ok := strings.CutPrefix(uri, uriScheme+"cases/")
	if !ok {
		return ""
	}
	caseID, ok := strings.CutSuffix(rest, "/documents")
	if !ok || caseID == "" || strings.Contains(caseID, "/") {
		return ""
	}
	return caseID
}
