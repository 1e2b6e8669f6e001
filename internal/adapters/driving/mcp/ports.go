package mcp

import (
	"net/http"

	"github.com/custodia-labs/citedock/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the MCP server.
type Ports struct {
	// Workspace serves documents, citations and extraction requests.
	Workspace driving.CaseWorkspace

	// Extraction reports extraction status. Optional.
	Extraction driving.ExtractionTracker

	// Metrics is mounted at /metrics in HTTP mode. Optional.
	Metrics http.Handler
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Workspace == nil {
		return ErrMissingWorkspace
	}
	return nil
}
