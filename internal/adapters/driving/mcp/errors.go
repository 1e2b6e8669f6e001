// Package mcp provides an MCP (Model Context Protocol) server adapter for citedock.
// It lets AI assistants list a case's documents, browse citations by exhibit
// and queue citation extraction.
package mcp

import "errors"

// ErrMissingWorkspace is returned when the case workspace is not provided.
var ErrMissingWorkspace = errors.New("mcp: case workspace is required")

// errCaseRequired is returned by tools called without a case id.
var errCaseRequired = errors.New("case_id is required")
