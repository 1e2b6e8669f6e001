// Package api implements the document, citation, extraction and media
// ports against the citedock HTTP API.
//
// Every response is decoded into explicit DTOs and validated before it
// becomes a domain value. Transport failures and non-2xx responses wrap
// domain.ErrNetwork; 404 responses wrap domain.ErrNotFound; malformed
// bodies wrap domain.ErrValidation.
package api
