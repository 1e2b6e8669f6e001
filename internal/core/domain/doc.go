// Package domain defines the core business entities for citedock.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A main or exhibit document belonging to a case
//   - Citation: A directional link from a source span to a destination document
//   - CitationGraph: Citations grouped by their destination exhibit
//   - UploadTask / BatchEvent: Transient state of an upload batch
//   - ExtractionStatus / ExtractionTarget: The citation extraction lifecycle
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
