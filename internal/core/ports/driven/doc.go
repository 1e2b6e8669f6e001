// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - MediaIssuer: Hands out a pre-authorised upload destination per file
//   - UploadTransport: Streams file bytes to a destination with progress
//   - DocumentAPI: Document record service (create, get, list, delete)
//   - CitationAPI: Citation record service (list, delete)
//   - ExtractionAPI: Requests citation extraction for a document or case
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - UploadJournal: Without it, interrupted batches cannot be resumed.
//   - SnapshotStore: Without it, document lists are not available offline.
//   - FileInspector: Without it, files are not checked before upload.
//   - MetricsRecorder: Without it, nothing is counted.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
