package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/citedock/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// the journal and snapshot interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.citedock/data/citedock.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".citedock", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "citedock.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// UploadJournal returns an UploadJournal interface backed by this store.
func (s *Store) UploadJournal() driven.UploadJournal {
	return &uploadJournal{store: s}
}

// SnapshotStore returns a SnapshotStore interface backed by this store.
func (s *Store) SnapshotStore() driven.SnapshotStore {
	return &snapshotStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Upload Journal ====================

// uploadJournal implements driven.UploadJournal.
type uploadJournal struct {
	store *Store
}

var _ driven.UploadJournal = (*uploadJournal)(nil)

// Record creates or replaces the entry for a file of a batch.
func (j *uploadJournal) Record(ctx context.Context, entry *domain.JournalEntry) error {
	if entry == nil || entry.BatchID == "" {
		return domain.NewValidationError("batchId", "is required")
	}

	updatedAt := entry.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := j.store.db.ExecContext(ctx, `
		INSERT INTO upload_journal (batch_id, file_index, file_name, file_size, media_id, media_url, document_id, stage, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(batch_id, file_index) DO UPDATE SET
			file_name = excluded.file_name,
			file_size = excluded.file_size,
			media_id = excluded.media_id,
			media_url = excluded.media_url,
			document_id = excluded.document_id,
			stage = excluded.stage,
			updated_at = excluded.updated_at
	`, entry.BatchID, entry.Index, entry.FileName, entry.Size, entry.MediaID,
		entry.MediaURL, entry.DocumentID, string(entry.Stage), updatedAt)

	if err != nil {
		return fmt.Errorf("saving journal entry: %w", err)
	}
	return nil
}

// Get retrieves the entry for a file of a batch.
func (j *uploadJournal) Get(ctx context.Context, batchID string, index int) (*domain.JournalEntry, error) {
	row := j.store.db.QueryRowContext(ctx, `
		SELECT batch_id, file_index, file_name, file_size, media_id, media_url, document_id, stage, updated_at
		FROM upload_journal WHERE batch_id = ? AND file_index = ?
	`, batchID, index)

	entry, err := scanJournalEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns every entry of a batch ordered by index.
func (j *uploadJournal) List(ctx context.Context, batchID string) ([]domain.JournalEntry, error) {
	rows, err := j.store.db.QueryContext(ctx, `
		SELECT batch_id, file_index, file_name, file_size, media_id, media_url, document_id, stage, updated_at
		FROM upload_journal WHERE batch_id = ?
		ORDER BY file_index
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		entry, err := scanJournalEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal: %w", err)
	}

	return entries, nil
}

// Delete removes every entry of a batch.
func (j *uploadJournal) Delete(ctx context.Context, batchID string) error {
	_, err := j.store.db.ExecContext(ctx, "DELETE FROM upload_journal WHERE batch_id = ?", batchID)
	if err != nil {
		return fmt.Errorf("deleting journal: %w", err)
	}
	return nil
}

// ==================== Snapshot Store ====================

// snapshotStore implements driven.SnapshotStore.
type snapshotStore struct {
	store *Store
}

var _ driven.SnapshotStore = (*snapshotStore)(nil)

// SaveDocuments replaces the stored document list of a case.
func (s *snapshotStore) SaveDocuments(ctx context.Context, caseID string, docs []domain.Document) error {
	if caseID == "" {
		return domain.NewValidationError("caseId", "is required")
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM case_documents WHERE case_id = ?", caseID); err != nil {
		return fmt.Errorf("clearing snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO case_documents (
			case_id, position, id, title, media_id, media_url, type, main_document_id,
			processing_status, citations_extraction_status, citations_count, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing snapshot insert: %w", err)
	}
	defer stmt.Close()

	for i := range docs {
		d := &docs[i]
		if _, err := stmt.ExecContext(ctx, caseID, i, d.ID, d.Title, d.MediaID, d.MediaURL,
			string(d.Type), nullString(d.MainDocumentID), string(d.ProcessingStatus),
			string(d.CitationsExtractionStatus), d.CitationsCount, nullTime(d.CreatedAt)); err != nil {
			return fmt.Errorf("saving snapshot document %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// LoadDocuments returns the stored document list of a case.
func (s *snapshotStore) LoadDocuments(ctx context.Context, caseID string) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT case_id, id, title, media_id, media_url, type, main_document_id,
			processing_status, citations_extraction_status, citations_count, created_at
		FROM case_documents WHERE case_id = ?
		ORDER BY position
	`, caseID)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot: %w", err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		var d domain.Document
		var docType, processing, extraction string
		var mainDocumentID sql.NullString
		var createdAt sql.NullTime
		if err := rows.Scan(&d.CaseID, &d.ID, &d.Title, &d.MediaID, &d.MediaURL, &docType,
			&mainDocumentID, &processing, &extraction, &d.CitationsCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot document: %w", err)
		}
		d.Type = domain.DocumentType(docType)
		d.MainDocumentID = mainDocumentID.String
		d.ProcessingStatus = domain.ProcessingStatus(processing)
		d.CitationsExtractionStatus = domain.ExtractionStatus(extraction)
		if createdAt.Valid {
			d.CreatedAt = createdAt.Time
		}
		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshot: %w", err)
	}

	return docs, nil
}

// ==================== Helper Functions ====================

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJournalEntry(row rowScanner) (*domain.JournalEntry, error) {
	var entry domain.JournalEntry
	var stage string
	var updatedAt sql.NullTime
	if err := row.Scan(&entry.BatchID, &entry.Index, &entry.FileName, &entry.Size,
		&entry.MediaID, &entry.MediaURL, &entry.DocumentID, &stage, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning journal entry: %w", err)
	}
	entry.Stage = domain.JournalStage(stage)
	if updatedAt.Valid {
		entry.UpdatedAt = updatedAt.Time
	}
	return &entry, nil
}

// nullString converts empty strings to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullTime converts zero times to NULL.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
