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

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/quarry-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/quarry-cli/internal/core/domain"
	"github.com/custodia-labs/quarry-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CacheStore = (*Store)(nil)

// Store is a SQLite-backed cache store. A single database connection
// serves all operations; merging happens inside a transaction so an
// entry is never observable half-written.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.quarry/data/cache.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".quarry", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "cache.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
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

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
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
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Get retrieves the entry for a query key. A missing key returns (nil, nil).
func (s *Store) Get(ctx context.Context, queryKey string) (*domain.CacheEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT query_key, provider, retry_count, fetched_at
		FROM queries WHERE query_key = ?
	`, queryKey)

	var entry domain.CacheEntry
	var fetchedAt sql.NullTime
	if err := row.Scan(&entry.QueryKey, &entry.Provider, &entry.RetryCount, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get", fmt.Errorf("scanning query: %w", err))
	}
	if fetchedAt.Valid {
		entry.FetchedAt = fetchedAt.Time
	}

	docs, err := s.queryDocuments(ctx, queryKey)
	if err != nil {
		return nil, storageErr("get", err)
	}
	entry.Documents = docs

	return &entry, nil
}

// Put upserts an entry, merging documents by fingerprint. Documents the
// entry already holds keep their stored content and position; unknown
// fingerprints are appended in the order given.
func (s *Store) Put(ctx context.Context, entry *domain.CacheEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("put", fmt.Errorf("beginning transaction: %w", err))
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO queries (query_key, provider, retry_count, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(query_key) DO UPDATE SET
			provider = excluded.provider,
			retry_count = excluded.retry_count,
			fetched_at = excluded.fetched_at
	`, entry.QueryKey, entry.Provider, entry.RetryCount, entry.FetchedAt)
	if err != nil {
		return storageErr("put", fmt.Errorf("upserting query: %w", err))
	}

	known, nextPos, err := linkedFingerprints(ctx, tx, entry.QueryKey)
	if err != nil {
		return storageErr("put", err)
	}

	for _, doc := range entry.Documents {
		if _, ok := known[doc.Fingerprint]; ok {
			continue
		}
		known[doc.Fingerprint] = struct{}{}

		// First stored copy of a document wins; later sightings of the
		// same fingerprint never overwrite it.
		_, err = tx.ExecContext(ctx, `
			INSERT INTO documents
				(fingerprint, id, url, title, author, published_date, score, content, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(fingerprint) DO NOTHING
		`, doc.Fingerprint, doc.ID, doc.URL, doc.Title, doc.Author,
			doc.PublishedDate, doc.Score, doc.Text, doc.FetchedAt)
		if err != nil {
			return storageErr("put", fmt.Errorf("inserting document: %w", err))
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO query_documents (query_key, fingerprint, position)
			VALUES (?, ?, ?)
		`, entry.QueryKey, doc.Fingerprint, nextPos)
		if err != nil {
			return storageErr("put", fmt.Errorf("linking document: %w", err))
		}
		nextPos++
	}

	if err := tx.Commit(); err != nil {
		return storageErr("put", fmt.Errorf("committing transaction: %w", err))
	}
	return nil
}

// ListFingerprints returns cached fingerprints in document order.
func (s *Store) ListFingerprints(ctx context.Context, queryKey string) ([]domain.Fingerprint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fingerprint FROM query_documents
		WHERE query_key = ?
		ORDER BY position
	`, queryKey)
	if err != nil {
		return nil, storageErr("list_fingerprints", fmt.Errorf("querying fingerprints: %w", err))
	}
	defer rows.Close()

	fps := []domain.Fingerprint{}
	for rows.Next() {
		var fp domain.Fingerprint
		if err := rows.Scan(&fp); err != nil {
			return nil, storageErr("list_fingerprints", fmt.Errorf("scanning fingerprint: %w", err))
		}
		fps = append(fps, fp)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("list_fingerprints", fmt.Errorf("iterating fingerprints: %w", err))
	}

	return fps, nil
}

// ListEntries returns entries ordered by fetch time, newest first.
func (s *Store) ListEntries(ctx context.Context, limit int) ([]domain.CacheEntry, error) {
	query := `
		SELECT query_key, provider, retry_count, fetched_at
		FROM queries
		ORDER BY fetched_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list_entries", fmt.Errorf("querying queries: %w", err))
	}
	defer rows.Close()

	var entries []domain.CacheEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var entry domain.CacheEntry
		var fetchedAt sql.NullTime
		if err := rows.Scan(&entry.QueryKey, &entry.Provider, &entry.RetryCount, &fetchedAt); err != nil {
			return nil, storageErr("list_entries", fmt.Errorf("scanning query: %w", err))
		}
		if fetchedAt.Valid {
			entry.FetchedAt = fetchedAt.Time
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("list_entries", fmt.Errorf("iterating queries: %w", err))
	}

	for i := range entries {
		docs, err := s.queryDocuments(ctx, entries[i].QueryKey)
		if err != nil {
			return nil, storageErr("list_entries", err)
		}
		entries[i].Documents = docs
	}

	return entries, nil
}

// GetDocument retrieves a cached document by fingerprint.
func (s *Store) GetDocument(ctx context.Context, fp domain.Fingerprint) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT fingerprint, id, url, title, author, published_date, score, content, fetched_at
		FROM documents WHERE fingerprint = ?
	`, fp)

	doc, err := scanDocumentRow(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, storageErr("get_document", err)
	}
	return doc, nil
}

// queryDocuments loads a query's documents ordered by position.
func (s *Store) queryDocuments(ctx context.Context, queryKey string) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.fingerprint, d.id, d.url, d.title, d.author, d.published_date,
		       d.score, d.content, d.fetched_at
		FROM query_documents qd
		JOIN documents d ON d.fingerprint = qd.fingerprint
		WHERE qd.query_key = ?
		ORDER BY qd.position
	`, queryKey)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// linkedFingerprints returns the fingerprints already linked to a query
// and the next free position.
func linkedFingerprints(ctx context.Context, tx *sql.Tx, queryKey string) (map[domain.Fingerprint]struct{}, int, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT fingerprint, position FROM query_documents
		WHERE query_key = ?
	`, queryKey)
	if err != nil {
		return nil, 0, fmt.Errorf("querying linked fingerprints: %w", err)
	}
	defer rows.Close()

	known := make(map[domain.Fingerprint]struct{})
	nextPos := 0
	for rows.Next() {
		var fp domain.Fingerprint
		var pos int
		if err := rows.Scan(&fp, &pos); err != nil {
			return nil, 0, fmt.Errorf("scanning linked fingerprint: %w", err)
		}
		known[fp] = struct{}{}
		if pos >= nextPos {
			nextPos = pos + 1
		}
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating linked fingerprints: %w", err)
	}

	return known, nextPos, nil
}

// scanDocumentRow scans a document from *sql.Row.
func scanDocumentRow(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var fetchedAt sql.NullTime

	if err := row.Scan(&doc.Fingerprint, &doc.ID, &doc.URL, &doc.Title, &doc.Author,
		&doc.PublishedDate, &doc.Score, &doc.Text, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	if fetchedAt.Valid {
		doc.FetchedAt = fetchedAt.Time
	}
	return &doc, nil
}

// scanDocumentRows scans a document from *sql.Rows.
func scanDocumentRows(rows *sql.Rows) (*domain.Document, error) {
	var doc domain.Document
	var fetchedAt sql.NullTime

	if err := rows.Scan(&doc.Fingerprint, &doc.ID, &doc.URL, &doc.Title, &doc.Author,
		&doc.PublishedDate, &doc.Score, &doc.Text, &fetchedAt); err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	if fetchedAt.Valid {
		doc.FetchedAt = fetchedAt.Time
	}
	return &doc, nil
}

// storageErr wraps an error in the domain storage error type.
func storageErr(op string, err error) error {
	return &domain.StorageError{Op: op, Err: err}
}
