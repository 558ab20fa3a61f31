package store

import (
	"context"
	"database/sql"
)

// Store provides access to all storage repositories. A single DuckDB handle
// backs every repository; Migrate creates the repositories' tables if they
// don't already exist.
type Store struct {
	db        *sql.DB
	snapshots *SnapshotStore
}

// NewStore wraps db's every query with a debug-logging QueryInterceptor and
// initializes the repositories on top of it.
func NewStore(db *sql.DB) *Store {
	intercepted := newLoggingInterceptor(db)
	return &Store{
		db:        db,
		snapshots: NewSnapshotStore(intercepted),
	}
}

// Snapshots returns the job-snapshot repository.
func (s *Store) Snapshots() *SnapshotStore {
	return s.snapshots
}

// Migrate creates job_snapshots if it doesn't already exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schemaJobSnapshots)
	return err
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
