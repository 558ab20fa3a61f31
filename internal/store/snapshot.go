package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	srvErrors "github.com/tupyy/jobengine/pkg/errors"
)

// JobSnapshot is the persisted shape of a job. Args and Result are
// pre-serialized by the caller; this store treats both as opaque blobs.
// cmd/jobengine's recorder JSON-encodes a terminal job's result and leaves
// Args empty.
type JobSnapshot struct {
	ID        string
	Kind      string
	Label     string
	Status    string
	Attempts  int
	Args      []byte
	Result    []byte
	Error     string
	CreatedAt time.Time
	StartedAt time.Time
	StoppedAt time.Time
}

// SnapshotStore persists JobSnapshot rows using an upsert keyed by job id.
type SnapshotStore struct {
	db QueryInterceptor
}

// NewSnapshotStore builds a repository over db.
func NewSnapshotStore(db QueryInterceptor) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Save upserts snap.
func (s *SnapshotStore) Save(ctx context.Context, snap JobSnapshot) error {
	_, err := s.db.ExecContext(ctx, queryUpsertSnapshot,
		snap.ID, snap.Kind, nullableString(snap.Label), snap.Status, snap.Attempts,
		snap.Args, snap.Result, nullableString(snap.Error),
		snap.CreatedAt, nullableTime(snap.StartedAt), nullableTime(snap.StoppedAt),
	)
	return err
}

// Get retrieves one snapshot by job id.
func (s *SnapshotStore) Get(ctx context.Context, id string) (*JobSnapshot, error) {
	row := s.db.QueryRowContext(ctx, queryGetSnapshot, id)
	snap, err := scanSnapshot(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewResourceNotFoundError("job_snapshot", id)
	}
	return snap, err
}

// ListOption narrows a List query: each option mutates the shared
// squirrel.SelectBuilder, so callers compose filters by passing only the
// ones they need.
type ListOption func(sq.SelectBuilder) sq.SelectBuilder

// ByStatuses restricts the listing to snapshots whose status is one of
// statuses. A nil/empty statuses leaves the query unfiltered.
func ByStatuses(statuses ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(statuses) == 0 {
			return b
		}
		return b.Where(sq.Eq{"status": statuses})
	}
}

// ByKinds restricts the listing to snapshots of one of kinds.
func ByKinds(kinds ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(kinds) == 0 {
			return b
		}
		return b.Where(sq.Eq{"kind": kinds})
	}
}

// CreatedAfter restricts the listing to snapshots created at or after ts.
func CreatedAfter(ts time.Time) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if ts.IsZero() {
			return b
		}
		return b.Where(sq.GtOrEq{"created_at": ts})
	}
}

// List returns stored snapshots matching every opts, oldest first.
func (s *SnapshotStore) List(ctx context.Context, opts ...ListOption) ([]JobSnapshot, error) {
	builder := sq.Select(
		"id", "kind", "label", "status", "attempts",
		"args", "result", "error", "created_at", "started_at", "stopped_at",
	).From("job_snapshots").OrderBy("created_at")

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []JobSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *snap)
	}
	return out, rows.Err()
}

// Delete removes a snapshot, e.g. once its job has been pruned from memory.
func (s *SnapshotStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, queryDeleteSnapshot, id)
	return err
}

func scanSnapshot(scan func(dest ...any) error) (*JobSnapshot, error) {
	var snap JobSnapshot
	var label, jobErr sql.NullString
	var startedAt, stoppedAt sql.NullTime

	err := scan(&snap.ID, &snap.Kind, &label, &snap.Status, &snap.Attempts,
		&snap.Args, &snap.Result, &jobErr, &snap.CreatedAt, &startedAt, &stoppedAt)
	if err != nil {
		return nil, err
	}
	snap.Label = label.String
	snap.Error = jobErr.String
	snap.StartedAt = startedAt.Time
	snap.StoppedAt = stoppedAt.Time
	return &snap, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// MarshalArgs is a convenience used by callers building a JobSnapshot from
// a live *engine.Job, since args/result are stored as opaque JSON blobs.
func MarshalArgs(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
