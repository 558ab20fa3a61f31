package store

const schemaJobSnapshots = `
	CREATE TABLE IF NOT EXISTS job_snapshots (
		id         VARCHAR PRIMARY KEY,
		kind       VARCHAR NOT NULL,
		label      VARCHAR,
		status     VARCHAR NOT NULL,
		attempts   INTEGER NOT NULL,
		args       BLOB,
		result     BLOB,
		error      VARCHAR,
		created_at TIMESTAMP,
		started_at TIMESTAMP,
		stopped_at TIMESTAMP
	)`

// Snapshot queries
const (
	queryGetSnapshot = `
		SELECT id, kind, label, status, attempts, args, result, error, created_at, started_at, stopped_at
		FROM job_snapshots WHERE id = ?`

	queryUpsertSnapshot = `
		INSERT INTO job_snapshots
			(id, kind, label, status, attempts, args, result, error, created_at, started_at, stopped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status     = EXCLUDED.status,
			attempts   = EXCLUDED.attempts,
			args       = EXCLUDED.args,
			result     = EXCLUDED.result,
			error      = EXCLUDED.error,
			started_at = EXCLUDED.started_at,
			stopped_at = EXCLUDED.stopped_at`

	queryDeleteSnapshot = `DELETE FROM job_snapshots WHERE id = ?`
)
