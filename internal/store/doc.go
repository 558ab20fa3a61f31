// Package store implements jobengine's optional job-snapshot persistence
// layer, backed by DuckDB through database/sql.
//
// Each snapshot has room for a job's id, status, timestamps, and serialized
// args and result; the cmd/jobengine recorder fills in the result of a
// terminal job but not the args. It is never required for correctness — an Engine
// runs entirely in memory — but when internal/config.Persistence.CacheType
// is "disk", cmd/jobengine runs a recorder that periodically mirrors every
// job's state into this store so an operator can inspect what state each
// job was last known to be in after a crash.
//
// # Architecture
//
//	┌─────────────────────────────────────────┐
//	│              Store (facade)               │
//	├───────────────────────────────────────────┤
//	│               SnapshotStore                │
//	│                     ▼                      │
//	│               job_snapshots                │
//	└─────────────────────────────────────────┘
//
// Schema:
//
//	job_snapshots (
//	    id          VARCHAR PRIMARY KEY,
//	    kind        VARCHAR NOT NULL,
//	    label       VARCHAR,
//	    status      VARCHAR NOT NULL,
//	    attempts    INTEGER NOT NULL,
//	    args        BLOB,
//	    result      BLOB,
//	    error       VARCHAR,
//	    created_at  TIMESTAMP,
//	    started_at  TIMESTAMP,
//	    stopped_at  TIMESTAMP
//	)
//
// Every query goes through a QueryInterceptor, a debug-logging seam
// wrapped around the database/sql handle before repositories see it.
package store
