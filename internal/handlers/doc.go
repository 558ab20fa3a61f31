// Package handlers implements the HTTP API layer over a running Engine.
//
// This package contains HTTP handlers that expose job submission and
// introspection via a small RESTful API. Handlers delegate to pkg/engine
// and focus on request validation, response formatting, and HTTP
// semantics.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                     HTTP Request (Gin)                          │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Handler (this package)                     │
//	│  - Request validation                                           │
//	│  - Parameter parsing                                            │
//	│  - Error mapping to HTTP status codes                           │
//	│  - Job-to-response conversion                                   │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                         pkg/engine.Engine                        │
//	└─────────────────────────────────────────────────────────────────┘
//
// # API Endpoints
//
//	┌────────┬───────────────────────┬───────────────────────────────────┐
//	│ Method │ Endpoint              │ Description                       │
//	├────────┼───────────────────────┼───────────────────────────────────┤
//	│ GET    │ /jobs                 │ List jobs, filterable by status/kind│
//	│ GET    │ /jobs/{id}            │ Get one job's detail               │
//	│ POST   │ /jobs                 │ Submit a job via a named launcher  │
//	│ POST   │ /jobs/{id}/cancel     │ Cancel a job                        │
//	│ POST   │ /jobs/{id}/rerun      │ Rerun a terminal job                │
//	└────────┴───────────────────────┴───────────────────────────────────┘
//
// A job's Callable is a Go closure and can't cross the wire; POST /jobs
// instead names a Launcher pre-registered by cmd/jobengine (see
// LauncherRegistry) and supplies its arguments as a JSON array.
//
// # Error Handling
//
// Handlers use a consistent error response format: { "error": "message" }.
//
//	┌───────────────────────┬────────┬──────────────────────────────┐
//	│ Error Type            │ Status │ When                         │
//	├───────────────────────┼────────┼──────────────────────────────┤
//	│ Validation error      │ 400    │ Invalid request params       │
//	│ ResourceNotFoundError │ 404    │ Job or launcher doesn't exist│
//	│ EngineStateError      │ 409    │ Rerun on a non-terminal job  │
//	│ Internal error        │ 500    │ Unexpected engine errors     │
//	└───────────────────────┴────────┴──────────────────────────────┘
package handlers
