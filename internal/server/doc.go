// Package server provides the HTTP introspection API for a running
// jobengine Engine.
//
// The server uses the Gin web framework with zap-backed request logging
// and panic recovery middleware.
//
// # Architecture Overview
//
//	┌───────────────────────────────────────────────────────────┐
//	│                       HTTP Server                          │
//	├───────────────────────────────────────────────────────────┤
//	│                     Middleware Stack                       │
//	│  ┌───────────────────────────────────────────────────────┐ │
//	│  │  Logger (ginzap request/response logging)              │ │
//	│  │  Recovery (panic recovery with zap logging)            │ │
//	│  │  Auth (optional bearer JWT, config.Auth.Enabled)       │ │
//	│  └───────────────────────────────────────────────────────┘ │
//	├───────────────────────────────────────────────────────────┤
//	│                     Router (/api/v1)                        │
//	│  ┌───────────────────────────────────────────────────────┐ │
//	│  │  Handlers (registered via callback)                     │ │
//	│  └───────────────────────────────────────────────────────┘ │
//	└───────────────────────────────────────────────────────────┘
//
// # Server Lifecycle
//
// Creation:
//
//	srv := server.NewServer(cfg.Server, cfg.Auth, func(router *gin.RouterGroup) {
//	    handlers.Register(router, h)
//	})
//
// The register callback receives a RouterGroup prefixed with
// /api/v1.
//
// Starting:
//
//	// Blocks until error or shutdown
//	err := srv.Start(ctx)
//
// Stopping:
//
//	srv.Stop(ctx)
//
// Stop performs a graceful shutdown, waiting for in-flight requests to
// complete.
//
// # Middleware
//
// Logger middleware (gin-contrib/zap) logs every request's method, path,
// status, and latency under the "http" logger name. Recovery middleware
// (also gin-contrib/zap) turns a handler panic into a 500 response instead
// of crashing the process. When config.Auth.Enabled is set, an additional
// middleware validates a bearer JWT (golang-jwt/jwt/v5) on every request.
package server
