// Package config defines the configuration structure for jobengine.
//
// Configuration is organized into logical sections (Server, Engine, Auth,
// Persistence) and uses code generation via optgen to create functional
// option helpers.
//
// # Configuration Structure
//
//	Configuration
//	├── Server      - HTTP introspection server settings
//	├── Engine      - Scheduler capacity and failure-reporting settings
//	├── Persistence - Job snapshot cache settings
//	├── Auth        - Bearer-token authentication settings
//	├── LogFormat   - Logging format
//	└── LogLevel    - Logging verbosity
//
// # Server Configuration
//
//	┌──────────────────┬─────────┬────────────────────────────────────────┐
//	│ Field            │ Default │ Description                            │
//	├──────────────────┼─────────┼────────────────────────────────────────┤
//	│ ServerMode       │ "dev"   │ Server mode: "prod" or "dev"           │
//	│ HTTPPort         │ 8000    │ HTTP server listen port                │
//	│ StaticsFolder    │ ""      │ Path to static files for the UI       │
//	└──────────────────┴─────────┴────────────────────────────────────────┘
//
// # Engine Configuration
//
//	┌────────────────────┬─────────┬────────────────────────────────────────┐
//	│ Field              │ Default │ Description                            │
//	├────────────────────┼─────────┼────────────────────────────────────────┤
//	│ MaxJobs            │ 0       │ Global running-job cap (0 = unlimited) │
//	│ MaxJobsPerKind      │ {}      │ Per-kind running-job caps              │
//	│ PrintTraceback      │ true    │ Log a traceback on job failure         │
//	│ TickInterval        │ 75ms    │ Scheduler condition re-check interval  │
//	│ ThreadPoolSize      │ 8       │ Worker count for the thread backend    │
//	└────────────────────┴─────────┴────────────────────────────────────────┘
//
// # Persistence Configuration
//
//	┌───────────┬─────────┬────────────────────────────────────────┐
//	│ Field     │ Default │ Description                            │
//	├───────────┼─────────┼────────────────────────────────────────┤
//	│ CacheType │ "mem"   │ "mem" or "disk": where jobs persist     │
//	│ CachePath │ ""      │ Directory for on-disk snapshots         │
//	└───────────┴─────────┴────────────────────────────────────────┘
//
// # Authentication Configuration
//
//	┌─────────────┬─────────┬────────────────────────────────────────┐
//	│ Field       │ Default │ Description                            │
//	├─────────────┼─────────┼────────────────────────────────────────┤
//	│ Enabled     │ false   │ Require a bearer JWT on the HTTP API   │
//	│ JWTFilePath │ ""      │ Path to the signing key file           │
//	└─────────────┴─────────┴────────────────────────────────────────┘
//
// # Code Generation
//
// The package uses optgen to generate functional option helpers:
//
//	//go:generate go run github.com/ecordell/optgen -output zz_generated.configuration.go . Configuration Server Engine Persistence Auth
//
// Generated helpers include:
//
//   - NewConfigurationWithOptions(...ConfigurationOption) - Create with options
//   - NewConfigurationWithOptionsAndDefaults(...ConfigurationOption) - Create with defaults + options
//   - WithServer(Server), WithEngine(Engine), etc. - Set nested structs
//   - DebugMap() - Returns map for debug logging (respects debugmap tags)
//
// # Usage Example
//
//	cfg := config.NewConfigurationWithOptionsAndDefaults(
//	    config.WithServer(config.Server{HTTPPort: 8080}),
//	    config.WithEngine(config.Engine{MaxJobs: 50}),
//	    config.WithLogLevel("info"),
//	)
package config
