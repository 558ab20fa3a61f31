package config

import "time"

//go:generate go run github.com/ecordell/optgen -output zz_generated.configuration.go . Configuration Server Engine Persistence Auth

// Configuration is the top-level settings object for a jobengine process,
// bound from CLI flags, environment variables, and an optional config file
// by cmd/jobengine's loadConfiguration.
type Configuration struct {
	Server      Server      `debugmap:"visible"`
	Engine      Engine      `debugmap:"visible"`
	Persistence Persistence `debugmap:"visible"`
	Auth        Auth        `debugmap:"visible"`
	LogFormat   string      `debugmap:"visible" default:"console"`
	LogLevel    string      `debugmap:"visible" default:"info"`
}

// Server holds the introspection HTTP API's listen settings.
type Server struct {
	ServerMode    string `debugmap:"visible" default:"dev"`
	HTTPPort      int    `debugmap:"visible" default:"8000"`
	StaticsFolder string `debugmap:"visible"`
}

// Engine holds the scheduler capacity and reporting settings.
type Engine struct {
	MaxJobs        int            `debugmap:"visible" default:"0"`
	MaxJobsPerKind map[string]int `debugmap:"visible"`
	PrintTraceback bool           `debugmap:"visible" default:"true"`
	TickInterval   time.Duration  `debugmap:"visible" default:"75ms"`
	ThreadPoolSize int            `debugmap:"visible" default:"8"`
}

// Persistence holds job-snapshot cache settings.
type Persistence struct {
	CacheType string `debugmap:"visible" default:"mem"`
	CachePath string `debugmap:"visible"`
}

// Auth holds bearer-token authentication settings for the HTTP API.
type Auth struct {
	Enabled     bool   `debugmap:"visible" default:"false"`
	JWTFilePath string `debugmap:"visible"`
}
