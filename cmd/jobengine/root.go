package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/go-extras/cobraflags"
	"github.com/jzelinskie/cobrautil/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tupyy/jobengine/internal/config"
)

const envPrefix = "JOBENGINE"

var (
	logLevel  = "info"
	logFormat = "console"
)

var colorFlag = &cobraflags.BoolFlag{
	Name:  "color",
	Value: true,
	Usage: "colorize job status output",
}

// rootCmd is the cobra entry point. Subcommands (serve, jobs, report,
// process-worker) are registered on it from their own files' init.
var rootCmd = &cobra.Command{
	Use:   "jobengine",
	Short: "Run and inspect the jobengine scheduler",
	// SyncViperPreRunE binds every flag on the invoked command (and its
	// parents) to a viper key under the JOBENGINE_ env prefix, so every
	// subcommand's settings can come from flag, env var, or config file
	// without each one repeating the plumbing.
	PersistentPreRunE: cobrautil.SyncViperPreRunE(envPrefix),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logLevel, "log-level", logLevel, "debug|info|warn|error")
	flags.StringVar(&logFormat, "log-format", logFormat, "console|json")
	_ = viper.BindPFlags(flags)
	cobraflags.Register(rootCmd, colorFlag)

	cobra.OnInitialize(initLogging)
}

func initLogging() {
	level := zapcore.InfoLevel
	_ = level.Set(viper.GetString("log-level"))

	zcfg := zap.NewProductionConfig()
	if viper.GetString("log-format") == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	zap.ReplaceGlobals(logger)

	if !colorFlag.GetBool() {
		color.NoColor = true
	}
}

// loadConfiguration assembles a config.Configuration from defaults plus
// whatever flags/env vars/config file viper has bound by the time a
// subcommand's RunE executes.
func loadConfiguration() *config.Configuration {
	cfg := config.NewConfigurationWithOptionsAndDefaults()
	if v := viper.GetInt("max-jobs"); v != 0 {
		cfg.Engine.MaxJobs = v
	}
	if v := viper.GetInt("thread-pool-size"); v != 0 {
		cfg.Engine.ThreadPoolSize = v
	}
	if v := viper.GetString("cache-type"); v != "" {
		cfg.Persistence.CacheType = v
	}
	if v := viper.GetString("cache-path"); v != "" {
		cfg.Persistence.CachePath = v
	}
	if v := viper.GetInt("http-port"); v != 0 {
		cfg.Server.HTTPPort = v
	}
	return cfg
}

func addConfigFlags(flags *pflag.FlagSet) {
	flags.Int("max-jobs", 0, "global cap on concurrently running jobs (0 = unlimited)")
	flags.Int("thread-pool-size", 8, "worker count for the thread backend")
	flags.String("cache-type", "mem", "mem|disk: where job snapshots persist")
	flags.String("cache-path", "", "directory for on-disk job snapshots")
	flags.Int("http-port", 8000, "introspection HTTP API listen port")
	_ = viper.BindPFlags(flags)
}
