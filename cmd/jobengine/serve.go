package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tupyy/jobengine/internal/handlers"
	"github.com/tupyy/jobengine/internal/server"
	"github.com/tupyy/jobengine/internal/store"
	"github.com/tupyy/jobengine/internal/util"
	"github.com/tupyy/jobengine/pkg/engine"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the engine and its HTTP introspection API",
	RunE:  runServe,
}

func init() {
	addConfigFlags(serveCmd.Flags())
	rootCmd.AddCommand(serveCmd)
}

// allowedCacheTypes lists the cache-type values runServe accepts.
var allowedCacheTypes = []string{"mem", "disk"}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfiguration()
	log := zap.S().Named("cmd_serve")

	if !util.Contains(allowedCacheTypes, cfg.Persistence.CacheType) {
		return fmt.Errorf("invalid cache-type %q, must be one of %v", cfg.Persistence.CacheType, allowedCacheTypes)
	}

	opts := []engine.EngineOption{
		engine.WithMaxGlobal(cfg.Engine.MaxJobs),
		engine.WithTickInterval(cfg.Engine.TickInterval),
		engine.WithPrintTraceback(cfg.Engine.PrintTraceback),
		engine.WithBackend(engine.NewLocalBackend()),
		engine.WithBackend(engine.NewThreadBackend(cfg.Engine.ThreadPoolSize)),
	}
	for kind, max := range cfg.Engine.MaxJobsPerKind {
		opts = append(opts, engine.WithMaxPerKind(engine.Kind(kind), max))
	}
	eng := engine.NewEngine(opts...)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	eng.Start(ctx)
	defer eng.Stop()

	if cfg.Persistence.CacheType == "disk" {
		if err := wireSnapshotRecorder(ctx, eng, cfg.Persistence.CachePath); err != nil {
			return err
		}
	}

	launchers := handlers.LauncherRegistry{
		"echo": engine.NewLauncher(engine.KindLocal, echoCallable),
	}
	handler := handlers.New(eng, launchers)

	srv := server.NewServer(cfg.Server, cfg.Auth, func(router *gin.RouterGroup) {
		handlers.Register(router, handler)
	})

	log.Infow("jobengine serving", "port", cfg.Server.HTTPPort)
	return srv.Start(ctx)
}

func echoCallable(ctx context.Context, args []any) (any, error) {
	return args, nil
}

func wireSnapshotRecorder(ctx context.Context, eng *engine.Engine, cachePath string) error {
	path := cachePath
	if path == "" {
		path = "./jobengine-cache.duckdb"
	}
	db, err := store.NewDB(path)
	if err != nil {
		return err
	}
	st := store.NewStore(db)
	if err := st.Migrate(ctx); err != nil {
		return err
	}
	go recordSnapshotsPeriodically(ctx, eng, st)
	return nil
}

// recordSnapshotsPeriodically mirrors every job's current state into the
// snapshot store on a short interval. It is a polling recorder rather than
// an event hook because Engine's completion path is internal to the
// scheduler goroutine and deliberately not exposed for external
// subscription beyond JobFuture.OnComplete.
func recordSnapshotsPeriodically(ctx context.Context, eng *engine.Engine, st *store.Store) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	log := zap.S().Named("cmd_serve_snapshots")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, j := range eng.Jobs() {
				snap := jobToSnapshot(j)
				if err := st.Snapshots().Save(ctx, snap); err != nil {
					log.Warnw("failed to persist job snapshot", "job", j.ID(), "error", err)
				}
			}
		}
	}
}

func jobToSnapshot(j *engine.Job) store.JobSnapshot {
	created, started, stopped := j.Timestamps()
	var errMsg string
	var result []byte
	if j.Status().Terminal() {
		res, err := j.Result()
		if err != nil {
			errMsg = err.Error()
		} else {
			result, _ = store.MarshalArgs(res)
		}
	}
	return store.JobSnapshot{
		ID:        j.ID(),
		Kind:      string(j.Kind()),
		Label:     j.Label(),
		Status:    string(j.Status()),
		Attempts:  j.Attempts(),
		Result:    result,
		Error:     errMsg,
		CreatedAt: created,
		StartedAt: started,
		StoppedAt: stopped,
	}
}
