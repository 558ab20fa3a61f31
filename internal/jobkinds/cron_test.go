package jobkinds_test

import (
	"context"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/jobengine/internal/jobkinds"
	"github.com/tupyy/jobengine/pkg/engine"
)

var _ = Describe("CronJob", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		eng    *engine.Engine
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		eng = engine.NewEngine(
			engine.WithBackend(engine.NewLocalBackend()),
			engine.WithTickInterval(5*time.Millisecond),
		)
		eng.Start(ctx)
	})

	AfterEach(func() {
		eng.Stop()
		cancel()
	})

	It("resubmits on every tick until stopped", func() {
		var runs int32
		cron := jobkinds.NewCronJob(eng, engine.KindLocal, func(ctx context.Context, args []any) (any, error) {
			atomic.AddInt32(&runs, 1)
			return nil, nil
		}, nil, 20*time.Millisecond)

		cron.Start(ctx)
		Eventually(func() int32 { return atomic.LoadInt32(&runs) }, time.Second, 10*time.Millisecond).Should(BeNumerically(">=", 2))
		cron.Stop()
	})
})

var _ = Describe("SentinelJob", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		eng    *engine.Engine
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		eng = engine.NewEngine(
			engine.WithBackend(engine.NewLocalBackend()),
			engine.WithTickInterval(5*time.Millisecond),
		)
		eng.Start(ctx)
	})

	AfterEach(func() {
		eng.Stop()
		cancel()
	})

	It("only submits once per predicate rising edge", func() {
		var armed int32
		var runs int32

		predicate := func(eng *engine.Engine) bool {
			return atomic.LoadInt32(&armed) == 1
		}

		sentinel := jobkinds.NewSentinelJob(eng, engine.KindLocal, func(ctx context.Context, args []any) (any, error) {
			atomic.AddInt32(&runs, 1)
			return nil, nil
		}, nil, predicate, 10*time.Millisecond)

		sentinel.Start(ctx)

		atomic.StoreInt32(&armed, 1)
		Eventually(func() int32 { return atomic.LoadInt32(&runs) }, time.Second, 10*time.Millisecond).Should(Equal(int32(1)))
		Consistently(func() int32 { return atomic.LoadInt32(&runs) }, 100*time.Millisecond, 10*time.Millisecond).Should(Equal(int32(1)))

		atomic.StoreInt32(&armed, 0)
		sentinel.Stop()
	})
})
