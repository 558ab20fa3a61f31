package engine_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/jobengine/pkg/engine"
	srvErrors "github.com/tupyy/jobengine/pkg/errors"
)

var _ = Describe("Launcher", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		eng    *engine.Engine
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		eng = engine.NewEngine(
			engine.WithBackend(engine.NewLocalBackend()),
			engine.WithTickInterval(10*time.Millisecond),
		)
		eng.Start(ctx)
	})

	AfterEach(func() {
		eng.Stop()
		cancel()
	})

	double := func(ctx context.Context, args []any) (any, error) {
		return args[0].(int) * 2, nil
	}

	It("submits to the engine bound to the context", func() {
		launcher := engine.NewLauncher(engine.KindLocal, double)

		future, err := launcher.Submit(engine.WithEngine(ctx, eng), []any{21})
		Expect(err).NotTo(HaveOccurred())

		result, err := future.Result(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(Equal(42))
	})

	It("fails when no engine is bound to the context", func() {
		launcher := engine.NewLauncher(engine.KindLocal, double)

		_, err := launcher.Submit(ctx, []any{1})
		Expect(err).To(HaveOccurred())
		Expect(srvErrors.IsEngineStateError(err)).To(BeTrue())
	})

	It("WithEngineOverride wins over the context engine", func() {
		launcher := engine.NewLauncher(engine.KindLocal, double).WithEngineOverride(eng)

		future, err := launcher.Submit(engine.WithEngine(context.Background(), engine.NewEngine()), []any{5})
		Expect(err).NotTo(HaveOccurred())

		result, err := future.Result(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(Equal(10))
	})

	It("applies per-launcher options to every submitted job", func() {
		launcher := engine.NewLauncher(engine.KindLocal, double, engine.WithLabel("doubler"))

		future, err := launcher.Submit(engine.WithEngine(ctx, eng), []any{3})
		Expect(err).NotTo(HaveOccurred())

		job, ok := eng.Job(future.JobID())
		Expect(ok).To(BeTrue())
		Expect(job.Label()).To(Equal("doubler"))

		_, err = future.Result(ctx)
		Expect(err).NotTo(HaveOccurred())
	})
})
