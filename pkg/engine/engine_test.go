package engine_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/jobengine/pkg/engine"
	srvErrors "github.com/tupyy/jobengine/pkg/errors"
)

var _ = Describe("Engine lifecycle", func() {
	It("rejects Submit before Start with an EngineStateError", func() {
		eng := engine.NewEngine(engine.WithBackend(engine.NewLocalBackend()))

		job := engine.NewJob(engine.KindLocal, func(ctx context.Context, args []any) (any, error) {
			return nil, nil
		}, nil)

		_, err := eng.Submit(job)
		Expect(err).To(HaveOccurred())
		Expect(srvErrors.IsEngineStateError(err)).To(BeTrue())
	})

	It("Start and Stop are idempotent, and Stop is safe on a never-started engine", func() {
		never := engine.NewEngine()
		never.Stop()
		never.Stop()

		eng := engine.NewEngine(
			engine.WithBackend(engine.NewLocalBackend()),
			engine.WithTickInterval(10*time.Millisecond),
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		eng.Start(ctx)
		eng.Start(ctx)

		job := engine.NewJob(engine.KindLocal, func(ctx context.Context, args []any) (any, error) {
			return "once", nil
		}, nil)
		_, err := eng.Submit(job)
		Expect(err).NotTo(HaveOccurred())

		status, err := job.Wait(ctx, engine.StatusDone, 2*time.Second)
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(engine.StatusDone))

		eng.Stop()
		eng.Stop()
	})

	It("Stop cancels whatever is still pending or running", func() {
		eng := engine.NewEngine(
			engine.WithBackend(engine.NewLocalBackend()),
			engine.WithTickInterval(10*time.Millisecond),
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		eng.Start(ctx)

		started := make(chan struct{})
		running := engine.NewJob(engine.KindLocal, func(ctx context.Context, args []any) (any, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}, nil)
		pending := engine.NewJob(engine.KindLocal, func(ctx context.Context, args []any) (any, error) {
			return nil, nil
		}, nil, engine.WithCondition(engine.NewAfterTimepoint(time.Now().Add(time.Hour))))

		_, err := eng.Submit(running)
		Expect(err).NotTo(HaveOccurred())
		_, err = eng.Submit(pending)
		Expect(err).NotTo(HaveOccurred())

		Eventually(started, time.Second).Should(BeClosed())

		eng.Stop()

		Expect(running.Status()).To(Equal(engine.StatusCancelled))
		Expect(pending.Status()).To(Equal(engine.StatusCancelled))
	})

	It("Wait returns once no pending or running jobs remain", func() {
		eng := engine.NewEngine(
			engine.WithBackend(engine.NewLocalBackend()),
			engine.WithTickInterval(10*time.Millisecond),
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		eng.Start(ctx)
		defer eng.Stop()

		for i := 0; i < 3; i++ {
			job := engine.NewJob(engine.KindLocal, func(ctx context.Context, args []any) (any, error) {
				time.Sleep(20 * time.Millisecond)
				return nil, nil
			}, nil)
			_, err := eng.Submit(job)
			Expect(err).NotTo(HaveOccurred())
		}

		waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Second)
		defer waitCancel()
		Expect(eng.Wait(waitCtx)).To(Succeed())
		Expect(eng.Jobs()).To(HaveLen(3))
		for _, j := range eng.Jobs() {
			Expect(j.Status()).To(Equal(engine.StatusDone))
		}
	})

	It("Run stops the engine on every exit path", func() {
		var captured *engine.Engine
		err := engine.Run(context.Background(), func(e *engine.Engine) error {
			captured = e
			job := engine.NewJob(engine.KindLocal, func(ctx context.Context, args []any) (any, error) {
				return "scoped", nil
			}, nil)
			if _, err := e.Submit(job); err != nil {
				return err
			}
			_, err := job.Wait(context.Background(), engine.StatusDone, 2*time.Second)
			return err
		},
			engine.WithBackend(engine.NewLocalBackend()),
			engine.WithTickInterval(10*time.Millisecond),
		)
		Expect(err).NotTo(HaveOccurred())

		// The engine is stopped by the time Run returns.
		_, err = captured.Submit(engine.NewJob(engine.KindLocal, func(ctx context.Context, args []any) (any, error) {
			return nil, nil
		}, nil))
		Expect(srvErrors.IsEngineStateError(err)).To(BeTrue())
	})
})
