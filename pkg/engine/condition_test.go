package engine_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/jobengine/pkg/engine"
)

var errFailing = errors.New("failing")

var _ = Describe("Condition", func() {
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

	Describe("AfterAnother", func() {
		It("gates a job until the referenced job reaches the target status", func() {
			producer := engine.NewJob(engine.KindLocal, func(ctx context.Context, args []any) (any, error) {
				return "produced", nil
			}, nil)
			_, err := eng.Submit(producer)
			Expect(err).NotTo(HaveOccurred())

			consumer := engine.NewJob(engine.KindLocal, func(ctx context.Context, args []any) (any, error) {
				return "consumed", nil
			}, nil, engine.WithCondition(engine.NewAfterAnother(producer.ID())))
			_, err = eng.Submit(consumer)
			Expect(err).NotTo(HaveOccurred())

			_, err = producer.Wait(ctx, engine.StatusDone, 0)
			Expect(err).NotTo(HaveOccurred())

			status, err := consumer.Wait(ctx, engine.StatusDone, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(engine.StatusDone))
		})

		It("treats a failed referenced job as unsatisfied unless failed is in the allowed set", func() {
			producer := engine.NewJob(engine.KindLocal, func(ctx context.Context, args []any) (any, error) {
				return nil, errFailing
			}, nil)
			_, err := eng.Submit(producer)
			Expect(err).NotTo(HaveOccurred())

			consumer := engine.NewJob(engine.KindLocal, func(ctx context.Context, args []any) (any, error) {
				return "consumed", nil
			}, nil, engine.WithCondition(engine.NewAfterAnother(producer.ID(), engine.StatusFailed)))
			_, err = eng.Submit(consumer)
			Expect(err).NotTo(HaveOccurred())

			status, err := consumer.Wait(ctx, engine.StatusDone, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(engine.StatusDone))
		})
	})

	Describe("AfterOthers", func() {
		It("ModeAll waits for every referenced job", func() {
			var producers []*engine.Job
			var ids []string
			for i := 0; i < 3; i++ {
				p := engine.NewJob(engine.KindLocal, func(ctx context.Context, args []any) (any, error) {
					return nil, nil
				}, nil)
				producers = append(producers, p)
				ids = append(ids, p.ID())
			}

			consumer := engine.NewJob(engine.KindLocal, func(ctx context.Context, args []any) (any, error) {
				return "all done", nil
			}, nil, engine.WithCondition(engine.NewAfterOthers(engine.ModeAll, ids)))
			_, err := eng.Submit(consumer)
			Expect(err).NotTo(HaveOccurred())

			for _, p := range producers {
				_, err := eng.Submit(p)
				Expect(err).NotTo(HaveOccurred())
			}

			status, err := consumer.Wait(ctx, engine.StatusDone, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(engine.StatusDone))
		})

		It("ModeAny proceeds once a single referenced job is satisfied", func() {
			slow := engine.NewJob(engine.KindLocal, func(ctx context.Context, args []any) (any, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			}, nil)
			fast := engine.NewJob(engine.KindLocal, func(ctx context.Context, args []any) (any, error) {
				return "fast done", nil
			}, nil)

			consumer := engine.NewJob(engine.KindLocal, func(ctx context.Context, args []any) (any, error) {
				return "any satisfied", nil
			}, nil, engine.WithCondition(engine.NewAfterOthers(engine.ModeAny, []string{slow.ID(), fast.ID()})))

			_, err := eng.Submit(consumer)
			Expect(err).NotTo(HaveOccurred())
			_, err = eng.Submit(slow)
			Expect(err).NotTo(HaveOccurred())
			_, err = eng.Submit(fast)
			Expect(err).NotTo(HaveOccurred())

			status, err := consumer.Wait(ctx, engine.StatusDone, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(engine.StatusDone))
		})
	})

	Describe("AfterTimepoint", func() {
		It("delays a job until the given time has passed", func() {
			start := time.Now()
			job := engine.NewJob(engine.KindLocal, func(ctx context.Context, args []any) (any, error) {
				return time.Since(start), nil
			}, nil, engine.WithCondition(engine.NewAfterTimepoint(start.Add(150*time.Millisecond))))

			_, err := eng.Submit(job)
			Expect(err).NotTo(HaveOccurred())

			status, err := job.Wait(ctx, engine.StatusDone, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(engine.StatusDone))

			result, err := job.Result()
			Expect(err).NotTo(HaveOccurred())
			Expect(result.(time.Duration)).To(BeNumerically(">=", 140*time.Millisecond))
		})
	})

	Describe("All and Any combinators", func() {
		It("All requires every member satisfied", func() {
			a := engine.NewJob(engine.KindLocal, func(ctx context.Context, args []any) (any, error) { return nil, nil }, nil)
			b := engine.NewJob(engine.KindLocal, func(ctx context.Context, args []any) (any, error) { return nil, nil }, nil)

			consumer := engine.NewJob(engine.KindLocal, func(ctx context.Context, args []any) (any, error) {
				return "both", nil
			}, nil, engine.WithCondition(engine.All(
				engine.NewAfterAnother(a.ID()),
				engine.NewAfterAnother(b.ID()),
			)))

			_, err := eng.Submit(consumer)
			Expect(err).NotTo(HaveOccurred())
			_, err = eng.Submit(a)
			Expect(err).NotTo(HaveOccurred())
			_, err = eng.Submit(b)
			Expect(err).NotTo(HaveOccurred())

			status, err := consumer.Wait(ctx, engine.StatusDone, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(engine.StatusDone))
		})

		It("Any proceeds once one member is satisfied", func() {
			never := engine.NewAfterTimepoint(time.Now().Add(time.Hour))
			now := engine.Always

			job := engine.NewJob(engine.KindLocal, func(ctx context.Context, args []any) (any, error) {
				return "either", nil
			}, nil, engine.WithCondition(engine.Any(never, now)))

			_, err := eng.Submit(job)
			Expect(err).NotTo(HaveOccurred())

			status, err := job.Wait(ctx, engine.StatusDone, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(engine.StatusDone))
		})
	})
})
