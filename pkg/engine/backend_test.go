package engine_test

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/jobengine/pkg/engine"
)

var _ = Describe("ThreadBackend", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		eng    *engine.Engine
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		eng = engine.NewEngine(
			engine.WithBackend(engine.NewThreadBackend(2)),
			engine.WithTickInterval(10*time.Millisecond),
		)
		eng.Start(ctx)
	})

	AfterEach(func() {
		eng.Stop()
		cancel()
	})

	It("never runs more callables at once than it has workers", func() {
		var concurrent int32
		var maxConcurrent int32

		var jobs []*engine.Job
		for i := 0; i < 5; i++ {
			job := engine.NewJob(engine.KindThread, func(ctx context.Context, args []any) (any, error) {
				n := atomic.AddInt32(&concurrent, 1)
				for {
					old := atomic.LoadInt32(&maxConcurrent)
					if n <= old || atomic.CompareAndSwapInt32(&maxConcurrent, old, n) {
						break
					}
				}
				time.Sleep(30 * time.Millisecond)
				atomic.AddInt32(&concurrent, -1)
				return nil, nil
			}, nil)
			jobs = append(jobs, job)
			_, err := eng.Submit(job)
			Expect(err).NotTo(HaveOccurred())
		}

		for _, j := range jobs {
			status, err := j.Wait(ctx, engine.StatusDone, 3*time.Second)
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(engine.StatusDone))
		}

		Expect(atomic.LoadInt32(&maxConcurrent)).To(BeNumerically("<=", 2))
	})

	It("cancels a cooperative callable through its context", func() {
		started := make(chan struct{})
		job := engine.NewJob(engine.KindThread, func(ctx context.Context, args []any) (any, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}, nil)

		_, err := eng.Submit(job)
		Expect(err).NotTo(HaveOccurred())
		Eventually(started, time.Second).Should(BeClosed())

		Expect(job.Cancel()).To(Succeed())

		status, err := job.Wait(ctx, engine.StatusDone, 2*time.Second)
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(engine.StatusCancelled))
	})
})

var _ = Describe("process worker protocol", func() {
	var reg *engine.ProcessRegistry

	BeforeEach(func() {
		reg = engine.NewProcessRegistry()
		reg.Register("sum", func(ctx context.Context, args []any) (any, error) {
			total := 0.0
			for _, a := range args {
				total += a.(float64)
			}
			return total, nil
		})
	})

	envelope := func(entry string, args ...any) []byte {
		payload, err := json.Marshal(map[string]any{"entry_point": entry, "args": args})
		Expect(err).NotTo(HaveOccurred())
		return payload
	}

	It("runs a registered entry point against a stdin envelope", func() {
		out, err := engine.RunProcessWorker(context.Background(), reg, envelope("sum", 1, 2, 4))
		Expect(err).NotTo(HaveOccurred())

		var result struct {
			Result float64 `json:"result"`
			Error  string  `json:"error"`
		}
		Expect(json.Unmarshal(out, &result)).To(Succeed())
		Expect(result.Error).To(BeEmpty())
		Expect(result.Result).To(Equal(7.0))
	})

	It("reports an unknown entry point in the result envelope, not as a worker error", func() {
		out, err := engine.RunProcessWorker(context.Background(), reg, envelope("nope"))
		Expect(err).NotTo(HaveOccurred())

		var result struct {
			Error string `json:"error"`
		}
		Expect(json.Unmarshal(out, &result)).To(Succeed())
		Expect(result.Error).To(ContainSubstring("nope"))
	})

	It("rejects a malformed envelope", func() {
		_, err := engine.RunProcessWorker(context.Background(), reg, []byte("not json"))
		Expect(err).To(HaveOccurred())
	})
})
