package jobkinds_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/jobengine/internal/jobkinds"
	"github.com/tupyy/jobengine/pkg/engine"
)

var _ = Describe("WebappJob", func() {
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

	It("binds to a free port and stops cleanly on cancel", func() {
		bound := make(chan int, 1)
		fn := func(ctx context.Context, ip string, port int) error {
			bound <- port
			<-ctx.Done()
			return nil
		}

		job, err := jobkinds.NewWebappJob("127.0.0.1", 0, fn)
		Expect(err).NotTo(HaveOccurred())

		_, err = eng.Submit(job)
		Expect(err).NotTo(HaveOccurred())

		var port int
		Eventually(bound, time.Second).Should(Receive(&port))
		Expect(port).NotTo(Equal(0))

		Expect(job.Cancel()).To(Succeed())

		status, err := job.Wait(ctx, engine.StatusDone, 2*time.Second)
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(engine.StatusCancelled))
	})
})
