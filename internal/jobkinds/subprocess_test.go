package jobkinds_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/jobengine/internal/jobkinds"
	"github.com/tupyy/jobengine/pkg/engine"
)

var _ = Describe("SubprocessJob", func() {
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

	It("captures stdout from the rendered command", func() {
		job := jobkinds.NewSubprocessJob(jobkinds.ShellCommand("echo", "hello"), nil)
		_, err := eng.Submit(job)
		Expect(err).NotTo(HaveOccurred())

		status, err := job.Wait(ctx, engine.StatusDone, 5*time.Second)
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(engine.StatusDone))

		result, err := job.Result()
		Expect(err).NotTo(HaveOccurred())
		res := result.(jobkinds.SubprocessResult)
		Expect(res.Stdout).To(ContainSubstring("hello"))
		Expect(res.ExitCode).To(Equal(0))
	})

	It("reports a non-zero exit code as a job failure", func() {
		job := jobkinds.NewSubprocessJob(jobkinds.ShellCommand("sh", "-c", "exit 3"), nil)
		_, err := eng.Submit(job)
		Expect(err).NotTo(HaveOccurred())

		status, err := job.Wait(ctx, engine.StatusDone, 5*time.Second)
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(engine.StatusFailed))
	})
})
