package store_test

import (
	"context"
	"database/sql"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/jobengine/internal/store"
	srvErrors "github.com/tupyy/jobengine/pkg/errors"
)

var _ = Describe("SnapshotStore", func() {
	var (
		ctx context.Context
		db  *sql.DB
		s   *store.Store
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())

		s = store.NewStore(db)
		Expect(s.Migrate(ctx)).To(Succeed())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	It("round-trips a saved snapshot through Get", func() {
		snap := store.JobSnapshot{
			ID:        "job-1",
			Kind:      "local",
			Label:     "add(1,2)",
			Status:    "done",
			Attempts:  1,
			CreatedAt: time.Now().Truncate(time.Second),
		}
		Expect(s.Snapshots().Save(ctx, snap)).To(Succeed())

		got, err := s.Snapshots().Get(ctx, "job-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ID).To(Equal("job-1"))
		Expect(got.Kind).To(Equal("local"))
		Expect(got.Label).To(Equal("add(1,2)"))
		Expect(got.Status).To(Equal("done"))
		Expect(got.Attempts).To(Equal(1))
	})

	It("returns a ResourceNotFoundError for an unknown id", func() {
		_, err := s.Snapshots().Get(ctx, "missing")
		Expect(err).To(HaveOccurred())
		Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
	})

	It("upserts on repeated saves for the same id", func() {
		base := store.JobSnapshot{ID: "job-2", Kind: "thread", Status: "pending", CreatedAt: time.Now()}
		Expect(s.Snapshots().Save(ctx, base)).To(Succeed())

		base.Status = "done"
		base.Attempts = 1
		Expect(s.Snapshots().Save(ctx, base)).To(Succeed())

		got, err := s.Snapshots().Get(ctx, "job-2")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Status).To(Equal("done"))
		Expect(got.Attempts).To(Equal(1))
	})

	It("List filters by status and kind", func() {
		Expect(s.Snapshots().Save(ctx, store.JobSnapshot{ID: "a", Kind: "local", Status: "done", CreatedAt: time.Now()})).To(Succeed())
		Expect(s.Snapshots().Save(ctx, store.JobSnapshot{ID: "b", Kind: "thread", Status: "failed", CreatedAt: time.Now()})).To(Succeed())
		Expect(s.Snapshots().Save(ctx, store.JobSnapshot{ID: "c", Kind: "local", Status: "failed", CreatedAt: time.Now()})).To(Succeed())

		done, err := s.Snapshots().List(ctx, store.ByStatuses("done"))
		Expect(err).NotTo(HaveOccurred())
		Expect(done).To(HaveLen(1))
		Expect(done[0].ID).To(Equal("a"))

		localFailed, err := s.Snapshots().List(ctx, store.ByKinds("local"), store.ByStatuses("failed"))
		Expect(err).NotTo(HaveOccurred())
		Expect(localFailed).To(HaveLen(1))
		Expect(localFailed[0].ID).To(Equal("c"))
	})

	It("Delete removes a snapshot", func() {
		Expect(s.Snapshots().Save(ctx, store.JobSnapshot{ID: "to-delete", Kind: "local", Status: "done", CreatedAt: time.Now()})).To(Succeed())
		Expect(s.Snapshots().Delete(ctx, "to-delete")).To(Succeed())

		_, err := s.Snapshots().Get(ctx, "to-delete")
		Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
	})
})
