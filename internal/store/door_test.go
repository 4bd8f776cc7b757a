package store_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mkrogh/homewatch/internal/store"
)

var _ = Describe("DoorStore", func() {
	var (
		doorStore *store.DoorStore
		ctx       context.Context
	)

	BeforeEach(func() {
		db := openTestDB()
		ctx = context.Background()

		var err error
		doorStore, err = store.NewDoorStore(db, testLogger())
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewDoorStore", func() {
		It("should return error when database is nil", func() {
			s, err := store.NewDoorStore(nil, testLogger())
			Expect(err).To(HaveOccurred())
			Expect(s).To(BeNil())
		})

		It("should return error when logger is nil", func() {
			s, err := store.NewDoorStore(openTestDB(), nil)
			Expect(err).To(HaveOccurred())
			Expect(s).To(BeNil())
		})
	})

	Describe("Poll", func() {
		Context("with no issued command", func() {
			It("should return nil", func() {
				cmd, err := doorStore.Poll(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(cmd).To(BeNil())
			})
		})

		Context("with a freshly issued command", func() {
			It("should deliver the command exactly once", func() {
				Expect(doorStore.Issue(ctx, true)).To(Succeed())

				cmd, err := doorStore.Poll(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(cmd).NotTo(BeNil())
				Expect(*cmd).To(Equal(store.CommandOpen))

				cmd, err = doorStore.Poll(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(cmd).To(BeNil())
			})

			It("should map a close command", func() {
				Expect(doorStore.Issue(ctx, false)).To(Succeed())

				cmd, err := doorStore.Poll(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(cmd).NotTo(BeNil())
				Expect(*cmd).To(Equal(store.CommandClose))
			})
		})

		Context("with multiple issues before a poll", func() {
			It("should deliver only the most recent command", func() {
				Expect(doorStore.Issue(ctx, true)).To(Succeed())
				Expect(doorStore.Issue(ctx, false)).To(Succeed())

				cmd, err := doorStore.Poll(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(cmd).NotTo(BeNil())
				Expect(*cmd).To(Equal(store.CommandClose))

				// The superseded command must never surface.
				cmd, err = doorStore.Poll(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(cmd).To(BeNil())
			})
		})

		Context("after the freshness window has elapsed", func() {
			It("should never deliver the expired command", func() {
				issuedAt := time.Now().UTC()
				doorStore.SetNow(func() time.Time { return issuedAt })
				Expect(doorStore.Issue(ctx, true)).To(Succeed())

				doorStore.SetNow(func() time.Time {
					return issuedAt.Add(store.CommandTimeout + time.Second)
				})

				cmd, err := doorStore.Poll(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(cmd).To(BeNil())
			})

			It("should still deliver just inside the window", func() {
				issuedAt := time.Now().UTC()
				doorStore.SetNow(func() time.Time { return issuedAt })
				Expect(doorStore.Issue(ctx, true)).To(Succeed())

				doorStore.SetNow(func() time.Time {
					return issuedAt.Add(store.CommandTimeout - time.Second)
				})

				cmd, err := doorStore.Poll(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(cmd).NotTo(BeNil())
			})
		})

		Context("with concurrent pollers racing for one command", func() {
			It("should deliver to exactly one of them", func() {
				Expect(doorStore.Issue(ctx, true)).To(Succeed())

				const pollers = 8
				results := make([]*store.Command, pollers)
				errs := make([]error, pollers)

				var wg sync.WaitGroup
				for i := range pollers {
					wg.Add(1)
					go func(i int) {
						defer wg.Done()
						defer GinkgoRecover()
						results[i], errs[i] = doorStore.Poll(ctx)
					}(i)
				}
				wg.Wait()

				delivered := 0
				for i := range pollers {
					Expect(errs[i]).NotTo(HaveOccurred())
					if results[i] != nil {
						delivered++
						Expect(*results[i]).To(Equal(store.CommandOpen))
					}
				}
				Expect(delivered).To(Equal(1))
			})
		})
	})

	Describe("LogState and LatestStatus", func() {
		Context("with an empty event log", func() {
			It("should report unknown", func() {
				status, err := doorStore.LatestStatus(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(status).To(Equal(store.DoorUnknown))
			})
		})

		Context("after logging states", func() {
			It("should report the newest logged state", func() {
				Expect(doorStore.LogState(ctx, true, "2026-08-29 10:00:00")).To(Succeed())
				Expect(doorStore.LogState(ctx, false, "2026-08-29 10:05:00")).To(Succeed())

				status, err := doorStore.LatestStatus(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(status).To(Equal(store.DoorClosed))
			})
		})

		It("should keep log entries out of command delivery", func() {
			Expect(doorStore.LogState(ctx, true, "2026-08-29 10:00:00")).To(Succeed())

			cmd, err := doorStore.Poll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(cmd).To(BeNil())
		})
	})

	Describe("Events", func() {
		It("should list logged states newest first", func() {
			Expect(doorStore.LogState(ctx, true, "2026-08-29 10:00:00")).To(Succeed())
			Expect(doorStore.LogState(ctx, false, "2026-08-29 10:05:00")).To(Succeed())

			events, err := doorStore.Events(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(events).To(HaveLen(2))
			Expect(events[0].IsOpen).To(BeFalse())
			Expect(events[1].IsOpen).To(BeTrue())
		})
	})
})
