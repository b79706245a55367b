package session_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/focusdrift/internal/session"
)

var _ = Describe("Driver", func() {
	var (
		d      *session.Driver
		cancel context.CancelFunc
		done   chan error
	)

	BeforeEach(func() {
		cfg := referenceConfig()
		d = session.NewDriver(session.New(cfg), time.Millisecond)

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		done = make(chan error, 1)
		go func() { done <- d.Run(ctx) }()
	})

	AfterEach(func() {
		cancel()
		Eventually(done).Should(Receive())
	})

	ticks := func() int {
		snap, err := d.Snapshot(context.Background())
		Expect(err).NotTo(HaveOccurred())
		return snap.Ticks
	}

	It("advances a started session on its own", func() {
		Expect(d.Start()).To(Succeed())
		Eventually(ticks).Should(BeNumerically(">", 5))
	})

	It("applies queued input on the session goroutine", func() {
		Expect(d.Start()).To(Succeed())
		Expect(d.SetHover(true)).To(Succeed())
		Expect(d.SetPointer(3, 4)).To(Succeed())

		Eventually(func() bool {
			snap, _ := d.Snapshot(context.Background())
			return snap.Locked && snap.Pointer.X == 3 && snap.Ticks > 0
		}).Should(BeTrue())
	})

	It("ends the session on request", func() {
		Expect(d.Start()).To(Succeed())
		Eventually(ticks).Should(BeNumerically(">", 0))
		Expect(d.End()).To(Succeed())

		Eventually(func() bool {
			snap, _ := d.Snapshot(context.Background())
			return snap.Ended
		}).Should(BeTrue())
	})

	It("rejects calls once stopped", func() {
		cancel()
		Eventually(done).Should(Receive(MatchError(context.Canceled)))
		done <- nil

		Expect(d.Start()).To(MatchError(session.ErrDriverStopped))
		_, err := d.Snapshot(context.Background())
		Expect(err).To(MatchError(session.ErrDriverStopped))
	})
})
