//go:build integration

package integration

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/eliteGoblin/zwatch/internal/daemon"
	"github.com/eliteGoblin/zwatch/test/fixtures"
)

var _ = Describe("Monitoring loop", func() {
	var (
		notifier *fixtures.RecordingNotifier
		cancel   context.CancelFunc
		done     chan error
	)

	startMonitor := func(checker *fixtures.ScriptedChecker) {
		cfg := daemon.MonitorConfig{
			PollInterval: 2 * time.Millisecond,
			ProbeTimeout: time.Second,
		}
		monitor := daemon.NewMonitor(cfg, checker, notifier, zap.NewNop())

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		done = make(chan error, 1)
		go func() {
			done <- monitor.Run(ctx)
		}()
	}

	// waits until the whole script plus a few extra polls have run
	settle := func(checker *fixtures.ScriptedChecker, steps int) {
		Eventually(checker.Evaluations).Should(BeNumerically(">=", steps+3))
	}

	BeforeEach(func() {
		notifier = &fixtures.RecordingNotifier{}
	})

	AfterEach(func() {
		cancel()
		Eventually(done).Should(Receive(MatchError(context.Canceled)))
	})

	Context("when the feature switches on twice", func() {
		It("notifies once per enabled episode", func() {
			checker := fixtures.NewScriptedChecker(
				fixtures.SecurityOff(),
				fixtures.SecurityOn(),
				fixtures.SecurityOn(),
				fixtures.SecurityOff(),
				fixtures.SecurityOn(),
			)
			startMonitor(checker)
			settle(checker, 5)

			Expect(notifier.Messages()).To(HaveLen(2))
			Expect(notifier.Messages()).To(HaveEach("Z Scaler internet security is on"))
		})
	})

	Context("when the feature stays on", func() {
		It("never notifies a second time", func() {
			checker := fixtures.NewScriptedChecker(fixtures.SecurityOn())
			startMonitor(checker)
			settle(checker, 1)

			Expect(notifier.Messages()).To(HaveLen(1))
		})
	})

	Context("when a meeting app is running", func() {
		It("asks for the lights instead of announcing the status", func() {
			checker := fixtures.NewScriptedChecker(fixtures.SecurityOnInCall())
			startMonitor(checker)
			settle(checker, 1)

			Expect(notifier.Messages()).To(ConsistOf("turn lights off"))
		})
	})

	Context("when the status source fails between episodes", func() {
		It("keeps polling and re-arms the notification", func() {
			checker := fixtures.NewScriptedChecker(
				fixtures.SecurityOn(),
				fixtures.CheckFailure(errors.New("database is locked")),
				fixtures.SecurityOn(),
			)
			startMonitor(checker)
			settle(checker, 3)

			Expect(notifier.Messages()).To(HaveLen(2))
		})
	})

	Context("when the client goes down mid-episode", func() {
		It("re-arms so the next episode notifies again", func() {
			checker := fixtures.NewScriptedChecker(
				fixtures.SecurityOn(),
				fixtures.ClientDown(),
				fixtures.SecurityOn(),
			)
			startMonitor(checker)
			settle(checker, 3)

			Expect(notifier.Messages()).To(HaveLen(2))
		})
	})
})
