//go:build integration

package integration

import (
	"context"
	"io/fs"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/anaygoyal09/Focus/internal/budget"
	"github.com/anaygoyal09/Focus/internal/daemon"
	"github.com/anaygoyal09/Focus/internal/domain"
	"github.com/anaygoyal09/Focus/internal/guard"
	"github.com/anaygoyal09/Focus/internal/infra"
	"github.com/anaygoyal09/Focus/internal/usecase"
	"github.com/anaygoyal09/Focus/test/fixtures"
)

const selfID = "com.anaygoyal.focus"

var _ = Describe("Agent", func() {
	var (
		dataDir   string
		desktop   *fixtures.FakeDesktop
		profiles  *infra.JSONProfileStore
		guardDoc  *infra.JSONGuardConfigStore
		status    *infra.JSONStatusStore
		inbox     *infra.Inbox
		vault     *infra.EncryptedRegistry
		scheduler *daemon.ManualScheduler
		cancel    context.CancelFunc
		done      chan error
	)

	newHost := func() *usecase.Host {
		bcfg := budget.DefaultConfig()
		bcfg.SelfID = selfID
		enforcer := usecase.NewEnforcer(desktop, desktop, desktop, zap.NewNop())
		return usecase.NewHost(usecase.HostConfig{
			Budget: bcfg,
			Guard:  guard.Config{SelfID: selfID},
		}, profiles, guardDoc, enforcer, zap.NewNop())
	}

	// applyOffline edits the saved documents the way the CLI does when no agent runs.
	applyOffline := func(intents ...domain.Intent) {
		host := newHost()
		for _, in := range intents {
			Expect(host.Apply(scheduler.Now(), in)).To(Succeed())
		}
	}

	startAgent := func() {
		agent := daemon.NewAgent(daemon.DefaultAgentConfig(), newHost(), desktop, inbox, vault, status,
			desktop, scheduler, zap.NewNop())
		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		done = make(chan error, 1)
		go func() { done <- agent.Run(ctx) }()
		Eventually(scheduler.Started()).Should(BeClosed())
	}

	stopAgent := func() {
		cancel()
		Eventually(done, 5*time.Second).Should(Receive(MatchError(context.Canceled)))
	}

	readStatus := func() *domain.Status {
		st, err := status.ReadStatus()
		if err != nil {
			return nil
		}
		return st
	}

	BeforeEach(func() {
		var err error
		dataDir, err = os.MkdirTemp("", "focus-integration-*")
		Expect(err).NotTo(HaveOccurred())

		desktop = fixtures.NewFakeDesktop()
		profiles = infra.NewProfileStore(dataDir)
		guardDoc = infra.NewGuardConfigStore(dataDir)
		status = infra.NewStatusStore(dataDir)
		inbox = infra.NewInbox(dataDir, zap.NewNop())
		scheduler = daemon.NewManualScheduler(time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local))

		vault, err = infra.OpenVault(dataDir, infra.NewFileKeyProvider(dataDir))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		vault.Close()
		os.RemoveAll(dataDir)
	})

	Describe("usage budget", func() {
		BeforeEach(func() {
			applyOffline(
				domain.Intent{Kind: domain.IntentActivateProfile, ProfileID: "work"},
				domain.Intent{Kind: domain.IntentAddApp, BundleID: fixtures.Steam.ID, AppName: "Steam", Limit: 5 * time.Minute},
			)
		})

		Context("when a tracked app stays in front until its budget is spent", func() {
			It("should warn, block once and persist the usage", func() {
				desktop.Focus(&fixtures.Steam)
				startAgent()

				scheduler.TickN(300, time.Second)
				stopAgent()

				terminated := desktop.Terminated()
				Expect(terminated).To(HaveLen(1))
				Expect(terminated[0].ID).To(Equal(fixtures.Steam.ID))
				Expect(terminated[0].PID).To(Equal(fixtures.Steam.PID))

				notes := desktop.Notifications()
				Expect(notes).To(ContainElement("Time Alert"))
				Expect(notes[len(notes)-1]).To(Equal("Time's Up"))

				set, err := profiles.Load()
				Expect(err).NotTo(HaveOccurred())
				app := set.Active().Apps[0]
				Expect(app.UsedToday).To(Equal(5 * time.Minute))
			})
		})

		Context("when the app keeps coming back after the block", func() {
			It("should terminate it again without another notification", func() {
				desktop.Focus(&fixtures.Steam)
				startAgent()

				scheduler.TickN(305, time.Second)
				stopAgent()

				Expect(desktop.Terminated()).To(HaveLen(6))
				// Eight warnings from 5m down to 5s, then one block
				Expect(desktop.Notifications()).To(HaveLen(9))
			})
		})

		Context("when an untracked app is in front", func() {
			It("should charge nothing", func() {
				desktop.Focus(&fixtures.Xcode)
				startAgent()

				scheduler.TickN(120, time.Second)
				stopAgent()

				set, err := profiles.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(set.Active().Apps[0].UsedToday).To(BeZero())
				Expect(desktop.Terminated()).To(BeEmpty())
			})
		})

		Context("when an extension is granted through the inbox", func() {
			It("should lift the block and extend the limit", func() {
				desktop.Focus(&fixtures.Steam)
				startAgent()
				scheduler.TickN(300, time.Second)

				Expect(inbox.Enqueue(domain.Intent{Kind: domain.IntentGrantExtension, Minutes: 5})).To(Succeed())
				Eventually(func() string {
					st := readStatus()
					if st == nil {
						return ""
					}
					return st.Block.State
				}, 5*time.Second).Should(Equal("unblocked"))

				scheduler.TickN(60, time.Second)
				stopAgent()

				Expect(desktop.Terminated()).To(HaveLen(1))
				set, err := profiles.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(set.Active().Apps[0].DailyLimit).To(Equal(10 * time.Minute))
				Expect(set.Active().Apps[0].UsedToday).To(Equal(6 * time.Minute))
			})
		})
	})

	Describe("focus session", func() {
		BeforeEach(func() {
			applyOffline(
				domain.Intent{Kind: domain.IntentGuardAddApp, BundleID: fixtures.Slack.ID, AppName: "Slack"},
				domain.Intent{Kind: domain.IntentGuardAutomation, Enabled: true},
			)
		})

		Context("when a session is started while the agent runs", func() {
			It("should quit deny-listed apps until the countdown ends", func() {
				desktop.Focus(&fixtures.Slack)
				startAgent()

				Expect(inbox.Enqueue(domain.Intent{Kind: domain.IntentSessionStart, Minutes: 1})).To(Succeed())
				Eventually(func() bool {
					st := readStatus()
					return st != nil && st.Session.Running
				}, 5*time.Second).Should(BeTrue())

				scheduler.TickN(90, time.Second)
				stopAgent()

				Expect(desktop.Terminated()).To(HaveLen(60))
				Expect(desktop.Automations()).To(Equal([]string{"Enable Focus", "Disable Focus"}))
			})
		})

		Context("in allow mode", func() {
			It("should quit everything except listed and system apps", func() {
				applyOffline(domain.Intent{Kind: domain.IntentGuardMode, FilterMode: domain.FilterAllow})
				startAgent()
				Expect(inbox.Enqueue(domain.Intent{Kind: domain.IntentSessionStart, Minutes: 5})).To(Succeed())
				Eventually(func() bool {
					st := readStatus()
					return st != nil && st.Session.Running
				}, 5*time.Second).Should(BeTrue())

				desktop.Focus(&fixtures.Slack)
				scheduler.TickN(3, time.Second)
				desktop.Focus(&domain.AppIdentity{ID: "com.apple.finder", DisplayName: "Finder"})
				scheduler.TickN(3, time.Second)
				desktop.Focus(&fixtures.Steam)
				scheduler.TickN(3, time.Second)
				stopAgent()

				terminated := desktop.Terminated()
				Expect(terminated).To(HaveLen(3))
				for _, app := range terminated {
					Expect(app.ID).To(Equal(fixtures.Steam.ID))
				}
			})
		})
	})

	Describe("lifecycle", func() {
		It("should register while running and clean up on shutdown", func() {
			startAgent()

			state, alive := daemon.FindAgent(vault, desktop, time.Now())
			Expect(alive).To(BeTrue())
			Expect(state.PID).To(Equal(os.Getpid()))
			Eventually(readStatus).ShouldNot(BeNil())

			stopAgent()

			_, alive = daemon.FindAgent(vault, desktop, time.Now())
			Expect(alive).To(BeFalse())
			_, err := status.ReadStatus()
			Expect(err).To(MatchError(fs.ErrNotExist))
		})
	})
})
