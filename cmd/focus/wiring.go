package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/anaygoyal09/Focus/internal/config"
	"github.com/anaygoyal09/Focus/internal/daemon"
	"github.com/anaygoyal09/Focus/internal/domain"
	"github.com/anaygoyal09/Focus/internal/infra"
	"github.com/anaygoyal09/Focus/internal/usecase"
)

// env holds what every command needs: settings, logging and the document stores.
type env struct {
	cfg        *config.Config
	logger     *zap.Logger
	processes  domain.ProcessController
	profiles   *infra.JSONProfileStore
	guardStore *infra.JSONGuardConfigStore
	status     *infra.JSONStatusStore
	inbox      *infra.Inbox
}

func newEnv() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	logger := createLogger(cfg.Logging)
	return &env{
		cfg:        cfg,
		logger:     logger,
		processes:  infra.NewProcessManager(),
		profiles:   infra.NewProfileStore(cfg.DataDir),
		guardStore: infra.NewGuardConfigStore(cfg.DataDir),
		status:     infra.NewStatusStore(cfg.DataDir),
		inbox:      infra.NewInbox(cfg.DataDir, logger),
	}, nil
}

func (e *env) close() {
	_ = e.logger.Sync()
}

func (e *env) openVault() (*infra.EncryptedRegistry, error) {
	return infra.OpenVault(e.cfg.DataDir, infra.NewFileKeyProvider(e.cfg.DataDir))
}

// newHost builds a host over the on-disk documents with the real OS collaborators.
func (e *env) newHost() *usecase.Host {
	enforcer := usecase.NewEnforcer(e.processes, infra.NewNotifier(), infra.NewShortcutsRunner(), e.logger)
	return usecase.NewHost(e.cfg.Host(), e.profiles, e.guardStore, enforcer, e.logger)
}

// findAgent reports the running agent, if any.
func (e *env) findAgent() (*domain.AgentState, bool) {
	vault, err := e.openVault()
	if err != nil {
		e.logger.Warn("failed to open vault", zap.Error(err))
		return nil, false
	}
	defer vault.Close()
	return daemon.FindAgent(vault, e.processes, time.Now())
}

// needsAgent lists intents that only mean something to a running agent:
// block and session state live in its memory.
var needsAgent = map[domain.IntentKind]bool{
	domain.IntentGrantExtension:   true,
	domain.IntentDismissBlock:     true,
	domain.IntentRequestExtension: true,
	domain.IntentCancelExtension:  true,
	domain.IntentSessionStart:     true,
	domain.IntentSessionStop:      true,
}

var errNoAgent = fmt.Errorf("%w: start it with `focus install` or `focus run`", domain.ErrAgentNotRunning)

var errNothingBlocked = errors.New("no app is blocked")

// precheck rejects intents the agent would reject, judged from the saved
// documents and the agent's last snapshot. A nil snapshot skips block checks.
func precheck(host *usecase.Host, st *domain.Status, in domain.Intent) error {
	switch in.Kind {
	case domain.IntentActivateProfile, domain.IntentRemoveProfile, domain.IntentRenameProfile,
		domain.IntentAddApp, domain.IntentRemoveApp, domain.IntentSetLimit:
		_, err := host.ResolveProfile(in.ProfileID)
		return err
	case domain.IntentGrantExtension, domain.IntentDismissBlock,
		domain.IntentRequestExtension, domain.IntentCancelExtension:
		if st != nil && st.Block.State == domain.Unblocked.String() {
			return errNothingBlocked
		}
	}
	return nil
}

// outcome is the line printed after a successful submit.
func outcome(done string, queued bool) string {
	if queued {
		return done + " (queued for the agent)"
	}
	return done
}

// submit hands the intent to the running agent, or applies it to the saved
// documents when no agent is running.
func (e *env) submit(in domain.Intent) (queued bool, err error) {
	if state, alive := e.findAgent(); alive {
		st, _ := e.status.ReadStatus()
		if err := precheck(e.newHost(), st, in); err != nil {
			return false, err
		}
		if err := e.inbox.Enqueue(in); err != nil {
			return false, fmt.Errorf("failed to submit to agent: %w", err)
		}
		e.logger.Info("intent queued",
			zap.String("kind", string(in.Kind)),
			zap.Int("agent_pid", state.PID))
		return true, nil
	}
	if needsAgent[in.Kind] {
		return false, errNoAgent
	}
	return false, e.newHost().Apply(time.Now(), in)
}

func report(e *env, in domain.Intent, done string) error {
	queued, err := e.submit(in)
	if err != nil {
		if errors.Is(err, domain.ErrAgentNotRunning) {
			return err
		}
		return fmt.Errorf("%s: %w", in.Kind, err)
	}
	fmt.Println(outcome(done, queued))
	return nil
}
