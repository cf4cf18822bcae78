// Package daemon implements the long-running agent that hosts both engines.
package daemon

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/anaygoyal09/Focus/internal/domain"
	"github.com/anaygoyal09/Focus/internal/metrics"
	"github.com/anaygoyal09/Focus/internal/usecase"
)

// IntentSource is where the agent picks up client intents.
type IntentSource interface {
	Drain() ([]domain.Intent, error)

	// Watch signals when intents may be pending. The channel closes with ctx.
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// StatusPublisher publishes observer snapshots and withdraws them on shutdown.
type StatusPublisher interface {
	WriteStatus(status *domain.Status) error
	Remove() error
}

const defaultHeartbeatInterval = 30 * time.Second

// AgentConfig holds agent loop configuration.
type AgentConfig struct {
	TickInterval      time.Duration // One observation per tick (default 1s)
	HeartbeatInterval time.Duration // How often to update the registry heartbeat
	StatusEveryTicks  int           // Status snapshot cadence, also written after intents
	MetricsTextfile   string        // Empty disables the textfile export
	AppVersion        string
}

// DefaultAgentConfig returns default agent configuration.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		TickInterval:      time.Second,
		HeartbeatInterval: defaultHeartbeatInterval,
		StatusEveryTicks:  10,
	}
}

// Agent runs the tick loop. It is the only goroutine that touches the host,
// so ticks and intents are serialised.
type Agent struct {
	config    AgentConfig
	host      *usecase.Host
	oracle    domain.ForegroundOracle
	inbox     IntentSource
	registry  domain.AgentRegistry
	status    StatusPublisher
	processes domain.ProcessController
	scheduler Scheduler
	logger    *zap.Logger

	ticks          uint64
	heartbeatTicks uint64
}

// NewAgent creates a new agent.
func NewAgent(
	config AgentConfig,
	host *usecase.Host,
	oracle domain.ForegroundOracle,
	inbox IntentSource,
	registry domain.AgentRegistry,
	status StatusPublisher,
	processes domain.ProcessController,
	scheduler Scheduler,
	logger *zap.Logger,
) *Agent {
	def := DefaultAgentConfig()
	if config.TickInterval <= 0 {
		config.TickInterval = def.TickInterval
	}
	if config.HeartbeatInterval <= 0 {
		config.HeartbeatInterval = def.HeartbeatInterval
	}
	if config.StatusEveryTicks <= 0 {
		config.StatusEveryTicks = def.StatusEveryTicks
	}
	heartbeatTicks := uint64(config.HeartbeatInterval / config.TickInterval)
	if heartbeatTicks == 0 {
		heartbeatTicks = 1
	}
	return &Agent{
		config:         config,
		host:           host,
		oracle:         oracle,
		inbox:          inbox,
		registry:       registry,
		status:         status,
		processes:      processes,
		scheduler:      scheduler,
		logger:         logger,
		heartbeatTicks: heartbeatTicks,
	}
}

// HeartbeatEvery is the wall time between heartbeats: a whole number of ticks,
// never shorter than one tick.
func (a *Agent) HeartbeatEvery() time.Duration {
	return time.Duration(a.heartbeatTicks) * a.config.TickInterval
}

// Run starts the agent loop.
// This blocks until context is canceled.
func (a *Agent) Run(ctx context.Context) error {
	pid := a.processes.GetCurrentPID()
	if err := a.registry.Register(domain.AgentState{
		PID:               pid,
		Role:              domain.RoleAgent,
		HeartbeatInterval: a.HeartbeatEvery(),
		AppVersion:        a.config.AppVersion,
	}); err != nil {
		a.logger.Error("failed to register agent", zap.Error(err))
		return err
	}
	defer a.shutdown()

	a.logger.Info("agent started",
		zap.Int("pid", pid),
		zap.Duration("tick", a.config.TickInterval))

	wake, err := a.inbox.Watch(ctx)
	if err != nil {
		// Intents are still drained every tick
		a.logger.Warn("failed to watch inbox, polling only", zap.Error(err))
	}

	ticks, stop := a.scheduler.Every(a.config.TickInterval)
	defer stop()

	// Intents submitted while the agent was down
	a.drainIntents()
	a.checkpoint()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("agent stopping")
			return ctx.Err()

		case now := <-ticks:
			a.tick(ctx, now)

		case _, ok := <-wake:
			if !ok {
				wake = nil
				continue
			}
			if a.drainIntents() > 0 {
				a.checkpoint()
			}
		}
	}
}

// tick runs one observation: intents first, then the oracle and both engines.
func (a *Agent) tick(ctx context.Context, now time.Time) {
	a.ticks++
	applied := a.drainIntents()

	frontmost, err := a.oracle.ForegroundApp(ctx)
	if err != nil {
		metrics.OracleErrors.Inc()
		a.logger.Debug("foreground oracle failed", zap.Error(err))
		frontmost = nil
	}
	blockBefore := a.host.BlockKind()
	a.host.Tick(now, frontmost)

	if a.ticks%a.heartbeatTicks == 0 {
		if err := a.registry.UpdateHeartbeat(); err != nil {
			a.logger.Warn("failed to update heartbeat", zap.Error(err))
		}
	}
	if applied > 0 || a.host.BlockKind() != blockBefore || a.ticks%uint64(a.config.StatusEveryTicks) == 0 {
		a.checkpoint()
	}
}

// drainIntents applies all pending intents in submission order.
func (a *Agent) drainIntents() int {
	intents, err := a.inbox.Drain()
	if err != nil {
		a.logger.Warn("failed to drain inbox", zap.Error(err))
		return 0
	}
	for _, in := range intents {
		// Rejected intents are logged and counted by the host
		_ = a.host.Apply(a.scheduler.Now(), in)
	}
	return len(intents)
}

// checkpoint publishes the status snapshot and the metrics textfile.
func (a *Agent) checkpoint() {
	st := a.host.Status(a.scheduler.Now(), a.processes.GetCurrentPID())
	if err := a.status.WriteStatus(st); err != nil {
		a.logger.Warn("failed to write status", zap.Error(err))
	}
	if a.config.MetricsTextfile == "" {
		return
	}
	if err := metrics.WriteTextfile(a.config.MetricsTextfile); err != nil {
		a.logger.Warn("failed to write metrics", zap.Error(err))
	}
}

func (a *Agent) shutdown() {
	a.host.Flush()
	if a.config.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(a.config.MetricsTextfile); err != nil {
			a.logger.Warn("failed to write metrics", zap.Error(err))
		}
	}
	if err := a.status.Remove(); err != nil {
		a.logger.Warn("failed to remove status", zap.Error(err))
	}
	if err := a.registry.Clear(); err != nil {
		a.logger.Warn("failed to clear registration", zap.Error(err))
	}
	a.logger.Info("agent stopped", zap.Uint64("ticks", a.ticks))
}
