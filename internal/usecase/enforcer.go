// Package usecase contains application business logic.
package usecase

import (
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/anaygoyal09/Focus/internal/domain"
	"github.com/anaygoyal09/Focus/internal/metrics"
)

// Enforcer carries out the effects requested by the engines.
// Collaborator failures are logged and counted; the next tick retries.
type Enforcer struct {
	processes  domain.ProcessController
	notifier   domain.Notifier
	automation domain.AutomationRunner
	logger     *zap.Logger
}

// NewEnforcer creates an effect enforcer.
func NewEnforcer(
	pc domain.ProcessController,
	n domain.Notifier,
	ar domain.AutomationRunner,
	logger *zap.Logger,
) *Enforcer {
	return &Enforcer{
		processes:  pc,
		notifier:   n,
		automation: ar,
		logger:     logger,
	}
}

// Execute performs effects in order and reports whether a checkpoint was requested.
// Multiple PersistRequested in one batch collapse into one save.
func (e *Enforcer) Execute(effects []domain.Effect) (persist bool) {
	for _, eff := range effects {
		switch v := eff.(type) {
		case domain.WarningRequested:
			e.warn(v)
		case domain.BlockRequested:
			e.block(v)
		case domain.TerminateRequested:
			e.terminate(v.App, v.Reason)
		case domain.PersistRequested:
			persist = true
		case domain.SessionStarted:
			e.logger.Info("filter session started")
			e.automate(v.Automation)
		case domain.SessionEnded:
			e.logger.Info("filter session ended")
			e.automate(v.Automation)
		default:
			e.logger.Error("unknown effect", zap.String("type", fmt.Sprintf("%T", eff)))
		}
	}
	return persist
}

func (e *Enforcer) warn(w domain.WarningRequested) {
	metrics.WarningsTotal.WithLabelValues(strconv.Itoa(int(w.Threshold / time.Second))).Inc()
	title, body := WarningMessage(w.Threshold, w.App.DisplayName)
	e.logger.Info("time warning",
		zap.String("app", w.App.ID),
		zap.Duration("remaining", w.Remaining),
		zap.Duration("threshold", w.Threshold))
	e.notify(title, body)
}

func (e *Enforcer) block(b domain.BlockRequested) {
	metrics.BlocksTotal.Inc()
	e.logger.Info("daily limit reached, blocking",
		zap.String("app", b.App.ID),
		zap.Int("pid", b.App.PID))
	e.terminate(b.App, domain.ReasonBudgetExhausted)
	title, body := BlockMessage(b.App.DisplayName)
	e.notify(title, body)
}

func (e *Enforcer) terminate(app domain.AppIdentity, reason string) {
	err := e.processes.Terminate(app)
	metrics.TerminationsTotal.WithLabelValues(reason, metrics.Result(err)).Inc()
	if err != nil {
		e.logger.Warn("failed to terminate app",
			zap.String("app", app.ID),
			zap.Int("pid", app.PID),
			zap.String("reason", reason),
			zap.Error(err))
		return
	}
	e.logger.Debug("terminated app",
		zap.String("app", app.ID),
		zap.Int("pid", app.PID),
		zap.String("reason", reason))
}

func (e *Enforcer) notify(title, body string) {
	err := e.notifier.Notify(title, body)
	metrics.NotificationsTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		e.logger.Warn("failed to deliver notification",
			zap.String("title", title),
			zap.Error(err))
	}
}

func (e *Enforcer) automate(name string) {
	if name == "" {
		return
	}
	err := e.automation.RunAutomation(name)
	metrics.AutomationsTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		e.logger.Warn("failed to run automation",
			zap.String("shortcut", name),
			zap.Error(err))
	}
}
