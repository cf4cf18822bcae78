package usecase

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"go.uber.org/zap"

	"github.com/anaygoyal09/Focus/internal/budget"
	"github.com/anaygoyal09/Focus/internal/domain"
	"github.com/anaygoyal09/Focus/internal/guard"
	"github.com/anaygoyal09/Focus/internal/metrics"
)

// DefaultExtensionMinutes is granted when an extension intent carries no amount.
const DefaultExtensionMinutes = 5

const (
	docProfiles = "profiles"
	docGuard    = "guard"
)

// HostConfig configures both engines.
type HostConfig struct {
	Budget           budget.Config
	Guard            guard.Config
	ExtensionMinutes int
}

// Host owns both engines and their documents. Every tick and intent goes
// through it, so callers must serialise access.
type Host struct {
	budget     *budget.Engine
	guard      *guard.Engine
	profiles   domain.ProfileStore
	guardStore domain.GuardConfigStore
	enforcer   *Enforcer
	extension  int
	logger     *zap.Logger
}

// NewHost loads both documents and builds the engines. A missing or corrupt
// document is replaced by its default; load errors are never fatal.
func NewHost(
	cfg HostConfig,
	profiles domain.ProfileStore,
	guardStore domain.GuardConfigStore,
	enforcer *Enforcer,
	logger *zap.Logger,
) *Host {
	set, err := profiles.Load()
	if err != nil {
		logLoadFailure(logger, docProfiles, err)
		set = domain.DefaultProfileSet(time.Time{})
	}
	doc, err := guardStore.Load()
	if err != nil {
		logLoadFailure(logger, docGuard, err)
		doc = domain.DefaultGuardConfig()
	}
	if cfg.ExtensionMinutes <= 0 {
		cfg.ExtensionMinutes = DefaultExtensionMinutes
	}
	return &Host{
		budget:     budget.NewEngine(cfg.Budget, set),
		guard:      guard.NewEngine(cfg.Guard, doc),
		profiles:   profiles,
		guardStore: guardStore,
		enforcer:   enforcer,
		extension:  cfg.ExtensionMinutes,
		logger:     logger,
	}
}

func logLoadFailure(logger *zap.Logger, doc string, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("no saved document, using defaults", zap.String("document", doc))
		return
	}
	logger.Warn("failed to load document, using defaults",
		zap.String("document", doc),
		zap.Error(err))
}

// Tick feeds one observation of the frontmost app to both engines.
func (h *Host) Tick(now time.Time, frontmost *domain.AppIdentity) {
	metrics.TicksTotal.WithLabelValues(docProfiles).Inc()
	h.dispatch(docProfiles, h.budget.Tick(now, frontmost))

	if h.guard.Session().Running {
		metrics.TicksTotal.WithLabelValues(docGuard).Inc()
	}
	h.dispatch(docGuard, h.guard.Tick(frontmost))

	h.observe()
}

func (h *Host) observe() {
	metrics.AppUsedSeconds.Reset()
	if p := h.budget.Snapshot().Profiles.Active(); p != nil {
		for _, a := range p.Apps {
			metrics.AppUsedSeconds.WithLabelValues(a.BundleID).Set(a.UsedToday.Seconds())
		}
	}
	metrics.SessionRemainingSeconds.Set(float64(h.guard.Session().RemainingSeconds))
}

func (h *Host) dispatch(doc string, effects []domain.Effect) {
	if len(effects) == 0 {
		return
	}
	if h.enforcer.Execute(effects) {
		h.save(doc)
	}
}

func (h *Host) save(doc string) {
	var err error
	switch doc {
	case docProfiles:
		err = h.profiles.Save(h.budget.Document())
	case docGuard:
		err = h.guardStore.Save(h.guard.Document())
	}
	if err != nil {
		metrics.PersistFailures.WithLabelValues(doc).Inc()
		h.logger.Warn("failed to save document, keeping state in memory",
			zap.String("document", doc),
			zap.Error(err))
	}
}

// Flush saves both documents. Called on shutdown.
func (h *Host) Flush() {
	h.save(docProfiles)
	h.save(docGuard)
}

// Apply executes a user intent. Intents that are invalid in the current state
// are no-ops; only malformed intents and unknown references return errors.
func (h *Host) Apply(now time.Time, in domain.Intent) error {
	err := h.apply(now, in)
	metrics.IntentsTotal.WithLabelValues(string(in.Kind), metrics.Result(err)).Inc()
	if err != nil {
		h.logger.Warn("intent rejected",
			zap.String("id", in.ID),
			zap.String("kind", string(in.Kind)),
			zap.Error(err))
		return err
	}
	h.logger.Info("intent applied",
		zap.String("id", in.ID),
		zap.String("kind", string(in.Kind)))
	return nil
}

func (h *Host) apply(now time.Time, in domain.Intent) error {
	switch in.Kind {
	case domain.IntentActivateProfile:
		id, err := h.budget.Resolve(in.ProfileID)
		if err != nil {
			return err
		}
		return h.budgetOp(h.budget.Activate(id))
	case domain.IntentDeactivateProfile:
		h.dispatch(docProfiles, h.budget.Deactivate())
	case domain.IntentAddProfile:
		_, effects, err := h.budget.AddProfile(in.Name)
		return h.budgetOp(effects, err)
	case domain.IntentRemoveProfile:
		id, err := h.budget.Resolve(in.ProfileID)
		if err != nil {
			return err
		}
		return h.budgetOp(h.budget.RemoveProfile(id))
	case domain.IntentRenameProfile:
		id, err := h.budget.Resolve(in.ProfileID)
		if err != nil {
			return err
		}
		return h.budgetOp(h.budget.RenameProfile(id, in.Name))
	case domain.IntentAddApp:
		id, err := h.budget.Resolve(in.ProfileID)
		if err != nil {
			return err
		}
		return h.budgetOp(h.budget.AddApp(id, in.BundleID, in.AppName, in.Limit))
	case domain.IntentRemoveApp:
		id, err := h.budget.Resolve(in.ProfileID)
		if err != nil {
			return err
		}
		return h.budgetOp(h.budget.RemoveApp(id, in.BundleID))
	case domain.IntentSetLimit:
		id, err := h.budget.Resolve(in.ProfileID)
		if err != nil {
			return err
		}
		return h.budgetOp(h.budget.SetLimit(id, in.BundleID, in.Limit))
	case domain.IntentGrantExtension:
		minutes := in.Minutes
		if minutes <= 0 {
			minutes = h.extension
		}
		effects := h.budget.GrantExtension(minutes)
		metrics.ExtensionsTotal.WithLabelValues(extensionResult(effects)).Inc()
		h.dispatch(docProfiles, effects)
	case domain.IntentDismissBlock:
		h.budget.DismissBlock()
	case domain.IntentRequestExtension:
		h.budget.RequestExtension()
	case domain.IntentCancelExtension:
		h.budget.CancelExtension()

	case domain.IntentSessionStart:
		minutes := in.Minutes
		if minutes <= 0 {
			minutes = h.guard.Snapshot().Config.DurationMinutes
		}
		h.dispatch(docGuard, h.guard.Start(now, minutes))
	case domain.IntentSessionStop:
		h.dispatch(docGuard, h.guard.Stop())
	case domain.IntentGuardAddApp:
		return h.guardOp(h.guard.AddApp(in.BundleID, in.AppName))
	case domain.IntentGuardRemoveApp:
		return h.guardOp(h.guard.RemoveApp(in.BundleID))
	case domain.IntentGuardMode:
		return h.guardOp(h.guard.SetFilterMode(in.FilterMode))
	case domain.IntentGuardDuration:
		return h.guardOp(h.guard.SetDuration(in.Minutes))
	case domain.IntentGuardAutomation:
		h.dispatch(docGuard, h.guard.SetAutomation(in.Enabled, in.StartName, in.EndName))
	default:
		return fmt.Errorf("%q: %w", in.Kind, domain.ErrUnknownIntent)
	}
	return nil
}

func extensionResult(effects []domain.Effect) string {
	if len(effects) == 0 {
		return "ignored"
	}
	return "granted"
}

func (h *Host) budgetOp(effects []domain.Effect, err error) error {
	if err != nil {
		return err
	}
	h.dispatch(docProfiles, effects)
	return nil
}

func (h *Host) guardOp(effects []domain.Effect, err error) error {
	if err != nil {
		return err
	}
	h.dispatch(docGuard, effects)
	return nil
}

// Refresh applies the daily reset to the loaded documents without saving.
// Clients that read the documents while no agent runs call it before
// building a snapshot.
func (h *Host) Refresh(now time.Time) {
	h.budget.Rollover(now)
}

// Status builds the observer snapshot.
func (h *Host) Status(now time.Time, pid int) *domain.Status {
	return domain.NewStatus(now, pid, h.budget.Snapshot(), h.guard.Snapshot())
}

// ResolveProfile maps a profile id or name to its id; empty means active.
func (h *Host) ResolveProfile(ref string) (string, error) {
	return h.budget.Resolve(ref)
}

// BlockKind reports the current block state without copying the documents.
func (h *Host) BlockKind() domain.BlockKind {
	return h.budget.Block().Kind
}

// Budget returns a snapshot of the usage budget engine.
func (h *Host) Budget() domain.BudgetSnapshot {
	return h.budget.Snapshot()
}

// Guard returns a snapshot of the session filter engine.
func (h *Host) Guard() domain.GuardSnapshot {
	return h.guard.Snapshot()
}
