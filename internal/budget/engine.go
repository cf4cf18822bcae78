// Package budget implements the usage budget engine: per-app daily foreground
// time accounting, one-shot threshold warnings and the block/extension flow.
//
// The engine is a pure state machine. Every operation returns the effects the
// host must perform; nothing here touches the OS, the clock or the disk.
package budget

import (
	"time"

	"github.com/google/uuid"

	"github.com/anaygoyal09/Focus/internal/domain"
)

const (
	// DefaultTickDuration is the amount charged per observed tick.
	DefaultTickDuration = time.Second

	// DefaultAppLimit is the budget given to a newly tracked app.
	DefaultAppLimit = 30 * time.Minute

	// MinAppLimit is the smallest daily limit a user can configure.
	MinAppLimit = 5 * time.Minute

	// checkpointEvery triggers PersistRequested when usage crosses a multiple of it.
	checkpointEvery = time.Minute
)

// Config holds engine tuning.
type Config struct {
	SelfID          string          // Bundle id of the host, never charged
	TickDuration    time.Duration   // Usage added per qualifying tick
	Thresholds      []time.Duration // Warning thresholds, any order
	DefaultAppLimit time.Duration
	MinAppLimit     time.Duration
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		TickDuration:    DefaultTickDuration,
		Thresholds:      domain.DefaultWarningThresholds(),
		DefaultAppLimit: DefaultAppLimit,
		MinAppLimit:     MinAppLimit,
	}
}

// Engine owns the profile set, the block state and the fired-threshold marks.
// It is not safe for concurrent use; the host serialises ticks and intents.
type Engine struct {
	cfg   Config
	set   *domain.ProfileSet
	block domain.BlockState
	fired firedSet
	tick  uint64
	newID func() string
}

// NewEngine creates an engine over set. A nil set is replaced by the default
// profile set dated at the zero time, so the first tick performs a rollover.
func NewEngine(cfg Config, set *domain.ProfileSet) *Engine {
	if cfg.TickDuration <= 0 {
		cfg.TickDuration = DefaultTickDuration
	}
	if cfg.DefaultAppLimit <= 0 {
		cfg.DefaultAppLimit = DefaultAppLimit
	}
	if cfg.MinAppLimit <= 0 {
		cfg.MinAppLimit = MinAppLimit
	}
	cfg.Thresholds = normalizeThresholds(cfg.Thresholds)
	if set == nil {
		set = domain.DefaultProfileSet(time.Time{})
	}
	return &Engine{
		cfg:   cfg,
		set:   set,
		fired: make(firedSet),
		newID: uuid.NewString,
	}
}

// Tick evaluates one observation of the frontmost app.
func (e *Engine) Tick(now time.Time, frontmost *domain.AppIdentity) []domain.Effect {
	e.tick++
	effects := e.Rollover(now)

	profile := e.set.Active()
	if profile == nil || frontmost == nil || frontmost.ID == "" {
		return effects
	}
	if frontmost.ID == e.cfg.SelfID {
		return effects
	}
	idx := profile.FindApp(frontmost.ID)
	if idx < 0 {
		return effects
	}

	app := &profile.Apps[idx]
	app.UsedToday += e.cfg.TickDuration

	target := app.Identity()
	target.PID = frontmost.PID

	if remaining := app.Remaining(); remaining <= 0 {
		effects = append(effects, e.exhausted(target))
	} else if w, ok := e.warning(target, remaining); ok {
		effects = append(effects, w)
	}

	if app.UsedToday%checkpointEvery == 0 {
		effects = append(effects, domain.PersistRequested{})
	}
	return effects
}

// exhausted starts a block episode, or asks for termination again while one
// is already in progress. First app to exhaust keeps the episode.
func (e *Engine) exhausted(target domain.AppIdentity) domain.Effect {
	if e.block.Kind == domain.Unblocked {
		e.block = domain.BlockState{Kind: domain.Blocked, App: target, SinceTick: e.tick}
		return domain.BlockRequested{App: target}
	}
	return domain.TerminateRequested{App: target, Reason: domain.ReasonBudgetExhausted}
}

func (e *Engine) warning(target domain.AppIdentity, remaining time.Duration) (domain.Effect, bool) {
	t, ok := matchThreshold(e.cfg.Thresholds, remaining)
	if !ok || !e.fired.markOnce(target.ID, t) {
		return nil, false
	}
	return domain.WarningRequested{App: target, Remaining: remaining, Threshold: t}, true
}

// Rollover resets every app's usage and all warning marks when now falls on a
// different calendar day than the last reset. Idempotent within a day.
func (e *Engine) Rollover(now time.Time) []domain.Effect {
	if sameDay(e.set.LastReset, now) {
		return nil
	}
	for pi := range e.set.Profiles {
		apps := e.set.Profiles[pi].Apps
		for ai := range apps {
			apps[ai].UsedToday = 0
		}
	}
	e.fired.clearAll()
	e.set.LastReset = now
	return []domain.Effect{domain.PersistRequested{}}
}

func sameDay(a, b time.Time) bool {
	if a.IsZero() {
		return false
	}
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// GrantExtension raises the blocked app's limit by minutes and ends the block.
// No-op unless a block episode is in progress.
func (e *Engine) GrantExtension(minutes int) []domain.Effect {
	if !e.block.IsBlocked() || minutes <= 0 {
		return nil
	}
	profile := e.set.Active()
	if profile == nil {
		return nil
	}
	idx := profile.FindApp(e.block.App.ID)
	if idx < 0 {
		return nil
	}
	profile.Apps[idx].DailyLimit += time.Duration(minutes) * time.Minute
	e.fired.clearApp(e.block.App.ID)
	e.block = domain.BlockState{}
	return []domain.Effect{domain.PersistRequested{}}
}

// DismissBlock ends the block episode without touching limits or marks.
func (e *Engine) DismissBlock() {
	e.block = domain.BlockState{}
}

// RequestExtension records that the passphrase prompt is open.
func (e *Engine) RequestExtension() {
	if e.block.Kind == domain.Blocked {
		e.block.Kind = domain.PendingExtension
	}
}

// CancelExtension returns from the passphrase prompt to the plain block.
func (e *Engine) CancelExtension() {
	if e.block.Kind == domain.PendingExtension {
		e.block.Kind = domain.Blocked
	}
}

// Block returns the current block state.
func (e *Engine) Block() domain.BlockState {
	return e.block
}

// Fired reports whether the (app, threshold) warning fired this period.
func (e *Engine) Fired(appID string, threshold time.Duration) bool {
	return e.fired.has(appID, threshold)
}

// Snapshot returns a deep copy for observers.
func (e *Engine) Snapshot() domain.BudgetSnapshot {
	return domain.BudgetSnapshot{
		Profiles: e.set.Clone(),
		Block:    e.block,
		Tick:     e.tick,
	}
}

// Document returns a copy of the profile set for persistence.
func (e *Engine) Document() *domain.ProfileSet {
	return e.set.Clone()
}
