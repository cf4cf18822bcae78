// Package guard implements the session filter engine: a fixed-length focus
// session during which a deny list or allow list of apps is force-quit when
// they come to the foreground.
package guard

import (
	"fmt"
	"strings"
	"time"

	"github.com/anaygoyal09/Focus/internal/domain"
)

// DefaultAlwaysAllowed are OS shell and settings processes that are never filtered.
var DefaultAlwaysAllowed = []string{
	"com.apple.finder",
	"com.apple.dock",
	"com.apple.controlcenter",
	"com.apple.systempreferences",
	"com.apple.systemsettings",
}

// DefaultTickDuration is the countdown step per tick.
const DefaultTickDuration = time.Second

// Config holds engine tuning.
type Config struct {
	SelfID        string        // Bundle id of the host, always allowed
	AlwaysAllowed []string      // Defaults to DefaultAlwaysAllowed when nil
	TickDuration  time.Duration // Countdown step per tick, must match the tick source
}

// Engine owns the guard configuration and the session state.
// It is not safe for concurrent use.
type Engine struct {
	selfID    string
	tick      time.Duration
	allowed   map[string]struct{}
	cfg       *domain.GuardConfig
	session   domain.SessionState
	remaining time.Duration
}

// NewEngine creates an idle engine. A nil document is replaced by the default.
func NewEngine(cfg Config, doc *domain.GuardConfig) *Engine {
	ids := cfg.AlwaysAllowed
	if ids == nil {
		ids = DefaultAlwaysAllowed
	}
	allowed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		allowed[id] = struct{}{}
	}
	if doc == nil {
		doc = domain.DefaultGuardConfig()
	}
	tick := cfg.TickDuration
	if tick <= 0 {
		tick = DefaultTickDuration
	}
	return &Engine{selfID: cfg.SelfID, tick: tick, allowed: allowed, cfg: doc}
}

// Start begins a session of durationMinutes. No-op while running.
func (e *Engine) Start(now time.Time, durationMinutes int) []domain.Effect {
	if e.session.Running {
		return nil
	}
	e.remaining = max(time.Second, time.Duration(durationMinutes)*time.Minute)
	e.session = domain.SessionState{Running: true, StartedAt: now}
	e.syncRemaining()
	return []domain.Effect{domain.SessionStarted{Automation: e.automation(e.cfg.StartAutomation)}}
}

// Stop ends the session. No-op while idle.
func (e *Engine) Stop() []domain.Effect {
	if !e.session.Running {
		return nil
	}
	e.session = domain.SessionState{}
	e.remaining = 0
	return []domain.Effect{domain.SessionEnded{Automation: e.automation(e.cfg.EndAutomation)}}
}

func (e *Engine) automation(name string) string {
	if !e.cfg.EnableAutomation {
		return ""
	}
	return strings.TrimSpace(name)
}

// Tick advances the countdown by one tick duration and filters the
// frontmost app. The session stops on the tick that brings the countdown to zero.
func (e *Engine) Tick(frontmost *domain.AppIdentity) []domain.Effect {
	if !e.session.Running {
		return nil
	}
	var effects []domain.Effect
	if e.remaining > 0 {
		e.remaining = max(0, e.remaining-e.tick)
		e.syncRemaining()
		if eff, ok := e.evaluate(frontmost); ok {
			effects = append(effects, eff)
		}
	}
	if e.remaining <= 0 {
		effects = append(effects, e.Stop()...)
	}
	return effects
}

// syncRemaining publishes the countdown in whole seconds, rounded up.
func (e *Engine) syncRemaining() {
	e.session.RemainingSeconds = int((e.remaining + time.Second - 1) / time.Second)
}

func (e *Engine) evaluate(frontmost *domain.AppIdentity) (domain.Effect, bool) {
	if frontmost == nil || frontmost.ID == "" || frontmost.ID == e.selfID {
		return nil, false
	}
	if _, ok := e.allowed[frontmost.ID]; ok {
		return nil, false
	}
	listed := e.cfg.Lists(frontmost.ID)
	switch e.cfg.FilterMode {
	case domain.FilterAllow:
		if !listed {
			return domain.TerminateRequested{App: *frontmost, Reason: domain.ReasonNotAllowListed}, true
		}
	default:
		if listed {
			return domain.TerminateRequested{App: *frontmost, Reason: domain.ReasonDenyListed}, true
		}
	}
	return nil, false
}

// Configure replaces the whole document. Rejected while a session runs.
func (e *Engine) Configure(doc *domain.GuardConfig) ([]domain.Effect, error) {
	if e.session.Running {
		return nil, domain.ErrSessionRunning
	}
	if doc == nil || !doc.FilterMode.Valid() {
		return nil, fmt.Errorf("configure: %w", domain.ErrInvalidArgument)
	}
	e.cfg = doc.Clone()
	return []domain.Effect{domain.PersistRequested{}}, nil
}

// AddApp appends an app to the list. Duplicate bundle ids are ignored.
func (e *Engine) AddApp(bundleID, name string) ([]domain.Effect, error) {
	bundleID = strings.TrimSpace(bundleID)
	if bundleID == "" {
		return nil, fmt.Errorf("bundle id is empty: %w", domain.ErrInvalidArgument)
	}
	if e.cfg.Lists(bundleID) {
		return nil, nil
	}
	if name == "" {
		name = bundleID
	}
	e.cfg.Apps = append(e.cfg.Apps, domain.GuardedApp{BundleID: bundleID, Name: name})
	return []domain.Effect{domain.PersistRequested{}}, nil
}

// RemoveApp drops an app from the list.
func (e *Engine) RemoveApp(bundleID string) ([]domain.Effect, error) {
	for i, a := range e.cfg.Apps {
		if a.BundleID == bundleID {
			e.cfg.Apps = append(e.cfg.Apps[:i], e.cfg.Apps[i+1:]...)
			return []domain.Effect{domain.PersistRequested{}}, nil
		}
	}
	return nil, fmt.Errorf("remove %q: %w", bundleID, domain.ErrAppNotFound)
}

// SetFilterMode switches between deny and allow. Takes effect on the next tick.
func (e *Engine) SetFilterMode(mode domain.FilterMode) ([]domain.Effect, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("filter mode %q: %w", mode, domain.ErrInvalidArgument)
	}
	if e.cfg.FilterMode == mode {
		return nil, nil
	}
	e.cfg.FilterMode = mode
	return []domain.Effect{domain.PersistRequested{}}, nil
}

// SetDuration sets the length of the next session.
func (e *Engine) SetDuration(minutes int) ([]domain.Effect, error) {
	if minutes <= 0 {
		return nil, fmt.Errorf("duration %d: %w", minutes, domain.ErrInvalidArgument)
	}
	e.cfg.DurationMinutes = minutes
	return []domain.Effect{domain.PersistRequested{}}, nil
}

// SetAutomation configures the shortcuts run at session start and end.
// Empty names keep the current value.
func (e *Engine) SetAutomation(enabled bool, startName, endName string) []domain.Effect {
	e.cfg.EnableAutomation = enabled
	startName = strings.TrimSpace(startName)
	endName = strings.TrimSpace(endName)
	if startName != "" {
		e.cfg.StartAutomation = startName
	}
	if endName != "" {
		e.cfg.EndAutomation = endName
	}
	return []domain.Effect{domain.PersistRequested{}}
}

// Session returns the current session state.
func (e *Engine) Session() domain.SessionState {
	return e.session
}

// Snapshot returns a deep copy for observers.
func (e *Engine) Snapshot() domain.GuardSnapshot {
	return domain.GuardSnapshot{Config: e.cfg.Clone(), Session: e.session}
}

// Document returns a copy of the configuration for persistence.
func (e *Engine) Document() *domain.GuardConfig {
	return e.cfg.Clone()
}
