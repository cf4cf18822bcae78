// Package domain contains core business entities and interfaces.
// This is the innermost layer - no external dependencies.
package domain

import (
	"strings"
	"time"
)

// AppRole identifies which engine a running agent hosts.
type AppRole string

const (
	RoleAgent AppRole = "agent"
)

// AppIdentity is what the foreground oracle reports.
type AppIdentity struct {
	ID          string // Bundle identifier, stable per installation
	DisplayName string
	PID         int // Optional hint for termination, 0 when unknown
}

// TrackedApp is an application charged against a daily budget.
type TrackedApp struct {
	BundleID   string
	Name       string
	DailyLimit time.Duration
	UsedToday  time.Duration
}

// Remaining returns max(0, DailyLimit - UsedToday).
func (a TrackedApp) Remaining() time.Duration {
	if a.UsedToday >= a.DailyLimit {
		return 0
	}
	return a.DailyLimit - a.UsedToday
}

// Identity converts a tracked app to the identity used by effects.
func (a TrackedApp) Identity() AppIdentity {
	return AppIdentity{ID: a.BundleID, DisplayName: a.Name}
}

// Profile is a named collection of tracked apps ("focus mode").
type Profile struct {
	ID   string
	Name string
	Apps []TrackedApp
}

// FindApp returns the index of the app with the given bundle id, or -1.
func (p *Profile) FindApp(bundleID string) int {
	for i := range p.Apps {
		if p.Apps[i].BundleID == bundleID {
			return i
		}
	}
	return -1
}

// ProfileSet is the persisted document of the usage budget host.
type ProfileSet struct {
	Profiles        []Profile
	ActiveProfileID string // Empty when no profile is active
	LastReset       time.Time
}

// Find returns the profile with the given id, or nil.
func (s *ProfileSet) Find(id string) *Profile {
	if id == "" {
		return nil
	}
	for i := range s.Profiles {
		if s.Profiles[i].ID == id {
			return &s.Profiles[i]
		}
	}
	return nil
}

// FindByName returns the first profile whose name matches case-insensitively.
func (s *ProfileSet) FindByName(name string) *Profile {
	for i := range s.Profiles {
		if strings.EqualFold(s.Profiles[i].Name, name) {
			return &s.Profiles[i]
		}
	}
	return nil
}

// Active returns the active profile, or nil.
func (s *ProfileSet) Active() *Profile {
	return s.Find(s.ActiveProfileID)
}

// Clone returns a deep copy.
func (s *ProfileSet) Clone() *ProfileSet {
	out := &ProfileSet{
		ActiveProfileID: s.ActiveProfileID,
		LastReset:       s.LastReset,
		Profiles:        make([]Profile, len(s.Profiles)),
	}
	for i, p := range s.Profiles {
		out.Profiles[i] = Profile{ID: p.ID, Name: p.Name, Apps: append([]TrackedApp(nil), p.Apps...)}
	}
	return out
}

// Default profile ids are fixed so a fresh install is reproducible.
const (
	DefaultWorkProfileID   = "00000000-0000-4000-8000-000000000001"
	DefaultSocialProfileID = "00000000-0000-4000-8000-000000000002"
)

// DefaultProfileSet is substituted when the profile file is missing or corrupt.
func DefaultProfileSet(now time.Time) *ProfileSet {
	return &ProfileSet{
		Profiles: []Profile{
			{ID: DefaultWorkProfileID, Name: "Work"},
			{ID: DefaultSocialProfileID, Name: "Social Media"},
		},
		LastReset: now,
	}
}

// DefaultWarningThresholds: 30m, 25m, 15m, 10m, 5m, 4m, 3m, 2m, 1m, 30s, 10s, 5s.
func DefaultWarningThresholds() []time.Duration {
	secs := []int{1800, 1500, 900, 600, 300, 240, 180, 120, 60, 30, 10, 5}
	out := make([]time.Duration, len(secs))
	for i, s := range secs {
		out[i] = time.Duration(s) * time.Second
	}
	return out
}

// BlockKind enumerates the block state machine.
type BlockKind int

const (
	Unblocked BlockKind = iota
	Blocked
	PendingExtension
)

func (k BlockKind) String() string {
	switch k {
	case Blocked:
		return "blocked"
	case PendingExtension:
		return "pending-extension"
	default:
		return "unblocked"
	}
}

// BlockState is Unblocked, Blocked(app, sinceTick) or PendingExtension(app, sinceTick).
// App and SinceTick are meaningful only when Kind != Unblocked.
type BlockState struct {
	Kind      BlockKind
	App       AppIdentity
	SinceTick uint64
}

// IsBlocked reports whether a block episode is in progress.
func (b BlockState) IsBlocked() bool {
	return b.Kind != Unblocked
}

// BudgetSnapshot is a read-only view handed to observers.
type BudgetSnapshot struct {
	Profiles *ProfileSet
	Block    BlockState
	Tick     uint64
}

// FilterMode selects how the guarded app list is interpreted.
type FilterMode string

const (
	FilterDeny  FilterMode = "deny"  // Block list: listed apps are terminated
	FilterAllow FilterMode = "allow" // Allow list: unlisted apps are terminated
)

// Valid reports whether m is a known mode.
func (m FilterMode) Valid() bool {
	return m == FilterDeny || m == FilterAllow
}

// GuardedApp is an entry of the session filter list.
type GuardedApp struct {
	BundleID string
	Name     string
}

// GuardConfig is the persisted document of the session filter host.
type GuardConfig struct {
	DurationMinutes  int
	FilterMode       FilterMode
	Apps             []GuardedApp
	EnableAutomation bool
	StartAutomation  string
	EndAutomation    string
}

// Clone returns a deep copy.
func (c *GuardConfig) Clone() *GuardConfig {
	out := *c
	out.Apps = append([]GuardedApp(nil), c.Apps...)
	return &out
}

// Lists reports whether bundleID is in the configured app list.
func (c *GuardConfig) Lists(bundleID string) bool {
	for _, a := range c.Apps {
		if a.BundleID == bundleID {
			return true
		}
	}
	return false
}

// DefaultGuardConfig is substituted when the config file is missing or corrupt.
func DefaultGuardConfig() *GuardConfig {
	return &GuardConfig{
		DurationMinutes: 60,
		FilterMode:      FilterDeny,
		StartAutomation: "Enable Focus",
		EndAutomation:   "Disable Focus",
	}
}

// SessionState is Idle or Running(remainingSeconds, startedAt).
type SessionState struct {
	Running          bool
	RemainingSeconds int
	StartedAt        time.Time
}

// GuardSnapshot is a read-only view of the session filter engine.
type GuardSnapshot struct {
	Config  *GuardConfig
	Session SessionState
}

// AgentState is the liveness record of a running agent.
type AgentState struct {
	PID               int
	Role              AppRole
	StartedAt         time.Time
	LastHeartbeat     time.Time
	HeartbeatInterval time.Duration // Zero when the agent did not report one
	AppVersion        string
}
