package domain

import "time"

// Effect is a side effect requested by an engine tick or intent.
// The set of effects is closed; engines never perform effects themselves.
type Effect interface {
	effect()
}

// WarningRequested asks for a one-time "time remaining" notification.
type WarningRequested struct {
	App       AppIdentity
	Remaining time.Duration
	Threshold time.Duration
}

// BlockRequested starts a block episode: terminate the app and show the blocker.
// Emitted once per episode.
type BlockRequested struct {
	App AppIdentity
}

// TerminateRequested asks for termination only (no blocker, no notification).
type TerminateRequested struct {
	App    AppIdentity
	Reason string
}

// PersistRequested is a checkpoint: the owning host should save its document.
type PersistRequested struct{}

// SessionStarted is emitted when a filter session starts.
// Automation is empty when no automation should run.
type SessionStarted struct {
	Automation string
}

// SessionEnded is emitted when a filter session ends, by countdown or by stop.
type SessionEnded struct {
	Automation string
}

func (WarningRequested) effect()   {}
func (BlockRequested) effect()     {}
func (TerminateRequested) effect() {}
func (PersistRequested) effect()   {}
func (SessionStarted) effect()     {}
func (SessionEnded) effect()       {}

// Termination reasons carried by TerminateRequested.
const (
	ReasonBudgetExhausted = "budget-exhausted"
	ReasonDenyListed      = "deny-listed"
	ReasonNotAllowListed  = "not-allow-listed"
)
