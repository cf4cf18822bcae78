package daemon

import (
	"time"

	"github.com/anaygoyal09/Focus/internal/domain"
)

// staleHeartbeats is how many heartbeats may be missed before the agent
// is considered gone.
const staleHeartbeats = 3

// StaleAfter is how long a heartbeat of state stays valid. Agents that did
// not report their interval are judged by the default one.
func StaleAfter(state *domain.AgentState) time.Duration {
	interval := defaultHeartbeatInterval
	if state != nil && state.HeartbeatInterval > 0 {
		interval = state.HeartbeatInterval
	}
	return staleHeartbeats * interval
}

// FindAgent returns the registered agent when it is alive: its process
// exists and its heartbeat is recent. A crashed agent leaves a stale record
// behind, which is reported as not running.
func FindAgent(registry domain.AgentRegistry, processes domain.ProcessController, now time.Time) (*domain.AgentState, bool) {
	state, err := registry.Get()
	if err != nil || state == nil {
		return nil, false
	}
	if !processes.IsRunning(state.PID) {
		return state, false
	}
	if now.Sub(state.LastHeartbeat) > StaleAfter(state) {
		return state, false
	}
	return state, true
}
