package domain

import "time"

// Status is the observer snapshot the agent publishes for clients.
type Status struct {
	UpdatedAt     time.Time     `json:"updated_at"`
	PID           int           `json:"pid"`
	Tick          uint64        `json:"tick"`
	ActiveProfile string        `json:"active_profile,omitempty"`
	Apps          []AppStatus   `json:"apps"`
	Block         BlockStatus   `json:"block"`
	Session       SessionStatus `json:"session"`
}

// AppStatus is one tracked app of the active profile.
type AppStatus struct {
	BundleID         string `json:"bundle_id"`
	Name             string `json:"name"`
	UsedSeconds      int64  `json:"used_seconds"`
	LimitSeconds     int64  `json:"limit_seconds"`
	RemainingSeconds int64  `json:"remaining_seconds"`
}

// BlockStatus mirrors BlockState.
type BlockStatus struct {
	State    string `json:"state"`
	BundleID string `json:"bundle_id,omitempty"`
	Name     string `json:"name,omitempty"`
}

// SessionStatus mirrors SessionState plus the filter mode in force.
type SessionStatus struct {
	Running          bool       `json:"running"`
	RemainingSeconds int        `json:"remaining_seconds"`
	StartedAt        time.Time  `json:"started_at,omitempty"`
	FilterMode       FilterMode `json:"filter_mode"`
}

// NewStatus builds the observer snapshot from both engines.
func NewStatus(now time.Time, pid int, budget BudgetSnapshot, guard GuardSnapshot) *Status {
	st := &Status{
		UpdatedAt: now,
		PID:       pid,
		Tick:      budget.Tick,
		Apps:      []AppStatus{},
		Block:     BlockStatus{State: budget.Block.Kind.String()},
	}
	if budget.Block.IsBlocked() {
		st.Block.BundleID = budget.Block.App.ID
		st.Block.Name = budget.Block.App.DisplayName
	}
	if budget.Profiles != nil {
		if p := budget.Profiles.Active(); p != nil {
			st.ActiveProfile = p.Name
			for _, a := range p.Apps {
				st.Apps = append(st.Apps, AppStatus{
					BundleID:         a.BundleID,
					Name:             a.Name,
					UsedSeconds:      int64(a.UsedToday / time.Second),
					LimitSeconds:     int64(a.DailyLimit / time.Second),
					RemainingSeconds: int64(a.Remaining() / time.Second),
				})
			}
		}
	}
	st.Session = SessionStatus{
		Running:          guard.Session.Running,
		RemainingSeconds: guard.Session.RemainingSeconds,
		StartedAt:        guard.Session.StartedAt,
	}
	if guard.Config != nil {
		st.Session.FilterMode = guard.Config.FilterMode
	}
	return st
}
