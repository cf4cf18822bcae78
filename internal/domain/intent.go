package domain

import "time"

// IntentKind names a user intent submitted by a client.
type IntentKind string

const (
	IntentActivateProfile   IntentKind = "activate_profile"
	IntentDeactivateProfile IntentKind = "deactivate_profile"
	IntentAddProfile        IntentKind = "add_profile"
	IntentRemoveProfile     IntentKind = "remove_profile"
	IntentRenameProfile     IntentKind = "rename_profile"
	IntentAddApp            IntentKind = "add_app"
	IntentRemoveApp         IntentKind = "remove_app"
	IntentSetLimit          IntentKind = "set_limit"
	IntentGrantExtension    IntentKind = "grant_extension"
	IntentDismissBlock      IntentKind = "dismiss_block"
	IntentRequestExtension  IntentKind = "request_extension"
	IntentCancelExtension   IntentKind = "cancel_extension"

	IntentSessionStart    IntentKind = "session_start"
	IntentSessionStop     IntentKind = "session_stop"
	IntentGuardAddApp     IntentKind = "guard_add_app"
	IntentGuardRemoveApp  IntentKind = "guard_remove_app"
	IntentGuardMode       IntentKind = "guard_mode"
	IntentGuardDuration   IntentKind = "guard_duration"
	IntentGuardAutomation IntentKind = "guard_automation"
)

// Intent is a serialisable request from a client (CLI, menu bar) to the agent.
// Only the fields relevant to Kind are set.
type Intent struct {
	ID          string        `json:"id"`
	Kind        IntentKind    `json:"kind"`
	SubmittedAt time.Time     `json:"submitted_at"`
	ProfileID   string        `json:"profile_id,omitempty"`
	Name        string        `json:"name,omitempty"`
	BundleID    string        `json:"bundle_id,omitempty"`
	AppName     string        `json:"app_name,omitempty"`
	Limit       time.Duration `json:"limit,omitempty"`
	Minutes     int           `json:"minutes,omitempty"`
	FilterMode  FilterMode    `json:"filter_mode,omitempty"`
	Enabled     bool          `json:"enabled,omitempty"`
	StartName   string        `json:"start_name,omitempty"`
	EndName     string        `json:"end_name,omitempty"`
}
