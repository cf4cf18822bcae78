package domain

import "context"

// ForegroundOracle reports the frontmost application.
// Implementation: osascript against System Events.
type ForegroundOracle interface {
	// ForegroundApp returns nil when nothing is resolvable this tick.
	ForegroundApp(ctx context.Context) (*AppIdentity, error)
}

// ProcessController handles OS process operations.
// Implementation: uses gopsutil for cross-platform support.
type ProcessController interface {
	// Terminate asks the app to quit (SIGTERM). Best-effort.
	Terminate(app AppIdentity) error

	// IsRunning checks if a PID exists and is running.
	IsRunning(pid int) bool

	// GetCurrentPID returns the current process PID.
	GetCurrentPID() int
}

// Notifier delivers user-visible notifications.
type Notifier interface {
	Notify(title, body string) error
}

// AutomationRunner invokes a named user automation (a Shortcuts shortcut).
type AutomationRunner interface {
	RunAutomation(name string) error
}

// ProfileStore persists the usage budget document.
type ProfileStore interface {
	Load() (*ProfileSet, error)
	Save(set *ProfileSet) error
}

// GuardConfigStore persists the session filter document.
type GuardConfigStore interface {
	Load() (*GuardConfig, error)
	Save(cfg *GuardConfig) error
}

// StatusWriter publishes snapshots for observers that cannot talk to the agent.
type StatusWriter interface {
	WriteStatus(status *Status) error
	ReadStatus() (*Status, error)
}

// IntentQueue carries intents from clients to the running agent.
type IntentQueue interface {
	// Enqueue submits an intent.
	Enqueue(intent Intent) error

	// Drain removes and returns all pending intents in submission order.
	Drain() ([]Intent, error)
}

// AgentRegistry records the running agent for liveness checks.
// Implementation: SQLCipher encrypted database.
type AgentRegistry interface {
	// Register saves the current agent's PID.
	Register(state AgentState) error

	// UpdateHeartbeat updates timestamp for liveness check.
	UpdateHeartbeat() error

	// Get returns the registered agent, or nil.
	Get() (*AgentState, error)

	// Clear removes the registration (clean shutdown).
	Clear() error
}

// KeyProvider abstracts the source of encryption keys.
type KeyProvider interface {
	// GetKey returns the encryption key bytes.
	GetKey() ([]byte, error)

	// StoreKey persists a new encryption key.
	StoreKey(key []byte) error

	// KeyExists checks if a key has been generated.
	KeyExists() bool
}

// SecretStore provides encrypted persistent storage for secrets.
type SecretStore interface {
	// GetSecret retrieves a secret by key.
	GetSecret(key string) (string, error)

	// SetSecret stores a secret.
	SetSecret(key, value string) error

	// Close releases resources (e.g., database connection).
	Close() error
}

// LaunchAgentManager handles macOS LaunchAgent plist operations.
type LaunchAgentManager interface {
	// Install creates and loads the LaunchAgent plist.
	Install(execPath string) error

	// Uninstall unloads and removes the LaunchAgent plist.
	Uninstall() error

	// IsInstalled checks if LaunchAgent is installed.
	IsInstalled() bool

	// GetPlistPath returns the plist file path.
	GetPlistPath() string
}
