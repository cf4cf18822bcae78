package infra

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlcipher "github.com/mutecomm/go-sqlcipher/v4"

	"github.com/anaygoyal09/Focus/internal/domain"
)

// Ensure sqlcipher driver is registered.
var _ = sqlcipher.ErrBusy

const (
	vaultDBName = "vault.db"
)

// EncryptedRegistry implements domain.AgentRegistry and domain.SecretStore
// using a SQLCipher encrypted SQLite database.
type EncryptedRegistry struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// NewEncryptedRegistry opens (or creates) the encrypted vault in dataDir.
// The key is used as the SQLCipher passphrase via PRAGMA key.
func NewEncryptedRegistry(dataDir string, key []byte) (*EncryptedRegistry, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, vaultDBName)
	keyHex := hex.EncodeToString(key)

	// Open with SQLCipher key as DSN parameter
	dsn := fmt.Sprintf("%s?_pragma_key=x'%s'&_pragma_cipher_page_size=4096", dbPath, keyHex)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open encrypted database: %w", err)
	}

	// Verify encryption works by running a query
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to encrypted database: %w", err)
	}

	reg := &EncryptedRegistry{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}

	if err := reg.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return reg, nil
}

// OpenVault opens the vault with the key from provider, generating one on first use.
func OpenVault(dataDir string, provider domain.KeyProvider) (*EncryptedRegistry, error) {
	key, err := EnsureKey(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain vault key: %w", err)
	}
	return NewEncryptedRegistry(dataDir, key)
}

// createTables creates the schema if it doesn't exist.
func (r *EncryptedRegistry) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS agent_state (
		role TEXT PRIMARY KEY,
		pid INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		last_heartbeat INTEGER NOT NULL,
		heartbeat_interval_ms INTEGER NOT NULL DEFAULT 0,
		app_version TEXT DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS secrets (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	`
	_, err := r.db.Exec(schema)
	return err
}

// --- domain.AgentRegistry implementation ---

// Register records the running agent, replacing any stale record.
func (r *EncryptedRegistry) Register(agent domain.AgentState) error {
	if agent.Role == "" {
		agent.Role = domain.RoleAgent
	}
	now := r.now()
	if agent.StartedAt.IsZero() {
		agent.StartedAt = now
	}
	_, err := r.db.Exec(`
		INSERT OR REPLACE INTO agent_state (role, pid, started_at, last_heartbeat, heartbeat_interval_ms, app_version)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(agent.Role), agent.PID, agent.StartedAt.Unix(), now.Unix(),
		agent.HeartbeatInterval.Milliseconds(), agent.AppVersion,
	)
	return err
}

// UpdateHeartbeat updates timestamp for liveness check.
func (r *EncryptedRegistry) UpdateHeartbeat() error {
	result, err := r.db.Exec(`UPDATE agent_state SET last_heartbeat = ? WHERE role = ?`,
		r.now().Unix(), string(domain.RoleAgent))
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("heartbeat: %w", domain.ErrAgentNotRunning)
	}
	return nil
}

// Get returns the registered agent, or nil when none is registered.
func (r *EncryptedRegistry) Get() (*domain.AgentState, error) {
	var (
		pid       int
		started   int64
		heartbeat int64
		interval  int64
		version   string
	)
	err := r.db.QueryRow(`SELECT pid, started_at, last_heartbeat, heartbeat_interval_ms, app_version
		FROM agent_state WHERE role = ?`,
		string(domain.RoleAgent)).Scan(&pid, &started, &heartbeat, &interval, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.AgentState{
		PID:               pid,
		Role:              domain.RoleAgent,
		StartedAt:         time.Unix(started, 0),
		LastHeartbeat:     time.Unix(heartbeat, 0),
		HeartbeatInterval: time.Duration(interval) * time.Millisecond,
		AppVersion:        version,
	}, nil
}

// Clear removes the registration (clean shutdown).
func (r *EncryptedRegistry) Clear() error {
	_, err := r.db.Exec(`DELETE FROM agent_state`)
	return err
}

// Path returns the database file path.
func (r *EncryptedRegistry) Path() string {
	return r.dbPath
}

// --- domain.SecretStore implementation ---

// GetSecret retrieves a secret by key.
func (r *EncryptedRegistry) GetSecret(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM secrets WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("secret %q: %w", key, domain.ErrSecretNotFound)
	}
	return value, err
}

// SetSecret stores a secret.
func (r *EncryptedRegistry) SetSecret(key, value string) error {
	_, err := r.db.Exec(`INSERT OR REPLACE INTO secrets (key, value, created_at) VALUES (?, ?, ?)`,
		key, value, r.now().Unix())
	return err
}

// Close releases the database connection.
func (r *EncryptedRegistry) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ensure EncryptedRegistry implements both interfaces.
var _ domain.AgentRegistry = (*EncryptedRegistry)(nil)
var _ domain.SecretStore = (*EncryptedRegistry)(nil)
