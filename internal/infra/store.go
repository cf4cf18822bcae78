package infra

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/anaygoyal09/Focus/internal/domain"
)

const (
	profilesFileName = "profiles.json"
	guardFileName    = "guard.json"
	statusFileName   = "status.json"

	documentVersion = 1
)

// profileSetFile is the on-disk form of domain.ProfileSet.
type profileSetFile struct {
	Version         int           `json:"version"`
	ActiveProfileID string        `json:"active_profile_id,omitempty"`
	LastReset       time.Time     `json:"last_reset"`
	Profiles        []profileFile `json:"profiles"`
}

type profileFile struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Apps []appFile `json:"apps"`
}

type appFile struct {
	BundleID          string `json:"bundle_id"`
	Name              string `json:"name"`
	DailyLimitSeconds int64  `json:"daily_limit_seconds"`
	UsedTodaySeconds  int64  `json:"used_today_seconds"`
}

// JSONProfileStore implements domain.ProfileStore with an atomically written JSON file.
type JSONProfileStore struct {
	path string
}

// NewProfileStore creates a profile store in dataDir.
func NewProfileStore(dataDir string) *JSONProfileStore {
	return &JSONProfileStore{path: filepath.Join(dataDir, profilesFileName)}
}

// Load reads the profile set. A missing file returns an error wrapping fs.ErrNotExist.
func (s *JSONProfileStore) Load() (*domain.ProfileSet, error) {
	var f profileSetFile
	if err := readJSON(s.path, &f); err != nil {
		return nil, err
	}
	set := &domain.ProfileSet{
		ActiveProfileID: f.ActiveProfileID,
		LastReset:       f.LastReset,
		Profiles:        make([]domain.Profile, 0, len(f.Profiles)),
	}
	for _, p := range f.Profiles {
		if p.ID == "" {
			return nil, fmt.Errorf("%s: profile %q has no id", s.path, p.Name)
		}
		profile := domain.Profile{ID: p.ID, Name: p.Name}
		for _, a := range p.Apps {
			// Negative durations clamp to zero
			profile.Apps = append(profile.Apps, domain.TrackedApp{
				BundleID:   a.BundleID,
				Name:       a.Name,
				DailyLimit: time.Duration(max(0, a.DailyLimitSeconds)) * time.Second,
				UsedToday:  time.Duration(max(0, a.UsedTodaySeconds)) * time.Second,
			})
		}
		set.Profiles = append(set.Profiles, profile)
	}
	if set.Find(set.ActiveProfileID) == nil {
		set.ActiveProfileID = ""
	}
	return set, nil
}

// Save writes the profile set atomically.
func (s *JSONProfileStore) Save(set *domain.ProfileSet) error {
	f := profileSetFile{
		Version:         documentVersion,
		ActiveProfileID: set.ActiveProfileID,
		LastReset:       set.LastReset,
		Profiles:        make([]profileFile, 0, len(set.Profiles)),
	}
	for _, p := range set.Profiles {
		pf := profileFile{ID: p.ID, Name: p.Name, Apps: make([]appFile, 0, len(p.Apps))}
		for _, a := range p.Apps {
			pf.Apps = append(pf.Apps, appFile{
				BundleID:          a.BundleID,
				Name:              a.Name,
				DailyLimitSeconds: int64(a.DailyLimit / time.Second),
				UsedTodaySeconds:  int64(a.UsedToday / time.Second),
			})
		}
		f.Profiles = append(f.Profiles, pf)
	}
	return atomicWriteJSON(s.path, f)
}

// Path returns the document path.
func (s *JSONProfileStore) Path() string {
	return s.path
}

// guardConfigFile is the on-disk form of domain.GuardConfig.
type guardConfigFile struct {
	Version          int              `json:"version"`
	DurationMinutes  int              `json:"duration_minutes"`
	FilterMode       string           `json:"filter_mode"`
	Apps             []guardedAppFile `json:"apps"`
	EnableAutomation bool             `json:"enable_automation"`
	StartAutomation  string           `json:"start_automation"`
	EndAutomation    string           `json:"end_automation"`
}

type guardedAppFile struct {
	BundleID string `json:"bundle_id"`
	Name     string `json:"name"`
}

// JSONGuardConfigStore implements domain.GuardConfigStore.
type JSONGuardConfigStore struct {
	path string
}

// NewGuardConfigStore creates a guard config store in dataDir.
func NewGuardConfigStore(dataDir string) *JSONGuardConfigStore {
	return &JSONGuardConfigStore{path: filepath.Join(dataDir, guardFileName)}
}

// Load reads the guard configuration.
func (s *JSONGuardConfigStore) Load() (*domain.GuardConfig, error) {
	var f guardConfigFile
	if err := readJSON(s.path, &f); err != nil {
		return nil, err
	}
	mode := domain.FilterMode(f.FilterMode)
	if !mode.Valid() {
		return nil, fmt.Errorf("%s: unknown filter mode %q", s.path, f.FilterMode)
	}
	cfg := &domain.GuardConfig{
		DurationMinutes:  f.DurationMinutes,
		FilterMode:       mode,
		EnableAutomation: f.EnableAutomation,
		StartAutomation:  f.StartAutomation,
		EndAutomation:    f.EndAutomation,
	}
	if cfg.DurationMinutes <= 0 {
		cfg.DurationMinutes = domain.DefaultGuardConfig().DurationMinutes
	}
	for _, a := range f.Apps {
		cfg.Apps = append(cfg.Apps, domain.GuardedApp{BundleID: a.BundleID, Name: a.Name})
	}
	return cfg, nil
}

// Save writes the guard configuration atomically.
func (s *JSONGuardConfigStore) Save(cfg *domain.GuardConfig) error {
	f := guardConfigFile{
		Version:          documentVersion,
		DurationMinutes:  cfg.DurationMinutes,
		FilterMode:       string(cfg.FilterMode),
		Apps:             make([]guardedAppFile, 0, len(cfg.Apps)),
		EnableAutomation: cfg.EnableAutomation,
		StartAutomation:  cfg.StartAutomation,
		EndAutomation:    cfg.EndAutomation,
	}
	for _, a := range cfg.Apps {
		f.Apps = append(f.Apps, guardedAppFile{BundleID: a.BundleID, Name: a.Name})
	}
	return atomicWriteJSON(s.path, f)
}

// JSONStatusStore implements domain.StatusWriter.
type JSONStatusStore struct {
	path string
}

// NewStatusStore creates a status store in dataDir.
func NewStatusStore(dataDir string) *JSONStatusStore {
	return &JSONStatusStore{path: filepath.Join(dataDir, statusFileName)}
}

// WriteStatus replaces the published snapshot.
func (s *JSONStatusStore) WriteStatus(status *domain.Status) error {
	return atomicWriteJSON(s.path, status)
}

// ReadStatus returns the last published snapshot.
func (s *JSONStatusStore) ReadStatus() (*domain.Status, error) {
	var st domain.Status
	if err := readJSON(s.path, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Remove deletes the snapshot so clients stop trusting it after shutdown.
func (s *JSONStatusStore) Remove() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// atomicWriteJSON writes v to path atomically (write + rename).
func atomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// Write to temp file first (unique per process to avoid race)
	tmpPath := fmt.Sprintf("%s.%d.tmp", path, os.Getpid())
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Clean up on failure
		return err
	}
	return nil
}

var (
	_ domain.ProfileStore     = (*JSONProfileStore)(nil)
	_ domain.GuardConfigStore = (*JSONGuardConfigStore)(nil)
	_ domain.StatusWriter     = (*JSONStatusStore)(nil)
)
