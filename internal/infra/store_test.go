package infra

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anaygoyal09/Focus/internal/domain"
)

func TestProfileStore_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	store := NewProfileStore(dir)
	reset := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	set := domain.DefaultProfileSet(reset)
	set.ActiveProfileID = domain.DefaultSocialProfileID
	set.Profiles[1].Apps = []domain.TrackedApp{
		{BundleID: "com.example.chat", Name: "Chat", DailyLimit: 30 * time.Minute, UsedToday: 95 * time.Second},
	}
	require.NoError(t, store.Save(set))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSocialProfileID, got.ActiveProfileID)
	assert.True(t, reset.Equal(got.LastReset))
	require.Len(t, got.Profiles, 2)
	assert.Equal(t, set.Profiles[1].Apps, got.Profiles[1].Apps)
	assert.Empty(t, got.Profiles[0].Apps)

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestProfileStore_Missing(t *testing.T) {
	_, err := NewProfileStore(t.TempDir()).Load()
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestProfileStore_Corrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated", `{"profiles": [`},
		{"profile without id", `{"profiles": [{"name": "Work"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, profilesFileName), []byte(tt.content), 0600))

			_, err := NewProfileStore(dir).Load()
			assert.Error(t, err)
		})
	}
}

func TestProfileStore_ClampsNegativeDurations(t *testing.T) {
	dir := t.TempDir()
	content := `{"profiles": [{"id": "p1", "name": "Work", "apps": [
		{"bundle_id": "com.example.game", "daily_limit_seconds": -60, "used_today_seconds": 30},
		{"bundle_id": "com.example.chat", "daily_limit_seconds": 600, "used_today_seconds": -5}
	]}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, profilesFileName), []byte(content), 0600))

	got, err := NewProfileStore(dir).Load()
	require.NoError(t, err)
	apps := got.Profiles[0].Apps
	require.Len(t, apps, 2)
	assert.Equal(t, time.Duration(0), apps[0].DailyLimit)
	assert.Equal(t, 30*time.Second, apps[0].UsedToday)
	assert.Equal(t, 10*time.Minute, apps[1].DailyLimit)
	assert.Equal(t, time.Duration(0), apps[1].UsedToday)
}

func TestProfileStore_DanglingActiveID(t *testing.T) {
	dir := t.TempDir()
	content := `{"active_profile_id": "gone", "profiles": [{"id": "p1", "name": "Work", "apps": []}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, profilesFileName), []byte(content), 0600))

	got, err := NewProfileStore(dir).Load()
	require.NoError(t, err)
	assert.Empty(t, got.ActiveProfileID)
}

func TestGuardConfigStore_SaveAndLoad(t *testing.T) {
	store := NewGuardConfigStore(t.TempDir())
	cfg := domain.DefaultGuardConfig()
	cfg.FilterMode = domain.FilterAllow
	cfg.EnableAutomation = true
	cfg.Apps = []domain.GuardedApp{{BundleID: "com.apple.Notes", Name: "Notes"}}

	require.NoError(t, store.Save(cfg))
	got, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestGuardConfigStore_Validation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, guardFileName)
	store := NewGuardConfigStore(dir)

	require.NoError(t, os.WriteFile(path, []byte(`{"filter_mode": "blockList"}`), 0600))
	_, err := store.Load()
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"filter_mode": "deny", "duration_minutes": 0}`), 0600))
	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 60, got.DurationMinutes)
}

func TestStatusStore(t *testing.T) {
	store := NewStatusStore(t.TempDir())
	_, err := store.ReadStatus()
	assert.ErrorIs(t, err, fs.ErrNotExist)

	st := &domain.Status{
		PID:           77,
		Tick:          12,
		ActiveProfile: "Work",
		Apps:          []domain.AppStatus{{BundleID: "com.example.game", UsedSeconds: 60, LimitSeconds: 300, RemainingSeconds: 240}},
		Block:         domain.BlockStatus{State: "unblocked"},
	}
	require.NoError(t, store.WriteStatus(st))

	got, err := store.ReadStatus()
	require.NoError(t, err)
	assert.Equal(t, st.Apps, got.Apps)
	assert.Equal(t, uint64(12), got.Tick)

	require.NoError(t, store.Remove())
	require.NoError(t, store.Remove(), "removing twice is fine")
}
