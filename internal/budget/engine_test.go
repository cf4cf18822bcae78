package budget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anaygoyal09/Focus/internal/domain"
)

const (
	testSelf    = "com.anaygoyal.focus"
	testProfile = "profile-1"
	gameID      = "com.example.game"
	chatID      = "com.example.chat"
)

var day1 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)

func newTestEngine(t *testing.T, limit time.Duration) *Engine {
	t.Helper()
	set := &domain.ProfileSet{
		Profiles: []domain.Profile{{
			ID:   testProfile,
			Name: "Work",
			Apps: []domain.TrackedApp{
				{BundleID: gameID, Name: "Game", DailyLimit: limit},
				{BundleID: chatID, Name: "Chat", DailyLimit: limit},
			},
		}},
		ActiveProfileID: testProfile,
		LastReset:       day1,
	}
	cfg := DefaultConfig()
	cfg.SelfID = testSelf
	return NewEngine(cfg, set)
}

func game() *domain.AppIdentity {
	return &domain.AppIdentity{ID: gameID, DisplayName: "Game", PID: 4242}
}

// tickN advances n ticks with app in front and collects every effect.
func tickN(e *Engine, n int, app *domain.AppIdentity) []domain.Effect {
	var out []domain.Effect
	for i := 0; i < n; i++ {
		out = append(out, e.Tick(day1, app)...)
	}
	return out
}

func usedOf(t *testing.T, e *Engine, bundleID string) time.Duration {
	t.Helper()
	p := e.Snapshot().Profiles.Active()
	require.NotNil(t, p)
	idx := p.FindApp(bundleID)
	require.GreaterOrEqual(t, idx, 0)
	return p.Apps[idx].UsedToday
}

func limitOf(t *testing.T, e *Engine, bundleID string) time.Duration {
	t.Helper()
	p := e.Snapshot().Profiles.Active()
	require.NotNil(t, p)
	idx := p.FindApp(bundleID)
	require.GreaterOrEqual(t, idx, 0)
	return p.Apps[idx].DailyLimit
}

func warnings(effects []domain.Effect) []domain.WarningRequested {
	var out []domain.WarningRequested
	for _, e := range effects {
		if w, ok := e.(domain.WarningRequested); ok {
			out = append(out, w)
		}
	}
	return out
}

func countOf[T domain.Effect](effects []domain.Effect) int {
	n := 0
	for _, e := range effects {
		if _, ok := e.(T); ok {
			n++
		}
	}
	return n
}

func TestTick_AccumulatesOneSecondPerTick(t *testing.T) {
	e := newTestEngine(t, time.Hour)

	tickN(e, 90, game())

	assert.Equal(t, 90*time.Second, usedOf(t, e, gameID))
	assert.Equal(t, time.Duration(0), usedOf(t, e, chatID))
}

func TestTick_IgnoresSelfUntrackedAndNothing(t *testing.T) {
	e := newTestEngine(t, time.Hour)

	tests := []struct {
		name string
		app  *domain.AppIdentity
	}{
		{"no frontmost app", nil},
		{"empty id", &domain.AppIdentity{}},
		{"self", &domain.AppIdentity{ID: testSelf}},
		{"untracked", &domain.AppIdentity{ID: "com.apple.Safari"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, e.Tick(day1, tt.app))
		})
	}
	assert.Equal(t, time.Duration(0), usedOf(t, e, gameID))
}

func TestTick_NoActiveProfile(t *testing.T) {
	e := newTestEngine(t, time.Hour)
	e.Deactivate()

	effects := tickN(e, 10, game())

	assert.Empty(t, effects)
	snap := e.Snapshot()
	assert.Equal(t, time.Duration(0), snap.Profiles.Profiles[0].Apps[0].UsedToday)
}

func TestTick_WarningsFireOncePerThreshold(t *testing.T) {
	e := newTestEngine(t, 1800*time.Second)

	effects := tickN(e, 1800, game())
	ws := warnings(effects)

	seen := map[time.Duration]int{}
	for _, w := range ws {
		seen[w.Threshold]++
		assert.Equal(t, gameID, w.App.ID)
	}
	for _, th := range domain.DefaultWarningThresholds() {
		assert.Equal(t, 1, seen[th], "threshold %s", th)
	}
	assert.Len(t, ws, len(domain.DefaultWarningThresholds()))
}

func TestTick_SixtySecondWarningNearSixtyRemaining(t *testing.T) {
	e := newTestEngine(t, 1800*time.Second)

	tickN(e, 1738, game())
	assert.False(t, e.Fired(gameID, time.Minute))

	effects := e.Tick(day1, game())
	ws := warnings(effects)
	require.Len(t, ws, 1)
	assert.Equal(t, time.Minute, ws[0].Threshold)
	assert.Equal(t, 61*time.Second, ws[0].Remaining)
	assert.Equal(t, 4242, ws[0].App.PID)

	// Remaining 60s and 59s still match the same threshold but it already fired.
	assert.Empty(t, warnings(tickN(e, 2, game())))
}

func TestTick_BlockRequestedExactlyOncePerEpisode(t *testing.T) {
	e := newTestEngine(t, 1800*time.Second)

	effects := tickN(e, 1799, game())
	assert.Zero(t, countOf[domain.BlockRequested](effects))
	assert.Equal(t, domain.Unblocked, e.Block().Kind)

	effects = e.Tick(day1, game())
	require.Equal(t, 1, countOf[domain.BlockRequested](effects))
	assert.Equal(t, 1800*time.Second, usedOf(t, e, gameID))

	block := e.Block()
	assert.Equal(t, domain.Blocked, block.Kind)
	assert.Equal(t, gameID, block.App.ID)
	assert.Equal(t, uint64(1800), block.SinceTick)

	// Still in front: termination is retried without re-showing the block.
	effects = tickN(e, 5, game())
	assert.Zero(t, countOf[domain.BlockRequested](effects))
	assert.Equal(t, 5, countOf[domain.TerminateRequested](effects))
	for _, eff := range effects {
		if term, ok := eff.(domain.TerminateRequested); ok {
			assert.Equal(t, domain.ReasonBudgetExhausted, term.Reason)
		}
	}
}

func TestTick_FirstToExhaustKeepsEpisode(t *testing.T) {
	e := newTestEngine(t, 300*time.Second)
	chat := &domain.AppIdentity{ID: chatID, DisplayName: "Chat", PID: 5151}

	tickN(e, 300, game())
	require.Equal(t, gameID, e.Block().App.ID)

	effects := tickN(e, 300, chat)
	assert.Zero(t, countOf[domain.BlockRequested](effects), "a second exhaustion joins the running episode")
	assert.Equal(t, domain.Blocked, e.Block().Kind)
	assert.Equal(t, gameID, e.Block().App.ID)
	assert.Equal(t, uint64(300), e.Block().SinceTick)
	assert.Contains(t, effects, domain.Effect(domain.TerminateRequested{
		App:    domain.AppIdentity{ID: chatID, DisplayName: "Chat", PID: 5151},
		Reason: domain.ReasonBudgetExhausted,
	}))

	require.NotEmpty(t, e.GrantExtension(5))
	assert.Equal(t, 10*time.Minute, limitOf(t, e, gameID), "the episode's app gets the time")
	assert.Equal(t, 300*time.Second, limitOf(t, e, chatID))

	effects = e.Tick(day1, chat)
	require.Equal(t, 1, countOf[domain.BlockRequested](effects))
	assert.Equal(t, chatID, e.Block().App.ID)
	assert.Equal(t, uint64(601), e.Block().SinceTick)
}

func TestTick_DismissStartsNewEpisode(t *testing.T) {
	e := newTestEngine(t, 300*time.Second)
	tickN(e, 300, game())
	require.True(t, e.Block().IsBlocked())

	e.DismissBlock()
	assert.Equal(t, domain.Unblocked, e.Block().Kind)
	assert.Equal(t, 300*time.Second, limitOf(t, e, gameID))

	effects := e.Tick(day1, game())
	assert.Equal(t, 1, countOf[domain.BlockRequested](effects))
}

func TestTick_PersistEveryMinuteOfUsage(t *testing.T) {
	e := newTestEngine(t, time.Hour)

	effects := tickN(e, 180, game())

	assert.Equal(t, 3, countOf[domain.PersistRequested](effects))
}

func TestGrantExtension(t *testing.T) {
	e := newTestEngine(t, 1800*time.Second)
	tickN(e, 1800, game())
	require.True(t, e.Fired(gameID, time.Minute))

	effects := e.GrantExtension(5)

	assert.Equal(t, []domain.Effect{domain.PersistRequested{}}, effects)
	assert.Equal(t, 2100*time.Second, limitOf(t, e, gameID))
	assert.Equal(t, domain.Unblocked, e.Block().Kind)
	assert.False(t, e.Fired(gameID, time.Minute))

	// 299s remaining matches the 5 minute threshold again.
	ws := warnings(e.Tick(day1, game()))
	require.Len(t, ws, 1)
	assert.Equal(t, 5*time.Minute, ws[0].Threshold)
}

func TestGrantExtension_FromPendingExtension(t *testing.T) {
	e := newTestEngine(t, 300*time.Second)
	tickN(e, 300, game())

	e.RequestExtension()
	assert.Equal(t, domain.PendingExtension, e.Block().Kind)

	e.GrantExtension(5)
	assert.Equal(t, 600*time.Second, limitOf(t, e, gameID))
	assert.Equal(t, domain.Unblocked, e.Block().Kind)
}

func TestGrantExtension_NoopWhenUnblocked(t *testing.T) {
	e := newTestEngine(t, 1800*time.Second)

	assert.Nil(t, e.GrantExtension(5))
	assert.Equal(t, 1800*time.Second, limitOf(t, e, gameID))
}

func TestExtensionPromptTransitions(t *testing.T) {
	e := newTestEngine(t, 300*time.Second)

	e.RequestExtension()
	assert.Equal(t, domain.Unblocked, e.Block().Kind, "prompt needs a block")

	tickN(e, 300, game())
	e.RequestExtension()
	assert.Equal(t, domain.PendingExtension, e.Block().Kind)
	e.CancelExtension()
	assert.Equal(t, domain.Blocked, e.Block().Kind)
	e.CancelExtension()
	assert.Equal(t, domain.Blocked, e.Block().Kind)
}

func TestRollover(t *testing.T) {
	e := newTestEngine(t, 1800*time.Second)
	tickN(e, 1800, game())
	require.True(t, e.Fired(gameID, 5*time.Second))

	day2 := day1.Add(24 * time.Hour)
	effects := e.Rollover(day2)

	assert.Equal(t, []domain.Effect{domain.PersistRequested{}}, effects)
	assert.Equal(t, time.Duration(0), usedOf(t, e, gameID))
	assert.False(t, e.Fired(gameID, 5*time.Second))
	assert.Equal(t, day2, e.Snapshot().Profiles.LastReset)

	assert.Nil(t, e.Rollover(day2.Add(time.Hour)), "idempotent within a day")
}

func TestRollover_ZeroLastResetAlwaysResets(t *testing.T) {
	e := NewEngine(DefaultConfig(), nil)

	effects := e.Tick(day1, game())

	assert.Equal(t, []domain.Effect{domain.PersistRequested{}}, effects)
	assert.Equal(t, day1, e.Snapshot().Profiles.LastReset)
}

func TestTick_RolloverRunsFirst(t *testing.T) {
	e := newTestEngine(t, 1800*time.Second)
	tickN(e, 100, game())

	effects := e.Tick(day1.Add(24*time.Hour), game())

	assert.Equal(t, 1, countOf[domain.PersistRequested](effects))
	assert.Equal(t, time.Second, usedOf(t, e, gameID))
}

func TestTick_AdjacentThresholdsBothFire(t *testing.T) {
	set := &domain.ProfileSet{
		Profiles: []domain.Profile{{
			ID:   testProfile,
			Apps: []domain.TrackedApp{{BundleID: gameID, DailyLimit: 20 * time.Second}},
		}},
		ActiveProfileID: testProfile,
		LastReset:       day1,
	}
	cfg := DefaultConfig()
	cfg.Thresholds = []time.Duration{10 * time.Second, 12 * time.Second}
	e := NewEngine(cfg, set)

	var got []time.Duration
	for i := 0; i < 19; i++ {
		for _, w := range warnings(e.Tick(day1, game())) {
			got = append(got, w.Threshold)
		}
	}

	assert.Equal(t, []time.Duration{12 * time.Second, 10 * time.Second}, got)
}

func TestSnapshotIsACopy(t *testing.T) {
	e := newTestEngine(t, time.Hour)
	snap := e.Snapshot()

	snap.Profiles.Profiles[0].Apps[0].UsedToday = time.Hour

	assert.Equal(t, time.Duration(0), usedOf(t, e, gameID))
}
