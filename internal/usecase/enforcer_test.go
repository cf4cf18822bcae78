package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anaygoyal09/Focus/internal/domain"
)

var gameApp = domain.AppIdentity{ID: "com.example.game", DisplayName: "Game", PID: 4242}

func newTestEnforcer() (*Enforcer, *mockProcessController, *mockNotifier, *mockAutomation) {
	pc := &mockProcessController{}
	n := &mockNotifier{}
	ar := &mockAutomation{}
	return NewEnforcer(pc, n, ar, zap.NewNop()), pc, n, ar
}

// TestExecute_Warning verifies a warning becomes one notification
func TestExecute_Warning(t *testing.T) {
	e, pc, n, _ := newTestEnforcer()

	persist := e.Execute([]domain.Effect{
		domain.WarningRequested{App: gameApp, Remaining: 61 * time.Second, Threshold: time.Minute},
	})

	assert.False(t, persist)
	assert.Empty(t, pc.terminated)
	require.Len(t, n.sent, 1)
	assert.Equal(t, "⚠️ Time Alert", n.sent[0].title)
	assert.Equal(t, "1 minute remaining for Game", n.sent[0].body)
}

// TestExecute_Block verifies a block terminates and notifies
func TestExecute_Block(t *testing.T) {
	e, pc, n, _ := newTestEnforcer()

	e.Execute([]domain.Effect{domain.BlockRequested{App: gameApp}})

	assert.Equal(t, []domain.AppIdentity{gameApp}, pc.terminated)
	require.Len(t, n.sent, 1)
	assert.Equal(t, "Time's Up", n.sent[0].title)
}

// TestExecute_TerminateIsSilent verifies retries do not notify again
func TestExecute_TerminateIsSilent(t *testing.T) {
	e, pc, n, _ := newTestEnforcer()

	e.Execute([]domain.Effect{
		domain.TerminateRequested{App: gameApp, Reason: domain.ReasonBudgetExhausted},
		domain.TerminateRequested{App: gameApp, Reason: domain.ReasonBudgetExhausted},
	})

	assert.Len(t, pc.terminated, 2)
	assert.Empty(t, n.sent)
}

// TestExecute_PersistCollapses verifies one save per batch
func TestExecute_PersistCollapses(t *testing.T) {
	e, _, _, _ := newTestEnforcer()

	assert.True(t, e.Execute([]domain.Effect{domain.PersistRequested{}, domain.PersistRequested{}}))
	assert.False(t, e.Execute(nil))
}

// TestExecute_Automation verifies shortcut names are run and blanks skipped
func TestExecute_Automation(t *testing.T) {
	e, _, _, ar := newTestEnforcer()

	e.Execute([]domain.Effect{
		domain.SessionStarted{Automation: "Enable Focus"},
		domain.SessionEnded{},
		domain.SessionEnded{Automation: "Disable Focus"},
	})

	assert.Equal(t, []string{"Enable Focus", "Disable Focus"}, ar.ran)
}

// TestExecute_FailuresDoNotStopTheBatch verifies collaborator errors are swallowed
func TestExecute_FailuresDoNotStopTheBatch(t *testing.T) {
	pc := &mockProcessController{terminateErr: errors.New("no such process")}
	n := &mockNotifier{err: errors.New("osascript failed")}
	ar := &mockAutomation{err: errors.New("shortcut missing")}
	e := NewEnforcer(pc, n, ar, zap.NewNop())

	persist := e.Execute([]domain.Effect{
		domain.BlockRequested{App: gameApp},
		domain.SessionStarted{Automation: "Enable Focus"},
		domain.PersistRequested{},
	})

	assert.True(t, persist)
	assert.Equal(t, []string{"Enable Focus"}, ar.ran)
}
