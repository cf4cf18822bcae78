package daemon

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/anaygoyal09/Focus/internal/domain"
)

// fakeOracle reports whatever app the test put in front
type fakeOracle struct {
	mu    sync.Mutex
	front *domain.AppIdentity
	err   error
	calls int
}

func (f *fakeOracle) set(app *domain.AppIdentity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.front = app
}

func (f *fakeOracle) ForegroundApp(ctx context.Context) (*domain.AppIdentity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.front == nil {
		return nil, nil
	}
	app := *f.front
	return &app, nil
}

// fakeInbox is an in-memory IntentSource
type fakeInbox struct {
	mu       sync.Mutex
	pending  []domain.Intent
	wake     chan struct{}
	watchErr error
	drained  int
}

func newFakeInbox(intents ...domain.Intent) *fakeInbox {
	return &fakeInbox{pending: intents, wake: make(chan struct{}, 1)}
}

func (f *fakeInbox) submit(in domain.Intent) {
	f.mu.Lock()
	f.pending = append(f.pending, in)
	f.mu.Unlock()
	select {
	case f.wake <- struct{}{}:
	default:
	}
}

func (f *fakeInbox) Drain() ([]domain.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.pending
	f.pending = nil
	f.drained += len(out)
	return out, nil
}

func (f *fakeInbox) Watch(ctx context.Context) (<-chan struct{}, error) {
	if f.watchErr != nil {
		return nil, f.watchErr
	}
	return f.wake, nil
}

func (f *fakeInbox) drainedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.drained
}

// fakeRegistry implements domain.AgentRegistry in memory
type fakeRegistry struct {
	mu          sync.Mutex
	state       *domain.AgentState
	registerErr error
	heartbeats  int
	cleared     bool
}

func (f *fakeRegistry) Register(state domain.AgentState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registerErr != nil {
		return f.registerErr
	}
	state.LastHeartbeat = time.Now()
	f.state = &state
	return nil
}

func (f *fakeRegistry) UpdateHeartbeat() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == nil {
		return domain.ErrAgentNotRunning
	}
	f.heartbeats++
	return nil
}

func (f *fakeRegistry) Get() (*domain.AgentState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == nil {
		return nil, nil
	}
	st := *f.state
	return &st, nil
}

func (f *fakeRegistry) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = nil
	f.cleared = true
	return nil
}

// fakeStatus records published snapshots
type fakeStatus struct {
	mu      sync.Mutex
	written []*domain.Status
	removed bool
}

func (f *fakeStatus) WriteStatus(st *domain.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, st)
	return nil
}

func (f *fakeStatus) Remove() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = true
	return nil
}

func (f *fakeStatus) last() *domain.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.written) == 0 {
		return nil
	}
	return f.written[len(f.written)-1]
}

func (f *fakeStatus) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.written)
}

// fakeProcesses records terminations
type fakeProcesses struct {
	mu         sync.Mutex
	running    map[int]bool
	terminated []domain.AppIdentity
}

func (f *fakeProcesses) Terminate(app domain.AppIdentity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terminated = append(f.terminated, app)
	return nil
}

func (f *fakeProcesses) IsRunning(pid int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running[pid]
}

func (f *fakeProcesses) GetCurrentPID() int {
	return os.Getpid()
}

func (f *fakeProcesses) terminations() []domain.AppIdentity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.AppIdentity(nil), f.terminated...)
}

type fakeNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (f *fakeNotifier) Notify(title, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titles = append(f.titles, title)
	return nil
}

type fakeAutomation struct {
	mu  sync.Mutex
	ran []string
}

func (f *fakeAutomation) RunAutomation(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ran = append(f.ran, name)
	return nil
}

// memProfileStore keeps the profile document in memory
type memProfileStore struct {
	mu    sync.Mutex
	set   *domain.ProfileSet
	saves int
}

func (m *memProfileStore) Load() (*domain.ProfileSet, error) {
	if m.set == nil {
		return nil, os.ErrNotExist
	}
	return m.set.Clone(), nil
}

func (m *memProfileStore) Save(set *domain.ProfileSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set = set.Clone()
	m.saves++
	return nil
}

// memGuardStore keeps the guard document in memory
type memGuardStore struct {
	cfg *domain.GuardConfig
}

func (m *memGuardStore) Load() (*domain.GuardConfig, error) {
	if m.cfg == nil {
		return nil, errors.New("no guard document")
	}
	return m.cfg.Clone(), nil
}

func (m *memGuardStore) Save(cfg *domain.GuardConfig) error {
	m.cfg = cfg.Clone()
	return nil
}
