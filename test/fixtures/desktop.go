// Package fixtures provides test helpers for integration tests.
package fixtures

import (
	"context"
	"os"
	"sync"

	"github.com/anaygoyal09/Focus/internal/domain"
)

// Well-known apps used across scenarios.
var (
	Steam = domain.AppIdentity{ID: "com.valvesoftware.steam", DisplayName: "Steam", PID: 5100}
	Slack = domain.AppIdentity{ID: "com.tinyspeck.slackmacgap", DisplayName: "Slack", PID: 5200}
	Xcode = domain.AppIdentity{ID: "com.apple.dt.Xcode", DisplayName: "Xcode", PID: 5300}
)

// FakeDesktop stands in for the macOS GUI session: it decides which app is
// frontmost and records everything the agent does to it. It implements
// ForegroundOracle, ProcessController, Notifier and AutomationRunner.
type FakeDesktop struct {
	mu            sync.Mutex
	front         *domain.AppIdentity
	terminated    []domain.AppIdentity
	notifications []string
	automations   []string
}

// NewFakeDesktop creates a desktop with nothing in front.
func NewFakeDesktop() *FakeDesktop {
	return &FakeDesktop{}
}

// Focus brings app to the front. Nil clears it.
func (d *FakeDesktop) Focus(app *domain.AppIdentity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if app == nil {
		d.front = nil
		return
	}
	a := *app
	d.front = &a
}

// ForegroundApp implements domain.ForegroundOracle.
func (d *FakeDesktop) ForegroundApp(ctx context.Context) (*domain.AppIdentity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.front == nil {
		return nil, nil
	}
	a := *d.front
	return &a, nil
}

// Terminate implements domain.ProcessController.
func (d *FakeDesktop) Terminate(app domain.AppIdentity) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.terminated = append(d.terminated, app)
	return nil
}

// IsRunning reports only the test process as running.
func (d *FakeDesktop) IsRunning(pid int) bool {
	return pid == os.Getpid()
}

// GetCurrentPID implements domain.ProcessController.
func (d *FakeDesktop) GetCurrentPID() int {
	return os.Getpid()
}

// Notify implements domain.Notifier and records the title.
func (d *FakeDesktop) Notify(title, body string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notifications = append(d.notifications, title)
	return nil
}

// RunAutomation implements domain.AutomationRunner.
func (d *FakeDesktop) RunAutomation(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.automations = append(d.automations, name)
	return nil
}

// Terminated returns the apps terminated so far.
func (d *FakeDesktop) Terminated() []domain.AppIdentity {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.AppIdentity(nil), d.terminated...)
}

// Notifications returns the notification titles delivered so far.
func (d *FakeDesktop) Notifications() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.notifications...)
}

// Automations returns the automations run so far.
func (d *FakeDesktop) Automations() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.automations...)
}
