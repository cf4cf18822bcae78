package usecase

import (
	"errors"
	"os"

	"github.com/anaygoyal09/Focus/internal/domain"
)

// mockProcessController implements domain.ProcessController for testing
type mockProcessController struct {
	terminateErr error
	terminated   []domain.AppIdentity
}

func (m *mockProcessController) Terminate(app domain.AppIdentity) error {
	if m.terminateErr != nil {
		return m.terminateErr
	}
	m.terminated = append(m.terminated, app)
	return nil
}

func (m *mockProcessController) IsRunning(pid int) bool {
	return false
}

func (m *mockProcessController) GetCurrentPID() int {
	return os.Getpid()
}

type notification struct {
	title string
	body  string
}

// mockNotifier implements domain.Notifier for testing
type mockNotifier struct {
	err  error
	sent []notification
}

func (m *mockNotifier) Notify(title, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, notification{title: title, body: body})
	return nil
}

// mockAutomation implements domain.AutomationRunner for testing
type mockAutomation struct {
	err error
	ran []string
}

func (m *mockAutomation) RunAutomation(name string) error {
	m.ran = append(m.ran, name)
	return m.err
}

// mockProfileStore implements domain.ProfileStore for testing
type mockProfileStore struct {
	set     *domain.ProfileSet
	loadErr error
	saveErr error
	saves   int
}

func (m *mockProfileStore) Load() (*domain.ProfileSet, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.set == nil {
		return nil, os.ErrNotExist
	}
	return m.set.Clone(), nil
}

func (m *mockProfileStore) Save(set *domain.ProfileSet) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.set = set.Clone()
	return nil
}

// mockGuardStore implements domain.GuardConfigStore for testing
type mockGuardStore struct {
	cfg   *domain.GuardConfig
	saves int
}

func (m *mockGuardStore) Load() (*domain.GuardConfig, error) {
	if m.cfg == nil {
		return nil, errors.New("corrupt guard.json")
	}
	return m.cfg.Clone(), nil
}

func (m *mockGuardStore) Save(cfg *domain.GuardConfig) error {
	m.saves++
	m.cfg = cfg.Clone()
	return nil
}

// mockSecretStore implements domain.SecretStore for testing
type mockSecretStore struct {
	secrets map[string]string
	getErr  error
}

func (m *mockSecretStore) GetSecret(key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.secrets[key]
	if !ok {
		return "", domain.ErrSecretNotFound
	}
	return v, nil
}

func (m *mockSecretStore) SetSecret(key, value string) error {
	if m.secrets == nil {
		m.secrets = make(map[string]string)
	}
	m.secrets[key] = value
	return nil
}

func (m *mockSecretStore) Close() error {
	return nil
}
