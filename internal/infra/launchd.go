package infra

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/anaygoyal09/Focus/internal/domain"
)

const launchctlPath = "/bin/launchctl"

// LaunchAgent plist template (runs as the logged-in user so osascript can
// see the GUI session)
const launchAgentTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>{{.Label}}</string>

    <key>ProgramArguments</key>
    <array>
        <string>{{.ExecutablePath}}</string>
        <string>run</string>
{{- if .ConfigPath}}
        <string>--config</string>
        <string>{{.ConfigPath}}</string>
{{- end}}
    </array>

    <key>RunAtLoad</key>
    <true/>

    <key>KeepAlive</key>
    <dict>
        <key>SuccessfulExit</key>
        <false/>
    </dict>

    <key>StandardOutPath</key>
    <string>{{.LogPath}}</string>

    <key>StandardErrorPath</key>
    <string>{{.ErrorLogPath}}</string>

    <key>ProcessType</key>
    <string>Interactive</string>

    <key>ThrottleInterval</key>
    <integer>10</integer>
</dict>
</plist>
`

type plistConfig struct {
	Label          string
	ExecutablePath string
	ConfigPath     string
	LogPath        string
	ErrorLogPath   string
}

// LaunchdManagerImpl implements domain.LaunchAgentManager for the user agent.
type LaunchdManagerImpl struct {
	label      string
	paths      Paths
	configPath string
	runner     CommandRunner
}

// NewLaunchAgentManager creates a LaunchAgent manager for the given paths.
// configPath is passed to `run` when non-empty.
func NewLaunchAgentManager(paths Paths, configPath string) *LaunchdManagerImpl {
	return NewLaunchAgentManagerWithRunner(paths, configPath, &RealCommandRunner{})
}

// NewLaunchAgentManagerWithRunner creates a manager with a custom command runner (for testing).
func NewLaunchAgentManagerWithRunner(paths Paths, configPath string, runner CommandRunner) *LaunchdManagerImpl {
	return &LaunchdManagerImpl{
		label:      DefaultLabel,
		paths:      paths,
		configPath: configPath,
		runner:     runner,
	}
}

// generatePlistContent creates plist content for the given exec path.
func (m *LaunchdManagerImpl) generatePlistContent(execPath string) ([]byte, error) {
	config := plistConfig{
		Label:          m.label,
		ExecutablePath: execPath,
		ConfigPath:     m.configPath,
		LogPath:        filepath.Join(m.paths.LogDir, "agent.out.log"),
		ErrorLogPath:   filepath.Join(m.paths.LogDir, "agent.err.log"),
	}

	tmpl, err := template.New("plist").Parse(launchAgentTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse plist template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, config); err != nil {
		return nil, fmt.Errorf("failed to execute plist template: %w", err)
	}
	return buf.Bytes(), nil
}

// Install writes the plist and loads it. An installed plist with stale
// content is unloaded and replaced.
func (m *LaunchdManagerImpl) Install(execPath string) error {
	if !filepath.IsAbs(execPath) {
		return fmt.Errorf("executable path %q: %w", execPath, domain.ErrInvalidArgument)
	}
	content, err := m.generatePlistContent(execPath)
	if err != nil {
		return fmt.Errorf("failed to generate plist content: %w", err)
	}

	if current, err := os.ReadFile(m.paths.PlistPath); err == nil {
		if bytes.Equal(current, content) {
			return nil
		}
		_ = m.unload()
	}

	if err := os.MkdirAll(m.paths.PlistDir, 0755); err != nil {
		return err
	}
	if err := os.MkdirAll(m.paths.LogDir, 0700); err != nil {
		return err
	}
	if err := os.WriteFile(m.paths.PlistPath, content, 0644); err != nil {
		return err
	}
	if err := m.load(); err != nil {
		// Removed so the next Install does not skip the load
		os.Remove(m.paths.PlistPath)
		return err
	}
	return nil
}

// Uninstall unloads and removes the plist. Not being installed is not an error.
func (m *LaunchdManagerImpl) Uninstall() error {
	if !m.IsInstalled() {
		return nil
	}
	// Unload first (ignore errors if not loaded)
	_ = m.unload()
	return os.Remove(m.paths.PlistPath)
}

// IsInstalled checks if plist is installed.
func (m *LaunchdManagerImpl) IsInstalled() bool {
	_, err := os.Stat(m.paths.PlistPath)
	return err == nil
}

// GetPlistPath returns the plist file path.
func (m *LaunchdManagerImpl) GetPlistPath() string {
	return m.paths.PlistPath
}

// Label returns the launchd label.
func (m *LaunchdManagerImpl) Label() string {
	return m.label
}

// load loads the plist using launchctl.
// `launchctl load -w` is deprecated in favour of bootstrap gui/<uid> but
// still works for per-user agents.
func (m *LaunchdManagerImpl) load() error {
	if err := m.runner.Run(launchctlPath, "load", "-w", m.paths.PlistPath); err != nil {
		return fmt.Errorf("launchctl load: %w", err)
	}
	return nil
}

func (m *LaunchdManagerImpl) unload() error {
	return m.runner.Run(launchctlPath, "unload", m.paths.PlistPath)
}

// Ensure LaunchdManagerImpl implements domain.LaunchAgentManager.
var _ domain.LaunchAgentManager = (*LaunchdManagerImpl)(nil)
