package infra

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/anaygoyal09/Focus/internal/domain"
)

const (
	osascriptPath = "/usr/bin/osascript"
	shortcutsPath = "/usr/bin/shortcuts"
)

// frontmostScript prints "bundleID<TAB>name<TAB>pid" for the frontmost process.
var frontmostScript = []string{
	"-e", `tell application "System Events"`,
	"-e", `set p to first application process whose frontmost is true`,
	"-e", `set b to bundle identifier of p`,
	"-e", `if b is missing value then set b to ""`,
	"-e", `return b & tab & (name of p) & tab & (unix id of p)`,
	"-e", `end tell`,
}

// ScriptForegroundOracle implements domain.ForegroundOracle by asking
// System Events through osascript.
type ScriptForegroundOracle struct {
	runner CommandRunner
}

// NewForegroundOracle creates an oracle backed by real commands.
func NewForegroundOracle() *ScriptForegroundOracle {
	return &ScriptForegroundOracle{runner: &RealCommandRunner{}}
}

// NewForegroundOracleWithRunner creates an oracle with an injectable runner (for testing).
func NewForegroundOracleWithRunner(runner CommandRunner) *ScriptForegroundOracle {
	return &ScriptForegroundOracle{runner: runner}
}

// ForegroundApp returns the frontmost app, or nil when it has no bundle id.
func (o *ScriptForegroundOracle) ForegroundApp(ctx context.Context) (*domain.AppIdentity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := o.runner.Output(osascriptPath, frontmostScript...)
	if err != nil {
		return nil, fmt.Errorf("failed to query frontmost app: %w", err)
	}
	return parseFrontmost(string(out))
}

func parseFrontmost(out string) (*domain.AppIdentity, error) {
	out = strings.TrimRight(out, "\r\n")
	if strings.TrimSpace(out) == "" {
		return nil, nil
	}
	fields := strings.Split(out, "\t")
	if len(fields) != 3 {
		return nil, fmt.Errorf("unexpected frontmost output %q", out)
	}
	bundleID := strings.TrimSpace(fields[0])
	if bundleID == "" {
		return nil, nil
	}
	pid, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		pid = 0 // Hint only
	}
	return &domain.AppIdentity{
		ID:          bundleID,
		DisplayName: strings.TrimSpace(fields[1]),
		PID:         pid,
	}, nil
}

// ScriptNotifier implements domain.Notifier with "display notification".
type ScriptNotifier struct {
	runner CommandRunner
}

// NewNotifier creates a notifier backed by real commands.
func NewNotifier() *ScriptNotifier {
	return &ScriptNotifier{runner: &RealCommandRunner{}}
}

// NewNotifierWithRunner creates a notifier with an injectable runner (for testing).
func NewNotifierWithRunner(runner CommandRunner) *ScriptNotifier {
	return &ScriptNotifier{runner: runner}
}

// Notify posts a user notification with the default sound.
func (n *ScriptNotifier) Notify(title, body string) error {
	script := fmt.Sprintf(`display notification %s with title %s sound name "default"`,
		appleScriptString(body), appleScriptString(title))
	return n.runner.Run(osascriptPath, "-e", script)
}

// appleScriptString quotes s as an AppleScript string literal.
func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// ShortcutsRunner implements domain.AutomationRunner with the shortcuts CLI.
type ShortcutsRunner struct {
	runner CommandRunner
}

// NewShortcutsRunner creates an automation runner backed by real commands.
func NewShortcutsRunner() *ShortcutsRunner {
	return &ShortcutsRunner{runner: &RealCommandRunner{}}
}

// NewShortcutsRunnerWithRunner creates an automation runner with an injectable runner (for testing).
func NewShortcutsRunnerWithRunner(runner CommandRunner) *ShortcutsRunner {
	return &ShortcutsRunner{runner: runner}
}

// RunAutomation starts the named shortcut without waiting for it. Blank names are skipped.
func (s *ShortcutsRunner) RunAutomation(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return s.runner.Start(shortcutsPath, "run", name)
}

var (
	_ domain.ForegroundOracle = (*ScriptForegroundOracle)(nil)
	_ domain.Notifier         = (*ScriptNotifier)(nil)
	_ domain.AutomationRunner = (*ShortcutsRunner)(nil)
)
