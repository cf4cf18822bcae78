// Package infra implements infrastructure concerns.
package infra

import (
	"os"
	"os/user"
	"path/filepath"
)

const (
	// DefaultLabel is the launchd label of the agent.
	DefaultLabel = "com.anaygoyal.focus.agent"

	// DefaultSelfBundleID identifies this program to the engines so it is never charged or filtered.
	DefaultSelfBundleID = "com.anaygoyal.focus"

	appDirName = "Focus"
)

// Paths holds the per-user locations the agent and the CLI agree on.
type Paths struct {
	Home      string
	DataDir   string // Documents, vault, inbox and status
	LogDir    string
	PlistDir  string
	PlistPath string
}

// DefaultPaths resolves the locations under the real user's home.
func DefaultPaths() Paths {
	return PathsForHome(GetRealUserHome())
}

// PathsForHome resolves the locations under home.
func PathsForHome(home string) Paths {
	plistDir := filepath.Join(home, "Library", "LaunchAgents")
	return Paths{
		Home:      home,
		DataDir:   filepath.Join(home, "Library", "Application Support", appDirName),
		LogDir:    filepath.Join(home, "Library", "Logs", appDirName),
		PlistDir:  plistDir,
		PlistPath: filepath.Join(plistDir, DefaultLabel+".plist"),
	}
}

// DefaultDataDir returns the data directory of the current user.
func DefaultDataDir() string {
	return DefaultPaths().DataDir
}

// GetRealUserHome returns the real user's home directory, even when running under sudo.
// Under sudo, os.UserHomeDir() returns /var/root, so we use SUDO_USER to find the real user.
func GetRealUserHome() string {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
		if u, err := user.Lookup(sudoUser); err == nil {
			return u.HomeDir
		}
	}
	home, _ := os.UserHomeDir()
	return home
}
