// Package infra implements infrastructure concerns (process, scripting, storage, launchd).
package infra

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/anaygoyal09/Focus/internal/domain"
)

// errProcessNotFound is returned when neither the PID hint nor the name matches.
var errProcessNotFound = errors.New("no matching process")

// ProcessManagerImpl implements domain.ProcessController using gopsutil.
type ProcessManagerImpl struct{}

// NewProcessManager creates a new process manager.
func NewProcessManager() domain.ProcessController {
	return &ProcessManagerImpl{}
}

// Terminate asks the app to quit with SIGTERM. The PID hint from the oracle
// is used when present; otherwise processes are matched by display name.
func (pm *ProcessManagerImpl) Terminate(app domain.AppIdentity) error {
	if app.PID > 0 {
		p, err := process.NewProcess(int32(app.PID))
		if err == nil {
			return p.Terminate()
		}
	}

	pids, err := pm.findByName(app.DisplayName)
	if err != nil {
		return err
	}
	if len(pids) == 0 {
		return fmt.Errorf("terminate %s: %w", app.ID, errProcessNotFound)
	}
	var errs []error
	for _, pid := range pids {
		p, err := process.NewProcess(pid)
		if err != nil {
			continue // Exited meanwhile
		}
		if err := p.Terminate(); err != nil {
			errs = append(errs, fmt.Errorf("pid %d: %w", pid, err))
		}
	}
	return errors.Join(errs...)
}

// findByName returns PIDs whose executable name equals name (case-insensitive).
// App bundles run an executable named after the app, so exact matching avoids
// hitting helpers like "Game Helper (Renderer)".
func (pm *ProcessManagerImpl) findByName(name string) ([]int32, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}

	var found []int32
	self := int32(os.Getpid())
	for _, p := range procs {
		if p.Pid == self {
			continue
		}
		pname, err := p.Name()
		if err != nil {
			continue // Process may have exited
		}
		if strings.EqualFold(pname, name) {
			found = append(found, p.Pid)
		}
	}
	return found, nil
}

// IsRunning checks if a PID exists and is running.
func (pm *ProcessManagerImpl) IsRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	// On Unix, FindProcess always succeeds
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// Send signal 0 to check if process exists
	err = proc.Signal(syscall.Signal(0))
	return err == nil
}

// GetCurrentPID returns the current process PID.
func (pm *ProcessManagerImpl) GetCurrentPID() int {
	return os.Getpid()
}

// Ensure ProcessManagerImpl implements domain.ProcessController.
var _ domain.ProcessController = (*ProcessManagerImpl)(nil)
