package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/anaygoyal09/Focus/internal/daemon"
	"github.com/anaygoyal09/Focus/internal/infra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the agent in the foreground",
	Long: `Runs the agent: once per tick it asks macOS for the frontmost app,
charges it against today's budget, enforces blocks and focus sessions,
and applies commands submitted by other focus invocations.

Normally started by launchd; see "focus install".`,
	RunE: runAgent,
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Start the agent at login",
	Long:  `Installs a LaunchAgent that runs "focus run" at login and restarts it if it crashes.`,
	RunE:  runInstall,
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Stop starting the agent at login",
	RunE:  runUninstall,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
}

func runAgent(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()
	logger := e.logger

	vault, err := e.openVault()
	if err != nil {
		return fmt.Errorf("failed to open vault: %w", err)
	}
	defer vault.Close()

	if state, alive := daemon.FindAgent(vault, e.processes, time.Now()); alive {
		return fmt.Errorf("agent already running (pid %d)", state.PID)
	}

	agentConfig := daemon.AgentConfig{
		TickInterval:     e.cfg.TickInterval,
		StatusEveryTicks: e.cfg.StatusEveryTicks,
		AppVersion:       Version,
	}
	if e.cfg.Metrics.Enabled {
		agentConfig.MetricsTextfile = e.cfg.Metrics.Textfile
	}

	agent := daemon.NewAgent(
		agentConfig,
		e.newHost(),
		infra.NewForegroundOracle(),
		e.inbox,
		vault,
		e.status,
		e.processes,
		daemon.RealScheduler{},
		logger,
	)

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		cancel()
	}()

	if err := agent.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runInstall(cmd *cobra.Command, args []string) error {
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
		execPath = resolved
	}

	cfgPath := configPath
	if cfgPath != "" {
		if cfgPath, err = filepath.Abs(cfgPath); err != nil {
			return err
		}
	}

	manager := infra.NewLaunchAgentManager(infra.DefaultPaths(), cfgPath)
	if err := manager.Install(execPath); err != nil {
		return fmt.Errorf("failed to install LaunchAgent: %w", err)
	}

	fmt.Println("Installed LaunchAgent for auto-start on login")
	fmt.Printf("Binary: %s\n", execPath)
	fmt.Printf("Plist:  %s\n", manager.GetPlistPath())
	return nil
}

func runUninstall(cmd *cobra.Command, args []string) error {
	manager := infra.NewLaunchAgentManager(infra.DefaultPaths(), "")
	if !manager.IsInstalled() {
		fmt.Println("LaunchAgent is not installed")
		return nil
	}
	if err := manager.Uninstall(); err != nil {
		return fmt.Errorf("failed to uninstall LaunchAgent: %w", err)
	}
	fmt.Println("LaunchAgent removed; the agent will not start at next login")
	return nil
}

