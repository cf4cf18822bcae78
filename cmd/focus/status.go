package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anaygoyal09/Focus/internal/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's usage, any block and the focus session",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// currentStatus returns the agent's published snapshot, or one built from
// the saved documents when the agent is not running.
func (e *env) currentStatus() (*domain.Status, bool) {
	if _, alive := e.findAgent(); alive {
		st, err := e.status.ReadStatus()
		if err == nil {
			return st, true
		}
		e.logger.Warn("failed to read agent status", zap.Error(err))
	}
	now := time.Now()
	host := e.newHost()
	host.Refresh(now)
	return host.Status(now, 0), false
}

func runStatus(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	st, live := e.currentStatus()
	out := cmd.OutOrStdout()

	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)

	fmt.Fprintln(out, "\n=== focus Status ===")
	if live {
		green.Fprintf(out, "Agent: RUNNING (pid %d)\n", st.PID)
		fmt.Fprintf(out, "Updated: %s ago\n", time.Since(st.UpdatedAt).Round(time.Second))
	} else {
		red.Fprintln(out, "Agent: NOT RUNNING")
		fmt.Fprintln(out, "Run 'focus install' to start it at login.")
	}

	fmt.Fprintln(out)
	printUsage(out, st)

	if st.Block.State != domain.Unblocked.String() {
		fmt.Fprintln(out)
		yellow.Fprintf(out, "Blocked: %s (%s)\n", appLabel(st.Block.Name, st.Block.BundleID), st.Block.State)
		fmt.Fprintln(out, "Run 'focus extend' for more time or 'focus dismiss'.")
	}

	fmt.Fprintln(out)
	printSession(out, st.Session)
	fmt.Fprintln(out, "====================")
	return nil
}

func printUsage(out io.Writer, st *domain.Status) {
	if st.ActiveProfile == "" {
		fmt.Fprintln(out, "No active profile")
		return
	}
	fmt.Fprintf(out, "Profile: %s\n", st.ActiveProfile)
	if len(st.Apps) == 0 {
		fmt.Fprintln(out, "  No tracked apps")
		return
	}
	for _, a := range st.Apps {
		fmt.Fprintf(out, "  %-40s %s\n", appLabel(a.Name, a.BundleID), usageLine(a))
	}
}

func printSession(out io.Writer, s domain.SessionStatus) {
	if !s.Running {
		fmt.Fprintln(out, "Focus session: off")
		return
	}
	fmt.Fprintf(out, "Focus session: %s remaining (%s mode)\n", formatCountdown(s.RemainingSeconds), s.FilterMode)
}
