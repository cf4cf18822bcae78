package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/anaygoyal09/Focus/internal/domain"
)

var dndCmd = &cobra.Command{
	Use:   "dnd",
	Short: "Focus sessions that quit distracting apps",
	Long: `A focus session lasts a fixed number of minutes. In deny mode the
listed apps are quit whenever they come to the front; in allow mode every
app except the listed ones is. Finder, the Dock and System Settings are
never quit.`,
}

var dndStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a focus session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		done := "Focus session started"
		if dndMinutes > 0 {
			done = fmt.Sprintf("Focus session started for %d minutes", dndMinutes)
		}
		return submitIntent(domain.Intent{Kind: domain.IntentSessionStart, Minutes: dndMinutes}, done)
	},
}

var dndStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "End the focus session now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitIntent(domain.Intent{Kind: domain.IntentSessionStop}, "Focus session stopped")
	},
}

var dndStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the focus session and its app list",
	Args:  cobra.NoArgs,
	RunE:  runDNDStatus,
}

var dndModeCmd = &cobra.Command{
	Use:       "mode <deny|allow>",
	Short:     "Choose whether the app list is a block list or an allow list",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(domain.FilterDeny), string(domain.FilterAllow)},
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := domain.FilterMode(args[0])
		if !mode.Valid() {
			return fmt.Errorf("unknown mode %q (want deny or allow)", args[0])
		}
		return submitIntent(domain.Intent{Kind: domain.IntentGuardMode, FilterMode: mode},
			fmt.Sprintf("Filter mode set to %s", mode))
	},
}

var dndDurationCmd = &cobra.Command{
	Use:   "duration <minutes>",
	Short: "Set the default session length",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, err := strconv.Atoi(args[0])
		if err != nil || minutes <= 0 {
			return fmt.Errorf("invalid minutes %q", args[0])
		}
		return submitIntent(domain.Intent{Kind: domain.IntentGuardDuration, Minutes: minutes},
			fmt.Sprintf("Sessions now last %d minutes", minutes))
	},
}

var dndAddCmd = &cobra.Command{
	Use:   "add <bundle-id>",
	Short: "Add an app to the session list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitIntent(domain.Intent{Kind: domain.IntentGuardAddApp, BundleID: args[0], AppName: dndAppName},
			fmt.Sprintf("Added %s", args[0]))
	},
}

var dndRmCmd = &cobra.Command{
	Use:   "rm <bundle-id>",
	Short: "Remove an app from the session list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitIntent(domain.Intent{Kind: domain.IntentGuardRemoveApp, BundleID: args[0]},
			fmt.Sprintf("Removed %s", args[0]))
	},
}

var dndAutomationCmd = &cobra.Command{
	Use:   "automation",
	Short: "Run Shortcuts when a session starts and ends",
	Long: `Runs the named Shortcuts (default "Enable Focus" and "Disable Focus")
at session start and end, typically to toggle a macOS Focus mode.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		enabled := !automationOff
		done := "Session automation disabled"
		if enabled {
			done = "Session automation enabled"
		}
		return submitIntent(domain.Intent{
			Kind:      domain.IntentGuardAutomation,
			Enabled:   enabled,
			StartName: automationStart,
			EndName:   automationEnd,
		}, done)
	},
}

var (
	dndMinutes      int
	dndAppName      string
	automationOff   bool
	automationStart string
	automationEnd   string
)

func init() {
	dndStartCmd.Flags().IntVar(&dndMinutes, "minutes", 0, "Session length (default: configured duration)")
	dndAddCmd.Flags().StringVar(&dndAppName, "name", "", "Display name (default: bundle id)")
	dndAutomationCmd.Flags().BoolVar(&automationOff, "off", false, "Disable session automation")
	dndAutomationCmd.Flags().StringVar(&automationStart, "start", "", "Shortcut to run at session start")
	dndAutomationCmd.Flags().StringVar(&automationEnd, "end", "", "Shortcut to run at session end")

	dndCmd.AddCommand(dndStartCmd, dndStopCmd, dndStatusCmd, dndModeCmd, dndDurationCmd,
		dndAddCmd, dndRmCmd, dndAutomationCmd)
	rootCmd.AddCommand(dndCmd)
}

func runDNDStatus(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	st, _ := e.currentStatus()
	doc := e.newHost().Guard().Config
	printSession(cmd.OutOrStdout(), st.Session)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Mode: %s, %d minutes per session\n", doc.FilterMode, doc.DurationMinutes)
	if doc.EnableAutomation {
		fmt.Fprintf(out, "Automation: %q at start, %q at end\n", doc.StartAutomation, doc.EndAutomation)
	} else {
		fmt.Fprintln(out, "Automation: off")
	}
	if len(doc.Apps) == 0 {
		fmt.Fprintln(out, "No apps listed")
		return nil
	}
	fmt.Fprintln(out, "Apps:")
	for _, a := range doc.Apps {
		fmt.Fprintf(out, "  - %s\n", appLabel(a.Name, a.BundleID))
	}
	return nil
}
