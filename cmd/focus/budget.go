package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anaygoyal09/Focus/internal/domain"
	"github.com/anaygoyal09/Focus/internal/usecase"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage budget profiles",
	Long: `A profile is a named set of tracked apps with daily limits. Only the
active profile is charged and enforced. Profiles are referred to by id or
by name (case-insensitive).`,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles and their apps",
	Args:  cobra.NoArgs,
	RunE:  runProfileList,
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitIntent(domain.Intent{Kind: domain.IntentAddProfile, Name: args[0]},
			fmt.Sprintf("Added profile %q", args[0]))
	},
}

var profileRmCmd = &cobra.Command{
	Use:   "rm <profile>",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitIntent(domain.Intent{Kind: domain.IntentRemoveProfile, ProfileID: args[0]},
			fmt.Sprintf("Removed profile %q", args[0]))
	},
}

var profileRenameCmd = &cobra.Command{
	Use:   "rename <profile> <new-name>",
	Short: "Rename a profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitIntent(domain.Intent{Kind: domain.IntentRenameProfile, ProfileID: args[0], Name: args[1]},
			fmt.Sprintf("Renamed profile %q to %q", args[0], args[1]))
	},
}

var profileActivateCmd = &cobra.Command{
	Use:   "activate <profile>",
	Short: "Make a profile the active one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitIntent(domain.Intent{Kind: domain.IntentActivateProfile, ProfileID: args[0]},
			fmt.Sprintf("Activated profile %q", args[0]))
	},
}

var profileDeactivateCmd = &cobra.Command{
	Use:   "deactivate",
	Short: "Stop tracking until a profile is activated again",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitIntent(domain.Intent{Kind: domain.IntentDeactivateProfile}, "Deactivated profile")
	},
}

var appCmd = &cobra.Command{
	Use:   "app",
	Short: "Manage tracked apps of a profile",
	Long:  `Apps are identified by bundle id (for example com.valvesoftware.steam).`,
}

var appAddCmd = &cobra.Command{
	Use:   "add <bundle-id>",
	Short: "Track an app",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitIntent(domain.Intent{
			Kind:      domain.IntentAddApp,
			ProfileID: appProfile,
			BundleID:  args[0],
			AppName:   appName,
			Limit:     appLimit,
		}, fmt.Sprintf("Tracking %s", args[0]))
	},
}

var appRmCmd = &cobra.Command{
	Use:   "rm <bundle-id>",
	Short: "Stop tracking an app",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitIntent(domain.Intent{Kind: domain.IntentRemoveApp, ProfileID: appProfile, BundleID: args[0]},
			fmt.Sprintf("Stopped tracking %s", args[0]))
	},
}

var appLimitCmd = &cobra.Command{
	Use:   "limit <bundle-id> <duration>",
	Short: "Change an app's daily limit (e.g. 45m, 1h30m)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := time.ParseDuration(args[1])
		if err != nil || limit <= 0 {
			return fmt.Errorf("invalid duration %q", args[1])
		}
		return submitIntent(domain.Intent{Kind: domain.IntentSetLimit, ProfileID: appProfile, BundleID: args[0], Limit: limit},
			fmt.Sprintf("Daily limit of %s set to %s", args[0], formatMinutes(limit)))
	},
}

var extendCmd = &cobra.Command{
	Use:   "extend",
	Short: "Get more time for a blocked app",
	Long: `Asks for the extension passphrase, then grants extra minutes to the
app that is currently blocked.`,
	Args: cobra.NoArgs,
	RunE: runExtend,
}

var dismissCmd = &cobra.Command{
	Use:   "dismiss",
	Short: "Dismiss the current block without extending",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitIntent(domain.Intent{Kind: domain.IntentDismissBlock}, "Block dismissed")
	},
}

var passphraseCmd = &cobra.Command{
	Use:   "passphrase",
	Short: "Manage the extension passphrase",
}

var passphraseSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the extension passphrase",
	Args:  cobra.NoArgs,
	RunE:  runPassphraseSet,
}

var (
	appProfile    string
	appName       string
	appLimit      time.Duration
	extendMinutes int
)

func init() {
	appCmd.PersistentFlags().StringVar(&appProfile, "profile", "", "Profile id or name (default: active profile)")
	appAddCmd.Flags().StringVar(&appName, "name", "", "Display name (default: bundle id)")
	appAddCmd.Flags().DurationVar(&appLimit, "limit", 0, "Daily limit (default 30m)")
	extendCmd.Flags().IntVar(&extendMinutes, "minutes", 0, "Minutes to grant (default from config)")

	profileCmd.AddCommand(profileListCmd, profileAddCmd, profileRmCmd, profileRenameCmd,
		profileActivateCmd, profileDeactivateCmd)
	appCmd.AddCommand(appAddCmd, appRmCmd, appLimitCmd)
	passphraseCmd.AddCommand(passphraseSetCmd)

	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(appCmd)
	rootCmd.AddCommand(extendCmd)
	rootCmd.AddCommand(dismissCmd)
	rootCmd.AddCommand(passphraseCmd)
}

func submitIntent(in domain.Intent, done string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()
	return report(e, in, done)
}

func runProfileList(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	host := e.newHost()
	if _, alive := e.findAgent(); !alive {
		host.Refresh(time.Now())
	}
	set := host.Budget().Profiles
	out := cmd.OutOrStdout()
	for _, p := range set.Profiles {
		marker := " "
		if p.ID == set.ActiveProfileID {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s  (%s)\n", marker, p.Name, p.ID)
		for _, a := range p.Apps {
			fmt.Fprintf(out, "    %-40s %s/day\n", appLabel(a.Name, a.BundleID), formatMinutes(a.DailyLimit))
		}
	}
	return nil
}

func runExtend(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	if _, alive := e.findAgent(); !alive {
		return errNoAgent
	}

	vault, err := e.openVault()
	if err != nil {
		return fmt.Errorf("failed to open vault: %w", err)
	}
	defer vault.Close()

	if _, err := e.submit(domain.Intent{Kind: domain.IntentRequestExtension}); err != nil {
		return err
	}
	passphrase, err := prompt(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), "Passphrase: ")
	if err == nil {
		err = usecase.NewPassphraseGate(vault).Verify(passphrase)
	}
	if err != nil {
		if _, cerr := e.submit(domain.Intent{Kind: domain.IntentCancelExtension}); cerr != nil {
			e.logger.Warn("failed to cancel extension request", zap.Error(cerr))
		}
		return err
	}

	minutes := extendMinutes
	if minutes <= 0 {
		minutes = e.cfg.ExtensionMinutes
	}
	return report(e, domain.Intent{Kind: domain.IntentGrantExtension, Minutes: minutes},
		fmt.Sprintf("Granted %d more minutes", minutes))
}

func runPassphraseSet(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	vault, err := e.openVault()
	if err != nil {
		return fmt.Errorf("failed to open vault: %w", err)
	}
	defer vault.Close()

	in := bufio.NewReader(cmd.InOrStdin())
	current, err := prompt(in, cmd.OutOrStdout(), "Current passphrase: ")
	if err != nil {
		return err
	}
	next, err := prompt(in, cmd.OutOrStdout(), "New passphrase: ")
	if err != nil {
		return err
	}
	if err := usecase.NewPassphraseGate(vault).Set(current, next); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Passphrase changed")
	return nil
}

// prompt reads one trimmed line. Input is echoed.
func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
