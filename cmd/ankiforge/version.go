package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kpauljoseph/ankiforge/pkg/updater"
	"github.com/kpauljoseph/ankiforge/pkg/version"
)

var versionCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprint(w, version.GetDetailedVersionInfo())
		if !versionCheck {
			return nil
		}

		info, err := updater.NewChecker(log).CheckForUpdates(cmd.Context())
		if err != nil {
			return err
		}
		if info.IsAvailable {
			fmt.Fprintf(w, "\nVersion %s is available: %s\n", info.LatestVersion, info.DownloadURL)
		} else {
			fmt.Fprintln(w, "\nYou are running the latest version.")
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check GitHub for a newer release")
	rootCmd.AddCommand(versionCmd)
}
