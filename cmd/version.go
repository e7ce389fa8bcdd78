package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/surge-downloader/halo/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and optionally check for updates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Halo %s (built %s)\n", Version, BuildTime)

		check, _ := cmd.Flags().GetBool("check")
		if !check {
			return nil
		}
		info, err := version.CheckForUpdate(cmd.Context(), Version)
		if err != nil {
			return err
		}
		switch {
		case info == nil:
			fmt.Fprintln(out, "Development build, skipping update check")
		case info.UpdateAvailable:
			fmt.Fprintf(out, "Update available: %s\n%s\n", info.LatestVersion, info.ReleaseURL)
		default:
			fmt.Fprintln(out, "Up to date")
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("check", false, "Check GitHub for a newer release")
	rootCmd.AddCommand(versionCmd)
}
