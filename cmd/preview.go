package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview <dynamic|geometry|trigger>",
	Short: "Run a preview cycle and print it",
	Long: `Preview runs the dynamic preview (a synthetic download ramp with the
configured finish animation) or the geometry preview (a full ring around the
cutout). Any trigger such as "error" or "progress:40" is accepted as well.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"dynamic", "geometry", "error"},
	RunE: func(cmd *cobra.Command, args []string) error {
		initializeGlobalState()

		trigger, err := parseTriggerArg(args[0])
		if err != nil {
			return err
		}

		ascii, _ := cmd.Flags().GetBool("ascii")
		drain, _ := cmd.Flags().GetDuration("drain")

		store := openStore()
		return runHeadless(cmd.Context(), cmd.OutOrStdout(), store, triggerSource{store: store, trigger: trigger}, headlessOptions{
			Frames:      !ascii,
			Canvas:      ascii,
			Drain:       drain,
			WaitVisible: true,
		})
	},
}

func init() {
	previewCmd.Flags().Bool("ascii", false, "Draw the ring in the terminal instead of printing frame lines")
	previewCmd.Flags().Duration("drain", 6*time.Second, "Upper bound on how long the preview may run")
	rootCmd.AddCommand(previewCmd)
}
