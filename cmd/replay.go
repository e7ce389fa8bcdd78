package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/surge-downloader/halo/internal/notify"
	"github.com/surge-downloader/halo/internal/utils"
)

var replayCmd = &cobra.Command{
	Use:   "replay <feed>",
	Short: "Replay a notification feed headlessly and print the overlay events",
	Long: `Replay reads a JSON-lines feed of posted and retracted notifications
("-" reads stdin), drives the overlay with it and prints the aggregate events.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		initializeGlobalState()

		speed, _ := cmd.Flags().GetFloat64("speed")
		frames, _ := cmd.Flags().GetBool("frames")
		drain, _ := cmd.Flags().GetDuration("drain")

		r, err := openFeed(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}
		defer func() {
			if err := r.Close(); err != nil {
				utils.Debug("Error closing feed: %v", err)
			}
		}()

		feed := notify.NewFeed(r).WithSpeed(speed)
		err = runHeadless(cmd.Context(), cmd.OutOrStdout(), openStore(), feed, headlessOptions{
			Frames: frames,
			Drain:  drain,
		})
		if n := feed.Skipped(); n > 0 {
			cmd.PrintErrf("Skipped %d malformed lines\n", n)
		}
		return err
	},
}

func init() {
	replayCmd.Flags().Float64("speed", 1, "Playback speed; 0 replays without delays")
	replayCmd.Flags().Bool("frames", false, "Print a line for every rendered frame")
	replayCmd.Flags().Duration("drain", 3*time.Second, "How long to wait for the ring to settle after the feed ends")
	rootCmd.AddCommand(replayCmd)
}
