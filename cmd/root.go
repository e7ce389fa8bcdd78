package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/surge-downloader/halo/internal/config"
	"github.com/surge-downloader/halo/internal/core"
	"github.com/surge-downloader/halo/internal/engine/loop"
	"github.com/surge-downloader/halo/internal/notify"
	"github.com/surge-downloader/halo/internal/ring"
	"github.com/surge-downloader/halo/internal/tui"
	"github.com/surge-downloader/halo/internal/utils"
)

// Version information - set via ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "halo",
	Short:   "A progress ring around the screen cutout, driven by download notifications",
	Long:    `Halo draws download progress as a ring around the display cutout. Run without arguments to preview it in the terminal.`,
	Version: Version,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		initializeGlobalState()

		isMaster, err := AcquireLock()
		if err != nil {
			return fmt.Errorf("acquiring lock: %w", err)
		}
		if !isMaster {
			return fmt.Errorf("halo is already running")
		}
		defer func() {
			if err := ReleaseLock(); err != nil {
				utils.Debug("Error releasing lock: %v", err)
			}
		}()

		store := openStore()
		tui.ApplyTheme(store.Settings().General.Theme)

		src, closeSrc, err := buildSource(cmd)
		if err != nil {
			return err
		}
		defer closeSrc()

		pill, _ := cmd.Flags().GetBool("pill")
		return startTUI(store, src, pill)
	},
}

// startTUI runs the overlay on its own loop and hosts it in the terminal.
func startTUI(store *config.Store, src notify.Source, pill bool) error {
	canvas := ring.NewCanvas(tui.DefaultCanvasCols, tui.DefaultCanvasRows)
	l := loop.New()
	overlay := core.New(store, canvas, l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := overlay.Run(ctx); err != nil && ctx.Err() == nil {
			utils.Debug("Overlay loop ended: %v", err)
		}
	}()
	overlay.Attach()
	shape := ring.ShapeCircle
	if pill {
		shape = ring.ShapePill
	}
	overlay.SetGeometry(tui.CanvasCutout(canvas, shape))
	defer func() { _ = overlay.Shutdown() }()

	go func() {
		if err := src.Run(ctx, overlay); err != nil && ctx.Err() == nil {
			utils.Debug("Notification source ended: %v", err)
		}
	}()

	m, err := tui.NewRootModel(overlay, canvas)
	if err != nil {
		return fmt.Errorf("subscribing to overlay: %w", err)
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// buildSource picks the notification source from flags. Without --feed a
// simulator runs.
func buildSource(cmd *cobra.Command) (notify.Source, func(), error) {
	feedPath, _ := cmd.Flags().GetString("feed")
	speed, _ := cmd.Flags().GetFloat64("speed")
	seed, _ := cmd.Flags().GetUint64("seed")
	recordPath, _ := cmd.Flags().GetString("record")

	closers := []io.Closer{}
	closeAll := func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				utils.Debug("Error closing: %v", err)
			}
		}
	}

	var src notify.Source
	if feedPath != "" {
		r, err := openFeed(feedPath, cmd.InOrStdin())
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, r)
		src = notify.NewFeed(r).WithSpeed(speed)
	} else {
		cfg := notify.DefaultSimConfig()
		cfg.Seed = seed
		src = notify.NewSimulator(cfg)
	}

	if recordPath != "" {
		f, err := os.Create(recordPath)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("creating record file: %w", err)
		}
		closers = append(closers, f)
		src = recordingSource{src: src, w: f}
	}
	return src, closeAll, nil
}

// recordingSource tees every event of src into a feed file.
type recordingSource struct {
	src notify.Source
	w   io.Writer
}

func (r recordingSource) Run(ctx context.Context, l notify.Listener) error {
	return r.src.Run(ctx, notify.NewRecorder(r.w, l))
}

// openStore loads the persisted settings, falling back to defaults in memory
// when the file is unreadable.
func openStore() *config.Store {
	store, err := config.OpenStore(config.GetSettingsPath())
	if err != nil {
		utils.Debug("Error loading settings, using defaults: %v", err)
		return config.NewStore(nil)
	}
	return store
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	addSourceFlags(rootCmd)
	rootCmd.Flags().String("record", "", "Record every notification event to this feed file")
	rootCmd.Flags().Bool("pill", false, "Use a pill-shaped cutout instead of a circle")
	rootCmd.SetVersionTemplate("Halo version {{.Version}}\n")
}

func addSourceFlags(c *cobra.Command) {
	c.Flags().StringP("feed", "f", "", "Replay a JSON-lines notification feed (\"-\" for stdin)")
	c.Flags().Float64("speed", 1, "Feed playback speed; 0 replays without delays")
	c.Flags().Uint64("seed", 0, "Simulator seed (0 picks one)")
}

// initializeGlobalState creates the directories and configures logging
func initializeGlobalState() {
	if err := config.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	utils.ConfigureDebug(config.GetLogsDir())

	retention := config.DefaultSettings().General.LogRetentionCount
	if settings, err := config.LoadSettings(); err == nil {
		retention = settings.General.LogRetentionCount
	}
	utils.CleanupLogs(retention)
}
