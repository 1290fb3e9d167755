package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

// options holds the command line flags.
type options struct {
	configPath string
	debug      bool
	sortMethod string
}

// viewerFunc runs the viewer for a prepared session. Swapped out in tests.
type viewerFunc func(ctx context.Context, session *session) error

// session is everything resolved before the window opens.
type session struct {
	configPath string
	config     ConfigLoadResult
	scan       ScanResult
	budget     *MemoryBudget
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr, runViewer))
}

func run(args []string, stderr io.Writer, viewer viewerFunc) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Flag errors are reported before --debug is known
	setupLogging(stderr, false)

	cmd := newRootCmd(stderr, viewer)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		log.Error(err.Error())
		return 1
	}
	return 0
}

func newRootCmd(stderr io.Writer, viewer viewerFunc) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "fiv [directory | image | archive]",
		Short: "A fast image viewer with background preloading",
		Long: "fiv shows the images of a directory, the directory of an image, or a\n" +
			"zip/rar/7z archive. Images around the current one are decoded in the\n" +
			"background so browsing with the arrow keys never waits.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			setupLogging(stderr, opts.debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := ""
			if len(args) > 0 {
				arg = args[0]
			}
			s, err := prepareSession(opts, arg)
			if err != nil {
				return err
			}
			return viewer(cmd.Context(), s)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default ~/.fiv.yaml)")
	cmd.Flags().BoolVarP(&opts.debug, "debug", "d", false, "Enable debug logging")
	cmd.Flags().StringVarP(&opts.sortMethod, "sort", "s", "", "Sort method: natural, simple or entry")

	return cmd
}

// prepareSession loads the config and scans the images to show.
func prepareSession(opts *options, arg string) (*session, error) {
	configPath := opts.configPath
	if configPath == "" {
		configPath = getConfigPath()
	}
	config := loadConfigFromPath(configPath)
	debugLog("Config %s: %s", configPath, config.Status)

	sortName := config.Config.SortMethod
	if opts.sortMethod != "" {
		sortName = opts.sortMethod
	}
	sortMethod, ok := parseSortMethod(sortName)
	if !ok {
		return nil, zerr.With(zerr.New("unknown sort method"), "sort", sortName)
	}

	scan, err := collectImages(arg, sortMethod)
	if err != nil {
		return nil, err
	}

	budget := NewMemoryBudget(config.Config.Memory.Budget())
	log.WithFields(log.Fields{
		"source": scan.Source,
		"count":  len(scan.Paths),
		"budget": formatBytes(budget.Total()),
	}).Info("Viewing images")

	return &session{
		configPath: configPath,
		config:     config,
		scan:       scan,
		budget:     budget,
	}, nil
}

// runViewer opens the window and blocks until it is closed.
func runViewer(ctx context.Context, s *session) error {
	if err := InitGraphics(); err != nil {
		return zerr.Wrap(err, "failed to load font")
	}

	game := NewGame(s.scan, s.config, s.budget)
	game.LoadInitial(ctx)
	game.Start(ctx)
	defer game.Shutdown()

	// Ctrl-C closes the window like the exit key does
	stop := context.AfterFunc(ctx, game.shared.RequestShutdown)
	defer stop()

	render := s.config.Config.Render
	ebiten.SetWindowTitle("Fiv - Loading...")
	ebiten.SetWindowSize(render.WindowWidth, render.WindowHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetScreenClearedEveryFrame(false)

	if err := ebiten.RunGame(game); err != nil {
		return zerr.Wrap(err, "window error")
	}
	game.SaveWindowSize(s.configPath)
	return nil
}
