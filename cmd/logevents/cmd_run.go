package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"logevents/cmd/logevents/ui"
	"logevents/internal/editor"
	"logevents/internal/logging"
	"logevents/pkg/ecs"
	"logevents/pkg/logevents"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// editorLogFile receives log lines while the editor owns the terminal.
const editorLogFile = "logevents.log"

type runOptions struct {
	ticks    int
	interval time.Duration
	editor   bool
}

func newRunCmd(c *cli) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the demo app",
		Long: `Runs the demo app with event logging until it exits, --ticks is
reached or the process is interrupted. Settings are read from the settings
file at startup and written back on exit.

With --editor the settings editor takes over the terminal and log lines go
to the configured log file (logevents.log when none is set).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDemo(cmd.Context(), opts)
		},
	}
	cmd.Flags().IntVar(&opts.ticks, "ticks", 0, "Exit after this many ticks (0 = run until interrupted)")
	cmd.Flags().DurationVar(&opts.interval, "tick-interval", 100*time.Millisecond, "Time between ticks")
	cmd.Flags().BoolVar(&opts.editor, "editor", false, "Open the settings editor")
	return cmd
}

func (c *cli) runDemo(ctx context.Context, opts *runOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	withEditor := opts.editor || c.cfg.Editor.Enabled
	if withEditor && c.cfg.Logging.File == "" {
		c.cfg.Logging.File = editorLogFile
		if err := c.buildLogger(); err != nil {
			return err
		}
	}

	var bridge *editor.Bridge
	if withEditor {
		bridge = editor.NewBridge(64)
	}
	app, runID := c.newApp(bridge, opts.ticks)
	logger := c.logger.With(zap.String("run_id", runID))
	logger.Info("starting demo",
		zap.String("settings", c.cfg.SettingsPath),
		zap.Int("ticks", opts.ticks),
		zap.Duration("interval", opts.interval),
		zap.Bool("editor", withEditor))

	var (
		exit ecs.AppExit
		err  error
	)
	if withEditor {
		exit, err = runWithEditor(ctx, app, bridge, opts.interval)
	} else {
		exit = app.Run(ctx, opts.interval)
	}
	if err != nil {
		return err
	}

	logger.Info("demo finished", zap.Uint64("ticks", app.World().Tick()), zap.Int("code", exit.Code))
	if exit.Code != 0 {
		return fmt.Errorf("demo exited with code %d", exit.Code)
	}
	return nil
}

// newApp builds the demo app. With ticks > 0 the app exits on its own after
// that many ticks.
func (c *cli) newApp(bridge *editor.Bridge, ticks int) (*ecs.App, string) {
	runID := uuid.NewString()
	app := ecs.New(
		ecs.WithLogger(c.logger),
		ecs.WithLocationTracking(c.cfg.TrackLocation),
	)

	opts := []logevents.Option{
		logevents.WithConfig(c.cfg),
		logevents.WithLogger(c.logger.With(zap.String("run_id", runID))),
	}
	if bridge != nil {
		opts = append(opts, logevents.WithEditor(bridge))
	}
	app.AddPlugins(logevents.New(opts...))
	registerDemo(app)

	if ticks > 0 {
		app.AddSystems(ecs.Update, func(w *ecs.World) {
			if w.Tick()+1 >= uint64(ticks) {
				ecs.Exit(w, 0)
			}
		}, ecs.Named("demo.tick_limit"))
	}
	logging.Boot("demo app built: run_id=%s plugins=logevents,demo,foo,bar", runID)
	return app, runID
}

// runWithEditor runs the app loop and the editor side by side. Whichever
// ends first stops the other; the app always gets its final tick, so
// settings are saved.
func runWithEditor(ctx context.Context, app *ecs.App, bridge *editor.Bridge, interval time.Duration) (ecs.AppExit, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	// Latest snapshot wins; the host tick never blocks on the terminal.
	snaps := make(chan editor.Snapshot, 1)
	bridge.OnSnapshot(func(s editor.Snapshot) {
		select {
		case <-snaps:
		default:
		}
		snaps <- s
	})

	prog := tea.NewProgram(ui.NewEditorPageModel(bridge.Send),
		tea.WithContext(gctx),
		tea.WithAltScreen(),
	)

	var exit ecs.AppExit
	g.Go(func() error {
		defer cancel()
		exit = app.Run(gctx, interval)
		return nil
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case s := <-snaps:
				prog.Send(ui.SnapshotMsg(s))
			}
		}
	})
	g.Go(func() error {
		defer cancel()
		if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("editor failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	if dropped := bridge.Dropped(); dropped > 0 {
		logging.Get(logging.CategoryEditor).Warn("%d edits dropped, queue full", dropped)
	}
	return exit, err
}
