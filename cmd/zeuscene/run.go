package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/zeusync/zeuscene/internal/core/observability/log"
	"github.com/zeusync/zeuscene/internal/core/scene"
	"github.com/zeusync/zeuscene/internal/injector"
	"github.com/zeusync/zeuscene/internal/tui"
)

func newRunCmd() *cobra.Command {
	var (
		configPath string
		fps        int
		inspect    string
		opts       runOptions
	)
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Load a scene config, mount its components and run the frame loop",
		Example: "zeuscene run --config scene.yaml --inspect :7070",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if fps > 0 {
				cfg.Scheduler.FPS = fps
			}
			if inspect != "" {
				cfg.Inspector.Enabled = true
				cfg.Inspector.Addr = inspect
			}
			if opts.tui {
				cfg.Log.OutputPaths = redirectConsole(cfg.Log.OutputPaths)
			}
			return run(cmd.Context(), cfg, opts)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "scene config file (YAML)")
	cmd.Flags().IntVar(&fps, "fps", 0, "override the configured frame rate")
	cmd.Flags().StringVar(&inspect, "inspect", "", "enable the inspector on this address")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "show a live terminal dashboard with mouse picking")
	cmd.Flags().StringVar(&opts.profile, "profile", "", "write a profile to the working directory: cpu, mem, block, mutex or trace")
	return cmd
}

func loadConfig(path string) (scene.Config, error) {
	if path == "" {
		return scene.DefaultConfig(), nil
	}
	cfg, err := scene.LoadConfigFile(path)
	if err != nil {
		return scene.Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return *cfg, nil
}

type runOptions struct {
	tui     bool
	profile string
}

func run(ctx context.Context, cfg scene.Config, opts runOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.profile != "" {
		mode, err := profileMode(opts.profile)
		if err != nil {
			return err
		}
		defer profile.Start(mode, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}

	var sceneOpts []scene.Option
	var dash *tui.Dashboard
	if opts.tui {
		screen, err := tcell.NewScreen()
		if err != nil {
			return err
		}
		if err = screen.Init(); err != nil {
			return err
		}
		defer screen.Fini()
		dash = tui.New(screen, 100*time.Millisecond, nil)
		sceneOpts = append(sceneOpts, scene.WithRenderer(dash))
	}

	app, err := injector.InitializeApp(cfg, sceneOpts)
	if err != nil {
		return err
	}
	logger := app.Logger
	defer func() { _ = logger.Sync() }()

	if err = registerBuiltins(app.Scene); err != nil {
		return err
	}
	if err = app.Scene.Populate(ctx); err != nil {
		_ = app.Scene.Close()
		return err
	}
	if err = app.Scene.Start(); err != nil {
		return err
	}
	if app.Inspector != nil {
		if err = app.Inspector.Start(ctx); err != nil {
			_ = app.Scene.Close()
			return fmt.Errorf("start inspector: %w", err)
		}
	}

	logger.Info("scene running", log.Int("instances", app.Scene.Registry().Len()))
	if dash != nil {
		dash.Bind(app.Scene)
		dash.Run(ctx)
	} else {
		<-ctx.Done()
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if app.Inspector != nil {
		if err = app.Inspector.Stop(shutdownCtx); err != nil {
			logger.Warn("inspector shutdown", log.Error(err))
		}
	}
	return app.Scene.Close()
}

func profileMode(name string) (func(*profile.Profile), error) {
	switch name {
	case "cpu":
		return profile.CPUProfile, nil
	case "mem":
		return profile.MemProfile, nil
	case "block":
		return profile.BlockProfile, nil
	case "mutex":
		return profile.MutexProfile, nil
	case "trace":
		return profile.TraceProfile, nil
	default:
		return nil, fmt.Errorf("unknown profile mode %q", name)
	}
}

// redirectConsole moves console log sinks to a file so they do not draw
// over the dashboard.
func redirectConsole(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "stderr" || p == "stdout" {
			p = "zeuscene.log"
		}
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}
