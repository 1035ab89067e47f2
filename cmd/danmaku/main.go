// Command danmaku runs the bullet simulation in a terminal
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/danmaku/audio"
	"github.com/lixenwraith/danmaku/bullet"
	"github.com/lixenwraith/danmaku/config"
	"github.com/lixenwraith/danmaku/core"
	"github.com/lixenwraith/danmaku/engine"
	"github.com/lixenwraith/danmaku/pattern"
	"github.com/lixenwraith/danmaku/render"
	"github.com/lixenwraith/danmaku/status"
	"github.com/lixenwraith/danmaku/stream"
)

var (
	configFlag   = flag.String("config", "", "TOML config file")
	debugFlag    = flag.Bool("debug", false, "Write debug logs to logs/danmaku.log")
	serveFlag    = flag.String("serve", "", "Stream frames over websocket on this address, e.g. :8080")
	patternsFlag = flag.String("patterns", "", "Pattern directory, overrides config")
)

func main() {
	flag.Parse()
	os.Exit(runMain())
}

// runMain returns the exit code so deferred cleanup runs before os.Exit
func runMain() int {
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	if logFile := setupLogging(*debugFlag); logFile != nil {
		defer logFile.Close()
	}

	if err := run(); err != nil {
		slog.Error("danmaku exited", "error", err)
		fmt.Fprintf(os.Stderr, "danmaku: %v\n", err)
		return 1
	}
	return 0
}

func run() error {
	cfg, err := config.Load(*configFlag)
	if err != nil {
		return err
	}
	if *serveFlag != "" {
		cfg.StreamAddr = *serveFlag
	}
	if *patternsFlag != "" {
		cfg.PatternsDir = *patternsFlag
	}

	lib, errs := pattern.LoadDir(cfg.PatternsDir)
	slog.Info("patterns loaded", "dir", cfg.PatternsDir, "count", lib.Len(), "rejected", len(errs))
	if lib.Len() == 0 {
		return fmt.Errorf("no patterns loaded from %s", cfg.PatternsDir)
	}

	reg := status.NewRegistry()
	sim := engine.NewSimulation(lib,
		engine.WithLogger(slog.Default()),
		engine.WithStatus(reg),
		engine.WithPoolCapacity(cfg.PoolCapacity),
		engine.WithPoolOptions(
			bullet.WithPlayerRadius(cfg.PlayerRadius),
			bullet.WithParallelThreshold(cfg.ParallelThreshold),
		),
	)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	core.RegisterCleanup(screen.Fini)
	defer screen.Fini()

	renderer := render.NewTerminalRenderer(screen, cfg.WorldScale)

	var sounds *audio.SoundManager
	if cfg.AudioEnabled {
		sounds = audio.NewSoundManager(cfg.MasterVolume)
		if err := sounds.Initialize(); err != nil {
			slog.Warn("audio unavailable, continuing without sound", "error", err)
		}
		defer sounds.Cleanup()
	}

	var hub *stream.Hub
	if cfg.StreamAddr != "" {
		hub = stream.NewHub(
			stream.WithHubLogger(slog.Default()),
			stream.WithOriginPatterns(cfg.StreamOrigins...),
		)
		defer hub.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scheduler := engine.NewClockScheduler(sim, nil, cfg.TickRate)
	scheduler.SetLogger(slog.Default())

	// Rendering stays on the main loop; the scheduler only signals that a frame is ready
	frameReady := make(chan struct{}, 1)
	scheduler.OnFrame(func(f *engine.Frame) {
		if hub != nil {
			if err := hub.Publish(f); err != nil {
				slog.Debug("frame publish failed", "error", err)
			}
		}
		if sounds != nil {
			sounds.ObserveFrame(f)
		}
		select {
		case frameReady <- struct{}{}:
		default:
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(core.Guard(func() error { return scheduler.Run(gctx) }))
	if hub != nil {
		g.Go(core.Guard(func() error { return stream.ListenAndServe(gctx, cfg.StreamAddr, hub) }))
	}

	events := make(chan tcell.Event, 256)
	core.Go(func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	})

	d := newDriver(sim, scheduler.Clock(), sounds)
	d.setExtent(renderer.Extent())

	loop(gctx, d, renderer, events, frameReady)

	cancel()
	return g.Wait()
}

// loop handles input and redraws until quit or ctx is done
func loop(ctx context.Context, d *driver, renderer *render.TerminalRenderer, events <-chan tcell.Event, frameReady <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !d.handleKey(ev) {
					return
				}
			case *tcell.EventResize:
				renderer.Resize()
				d.setExtent(renderer.Extent())
			}
			// Paused frames never arrive; redraw so the status line tracks input
			renderer.RenderFrame(d.sim.Frame(), d.statusLine())

		case <-frameReady:
			renderer.RenderFrame(d.sim.Frame(), d.statusLine())
		}
	}
}
