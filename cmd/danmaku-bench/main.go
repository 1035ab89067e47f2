// Profiling:
// go build ./cmd/danmaku-bench
// ./danmaku-bench -profile cpu -ticks 5000
// go tool pprof -http=":8000" ./danmaku-bench cpu.pprof

// Command danmaku-bench steps the simulation headless and reports throughput
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/profile"

	"github.com/lixenwraith/danmaku/bullet"
	"github.com/lixenwraith/danmaku/config"
	"github.com/lixenwraith/danmaku/engine"
	"github.com/lixenwraith/danmaku/pattern"
	"github.com/lixenwraith/danmaku/status"
	"github.com/lixenwraith/danmaku/vmath"
)

var (
	configFlag   = flag.String("config", "", "TOML config file")
	patternsFlag = flag.String("patterns", "", "Pattern directory, overrides config")
	ticksFlag    = flag.Int("ticks", 3000, "Simulation steps to run")
	fireEvery    = flag.Int("fire-every", 10, "Fire every pattern once per this many steps")
	profileFlag  = flag.String("profile", "", "Profile mode: cpu|mem|alloc|block|mutex")
	verboseFlag  = flag.Bool("v", false, "Log to stderr")
)

func main() {
	flag.Parse()

	handler := slog.NewTextHandler(io.Discard, nil)
	if *verboseFlag {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "danmaku-bench: %v\n", err)
		os.Exit(1)
	}
}

func profileMode(name string) (func(*profile.Profile), error) {
	switch name {
	case "cpu":
		return profile.CPUProfile, nil
	case "mem":
		return profile.MemProfile, nil
	case "alloc":
		return profile.MemProfileAllocs, nil
	case "block":
		return profile.BlockProfile, nil
	case "mutex":
		return profile.MutexProfile, nil
	default:
		return nil, fmt.Errorf("unknown profile mode %q", name)
	}
}

func run() error {
	cfg, err := config.Load(*configFlag)
	if err != nil {
		return err
	}
	if *patternsFlag != "" {
		cfg.PatternsDir = *patternsFlag
	}

	lib, errs := pattern.LoadDir(cfg.PatternsDir)
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "skipped: %v\n", err)
	}
	if lib.Len() == 0 {
		return fmt.Errorf("no patterns loaded from %s", cfg.PatternsDir)
	}

	reg := status.NewRegistry()
	sim := engine.NewSimulation(lib,
		engine.WithStatus(reg),
		engine.WithPoolCapacity(cfg.PoolCapacity),
		engine.WithPoolOptions(
			bullet.WithPlayerRadius(cfg.PlayerRadius),
			bullet.WithParallelThreshold(cfg.ParallelThreshold),
		),
	)
	sim.SetPlayer(vmath.V2(0, -200))

	if *profileFlag != "" {
		mode, err := profileMode(*profileFlag)
		if err != nil {
			return err
		}
		defer profile.Start(mode, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}

	dt := float32(1) / float32(cfg.TickRate)
	names := lib.Names()
	every := max(*fireEvery, 1)

	start := time.Now()
	peak := 0
	for i := range *ticksFlag {
		if i%every == 0 {
			for _, name := range names {
				sim.Fire(name)
			}
		}
		f := sim.Step(dt)
		peak = max(peak, f.Bullets())
	}
	elapsed := time.Since(start)

	ticks := max(*ticksFlag, 1)
	fmt.Printf("patterns=%d ticks=%d elapsed=%s per_tick=%s peak_bullets=%d\n",
		len(names), *ticksFlag, elapsed, elapsed/time.Duration(ticks), peak)
	fmt.Println(reg.Summary(
		status.BulletSpawned, status.BulletEvicted, status.BulletExpired,
		status.BulletCollided, status.PlayerHits, status.EngineStepMs,
	))
	return nil
}
