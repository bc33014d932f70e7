package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/zeusync/scenecore/internal/core/config"
	"github.com/zeusync/scenecore/internal/core/loop"
	"github.com/zeusync/scenecore/internal/core/observability/log"
	"github.com/zeusync/scenecore/internal/injector"
	"github.com/zeusync/scenecore/internal/telemetry"
	"github.com/zeusync/scenecore/pkg/concurrent"
)

type options struct {
	configPath string
	scenePath  string
	frames     int
	instances  int
	feedAddr   string
	csvDir     string
	logLevel   string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "YAML config file layered over the defaults")
	flag.StringVar(&opts.scenePath, "scene", "", "YAML scene file (the demo scene when empty)")
	flag.IntVar(&opts.frames, "frames", 0, "frames to simulate at the fixed delta; 0 runs in real time until interrupted")
	flag.IntVar(&opts.instances, "instances", 1, "independent simulations to run side by side")
	flag.StringVar(&opts.feedAddr, "feed", "", "serve the websocket feed on this address (single instance only)")
	flag.StringVar(&opts.csvDir, "csv", "", "write telemetry CSV into this directory")
	flag.StringVar(&opts.logLevel, "log", "", "log level override: debug, info, warn, error, silent")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintln(os.Stderr, "scenecore:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.feedAddr != "" {
		cfg.Feed.Enabled = true
		cfg.Feed.Addr = opts.feedAddr
	}
	if opts.csvDir != "" {
		cfg.Telemetry.CSVDir = opts.csvDir
	}
	if opts.instances < 1 {
		opts.instances = 1
	}
	if opts.instances > 1 && cfg.Feed.Enabled {
		return fmt.Errorf("the feed serves a single instance; got -instances=%d", opts.instances)
	}

	reports, err := concurrent.Collect(ctx, concurrent.Range(opts.instances), 0,
		func(ctx context.Context, i int) (telemetry.Report, error) {
			c := *cfg
			if opts.instances > 1 && c.Telemetry.CSVDir != "" {
				c.Telemetry.CSVDir = filepath.Join(c.Telemetry.CSVDir, fmt.Sprintf("instance-%d", i))
			}
			return simulate(ctx, &c, opts, i)
		})
	for i, r := range reports {
		fmt.Printf("instance %d: frames=%d sim_time=%.2fs entities=%d bodies=%d particles=%d\n",
			i, r.Frame, r.SimTime, r.Entities, r.Bodies, r.Particles)
	}
	return err
}

func simulate(ctx context.Context, cfg *config.Config, opts options, instance int) (telemetry.Report, error) {
	rt, cleanup, err := injector.InitializeRuntimeFromConfig(cfg)
	if err != nil {
		return telemetry.Report{}, err
	}
	defer cleanup()

	logger := rt.Logger.With(log.Int("instance", instance))

	if opts.scenePath != "" {
		if _, err := rt.Engine.LoadSceneFile(opts.scenePath); err != nil {
			return telemetry.Report{}, err
		}
	} else if err := rt.Engine.BuildDemo(); err != nil {
		return telemetry.Report{}, err
	}

	if rt.Feed != nil {
		if err := rt.Feed.Start(ctx); err != nil {
			return telemetry.Report{}, err
		}
		logger.Info("Feed available", log.String("addr", rt.Feed.Addr().String()))
	}

	var driver loop.Driver
	if opts.frames > 0 {
		driver = loop.Repeat(cfg.Loop.FixedDelta, opts.frames)
	} else {
		ticker := loop.NewTickerDriver(cfg.Loop.DriverInterval)
		defer ticker.Close()
		driver = ticker
	}

	start := time.Now()
	if err := rt.Engine.Run(ctx, driver); err != nil {
		return telemetry.Report{}, err
	}

	report := rt.Monitor.Last()
	report.Frame = rt.Engine.Frame()
	report.SimTime = rt.Engine.SimTime()
	g := rt.Engine.Gauges()
	report.Entities, report.Bodies, report.Colliders = g.Entities, g.Bodies, g.Colliders
	report.Scripts, report.Particles = g.Scripts, g.Particles

	logger.Info("Simulation finished",
		log.Uint64("frames", rt.Engine.Frame()),
		log.Float64("sim_time", rt.Engine.SimTime()),
		log.Duration("wall", time.Since(start)))
	return report, nil
}
