package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/scenecore/internal/core/config"
	"github.com/zeusync/scenecore/internal/core/observability/log"
	"github.com/zeusync/scenecore/internal/core/snapshot"
	"github.com/zeusync/scenecore/internal/engine"
	"github.com/zeusync/scenecore/internal/server"
	"github.com/zeusync/scenecore/internal/telemetry"
)

// ConfigPath is the optional YAML override file; empty means defaults only.
type ConfigPath string

// Runtime is one fully wired simulation with its outer surfaces. Feed and
// Recorder are nil when disabled by config.
type Runtime struct {
	Config   *config.Config
	Logger   *log.Logger
	Engine   *engine.Engine
	Monitor  *telemetry.Monitor
	Recorder *telemetry.Recorder
	Feed     *server.Server
}

// RuntimeSet builds a Runtime from a *config.Config.
var RuntimeSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	engine.New,
	ProvideRecorder,
	ProvideMonitor,
	ProvideFeed,
	wire.Struct(new(Runtime), "*"),
)

// ProviderSet builds a Runtime from a ConfigPath.
var ProviderSet = wire.NewSet(ProvideConfig, RuntimeSet)

func ProvideConfig(path ConfigPath) (*config.Config, error) {
	return config.Load(string(path))
}

func ProvideLogger(cfg *config.Config) (*log.Logger, func(), error) {
	level, err := log.Parse(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	l := log.New(level)
	return l, func() { _ = l.Sync() }, nil
}

func ProvideRecorder(cfg *config.Config) (*telemetry.Recorder, func(), error) {
	rec, err := telemetry.NewRecorder(cfg.Telemetry.CSVDir)
	if err != nil {
		return nil, nil, err
	}
	if err := rec.WriteConfig(cfg); err != nil {
		_ = rec.Close()
		return nil, nil, err
	}
	return rec, func() { _ = rec.Close() }, nil
}

// ProvideMonitor attaches a frame monitor to eng's loop and bus, reporting into rec.
func ProvideMonitor(cfg *config.Config, eng *engine.Engine, rec *telemetry.Recorder, logger log.Log) (*telemetry.Monitor, func()) {
	m := telemetry.NewMonitor(cfg.Telemetry.Window)
	m.SetGauges(eng.Gauges)
	if rec != nil {
		m.SetSink(rec, func(err error) { logger.Warn("Failed to write telemetry", log.Error(err)) })
	}
	eng.AddObserver(m)
	eng.Bus().AddObserver(m)
	return m, func() { eng.Bus().RemoveObserver(m) }
}

// ProvideFeed builds the websocket feed when enabled and subscribes it to eng's
// frames and bus. The server is not started.
func ProvideFeed(cfg *config.Config, eng *engine.Engine, logger log.Log) (*server.Server, func(), error) {
	if !cfg.Feed.Enabled {
		return nil, func() {}, nil
	}
	sc := server.DefaultConfig()
	sc.ListenAddr = cfg.Feed.Addr
	if cfg.Feed.EveryFrames > 0 {
		sc.EveryFrames = cfg.Feed.EveryFrames
	}
	s, err := server.NewServer(sc, func(frame uint64) snapshot.Snapshot {
		return snapshot.Capture(eng.Scene(), frame)
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	eng.AddObserver(s)
	sub := eng.Bus().SubscribeAll(s.OnEvent)
	return s, func() {
		eng.Bus().Unsubscribe(sub)
		_ = s.Close()
	}, nil
}
