// Command greatworkd is the Great Work orchestration daemon: it loads
// a TOML settings file, opens the SQLite store, and runs the game
// service behind a Temporal-scheduled digest cadence.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"

	"github.com/foxglove-games/greatwork/internal/catalog"
	"github.com/foxglove-games/greatwork/internal/config"
	"github.com/foxglove-games/greatwork/internal/enhancer"
	"github.com/foxglove-games/greatwork/internal/game"
	"github.com/foxglove-games/greatwork/internal/lock"
	"github.com/foxglove-games/greatwork/internal/store"
	"github.com/foxglove-games/greatwork/internal/telemetry"
	"github.com/foxglove-games/greatwork/internal/temporal"
)

func configureLogger(logLevel string, useDev bool) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(logLevel)) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if useDev {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// registerDigestSchedule creates (or confirms) the Temporal schedule
// that drives DigestWorkflow at the configured tick interval: an
// interval schedule with an overlap-skip policy so a slow tick can
// never overlap the next one.
func registerDigestSchedule(ctx context.Context, tc tclient.Client, tickInterval time.Duration, logger *slog.Logger) {
	schedClient := tc.ScheduleClient()
	_, err := schedClient.Create(ctx, tclient.ScheduleOptions{
		ID: "greatwork-digest",
		Spec: tclient.ScheduleSpec{
			Intervals: []tclient.ScheduleIntervalSpec{{Every: tickInterval}},
		},
		Action: &tclient.ScheduleWorkflowAction{
			Workflow:  temporal.DigestWorkflow,
			Args:      []interface{}{temporal.DigestRequest{}},
			TaskQueue: temporal.TaskQueue,
			ID:        "digest",
		},
		Overlap: enumspb.SCHEDULE_OVERLAP_POLICY_SKIP,
	})
	if err != nil {
		if strings.Contains(err.Error(), "already") {
			logger.Info("digest schedule already exists", "interval", tickInterval)
			return
		}
		logger.Error("failed to create digest schedule", "error", err)
		return
	}
	logger.Info("digest schedule registered", "interval", tickInterval)
}

func main() {
	configPath := flag.String("config", "greatwork.toml", "path to config file")
	once := flag.Bool("once", false, "run a single digest tick then exit")
	dev := flag.Bool("dev", false, "use text log format (default is JSON)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("greatworkd starting", "config", *configPath)

	cfgManager, err := config.LoadManager(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := cfgManager.Get()
	logger = configureLogger(cfg.General.LogLevel, *dev)
	slog.SetDefault(logger)

	lockPath := "/tmp/greatworkd.lock"
	if cfg.General.LockFile != "" {
		lockPath = config.ExpandHome(cfg.General.LockFile)
	}
	lockFile, err := lock.Acquire(lockPath)
	if err != nil {
		logger.Error("failed to acquire lock", "error", err)
		os.Exit(1)
	}
	defer lock.Release(lockFile)

	st, err := store.Open(config.ExpandHome(cfg.General.StateDB))
	if err != nil {
		logger.Error("failed to open store", "path", cfg.General.StateDB, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	cat, err := catalog.Load(config.ExpandHome(cfg.DataDir))
	if err != nil {
		logger.Error("failed to load catalog", "path", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	svc := game.New(st, cfg, cfg.General.Seed, enhancer.Passthrough{}, cat, logger.With("component", "game"))
	svc.SetTelemetry(telemetry.LogSink{Log: logger.With("component", "telemetry")})

	if *once {
		logger.Info("running single digest tick (--once mode)")
		released, err := svc.AdvanceDigest()
		if err != nil {
			logger.Error("digest tick failed", "error", err)
			os.Exit(1)
		}
		logger.Info("single digest tick complete", "released", len(released))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		logger.Info("starting temporal worker")
		if err := temporal.StartWorker(svc); err != nil {
			logger.Error("temporal worker error", "error", err)
		}
	}()

	go func() {
		time.Sleep(5 * time.Second) // let the worker register before scheduling
		tc, err := tclient.Dial(tclient.Options{
			HostPort: "127.0.0.1:7233",
		})
		if err != nil {
			logger.Error("failed to create temporal client for schedule", "error", err)
			return
		}
		defer tc.Close()
		registerDigestSchedule(ctx, tc, cfg.General.TickInterval.Duration, logger)
	}()

	logger.Info("greatworkd running", "tick_interval", cfg.General.TickInterval.Duration.String())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	for {
		sig := <-sigCh
		switch sig {
		case syscall.SIGHUP:
			oldStateDB := cfgManager.Get().General.StateDB
			if err := cfgManager.Reload(*configPath); err != nil {
				logger.Error("config reload failed", "error", err)
				continue
			}
			cfg = cfgManager.Get()
			if cfg.General.StateDB != oldStateDB {
				logger.Error("state_db changed and requires restart", "old", oldStateDB, "new", cfg.General.StateDB)
				continue
			}
			svc.ReplaceConfig(cfg)
			logger = configureLogger(cfg.General.LogLevel, *dev)
			slog.SetDefault(logger)
			logger.Info("config reloaded")
		case syscall.SIGINT, syscall.SIGTERM:
			shutdownStart := time.Now()
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
			logger.Info("greatworkd stopped", "shutdown_duration", time.Since(shutdownStart).String())
			return
		default:
			cancel()
			return
		}
	}
}
