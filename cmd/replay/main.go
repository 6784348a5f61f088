// Replay — a thin driver for the binary-market decision core.
//
// Architecture:
//
//	main.go                    — entry point: loads config, replays a tape file, writes decisions
//	internal/paramstore        — hot-reloading parameter store (C1)
//	internal/features          — per-tick delta/volatility computation (C2)
//	internal/policy            — pure entry/side/sizing/gating/execution functions (C3)
//	internal/integrator        — per-market state and the fixed filter pipeline (C4)
//	internal/marketkey         — venue slug -> canonical market key (C5)
//	internal/audit             — append-only decision log (C6)
//	internal/core              — wires C1-C6 behind TapeSource/DecisionSink
//	internal/replay            — JSONL-backed TapeSource/DecisionSink reference adapter
//
// This binary never talks to a real venue — it replays a recorded tape file
// through the core and writes the resulting decisions back out, which is
// enough to drive the core deterministically for parity debugging and
// integration testing without the out-of-scope venue connectivity layer.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"binarycore/internal/config"
	"binarycore/internal/core"
	"binarycore/internal/replay"
)

func main() {
	cfgPath := os.Getenv("CORE_CONFIG")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err, "path", cfgPath)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Logging.Level)}
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)

	c, err := core.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create core", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig.String())
		cancel()
	}()

	go c.Start(ctx)

	tapePath := os.Getenv("CORE_TAPE_PATH")
	decisionsPath := os.Getenv("CORE_DECISIONS_PATH")
	if tapePath == "" || decisionsPath == "" {
		logger.Error("CORE_TAPE_PATH and CORE_DECISIONS_PATH are required")
		os.Exit(1)
	}

	source, err := replay.OpenFileTapeSource(tapePath)
	if err != nil {
		logger.Error("failed to open tape file", "error", err, "path", tapePath)
		os.Exit(1)
	}
	defer source.Close()

	sink, err := replay.CreateFileDecisionSink(decisionsPath)
	if err != nil {
		logger.Error("failed to create decisions file", "error", err, "path", decisionsPath)
		os.Exit(1)
	}
	defer sink.Close()

	logger.Info("replay started", "tape", tapePath, "decisions", decisionsPath)

	ticks := 0
	trades := 0
	for {
		select {
		case <-ctx.Done():
			logger.Info("replay cancelled", "ticks", ticks, "trades", trades)
			return
		default:
		}

		rawKey, state, ok, err := source.Next(ctx)
		if err != nil {
			logger.Error("tape read failed", "error", err)
			break
		}
		if !ok {
			break
		}

		decision := c.Tick(rawKey, state.TimestampMs, state.UpPrice, state.DownPrice)
		ticks++
		if decision.ShouldTrade {
			trades++
		}

		if err := sink.Emit(decision); err != nil {
			logger.Error("failed to write decision", "error", err)
		}
	}

	logger.Info("replay finished", "ticks", ticks, "trades", trades)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
