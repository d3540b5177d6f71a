// Command headless runs the flock without a window: a fixed-dt loop with
// CSV telemetry and an optional websocket endpoint streaming snapshots to
// browser clients.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flocklab/go-flocking-simulation/pkg/behavior"
	"github.com/flocklab/go-flocking-simulation/pkg/server"
	"github.com/flocklab/go-flocking-simulation/pkg/simulation"
	"github.com/flocklab/go-flocking-simulation/pkg/telemetry"
)

// flushInterval is the number of buffered telemetry rows that triggers an
// incremental flush, so an interrupted run keeps everything but its tail.
const flushInterval = 600

func main() {
	configFile := flag.String("config", "", "JSON config file (defaults used when empty)")
	schemaFile := flag.String("schema", "config.schema.json", "JSON schema for config validation")
	numAgents := flag.Int("n", 0, "population size (overrides config)")
	dt := flag.Float64("dt", 1.0/60.0, "simulated seconds per tick")
	updates := flag.Int("updates", 1, "simulation steps per loop iteration")
	maxTicks := flag.Int("ticks", 0, "stop after this many ticks (0 = run until interrupted)")
	csvPath := flag.String("csv", "", "telemetry CSV output path (overrides config)")
	listenAddr := flag.String("listen", "", "websocket listen address, e.g. :8080 (overrides config)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg := simulation.DefaultConfig()
	if *configFile != "" {
		loaded, err := simulation.LoadConfig(*configFile, *schemaFile)
		if err != nil {
			slog.Error("config load failed", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *numAgents > 0 {
		cfg.NumAgents = *numAgents
	}
	if *csvPath != "" {
		cfg.TelemetryPath = *csvPath
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}

	flock, err := behavior.NewWithTuning(cfg.NumAgents, cfg.Tuning())
	if err != nil {
		slog.Error("flock creation failed", "error", err)
		os.Exit(1)
	}

	rec := telemetry.NewRecorder(cfg.TelemetryPath)

	var hub *server.Hub
	if cfg.ListenAddr != "" {
		hub = server.NewHub()
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", hub.HandleWS)
		go func() {
			slog.Info("websocket server listening", "addr", cfg.ListenAddr)
			if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil {
				slog.Error("http serve failed", "error", err)
				os.Exit(1)
			}
		}()
	}

	// An interrupt cancels the context; run returns and the final flush
	// below still happens.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run(ctx, flock, hub, rec, *dt, *updates, *maxTicks, cfg.ListenAddr != "")

	if err := rec.Flush(); err != nil {
		slog.Error("telemetry flush failed", "error", err)
		os.Exit(1)
	}
	if rec.Total() > 0 {
		slog.Info("telemetry written", "path", cfg.TelemetryPath, "rows", rec.Total())
	}
}

// run drives the flock until the context is cancelled or maxTicks is
// reached (0 means no limit). With a hub attached it paces itself in real
// time and serves client controls; without one it free-runs. Telemetry is
// flushed incrementally every flushInterval rows; the caller owns the
// final flush.
func run(ctx context.Context, flock *behavior.Flock, hub *server.Hub, rec *telemetry.Recorder, dt float64, updates, maxTicks int, realtime bool) {
	var ticker *time.Ticker
	if realtime {
		ticker = time.NewTicker(time.Duration(dt * float64(time.Second)))
		defer ticker.Stop()
	}

	tick := 0
	simTime := 0.0
	paused := false

	for maxTicks == 0 || tick < maxTicks {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if hub != nil {
			drainControls(hub, flock, &paused)
		}

		if !paused {
			for i := 0; i < updates; i++ {
				if err := flock.Update(dt); err != nil {
					slog.Error("simulation step failed", "error", err)
					return
				}
				tick++
				simTime += dt
			}

			stats, err := telemetry.Sample(tick, simTime, flock)
			if err != nil {
				slog.Error("telemetry sample failed", "error", err)
				return
			}
			rec.Record(stats)
			if rec.Len() >= flushInterval {
				if err := rec.Flush(); err != nil {
					slog.Error("telemetry flush failed", "error", err)
					return
				}
			}

			if hub != nil && hub.ClientCount() > 0 {
				if snap, err := server.BuildSnapshot(tick, simTime, flock); err == nil {
					hub.Broadcast(snap)
				}
			}
		}

		if ticker != nil {
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}
}

func drainControls(hub *server.Hub, flock *behavior.Flock, paused *bool) {
	for {
		select {
		case ctrl := <-hub.Controls():
			switch ctrl.Type {
			case "set_tuning":
				flock.SetTuning(ctrl.Apply(flock.Tuning()))
			case "pause":
				*paused = true
			case "resume":
				*paused = false
			case "reset":
				flock.Reset()
			default:
				slog.Warn("unknown control message", "type", ctrl.Type)
			}
		default:
			return
		}
	}
}
