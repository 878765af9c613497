// Package main implements the Poseidon headless simulation driver: a
// fixed-timestep maritime physics world with an HTTP control surface, a
// WebSocket live feed, and optional NATS event publishing.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/PossumXI/Poseidon/internal/api"
	"github.com/PossumXI/Poseidon/internal/bridge"
	"github.com/PossumXI/Poseidon/internal/events"
	"github.com/PossumXI/Poseidon/internal/livefeed"
	"github.com/PossumXI/Poseidon/internal/observability"
	"github.com/PossumXI/Poseidon/internal/ship"
	"github.com/PossumXI/Poseidon/internal/sim"
	"github.com/PossumXI/Poseidon/internal/terrain"
	"github.com/PossumXI/Poseidon/internal/utils"
)

func main() {
	addr := flag.String("addr", ":8094", "HTTP server address")
	seed := flag.Int64("seed", 1, "simulation seed")
	logLevel := flag.String("log-level", "info", "log level (debug|info|warn|error)")
	natsURL := flag.String("nats-url", "", "NATS server URL (empty disables the bridge)")
	windSpeed := flag.Float64("wind-speed", 8, "initial wind speed m/s")
	demoFleet := flag.Bool("demo-fleet", true, "spawn the demonstration fleet")
	flag.Parse()

	logger := utils.NewLogger(*logLevel, "stdout")
	logger.Info("=== Poseidon maritime physics core ===")

	cfg := sim.DefaultConfig()
	cfg.Seed = *seed

	// Demonstration seabed: a reef shelf east of the spawn area.
	terr := terrain.NewMapSource()
	for cz := 8; cz <= 12; cz++ {
		for cx := -2; cx <= 2; cx++ {
			terr.SetChunk(&terrain.Chunk{CX: cx, CZ: cz, Height: 3, Material: terrain.MaterialCoral})
		}
	}

	world := sim.NewWorld(cfg, terr, logger)
	world.Environment().SetWind(r2.Vec{X: 1}, *windSpeed)

	if *demoFleet {
		world.SpawnShip("Meridian", ship.TypeSloop, r3.Vec{Y: cfg.SeaLevel - 1})
		world.SpawnShip("Thalassa", ship.TypeFrigate, r3.Vec{X: 80, Y: cfg.SeaLevel - 2, Z: 40})
		world.SpawnShip("Black Wake", ship.TypeCorsair, r3.Vec{X: -120, Y: cfg.SeaLevel - 1.6, Z: -60})
	}

	streamer := livefeed.NewStreamer(logger)
	server := api.NewServer(api.Config{
		Addr:         *addr,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, world, streamer, logger)

	var nb *bridge.Bridge
	if *natsURL != "" {
		bcfg := bridge.DefaultConfig()
		bcfg.URL = *natsURL
		nb = bridge.New(bcfg, logger)
		if err := nb.Connect(); err != nil {
			logger.WithError(err).Warn("NATS bridge unavailable, continuing without it")
			nb = nil
		} else {
			defer nb.Close()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := streamer.Run(ctx); err != nil && ctx.Err() == nil {
			logger.WithError(err).Error("streamer stopped")
		}
	}()
	go func() {
		if err := server.Start(); err != nil && ctx.Err() == nil {
			logger.WithError(err).Fatal("API server failed")
		}
	}()

	go runTicker(ctx, world, streamer, nb, cfg)

	// Wait for shutdown signal.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Warn("server shutdown error")
	}
}

// runTicker drives the world at the configured rate. Wall-clock drift is
// absorbed by coalescing: a late wakeup still advances one fixed step.
func runTicker(ctx context.Context, world *sim.World, streamer *livefeed.Streamer, nb *bridge.Bridge, cfg sim.Config) {
	m := observability.GetMetrics()
	ticker := time.NewTicker(time.Duration(float64(time.Second) * cfg.TickDT))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			snap := world.Tick(cfg.TickDT)
			m.TickDuration.Observe(time.Since(start).Seconds())
			m.TicksTotal.Inc()
			m.SimTime.Set(snap.SimTime)
			m.ActiveShips.Set(float64(len(snap.Ships)))
			m.ActiveEntities.Set(float64(len(snap.Entities)))
			m.ActiveWaves.Set(float64(len(snap.Waves)))
			countEvents(m, snap)

			streamer.Broadcast(snap)
			if nb != nil {
				nb.PublishEvents(snap.Events)
				nb.PublishSnapshot(snap)
			}
		}
	}
}

// countEvents feeds the tick's event stream into the counters.
func countEvents(m *observability.Metrics, snap *sim.Snapshot) {
	for _, ev := range snap.Events {
		switch ev.Type {
		case events.EventTypeCollision:
			if p, ok := ev.Payload.(events.CollisionEvent); ok {
				m.CollisionsTotal.WithLabelValues(string(p.Kind)).Inc()
			}
		case events.EventTypeDamage:
			if p, ok := ev.Payload.(events.DamageEvent); ok {
				m.DamageEventsTotal.WithLabelValues(p.DamageKind).Inc()
			}
		case events.EventTypeCannonFire:
			m.CannonFiresTotal.Inc()
		case events.EventTypeCommandRejected:
			m.CommandsRejected.Inc()
		case events.EventTypeShipSunk:
			m.ShipsSunk.Inc()
		}
	}
}
