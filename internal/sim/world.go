// Copyright 2026 Arobi. All Rights Reserved.

package sim

import (
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/PossumXI/Poseidon/internal/collision"
	"github.com/PossumXI/Poseidon/internal/dynamics"
	"github.com/PossumXI/Poseidon/internal/events"
	"github.com/PossumXI/Poseidon/internal/ocean"
	"github.com/PossumXI/Poseidon/internal/ship"
	"github.com/PossumXI/Poseidon/internal/terrain"
)

// World owns the full simulation state. A tick is a fixed-order sequence;
// between ticks, external threads enqueue commands and read published
// snapshots. The mutex guards only that boundary; nothing blocks inside a
// tick.
type World struct {
	mu sync.Mutex

	cfg Config
	log logrus.FieldLogger

	waves    *ocean.WaveField
	env      *ocean.Environment
	terr     terrain.Source
	ships    *ship.Registry
	entities []*collision.Entity

	integrator *dynamics.Integrator
	resolver   *collision.Resolver

	// rng drives every stochastic path inside the tick in fixed order;
	// idRng feeds identity generation so physics draws stay untouched by
	// how many ids a tick mints.
	rng   *rand.Rand
	idRng *rand.Rand

	tick    uint64
	simTime float64

	pending  []Command
	eventBuf []events.Event

	snapshot *Snapshot
}

// NewWorld builds a world from configuration and a terrain source.
func NewWorld(cfg Config, terr terrain.Source, log logrus.FieldLogger) *World {
	waves := ocean.NewWaveField(cfg.waveFieldConfig())
	env := ocean.NewEnvironment(cfg.environmentConfig(), waves)

	w := &World{
		cfg:        cfg,
		log:        log,
		waves:      waves,
		env:        env,
		terr:       terr,
		ships:      ship.NewRegistry(),
		integrator: dynamics.NewIntegrator(cfg.dynamicsConfig(), env, terr, log),
		resolver:   collision.NewResolver(cfg.collisionConfig(), terr),
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		idRng:      rand.New(rand.NewSource(cfg.Seed + 0x9e3779b9)),
	}
	w.snapshot = w.buildSnapshot()
	return w
}

// Environment exposes the ocean environment for read-only queries.
func (w *World) Environment() *ocean.Environment { return w.env }

// Ships exposes the registry for setup and inspection.
func (w *World) Ships() *ship.Registry { return w.ships }

// SpawnShip creates, outfits, and registers a ship.
func (w *World) SpawnShip(name string, t *ship.ShipType, pos r3.Vec) *ship.Ship {
	s := ship.NewShip(name, t, pos)
	ship.Outfit(s)
	w.ships.Add(s)
	if w.log != nil {
		w.log.WithFields(logrus.Fields{"ship": name, "type": t.Name}).Info("ship spawned")
	}
	return s
}

// SpawnBareShip registers a ship without the standard loadout, for tests
// and custom fits.
func (w *World) SpawnBareShip(name string, t *ship.ShipType, pos r3.Vec) *ship.Ship {
	s := ship.NewShip(name, t, pos)
	w.ships.Add(s)
	return s
}

// Entities returns the live free bodies.
func (w *World) Entities() []*collision.Entity { return w.entities }

// Enqueue adds a command to the next tick's input queue. Safe for
// concurrent use.
func (w *World) Enqueue(cmd Command) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, cmd)
}

// Snapshot returns the most recently published snapshot. Safe for
// concurrent use.
func (w *World) Snapshot() *Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot
}

// Tick advances the world by dt seconds and publishes a snapshot. Step
// order is fixed: time, wave field and environment, inputs, ship
// integration, entity integration, collision resolution, pruning,
// snapshot.
func (w *World) Tick(dt float64) *Snapshot {
	if dt <= 0 {
		dt = w.cfg.TickDT
	}

	// (1) Advance time.
	w.tick++
	w.simTime += dt

	// (2)–(3) Advance the wave field and environment relaxations.
	w.env.Advance(dt)

	// (4) Consume the input queue atomically.
	w.mu.Lock()
	cmds := w.pending
	w.pending = nil
	w.mu.Unlock()
	for _, cmd := range cmds {
		w.applyCommand(cmd)
	}

	// (5) Integrate each ship; ships read shared ocean state and write
	// only their own.
	w.ships.ForEach(func(s *ship.Ship) {
		w.collect(w.integrator.Step(s, dt, w.rng))
	})
	for _, e := range w.entities {
		e.Integrate(w.env, dt)
	}

	// (6)–(7) Broad phase, narrow phase, and response.
	w.collect(w.resolver.Resolve(w.ships.All(), w.entities, w.rng))

	// (8) Prune destroyed bodies.
	w.prune()

	// (9) Publish.
	snap := w.buildSnapshot()
	w.mu.Lock()
	w.snapshot = snap
	w.mu.Unlock()
	return snap
}

// prune removes sunken ships and dead entities.
func (w *World) prune() {
	for _, s := range w.ships.All() {
		if !s.Sinking {
			continue
		}
		surface := w.env.WaterHeight(s.Position.X, s.Position.Z)
		if s.Position.Y+s.Type.Height < surface {
			w.emit(events.EventTypeShipSunk, events.DestructionEvent{
				TargetID: s.ID,
				Kind:     "ship",
				Position: s.Position,
			})
			w.ships.Remove(s.Handle)
			if w.log != nil {
				w.log.WithField("ship", s.Name).Info("ship sunk")
			}
		}
	}

	live := w.entities[:0]
	for _, e := range w.entities {
		if e.Dead {
			continue
		}
		live = append(live, e)
	}
	w.entities = live
}

// collect stamps payload-only events with their envelope and buffers them
// for the next snapshot.
func (w *World) collect(evs []events.Event) {
	for _, ev := range evs {
		ev.ID = w.newID()
		ev.Tick = w.tick
		ev.SimTime = w.simTime
		w.eventBuf = append(w.eventBuf, ev)
	}
}

// emit buffers a single event with its envelope.
func (w *World) emit(t events.EventType, payload interface{}) {
	w.eventBuf = append(w.eventBuf, events.Event{
		ID:      w.newID(),
		Type:    t,
		Tick:    w.tick,
		SimTime: w.simTime,
		Payload: payload,
	})
}

// waterColumnAt returns the surface-to-seabed depth at a point.
func (w *World) waterColumnAt(x, z float64) float64 {
	surface := w.env.WaterHeight(x, z)
	bottom := 0.0
	if w.terr != nil {
		if chunk, ok := w.terr.ChunkAt(terrain.ChunkCoord(x), terrain.ChunkCoord(z)); ok {
			bottom = chunk.Height
		}
	}
	if surface < bottom {
		return 0
	}
	return surface - bottom
}

// newID mints a UUID from the seeded id stream so runs replay identically.
func (w *World) newID() uuid.UUID {
	id, err := uuid.NewRandomFromReader(w.idRng)
	if err != nil {
		return uuid.New()
	}
	return id
}
