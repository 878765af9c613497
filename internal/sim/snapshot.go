// Copyright 2026 Arobi. All Rights Reserved.

package sim

import (
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/PossumXI/Poseidon/internal/collision"
	"github.com/PossumXI/Poseidon/internal/events"
	"github.com/PossumXI/Poseidon/internal/ocean"
	"github.com/PossumXI/Poseidon/internal/ship"
)

// Snapshot is the published state of one tick: plain data, safe to hand to
// renderers, replay tools, and network layers.
type Snapshot struct {
	Tick    uint64  `json:"tick"`
	SimTime float64 `json:"simTime"`

	WindSpeed float64 `json:"windSpeed"`
	Wind      r3.Vec  `json:"wind"`
	SeaLevel  float64 `json:"seaLevel"`

	Waves    []ocean.WaveComponent `json:"waves"`
	Ships    []ShipSnapshot        `json:"ships"`
	Entities []EntitySnapshot      `json:"entities"`

	// Events accumulated since the previous snapshot.
	Events []events.Event `json:"events"`
}

// ShipSnapshot is the per-ship published state.
type ShipSnapshot struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	TypeName string    `json:"typeName"`

	Position        r3.Vec     `json:"position"`
	Orientation     [4]float64 `json:"orientation"` // w, x, y, z
	Velocity        r3.Vec     `json:"velocity"`
	AngularVelocity r3.Vec     `json:"angularVelocity"`

	Health         float64 `json:"health"`
	MaxHealth      float64 `json:"maxHealth"`
	WaterIntrusion float64 `json:"waterIntrusion"`
	IsSinking      bool    `json:"isSinking"`

	Components []ComponentSnapshot `json:"components"`
}

// ComponentSnapshot is the per-component published state. Kind-specific
// blocks appear only for the matching kind.
type ComponentSnapshot struct {
	ID            uuid.UUID          `json:"id"`
	Kind          ship.ComponentKind `json:"kind"`
	Name          string             `json:"name"`
	Health        float64            `json:"health"`
	MaxHealth     float64            `json:"maxHealth"`
	Effectiveness float64            `json:"effectiveness"`
	Destroyed     bool               `json:"destroyed"`

	Sail   *SailSnapshot   `json:"sail,omitempty"`
	Cannon *CannonSnapshot `json:"cannon,omitempty"`
	Engine *EngineSnapshot `json:"engine,omitempty"`
	Rudder *RudderSnapshot `json:"rudder,omitempty"`
	Anchor *AnchorSnapshot `json:"anchor,omitempty"`
}

// SailSnapshot publishes sail state.
type SailSnapshot struct {
	Deployment       float64 `json:"deployment"`
	TargetDeployment float64 `json:"targetDeployment"`
	Reefed           bool    `json:"reefed"`
	TearDamage       float64 `json:"tearDamage"`
}

// CannonSnapshot publishes cannon state.
type CannonSnapshot struct {
	ReloadTimer float64 `json:"reloadTimer"`
	Loaded      bool    `json:"loaded"`
	LoadedAmmo  string  `json:"loadedAmmo,omitempty"`
	Ammo        int     `json:"ammo"`
	Misfired    bool    `json:"misfired"`
	BarrelWear  float64 `json:"barrelWear"`
	Overheat    float64 `json:"overheat"`
}

// EngineSnapshot publishes engine state.
type EngineSnapshot struct {
	Running bool    `json:"running"`
	Fuel    float64 `json:"fuel"`
}

// RudderSnapshot publishes rudder state.
type RudderSnapshot struct {
	Angle       float64 `json:"angle"`
	TargetAngle float64 `json:"targetAngle"`
	Jammed      bool    `json:"jammed"`
}

// AnchorSnapshot publishes anchor state.
type AnchorSnapshot struct {
	Deployed bool `json:"deployed"`
	Holding  bool `json:"holding"`
}

// EntitySnapshot publishes free-body state.
type EntitySnapshot struct {
	ID       uuid.UUID            `json:"id"`
	Kind     collision.EntityKind `json:"kind"`
	Position r3.Vec               `json:"position"`
	Velocity r3.Vec               `json:"velocity"`
	Health   float64              `json:"health"`
}

// buildSnapshot assembles the published state for this tick. The event
// buffer is handed off and reset.
func (w *World) buildSnapshot() *Snapshot {
	snap := &Snapshot{
		Tick:      w.tick,
		SimTime:   w.simTime,
		WindSpeed: w.env.WindSpeed(),
		Wind:      w.env.WindVelocity(),
		SeaLevel:  w.env.SeaLevel(),
		Waves:     w.waves.Components(),
		Events:    w.eventBuf,
	}
	w.eventBuf = nil

	w.ships.ForEach(func(s *ship.Ship) {
		snap.Ships = append(snap.Ships, snapshotShip(s))
	})
	for _, e := range w.entities {
		snap.Entities = append(snap.Entities, EntitySnapshot{
			ID: e.ID, Kind: e.Kind, Position: e.Position, Velocity: e.Velocity, Health: e.Health,
		})
	}
	return snap
}

func snapshotShip(s *ship.Ship) ShipSnapshot {
	q := s.Orientation
	ss := ShipSnapshot{
		ID:              s.ID,
		Name:            s.Name,
		TypeName:        s.Type.Name,
		Position:        s.Position,
		Orientation:     [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag},
		Velocity:        s.Velocity,
		AngularVelocity: s.AngularVelocity,
		Health:          s.Health(),
		MaxHealth:       s.MaxHealth(),
		WaterIntrusion:  s.WaterIntrusion,
		IsSinking:       s.Sinking,
	}
	for _, c := range s.Components {
		cs := ComponentSnapshot{
			ID:            c.ID,
			Kind:          c.Kind,
			Name:          c.Name,
			Health:        c.Health,
			MaxHealth:     c.MaxHealth,
			Effectiveness: c.Effectiveness(),
			Destroyed:     c.Destroyed,
		}
		switch {
		case c.Sail != nil:
			cs.Sail = &SailSnapshot{
				Deployment:       c.Sail.Deployment,
				TargetDeployment: c.Sail.TargetDeployment,
				Reefed:           c.Sail.Reefed,
				TearDamage:       c.Sail.TearDamage,
			}
		case c.Cannon != nil:
			cs.Cannon = &CannonSnapshot{
				ReloadTimer: c.Cannon.ReloadTimer,
				Loaded:      c.Cannon.Loaded,
				LoadedAmmo:  string(c.Cannon.LoadedAmmo),
				Ammo:        c.Cannon.AmmoCount(),
				Misfired:    c.Cannon.Misfired,
				BarrelWear:  c.Cannon.BarrelWear,
				Overheat:    c.Cannon.Overheat,
			}
		case c.Engine != nil:
			cs.Engine = &EngineSnapshot{Running: c.Engine.Running, Fuel: c.Engine.Fuel}
		case c.Rudder != nil:
			cs.Rudder = &RudderSnapshot{
				Angle:       c.Rudder.Angle,
				TargetAngle: c.Rudder.TargetAngle,
				Jammed:      c.Rudder.Jammed,
			}
		case c.Anchor != nil:
			cs.Anchor = &AnchorSnapshot{Deployed: c.Anchor.Deployed, Holding: c.Anchor.Holding}
		}
		ss.Components = append(ss.Components, cs)
	}
	return ss
}
