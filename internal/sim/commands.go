// Copyright 2026 Arobi. All Rights Reserved.

package sim

import (
	"math"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/PossumXI/Poseidon/internal/collision"
	"github.com/PossumXI/Poseidon/internal/events"
	"github.com/PossumXI/Poseidon/internal/ship"
)

// CommandOp identifies a per-tick input operation.
type CommandOp string

const (
	OpSetRudder         CommandOp = "set_rudder"
	OpSetSail           CommandOp = "set_sail"
	OpLoadCannon        CommandOp = "load_cannon"
	OpAimCannon         CommandOp = "aim_cannon"
	OpFireCannon        CommandOp = "fire_cannon"
	OpStartEngine       CommandOp = "start_engine"
	OpStopEngine        CommandOp = "stop_engine"
	OpApplyForce        CommandOp = "apply_force"
	OpDropAnchor        CommandOp = "drop_anchor"
	OpRaiseAnchor       CommandOp = "raise_anchor"
	OpSetWind           CommandOp = "set_wind"
	OpInjectDisturbance CommandOp = "inject_disturbance"
)

// Command is one queued input. Commands fail silently: invalid ones are
// reported as rejection events in the snapshot stream and never abort a
// tick.
type Command struct {
	Op          CommandOp     `json:"op"`
	ShipID      uuid.UUID     `json:"shipId,omitempty"`
	ComponentID uuid.UUID     `json:"componentId,omitempty"`
	Value       float64       `json:"value,omitempty"`
	Vec         r3.Vec        `json:"vec,omitempty"`
	Ammo        ship.AmmoKind `json:"ammo,omitempty"`
}

// applyCommand executes one command against the world during tick step (4).
func (w *World) applyCommand(cmd Command) {
	switch cmd.Op {
	case OpSetWind:
		w.env.SetWind(r2.Vec{X: cmd.Vec.X, Y: cmd.Vec.Z}, cmd.Value)
		return
	case OpInjectDisturbance:
		if cmd.Value <= 0 {
			w.reject(cmd, "non-positive intensity")
			return
		}
		w.waves.InjectDisturbance(cmd.Vec.X, cmd.Vec.Z, cmd.Value, math.Max(cmd.Vec.Y, 4))
		w.emit(events.EventTypeDisturbance, events.DisturbanceEvent{
			X: cmd.Vec.X, Z: cmd.Vec.Z, Intensity: cmd.Value, Radius: math.Max(cmd.Vec.Y, 4),
		})
		return
	}

	s, ok := w.ships.ByID(cmd.ShipID)
	if !ok {
		w.reject(cmd, "unknown ship")
		return
	}

	switch cmd.Op {
	case OpSetRudder:
		rudders := s.ComponentsByKind(ship.KindRudder)
		if len(rudders) == 0 {
			w.reject(cmd, "no rudder")
			return
		}
		for _, c := range rudders {
			if c.Rudder != nil && !c.Destroyed {
				c.Rudder.SetTarget(cmd.Value)
			}
		}

	case OpSetSail:
		if cmd.Value < 0 || cmd.Value > 1 {
			w.reject(cmd, "deployment out of range")
			return
		}
		applied := false
		for _, c := range s.ComponentsByKind(ship.KindSail) {
			if cmd.ComponentID != (uuid.UUID{}) && c.ID != cmd.ComponentID {
				continue
			}
			if c.Sail != nil && !c.Destroyed {
				c.Sail.SetTarget(cmd.Value)
				applied = true
			}
		}
		if !applied {
			w.reject(cmd, "no sail")
		}

	case OpLoadCannon:
		c := w.cannonFor(s, cmd)
		if c == nil {
			return
		}
		if !c.Cannon.Load(cmd.Ammo) {
			w.reject(cmd, "cannot load")
		}

	case OpAimCannon:
		c := w.cannonFor(s, cmd)
		if c == nil {
			return
		}
		n := r3.Norm(cmd.Vec)
		if n == 0 {
			w.reject(cmd, "zero aim vector")
			return
		}
		c.Cannon.AimDir = r3.Scale(1/n, cmd.Vec)

	case OpFireCannon:
		c := w.cannonFor(s, cmd)
		if c == nil {
			return
		}
		w.fireCannon(s, c)

	case OpStartEngine, OpStopEngine:
		applied := false
		for _, c := range s.ComponentsByKind(ship.KindEngine) {
			if cmd.ComponentID != (uuid.UUID{}) && c.ID != cmd.ComponentID {
				continue
			}
			if c.Engine == nil || c.Destroyed {
				continue
			}
			if cmd.Op == OpStartEngine {
				applied = c.Engine.Start() || applied
			} else {
				c.Engine.Stop()
				applied = true
			}
		}
		if !applied {
			w.reject(cmd, "no engine")
		}

	case OpApplyForce:
		// The vector is an impulse in newton-seconds.
		m := s.Mass()
		if m <= 0 {
			w.reject(cmd, "massless ship")
			return
		}
		s.Velocity = r3.Add(s.Velocity, r3.Scale(1/m, cmd.Vec))

	case OpDropAnchor, OpRaiseAnchor:
		applied := false
		for _, c := range s.ComponentsByKind(ship.KindAnchor) {
			if c.Anchor == nil || c.Destroyed {
				continue
			}
			if cmd.Op == OpDropAnchor {
				c.Anchor.Drop()
			} else {
				c.Anchor.Raise(w.waterColumnAt(s.Position.X, s.Position.Z))
			}
			applied = true
		}
		if !applied {
			w.reject(cmd, "no anchor")
		}

	default:
		w.reject(cmd, "unknown op")
	}
}

// cannonFor resolves the cannon a command targets, rejecting on miss.
func (w *World) cannonFor(s *ship.Ship, cmd Command) *ship.Component {
	if cmd.ComponentID == (uuid.UUID{}) {
		w.reject(cmd, "missing component id")
		return nil
	}
	c, ok := s.Component(cmd.ComponentID)
	if !ok || c.Kind != ship.KindCannon || c.Cannon == nil {
		w.reject(cmd, "unknown cannon")
		return nil
	}
	return c
}

// fireCannon attempts the shot and spawns the projectile entity.
func (w *World) fireCannon(s *ship.Ship, c *ship.Component) {
	spec, misfired := c.Cannon.Fire(c, w.rng)
	if misfired {
		w.emit(events.EventTypeCannonMisfire, events.CannonFireEvent{
			ShipID:   s.ID,
			CannonID: c.ID,
		})
		return
	}
	if spec == nil {
		_, reason := c.Cannon.CanFire(c)
		w.reject(Command{Op: OpFireCannon, ShipID: s.ID, ComponentID: c.ID}, reason)
		return
	}

	dir := ship.RotateVec(s.Orientation, spec.Direction)
	if n := r3.Norm(dir); n > 0 {
		dir = r3.Scale(1/n, dir)
	}
	origin := s.ToWorld(c.LocalPos)
	vel := r3.Add(s.Velocity, r3.Scale(spec.MuzzleSpeed, dir))

	p := collision.NewEntity(collision.EntityProjectile, origin, vel, 0.15, spec.Mass)
	p.ID = w.newID()
	p.Damage = spec.Damage
	p.Source = s.ID
	p.Lifespan = 30
	w.entities = append(w.entities, p)

	w.emit(events.EventTypeCannonFire, events.CannonFireEvent{
		ShipID:       s.ID,
		CannonID:     c.ID,
		ProjectileID: p.ID,
		Ammo:         string(spec.Ammo),
		Origin:       origin,
		Direction:    dir,
		MuzzleSpeed:  spec.MuzzleSpeed,
	})
}

// reject records a command rejection in the event stream.
func (w *World) reject(cmd Command, reason string) {
	shipID := ""
	if cmd.ShipID != (uuid.UUID{}) {
		shipID = cmd.ShipID.String()
	}
	w.emit(events.EventTypeCommandRejected, events.CommandRejectedEvent{
		Op:     string(cmd.Op),
		ShipID: shipID,
		Reason: reason,
	})
}
