// Copyright 2026 Arobi. All Rights Reserved.

package collision

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/PossumXI/Poseidon/internal/events"
	"github.com/PossumXI/Poseidon/internal/ship"
	"github.com/PossumXI/Poseidon/internal/terrain"
)

// Config tunes the resolver.
type Config struct {
	RestitutionShip   float64 // ship/ship impulse restitution
	RestitutionEntity float64 // entity/entity impulse restitution
	RammingCoeff      float64 // collision KE → ramming damage
	EntityDamageCoeff float64 // collision KE → entity damage
	TerrainEnergyLoss float64 // velocity retention after terrain reflect
}

// DefaultConfig returns the canonical resolver tuning.
func DefaultConfig() Config {
	return Config{
		RestitutionShip:   0.3,
		RestitutionEntity: 0.5,
		RammingCoeff:      0.001,
		EntityDamageCoeff: 0.01,
		TerrainEnergyLoss: 0.3,
	}
}

// Resolver runs broad phase, narrow phase, and impulse response, emitting
// collision and damage events.
type Resolver struct {
	cfg  Config
	terr terrain.Source
}

// NewResolver creates a resolver over a terrain source.
func NewResolver(cfg Config, terr terrain.Source) *Resolver {
	return &Resolver{cfg: cfg, terr: terr}
}

// Resolve performs one collision pass over the active bodies, mutating
// velocities and routing damage. Pairwise response reads the transforms as
// integrated this tick and never cascades against already-updated
// velocities within the pass. Returned events carry payloads only.
func (rv *Resolver) Resolve(ships []*ship.Ship, entities []*Entity, rng *rand.Rand) []events.Event {
	var evs []events.Event

	// Pairwise impulses observe pre-pass velocities.
	preShipVel := make(map[*ship.Ship]r3.Vec, len(ships))
	for _, s := range ships {
		preShipVel[s] = s.Velocity
	}
	preEntityVel := make(map[*Entity]r3.Vec, len(entities))
	for _, e := range entities {
		preEntityVel[e] = e.Velocity
	}

	for _, c := range broadPhase(ships, entities) {
		switch c.kind {
		case pairShipShip:
			evs = append(evs, rv.resolveShipShip(c.shipA, c.shipB, preShipVel, rng)...)
		case pairShipEntity:
			evs = append(evs, rv.resolveShipEntity(c.shipA, c.entityA, rng)...)
		case pairEntityEntity:
			evs = append(evs, rv.resolveEntityEntity(c.entityA, c.entityB, preEntityVel)...)
		}
	}

	for _, s := range ships {
		evs = append(evs, rv.resolveShipTerrain(s, rng)...)
	}

	return evs
}

// resolveShipShip applies an AABB narrow phase and an impulse along the
// center-to-center normal, then routes ramming damage scaled by the
// collision kinetic energy.
func (rv *Resolver) resolveShipShip(a, b *ship.Ship, pre map[*ship.Ship]r3.Vec, rng *rand.Rand) []events.Event {
	dx := math.Abs(a.Position.X - b.Position.X)
	dz := math.Abs(a.Position.Z - b.Position.Z)
	if dx >= (a.Type.Length+b.Type.Length)/2 || dz >= (a.Type.Width+b.Type.Width)/2 {
		return nil
	}

	normal := r3.Sub(b.Position, a.Position)
	normal.Y = 0
	n := r3.Norm(normal)
	if n == 0 {
		return nil
	}
	normal = r3.Scale(1/n, normal)

	va, vb := pre[a], pre[b]
	relVel := r3.Dot(r3.Sub(vb, va), normal)
	if relVel > 0 {
		return nil // separating
	}

	ma, mb := a.Mass(), b.Mass()
	invMass := 1/ma + 1/mb
	j := -(1 + rv.cfg.RestitutionShip) * relVel / invMass

	a.Velocity = r3.Sub(a.Velocity, r3.Scale(j/ma, normal))
	b.Velocity = r3.Add(b.Velocity, r3.Scale(j/mb, normal))

	ke := 0.5 * (ma * mb / (ma + mb)) * relVel * relVel
	damage := ke * rv.cfg.RammingCoeff
	contact := r3.Scale(0.5, r3.Add(a.Position, b.Position))

	evs := []events.Event{{
		Type: events.EventTypeCollision,
		Payload: events.CollisionEvent{
			Kind:   events.CollisionShipShip,
			BodyA:  a.ID.String(),
			BodyB:  b.ID.String(),
			Point:  contact,
			Energy: ke,
		},
	}}

	// Each ship takes the hit at its bow-facing contact.
	evs = append(evs, a.TakeDamage(bowContact(a, contact), damage, ship.DamageRamming, rng)...)
	evs = append(evs, b.TakeDamage(bowContact(b, contact), damage, ship.DamageRamming, rng)...)
	return evs
}

// bowContact maps a world contact point into ship-local space, pulled
// toward the bow plane where rams land.
func bowContact(s *ship.Ship, world r3.Vec) r3.Vec {
	local := s.ToLocal(world)
	half := s.Type.Length / 2
	if local.Z > half {
		local.Z = half
	}
	if local.Z < -half {
		local.Z = -half
	}
	return local
}

// resolveShipEntity lands projectiles and pushes drifting bodies clear.
func (rv *Resolver) resolveShipEntity(s *ship.Ship, e *Entity, rng *rand.Rand) []events.Event {
	if e.Dead {
		return nil
	}
	// Sphere vs ship AABB in local space.
	local := s.ToLocal(e.Position)
	if math.Abs(local.X) > s.Type.Width/2+e.Radius ||
		math.Abs(local.Z) > s.Type.Length/2+e.Radius ||
		local.Y > s.Type.Height+e.Radius || local.Y < -e.Radius {
		return nil
	}
	// A projectile never strikes the ship that fired it.
	if e.Kind == EntityProjectile && e.Source == s.ID {
		return nil
	}

	var evs []events.Event
	switch e.Kind {
	case EntityProjectile:
		e.Dead = true
		evs = append(evs, events.Event{
			Type: events.EventTypeCollision,
			Payload: events.CollisionEvent{
				Kind:   events.CollisionShipShip,
				BodyA:  s.ID.String(),
				BodyB:  e.ID.String(),
				Point:  e.Position,
				Energy: 0.5 * e.Mass * r3.Norm2(e.Velocity),
			},
		})
		evs = append(evs, s.TakeDamage(local, e.Damage, ship.DamageCannonBall, rng)...)
	default:
		// Debris shoves off along the outward normal and takes the
		// brunt itself.
		away := r3.Sub(e.Position, s.Position)
		away.Y = 0
		if n := r3.Norm(away); n > 0 {
			e.Velocity = r3.Add(e.Velocity, r3.Scale(3/n, away))
		}
		e.ApplyDamage(1)
	}
	return evs
}

// resolveEntityEntity applies a sphere-sphere impulse with the entity
// restitution; entities convert energy to damage more readily than hulls.
func (rv *Resolver) resolveEntityEntity(a, b *Entity, pre map[*Entity]r3.Vec) []events.Event {
	if a.Dead || b.Dead {
		return nil
	}
	d := r3.Sub(b.Position, a.Position)
	dist := r3.Norm(d)
	if dist == 0 || dist >= a.Radius+b.Radius {
		return nil
	}
	normal := r3.Scale(1/dist, d)

	relVel := r3.Dot(r3.Sub(pre[b], pre[a]), normal)
	if relVel > 0 {
		return nil
	}

	invMass := 1/a.Mass + 1/b.Mass
	j := -(1 + rv.cfg.RestitutionEntity) * relVel / invMass
	a.Velocity = r3.Sub(a.Velocity, r3.Scale(j/a.Mass, normal))
	b.Velocity = r3.Add(b.Velocity, r3.Scale(j/b.Mass, normal))

	ke := 0.5 * (a.Mass * b.Mass / (a.Mass + b.Mass)) * relVel * relVel
	dmg := ke * rv.cfg.EntityDamageCoeff
	a.ApplyDamage(dmg)
	b.ApplyDamage(dmg)

	return []events.Event{{
		Type: events.EventTypeCollision,
		Payload: events.CollisionEvent{
			Kind:   events.CollisionEntityEntity,
			BodyA:  a.ID.String(),
			BodyB:  b.ID.String(),
			Point:  r3.Scale(0.5, r3.Add(a.Position, b.Position)),
			Energy: ke,
		},
	}}
}

// resolveShipTerrain tests the ship footprint against chunk bounds,
// classifies the impact by approach angle, reflects the velocity with
// energy loss, and routes localized collision or reef damage.
func (rv *Resolver) resolveShipTerrain(s *ship.Ship, rng *rand.Rand) []events.Event {
	if rv.terr == nil {
		return nil
	}
	t := s.Type
	minCX := terrain.ChunkCoord(s.Position.X - t.Length/2)
	maxCX := terrain.ChunkCoord(s.Position.X + t.Length/2)
	minCZ := terrain.ChunkCoord(s.Position.Z - t.Length/2)
	maxCZ := terrain.ChunkCoord(s.Position.Z + t.Length/2)

	var evs []events.Event
	for cx := minCX; cx <= maxCX; cx++ {
		for cz := minCZ; cz <= maxCZ; cz++ {
			chunk, ok := rv.terr.ChunkAt(cx, cz)
			if !ok {
				continue
			}
			// The keel must reach down to the chunk top.
			if s.Position.Y-t.Draft > chunk.Height {
				continue
			}
			evs = append(evs, rv.respondShipTerrain(s, chunk, rng)...)
		}
	}
	return evs
}

func (rv *Resolver) respondShipTerrain(s *ship.Ship, chunk *terrain.Chunk, rng *rand.Rand) []events.Event {
	center := r3.Vec{
		X: (chunk.MinX() + chunk.MaxX()) / 2,
		Y: chunk.Height,
		Z: (chunk.MinZ() + chunk.MaxZ()) / 2,
	}
	normal := r3.Sub(s.Position, center)
	normal.Y = 0
	n := r3.Norm(normal)
	if n == 0 {
		normal = r3.Scale(-1, s.Forward())
		normal.Y = 0
		n = r3.Norm(normal)
		if n == 0 {
			return nil
		}
	}
	normal = r3.Scale(1/n, normal)

	speed := s.Speed()
	if speed < 0.05 {
		return nil // resting against the shore
	}

	// Classify the impact by how squarely the bow meets the terrain.
	dot := r3.Dot(s.Forward(), r3.Scale(-1, normal))
	var mult float64
	var section r3.Vec
	half := s.Type.Length / 2
	switch {
	case dot > 0.5:
		mult, section = 1.5, r3.Vec{Z: half} // bow strike
	case dot < -0.5:
		mult, section = 0.8, r3.Vec{Z: -half} // stern scrape
	default:
		mult, section = 1.0, r3.Vec{X: s.Type.Width / 2} // broadside
	}

	kind := ship.DamageCollision
	collisionKind := events.CollisionShipTerrain
	if chunk.IsReef() {
		mult *= 1.3
		kind = ship.DamageReef
		collisionKind = events.CollisionShipReef
	}

	ke := 0.5 * s.Mass() * speed * speed
	damage := ke * rv.cfg.RammingCoeff * mult

	// Reflect the incoming normal component, then bleed energy.
	vn := r3.Dot(s.Velocity, normal)
	if vn < 0 {
		reflected := r3.Sub(s.Velocity, r3.Scale(2*vn, normal))
		s.Velocity = r3.Scale(rv.cfg.TerrainEnergyLoss, reflected)
	}

	evs := []events.Event{{
		Type: events.EventTypeCollision,
		Payload: events.CollisionEvent{
			Kind:   collisionKind,
			BodyA:  s.ID.String(),
			BodyB:  "terrain",
			Point:  center,
			Energy: ke,
		},
	}}
	evs = append(evs, s.TakeDamage(section, damage, kind, rng)...)
	return evs
}
