// Package collision resolves contacts between ships, free entities, and
// terrain: bounding-sphere broad phase, shape-specific narrow phase, and
// impulse response with damage routing.
//
// Copyright 2026 Arobi. All Rights Reserved.
package collision

import (
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/PossumXI/Poseidon/internal/ocean"
)

// EntityKind classifies free bodies.
type EntityKind string

const (
	EntityProjectile EntityKind = "projectile"
	EntityDebris     EntityKind = "debris"
	EntityFlotsam    EntityKind = "flotsam"
)

// Entity is a point body with a bounding sphere: cannon shot in flight,
// drifting wreckage, floating cargo.
type Entity struct {
	ID       uuid.UUID  `json:"id"`
	Kind     EntityKind `json:"kind"`
	Position r3.Vec     `json:"position"`
	Velocity r3.Vec     `json:"velocity"`
	Radius   float64    `json:"radius"`
	Mass     float64    `json:"mass"`

	Health    float64 `json:"health"`
	MaxHealth float64 `json:"maxHealth"`

	Age      float64 `json:"age"`
	Lifespan float64 `json:"lifespan"` // seconds; 0 means unbounded

	// Damage carried on impact, for projectiles.
	Damage float64 `json:"damage"`
	// Source is the firing ship, exempt from self-hits for a grace window.
	Source uuid.UUID `json:"source,omitempty"`

	Dead bool `json:"dead"`
}

// NewEntity creates a free body.
func NewEntity(kind EntityKind, pos, vel r3.Vec, radius, mass float64) *Entity {
	return &Entity{
		ID:        uuid.New(),
		Kind:      kind,
		Position:  pos,
		Velocity:  vel,
		Radius:    radius,
		Mass:      mass,
		Health:    50,
		MaxHealth: 50,
		Lifespan:  60,
	}
}

// Integrate advances the entity against ocean forces and gravity with
// explicit Euler. Projectiles fly ballistically until they meet water.
func (e *Entity) Integrate(env *ocean.Environment, dt float64) {
	if e.Dead || dt <= 0 {
		return
	}
	cfg := env.Config()

	f := env.OceanForce(e.Position, e.Velocity, e.Mass, cfg.DragCoefficient)
	f = r3.Add(f, r3.Vec{Y: -e.Mass * cfg.Gravity})

	e.Velocity = r3.Add(e.Velocity, r3.Scale(dt/e.Mass, f))
	e.Position = r3.Add(e.Position, r3.Scale(dt, e.Velocity))

	// Projectiles die on splashdown; drifting bodies age out.
	e.Age += dt
	if e.Kind == EntityProjectile && env.SubmergedDepth(e.Position) > e.Radius*2 {
		e.Dead = true
	}
	if e.Lifespan > 0 && e.Age >= e.Lifespan {
		e.Dead = true
	}
	if e.Health <= 0 {
		e.Dead = true
	}
}

// ApplyDamage removes health; entities have no resistances.
func (e *Entity) ApplyDamage(m float64) {
	if m <= 0 {
		return
	}
	e.Health -= m
	if e.Health <= 0 {
		e.Health = 0
		e.Dead = true
	}
}
