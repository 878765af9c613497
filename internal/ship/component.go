// Copyright 2026 Arobi. All Rights Reserved.

package ship

import (
	"math"
	"math/rand"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// ComponentKind tags the variant payload of a Component.
type ComponentKind string

const (
	KindHull       ComponentKind = "hull"
	KindSail       ComponentKind = "sail"
	KindCannon     ComponentKind = "cannon"
	KindEngine     ComponentKind = "engine"
	KindMast       ComponentKind = "mast"
	KindRudder     ComponentKind = "rudder"
	KindAnchor     ComponentKind = "anchor"
	KindCargo      ComponentKind = "cargo"
	KindQuarters   ComponentKind = "quarters"
	KindNavigation ComponentKind = "navigation"
	KindDecoration ComponentKind = "decoration"
)

// Component is a positioned ship part. Common state lives here; the
// kind-specific payload is the single non-nil variant pointer matching
// Kind.
type Component struct {
	ID       uuid.UUID     `json:"id"`
	Kind     ComponentKind `json:"kind"`
	Name     string        `json:"name"`
	LocalPos r3.Vec        `json:"localPos"` // relative to ship origin

	Health    float64 `json:"health"`
	MaxHealth float64 `json:"maxHealth"`
	Mass      float64 `json:"mass"` // kg
	Upgrade   int     `json:"upgrade"`
	Active    bool    `json:"active"`
	Destroyed bool    `json:"destroyed"`

	// Parent is a stable handle into the ship registry, never a pointer.
	Parent ShipHandle `json:"parent"`

	Hull       *HullState       `json:"hull,omitempty"`
	Sail       *SailState       `json:"sail,omitempty"`
	Cannon     *CannonState     `json:"cannon,omitempty"`
	Engine     *EngineState     `json:"engine,omitempty"`
	Mast       *MastState       `json:"mast,omitempty"`
	Rudder     *RudderState     `json:"rudder,omitempty"`
	Anchor     *AnchorState     `json:"anchor,omitempty"`
	Cargo      *CargoState      `json:"cargo,omitempty"`
	Quarters   *QuartersState   `json:"quarters,omitempty"`
	Navigation *NavigationState `json:"navigation,omitempty"`
}

// UpdateContext carries the per-tick environment a component update sees.
// The integrator builds one per ship per tick.
type UpdateContext struct {
	DT         float64
	Rng        *rand.Rand
	WindSpeed  float64
	ShipSpeed  float64
	WaterDepth float64 // surface-to-seabed column, for anchors
}

// HealthFraction returns health as a fraction of max, zero when destroyed.
func (c *Component) HealthFraction() float64 {
	if c.Destroyed || c.MaxHealth <= 0 {
		return 0
	}
	return c.Health / c.MaxHealth
}

// Effectiveness combines health, wear, and crew factors into the
// kind-specific output multiplier.
func (c *Component) Effectiveness() float64 {
	if c.Destroyed || !c.Active {
		return 0
	}
	base := 0.25 + 0.75*c.HealthFraction()
	switch c.Kind {
	case KindCannon:
		if c.Cannon != nil {
			base *= c.Cannon.crewFactor() * (1 - c.Cannon.BarrelWear/(2*math.Max(1, c.MaxHealth)))
		}
	case KindRudder:
		if c.Rudder != nil {
			base *= (1 - 0.5*c.Rudder.Fouling) * (1 - 0.4*c.Rudder.Wear)
		}
	case KindSail:
		if c.Sail != nil {
			base *= 1 - c.Sail.TearDamage/math.Max(1, c.MaxHealth)
		}
	}
	if base < 0 {
		base = 0
	}
	return base * (1 + 0.05*float64(c.Upgrade))
}

// Update advances kind-specific timers and accumulators by ctx.DT.
func (c *Component) Update(ctx *UpdateContext) {
	if c.Destroyed {
		return
	}
	switch {
	case c.Sail != nil:
		c.Sail.update(c, ctx)
	case c.Cannon != nil:
		c.Cannon.update(c, ctx)
	case c.Rudder != nil:
		c.Rudder.update(c, ctx)
	case c.Engine != nil:
		c.Engine.update(c, ctx)
	case c.Anchor != nil:
		c.Anchor.update(c, ctx)
	}
}

// newComponent fills the common fields shared by all constructors.
func newComponent(kind ComponentKind, name string, maxHP, mass float64) *Component {
	return &Component{
		ID:        uuid.New(),
		Kind:      kind,
		Name:      name,
		Health:    maxHP,
		MaxHealth: maxHP,
		Mass:      mass,
		Active:    true,
	}
}

// ApplyDamage subtracts health after resistance and returns the damage
// actually dealt; Destroyed is set when health reaches zero. Kind-specific
// side effects (sail tear, hull
// section routing, cannon wear) happen here; destruction side effects
// (explosions) are the ship's responsibility.
func (c *Component) ApplyDamage(material HullMaterial, magnitude float64, kind DamageKind) float64 {
	if c.Destroyed || magnitude <= 0 {
		return 0
	}
	dealt := magnitude * (1 - Resistance(material, c.Kind, kind))
	if dealt <= 0 {
		return 0
	}

	switch {
	case c.Hull != nil:
		c.Hull.routeDamage(c, dealt, kind)
	case c.Sail != nil:
		c.Sail.onDamage(c, dealt, kind)
	case c.Cannon != nil:
		c.Cannon.onDamage(c, dealt, kind)
	case c.Rudder != nil:
		c.Rudder.onDamage(c, dealt, kind)
	}

	c.Health -= dealt
	if c.Health <= 0 {
		c.Health = 0
		c.Destroyed = true
	}
	return dealt
}

// Repair restores health up to max and clears destruction when the
// component climbs back above 10% health.
func (c *Component) Repair(amount float64) {
	if amount <= 0 {
		return
	}
	c.Health = math.Min(c.MaxHealth, c.Health+amount)
	if c.Destroyed && c.Health > 0.1*c.MaxHealth {
		c.Destroyed = false
	}
}

// UpgradeLevel bumps the component level with kind-specific bonuses.
func (c *Component) UpgradeLevel() {
	c.Upgrade++
	c.MaxHealth *= 1.1
	c.Health = math.Min(c.MaxHealth, c.Health*1.1)
	switch {
	case c.Sail != nil:
		c.Sail.Area *= 1.08
	case c.Cannon != nil:
		c.Cannon.Damage *= 1.1
	case c.Engine != nil:
		c.Engine.ThrustForce *= 1.12
	case c.Rudder != nil:
		c.Rudder.Efficiency = math.Min(1, c.Rudder.Efficiency*1.05)
	}
}
