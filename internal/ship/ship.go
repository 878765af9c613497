// Copyright 2026 Arobi. All Rights Reserved.

package ship

import (
	"math"
	"math/rand"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/PossumXI/Poseidon/internal/events"
)

// DamagePoint records a localized hit on the hull for renderers and
// flooding analysis.
type DamagePoint struct {
	LocalPos  r3.Vec     `json:"localPos"`
	Magnitude float64    `json:"magnitude"`
	Kind      DamageKind `json:"kind"`
	Age       float64    `json:"age"`
}

// Ship is a live ship instance: rigid-body state plus its component
// collection. Ships own their components exclusively; components refer
// back only through the registry handle.
type Ship struct {
	Handle ShipHandle `json:"handle"`
	ID     uuid.UUID  `json:"id"`
	Name   string     `json:"name"`
	Type   *ShipType  `json:"type"`

	Position        r3.Vec      `json:"position"`
	Orientation     quat.Number `json:"orientation"`
	Velocity        r3.Vec      `json:"velocity"`
	AngularVelocity r3.Vec      `json:"angularVelocity"`

	// WaterIntrusion accumulates flooding in [0, MaxBuoyancy].
	WaterIntrusion float64 `json:"waterIntrusion"`

	// HullBuoyancy relaxes toward MaxBuoyancy − WaterIntrusion.
	HullBuoyancy float64 `json:"hullBuoyancy"`

	Sinking bool `json:"sinking"`

	DamagePoints []DamagePoint `json:"damagePoints"`

	Components []*Component `json:"components"`

	compByID  map[uuid.UUID]*Component
	massCache float64
	massDirty bool
}

// NewShip creates a ship from a type template with an intrinsic hull
// component.
func NewShip(name string, t *ShipType, pos r3.Vec) *Ship {
	s := &Ship{
		ID:           uuid.New(),
		Name:         name,
		Type:         t,
		Position:     pos,
		Orientation:  QuatIdentity(),
		HullBuoyancy: t.MaxBuoyancy,
		compByID:     make(map[uuid.UUID]*Component),
		massDirty:    true,
	}
	s.AddComponent(NewHull(t))
	return s
}

// AddComponent attaches a component and invalidates the mass cache.
func (s *Ship) AddComponent(c *Component) {
	c.Parent = s.Handle
	s.Components = append(s.Components, c)
	s.compByID[c.ID] = c
	s.massDirty = true
}

// RemoveComponent detaches a component by id.
func (s *Ship) RemoveComponent(id uuid.UUID) bool {
	for i, c := range s.Components {
		if c.ID == id {
			s.Components = append(s.Components[:i], s.Components[i+1:]...)
			delete(s.compByID, id)
			s.massDirty = true
			return true
		}
	}
	return false
}

// Component looks a component up by id.
func (s *Ship) Component(id uuid.UUID) (*Component, bool) {
	c, ok := s.compByID[id]
	return c, ok
}

// ComponentsByKind returns components of one kind in attachment order.
func (s *Ship) ComponentsByKind(kind ComponentKind) []*Component {
	var out []*Component
	for _, c := range s.Components {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// HullComponent returns the hull, which every ship carries.
func (s *Ship) HullComponent() *Component {
	for _, c := range s.Components {
		if c.Kind == KindHull {
			return c
		}
	}
	return nil
}

// Mass returns base mass plus the mass of live components. Destroyed
// components shed their mass contribution.
func (s *Ship) Mass() float64 {
	if s.massDirty {
		m := s.Type.BaseMass
		for _, c := range s.Components {
			if !c.Destroyed {
				m += c.Mass
				if c.Cargo != nil {
					m += c.Cargo.Load
				}
			}
		}
		s.massCache = m
		s.massDirty = false
	}
	return s.massCache
}

// InvalidateMass forces recomputation on the next Mass call.
func (s *Ship) InvalidateMass() { s.massDirty = true }

// CenterOfMass returns the mass-weighted component centroid in ship-local
// space. The base hull mass sits at the origin.
func (s *Ship) CenterOfMass() r3.Vec {
	total := s.Type.BaseMass
	weighted := r3.Vec{}
	for _, c := range s.Components {
		if c.Destroyed {
			continue
		}
		m := c.Mass
		if c.Cargo != nil {
			m += c.Cargo.Load
		}
		weighted = r3.Add(weighted, r3.Scale(m, c.LocalPos))
		total += m
	}
	if total <= 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/total, weighted)
}

// Forward returns the world-space bow direction.
func (s *Ship) Forward() r3.Vec { return RotateVec(s.Orientation, r3.Vec{Z: 1}) }

// Right returns the world-space starboard direction.
func (s *Ship) Right() r3.Vec { return RotateVec(s.Orientation, r3.Vec{X: 1}) }

// Up returns the world-space mast direction.
func (s *Ship) Up() r3.Vec { return RotateVec(s.Orientation, r3.Vec{Y: 1}) }

// ToWorld transforms a ship-local point into world space.
func (s *Ship) ToWorld(local r3.Vec) r3.Vec {
	return r3.Add(s.Position, RotateVec(s.Orientation, local))
}

// ToLocal transforms a world point into ship-local space.
func (s *Ship) ToLocal(world r3.Vec) r3.Vec {
	return RotateVecInverse(s.Orientation, r3.Sub(world, s.Position))
}

// Speed returns the linear speed.
func (s *Ship) Speed() float64 { return r3.Norm(s.Velocity) }

// Health sums live component health.
func (s *Ship) Health() float64 {
	h := 0.0
	for _, c := range s.Components {
		if !c.Destroyed {
			h += c.Health
		}
	}
	return h
}

// MaxHealth sums component health budgets.
func (s *Ship) MaxHealth() float64 {
	h := 0.0
	for _, c := range s.Components {
		h += c.MaxHealth
	}
	return h
}

// Stability derives the righting tendency from metacentric height: the
// waterline second moment over submerged volume plus the buoyancy-to-mass
// centroid offset, blended with the type's base stability. Clamped at zero
// from below.
func (s *Ship) Stability() float64 {
	hull := s.HullComponent()
	if hull == nil || hull.Destroyed || hull.Hull == nil {
		return 0
	}
	t := s.Type
	vSub := math.Max(0.1, hull.Hull.Volume()*0.5)

	// Rectangular waterline second moment about the roll axis.
	iWaterline := t.Length * math.Pow(t.Width, 3) / 12

	cm := s.CenterOfMass()
	yCB := cm.Y - 0.3*t.Height
	gm := iWaterline/vSub + yCB - cm.Y
	if gm < 0 {
		gm = 0
	}
	return t.BaseStability * (0.5 + 0.5*math.Min(1, gm/math.Max(1, t.Width)))
}

// Maneuverability folds the type base with rudder and navigation state.
func (s *Ship) Maneuverability() float64 {
	m := s.Type.BaseManeuver
	for _, c := range s.ComponentsByKind(KindNavigation) {
		if !c.Destroyed && c.Active {
			m *= 1 + 0.2*c.HealthFraction()
		}
	}
	return math.Min(1.5, m)
}

// AnchorHolding reports whether a deployed anchor has bottom grip.
func (s *Ship) AnchorHolding() bool {
	for _, c := range s.ComponentsByKind(KindAnchor) {
		if !c.Destroyed && c.Anchor != nil && c.Anchor.Deployed && c.Anchor.Holding {
			return true
		}
	}
	return false
}

// UpdateComponents advances every live component in attachment order.
func (s *Ship) UpdateComponents(ctx *UpdateContext) {
	for _, c := range s.Components {
		c.Update(ctx)
	}
	s.refreshCrewAssignments()
}

// refreshCrewAssignments spreads quarters berths across cannons. Destroyed
// quarters strand gun crews.
func (s *Ship) refreshCrewAssignments() {
	crew := 0
	for _, c := range s.ComponentsByKind(KindQuarters) {
		if !c.Destroyed && c.Quarters != nil {
			crew += c.Quarters.Crew
		}
	}
	if len(s.ComponentsByKind(KindQuarters)) == 0 {
		crew = s.Type.CrewCapacity
	}
	for _, c := range s.ComponentsByKind(KindCannon) {
		if c.Cannon == nil {
			continue
		}
		take := c.Cannon.CrewRequired
		if take > crew {
			take = crew
		}
		c.Cannon.AssignedCrew = take
		crew -= take
	}
}

// SailThrustCapable reports whether a sail's mast (if rigged to one) still
// stands.
func (s *Ship) SailThrustCapable(c *Component) bool {
	if c.Sail == nil || c.Destroyed || !c.Active {
		return false
	}
	if c.Sail.Mast == (uuid.UUID{}) {
		return true
	}
	mast, ok := s.compByID[c.Sail.Mast]
	return ok && !mast.Destroyed
}

// TakeDamage routes damage at a ship-local position to the closest live
// component, records the damage point, and resolves destruction side
// effects. Returned events carry payloads only; the world stamps
// envelopes.
func (s *Ship) TakeDamage(localPos r3.Vec, magnitude float64, kind DamageKind, rng *rand.Rand) []events.Event {
	if magnitude <= 0 {
		return nil
	}
	target := s.closestLiveComponent(localPos)
	if target == nil {
		return nil
	}

	var evs []events.Event
	dealt := target.ApplyDamage(s.Type.HullMaterial, magnitude, kind)
	if dealt <= 0 {
		return nil
	}

	s.DamagePoints = append(s.DamagePoints, DamagePoint{
		LocalPos:  localPos,
		Magnitude: dealt,
		Kind:      kind,
	})

	evs = append(evs, events.Event{
		Type: events.EventTypeDamage,
		Payload: events.DamageEvent{
			ShipID:      s.ID,
			ComponentID: target.ID,
			Magnitude:   dealt,
			DamageKind:  string(kind),
			LocalPos:    localPos,
		},
	})

	if target.Destroyed {
		s.massDirty = true
		evs = append(evs, s.onComponentDestroyed(target, rng)...)
	}
	return evs
}

// closestLiveComponent selects the damage recipient nearest the hit point.
func (s *Ship) closestLiveComponent(localPos r3.Vec) *Component {
	var best *Component
	bestD := math.Inf(1)
	for _, c := range s.Components {
		if c.Destroyed {
			continue
		}
		d := r3.Norm(r3.Sub(c.LocalPos, localPos))
		if d < bestD {
			bestD = d
			best = c
		}
	}
	return best
}

// onComponentDestroyed fires kind-specific destruction effects.
func (s *Ship) onComponentDestroyed(c *Component, rng *rand.Rand) []events.Event {
	evs := []events.Event{{
		Type: events.EventTypeDestruction,
		Payload: events.DestructionEvent{
			TargetID: c.ID,
			Kind:     string(c.Kind),
			Position: s.ToWorld(c.LocalPos),
		},
	}}

	switch c.Kind {
	case KindCannon:
		if c.Cannon != nil && c.Cannon.AmmoCount() > 0 && rng != nil && rng.Float64() < 0.4 {
			evs = append(evs, s.explodeCannon(c, rng)...)
		}
	case KindMast:
		// Sails rigged to a fallen mast stop drawing.
		for _, sc := range s.ComponentsByKind(KindSail) {
			if sc.Sail != nil && sc.Sail.Mast == c.ID {
				sc.Sail.Deployment = 0
				sc.Sail.TargetDeployment = 0
			}
		}
	case KindHull:
		s.Sinking = true
	}
	return evs
}

// explodeCannon detonates a destroyed cannon's magazine, damaging nearby
// components with linear falloff (no less than 20% at the blast edge).
// Heavily damaged neighbor cannons may chain.
func (s *Ship) explodeCannon(c *Component, rng *rand.Rand) []events.Event {
	radius, damage := c.Cannon.ExplosionSpec(c)
	c.Cannon.Inventory = make(map[AmmoKind]int)

	evs := []events.Event{{
		Type: events.EventTypeExplosion,
		Payload: events.ExplosionEvent{
			ShipID:   s.ID,
			SourceID: c.ID,
			Radius:   radius,
			Damage:   damage,
			Position: s.ToWorld(c.LocalPos),
		},
	}}

	for _, other := range s.Components {
		if other == c || other.Destroyed {
			continue
		}
		d := r3.Norm(r3.Sub(other.LocalPos, c.LocalPos))
		if d > radius {
			continue
		}
		falloff := math.Max(0.2, 1-d/radius)
		dealt := other.ApplyDamage(s.Type.HullMaterial, damage*falloff, DamageExplosion)
		if dealt <= 0 {
			continue
		}
		evs = append(evs, events.Event{
			Type: events.EventTypeDamage,
			Payload: events.DamageEvent{
				ShipID:      s.ID,
				ComponentID: other.ID,
				Magnitude:   dealt,
				DamageKind:  string(DamageExplosion),
				LocalPos:    other.LocalPos,
			},
		})

		// Chain detonation of hard-hit loaded cannons.
		if !other.Destroyed && other.Kind == KindCannon && other.Cannon != nil &&
			other.Cannon.AmmoCount() > 0 && dealt > 0.6*other.MaxHealth &&
			rng.Float64() < 0.15 {
			other.Health = 0
			other.Destroyed = true
		}

		if other.Destroyed {
			s.massDirty = true
			evs = append(evs, s.onComponentDestroyed(other, rng)...)
		}
	}
	return evs
}

// Repair restores a component and refreshes mass bookkeeping.
func (s *Ship) Repair(id uuid.UUID, amount float64) bool {
	c, ok := s.compByID[id]
	if !ok {
		return false
	}
	wasDestroyed := c.Destroyed
	c.Repair(amount)
	if wasDestroyed && !c.Destroyed {
		s.massDirty = true
	}
	return true
}

// AgeDamagePoints advances damage point ages and drops entries past the
// retention horizon.
func (s *Ship) AgeDamagePoints(dt float64) {
	live := s.DamagePoints[:0]
	for _, dp := range s.DamagePoints {
		dp.Age += dt
		if dp.Age < 120 {
			live = append(live, dp)
		}
	}
	s.DamagePoints = live
}
