// Copyright 2026 Arobi. All Rights Reserved.

package ship

import "math"

// RudderState is the rudder variant payload. The blade angle chases a
// commanded setpoint at a response-limited rate; jamming locks it in place.
type RudderState struct {
	Angle       float64 `json:"angle"`       // radians, current
	TargetAngle float64 `json:"targetAngle"` // radians, commanded
	MaxAngle    float64 `json:"maxAngle"`
	Response    float64 `json:"response"` // radians/s of blade travel

	Area       float64 `json:"area"`       // m² blade area
	Efficiency float64 `json:"efficiency"` // 0-1

	Jammed           bool    `json:"jammed"`
	Fouling          float64 `json:"fouling"` // 0-1
	Wear             float64 `json:"wear"`    // 0-1
	StructuralDamage float64 `json:"structuralDamage"`
}

// NewRudder builds a rudder component.
func NewRudder(area float64) *Component {
	c := newComponent(KindRudder, "rudder", 120, 150)
	c.Rudder = &RudderState{
		MaxAngle:   math.Pi / 5,
		Response:   math.Pi / 6,
		Area:       area,
		Efficiency: 0.9,
	}
	return c
}

// SetTarget commands a blade angle, clamped to the mechanical range.
func (r *RudderState) SetTarget(angle float64) {
	r.TargetAngle = math.Min(r.MaxAngle, math.Max(-r.MaxAngle, angle))
}

// stallAngle is where flow separation begins, at 80% of the mechanical
// range.
func (r *RudderState) stallAngle() float64 { return 0.8 * r.MaxAngle }

// TurningForce returns the lateral force magnitude for the given ship
// speed. Beyond the stall angle the blade loses authority.
func (r *RudderState) TurningForce(c *Component, shipSpeed float64) float64 {
	if c.Destroyed || !c.Active {
		return 0
	}
	a := math.Abs(r.Angle)
	f := shipSpeed * shipSpeed * a * r.Area * r.Efficiency * c.Effectiveness() * 50
	if a > r.stallAngle() {
		over := (a - r.stallAngle()) / (r.MaxAngle - r.stallAngle())
		f *= 1 - 0.7*math.Min(1, over)
	}
	return f
}

// DragForce returns the longitudinal drag penalty of a deflected blade.
func (r *RudderState) DragForce(shipSpeed float64) float64 {
	return shipSpeed * shipSpeed * math.Abs(r.Angle) * r.Area * 8
}

func (r *RudderState) update(c *Component, ctx *UpdateContext) {
	if r.Jammed {
		return
	}

	diff := r.TargetAngle - r.Angle
	step := r.Response * ctx.DT
	if math.Abs(diff) <= step {
		r.Angle = r.TargetAngle
	} else {
		r.Angle += math.Copysign(step, diff)
	}

	// Fouling builds slowly under way, wear with deflection cycles.
	r.Fouling = math.Min(1, r.Fouling+0.00001*ctx.DT*ctx.ShipSpeed)
	r.Wear = math.Min(1, r.Wear+0.00002*ctx.DT*math.Abs(r.Angle)/math.Max(r.MaxAngle, 1e-9)*ctx.ShipSpeed)

	// Heavy damage or wear can jam the blade at its current angle.
	if r.StructuralDamage > 0.8 || r.Wear > 0.9 {
		if ctx.Rng != nil && ctx.Rng.Float64() < 0.02*ctx.DT {
			r.Jammed = true
		}
	}
}

func (r *RudderState) onDamage(c *Component, dealt float64, kind DamageKind) {
	if c.MaxHealth > 0 {
		r.StructuralDamage = math.Min(1, r.StructuralDamage+dealt/c.MaxHealth)
	}
	if kind == DamageCorrosion || kind == DamageFatigue {
		r.Wear = math.Min(1, r.Wear+dealt*0.01)
	}
}

// Unjam frees a jammed rudder after repair work.
func (r *RudderState) Unjam() {
	r.Jammed = false
	r.StructuralDamage = math.Max(0, r.StructuralDamage-0.3)
}
