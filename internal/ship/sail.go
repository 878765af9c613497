// Copyright 2026 Arobi. All Rights Reserved.

package ship

import (
	"math"

	"github.com/google/uuid"
)

// SailKind selects the wind-angle response curve.
type SailKind string

const (
	SailSquare      SailKind = "square"
	SailLateen      SailKind = "lateen"
	SailGaff        SailKind = "gaff"
	SailMagicalSilk SailKind = "magical_silk"
)

// SailState is the sail variant payload.
type SailState struct {
	SailKind SailKind `json:"sailKind"`
	Area     float64  `json:"area"` // m² of cloth at full deployment

	// Deployment converges toward the target at DeploymentSpeed per
	// second.
	Deployment       float64 `json:"deployment"`       // 0-1 exposed
	TargetDeployment float64 `json:"targetDeployment"` // 0-1 commanded
	DeploymentSpeed  float64 `json:"deploymentSpeed"`  // fraction/s

	Reefed     bool    `json:"reefed"`
	ReefFactor float64 `json:"reefFactor"` // 0-0.8 area reduction when reefed

	TearDamage float64 `json:"tearDamage"`

	// OptimalAngle is the wind-to-forward angle of peak efficiency,
	// radians.
	OptimalAngle float64 `json:"optimalAngle"`

	// Mast is the supporting mast component, if any. A destroyed mast
	// zeroes thrust from this sail.
	Mast uuid.UUID `json:"mast,omitempty"`

	fireBurning bool
}

// NewSail builds a sail component.
func NewSail(kind SailKind, area float64) *Component {
	optimal := 0.0
	switch kind {
	case SailLateen:
		optimal = math.Pi / 4
	case SailGaff:
		optimal = math.Pi / 3
	}
	c := newComponent(KindSail, string(kind)+" sail", 150, 80+area*0.5)
	c.Sail = &SailState{
		SailKind:        kind,
		Area:            area,
		DeploymentSpeed: 0.2,
		OptimalAngle:    optimal,
	}
	return c
}

// SetTarget commands a deployment fraction, clamped to [0,1].
func (s *SailState) SetTarget(f float64) {
	s.TargetDeployment = math.Min(1, math.Max(0, f))
}

// SetReef toggles reefing with the given area reduction factor.
func (s *SailState) SetReef(on bool, factor float64) {
	s.Reefed = on
	s.ReefFactor = math.Min(0.8, math.Max(0, factor))
	if !on {
		s.ReefFactor = 0
	}
}

// EffectiveArea is the thrust-producing cloth area after deployment,
// reefing, and tearing.
func (s *SailState) EffectiveArea(c *Component) float64 {
	tear := 0.0
	if c.MaxHealth > 0 {
		tear = math.Min(1, s.TearDamage/c.MaxHealth)
	}
	a := s.Area * s.Deployment * (1 - s.ReefFactor) * (1 - tear)
	return math.Max(0, a)
}

// AngleEfficiency maps the angle between wind and ship forward to a thrust
// multiplier. Every kind except magical silk peaks at its optimal angle and
// decays piecewise-linearly to 0.1 past 90°.
func (s *SailState) AngleEfficiency(windAngle float64) float64 {
	if s.SailKind == SailMagicalSilk {
		return 1.0
	}
	a := math.Abs(windAngle)
	if a > math.Pi {
		a = 2*math.Pi - a
	}
	opt := s.OptimalAngle
	half := math.Pi / 2
	switch {
	case a <= opt:
		if opt == 0 {
			return 1.0
		}
		return 0.6 + 0.4*a/opt
	case a <= half:
		return 1.0 - 0.9*(a-opt)/(half-opt)
	default:
		return 0.1
	}
}

func (s *SailState) update(c *Component, ctx *UpdateContext) {
	// Deployment convergence.
	diff := s.TargetDeployment - s.Deployment
	step := s.DeploymentSpeed * ctx.DT
	if math.Abs(diff) <= step {
		s.Deployment = s.TargetDeployment
	} else {
		s.Deployment += math.Copysign(step, diff)
	}

	// High winds tear deployed, unreefed sails.
	if ctx.WindSpeed > 25 && s.Deployment > 0.8 && !s.Reefed {
		rate := (ctx.WindSpeed - 20) * 0.1
		if s.fireBurning {
			rate *= 2
		}
		s.TearDamage += rate * ctx.DT
	}

	// Tear past the cloth budget destroys the sail.
	if s.TearDamage >= c.MaxHealth {
		c.Health = 0
		c.Destroyed = true
	}
}

func (s *SailState) onDamage(c *Component, dealt float64, kind DamageKind) {
	switch kind {
	case DamageFire:
		s.fireBurning = true
		s.TearDamage += dealt * 0.5
	case DamageStorm:
		if dealt > 0.1*c.MaxHealth {
			s.SetReef(true, 0.6)
		}
		s.TearDamage += dealt * 0.3
	case DamageCannonBall, DamageExplosion:
		s.TearDamage += dealt * 0.4
	}
}
