// Package dynamics implements the per-tick force and torque accumulation
// for ships and their semi-implicit Euler integration. One integration pass
// runs per ship per tick; passes only read the shared ocean state, so they
// are safe to parallelize across ships.
//
// Copyright 2026 Arobi. All Rights Reserved.
package dynamics

import (
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/PossumXI/Poseidon/internal/events"
	"github.com/PossumXI/Poseidon/internal/ocean"
	"github.com/PossumXI/Poseidon/internal/ship"
	"github.com/PossumXI/Poseidon/internal/terrain"
)

// Config tunes the integrator.
type Config struct {
	BuoyancySamples int     // grid size per axis across the waterline footprint
	AngularDrag     float64 // direct angular velocity drag coefficient
	DragCoefficient float64 // quadratic drag coefficient for hull surfaces
	LinearDamping   float64 // velocity retention per tick
	AngularDamping  float64 // angular velocity retention per tick
	WavePressure    float64 // pressure coefficient for wave force sampling
}

// DefaultConfig returns the canonical integrator tuning.
func DefaultConfig() Config {
	return Config{
		BuoyancySamples: 7,
		AngularDrag:     0.8,
		DragCoefficient: 0.8,
		LinearDamping:   0.999,
		AngularDamping:  0.995,
		WavePressure:    0.01,
	}
}

// Integrator advances ship rigid-body state against an ocean environment.
type Integrator struct {
	cfg  Config
	env  *ocean.Environment
	terr terrain.Source
	log  logrus.FieldLogger

	nanClamps uint64
}

// NewIntegrator creates an integrator bound to an environment. The terrain
// source (may be nil) supplies seabed depth for anchor holding.
func NewIntegrator(cfg Config, env *ocean.Environment, terr terrain.Source, log logrus.FieldLogger) *Integrator {
	if cfg.BuoyancySamples < 2 {
		cfg.BuoyancySamples = 7
	}
	return &Integrator{cfg: cfg, env: env, terr: terr, log: log}
}

// NaNClamps reports how many times a non-finite force was clamped, for
// diagnostics.
func (in *Integrator) NaNClamps() uint64 { return in.nanClamps }

// Step advances one ship by dt. It accumulates buoyancy, thrust, restoring
// torque, drag, wind, wave coupling, and gravity, then integrates with
// semi-implicit Euler and advances flooding. The returned events carry
// payloads only.
func (in *Integrator) Step(s *ship.Ship, dt float64, rng *rand.Rand) []events.Event {
	if dt <= 0 {
		return nil
	}

	mass := s.Mass()
	stability := s.Stability()
	comLocal := s.CenterOfMass()
	comWorld := s.ToWorld(comLocal)

	var force, torque r3.Vec
	addAt := func(f, at r3.Vec) {
		force = r3.Add(force, f)
		torque = r3.Add(torque, r3.Cross(r3.Sub(at, comWorld), f))
	}

	// Component timers first: deployment convergence, reload, anchor
	// hauling. Thrust below reads the post-update state.
	wind := in.env.WindVelocity()
	windSpeed := in.env.WindSpeed()
	uctx := &ship.UpdateContext{
		DT:         dt,
		Rng:        rng,
		WindSpeed:  windSpeed,
		ShipSpeed:  s.Speed(),
		WaterDepth: in.waterDepthUnderKeel(s),
	}
	s.UpdateComponents(uctx)

	// Buoyancy, sampled over the waterline footprint.
	buoyTotal, buoyCenter := in.sampleBuoyancy(s, mass)
	if buoyTotal > 0 {
		addAt(r3.Vec{Y: buoyTotal}, buoyCenter)
	}

	// Thrust. Sinking ships and anchored ships produce none.
	if !s.Sinking && !s.AnchorHolding() {
		in.accumulateThrust(s, wind, windSpeed, addAt)
	}

	// Rudder authority and penalty.
	in.accumulateRudder(s, &force, &torque)

	// Restoring torque from metacentric stability.
	roll, pitch := ship.RollPitch(s.Orientation)
	restore := stability * mass * in.env.Config().Gravity * 0.1
	torque = r3.Add(torque, r3.Vec{X: -pitch * restore, Z: -roll * restore})
	torque = r3.Add(torque, r3.Scale(-stability*0.5, s.AngularVelocity))
	in.accumulateRighting(s, stability, mass, &torque)

	// Hull drag, air drag, angular drag.
	in.accumulateDrag(s, &force)
	torque = r3.Add(torque, r3.Scale(-in.cfg.AngularDrag, s.AngularVelocity))

	// Wind pressure on the hull profile.
	in.accumulateWindage(s, wind, &force)

	// Wave coupling: pressure sampling plus slope-derived pitch/roll.
	in.accumulateWaves(s, mass, stability, comWorld, addAt, &torque)

	// Gravity.
	force = r3.Add(force, r3.Vec{Y: -mass * in.env.Config().Gravity})

	// Guard: non-finite forces are programmer errors; clamp and count
	// rather than poisoning the state.
	if !finiteVec(force) || !finiteVec(torque) {
		in.nanClamps++
		if in.log != nil {
			in.log.WithField("ship", s.Name).Warn("non-finite force clamped")
		}
		force = sanitizeVec(force)
		torque = sanitizeVec(torque)
	}

	in.integrate(s, mass, force, torque, dt)

	return in.advanceFlooding(s, dt)
}

// sampleBuoyancy walks an N×N grid across the length×width footprint.
// Per-cell submersion is normalized so that an intact hull floats with its
// keel one draft below the surface; the hull buoyancy scalar (eroded by
// flooding) scales the whole field. Returns total upward force and its
// weighted world-space center.
func (in *Integrator) sampleBuoyancy(s *ship.Ship, mass float64) (float64, r3.Vec) {
	t := s.Type
	n := in.cfg.BuoyancySamples
	g := in.env.Config().Gravity

	hb := s.HullBuoyancy
	if hb <= 0 {
		return 0, s.Position
	}

	// Submersion s = waterLevel − (y − draft) evaluates to 2·draft at the
	// even-keel float line.
	sRef := 2 * t.Draft
	sCap := 2 * sRef
	cellShare := mass * g * hb / float64(n*n)

	total := 0.0
	weighted := r3.Vec{}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			lx := (float64(i)/float64(n-1) - 0.5) * t.Width
			lz := (float64(j)/float64(n-1) - 0.5) * t.Length
			p := s.ToWorld(r3.Vec{X: lx, Z: lz})

			waterLevel := in.env.WaterHeight(p.X, p.Z)
			sub := math.Max(0, waterLevel-(p.Y-t.Draft))
			if sub == 0 {
				continue
			}
			if sub > sCap {
				sub = sCap
			}
			f := cellShare * sub / sRef
			total += f
			weighted = r3.Add(weighted, r3.Scale(f, p))
		}
	}
	if total == 0 {
		return 0, s.Position
	}
	center := r3.Scale(1/total, weighted)
	// Center of buoyancy rides below the center of mass.
	center.Y = s.ToWorld(s.CenterOfMass()).Y - 0.3*t.Height
	return total, center
}

// accumulateThrust adds sail and engine thrust along the ship's forward
// direction, producing torque for off-center mounts.
func (in *Integrator) accumulateThrust(s *ship.Ship, wind r3.Vec, windSpeed float64, addAt func(f, at r3.Vec)) {
	forward := s.Forward()

	for _, c := range s.ComponentsByKind(ship.KindSail) {
		if !s.SailThrustCapable(c) || c.Sail == nil {
			continue
		}
		area := c.Sail.EffectiveArea(c)
		if area <= 0 || windSpeed <= 0 {
			continue
		}
		windAngle := angleBetweenHorizontal(wind, forward)
		eff := c.Sail.AngleEfficiency(windAngle)
		thrust := windSpeed * windSpeed * area * eff * c.Effectiveness()
		addAt(r3.Scale(thrust, forward), s.ToWorld(c.LocalPos))
	}

	for _, c := range s.ComponentsByKind(ship.KindEngine) {
		if c.Engine == nil {
			continue
		}
		thrust := c.Engine.Thrust(c)
		if thrust <= 0 {
			continue
		}
		addAt(r3.Scale(thrust, forward), s.ToWorld(c.LocalPos))
	}
}

// accumulateRudder turns rudder deflection into yaw torque and a drag
// penalty.
func (in *Integrator) accumulateRudder(s *ship.Ship, force, torque *r3.Vec) {
	speed := s.Speed()
	if speed < 1e-6 {
		return
	}
	for _, c := range s.ComponentsByKind(ship.KindRudder) {
		if c.Rudder == nil || c.Destroyed || !c.Active {
			continue
		}
		turn := c.Rudder.TurningForce(c, speed) * s.Maneuverability()
		if turn > 0 {
			lever := s.Type.Length * 0.5
			*torque = r3.Add(*torque, r3.Vec{Y: math.Copysign(turn*lever*0.01, c.Rudder.Angle)})
		}
		drag := c.Rudder.DragForce(speed)
		if drag > 0 {
			*force = r3.Add(*force, r3.Scale(-drag/speed, s.Velocity))
		}
	}
}

// accumulateRighting adds the small torque pulling ship-up toward world-up.
func (in *Integrator) accumulateRighting(s *ship.Ship, stability, mass float64, torque *r3.Vec) {
	up := s.Up()
	tilt := math.Acos(clamp(up.Y, -1, 1))
	if tilt < 1e-6 {
		return
	}
	axis := r3.Cross(up, r3.Vec{Y: 1})
	n := r3.Norm(axis)
	if n == 0 {
		return
	}
	mag := tilt * stability * mass * in.env.Config().Gravity * 0.05
	*torque = r3.Add(*torque, r3.Scale(mag/n, axis))
}

// accumulateDrag applies quadratic water and air drag against the hull.
func (in *Integrator) accumulateDrag(s *ship.Ship, force *r3.Vec) {
	t := s.Type
	speed := s.Speed()
	if speed < 1e-9 {
		return
	}
	dir := r3.Scale(1/speed, s.Velocity)
	cfg := in.env.Config()

	waterLevel := in.env.WaterHeight(s.Position.X, s.Position.Z)
	if s.Position.Y < waterLevel {
		wetArea := t.Length * t.Draft
		mag := 0.5 * cfg.WaterDensity * speed * speed * in.cfg.DragCoefficient * wetArea
		*force = r3.Add(*force, r3.Scale(-mag, dir))
	}

	dryArea := t.Length * (t.Height - t.Draft) * 0.3
	mag := 0.5 * cfg.AirDensity * speed * speed * in.cfg.DragCoefficient * dryArea
	*force = r3.Add(*force, r3.Scale(-mag, dir))
}

// accumulateWindage applies wind pressure on the above-water profile.
func (in *Integrator) accumulateWindage(s *ship.Ship, wind r3.Vec, force *r3.Vec) {
	rel := r3.Sub(wind, s.Velocity)
	speed := r3.Norm(rel)
	if speed < 1e-9 {
		return
	}
	t := s.Type
	sideArea := t.Length * (t.Height - t.Draft) * 0.5
	mag := 0.5 * in.env.Config().AirDensity * speed * speed * 0.8 * sideArea
	*force = r3.Add(*force, r3.Scale(mag/speed, rel))
}

// accumulateWaves samples analytic wave velocity over the footprint grid
// and converts it to pressure-like forces, then adds slope-derived
// pitch/roll torques and motion damping.
func (in *Integrator) accumulateWaves(s *ship.Ship, mass, stability float64, comWorld r3.Vec, addAt func(f, at r3.Vec), torque *r3.Vec) {
	t := s.Type
	n := in.cfg.BuoyancySamples
	cfg := in.env.Config()
	waves := in.env.Waves()

	damping := math.Max(0.1, stability*0.5)

	var avg r3.Vec
	var waveTorque r3.Vec
	count := 0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			lx := (float64(i)/float64(n-1) - 0.5) * t.Width
			lz := (float64(j)/float64(n-1) - 0.5) * t.Length
			p := s.ToWorld(r3.Vec{X: lx, Z: lz})
			if p.Y > in.env.WaterHeight(p.X, p.Z)+0.5 {
				continue
			}
			v := waves.Velocity(p.X, p.Z)
			sp := r3.Norm(v)
			if sp < 1e-9 {
				continue
			}
			f := r3.Scale(cfg.WaterDensity*sp*in.cfg.WavePressure, v)
			avg = r3.Add(avg, f)
			waveTorque = r3.Add(waveTorque, r3.Cross(r3.Sub(p, comWorld), f))
			count++
		}
	}
	if count > 0 {
		avg = r3.Scale(damping/float64(count), avg)
		addAt(avg, comWorld)
		*torque = r3.Add(*torque, r3.Scale(damping/float64(count), waveTorque))
	}

	// Slope coupling: the surface gradient pitches and rolls the hull.
	g := cfg.Gravity
	slopeX, slopeZ := waves.Slope(s.Position.X, s.Position.Z)
	*torque = r3.Add(*torque, r3.Vec{X: slopeZ * mass * g * 0.1, Z: -slopeX * mass * g * 0.1})

	// Dynamic motion damping against wave-driven oscillation.
	*torque = r3.Add(*torque, r3.Vec{
		X: -0.05 * mass * s.AngularVelocity.X,
		Z: -0.05 * mass * s.AngularVelocity.Z,
	})
}

// integrate advances state with semi-implicit Euler and renormalizes the
// orientation. A hard clamp keeps hulls from tunneling below the water
// column.
func (in *Integrator) integrate(s *ship.Ship, mass float64, force, torque r3.Vec, dt float64) {
	t := s.Type

	accel := r3.Scale(1/mass, force)
	inertia := mass * (t.Length*t.Length + t.Width*t.Width) / 12
	alpha := r3.Scale(1/inertia, torque)

	s.Velocity = r3.Scale(in.cfg.LinearDamping, r3.Add(s.Velocity, r3.Scale(dt, accel)))
	s.AngularVelocity = r3.Scale(in.cfg.AngularDamping, r3.Add(s.AngularVelocity, r3.Scale(dt, alpha)))
	s.Position = r3.Add(s.Position, r3.Scale(dt, s.Velocity))

	dq := ship.QuatFromAngularVelocity(s.AngularVelocity, dt)
	s.Orientation = ship.QuatNormalize(quat.Mul(s.Orientation, dq))

	waterLevel := in.env.WaterHeight(s.Position.X, s.Position.Z)
	floor := waterLevel - t.Height
	if s.Position.Y < floor {
		s.Position.Y = floor
		if s.Velocity.Y < 0 {
			s.Velocity.Y = 0
		}
	}
}

// advanceFlooding runs the water intrusion feedback loop and the hull
// buoyancy relaxation, flipping the ship into the sinking state when the
// budget is gone.
func (in *Integrator) advanceFlooding(s *ship.Ship, dt float64) []events.Event {
	t := s.Type
	hull := s.HullComponent()
	intake := 0.0
	if hull != nil && hull.Hull != nil && !hull.Destroyed {
		intake = hull.Hull.IntakeRate
	}

	if s.WaterIntrusion > 0 || intake > 0 {
		growth := intake + 0.01*s.WaterIntrusion
		drain := 0.01
		s.WaterIntrusion = clamp(s.WaterIntrusion+(growth-drain)*dt, 0, t.MaxBuoyancy)
	}

	target := t.MaxBuoyancy - s.WaterIntrusion
	s.HullBuoyancy += (target - s.HullBuoyancy) * math.Min(1, 2*dt)

	s.AgeDamagePoints(dt)

	wasSinking := s.Sinking
	if s.WaterIntrusion >= t.SinkingThreshold*t.MaxBuoyancy || s.HullBuoyancy <= 0 || s.Health() <= 0 {
		s.Sinking = true
		s.HullBuoyancy = math.Min(s.HullBuoyancy, 0)
	}
	if s.Sinking && !wasSinking {
		return []events.Event{{
			Type: events.EventTypeSinkingStarted,
			Payload: events.DestructionEvent{
				TargetID: s.ID,
				Kind:     "ship",
				Position: s.Position,
			},
		}}
	}
	return nil
}

// waterDepthUnderKeel estimates the water column from the surface to the
// seabed for anchor behavior. Open water with no chunk reads as abyssal.
func (in *Integrator) waterDepthUnderKeel(s *ship.Ship) float64 {
	surface := in.env.WaterHeight(s.Position.X, s.Position.Z)
	bottom := 0.0
	if in.terr != nil {
		cx := terrain.ChunkCoord(s.Position.X)
		cz := terrain.ChunkCoord(s.Position.Z)
		if chunk, ok := in.terr.ChunkAt(cx, cz); ok {
			bottom = chunk.Height
		}
	}
	return math.Max(0, surface-bottom)
}

func angleBetweenHorizontal(a, b r3.Vec) float64 {
	ah := math.Hypot(a.X, a.Z)
	bh := math.Hypot(b.X, b.Z)
	if ah < 1e-9 || bh < 1e-9 {
		return 0
	}
	cos := (a.X*b.X + a.Z*b.Z) / (ah * bh)
	return math.Acos(clamp(cos, -1, 1))
}

func finiteVec(v r3.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

func sanitizeVec(v r3.Vec) r3.Vec {
	fix := func(f float64) float64 {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	}
	return r3.Vec{X: fix(v.X), Y: fix(v.Y), Z: fix(v.Z)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
