package dynamics

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/PossumXI/Poseidon/internal/ocean"
	"github.com/PossumXI/Poseidon/internal/ship"
)

func calmEnvironment() *ocean.Environment {
	wcfg := ocean.DefaultWaveFieldConfig()
	wcfg.BirthRate = 0
	ecfg := ocean.DefaultEnvironmentConfig()
	return ocean.NewEnvironment(ecfg, ocean.NewWaveField(wcfg))
}

func newTestIntegrator(env *ocean.Environment) *Integrator {
	return NewIntegrator(DefaultConfig(), env, nil, nil)
}

// Still-water equilibrium: no wind, no waves, no thrust. A ship placed at
// the float line must stay there with negligible drift and tilt.
func TestStillWaterEquilibrium(t *testing.T) {
	env := calmEnvironment()
	in := newTestIntegrator(env)
	rng := rand.New(rand.NewSource(1))

	startY := env.SeaLevel() - ship.TypeSloop.Draft
	s := ship.NewShip("becalmed", ship.TypeSloop, r3.Vec{Y: startY})

	dt := 1.0 / 60.0
	for i := 0; i < 600; i++ {
		in.Step(s, dt, rng)
	}

	if math.Abs(s.Position.Y-startY) > 0.05 {
		t.Fatalf("vertical drift: y = %v, want %v ± 0.05", s.Position.Y, startY)
	}
	if speed := s.Speed(); speed > 0.01 {
		t.Fatalf("residual speed %v exceeds 0.01", speed)
	}
	roll, pitch := ship.RollPitch(s.Orientation)
	if math.Abs(roll) > 0.01 || math.Abs(pitch) > 0.01 {
		t.Fatalf("residual tilt roll=%v pitch=%v", roll, pitch)
	}
}

// Orientation stays unit-normalized through sustained integration.
func TestOrientationNormInvariant(t *testing.T) {
	env := calmEnvironment()
	env.SetWind(r2.Vec{X: 1, Y: 0.5}, 18)
	env.Waves().AddComponent(ocean.WaveComponent{
		Kind:       ocean.WaveDirectional,
		Amplitude:  2,
		Wavelength: 35,
		Direction:  r2.Vec{X: 1},
	})
	in := newTestIntegrator(env)
	rng := rand.New(rand.NewSource(2))

	s := ship.NewShip("heeler", ship.TypeFrigate, r3.Vec{Y: env.SeaLevel() - 2})
	ship.Outfit(s)
	for _, c := range s.ComponentsByKind(ship.KindSail) {
		c.Sail.SetTarget(1)
	}

	dt := 1.0 / 60.0
	for i := 0; i < 1200; i++ {
		env.Advance(dt)
		in.Step(s, dt, rng)
		n := quat.Abs(s.Orientation)
		if n < 1-1e-4 || n > 1+1e-4 {
			t.Fatalf("tick %d: quaternion norm %v outside [1−1e−4, 1+1e−4]", i, n)
		}
	}
}

// A wave crest under the ship must push it up; a trough must let it fall.
func TestWaveLiftFollowsSurface(t *testing.T) {
	env := calmEnvironment()
	// Phase π/2 puts a crest at the origin at t=0.
	env.Waves().AddComponent(ocean.WaveComponent{
		Kind:       ocean.WaveDirectional,
		Amplitude:  2,
		Wavelength: 40,
		Phase:      math.Pi / 2,
		Direction:  r2.Vec{X: 1},
	})
	in := newTestIntegrator(env)
	rng := rand.New(rand.NewSource(3))

	s := ship.NewShip("lifted", ship.TypeSloop, r3.Vec{Y: env.SeaLevel() - ship.TypeSloop.Draft})

	dt := 1.0 / 60.0
	in.Step(s, dt, rng)

	if h := env.Waves().Height(0, 0); h <= 0 {
		t.Fatalf("test setup: expected positive wave height, got %v", h)
	}
	if s.Velocity.Y <= 0 {
		t.Fatalf("crest under hull should lift: vy = %v", s.Velocity.Y)
	}
}

// Sail thrust: wind dead astern on a square sail at full deployment.
func TestSailThrustMagnitude(t *testing.T) {
	env := calmEnvironment()
	env.SetWind(r2.Vec{X: 1}, 10)
	in := newTestIntegrator(env)

	s := ship.NewShip("runner", ship.TypeSloop, r3.Vec{Y: env.SeaLevel() - 1})
	// Face the bow along +x, straight downwind.
	s.Orientation = ship.QuatFromAxisAngle(r3.Vec{Y: 1}, math.Pi/2)

	sail := ship.NewSail(ship.SailSquare, 50)
	sail.Sail.Deployment = 1
	sail.Sail.TargetDeployment = 1
	s.AddComponent(sail)

	var force r3.Vec
	in.accumulateThrust(s, env.WindVelocity(), env.WindSpeed(), func(f, at r3.Vec) {
		force = r3.Add(force, f)
	})

	forward := s.Forward()
	along := r3.Dot(force, forward)
	want := 10.0 * 10.0 * 50.0 // windSpeed²·area at full efficiency
	if along <= 0 {
		t.Fatalf("thrust should act along forward, got %v", along)
	}
	if math.Abs(along-want)/want > 0.1 {
		t.Fatalf("thrust magnitude %v not within 10%% of %v", along, want)
	}
}

// A sinking ship produces no thrust regardless of engines and sails.
func TestSinkingShipProducesNoThrust(t *testing.T) {
	env := calmEnvironment()
	env.SetWind(r2.Vec{X: 1}, 15)
	in := newTestIntegrator(env)
	rng := rand.New(rand.NewSource(4))

	s := ship.NewShip("doomed", ship.TypeSloop, r3.Vec{Y: env.SeaLevel() - 1})
	s.Orientation = ship.QuatFromAxisAngle(r3.Vec{Y: 1}, math.Pi/2)

	engine := ship.NewEngine("engine", 8000)
	engine.Engine.Start()
	s.AddComponent(engine)
	sail := ship.NewSail(ship.SailSquare, 60)
	sail.Sail.Deployment = 1
	sail.Sail.TargetDeployment = 1
	s.AddComponent(sail)

	s.WaterIntrusion = s.Type.MaxBuoyancy // fully flooded
	dt := 1.0 / 60.0
	in.Step(s, dt, rng)

	if !s.Sinking {
		t.Fatal("fully flooded ship must be sinking")
	}

	// With thrust suppressed, horizontal momentum comes only from windage;
	// run a second step and verify forward acceleration stays below what
	// the engine alone would impart.
	before := r3.Dot(s.Velocity, s.Forward())
	in.Step(s, dt, rng)
	after := r3.Dot(s.Velocity, s.Forward())

	engineDelta := 8000.0 / s.Mass() * dt
	if after-before >= engineDelta*0.5 {
		t.Fatalf("sinking ship still accelerating as if under thrust: Δv = %v", after-before)
	}
}

// Water clamp: a hull driven far below the column is pushed back to the
// floor with no downward velocity.
func TestWaterClampStopsTunnelling(t *testing.T) {
	env := calmEnvironment()
	in := newTestIntegrator(env)
	rng := rand.New(rand.NewSource(5))

	s := ship.NewShip("diver", ship.TypeSloop, r3.Vec{Y: env.SeaLevel() - 40})
	s.Velocity = r3.Vec{Y: -50}
	s.HullBuoyancy = 0 // no restoring force
	s.Sinking = true

	dt := 1.0 / 60.0
	in.Step(s, dt, rng)

	floor := env.WaterHeight(s.Position.X, s.Position.Z) - s.Type.Height
	if s.Position.Y < floor-1e-9 {
		t.Fatalf("ship tunneled below clamp: y = %v, floor %v", s.Position.Y, floor)
	}
	if s.Velocity.Y < 0 {
		t.Fatalf("clamped hull keeps downward velocity %v", s.Velocity.Y)
	}
}

// Flooding feedback: breach intake raises intrusion, intrusion erodes hull
// buoyancy, and crossing the threshold flips the sinking state.
func TestFloodingFeedbackReachesSinking(t *testing.T) {
	env := calmEnvironment()
	in := newTestIntegrator(env)
	rng := rand.New(rand.NewSource(6))

	s := ship.NewShip("holed", ship.TypeSloop, r3.Vec{Y: env.SeaLevel() - 1})
	hull := s.HullComponent()
	hull.Hull.IntakeRate = 0.2 // severe breach

	dt := 1.0 / 60.0
	sank := false
	for i := 0; i < 60*120; i++ {
		in.Step(s, dt, rng)
		if s.Sinking {
			sank = true
			break
		}
	}
	if !sank {
		t.Fatalf("severe breach never sank the ship; intrusion %v", s.WaterIntrusion)
	}
}

// Destroyed mast silences its sails.
func TestMastLossStopsSailThrust(t *testing.T) {
	env := calmEnvironment()
	env.SetWind(r2.Vec{X: 1}, 10)
	in := newTestIntegrator(env)
	rng := rand.New(rand.NewSource(7))

	s := ship.NewShip("dismasted", ship.TypeSloop, r3.Vec{Y: env.SeaLevel() - 1})
	s.Orientation = ship.QuatFromAxisAngle(r3.Vec{Y: 1}, math.Pi/2)

	mast := ship.NewMast("mainmast", 5)
	mast.LocalPos = r3.Vec{Y: 3}
	s.AddComponent(mast)
	sail := ship.NewSail(ship.SailSquare, 50)
	sail.Sail.Deployment = 1
	sail.Sail.TargetDeployment = 1
	sail.Sail.Mast = mast.ID
	s.AddComponent(sail)

	s.TakeDamage(r3.Vec{Y: 3}, mast.MaxHealth*10, ship.DamageCannonBall, rng)
	if !mast.Destroyed {
		t.Fatal("mast should be destroyed")
	}

	var force r3.Vec
	in.accumulateThrust(s, env.WindVelocity(), env.WindSpeed(), func(f, at r3.Vec) {
		force = r3.Add(force, f)
	})
	if r3.Norm(force) != 0 {
		t.Fatalf("sail on a fallen mast still thrusts: %+v", force)
	}
}
