package collision

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/PossumXI/Poseidon/internal/events"
	"github.com/PossumXI/Poseidon/internal/ocean"
	"github.com/PossumXI/Poseidon/internal/ship"
	"github.com/PossumXI/Poseidon/internal/terrain"
)

func newTestResolver(terr terrain.Source) *Resolver {
	return NewResolver(DefaultConfig(), terr)
}

func defaultCalmWaveConfig() ocean.WaveFieldConfig {
	cfg := ocean.DefaultWaveFieldConfig()
	cfg.BirthRate = 0
	return cfg
}

func newCalmEnv(wcfg ocean.WaveFieldConfig) *ocean.Environment {
	return ocean.NewEnvironment(ocean.DefaultEnvironmentConfig(), ocean.NewWaveField(wcfg))
}

// Head-on collision between equal ships: momentum conserved, both bows
// damaged with the ramming kind, post-impulse separating.
func TestHeadOnCollisionConservesMomentum(t *testing.T) {
	rv := newTestResolver(nil)
	rng := rand.New(rand.NewSource(1))

	a := ship.NewShip("A", ship.TypeFrigate, r3.Vec{X: -5, Y: 62})
	a.Orientation = ship.QuatFromAxisAngle(r3.Vec{Y: 1}, math.Pi/2) // bow +x
	a.Velocity = r3.Vec{X: 5}
	b := ship.NewShip("B", ship.TypeFrigate, r3.Vec{X: 5, Y: 62})
	b.Orientation = ship.QuatFromAxisAngle(r3.Vec{Y: 1}, -math.Pi/2) // bow −x
	b.Velocity = r3.Vec{X: -5}

	before := a.Mass()*a.Velocity.X + b.Mass()*b.Velocity.X
	evs := rv.Resolve([]*ship.Ship{a, b}, nil, rng)

	after := a.Mass()*a.Velocity.X + b.Mass()*b.Velocity.X
	scale := a.Mass() * 5 * 2
	if math.Abs(after-before) > scale*0.01 {
		t.Fatalf("momentum drift: before %v after %v", before, after)
	}

	// Post-impulse relative velocity along the normal must be separating.
	normal := r3.Sub(b.Position, a.Position)
	normal = r3.Scale(1/r3.Norm(normal), normal)
	if rel := r3.Dot(r3.Sub(b.Velocity, a.Velocity), normal); rel < 0 {
		t.Fatalf("ships still approaching after impulse: %v", rel)
	}

	// Both hulls report ramming damage.
	ramming := 0
	for _, ev := range evs {
		if ev.Type == events.EventTypeDamage {
			if p, ok := ev.Payload.(events.DamageEvent); ok && p.DamageKind == string(ship.DamageRamming) {
				ramming++
			}
		}
	}
	if ramming < 2 {
		t.Fatalf("expected ramming damage on both ships, got %d events", ramming)
	}

	for _, s := range []*ship.Ship{a, b} {
		hull := s.HullComponent()
		if hull.Hull.Sections[ship.SectionBow] >= s.Type.BaseHealth/8 {
			t.Fatalf("%s bow section untouched", s.Name)
		}
	}
}

// Separating ships produce no impulse.
func TestSeparatingPairEarlyOut(t *testing.T) {
	rv := newTestResolver(nil)
	rng := rand.New(rand.NewSource(1))

	a := ship.NewShip("A", ship.TypeFrigate, r3.Vec{X: -5, Y: 62})
	a.Velocity = r3.Vec{X: -3}
	b := ship.NewShip("B", ship.TypeFrigate, r3.Vec{X: 5, Y: 62})
	b.Velocity = r3.Vec{X: 3}

	rv.Resolve([]*ship.Ship{a, b}, nil, rng)
	if a.Velocity.X != -3 || b.Velocity.X != 3 {
		t.Fatalf("separating pair was impulsed: %v / %v", a.Velocity.X, b.Velocity.X)
	}
}

// Reef strike: reef-classified chunk, reef damage kind, reef multiplier,
// and a hard velocity reduction along the approach axis.
func TestReefStrike(t *testing.T) {
	terr := terrain.NewMapSource()
	terr.SetChunk(&terrain.Chunk{CX: 0, CZ: 1, Height: 3, Material: terrain.MaterialCoral})
	rv := newTestResolver(terr)
	rng := rand.New(rand.NewSource(1))

	s := ship.NewShip("striker", ship.TypeSloop, r3.Vec{X: 8, Y: 3, Z: 12})
	s.Velocity = r3.Vec{Z: 10}
	m := s.Mass()

	evs := rv.Resolve([]*ship.Ship{s}, nil, rng)

	var reefDamage float64
	reefCollision := false
	for _, ev := range evs {
		switch ev.Type {
		case events.EventTypeCollision:
			if p, ok := ev.Payload.(events.CollisionEvent); ok && p.Kind == events.CollisionShipReef {
				reefCollision = true
			}
		case events.EventTypeDamage:
			if p, ok := ev.Payload.(events.DamageEvent); ok && p.DamageKind == string(ship.DamageReef) {
				reefDamage += p.Magnitude
			}
		}
	}
	if !reefCollision {
		t.Fatal("expected a reef-classified collision event")
	}
	// Spec floor: 0.0005·½·m·v²·1.3, before resistances.
	floor := 0.0005 * 0.5 * m * 100 * 1.3 * (1 - 0.05) // oak reef resistance
	if reefDamage < floor*0.9 {
		t.Fatalf("reef damage %v below floor %v", reefDamage, floor)
	}
	if math.Abs(s.Velocity.Z) > 3.0+1e-9 {
		t.Fatalf("approach speed should drop by ≥70%%: vz = %v", s.Velocity.Z)
	}
}

// Entity impulse uses the higher restitution and symmetric damage.
func TestEntityEntityImpulse(t *testing.T) {
	rv := newTestResolver(nil)
	rng := rand.New(rand.NewSource(1))

	a := NewEntity(EntityDebris, r3.Vec{X: -0.5, Y: 64}, r3.Vec{X: 2}, 1, 50)
	b := NewEntity(EntityDebris, r3.Vec{X: 0.5, Y: 64}, r3.Vec{X: -2}, 1, 50)

	before := a.Mass*a.Velocity.X + b.Mass*b.Velocity.X
	evs := rv.Resolve(nil, []*Entity{a, b}, rng)

	after := a.Mass*a.Velocity.X + b.Mass*b.Velocity.X
	if math.Abs(after-before) > 1e-9 {
		t.Fatalf("entity momentum drift: %v → %v", before, after)
	}
	// e = 0.5 head-on with equal masses: each rebounds at half speed.
	if math.Abs(a.Velocity.X+1) > 1e-9 || math.Abs(b.Velocity.X-1) > 1e-9 {
		t.Fatalf("restitution 0.5 rebound expected ±1, got %v / %v", a.Velocity.X, b.Velocity.X)
	}
	if a.Health >= a.MaxHealth || b.Health >= b.MaxHealth {
		t.Fatal("both entities should take collision damage")
	}
	if len(evs) == 0 {
		t.Fatal("expected a collision event")
	}
}

// Projectiles damage ships they hit and never their own shooter.
func TestProjectileHitsShip(t *testing.T) {
	rv := newTestResolver(nil)
	rng := rand.New(rand.NewSource(1))

	target := ship.NewShip("target", ship.TypeSloop, r3.Vec{Y: 62})
	shot := NewEntity(EntityProjectile, r3.Vec{X: 1, Y: 63}, r3.Vec{X: -40}, 0.15, 6)
	shot.Damage = 45

	hullBefore := target.HullComponent().Health
	rv.Resolve([]*ship.Ship{target}, []*Entity{shot}, rng)

	if !shot.Dead {
		t.Fatal("projectile should be consumed on impact")
	}
	if target.HullComponent().Health >= hullBefore {
		t.Fatal("target hull should take cannonball damage")
	}

	// Same geometry, but fired by the target itself: no self-hit.
	selfShot := NewEntity(EntityProjectile, r3.Vec{X: 1, Y: 63}, r3.Vec{X: -40}, 0.15, 6)
	selfShot.Damage = 45
	selfShot.Source = target.ID
	healthBefore := target.HullComponent().Health
	rv.Resolve([]*ship.Ship{target}, []*Entity{selfShot}, rng)
	if selfShot.Dead || target.HullComponent().Health < healthBefore {
		t.Fatal("a ship must not shoot itself at the muzzle")
	}
}

// Broad phase prunes far pairs and inflates for fast movers.
func TestBroadPhaseDistanceGate(t *testing.T) {
	a := ship.NewShip("A", ship.TypeSloop, r3.Vec{})
	b := ship.NewShip("B", ship.TypeSloop, r3.Vec{X: 500})
	if pairs := broadPhase([]*ship.Ship{a, b}, nil); len(pairs) != 0 {
		t.Fatalf("distant ships should not pair, got %d", len(pairs))
	}

	// Just outside the static reach, but inside the 1.5× fast-mover
	// inflation.
	reach := ship.TypeSloop.Length // sum of the two 0.5·L radii
	c := ship.NewShip("C", ship.TypeSloop, r3.Vec{})
	d := ship.NewShip("D", ship.TypeSloop, r3.Vec{X: reach * 1.2})
	if pairs := broadPhase([]*ship.Ship{c, d}, nil); len(pairs) != 0 {
		t.Fatalf("slow pair outside reach should not pair")
	}
	c.Velocity = r3.Vec{X: 20}
	if pairs := broadPhase([]*ship.Ship{c, d}, nil); len(pairs) != 1 {
		t.Fatalf("fast pair inside inflated reach should pair")
	}
}

// Entity integration: projectiles splash and die, flotsam floats.
func TestEntityLifecycle(t *testing.T) {
	wcfg := defaultCalmWaveConfig()
	env := newCalmEnv(wcfg)

	shot := NewEntity(EntityProjectile, r3.Vec{Y: env.SeaLevel() + 10}, r3.Vec{X: 50}, 0.15, 6)
	for i := 0; i < 600 && !shot.Dead; i++ {
		shot.Integrate(env, 1.0/60.0)
	}
	if !shot.Dead {
		t.Fatal("ballistic shot should splash down and die")
	}

	raft := NewEntity(EntityFlotsam, r3.Vec{Y: env.SeaLevel() - 0.2}, r3.Vec{}, 0.5, 40)
	raft.Lifespan = 0
	for i := 0; i < 600; i++ {
		raft.Integrate(env, 1.0/60.0)
	}
	if raft.Dead {
		t.Fatal("flotsam should survive")
	}
	if math.Abs(raft.Position.Y-env.SeaLevel()) > 3 {
		t.Fatalf("flotsam drifted to %v, want near surface %v", raft.Position.Y, env.SeaLevel())
	}
}
