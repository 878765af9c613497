// Copyright 2026 Arobi. All Rights Reserved.

package ship

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// AmmoKind identifies a cannon load.
type AmmoKind string

const (
	AmmoBall      AmmoKind = "ball"
	AmmoChain     AmmoKind = "chain"
	AmmoGrape     AmmoKind = "grape"
	AmmoExplosive AmmoKind = "explosive"
)

// AmmoKinds lists loads in deterministic order.
var AmmoKinds = []AmmoKind{AmmoBall, AmmoChain, AmmoGrape, AmmoExplosive}

// ammoProps maps a load to its ballistic and blast properties.
var ammoProps = map[AmmoKind]struct {
	MuzzleSpeed float64
	Mass        float64
	DamageScale float64
	BlastWeight float64
}{
	AmmoBall:      {MuzzleSpeed: 120, Mass: 6, DamageScale: 1.0, BlastWeight: 1.0},
	AmmoChain:     {MuzzleSpeed: 90, Mass: 5, DamageScale: 0.7, BlastWeight: 0.8},
	AmmoGrape:     {MuzzleSpeed: 80, Mass: 4, DamageScale: 0.5, BlastWeight: 0.6},
	AmmoExplosive: {MuzzleSpeed: 100, Mass: 7, DamageScale: 1.4, BlastWeight: 3.0},
}

// CannonState is the cannon variant payload.
type CannonState struct {
	Damage       float64 `json:"damage"`      // base hit damage
	ReloadTime   float64 `json:"reloadTime"`  // seconds per load
	CrewRequired int     `json:"crewRequired"`

	ReloadTimer float64  `json:"reloadTimer"`
	Loaded      bool     `json:"loaded"`
	LoadedAmmo  AmmoKind `json:"loadedAmmo,omitempty"`

	Inventory map[AmmoKind]int `json:"inventory"`

	BarrelWear       float64 `json:"barrelWear"`
	Overheat         float64 `json:"overheat"` // 0-100
	Misfired         bool    `json:"misfired"`
	AssignedCrew     int     `json:"assignedCrew"`
	ConsecutiveFires int     `json:"consecutiveFires"`

	// AimDir is the commanded fire direction in ship-local space.
	AimDir r3.Vec `json:"aimDir"`

	firing   bool
	coolDown float64 // time since last shot, for consecutive-fire decay
}

// ProjectileSpec describes the projectile a successful shot produces. The
// world turns it into an entity.
type ProjectileSpec struct {
	Ammo        AmmoKind `json:"ammo"`
	MuzzleSpeed float64  `json:"muzzleSpeed"`
	Mass        float64  `json:"mass"`
	Damage      float64  `json:"damage"`
	Direction   r3.Vec   `json:"direction"` // ship-local
}

// NewCannon builds a cannon component. Size scales damage, mass, and
// reload.
func NewCannon(name string, size float64) *Component {
	c := newComponent(KindCannon, name, 200*size, 400*size)
	c.Cannon = &CannonState{
		Damage:       60 * size,
		ReloadTime:   8 / math.Max(0.5, size*0.75),
		CrewRequired: int(math.Max(1, math.Round(2*size))),
		AssignedCrew: int(math.Max(1, math.Round(2*size))),
		Inventory:    make(map[AmmoKind]int),
		AimDir:       r3.Vec{X: 1},
	}
	return c
}

// AmmoCount sums the remaining inventory.
func (cn *CannonState) AmmoCount() int {
	total := 0
	for _, k := range AmmoKinds {
		total += cn.Inventory[k]
	}
	return total
}

// Load chambers a round of the given kind from inventory.
func (cn *CannonState) Load(kind AmmoKind) bool {
	if cn.Loaded || cn.ReloadTimer > 0 || cn.Inventory[kind] <= 0 {
		return false
	}
	if _, ok := ammoProps[kind]; !ok {
		return false
	}
	cn.Inventory[kind]--
	cn.Loaded = true
	cn.LoadedAmmo = kind
	return true
}

// crewFactor is the crewing fraction of required hands, capped at 1.
func (cn *CannonState) crewFactor() float64 {
	if cn.CrewRequired <= 0 {
		return 1
	}
	return math.Min(1, float64(cn.AssignedCrew)/float64(cn.CrewRequired))
}

// MisfireProbability follows the wear/overheat/fatigue model, capped at 0.2
// and reduced by upgrades.
func (cn *CannonState) MisfireProbability(c *Component) float64 {
	p := 0.02
	if c.MaxHealth > 0 {
		p += cn.BarrelWear / c.MaxHealth * 0.1
	}
	p += cn.Overheat / 100 * 0.05
	p += float64(cn.ConsecutiveFires) * 0.01
	if p > 0.2 {
		p = 0.2
	}
	return p * (1 - 0.1*float64(c.Upgrade))
}

// CanFire reports whether a fire command would be accepted, with the
// blocking reason when not.
func (cn *CannonState) CanFire(c *Component) (bool, string) {
	switch {
	case c.Destroyed:
		return false, "destroyed"
	case !c.Active:
		return false, "inactive"
	case cn.Misfired:
		return false, "misfired"
	case cn.firing:
		return false, "firing"
	case !cn.Loaded:
		return false, "not loaded"
	case cn.ReloadTimer > 0:
		return false, "reloading"
	case cn.AssignedCrew < cn.CrewRequired:
		return false, "undercrewed"
	}
	return true, ""
}

// Fire attempts a shot. On success it returns the projectile spec; a
// misfire consumes the load and flags the cannon until cleared.
func (cn *CannonState) Fire(c *Component, rng *rand.Rand) (*ProjectileSpec, bool) {
	if ok, _ := cn.CanFire(c); !ok {
		return nil, false
	}

	ammo := cn.LoadedAmmo
	cn.Loaded = false
	cn.ReloadTimer = cn.ReloadTime

	if rng.Float64() < cn.MisfireProbability(c) {
		cn.Misfired = true
		cn.BarrelWear += 5
		return nil, true
	}

	props := ammoProps[ammo]
	cn.BarrelWear += 1
	cn.Overheat = math.Min(100, cn.Overheat+12)
	cn.ConsecutiveFires++
	cn.coolDown = 0

	return &ProjectileSpec{
		Ammo:        ammo,
		MuzzleSpeed: props.MuzzleSpeed,
		Mass:        props.Mass,
		Damage:      cn.Damage * props.DamageScale * c.Effectiveness(),
		Direction:   cn.AimDir,
	}, false
}

// ClearMisfire resets a misfired cannon after a crew intervention.
func (cn *CannonState) ClearMisfire() {
	cn.Misfired = false
	cn.ReloadTimer = math.Max(cn.ReloadTimer, cn.ReloadTime*0.5)
}

// ExplosionSpec computes the blast produced when the cannon is destroyed
// while holding ammunition.
func (cn *CannonState) ExplosionSpec(c *Component) (radius, damage float64) {
	ammo := float64(cn.AmmoCount())
	explosive := float64(cn.Inventory[AmmoExplosive])

	kindMult := 1.0
	if explosive > 0 {
		kindMult = 1.5
	}
	radius = 5 * (1 + ammo/50) * (1 + 0.5*explosive) * kindMult

	damage = 0.8 * cn.Damage * (1 + ammo/30)
	for _, k := range AmmoKinds {
		damage += float64(cn.Inventory[k]) * ammoProps[k].BlastWeight
	}
	return radius, damage
}

func (cn *CannonState) update(c *Component, ctx *UpdateContext) {
	if cn.ReloadTimer > 0 {
		cn.ReloadTimer = math.Max(0, cn.ReloadTimer-ctx.DT*cn.crewFactor())
	}
	cn.Overheat = math.Max(0, cn.Overheat-4*ctx.DT)

	cn.coolDown += ctx.DT
	if cn.coolDown > 5 && cn.ConsecutiveFires > 0 {
		cn.ConsecutiveFires = 0
	}
}

func (cn *CannonState) onDamage(c *Component, dealt float64, kind DamageKind) {
	if kind == DamageFire || kind == DamageExplosion {
		cn.Overheat = math.Min(100, cn.Overheat+dealt*0.2)
	}
	cn.BarrelWear += dealt * 0.1
}
