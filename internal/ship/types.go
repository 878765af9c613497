// Package ship models multi-component ships: immutable type templates, a
// tagged-variant component system, and the rigid-body ship instance whose
// state the dynamics integrator advances each tick.
//
// Copyright 2026 Arobi. All Rights Reserved.
package ship

// ShipClass groups ship types by role.
type ShipClass string

const (
	ClassLight        ShipClass = "light"
	ClassMedium       ShipClass = "medium"
	ClassHeavy        ShipClass = "heavy"
	ClassMerchant     ShipClass = "merchant"
	ClassPirate       ShipClass = "pirate"
	ClassSupernatural ShipClass = "supernatural"
)

// ShipType is an immutable template shared by ship instances.
type ShipType struct {
	Name     string    `json:"name"`
	Class    ShipClass `json:"class"`
	BaseMass float64   `json:"baseMass"` // kg, hull structure only

	// Dimensions in meters.
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Draft  float64 `json:"draft"`

	BaseHealth        float64 `json:"baseHealth"`
	CargoCapacity     float64 `json:"cargoCapacity"` // kg
	CrewCapacity      int     `json:"crewCapacity"`
	BaseManeuver      float64 `json:"baseManeuver"`  // 0-1
	BaseStability     float64 `json:"baseStability"` // 0-1
	HullMaterial      HullMaterial
	MaxBuoyancy       float64 `json:"maxBuoyancy"` // 0-1 scalar hull buoyancy budget
	SinkingThreshold  float64 `json:"sinkingThreshold"`
}

// Builtin ship type templates. Instances treat these as read-only
// prototypes.
var (
	TypeSloop = &ShipType{
		Name: "sloop", Class: ClassLight,
		BaseMass: 1000, Length: 12, Width: 4, Height: 6, Draft: 1.0,
		BaseHealth: 400, CargoCapacity: 2000, CrewCapacity: 8,
		BaseManeuver: 0.9, BaseStability: 0.6,
		HullMaterial: MaterialOak, MaxBuoyancy: 1.0, SinkingThreshold: 0.9,
	}
	TypeFrigate = &ShipType{
		Name: "frigate", Class: ClassMedium,
		BaseMass: 2000, Length: 24, Width: 7, Height: 10, Draft: 2.0,
		BaseHealth: 900, CargoCapacity: 8000, CrewCapacity: 40,
		BaseManeuver: 0.6, BaseStability: 0.75,
		HullMaterial: MaterialOak, MaxBuoyancy: 1.0, SinkingThreshold: 0.9,
	}
	TypeGalleon = &ShipType{
		Name: "galleon", Class: ClassHeavy,
		BaseMass: 5000, Length: 38, Width: 10, Height: 14, Draft: 3.5,
		BaseHealth: 1800, CargoCapacity: 30000, CrewCapacity: 120,
		BaseManeuver: 0.35, BaseStability: 0.85,
		HullMaterial: MaterialTeak, MaxBuoyancy: 1.0, SinkingThreshold: 0.9,
	}
	TypeMerchantman = &ShipType{
		Name: "merchantman", Class: ClassMerchant,
		BaseMass: 3000, Length: 28, Width: 9, Height: 11, Draft: 2.6,
		BaseHealth: 1000, CargoCapacity: 50000, CrewCapacity: 30,
		BaseManeuver: 0.45, BaseStability: 0.8,
		HullMaterial: MaterialOak, MaxBuoyancy: 1.0, SinkingThreshold: 0.9,
	}
	TypeCorsair = &ShipType{
		Name: "corsair", Class: ClassPirate,
		BaseMass: 1600, Length: 20, Width: 6, Height: 9, Draft: 1.6,
		BaseHealth: 700, CargoCapacity: 6000, CrewCapacity: 60,
		BaseManeuver: 0.8, BaseStability: 0.65,
		HullMaterial: MaterialIronwood, MaxBuoyancy: 1.0, SinkingThreshold: 0.9,
	}
	TypeRevenant = &ShipType{
		Name: "revenant", Class: ClassSupernatural,
		BaseMass: 2400, Length: 30, Width: 8, Height: 13, Draft: 2.2,
		BaseHealth: 1400, CargoCapacity: 4000, CrewCapacity: 66,
		BaseManeuver: 0.7, BaseStability: 0.7,
		HullMaterial: MaterialGhostwood, MaxBuoyancy: 1.0, SinkingThreshold: 0.95,
	}
)

// Types indexes the builtin templates by name.
var Types = map[string]*ShipType{
	TypeSloop.Name:       TypeSloop,
	TypeFrigate.Name:     TypeFrigate,
	TypeGalleon.Name:     TypeGalleon,
	TypeMerchantman.Name: TypeMerchantman,
	TypeCorsair.Name:     TypeCorsair,
	TypeRevenant.Name:    TypeRevenant,
}

// HullMaterial affects buoyancy and damage resistance.
type HullMaterial string

const (
	MaterialOak       HullMaterial = "oak"
	MaterialTeak      HullMaterial = "teak"
	MaterialIronwood  HullMaterial = "ironwood"
	MaterialGhostwood HullMaterial = "ghostwood"
)

// BuoyancyFactor scales hull displacement volume by material.
func (m HullMaterial) BuoyancyFactor() float64 {
	switch m {
	case MaterialTeak:
		return 1.05
	case MaterialIronwood:
		return 0.9
	case MaterialGhostwood:
		return 1.15
	}
	return 1.0
}

// DamageKind classifies the source of harm and drives resistance tables.
type DamageKind string

const (
	DamageCannonBall DamageKind = "cannonball"
	DamageRamming    DamageKind = "ramming"
	DamageCollision  DamageKind = "collision"
	DamageReef       DamageKind = "reef"
	DamageFire       DamageKind = "fire"
	DamageStorm      DamageKind = "storm"
	DamageLightning  DamageKind = "lightning"
	DamageExplosion  DamageKind = "explosion"
	DamageFatigue    DamageKind = "fatigue"
	DamageCorrosion  DamageKind = "corrosion"
	DamageRot        DamageKind = "rot"
	DamageMagic      DamageKind = "magic"
	DamageCurse      DamageKind = "curse"
)

// materialResistance gives per-material damage reduction; negative entries
// are vulnerabilities.
var materialResistance = map[HullMaterial]map[DamageKind]float64{
	MaterialOak: {
		DamageCannonBall: 0.10, DamageRamming: 0.10, DamageCollision: 0.10,
		DamageReef: 0.05, DamageFire: 0.0, DamageRot: 0.0,
	},
	MaterialTeak: {
		DamageCannonBall: 0.15, DamageRamming: 0.15, DamageCollision: 0.15,
		DamageReef: 0.10, DamageRot: 0.30, DamageCorrosion: 0.20,
	},
	MaterialIronwood: {
		DamageCannonBall: 0.30, DamageRamming: 0.35, DamageCollision: 0.30,
		DamageReef: 0.25, DamageFire: 0.20, DamageCorrosion: -0.10,
	},
	MaterialGhostwood: {
		DamageMagic: 0.60, DamageCurse: 0.60, DamageLightning: 0.30,
		DamageFire: -0.20, DamageCannonBall: 0.10,
	},
}

// componentResistance gives per-component-kind damage reduction. Soft
// components burn, rigid ones shrug off storms.
var componentResistance = map[ComponentKind]map[DamageKind]float64{
	KindHull:   {DamageStorm: 0.30, DamageLightning: 0.20},
	KindSail:   {DamageFire: -0.50, DamageStorm: -0.30, DamageCannonBall: 0.20},
	KindCannon: {DamageFire: 0.20, DamageStorm: 0.40, DamageRot: 0.80},
	KindEngine: {DamageCorrosion: -0.20, DamageStorm: 0.20},
	KindMast:   {DamageLightning: -0.50, DamageStorm: -0.20},
	KindRudder: {DamageReef: -0.30},
	KindAnchor: {DamageRot: 0.95, DamageFire: 0.90},
}

// Resistance returns the damage fraction removed for a component kind on a
// hull of the given material. Negative values are vulnerabilities; the
// result is clamped to [-1, 0.95] so the damage multiplier stays in
// [0.05, 2].
func Resistance(material HullMaterial, kind ComponentKind, dmg DamageKind) float64 {
	r := 0.0
	if t, ok := materialResistance[material]; ok {
		r += t[dmg]
	}
	if t, ok := componentResistance[kind]; ok {
		r += t[dmg]
	}
	if r < -1 {
		r = -1
	}
	if r > 0.95 {
		r = 0.95
	}
	return r
}
