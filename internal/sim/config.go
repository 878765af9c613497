// Package sim orchestrates the simulation: the fixed-order tick over the
// ocean, ship dynamics, and collision resolution, plus the command and
// snapshot boundary consumed by higher layers. A world is a pure function
// of its seed, configuration, and command trace.
//
// Copyright 2026 Arobi. All Rights Reserved.
package sim

import (
	"github.com/PossumXI/Poseidon/internal/collision"
	"github.com/PossumXI/Poseidon/internal/dynamics"
	"github.com/PossumXI/Poseidon/internal/ocean"
)

// Config aggregates every tunable the core exposes.
type Config struct {
	Seed   int64   `json:"seed"`
	TickDT float64 `json:"tickDt"` // canonical 1/60 s

	// Wave field.
	MaxWaves      int     `json:"maxWaves"`
	WaveDecay     float64 `json:"waveDecay"`
	MinWaveHeight float64 `json:"minWaveHeight"`

	// Environment.
	SeaLevel     float64 `json:"seaLevel"`
	WaterDensity float64 `json:"waterDensity"`
	AirDensity   float64 `json:"airDensity"`
	Gravity      float64 `json:"gravity"`

	// Dynamics.
	DragCoefficient float64 `json:"dragCoefficient"`
	AngularDrag     float64 `json:"angularDrag"`
	BuoyancySamples int     `json:"buoyancySamples"`

	// Collision.
	CollisionRestitutionShip   float64 `json:"collisionRestitutionShip"`
	CollisionRestitutionEntity float64 `json:"collisionRestitutionEntity"`
}

// DefaultConfig returns the canonical tuning.
func DefaultConfig() Config {
	return Config{
		Seed:                       1,
		TickDT:                     1.0 / 60.0,
		MaxWaves:                   8,
		WaveDecay:                  0.95,
		MinWaveHeight:              0.05,
		SeaLevel:                   64.0,
		WaterDensity:               1000.0,
		AirDensity:                 1.225,
		Gravity:                    9.81,
		DragCoefficient:            0.8,
		AngularDrag:                0.8,
		BuoyancySamples:            7,
		CollisionRestitutionShip:   0.3,
		CollisionRestitutionEntity: 0.5,
	}
}

// waveFieldConfig derives the wave field tuning.
func (c Config) waveFieldConfig() ocean.WaveFieldConfig {
	cfg := ocean.DefaultWaveFieldConfig()
	cfg.MaxWaves = c.MaxWaves
	cfg.WaveDecay = c.WaveDecay
	cfg.MinWaveHeight = c.MinWaveHeight
	cfg.Gravity = c.Gravity
	cfg.Seed = c.Seed
	return cfg
}

// environmentConfig derives the ocean environment tuning.
func (c Config) environmentConfig() ocean.EnvironmentConfig {
	cfg := ocean.DefaultEnvironmentConfig()
	cfg.SeaLevel = c.SeaLevel
	cfg.WaterDensity = c.WaterDensity
	cfg.AirDensity = c.AirDensity
	cfg.Gravity = c.Gravity
	cfg.DragCoefficient = c.DragCoefficient
	cfg.Seed = c.Seed
	return cfg
}

// dynamicsConfig derives the integrator tuning.
func (c Config) dynamicsConfig() dynamics.Config {
	cfg := dynamics.DefaultConfig()
	cfg.BuoyancySamples = c.BuoyancySamples
	cfg.AngularDrag = c.AngularDrag
	cfg.DragCoefficient = c.DragCoefficient
	return cfg
}

// collisionConfig derives the resolver tuning.
func (c Config) collisionConfig() collision.Config {
	cfg := collision.DefaultConfig()
	cfg.RestitutionShip = c.CollisionRestitutionShip
	cfg.RestitutionEntity = c.CollisionRestitutionEntity
	return cfg
}
