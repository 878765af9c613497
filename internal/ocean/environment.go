// Copyright 2026 Arobi. All Rights Reserved.

package ocean

import (
	"math"

	"github.com/aquilax/go-perlin"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// EnvironmentConfig holds the physical constants and tuning for the ocean
// environment.
type EnvironmentConfig struct {
	SeaLevel        float64
	WaterDensity    float64
	AirDensity      float64
	Gravity         float64
	DragCoefficient float64

	// CurrentNoiseAmp scales the local perlin component of the surface
	// current in m/s.
	CurrentNoiseAmp float64

	// GustAmplitude scales wind speed wander as a fraction of the
	// commanded speed. Storm presets raise it.
	GustAmplitude float64

	Seed int64
}

// DefaultEnvironmentConfig returns the canonical ocean constants.
func DefaultEnvironmentConfig() EnvironmentConfig {
	return EnvironmentConfig{
		SeaLevel:        64.0,
		WaterDensity:    1000.0,
		AirDensity:      1.225,
		Gravity:         9.81,
		DragCoefficient: 0.8,
		CurrentNoiseAmp: 0.2,
		GustAmplitude:   0.15,
		Seed:            1,
	}
}

// Environment couples the wave field with wind and current state and
// exposes the force queries consumed by ship dynamics.
type Environment struct {
	cfg   EnvironmentConfig
	waves *WaveField

	windDir   r2.Vec  // unit, horizontal
	windSpeed float64 // commanded setpoint, m/s
	gustSpeed float64 // effective speed after gusting

	globalCurrent r2.Vec
	noise         *perlin.Perlin
	time          float64
}

// NewEnvironment creates an environment driving the given wave field.
func NewEnvironment(cfg EnvironmentConfig, waves *WaveField) *Environment {
	if cfg.Gravity <= 0 {
		cfg.Gravity = 9.81
	}
	if cfg.WaterDensity <= 0 {
		cfg.WaterDensity = 1000.0
	}
	return &Environment{
		cfg:     cfg,
		waves:   waves,
		windDir: r2.Vec{X: 1},
		noise:   perlin.NewPerlin(2, 2, 3, cfg.Seed+1),
	}
}

// Config returns the environment configuration.
func (e *Environment) Config() EnvironmentConfig { return e.cfg }

// Waves returns the wave field the environment drives.
func (e *Environment) Waves() *WaveField { return e.waves }

// SeaLevel returns the still-water reference height.
func (e *Environment) SeaLevel() float64 { return e.cfg.SeaLevel }

// SetWind updates the wind setpoint. Direction is renormalized; the wave
// field receives the same wind for ambient generation bias.
func (e *Environment) SetWind(direction r2.Vec, speed float64) {
	if n := math.Hypot(direction.X, direction.Y); n > 0 {
		e.windDir = r2.Scale(1/n, direction)
	}
	e.windSpeed = math.Max(0, speed)
	e.gustSpeed = e.windSpeed
	e.waves.SetWind(e.windDir, e.windSpeed)
}

// WindSpeed returns the effective (gusting) wind speed.
func (e *Environment) WindSpeed() float64 { return e.gustSpeed }

// WindVelocity returns the effective wind vector.
func (e *Environment) WindVelocity() r3.Vec {
	return r3.Vec{X: e.windDir.X * e.gustSpeed, Z: e.windDir.Y * e.gustSpeed}
}

// Advance relaxes current toward the wind, updates gusting, and advances
// the wave field.
func (e *Environment) Advance(dt float64) {
	if dt <= 0 {
		return
	}
	e.time += dt

	// Current direction relaxes toward the wind with gain 0.1/s, its
	// magnitude toward 0.3·windSpeed with gain 0.2/s.
	target := r2.Scale(0.3*e.windSpeed, e.windDir)
	e.globalCurrent = r2.Add(e.globalCurrent, r2.Scale(math.Min(1, 0.1*dt), r2.Sub(target, e.globalCurrent)))
	mag := math.Hypot(e.globalCurrent.X, e.globalCurrent.Y)
	want := 0.3 * e.windSpeed
	if mag > 0 {
		newMag := mag + (want-mag)*math.Min(1, 0.2*dt)
		e.globalCurrent = r2.Scale(newMag/mag, e.globalCurrent)
	}

	if e.windSpeed > 0 && e.cfg.GustAmplitude > 0 {
		gust := e.noise.Noise2D(e.time*0.2, 7.3)
		e.gustSpeed = math.Max(0, e.windSpeed*(1+e.cfg.GustAmplitude*gust))
	} else {
		e.gustSpeed = e.windSpeed
	}

	e.waves.Advance(dt)
}

// Current returns the surface current at (x, z): the wind-relaxed global
// current plus a slowly varying local perlin component.
func (e *Environment) Current(x, z float64) r2.Vec {
	nx := e.noise.Noise3D(x*0.01, z*0.01, e.time*0.1)
	nz := e.noise.Noise3D(x*0.01+31.7, z*0.01, e.time*0.1)
	return r2.Add(e.globalCurrent, r2.Scale(e.cfg.CurrentNoiseAmp, r2.Vec{X: nx, Y: nz}))
}

// WaterHeight returns the absolute water surface height at (x, z).
func (e *Environment) WaterHeight(x, z float64) float64 {
	return e.cfg.SeaLevel + e.waves.Height(x, z)
}

// WaterVelocity returns the water velocity at a point including wave
// orbital motion, surface current, and exponential depth attenuation.
func (e *Environment) WaterVelocity(p r3.Vec) r3.Vec {
	surface := e.WaterHeight(p.X, p.Z)
	atten := 1.0
	if p.Y < surface {
		atten = math.Exp((p.Y - surface) / 4.0)
	}
	orbital := r3.Scale(atten, e.waves.Velocity(p.X, p.Z))
	cur := e.Current(p.X, p.Z)
	return r3.Add(orbital, r3.Scale(atten, r3.Vec{X: cur.X, Z: cur.Y}))
}

// SubmergedDepth returns how far below the water surface the point sits,
// zero when above water.
func (e *Environment) SubmergedDepth(p r3.Vec) float64 {
	return math.Max(0, e.WaterHeight(p.X, p.Z)-p.Y)
}

// BuoyantForce returns the upward force on a body of the given volume at p.
// Submerged volume saturates at the body volume one meter below the
// surface.
func (e *Environment) BuoyantForce(p r3.Vec, volume float64) r3.Vec {
	d := e.SubmergedDepth(p)
	if d <= 0 || volume <= 0 {
		return r3.Vec{}
	}
	vs := math.Min(volume, d*volume)
	return r3.Vec{Y: e.cfg.WaterDensity * e.cfg.Gravity * vs}
}

// QuadraticDrag returns the drag force on a body moving at v through water
// with the given drag coefficient and cross-section area.
func (e *Environment) QuadraticDrag(v r3.Vec, cd, area float64) r3.Vec {
	speed := r3.Norm(v)
	if speed == 0 {
		return r3.Vec{}
	}
	return r3.Scale(-0.5*e.cfg.WaterDensity*speed*cd*area, v)
}

// OceanForce aggregates buoyancy and drag for a simple body of the given
// mass and drag coefficient, used for entities. Body volume assumes a mean
// density of 500 kg/m³ so flotsam floats.
func (e *Environment) OceanForce(p, v r3.Vec, mass, cd float64) r3.Vec {
	volume := mass / 500.0
	f := e.BuoyantForce(p, volume)
	if e.SubmergedDepth(p) > 0 {
		rel := r3.Sub(v, e.WaterVelocity(p))
		area := math.Pow(volume, 2.0/3.0)
		f = r3.Add(f, e.QuadraticDrag(rel, cd, area))
	}
	return f
}
