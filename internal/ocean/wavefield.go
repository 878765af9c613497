// Package ocean provides the time-parametric ocean surface and the
// environmental force model that drives ship dynamics. The wave field is a
// bounded superposition of directional, circular, and standing components;
// all queries are defined for every input.
//
// Copyright 2026 Arobi. All Rights Reserved.
package ocean

import (
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// WaveKind identifies the waveform of a component.
type WaveKind int

const (
	WaveDirectional WaveKind = iota // plane wave traveling along Direction
	WaveCircular                    // radiating ring from Origin
	WaveStanding                    // stationary interference pattern
)

// String returns the wave kind name.
func (k WaveKind) String() string {
	switch k {
	case WaveDirectional:
		return "directional"
	case WaveCircular:
		return "circular"
	case WaveStanding:
		return "standing"
	}
	return "unknown"
}

// WaveComponent is a single traveling or radiating sinusoid.
type WaveComponent struct {
	Kind       WaveKind `json:"kind"`
	Amplitude  float64  `json:"amplitude"`
	Wavelength float64  `json:"wavelength"`
	Phase      float64  `json:"phase"`

	// Direction is the unit propagation direction for directional and
	// standing components.
	Direction r2.Vec `json:"direction"`

	// Origin and BirthTime locate circular components.
	Origin    r2.Vec  `json:"origin"`
	BirthTime float64 `json:"birthTime"`
}

// Wavenumber returns the angular wavenumber k = 2π/λ.
func (w *WaveComponent) Wavenumber() float64 {
	if w.Wavelength <= 0 {
		return 0
	}
	return 2 * math.Pi / w.Wavelength
}

// PhaseSpeed returns the deep-water phase speed c = √(gλ/2π) scaled by the
// field's speed multiplier.
func (w *WaveComponent) PhaseSpeed(gravity, multiplier float64) float64 {
	if w.Wavelength <= 0 {
		return 0
	}
	return math.Sqrt(gravity*w.Wavelength/(2*math.Pi)) * multiplier
}

// WaveFieldConfig tunes wave synthesis and generation.
type WaveFieldConfig struct {
	MaxWaves        int     // upper bound on concurrent components
	WaveDecay       float64 // per-second amplitude decay factor
	MinWaveHeight   float64 // pruning threshold
	SpeedMultiplier float64 // phase speed tuning factor K
	NoiseAmplitude  float64 // small-scale noise as fraction of peak amplitude
	BirthRate       float64 // ambient admission probability per second
	Gravity         float64
	Seed            int64
}

// DefaultWaveFieldConfig returns the canonical wave field tuning.
func DefaultWaveFieldConfig() WaveFieldConfig {
	return WaveFieldConfig{
		MaxWaves:        8,
		WaveDecay:       0.95,
		MinWaveHeight:   0.05,
		SpeedMultiplier: 1.0,
		NoiseAmplitude:  0.2,
		BirthRate:       0.1,
		Gravity:         9.81,
		Seed:            1,
	}
}

// WaveField synthesizes the ocean surface from its live components. It is
// owned by the simulation world and mutated only between integration passes,
// so it carries no lock of its own.
type WaveField struct {
	cfg        WaveFieldConfig
	components []WaveComponent
	time       float64

	windDir   r2.Vec
	windSpeed float64

	noise *perlin.Perlin
	rng   *rand.Rand
}

// NewWaveField creates an empty wave field.
func NewWaveField(cfg WaveFieldConfig) *WaveField {
	if cfg.MaxWaves <= 0 {
		cfg.MaxWaves = 8
	}
	if cfg.Gravity <= 0 {
		cfg.Gravity = 9.81
	}
	return &WaveField{
		cfg:        cfg,
		components: make([]WaveComponent, 0, cfg.MaxWaves),
		windDir:    r2.Vec{X: 1},
		noise:      perlin.NewPerlin(2, 2, 3, cfg.Seed),
		rng:        rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Time returns the field's simulation time.
func (f *WaveField) Time() float64 { return f.time }

// Components returns a copy of the live component set.
func (f *WaveField) Components() []WaveComponent {
	out := make([]WaveComponent, len(f.components))
	copy(out, f.components)
	return out
}

// AddComponent admits a component when the set is not full. Returns false
// when the field is at capacity or the amplitude is below the pruning
// threshold.
func (f *WaveField) AddComponent(w WaveComponent) bool {
	if len(f.components) >= f.cfg.MaxWaves {
		return false
	}
	if w.Amplitude < f.cfg.MinWaveHeight || w.Wavelength <= 0 {
		return false
	}
	if n := math.Hypot(w.Direction.X, w.Direction.Y); n > 0 {
		w.Direction = r2.Scale(1/n, w.Direction)
	}
	f.components = append(f.components, w)
	return true
}

// SetWind renormalizes the direction and updates the wind state biasing
// ambient generation.
func (f *WaveField) SetWind(direction r2.Vec, speed float64) {
	if n := math.Hypot(direction.X, direction.Y); n > 0 {
		f.windDir = r2.Scale(1/n, direction)
	}
	f.windSpeed = math.Max(0, speed)
}

// InjectDisturbance admits a circular component radiating from (x, z).
// Intensity maps to amplitude and radius to wavelength.
func (f *WaveField) InjectDisturbance(x, z, intensity, radius float64) bool {
	return f.AddComponent(WaveComponent{
		Kind:       WaveCircular,
		Amplitude:  math.Max(0, intensity),
		Wavelength: math.Max(4, radius),
		Origin:     r2.Vec{X: x, Y: z},
		BirthTime:  f.time,
	})
}

// Advance moves the field forward by dt seconds: decays amplitudes, prunes
// dead components, and possibly admits one ambient wave.
func (f *WaveField) Advance(dt float64) {
	if dt <= 0 {
		return
	}
	f.time += dt

	decay := math.Pow(f.cfg.WaveDecay, dt)
	live := f.components[:0]
	for _, w := range f.components {
		w.Amplitude *= decay
		if w.Amplitude >= f.cfg.MinWaveHeight {
			live = append(live, w)
		}
	}
	f.components = live

	p := math.Min(f.cfg.BirthRate*dt, 0.1)
	if len(f.components) < f.cfg.MaxWaves && f.rng.Float64() < p {
		f.components = append(f.components, f.ambientWave())
	}
}

// ambientWave builds a wind-biased component. The wind factor scales both
// amplitude and wavelength; birth direction deviates from the wind by at
// most ±π/3.
func (f *WaveField) ambientWave() WaveComponent {
	windFactor := 1 + math.Min(f.windSpeed, 40)*0.05

	dir := f.windDir
	if f.windSpeed <= 0 {
		a := f.rng.Float64() * 2 * math.Pi
		dir = r2.Vec{X: math.Cos(a), Y: math.Sin(a)}
	}
	spread := (f.rng.Float64()*2 - 1) * math.Pi / 3
	sin, cos := math.Sincos(spread)
	dir = r2.Vec{X: dir.X*cos - dir.Y*sin, Y: dir.X*sin + dir.Y*cos}

	kind := WaveDirectional
	if f.rng.Float64() < 0.15 {
		kind = WaveStanding
	}

	return WaveComponent{
		Kind:       kind,
		Amplitude:  (0.3 + f.rng.Float64()*0.7) * windFactor,
		Wavelength: (20 + f.rng.Float64()*40) * windFactor,
		Phase:      f.rng.Float64() * 2 * math.Pi,
		Direction:  dir,
	}
}

// Height returns the surface height at (x, z) for the field's current time.
func (f *WaveField) Height(x, z float64) float64 {
	return f.HeightAt(x, z, f.time)
}

// HeightAt returns the surface height at (x, z, t).
func (f *WaveField) HeightAt(x, z, t float64) float64 {
	h := 0.0
	peak := 0.0
	for i := range f.components {
		h += f.componentHeight(&f.components[i], x, z, t)
		if f.components[i].Amplitude > peak {
			peak = f.components[i].Amplitude
		}
	}
	if peak > 0 && f.cfg.NoiseAmplitude > 0 {
		h += peak * f.cfg.NoiseAmplitude * f.noise.Noise3D(x*0.05, z*0.05, t*0.1)
	}
	return h
}

func (f *WaveField) componentHeight(w *WaveComponent, x, z, t float64) float64 {
	k := w.Wavenumber()
	if k == 0 || w.Amplitude <= 0 {
		return 0
	}
	c := w.PhaseSpeed(f.cfg.Gravity, f.cfg.SpeedMultiplier)
	omega := c * k

	switch w.Kind {
	case WaveDirectional:
		theta := k*(w.Direction.X*x+w.Direction.Y*z) - omega*t + w.Phase
		return w.Amplitude * math.Sin(theta)

	case WaveCircular:
		dx, dz := x-w.Origin.X, z-w.Origin.Y
		r := math.Hypot(dx, dz)
		if r == 0 {
			return 0
		}
		age := t - w.BirthTime
		if age < 0 || math.Abs(r-c*age) >= w.Wavelength {
			return 0
		}
		att := w.Amplitude / (1 + 0.1*r)
		return att * math.Sin(k*r-omega*t+w.Phase)

	case WaveStanding:
		return w.Amplitude * math.Sin(k*x) * math.Sin(k*z) * math.Cos(omega*t+w.Phase)
	}
	return 0
}

// Velocity returns the orbital water velocity at the surface point (x, z)
// for the field's current time.
func (f *WaveField) Velocity(x, z float64) r3.Vec {
	return f.VelocityAt(x, z, f.time)
}

// VelocityAt returns the analytic orbital velocity at (x, z, t). Directional
// components orbit in their travel plane, circular components radially, and
// standing components move vertically only.
func (f *WaveField) VelocityAt(x, z, t float64) r3.Vec {
	var v r3.Vec
	for i := range f.components {
		w := &f.components[i]
		k := w.Wavenumber()
		if k == 0 || w.Amplitude <= 0 {
			continue
		}
		c := w.PhaseSpeed(f.cfg.Gravity, f.cfg.SpeedMultiplier)
		omega := c * k

		switch w.Kind {
		case WaveDirectional:
			theta := k*(w.Direction.X*x+w.Direction.Y*z) - omega*t + w.Phase
			speed := w.Amplitude * omega
			v = r3.Add(v, r3.Vec{
				X: speed * math.Cos(theta) * w.Direction.X,
				Y: speed * math.Sin(theta),
				Z: speed * math.Cos(theta) * w.Direction.Y,
			})

		case WaveCircular:
			dx, dz := x-w.Origin.X, z-w.Origin.Y
			r := math.Hypot(dx, dz)
			if r == 0 {
				continue
			}
			age := t - w.BirthTime
			if age < 0 || math.Abs(r-c*age) >= w.Wavelength {
				continue
			}
			att := w.Amplitude / (1 + 0.1*r)
			theta := k*r - omega*t + w.Phase
			speed := att * omega
			rx, rz := dx/r, dz/r
			v = r3.Add(v, r3.Vec{
				X: speed * math.Cos(theta) * rx,
				Y: speed * math.Sin(theta),
				Z: speed * math.Cos(theta) * rz,
			})

		case WaveStanding:
			v = r3.Add(v, r3.Vec{
				Y: -w.Amplitude * omega * math.Sin(k*x) * math.Sin(k*z) * math.Sin(omega*t+w.Phase),
			})
		}
	}
	return v
}

// Normal returns the surface normal at (x, z) by central differences.
func (f *WaveField) Normal(x, z float64) r3.Vec {
	return f.NormalAt(x, z, f.time)
}

// NormalAt returns the surface normal at (x, z, t).
func (f *WaveField) NormalAt(x, z, t float64) r3.Vec {
	const eps = 0.1
	dhdx := (f.HeightAt(x+eps, z, t) - f.HeightAt(x-eps, z, t)) / (2 * eps)
	dhdz := (f.HeightAt(x, z+eps, t) - f.HeightAt(x, z-eps, t)) / (2 * eps)
	return r3.Unit(r3.Vec{X: -dhdx, Y: 1, Z: -dhdz})
}

// Slope returns the surface gradient (∂h/∂x, ∂h/∂z) at (x, z).
func (f *WaveField) Slope(x, z float64) (float64, float64) {
	const eps = 0.1
	t := f.time
	dhdx := (f.HeightAt(x+eps, z, t) - f.HeightAt(x-eps, z, t)) / (2 * eps)
	dhdz := (f.HeightAt(x, z+eps, t) - f.HeightAt(x, z-eps, t)) / (2 * eps)
	return dhdx, dhdz
}
