package ocean

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestDirectionalWaveZeroAtOrigin(t *testing.T) {
	f := NewWaveField(DefaultWaveFieldConfig())
	f.AddComponent(WaveComponent{
		Kind:       WaveDirectional,
		Amplitude:  2,
		Wavelength: 40,
		Direction:  r2.Vec{X: 1},
	})

	h := f.HeightAt(0, 0, 0)
	if h != 0 {
		t.Fatalf("expected exactly zero height at origin/t=0, got %v", h)
	}
}

func TestDirectionalWaveHeightForm(t *testing.T) {
	f := NewWaveField(DefaultWaveFieldConfig())
	w := WaveComponent{
		Kind:       WaveDirectional,
		Amplitude:  2,
		Wavelength: 40,
		Direction:  r2.Vec{X: 1},
	}
	f.AddComponent(w)

	// Quarter wavelength along the travel direction peaks the sine.
	h := f.HeightAt(10, 0, 0)
	want := 2 * math.Sin(2*math.Pi/40*10)
	if math.Abs(h-want) > 0.5 {
		t.Fatalf("height at quarter wave = %v, want near %v", h, want)
	}
}

func TestCircularWaveDegenerateOrigin(t *testing.T) {
	cfg := DefaultWaveFieldConfig()
	cfg.NoiseAmplitude = 0
	f := NewWaveField(cfg)
	f.AddComponent(WaveComponent{
		Kind:       WaveCircular,
		Amplitude:  3,
		Wavelength: 10,
		Origin:     r2.Vec{X: 5, Y: 5},
	})

	if h := f.HeightAt(5, 5, 1); h != 0 {
		t.Fatalf("r=0 must short-circuit to zero, got %v", h)
	}
}

func TestCircularWaveRingWindow(t *testing.T) {
	cfg := DefaultWaveFieldConfig()
	cfg.NoiseAmplitude = 0
	f := NewWaveField(cfg)
	f.AddComponent(WaveComponent{
		Kind:       WaveCircular,
		Amplitude:  3,
		Wavelength: 10,
		Origin:     r2.Vec{},
	})
	w := f.components[0]
	c := w.PhaseSpeed(cfg.Gravity, cfg.SpeedMultiplier)

	// Far outside the traveling ring the contribution must vanish.
	tAt := 1.0
	ringR := c * tAt
	if h := f.HeightAt(ringR+3*w.Wavelength, 0, tAt); h != 0 {
		t.Fatalf("outside ring window expected 0, got %v", h)
	}
}

func TestStandingWaveForm(t *testing.T) {
	cfg := DefaultWaveFieldConfig()
	cfg.NoiseAmplitude = 0
	f := NewWaveField(cfg)
	f.AddComponent(WaveComponent{
		Kind:       WaveStanding,
		Amplitude:  1.5,
		Wavelength: 20,
		Direction:  r2.Vec{X: 1},
	})

	// Nodes sit wherever sin(kx) = 0.
	if h := f.HeightAt(0, 7, 0); h != 0 {
		t.Fatalf("standing wave node at x=0 should be 0, got %v", h)
	}
	k := 2 * math.Pi / 20
	x, z := 5.0, 5.0 // sin(k·5) = 1 at λ=20
	w := f.components[0]
	omega := w.PhaseSpeed(cfg.Gravity, cfg.SpeedMultiplier) * k
	want := 1.5 * math.Sin(k*x) * math.Sin(k*z) * math.Cos(omega*0)
	if got := f.HeightAt(x, z, 0); math.Abs(got-want) > 1e-9 {
		t.Fatalf("standing wave height = %v, want %v", got, want)
	}
}

func TestDecayPrunesBelowMinimum(t *testing.T) {
	cfg := DefaultWaveFieldConfig()
	cfg.BirthRate = 0
	f := NewWaveField(cfg)
	f.AddComponent(WaveComponent{
		Kind:       WaveDirectional,
		Amplitude:  cfg.MinWaveHeight * 1.2,
		Wavelength: 30,
		Direction:  r2.Vec{X: 1},
	})

	for i := 0; i < 600; i++ {
		f.Advance(1.0 / 60.0)
	}

	for _, w := range f.Components() {
		if w.Amplitude < cfg.MinWaveHeight {
			t.Fatalf("component below pruning threshold survived: %v", w.Amplitude)
		}
	}
}

func TestDecayBoundsAmplitude(t *testing.T) {
	cfg := DefaultWaveFieldConfig()
	cfg.BirthRate = 0
	f := NewWaveField(cfg)
	f.AddComponent(WaveComponent{
		Kind:       WaveDirectional,
		Amplitude:  4,
		Wavelength: 30,
		Direction:  r2.Vec{X: 1},
	})

	seconds := 5.0
	steps := int(seconds * 60)
	for i := 0; i < steps; i++ {
		f.Advance(1.0 / 60.0)
	}

	bound := 4 * math.Pow(cfg.WaveDecay, seconds)
	comps := f.Components()
	if len(comps) == 1 && comps[0].Amplitude > bound*1.001 {
		t.Fatalf("amplitude %v exceeds decay bound %v", comps[0].Amplitude, bound)
	}
}

func TestCapacityBoundsComponents(t *testing.T) {
	cfg := DefaultWaveFieldConfig()
	f := NewWaveField(cfg)

	admitted := 0
	for i := 0; i < cfg.MaxWaves*2; i++ {
		if f.InjectDisturbance(float64(i)*10, 0, 1.0, 8) {
			admitted++
		}
	}
	if admitted != cfg.MaxWaves {
		t.Fatalf("admitted %d disturbances, want %d", admitted, cfg.MaxWaves)
	}
	if len(f.Components()) != cfg.MaxWaves {
		t.Fatalf("component count %d exceeds cap %d", len(f.Components()), cfg.MaxWaves)
	}
}

func TestSetWindRenormalizesDirection(t *testing.T) {
	f := NewWaveField(DefaultWaveFieldConfig())
	f.SetWind(r2.Vec{X: 3, Y: 4}, 12)

	n := math.Hypot(f.windDir.X, f.windDir.Y)
	if math.Abs(n-1) > 1e-12 {
		t.Fatalf("wind direction not unit length: %v", n)
	}
	if f.windSpeed != 12 {
		t.Fatalf("wind speed = %v, want 12", f.windSpeed)
	}
}

func TestAmbientGenerationRespectsCap(t *testing.T) {
	cfg := DefaultWaveFieldConfig()
	cfg.BirthRate = 1000 // saturate the per-tick birth chance at its 0.1 cap
	f := NewWaveField(cfg)
	f.SetWind(r2.Vec{X: 1}, 15)

	for i := 0; i < 200; i++ {
		f.Advance(1.0 / 60.0)
	}
	if n := len(f.Components()); n > cfg.MaxWaves {
		t.Fatalf("ambient generation exceeded cap: %d", n)
	}
	if n := len(f.Components()); n == 0 {
		t.Fatal("expected ambient waves to appear")
	}
}

func TestNormalIsUnitAndUpright(t *testing.T) {
	f := NewWaveField(DefaultWaveFieldConfig())
	f.AddComponent(WaveComponent{
		Kind:       WaveDirectional,
		Amplitude:  2,
		Wavelength: 25,
		Direction:  r2.Vec{X: 0.6, Y: 0.8},
	})

	n := f.NormalAt(3, -7, 2)
	length := math.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z)
	if math.Abs(length-1) > 1e-9 {
		t.Fatalf("normal not unit: %v", length)
	}
	if n.Y <= 0 {
		t.Fatalf("normal should point up, got %+v", n)
	}
}

func TestVelocityZeroOnEmptyField(t *testing.T) {
	f := NewWaveField(DefaultWaveFieldConfig())
	v := f.VelocityAt(10, 10, 5)
	if v.X != 0 || v.Y != 0 || v.Z != 0 {
		t.Fatalf("empty field velocity = %+v, want zero", v)
	}
}
