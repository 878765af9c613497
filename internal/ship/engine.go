// Copyright 2026 Arobi. All Rights Reserved.

package ship

import "math"

// EngineState is the engine variant payload. Fuel is abstract: a reserve
// fraction drained by consumption while running.
type EngineState struct {
	Running     bool    `json:"running"`
	ThrustForce float64 `json:"thrustForce"` // newtons at full output
	Power       float64 `json:"power"`       // 0-1 throttle
	FuelRate    float64 `json:"fuelRate"`    // reserve fraction/s at full power
	Fuel        float64 `json:"fuel"`        // 0-1 reserve
}

// NewEngine builds an engine component.
func NewEngine(name string, thrust float64) *Component {
	c := newComponent(KindEngine, name, 300, 600)
	c.Engine = &EngineState{
		ThrustForce: thrust,
		Power:       1.0,
		FuelRate:    0.002,
		Fuel:        1.0,
	}
	return c
}

// Start spins the engine up. Fails without fuel.
func (e *EngineState) Start() bool {
	if e.Fuel <= 0 {
		return false
	}
	e.Running = true
	return true
}

// Stop shuts the engine down.
func (e *EngineState) Stop() { e.Running = false }

// Thrust returns the current output force. Destroyed or stopped engines
// contribute nothing.
func (e *EngineState) Thrust(c *Component) float64 {
	if !e.Running || c.Destroyed || !c.Active || e.Fuel <= 0 {
		return 0
	}
	return e.ThrustForce * e.Power * c.Effectiveness()
}

func (e *EngineState) update(c *Component, ctx *UpdateContext) {
	if !e.Running {
		return
	}
	e.Fuel = math.Max(0, e.Fuel-e.FuelRate*e.Power*ctx.DT)
	if e.Fuel == 0 {
		e.Running = false
	}
}
