// Copyright 2026 Arobi. All Rights Reserved.

package sim

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/PossumXI/Poseidon/internal/ship"
	"github.com/PossumXI/Poseidon/internal/terrain"
)

// ShipSetup places one ship in a scenario.
type ShipSetup struct {
	Name     string `json:"name"`
	TypeName string `json:"typeName"`
	Position r3.Vec `json:"position"`
	Velocity r3.Vec `json:"velocity"`
	Heading  float64 `json:"heading"` // yaw radians about vertical
	Bare     bool    `json:"bare"`    // skip the standard loadout
}

// ScheduledCommand fires a command at a given tick.
type ScheduledCommand struct {
	AtTick  uint64  `json:"atTick"`
	Command Command `json:"command"`

	// ShipIndex resolves ShipID against the scenario's spawn order when
	// the command targets a ship.
	ShipIndex int `json:"shipIndex"`
}

// Scenario is a reproducible simulation setup: initial fleet, wind, and a
// scripted command schedule.
type Scenario struct {
	Name     string             `json:"name"`
	Ticks    uint64             `json:"ticks"`
	WindDir  r3.Vec             `json:"windDir"`
	WindSpd  float64            `json:"windSpd"`
	Ships    []ShipSetup        `json:"ships"`
	Schedule []ScheduledCommand `json:"schedule"`
}

// ScenarioResult is the outcome of a run.
type ScenarioResult struct {
	Name      string      `json:"name"`
	Ticks     uint64      `json:"ticks"`
	Final     *Snapshot   `json:"final"`
	Snapshots []*Snapshot `json:"snapshots,omitempty"`
}

// RunScenario executes a scenario deterministically against a fresh world
// and returns the final snapshot. Every snapshot is retained when keepAll
// is set.
func RunScenario(cfg Config, terr terrain.Source, sc *Scenario, log logrus.FieldLogger, keepAll bool) (*ScenarioResult, error) {
	w := NewWorld(cfg, terr, log)

	spawned := make([]*ship.Ship, 0, len(sc.Ships))
	for _, setup := range sc.Ships {
		t, ok := ship.Types[setup.TypeName]
		if !ok {
			t = ship.TypeSloop
		}
		var s *ship.Ship
		if setup.Bare {
			s = w.SpawnBareShip(setup.Name, t, setup.Position)
		} else {
			s = w.SpawnShip(setup.Name, t, setup.Position)
		}
		s.Velocity = setup.Velocity
		if setup.Heading != 0 {
			s.Orientation = ship.QuatFromAxisAngle(r3.Vec{Y: 1}, setup.Heading)
		}
		spawned = append(spawned, s)
	}

	if sc.WindSpd > 0 || sc.WindDir != (r3.Vec{}) {
		w.Enqueue(Command{Op: OpSetWind, Vec: sc.WindDir, Value: sc.WindSpd})
	}

	result := &ScenarioResult{Name: sc.Name}
	next := 0
	for tick := uint64(1); tick <= sc.Ticks; tick++ {
		for next < len(sc.Schedule) && sc.Schedule[next].AtTick <= tick {
			cmd := sc.Schedule[next].Command
			if idx := sc.Schedule[next].ShipIndex; cmd.ShipID == uuid.Nil &&
				idx >= 0 && idx < len(spawned) && shipTargeted(cmd.Op) {
				cmd.ShipID = spawned[idx].ID
			}
			w.Enqueue(cmd)
			next++
		}
		snap := w.Tick(cfg.TickDT)
		if keepAll {
			result.Snapshots = append(result.Snapshots, snap)
		}
		result.Final = snap
	}
	result.Ticks = sc.Ticks
	return result, nil
}

// shipTargeted reports whether an op addresses a specific ship.
func shipTargeted(op CommandOp) bool {
	switch op {
	case OpSetWind, OpInjectDisturbance:
		return false
	}
	return true
}
