// Copyright 2026 Arobi. All Rights Reserved.

package ship

import "math"

// MastState is the mast variant payload. Sails reference their mast; a
// destroyed mast zeroes thrust from every sail rigged to it.
type MastState struct {
	HeightM float64 `json:"heightM"`
}

// NewMast builds a mast component.
func NewMast(name string, height float64) *Component {
	c := newComponent(KindMast, name, 250, 200+height*10)
	c.Mast = &MastState{HeightM: height}
	return c
}

// AnchorState is the anchor variant payload. A set anchor whose rode reaches
// bottom cuts the ship's thrust; it applies no holding force of its own.
// Raising takes time proportional to depth.
type AnchorState struct {
	Deployed   bool    `json:"deployed"`
	RodeLength float64 `json:"rodeLength"` // meters of chain
	Holding    bool    `json:"holding"`    // bottom contact achieved

	// RaiseTimer counts down while the crew hauls the anchor back up.
	RaiseTimer float64 `json:"raiseTimer"`
}

// NewAnchor builds an anchor component.
func NewAnchor(rode float64) *Component {
	c := newComponent(KindAnchor, "anchor", 180, 250)
	c.Anchor = &AnchorState{RodeLength: rode}
	return c
}

// Drop lets the anchor go.
func (a *AnchorState) Drop() {
	a.Deployed = true
	a.RaiseTimer = 0
}

// Raise starts hauling the anchor up from the given water depth.
func (a *AnchorState) Raise(depth float64) {
	if !a.Deployed {
		return
	}
	a.RaiseTimer = math.Max(2, depth*0.5)
}

func (a *AnchorState) update(c *Component, ctx *UpdateContext) {
	if !a.Deployed {
		return
	}
	if a.RaiseTimer > 0 {
		a.RaiseTimer -= ctx.DT
		if a.RaiseTimer <= 0 {
			a.Deployed = false
			a.Holding = false
		}
		return
	}
	// The anchor only bites when the rode reaches bottom.
	a.Holding = ctx.WaterDepth <= a.RodeLength
}

// CargoState is the cargo hold variant payload. Load mass counts toward
// ship mass.
type CargoState struct {
	Capacity float64 `json:"capacity"` // kg
	Load     float64 `json:"load"`     // kg
}

// NewCargoHold builds a cargo hold sized to a capacity.
func NewCargoHold(capacity float64) *Component {
	c := newComponent(KindCargo, "cargo hold", 200, 150)
	c.Cargo = &CargoState{Capacity: capacity}
	return c
}

// Stow adds load up to capacity and returns the amount actually stowed.
func (cg *CargoState) Stow(kg float64) float64 {
	room := cg.Capacity - cg.Load
	take := math.Min(math.Max(0, kg), room)
	cg.Load += take
	return take
}

// QuartersState is the crew quarters variant payload. Berths feed cannon
// crew availability.
type QuartersState struct {
	Berths int `json:"berths"`
	Crew   int `json:"crew"`
}

// NewQuarters builds crew quarters.
func NewQuarters(berths int) *Component {
	c := newComponent(KindQuarters, "quarters", 160, 120)
	c.Quarters = &QuartersState{Berths: berths, Crew: berths}
	return c
}

// NavigationState is the navigation station variant payload. A live
// station raises Ship.Maneuverability by up to 20% with its health;
// ResponseBonus is carried as data and not read by that calculation.
type NavigationState struct {
	ResponseBonus float64 `json:"responseBonus"`
}

// NewNavigation builds a navigation station.
func NewNavigation() *Component {
	c := newComponent(KindNavigation, "navigation", 100, 80)
	c.Navigation = &NavigationState{ResponseBonus: 0.25}
	return c
}

// NewDecoration builds an inert decorative fitting: figureheads, lanterns,
// gilded trim. Mass only.
func NewDecoration(name string, mass float64) *Component {
	return newComponent(KindDecoration, name, 50, mass)
}
