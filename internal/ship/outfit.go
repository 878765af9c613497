// Copyright 2026 Arobi. All Rights Reserved.

package ship

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Outfit rigs a bare ship with the standard loadout for its class: masts
// and sails fore-to-aft, broadside cannons, rudder, anchor, quarters,
// cargo hold, and a navigation station.
func Outfit(s *Ship) {
	t := s.Type

	masts := 1
	cannonsPerSide := 1
	switch t.Class {
	case ClassMedium, ClassPirate:
		masts, cannonsPerSide = 2, 3
	case ClassHeavy:
		masts, cannonsPerSide = 3, 6
	case ClassMerchant:
		masts, cannonsPerSide = 2, 1
	case ClassSupernatural:
		masts, cannonsPerSide = 3, 4
	}

	sailKind := SailSquare
	if t.Class == ClassPirate {
		sailKind = SailLateen
	}
	if t.Class == ClassSupernatural {
		sailKind = SailMagicalSilk
	}

	for i := 0; i < masts; i++ {
		z := t.Length * (0.3 - 0.6*float64(i)/float64(max(1, masts-1)))
		if masts == 1 {
			z = 0
		}
		mast := NewMast(fmt.Sprintf("mast %d", i+1), t.Height*0.8)
		mast.LocalPos = r3.Vec{Y: t.Height * 0.4, Z: z}
		s.AddComponent(mast)

		sail := NewSail(sailKind, t.Length*t.Height*0.25)
		sail.LocalPos = r3.Vec{Y: t.Height * 0.6, Z: z}
		sail.Sail.Mast = mast.ID
		s.AddComponent(sail)
	}

	size := 1.0
	if t.Class == ClassHeavy || t.Class == ClassSupernatural {
		size = 1.5
	}
	for i := 0; i < cannonsPerSide; i++ {
		z := t.Length * (0.25 - 0.5*float64(i)/float64(max(1, cannonsPerSide-1)))
		if cannonsPerSide == 1 {
			z = 0
		}
		for side, x := range []float64{-t.Width / 2, t.Width / 2} {
			name := fmt.Sprintf("port gun %d", i+1)
			aim := r3.Vec{X: -1}
			if side == 1 {
				name = fmt.Sprintf("starboard gun %d", i+1)
				aim = r3.Vec{X: 1}
			}
			gun := NewCannon(name, size)
			gun.LocalPos = r3.Vec{X: x, Y: t.Height * 0.25, Z: z}
			gun.Cannon.AimDir = aim
			gun.Cannon.Inventory[AmmoBall] = 20
			gun.Cannon.Inventory[AmmoChain] = 6
			gun.Cannon.Inventory[AmmoGrape] = 6
			gun.Cannon.Inventory[AmmoExplosive] = 2
			s.AddComponent(gun)
		}
	}

	rudder := NewRudder(t.Draft * 1.5)
	rudder.LocalPos = r3.Vec{Z: -t.Length / 2}
	s.AddComponent(rudder)

	anchor := NewAnchor(t.Draft * 12)
	anchor.LocalPos = r3.Vec{Z: t.Length * 0.45}
	s.AddComponent(anchor)

	quarters := NewQuarters(t.CrewCapacity)
	quarters.LocalPos = r3.Vec{Y: t.Height * 0.1, Z: -t.Length * 0.2}
	s.AddComponent(quarters)

	hold := NewCargoHold(t.CargoCapacity)
	hold.LocalPos = r3.Vec{Y: t.Height * 0.05}
	s.AddComponent(hold)

	nav := NewNavigation()
	nav.LocalPos = r3.Vec{Y: t.Height * 0.3, Z: -t.Length * 0.35}
	s.AddComponent(nav)

	s.refreshCrewAssignments()
}
