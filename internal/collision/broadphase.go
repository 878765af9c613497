// Copyright 2026 Arobi. All Rights Reserved.

package collision

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/PossumXI/Poseidon/internal/ship"
)

// pairKind tags the collision signature of a candidate pair.
type pairKind int

const (
	pairShipShip pairKind = iota
	pairShipEntity
	pairEntityEntity
)

// candidate is a broad-phase pair awaiting narrow-phase testing.
type candidate struct {
	kind    pairKind
	shipA   *ship.Ship
	shipB   *ship.Ship
	entityA *Entity
	entityB *Entity
}

// fastPairSpeed is the combined closing speed above which bounding spheres
// are inflated to avoid tunneling.
const fastPairSpeed = 10.0

// shipRadius is the bounding-sphere radius of a ship.
func shipRadius(s *ship.Ship) float64 {
	return math.Max(s.Type.Length, s.Type.Width) * 0.5
}

// spheresOverlap tests two bounding spheres with fast-mover inflation.
func spheresOverlap(pa, pb, va, vb r3.Vec, ra, rb float64) bool {
	inflate := 1.0
	if r3.Norm(va)+r3.Norm(vb) > fastPairSpeed {
		inflate = 1.5
	}
	reach := (ra + rb) * inflate
	d := r3.Sub(pa, pb)
	return d.X*d.X+d.Y*d.Y+d.Z*d.Z < reach*reach
}

// octreeThreshold is the body count at which the broad phase switches
// from the quadratic sweep to the octree index. Both paths produce the
// same candidate pairs in the same order.
const octreeThreshold = 64

// broadPhase enumerates candidate pairs over all active bodies.
func broadPhase(ships []*ship.Ship, entities []*Entity) []candidate {
	if len(ships)+len(entities) >= octreeThreshold {
		return broadPhaseIndexed(ships, entities)
	}

	var out []candidate

	for i := 0; i < len(ships); i++ {
		a := ships[i]
		for j := i + 1; j < len(ships); j++ {
			b := ships[j]
			if spheresOverlap(a.Position, b.Position, a.Velocity, b.Velocity, shipRadius(a), shipRadius(b)) {
				out = append(out, candidate{kind: pairShipShip, shipA: a, shipB: b})
			}
		}
		for _, e := range entities {
			if e.Dead {
				continue
			}
			if spheresOverlap(a.Position, e.Position, a.Velocity, e.Velocity, shipRadius(a), e.Radius) {
				out = append(out, candidate{kind: pairShipEntity, shipA: a, entityA: e})
			}
		}
	}

	for i := 0; i < len(entities); i++ {
		a := entities[i]
		if a.Dead {
			continue
		}
		for j := i + 1; j < len(entities); j++ {
			b := entities[j]
			if b.Dead {
				continue
			}
			if spheresOverlap(a.Position, b.Position, a.Velocity, b.Velocity, a.Radius, b.Radius) {
				out = append(out, candidate{kind: pairEntityEntity, entityA: a, entityB: b})
			}
		}
	}

	return out
}

// broadPhaseIndexed produces the same pairs as the quadratic sweep using
// the octree. Tree radii carry the full 1.5× inflation so the query is a
// superset; the exact sphere test then filters identically.
func broadPhaseIndexed(ships []*ship.Ship, entities []*Entity) []candidate {
	nShips := len(ships)
	bodies := make([]octreeBody, 0, nShips+len(entities))
	for i, s := range ships {
		bodies = append(bodies, octreeBody{index: i, position: s.Position, radius: shipRadius(s) * 1.5})
	}
	for i, e := range entities {
		bodies = append(bodies, octreeBody{index: nShips + i, position: e.Position, radius: e.Radius * 1.5})
	}
	tree := newOctree(bodies)

	var out []candidate
	for i, b := range bodies {
		if i >= nShips && entities[i-nShips].Dead {
			continue
		}
		for _, j := range tree.queryRadius(b.position, b.radius) {
			if j <= i {
				continue
			}
			switch {
			case i < nShips && j < nShips:
				a, c := ships[i], ships[j]
				if spheresOverlap(a.Position, c.Position, a.Velocity, c.Velocity, shipRadius(a), shipRadius(c)) {
					out = append(out, candidate{kind: pairShipShip, shipA: a, shipB: c})
				}
			case i < nShips:
				a, e := ships[i], entities[j-nShips]
				if e.Dead {
					continue
				}
				if spheresOverlap(a.Position, e.Position, a.Velocity, e.Velocity, shipRadius(a), e.Radius) {
					out = append(out, candidate{kind: pairShipEntity, shipA: a, entityA: e})
				}
			default:
				a, e := entities[i-nShips], entities[j-nShips]
				if e.Dead {
					continue
				}
				if spheresOverlap(a.Position, e.Position, a.Velocity, e.Velocity, a.Radius, e.Radius) {
					out = append(out, candidate{kind: pairEntityEntity, entityA: a, entityB: e})
				}
			}
		}
	}
	return out
}
