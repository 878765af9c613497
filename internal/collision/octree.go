// Copyright 2026 Arobi. All Rights Reserved.

package collision

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

const maxBodiesPerNode = 8

// octreeBody is one indexed entry in the spatial index. The index orders
// bodies the way the tick iterates them, which keeps pair output
// deterministic regardless of tree shape.
type octreeBody struct {
	index    int
	position r3.Vec
	radius   float64
}

// octreeNode is a node in the broad-phase octree.
type octreeNode struct {
	center   r3.Vec
	halfSize float64
	bodies   []octreeBody
	children [8]*octreeNode
	isLeaf   bool
}

// octree is a spatial index over collision bodies. It accelerates the
// broad phase for large working sets without changing the candidate set
// the O(n²) sweep would produce.
type octree struct {
	root *octreeNode
}

// newOctree builds an index covering all given bodies.
func newOctree(bodies []octreeBody) *octree {
	center, halfSize := boundsOf(bodies)
	o := &octree{root: &octreeNode{
		center:   center,
		halfSize: halfSize,
		bodies:   make([]octreeBody, 0, maxBodiesPerNode),
		isLeaf:   true,
	}}
	for _, b := range bodies {
		o.insert(o.root, b)
	}
	return o
}

// boundsOf finds a cube enclosing every body.
func boundsOf(bodies []octreeBody) (r3.Vec, float64) {
	if len(bodies) == 0 {
		return r3.Vec{}, 1
	}
	min := bodies[0].position
	max := bodies[0].position
	for _, b := range bodies {
		min.X = math.Min(min.X, b.position.X-b.radius)
		min.Y = math.Min(min.Y, b.position.Y-b.radius)
		min.Z = math.Min(min.Z, b.position.Z-b.radius)
		max.X = math.Max(max.X, b.position.X+b.radius)
		max.Y = math.Max(max.Y, b.position.Y+b.radius)
		max.Z = math.Max(max.Z, b.position.Z+b.radius)
	}
	center := r3.Scale(0.5, r3.Add(min, max))
	half := math.Max(max.X-min.X, math.Max(max.Y-min.Y, max.Z-min.Z))/2 + 1
	return center, half
}

func (o *octree) insert(node *octreeNode, b octreeBody) {
	if node.isLeaf {
		if len(node.bodies) < maxBodiesPerNode || node.halfSize < 1 {
			node.bodies = append(node.bodies, b)
			return
		}
		o.split(node)
	}

	octant := childOctant(node, b.position)
	if node.children[octant] == nil {
		node.children[octant] = &octreeNode{
			center:   childCenter(node, octant),
			halfSize: node.halfSize / 2,
			bodies:   make([]octreeBody, 0, maxBodiesPerNode),
			isLeaf:   true,
		}
	}
	o.insert(node.children[octant], b)
}

func (o *octree) split(node *octreeNode) {
	node.isLeaf = false
	bodies := node.bodies
	node.bodies = nil
	for _, b := range bodies {
		octant := childOctant(node, b.position)
		if node.children[octant] == nil {
			node.children[octant] = &octreeNode{
				center:   childCenter(node, octant),
				halfSize: node.halfSize / 2,
				bodies:   make([]octreeBody, 0, maxBodiesPerNode),
				isLeaf:   true,
			}
		}
		o.insert(node.children[octant], b)
	}
}

func childOctant(node *octreeNode, pos r3.Vec) int {
	octant := 0
	if pos.X >= node.center.X {
		octant |= 1
	}
	if pos.Y >= node.center.Y {
		octant |= 2
	}
	if pos.Z >= node.center.Z {
		octant |= 4
	}
	return octant
}

func childCenter(node *octreeNode, octant int) r3.Vec {
	offset := node.halfSize / 2
	center := node.center
	if octant&1 != 0 {
		center.X += offset
	} else {
		center.X -= offset
	}
	if octant&2 != 0 {
		center.Y += offset
	} else {
		center.Y -= offset
	}
	if octant&4 != 0 {
		center.Z += offset
	} else {
		center.Z -= offset
	}
	return center
}

// queryRadius returns the indices of bodies within radius of the center,
// sorted ascending so callers produce pairs in sweep order.
func (o *octree) queryRadius(center r3.Vec, radius float64) []int {
	var out []int
	o.queryNode(o.root, center, radius, &out)
	sort.Ints(out)
	return out
}

func (o *octree) queryNode(node *octreeNode, center r3.Vec, radius float64, out *[]int) {
	if node == nil || !sphereIntersectsBox(center, radius, node) {
		return
	}
	if node.isLeaf {
		for _, b := range node.bodies {
			reach := radius + b.radius
			d := r3.Sub(center, b.position)
			if d.X*d.X+d.Y*d.Y+d.Z*d.Z <= reach*reach {
				*out = append(*out, b.index)
			}
		}
		return
	}
	for _, child := range node.children {
		o.queryNode(child, center, radius, out)
	}
}

func sphereIntersectsBox(center r3.Vec, radius float64, node *octreeNode) bool {
	closest := r3.Vec{
		X: clampF(center.X, node.center.X-node.halfSize, node.center.X+node.halfSize),
		Y: clampF(center.Y, node.center.Y-node.halfSize, node.center.Y+node.halfSize),
		Z: clampF(center.Z, node.center.Z-node.halfSize, node.center.Z+node.halfSize),
	}
	return r3.Norm(r3.Sub(center, closest)) <= radius
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
