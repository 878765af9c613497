// Copyright 2026 Arobi. All Rights Reserved.

package ship

import (
	"sort"

	"github.com/google/uuid"
)

// ShipHandle is a stable integer handle into the registry. Components hold
// handles, never pointers, so a destroyed ship resolves to nothing instead
// of dangling.
type ShipHandle uint64

// Registry owns the active ships. Iteration order is insertion order,
// which keeps tick processing deterministic.
type Registry struct {
	nextHandle ShipHandle
	byHandle   map[ShipHandle]*Ship
	byID       map[uuid.UUID]*Ship
	order      []ShipHandle
}

// NewRegistry creates an empty ship registry.
func NewRegistry() *Registry {
	return &Registry{
		nextHandle: 1,
		byHandle:   make(map[ShipHandle]*Ship),
		byID:       make(map[uuid.UUID]*Ship),
	}
}

// Add registers a ship and assigns its handle. Component back-references
// are rewritten to the new handle.
func (r *Registry) Add(s *Ship) ShipHandle {
	h := r.nextHandle
	r.nextHandle++
	s.Handle = h
	for _, c := range s.Components {
		c.Parent = h
	}
	r.byHandle[h] = s
	r.byID[s.ID] = s
	r.order = append(r.order, h)
	return h
}

// Remove drops a ship from the registry. Existing handles held by
// components resolve to nil afterwards.
func (r *Registry) Remove(h ShipHandle) bool {
	s, ok := r.byHandle[h]
	if !ok {
		return false
	}
	delete(r.byHandle, h)
	delete(r.byID, s.ID)
	for i, o := range r.order {
		if o == h {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Resolve returns the ship for a handle, or nil when it no longer exists.
func (r *Registry) Resolve(h ShipHandle) *Ship {
	return r.byHandle[h]
}

// ByID looks a ship up by UUID.
func (r *Registry) ByID(id uuid.UUID) (*Ship, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// Len returns the number of active ships.
func (r *Registry) Len() int { return len(r.order) }

// ForEach visits ships in deterministic insertion order.
func (r *Registry) ForEach(fn func(*Ship)) {
	for _, h := range r.order {
		if s, ok := r.byHandle[h]; ok {
			fn(s)
		}
	}
}

// All returns the active ships in deterministic order.
func (r *Registry) All() []*Ship {
	out := make([]*Ship, 0, len(r.order))
	for _, h := range r.order {
		if s, ok := r.byHandle[h]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Handles returns the sorted handle set, for diagnostics.
func (r *Registry) Handles() []ShipHandle {
	hs := make([]ShipHandle, len(r.order))
	copy(hs, r.order)
	sort.Slice(hs, func(i, j int) bool { return hs[i] < hs[j] })
	return hs
}
