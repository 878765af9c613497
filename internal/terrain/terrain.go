// Package terrain provides the terrain query boundary consumed by collision
// tests. Chunk loading and generation are external concerns; the core only
// reads heights and material hints through the Source interface.
//
// Copyright 2026 Arobi. All Rights Reserved.
package terrain

import "sync"

// ChunkSize is the world-space edge length of a terrain chunk in meters.
const ChunkSize = 16.0

// ReefHeight is the chunk height below which a chunk is classified as a
// reef for damage purposes.
const ReefHeight = 5.0

// MaterialHint classifies the dominant chunk surface.
type MaterialHint string

const (
	MaterialRock  MaterialHint = "rock"
	MaterialSand  MaterialHint = "sand"
	MaterialCoral MaterialHint = "coral"
	MaterialIce   MaterialHint = "ice"
)

// Chunk is one terrain cell addressed by integer chunk coordinates.
type Chunk struct {
	CX       int          `json:"cx"`
	CZ       int          `json:"cz"`
	Height   float64      `json:"height"` // top surface, meters
	Material MaterialHint `json:"material"`
}

// IsReef reports whether the chunk counts as shallow reef terrain.
func (c *Chunk) IsReef() bool {
	return c.Height < ReefHeight
}

// MinX returns the chunk's low X bound in world space.
func (c *Chunk) MinX() float64 { return float64(c.CX) * ChunkSize }

// MaxX returns the chunk's high X bound in world space.
func (c *Chunk) MaxX() float64 { return float64(c.CX)*ChunkSize + ChunkSize }

// MinZ returns the chunk's low Z bound in world space.
func (c *Chunk) MinZ() float64 { return float64(c.CZ) * ChunkSize }

// MaxZ returns the chunk's high Z bound in world space.
func (c *Chunk) MaxZ() float64 { return float64(c.CZ)*ChunkSize + ChunkSize }

// Source answers terrain queries by chunk coordinate. Implementations must
// be safe for concurrent reads; the core never writes terrain.
type Source interface {
	// ChunkAt returns the chunk covering chunk coordinate (cx, cz), or
	// false when the area is open water with no solid terrain.
	ChunkAt(cx, cz int) (*Chunk, bool)
}

// ChunkCoord maps a world coordinate to its chunk coordinate.
func ChunkCoord(x float64) int {
	c := int(x / ChunkSize)
	if x < 0 && x != float64(c)*ChunkSize {
		c--
	}
	return c
}

// MapSource is an in-memory Source backed by an explicit chunk map. Used by
// the driver binary and the test suites.
type MapSource struct {
	mu     sync.RWMutex
	chunks map[[2]int]*Chunk
}

// NewMapSource creates an empty in-memory terrain source.
func NewMapSource() *MapSource {
	return &MapSource{chunks: make(map[[2]int]*Chunk)}
}

// SetChunk inserts or replaces a chunk.
func (m *MapSource) SetChunk(c *Chunk) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks[[2]int{c.CX, c.CZ}] = c
}

// ChunkAt implements Source.
func (m *MapSource) ChunkAt(cx, cz int) (*Chunk, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.chunks[[2]int{cx, cz}]
	return c, ok
}
