// Package events defines the event types emitted by the simulation core.
// Every tick publishes the events accumulated since the previous snapshot.
package events

import (
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// Event is a single occurrence inside a tick.
type Event struct {
	ID      uuid.UUID   `json:"id"`
	Type    EventType   `json:"type"`
	Tick    uint64      `json:"tick"`
	SimTime float64     `json:"simTime"`
	Payload interface{} `json:"payload"`
}

// EventType categorizes simulation events.
type EventType string

const (
	EventTypeCollision       EventType = "collision"
	EventTypeDamage          EventType = "damage"
	EventTypeDestruction     EventType = "destruction"
	EventTypeCannonFire      EventType = "cannon.fire"
	EventTypeCannonMisfire   EventType = "cannon.misfire"
	EventTypeExplosion       EventType = "explosion"
	EventTypeSinkingStarted  EventType = "ship.sinking"
	EventTypeShipSunk        EventType = "ship.sunk"
	EventTypeCommandRejected EventType = "command.rejected"
	EventTypeDisturbance     EventType = "ocean.disturbance"
)

// CollisionKind classifies what collided.
type CollisionKind string

const (
	CollisionShipShip     CollisionKind = "ship_ship"
	CollisionShipTerrain  CollisionKind = "ship_terrain"
	CollisionShipReef     CollisionKind = "ship_reef"
	CollisionEntityEntity CollisionKind = "entity_entity"
)

// CollisionEvent reports a resolved contact between two bodies.
type CollisionEvent struct {
	Kind   CollisionKind `json:"kind"`
	BodyA  string        `json:"bodyA"`
	BodyB  string        `json:"bodyB"`
	Point  r3.Vec        `json:"point"`
	Energy float64       `json:"energy"` // joules dissipated at contact
}

// DamageEvent reports damage routed to a ship component.
type DamageEvent struct {
	ShipID      uuid.UUID `json:"shipId"`
	ComponentID uuid.UUID `json:"componentId,omitempty"`
	Magnitude   float64   `json:"magnitude"`
	DamageKind  string    `json:"damageKind"`
	LocalPos    r3.Vec    `json:"localPos"`
}

// DestructionEvent reports a destroyed component, entity, or ship.
type DestructionEvent struct {
	TargetID uuid.UUID `json:"targetId"`
	Kind     string    `json:"kind"` // component kind, entity kind, or "ship"
	Position r3.Vec    `json:"position"`
}

// CannonFireEvent reports a successful cannon shot and the projectile it spawned.
type CannonFireEvent struct {
	ShipID       uuid.UUID `json:"shipId"`
	CannonID     uuid.UUID `json:"cannonId"`
	ProjectileID uuid.UUID `json:"projectileId"`
	Ammo         string    `json:"ammo"`
	Origin       r3.Vec    `json:"origin"`
	Direction    r3.Vec    `json:"direction"`
	MuzzleSpeed  float64   `json:"muzzleSpeed"`
}

// ExplosionEvent reports a cannon magazine explosion.
type ExplosionEvent struct {
	ShipID   uuid.UUID `json:"shipId"`
	SourceID uuid.UUID `json:"sourceId"`
	Radius   float64   `json:"radius"`
	Damage   float64   `json:"damage"`
	Position r3.Vec    `json:"position"`
}

// CommandRejectedEvent reports a command that failed validation. Rejected
// commands never abort a tick.
type CommandRejectedEvent struct {
	Op     string `json:"op"`
	ShipID string `json:"shipId,omitempty"`
	Reason string `json:"reason"`
}

// DisturbanceEvent reports an injected circular wave disturbance.
type DisturbanceEvent struct {
	X         float64 `json:"x"`
	Z         float64 `json:"z"`
	Intensity float64 `json:"intensity"`
	Radius    float64 `json:"radius"`
}

// New wraps a payload in an Event envelope.
func New(t EventType, tick uint64, simTime float64, payload interface{}) Event {
	return Event{
		ID:      uuid.New(),
		Type:    t,
		Tick:    tick,
		SimTime: simTime,
		Payload: payload,
	}
}
