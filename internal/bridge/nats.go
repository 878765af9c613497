// Package bridge provides NATS real-time event integration for the
// simulation core. The bridge is optional: a world runs headless without
// it, and a nil bridge swallows publishes.
package bridge

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/PossumXI/Poseidon/internal/events"
	"github.com/PossumXI/Poseidon/internal/observability"
)

// NATS subjects published by the core.
const (
	SubjectCollision   = "poseidon.events.collision"
	SubjectDamage      = "poseidon.events.damage"
	SubjectDestruction = "poseidon.events.destruction"
	SubjectCannonFire  = "poseidon.events.cannon_fire"
	SubjectExplosion   = "poseidon.events.explosion"
	SubjectSinking     = "poseidon.events.sinking"
	SubjectSnapshot    = "poseidon.snapshot"
)

// Config holds NATS bridge configuration.
type Config struct {
	URL           string        `json:"url"`
	ClientID      string        `json:"clientId"`
	ReconnectWait time.Duration `json:"reconnectWait"`
	MaxReconnects int           `json:"maxReconnects"`
}

// DefaultConfig returns a default bridge configuration.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		ClientID:      "poseidon-core",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: 10,
	}
}

// Bridge publishes simulation events to NATS subjects.
type Bridge struct {
	mu     sync.Mutex
	cfg    Config
	nc     *nats.Conn
	logger logrus.FieldLogger
}

// New creates an unconnected bridge.
func New(cfg Config, logger logrus.FieldLogger) *Bridge {
	return &Bridge{cfg: cfg, logger: logger}
}

// Connect dials the NATS server.
func (b *Bridge) Connect() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	opts := []nats.Option{
		nats.Name(b.cfg.ClientID),
		nats.ReconnectWait(b.cfg.ReconnectWait),
		nats.MaxReconnects(b.cfg.MaxReconnects),
	}
	nc, err := nats.Connect(b.cfg.URL, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS server at %s: %w", b.cfg.URL, err)
	}
	b.nc = nc
	b.logger.WithField("url", nc.ConnectedUrl()).Info("NATS bridge connected")
	return nil
}

// Close drains and closes the connection.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.nc != nil {
		b.nc.Drain()
		b.nc = nil
	}
}

// PublishEvents fans tick events out to their subjects. A nil or
// disconnected bridge is a no-op.
func (b *Bridge) PublishEvents(evs []events.Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	nc := b.nc
	b.mu.Unlock()
	if nc == nil || !nc.IsConnected() {
		return
	}

	for _, ev := range evs {
		subject := subjectFor(ev.Type)
		if subject == "" {
			continue
		}
		data, err := json.Marshal(ev)
		if err != nil {
			b.logger.WithError(err).Warn("failed to marshal event")
			continue
		}
		if err := nc.Publish(subject, data); err != nil {
			b.logger.WithError(err).Warn("failed to publish event")
			continue
		}
		observability.GetMetrics().NATSMessagesPublished.WithLabelValues(subject).Inc()
	}
}

// PublishSnapshot publishes the full tick snapshot.
func (b *Bridge) PublishSnapshot(snap interface{}) {
	if b == nil {
		return
	}
	b.mu.Lock()
	nc := b.nc
	b.mu.Unlock()
	if nc == nil || !nc.IsConnected() {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		b.logger.WithError(err).Warn("failed to marshal snapshot")
		return
	}
	if err := nc.Publish(SubjectSnapshot, data); err != nil {
		b.logger.WithError(err).Warn("failed to publish snapshot")
		return
	}
	observability.GetMetrics().NATSMessagesPublished.WithLabelValues(SubjectSnapshot).Inc()
}

func subjectFor(t events.EventType) string {
	switch t {
	case events.EventTypeCollision:
		return SubjectCollision
	case events.EventTypeDamage:
		return SubjectDamage
	case events.EventTypeDestruction, events.EventTypeShipSunk:
		return SubjectDestruction
	case events.EventTypeCannonFire, events.EventTypeCannonMisfire:
		return SubjectCannonFire
	case events.EventTypeExplosion:
		return SubjectExplosion
	case events.EventTypeSinkingStarted:
		return SubjectSinking
	}
	return ""
}
