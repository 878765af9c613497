// Package observability provides Prometheus metrics for the simulation
// core and its boundary surfaces.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Poseidon Prometheus metrics.
type Metrics struct {
	// Tick metrics
	TicksTotal   prometheus.Counter
	TickDuration prometheus.Histogram
	SimTime      prometheus.Gauge

	// Body metrics
	ActiveShips    prometheus.Gauge
	ActiveEntities prometheus.Gauge
	ActiveWaves    prometheus.Gauge
	ShipsSunk      prometheus.Counter

	// Event metrics
	CollisionsTotal   *prometheus.CounterVec
	DamageEventsTotal *prometheus.CounterVec
	CannonFiresTotal  prometheus.Counter
	CommandsRejected  prometheus.Counter

	// WebSocket metrics
	WebSocketConnections prometheus.Gauge
	WebSocketMessages    prometheus.Counter

	// NATS metrics
	NATSMessagesPublished *prometheus.CounterVec
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// GetMetrics returns the global metrics instance.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = initializeMetrics()
	})
	return globalMetrics
}

// initializeMetrics creates all Prometheus metrics.
func initializeMetrics() *Metrics {
	m := &Metrics{}

	m.TicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "poseidon",
		Subsystem: "sim",
		Name:      "ticks_total",
		Help:      "Total simulation ticks executed",
	})

	m.TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "poseidon",
		Subsystem: "sim",
		Name:      "tick_duration_seconds",
		Help:      "Wall-clock duration of a simulation tick",
		Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
	})

	m.SimTime = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "poseidon",
		Subsystem: "sim",
		Name:      "time_seconds",
		Help:      "Simulation time",
	})

	m.ActiveShips = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "poseidon",
		Subsystem: "world",
		Name:      "ships_active",
		Help:      "Active ships in the registry",
	})

	m.ActiveEntities = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "poseidon",
		Subsystem: "world",
		Name:      "entities_active",
		Help:      "Active free entities",
	})

	m.ActiveWaves = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "poseidon",
		Subsystem: "ocean",
		Name:      "wave_components",
		Help:      "Live wave components",
	})

	m.ShipsSunk = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "poseidon",
		Subsystem: "world",
		Name:      "ships_sunk_total",
		Help:      "Ships removed after sinking",
	})

	m.CollisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "poseidon",
		Subsystem: "collision",
		Name:      "contacts_total",
		Help:      "Resolved collisions by kind",
	}, []string{"kind"})

	m.DamageEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "poseidon",
		Subsystem: "damage",
		Name:      "events_total",
		Help:      "Damage events routed to components by kind",
	}, []string{"kind"})

	m.CannonFiresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "poseidon",
		Subsystem: "combat",
		Name:      "cannon_fires_total",
		Help:      "Successful cannon shots",
	})

	m.CommandsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "poseidon",
		Subsystem: "sim",
		Name:      "commands_rejected_total",
		Help:      "Commands that failed validation",
	})

	m.WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "poseidon",
		Subsystem: "websocket",
		Name:      "connections_active",
		Help:      "Number of active WebSocket connections",
	})

	m.WebSocketMessages = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "poseidon",
		Subsystem: "websocket",
		Name:      "messages_total",
		Help:      "Snapshots broadcast over WebSocket",
	})

	m.NATSMessagesPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "poseidon",
		Subsystem: "nats",
		Name:      "messages_published_total",
		Help:      "Events published to NATS by subject",
	}, []string{"subject"})

	return m
}
