// Package livefeed provides real-time snapshot streaming via WebSocket
package livefeed

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/PossumXI/Poseidon/internal/observability"
	"github.com/PossumXI/Poseidon/internal/sim"
)

// Streamer broadcasts simulation snapshots to WebSocket clients.
type Streamer struct {
	mu        sync.RWMutex
	clients   map[*Client]bool
	broadcast chan *sim.Snapshot

	upgrader websocket.Upgrader
	logger   logrus.FieldLogger

	messagesSent  uint64
	clientsServed uint64
}

// Client represents a connected WebSocket client
type Client struct {
	conn *websocket.Conn
	send chan *sim.Snapshot
	id   string
}

// NewStreamer creates a new snapshot streamer.
func NewStreamer(logger logrus.FieldLogger) *Streamer {
	return &Streamer{
		clients:   make(map[*Client]bool),
		broadcast: make(chan *sim.Snapshot, 100),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for now
			},
		},
		logger: logger,
	}
}

// HandleWebSocket upgrades an HTTP request and registers the client.
func (st *Streamer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := st.upgrader.Upgrade(w, r, nil)
	if err != nil {
		st.logger.WithError(err).Error("Failed to upgrade WebSocket")
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan *sim.Snapshot, 30),
		id:   r.RemoteAddr,
	}
	st.register(client)
	st.logger.WithField("client", client.id).Info("Client connected")

	ctx, cancel := context.WithCancel(r.Context())
	go client.writePump(ctx, st)
	go client.readPump(cancel, st)
}

func (st *Streamer) register(client *Client) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.clients[client] = true
	st.clientsServed++
	observability.GetMetrics().WebSocketConnections.Inc()
}

func (st *Streamer) unregister(client *Client) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.clients[client]; ok {
		delete(st.clients, client)
		close(client.send)
		observability.GetMetrics().WebSocketConnections.Dec()
		st.logger.WithField("client", client.id).Info("Client disconnected")
	}
}

// Broadcast queues a snapshot for delivery, dropping the oldest when the
// buffer backs up.
func (st *Streamer) Broadcast(snap *sim.Snapshot) {
	select {
	case st.broadcast <- snap:
	default:
		select {
		case <-st.broadcast:
		default:
		}
		st.broadcast <- snap
	}
}

// Run starts the streaming loop.
func (st *Streamer) Run(ctx context.Context) error {
	st.logger.Info("Livefeed streamer started")
	for {
		select {
		case <-ctx.Done():
			st.logger.Info("Livefeed streamer stopping")
			st.closeAll()
			return ctx.Err()
		case snap := <-st.broadcast:
			st.send(snap)
		}
	}
}

func (st *Streamer) send(snap *sim.Snapshot) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	for client := range st.clients {
		select {
		case client.send <- snap:
			st.messagesSent++
			observability.GetMetrics().WebSocketMessages.Inc()
		default:
			// Slow consumer: skip this frame for it.
		}
	}
}

func (st *Streamer) closeAll() {
	st.mu.Lock()
	defer st.mu.Unlock()
	for client := range st.clients {
		client.conn.Close()
		delete(st.clients, client)
		close(client.send)
		observability.GetMetrics().WebSocketConnections.Dec()
	}
}

func (c *Client) writePump(ctx context.Context, st *Streamer) {
	defer c.conn.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(snap); err != nil {
				st.logger.WithError(err).Debug("write failed")
				return
			}
		}
	}
}

func (c *Client) readPump(cancel context.CancelFunc, st *Streamer) {
	defer func() {
		cancel()
		st.unregister(c)
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
