// Package server streams flock state to websocket clients and feeds their
// control messages back to the simulation loop.
package server

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/flocklab/go-flocking-simulation/pkg/behavior"
)

// AgentState is the wire form of one agent.
type AgentState struct {
	ID      int     `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
}

// Snapshot is the wire form of one completed tick.
type Snapshot struct {
	Tick      int          `json:"tick"`
	SimTime   float64      `json:"simTime"`
	CentroidX float64      `json:"centroidX"`
	CentroidY float64      `json:"centroidY"`
	Agents    []AgentState `json:"agents"`
}

// BuildSnapshot captures the flock's current state in insertion order.
func BuildSnapshot(tick int, simTime float64, f *behavior.Flock) (*Snapshot, error) {
	center, err := f.Centroid()
	if err != nil {
		return nil, err
	}
	agents := f.Agents()
	snap := &Snapshot{
		Tick:      tick,
		SimTime:   simTime,
		CentroidX: center.X,
		CentroidY: center.Y,
		Agents:    make([]AgentState, len(agents)),
	}
	for i, a := range agents {
		snap.Agents[i] = AgentState{ID: a.ID, X: a.Pos.X, Y: a.Pos.Y, Heading: a.Heading}
	}
	return snap, nil
}

// Control is an inbound client command. Type is one of "set_tuning",
// "pause", "resume", "reset"; the pointer fields of set_tuning patch only
// the values the client sent.
type Control struct {
	Type string `json:"type"`

	SeparationForce  *float64 `json:"separationForce,omitempty"`
	CohesionForce    *float64 `json:"cohesionForce,omitempty"`
	AlignmentForce   *float64 `json:"alignmentForce,omitempty"`
	MovementSpeed    *float64 `json:"movementSpeed,omitempty"`
	SeparationRadius *float64 `json:"separationRadius,omitempty"`
}

// Apply patches the tuning with the fields present in the control message.
func (c Control) Apply(t behavior.Tuning) behavior.Tuning {
	if c.SeparationForce != nil {
		t.SeparationForce = *c.SeparationForce
	}
	if c.CohesionForce != nil {
		t.CohesionForce = *c.CohesionForce
	}
	if c.AlignmentForce != nil {
		t.AlignmentForce = *c.AlignmentForce
	}
	if c.MovementSpeed != nil {
		t.MovementSpeed = *c.MovementSpeed
	}
	if c.SeparationRadius != nil {
		t.SeparationRadius = *c.SeparationRadius
	}
	return t
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub tracks connected clients, broadcasts snapshots and collects control
// messages on a buffered channel the simulation loop drains between ticks.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}

	controls chan Control
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:  make(map[*client]struct{}),
		controls: make(chan Control, 16),
	}
}

// Controls returns the inbound command channel.
func (h *Hub) Controls() <-chan Control {
	return h.controls
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends the snapshot to every connected client, dropping clients
// whose connection fails.
func (h *Hub) Broadcast(snap *Snapshot) {
	h.mu.Lock()
	list := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		list = append(list, c)
	}
	h.mu.Unlock()

	for _, c := range list {
		if err := c.send(snap); err != nil {
			slog.Warn("client send failed, dropping", "error", err)
			h.remove(c)
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.conn.Close()
}

// HandleWS upgrades the connection, registers the client and reads control
// messages until the connection drops.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	slog.Info("client connected", "remote", conn.RemoteAddr())

	for {
		var ctrl Control
		if err := conn.ReadJSON(&ctrl); err != nil {
			break
		}
		select {
		case h.controls <- ctrl:
		default:
			// Loop busy; drop rather than block the read pump.
			slog.Warn("control channel full, dropping message", "type", ctrl.Type)
		}
	}

	h.remove(c)
	slog.Info("client disconnected", "remote", conn.RemoteAddr())
}
