// Package hub mirrors element state to browser clients over a WebSocket.
// Server-side attribute mutations are broadcast as update messages; client
// interactions come back as set messages and are dispatched into the element
// registry, from where they reach the settings layer as client-originated
// changes. Warnings from the process-wide channel are forwarded to every
// client.
package hub

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/molscope/molscope/internal/element"
	"github.com/molscope/molscope/internal/warnings"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientMessage is the incoming WebSocket message format.
type clientMessage struct {
	Type      string `json:"type"` // "set"
	ID        string `json:"id"`
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
}

// serverMessage is the outgoing WebSocket message format.
type serverMessage struct {
	Type      string                       `json:"type"` // "update", "snapshot", "warning" or "error"
	ID        string                       `json:"id,omitempty"`
	Attribute string                       `json:"attribute,omitempty"`
	Value     string                       `json:"value,omitempty"`
	Message   string                       `json:"message,omitempty"`
	Elements  map[string]map[string]string `json:"elements,omitempty"`
}

// Hub fans element updates out to connected clients and feeds their changes
// back into the registry. Client dispatches are serialized on a lock shared
// with every other mutation path: the settings layer underneath assumes a
// single mutator, so whoever mutates the same elements from outside the hub
// must hold the same lock.
type Hub struct {
	reg *element.Registry

	mu      sync.Mutex
	clients map[*websocket.Conn]bool

	dispatchMu sync.Locker

	removeWarnHandler func()
}

// New wires a hub to the registry: every attribute mutation and every
// warning is broadcast from now on. Call Close to detach. mu is the shared
// mutation lock; the caller holds it around any element or settings mutation
// it performs itself.
func New(reg *element.Registry, mu sync.Locker) *Hub {
	h := &Hub{
		reg:        reg,
		clients:    make(map[*websocket.Conn]bool),
		dispatchMu: mu,
	}
	reg.OnUpdate(func(id, attr, value string) {
		h.broadcast(serverMessage{Type: "update", ID: id, Attribute: attr, Value: value})
	})
	h.removeWarnHandler = warnings.AddHandler(func(message string) {
		h.broadcast(serverMessage{Type: "warning", Message: message})
	})
	return h
}

// HandleWebSocket upgrades the request and serves the client until it
// disconnects. A fresh client first receives a snapshot of all element
// state.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("hub: websocket upgrade: %v", err)
		return
	}
	defer h.drop(conn)

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	snapshot := serverMessage{Type: "snapshot", Elements: h.reg.Snapshot()}
	if err := h.write(conn, snapshot); err != nil {
		return
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("hub: websocket read: %v", err)
			}
			return
		}

		var req clientMessage
		if err := json.Unmarshal(msg, &req); err != nil {
			h.write(conn, serverMessage{Type: "error", Message: "invalid message format"})
			continue
		}

		switch req.Type {
		case "set":
			if err := h.Dispatch(req.ID, req.Attribute, req.Value); err != nil {
				h.write(conn, serverMessage{Type: "error", Message: err.Error()})
			}
		default:
			h.write(conn, serverMessage{Type: "error", Message: "unknown message type: " + req.Type})
		}
	}
}

// Dispatch routes one client-originated change into the registry under the
// shared mutation lock. Incoming set messages go through here.
func (h *Hub) Dispatch(id, attribute, value string) error {
	h.dispatchMu.Lock()
	defer h.dispatchMu.Unlock()
	return h.reg.Dispatch(id, attribute, value)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and stops forwarding warnings.
func (h *Hub) Close() {
	if h.removeWarnHandler != nil {
		h.removeWarnHandler()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
	}
	h.clients = make(map[*websocket.Conn]bool)
}

func (h *Hub) drop(conn *websocket.Conn) {
	conn.Close()
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}

func (h *Hub) broadcast(msg serverMessage) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if err := h.write(conn, msg); err != nil {
			log.Printf("hub: websocket write: %v", err)
		}
	}
}

func (h *Hub) write(conn *websocket.Conn, msg serverMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return conn.WriteJSON(msg)
}
