// Package hub fans committed change events out to live subscribers.
// One room corresponds to one library; every seat of that library
// shares the room.  Delivery is best effort: subscribers that fall
// behind are dropped and rebuild their state from a fresh snapshot, so
// the hub never buffers history and never blocks the commit path.
package hub

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/iliyamo/library-seat-reservation/internal/model"
)

// Client is one websocket subscriber of a room.  Send is drained by the
// client's write pump; when it fills up the hub drops the client.
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
	Room string
}

type broadcastMsg struct {
	Room string
	Data []byte
}

// Hub routes change events to the subscribers of each room.  All state
// is owned by the Run goroutine; registration, unregistration and
// publishing go through channels.
type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
	quit       chan struct{}
	mu         sync.Mutex
}

// NewHub returns a hub ready to Run.  The broadcast channel is buffered
// so publishers are insulated from momentary fan-out spikes.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg, 256),
		quit:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until Stop is called.
// It must be started exactly once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.rooms[c.Room] == nil {
				h.rooms[c.Room] = make(map[*Client]bool)
			}
			h.rooms[c.Room][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if conns := h.rooms[c.Room]; conns != nil && conns[c] {
				delete(conns, c)
				close(c.Send)
			}
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.rooms[m.Room] {
				select {
				case c.Send <- m.Data:
				default:
					// Subscriber is not draining; drop it.  It will
					// reconnect and resync from a snapshot.
					close(c.Send)
					delete(h.rooms[m.Room], c)
				}
			}
			h.mu.Unlock()

		case <-h.quit:
			h.mu.Lock()
			for room, conns := range h.rooms {
				for c := range conns {
					close(c.Send)
				}
				delete(h.rooms, room)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop shuts the hub down and disconnects all subscribers.
func (h *Hub) Stop() {
	close(h.quit)
}

// Publish enqueues a change event for every subscriber of the room.
// It never blocks the caller: when the hub cannot keep up the event is
// dropped and logged, and subscribers recover via snapshot resync.
// Events published for the same seat are enqueued in commit order, and
// the single Run goroutine preserves that order per subscriber.
func (h *Hub) Publish(room string, ev model.ChangeEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("hub: marshal event failed: %v", err)
		return
	}
	select {
	case h.broadcast <- broadcastMsg{Room: room, Data: data}:
	default:
		log.Printf("hub: broadcast queue full, dropping event seq=%d room=%s", ev.CommitSeq, room)
	}
}

// HandleConn attaches an established websocket connection to a room and
// services it until the peer disconnects.  The read pump discards
// inbound frames; subscribers are listeners only.
func (h *Hub) HandleConn(conn *websocket.Conn, room string) {
	c := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: room,
	}
	h.register <- c
	go writePump(c)
	go readPump(c, h)
}

func writePump(c *Client) {
	defer c.Conn.Close()
	for msg := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

func readPump(c *Client, h *Hub) {
	defer func() {
		h.unregister <- c
		c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
	}
}
