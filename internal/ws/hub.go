package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"ms-reservation/internal/models"
)

// Message is the frame sent to clients subscribed to a bus room.
type Message struct {
	Type      string                 `json:"type"`
	BusID     string                 `json:"busId"`
	Event     models.SeatUpdateEvent `json:"event"`
	Timestamp int64                  `json:"timestamp"`
}

const MessageTypeSeatUpdate = "seat-update"

// Hub manages WebSocket connections per bus room and broadcasts
// seat-state transitions to everyone watching that bus. Advisory only:
// clients re-fetch the seat view before acting.
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
	}
}

// Run drives the hub's register/unregister/broadcast loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.busID] == nil {
				h.clients[client.busID] = make(map[*Client]bool)
			}
			h.clients[client.busID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.busID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.clients, client.busID)
					}
				}
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			data, err := json.Marshal(message)
			if err != nil {
				log.Printf("ws: failed to marshal message: %v", err)
				continue
			}

			h.mu.RLock()
			clients := h.clients[message.BusID]
			h.mu.RUnlock()

			for client := range clients {
				select {
				case client.send <- data:
				default:
					// Slow consumer, drop it.
					h.mu.Lock()
					delete(h.clients[message.BusID], client)
					close(client.send)
					h.mu.Unlock()
				}
			}
		}
	}
}

// SeatUpdate broadcasts one seat transition to the bus room. Satisfies
// the reservation and booking services' Notifier interfaces.
func (h *Hub) SeatUpdate(busID string, event models.SeatUpdateEvent) {
	h.broadcast <- &Message{
		Type:      MessageTypeSeatUpdate,
		BusID:     busID,
		Event:     event,
		Timestamp: time.Now().UnixMilli(),
	}
}

// ClientCount returns how many clients are watching a bus.
func (h *Hub) ClientCount(busID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[busID])
}
