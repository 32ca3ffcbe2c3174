package live

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Message types pushed to group rooms.
const (
	MsgSubmissionCreated = "submission.created"
	MsgReactionUpdated   = "reaction.updated"
)

// Message is a single event delivered to every member of a group room.
type Message struct {
	Type      string          `json:"type"`
	GroupID   string          `json:"group_id"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Hub maintains active clients per group and fans events out to them.
// Delivery is best-effort: slow clients get dropped, never waited on.
type Hub struct {
	clients    map[string]map[*Client]bool // groupID -> clients
	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run owns the client maps. Call once from main in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.GroupID] == nil {
				h.clients[client.GroupID] = make(map[*Client]bool)
			}
			h.clients[client.GroupID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.clients[client.GroupID]; ok {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.send)
					if len(room) == 0 {
						delete(h.clients, client.GroupID)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			payload, err := json.Marshal(msg)
			if err != nil {
				log.Printf("[live] marshal broadcast: %v", err)
				continue
			}
			h.mu.RLock()
			for client := range h.clients[msg.GroupID] {
				select {
				case client.send <- payload:
				default:
					// Client is not keeping up; drop the message.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish queues an event for a group room without blocking the caller.
func (h *Hub) Publish(msgType, groupID string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("[live] marshal event data: %v", err)
		return
	}
	msg := &Message{
		Type:      msgType,
		GroupID:   groupID,
		Data:      raw,
		Timestamp: time.Now(),
	}
	select {
	case h.broadcast <- msg:
	default:
		log.Printf("[live] broadcast buffer full, dropping %s for group %s", msgType, groupID)
	}
}
